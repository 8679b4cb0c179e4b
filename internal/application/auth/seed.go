package auth

import "github.com/jhoicas/litio-erp/internal/domain/entity"

// defaultUser usuario sembrado en el primer arranque.
type defaultUser struct {
	Email      string
	Password   string
	Name       string
	Role       entity.Role
	Department string
	Phone      string
}

var defaultUsers = []defaultUser{
	{Email: "admin@litio.com", Password: "admin123", Name: "Administrador Principal", Role: entity.RoleSuperAdmin, Department: "Administración", Phone: "+56 9 1234 5678"},
	{Email: "taller@litio.com", Password: "taller123", Name: "Admin Taller", Role: entity.RoleAdmin, Department: "Taller", Phone: "+56 9 2345 6789"},
	{Email: "user@litio.com", Password: "user123", Name: "Usuario Demo", Role: entity.RoleColaborador, Department: "Ventas", Phone: "+56 9 3456 7890"},
}
