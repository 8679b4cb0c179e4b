package entity

import "time"

// Role nivel de autorización del usuario. Jerarquía lineal: super_admin > admin > colaborador.
type Role string

// Roles válidos para User.
const (
	RoleSuperAdmin  Role = "super_admin"
	RoleAdmin       Role = "admin"
	RoleColaborador Role = "colaborador"
)

// Estados de User.
const (
	UserStatusActive   = "active"
	UserStatusInactive = "inactive"
)

// Rank devuelve el rango entero del rol (0 si el rol no es válido).
func (r Role) Rank() int {
	switch r {
	case RoleSuperAdmin:
		return 3
	case RoleAdmin:
		return 2
	case RoleColaborador:
		return 1
	default:
		return 0
	}
}

// Valid informa si el rol pertenece a la jerarquía.
func (r Role) Valid() bool { return r.Rank() > 0 }

// Satisfies informa si este rol alcanza el rango requerido. Roles desconocidos nunca satisfacen.
func (r Role) Satisfies(required Role) bool {
	if !r.Valid() || !required.Valid() {
		return false
	}
	return r.Rank() >= required.Rank()
}

// User representa un usuario del sistema. La contraseña vive aparte, en Credential.
type User struct {
	Base
	Email      string     `json:"email"`
	Name       string     `json:"name"`
	Role       Role       `json:"role"`
	Status     string     `json:"status"` // active, inactive
	CreatedAt  time.Time  `json:"createdAt"`
	LastLogin  *time.Time `json:"lastLogin,omitempty"`
	Avatar     string     `json:"avatar,omitempty"`
	Phone      string     `json:"phone,omitempty"`
	Department string     `json:"department,omitempty"`
}

// IsActive informa si el usuario puede iniciar sesión.
func (u *User) IsActive() bool { return u.Status == UserStatusActive }

// Credential asocia un email con el hash bcrypt de su contraseña. El id del registro es el email.
type Credential struct {
	Base
	Email        string    `json:"email"`
	PasswordHash string    `json:"passwordHash"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// SessionPointer referencia la sesión activa de un usuario. El id del registro es el id del usuario,
// por lo que existe a lo sumo un puntero por usuario.
type SessionPointer struct {
	Base
	SessionID  string    `json:"sessionId"`
	User       User      `json:"user"`
	SignedInAt time.Time `json:"signedInAt"`
}
