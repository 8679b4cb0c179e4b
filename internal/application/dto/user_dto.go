package dto

import "github.com/jhoicas/litio-erp/internal/domain/entity"

// LoginRequest entrada para login.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginResponse salida con token JWT y el usuario autenticado.
type LoginResponse struct {
	Token     string      `json:"token"`
	ExpiresAt string      `json:"expiresAt"`
	User      entity.User `json:"user"`
}

// CreateUserRequest alta de usuario por un administrador (password en texto, se hashea en use case).
type CreateUserRequest struct {
	Email      string      `json:"email"`
	Password   string      `json:"password"`
	Name       string      `json:"name"`
	Role       entity.Role `json:"role"`
	Phone      string      `json:"phone"`
	Department string      `json:"department"`
}

// UpdateUserRequest edición administrativa; los campos nil no se tocan.
type UpdateUserRequest struct {
	Name       *string      `json:"name"`
	Role       *entity.Role `json:"role"`
	Status     *string      `json:"status"`
	Phone      *string      `json:"phone"`
	Department *string      `json:"department"`
}

// UpdateProfileRequest edición del propio perfil.
type UpdateProfileRequest struct {
	Name       *string `json:"name"`
	Phone      *string `json:"phone"`
	Department *string `json:"department"`
	Avatar     *string `json:"avatar"`
}

// ChangePasswordRequest cambio de contraseña del usuario autenticado.
type ChangePasswordRequest struct {
	CurrentPassword string `json:"currentPassword"`
	NewPassword     string `json:"newPassword"`
}

// MinPasswordLength largo mínimo aceptado para contraseñas nuevas.
const MinPasswordLength = 6
