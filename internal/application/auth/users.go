package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/jhoicas/litio-erp/internal/application/dto"
	"github.com/jhoicas/litio-erp/internal/domain"
	"github.com/jhoicas/litio-erp/internal/domain/entity"
)

// ListUsers devuelve todos los usuarios en orden de creación.
func (uc *AuthUseCase) ListUsers(ctx context.Context) ([]entity.User, error) {
	return uc.users.Get(ctx)
}

// GetUserByID devuelve el usuario o ErrUserNotFound.
func (uc *AuthUseCase) GetUserByID(ctx context.Context, id string) (*entity.User, error) {
	u, err := uc.users.Find(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrUserNotFound
		}
		return nil, err
	}
	return &u, nil
}

// GetUserByEmail busca por coincidencia exacta de email. ErrUserNotFound si no existe.
func (uc *AuthUseCase) GetUserByEmail(ctx context.Context, email string) (*entity.User, error) {
	u, err := uc.users.First(ctx, func(u entity.User) bool { return u.Email == email })
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, domain.ErrUserNotFound
	}
	return u, nil
}

// CreateUser crea un usuario activo y su credencial. ErrEmailAlreadyExists si el email ya existe.
func (uc *AuthUseCase) CreateUser(ctx context.Context, in dto.CreateUserRequest) (*entity.User, error) {
	email := strings.TrimSpace(in.Email)
	if email == "" || !strings.Contains(email, "@") {
		return nil, fmt.Errorf("%w: email inválido", domain.ErrInvalidInput)
	}
	if len(in.Password) < dto.MinPasswordLength {
		return nil, fmt.Errorf("%w: la contraseña debe tener al menos %d caracteres", domain.ErrInvalidInput, dto.MinPasswordLength)
	}
	role := in.Role
	if role == "" {
		role = entity.RoleColaborador
	}
	if !role.Valid() {
		return nil, fmt.Errorf("%w: rol %q", domain.ErrInvalidInput, role)
	}
	if _, err := uc.GetUserByEmail(ctx, email); err == nil {
		return nil, domain.ErrEmailAlreadyExists
	} else if !errors.Is(err, domain.ErrUserNotFound) {
		return nil, err
	}

	name := strings.TrimSpace(in.Name)
	if name == "" {
		name = email
	}
	user := entity.User{
		Base:       entity.Base{ID: uuid.NewString()},
		Email:      email,
		Name:       name,
		Role:       role,
		Status:     entity.UserStatusActive,
		CreatedAt:  uc.now().UTC(),
		Phone:      in.Phone,
		Department: in.Department,
	}
	cred, err := uc.newCredential(email, in.Password)
	if err != nil {
		return nil, err
	}
	if _, err := uc.users.Insert(ctx, user); err != nil {
		return nil, err
	}
	if err := uc.creds.Put(ctx, cred); err != nil {
		return nil, err
	}
	uc.log.Info().Str("user_id", user.ID).Str("role", string(role)).Msg("usuario creado")
	return &user, nil
}

// UpdateUser edición administrativa de nombre, rol, estado, teléfono y departamento.
func (uc *AuthUseCase) UpdateUser(ctx context.Context, id string, in dto.UpdateUserRequest) (*entity.User, error) {
	if in.Role != nil && !in.Role.Valid() {
		return nil, fmt.Errorf("%w: rol %q", domain.ErrInvalidInput, *in.Role)
	}
	if in.Status != nil && *in.Status != entity.UserStatusActive && *in.Status != entity.UserStatusInactive {
		return nil, fmt.Errorf("%w: estado %q", domain.ErrInvalidInput, *in.Status)
	}
	updated, err := uc.users.Mutate(ctx, id, func(u *entity.User) error {
		if in.Name != nil {
			u.Name = *in.Name
		}
		if in.Role != nil {
			u.Role = *in.Role
		}
		if in.Status != nil {
			u.Status = *in.Status
		}
		if in.Phone != nil {
			u.Phone = *in.Phone
		}
		if in.Department != nil {
			u.Department = *in.Department
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrUserNotFound
		}
		return nil, err
	}
	// Un usuario desactivado pierde su sesión.
	if !updated.IsActive() {
		if err := uc.sessions.Delete(ctx, id); err != nil && !errors.Is(err, domain.ErrNotFound) {
			return nil, err
		}
	} else if err := uc.refreshPointer(ctx, updated); err != nil {
		return nil, err
	}
	return &updated, nil
}

// DeleteUser elimina el usuario junto con su credencial y su sesión.
func (uc *AuthUseCase) DeleteUser(ctx context.Context, id string) error {
	u, err := uc.GetUserByID(ctx, id)
	if err != nil {
		return err
	}
	if err := uc.users.Delete(ctx, id); err != nil {
		return err
	}
	if err := uc.creds.Delete(ctx, u.Email); err != nil && !errors.Is(err, domain.ErrNotFound) {
		return err
	}
	if err := uc.sessions.Delete(ctx, id); err != nil && !errors.Is(err, domain.ErrNotFound) {
		return err
	}
	uc.log.Info().Str("user_id", id).Msg("usuario eliminado")
	return nil
}
