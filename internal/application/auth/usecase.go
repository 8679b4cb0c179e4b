package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/jhoicas/litio-erp/internal/application/dto"
	"github.com/jhoicas/litio-erp/internal/application/storage"
	"github.com/jhoicas/litio-erp/internal/domain"
	"github.com/jhoicas/litio-erp/internal/domain/entity"
	"github.com/jhoicas/litio-erp/internal/domain/repository"
	"github.com/jhoicas/litio-erp/pkg/jwt"
	"github.com/jhoicas/litio-erp/pkg/logger"
)

// Config parámetros de tokens y hashing.
type Config struct {
	Secret     string
	ExpMinutes int
	Issuer     string
	BcryptCost int
}

// Session sesión explícita devuelta por SignIn/Authenticate y exigida por las operaciones de identidad.
type Session struct {
	ID        string
	UserID    string
	Role      entity.Role
	Token     string
	ExpiresAt time.Time
	User      entity.User
}

// AuthUseCase gestiona usuarios, credenciales y sesiones.
type AuthUseCase struct {
	users    *storage.Collection[entity.User, *entity.User]
	creds    *storage.Collection[entity.Credential, *entity.Credential]
	sessions *storage.Collection[entity.SessionPointer, *entity.SessionPointer]
	cfg      Config
	log      *logger.Logger
	now      func() time.Time
}

// NewAuthUseCase construye el caso de uso de auth sobre el almacén.
func NewAuthUseCase(store repository.RecordStore, cfg Config, log *logger.Logger) *AuthUseCase {
	if cfg.BcryptCost == 0 {
		cfg.BcryptCost = bcrypt.DefaultCost
	}
	if log == nil {
		log = logger.Nop()
	}
	return &AuthUseCase{
		users:    storage.NewCollection[entity.User](store, storage.KeyUsers, log),
		creds:    storage.NewCollection[entity.Credential](store, storage.KeyCredentials, log),
		sessions: storage.NewCollection[entity.SessionPointer](store, storage.KeySessions, log),
		cfg:      cfg,
		log:      log,
		now:      time.Now,
	}
}

// InitializeUsers siembra los usuarios por defecto si la colección de usuarios no existe, y sus
// credenciales si la de credenciales no existe. Idempotente.
func (uc *AuthUseCase) InitializeUsers(ctx context.Context) error {
	usersExist, err := uc.users.Exists(ctx)
	if err != nil {
		return err
	}
	if !usersExist {
		now := uc.now().UTC()
		seed := make([]entity.User, 0, len(defaultUsers))
		for _, d := range defaultUsers {
			seed = append(seed, entity.User{
				Base:       entity.Base{ID: uuid.NewString()},
				Email:      d.Email,
				Name:       d.Name,
				Role:       d.Role,
				Status:     entity.UserStatusActive,
				CreatedAt:  now,
				Phone:      d.Phone,
				Department: d.Department,
			})
		}
		if err := uc.users.Set(ctx, seed); err != nil {
			return err
		}
		uc.log.Info().Int("users", len(seed)).Msg("usuarios por defecto creados")
	}

	credsExist, err := uc.creds.Exists(ctx)
	if err != nil {
		return err
	}
	if !credsExist {
		seed := make([]entity.Credential, 0, len(defaultUsers))
		for _, d := range defaultUsers {
			c, err := uc.newCredential(d.Email, d.Password)
			if err != nil {
				return err
			}
			seed = append(seed, c)
		}
		if err := uc.creds.Set(ctx, seed); err != nil {
			return err
		}
	}
	return nil
}

// SignIn valida email y contraseña y abre una sesión nueva, reemplazando la anterior del usuario.
// Ante cualquier fallo no se modifica el estado.
func (uc *AuthUseCase) SignIn(ctx context.Context, email, password string) (*Session, error) {
	if err := uc.InitializeUsers(ctx); err != nil {
		return nil, err
	}
	user, err := uc.GetUserByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if !user.IsActive() {
		uc.log.Info().Str("user_id", user.ID).Msg("login rechazado: usuario inactivo")
		return nil, domain.ErrUserInactive
	}
	if err := uc.verifyPassword(ctx, email, password); err != nil {
		uc.log.Info().Str("user_id", user.ID).Msg("login rechazado: credencial inválida")
		return nil, err
	}

	now := uc.now().UTC()
	updated, err := uc.users.Mutate(ctx, user.ID, func(u *entity.User) error {
		u.LastLogin = &now
		return nil
	})
	if err != nil {
		return nil, err
	}

	sessionID := uuid.NewString()
	token, err := jwt.Generate(uc.cfg.Secret, updated.ID, sessionID, string(updated.Role), uc.cfg.Issuer, uc.cfg.ExpMinutes)
	if err != nil {
		return nil, err
	}
	pointer := entity.SessionPointer{
		Base:       entity.Base{ID: updated.ID},
		SessionID:  sessionID,
		User:       updated,
		SignedInAt: now,
	}
	if err := uc.sessions.Put(ctx, pointer); err != nil {
		return nil, err
	}
	uc.log.Info().Str("user_id", updated.ID).Str("role", string(updated.Role)).Msg("login")

	return &Session{
		ID:        sessionID,
		UserID:    updated.ID,
		Role:      updated.Role,
		Token:     token,
		ExpiresAt: now.Add(time.Duration(uc.cfg.ExpMinutes) * time.Minute),
		User:      updated,
	}, nil
}

// Authenticate valida un token y que su sesión siga siendo la vigente del usuario.
func (uc *AuthUseCase) Authenticate(ctx context.Context, token string) (*Session, error) {
	claims, err := jwt.Parse(uc.cfg.Secret, uc.cfg.Issuer, token)
	if err != nil {
		return nil, domain.ErrUnauthorized
	}
	userID, sessionID := claims.UserID, claims.SessionID
	pointer, err := uc.sessions.Find(ctx, userID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrUnauthorized
		}
		return nil, err
	}
	if pointer.SessionID != sessionID {
		return nil, domain.ErrUnauthorized
	}
	return &Session{
		ID:     sessionID,
		UserID: userID,
		Role:   pointer.User.Role,
		Token:  token,
		User:   pointer.User,
	}, nil
}

// SignOut cierra la sesión si sigue siendo la vigente del usuario.
func (uc *AuthUseCase) SignOut(ctx context.Context, s *Session) error {
	if s == nil {
		return nil
	}
	pointer, err := uc.sessions.Find(ctx, s.UserID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil
		}
		return err
	}
	if pointer.SessionID != s.ID {
		return nil
	}
	if err := uc.sessions.Delete(ctx, s.UserID); err != nil && !errors.Is(err, domain.ErrNotFound) {
		return err
	}
	uc.log.Info().Str("user_id", s.UserID).Msg("logout")
	return nil
}

// CurrentUser devuelve el usuario de la sesión o nil si no hay sesión vigente.
func (uc *AuthUseCase) CurrentUser(ctx context.Context, s *Session) (*entity.User, error) {
	if s == nil {
		return nil, nil
	}
	pointer, err := uc.sessions.Find(ctx, s.UserID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}
	if pointer.SessionID != s.ID {
		return nil, nil
	}
	u := pointer.User
	return &u, nil
}

// HasPermission informa si el usuario de la sesión alcanza el rol requerido.
func (uc *AuthUseCase) HasPermission(ctx context.Context, s *Session, required entity.Role) bool {
	u, err := uc.CurrentUser(ctx, s)
	if err != nil || u == nil {
		return false
	}
	return u.Role.Satisfies(required)
}

// UpdateUserProfile actualiza nombre, teléfono, departamento y avatar del usuario de la sesión.
func (uc *AuthUseCase) UpdateUserProfile(ctx context.Context, s *Session, in dto.UpdateProfileRequest) (*entity.User, error) {
	current, err := uc.requireUser(ctx, s)
	if err != nil {
		return nil, err
	}
	updated, err := uc.users.Mutate(ctx, current.ID, func(u *entity.User) error {
		if in.Name != nil {
			u.Name = *in.Name
		}
		if in.Phone != nil {
			u.Phone = *in.Phone
		}
		if in.Department != nil {
			u.Department = *in.Department
		}
		if in.Avatar != nil {
			u.Avatar = *in.Avatar
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrUserNotFound
		}
		return nil, err
	}
	if err := uc.refreshPointer(ctx, updated); err != nil {
		return nil, err
	}
	return &updated, nil
}

// ChangePassword reemplaza la contraseña del usuario de la sesión si la actual es correcta.
func (uc *AuthUseCase) ChangePassword(ctx context.Context, s *Session, oldPassword, newPassword string) error {
	current, err := uc.requireUser(ctx, s)
	if err != nil {
		return err
	}
	if err := uc.verifyPassword(ctx, current.Email, oldPassword); err != nil {
		return err
	}
	if len(newPassword) < dto.MinPasswordLength {
		return fmt.Errorf("%w: la contraseña debe tener al menos %d caracteres", domain.ErrInvalidInput, dto.MinPasswordLength)
	}
	cred, err := uc.newCredential(current.Email, newPassword)
	if err != nil {
		return err
	}
	if err := uc.creds.Put(ctx, cred); err != nil {
		return err
	}
	uc.log.Info().Str("user_id", current.ID).Msg("contraseña actualizada")
	return nil
}

func (uc *AuthUseCase) requireUser(ctx context.Context, s *Session) (*entity.User, error) {
	u, err := uc.CurrentUser(ctx, s)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, domain.ErrUnauthorized
	}
	return u, nil
}

func (uc *AuthUseCase) verifyPassword(ctx context.Context, email, password string) error {
	cred, err := uc.creds.Find(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.ErrInvalidCredential
		}
		return err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(cred.PasswordHash), []byte(password)); err != nil {
		return domain.ErrInvalidCredential
	}
	return nil
}

func (uc *AuthUseCase) newCredential(email, password string) (entity.Credential, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), uc.cfg.BcryptCost)
	if err != nil {
		return entity.Credential{}, fmt.Errorf("hash password: %w", err)
	}
	return entity.Credential{
		Base:         entity.Base{ID: email},
		Email:        email,
		PasswordHash: string(hash),
		UpdatedAt:    uc.now().UTC(),
	}, nil
}

// refreshPointer actualiza la copia del usuario guardada en su sesión vigente, si la hay.
func (uc *AuthUseCase) refreshPointer(ctx context.Context, u entity.User) error {
	_, err := uc.sessions.Mutate(ctx, u.ID, func(p *entity.SessionPointer) error {
		p.User = u
		return nil
	})
	if errors.Is(err, domain.ErrNotFound) {
		return nil
	}
	return err
}
