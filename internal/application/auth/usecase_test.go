package auth

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/jhoicas/litio-erp/internal/application/dto"
	"github.com/jhoicas/litio-erp/internal/application/storage"
	"github.com/jhoicas/litio-erp/internal/domain"
	"github.com/jhoicas/litio-erp/internal/domain/entity"
	"github.com/jhoicas/litio-erp/internal/infrastructure/memory"
)

func newTestAuth(t *testing.T) (*AuthUseCase, *memory.RecordStore) {
	t.Helper()
	store := memory.NewRecordStore()
	uc := NewAuthUseCase(store, Config{Secret: "test-secret", ExpMinutes: 60, Issuer: "litio-test", BcryptCost: bcrypt.MinCost}, nil)
	return uc, store
}

// snapshot devuelve los cuerpos persistidos de las claves de identidad.
func snapshot(t *testing.T, store *memory.RecordStore) map[string][]string {
	t.Helper()
	out := make(map[string][]string)
	for _, k := range []storage.Key{storage.KeyUsers, storage.KeyCredentials, storage.KeySessions} {
		recs, err := store.List(context.Background(), k.Name)
		require.NoError(t, err)
		for _, r := range recs {
			out[k.Name] = append(out[k.Name], string(r.Body))
		}
	}
	return out
}

func TestSignIn_UsuariosSembrados(t *testing.T) {
	ctx := context.Background()
	cases := []struct {
		email, password string
		role            entity.Role
	}{
		{"admin@litio.com", "admin123", entity.RoleSuperAdmin},
		{"taller@litio.com", "taller123", entity.RoleAdmin},
		{"user@litio.com", "user123", entity.RoleColaborador},
	}
	for _, tc := range cases {
		t.Run(tc.email, func(t *testing.T) {
			uc, _ := newTestAuth(t)
			before := time.Now()

			s, err := uc.SignIn(ctx, tc.email, tc.password)
			require.NoError(t, err)
			assert.Equal(t, tc.role, s.Role)
			assert.NotEmpty(t, s.Token)
			require.NotNil(t, s.User.LastLogin)
			assert.False(t, s.User.LastLogin.Before(before), "lastLogin debe ser posterior al llamado")

			current, err := uc.CurrentUser(ctx, s)
			require.NoError(t, err)
			require.NotNil(t, current)
			assert.Equal(t, tc.email, current.Email)
		})
	}
}

func TestSignIn_AlmacenVacioAdmin(t *testing.T) {
	uc, _ := newTestAuth(t)
	s, err := uc.SignIn(context.Background(), "admin@litio.com", "admin123")
	require.NoError(t, err)
	assert.Equal(t, entity.RoleSuperAdmin, s.User.Role)
	assert.Equal(t, "Administrador Principal", s.User.Name)
}

func TestSignIn_PasswordIncorrectaNoCambiaEstado(t *testing.T) {
	ctx := context.Background()
	uc, store := newTestAuth(t)
	require.NoError(t, uc.InitializeUsers(ctx))
	before := snapshot(t, store)

	_, err := uc.SignIn(ctx, "admin@litio.com", "nope")
	assert.ErrorIs(t, err, domain.ErrInvalidCredential)
	assert.Equal(t, before, snapshot(t, store))
}

func TestSignIn_Errores(t *testing.T) {
	ctx := context.Background()
	uc, _ := newTestAuth(t)

	_, err := uc.SignIn(ctx, "nadie@litio.com", "x")
	assert.ErrorIs(t, err, domain.ErrUserNotFound)

	_, err = uc.SignIn(ctx, "ADMIN@litio.com", "admin123")
	assert.ErrorIs(t, err, domain.ErrUserNotFound, "el email se compara exacto")

	u, err := uc.GetUserByEmail(ctx, "user@litio.com")
	require.NoError(t, err)
	inactive := entity.UserStatusInactive
	_, err = uc.UpdateUser(ctx, u.ID, dto.UpdateUserRequest{Status: &inactive})
	require.NoError(t, err)

	_, err = uc.SignIn(ctx, "user@litio.com", "user123")
	assert.ErrorIs(t, err, domain.ErrUserInactive)
}

func TestInitializeUsers_Idempotente(t *testing.T) {
	ctx := context.Background()
	uc, store := newTestAuth(t)

	require.NoError(t, uc.InitializeUsers(ctx))
	first := snapshot(t, store)
	require.NoError(t, uc.InitializeUsers(ctx))
	assert.Equal(t, first, snapshot(t, store))
	assert.Len(t, first[storage.KeyUsers.Name], 3)
	assert.Len(t, first[storage.KeyCredentials.Name], 3)
}

func TestInitializeUsers_ColeccionVaciaNoSeResiembra(t *testing.T) {
	ctx := context.Background()
	uc, store := newTestAuth(t)
	require.NoError(t, store.Replace(ctx, storage.KeyUsers.Name, nil))

	require.NoError(t, uc.InitializeUsers(ctx))
	users, err := uc.ListUsers(ctx)
	require.NoError(t, err)
	assert.Empty(t, users, "una colección presente y vacía no se vuelve a sembrar")
}

func TestHasPermission_SegunRango(t *testing.T) {
	ctx := context.Background()
	uc, _ := newTestAuth(t)

	admin, err := uc.SignIn(ctx, "taller@litio.com", "taller123")
	require.NoError(t, err)
	assert.True(t, uc.HasPermission(ctx, admin, entity.RoleColaborador))
	assert.True(t, uc.HasPermission(ctx, admin, entity.RoleAdmin))
	assert.False(t, uc.HasPermission(ctx, admin, entity.RoleSuperAdmin))

	assert.False(t, uc.HasPermission(ctx, nil, entity.RoleColaborador), "sin sesión no hay permisos")
}

func TestSesion_NuevoLoginInvalidaElAnterior(t *testing.T) {
	ctx := context.Background()
	uc, _ := newTestAuth(t)

	first, err := uc.SignIn(ctx, "admin@litio.com", "admin123")
	require.NoError(t, err)
	_, err = uc.Authenticate(ctx, first.Token)
	require.NoError(t, err)

	second, err := uc.SignIn(ctx, "admin@litio.com", "admin123")
	require.NoError(t, err)

	_, err = uc.Authenticate(ctx, first.Token)
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
	got, err := uc.Authenticate(ctx, second.Token)
	require.NoError(t, err)
	assert.Equal(t, second.ID, got.ID)

	_, err = uc.Authenticate(ctx, "basura")
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
}

func TestSignOut(t *testing.T) {
	ctx := context.Background()
	uc, _ := newTestAuth(t)
	s, err := uc.SignIn(ctx, "user@litio.com", "user123")
	require.NoError(t, err)

	require.NoError(t, uc.SignOut(ctx, s))
	current, err := uc.CurrentUser(ctx, s)
	require.NoError(t, err)
	assert.Nil(t, current)
	_, err = uc.Authenticate(ctx, s.Token)
	assert.ErrorIs(t, err, domain.ErrUnauthorized)

	require.NoError(t, uc.SignOut(ctx, s), "cerrar sesión dos veces no falla")
}

func TestChangePassword(t *testing.T) {
	ctx := context.Background()
	uc, _ := newTestAuth(t)
	s, err := uc.SignIn(ctx, "user@litio.com", "user123")
	require.NoError(t, err)

	err = uc.ChangePassword(ctx, s, "incorrecta", "newpass123")
	assert.ErrorIs(t, err, domain.ErrInvalidCredential)
	_, err = uc.SignIn(ctx, "user@litio.com", "user123")
	require.NoError(t, err, "la contraseña original sigue funcionando")

	s, err = uc.SignIn(ctx, "user@litio.com", "user123")
	require.NoError(t, err)
	require.NoError(t, uc.ChangePassword(ctx, s, "user123", "newpass123"))
	_, err = uc.SignIn(ctx, "user@litio.com", "user123")
	assert.ErrorIs(t, err, domain.ErrInvalidCredential)
	_, err = uc.SignIn(ctx, "user@litio.com", "newpass123")
	assert.NoError(t, err)

	assert.ErrorIs(t, uc.ChangePassword(ctx, nil, "a", "b"), domain.ErrUnauthorized)
}

func TestUpdateUserProfile_RefrescaSesion(t *testing.T) {
	ctx := context.Background()
	uc, _ := newTestAuth(t)
	s, err := uc.SignIn(ctx, "user@litio.com", "user123")
	require.NoError(t, err)

	name := "Usuario Editado"
	updated, err := uc.UpdateUserProfile(ctx, s, dto.UpdateProfileRequest{Name: &name})
	require.NoError(t, err)
	assert.Equal(t, name, updated.Name)
	assert.Equal(t, "Ventas", updated.Department)

	current, err := uc.CurrentUser(ctx, s)
	require.NoError(t, err)
	assert.Equal(t, name, current.Name)

	stored, err := uc.GetUserByID(ctx, s.UserID)
	require.NoError(t, err)
	assert.Equal(t, name, stored.Name)
}

func TestCreateYDeleteUser(t *testing.T) {
	ctx := context.Background()
	uc, store := newTestAuth(t)
	require.NoError(t, uc.InitializeUsers(ctx))

	created, err := uc.CreateUser(ctx, dto.CreateUserRequest{Email: "nuevo@litio.com", Password: "secreto1", Name: "Nuevo"})
	require.NoError(t, err)
	assert.Equal(t, entity.RoleColaborador, created.Role)

	_, err = uc.CreateUser(ctx, dto.CreateUserRequest{Email: "nuevo@litio.com", Password: "secreto1"})
	assert.ErrorIs(t, err, domain.ErrEmailAlreadyExists)
	_, err = uc.CreateUser(ctx, dto.CreateUserRequest{Email: "otro@litio.com", Password: "123"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	s, err := uc.SignIn(ctx, "nuevo@litio.com", "secreto1")
	require.NoError(t, err)

	require.NoError(t, uc.DeleteUser(ctx, created.ID))
	cred, err := store.Get(ctx, storage.KeyCredentials.Name, "nuevo@litio.com")
	require.NoError(t, err)
	assert.Nil(t, cred, "la credencial se elimina con el usuario")
	_, err = uc.Authenticate(ctx, s.Token)
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
	_, err = uc.SignIn(ctx, "nuevo@litio.com", "secreto1")
	assert.ErrorIs(t, err, domain.ErrUserNotFound)

	assert.ErrorIs(t, uc.DeleteUser(ctx, created.ID), domain.ErrUserNotFound)
}
