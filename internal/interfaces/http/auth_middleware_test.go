package http_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/jhoicas/litio-erp/internal/application/auth"
	"github.com/jhoicas/litio-erp/internal/domain/entity"
	"github.com/jhoicas/litio-erp/internal/infrastructure/memory"
	apphttp "github.com/jhoicas/litio-erp/internal/interfaces/http"
	pkgjwt "github.com/jhoicas/litio-erp/pkg/jwt"
)

// ──────────────────────────────────────────────────────────────────────────────
// Helpers de test
// ──────────────────────────────────────────────────────────────────────────────

const (
	testJWTSecret = "test-secret-key-for-unit-tests"
	testIssuer    = "litio-erp-test"
	testExpMin    = 60
)

func newTestAuth(t *testing.T) *auth.AuthUseCase {
	t.Helper()
	uc := auth.NewAuthUseCase(memory.NewRecordStore(), auth.Config{
		Secret: testJWTSecret, ExpMinutes: testExpMin, Issuer: testIssuer, BcryptCost: bcrypt.MinCost,
	}, nil)
	require.NoError(t, uc.InitializeUsers(context.Background()))
	return uc
}

// signIn abre sesión con un usuario sembrado y devuelve el header Authorization.
func signIn(t *testing.T, uc *auth.AuthUseCase, email, password string) string {
	t.Helper()
	s, err := uc.SignIn(context.Background(), email, password)
	require.NoError(t, err)
	return "Bearer " + s.Token
}

// buildTestApp aplicación mínima con AuthMiddleware + RequireRole y un handler que responde 200.
func buildTestApp(uc *auth.AuthUseCase, min entity.Role) *fiber.App {
	app := fiber.New()
	app.Get("/protected",
		apphttp.AuthMiddleware(uc),
		apphttp.RequireRole(min),
		func(c *fiber.Ctx) error {
			return c.JSON(fiber.Map{"ok": true, "role": apphttp.GetRole(c), "user_id": apphttp.GetUserID(c)})
		},
	)
	return app
}

func doRequest(t *testing.T, app *fiber.App, method, path, authHeader string, body any) *http.Response {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

// ──────────────────────────────────────────────────────────────────────────────
// Tests RequireRole
// ──────────────────────────────────────────────────────────────────────────────

func TestRequireRole_SuperAdminAccedeRutaAdmin(t *testing.T) {
	uc := newTestAuth(t)
	app := buildTestApp(uc, entity.RoleAdmin)
	resp := doRequest(t, app, http.MethodGet, "/protected", signIn(t, uc, "admin@litio.com", "admin123"), nil)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode, "el rango superior satisface al inferior")

	var body map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "super_admin", body["role"])
	assert.NotEmpty(t, body["user_id"])
}

func TestRequireRole_ColaboradorBloqueadoEnRutaAdmin(t *testing.T) {
	uc := newTestAuth(t)
	app := buildTestApp(uc, entity.RoleAdmin)
	resp := doRequest(t, app, http.MethodGet, "/protected", signIn(t, uc, "user@litio.com", "user123"), nil)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	body, _ := io.ReadAll(resp.Body)
	assert.Contains(t, string(body), "FORBIDDEN")
}

func TestRequireRole_SinAuthHeader_Retorna401(t *testing.T) {
	app := buildTestApp(newTestAuth(t), entity.RoleColaborador)
	resp := doRequest(t, app, http.MethodGet, "/protected", "", nil)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	body, _ := io.ReadAll(resp.Body)
	assert.Contains(t, string(body), "MISSING_TOKEN")
}

func TestAuthMiddleware_TokenInvalido_Retorna401(t *testing.T) {
	app := buildTestApp(newTestAuth(t), entity.RoleColaborador)
	for _, header := range []string{"Bearer token.invalido.aqui", "Basic abc", "Bearer  "} {
		resp := doRequest(t, app, http.MethodGet, "/protected", header, nil)
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode, header)
		resp.Body.Close()
	}
}

// Un JWT bien firmado pero de una sesión que ya no existe se rechaza.
func TestAuthMiddleware_SesionReemplazada_Retorna401(t *testing.T) {
	uc := newTestAuth(t)
	app := buildTestApp(uc, entity.RoleColaborador)

	first := signIn(t, uc, "user@litio.com", "user123")
	_ = signIn(t, uc, "user@litio.com", "user123")

	resp := doRequest(t, app, http.MethodGet, "/protected", first, nil)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode, "un login nuevo invalida el token anterior")
}

func TestAuthMiddleware_TokenSinSesion_Retorna401(t *testing.T) {
	uc := newTestAuth(t)
	app := buildTestApp(uc, entity.RoleColaborador)
	tok, err := pkgjwt.Generate(testJWTSecret, "1", "sesion-inventada", "super_admin", testIssuer, testExpMin)
	require.NoError(t, err)

	resp := doRequest(t, app, http.MethodGet, "/protected", "Bearer "+tok, nil)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}
