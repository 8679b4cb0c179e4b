package http_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/jhoicas/litio-erp/internal/application/analytics"
	"github.com/jhoicas/litio-erp/internal/application/auth"
	"github.com/jhoicas/litio-erp/internal/application/backup"
	"github.com/jhoicas/litio-erp/internal/application/billing"
	"github.com/jhoicas/litio-erp/internal/application/inventory"
	"github.com/jhoicas/litio-erp/internal/application/dto"
	"github.com/jhoicas/litio-erp/internal/application/stats"
	"github.com/jhoicas/litio-erp/internal/application/usecase"
	"github.com/jhoicas/litio-erp/internal/domain/entity"
	"github.com/jhoicas/litio-erp/internal/infrastructure/memory"
	"github.com/jhoicas/litio-erp/internal/infrastructure/metrics"
	"github.com/jhoicas/litio-erp/internal/infrastructure/pdf"
	apphttp "github.com/jhoicas/litio-erp/internal/interfaces/http"
)

type testServer struct {
	app  *fiber.App
	auth *auth.AuthUseCase
}

// newTestServer levanta el router completo sobre el almacén en memoria instrumentado.
func newTestServer(t *testing.T) *testServer {
	t.Helper()
	reg := prometheus.NewRegistry()
	store, err := metrics.NewRecordStore(memory.NewRecordStore(), reg)
	require.NoError(t, err)

	authUC := auth.NewAuthUseCase(store, auth.Config{
		Secret: testJWTSecret, ExpMinutes: testExpMin, Issuer: testIssuer, BcryptCost: bcrypt.MinCost,
	}, nil)
	require.NoError(t, authUC.InitializeUsers(context.Background()))

	settingsUC := usecase.NewSettingsUseCase(store, nil)
	inventoryUC := usecase.NewInventoryUseCase(store, nil)
	invoiceUC := billing.NewInvoiceUseCase(store, billing.DefaultTaxRate, nil)
	app := fiber.New()
	apphttp.Router(app, apphttp.RouterDeps{
		AuthUC:         authUC,
		InventoryUC:    inventoryUC,
		Replenishment:  inventory.NewReplenishmentUseCase(inventoryUC, invoiceUC),
		ServiceUC:      usecase.NewServiceUseCase(store, nil),
		ClientUC:       usecase.NewClientUseCase(store, nil),
		VehicleUC:      usecase.NewVehicleUseCase(store, nil),
		AttendanceUC:   usecase.NewAttendanceUseCase(store, settingsUC, nil),
		WorkshopUC:     usecase.NewWorkshopUseCase(store, nil),
		SettingsUC:     settingsUC,
		NotificationUC: usecase.NewNotificationUseCase(store, nil),
		ChatUC:         usecase.NewChatUseCase(store, nil),
		InvoiceUC:      invoiceUC,
		InvoicePDF:     billing.NewPDFUseCase(store, settingsUC, pdf.NewInvoiceGenerator(), nil),
		BackupUC:       backup.NewUseCase(store, nil),
		StatsUC:        stats.NewUseCase(store),
		DashboardUC:    analytics.NewDashboardUseCase(store, settingsUC),
		AppName:        "litio-erp-test",
		Metrics:        reg,
	})
	return &testServer{app: app, auth: authUC}
}

func decodeBody[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	defer resp.Body.Close()
	var out T
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return out
}

func TestRouter_Health(t *testing.T) {
	srv := newTestServer(t)
	resp := doRequest(t, srv.app, http.MethodGet, "/health", "", nil)
	body := decodeBody[map[string]string](t, resp)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "ok", body["status"])
}

func TestRouter_Login(t *testing.T) {
	srv := newTestServer(t)

	resp := doRequest(t, srv.app, http.MethodPost, "/api/auth/login", "", dto.LoginRequest{Email: "admin@litio.com", Password: "incorrecta"})
	bad := decodeBody[dto.ErrorResponse](t, resp)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, "INVALID_CREDENTIALS", bad.Code)

	resp = doRequest(t, srv.app, http.MethodPost, "/api/auth/login", "", dto.LoginRequest{Email: "admin@litio.com", Password: "admin123"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	login := decodeBody[dto.LoginResponse](t, resp)
	require.NotEmpty(t, login.Token)
	assert.Equal(t, entity.RoleSuperAdmin, login.User.Role)

	resp = doRequest(t, srv.app, http.MethodGet, "/api/auth/me", "Bearer "+login.Token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	me := decodeBody[entity.User](t, resp)
	assert.Equal(t, "admin@litio.com", me.Email)

	resp = doRequest(t, srv.app, http.MethodPost, "/api/auth/logout", "Bearer "+login.Token, nil)
	resp.Body.Close()
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp = doRequest(t, srv.app, http.MethodGet, "/api/auth/me", "Bearer "+login.Token, nil)
	resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode, "el token de una sesión cerrada ya no sirve")
}

func TestRouter_InventoryErrores(t *testing.T) {
	srv := newTestServer(t)
	admin := signIn(t, srv.auth, "admin@litio.com", "admin123")
	colab := signIn(t, srv.auth, "user@litio.com", "user123")

	resp := doRequest(t, srv.app, http.MethodPost, "/api/inventory", colab, map[string]any{
		"name": "Batería 60Ah", "category": "Baterías", "price": "45000", "stock": 3, "minStock": 5,
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	item := decodeBody[entity.InventoryItem](t, resp)
	assert.True(t, item.Price.Equal(decimal.NewFromInt(45000)))

	resp = doRequest(t, srv.app, http.MethodGet, "/api/inventory/no-existe", colab, nil)
	notFound := decodeBody[dto.ErrorResponse](t, resp)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "NOT_FOUND", notFound.Code)

	resp = doRequest(t, srv.app, http.MethodPost, "/api/inventory/"+item.ID+"/stock", colab, map[string]int{"delta": -10})
	invalid := decodeBody[dto.ErrorResponse](t, resp)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "VALIDATION", invalid.Code)

	resp = doRequest(t, srv.app, http.MethodGet, "/api/inventory/low-stock", colab, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	low := decodeBody[[]entity.InventoryItem](t, resp)
	assert.Len(t, low, 1)

	resp = doRequest(t, srv.app, http.MethodGet, "/api/inventory/replenishment", colab, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	repl := decodeBody[[]dto.ReplenishmentSuggestion](t, resp)
	require.Len(t, repl, 1)
	assert.Equal(t, 5, repl[0].SuggestedOrderQty)

	resp = doRequest(t, srv.app, http.MethodDelete, "/api/inventory/"+item.ID, colab, nil)
	resp.Body.Close()
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp = doRequest(t, srv.app, http.MethodDelete, "/api/inventory/"+item.ID, admin, nil)
	resp.Body.Close()
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
}

func TestRouter_ListadoPaginado(t *testing.T) {
	srv := newTestServer(t)
	token := signIn(t, srv.auth, "taller@litio.com", "taller123")
	for _, name := range []string{"Filtro", "Aceite", "Bujía"} {
		resp := doRequest(t, srv.app, http.MethodPost, "/api/inventory", token, map[string]any{"name": name, "price": 1000, "stock": 10})
		resp.Body.Close()
		require.Equal(t, http.StatusCreated, resp.StatusCode)
	}

	resp := doRequest(t, srv.app, http.MethodGet, "/api/inventory?limit=2&offset=1", token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	page := decodeBody[dto.ListResponse[entity.InventoryItem]](t, resp)
	assert.Equal(t, 3, page.Total)
	assert.Len(t, page.Items, 2)
	assert.Equal(t, 1, page.Offset)
}

func TestRouter_DataPermisos(t *testing.T) {
	srv := newTestServer(t)
	super := signIn(t, srv.auth, "admin@litio.com", "admin123")
	admin := signIn(t, srv.auth, "taller@litio.com", "taller123")
	colab := signIn(t, srv.auth, "user@litio.com", "user123")

	resp := doRequest(t, srv.app, http.MethodGet, "/api/data/export", colab, nil)
	resp.Body.Close()
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp = doRequest(t, srv.app, http.MethodGet, "/api/data/export", admin, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Header.Get(fiber.HeaderContentDisposition), "attachment")
	resp.Body.Close()

	resp = doRequest(t, srv.app, http.MethodPost, "/api/data/clear", admin, nil)
	resp.Body.Close()
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp = doRequest(t, srv.app, http.MethodGet, "/api/data/stats", colab, nil)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp = doRequest(t, srv.app, http.MethodGet, "/api/dashboard", colab, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	dash := decodeBody[dto.DashboardSummary](t, resp)
	assert.Equal(t, 0, dash.TotalProducts)

	resp = doRequest(t, srv.app, http.MethodPost, "/api/data/import", super, map[string]any{"schemaVersion": 99})
	unsupported := decodeBody[dto.ErrorResponse](t, resp)
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
	assert.Equal(t, "UNSUPPORTED_SCHEMA", unsupported.Code)
}

func TestRouter_AdministracionUsuarios(t *testing.T) {
	ctx := context.Background()
	srv := newTestServer(t)
	super := signIn(t, srv.auth, "admin@litio.com", "admin123")
	admin := signIn(t, srv.auth, "taller@litio.com", "taller123")

	superUser, err := srv.auth.GetUserByEmail(ctx, "admin@litio.com")
	require.NoError(t, err)
	tallerUser, err := srv.auth.GetUserByEmail(ctx, "taller@litio.com")
	require.NoError(t, err)
	colabUser, err := srv.auth.GetUserByEmail(ctx, "user@litio.com")
	require.NoError(t, err)

	expectCode := func(resp *http.Response, status int, code string) {
		t.Helper()
		body := decodeBody[dto.ErrorResponse](t, resp)
		assert.Equal(t, status, resp.StatusCode)
		assert.Equal(t, code, body.Code)
	}

	// Un admin no puede degradar ni eliminar a un super_admin.
	resp := doRequest(t, srv.app, http.MethodPut, "/api/users/"+superUser.ID, admin, map[string]string{"role": "colaborador"})
	expectCode(resp, http.StatusForbidden, "FORBIDDEN")
	resp = doRequest(t, srv.app, http.MethodDelete, "/api/users/"+superUser.ID, admin, nil)
	expectCode(resp, http.StatusForbidden, "FORBIDDEN")
	still, err := srv.auth.GetUserByID(ctx, superUser.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.RoleSuperAdmin, still.Role)

	// Ni otorgar un rol superior al propio.
	resp = doRequest(t, srv.app, http.MethodPut, "/api/users/"+colabUser.ID, admin, map[string]string{"role": "super_admin"})
	expectCode(resp, http.StatusForbidden, "FORBIDDEN")
	resp = doRequest(t, srv.app, http.MethodPost, "/api/users", admin, dto.CreateUserRequest{Email: "nuevo@litio.com", Password: "secreto1", Role: entity.RoleSuperAdmin})
	expectCode(resp, http.StatusForbidden, "FORBIDDEN")

	resp = doRequest(t, srv.app, http.MethodPost, "/api/users", admin, dto.CreateUserRequest{Email: "nuevo@litio.com", Password: "secreto1", Role: entity.RoleColaborador})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	created := decodeBody[entity.User](t, resp)
	assert.Equal(t, entity.RoleColaborador, created.Role)

	resp = doRequest(t, srv.app, http.MethodPut, "/api/users/"+colabUser.ID, admin, map[string]string{"department": "Taller"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	edited := decodeBody[entity.User](t, resp)
	assert.Equal(t, "Taller", edited.Department)

	resp = doRequest(t, srv.app, http.MethodDelete, "/api/users/"+tallerUser.ID, admin, nil)
	expectCode(resp, http.StatusConflict, "SELF_DELETE")

	resp = doRequest(t, srv.app, http.MethodDelete, "/api/users/no-existe", admin, nil)
	expectCode(resp, http.StatusNotFound, "NOT_FOUND")
	resp = doRequest(t, srv.app, http.MethodPut, "/api/users/no-existe", admin, map[string]string{"name": "x"})
	expectCode(resp, http.StatusNotFound, "NOT_FOUND")

	resp = doRequest(t, srv.app, http.MethodDelete, "/api/users/"+created.ID, admin, nil)
	resp.Body.Close()
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)

	// El super_admin sí puede degradar a un admin.
	resp = doRequest(t, srv.app, http.MethodPut, "/api/users/"+tallerUser.ID, super, map[string]string{"role": "colaborador"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	demoted := decodeBody[entity.User](t, resp)
	assert.Equal(t, entity.RoleColaborador, demoted.Role)
}

func TestRouter_Metrics(t *testing.T) {
	srv := newTestServer(t)
	token := signIn(t, srv.auth, "user@litio.com", "user123")
	resp := doRequest(t, srv.app, http.MethodGet, "/api/inventory", token, nil)
	resp.Body.Close()

	resp = doRequest(t, srv.app, http.MethodGet, "/metrics", "", nil)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(raw), "litio_store_operations_total")
}
