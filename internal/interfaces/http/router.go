package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/jhoicas/litio-erp/internal/application/analytics"
	"github.com/jhoicas/litio-erp/internal/application/auth"
	"github.com/jhoicas/litio-erp/internal/application/backup"
	"github.com/jhoicas/litio-erp/internal/application/billing"
	"github.com/jhoicas/litio-erp/internal/application/inventory"
	"github.com/jhoicas/litio-erp/internal/application/stats"
	"github.com/jhoicas/litio-erp/internal/application/usecase"
	"github.com/jhoicas/litio-erp/internal/domain/entity"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	AuthUC         *auth.AuthUseCase
	InventoryUC    *usecase.InventoryUseCase
	Replenishment  *inventory.ReplenishmentUseCase
	ServiceUC      *usecase.ServiceUseCase
	ClientUC       *usecase.ClientUseCase
	VehicleUC      *usecase.VehicleUseCase
	AttendanceUC   *usecase.AttendanceUseCase
	WorkshopUC     *usecase.WorkshopUseCase
	SettingsUC     *usecase.SettingsUseCase
	NotificationUC *usecase.NotificationUseCase
	ChatUC         *usecase.ChatUseCase
	InvoiceUC      *billing.InvoiceUseCase
	InvoicePDF     *billing.PDFUseCase
	BackupUC       *backup.UseCase
	StatsUC        *stats.UseCase
	DashboardUC    *analytics.DashboardUseCase
	AppName        string
	// Metrics origen de /metrics; nil omite la ruta.
	Metrics prometheus.Gatherer
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": deps.AppName})
	})
	if deps.Metrics != nil {
		app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(deps.Metrics, promhttp.HandlerOpts{})))
	}

	api := app.Group("/api")
	adminOnly := RequireRole(entity.RoleAdmin)
	superAdminOnly := RequireRole(entity.RoleSuperAdmin)

	// Auth (login público)
	authHandler := NewAuthHandler(deps.AuthUC)
	api.Post("/auth/login", authHandler.Login)

	// Rutas protegidas (requieren Bearer Token de una sesión vigente)
	protected := api.Group("/", AuthMiddleware(deps.AuthUC))

	authGroup := protected.Group("/auth")
	authGroup.Post("/logout", authHandler.Logout)
	authGroup.Get("/me", authHandler.Me)
	authGroup.Put("/profile", authHandler.UpdateProfile)
	authGroup.Put("/password", authHandler.ChangePassword)

	// Users (admin+)
	users := protected.Group("/users", adminOnly)
	userHandler := NewUserHandler(deps.AuthUC)
	users.Get("/", userHandler.List)
	users.Post("/", userHandler.Create)
	users.Get("/:id", userHandler.GetByID)
	users.Put("/:id", userHandler.Update)
	users.Delete("/:id", userHandler.Delete)

	// Inventory
	inventoryRoutes := protected.Group("/inventory")
	inventoryHandler := NewInventoryHandler(deps.InventoryUC, deps.Replenishment)
	inventoryRoutes.Get("/", inventoryHandler.List)
	inventoryRoutes.Get("/low-stock", inventoryHandler.LowStock)
	inventoryRoutes.Get("/categories", inventoryHandler.Categories)
	inventoryRoutes.Get("/replenishment", inventoryHandler.Replenishment)
	inventoryRoutes.Post("/", inventoryHandler.Create)
	inventoryRoutes.Get("/:id", inventoryHandler.GetByID)
	inventoryRoutes.Put("/:id", inventoryHandler.Update)
	inventoryRoutes.Post("/:id/stock", inventoryHandler.AdjustStock)
	inventoryRoutes.Delete("/:id", adminOnly, inventoryHandler.Delete)

	// Services
	services := protected.Group("/services")
	serviceHandler := NewServiceHandler(deps.ServiceUC)
	services.Get("/", serviceHandler.List)
	services.Post("/", serviceHandler.Create)
	services.Get("/:id", serviceHandler.GetByID)
	services.Put("/:id", serviceHandler.Update)
	services.Delete("/:id", adminOnly, serviceHandler.Delete)

	// Clients
	clients := protected.Group("/clients")
	clientHandler := NewClientHandler(deps.ClientUC)
	clients.Get("/", clientHandler.List)
	clients.Post("/", clientHandler.Create)
	clients.Get("/:id", clientHandler.GetByID)
	clients.Put("/:id", clientHandler.Update)
	clients.Delete("/:id", adminOnly, clientHandler.Delete)

	// Vehicles (?clientId= filtra por cliente)
	vehicles := protected.Group("/vehicles")
	vehicleHandler := NewVehicleHandler(deps.VehicleUC)
	vehicles.Get("/", vehicleHandler.List)
	vehicles.Post("/", vehicleHandler.Create)
	vehicles.Get("/:id", vehicleHandler.GetByID)
	vehicles.Put("/:id", vehicleHandler.Update)
	vehicles.Delete("/:id", adminOnly, vehicleHandler.Delete)

	// Invoices
	invoices := protected.Group("/invoices")
	invoiceHandler := NewInvoiceHandler(deps.InvoiceUC, deps.InvoicePDF)
	invoices.Get("/", invoiceHandler.List)
	invoices.Get("/summary", invoiceHandler.Summary)
	invoices.Post("/", invoiceHandler.Create)
	invoices.Get("/:id", invoiceHandler.GetByID)
	invoices.Get("/:id/pdf", invoiceHandler.DownloadPDF)
	invoices.Put("/:id", invoiceHandler.Update)
	invoices.Patch("/:id/status", invoiceHandler.UpdateStatus)
	invoices.Delete("/:id", adminOnly, invoiceHandler.Delete)

	// Attendance
	attendance := protected.Group("/attendance")
	attendanceHandler := NewAttendanceHandler(deps.AttendanceUC)
	attendance.Get("/", attendanceHandler.List)
	attendance.Get("/summary", attendanceHandler.Summary)
	attendance.Post("/check-in", attendanceHandler.CheckIn)
	attendance.Post("/check-out", attendanceHandler.CheckOut)
	attendance.Post("/", adminOnly, attendanceHandler.Create)
	attendance.Get("/:id", attendanceHandler.GetByID)
	attendance.Put("/:id", adminOnly, attendanceHandler.Update)
	attendance.Delete("/:id", adminOnly, attendanceHandler.Delete)

	// Workshop orders
	workshop := protected.Group("/workshop-orders")
	workshopHandler := NewWorkshopHandler(deps.WorkshopUC)
	workshop.Get("/", workshopHandler.List)
	workshop.Post("/", workshopHandler.Create)
	workshop.Get("/:id", workshopHandler.GetByID)
	workshop.Put("/:id", workshopHandler.Update)
	workshop.Patch("/:id/status", workshopHandler.UpdateStatus)
	workshop.Delete("/:id", adminOnly, workshopHandler.Delete)

	// Notifications (propias)
	notifications := protected.Group("/notifications")
	notificationHandler := NewNotificationHandler(deps.NotificationUC)
	notifications.Get("/", notificationHandler.List)
	notifications.Get("/unread-count", notificationHandler.UnreadCount)
	notifications.Post("/", adminOnly, notificationHandler.Create)
	notifications.Post("/read-all", notificationHandler.MarkAllRead)
	notifications.Post("/:id/read", notificationHandler.MarkRead)
	notifications.Delete("/:id", notificationHandler.Delete)

	// Chat
	chat := protected.Group("/chat")
	chatHandler := NewChatHandler(deps.ChatUC)
	chat.Get("/messages", chatHandler.Messages)
	chat.Post("/messages", chatHandler.Send)
	chat.Get("/users", chatHandler.Users)

	// Dashboard
	protected.Get("/dashboard", NewDashboardHandler(deps.DashboardUC).Summary)

	// Settings
	settingsHandler := NewSettingsHandler(deps.SettingsUC)
	protected.Get("/settings", settingsHandler.Get)
	protected.Put("/settings", adminOnly, settingsHandler.Update)

	// Data: stats (autenticado), export (admin+), import/clear (super_admin)
	data := protected.Group("/data")
	dataHandler := NewDataHandler(deps.BackupUC, deps.StatsUC)
	data.Get("/stats", dataHandler.Stats)
	data.Get("/export", adminOnly, dataHandler.Export)
	data.Post("/import", superAdminOnly, dataHandler.Import)
	data.Post("/clear", superAdminOnly, dataHandler.Clear)
}
