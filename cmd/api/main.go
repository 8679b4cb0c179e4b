package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"
	_ "time/tzdata"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/jhoicas/litio-erp/internal/application/analytics"
	"github.com/jhoicas/litio-erp/internal/application/auth"
	"github.com/jhoicas/litio-erp/internal/application/backup"
	"github.com/jhoicas/litio-erp/internal/application/billing"
	"github.com/jhoicas/litio-erp/internal/application/inventory"
	"github.com/jhoicas/litio-erp/internal/application/notifier"
	"github.com/jhoicas/litio-erp/internal/application/stats"
	"github.com/jhoicas/litio-erp/internal/application/usecase"
	"github.com/jhoicas/litio-erp/internal/infrastructure/metrics"
	infrapdf "github.com/jhoicas/litio-erp/internal/infrastructure/pdf"
	"github.com/jhoicas/litio-erp/internal/infrastructure/store"
	httpRouter "github.com/jhoicas/litio-erp/internal/interfaces/http"
	"github.com/jhoicas/litio-erp/pkg/config"
	"github.com/jhoicas/litio-erp/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:   cfg.App.Env,
		Level: cfg.App.LogLevel,
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Str("store", cfg.Store.Driver).
		Msg("iniciando aplicación")

	if cfg.JWT.Secret == "" {
		log.Fatal().Msg("JWT_SECRET es requerido")
	}
	taxRate, err := billing.ParseTaxRate(cfg.Billing.TaxRate)
	if err != nil {
		log.Fatal().Err(err).Msg("INVOICE_TAX_RATE inválido")
	}

	ctx, stop := context.WithCancel(context.Background())
	defer stop()

	backend, closeStore, err := store.Open(ctx, cfg, log.Component("store"))
	if err != nil {
		log.Fatal().Err(err).Msg("conexión al almacén")
	}
	defer closeStore()

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	records, err := metrics.NewRecordStore(backend, reg)
	if err != nil {
		log.Fatal().Err(err).Msg("registrar métricas")
	}

	authUC := auth.NewAuthUseCase(records, auth.Config{
		Secret:     cfg.JWT.Secret,
		ExpMinutes: cfg.JWT.Expiration,
		Issuer:     cfg.JWT.Issuer,
		BcryptCost: cfg.Auth.BcryptCost,
	}, log.Component("auth"))
	if err := authUC.InitializeUsers(ctx); err != nil {
		log.Fatal().Err(err).Msg("sembrar usuarios")
	}

	ucLog := log.Component("usecase")
	settingsUC := usecase.NewSettingsUseCase(records, ucLog)
	workshopUC := usecase.NewWorkshopUseCase(records, ucLog)
	notificationUC := usecase.NewNotificationUseCase(records, ucLog)
	inventoryUC := usecase.NewInventoryUseCase(records, ucLog)
	invoiceUC := billing.NewInvoiceUseCase(records, taxRate, log.Component("billing"))
	invoicePDFUC := billing.NewPDFUseCase(records, settingsUC, infrapdf.NewInvoiceGenerator(), log.Component("billing"))

	// Vencimientos de taller y facturas
	job := notifier.NewJob(workshopUC, notificationUC, invoiceUC, settingsUC, cfg.Notifier.Interval, log)
	go job.Start(ctx)

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		BodyLimit:    32 * 1024 * 1024, // respaldos completos en /api/data/import
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 10,
		IdleTimeout:  time.Second * 60,
	})
	app.Use(recover.New())

	// Swagger UI en local: http://localhost:<port>/docs
	app.Use(swagger.New(swagger.Config{
		BasePath: "/",
		FilePath: "./docs/swagger.json",
		Path:     "docs",
		Title:    "Litio ERP API",
	}))

	httpRouter.Router(app, httpRouter.RouterDeps{
		AuthUC:         authUC,
		InventoryUC:    inventoryUC,
		Replenishment:  inventory.NewReplenishmentUseCase(inventoryUC, invoiceUC),
		ServiceUC:      usecase.NewServiceUseCase(records, ucLog),
		ClientUC:       usecase.NewClientUseCase(records, ucLog),
		VehicleUC:      usecase.NewVehicleUseCase(records, ucLog),
		AttendanceUC:   usecase.NewAttendanceUseCase(records, settingsUC, ucLog),
		WorkshopUC:     workshopUC,
		SettingsUC:     settingsUC,
		NotificationUC: notificationUC,
		ChatUC:         usecase.NewChatUseCase(records, ucLog),
		InvoiceUC:      invoiceUC,
		InvoicePDF:     invoicePDFUC,
		BackupUC:       backup.NewUseCase(records, log.Component("backup")),
		StatsUC:        stats.NewUseCase(records),
		DashboardUC:    analytics.NewDashboardUseCase(records, settingsUC),
		AppName:        cfg.App.Name,
		Metrics:        reg,
	})

	go func() {
		if err := app.Listen(cfg.HTTP.Addr()); err != nil {
			log.Error().Err(err).Msg("servidor HTTP finalizado")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("señal de apagado recibida, cerrando servidor...")
	stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("apagado del servidor")
	}

	log.Info().Msg("aplicación detenida")
}
