package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/tradeflow/fieldops-api/internal/application/auth"
	"github.com/tradeflow/fieldops-api/internal/application/billing"
	infrapdf "github.com/tradeflow/fieldops-api/internal/infrastructure/pdf"
	"github.com/tradeflow/fieldops-api/internal/infrastructure/postgres"
	httpRouter "github.com/tradeflow/fieldops-api/internal/interfaces/http"
	"github.com/tradeflow/fieldops-api/pkg/config"
	"github.com/tradeflow/fieldops-api/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("load configuration: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:   cfg.App.Env,
		Level: "info",
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Msg("starting application")

	ctx := context.Background()
	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("PostgreSQL connection")
	}
	defer pool.Close()

	businessRepo := postgres.NewBusinessRepository(pool)
	userRepo := postgres.NewUserRepository(pool)
	contactRepo := postgres.NewContactRepository(pool)
	projectRepo := postgres.NewProjectRepository(pool)
	jobRepo := postgres.NewJobRepository(pool)
	invoiceRepo := postgres.NewInvoiceRepository(pool)
	txRunner := postgres.NewTxRunner(pool)

	billingDefaults := billing.Defaults{
		InvoicePrefix: cfg.Billing.InvoicePrefix,
		NetDays:       cfg.Billing.DefaultNetDays,
	}
	createInvoiceUC := billing.NewCreateInvoiceUseCase(txRunner, contactRepo, projectRepo, jobRepo, billingDefaults)
	updateInvoiceUC := billing.NewUpdateInvoiceUseCase(txRunner)
	processPaymentUC := billing.NewProcessPaymentUseCase(txRunner)
	invoiceStatusUC := billing.NewInvoiceStatusUseCase(txRunner)
	invoiceQueryUC := billing.NewInvoiceQueryUseCase(invoiceRepo)
	contactUC := billing.NewContactUseCase(contactRepo)

	pdfGenerator := infrapdf.NewMarotoPDFGenerator()
	invoicePDFUC := billing.NewPDFUseCase(invoiceRepo, businessRepo, pdfGenerator)

	authUC := auth.NewAuthUseCase(userRepo, businessRepo, auth.JWTConfig{
		Secret:     cfg.JWT.Secret,
		ExpMinutes: cfg.JWT.Expiration,
		Issuer:     cfg.JWT.Issuer,
	})

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 10,
		IdleTimeout:  time.Second * 60,
	})
	app.Use(recover.New())

	// Swagger UI: http://localhost:<port>/docs
	app.Use(swagger.New(swagger.Config{
		BasePath: "/",
		FilePath: "./docs/swagger.json",
		Path:     "docs",
		Title:    cfg.App.Name,
	}))

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": cfg.App.Name})
	})

	httpRouter.Router(app, httpRouter.RouterDeps{
		CreateInvoice:  createInvoiceUC,
		UpdateInvoice:  updateInvoiceUC,
		ProcessPayment: processPaymentUC,
		InvoiceStatus:  invoiceStatusUC,
		InvoiceQuery:   invoiceQueryUC,
		InvoicePDF:     invoicePDFUC,
		ContactUC:      contactUC,
		AuthUC:         authUC,
		JWTSecret:      cfg.JWT.Secret,
	})

	go func() {
		if err := app.Listen(cfg.HTTP.Addr()); err != nil {
			log.Error().Err(err).Msg("HTTP server stopped")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutdown signal received, stopping server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server shutdown")
	}

	log.Info().Msg("application stopped")
}
