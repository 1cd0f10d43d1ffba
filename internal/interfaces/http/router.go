package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/tradeflow/fieldops-api/internal/application/auth"
	"github.com/tradeflow/fieldops-api/internal/application/billing"
	"github.com/tradeflow/fieldops-api/internal/domain/entity"
)

// RouterDeps carries everything the router wires into handlers.
type RouterDeps struct {
	CreateInvoice  *billing.CreateInvoiceUseCase
	UpdateInvoice  *billing.UpdateInvoiceUseCase
	ProcessPayment *billing.ProcessPaymentUseCase
	InvoiceStatus  *billing.InvoiceStatusUseCase
	InvoiceQuery   *billing.InvoiceQueryUseCase
	InvoicePDF     *billing.PDFUseCase
	ContactUC      *billing.ContactUseCase
	AuthUC         *auth.AuthUseCase
	JWTSecret      string
}

// Router registers the API routes.
func Router(app *fiber.App, deps RouterDeps) {
	api := app.Group("/api")

	// Auth (public)
	authGroup := api.Group("/auth")
	authHandler := NewAuthHandler(deps.AuthUC)
	authGroup.Post("/register", authHandler.Register)
	authGroup.Post("/login", authHandler.Login)

	// Protected routes (Bearer token required)
	protected := api.Group("/", AuthMiddleware(deps.JWTSecret))

	// Contacts
	contacts := protected.Group("/contacts")
	contactHandler := NewContactHandler(deps.ContactUC)
	contacts.Post("/", contactHandler.Create)
	contacts.Get("/", contactHandler.List)
	contacts.Get("/:id", contactHandler.GetByID)

	// Invoices. Destructive operations require admin.
	invoices := protected.Group("/invoices")
	invoiceHandler := NewInvoiceHandler(
		deps.CreateInvoice, deps.UpdateInvoice, deps.ProcessPayment,
		deps.InvoiceStatus, deps.InvoiceQuery, deps.InvoicePDF)
	adminOnly := RequireRole(entity.RoleAdmin)

	invoices.Post("/", invoiceHandler.Create)
	invoices.Get("/", invoiceHandler.List)
	invoices.Get("/search", invoiceHandler.Search)
	invoices.Get("/:id", invoiceHandler.GetByID)
	invoices.Put("/:id", invoiceHandler.Update)
	invoices.Delete("/:id", adminOnly, invoiceHandler.Delete)
	invoices.Post("/:id/payments", invoiceHandler.ProcessPayment)
	invoices.Post("/:id/send", invoiceHandler.Send)
	invoices.Post("/:id/viewed", invoiceHandler.MarkViewed)
	invoices.Post("/:id/cancel", adminOnly, invoiceHandler.Cancel)
	invoices.Post("/:id/void", adminOnly, invoiceHandler.Void)
	invoices.Get("/:id/pdf", invoiceHandler.PDF)
}
