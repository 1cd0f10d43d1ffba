package http

import (
	"context"

	"github.com/gofiber/fiber/v2"

	"github.com/tradeflow/fieldops-api/internal/application/billing"
	"github.com/tradeflow/fieldops-api/internal/application/dto"
)

// InvoiceHandler serves the invoicing endpoints (protected).
type InvoiceHandler struct {
	create  *billing.CreateInvoiceUseCase
	update  *billing.UpdateInvoiceUseCase
	payment *billing.ProcessPaymentUseCase
	status  *billing.InvoiceStatusUseCase
	query   *billing.InvoiceQueryUseCase
	pdf     *billing.PDFUseCase
}

// NewInvoiceHandler wires the invoice use cases.
func NewInvoiceHandler(
	create *billing.CreateInvoiceUseCase,
	update *billing.UpdateInvoiceUseCase,
	payment *billing.ProcessPaymentUseCase,
	status *billing.InvoiceStatusUseCase,
	query *billing.InvoiceQueryUseCase,
	pdf *billing.PDFUseCase,
) *InvoiceHandler {
	return &InvoiceHandler{create: create, update: update, payment: payment, status: status, query: query, pdf: pdf}
}

// Create creates an invoice.
// POST /api/invoices
func (h *InvoiceHandler) Create(c *fiber.Ctx) error {
	var in dto.CreateInvoiceRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "malformed JSON body"})
	}
	invoice, err := h.create.CreateInvoice(c.Context(), GetBusinessID(c), GetUserID(c), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(invoice)
}

// GetByID returns the full invoice.
// GET /api/invoices/:id
func (h *InvoiceHandler) GetByID(c *fiber.Ctx) error {
	invoice, err := h.query.GetInvoice(c.Context(), GetBusinessID(c), c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(invoice)
}

// List returns a filtered page of the business's invoices. A status filter
// of "overdue" selects payable invoices past their due date.
// GET /api/invoices
func (h *InvoiceHandler) List(c *fiber.Ctx) error {
	var page dto.PageRequest
	if err := c.QueryParser(&page); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "invalid pagination"})
	}
	out, err := h.query.ListInvoices(c.Context(), GetBusinessID(c),
		c.Query("status"), c.Query("contact_id"), c.Query("project_id"), c.Query("job_id"), page)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// Search runs the free-form invoice search.
// GET /api/invoices/search
func (h *InvoiceHandler) Search(c *fiber.Ctx) error {
	var in dto.SearchInvoicesRequest
	if err := c.QueryParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "invalid search parameters"})
	}
	out, err := h.query.SearchInvoices(c.Context(), GetBusinessID(c), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// Update patches invoice fields, honoring the optimistic version check.
// PUT /api/invoices/:id
func (h *InvoiceHandler) Update(c *fiber.Ctx) error {
	var in dto.UpdateInvoiceRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "malformed JSON body"})
	}
	invoice, err := h.update.UpdateInvoice(c.Context(), GetBusinessID(c), c.Params("id"), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(invoice)
}

// Delete removes a draft invoice that was never sent and has no payments.
// DELETE /api/invoices/:id
func (h *InvoiceHandler) Delete(c *fiber.Ctx) error {
	if err := h.status.Delete(c.Context(), GetBusinessID(c), c.Params("id")); err != nil {
		return writeError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// ProcessPayment records a payment against the invoice.
// POST /api/invoices/:id/payments
func (h *InvoiceHandler) ProcessPayment(c *fiber.Ctx) error {
	var in dto.ProcessPaymentRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "malformed JSON body"})
	}
	invoice, err := h.payment.ProcessPayment(c.Context(), GetBusinessID(c), c.Params("id"), GetUserID(c), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(invoice)
}

// Send marks the invoice sent, stamping the sent date on first delivery.
// POST /api/invoices/:id/send
func (h *InvoiceHandler) Send(c *fiber.Ctx) error {
	return h.transition(c, h.status.Send)
}

// MarkViewed records that the client opened the invoice.
// POST /api/invoices/:id/viewed
func (h *InvoiceHandler) MarkViewed(c *fiber.Ctx) error {
	return h.transition(c, h.status.MarkViewed)
}

// Cancel cancels an invoice that has no payments.
// POST /api/invoices/:id/cancel
func (h *InvoiceHandler) Cancel(c *fiber.Ctx) error {
	return h.transition(c, h.status.Cancel)
}

// Void voids an unviewed, unpaid invoice.
// POST /api/invoices/:id/void
func (h *InvoiceHandler) Void(c *fiber.Ctx) error {
	return h.transition(c, h.status.Void)
}

func (h *InvoiceHandler) transition(c *fiber.Ctx, fn func(ctx context.Context, businessID, invoiceID string) (*dto.InvoiceResponse, error)) error {
	invoice, err := fn(c.Context(), GetBusinessID(c), c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(invoice)
}

// PDF streams the printable invoice document.
// GET /api/invoices/:id/pdf
func (h *InvoiceHandler) PDF(c *fiber.Ctx) error {
	data, filename, err := h.pdf.InvoicePDF(c.Context(), GetBusinessID(c), c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	c.Set(fiber.HeaderContentType, "application/pdf")
	c.Set(fiber.HeaderContentDisposition, `attachment; filename="`+filename+`"`)
	return c.Send(data)
}
