package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/tradeflow/fieldops-api/internal/application/billing"
	"github.com/tradeflow/fieldops-api/internal/application/dto"
)

// ContactHandler serves the client endpoints (protected).
type ContactHandler struct {
	uc *billing.ContactUseCase
}

func NewContactHandler(uc *billing.ContactUseCase) *ContactHandler {
	return &ContactHandler{uc: uc}
}

// Create adds a client to the business.
// POST /api/contacts
func (h *ContactHandler) Create(c *fiber.Ctx) error {
	var in dto.CreateContactRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "malformed JSON body"})
	}
	contact, err := h.uc.Create(c.Context(), GetBusinessID(c), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(contact)
}

// GetByID returns one client.
// GET /api/contacts/:id
func (h *ContactHandler) GetByID(c *fiber.Ctx) error {
	contact, err := h.uc.GetByID(c.Context(), GetBusinessID(c), c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(contact)
}

// List returns the business's clients.
// GET /api/contacts
func (h *ContactHandler) List(c *fiber.Ctx) error {
	var page dto.PageRequest
	if err := c.QueryParser(&page); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "invalid pagination"})
	}
	contacts, err := h.uc.List(c.Context(), GetBusinessID(c), page)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(contacts)
}
