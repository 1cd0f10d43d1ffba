package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/tradeflow/fieldops-api/internal/application/dto"
	"github.com/tradeflow/fieldops-api/internal/domain"
)

// writeError maps domain errors onto HTTP statuses. Rule violations keep
// their code in the body so clients can branch on it; most map to 422
// (well-formed request, rejected by invoice rules), except duplicates and
// write conflicts, which are 409.
func writeError(c *fiber.Ctx, err error) error {
	if v, ok := domain.AsRule(err); ok {
		status := fiber.StatusUnprocessableEntity
		if v.Code == domain.RuleDuplicateNumber {
			status = fiber.StatusConflict
		}
		return c.Status(status).JSON(dto.ErrorResponse{Code: string(v.Code), Message: v.Error()})
	}
	switch {
	case errors.Is(err, domain.ErrInvalidInput):
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: err.Error()})
	case errors.Is(err, domain.ErrNotFound):
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "NOT_FOUND", Message: "resource not found"})
	case errors.Is(err, domain.ErrVersionConflict):
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "VERSION_CONFLICT", Message: "invoice was modified concurrently, reload and retry"})
	case errors.Is(err, domain.ErrDuplicate):
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "DUPLICATE", Message: "resource already exists"})
	case errors.Is(err, domain.ErrUnauthorized), errors.Is(err, domain.ErrUserNotFound):
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "invalid credentials"})
	case errors.Is(err, domain.ErrForbidden):
		return c.Status(fiber.StatusForbidden).JSON(dto.ErrorResponse{Code: "FORBIDDEN", Message: "access denied"})
	default:
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
}
