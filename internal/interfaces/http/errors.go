package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/stock-import/internal/application/dto"
	"github.com/jhoicas/stock-import/internal/domain"
)

// writeError traduce errores de dominio a status + dto.ErrorResponse.
func writeError(c *fiber.Ctx, err error) error {
	status, code := fiber.StatusInternalServerError, "INTERNAL"
	msg := err.Error()

	var (
		verr *domain.ValidationError
		serr *domain.InsufficientStockError
		ferr *domain.FormatError
		line int
	)
	if errors.As(err, &ferr) {
		line = ferr.Line
	}
	switch {
	case errors.As(err, &serr):
		status, code = fiber.StatusConflict, "INSUFFICIENT_STOCK"
	case errors.As(err, &verr), errors.Is(err, domain.ErrInvalidInput):
		status, code = fiber.StatusBadRequest, "VALIDATION"
	case errors.Is(err, domain.ErrInvalidFormat):
		status, code = fiber.StatusBadRequest, "FORMAT"
	case errors.Is(err, domain.ErrNoValidRecords):
		status, code = fiber.StatusUnprocessableEntity, "NO_VALID_RECORDS"
	case errors.Is(err, domain.ErrCommitInProgress):
		status, code = fiber.StatusConflict, "COMMIT_IN_PROGRESS"
	case errors.Is(err, domain.ErrInvalidTransition):
		status, code = fiber.StatusConflict, "INVALID_STATE"
	case errors.Is(err, domain.ErrConflict):
		status, code = fiber.StatusConflict, "CONFLICT"
	case errors.Is(err, domain.ErrNotFound):
		status, code = fiber.StatusNotFound, "NOT_FOUND"
	case errors.Is(err, domain.ErrForbidden):
		status, code = fiber.StatusForbidden, "FORBIDDEN"
	case errors.Is(err, domain.ErrPersistence):
		status, code = fiber.StatusServiceUnavailable, "STORE_UNAVAILABLE"
	}
	return c.Status(status).JSON(dto.ErrorResponse{Code: code, Message: msg, Line: line})
}
