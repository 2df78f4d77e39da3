package http

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/stock-import/internal/application/dto"
)

// storePinger es el contrato mínimo para verificar el almacenamiento.
// Lo implementa inventory.Persistence; la interfaz evita depender del caso de uso completo.
type storePinger interface {
	Ping(ctx context.Context) error
}

const storeCheckTimeout = 2 * time.Second

// RequireStore responde 503 sin tocar el handler cuando el almacenamiento no responde.
// Va en rutas que leen o escriben stock directamente (exportación, movimientos).
func RequireStore(p storePinger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx, cancel := context.WithTimeout(c.UserContext(), storeCheckTimeout)
		defer cancel()
		if err := p.Ping(ctx); err != nil {
			return c.Status(fiber.StatusServiceUnavailable).JSON(dto.ErrorResponse{
				Code:    "STORE_UNAVAILABLE",
				Message: "almacenamiento no disponible, intente más tarde",
			})
		}
		return c.Next()
	}
}
