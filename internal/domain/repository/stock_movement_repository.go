package repository

import (
	"context"

	"github.com/jhoicas/stock-import/internal/domain/entity"
)

// StockMovementRepository define el puerto append-only del libro de movimientos.
type StockMovementRepository interface {
	Create(ctx context.Context, movement *entity.StockMovement) error
	ListByItem(ctx context.Context, itemID string, limit int) ([]*entity.StockMovement, error)
}
