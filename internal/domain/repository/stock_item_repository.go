package repository

import (
	"context"

	"github.com/jhoicas/stock-import/internal/domain/entity"
)

// StockItemRepository define el puerto de persistencia para StockItem (DIP).
type StockItemRepository interface {
	Create(ctx context.Context, item *entity.StockItem) error
	GetByID(ctx context.Context, id string) (*entity.StockItem, error)
	// GetForUpdate bloquea la fila del artículo (SELECT FOR UPDATE); usar dentro de una transacción.
	GetForUpdate(ctx context.Context, id string) (*entity.StockItem, error)
	FindByBranchAndSKU(ctx context.Context, branchID int64, sku string) (*entity.StockItem, error)
	FindByBranchAndProductID(ctx context.Context, branchID int64, productID string) (*entity.StockItem, error)
	UpdateQuantity(ctx context.Context, id string, quantity int64) error
	// ListByBranch lista artículos; branchID 0 = todas las sucursales.
	ListByBranch(ctx context.Context, branchID int64) ([]*entity.StockItem, error)
}
