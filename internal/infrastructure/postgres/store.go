package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jhoicas/stock-import/internal/application/inventory"
	"github.com/jhoicas/stock-import/internal/domain"
	"github.com/jhoicas/stock-import/internal/domain/entity"
)

var _ inventory.Persistence = (*Store)(nil)

// Store implementa inventory.Persistence sobre PostgreSQL.
// Cada cambio de stock corre en su propia transacción con la fila bloqueada (SELECT FOR UPDATE).
type Store struct {
	pool  *pgxpool.Pool
	items *StockItemRepo
	tx    *TxRunner
}

// NewStore construye el adaptador de persistencia.
func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{
		pool:  pool,
		items: NewStockItemRepository(pool),
		tx:    NewTxRunner(pool),
	}
}

// Ping verifica la conexión.
func (s *Store) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

// FindItem busca por SKU si viene, si no por product_id.
func (s *Store) FindItem(ctx context.Context, branchID int64, sku, productID string) (*entity.StockItem, error) {
	if sku != "" {
		return s.items.FindByBranchAndSKU(ctx, branchID, sku)
	}
	return s.items.FindByBranchAndProductID(ctx, branchID, productID)
}

// GetItem obtiene un artículo por ID.
func (s *Store) GetItem(ctx context.Context, id string) (*entity.StockItem, error) {
	return s.items.GetByID(ctx, id)
}

// CreateItem inserta el artículo y su movimiento de apertura en la misma transacción.
func (s *Store) CreateItem(ctx context.Context, item entity.StockItem, opening *entity.StockMovement) (*entity.StockItem, error) {
	now := time.Now()
	if item.CreatedAt.IsZero() {
		item.CreatedAt = now
	}
	item.UpdatedAt = item.CreatedAt

	err := s.tx.Run(ctx, func(r txRepos) error {
		if err := r.items.Create(ctx, &item); err != nil {
			return err
		}
		if opening != nil {
			mov := *opening
			return r.movements.Create(ctx, &mov)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &item, nil
}

// UpdateStock bloquea la fila, verifica que la cantidad leída siga vigente, guarda el movimiento
// y actualiza la cantidad. Commit o Rollback como una unidad.
func (s *Store) UpdateStock(ctx context.Context, itemID string, movement entity.StockMovement) (*entity.StockItem, error) {
	if movement.NewQuantity < 0 {
		return nil, domain.ErrInvalidInput
	}
	var updated *entity.StockItem
	err := s.tx.Run(ctx, func(r txRepos) error {
		item, err := r.items.GetForUpdate(ctx, itemID)
		if err != nil {
			return err
		}
		if item == nil {
			return domain.ErrNotFound
		}
		if item.Quantity != movement.PreviousQuantity {
			return fmt.Errorf("cantidad actual %d, esperada %d: %w", item.Quantity, movement.PreviousQuantity, domain.ErrConflict)
		}
		mov := movement
		mov.ItemID = itemID
		if err := r.movements.Create(ctx, &mov); err != nil {
			return err
		}
		if err := r.items.UpdateQuantity(ctx, itemID, movement.NewQuantity); err != nil {
			return err
		}
		item.Quantity = movement.NewQuantity
		item.UpdatedAt = time.Now()
		updated = item
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// ListItems lista artículos para exportación.
func (s *Store) ListItems(ctx context.Context, branchID int64) ([]*entity.StockItem, error) {
	return s.items.ListByBranch(ctx, branchID)
}

// Movements devuelve el historial de auditoría de un artículo.
func (s *Store) Movements(ctx context.Context, itemID string, limit int) ([]*entity.StockMovement, error) {
	return NewStockMovementRepository(s.pool).ListByItem(ctx, itemID, limit)
}
