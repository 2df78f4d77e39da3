package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/stock-import/internal/domain"
	"github.com/jhoicas/stock-import/internal/domain/entity"
	"github.com/jhoicas/stock-import/internal/domain/repository"
)

var _ repository.StockItemRepository = (*StockItemRepo)(nil)

const stockItemColumns = `id, sku, product_id, name, category, supplier, batch_no, quantity,
	price_per_unit, branch_id, low_stock_threshold, expiry_date, created_at, updated_at`

// StockItemRepo implementación de StockItemRepository sobre PostgreSQL (usable con pool o tx).
type StockItemRepo struct {
	q Querier
}

// NewStockItemRepository construye el adaptador. Pasar pool o tx (Querier).
func NewStockItemRepository(q Querier) *StockItemRepo {
	return &StockItemRepo{q: q}
}

// Create persiste un nuevo artículo.
func (r *StockItemRepo) Create(ctx context.Context, item *entity.StockItem) error {
	query := `
		INSERT INTO stock_items (` + stockItemColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`
	_, err := r.q.Exec(ctx, query,
		item.ID, item.SKU, item.ProductID, item.Name, item.Category, item.Supplier, item.BatchNo,
		item.Quantity, item.PricePerUnit, item.BranchID, item.LowStockThreshold, item.ExpiryDate,
		item.CreatedAt, item.UpdatedAt,
	)
	if err != nil {
		switch {
		case isUniqueViolation(err):
			return fmt.Errorf("insert stock item: %w", domain.ErrDuplicate)
		case isCheckViolation(err):
			return fmt.Errorf("insert stock item: %w", domain.ErrInvalidInput)
		}
		return fmt.Errorf("insert stock item: %w", err)
	}
	return nil
}

// GetByID obtiene un artículo por ID; nil si no existe.
func (r *StockItemRepo) GetByID(ctx context.Context, id string) (*entity.StockItem, error) {
	return r.getOne(ctx, `SELECT `+stockItemColumns+` FROM stock_items WHERE id = $1`, id)
}

// GetForUpdate obtiene el artículo y bloquea la fila (SELECT FOR UPDATE).
func (r *StockItemRepo) GetForUpdate(ctx context.Context, id string) (*entity.StockItem, error) {
	return r.getOne(ctx, `SELECT `+stockItemColumns+` FROM stock_items WHERE id = $1 FOR UPDATE`, id)
}

// FindByBranchAndSKU busca por sucursal y SKU (sin distinguir mayúsculas).
func (r *StockItemRepo) FindByBranchAndSKU(ctx context.Context, branchID int64, sku string) (*entity.StockItem, error) {
	return r.getOne(ctx,
		`SELECT `+stockItemColumns+` FROM stock_items WHERE branch_id = $1 AND lower(sku) = lower($2)`,
		branchID, sku)
}

// FindByBranchAndProductID busca por sucursal y product_id.
func (r *StockItemRepo) FindByBranchAndProductID(ctx context.Context, branchID int64, productID string) (*entity.StockItem, error) {
	return r.getOne(ctx,
		`SELECT `+stockItemColumns+` FROM stock_items WHERE branch_id = $1 AND product_id = $2`,
		branchID, productID)
}

// UpdateQuantity actualiza solo la cantidad (usado por el libro de stock dentro de la tx).
func (r *StockItemRepo) UpdateQuantity(ctx context.Context, id string, quantity int64) error {
	cmd, err := r.q.Exec(ctx,
		`UPDATE stock_items SET quantity = $2, updated_at = now() WHERE id = $1`,
		id, quantity,
	)
	if err != nil {
		if isCheckViolation(err) {
			return fmt.Errorf("update quantity: %w", domain.ErrInvalidInput)
		}
		return fmt.Errorf("update quantity: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// ListByBranch lista artículos de una sucursal (0 = todas) ordenados para exportación.
func (r *StockItemRepo) ListByBranch(ctx context.Context, branchID int64) ([]*entity.StockItem, error) {
	query := `SELECT ` + stockItemColumns + ` FROM stock_items`
	var args []any
	if branchID > 0 {
		query += ` WHERE branch_id = $1`
		args = append(args, branchID)
	}
	query += ` ORDER BY branch_id, name, id`

	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list stock items: %w", err)
	}
	defer rows.Close()
	var list []*entity.StockItem
	for rows.Next() {
		it, err := scanStockItem(rows)
		if err != nil {
			return nil, fmt.Errorf("scan stock item: %w", err)
		}
		list = append(list, it)
	}
	return list, rows.Err()
}

func (r *StockItemRepo) getOne(ctx context.Context, query string, args ...any) (*entity.StockItem, error) {
	it, err := scanStockItem(r.q.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get stock item: %w", err)
	}
	return it, nil
}

func scanStockItem(row pgx.Row) (*entity.StockItem, error) {
	var it entity.StockItem
	err := row.Scan(
		&it.ID, &it.SKU, &it.ProductID, &it.Name, &it.Category, &it.Supplier, &it.BatchNo,
		&it.Quantity, &it.PricePerUnit, &it.BranchID, &it.LowStockThreshold, &it.ExpiryDate,
		&it.CreatedAt, &it.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &it, nil
}
