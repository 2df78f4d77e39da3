package postgres

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jhoicas/stock-import/internal/domain/repository"
)

// txRepos repositorios que comparten la misma transacción.
type txRepos struct {
	items     repository.StockItemRepository
	movements repository.StockMovementRepository
}

// TxRunner abre una transacción read committed por cada cambio de stock.
type TxRunner struct {
	pool *pgxpool.Pool
	opts pgx.TxOptions
}

func NewTxRunner(pool *pgxpool.Pool) *TxRunner {
	return &TxRunner{pool: pool, opts: pgx.TxOptions{IsoLevel: pgx.ReadCommitted}}
}

// Run hace Commit si fn devuelve nil y Rollback en cualquier otro caso.
// El error de fn se devuelve sin envolver para que errors.Is siga funcionando.
func (r *TxRunner) Run(ctx context.Context, fn func(txRepos) error) error {
	return pgx.BeginTxFunc(ctx, r.pool, r.opts, func(tx pgx.Tx) error {
		return fn(txRepos{
			items:     NewStockItemRepository(tx),
			movements: NewStockMovementRepository(tx),
		})
	})
}
