package inventory

import (
	"context"

	"github.com/jhoicas/stock-import/internal/domain/csvimport"
	"github.com/jhoicas/stock-import/internal/domain/entity"
)

// Persistence colaborador externo que guarda artículos y movimientos.
// El núcleo solo lee la cantidad actual y propone cambios.
type Persistence interface {
	// Ping verifica que el almacenamiento responda antes de empezar un commit.
	Ping(ctx context.Context) error
	// FindItem busca por sucursal y SKU (si sku != "") o por product_id. nil, nil si no existe.
	FindItem(ctx context.Context, branchID int64, sku, productID string) (*entity.StockItem, error)
	GetItem(ctx context.Context, id string) (*entity.StockItem, error)
	// CreateItem crea el artículo y, si opening != nil, su movimiento de apertura.
	CreateItem(ctx context.Context, item entity.StockItem, opening *entity.StockMovement) (*entity.StockItem, error)
	// UpdateStock aplica un movimiento ya calculado. Falla con domain.ErrConflict si la cantidad
	// guardada ya no coincide con movement.PreviousQuantity.
	UpdateStock(ctx context.Context, itemID string, movement entity.StockMovement) (*entity.StockItem, error)
	// ListItems lista artículos de una sucursal; 0 = todas.
	ListItems(ctx context.Context, branchID int64) ([]*entity.StockItem, error)
}

// BatchReporter recibe el resumen del lote para mostrarlo o registrarlo. No devuelve nada.
type BatchReporter interface {
	ReportValidation(ctx context.Context, batchID string, result csvimport.BatchResult)
	ReportCommit(ctx context.Context, report ImportReport)
}

// ReportRenderer genera el documento descargable de un reporte (PDF).
type ReportRenderer interface {
	RenderImportReport(ctx context.Context, report ImportReport) ([]byte, error)
}

// MultiReporter reenvía a varios reporters en orden.
type MultiReporter []BatchReporter

func (m MultiReporter) ReportValidation(ctx context.Context, batchID string, result csvimport.BatchResult) {
	for _, r := range m {
		r.ReportValidation(ctx, batchID, result)
	}
}

func (m MultiReporter) ReportCommit(ctx context.Context, report ImportReport) {
	for _, r := range m {
		r.ReportCommit(ctx, report)
	}
}

type noopReporter struct{}

func (noopReporter) ReportValidation(context.Context, string, csvimport.BatchResult) {}
func (noopReporter) ReportCommit(context.Context, ImportReport)                      {}
