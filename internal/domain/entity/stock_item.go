package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// DefaultLowStockThreshold umbral de stock bajo cuando la fila no lo trae.
const DefaultLowStockThreshold = 10

// StockItem representa un artículo de inventario de una sucursal.
// La cantidad solo cambia a través de movimientos (StockMovement).
type StockItem struct {
	ID                string
	SKU               string // código externo opcional
	ProductID         string
	Name              string
	Category          string
	Supplier          string
	BatchNo           string
	Quantity          int64
	PricePerUnit      decimal.Decimal
	BranchID          int64
	LowStockThreshold int
	ExpiryDate        *time.Time
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// IsLowStock indica si la cantidad está en o por debajo del umbral.
func (s *StockItem) IsLowStock() bool {
	return s.Quantity <= int64(s.LowStockThreshold)
}
