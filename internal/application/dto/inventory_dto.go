package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// RegisterMovementRequest body para POST /api/inventory/items/:id/movements.
type RegisterMovementRequest struct {
	Type            string `json:"type"` // inward, outward, adjustment
	Quantity        int64  `json:"quantity"`
	Reason          string `json:"reason,omitempty"`
	ReferenceNumber string `json:"reference_number,omitempty"`
	Notes           string `json:"notes,omitempty"`
}

// StockMovementResponse movimiento del libro de stock.
type StockMovementResponse struct {
	ID               string    `json:"id"`
	ItemID           string    `json:"item_id"`
	Type             string    `json:"type"`
	Quantity         int64     `json:"quantity"`
	PreviousQuantity int64     `json:"previous_quantity"`
	NewQuantity      int64     `json:"new_quantity"`
	Reason           string    `json:"reason,omitempty"`
	ReferenceNumber  string    `json:"reference_number,omitempty"`
	Notes            string    `json:"notes,omitempty"`
	CreatedBy        string    `json:"created_by,omitempty"`
	CreatedAt        time.Time `json:"created_at"`
}

// StockItemResponse artículo de inventario.
type StockItemResponse struct {
	ID                string          `json:"id"`
	ProductID         string          `json:"product_id"`
	SKU               string          `json:"sku,omitempty"`
	Name              string          `json:"name"`
	Category          string          `json:"category"`
	Supplier          string          `json:"supplier,omitempty"`
	BatchNo           string          `json:"batch_no,omitempty"`
	Quantity          int64           `json:"quantity"`
	PricePerUnit      decimal.Decimal `json:"price_per_unit"`
	BranchID          int64           `json:"branch_id"`
	LowStockThreshold int             `json:"low_stock_threshold"`
	LowStock          bool            `json:"low_stock"`
	ExpiryDate        string          `json:"expiry_date,omitempty"` // YYYY-MM-DD
	UpdatedAt         time.Time       `json:"updated_at"`
}

// MovementResultResponse salida de registrar un movimiento.
type MovementResultResponse struct {
	Item     StockItemResponse     `json:"item"`
	Movement StockMovementResponse `json:"movement"`
}

// MovementHistoryResponse historial de movimientos de un artículo.
type MovementHistoryResponse struct {
	Items []StockMovementResponse `json:"items"`
	Page  PageResponse            `json:"page"`
}
