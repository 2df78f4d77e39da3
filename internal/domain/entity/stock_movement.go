package entity

import "time"

// MovementType tipo de movimiento del libro de stock.
type MovementType string

// Tipos de movimiento de inventario.
const (
	MovementInward     MovementType = "inward"     // entrada de mercancía
	MovementOutward    MovementType = "outward"    // salida / despacho
	MovementAdjustment MovementType = "adjustment" // corrección absoluta a la cantidad real
)

// Valid indica si el tipo es uno de los soportados.
func (t MovementType) Valid() bool {
	switch t {
	case MovementInward, MovementOutward, MovementAdjustment:
		return true
	}
	return false
}

// StockMovement registro append-only de un cambio de stock. Guarda la cantidad
// anterior y la nueva; una vez escrito no se modifica.
type StockMovement struct {
	ID               string
	ItemID           string
	Type             MovementType
	Delta            int64 // para adjustment es el valor absoluto objetivo
	PreviousQuantity int64
	NewQuantity      int64
	Reason           string
	ReferenceNumber  string // opcional: factura, orden, lote de importación
	Notes            string
	CreatedBy        string // UserID
	CreatedAt        time.Time
}
