package inventory

import (
	"errors"
	"math"
	"time"

	"github.com/google/uuid"
	"github.com/jhoicas/stock-import/internal/domain"
	"github.com/jhoicas/stock-import/internal/domain/entity"
)

// Apply calcula la nueva cantidad a partir de la anterior, el tipo y el delta (servicio de dominio puro).
//
//	inward:     nueva = anterior + delta
//	outward:    nueva = anterior - delta; InsufficientStockError si delta > anterior
//	adjustment: nueva = delta (valor absoluto, no incremento)
//
// Nunca devuelve una cantidad negativa.
func Apply(previous int64, t entity.MovementType, delta int64) (int64, error) {
	if previous < 0 {
		return previous, &domain.ValidationError{Field: "previous_quantity", Message: "must not be negative"}
	}
	if delta < 0 {
		return previous, &domain.ValidationError{Field: "delta", Message: "must not be negative"}
	}
	switch t {
	case entity.MovementInward:
		if delta > math.MaxInt64-previous {
			return previous, &domain.ValidationError{Field: "delta", Message: "quantity overflow"}
		}
		return previous + delta, nil
	case entity.MovementOutward:
		if delta > previous {
			return previous, &domain.InsufficientStockError{Available: previous, Requested: delta}
		}
		return previous - delta, nil
	case entity.MovementAdjustment:
		return delta, nil
	}
	return previous, &domain.ValidationError{Field: "type", Value: string(t), Message: "unknown movement type"}
}

// MovementInput datos para registrar un movimiento sobre un artículo.
type MovementInput struct {
	ItemID           string
	PreviousQuantity int64
	Type             entity.MovementType
	Delta            int64
	Reason           string
	ReferenceNumber  string
	Notes            string
	CreatedBy        string
	Now              time.Time
}

// Record aplica el movimiento y devuelve el registro de auditoría con la cantidad anterior y la nueva.
// Si Apply falla no se crea ningún movimiento.
func Record(in MovementInput) (entity.StockMovement, error) {
	newQty, err := Apply(in.PreviousQuantity, in.Type, in.Delta)
	if err != nil {
		var ise *domain.InsufficientStockError
		if errors.As(err, &ise) {
			ise.ItemID = in.ItemID
		}
		return entity.StockMovement{}, err
	}
	now := in.Now
	if now.IsZero() {
		now = time.Now()
	}
	return entity.StockMovement{
		ID:               uuid.New().String(),
		ItemID:           in.ItemID,
		Type:             in.Type,
		Delta:            in.Delta,
		PreviousQuantity: in.PreviousQuantity,
		NewQuantity:      newQty,
		Reason:           in.Reason,
		ReferenceNumber:  in.ReferenceNumber,
		Notes:            in.Notes,
		CreatedBy:        in.CreatedBy,
		CreatedAt:        now,
	}, nil
}
