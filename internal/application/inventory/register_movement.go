package inventory

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jhoicas/stock-import/internal/application/dto"
	"github.com/jhoicas/stock-import/internal/domain"
	"github.com/jhoicas/stock-import/internal/domain/entity"
	ledger "github.com/jhoicas/stock-import/internal/domain/inventory"
)

const (
	defaultHistoryLimit = 20
	maxHistoryLimit     = 100
)

// MovementLister historial de movimientos de un artículo, más recientes primero.
type MovementLister interface {
	Movements(ctx context.Context, itemID string, limit int) ([]*entity.StockMovement, error)
}

// RegisterMovementUseCase registra movimientos individuales (inward, outward, adjustment) sobre un artículo.
// Comparte con la importación los bloqueos por artículo, así una carga masiva y un ajuste manual no se pisan.
type RegisterMovementUseCase struct {
	store   Persistence
	history MovementLister
	locks   *KeyedMutex
	now     func() time.Time
}

// NewRegisterMovementUseCase construye el caso de uso. locks puede ser nil.
func NewRegisterMovementUseCase(store Persistence, history MovementLister, locks *KeyedMutex) *RegisterMovementUseCase {
	if locks == nil {
		locks = NewKeyedMutex()
	}
	return &RegisterMovementUseCase{store: store, history: history, locks: locks, now: time.Now}
}

// MovementInputDTO entrada para registrar un movimiento.
type MovementInputDTO struct {
	ItemID          string
	UserID          string
	Type            string
	Quantity        int64
	Reason          string
	ReferenceNumber string
	Notes           string
}

// RegisterMovement bloquea el artículo, calcula el movimiento con el libro de stock y lo persiste.
// Una salida mayor al disponible devuelve *domain.InsufficientStockError y no cambia nada.
func (uc *RegisterMovementUseCase) RegisterMovement(ctx context.Context, input MovementInputDTO) (*entity.StockItem, *entity.StockMovement, error) {
	movType := entity.MovementType(strings.ToLower(strings.TrimSpace(input.Type)))
	if input.ItemID == "" || !movType.Valid() {
		return nil, nil, domain.ErrInvalidInput
	}
	if input.Quantity < 0 {
		return nil, nil, &domain.ValidationError{Field: "quantity", Message: "debe ser mayor o igual a cero"}
	}

	item, err := uc.store.GetItem(ctx, input.ItemID)
	if err != nil {
		return nil, nil, err
	}
	if item == nil {
		return nil, nil, domain.ErrNotFound
	}

	unlock := uc.locks.Lock(itemIDKey(item.ID))
	defer unlock()

	// releer con el bloqueo tomado
	item, err = uc.store.GetItem(ctx, input.ItemID)
	if err != nil {
		return nil, nil, err
	}
	if item == nil {
		return nil, nil, domain.ErrNotFound
	}

	mov, err := ledger.Record(ledger.MovementInput{
		ItemID:           item.ID,
		PreviousQuantity: item.Quantity,
		Type:             movType,
		Delta:            input.Quantity,
		Reason:           input.Reason,
		ReferenceNumber:  input.ReferenceNumber,
		Notes:            input.Notes,
		CreatedBy:        input.UserID,
		Now:              uc.now(),
	})
	if err != nil {
		return nil, nil, err
	}

	updated, err := uc.store.UpdateStock(ctx, item.ID, mov)
	if err != nil {
		if errors.Is(err, domain.ErrConflict) || errors.Is(err, domain.ErrNotFound) {
			return nil, nil, err
		}
		return nil, nil, &domain.PersistenceError{Op: "update_stock", ItemID: item.ID, Err: err}
	}
	return updated, &mov, nil
}

// RegisterMovementFromRequest adapta el request HTTP al caso de uso.
func (uc *RegisterMovementUseCase) RegisterMovementFromRequest(ctx context.Context, itemID, userID string, in dto.RegisterMovementRequest) (*dto.MovementResultResponse, error) {
	item, mov, err := uc.RegisterMovement(ctx, MovementInputDTO{
		ItemID:          itemID,
		UserID:          userID,
		Type:            in.Type,
		Quantity:        in.Quantity,
		Reason:          in.Reason,
		ReferenceNumber: in.ReferenceNumber,
		Notes:           in.Notes,
	})
	if err != nil {
		return nil, err
	}
	return &dto.MovementResultResponse{Item: ItemResponse(item), Movement: MovementResponse(*mov)}, nil
}

// History devuelve los últimos movimientos del artículo.
func (uc *RegisterMovementUseCase) History(ctx context.Context, itemID string, page dto.PageRequest) (*dto.MovementHistoryResponse, error) {
	if uc.history == nil {
		return nil, fmt.Errorf("historial no disponible: %w", domain.ErrNotFound)
	}
	item, err := uc.store.GetItem(ctx, itemID)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, domain.ErrNotFound
	}
	limit := page.Clamp(defaultHistoryLimit, maxHistoryLimit)
	list, err := uc.history.Movements(ctx, itemID, limit)
	if err != nil {
		return nil, err
	}
	out := &dto.MovementHistoryResponse{
		Items: make([]dto.StockMovementResponse, 0, len(list)),
		Page:  dto.PageResponse{Limit: limit, Returned: len(list)},
	}
	for _, m := range list {
		out.Items = append(out.Items, MovementResponse(*m))
	}
	return out, nil
}
