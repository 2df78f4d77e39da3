// Package memory implementa el colaborador de persistencia en memoria.
// Se usa en modo --dry-run del CLI y en pruebas.
package memory

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/jhoicas/stock-import/internal/application/inventory"
	"github.com/jhoicas/stock-import/internal/domain"
	"github.com/jhoicas/stock-import/internal/domain/entity"
)

var _ inventory.Persistence = (*Store)(nil)

// Store guarda artículos y movimientos en mapas protegidos por un mutex.
type Store struct {
	mu        sync.RWMutex
	items     map[string]entity.StockItem
	order     []string
	movements []entity.StockMovement
}

// NewStore crea un almacenamiento vacío.
func NewStore() *Store {
	return &Store{items: make(map[string]entity.StockItem)}
}

// Ping siempre responde.
func (s *Store) Ping(context.Context) error { return nil }

// FindItem busca por sucursal y SKU, o por product_id si sku está vacío.
func (s *Store) FindItem(_ context.Context, branchID int64, sku, productID string) (*entity.StockItem, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, id := range s.order {
		it := s.items[id]
		if it.BranchID != branchID {
			continue
		}
		if sku != "" && strings.EqualFold(it.SKU, sku) {
			return &it, nil
		}
		if sku == "" && it.ProductID == productID {
			return &it, nil
		}
	}
	return nil, nil
}

// GetItem obtiene un artículo por ID; nil si no existe.
func (s *Store) GetItem(_ context.Context, id string) (*entity.StockItem, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	it, ok := s.items[id]
	if !ok {
		return nil, nil
	}
	return &it, nil
}

// CreateItem inserta el artículo y su movimiento de apertura.
func (s *Store) CreateItem(_ context.Context, item entity.StockItem, opening *entity.StockMovement) (*entity.StockItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if item.ID == "" || item.Quantity < 0 {
		return nil, domain.ErrInvalidInput
	}
	if _, ok := s.items[item.ID]; ok {
		return nil, domain.ErrDuplicate
	}
	for _, other := range s.items {
		if other.BranchID != item.BranchID {
			continue
		}
		if other.ProductID == item.ProductID || (item.SKU != "" && strings.EqualFold(other.SKU, item.SKU)) {
			return nil, fmt.Errorf("insert stock item: %w", domain.ErrDuplicate)
		}
	}
	now := time.Now()
	if item.CreatedAt.IsZero() {
		item.CreatedAt = now
	}
	item.UpdatedAt = item.CreatedAt
	s.items[item.ID] = item
	s.order = append(s.order, item.ID)
	if opening != nil {
		s.movements = append(s.movements, *opening)
	}
	return &item, nil
}

// UpdateStock aplica el movimiento si la cantidad guardada coincide con la leída.
func (s *Store) UpdateStock(_ context.Context, itemID string, movement entity.StockMovement) (*entity.StockItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	it, ok := s.items[itemID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	if movement.NewQuantity < 0 {
		return nil, domain.ErrInvalidInput
	}
	if it.Quantity != movement.PreviousQuantity {
		return nil, fmt.Errorf("cantidad actual %d, esperada %d: %w", it.Quantity, movement.PreviousQuantity, domain.ErrConflict)
	}
	movement.ItemID = itemID
	s.movements = append(s.movements, movement)
	it.Quantity = movement.NewQuantity
	it.UpdatedAt = time.Now()
	s.items[itemID] = it
	return &it, nil
}

// ListItems lista en orden de creación, filtrando por sucursal (0 = todas).
func (s *Store) ListItems(_ context.Context, branchID int64) ([]*entity.StockItem, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	list := make([]*entity.StockItem, 0, len(s.order))
	for _, id := range s.order {
		it := s.items[id]
		if branchID > 0 && it.BranchID != branchID {
			continue
		}
		list = append(list, &it)
	}
	return list, nil
}

// Movements devuelve los movimientos de un artículo, más recientes primero.
func (s *Store) Movements(_ context.Context, itemID string, limit int) ([]*entity.StockMovement, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var list []*entity.StockMovement
	for i := range s.movements {
		if s.movements[i].ItemID == itemID {
			m := s.movements[i]
			list = append(list, &m)
		}
	}
	sort.SliceStable(list, func(i, j int) bool { return list[i].CreatedAt.After(list[j].CreatedAt) })
	if limit > 0 && len(list) > limit {
		list = list[:limit]
	}
	return list, nil
}

// MovementCount total de movimientos registrados.
func (s *Store) MovementCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.movements)
}
