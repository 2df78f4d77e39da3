package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/stock-import/internal/domain"
	"github.com/jhoicas/stock-import/internal/domain/entity"
)

func seed(t *testing.T, s *Store, id, sku, productID string, branch, qty int64) *entity.StockItem {
	t.Helper()
	it, err := s.CreateItem(context.Background(), entity.StockItem{
		ID: id, SKU: sku, ProductID: productID, Name: "n", Category: "c", BranchID: branch, Quantity: qty,
	}, nil)
	require.NoError(t, err)
	return it
}

func TestFindItem(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	seed(t, s, "i-1", "MS-1", "P-1", 1, 5)
	seed(t, s, "i-2", "", "P-2", 1, 5)

	it, err := s.FindItem(ctx, 1, "ms-1", "")
	require.NoError(t, err)
	require.NotNil(t, it)
	assert.Equal(t, "i-1", it.ID)

	it, err = s.FindItem(ctx, 1, "", "P-2")
	require.NoError(t, err)
	require.NotNil(t, it)
	assert.Equal(t, "i-2", it.ID)

	it, err = s.FindItem(ctx, 2, "MS-1", "")
	require.NoError(t, err)
	assert.Nil(t, it, "otra sucursal")
}

func TestCreateItem_Duplicates(t *testing.T) {
	s := NewStore()
	seed(t, s, "i-1", "MS-1", "P-1", 1, 5)

	_, err := s.CreateItem(context.Background(), entity.StockItem{ID: "i-2", SKU: "ms-1", ProductID: "P-9", BranchID: 1}, nil)
	assert.ErrorIs(t, err, domain.ErrDuplicate)

	_, err = s.CreateItem(context.Background(), entity.StockItem{ID: "i-3", SKU: "MS-1", ProductID: "P-1", BranchID: 2}, nil)
	assert.NoError(t, err, "mismo SKU en otra sucursal")
}

func TestUpdateStock_StaleRead(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	seed(t, s, "i-1", "MS-1", "P-1", 1, 10)

	mov := entity.StockMovement{ID: "m-1", Type: entity.MovementOutward, Delta: 4, PreviousQuantity: 10, NewQuantity: 6, CreatedAt: time.Now()}
	it, err := s.UpdateStock(ctx, "i-1", mov)
	require.NoError(t, err)
	assert.Equal(t, int64(6), it.Quantity)

	// misma lectura previa: ya no coincide
	_, err = s.UpdateStock(ctx, "i-1", mov)
	assert.ErrorIs(t, err, domain.ErrConflict)

	_, err = s.UpdateStock(ctx, "nope", mov)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	assert.Equal(t, 1, s.MovementCount())
	list, err := s.Movements(ctx, "i-1", 0)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "i-1", list[0].ItemID)
}

func TestListItems_Branch(t *testing.T) {
	s := NewStore()
	seed(t, s, "i-1", "A", "P-1", 1, 1)
	seed(t, s, "i-2", "B", "P-2", 2, 1)
	seed(t, s, "i-3", "C", "P-3", 1, 1)

	all, err := s.ListItems(context.Background(), 0)
	require.NoError(t, err)
	assert.Len(t, all, 3)

	b1, err := s.ListItems(context.Background(), 1)
	require.NoError(t, err)
	require.Len(t, b1, 2)
	assert.Equal(t, "i-1", b1[0].ID)
	assert.Equal(t, "i-3", b1[1].ID)
}
