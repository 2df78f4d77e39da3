package inventory_test

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/stock-import/internal/application/inventory"
	"github.com/jhoicas/stock-import/internal/domain"
	"github.com/jhoicas/stock-import/internal/infrastructure/memory"
)

func TestExport_CSVRoundTrip(t *testing.T) {
	src := memory.NewStore()
	uc := newUseCase(src, 2)
	s := loadSession(t, uc, []byte(
		"name,category,quantity,branch_id,sku,supplier,price_per_unit,expiry_date\n"+
			"\"Dell XPS 15, 16GB RAM\",Portátiles,3,1,DX-15,Dell,1500.00,2027-01-31\n"+
			"Mouse,Accesorios,40,1,MS-1,\"Logi \"\"Pro\"\"\",25.5,\n"))
	_, err := s.Commit(context.Background())
	require.NoError(t, err)

	var buf bytes.Buffer
	n, err := inventory.NewExportUseCase(src, nil).Export(context.Background(), &buf, 1, "")
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	dst := memory.NewStore()
	s2 := loadSession(t, newUseCase(dst, 2), buf.Bytes())
	b, _ := s2.Batch()
	assert.Equal(t, 2, b.ValidCount)
	_, err = s2.Commit(context.Background())
	require.NoError(t, err)

	want, _ := src.ListItems(context.Background(), 1)
	got, _ := dst.ListItems(context.Background(), 1)
	require.Len(t, got, len(want))
	for i := range want {
		assert.Equal(t, want[i].ProductID, got[i].ProductID)
		assert.Equal(t, want[i].SKU, got[i].SKU)
		assert.Equal(t, want[i].Name, got[i].Name)
		assert.Equal(t, want[i].Supplier, got[i].Supplier)
		assert.Equal(t, want[i].Quantity, got[i].Quantity)
		assert.True(t, want[i].PricePerUnit.Equal(got[i].PricePerUnit))
		assert.Equal(t, want[i].ExpiryDate != nil, got[i].ExpiryDate != nil)
	}
}

func TestExport_UnsupportedFormat(t *testing.T) {
	var buf bytes.Buffer
	_, err := inventory.NewExportUseCase(memory.NewStore(), nil).Export(context.Background(), &buf, 0, "pdf")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = inventory.NewExportUseCase(memory.NewStore(), nil).Export(context.Background(), &buf, 0, "xlsx")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}
