package csvimport_test

import (
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/stock-import/internal/domain/csvimport"
	"github.com/jhoicas/stock-import/internal/domain/entity"
)

func TestWriteCSV_SeReimportaIgual(t *testing.T) {
	exp := time.Date(2027, 1, 31, 0, 0, 0, 0, time.UTC)
	items := []*entity.StockItem{
		{
			ProductID: "P-1", SKU: "SKU-1", Name: "Dell XPS 15, 16GB RAM", Category: "Electronics",
			Supplier: `ACME "Norte"`, Quantity: 100, PricePerUnit: decimal.RequireFromString("1999.99"),
			BatchNo: "L1", ExpiryDate: &exp, LowStockThreshold: 5, BranchID: 2,
		},
		{ProductID: "P-2", Name: "Cable", Category: "Accesorios", Quantity: 0, BranchID: 1, LowStockThreshold: 10},
	}

	var sb strings.Builder
	require.NoError(t, csvimport.WriteCSV(&sb, items))

	res, err := csvimport.Parse(sb.String())
	require.NoError(t, err)
	assert.Equal(t, csvimport.ExportColumns, res.Header)

	rows := newTestValidator().ValidateAll(res.Records)
	require.Len(t, rows, 2)
	for i, row := range rows {
		require.NotEqual(t, csvimport.ClassError, row.Classification, row.Errors)
		got, want := row.Item, items[i]
		assert.Equal(t, want.ProductID, got.ProductID)
		assert.Equal(t, want.SKU, got.SKU)
		assert.Equal(t, want.Name, got.Name)
		assert.Equal(t, want.Supplier, got.Supplier)
		assert.Equal(t, want.Quantity, got.Quantity)
		assert.True(t, want.PricePerUnit.Equal(got.PricePerUnit))
		assert.Equal(t, want.LowStockThreshold, got.LowStockThreshold)
		assert.Equal(t, want.BranchID, got.BranchID)
	}
	assert.Equal(t, "2027-01-31", rows[0].Value("expiry_date"))
}

func TestWriteCSV_SaltoDeLineaEnValor(t *testing.T) {
	items := []*entity.StockItem{
		{ProductID: "P-1", Name: "Monitor\r\n27 pulgadas", Category: "Pantallas", Supplier: "ACME\nNorte", Quantity: 4, BranchID: 1},
		{ProductID: "P-2", Name: "Cable", Category: "Accesorios", Quantity: 1, BranchID: 1},
	}

	var sb strings.Builder
	require.NoError(t, csvimport.WriteCSV(&sb, items))
	assert.Equal(t, 3, strings.Count(sb.String(), "\n"), "un registro por línea")

	res, err := csvimport.Parse(sb.String())
	require.NoError(t, err)
	require.Len(t, res.Records, 2)

	rows := newTestValidator().ValidateAll(res.Records)
	require.NotEqual(t, csvimport.ClassError, rows[0].Classification, rows[0].Errors)
	assert.Equal(t, "Monitor 27 pulgadas", rows[0].Item.Name)
	assert.Equal(t, "ACME Norte", rows[0].Item.Supplier)
	assert.Equal(t, int64(4), rows[0].Item.Quantity)
	assert.Equal(t, "Cable", rows[1].Item.Name)
}
