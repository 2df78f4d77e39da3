package xlsx

import (
	"bytes"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/jhoicas/stock-import/internal/domain"
	"github.com/jhoicas/stock-import/internal/domain/csvimport"
	"github.com/jhoicas/stock-import/internal/domain/entity"
)

func sampleItems() []*entity.StockItem {
	exp := time.Date(2027, 1, 31, 0, 0, 0, 0, time.UTC)
	return []*entity.StockItem{
		{ProductID: "PRD-1", SKU: "DX-15", Name: "Dell XPS 15, 16GB RAM", Category: "Portátiles", Quantity: 3,
			PricePerUnit: decimal.RequireFromString("1500.00"), BranchID: 1, LowStockThreshold: 2, ExpiryDate: &exp},
		{ProductID: "PRD-2", SKU: "MS-1", Name: "Mouse", Category: "Accesorios", Quantity: 40,
			PricePerUnit: decimal.RequireFromString("25.5"), BranchID: 1, LowStockThreshold: 10},
	}
}

func TestWriteItems(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, New().WriteItems(&buf, sampleItems()))

	f, err := excelize.OpenReader(bytes.NewReader(buf.Bytes()))
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(sheetName)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, csvimport.ExportColumns, rows[0])
	assert.Equal(t, "PRD-1", rows[1][0])
	assert.Equal(t, "Dell XPS 15, 16GB RAM", rows[1][2])
}

func TestToCSV_RoundTrip(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, New().WriteItems(&buf, sampleItems()))

	text, err := ToCSV(bytes.NewReader(buf.Bytes()))
	require.NoError(t, err)

	res, err := csvimport.Parse(string(text))
	require.NoError(t, err)
	require.Len(t, res.Records, 2)
	assert.Equal(t, "Dell XPS 15, 16GB RAM", res.Records[0].Get(csvimport.ColName))
	assert.Equal(t, "40", res.Records[1].Get(csvimport.ColQuantity))
	assert.Equal(t, "2027-01-31", res.Records[0].Get(csvimport.ColExpiryDate))
}

func TestToCSV_NotAWorkbook(t *testing.T) {
	_, err := ToCSV(bytes.NewReader([]byte("name,category\n")))
	assert.ErrorIs(t, err, domain.ErrInvalidFormat)
}
