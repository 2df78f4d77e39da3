package pdf

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/stock-import/internal/application/inventory"
	"github.com/jhoicas/stock-import/internal/domain/csvimport"
	"github.com/jhoicas/stock-import/internal/domain/entity"
)

func TestRenderImportReport(t *testing.T) {
	now := time.Date(2026, 5, 10, 9, 0, 0, 0, time.UTC)
	rep := inventory.ImportReport{
		BatchID: "b-1", Committed: 1, Failed: 1, Skipped: 1, Partial: true,
		StartedAt: now, FinishedAt: now.Add(time.Second),
		Outcomes: []inventory.RowOutcome{
			{Line: 2, SKU: "A-1", Action: inventory.ActionCreated, Status: inventory.RowCommitted,
				Movement: &entity.StockMovement{Type: entity.MovementInward, PreviousQuantity: 0, NewQuantity: 5}},
			{Line: 3, SKU: "A-2", Status: inventory.RowFailed, Err: errors.New("timeout")},
		},
		Invalid: []csvimport.ImportRow{{Line: 4, Errors: []string{"name is required", "quantity must be a non-negative integer"}}},
	}

	b, err := NewReportGenerator().RenderImportReport(context.Background(), rep)
	require.NoError(t, err)
	require.Greater(t, len(b), 4)
	assert.Equal(t, "%PDF", string(b[:4]))
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "abc", truncate("abc", 5))
	assert.Equal(t, "ab…", truncate("abcdef", 3))
	assert.Equal(t, "ñá…", truncate("ñáéíó", 3))
}
