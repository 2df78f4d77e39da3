package inventory

import (
	"fmt"
	"time"

	"github.com/jhoicas/stock-import/internal/domain/csvimport"
	"github.com/jhoicas/stock-import/internal/domain/entity"
)

// RowStatus resultado de persistir una fila válida.
type RowStatus string

const (
	RowCommitted RowStatus = "committed"
	RowFailed    RowStatus = "failed"
)

// RowAction qué hizo el commit con el artículo.
type RowAction string

const (
	ActionCreated RowAction = "created"
	ActionUpdated RowAction = "updated"
)

// RowOutcome resultado del commit de una fila válida o con advertencias.
type RowOutcome struct {
	Line      int
	SKU       string
	ProductID string
	ItemID    string
	Action    RowAction
	Status    RowStatus
	Quantity  int64                 // cantidad final del artículo cuando Status = committed
	Movement  *entity.StockMovement // movimiento calculado; nil si no hubo cambio de stock
	Err       error
}

// Error texto del fallo o "".
func (o RowOutcome) Error() string {
	if o.Err == nil {
		return ""
	}
	return o.Err.Error()
}

// ImportReport reporte final de un lote confirmado.
type ImportReport struct {
	BatchID    string
	State      ImportState
	StartedAt  time.Time
	FinishedAt time.Time
	Committed  int
	Skipped    int // filas con error de validación, nunca se intentan
	Failed     int
	Partial    bool
	Outcomes   []RowOutcome      // en el orden del archivo
	Invalid    []csvimport.ImportRow
	Warnings   []csvimport.ImportRow
}

func newImportReport(batchID string, batch csvimport.BatchResult, outcomes []RowOutcome, started, finished time.Time) ImportReport {
	r := ImportReport{
		BatchID:    batchID,
		State:      StateDone,
		StartedAt:  started,
		FinishedAt: finished,
		Skipped:    batch.ErrorCount,
		Outcomes:   outcomes,
		Invalid:    batch.Errors,
		Warnings:   batch.Warnings,
	}
	for _, o := range outcomes {
		if o.Status == RowCommitted {
			r.Committed++
		} else {
			r.Failed++
		}
	}
	r.Partial = r.Failed > 0 && r.Committed > 0
	return r
}

// Movements movimientos registrados por las filas confirmadas.
func (r ImportReport) Movements() []entity.StockMovement {
	var list []entity.StockMovement
	for _, o := range r.Outcomes {
		if o.Status == RowCommitted && o.Movement != nil {
			list = append(list, *o.Movement)
		}
	}
	return list
}

// FailedRows filas que fallaron al persistir.
func (r ImportReport) FailedRows() []RowOutcome {
	var list []RowOutcome
	for _, o := range r.Outcomes {
		if o.Status == RowFailed {
			list = append(list, o)
		}
	}
	return list
}

// Summary línea corta para logs y CLI.
func (r ImportReport) Summary() string {
	s := fmt.Sprintf("committed=%d skipped=%d failed=%d", r.Committed, r.Skipped, r.Failed)
	if r.Partial {
		s += " (parcial)"
	}
	return s
}
