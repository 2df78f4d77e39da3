// Package metrics expone contadores Prometheus de la importación masiva.
package metrics

import (
	"context"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/jhoicas/stock-import/internal/application/inventory"
	"github.com/jhoicas/stock-import/internal/domain/csvimport"
)

const namespace = "stock_import"

var _ inventory.BatchReporter = (*ImportMetrics)(nil)

// ImportMetrics implementa inventory.BatchReporter registrando contadores.
type ImportMetrics struct {
	validatedRows *prometheus.CounterVec
	committedRows *prometheus.CounterVec
	batches       *prometheus.CounterVec
	movements     *prometheus.CounterVec
	commitSeconds prometheus.Histogram
}

// NewImportMetrics crea y registra los colectores en reg.
func NewImportMetrics(reg prometheus.Registerer) *ImportMetrics {
	m := &ImportMetrics{
		validatedRows: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "validated_rows_total",
			Help:      "Filas validadas por clasificación.",
		}, []string{"classification"}),
		committedRows: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "commit_rows_total",
			Help:      "Filas procesadas en commit por resultado.",
		}, []string{"status"}),
		batches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "batches_total",
			Help:      "Lotes confirmados por resultado (complete, partial, failed).",
		}, []string{"result"}),
		movements: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "ledger_movements_total",
			Help:      "Movimientos de stock registrados por tipo.",
		}, []string{"type"}),
		commitSeconds: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "commit_duration_seconds",
			Help:      "Duración del commit de un lote.",
			Buckets:   prometheus.ExponentialBuckets(0.05, 2, 10),
		}),
	}
	reg.MustRegister(m.validatedRows, m.committedRows, m.batches, m.movements, m.commitSeconds)
	return m
}

func (m *ImportMetrics) ReportValidation(_ context.Context, _ string, res csvimport.BatchResult) {
	m.validatedRows.WithLabelValues(string(csvimport.ClassValid)).Add(float64(res.ValidCount - res.WarningCount))
	m.validatedRows.WithLabelValues(string(csvimport.ClassWarning)).Add(float64(res.WarningCount))
	m.validatedRows.WithLabelValues(string(csvimport.ClassError)).Add(float64(res.ErrorCount))
}

func (m *ImportMetrics) ReportCommit(_ context.Context, r inventory.ImportReport) {
	m.committedRows.WithLabelValues(string(inventory.RowCommitted)).Add(float64(r.Committed))
	m.committedRows.WithLabelValues(string(inventory.RowFailed)).Add(float64(r.Failed))
	m.committedRows.WithLabelValues("skipped").Add(float64(r.Skipped))

	switch {
	case r.Partial:
		m.batches.WithLabelValues("partial").Inc()
	case r.Committed == 0:
		m.batches.WithLabelValues("failed").Inc()
	default:
		m.batches.WithLabelValues("complete").Inc()
	}
	for _, mov := range r.Movements() {
		m.movements.WithLabelValues(string(mov.Type)).Inc()
	}
	if !r.FinishedAt.IsZero() {
		m.commitSeconds.Observe(r.FinishedAt.Sub(r.StartedAt).Seconds())
	}
}

// ObserveMovement cuenta un movimiento registrado fuera de una importación.
func (m *ImportMetrics) ObserveMovement(movementType string) {
	m.movements.WithLabelValues(movementType).Inc()
}
