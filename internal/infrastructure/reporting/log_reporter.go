// Package reporting publica los resúmenes de importación en el log estructurado.
package reporting

import (
	"context"

	"github.com/jhoicas/stock-import/internal/application/inventory"
	"github.com/jhoicas/stock-import/internal/domain/csvimport"
	"github.com/jhoicas/stock-import/pkg/logger"
)

// maxDetail filas de detalle que se escriben por lote.
const maxDetail = 50

// LogReporter implementa inventory.BatchReporter escribiendo una línea por fila con error.
type LogReporter struct {
	log *logger.Logger
}

// NewLogReporter construye el reporter.
func NewLogReporter(log *logger.Logger) *LogReporter {
	return &LogReporter{log: log}
}

func (r *LogReporter) ReportValidation(_ context.Context, batchID string, res csvimport.BatchResult) {
	l := r.log.WithBatch(batchID)
	for i, row := range res.Errors {
		if i == maxDetail {
			l.Warn().Int("omitted", len(res.Errors)-maxDetail).Msg("más filas con error")
			break
		}
		l.Warn().Int("line", row.Line).Strs("errors", row.Errors).Msg("fila inválida")
	}
	for i, row := range res.Warnings {
		if i == maxDetail {
			break
		}
		l.Debug().Int("line", row.Line).Strs("warnings", row.Warnings).Msg("fila con advertencias")
	}
}

func (r *LogReporter) ReportCommit(_ context.Context, rep inventory.ImportReport) {
	l := r.log.WithBatch(rep.BatchID)
	for i, o := range rep.FailedRows() {
		if i == maxDetail {
			l.Warn().Int("omitted", rep.Failed-maxDetail).Msg("más filas fallidas")
			break
		}
		l.Error().Int("line", o.Line).Str("sku", o.SKU).Str("product_id", o.ProductID).Str("error", o.Error()).Msg("fila fallida")
	}
	l.Info().Str("summary", rep.Summary()).Msg("reporte de importación")
}
