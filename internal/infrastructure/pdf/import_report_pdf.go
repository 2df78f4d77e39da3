// Package pdf genera el reporte descargable de una importación masiva.
//
// Layout de la página A4:
//
//	┌─────────────────────────────────────────────────────────────┐
//	│  HEADER: Título + lote           │  Fecha + QR del lote      │
//	│  ─────────────────────────────────────────────────────────  │
//	│  RESUMEN: Confirmadas / Omitidas / Fallidas / Parcial        │
//	│  ─────────────────────────────────────────────────────────  │
//	│  TABLA: Línea | SKU | Producto | Acción | Cantidad | Estado  │
//	│  ─────────────────────────────────────────────────────────  │
//	│  FILAS INVÁLIDAS: Línea + mensajes                           │
//	└─────────────────────────────────────────────────────────────┘
package pdf

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	maroto "github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/code"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/line"
	"github.com/johnfercher/maroto/v2/pkg/components/row"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/consts/pagesize"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/props"

	"github.com/jhoicas/stock-import/internal/application/inventory"
)

// ── Paleta de colores ─────────────────────────────────────────────────────────

var (
	colorPrimary = &props.Color{Red: 0, Green: 70, Blue: 127}
	colorGray    = &props.Color{Red: 100, Green: 100, Blue: 100}
	colorRed     = &props.Color{Red: 170, Green: 30, Blue: 30}
)

// maxErrorRows filas inválidas listadas; el resto se resume.
const maxErrorRows = 200

// ── Generator ─────────────────────────────────────────────────────────────────

// ReportGenerator implementa inventory.ReportRenderer usando Maroto v2.
type ReportGenerator struct{}

// NewReportGenerator construye el generador.
func NewReportGenerator() *ReportGenerator { return &ReportGenerator{} }

// RenderImportReport genera el PDF y devuelve sus bytes.
func (g *ReportGenerator) RenderImportReport(_ context.Context, rep inventory.ImportReport) ([]byte, error) {
	cfg := config.NewBuilder().
		WithPageSize(pagesize.A4).
		WithLeftMargin(10).WithRightMargin(10).
		WithTopMargin(10).WithBottomMargin(10).
		WithDefaultFont(&props.Font{Family: "helvetica", Size: 9}).
		WithTitle("Reporte de importación de inventario", true).
		Build()

	m := maroto.New(cfg)

	m.AddRows(headerRow(rep))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.5}))
	m.AddRows(summaryRow(rep))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))

	m.AddRows(tableHeaderRow())
	m.AddRows(outcomeRows(rep.Outcomes)...)

	if len(rep.Invalid) > 0 {
		m.AddRows(line.NewRow(3))
		m.AddRows(line.NewRow(1, props.Line{Color: colorGray, Thickness: 0.3}))
		m.AddRows(invalidRows(rep)...)
	}

	doc, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("pdf: generar documento: %w", err)
	}
	return doc.GetBytes(), nil
}

// ── Secciones ─────────────────────────────────────────────────────────────────

func headerRow(rep inventory.ImportReport) core.Row {
	fecha := rep.FinishedAt.Format("02/01/2006 15:04")
	return row.New(24).Add(
		col.New(8).Add(
			text.New("REPORTE DE IMPORTACIÓN", props.Text{
				Style: fontstyle.Bold, Size: 13, Color: colorPrimary, Top: 1,
			}),
			text.New("Lote: "+rep.BatchID, props.Text{Size: 8, Top: 9, Color: colorGray}),
			text.New("Fecha: "+fecha, props.Text{Size: 8, Top: 14, Color: colorGray}),
		),
		col.New(4).Add(code.NewQr(rep.BatchID, props.Rect{Percent: 90, Center: true})),
	)
}

func summaryRow(rep inventory.ImportReport) core.Row {
	cell := func(label string, v int, c *props.Color) core.Col {
		return col.New(3).Add(
			text.New(label, props.Text{Style: fontstyle.Bold, Size: 8, Align: align.Center, Color: colorGray, Top: 1}),
			text.New(strconv.Itoa(v), props.Text{Style: fontstyle.Bold, Size: 14, Align: align.Center, Color: c, Top: 6}),
		)
	}
	estado := "COMPLETO"
	if rep.Partial {
		estado = "PARCIAL"
	} else if rep.Committed == 0 {
		estado = "SIN CAMBIOS"
	}
	return row.New(16).Add(
		cell("Confirmadas", rep.Committed, colorPrimary),
		cell("Omitidas", rep.Skipped, colorGray),
		cell("Fallidas", rep.Failed, colorRed),
		col.New(3).Add(
			text.New("Estado", props.Text{Style: fontstyle.Bold, Size: 8, Align: align.Center, Color: colorGray, Top: 1}),
			text.New(estado, props.Text{Style: fontstyle.Bold, Size: 11, Align: align.Center, Top: 7}),
		),
	)
}

func tableHeaderRow() core.Row {
	h := func(label string, size int, a align.Type) core.Col {
		return col.New(size).Add(text.New(label, props.Text{
			Style: fontstyle.Bold, Size: 8, Align: a, Color: colorPrimary, Top: 2, Left: 1, Right: 1,
		}))
	}
	return row.New(8).Add(
		h("Línea", 1, align.Center),
		h("SKU / Producto", 4, align.Left),
		h("Acción", 2, align.Center),
		h("Anterior", 1, align.Right),
		h("Nueva", 1, align.Right),
		h("Estado", 3, align.Left),
	)
}

func outcomeRows(outcomes []inventory.RowOutcome) []core.Row {
	result := make([]core.Row, 0, len(outcomes))
	for _, o := range outcomes {
		prev, next := "-", "-"
		if o.Movement != nil {
			prev = strconv.FormatInt(o.Movement.PreviousQuantity, 10)
			next = strconv.FormatInt(o.Movement.NewQuantity, 10)
		}
		status := "OK"
		statusColor := colorPrimary
		if o.Status == inventory.RowFailed {
			status = truncate(o.Error(), 60)
			statusColor = colorRed
		}
		result = append(result, row.New(6).Add(
			col.New(1).Add(text.New(strconv.Itoa(o.Line), props.Text{Size: 7.5, Align: align.Center, Top: 1})),
			col.New(4).Add(text.New(nonEmpty(o.SKU, o.ProductID), props.Text{Size: 7.5, Top: 1, Left: 1})),
			col.New(2).Add(text.New(nonEmpty(string(o.Action), "-"), props.Text{Size: 7.5, Align: align.Center, Top: 1})),
			col.New(1).Add(text.New(prev, props.Text{Size: 7.5, Align: align.Right, Top: 1, Right: 1})),
			col.New(1).Add(text.New(next, props.Text{Size: 7.5, Align: align.Right, Top: 1, Right: 1})),
			col.New(3).Add(text.New(status, props.Text{Size: 7, Top: 1, Left: 1, Color: statusColor})),
		))
	}
	return result
}

func invalidRows(rep inventory.ImportReport) []core.Row {
	rows := []core.Row{
		row.New(6).Add(col.New(12).Add(text.New("FILAS INVÁLIDAS (NO SE IMPORTARON)", props.Text{
			Style: fontstyle.Bold, Size: 8, Color: colorRed, Top: 1,
		}))),
	}
	for i, r := range rep.Invalid {
		if i == maxErrorRows {
			rows = append(rows, row.New(5).Add(col.New(12).Add(text.New(
				fmt.Sprintf("… y %d filas más", len(rep.Invalid)-maxErrorRows),
				props.Text{Size: 7, Color: colorGray, Top: 1},
			))))
			break
		}
		rows = append(rows, row.New(5).Add(
			col.New(1).Add(text.New(strconv.Itoa(r.Line), props.Text{Size: 7, Align: align.Center, Top: 1})),
			col.New(11).Add(text.New(truncate(strings.Join(r.Errors, "; "), 140), props.Text{Size: 7, Top: 1, Left: 1})),
		))
	}
	return rows
}

// ── helpers ───────────────────────────────────────────────────────────────────

func nonEmpty(s, fallback string) string {
	if s != "" {
		return s
	}
	return fallback
}

// truncate corta s en max runas, agregando "…".
func truncate(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max-1]) + "…"
}
