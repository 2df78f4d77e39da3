// Package xlsx exporta e importa inventario en hojas de cálculo Excel con el mismo esquema del CSV.
package xlsx

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/jhoicas/stock-import/internal/domain"
	"github.com/jhoicas/stock-import/internal/domain/csvimport"
	"github.com/jhoicas/stock-import/internal/domain/entity"
)

const sheetName = "Inventario"

// Spreadsheet implementa inventory.SpreadsheetWriter con excelize.
type Spreadsheet struct{}

// New construye el adaptador.
func New() *Spreadsheet { return &Spreadsheet{} }

// WriteItems escribe una hoja con encabezado y una fila por artículo.
func (Spreadsheet) WriteItems(w io.Writer, items []*entity.StockItem) error {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	if err := f.SetSheetName(f.GetSheetName(f.GetActiveSheetIndex()), sheetName); err != nil {
		return fmt.Errorf("xlsx: renombrar hoja: %w", err)
	}

	header := make([]interface{}, len(csvimport.ExportColumns))
	for i, c := range csvimport.ExportColumns {
		header[i] = c
	}
	if err := f.SetSheetRow(sheetName, "A1", &header); err != nil {
		return fmt.Errorf("xlsx: encabezado: %w", err)
	}

	for i, it := range items {
		values := csvimport.ExportRow(it)
		row := make([]interface{}, len(values))
		for j, v := range values {
			row[j] = v
		}
		// cantidades y sucursal como número para que la hoja permita sumar
		row[indexOf(csvimport.ColQuantity)] = it.Quantity
		row[indexOf(csvimport.ColBranchID)] = it.BranchID

		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return fmt.Errorf("xlsx: celda: %w", err)
		}
		if err := f.SetSheetRow(sheetName, cell, &row); err != nil {
			return fmt.Errorf("xlsx: fila %d: %w", i+2, err)
		}
	}

	if err := f.SetPanes(sheetName, &excelize.Panes{Freeze: true, YSplit: 1, TopLeftCell: "A2", ActivePane: "bottomLeft"}); err != nil {
		return fmt.Errorf("xlsx: panes: %w", err)
	}
	return f.Write(w)
}

// ToCSV convierte la primera hoja de un libro en texto CSV para el mismo pipeline de importación.
// Las filas vacías se conservan como líneas vacías, así el número de línea coincide con la fila de Excel.
func ToCSV(r io.Reader) ([]byte, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, &domain.FormatError{Reason: "archivo xlsx ilegible: " + err.Error()}
	}
	defer func() { _ = f.Close() }()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, &domain.FormatError{Reason: "el libro no tiene hojas"}
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, &domain.FormatError{Reason: err.Error()}
	}

	var buf bytes.Buffer
	for _, row := range rows {
		if len(row) == 0 {
			buf.WriteString("\n")
			continue
		}
		for i := range row {
			row[i] = strings.TrimSpace(row[i])
		}
		buf.WriteString(csvimport.JoinLine(row))
	}
	return buf.Bytes(), nil
}

func indexOf(col string) int {
	for i, c := range csvimport.ExportColumns {
		if c == col {
			return i
		}
	}
	return -1
}
