package inventory

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/jhoicas/stock-import/internal/domain"
	"github.com/jhoicas/stock-import/internal/domain/csvimport"
	"github.com/jhoicas/stock-import/internal/domain/entity"
)

// Formatos de exportación soportados.
const (
	FormatCSV  = "csv"
	FormatXLSX = "xlsx"
)

// SpreadsheetWriter escribe artículos en una hoja de cálculo con el mismo esquema del CSV.
type SpreadsheetWriter interface {
	WriteItems(w io.Writer, items []*entity.StockItem) error
}

// ExportUseCase exporta el inventario de una sucursal. El CSV generado se puede volver a importar.
type ExportUseCase struct {
	store Persistence
	xlsx  SpreadsheetWriter
}

// NewExportUseCase construye el caso de uso; xlsx puede ser nil (solo CSV).
func NewExportUseCase(store Persistence, xlsx SpreadsheetWriter) *ExportUseCase {
	return &ExportUseCase{store: store, xlsx: xlsx}
}

// ParseFormat normaliza el formato pedido; vacío = csv.
func ParseFormat(s string) (string, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", FormatCSV:
		return FormatCSV, nil
	case FormatXLSX:
		return FormatXLSX, nil
	}
	return "", &domain.ValidationError{Field: "format", Value: s, Message: "formato no soportado (csv, xlsx)"}
}

// Export escribe los artículos de la sucursal (0 = todas) en el formato indicado.
func (uc *ExportUseCase) Export(ctx context.Context, w io.Writer, branchID int64, format string) (int, error) {
	format, err := ParseFormat(format)
	if err != nil {
		return 0, err
	}
	if format == FormatXLSX && uc.xlsx == nil {
		return 0, fmt.Errorf("exportación xlsx no configurada: %w", domain.ErrInvalidInput)
	}
	items, err := uc.store.ListItems(ctx, branchID)
	if err != nil {
		return 0, &domain.PersistenceError{Op: "list_items", Err: err}
	}
	switch format {
	case FormatXLSX:
		err = uc.xlsx.WriteItems(w, items)
	default:
		err = csvimport.WriteCSV(w, items)
	}
	if err != nil {
		return 0, err
	}
	return len(items), nil
}
