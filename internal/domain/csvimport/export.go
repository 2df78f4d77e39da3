package csvimport

import (
	"io"
	"strconv"
	"strings"

	"github.com/jhoicas/stock-import/internal/domain/entity"
)

// ExportRow convierte un artículo en los valores de ExportColumns.
func ExportRow(item *entity.StockItem) []string {
	expiry := ""
	if item.ExpiryDate != nil {
		expiry = item.ExpiryDate.Format(DateLayout)
	}
	return []string{
		item.ProductID,
		item.SKU,
		item.Name,
		item.Category,
		item.Supplier,
		strconv.FormatInt(item.Quantity, 10),
		item.PricePerUnit.String(),
		item.BatchNo,
		expiry,
		strconv.Itoa(item.LowStockThreshold),
		strconv.FormatInt(item.BranchID, 10),
	}
}

// WriteCSV escribe los artículos con el mismo esquema que acepta Parse.
func WriteCSV(w io.Writer, items []*entity.StockItem) error {
	if _, err := io.WriteString(w, JoinLine(ExportColumns)); err != nil {
		return err
	}
	for _, it := range items {
		if _, err := io.WriteString(w, JoinLine(ExportRow(it))); err != nil {
			return err
		}
	}
	return nil
}

// lineBreaks saltos de línea dentro de un valor; los registros son de una sola línea.
var lineBreaks = strings.NewReplacer("\r\n", " ", "\n", " ", "\r", " ")

// JoinLine arma una línea CSV terminada en \n que SplitLine vuelve a leer igual.
// Un salto de línea dentro de un valor (p. ej. Alt+Enter en una celda) se reemplaza por un espacio.
func JoinLine(values []string) string {
	quoted := make([]string, len(values))
	for i, v := range values {
		quoted[i] = quoteField(lineBreaks.Replace(v))
	}
	return strings.Join(quoted, ",") + "\n"
}

// quoteField entrecomilla solo cuando el valor lo necesita para que SplitLine lo lea igual.
func quoteField(v string) string {
	if v == "" {
		return v
	}
	if strings.ContainsAny(v, ",\"") || strings.TrimSpace(v) != v || v[0] == '"' {
		return `"` + strings.ReplaceAll(v, `"`, `""`) + `"`
	}
	return v
}
