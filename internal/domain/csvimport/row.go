package csvimport

import "github.com/jhoicas/stock-import/internal/domain/entity"

// Classification resultado de validar una fila.
type Classification string

const (
	ClassValid   Classification = "valid"
	ClassWarning Classification = "warning"
	ClassError   Classification = "error"
)

// ImportRow fila validada. La produce el Validator una sola vez y no se modifica después;
// las correcciones (p. ej. product_id generado) ya vienen incluidas en Values.
type ImportRow struct {
	Line           int
	Values         map[string]string
	Classification Classification
	Errors         []string
	Warnings       []string
	// Item borrador tipado del artículo; nil cuando la fila tiene errores.
	Item *entity.StockItem
	// MovementType tipo pedido en la columna movement_type ("" si no vino).
	MovementType entity.MovementType
}

// Value devuelve el valor de una columna de la fila.
func (r ImportRow) Value(col string) string {
	return r.Values[col]
}

// HasErrors indica si la fila quedó excluida del commit.
func (r ImportRow) HasErrors() bool {
	return len(r.Errors) > 0
}

func classify(errs, warns []string) Classification {
	switch {
	case len(errs) > 0:
		return ClassError
	case len(warns) > 0:
		return ClassWarning
	default:
		return ClassValid
	}
}
