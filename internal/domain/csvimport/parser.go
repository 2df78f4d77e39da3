// Package csvimport contiene el pipeline puro de importación masiva de inventario:
// lectura del CSV, validación por fila y agregación del lote.
//
// El lector es propio (no encoding/csv) porque el archivo viene de hojas de cálculo
// editadas a mano: se toleran comillas sin cerrar, número variable de columnas y filas
// vacías, y cada registro conserva su número de línea física para el reporte.
package csvimport

import (
	"fmt"
	"strings"

	"github.com/jhoicas/stock-import/internal/domain"
)

// Record una fila de datos del CSV indexada por nombre de columna.
type Record struct {
	Line   int               // número de línea física en el archivo (el encabezado es la primera no vacía)
	Fields map[string]string // columna → valor sin comillas
}

// Get devuelve el valor de la columna o "" si no existe.
func (r Record) Get(col string) string {
	return r.Fields[col]
}

// ParseResult encabezado en orden y registros en el orden del archivo.
type ParseResult struct {
	Header  []string
	Records []Record
}

// Parse convierte texto delimitado por comas en registros ordenados.
// Devuelve *domain.FormatError si no hay encabezado más al menos una fila de datos.
func Parse(text string) (*ParseResult, error) {
	lines := strings.Split(text, "\n")

	headerLine := 0
	var header []string
	var records []Record
	nonBlank := 0

	for i, raw := range lines {
		line := strings.TrimSuffix(raw, "\r")
		if strings.TrimSpace(line) == "" {
			continue
		}
		nonBlank++
		lineNo := i + 1

		if header == nil {
			h, err := parseHeader(line, lineNo)
			if err != nil {
				return nil, err
			}
			header, headerLine = h, lineNo
			continue
		}

		values := SplitLine(line)
		if allEmpty(values) {
			continue
		}
		fields := make(map[string]string, len(header))
		for pos, col := range header {
			if pos < len(values) {
				fields[col] = values[pos]
			} else {
				fields[col] = ""
			}
		}
		records = append(records, Record{Line: lineNo, Fields: fields})
	}

	if nonBlank < 2 || len(records) == 0 {
		return nil, &domain.FormatError{Line: headerLine, Reason: "se requiere encabezado y al menos una fila de datos"}
	}
	return &ParseResult{Header: header, Records: records}, nil
}

func parseHeader(line string, lineNo int) ([]string, error) {
	cols := SplitLine(line)
	seen := make(map[string]bool, len(cols))
	header := make([]string, 0, len(cols))
	for pos, c := range cols {
		name := strings.ToLower(strings.TrimSpace(c))
		if name == "" {
			return nil, &domain.FormatError{Line: lineNo, Reason: fmt.Sprintf("columna sin nombre en la posición %d", pos+1)}
		}
		if seen[name] {
			return nil, &domain.FormatError{Line: lineNo, Reason: fmt.Sprintf("columna duplicada %q", name)}
		}
		seen[name] = true
		header = append(header, name)
	}
	return header, nil
}

// SplitLine separa una línea en campos. Una comilla solo abre un campo entrecomillado
// si aparece al inicio del campo, así "Dell XPS 15, 16GB RAM" queda como un único valor.
// Dentro de comillas "" es una comilla literal. Los campos sin comillas se recortan.
func SplitLine(line string) []string {
	var (
		fields       []string
		cur          strings.Builder
		insideQuotes bool
		quoted       bool // el campo actual empezó con comilla
		closed       bool // ya se cerró la comilla del campo actual
		atStart      = true
	)

	flush := func() {
		v := cur.String()
		if !quoted {
			v = strings.TrimSpace(v)
		}
		fields = append(fields, v)
		cur.Reset()
		quoted, closed, atStart = false, false, true
	}

	for i := 0; i < len(line); i++ {
		c := line[i]
		if insideQuotes {
			if c == '"' {
				if i+1 < len(line) && line[i+1] == '"' {
					cur.WriteByte('"')
					i++
					continue
				}
				insideQuotes, closed = false, true
				continue
			}
			cur.WriteByte(c)
			continue
		}

		switch {
		case c == ',':
			flush()
		case atStart && (c == ' ' || c == '\t'):
			// espacios antes de una posible comilla de apertura
		case atStart && c == '"':
			insideQuotes, quoted, atStart = true, true, false
		case closed && (c == ' ' || c == '\t'):
			// espacios entre la comilla de cierre y la coma
		default:
			atStart = false
			cur.WriteByte(c)
		}
	}
	flush()
	return fields
}

func allEmpty(values []string) bool {
	for _, v := range values {
		if v != "" {
			return false
		}
	}
	return true
}
