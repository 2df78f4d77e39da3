package csvimport

import (
	"bytes"
	"fmt"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// DecodeInput convierte el archivo subido a texto UTF-8.
// Quita el BOM que agrega Excel y, si el contenido no es UTF-8 válido, lo interpreta como ISO-8859-1.
func DecodeInput(raw []byte) (string, error) {
	if utf8.Valid(raw) {
		out, _, err := transform.Bytes(unicode.BOMOverride(unicode.UTF8.NewDecoder()), raw)
		if err != nil {
			return "", fmt.Errorf("decodificar UTF-8: %w", err)
		}
		return string(out), nil
	}
	out, err := charmap.ISO8859_1.NewDecoder().Bytes(bytes.TrimPrefix(raw, []byte{0xEF, 0xBB, 0xBF}))
	if err != nil {
		return "", fmt.Errorf("decodificar ISO-8859-1: %w", err)
	}
	return string(out), nil
}
