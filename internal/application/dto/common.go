package dto

// PageRequest límite de un listado (historial de movimientos).
type PageRequest struct {
	Limit int `query:"limit"`
}

// Clamp devuelve el límite efectivo: def si no vino, nunca más de max.
func (p PageRequest) Clamp(def, max int) int {
	switch {
	case p.Limit <= 0:
		return def
	case p.Limit > max:
		return max
	default:
		return p.Limit
	}
}

// PageResponse límite aplicado y cantidad devuelta.
type PageResponse struct {
	Limit    int `json:"limit"`
	Returned int `json:"returned"`
}

// ErrorResponse cuerpo de error HTTP. Line solo aplica a errores de formato del CSV.
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Line    int    `json:"line,omitempty"`
}
