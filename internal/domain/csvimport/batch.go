package csvimport

// BatchResult agregado de un lote de importación. Vive lo que dura la sesión.
type BatchResult struct {
	Valid    []ImportRow // filas válidas y con advertencias, en orden del archivo
	Warnings []ImportRow // subconjunto de Valid que trae advertencias
	Errors   []ImportRow // filas excluidas del commit

	Total        int
	ValidCount   int
	WarningCount int
	ErrorCount   int
}

// Aggregate separa las filas validadas en válidas, advertencias y errores.
// Ninguna fila con errores queda en Valid.
func Aggregate(rows []ImportRow) BatchResult {
	res := BatchResult{Total: len(rows)}
	for _, r := range rows {
		if r.HasErrors() {
			res.Errors = append(res.Errors, r)
			continue
		}
		res.Valid = append(res.Valid, r)
		if len(r.Warnings) > 0 {
			res.Warnings = append(res.Warnings, r)
		}
	}
	res.ValidCount = len(res.Valid)
	res.WarningCount = len(res.Warnings)
	res.ErrorCount = len(res.Errors)
	return res
}
