package dto

import "time"

// ImportRowDTO fila clasificada con sus mensajes.
type ImportRowDTO struct {
	Line           int               `json:"line"`
	Classification string            `json:"classification"` // valid, warning, error
	Values         map[string]string `json:"values"`
	Errors         []string          `json:"errors,omitempty"`
	Warnings       []string          `json:"warnings,omitempty"`
}

// BatchResultDTO resumen de validación de un lote.
type BatchResultDTO struct {
	Total        int            `json:"total"`
	ValidCount   int            `json:"valid_count"`
	WarningCount int            `json:"warning_count"`
	ErrorCount   int            `json:"error_count"`
	Errors       []ImportRowDTO `json:"errors"`
	Warnings     []ImportRowDTO `json:"warnings"`
}

// RowOutcomeDTO resultado del commit de una fila.
type RowOutcomeDTO struct {
	Line      int                    `json:"line"`
	SKU       string                 `json:"sku,omitempty"`
	ProductID string                 `json:"product_id"`
	ItemID    string                 `json:"item_id,omitempty"`
	Action    string                 `json:"action,omitempty"` // created, updated
	Status    string                 `json:"status"`           // committed, failed
	Quantity  int64                  `json:"quantity"`
	Movement  *StockMovementResponse `json:"movement,omitempty"`
	Error     string                 `json:"error,omitempty"`
}

// ImportReportDTO reporte final de un commit.
type ImportReportDTO struct {
	BatchID    string          `json:"batch_id"`
	Committed  int             `json:"committed"`
	Skipped    int             `json:"skipped"`
	Failed     int             `json:"failed"`
	Partial    bool            `json:"partial"`
	StartedAt  time.Time       `json:"started_at"`
	FinishedAt time.Time       `json:"finished_at"`
	Rows       []RowOutcomeDTO `json:"rows"`
}

// ImportSessionResponse estado de una sesión de importación.
type ImportSessionResponse struct {
	ID        string           `json:"id"`
	State     string           `json:"state"`
	CreatedBy string           `json:"created_by,omitempty"`
	CreatedAt time.Time        `json:"created_at"`
	Error     string           `json:"error,omitempty"`
	Batch     *BatchResultDTO  `json:"batch,omitempty"`
	Report    *ImportReportDTO `json:"report,omitempty"`
}
