package inventory

import (
	"github.com/jhoicas/stock-import/internal/application/dto"
	"github.com/jhoicas/stock-import/internal/domain/csvimport"
	"github.com/jhoicas/stock-import/internal/domain/entity"
)

// SessionResponse arma la vista de una sesión para la API.
func SessionResponse(s *ImportSession) dto.ImportSessionResponse {
	out := dto.ImportSessionResponse{
		ID:        s.ID,
		State:     string(s.State()),
		CreatedBy: s.CreatedBy,
		CreatedAt: s.CreatedAt,
	}
	if err := s.Err(); err != nil {
		out.Error = err.Error()
	}
	if b, ok := s.Batch(); ok {
		bd := BatchResponse(b)
		out.Batch = &bd
	}
	if r, ok := s.Report(); ok {
		rd := ReportResponse(*r)
		out.Report = &rd
	}
	return out
}

// BatchResponse resumen de validación con el detalle de errores y advertencias.
func BatchResponse(b csvimport.BatchResult) dto.BatchResultDTO {
	return dto.BatchResultDTO{
		Total:        b.Total,
		ValidCount:   b.ValidCount,
		WarningCount: b.WarningCount,
		ErrorCount:   b.ErrorCount,
		Errors:       toRowDTOs(b.Errors),
		Warnings:     toRowDTOs(b.Warnings),
	}
}

// ReportResponse reporte final con el resultado de cada fila.
func ReportResponse(r ImportReport) dto.ImportReportDTO {
	rows := make([]dto.RowOutcomeDTO, 0, len(r.Outcomes))
	for _, o := range r.Outcomes {
		row := dto.RowOutcomeDTO{
			Line:      o.Line,
			SKU:       o.SKU,
			ProductID: o.ProductID,
			ItemID:    o.ItemID,
			Action:    string(o.Action),
			Status:    string(o.Status),
			Quantity:  o.Quantity,
			Error:     o.Error(),
		}
		if o.Movement != nil && o.Status == RowCommitted {
			m := MovementResponse(*o.Movement)
			row.Movement = &m
		}
		rows = append(rows, row)
	}
	return dto.ImportReportDTO{
		BatchID:    r.BatchID,
		Committed:  r.Committed,
		Skipped:    r.Skipped,
		Failed:     r.Failed,
		Partial:    r.Partial,
		StartedAt:  r.StartedAt,
		FinishedAt: r.FinishedAt,
		Rows:       rows,
	}
}

// ItemResponse vista de un artículo.
func ItemResponse(it *entity.StockItem) dto.StockItemResponse {
	out := dto.StockItemResponse{
		ID:                it.ID,
		ProductID:         it.ProductID,
		SKU:               it.SKU,
		Name:              it.Name,
		Category:          it.Category,
		Supplier:          it.Supplier,
		BatchNo:           it.BatchNo,
		Quantity:          it.Quantity,
		PricePerUnit:      it.PricePerUnit,
		BranchID:          it.BranchID,
		LowStockThreshold: it.LowStockThreshold,
		LowStock:          it.IsLowStock(),
		UpdatedAt:         it.UpdatedAt,
	}
	if it.ExpiryDate != nil {
		out.ExpiryDate = it.ExpiryDate.Format(csvimport.DateLayout)
	}
	return out
}

// MovementResponse vista de un movimiento.
func MovementResponse(m entity.StockMovement) dto.StockMovementResponse {
	return dto.StockMovementResponse{
		ID:               m.ID,
		ItemID:           m.ItemID,
		Type:             string(m.Type),
		Quantity:         m.Delta,
		PreviousQuantity: m.PreviousQuantity,
		NewQuantity:      m.NewQuantity,
		Reason:           m.Reason,
		ReferenceNumber:  m.ReferenceNumber,
		Notes:            m.Notes,
		CreatedBy:        m.CreatedBy,
		CreatedAt:        m.CreatedAt,
	}
}

func toRowDTOs(rows []csvimport.ImportRow) []dto.ImportRowDTO {
	out := make([]dto.ImportRowDTO, 0, len(rows))
	for _, r := range rows {
		out = append(out, dto.ImportRowDTO{
			Line:           r.Line,
			Classification: string(r.Classification),
			Values:         r.Values,
			Errors:         r.Errors,
			Warnings:       r.Warnings,
		})
	}
	return out
}
