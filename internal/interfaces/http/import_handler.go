package http

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/stock-import/internal/application/dto"
	"github.com/jhoicas/stock-import/internal/application/inventory"
)

// SheetConverter convierte una hoja de cálculo subida en texto CSV.
type SheetConverter func(r io.Reader) ([]byte, error)

// ImportHandler maneja la importación masiva por sesiones (protegido).
type ImportHandler struct {
	uc        *inventory.ImportUseCase
	sessions  *inventory.SessionStore
	renderer  inventory.ReportRenderer
	toCSV     SheetConverter
	maxUpload int
}

// NewImportHandler construye el handler. renderer y toCSV pueden ser nil.
func NewImportHandler(uc *inventory.ImportUseCase, sessions *inventory.SessionStore, renderer inventory.ReportRenderer, toCSV SheetConverter, maxUpload int) *ImportHandler {
	return &ImportHandler{uc: uc, sessions: sessions, renderer: renderer, toCSV: toCSV, maxUpload: maxUpload}
}

// Upload godoc
// @Summary      Subir archivo de inventario
// @Description  Lee y valida el CSV (o XLSX) y abre una sesión de importación. No modifica el stock.
// @Tags         imports
// @Security     Bearer
// @Accept       multipart/form-data
// @Produce      json
// @Param        file  formData  file  true  "CSV con encabezado: name, category, quantity, branch_id, ..."
// @Success      201   {object}  dto.ImportSessionResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      413   {object}  dto.ErrorResponse
// @Router       /api/inventory/imports [post]
func (h *ImportHandler) Upload(c *fiber.Ctx) error {
	raw, err := h.readUpload(c)
	if err != nil {
		var uerr *uploadError
		if errors.As(err, &uerr) {
			return c.Status(uerr.status).JSON(dto.ErrorResponse{Code: uerr.code, Message: uerr.msg})
		}
		return writeError(c, err)
	}

	s := h.uc.NewSession(GetUserID(c))
	h.sessions.Put(s)
	if _, err := s.Load(c.UserContext(), raw); err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(inventory.SessionResponse(s))
}

// uploadError rechazo del archivo antes de abrir la sesión.
type uploadError struct {
	status    int
	code, msg string
}

func (e *uploadError) Error() string { return e.msg }

func (h *ImportHandler) tooLarge() error {
	return &uploadError{fiber.StatusRequestEntityTooLarge, "TOO_LARGE", fmt.Sprintf("el archivo supera %d bytes", h.maxUpload)}
}

// readUpload obtiene los bytes desde multipart "file" o desde el cuerpo crudo (text/csv).
func (h *ImportHandler) readUpload(c *fiber.Ctx) ([]byte, error) {
	fh, err := c.FormFile("file")
	if err != nil {
		body := c.Body()
		if len(body) == 0 {
			return nil, &uploadError{fiber.StatusBadRequest, "MISSING_FILE", "se requiere el campo file o un cuerpo text/csv"}
		}
		if h.maxUpload > 0 && len(body) > h.maxUpload {
			return nil, h.tooLarge()
		}
		return bytes.Clone(body), nil
	}
	if h.maxUpload > 0 && fh.Size > int64(h.maxUpload) {
		return nil, h.tooLarge()
	}
	f, err := fh.Open()
	if err != nil {
		return nil, &uploadError{fiber.StatusBadRequest, "INVALID_FILE", err.Error()}
	}
	defer f.Close()

	if strings.EqualFold(filepath.Ext(fh.Filename), ".xlsx") {
		if h.toCSV == nil {
			return nil, &uploadError{fiber.StatusUnsupportedMediaType, "UNSUPPORTED", "xlsx no habilitado"}
		}
		return h.toCSV(f)
	}
	raw, err := io.ReadAll(f)
	if err != nil {
		return nil, &uploadError{fiber.StatusBadRequest, "INVALID_FILE", err.Error()}
	}
	return raw, nil
}

// Get godoc
// @Summary      Estado de una importación
// @Tags         imports
// @Security     Bearer
// @Produce      json
// @Param        id   path      string  true  "ID de la sesión"
// @Success      200  {object}  dto.ImportSessionResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/inventory/imports/{id} [get]
func (h *ImportHandler) Get(c *fiber.Ctx) error {
	s, ok := h.sessions.Get(c.Params("id"))
	if !ok {
		return sessionNotFound(c)
	}
	return c.JSON(inventory.SessionResponse(s))
}

// Commit godoc
// @Summary      Confirmar importación
// @Description  Persiste las filas válidas (y con advertencias). Cada fila es independiente; el resultado puede ser parcial.
// @Tags         imports
// @Security     Bearer
// @Produce      json
// @Param        id   path      string  true  "ID de la sesión"
// @Success      200  {object}  dto.ImportReportDTO
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Failure      422  {object}  dto.ErrorResponse
// @Failure      503  {object}  dto.ErrorResponse
// @Router       /api/inventory/imports/{id}/commit [post]
func (h *ImportHandler) Commit(c *fiber.Ctx) error {
	s, ok := h.sessions.Get(c.Params("id"))
	if !ok {
		return sessionNotFound(c)
	}
	report, err := s.Commit(c.UserContext())
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(inventory.ReportResponse(*report))
}

// Cancel godoc
// @Summary      Cancelar importación
// @Tags         imports
// @Security     Bearer
// @Param        id   path  string  true  "ID de la sesión"
// @Success      204
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/inventory/imports/{id} [delete]
func (h *ImportHandler) Cancel(c *fiber.Ctx) error {
	id := c.Params("id")
	s, ok := h.sessions.Get(id)
	if !ok {
		return sessionNotFound(c)
	}
	if err := s.Cancel(); err != nil {
		return writeError(c, err)
	}
	h.sessions.Delete(id)
	return c.SendStatus(fiber.StatusNoContent)
}

// ReportPDF godoc
// @Summary      Descargar reporte PDF
// @Tags         imports
// @Security     Bearer
// @Produce      application/pdf
// @Param        id   path  string  true  "ID de la sesión"
// @Success      200  {file}  binary
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/inventory/imports/{id}/report.pdf [get]
func (h *ImportHandler) ReportPDF(c *fiber.Ctx) error {
	s, ok := h.sessions.Get(c.Params("id"))
	if !ok {
		return sessionNotFound(c)
	}
	report, ok := s.Report()
	if !ok {
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "NOT_COMMITTED", Message: "la importación no se ha confirmado"})
	}
	if h.renderer == nil {
		return c.Status(fiber.StatusNotImplemented).JSON(dto.ErrorResponse{Code: "UNSUPPORTED", Message: "reporte PDF no habilitado"})
	}
	b, err := h.renderer.RenderImportReport(c.UserContext(), *report)
	if err != nil {
		return writeError(c, err)
	}
	c.Set(fiber.HeaderContentType, "application/pdf")
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf(`attachment; filename="import_%s.pdf"`, s.ID))
	return c.Send(b)
}

func sessionNotFound(c *fiber.Ctx) error {
	return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "NOT_FOUND", Message: "sesión de importación no encontrada o vencida"})
}
