package http

import (
	"bytes"
	"fmt"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/stock-import/internal/application/dto"
	"github.com/jhoicas/stock-import/internal/application/inventory"
)

// MovementObserver recibe cada movimiento manual registrado (métricas).
type MovementObserver interface {
	ObserveMovement(movementType string)
}

// InventoryHandler maneja movimientos individuales y exportación (protegido).
type InventoryHandler struct {
	movements *inventory.RegisterMovementUseCase
	export    *inventory.ExportUseCase
	observer  MovementObserver
}

// NewInventoryHandler construye el handler. observer puede ser nil.
func NewInventoryHandler(movements *inventory.RegisterMovementUseCase, export *inventory.ExportUseCase, observer MovementObserver) *InventoryHandler {
	return &InventoryHandler{movements: movements, export: export, observer: observer}
}

// RegisterMovement godoc
// @Summary      Registrar movimiento de stock
// @Tags         inventory
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string                       true  "ID del artículo"
// @Param        body  body  dto.RegisterMovementRequest  true  "type (inward, outward, adjustment), quantity"
// @Success      201   {object}  dto.MovementResultResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/inventory/items/{id}/movements [post]
func (h *InventoryHandler) RegisterMovement(c *fiber.Ctx) error {
	userID := GetUserID(c)
	if userID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "token inválido"})
	}
	var in dto.RegisterMovementRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	res, err := h.movements.RegisterMovementFromRequest(c.UserContext(), c.Params("id"), userID, in)
	if err != nil {
		return writeError(c, err)
	}
	if h.observer != nil {
		h.observer.ObserveMovement(res.Movement.Type)
	}
	return c.Status(fiber.StatusCreated).JSON(res)
}

// ListMovements godoc
// @Summary      Historial de movimientos de un artículo
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Param        id     path   string  true   "ID del artículo"
// @Param        limit  query  int     false  "máximo 100"
// @Success      200  {object}  dto.MovementHistoryResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/inventory/items/{id}/movements [get]
func (h *InventoryHandler) ListMovements(c *fiber.Ctx) error {
	var page dto.PageRequest
	if err := c.QueryParser(&page); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_QUERY", Message: err.Error()})
	}
	res, err := h.movements.History(c.UserContext(), c.Params("id"), page)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(res)
}

// Export godoc
// @Summary      Exportar inventario
// @Description  Descarga el inventario con el mismo esquema del CSV de importación.
// @Tags         inventory
// @Security     Bearer
// @Produce      text/csv
// @Param        branch_id  query  int     false  "Sucursal; vacío = todas (o la del token)"
// @Param        format     query  string  false  "csv (por defecto) o xlsx"
// @Success      200  {file}  binary
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      403  {object}  dto.ErrorResponse
// @Router       /api/inventory/export [get]
func (h *InventoryHandler) Export(c *fiber.Ctx) error {
	var branchID int64
	if raw := c.Query("branch_id"); raw != "" {
		n, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || n < 1 {
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "branch_id debe ser un entero positivo"})
		}
		branchID = n
	}
	// un token atado a una sucursal solo exporta esa sucursal
	if own := GetBranchID(c); own != 0 {
		if branchID != 0 && branchID != own {
			return c.Status(fiber.StatusForbidden).JSON(dto.ErrorResponse{Code: "FORBIDDEN", Message: "sin acceso a esa sucursal"})
		}
		branchID = own
	}

	format, err := inventory.ParseFormat(c.Query("format"))
	if err != nil {
		return writeError(c, err)
	}
	var buf bytes.Buffer
	if _, err := h.export.Export(c.UserContext(), &buf, branchID, format); err != nil {
		return writeError(c, err)
	}

	contentType := "text/csv; charset=utf-8"
	if format == inventory.FormatXLSX {
		contentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	}
	name := fmt.Sprintf("inventario_%s.%s", time.Now().Format("20060102_150405"), format)
	c.Set(fiber.HeaderContentType, contentType)
	c.Set(fiber.HeaderContentDisposition, `attachment; filename="`+name+`"`)
	return c.Send(buf.Bytes())
}
