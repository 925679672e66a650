package http

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/smartstock/smartstock-api/internal/application/dto"
	"github.com/smartstock/smartstock-api/internal/application/ledger"
	"github.com/smartstock/smartstock-api/internal/application/lowstock"
	"github.com/smartstock/smartstock-api/internal/domain"
)

// InventoryHandler maneja las peticiones HTTP de movimientos y stock bajo.
type InventoryHandler struct {
	apply   *ledger.ApplyMovementUseCase
	history *ledger.HistoryUseCase
	monitor *lowstock.MonitorUseCase
}

// NewInventoryHandler construye el handler.
func NewInventoryHandler(
	apply *ledger.ApplyMovementUseCase,
	history *ledger.HistoryUseCase,
	monitor *lowstock.MonitorUseCase,
) *InventoryHandler {
	return &InventoryHandler{apply: apply, history: history, monitor: monitor}
}

// ApplyMovement godoc
// @Summary      Registrar movimiento de stock
// @Description  Aplica una entrada (IN) o salida (OUT) de forma atómica y
//	devuelve el movimiento confirmado junto con el stock resultante.
// @Tags         inventory
// @Accept       json
// @Produce      json
// @Param        body  body  dto.ApplyMovementRequest  true  "product_id, direction (IN/OUT), quantity, reference, notes"
// @Success      201   {object}  dto.ApplyMovementResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Failure      423   {object}  dto.ErrorResponse
// @Router       /api/inventory/movements [post]
func (h *InventoryHandler) ApplyMovement(c *fiber.Ctx) error {
	var in dto.ApplyMovementRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}

	start := time.Now()
	result, err := h.apply.Apply(c.Context(), ledger.ApplyInput{
		ProductID: in.ProductID,
		Direction: in.Direction,
		Quantity:  in.Quantity,
		Reference: in.Reference,
		Notes:     in.Notes,
	})
	applyDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		movementsTotal.WithLabelValues(in.Direction, outcomeLabel(err)).Inc()
		return writeError(c, err)
	}
	movementsTotal.WithLabelValues(result.Movement.Direction, "applied").Inc()

	return c.Status(fiber.StatusCreated).JSON(dto.ApplyMovementResponse{
		Movement: dto.MovementFromEntity(result.Movement),
		NewStock: result.NewStock,
		LowStock: result.LowStock,
		Needed:   result.Needed,
	})
}

// outcomeLabel clasifica el error para la métrica de movimientos.
func outcomeLabel(err error) string {
	switch {
	case errors.Is(err, domain.ErrInsufficientStock):
		return "insufficient_stock"
	case errors.Is(err, domain.ErrInvalidInput):
		return "invalid_input"
	case errors.Is(err, domain.ErrNotFound):
		return "not_found"
	case errors.Is(err, domain.ErrBusy):
		return "busy"
	default:
		return "storage_error"
	}
}

// ListMovements godoc
// @Summary      Historial de movimientos
// @Tags         inventory
// @Produce      json
// @Param        limit   query  int  false  "Máximo de registros (default 50)"
// @Param        offset  query  int  false  "Desplazamiento"
// @Success      200  {array}   dto.MovementDTO
// @Failure      500  {object}  dto.ErrorResponse
// @Router       /api/inventory/movements [get]
func (h *InventoryHandler) ListMovements(c *fiber.Ctx) error {
	var page dto.PageRequest
	if err := c.QueryParser(&page); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "paginación inválida"})
	}
	page.DefaultPage()
	movements, err := h.history.ListAll(c.Context(), page.Limit, page.Offset)
	if err != nil {
		return writeError(c, err)
	}
	out := make([]dto.MovementDTO, 0, len(movements))
	for _, m := range movements {
		out = append(out, dto.MovementFromEntity(m))
	}
	return c.JSON(fiber.Map{"total": len(out), "movements": out})
}

// ListProductMovements godoc
// @Summary      Historial de movimientos de un producto
// @Tags         inventory
// @Produce      json
// @Param        id      path   int  true   "ID del producto"
// @Param        limit   query  int  false  "Máximo de registros (default 50)"
// @Param        offset  query  int  false  "Desplazamiento"
// @Success      200  {array}   dto.MovementDTO
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/products/{id}/movements [get]
func (h *InventoryHandler) ListProductMovements(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return writeError(c, err)
	}
	var page dto.PageRequest
	if err := c.QueryParser(&page); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "paginación inválida"})
	}
	page.DefaultPage()
	movements, err := h.history.ListByProduct(c.Context(), id, page.Limit, page.Offset)
	if err != nil {
		return writeError(c, err)
	}
	out := make([]dto.MovementDTO, 0, len(movements))
	for _, m := range movements {
		out = append(out, dto.MovementFromEntity(m))
	}
	return c.JSON(fiber.Map{"total": len(out), "movements": out})
}

// ListLowStock godoc
// @Summary      Reporte de stock bajo
// @Description  Productos con current_stock <= minimum_stock, ordenados por
//	nombre, con la cantidad necesaria para volver al mínimo. Se calcula en
//	vivo sobre el estado actual.
// @Tags         inventory
// @Produce      json
// @Success      200  {array}   dto.LowStockItemDTO
// @Failure      500  {object}  dto.ErrorResponse
// @Router       /api/inventory/low-stock [get]
func (h *InventoryHandler) ListLowStock(c *fiber.Ctx) error {
	items, err := h.monitor.ListLowStock(c.Context())
	if err != nil {
		return writeError(c, err)
	}
	lowStockProducts.Set(float64(len(items)))
	return c.JSON(fiber.Map{"total": len(items), "products": items})
}
