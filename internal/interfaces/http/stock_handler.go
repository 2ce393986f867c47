package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/AlmacenPos-api/internal/application/dto"
	"github.com/jhoicas/AlmacenPos-api/internal/application/stock"
	"github.com/jhoicas/AlmacenPos-api/internal/domain/repository"
)

// StockHandler maneja las consultas de stock sobre la vista precalculada (protegido).
type StockHandler struct {
	uc *stock.UseCase
}

// NewStockHandler construye el handler.
func NewStockHandler(uc *stock.UseCase) *StockHandler {
	return &StockHandler{uc: uc}
}

// Levels godoc
// @Summary      Niveles de stock por producto/bodega
// @Tags         stock
// @Security     Bearer
// @Produce      json
// @Param        product_id    query  string  false  "Filtrar por producto"
// @Param        warehouse_id  query  string  false  "Filtrar por bodega"
// @Success      200  {array}  dto.StockLevelDTO
// @Router       /api/stock/levels [get]
func (h *StockHandler) Levels(c *fiber.Ctx) error {
	f := repository.StockLevelFilter{
		ProductID:   c.Query("product_id"),
		WarehouseID: c.Query("warehouse_id"),
	}
	levels, err := h.uc.GetStockLevels(c.Context(), f)
	if err != nil {
		return domainError(c, err)
	}
	out := make([]dto.StockLevelDTO, 0, len(levels))
	for _, l := range levels {
		out = append(out, dto.FromStockLevel(l))
	}
	return c.JSON(out)
}

// LowStock godoc
// @Summary      Productos con stock bajo el umbral
// @Tags         stock
// @Security     Bearer
// @Produce      json
// @Param        threshold  query  int  false  "Umbral de stock disponible"  default(10)
// @Success      200  {array}   dto.StockLevelDTO
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/stock/low [get]
func (h *StockHandler) LowStock(c *fiber.Ctx) error {
	threshold := c.QueryInt("threshold", 10)
	levels, err := h.uc.GetLowStockAlerts(c.Context(), threshold)
	if err != nil {
		return domainError(c, err)
	}
	out := make([]dto.StockLevelDTO, 0, len(levels))
	for _, l := range levels {
		out = append(out, dto.FromStockLevel(l))
	}
	return c.JSON(out)
}

// OutOfStock godoc
// @Summary      Productos agotados
// @Tags         stock
// @Security     Bearer
// @Produce      json
// @Success      200  {array}  dto.StockLevelDTO
// @Router       /api/stock/out [get]
func (h *StockHandler) OutOfStock(c *fiber.Ctx) error {
	levels, err := h.uc.GetOutOfStockItems(c.Context())
	if err != nil {
		return domainError(c, err)
	}
	out := make([]dto.StockLevelDTO, 0, len(levels))
	for _, l := range levels {
		out = append(out, dto.FromStockLevel(l))
	}
	return c.JSON(out)
}

// WarehouseSummary godoc
// @Summary      Resumen agregado de una bodega
// @Tags         stock
// @Security     Bearer
// @Produce      json
// @Param        id         path   string  true   "ID de la bodega"
// @Param        threshold  query  int     false  "Umbral de stock bajo"  default(10)
// @Success      200  {object}  dto.WarehouseSummaryDTO
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/stock/warehouses/{id}/summary [get]
func (h *StockHandler) WarehouseSummary(c *fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "MISSING_ID", Message: "id es requerido"})
	}
	summary, err := h.uc.GetWarehouseSummary(c.Context(), id, c.QueryInt("threshold", 10))
	if err != nil {
		return domainError(c, err)
	}
	return c.JSON(summary)
}
