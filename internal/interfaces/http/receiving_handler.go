package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/AlmacenPos-api/internal/application/dto"
	"github.com/jhoicas/AlmacenPos-api/internal/application/receiving"
)

// ReceivingHandler maneja la recepción de mercancía (protegido).
type ReceivingHandler struct {
	uc *receiving.UseCase
}

// NewReceivingHandler construye el handler.
func NewReceivingHandler(uc *receiving.UseCase) *ReceivingHandler {
	return &ReceivingHandler{uc: uc}
}

// Receive godoc
// @Summary      Recibir mercancía
// @Description  Genera números de serie y movimientos de entrada por cada unidad
//
//	recibida, en una sola transacción. Las líneas inválidas se aíslan.
//
// @Tags         receiving
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.ReceiveGoodsRequest  true  "warehouse_id, items"
// @Success      201   {object}  dto.ReceiveGoodsResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/receiving [post]
func (h *ReceivingHandler) Receive(c *fiber.Ctx) error {
	var in dto.ReceiveGoodsRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	if in.WarehouseID == "" || len(in.Items) == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "warehouse_id e items son requeridos"})
	}
	out, err := h.uc.ReceiveGoods(c.Context(), GetUserID(c), in)
	if err != nil {
		return domainError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// GetByID godoc
// @Summary      Obtener recepción por ID
// @Tags         receiving
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID de la recepción"
// @Success      200  {object}  dto.ReceiveLogDTO
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/receiving/{id} [get]
func (h *ReceivingHandler) GetByID(c *fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "MISSING_ID", Message: "id es requerido"})
	}
	rl, err := h.uc.Get(c.Context(), id)
	if err != nil {
		return domainError(c, err)
	}
	if rl == nil {
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "NOT_FOUND", Message: "recepción no encontrada"})
	}
	return c.JSON(rl)
}

// List godoc
// @Summary      Listar recepciones
// @Tags         receiving
// @Security     Bearer
// @Produce      json
// @Param        limit   query  int  false  "Límite"  default(20)
// @Param        offset  query  int  false  "Offset"  default(0)
// @Success      200  {array}  dto.ReceiveLogDTO
// @Router       /api/receiving [get]
func (h *ReceivingHandler) List(c *fiber.Ctx) error {
	limit := c.QueryInt("limit", 20)
	offset := c.QueryInt("offset", 0)
	if limit <= 0 {
		limit = 20
	}
	if limit > 100 {
		limit = 100
	}
	if offset < 0 {
		offset = 0
	}
	out, err := h.uc.List(c.Context(), limit, offset)
	if err != nil {
		return domainError(c, err)
	}
	return c.JSON(out)
}
