package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/AlmacenPos-api/internal/application/dto"
	"github.com/jhoicas/AlmacenPos-api/internal/application/serial"
	"github.com/jhoicas/AlmacenPos-api/internal/domain"
	"github.com/jhoicas/AlmacenPos-api/internal/domain/repository"
)

// SerialHandler maneja las peticiones HTTP de números de serie (protegido).
type SerialHandler struct {
	uc *serial.UseCase
}

// NewSerialHandler construye el handler.
func NewSerialHandler(uc *serial.UseCase) *SerialHandler {
	return &SerialHandler{uc: uc}
}

// Generate godoc
// @Summary      Generar lote de números de serie
// @Description  Crea Quantity números de serie con formato {codigo}-{año}[-{mes}]-{secuencia}.
//
//	Los códigos en conflicto se reportan sin abortar el lote.
//
// @Tags         serials
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.GenerateSerialsRequest  true  "product_id, warehouse_id, quantity"
// @Success      201   {object}  dto.GenerateSerialsResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/serials/generate [post]
func (h *SerialHandler) Generate(c *fiber.Ctx) error {
	var in dto.GenerateSerialsRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	out, err := h.uc.GenerateAndCreate(c.Context(), in)
	if err != nil {
		return domainError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// Validate godoc
// @Summary      Validar un código de serie
// @Tags         serials
// @Security     Bearer
// @Produce      json
// @Param        code  path  string  true  "Código de serie"
// @Success      200   {object}  dto.ValidateSerialResponse
// @Router       /api/serials/validate/{code} [get]
func (h *SerialHandler) Validate(c *fiber.Ctx) error {
	code := c.Params("code")
	if code == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "MISSING_CODE", Message: "code es requerido"})
	}
	out, err := h.uc.Validate(c.Context(), code)
	if err != nil {
		return domainError(c, err)
	}
	return c.JSON(out)
}

// GetByID godoc
// @Summary      Obtener número de serie por ID
// @Tags         serials
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID del número de serie"
// @Success      200  {object}  dto.SerialNumberDTO
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/serials/{id} [get]
func (h *SerialHandler) GetByID(c *fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "MISSING_ID", Message: "id es requerido"})
	}
	sn := h.uc.Get(c.Context(), id)
	if sn == nil {
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "NOT_FOUND", Message: "número de serie no encontrado"})
	}
	return c.JSON(dto.FromSerialNumber(sn))
}

// List godoc
// @Summary      Listar números de serie
// @Tags         serials
// @Security     Bearer
// @Produce      json
// @Param        product_id    query  string  false  "Filtrar por producto"
// @Param        warehouse_id  query  string  false  "Filtrar por bodega"
// @Param        status        query  string  false  "Filtrar por estado"
// @Param        limit         query  int     false  "Límite"  default(100)
// @Param        offset        query  int     false  "Offset"  default(0)
// @Success      200  {array}  dto.SerialNumberDTO
// @Router       /api/serials [get]
func (h *SerialHandler) List(c *fiber.Ctx) error {
	f := repository.SerialNumberFilter{
		ProductID:   c.Query("product_id"),
		WarehouseID: c.Query("warehouse_id"),
		Status:      c.Query("status"),
		Limit:       c.QueryInt("limit", 100),
		Offset:      c.QueryInt("offset", 0),
	}
	sns, err := h.uc.List(c.Context(), f)
	if err != nil {
		return domainError(c, err)
	}
	out := make([]dto.SerialNumberDTO, 0, len(sns))
	for _, sn := range sns {
		out = append(out, dto.FromSerialNumber(sn))
	}
	return c.JSON(out)
}

// BulkStatus godoc
// @Summary      Cambiar estado de números de serie en lote
// @Description  Transición de estado con registro de movimientos: sold genera salida,
//
//	available (devolución) genera entrada.
//
// @Tags         serials
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.BulkStatusRequest  true  "serial_number_ids, status"
// @Success      200   {object}  map[string]int
// @Failure      400   {object}  dto.ErrorResponse
// @Router       /api/serials/status [patch]
func (h *SerialHandler) BulkStatus(c *fiber.Ctx) error {
	var in dto.BulkStatusRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	n, err := h.uc.BulkUpdateStatus(c.Context(), GetUserID(c), in)
	if err != nil {
		return domainError(c, err)
	}
	return c.JSON(fiber.Map{"updated": n})
}

// Transfer godoc
// @Summary      Transferir números de serie a otra bodega
// @Tags         serials
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.TransferSerialsRequest  true  "serial_number_ids, to_warehouse_id"
// @Success      200   {object}  map[string]int
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/serials/transfer [post]
func (h *SerialHandler) Transfer(c *fiber.Ctx) error {
	var in dto.TransferSerialsRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	n, err := h.uc.Transfer(c.Context(), GetUserID(c), in)
	if err != nil {
		return domainError(c, err)
	}
	return c.JSON(fiber.Map{"transferred": n})
}

// Stats godoc
// @Summary      Estadísticas de números de serie por estado y bodega
// @Tags         serials
// @Security     Bearer
// @Produce      json
// @Param        warehouse_id  query  string  false  "Filtrar por bodega"
// @Success      200  {array}  dto.SerialStatsRow
// @Router       /api/serials/stats [get]
func (h *SerialHandler) Stats(c *fiber.Ctx) error {
	rows, err := h.uc.Stats(c.Context(), c.Query("warehouse_id"))
	if err != nil {
		return domainError(c, err)
	}
	return c.JSON(rows)
}

// Delete godoc
// @Summary      Eliminar números de serie (solo admin)
// @Tags         serials
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  object  true  "serial_number_ids"
// @Success      200   {object}  map[string]int
// @Router       /api/serials [delete]
func (h *SerialHandler) Delete(c *fiber.Ctx) error {
	var in struct {
		SerialNumberIDs []string `json:"serial_number_ids"`
	}
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	if len(in.SerialNumberIDs) == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "serial_number_ids es requerido"})
	}
	n, err := h.uc.Delete(c.Context(), in.SerialNumberIDs)
	if err != nil {
		return domainError(c, err)
	}
	return c.JSON(fiber.Map{"deleted": n})
}

// domainError traduce errores de dominio a códigos HTTP uniformes.
func domainError(c *fiber.Ctx, err error) error {
	switch {
	case err == domain.ErrInvalidInput:
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "datos inválidos"})
	case err == domain.ErrNotFound:
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "NOT_FOUND", Message: "recurso no encontrado"})
	case err == domain.ErrDuplicate:
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "DUPLICATE", Message: "recurso duplicado"})
	case err == domain.ErrConflict:
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "CONFLICT", Message: err.Error()})
	case err == domain.ErrForbidden:
		return c.Status(fiber.StatusForbidden).JSON(dto.ErrorResponse{Code: "FORBIDDEN", Message: "acceso denegado"})
	}
	if code := domain.CodeOf(err); code != "" {
		status := fiber.StatusInternalServerError
		switch code {
		case domain.CodeValidation:
			status = fiber.StatusBadRequest
		case domain.CodeSyncInProgress:
			status = fiber.StatusConflict
		case domain.CodePOSUnavailable:
			status = fiber.StatusBadGateway
		}
		return c.Status(status).JSON(dto.ErrorResponse{Code: code, Message: err.Error()})
	}
	return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
}
