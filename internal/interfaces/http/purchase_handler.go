package http

import (
	"context"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/AlmacenPos-api/internal/application/dto"
	"github.com/jhoicas/AlmacenPos-api/internal/application/purchasing"
	"github.com/jhoicas/AlmacenPos-api/internal/domain/entity"
)

// OrderPDFGenerator genera el documento imprimible de una orden. Lo implementa
// infrastructure/pdf; el uso de interfaz evita acoplar el handler a Maroto.
type OrderPDFGenerator interface {
	GeneratePurchaseOrderPDF(ctx context.Context, order *entity.AutoPurchaseOrder, supplier *entity.Supplier) ([]byte, error)
}

// PurchaseHandler maneja las órdenes de compra automáticas (protegido).
type PurchaseHandler struct {
	uc  *purchasing.UseCase
	pdf OrderPDFGenerator
}

// NewPurchaseHandler construye el handler.
func NewPurchaseHandler(uc *purchasing.UseCase, pdf OrderPDFGenerator) *PurchaseHandler {
	return &PurchaseHandler{uc: uc, pdf: pdf}
}

// GetByID godoc
// @Summary      Obtener orden de compra por ID
// @Tags         purchase-orders
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID de la orden"
// @Success      200  {object}  dto.PurchaseOrderDTO
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/purchase-orders/{id} [get]
func (h *PurchaseHandler) GetByID(c *fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "MISSING_ID", Message: "id es requerido"})
	}
	order, err := h.uc.Get(c.Context(), id)
	if err != nil {
		return domainError(c, err)
	}
	if order == nil {
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "NOT_FOUND", Message: "orden no encontrada"})
	}
	return c.JSON(order)
}

// List godoc
// @Summary      Listar órdenes de compra por estado
// @Tags         purchase-orders
// @Security     Bearer
// @Produce      json
// @Param        status  query  string  false  "Estado"  default(draft)
// @Param        limit   query  int     false  "Límite"  default(20)
// @Param        offset  query  int     false  "Offset"  default(0)
// @Success      200  {array}  dto.PurchaseOrderDTO
// @Router       /api/purchase-orders [get]
func (h *PurchaseHandler) List(c *fiber.Ctx) error {
	status := c.Query("status", entity.POStatusDraft)
	orders, err := h.uc.ListByStatus(c.Context(), status, c.QueryInt("limit", 20), c.QueryInt("offset", 0))
	if err != nil {
		return domainError(c, err)
	}
	return c.JSON(orders)
}

// UpdateStatus godoc
// @Summary      Actualizar el estado de una orden de compra
// @Tags         purchase-orders
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string  true  "ID de la orden"
// @Param        body  body  dto.UpdateOrderStatusRequest  true  "status, comments"
// @Success      200   {object}  map[string]string
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/purchase-orders/{id}/status [patch]
func (h *PurchaseHandler) UpdateStatus(c *fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "MISSING_ID", Message: "id es requerido"})
	}
	var in dto.UpdateOrderStatusRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	if err := h.uc.UpdateStatus(c.Context(), id, in.Status, GetUserID(c), in.Comments); err != nil {
		return domainError(c, err)
	}
	return c.JSON(fiber.Map{"status": in.Status})
}

// OptimalSupplier godoc
// @Summary      Proveedor óptimo para un producto
// @Description  Pondera costo, calidad, confiabilidad y tiempo de entrega; los
//
//	proveedores preferidos reciben un bono.
//
// @Tags         purchase-orders
// @Security     Bearer
// @Produce      json
// @Param        product_id  path  string  true  "ID del producto"
// @Success      200  {object}  dto.SupplierSelectionDTO
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/products/{product_id}/optimal-supplier [get]
func (h *PurchaseHandler) OptimalSupplier(c *fiber.Ctx) error {
	productID := c.Params("product_id")
	if productID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "MISSING_ID", Message: "product_id es requerido"})
	}
	sel, err := h.uc.SelectOptimalSupplier(c.Context(), productID)
	if err != nil {
		return domainError(c, err)
	}
	if sel == nil {
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "NOT_FOUND", Message: "sin proveedores activos para el producto"})
	}
	return c.JSON(sel)
}

// PDF godoc
// @Summary      PDF imprimible de una orden de compra
// @Tags         purchase-orders
// @Security     Bearer
// @Produce      application/pdf
// @Param        id   path  string  true  "ID de la orden"
// @Success      200  {file}    binary
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/purchase-orders/{id}/pdf [get]
func (h *PurchaseHandler) PDF(c *fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "MISSING_ID", Message: "id es requerido"})
	}
	order, supplier, err := h.uc.GetWithSupplier(c.Context(), id)
	if err != nil {
		return domainError(c, err)
	}
	if order == nil {
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "NOT_FOUND", Message: "orden no encontrada"})
	}
	pdfBytes, err := h.pdf.GeneratePurchaseOrderPDF(c.Context(), order, supplier)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "PDF_GENERATION", Message: err.Error()})
	}
	c.Set("Content-Type", "application/pdf")
	c.Set("Content-Disposition", `attachment; filename="`+order.OrderNumber+`.pdf"`)
	return c.Send(pdfBytes)
}
