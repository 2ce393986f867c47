package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/AlmacenPos-api/internal/application/dto"
	"github.com/jhoicas/AlmacenPos-api/internal/application/possync"
	"github.com/jhoicas/AlmacenPos-api/internal/domain/entity"
)

// SyncHandler maneja la sincronización con el POS, alertas y entregas (protegido).
type SyncHandler struct {
	uc *possync.UseCase
}

// NewSyncHandler construye el handler.
func NewSyncHandler(uc *possync.UseCase) *SyncHandler {
	return &SyncHandler{uc: uc}
}

// SyncInventory godoc
// @Summary      Sincronizar inventario con el POS
// @Description  Trae el inventario del POS, detecta discrepancias y las resuelve con
//
//	la estrategia configurada. Corridas concurrentes de la misma
//	integración se rechazan con 409.
//
// @Tags         sync
// @Security     Bearer
// @Produce      json
// @Param        integration_id  query  string  true  "ID de la integración POS"
// @Success      200  {object}  dto.SyncResultDTO
// @Failure      409  {object}  dto.ErrorResponse
// @Failure      502  {object}  dto.ErrorResponse
// @Router       /api/sync/inventory [post]
func (h *SyncHandler) SyncInventory(c *fiber.Ctx) error {
	integrationID := c.Query("integration_id")
	if integrationID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "integration_id es requerido"})
	}
	out, err := h.uc.SyncInventoryLevels(c.Context(), integrationID)
	if err != nil {
		return domainError(c, err)
	}
	return c.JSON(out)
}

// ListRuns godoc
// @Summary      Historial de corridas de sincronización
// @Tags         sync
// @Security     Bearer
// @Produce      json
// @Param        integration_id  query  string  true   "ID de la integración POS"
// @Param        limit           query  int     false  "Límite"  default(20)
// @Success      200  {array}  dto.SyncResultDTO
// @Router       /api/sync/runs [get]
func (h *SyncHandler) ListRuns(c *fiber.Ctx) error {
	integrationID := c.Query("integration_id")
	if integrationID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "integration_id es requerido"})
	}
	out, err := h.uc.ListSyncRuns(c.Context(), integrationID, c.QueryInt("limit", 20))
	if err != nil {
		return domainError(c, err)
	}
	return c.JSON(out)
}

// ResolveConflicts godoc
// @Summary      Resolver conflictos abiertos de una integración
// @Tags         sync
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.ResolveConflictsRequest  true  "integration_id, strategy"
// @Success      200   {object}  map[string]int
// @Failure      400   {object}  dto.ErrorResponse
// @Router       /api/sync/conflicts/resolve [post]
func (h *SyncHandler) ResolveConflicts(c *fiber.Ctx) error {
	var in dto.ResolveConflictsRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	if in.IntegrationID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "integration_id es requerido"})
	}
	n, err := h.uc.ResolveSyncConflicts(c.Context(), in.IntegrationID, in.Strategy)
	if err != nil {
		return domainError(c, err)
	}
	return c.JSON(fiber.Map{"resolved": n})
}

// GenerateAlerts godoc
// @Summary      Generar alertas de stock bajo punto de reorden
// @Description  Idempotente por (producto, bodega): correr el monitor dos veces no
//
//	duplica alertas pendientes.
//
// @Tags         alerts
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.GenerateAlertsRequest  false  "Filtros opcionales"
// @Success      200   {array}  dto.StockAlertDTO
// @Router       /api/alerts/generate [post]
func (h *SyncHandler) GenerateAlerts(c *fiber.Ctx) error {
	var in dto.GenerateAlertsRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&in); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
		}
	}
	out, err := h.uc.GenerateStockAlerts(c.Context(), in)
	if err != nil {
		return domainError(c, err)
	}
	return c.JSON(out)
}

// ListAlerts godoc
// @Summary      Listar alertas de stock por estado
// @Tags         alerts
// @Security     Bearer
// @Produce      json
// @Param        status  query  string  false  "Estado"  default(pending)
// @Param        limit   query  int     false  "Límite"  default(50)
// @Param        offset  query  int     false  "Offset"  default(0)
// @Success      200  {array}  dto.StockAlertDTO
// @Router       /api/alerts [get]
func (h *SyncHandler) ListAlerts(c *fiber.Ctx) error {
	status := c.Query("status", entity.AlertStatusPending)
	out, err := h.uc.ListAlerts(c.Context(), status, c.QueryInt("limit", 50), c.QueryInt("offset", 0))
	if err != nil {
		return domainError(c, err)
	}
	return c.JSON(out)
}

// ProcessAlerts godoc
// @Summary      Procesar alertas pendientes en órdenes de compra automáticas
// @Tags         alerts
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.ProcessAlertsRequest  true  "alert_ids"
// @Success      200   {object}  dto.ProcessAlertsResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Router       /api/alerts/process [post]
func (h *SyncHandler) ProcessAlerts(c *fiber.Ctx) error {
	var in dto.ProcessAlertsRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	if len(in.AlertIDs) == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "alert_ids es requerido"})
	}
	out, err := h.uc.ProcessStockAlerts(c.Context(), GetUserID(c), in.AlertIDs)
	if err != nil {
		return domainError(c, err)
	}
	return c.JSON(out)
}

// Monitor godoc
// @Summary      Correr el monitor de inventario
// @Description  Genera alertas y, si está habilitado, crea órdenes de compra automáticas.
// @Tags         alerts
// @Security     Bearer
// @Produce      json
// @Success      200  {object}  map[string]string
// @Router       /api/alerts/monitor [post]
func (h *SyncHandler) Monitor(c *fiber.Ctx) error {
	if err := h.uc.MonitorInventoryLevels(c.Context()); err != nil {
		return domainError(c, err)
	}
	return c.JSON(fiber.Map{"status": "ok"})
}

// Delivery godoc
// @Summary      Registrar entrega de proveedor
// @Description  Resuelve las alertas pendientes de cada producto entregado. Las fallas
//
//	por línea se aíslan y se reportan en item_errors.
//
// @Tags         sync
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.DeliveryRequest  true  "order_id, items"
// @Success      200   {object}  dto.DeliveryResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Router       /api/sync/deliveries [post]
func (h *SyncHandler) Delivery(c *fiber.Ctx) error {
	var in dto.DeliveryRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	if len(in.Items) == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "items es requerido"})
	}
	out, err := h.uc.UpdateInventoryFromDelivery(c.Context(), in)
	if err != nil {
		return domainError(c, err)
	}
	return c.JSON(out)
}
