package dto

import (
	"time"

	"github.com/jhoicas/AlmacenPos-api/internal/domain/entity"
)

// SyncResultDTO resultado de una corrida de sincronización para la API.
type SyncResultDTO struct {
	IntegrationID     string    `json:"integration_id"`
	Status            string    `json:"status"` // success | partial | failed
	ItemsFetched      int       `json:"items_fetched"`
	ItemsUpdated      int       `json:"items_updated"`
	ConflictsFound    int       `json:"conflicts_found"`
	ConflictsResolved int       `json:"conflicts_resolved"`
	AlertsGenerated   int       `json:"alerts_generated"`
	OrdersCreated     int       `json:"orders_created"`
	ErrorMessage      string    `json:"error_message,omitempty"`
	StartedAt         time.Time `json:"started_at"`
	FinishedAt        time.Time `json:"finished_at"`
}

// FromSyncResult convierte la entidad a DTO.
func FromSyncResult(r *entity.SyncResult) SyncResultDTO {
	return SyncResultDTO{
		IntegrationID:     r.IntegrationID,
		Status:            r.Status,
		ItemsFetched:      r.ItemsFetched,
		ItemsUpdated:      r.ItemsUpdated,
		ConflictsFound:    r.ConflictsFound,
		ConflictsResolved: r.ConflictsResolved,
		AlertsGenerated:   r.AlertsGenerated,
		OrdersCreated:     r.OrdersCreated,
		ErrorMessage:      r.ErrorMessage,
		StartedAt:         r.StartedAt,
		FinishedAt:        r.FinishedAt,
	}
}

// GenerateAlertsRequest parámetros del monitor de stock.
type GenerateAlertsRequest struct {
	ProductID   string `json:"product_id,omitempty"`
	WarehouseID string `json:"warehouse_id,omitempty"`
}

// StockAlertDTO alerta de stock para la API.
type StockAlertDTO struct {
	ID                  string    `json:"id"`
	ProductID           string    `json:"product_id"`
	ProductCode         string    `json:"product_code"`
	WarehouseID         string    `json:"warehouse_id"`
	CurrentStock        int       `json:"current_stock"`
	ReorderPoint        int       `json:"reorder_point"`
	ReorderQuantity     int       `json:"reorder_quantity"`
	Urgency             string    `json:"urgency"`
	PreferredSupplierID string    `json:"preferred_supplier_id,omitempty"`
	Status              string    `json:"status"`
	CreatedAt           time.Time `json:"created_at"`
}

// FromStockAlert convierte la entidad a DTO.
func FromStockAlert(a *entity.StockAlert) StockAlertDTO {
	return StockAlertDTO{
		ID:                  a.ID,
		ProductID:           a.ProductID,
		ProductCode:         a.ProductCode,
		WarehouseID:         a.WarehouseID,
		CurrentStock:        a.CurrentStock,
		ReorderPoint:        a.ReorderPoint,
		ReorderQuantity:     a.ReorderQuantity,
		Urgency:             a.Urgency,
		PreferredSupplierID: a.PreferredSupplierID,
		Status:              a.Status,
		CreatedAt:           a.CreatedAt,
	}
}

// ResolveConflictsRequest body para POST /api/sync/conflicts/resolve.
type ResolveConflictsRequest struct {
	IntegrationID string `json:"integration_id"`
	Strategy      string `json:"strategy"` // pos_wins | supplier_wins | latest_timestamp | manual_review
}

// DeliveryItem línea de una entrega de proveedor.
type DeliveryItem struct {
	ProductID   string `json:"product_id"`
	WarehouseID string `json:"warehouse_id"`
	Quantity    int    `json:"quantity"`
}

// DeliveryRequest body para POST /api/sync/deliveries.
type DeliveryRequest struct {
	OrderID string         `json:"order_id,omitempty"`
	Items   []DeliveryItem `json:"items"`
}

// DeliveryResponse resultado por ítem: las fallas se aíslan y se continúa.
type DeliveryResponse struct {
	ItemsApplied   int      `json:"items_applied"`
	AlertsResolved int      `json:"alerts_resolved"`
	ItemErrors     []string `json:"item_errors,omitempty"`
}
