package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// ProcessAlertsRequest body para POST /api/purchase-orders/from-alerts.
type ProcessAlertsRequest struct {
	AlertIDs []string `json:"alert_ids"`
}

// ProcessAlertsResponse resultado del procesamiento de alertas: las fallas de
// un proveedor no bloquean a los demás.
type ProcessAlertsResponse struct {
	OrdersCreated  []PurchaseOrderDTO `json:"orders_created"`
	ManualReview   []string           `json:"manual_review_alert_ids,omitempty"`
	SupplierErrors []SupplierError    `json:"supplier_errors,omitempty"`
}

// SupplierError error aislado de un proveedor durante la creación de órdenes.
type SupplierError struct {
	SupplierID string `json:"supplier_id"`
	Message    string `json:"message"`
}

// PurchaseOrderDTO orden de compra para la API.
type PurchaseOrderDTO struct {
	ID               string                  `json:"id"`
	OrderNumber      string                  `json:"order_number"`
	SupplierID       string                  `json:"supplier_id"`
	SupplierName     string                  `json:"supplier_name,omitempty"`
	Status           string                  `json:"status"`
	Subtotal         decimal.Decimal         `json:"subtotal"`
	TaxAmount        decimal.Decimal         `json:"tax_amount"`
	Total            decimal.Decimal         `json:"total"`
	RequiresApproval bool                    `json:"requires_approval"`
	ApproverRoles    []string                `json:"approver_roles,omitempty"`
	CreatedAt        time.Time               `json:"created_at"`
	Items            []PurchaseOrderItemDTO  `json:"items"`
}

// PurchaseOrderItemDTO línea de la orden.
type PurchaseOrderItemDTO struct {
	ProductID   string          `json:"product_id"`
	ProductCode string          `json:"product_code"`
	AlertID     string          `json:"alert_id,omitempty"`
	Quantity    int             `json:"quantity"`
	UnitCost    decimal.Decimal `json:"unit_cost"`
	TotalCost   decimal.Decimal `json:"total_cost"`
}

// UpdateOrderStatusRequest body para PATCH /api/purchase-orders/:id/status.
type UpdateOrderStatusRequest struct {
	Status   string `json:"status"`
	Comments string `json:"comments,omitempty"`
}

// SupplierSelectionDTO resultado de la selección óptima de proveedor.
type SupplierSelectionDTO struct {
	SupplierID   string          `json:"supplier_id"`
	SupplierName string          `json:"supplier_name"`
	UnitCost     decimal.Decimal `json:"unit_cost"`
	LeadTimeDays int             `json:"lead_time_days"`
	IsPreferred  bool            `json:"is_preferred"`
	Score        float64         `json:"score"`
}
