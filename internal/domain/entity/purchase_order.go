package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Estados de una orden de compra automática.
// Máquina nominal: draft → approved → sent → confirmed → received (o rejected
// desde approved). La actualización no valida la transición: se preserva la
// permisividad del sistema origen (ver DESIGN.md).
const (
	POStatusDraft     = "draft"
	POStatusApproved  = "approved"
	POStatusSent      = "sent"
	POStatusConfirmed = "confirmed"
	POStatusReceived  = "received"
	POStatusRejected  = "rejected"
)

// AutoPurchaseOrder es una orden borrador que agrega una o más alertas de stock
// para un mismo proveedor. Invariante: todos los ítems comparten proveedor;
// Total = Subtotal * (1 + TaxRate).
type AutoPurchaseOrder struct {
	ID           string
	OrderNumber  string // APO-{timestamp}-{random4}
	SupplierID   string
	SupplierName string
	Status       string
	Subtotal     decimal.Decimal
	TaxRate      decimal.Decimal // 0.07 por defecto
	TaxAmount    decimal.Decimal
	Total        decimal.Decimal
	RequiresApproval bool
	ApproverRoles    []string
	Notes        string
	ApprovedAt   *time.Time
	SentAt       *time.Time
	ConfirmedAt  *time.Time
	DeliveredAt  *time.Time
	CreatedAt    time.Time
	UpdatedAt    time.Time
	CreatedBy    string
	Items        []AutoPurchaseOrderItem
}

// AutoPurchaseOrderItem es una línea de la orden, originada en una alerta.
type AutoPurchaseOrderItem struct {
	ID           string
	OrderID      string
	ProductID    string
	ProductCode  string
	AlertID      string
	Quantity     int
	UnitCost     decimal.Decimal
	TotalCost    decimal.Decimal
	CreatedAt    time.Time
}

// WorkflowStep es el registro append-only de un cambio de estado de la orden.
type WorkflowStep struct {
	ID        string
	OrderID   string
	Step      string // estado destino
	Comments  string
	CreatedAt time.Time
	CreatedBy string
}

// ApprovalRule es una regla de aprobación evaluada en orden por prioridad.
// De momento solo se implementa la condición sobre total_amount.
type ApprovalRule struct {
	ID            string
	Name          string
	Field         string // "total_amount"
	Operator      string // ">" | "<"
	Value         decimal.Decimal
	ApproverRoles []string
	Priority      int
	IsActive      bool
}
