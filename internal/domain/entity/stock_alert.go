package entity

import "time"

// Niveles de urgencia de una alerta de stock.
const (
	UrgencyLow      = "low"
	UrgencyMedium   = "medium"
	UrgencyHigh     = "high"
	UrgencyCritical = "critical"
)

// Estados de una alerta de stock.
const (
	AlertStatusPending      = "pending"
	AlertStatusProcessing   = "processing"
	AlertStatusManualReview = "manual_review_required"
	AlertStatusResolved     = "resolved"
)

// StockAlert es una señal derivada: el stock disponible de un producto quedó
// en o bajo su punto de reorden. La genera el monitor, la consume el creador
// de órdenes de compra y la resuelve una entrega (o resolución manual).
type StockAlert struct {
	ID                  string
	ProductID           string
	ProductCode         string
	WarehouseID         string
	CurrentStock        int
	ReorderPoint        int
	ReorderQuantity     int
	Urgency             string
	PreferredSupplierID string
	Status              string
	CreatedAt           time.Time
	UpdatedAt           time.Time
}
