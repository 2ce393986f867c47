package entity

import "time"

// Estrategias de resolución de conflictos de sincronización POS.
const (
	StrategyPOSWins         = "pos_wins"
	StrategySupplierWins    = "supplier_wins"
	StrategyLatestTimestamp = "latest_timestamp"
	StrategyManualReview    = "manual_review"
)

// Estados de un resultado de sincronización.
const (
	SyncStatusSuccess = "success"
	SyncStatusPartial = "partial"
	SyncStatusFailed  = "failed"
)

// POSInventoryItem es una lectura de stock reportada por el sistema POS externo.
type POSInventoryItem struct {
	ProductCode string
	WarehouseID string
	Quantity    int
	UpdatedAt   time.Time
}

// InventoryConflict es una discrepancia entre el stock del POS y el del sistema
// para un mismo producto/bodega.
type InventoryConflict struct {
	ID            string
	IntegrationID string
	ProductID     string
	WarehouseID   string
	POSQty        int
	SystemQty     int
	ResolvedQty   int
	POSUpdatedAt    time.Time
	SystemUpdatedAt time.Time
	Strategy      string
	Resolved      bool
	CreatedAt     time.Time
	ResolvedAt    *time.Time
}

// SyncResult es el registro de una corrida de sincronización (integration_sync_log).
type SyncResult struct {
	ID                string
	IntegrationID     string
	Status            string // success | partial | failed
	ItemsFetched      int
	ItemsUpdated      int
	ConflictsFound    int
	ConflictsResolved int
	AlertsGenerated   int
	OrdersCreated     int
	ErrorMessage      string
	StartedAt         time.Time
	FinishedAt        time.Time
}
