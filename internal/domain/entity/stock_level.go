package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// StockLevel es una fila de la vista materializada stock_summary_view:
// totales por (producto, bodega) derivados de los números de serie.
type StockLevel struct {
	ProductID      string
	ProductCode    string
	ProductName    string
	WarehouseID    string
	WarehouseName  string
	TotalQty       int
	AvailableQty   int
	SoldQty        int
	TransferredQty int
	ClaimedQty     int
	DamagedQty     int
	ReservedQty    int
	AverageCost    decimal.Decimal
	AvailableValue decimal.Decimal // AvailableQty * AverageCost
	UpdatedAt      time.Time
}

// WarehouseSummary agrega los niveles de stock de una bodega.
type WarehouseSummary struct {
	WarehouseID     string
	WarehouseName   string
	ProductCount    int
	TotalQty        int
	AvailableQty    int
	AvailableValue  decimal.Decimal
	LowStockCount   int // productos con 0 < disponible <= umbral
	OutOfStockCount int // productos con disponible = 0
}
