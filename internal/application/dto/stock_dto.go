package dto

import (
	"github.com/shopspring/decimal"

	"github.com/jhoicas/AlmacenPos-api/internal/domain/entity"
)

// StockLevelDTO representa una fila de la vista de stock para la API.
type StockLevelDTO struct {
	ProductID      string          `json:"product_id"`
	ProductCode    string          `json:"product_code"`
	ProductName    string          `json:"product_name"`
	WarehouseID    string          `json:"warehouse_id"`
	WarehouseName  string          `json:"warehouse_name"`
	TotalQty       int             `json:"total_qty"`
	AvailableQty   int             `json:"available_qty"`
	SoldQty        int             `json:"sold_qty"`
	TransferredQty int             `json:"transferred_qty"`
	ClaimedQty     int             `json:"claimed_qty"`
	DamagedQty     int             `json:"damaged_qty"`
	ReservedQty    int             `json:"reserved_qty"`
	AverageCost    decimal.Decimal `json:"average_cost"`
	AvailableValue decimal.Decimal `json:"available_value"`
}

// FromStockLevel convierte la entidad a DTO.
func FromStockLevel(l entity.StockLevel) StockLevelDTO {
	return StockLevelDTO{
		ProductID:      l.ProductID,
		ProductCode:    l.ProductCode,
		ProductName:    l.ProductName,
		WarehouseID:    l.WarehouseID,
		WarehouseName:  l.WarehouseName,
		TotalQty:       l.TotalQty,
		AvailableQty:   l.AvailableQty,
		SoldQty:        l.SoldQty,
		TransferredQty: l.TransferredQty,
		ClaimedQty:     l.ClaimedQty,
		DamagedQty:     l.DamagedQty,
		ReservedQty:    l.ReservedQty,
		AverageCost:    l.AverageCost,
		AvailableValue: l.AvailableValue,
	}
}

// WarehouseSummaryDTO agregado de una bodega para la API.
type WarehouseSummaryDTO struct {
	WarehouseID     string          `json:"warehouse_id"`
	WarehouseName   string          `json:"warehouse_name"`
	ProductCount    int             `json:"product_count"`
	TotalQty        int             `json:"total_qty"`
	AvailableQty    int             `json:"available_qty"`
	AvailableValue  decimal.Decimal `json:"available_value"`
	LowStockCount   int             `json:"low_stock_count"`
	OutOfStockCount int             `json:"out_of_stock_count"`
}
