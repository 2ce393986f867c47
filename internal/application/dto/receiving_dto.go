package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/AlmacenPos-api/internal/domain/entity"
)

// ReceiveItem línea de una recepción de mercancía: genera Quantity números de serie.
type ReceiveItem struct {
	ProductID string          `json:"product_id"`
	Quantity  int             `json:"quantity"`
	UnitCost  decimal.Decimal `json:"unit_cost"`
}

// ReceiveGoodsRequest body para POST /api/receiving.
type ReceiveGoodsRequest struct {
	WarehouseID string        `json:"warehouse_id"`
	SupplierID  string        `json:"supplier_id,omitempty"`
	OrderID     string        `json:"order_id,omitempty"`
	Notes       string        `json:"notes,omitempty"`
	Items       []ReceiveItem `json:"items"`
}

// ReceiveGoodsResponse resultado de la recepción. Las fallas por ítem se aíslan.
type ReceiveGoodsResponse struct {
	ReceiveNumber string              `json:"receive_number"`
	ReceiveLogID  string              `json:"receive_log_id"`
	Items         []ReceiveItemResult `json:"items"`
}

// ReceiveLogDTO encabezado de recepción para la API.
type ReceiveLogDTO struct {
	ID            string          `json:"id"`
	ReceiveNumber string          `json:"receive_number"`
	WarehouseID   string          `json:"warehouse_id"`
	SupplierID    string          `json:"supplier_id,omitempty"`
	OrderID       string          `json:"order_id,omitempty"`
	ItemCount     int             `json:"item_count"`
	TotalCost     decimal.Decimal `json:"total_cost"`
	Notes         string          `json:"notes,omitempty"`
	CreatedAt     time.Time       `json:"created_at"`
	CreatedBy     string          `json:"created_by"`
}

// FromReceiveLog convierte la entidad a DTO.
func FromReceiveLog(rl *entity.ReceiveLog) ReceiveLogDTO {
	return ReceiveLogDTO{
		ID:            rl.ID,
		ReceiveNumber: rl.ReceiveNumber,
		WarehouseID:   rl.WarehouseID,
		SupplierID:    rl.SupplierID,
		OrderID:       rl.OrderID,
		ItemCount:     rl.ItemCount,
		TotalCost:     rl.TotalCost,
		Notes:         rl.Notes,
		CreatedAt:     rl.CreatedAt,
		CreatedBy:     rl.CreatedBy,
	}
}

// ReceiveItemResult resultado por ítem de la recepción.
type ReceiveItemResult struct {
	ProductID     string   `json:"product_id"`
	SerialNumbers []string `json:"serial_numbers,omitempty"`
	Duplicates    []string `json:"duplicates,omitempty"`
	Error         string   `json:"error,omitempty"`
}
