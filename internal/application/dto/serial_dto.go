package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/AlmacenPos-api/internal/domain/entity"
)

// GenerateSerialsRequest body para POST /api/serials/generate.
type GenerateSerialsRequest struct {
	ProductID    string          `json:"product_id"`
	WarehouseID  string          `json:"warehouse_id"`
	Quantity     int             `json:"quantity"`
	UnitCost     decimal.Decimal `json:"unit_cost"`
	IncludeMonth bool            `json:"include_month,omitempty"`
	// Pattern opcional; vacío = {productCode}-{year}-{sequence:3}.
	Pattern string `json:"pattern,omitempty"`
}

// GenerateSerialsResponse resultado de un lote de generación.
// Los códigos en conflicto no abortan el lote: se reportan en duplicates/errors
// y los demás se devuelven como éxitos.
type GenerateSerialsResponse struct {
	SerialNumbers []string `json:"serial_numbers"`
	Duplicates    []string `json:"duplicates,omitempty"`
	Errors        []string `json:"errors,omitempty"`
}

// BulkStatusRequest body para PATCH /api/serials/status.
type BulkStatusRequest struct {
	SerialNumberIDs []string `json:"serial_number_ids"`
	Status          string   `json:"status"`
	ReferenceType   string   `json:"reference_type,omitempty"`
	ReferenceID     string   `json:"reference_id,omitempty"`
}

// TransferSerialsRequest body para POST /api/serials/transfer.
type TransferSerialsRequest struct {
	SerialNumberIDs []string `json:"serial_number_ids"`
	ToWarehouseID   string   `json:"to_warehouse_id"`
	Notes           string   `json:"notes,omitempty"`
}

// ValidateSerialResponse resultado de validar un código.
type ValidateSerialResponse struct {
	Code    string `json:"code"`
	Valid   bool   `json:"valid"`
	Exists  bool   `json:"exists"`
	Message string `json:"message,omitempty"`
}

// SerialNumberDTO número de serie para la API.
type SerialNumberDTO struct {
	ID            string          `json:"id"`
	Code          string          `json:"code"`
	ProductID     string          `json:"product_id"`
	WarehouseID   string          `json:"warehouse_id"`
	UnitCost      decimal.Decimal `json:"unit_cost"`
	Status        string          `json:"status"`
	ReferenceType string          `json:"reference_type,omitempty"`
	ReferenceID   string          `json:"reference_id,omitempty"`
	SoldAt        *time.Time      `json:"sold_at,omitempty"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

// FromSerialNumber convierte la entidad a DTO.
func FromSerialNumber(sn *entity.SerialNumber) SerialNumberDTO {
	return SerialNumberDTO{
		ID:            sn.ID,
		Code:          sn.Code,
		ProductID:     sn.ProductID,
		WarehouseID:   sn.WarehouseID,
		UnitCost:      sn.UnitCost,
		Status:        sn.Status,
		ReferenceType: sn.ReferenceType,
		ReferenceID:   sn.ReferenceID,
		SoldAt:        sn.SoldAt,
		CreatedAt:     sn.CreatedAt,
		UpdatedAt:     sn.UpdatedAt,
	}
}

// SerialStatsRow una fila del agregado de estadísticas por estado/bodega.
type SerialStatsRow struct {
	WarehouseID string          `json:"warehouse_id"`
	Status      string          `json:"status"`
	Count       int             `json:"count"`
	TotalValue  decimal.Decimal `json:"total_value"`
}
