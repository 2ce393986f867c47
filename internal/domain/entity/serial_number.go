package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Estados de un número de serie. No hay tabla de transiciones: cualquier estado
// puede pasar a cualquier otro por actualización directa (comportamiento heredado
// del sistema origen; ver DESIGN.md).
const (
	SNStatusAvailable   = "available"
	SNStatusSold        = "sold"
	SNStatusTransferred = "transferred"
	SNStatusClaimed     = "claimed"
	SNStatusDamaged     = "damaged"
	SNStatusReserved    = "reserved"
)

// SNStatuses lista los estados válidos, en orden estable para reportes.
var SNStatuses = []string{
	SNStatusAvailable, SNStatusSold, SNStatusTransferred,
	SNStatusClaimed, SNStatusDamaged, SNStatusReserved,
}

// IsValidSNStatus indica si s es un estado de número de serie conocido.
func IsValidSNStatus(s string) bool {
	for _, v := range SNStatuses {
		if v == s {
			return true
		}
	}
	return false
}

// SerialNumber identifica una unidad física de inventario.
// El código es globalmente único con patrón {productCode}-{año}[-{mes}]-{secuencia}.
// Se crea en la recepción de mercancía (una fila por unidad) y nunca se borra
// físicamente salvo por eliminación administrativa masiva.
type SerialNumber struct {
	ID          string
	Code        string
	ProductID   string
	WarehouseID string
	UnitCost    decimal.Decimal
	Status      string
	// Metadatos opcionales de venta/referencia (factura, contrato, reclamo...).
	ReferenceType string
	ReferenceID   string
	SoldAt        *time.Time
	CreatedAt     time.Time
	UpdatedAt     time.Time
}
