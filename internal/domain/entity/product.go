package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product representa un producto o SKU del inventario (multi-bodega).
// El stock disponible se deriva de las filas de números de serie; ReorderPoint
// dispara las alertas de stock (si es 0 se usa el valor por defecto del monitor).
type Product struct {
	ID                  string
	Code                string // código único, usado como prefijo del número de serie
	Name                string
	Description         string
	Price               decimal.Decimal // precio de venta
	Cost                decimal.Decimal // costo promedio ponderado
	ReorderPoint        int
	ReorderQuantity     int
	PreferredSupplierID string // vacío = sin proveedor preferido
	UnitMeasure         string
	IsActive            bool
	CreatedAt           time.Time
	UpdatedAt           time.Time
}
