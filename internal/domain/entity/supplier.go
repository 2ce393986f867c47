package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Supplier representa un proveedor activo del catálogo de compras.
type Supplier struct {
	ID            string
	Code          string
	Name          string
	ContactPerson string
	Phone         string
	Email         string
	Address       string
	TaxID         string
	IsActive      bool
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// SupplierProductMapping es la arista muchos-a-muchos proveedor→producto con
// costo, tiempo de entrega y calificaciones. Solo se usa para el scoring de
// selección de proveedor; la lógica de compras nunca la muta.
type SupplierProductMapping struct {
	ID             string
	SupplierID     string
	SupplierName   string
	ProductID      string
	UnitCost       decimal.Decimal
	LeadTimeDays   int
	QualityRating  float64 // 1..5
	DeliveryRating float64 // 1..5 (confiabilidad de entrega)
	CostRating     float64 // 1..5 (1 = más barato)
	MinOrderQty    int
	IsPreferred    bool
	Priority       int
	IsActive       bool
	CreatedAt      time.Time
	UpdatedAt      time.Time
}
