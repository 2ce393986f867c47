package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// ReceiveLog es el encabezado de una recepción de mercancía.
// Número con formato RCV-{YYYYMMDD}-{NNN} (secuencia diaria de 3 dígitos).
type ReceiveLog struct {
	ID            string
	ReceiveNumber string
	WarehouseID   string
	SupplierID    string
	OrderID       string // orden de compra que origina la entrega, si aplica
	ItemCount     int
	TotalCost     decimal.Decimal
	Notes         string
	CreatedAt     time.Time
	CreatedBy     string
}
