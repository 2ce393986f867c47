package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Tipos de movimiento de inventario.
const (
	MovementTypeReceive     = "receive"      // recepción de mercancía
	MovementTypeWithdraw    = "withdraw"     // salida / venta
	MovementTypeTransferOut = "transfer_out" // traslado: salida en bodega origen
	MovementTypeTransferIn  = "transfer_in"  // traslado: entrada en bodega destino
	MovementTypeAdjustment  = "adjustment"   // ajuste
	MovementTypeClaim       = "claim"        // reclamo / garantía
	MovementTypeReturn      = "return"       // devolución
)

// StockMovement es una entrada del libro mayor de inventario (append-only).
// Inmutable una vez escrita; registra el cambio de cantidad para la tupla
// producto/bodega/número de serie y una referencia opcional al evento de negocio.
type StockMovement struct {
	ID             string
	ProductID      string
	WarehouseID    string
	SerialNumberID string // vacío para movimientos agregados (ej. entrega POS)
	Type           string
	Quantity       int // positivo entrada, negativo salida
	UnitCost       decimal.Decimal
	ReferenceType  string // receive_log, sale, transfer, delivery...
	ReferenceID    string
	Notes          string
	CreatedAt      time.Time
	CreatedBy      string
}
