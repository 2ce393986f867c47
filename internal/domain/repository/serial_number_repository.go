package repository

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/AlmacenPos-api/internal/domain/entity"
)

// SerialNumberFilter filtra listados de números de serie.
type SerialNumberFilter struct {
	ProductID   string
	WarehouseID string
	Status      string
	Limit       int
	Offset      int
}

// SerialStats es una fila agregada de conteo/valor por estado y bodega.
type SerialStats struct {
	WarehouseID string
	Status      string
	Count       int
	TotalValue  decimal.Decimal
}

// StatusUpdate describe una actualización de estado de número de serie.
// No hay tabla de transiciones: cualquier estado puede fijarse sobre cualquier otro.
type StatusUpdate struct {
	Status        string
	ReferenceType string
	ReferenceID   string
	SoldAt        *time.Time
}

// SerialNumberRepository define el puerto de persistencia de números de serie.
type SerialNumberRepository interface {
	CreateBatch(ctx context.Context, sns []*entity.SerialNumber) error
	GetByID(ctx context.Context, id string) (*entity.SerialNumber, error)
	GetByCode(ctx context.Context, code string) (*entity.SerialNumber, error)
	ExistsByCode(ctx context.Context, code string) (bool, error)
	// MaxSequence devuelve la secuencia máxima entre los códigos que comienzan
	// con prefix (0 si no hay ninguno). El sufijo tras el prefijo debe ser numérico.
	MaxSequence(ctx context.Context, prefix string) (int, error)
	List(ctx context.Context, f SerialNumberFilter) ([]*entity.SerialNumber, error)
	GetByIDs(ctx context.Context, ids []string) ([]*entity.SerialNumber, error)
	UpdateStatus(ctx context.Context, id string, upd StatusUpdate) error
	// BulkUpdateStatus actualiza en un solo round-trip; devuelve filas afectadas.
	BulkUpdateStatus(ctx context.Context, ids []string, upd StatusUpdate) (int, error)
	// Transfer cambia la bodega y marca transferred en un solo round-trip;
	// devuelve filas afectadas.
	Transfer(ctx context.Context, ids []string, toWarehouseID string) (int, error)
	// DeleteByIDs es la eliminación administrativa masiva (única eliminación física).
	DeleteByIDs(ctx context.Context, ids []string) (int, error)
	// CountAvailable cuenta unidades disponibles de un producto (warehouseID vacío = todas).
	CountAvailable(ctx context.Context, productID, warehouseID string) (int, error)
	Stats(ctx context.Context, warehouseID string) ([]SerialStats, error)
}

// StockMovementRepository define el puerto del libro mayor de movimientos
// (append-only: solo inserciones y lecturas).
type StockMovementRepository interface {
	Create(ctx context.Context, m *entity.StockMovement) error
	CreateBatch(ctx context.Context, ms []*entity.StockMovement) error
	ListBySerialNumber(ctx context.Context, serialNumberID string) ([]*entity.StockMovement, error)
	ListByProduct(ctx context.Context, productID string, limit, offset int) ([]*entity.StockMovement, error)
}
