package repository

import (
	"context"

	"github.com/jhoicas/AlmacenPos-api/internal/domain/entity"
)

// StockAlertRepository define el puerto de persistencia de alertas de stock.
type StockAlertRepository interface {
	// UpsertPending inserta la alerta o, si ya existe una pendiente para el mismo
	// (producto, bodega), actualiza sus valores (generación idempotente del monitor).
	UpsertPending(ctx context.Context, a *entity.StockAlert) error
	GetByID(ctx context.Context, id string) (*entity.StockAlert, error)
	GetByIDs(ctx context.Context, ids []string) ([]*entity.StockAlert, error)
	ListByStatus(ctx context.Context, status string, limit, offset int) ([]*entity.StockAlert, error)
	UpdateStatus(ctx context.Context, id, status string) error
	BulkUpdateStatus(ctx context.Context, ids []string, status string) error
	// ResolvePendingByProduct marca como resueltas las alertas pendientes del
	// producto (warehouseID vacío = todas las bodegas); devuelve filas afectadas.
	ResolvePendingByProduct(ctx context.Context, productID, warehouseID string) (int, error)
}
