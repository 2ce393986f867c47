package repository

import (
	"context"
	"time"

	"github.com/jhoicas/AlmacenPos-api/internal/domain/entity"
)

// SyncLogRepository persiste resultados de corridas de sincronización POS.
type SyncLogRepository interface {
	Create(ctx context.Context, r *entity.SyncResult) error
	ListByIntegration(ctx context.Context, integrationID string, limit int) ([]*entity.SyncResult, error)
}

// ConflictRepository persiste conflictos de inventario POS vs sistema.
type ConflictRepository interface {
	Create(ctx context.Context, c *entity.InventoryConflict) error
	MarkResolved(ctx context.Context, id string, resolvedQty int, at time.Time) error
	ListOpen(ctx context.Context, integrationID string) ([]*entity.InventoryConflict, error)
}

// ReceiveLogRepository persiste encabezados de recepción de mercancía.
type ReceiveLogRepository interface {
	Create(ctx context.Context, r *entity.ReceiveLog) error
	GetByID(ctx context.Context, id string) (*entity.ReceiveLog, error)
	List(ctx context.Context, limit, offset int) ([]*entity.ReceiveLog, error)
	// NextDailySequence devuelve la siguiente secuencia del día para el número
	// RCV-{YYYYMMDD}-{NNN} (1 si no hay recepciones ese día).
	NextDailySequence(ctx context.Context, day time.Time) (int, error)
}

// UserRepository define el puerto de usuarios (auth).
type UserRepository interface {
	Create(ctx context.Context, u *entity.User) error
	FindByEmail(ctx context.Context, email string) (*entity.User, error)
	GetByID(ctx context.Context, id string) (*entity.User, error)
}
