package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jhoicas/AlmacenPos-api/internal/domain"
	"github.com/jhoicas/AlmacenPos-api/internal/domain/entity"
	"github.com/jhoicas/AlmacenPos-api/internal/domain/repository"
)

var _ repository.SyncLogRepository = (*SyncLogRepo)(nil)
var _ repository.ConflictRepository = (*ConflictRepo)(nil)

// SyncLogRepo persiste corridas de sincronización en integration_sync_log.
type SyncLogRepo struct {
	q Querier
}

// NewSyncLogRepository construye el adaptador. Pasar pool o tx (Querier).
func NewSyncLogRepository(q Querier) *SyncLogRepo {
	return &SyncLogRepo{q: q}
}

// Create persiste un resultado de sincronización.
func (r *SyncLogRepo) Create(ctx context.Context, res *entity.SyncResult) error {
	_, err := r.q.Exec(ctx, `
		INSERT INTO integration_sync_log
			(id, integration_id, status, items_fetched, items_updated, conflicts_found,
			 conflicts_resolved, alerts_generated, orders_created, error_message,
			 started_at, finished_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`,
		res.ID, res.IntegrationID, res.Status, res.ItemsFetched, res.ItemsUpdated,
		res.ConflictsFound, res.ConflictsResolved, res.AlertsGenerated, res.OrdersCreated,
		res.ErrorMessage, res.StartedAt, res.FinishedAt,
	)
	if err != nil {
		return fmt.Errorf("insert sync log: %w", err)
	}
	return nil
}

// ListByIntegration lista corridas de una integración, más recientes primero.
func (r *SyncLogRepo) ListByIntegration(ctx context.Context, integrationID string, limit int) ([]*entity.SyncResult, error) {
	rows, err := r.q.Query(ctx, `
		SELECT id, integration_id, status, items_fetched, items_updated, conflicts_found,
		       conflicts_resolved, alerts_generated, orders_created, error_message,
		       started_at, finished_at
		FROM integration_sync_log WHERE integration_id = $1
		ORDER BY started_at DESC LIMIT $2`, integrationID, limit)
	if err != nil {
		return nil, fmt.Errorf("list sync log: %w", err)
	}
	defer rows.Close()

	var out []*entity.SyncResult
	for rows.Next() {
		var res entity.SyncResult
		err := rows.Scan(
			&res.ID, &res.IntegrationID, &res.Status, &res.ItemsFetched, &res.ItemsUpdated,
			&res.ConflictsFound, &res.ConflictsResolved, &res.AlertsGenerated, &res.OrdersCreated,
			&res.ErrorMessage, &res.StartedAt, &res.FinishedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan sync log: %w", err)
		}
		out = append(out, &res)
	}
	return out, rows.Err()
}

// ConflictRepo persiste conflictos de inventario POS vs sistema.
type ConflictRepo struct {
	q Querier
}

// NewConflictRepository construye el adaptador. Pasar pool o tx (Querier).
func NewConflictRepository(q Querier) *ConflictRepo {
	return &ConflictRepo{q: q}
}

// Create persiste un conflicto (resuelto o abierto).
func (r *ConflictRepo) Create(ctx context.Context, c *entity.InventoryConflict) error {
	_, err := r.q.Exec(ctx, `
		INSERT INTO inventory_conflicts
			(id, integration_id, product_id, warehouse_id, pos_qty, system_qty, resolved_qty,
			 pos_updated_at, system_updated_at, strategy, resolved, created_at, resolved_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`,
		c.ID, c.IntegrationID, c.ProductID, c.WarehouseID, c.POSQty, c.SystemQty, c.ResolvedQty,
		c.POSUpdatedAt, c.SystemUpdatedAt, c.Strategy, c.Resolved, c.CreatedAt, c.ResolvedAt,
	)
	if err != nil {
		return fmt.Errorf("insert conflict: %w", err)
	}
	return nil
}

// MarkResolved marca un conflicto como resuelto con la cantidad decidida.
func (r *ConflictRepo) MarkResolved(ctx context.Context, id string, resolvedQty int, at time.Time) error {
	cmd, err := r.q.Exec(ctx, `
		UPDATE inventory_conflicts
		SET resolved = true, resolved_qty = $2, resolved_at = $3
		WHERE id = $1 AND resolved = false`,
		id, resolvedQty, at)
	if err != nil {
		return fmt.Errorf("resolve conflict: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// ListOpen lista los conflictos abiertos de una integración, más antiguos primero.
func (r *ConflictRepo) ListOpen(ctx context.Context, integrationID string) ([]*entity.InventoryConflict, error) {
	rows, err := r.q.Query(ctx, `
		SELECT id, integration_id, product_id, warehouse_id, pos_qty, system_qty, resolved_qty,
		       pos_updated_at, system_updated_at, strategy, resolved, created_at, resolved_at
		FROM inventory_conflicts
		WHERE integration_id = $1 AND resolved = false
		ORDER BY created_at`, integrationID)
	if err != nil {
		return nil, fmt.Errorf("list open conflicts: %w", err)
	}
	defer rows.Close()

	var out []*entity.InventoryConflict
	for rows.Next() {
		var c entity.InventoryConflict
		err := rows.Scan(
			&c.ID, &c.IntegrationID, &c.ProductID, &c.WarehouseID, &c.POSQty, &c.SystemQty, &c.ResolvedQty,
			&c.POSUpdatedAt, &c.SystemUpdatedAt, &c.Strategy, &c.Resolved, &c.CreatedAt, &c.ResolvedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan conflict: %w", err)
		}
		out = append(out, &c)
	}
	return out, rows.Err()
}

