package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/AlmacenPos-api/internal/domain"
	"github.com/jhoicas/AlmacenPos-api/internal/domain/entity"
	"github.com/jhoicas/AlmacenPos-api/internal/domain/repository"
)

var _ repository.StockAlertRepository = (*StockAlertRepo)(nil)

const alertColumns = `id, product_id, product_code, warehouse_id, current_stock,
	reorder_point, reorder_quantity, urgency, preferred_supplier_id, status,
	created_at, updated_at`

// StockAlertRepo implementación del puerto StockAlertRepository (usable con pool o tx).
type StockAlertRepo struct {
	q Querier
}

// NewStockAlertRepository construye el adaptador. Pasar pool o tx (Querier).
func NewStockAlertRepository(q Querier) *StockAlertRepo {
	return &StockAlertRepo{q: q}
}

// UpsertPending inserta la alerta o actualiza la pendiente existente del mismo
// (producto, bodega). Se apoya en el índice único parcial
// stock_alerts_pending_product_warehouse_idx (WHERE status = 'pending').
// Si el upsert actualiza, el ID de la entidad se reemplaza por el de la fila viva.
func (r *StockAlertRepo) UpsertPending(ctx context.Context, a *entity.StockAlert) error {
	query := `
		INSERT INTO stock_alerts (` + alertColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		ON CONFLICT (product_id, warehouse_id) WHERE status = 'pending'
		DO UPDATE SET current_stock = EXCLUDED.current_stock,
		              reorder_point = EXCLUDED.reorder_point,
		              reorder_quantity = EXCLUDED.reorder_quantity,
		              urgency = EXCLUDED.urgency,
		              preferred_supplier_id = EXCLUDED.preferred_supplier_id,
		              updated_at = EXCLUDED.updated_at
		RETURNING id`
	var id string
	err := r.q.QueryRow(ctx, query,
		a.ID, a.ProductID, a.ProductCode, a.WarehouseID, a.CurrentStock,
		a.ReorderPoint, a.ReorderQuantity, a.Urgency, a.PreferredSupplierID, a.Status,
		a.CreatedAt, a.UpdatedAt,
	).Scan(&id)
	if err != nil {
		return fmt.Errorf("upsert alert: %w", err)
	}
	a.ID = id
	return nil
}

// GetByID obtiene una alerta por ID.
func (r *StockAlertRepo) GetByID(ctx context.Context, id string) (*entity.StockAlert, error) {
	a, err := scanAlert(r.q.QueryRow(ctx,
		`SELECT `+alertColumns+` FROM stock_alerts WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get alert: %w", err)
	}
	return a, nil
}

// GetByIDs obtiene varias alertas por ID.
func (r *StockAlertRepo) GetByIDs(ctx context.Context, ids []string) ([]*entity.StockAlert, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	rows, err := r.q.Query(ctx,
		`SELECT `+alertColumns+` FROM stock_alerts WHERE id = ANY($1)`, ids)
	if err != nil {
		return nil, fmt.Errorf("get alerts by ids: %w", err)
	}
	defer rows.Close()
	return collectAlerts(rows)
}

// ListByStatus lista alertas por estado, más urgentes primero.
func (r *StockAlertRepo) ListByStatus(ctx context.Context, status string, limit, offset int) ([]*entity.StockAlert, error) {
	rows, err := r.q.Query(ctx, `
		SELECT `+alertColumns+` FROM stock_alerts WHERE status = $1
		ORDER BY CASE urgency
			WHEN 'critical' THEN 0 WHEN 'high' THEN 1 WHEN 'medium' THEN 2 ELSE 3
		END, created_at
		LIMIT $2 OFFSET $3`, status, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list alerts: %w", err)
	}
	defer rows.Close()
	return collectAlerts(rows)
}

// UpdateStatus fija el estado de una alerta.
func (r *StockAlertRepo) UpdateStatus(ctx context.Context, id, status string) error {
	cmd, err := r.q.Exec(ctx,
		`UPDATE stock_alerts SET status = $2, updated_at = now() WHERE id = $1`,
		id, status)
	if err != nil {
		return fmt.Errorf("update alert status: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// BulkUpdateStatus fija el estado de varias alertas.
func (r *StockAlertRepo) BulkUpdateStatus(ctx context.Context, ids []string, status string) error {
	if len(ids) == 0 {
		return nil
	}
	_, err := r.q.Exec(ctx,
		`UPDATE stock_alerts SET status = $2, updated_at = now() WHERE id = ANY($1)`,
		ids, status)
	if err != nil {
		return fmt.Errorf("bulk update alert status: %w", err)
	}
	return nil
}

// ResolvePendingByProduct marca como resueltas las alertas pendientes del producto.
func (r *StockAlertRepo) ResolvePendingByProduct(ctx context.Context, productID, warehouseID string) (int, error) {
	query := `
		UPDATE stock_alerts SET status = $2, updated_at = now()
		WHERE product_id = $1 AND status = $3`
	args := []any{productID, entity.AlertStatusResolved, entity.AlertStatusPending}
	if warehouseID != "" {
		query += ` AND warehouse_id = $4`
		args = append(args, warehouseID)
	}
	cmd, err := r.q.Exec(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("resolve alerts: %w", err)
	}
	return int(cmd.RowsAffected()), nil
}

func scanAlert(row pgx.Row) (*entity.StockAlert, error) {
	var a entity.StockAlert
	err := row.Scan(
		&a.ID, &a.ProductID, &a.ProductCode, &a.WarehouseID, &a.CurrentStock,
		&a.ReorderPoint, &a.ReorderQuantity, &a.Urgency, &a.PreferredSupplierID, &a.Status,
		&a.CreatedAt, &a.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func collectAlerts(rows pgx.Rows) ([]*entity.StockAlert, error) {
	var out []*entity.StockAlert
	for rows.Next() {
		a, err := scanAlert(rows)
		if err != nil {
			return nil, fmt.Errorf("scan alert: %w", err)
		}
		out = append(out, a)
	}
	return out, rows.Err()
}
