package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/AlmacenPos-api/internal/domain/entity"
	"github.com/jhoicas/AlmacenPos-api/internal/domain/repository"
)

var _ repository.StockMovementRepository = (*StockMovementRepo)(nil)

const movementColumns = `id, product_id, warehouse_id, serial_number_id, type, quantity,
	unit_cost, reference_type, reference_id, notes, created_at, created_by`

// StockMovementRepo implementación del libro mayor de movimientos (append-only,
// usable con pool o tx). No hay Update ni Delete: las filas son inmutables.
type StockMovementRepo struct {
	q Querier
}

// NewStockMovementRepository construye el adaptador. Pasar pool o tx (Querier).
func NewStockMovementRepository(q Querier) *StockMovementRepo {
	return &StockMovementRepo{q: q}
}

// Create persiste un movimiento.
func (r *StockMovementRepo) Create(ctx context.Context, m *entity.StockMovement) error {
	_, err := r.q.Exec(ctx, `
		INSERT INTO stock_movements (`+movementColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`,
		m.ID, m.ProductID, m.WarehouseID, m.SerialNumberID, m.Type, m.Quantity,
		m.UnitCost, m.ReferenceType, m.ReferenceID, m.Notes, m.CreatedAt, m.CreatedBy,
	)
	if err != nil {
		return fmt.Errorf("insert movement: %w", err)
	}
	return nil
}

// CreateBatch persiste un lote de movimientos.
func (r *StockMovementRepo) CreateBatch(ctx context.Context, ms []*entity.StockMovement) error {
	for _, m := range ms {
		if err := r.Create(ctx, m); err != nil {
			return err
		}
	}
	return nil
}

// ListBySerialNumber lista los movimientos de una unidad, más antiguos primero.
func (r *StockMovementRepo) ListBySerialNumber(ctx context.Context, serialNumberID string) ([]*entity.StockMovement, error) {
	rows, err := r.q.Query(ctx, `
		SELECT `+movementColumns+` FROM stock_movements
		WHERE serial_number_id = $1 ORDER BY created_at`, serialNumberID)
	if err != nil {
		return nil, fmt.Errorf("list movements by serial: %w", err)
	}
	defer rows.Close()
	return collectMovements(rows)
}

// ListByProduct lista los movimientos de un producto, más recientes primero.
func (r *StockMovementRepo) ListByProduct(ctx context.Context, productID string, limit, offset int) ([]*entity.StockMovement, error) {
	rows, err := r.q.Query(ctx, `
		SELECT `+movementColumns+` FROM stock_movements
		WHERE product_id = $1 ORDER BY created_at DESC LIMIT $2 OFFSET $3`,
		productID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list movements by product: %w", err)
	}
	defer rows.Close()
	return collectMovements(rows)
}

func collectMovements(rows pgx.Rows) ([]*entity.StockMovement, error) {
	var out []*entity.StockMovement
	for rows.Next() {
		var m entity.StockMovement
		err := rows.Scan(
			&m.ID, &m.ProductID, &m.WarehouseID, &m.SerialNumberID, &m.Type, &m.Quantity,
			&m.UnitCost, &m.ReferenceType, &m.ReferenceID, &m.Notes, &m.CreatedAt, &m.CreatedBy,
		)
		if err != nil {
			return nil, fmt.Errorf("scan movement: %w", err)
		}
		out = append(out, &m)
	}
	return out, rows.Err()
}
