package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/AlmacenPos-api/internal/domain"
	"github.com/jhoicas/AlmacenPos-api/internal/domain/entity"
	"github.com/jhoicas/AlmacenPos-api/internal/domain/repository"
)

var _ repository.ReceiveLogRepository = (*ReceiveLogRepo)(nil)

// ReceiveLogRepo persiste encabezados de recepción de mercadería.
type ReceiveLogRepo struct {
	q Querier
}

// NewReceiveLogRepository construye el adaptador. Pasar pool o tx (Querier).
func NewReceiveLogRepository(q Querier) *ReceiveLogRepo {
	return &ReceiveLogRepo{q: q}
}

// Create persiste un encabezado de recepción.
func (r *ReceiveLogRepo) Create(ctx context.Context, rl *entity.ReceiveLog) error {
	_, err := r.q.Exec(ctx, `
		INSERT INTO receive_logs
			(id, receive_number, warehouse_id, supplier_id, order_id, item_count,
			 total_cost, notes, created_at, created_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		rl.ID, rl.ReceiveNumber, rl.WarehouseID, rl.SupplierID, rl.OrderID, rl.ItemCount,
		rl.TotalCost, rl.Notes, rl.CreatedAt, rl.CreatedBy,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert receive log: %w", err)
	}
	return nil
}

// GetByID obtiene un encabezado por ID, o (nil, nil) si no existe.
func (r *ReceiveLogRepo) GetByID(ctx context.Context, id string) (*entity.ReceiveLog, error) {
	var rl entity.ReceiveLog
	err := r.q.QueryRow(ctx, `
		SELECT id, receive_number, warehouse_id, supplier_id, order_id, item_count,
		       total_cost, notes, created_at, created_by
		FROM receive_logs WHERE id = $1`, id).Scan(
		&rl.ID, &rl.ReceiveNumber, &rl.WarehouseID, &rl.SupplierID, &rl.OrderID, &rl.ItemCount,
		&rl.TotalCost, &rl.Notes, &rl.CreatedAt, &rl.CreatedBy,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get receive log: %w", err)
	}
	return &rl, nil
}

// List lista recepciones, más recientes primero.
func (r *ReceiveLogRepo) List(ctx context.Context, limit, offset int) ([]*entity.ReceiveLog, error) {
	rows, err := r.q.Query(ctx, `
		SELECT id, receive_number, warehouse_id, supplier_id, order_id, item_count,
		       total_cost, notes, created_at, created_by
		FROM receive_logs ORDER BY created_at DESC LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list receive logs: %w", err)
	}
	defer rows.Close()

	var out []*entity.ReceiveLog
	for rows.Next() {
		var rl entity.ReceiveLog
		err := rows.Scan(
			&rl.ID, &rl.ReceiveNumber, &rl.WarehouseID, &rl.SupplierID, &rl.OrderID, &rl.ItemCount,
			&rl.TotalCost, &rl.Notes, &rl.CreatedAt, &rl.CreatedBy,
		)
		if err != nil {
			return nil, fmt.Errorf("scan receive log: %w", err)
		}
		out = append(out, &rl)
	}
	return out, rows.Err()
}

// NextDailySequence devuelve la siguiente secuencia del día para el número
// RCV-{YYYYMMDD}-{NNN}. Devuelve 1 si no hay recepciones ese día.
func (r *ReceiveLogRepo) NextDailySequence(ctx context.Context, day time.Time) (int, error) {
	var count int
	err := r.q.QueryRow(ctx, `
		SELECT COUNT(*) FROM receive_logs
		WHERE created_at >= $1::date AND created_at < $1::date + interval '1 day'`,
		day).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("next daily sequence: %w", err)
	}
	return count + 1, nil
}
