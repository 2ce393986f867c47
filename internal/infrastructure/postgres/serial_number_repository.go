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

var _ repository.SerialNumberRepository = (*SerialNumberRepo)(nil)

const serialColumns = `id, code, product_id, warehouse_id, unit_cost, status,
	reference_type, reference_id, sold_at, created_at, updated_at`

// SerialNumberRepo implementación del puerto SerialNumberRepository (usable con pool o tx).
type SerialNumberRepo struct {
	q Querier
}

// NewSerialNumberRepository construye el adaptador. Pasar pool o tx (Querier).
func NewSerialNumberRepository(q Querier) *SerialNumberRepo {
	return &SerialNumberRepo{q: q}
}

func scanSerial(row pgx.Row) (*entity.SerialNumber, error) {
	var sn entity.SerialNumber
	err := row.Scan(
		&sn.ID, &sn.Code, &sn.ProductID, &sn.WarehouseID, &sn.UnitCost, &sn.Status,
		&sn.ReferenceType, &sn.ReferenceID, &sn.SoldAt, &sn.CreatedAt, &sn.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &sn, nil
}

// CreateBatch inserta un lote de números de serie.
func (r *SerialNumberRepo) CreateBatch(ctx context.Context, sns []*entity.SerialNumber) error {
	if len(sns) == 0 {
		return nil
	}
	query := `
		INSERT INTO product_serial_numbers (` + serialColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`
	for _, sn := range sns {
		_, err := r.q.Exec(ctx, query,
			sn.ID, sn.Code, sn.ProductID, sn.WarehouseID, sn.UnitCost, sn.Status,
			sn.ReferenceType, sn.ReferenceID, sn.SoldAt, sn.CreatedAt, sn.UpdatedAt,
		)
		if err != nil {
			if isUniqueViolation(err) {
				return fmt.Errorf("%w: %s", domain.ErrDuplicate, sn.Code)
			}
			return fmt.Errorf("insert serial %s: %w", sn.Code, err)
		}
	}
	return nil
}

// GetByID obtiene un número de serie por ID.
func (r *SerialNumberRepo) GetByID(ctx context.Context, id string) (*entity.SerialNumber, error) {
	sn, err := scanSerial(r.q.QueryRow(ctx,
		`SELECT `+serialColumns+` FROM product_serial_numbers WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get serial: %w", err)
	}
	return sn, nil
}

// GetByCode obtiene un número de serie por código.
func (r *SerialNumberRepo) GetByCode(ctx context.Context, code string) (*entity.SerialNumber, error) {
	sn, err := scanSerial(r.q.QueryRow(ctx,
		`SELECT `+serialColumns+` FROM product_serial_numbers WHERE code = $1`, code))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get serial by code: %w", err)
	}
	return sn, nil
}

// ExistsByCode indica si el código ya está tomado.
func (r *SerialNumberRepo) ExistsByCode(ctx context.Context, code string) (bool, error) {
	var exists bool
	err := r.q.QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM product_serial_numbers WHERE code = $1)`, code).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("exists serial: %w", err)
	}
	return exists, nil
}

// MaxSequence devuelve la secuencia máxima entre los códigos con el prefijo dado.
// El sufijo tras el prefijo debe ser numérico; los no numéricos se ignoran.
func (r *SerialNumberRepo) MaxSequence(ctx context.Context, prefix string) (int, error) {
	var max *int
	err := r.q.QueryRow(ctx, `
		SELECT MAX(substring(code FROM length($1) + 1)::int)
		FROM product_serial_numbers
		WHERE code LIKE $1 || '%'
		  AND substring(code FROM length($1) + 1) ~ '^[0-9]+$'`,
		prefix).Scan(&max)
	if err != nil {
		return 0, fmt.Errorf("max sequence: %w", err)
	}
	if max == nil {
		return 0, nil
	}
	return *max, nil
}

// List lista números de serie con filtro y paginación.
func (r *SerialNumberRepo) List(ctx context.Context, f repository.SerialNumberFilter) ([]*entity.SerialNumber, error) {
	query := `SELECT ` + serialColumns + ` FROM product_serial_numbers WHERE 1=1`
	args := []any{}
	n := 0
	add := func(cond string, v any) {
		n++
		query += fmt.Sprintf(" AND %s = $%d", cond, n)
		args = append(args, v)
	}
	if f.ProductID != "" {
		add("product_id", f.ProductID)
	}
	if f.WarehouseID != "" {
		add("warehouse_id", f.WarehouseID)
	}
	if f.Status != "" {
		add("status", f.Status)
	}
	limit := f.Limit
	if limit <= 0 {
		limit = 100
	}
	query += fmt.Sprintf(" ORDER BY code LIMIT $%d OFFSET $%d", n+1, n+2)
	args = append(args, limit, f.Offset)

	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list serials: %w", err)
	}
	defer rows.Close()
	return collectSerials(rows)
}

// GetByIDs obtiene varios números de serie por ID.
func (r *SerialNumberRepo) GetByIDs(ctx context.Context, ids []string) ([]*entity.SerialNumber, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	rows, err := r.q.Query(ctx,
		`SELECT `+serialColumns+` FROM product_serial_numbers WHERE id = ANY($1)`, ids)
	if err != nil {
		return nil, fmt.Errorf("get serials by ids: %w", err)
	}
	defer rows.Close()
	return collectSerials(rows)
}

// UpdateStatus fija el estado de un número de serie.
func (r *SerialNumberRepo) UpdateStatus(ctx context.Context, id string, upd repository.StatusUpdate) error {
	cmd, err := r.q.Exec(ctx, `
		UPDATE product_serial_numbers
		SET status = $2, reference_type = $3, reference_id = $4,
		    sold_at = COALESCE($5, sold_at), updated_at = now()
		WHERE id = $1`,
		id, upd.Status, upd.ReferenceType, upd.ReferenceID, upd.SoldAt,
	)
	if err != nil {
		return fmt.Errorf("update serial status: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// BulkUpdateStatus fija el estado de varios números de serie en un round-trip.
func (r *SerialNumberRepo) BulkUpdateStatus(ctx context.Context, ids []string, upd repository.StatusUpdate) (int, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	cmd, err := r.q.Exec(ctx, `
		UPDATE product_serial_numbers
		SET status = $2, reference_type = $3, reference_id = $4,
		    sold_at = COALESCE($5, sold_at), updated_at = now()
		WHERE id = ANY($1)`,
		ids, upd.Status, upd.ReferenceType, upd.ReferenceID, upd.SoldAt,
	)
	if err != nil {
		return 0, fmt.Errorf("bulk update serial status: %w", err)
	}
	return int(cmd.RowsAffected()), nil
}

// Transfer cambia la bodega y marca transferred en un round-trip.
func (r *SerialNumberRepo) Transfer(ctx context.Context, ids []string, toWarehouseID string) (int, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	cmd, err := r.q.Exec(ctx, `
		UPDATE product_serial_numbers
		SET warehouse_id = $2, status = $3, updated_at = now()
		WHERE id = ANY($1)`,
		ids, toWarehouseID, entity.SNStatusTransferred,
	)
	if err != nil {
		return 0, fmt.Errorf("transfer serials: %w", err)
	}
	return int(cmd.RowsAffected()), nil
}

// DeleteByIDs elimina físicamente números de serie (solo uso administrativo).
func (r *SerialNumberRepo) DeleteByIDs(ctx context.Context, ids []string) (int, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	cmd, err := r.q.Exec(ctx,
		`DELETE FROM product_serial_numbers WHERE id = ANY($1)`, ids)
	if err != nil {
		return 0, fmt.Errorf("delete serials: %w", err)
	}
	return int(cmd.RowsAffected()), nil
}

// CountAvailable cuenta unidades disponibles de un producto (warehouseID vacío = todas).
func (r *SerialNumberRepo) CountAvailable(ctx context.Context, productID, warehouseID string) (int, error) {
	query := `
		SELECT COUNT(*) FROM product_serial_numbers
		WHERE product_id = $1 AND status = $2`
	args := []any{productID, entity.SNStatusAvailable}
	if warehouseID != "" {
		query += ` AND warehouse_id = $3`
		args = append(args, warehouseID)
	}
	var n int
	if err := r.q.QueryRow(ctx, query, args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("count available: %w", err)
	}
	return n, nil
}

// Stats devuelve conteo y valor agregados por estado y bodega.
func (r *SerialNumberRepo) Stats(ctx context.Context, warehouseID string) ([]repository.SerialStats, error) {
	query := `
		SELECT warehouse_id, status, COUNT(*), COALESCE(SUM(unit_cost), 0)
		FROM product_serial_numbers`
	args := []any{}
	if warehouseID != "" {
		query += ` WHERE warehouse_id = $1`
		args = append(args, warehouseID)
	}
	query += ` GROUP BY warehouse_id, status ORDER BY warehouse_id, status`

	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("serial stats: %w", err)
	}
	defer rows.Close()

	var out []repository.SerialStats
	for rows.Next() {
		var s repository.SerialStats
		if err := rows.Scan(&s.WarehouseID, &s.Status, &s.Count, &s.TotalValue); err != nil {
			return nil, fmt.Errorf("scan stats: %w", err)
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

func collectSerials(rows pgx.Rows) ([]*entity.SerialNumber, error) {
	var out []*entity.SerialNumber
	for rows.Next() {
		sn, err := scanSerial(rows)
		if err != nil {
			return nil, fmt.Errorf("scan serial: %w", err)
		}
		out = append(out, sn)
	}
	return out, rows.Err()
}
