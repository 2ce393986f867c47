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

var _ repository.SupplierRepository = (*SupplierRepo)(nil)

// SupplierRepo implementación del puerto SupplierRepository (usable con pool o tx).
type SupplierRepo struct {
	q Querier
}

// NewSupplierRepository construye el adaptador. Pasar pool o tx (Querier).
func NewSupplierRepository(q Querier) *SupplierRepo {
	return &SupplierRepo{q: q}
}

// GetByID obtiene un proveedor por ID.
func (r *SupplierRepo) GetByID(ctx context.Context, id string) (*entity.Supplier, error) {
	var s entity.Supplier
	err := r.q.QueryRow(ctx, `
		SELECT id, code, name, contact_person, phone, email, address, tax_id,
		       is_active, created_at, updated_at
		FROM suppliers WHERE id = $1`, id).Scan(
		&s.ID, &s.Code, &s.Name, &s.ContactPerson, &s.Phone, &s.Email, &s.Address,
		&s.TaxID, &s.IsActive, &s.CreatedAt, &s.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get supplier: %w", err)
	}
	return &s, nil
}

// List lista proveedores con paginación.
func (r *SupplierRepo) List(ctx context.Context, limit, offset int) ([]*entity.Supplier, error) {
	rows, err := r.q.Query(ctx, `
		SELECT id, code, name, contact_person, phone, email, address, tax_id,
		       is_active, created_at, updated_at
		FROM suppliers ORDER BY name LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list suppliers: %w", err)
	}
	defer rows.Close()

	var out []*entity.Supplier
	for rows.Next() {
		var s entity.Supplier
		err := rows.Scan(
			&s.ID, &s.Code, &s.Name, &s.ContactPerson, &s.Phone, &s.Email, &s.Address,
			&s.TaxID, &s.IsActive, &s.CreatedAt, &s.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan supplier: %w", err)
		}
		out = append(out, &s)
	}
	return out, rows.Err()
}

// Create persiste un proveedor.
func (r *SupplierRepo) Create(ctx context.Context, s *entity.Supplier) error {
	_, err := r.q.Exec(ctx, `
		INSERT INTO suppliers (id, code, name, contact_person, phone, email, address,
		                       tax_id, is_active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		s.ID, s.Code, s.Name, s.ContactPerson, s.Phone, s.Email, s.Address,
		s.TaxID, s.IsActive, s.CreatedAt, s.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert supplier: %w", err)
	}
	return nil
}

const mappingColumns = `m.id, m.supplier_id, s.name, m.product_id, m.unit_cost,
	m.lead_time_days, m.quality_rating, m.delivery_rating, m.cost_rating,
	m.min_order_qty, m.is_preferred, m.priority, m.is_active, m.created_at, m.updated_at`

// GetActiveMappingsByProduct devuelve los mappings activos de un producto
// ordenados por priority ascendente, con el nombre del proveedor resuelto.
func (r *SupplierRepo) GetActiveMappingsByProduct(ctx context.Context, productID string) ([]entity.SupplierProductMapping, error) {
	rows, err := r.q.Query(ctx, `
		SELECT `+mappingColumns+`
		FROM supplier_product_mappings m
		JOIN suppliers s ON s.id = m.supplier_id
		WHERE m.product_id = $1 AND m.is_active = true AND s.is_active = true
		ORDER BY m.priority`, productID)
	if err != nil {
		return nil, fmt.Errorf("list supplier mappings: %w", err)
	}
	defer rows.Close()

	var out []entity.SupplierProductMapping
	for rows.Next() {
		m, err := scanMapping(rows)
		if err != nil {
			return nil, fmt.Errorf("scan mapping: %w", err)
		}
		out = append(out, *m)
	}
	return out, rows.Err()
}

// GetMapping devuelve el mapping proveedor-producto, o (nil, nil) si no existe.
func (r *SupplierRepo) GetMapping(ctx context.Context, supplierID, productID string) (*entity.SupplierProductMapping, error) {
	m, err := scanMapping(r.q.QueryRow(ctx, `
		SELECT `+mappingColumns+`
		FROM supplier_product_mappings m
		JOIN suppliers s ON s.id = m.supplier_id
		WHERE m.supplier_id = $1 AND m.product_id = $2`, supplierID, productID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get mapping: %w", err)
	}
	return m, nil
}

func scanMapping(row pgx.Row) (*entity.SupplierProductMapping, error) {
	var m entity.SupplierProductMapping
	err := row.Scan(
		&m.ID, &m.SupplierID, &m.SupplierName, &m.ProductID, &m.UnitCost,
		&m.LeadTimeDays, &m.QualityRating, &m.DeliveryRating, &m.CostRating,
		&m.MinOrderQty, &m.IsPreferred, &m.Priority, &m.IsActive, &m.CreatedAt, &m.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &m, nil
}
