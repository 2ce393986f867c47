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

var _ repository.PurchaseOrderRepository = (*PurchaseOrderRepo)(nil)

const orderColumns = `id, order_number, supplier_id, supplier_name, status, subtotal,
	tax_rate, tax_amount, total, requires_approval, approver_roles, notes,
	approved_at, sent_at, confirmed_at, delivered_at, created_at, updated_at, created_by`

// PurchaseOrderRepo implementación del puerto PurchaseOrderRepository (usable con pool o tx).
type PurchaseOrderRepo struct {
	q Querier
}

// NewPurchaseOrderRepository construye el adaptador. Pasar pool o tx (Querier).
func NewPurchaseOrderRepository(q Querier) *PurchaseOrderRepo {
	return &PurchaseOrderRepo{q: q}
}

// CreateWithItems inserta la orden y sus ítems con el mismo Querier (dentro del
// runner de compras ambas escrituras comparten transacción).
func (r *PurchaseOrderRepo) CreateWithItems(ctx context.Context, o *entity.AutoPurchaseOrder) error {
	_, err := r.q.Exec(ctx, `
		INSERT INTO auto_purchase_orders (`+orderColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19)`,
		o.ID, o.OrderNumber, o.SupplierID, o.SupplierName, o.Status, o.Subtotal,
		o.TaxRate, o.TaxAmount, o.Total, o.RequiresApproval, o.ApproverRoles, o.Notes,
		o.ApprovedAt, o.SentAt, o.ConfirmedAt, o.DeliveredAt, o.CreatedAt, o.UpdatedAt, o.CreatedBy,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert purchase order: %w", err)
	}
	for _, it := range o.Items {
		_, err := r.q.Exec(ctx, `
			INSERT INTO auto_purchase_order_items
				(id, order_id, product_id, product_code, alert_id, quantity, unit_cost, total_cost, created_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
			it.ID, it.OrderID, it.ProductID, it.ProductCode, it.AlertID,
			it.Quantity, it.UnitCost, it.TotalCost, it.CreatedAt,
		)
		if err != nil {
			return fmt.Errorf("insert purchase order item: %w", err)
		}
	}
	return nil
}

// GetByID obtiene una orden con sus ítems, o (nil, nil) si no existe.
func (r *PurchaseOrderRepo) GetByID(ctx context.Context, id string) (*entity.AutoPurchaseOrder, error) {
	o, err := scanOrder(r.q.QueryRow(ctx,
		`SELECT `+orderColumns+` FROM auto_purchase_orders WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get purchase order: %w", err)
	}
	items, err := r.listItems(ctx, id)
	if err != nil {
		return nil, err
	}
	o.Items = items
	return o, nil
}

// ListByStatus lista órdenes por estado (sin ítems), más recientes primero.
func (r *PurchaseOrderRepo) ListByStatus(ctx context.Context, status string, limit, offset int) ([]*entity.AutoPurchaseOrder, error) {
	rows, err := r.q.Query(ctx, `
		SELECT `+orderColumns+` FROM auto_purchase_orders
		WHERE status = $1 ORDER BY created_at DESC LIMIT $2 OFFSET $3`,
		status, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list purchase orders: %w", err)
	}
	defer rows.Close()

	var out []*entity.AutoPurchaseOrder
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, fmt.Errorf("scan purchase order: %w", err)
		}
		out = append(out, o)
	}
	return out, rows.Err()
}

// SetStatus escribe el nuevo estado, updated_at y el timestamp propio del estado.
// No valida la transición desde el estado actual.
func (r *PurchaseOrderRepo) SetStatus(ctx context.Context, id, status string, at time.Time) error {
	tsColumn := ""
	switch status {
	case entity.POStatusApproved:
		tsColumn = "approved_at"
	case entity.POStatusSent:
		tsColumn = "sent_at"
	case entity.POStatusConfirmed:
		tsColumn = "confirmed_at"
	case entity.POStatusReceived:
		tsColumn = "delivered_at"
	}

	query := `UPDATE auto_purchase_orders SET status = $2, updated_at = $3`
	if tsColumn != "" {
		query += `, ` + tsColumn + ` = $3`
	}
	query += ` WHERE id = $1`

	cmd, err := r.q.Exec(ctx, query, id, status, at)
	if err != nil {
		return fmt.Errorf("set purchase order status: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// AddWorkflowStep agrega una fila de workflow (append-only).
func (r *PurchaseOrderRepo) AddWorkflowStep(ctx context.Context, s *entity.WorkflowStep) error {
	_, err := r.q.Exec(ctx, `
		INSERT INTO purchase_order_workflow_steps (id, order_id, step, comments, created_at, created_by)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		s.ID, s.OrderID, s.Step, s.Comments, s.CreatedAt, s.CreatedBy,
	)
	if err != nil {
		return fmt.Errorf("insert workflow step: %w", err)
	}
	return nil
}

// ListWorkflowSteps lista las filas de workflow de una orden, más antiguas primero.
func (r *PurchaseOrderRepo) ListWorkflowSteps(ctx context.Context, orderID string) ([]*entity.WorkflowStep, error) {
	rows, err := r.q.Query(ctx, `
		SELECT id, order_id, step, comments, created_at, created_by
		FROM purchase_order_workflow_steps WHERE order_id = $1 ORDER BY created_at`, orderID)
	if err != nil {
		return nil, fmt.Errorf("list workflow steps: %w", err)
	}
	defer rows.Close()

	var out []*entity.WorkflowStep
	for rows.Next() {
		var s entity.WorkflowStep
		if err := rows.Scan(&s.ID, &s.OrderID, &s.Step, &s.Comments, &s.CreatedAt, &s.CreatedBy); err != nil {
			return nil, fmt.Errorf("scan workflow step: %w", err)
		}
		out = append(out, &s)
	}
	return out, rows.Err()
}

// ListApprovalRules devuelve las reglas activas ordenadas por priority.
func (r *PurchaseOrderRepo) ListApprovalRules(ctx context.Context) ([]entity.ApprovalRule, error) {
	rows, err := r.q.Query(ctx, `
		SELECT id, name, field, operator, value, approver_roles, priority, is_active
		FROM purchase_order_approval_rules WHERE is_active = true ORDER BY priority`)
	if err != nil {
		return nil, fmt.Errorf("list approval rules: %w", err)
	}
	defer rows.Close()

	var out []entity.ApprovalRule
	for rows.Next() {
		var rule entity.ApprovalRule
		err := rows.Scan(&rule.ID, &rule.Name, &rule.Field, &rule.Operator,
			&rule.Value, &rule.ApproverRoles, &rule.Priority, &rule.IsActive)
		if err != nil {
			return nil, fmt.Errorf("scan approval rule: %w", err)
		}
		out = append(out, rule)
	}
	return out, rows.Err()
}

func (r *PurchaseOrderRepo) listItems(ctx context.Context, orderID string) ([]entity.AutoPurchaseOrderItem, error) {
	rows, err := r.q.Query(ctx, `
		SELECT id, order_id, product_id, product_code, alert_id, quantity, unit_cost, total_cost, created_at
		FROM auto_purchase_order_items WHERE order_id = $1 ORDER BY product_code`, orderID)
	if err != nil {
		return nil, fmt.Errorf("list purchase order items: %w", err)
	}
	defer rows.Close()

	var out []entity.AutoPurchaseOrderItem
	for rows.Next() {
		var it entity.AutoPurchaseOrderItem
		err := rows.Scan(&it.ID, &it.OrderID, &it.ProductID, &it.ProductCode, &it.AlertID,
			&it.Quantity, &it.UnitCost, &it.TotalCost, &it.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("scan purchase order item: %w", err)
		}
		out = append(out, it)
	}
	return out, rows.Err()
}

func scanOrder(row pgx.Row) (*entity.AutoPurchaseOrder, error) {
	var o entity.AutoPurchaseOrder
	err := row.Scan(
		&o.ID, &o.OrderNumber, &o.SupplierID, &o.SupplierName, &o.Status, &o.Subtotal,
		&o.TaxRate, &o.TaxAmount, &o.Total, &o.RequiresApproval, &o.ApproverRoles, &o.Notes,
		&o.ApprovedAt, &o.SentAt, &o.ConfirmedAt, &o.DeliveredAt, &o.CreatedAt, &o.UpdatedAt, &o.CreatedBy,
	)
	if err != nil {
		return nil, err
	}
	return &o, nil
}
