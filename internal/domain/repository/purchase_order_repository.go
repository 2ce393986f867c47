package repository

import (
	"context"
	"time"

	"github.com/jhoicas/AlmacenPos-api/internal/domain/entity"
)

// PurchaseOrderRepository define el puerto de órdenes de compra automáticas.
type PurchaseOrderRepository interface {
	// CreateWithItems inserta la orden y sus ítems (mismo Querier; dentro del
	// TxRunner de compras forman una sola transacción).
	CreateWithItems(ctx context.Context, o *entity.AutoPurchaseOrder) error
	GetByID(ctx context.Context, id string) (*entity.AutoPurchaseOrder, error)
	ListByStatus(ctx context.Context, status string, limit, offset int) ([]*entity.AutoPurchaseOrder, error)
	// SetStatus escribe el nuevo estado y el timestamp específico del estado
	// (approved_at, sent_at, confirmed_at, delivered_at) sin validar la transición.
	SetStatus(ctx context.Context, id, status string, at time.Time) error
	AddWorkflowStep(ctx context.Context, s *entity.WorkflowStep) error
	ListWorkflowSteps(ctx context.Context, orderID string) ([]*entity.WorkflowStep, error)
	// ListApprovalRules devuelve las reglas activas ordenadas por priority.
	ListApprovalRules(ctx context.Context) ([]entity.ApprovalRule, error)
}
