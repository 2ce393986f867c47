// Package purchasing implementa el servicio de órdenes de compra automáticas:
// selección de proveedor por scoring, cantidad de reorden, reglas de aprobación
// y creación de borradores a partir de alertas de stock.
package purchasing

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/AlmacenPos-api/internal/application/dto"
	"github.com/jhoicas/AlmacenPos-api/internal/domain"
	"github.com/jhoicas/AlmacenPos-api/internal/domain/entity"
	purchdom "github.com/jhoicas/AlmacenPos-api/internal/domain/purchasing"
	"github.com/jhoicas/AlmacenPos-api/internal/domain/repository"
	"github.com/jhoicas/AlmacenPos-api/pkg/logger"
)

// Config parametriza el servicio de compras.
type Config struct {
	TaxRate decimal.Decimal // IVA sobre el subtotal (0.07 = 7%)
	Weights purchdom.SelectionWeights
}

// DefaultConfig valores por defecto del servicio.
func DefaultConfig() Config {
	return Config{
		TaxRate: decimal.NewFromFloat(0.07),
		Weights: purchdom.DefaultWeights(),
	}
}

// UseCase orquesta la creación y el ciclo de vida de órdenes de compra.
type UseCase struct {
	txRunner     TxRunner
	poRepo       repository.PurchaseOrderRepository
	alertRepo    repository.StockAlertRepository
	supplierRepo repository.SupplierRepository
	productRepo  repository.ProductRepository
	cfg          Config
	log          *logger.Logger
}

// NewUseCase construye el caso de uso.
func NewUseCase(
	txRunner TxRunner,
	poRepo repository.PurchaseOrderRepository,
	alertRepo repository.StockAlertRepository,
	supplierRepo repository.SupplierRepository,
	productRepo repository.ProductRepository,
	cfg Config,
	log *logger.Logger,
) *UseCase {
	return &UseCase{
		txRunner:     txRunner,
		poRepo:       poRepo,
		alertRepo:    alertRepo,
		supplierRepo: supplierRepo,
		productRepo:  productRepo,
		cfg:          cfg,
		log:          log.Component("purchasing"),
	}
}

// SelectOptimalSupplier puntúa los mappings activos del producto y devuelve el
// mejor, o (nil, nil) si no hay ninguno.
func (uc *UseCase) SelectOptimalSupplier(ctx context.Context, productID string) (*dto.SupplierSelectionDTO, error) {
	mappings, err := uc.supplierRepo.GetActiveMappingsByProduct(ctx, productID)
	if err != nil {
		return nil, domain.NewCodedError(domain.CodeSupplierMapping, "leer mappings de proveedor", err)
	}
	best := purchdom.Best(mappings, uc.cfg.Weights)
	if best == nil {
		return nil, nil
	}
	return &dto.SupplierSelectionDTO{
		SupplierID:   best.SupplierID,
		SupplierName: best.SupplierName,
		UnitCost:     best.UnitCost,
		LeadTimeDays: best.LeadTimeDays,
		IsPreferred:  best.IsPreferred,
		Score:        purchdom.Score(*best, uc.cfg.Weights),
	}, nil
}

// CalculateReorderQuantity expone la aritmética de reorden del dominio.
func (uc *UseCase) CalculateReorderQuantity(p purchdom.ReorderParams) int {
	return purchdom.ReorderQuantity(p)
}

// CheckApprovalRequirement evalúa las reglas activas en orden y une los roles
// aprobadores requeridos. Si la evaluación misma falla (regla malformada,
// campo u operador desconocido), el default es conservador: requiere
// aprobación de manager.
func (uc *UseCase) CheckApprovalRequirement(ctx context.Context, o *entity.AutoPurchaseOrder) (bool, []string) {
	rules, err := uc.poRepo.ListApprovalRules(ctx)
	if err != nil {
		uc.log.Warn().Err(err).Msg("leer reglas de aprobación falló; default manager")
		return true, []string{entity.RoleManager}
	}

	required := false
	roleSet := map[string]struct{}{}
	for _, r := range rules {
		match, evalErr := evalRule(r, o)
		if evalErr != nil {
			uc.log.Warn().Err(evalErr).Str("rule", r.Name).Msg("regla de aprobación malformada; default manager")
			return true, []string{entity.RoleManager}
		}
		if match {
			required = true
			for _, role := range r.ApproverRoles {
				roleSet[role] = struct{}{}
			}
		}
	}
	roles := make([]string, 0, len(roleSet))
	for _, role := range []string{entity.RoleManager, entity.RoleAdmin, entity.RoleComprador, entity.RoleBodeguero} {
		if _, ok := roleSet[role]; ok {
			roles = append(roles, role)
		}
	}
	return required, roles
}

// evalRule evalúa una regla sobre la orden. Solo se implementa la condición
// sobre total_amount; cualquier otro campo u operador es error de evaluación.
func evalRule(r entity.ApprovalRule, o *entity.AutoPurchaseOrder) (bool, error) {
	if r.Field != "total_amount" {
		return false, fmt.Errorf("campo de regla no soportado: %q", r.Field)
	}
	switch r.Operator {
	case ">":
		return o.Total.GreaterThan(r.Value), nil
	case "<":
		return o.Total.LessThan(r.Value), nil
	default:
		return false, fmt.Errorf("operador de regla no soportado: %q", r.Operator)
	}
}

// CreateAutomaticPurchaseOrders agrupa las alertas por proveedor resuelto
// (preferido o, en su defecto, el mejor por scoring) y crea un borrador de
// orden por proveedor. La falla de un proveedor no bloquea a los demás; las
// alertas sin proveedor resoluble quedan en manual_review_required.
func (uc *UseCase) CreateAutomaticPurchaseOrders(ctx context.Context, userID string, alerts []*entity.StockAlert) (*dto.ProcessAlertsResponse, error) {
	resp := &dto.ProcessAlertsResponse{}
	if len(alerts) == 0 {
		return resp, nil
	}

	// Agrupar por proveedor resuelto.
	groups := map[string][]*entity.StockAlert{}
	for _, a := range alerts {
		supplierID := a.PreferredSupplierID
		if supplierID == "" {
			sel, err := uc.SelectOptimalSupplier(ctx, a.ProductID)
			if err != nil {
				resp.SupplierErrors = append(resp.SupplierErrors, dto.SupplierError{
					SupplierID: "", Message: fmt.Sprintf("alerta %s: %v", a.ID, err),
				})
				continue
			}
			if sel == nil {
				if err := uc.alertRepo.UpdateStatus(ctx, a.ID, entity.AlertStatusManualReview); err != nil {
					uc.log.Error().Err(err).Str("alert_id", a.ID).Msg("marcar alerta para revisión manual falló")
				}
				resp.ManualReview = append(resp.ManualReview, a.ID)
				continue
			}
			supplierID = sel.SupplierID
		}
		groups[supplierID] = append(groups[supplierID], a)
	}

	for supplierID, group := range groups {
		order, err := uc.createOrderForSupplier(ctx, userID, supplierID, group)
		if err != nil {
			// Aislamiento por proveedor: registrar y continuar con el siguiente.
			uc.log.Error().Err(err).Str("supplier_id", supplierID).Msg("crear orden automática falló")
			resp.SupplierErrors = append(resp.SupplierErrors, dto.SupplierError{
				SupplierID: supplierID,
				Message:    err.Error(),
			})
			continue
		}
		resp.OrdersCreated = append(resp.OrdersCreated, *order)
	}
	return resp, nil
}

func (uc *UseCase) createOrderForSupplier(ctx context.Context, userID, supplierID string, alerts []*entity.StockAlert) (*dto.PurchaseOrderDTO, error) {
	supplier, err := uc.supplierRepo.GetByID(ctx, supplierID)
	if err != nil {
		return nil, domain.NewCodedError(domain.CodeAutoPurchaseOrder, "leer proveedor", err)
	}
	if supplier == nil {
		return nil, domain.NewCodedError(domain.CodeAutoPurchaseOrder, "proveedor no existe: "+supplierID, nil)
	}

	now := time.Now()
	order := &entity.AutoPurchaseOrder{
		ID:           uuid.New().String(),
		OrderNumber:  NewOrderNumber(now),
		SupplierID:   supplierID,
		SupplierName: supplier.Name,
		Status:       entity.POStatusDraft,
		TaxRate:      uc.cfg.TaxRate,
		CreatedAt:    now,
		UpdatedAt:    now,
		CreatedBy:    userID,
	}

	subtotal := decimal.Zero
	alertIDs := make([]string, 0, len(alerts))
	for _, a := range alerts {
		mapping, err := uc.supplierRepo.GetMapping(ctx, supplierID, a.ProductID)
		if err != nil {
			return nil, domain.NewCodedError(domain.CodeSupplierMapping, "leer mapping proveedor-producto", err)
		}
		unitCost := decimal.Zero
		minQty := 0
		if mapping != nil {
			unitCost = mapping.UnitCost
			minQty = mapping.MinOrderQty
		}

		qty := a.ReorderQuantity
		if qty <= 0 {
			qty = 1
		}
		if qty < minQty {
			qty = minQty
		}

		lineTotal := unitCost.Mul(decimal.NewFromInt(int64(qty)))
		order.Items = append(order.Items, entity.AutoPurchaseOrderItem{
			ID:          uuid.New().String(),
			OrderID:     order.ID,
			ProductID:   a.ProductID,
			ProductCode: a.ProductCode,
			AlertID:     a.ID,
			Quantity:    qty,
			UnitCost:    unitCost,
			TotalCost:   lineTotal,
			CreatedAt:   now,
		})
		subtotal = subtotal.Add(lineTotal)
		alertIDs = append(alertIDs, a.ID)
	}

	order.Subtotal = subtotal
	order.TaxAmount = subtotal.Mul(order.TaxRate).Round(2)
	order.Total = subtotal.Add(order.TaxAmount)
	order.RequiresApproval, order.ApproverRoles = uc.CheckApprovalRequirement(ctx, order)

	// Orden + ítems + alertas → processing, en una sola transacción.
	err = uc.txRunner.Run(ctx, func(
		poRepo repository.PurchaseOrderRepository,
		alertRepo repository.StockAlertRepository,
	) error {
		if err := poRepo.CreateWithItems(ctx, order); err != nil {
			return err
		}
		return alertRepo.BulkUpdateStatus(ctx, alertIDs, entity.AlertStatusProcessing)
	})
	if err != nil {
		return nil, domain.NewCodedError(domain.CodeAutoPurchaseOrder, "persistir orden "+order.OrderNumber, err)
	}

	uc.log.Info().
		Str("order_number", order.OrderNumber).
		Str("supplier_id", supplierID).
		Int("items", len(order.Items)).
		Str("total", order.Total.String()).
		Msg("orden de compra automática creada")
	return toOrderDTO(order), nil
}

// UpdateStatus escribe el nuevo estado, el timestamp específico del estado y
// una fila de workflow. No valida que la transición sea legal desde el estado
// actual (permisividad heredada del origen; ver DESIGN.md).
func (uc *UseCase) UpdateStatus(ctx context.Context, orderID, status, by, comments string) error {
	switch status {
	case entity.POStatusDraft, entity.POStatusApproved, entity.POStatusSent,
		entity.POStatusConfirmed, entity.POStatusReceived, entity.POStatusRejected:
	default:
		return domain.ErrInvalidInput
	}

	now := time.Now()
	if err := uc.poRepo.SetStatus(ctx, orderID, status, now); err != nil {
		return fmt.Errorf("actualizar estado de orden: %w", err)
	}
	step := &entity.WorkflowStep{
		ID:        uuid.New().String(),
		OrderID:   orderID,
		Step:      status,
		Comments:  comments,
		CreatedAt: now,
		CreatedBy: by,
	}
	if err := uc.poRepo.AddWorkflowStep(ctx, step); err != nil {
		// Igual que los movimientos de inventario: la bitácora es best-effort.
		uc.log.Error().Err(err).Str("order_id", orderID).Str("status", status).
			Msg("fila de workflow no registrada")
	}
	return nil
}

// Get devuelve una orden con sus ítems, o nil si no existe.
func (uc *UseCase) Get(ctx context.Context, id string) (*dto.PurchaseOrderDTO, error) {
	order, err := uc.poRepo.GetByID(ctx, id)
	if err != nil || order == nil {
		return nil, err
	}
	return toOrderDTO(order), nil
}

// GetWithSupplier devuelve la orden y su proveedor (para el PDF imprimible).
// Devuelve (nil, nil, nil) si la orden no existe.
func (uc *UseCase) GetWithSupplier(ctx context.Context, id string) (*entity.AutoPurchaseOrder, *entity.Supplier, error) {
	order, err := uc.poRepo.GetByID(ctx, id)
	if err != nil || order == nil {
		return nil, nil, err
	}
	supplier, err := uc.supplierRepo.GetByID(ctx, order.SupplierID)
	if err != nil {
		return nil, nil, err
	}
	if supplier == nil {
		supplier = &entity.Supplier{ID: order.SupplierID, Name: order.SupplierName}
	}
	return order, supplier, nil
}

// ListByStatus lista órdenes por estado.
func (uc *UseCase) ListByStatus(ctx context.Context, status string, limit, offset int) ([]dto.PurchaseOrderDTO, error) {
	orders, err := uc.poRepo.ListByStatus(ctx, status, limit, offset)
	if err != nil {
		return nil, err
	}
	out := make([]dto.PurchaseOrderDTO, 0, len(orders))
	for _, o := range orders {
		out = append(out, *toOrderDTO(o))
	}
	return out, nil
}

// NewOrderNumber genera APO-{timestamp}-{random4}.
func NewOrderNumber(now time.Time) string {
	return fmt.Sprintf("APO-%d-%04d", now.UnixMilli(), rand.Intn(10000))
}

func toOrderDTO(o *entity.AutoPurchaseOrder) *dto.PurchaseOrderDTO {
	out := &dto.PurchaseOrderDTO{
		ID:               o.ID,
		OrderNumber:      o.OrderNumber,
		SupplierID:       o.SupplierID,
		SupplierName:     o.SupplierName,
		Status:           o.Status,
		Subtotal:         o.Subtotal,
		TaxAmount:        o.TaxAmount,
		Total:            o.Total,
		RequiresApproval: o.RequiresApproval,
		ApproverRoles:    o.ApproverRoles,
		CreatedAt:        o.CreatedAt,
	}
	for _, it := range o.Items {
		out.Items = append(out.Items, dto.PurchaseOrderItemDTO{
			ProductID:   it.ProductID,
			ProductCode: it.ProductCode,
			AlertID:     it.AlertID,
			Quantity:    it.Quantity,
			UnitCost:    it.UnitCost,
			TotalCost:   it.TotalCost,
		})
	}
	return out
}
