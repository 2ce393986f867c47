package purchasing

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/AlmacenPos-api/internal/domain/entity"
	purchdom "github.com/jhoicas/AlmacenPos-api/internal/domain/purchasing"
	"github.com/jhoicas/AlmacenPos-api/internal/domain/repository"
	"github.com/jhoicas/AlmacenPos-api/pkg/logger"
)

// ─────────────────────────────────────────────
// Fakes en memoria
// ─────────────────────────────────────────────

type fakePORepo struct {
	orders    map[string]*entity.AutoPurchaseOrder
	steps     []*entity.WorkflowStep
	rules     []entity.ApprovalRule
	rulesErr  error
	createErr error
	statusSet map[string]string
}

func newFakePORepo() *fakePORepo {
	return &fakePORepo{
		orders:    map[string]*entity.AutoPurchaseOrder{},
		statusSet: map[string]string{},
	}
}

func (f *fakePORepo) CreateWithItems(_ context.Context, o *entity.AutoPurchaseOrder) error {
	if f.createErr != nil {
		return f.createErr
	}
	f.orders[o.ID] = o
	return nil
}

func (f *fakePORepo) GetByID(_ context.Context, id string) (*entity.AutoPurchaseOrder, error) {
	return f.orders[id], nil
}

func (f *fakePORepo) ListByStatus(_ context.Context, status string, _, _ int) ([]*entity.AutoPurchaseOrder, error) {
	var out []*entity.AutoPurchaseOrder
	for _, o := range f.orders {
		if o.Status == status {
			out = append(out, o)
		}
	}
	return out, nil
}

func (f *fakePORepo) SetStatus(_ context.Context, id, status string, _ time.Time) error {
	f.statusSet[id] = status
	return nil
}

func (f *fakePORepo) AddWorkflowStep(_ context.Context, s *entity.WorkflowStep) error {
	f.steps = append(f.steps, s)
	return nil
}

func (f *fakePORepo) ListWorkflowSteps(_ context.Context, orderID string) ([]*entity.WorkflowStep, error) {
	var out []*entity.WorkflowStep
	for _, s := range f.steps {
		if s.OrderID == orderID {
			out = append(out, s)
		}
	}
	return out, nil
}

func (f *fakePORepo) ListApprovalRules(_ context.Context) ([]entity.ApprovalRule, error) {
	return f.rules, f.rulesErr
}

type fakeAlertRepo struct {
	alerts   map[string]*entity.StockAlert
	statuses map[string]string
	bulkErr  error
}

func newFakeAlertRepo() *fakeAlertRepo {
	return &fakeAlertRepo{alerts: map[string]*entity.StockAlert{}, statuses: map[string]string{}}
}

func (f *fakeAlertRepo) UpsertPending(_ context.Context, a *entity.StockAlert) error {
	f.alerts[a.ID] = a
	return nil
}

func (f *fakeAlertRepo) GetByID(_ context.Context, id string) (*entity.StockAlert, error) {
	return f.alerts[id], nil
}

func (f *fakeAlertRepo) GetByIDs(_ context.Context, ids []string) ([]*entity.StockAlert, error) {
	var out []*entity.StockAlert
	for _, id := range ids {
		if a, ok := f.alerts[id]; ok {
			out = append(out, a)
		}
	}
	return out, nil
}

func (f *fakeAlertRepo) ListByStatus(_ context.Context, _ string, _, _ int) ([]*entity.StockAlert, error) {
	return nil, nil
}

func (f *fakeAlertRepo) UpdateStatus(_ context.Context, id, status string) error {
	f.statuses[id] = status
	return nil
}

func (f *fakeAlertRepo) BulkUpdateStatus(_ context.Context, ids []string, status string) error {
	if f.bulkErr != nil {
		return f.bulkErr
	}
	for _, id := range ids {
		f.statuses[id] = status
	}
	return nil
}

func (f *fakeAlertRepo) ResolvePendingByProduct(_ context.Context, _, _ string) (int, error) {
	return 0, nil
}

type fakeSupplierRepo struct {
	suppliers map[string]*entity.Supplier
	mappings  map[string][]entity.SupplierProductMapping // productID → mappings
}

func newFakeSupplierRepo() *fakeSupplierRepo {
	return &fakeSupplierRepo{
		suppliers: map[string]*entity.Supplier{},
		mappings:  map[string][]entity.SupplierProductMapping{},
	}
}

func (f *fakeSupplierRepo) GetByID(_ context.Context, id string) (*entity.Supplier, error) {
	return f.suppliers[id], nil
}

func (f *fakeSupplierRepo) List(_ context.Context, _, _ int) ([]*entity.Supplier, error) {
	return nil, nil
}

func (f *fakeSupplierRepo) Create(_ context.Context, s *entity.Supplier) error {
	f.suppliers[s.ID] = s
	return nil
}

func (f *fakeSupplierRepo) GetActiveMappingsByProduct(_ context.Context, productID string) ([]entity.SupplierProductMapping, error) {
	return f.mappings[productID], nil
}

func (f *fakeSupplierRepo) GetMapping(_ context.Context, supplierID, productID string) (*entity.SupplierProductMapping, error) {
	for _, m := range f.mappings[productID] {
		if m.SupplierID == supplierID {
			mm := m
			return &mm, nil
		}
	}
	return nil, nil
}

// fakeTxRunner ejecuta la función directamente contra los fakes (sin tx real).
type fakeTxRunner struct {
	poRepo    repository.PurchaseOrderRepository
	alertRepo repository.StockAlertRepository
}

func (f *fakeTxRunner) Run(ctx context.Context, fn func(repository.PurchaseOrderRepository, repository.StockAlertRepository) error) error {
	return fn(f.poRepo, f.alertRepo)
}

func newTestUseCase() (*UseCase, *fakePORepo, *fakeAlertRepo, *fakeSupplierRepo) {
	poRepo := newFakePORepo()
	alertRepo := newFakeAlertRepo()
	supRepo := newFakeSupplierRepo()
	uc := NewUseCase(
		&fakeTxRunner{poRepo: poRepo, alertRepo: alertRepo},
		poRepo, alertRepo, supRepo, nil,
		DefaultConfig(), logger.Nop(),
	)
	return uc, poRepo, alertRepo, supRepo
}

func mapping(supplierID, productID string, cost float64, preferred bool) entity.SupplierProductMapping {
	return entity.SupplierProductMapping{
		ID:             supplierID + "-" + productID,
		SupplierID:     supplierID,
		SupplierName:   "Proveedor " + supplierID,
		ProductID:      productID,
		UnitCost:       decimal.NewFromFloat(cost),
		LeadTimeDays:   5,
		QualityRating:  4,
		DeliveryRating: 4,
		CostRating:     3,
		MinOrderQty:    1,
		IsPreferred:    preferred,
		IsActive:       true,
	}
}

func alert(id, productID, supplierID string, reorderQty int) *entity.StockAlert {
	return &entity.StockAlert{
		ID:                  id,
		ProductID:           productID,
		ProductCode:         "PROD-" + productID,
		WarehouseID:         "wh-1",
		CurrentStock:        2,
		ReorderPoint:        10,
		ReorderQuantity:     reorderQty,
		Urgency:             entity.UrgencyHigh,
		PreferredSupplierID: supplierID,
		Status:              entity.AlertStatusPending,
	}
}

// ─────────────────────────────────────────────
// Creación de órdenes automáticas
// ─────────────────────────────────────────────

func TestCreateOrders_AgrupaPorProveedor(t *testing.T) {
	uc, poRepo, alertRepo, supRepo := newTestUseCase()
	ctx := context.Background()

	supRepo.suppliers["sup-1"] = &entity.Supplier{ID: "sup-1", Name: "Acme", IsActive: true}
	supRepo.suppliers["sup-2"] = &entity.Supplier{ID: "sup-2", Name: "Globex", IsActive: true}
	supRepo.mappings["p1"] = []entity.SupplierProductMapping{mapping("sup-1", "p1", 10, false)}
	supRepo.mappings["p2"] = []entity.SupplierProductMapping{mapping("sup-1", "p2", 20, false)}
	supRepo.mappings["p3"] = []entity.SupplierProductMapping{mapping("sup-2", "p3", 5, false)}

	alerts := []*entity.StockAlert{
		alert("a1", "p1", "sup-1", 10),
		alert("a2", "p2", "sup-1", 5),
		alert("a3", "p3", "sup-2", 4),
	}

	resp, err := uc.CreateAutomaticPurchaseOrders(ctx, "user-1", alerts)
	require.NoError(t, err)
	require.Len(t, resp.OrdersCreated, 2)
	assert.Empty(t, resp.SupplierErrors)
	assert.Empty(t, resp.ManualReview)

	// Dos órdenes persistidas, una por proveedor, con los ítems correctos.
	require.Len(t, poRepo.orders, 2)
	totalItems := 0
	for _, o := range poRepo.orders {
		assert.Equal(t, entity.POStatusDraft, o.Status)
		totalItems += len(o.Items)
	}
	assert.Equal(t, 3, totalItems)

	// Todas las alertas pasaron a processing.
	for _, id := range []string{"a1", "a2", "a3"} {
		assert.Equal(t, entity.AlertStatusProcessing, alertRepo.statuses[id])
	}
}

func TestCreateOrders_CalculaImpuestoSietePorciento(t *testing.T) {
	uc, poRepo, _, supRepo := newTestUseCase()
	ctx := context.Background()

	supRepo.suppliers["sup-1"] = &entity.Supplier{ID: "sup-1", Name: "Acme", IsActive: true}
	supRepo.mappings["p1"] = []entity.SupplierProductMapping{mapping("sup-1", "p1", 100, false)}

	resp, err := uc.CreateAutomaticPurchaseOrders(ctx, "user-1", []*entity.StockAlert{
		alert("a1", "p1", "sup-1", 10),
	})
	require.NoError(t, err)
	require.Len(t, resp.OrdersCreated, 1)

	var order *entity.AutoPurchaseOrder
	for _, o := range poRepo.orders {
		order = o
	}
	require.NotNil(t, order)

	// 10 unidades * $100 = $1000; IVA 7% = $70; total $1070.
	assert.True(t, order.Subtotal.Equal(decimal.NewFromInt(1000)), "subtotal = %s", order.Subtotal)
	assert.True(t, order.TaxAmount.Equal(decimal.NewFromInt(70)), "impuesto = %s", order.TaxAmount)
	assert.True(t, order.Total.Equal(decimal.NewFromInt(1070)), "total = %s", order.Total)
}

func TestCreateOrders_SinProveedorVaARevisionManual(t *testing.T) {
	uc, poRepo, alertRepo, _ := newTestUseCase()
	ctx := context.Background()

	// Sin mappings para el producto: no hay proveedor resoluble.
	a := alert("a1", "p1", "", 10)
	alertRepo.alerts["a1"] = a

	resp, err := uc.CreateAutomaticPurchaseOrders(ctx, "user-1", []*entity.StockAlert{a})
	require.NoError(t, err)
	assert.Empty(t, resp.OrdersCreated)
	assert.Equal(t, []string{"a1"}, resp.ManualReview)
	assert.Equal(t, entity.AlertStatusManualReview, alertRepo.statuses["a1"])
	assert.Empty(t, poRepo.orders)
}

func TestCreateOrders_FallaDeUnProveedorNoBloqueaAlResto(t *testing.T) {
	uc, poRepo, _, supRepo := newTestUseCase()
	ctx := context.Background()

	// sup-1 existe, sup-2 no: la orden de sup-2 falla pero la de sup-1 se crea.
	supRepo.suppliers["sup-1"] = &entity.Supplier{ID: "sup-1", Name: "Acme", IsActive: true}
	supRepo.mappings["p1"] = []entity.SupplierProductMapping{mapping("sup-1", "p1", 10, false)}

	resp, err := uc.CreateAutomaticPurchaseOrders(ctx, "user-1", []*entity.StockAlert{
		alert("a1", "p1", "sup-1", 10),
		alert("a2", "p2", "sup-2", 5),
	})
	require.NoError(t, err)
	assert.Len(t, resp.OrdersCreated, 1)
	require.Len(t, resp.SupplierErrors, 1)
	assert.Equal(t, "sup-2", resp.SupplierErrors[0].SupplierID)
	assert.Len(t, poRepo.orders, 1)
}

func TestCreateOrders_CantidadRespetaMinimoDePedido(t *testing.T) {
	uc, poRepo, _, supRepo := newTestUseCase()
	ctx := context.Background()

	supRepo.suppliers["sup-1"] = &entity.Supplier{ID: "sup-1", Name: "Acme", IsActive: true}
	m := mapping("sup-1", "p1", 10, false)
	m.MinOrderQty = 25
	supRepo.mappings["p1"] = []entity.SupplierProductMapping{m}

	_, err := uc.CreateAutomaticPurchaseOrders(ctx, "user-1", []*entity.StockAlert{
		alert("a1", "p1", "sup-1", 10), // bajo el mínimo del proveedor
	})
	require.NoError(t, err)

	for _, o := range poRepo.orders {
		require.Len(t, o.Items, 1)
		assert.Equal(t, 25, o.Items[0].Quantity)
	}
}

func TestCreateOrders_TransaccionFallidaNoMarcaAlertas(t *testing.T) {
	uc, poRepo, alertRepo, supRepo := newTestUseCase()
	ctx := context.Background()

	supRepo.suppliers["sup-1"] = &entity.Supplier{ID: "sup-1", Name: "Acme", IsActive: true}
	supRepo.mappings["p1"] = []entity.SupplierProductMapping{mapping("sup-1", "p1", 10, false)}
	poRepo.createErr = errors.New("constraint violation")

	resp, err := uc.CreateAutomaticPurchaseOrders(ctx, "user-1", []*entity.StockAlert{
		alert("a1", "p1", "sup-1", 10),
	})
	require.NoError(t, err)
	assert.Empty(t, resp.OrdersCreated)
	require.Len(t, resp.SupplierErrors, 1)
	assert.Empty(t, alertRepo.statuses["a1"])
}

// ─────────────────────────────────────────────
// Selección de proveedor
// ─────────────────────────────────────────────

func TestSelectOptimalSupplier_SinMappingsDevuelveNil(t *testing.T) {
	uc, _, _, _ := newTestUseCase()

	sel, err := uc.SelectOptimalSupplier(context.Background(), "p-sin-proveedores")
	require.NoError(t, err)
	assert.Nil(t, sel)
}

func TestSelectOptimalSupplier_PreferidoGanaAlMasBarato(t *testing.T) {
	uc, _, _, supRepo := newTestUseCase()

	cheap := mapping("sup-barato", "p1", 5, false)
	cheap.CostRating = 1
	preferred := mapping("sup-preferido", "p1", 9, true)
	preferred.CostRating = 3
	supRepo.mappings["p1"] = []entity.SupplierProductMapping{cheap, preferred}

	sel, err := uc.SelectOptimalSupplier(context.Background(), "p1")
	require.NoError(t, err)
	require.NotNil(t, sel)
	assert.Equal(t, "sup-preferido", sel.SupplierID)
	assert.True(t, sel.IsPreferred)
}

// ─────────────────────────────────────────────
// Reglas de aprobación
// ─────────────────────────────────────────────

func TestCheckApproval_UneRolesDeReglasQueAplican(t *testing.T) {
	uc, poRepo, _, _ := newTestUseCase()
	poRepo.rules = []entity.ApprovalRule{
		{Name: "mayor a 1000", Field: "total_amount", Operator: ">", Value: decimal.NewFromInt(1000), ApproverRoles: []string{entity.RoleManager}, Priority: 1, IsActive: true},
		{Name: "mayor a 5000", Field: "total_amount", Operator: ">", Value: decimal.NewFromInt(5000), ApproverRoles: []string{entity.RoleAdmin}, Priority: 2, IsActive: true},
	}

	order := &entity.AutoPurchaseOrder{Total: decimal.NewFromInt(6000)}
	required, roles := uc.CheckApprovalRequirement(context.Background(), order)
	assert.True(t, required)
	assert.ElementsMatch(t, []string{entity.RoleManager, entity.RoleAdmin}, roles)

	order = &entity.AutoPurchaseOrder{Total: decimal.NewFromInt(2000)}
	required, roles = uc.CheckApprovalRequirement(context.Background(), order)
	assert.True(t, required)
	assert.Equal(t, []string{entity.RoleManager}, roles)

	order = &entity.AutoPurchaseOrder{Total: decimal.NewFromInt(500)}
	required, roles = uc.CheckApprovalRequirement(context.Background(), order)
	assert.False(t, required)
	assert.Empty(t, roles)
}

func TestCheckApproval_ReglaMalformadaDefaultManager(t *testing.T) {
	uc, poRepo, _, _ := newTestUseCase()
	poRepo.rules = []entity.ApprovalRule{
		{Name: "campo raro", Field: "item_count", Operator: ">", Value: decimal.NewFromInt(3), ApproverRoles: []string{entity.RoleAdmin}, IsActive: true},
	}

	required, roles := uc.CheckApprovalRequirement(context.Background(), &entity.AutoPurchaseOrder{Total: decimal.NewFromInt(100)})
	assert.True(t, required)
	assert.Equal(t, []string{entity.RoleManager}, roles)
}

func TestCheckApproval_ErrorDeLecturaDefaultManager(t *testing.T) {
	uc, poRepo, _, _ := newTestUseCase()
	poRepo.rulesErr = errors.New("db down")

	required, roles := uc.CheckApprovalRequirement(context.Background(), &entity.AutoPurchaseOrder{Total: decimal.NewFromInt(100)})
	assert.True(t, required)
	assert.Equal(t, []string{entity.RoleManager}, roles)
}

// ─────────────────────────────────────────────
// Ciclo de vida de la orden
// ─────────────────────────────────────────────

func TestUpdateStatus_EscribeEstadoYWorkflow(t *testing.T) {
	uc, poRepo, _, _ := newTestUseCase()

	err := uc.UpdateStatus(context.Background(), "po-1", entity.POStatusApproved, "user-1", "ok")
	require.NoError(t, err)
	assert.Equal(t, entity.POStatusApproved, poRepo.statusSet["po-1"])
	require.Len(t, poRepo.steps, 1)
	assert.Equal(t, entity.POStatusApproved, poRepo.steps[0].Step)
	assert.Equal(t, "user-1", poRepo.steps[0].CreatedBy)
}

func TestUpdateStatus_EstadoInvalidoRechazado(t *testing.T) {
	uc, poRepo, _, _ := newTestUseCase()

	err := uc.UpdateStatus(context.Background(), "po-1", "cancelled", "user-1", "")
	require.Error(t, err)
	assert.Empty(t, poRepo.statusSet)
}

func TestUpdateStatus_NoValidaTransicion(t *testing.T) {
	uc, poRepo, _, _ := newTestUseCase()

	// received directo desde draft: permitido a propósito.
	err := uc.UpdateStatus(context.Background(), "po-1", entity.POStatusReceived, "user-1", "")
	require.NoError(t, err)
	assert.Equal(t, entity.POStatusReceived, poRepo.statusSet["po-1"])
}

// ─────────────────────────────────────────────
// Cantidad de reorden
// ─────────────────────────────────────────────

func TestCalculateReorderQuantity_CasoDeReferencia(t *testing.T) {
	uc, _, _, _ := newTestUseCase()

	qty := uc.CalculateReorderQuantity(purchdom.ReorderParams{
		CurrentStock:      5,
		AverageDailySales: 3,
		LeadTimeDays:      7,
		SafetyStockDays:   3,
		SeasonalityFactor: 1.2,
	})
	assert.Equal(t, 138, qty)
}
