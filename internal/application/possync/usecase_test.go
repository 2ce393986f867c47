package possync

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/AlmacenPos-api/internal/application/dto"
	"github.com/jhoicas/AlmacenPos-api/internal/domain"
	"github.com/jhoicas/AlmacenPos-api/internal/domain/entity"
	"github.com/jhoicas/AlmacenPos-api/internal/domain/repository"
	"github.com/jhoicas/AlmacenPos-api/pkg/logger"
	"github.com/jhoicas/AlmacenPos-api/pkg/resilience"
)

// ─────────────────────────────────────────────
// Fakes en memoria
// ─────────────────────────────────────────────

type fakePOSClient struct {
	mu      sync.Mutex
	items   []entity.POSInventoryItem
	err     error
	calls   int
	block   chan struct{} // si no es nil, la llamada espera hasta que se cierre
	started chan struct{} // se cierra al entrar la primera llamada
}

func (f *fakePOSClient) FetchInventory(_ context.Context, _ string) ([]entity.POSInventoryItem, error) {
	f.mu.Lock()
	f.calls++
	if f.calls == 1 && f.started != nil {
		close(f.started)
	}
	block := f.block
	f.mu.Unlock()
	if block != nil {
		<-block
	}
	return f.items, f.err
}

type fakeSyncLogRepo struct {
	mu      sync.Mutex
	results []*entity.SyncResult
}

func (f *fakeSyncLogRepo) Create(_ context.Context, r *entity.SyncResult) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.results = append(f.results, r)
	return nil
}

func (f *fakeSyncLogRepo) ListByIntegration(_ context.Context, _ string, _ int) ([]*entity.SyncResult, error) {
	return f.results, nil
}

type fakeConflictRepo struct {
	conflicts map[string]*entity.InventoryConflict
}

func newFakeConflictRepo() *fakeConflictRepo {
	return &fakeConflictRepo{conflicts: map[string]*entity.InventoryConflict{}}
}

func (f *fakeConflictRepo) Create(_ context.Context, c *entity.InventoryConflict) error {
	f.conflicts[c.ID] = c
	return nil
}

func (f *fakeConflictRepo) MarkResolved(_ context.Context, id string, resolvedQty int, at time.Time) error {
	c, ok := f.conflicts[id]
	if !ok {
		return domain.ErrNotFound
	}
	c.Resolved = true
	c.ResolvedQty = resolvedQty
	c.ResolvedAt = &at
	return nil
}

func (f *fakeConflictRepo) ListOpen(_ context.Context, integrationID string) ([]*entity.InventoryConflict, error) {
	var out []*entity.InventoryConflict
	for _, c := range f.conflicts {
		if !c.Resolved && c.IntegrationID == integrationID {
			out = append(out, c)
		}
	}
	return out, nil
}

// fakeAlertRepo implementa UpsertPending con la misma semántica idempotente del
// repositorio real: una sola alerta pendiente por (producto, bodega).
type fakeAlertRepo struct {
	mu     sync.Mutex
	alerts map[string]*entity.StockAlert // por ID
}

func newFakeAlertRepo() *fakeAlertRepo {
	return &fakeAlertRepo{alerts: map[string]*entity.StockAlert{}}
}

func (f *fakeAlertRepo) UpsertPending(_ context.Context, a *entity.StockAlert) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, existing := range f.alerts {
		if existing.Status == entity.AlertStatusPending &&
			existing.ProductID == a.ProductID && existing.WarehouseID == a.WarehouseID {
			existing.CurrentStock = a.CurrentStock
			existing.Urgency = a.Urgency
			a.ID = existing.ID
			return nil
		}
	}
	cp := *a
	f.alerts[a.ID] = &cp
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

func (f *fakeAlertRepo) ListByStatus(_ context.Context, status string, _, _ int) ([]*entity.StockAlert, error) {
	var out []*entity.StockAlert
	for _, a := range f.alerts {
		if a.Status == status {
			out = append(out, a)
		}
	}
	return out, nil
}

func (f *fakeAlertRepo) UpdateStatus(_ context.Context, id, status string) error {
	if a, ok := f.alerts[id]; ok {
		a.Status = status
	}
	return nil
}

func (f *fakeAlertRepo) BulkUpdateStatus(_ context.Context, ids []string, status string) error {
	for _, id := range ids {
		if a, ok := f.alerts[id]; ok {
			a.Status = status
		}
	}
	return nil
}

func (f *fakeAlertRepo) ResolvePendingByProduct(_ context.Context, productID, warehouseID string) (int, error) {
	n := 0
	for _, a := range f.alerts {
		if a.Status != entity.AlertStatusPending || a.ProductID != productID {
			continue
		}
		if warehouseID != "" && a.WarehouseID != warehouseID {
			continue
		}
		a.Status = entity.AlertStatusResolved
		n++
	}
	return n, nil
}

// fakeSerialRepo solo implementa CountAvailable; el resto no se usa aquí.
type fakeSerialRepo struct {
	repository.SerialNumberRepository
	available map[string]int // productID → disponibles
}

func (f *fakeSerialRepo) CountAvailable(_ context.Context, productID, _ string) (int, error) {
	return f.available[productID], nil
}

type fakeProductRepo struct {
	repository.ProductRepository
	products map[string]*entity.Product // por ID
}

func (f *fakeProductRepo) GetByCode(_ context.Context, code string) (*entity.Product, error) {
	for _, p := range f.products {
		if p.Code == code {
			return p, nil
		}
	}
	return nil, nil
}

func (f *fakeProductRepo) ListActive(_ context.Context, productID string) ([]*entity.Product, error) {
	var out []*entity.Product
	for _, p := range f.products {
		if !p.IsActive {
			continue
		}
		if productID != "" && p.ID != productID {
			continue
		}
		out = append(out, p)
	}
	return out, nil
}

type fakeOrderCreator struct {
	mu       sync.Mutex
	received [][]*entity.StockAlert
}

func (f *fakeOrderCreator) CreateAutomaticPurchaseOrders(_ context.Context, _ string, alerts []*entity.StockAlert) (*dto.ProcessAlertsResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.received = append(f.received, alerts)
	return &dto.ProcessAlertsResponse{}, nil
}

type testEnv struct {
	uc       *UseCase
	pos      *fakePOSClient
	syncLog  *fakeSyncLogRepo
	confRepo *fakeConflictRepo
	alerts   *fakeAlertRepo
	serials  *fakeSerialRepo
	products *fakeProductRepo
	orders   *fakeOrderCreator
}

func newTestEnv(cfg Config) *testEnv {
	env := &testEnv{
		pos:      &fakePOSClient{},
		syncLog:  &fakeSyncLogRepo{},
		confRepo: newFakeConflictRepo(),
		alerts:   newFakeAlertRepo(),
		serials:  &fakeSerialRepo{available: map[string]int{}},
		products: &fakeProductRepo{products: map[string]*entity.Product{}},
		orders:   &fakeOrderCreator{},
	}
	log := logger.Nop()
	exec := resilience.NewExecutor(log)
	exec.RegisterExternal(OpFetchPOSInventory,
		resilience.RetryConfig{MaxAttempts: 1, BaseDelay: time.Millisecond, MaxDelay: time.Millisecond, Multiplier: 1},
		resilience.DefaultBreakerConfig())
	env.uc = NewUseCase(env.pos, exec, env.syncLog, env.confRepo, env.alerts,
		env.serials, env.products, env.orders, cfg, log)
	return env
}

func product(id, code string, reorderPoint, reorderQty int, supplier string) *entity.Product {
	return &entity.Product{
		ID: id, Code: code,
		ReorderPoint:        reorderPoint,
		ReorderQuantity:     reorderQty,
		PreferredSupplierID: supplier,
		IsActive:            true,
		UpdatedAt:           time.Now().Add(-time.Hour),
	}
}

// ─────────────────────────────────────────────
// Guard de sincronización concurrente
// ─────────────────────────────────────────────

func TestSync_SegundaCorridaConcurrenteRechazada(t *testing.T) {
	env := newTestEnv(Config{DefaultStrategy: entity.StrategyPOSWins})
	env.pos.block = make(chan struct{})
	env.pos.started = make(chan struct{})

	done := make(chan error, 1)
	go func() {
		_, err := env.uc.SyncInventoryLevels(context.Background(), "pos-1")
		done <- err
	}()
	<-env.pos.started // la primera corrida ya tiene el guard

	_, err := env.uc.SyncInventoryLevels(context.Background(), "pos-1")
	require.Error(t, err)
	assert.Equal(t, domain.CodeSyncInProgress, domain.CodeOf(err))

	close(env.pos.block)
	require.NoError(t, <-done)

	// Liberado el guard, una nueva corrida sí entra.
	_, err = env.uc.SyncInventoryLevels(context.Background(), "pos-1")
	assert.NoError(t, err)
}

func TestSync_IntegracionesDistintasNoSeBloquean(t *testing.T) {
	env := newTestEnv(Config{DefaultStrategy: entity.StrategyPOSWins})
	env.pos.block = make(chan struct{})
	env.pos.started = make(chan struct{})

	done := make(chan error, 1)
	go func() {
		_, err := env.uc.SyncInventoryLevels(context.Background(), "pos-1")
		done <- err
	}()
	<-env.pos.started

	// Otra integración corre en paralelo sin chocar con el guard de pos-1.
	go func() {
		time.Sleep(10 * time.Millisecond)
		close(env.pos.block)
	}()
	_, err := env.uc.SyncInventoryLevels(context.Background(), "pos-2")
	assert.NoError(t, err)
	require.NoError(t, <-done)
}

// ─────────────────────────────────────────────
// Sincronización y conflictos
// ─────────────────────────────────────────────

func TestSync_DetectaYResuelveConflictos(t *testing.T) {
	env := newTestEnv(Config{DefaultStrategy: entity.StrategyPOSWins})
	env.products.products["p1"] = product("p1", "LAPTOP", 5, 20, "")
	env.serials.available["p1"] = 12
	env.pos.items = []entity.POSInventoryItem{
		{ProductCode: "LAPTOP", WarehouseID: "wh-1", Quantity: 9, UpdatedAt: time.Now()},
	}

	res, err := env.uc.SyncInventoryLevels(context.Background(), "pos-1")
	require.NoError(t, err)
	assert.Equal(t, 1, res.ItemsFetched)
	assert.Equal(t, 1, res.ConflictsFound)
	assert.Equal(t, 1, res.ConflictsResolved)

	require.Len(t, env.confRepo.conflicts, 1)
	for _, c := range env.confRepo.conflicts {
		assert.True(t, c.Resolved)
		assert.Equal(t, 9, c.ResolvedQty) // pos_wins
		assert.Equal(t, 12, c.SystemQty)
	}
}

func TestSync_SinDiscrepanciaNoHayConflicto(t *testing.T) {
	env := newTestEnv(Config{DefaultStrategy: entity.StrategyPOSWins})
	env.products.products["p1"] = product("p1", "LAPTOP", 0, 0, "")
	env.serials.available["p1"] = 12
	env.pos.items = []entity.POSInventoryItem{
		{ProductCode: "LAPTOP", WarehouseID: "wh-1", Quantity: 12},
	}

	res, err := env.uc.SyncInventoryLevels(context.Background(), "pos-1")
	require.NoError(t, err)
	assert.Equal(t, 0, res.ConflictsFound)
	assert.Empty(t, env.confRepo.conflicts)
}

func TestSync_ManualReviewDejaConflictoAbierto(t *testing.T) {
	env := newTestEnv(Config{DefaultStrategy: entity.StrategyManualReview})
	env.products.products["p1"] = product("p1", "LAPTOP", 0, 0, "")
	env.serials.available["p1"] = 12
	env.pos.items = []entity.POSInventoryItem{
		{ProductCode: "LAPTOP", WarehouseID: "wh-1", Quantity: 9},
	}

	res, err := env.uc.SyncInventoryLevels(context.Background(), "pos-1")
	require.NoError(t, err)
	assert.Equal(t, 1, res.ConflictsFound)
	assert.Equal(t, 0, res.ConflictsResolved)

	open, err := env.confRepo.ListOpen(context.Background(), "pos-1")
	require.NoError(t, err)
	assert.Len(t, open, 1)
}

func TestSync_POSCaidoRegistraCorridaFallida(t *testing.T) {
	env := newTestEnv(Config{DefaultStrategy: entity.StrategyPOSWins})
	env.pos.err = errors.New("dial tcp: refused")

	_, err := env.uc.SyncInventoryLevels(context.Background(), "pos-1")
	require.Error(t, err)
	assert.Equal(t, domain.CodeInventorySync, domain.CodeOf(err))

	require.Len(t, env.syncLog.results, 1)
	assert.Equal(t, entity.SyncStatusFailed, env.syncLog.results[0].Status)
	assert.NotEmpty(t, env.syncLog.results[0].ErrorMessage)
}

func TestResolveConflicts_LatestTimestampComparaDeVerdad(t *testing.T) {
	env := newTestEnv(Config{})
	now := time.Now()

	env.confRepo.conflicts["c-pos"] = &entity.InventoryConflict{
		ID: "c-pos", IntegrationID: "pos-1", POSQty: 7, SystemQty: 12,
		POSUpdatedAt: now, SystemUpdatedAt: now.Add(-time.Hour),
	}
	env.confRepo.conflicts["c-sys"] = &entity.InventoryConflict{
		ID: "c-sys", IntegrationID: "pos-1", POSQty: 7, SystemQty: 12,
		POSUpdatedAt: now.Add(-time.Hour), SystemUpdatedAt: now,
	}

	n, err := env.uc.ResolveSyncConflicts(context.Background(), "pos-1", entity.StrategyLatestTimestamp)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Equal(t, 7, env.confRepo.conflicts["c-pos"].ResolvedQty)
	assert.Equal(t, 12, env.confRepo.conflicts["c-sys"].ResolvedQty)
}

func TestResolveConflicts_EstrategiaInvalida(t *testing.T) {
	env := newTestEnv(Config{})
	_, err := env.uc.ResolveSyncConflicts(context.Background(), "pos-1", "coin_flip")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

// ─────────────────────────────────────────────
// Monitor y alertas
// ─────────────────────────────────────────────

func TestGenerateAlerts_ClasificaUrgencia(t *testing.T) {
	env := newTestEnv(Config{})
	env.products.products["p-crit"] = product("p-crit", "A", 10, 20, "")
	env.products.products["p-high"] = product("p-high", "B", 10, 20, "")
	env.products.products["p-med"] = product("p-med", "C", 10, 20, "")
	env.products.products["p-ok"] = product("p-ok", "D", 10, 20, "")
	env.serials.available["p-crit"] = 0
	env.serials.available["p-high"] = 3
	env.serials.available["p-med"] = 7
	env.serials.available["p-ok"] = 50

	alerts, err := env.uc.GenerateStockAlerts(context.Background(), dto.GenerateAlertsRequest{})
	require.NoError(t, err)
	require.Len(t, alerts, 3)

	byProduct := map[string]dto.StockAlertDTO{}
	for _, a := range alerts {
		byProduct[a.ProductID] = a
	}
	assert.Equal(t, entity.UrgencyCritical, byProduct["p-crit"].Urgency)
	assert.Equal(t, entity.UrgencyHigh, byProduct["p-high"].Urgency)
	assert.Equal(t, entity.UrgencyMedium, byProduct["p-med"].Urgency)
}

func TestGenerateAlerts_PuntoDeReordenPorDefecto(t *testing.T) {
	env := newTestEnv(Config{})
	env.products.products["p1"] = product("p1", "A", 0, 0, "") // sin punto de reorden
	env.serials.available["p1"] = 8                            // bajo el default de 10

	alerts, err := env.uc.GenerateStockAlerts(context.Background(), dto.GenerateAlertsRequest{})
	require.NoError(t, err)
	require.Len(t, alerts, 1)
	assert.Equal(t, 10, alerts[0].ReorderPoint)
}

func TestGenerateAlerts_EsIdempotente(t *testing.T) {
	env := newTestEnv(Config{})
	env.products.products["p1"] = product("p1", "A", 10, 20, "")
	env.serials.available["p1"] = 3

	first, err := env.uc.GenerateStockAlerts(context.Background(), dto.GenerateAlertsRequest{})
	require.NoError(t, err)
	require.Len(t, first, 1)

	env.serials.available["p1"] = 2
	second, err := env.uc.GenerateStockAlerts(context.Background(), dto.GenerateAlertsRequest{})
	require.NoError(t, err)
	require.Len(t, second, 1)

	// Misma alerta pendiente, actualizada; nunca dos filas para el mismo producto/bodega.
	assert.Equal(t, first[0].ID, second[0].ID)
	assert.Len(t, env.alerts.alerts, 1)
	assert.Equal(t, 2, env.alerts.alerts[first[0].ID].CurrentStock)
}

func TestProcessAlerts_SoloDelegaPendientes(t *testing.T) {
	env := newTestEnv(Config{})
	env.alerts.alerts["a1"] = &entity.StockAlert{ID: "a1", ProductID: "p1", Status: entity.AlertStatusPending}
	env.alerts.alerts["a2"] = &entity.StockAlert{ID: "a2", ProductID: "p2", Status: entity.AlertStatusProcessing}

	_, err := env.uc.ProcessStockAlerts(context.Background(), "user-1", []string{"a1", "a2"})
	require.NoError(t, err)
	require.Len(t, env.orders.received, 1)
	require.Len(t, env.orders.received[0], 1)
	assert.Equal(t, "a1", env.orders.received[0][0].ID)
}

func TestMonitor_CreaOrdenesSiEstaHabilitado(t *testing.T) {
	env := newTestEnv(Config{AutoCreateOrders: true})
	env.products.products["p1"] = product("p1", "A", 10, 20, "sup-1")
	env.serials.available["p1"] = 2

	require.NoError(t, env.uc.MonitorInventoryLevels(context.Background()))
	require.Len(t, env.orders.received, 1)
	require.Len(t, env.orders.received[0], 1)
	assert.Equal(t, "p1", env.orders.received[0][0].ProductID)
}

// ─────────────────────────────────────────────
// Entregas
// ─────────────────────────────────────────────

func TestDelivery_ResuelveAlertasYAislaErrores(t *testing.T) {
	env := newTestEnv(Config{})
	env.alerts.alerts["a1"] = &entity.StockAlert{
		ID: "a1", ProductID: "p1", WarehouseID: "wh-1", Status: entity.AlertStatusPending,
	}

	resp, err := env.uc.UpdateInventoryFromDelivery(context.Background(), dto.DeliveryRequest{
		OrderID: "po-1",
		Items: []dto.DeliveryItem{
			{ProductID: "p1", WarehouseID: "wh-1", Quantity: 20},
			{ProductID: "", Quantity: 5}, // línea inválida: se aísla
		},
	})
	require.NoError(t, err)
	assert.Equal(t, 1, resp.ItemsApplied)
	assert.Equal(t, 1, resp.AlertsResolved)
	require.Len(t, resp.ItemErrors, 1)
	assert.Equal(t, entity.AlertStatusResolved, env.alerts.alerts["a1"].Status)
}
