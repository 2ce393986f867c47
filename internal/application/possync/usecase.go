// Package possync implementa la sincronización de inventario con el POS:
// detección y resolución de conflictos, monitor de niveles de stock, generación
// de alertas y aplicación de entregas de proveedor.
package possync

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/AlmacenPos-api/internal/application/dto"
	"github.com/jhoicas/AlmacenPos-api/internal/domain"
	"github.com/jhoicas/AlmacenPos-api/internal/domain/alerting"
	"github.com/jhoicas/AlmacenPos-api/internal/domain/entity"
	"github.com/jhoicas/AlmacenPos-api/internal/domain/repository"
	"github.com/jhoicas/AlmacenPos-api/pkg/logger"
	"github.com/jhoicas/AlmacenPos-api/pkg/resilience"
)

// OpFetchPOSInventory es el nombre de la operación externa registrada en el
// ejecutor de resiliencia para la lectura de inventario POS.
const OpFetchPOSInventory = "pos.fetch_inventory"

// Config parametriza la sincronización.
type Config struct {
	DefaultStrategy  string // estrategia de resolución de conflictos por defecto
	AutoCreateOrders bool   // crear órdenes automáticas tras generar alertas
}

// UseCase orquesta la sincronización POS ↔ inventario.
// El guard de corridas en progreso es por proceso y en memoria (ver DESIGN.md).
type UseCase struct {
	posClient   POSClient
	executor    *resilience.Executor
	syncLogRepo repository.SyncLogRepository
	confRepo    repository.ConflictRepository
	alertRepo   repository.StockAlertRepository
	snRepo      repository.SerialNumberRepository
	productRepo repository.ProductRepository
	orders      OrderCreator
	cfg         Config
	log         *logger.Logger

	mu         sync.Mutex
	inProgress map[string]bool
}

// NewUseCase construye el caso de uso.
func NewUseCase(
	posClient POSClient,
	executor *resilience.Executor,
	syncLogRepo repository.SyncLogRepository,
	confRepo repository.ConflictRepository,
	alertRepo repository.StockAlertRepository,
	snRepo repository.SerialNumberRepository,
	productRepo repository.ProductRepository,
	orders OrderCreator,
	cfg Config,
	log *logger.Logger,
) *UseCase {
	if cfg.DefaultStrategy == "" {
		cfg.DefaultStrategy = entity.StrategyLatestTimestamp
	}
	return &UseCase{
		posClient:   posClient,
		executor:    executor,
		syncLogRepo: syncLogRepo,
		confRepo:    confRepo,
		alertRepo:   alertRepo,
		snRepo:      snRepo,
		productRepo: productRepo,
		orders:      orders,
		cfg:         cfg,
		log:         log.Component("possync"),
		inProgress:  map[string]bool{},
	}
}

// acquire marca la llave como en progreso; false si ya lo estaba.
func (uc *UseCase) acquire(key string) bool {
	uc.mu.Lock()
	defer uc.mu.Unlock()
	if uc.inProgress[key] {
		return false
	}
	uc.inProgress[key] = true
	return true
}

func (uc *UseCase) release(key string) {
	uc.mu.Lock()
	defer uc.mu.Unlock()
	delete(uc.inProgress, key)
}

// SyncInventoryLevels corre una sincronización completa para la integración:
// lee el inventario del POS (con reintentos y breaker), detecta discrepancias
// contra el stock del sistema, las resuelve con la estrategia por defecto,
// genera alertas de stock bajo y registra la corrida. Una segunda corrida
// concurrente de la misma integración es rechazada con SYNC_IN_PROGRESS.
func (uc *UseCase) SyncInventoryLevels(ctx context.Context, integrationID string) (*dto.SyncResultDTO, error) {
	key := "sync:" + integrationID
	if !uc.acquire(key) {
		return nil, domain.NewCodedError(domain.CodeSyncInProgress,
			"sincronización ya en progreso para "+integrationID, nil)
	}
	defer uc.release(key)

	result := &entity.SyncResult{
		ID:            uuid.New().String(),
		IntegrationID: integrationID,
		StartedAt:     time.Now(),
	}

	var items []entity.POSInventoryItem
	err := uc.executor.Execute(ctx, OpFetchPOSInventory, func(ctx context.Context) error {
		var ferr error
		items, ferr = uc.posClient.FetchInventory(ctx, integrationID)
		if ferr != nil {
			return domain.NewCodedError(domain.CodePOSUnavailable, "leer inventario POS", ferr)
		}
		return nil
	})
	if err != nil {
		result.Status = entity.SyncStatusFailed
		result.ErrorMessage = err.Error()
		result.FinishedAt = time.Now()
		uc.persistResult(ctx, result)
		return nil, domain.NewCodedError(domain.CodeInventorySync, "sincronización "+integrationID, err)
	}
	result.ItemsFetched = len(items)

	partial := false
	for _, item := range items {
		if err := uc.reconcileItem(ctx, integrationID, item, result); err != nil {
			partial = true
			uc.log.Error().Err(err).
				Str("product_code", item.ProductCode).
				Str("warehouse_id", item.WarehouseID).
				Msg("conciliar ítem POS falló")
		}
	}

	alerts, err := uc.GenerateStockAlerts(ctx, dto.GenerateAlertsRequest{})
	if err != nil {
		partial = true
		uc.log.Error().Err(err).Msg("generar alertas tras sincronización falló")
	}
	result.AlertsGenerated = len(alerts)

	if uc.cfg.AutoCreateOrders && len(alerts) > 0 && uc.orders != nil {
		entities, err := uc.alertRepo.GetByIDs(ctx, alertIDsOf(alerts))
		if err == nil {
			resp, oerr := uc.orders.CreateAutomaticPurchaseOrders(ctx, "system", entities)
			if oerr != nil {
				partial = true
			} else {
				result.OrdersCreated = len(resp.OrdersCreated)
			}
		}
	}

	result.Status = entity.SyncStatusSuccess
	if partial {
		result.Status = entity.SyncStatusPartial
	}
	result.FinishedAt = time.Now()
	uc.persistResult(ctx, result)

	uc.log.Info().
		Str("integration_id", integrationID).
		Str("status", result.Status).
		Int("items", result.ItemsFetched).
		Int("conflicts", result.ConflictsFound).
		Int("alerts", result.AlertsGenerated).
		Msg("sincronización terminada")

	out := dto.FromSyncResult(result)
	return &out, nil
}

// reconcileItem compara la lectura POS contra el stock del sistema y, si hay
// discrepancia, crea el conflicto y lo resuelve con la estrategia por defecto.
func (uc *UseCase) reconcileItem(ctx context.Context, integrationID string, item entity.POSInventoryItem, result *entity.SyncResult) error {
	product, err := uc.productRepo.GetByCode(ctx, item.ProductCode)
	if err != nil {
		return err
	}
	if product == nil {
		return domain.NewCodedError(domain.CodeInventoryInconsistency,
			"producto POS desconocido: "+item.ProductCode, nil)
	}

	systemQty, err := uc.snRepo.CountAvailable(ctx, product.ID, item.WarehouseID)
	if err != nil {
		return err
	}
	if systemQty == item.Quantity {
		return nil
	}

	conflict := &entity.InventoryConflict{
		ID:              uuid.New().String(),
		IntegrationID:   integrationID,
		ProductID:       product.ID,
		WarehouseID:     item.WarehouseID,
		POSQty:          item.Quantity,
		SystemQty:       systemQty,
		POSUpdatedAt:    item.UpdatedAt,
		SystemUpdatedAt: product.UpdatedAt,
		Strategy:        uc.cfg.DefaultStrategy,
		CreatedAt:       time.Now(),
	}
	result.ConflictsFound++

	if qty, ok := resolveQty(conflict, uc.cfg.DefaultStrategy); ok {
		now := time.Now()
		conflict.ResolvedQty = qty
		conflict.Resolved = true
		conflict.ResolvedAt = &now
		result.ConflictsResolved++
		result.ItemsUpdated++
	}
	return uc.confRepo.Create(ctx, conflict)
}

// resolveQty aplica la estrategia al conflicto. manual_review (o una estrategia
// desconocida) no resuelve: el conflicto queda abierto para un operador.
func resolveQty(c *entity.InventoryConflict, strategy string) (int, bool) {
	switch strategy {
	case entity.StrategyPOSWins:
		return c.POSQty, true
	case entity.StrategySupplierWins:
		return c.SystemQty, true
	case entity.StrategyLatestTimestamp:
		if c.POSUpdatedAt.After(c.SystemUpdatedAt) {
			return c.POSQty, true
		}
		return c.SystemQty, true
	default:
		return 0, false
	}
}

// ResolveSyncConflicts resuelve los conflictos abiertos de la integración con
// la estrategia dada y devuelve cuántos quedaron resueltos.
func (uc *UseCase) ResolveSyncConflicts(ctx context.Context, integrationID, strategy string) (int, error) {
	switch strategy {
	case entity.StrategyPOSWins, entity.StrategySupplierWins,
		entity.StrategyLatestTimestamp, entity.StrategyManualReview:
	default:
		return 0, domain.ErrInvalidInput
	}

	open, err := uc.confRepo.ListOpen(ctx, integrationID)
	if err != nil {
		return 0, fmt.Errorf("listar conflictos abiertos: %w", err)
	}

	resolved := 0
	for _, c := range open {
		qty, ok := resolveQty(c, strategy)
		if !ok {
			continue
		}
		if err := uc.confRepo.MarkResolved(ctx, c.ID, qty, time.Now()); err != nil {
			uc.log.Error().Err(err).Str("conflict_id", c.ID).Msg("marcar conflicto resuelto falló")
			continue
		}
		resolved++
	}
	return resolved, nil
}

// GenerateStockAlerts recorre los productos activos (opcionalmente uno solo),
// cuenta su stock disponible y genera una alerta por cada producto en o bajo su
// punto de reorden. La escritura es idempotente por (producto, bodega): correr
// el monitor dos veces no duplica alertas pendientes.
func (uc *UseCase) GenerateStockAlerts(ctx context.Context, req dto.GenerateAlertsRequest) ([]dto.StockAlertDTO, error) {
	key := "alerts:" + req.ProductID + ":" + req.WarehouseID
	if !uc.acquire(key) {
		return nil, domain.NewCodedError(domain.CodeSyncInProgress,
			"generación de alertas ya en progreso", nil)
	}
	defer uc.release(key)

	products, err := uc.productRepo.ListActive(ctx, req.ProductID)
	if err != nil {
		return nil, domain.NewCodedError(domain.CodeStockAlertProcessing, "listar productos activos", err)
	}

	var out []dto.StockAlertDTO
	for _, p := range products {
		current, err := uc.snRepo.CountAvailable(ctx, p.ID, req.WarehouseID)
		if err != nil {
			uc.log.Error().Err(err).Str("product_id", p.ID).Msg("contar stock disponible falló")
			continue
		}

		reorderPoint := p.ReorderPoint
		if reorderPoint <= 0 {
			reorderPoint = alerting.DefaultReorderPoint
		}
		if current > reorderPoint {
			continue
		}

		now := time.Now()
		a := &entity.StockAlert{
			ID:                  uuid.New().String(),
			ProductID:           p.ID,
			ProductCode:         p.Code,
			WarehouseID:         req.WarehouseID,
			CurrentStock:        current,
			ReorderPoint:        reorderPoint,
			ReorderQuantity:     p.ReorderQuantity,
			Urgency:             alerting.ClassifyUrgency(current, reorderPoint),
			PreferredSupplierID: p.PreferredSupplierID,
			Status:              entity.AlertStatusPending,
			CreatedAt:           now,
			UpdatedAt:           now,
		}
		if err := uc.alertRepo.UpsertPending(ctx, a); err != nil {
			uc.log.Error().Err(err).Str("product_id", p.ID).Msg("guardar alerta falló")
			continue
		}
		out = append(out, dto.FromStockAlert(a))
	}
	return out, nil
}

// MonitorInventoryLevels es la corrida periódica del monitor: genera alertas
// para todos los productos y, si está habilitado, crea órdenes automáticas.
func (uc *UseCase) MonitorInventoryLevels(ctx context.Context) error {
	alerts, err := uc.GenerateStockAlerts(ctx, dto.GenerateAlertsRequest{})
	if err != nil {
		return err
	}
	uc.log.Info().Int("alerts", len(alerts)).Msg("monitor de inventario corrió")

	if !uc.cfg.AutoCreateOrders || len(alerts) == 0 || uc.orders == nil {
		return nil
	}
	entities, err := uc.alertRepo.GetByIDs(ctx, alertIDsOf(alerts))
	if err != nil {
		return domain.NewCodedError(domain.CodeStockAlertProcessing, "leer alertas generadas", err)
	}
	_, err = uc.orders.CreateAutomaticPurchaseOrders(ctx, "system", entities)
	return err
}

// ProcessStockAlerts delega a compras las alertas pendientes indicadas.
// Las alertas que no están pendientes se ignoran (otra corrida ya las tomó).
func (uc *UseCase) ProcessStockAlerts(ctx context.Context, userID string, alertIDs []string) (*dto.ProcessAlertsResponse, error) {
	alerts, err := uc.alertRepo.GetByIDs(ctx, alertIDs)
	if err != nil {
		return nil, domain.NewCodedError(domain.CodeStockAlertProcessing, "leer alertas", err)
	}
	pending := alerts[:0]
	for _, a := range alerts {
		if a.Status == entity.AlertStatusPending {
			pending = append(pending, a)
		}
	}
	return uc.orders.CreateAutomaticPurchaseOrders(ctx, userID, pending)
}

// ListSyncRuns lista las corridas de sincronización de una integración.
func (uc *UseCase) ListSyncRuns(ctx context.Context, integrationID string, limit int) ([]dto.SyncResultDTO, error) {
	runs, err := uc.syncLogRepo.ListByIntegration(ctx, integrationID, limit)
	if err != nil {
		return nil, fmt.Errorf("listar corridas de sincronización: %w", err)
	}
	out := make([]dto.SyncResultDTO, 0, len(runs))
	for _, r := range runs {
		out = append(out, dto.FromSyncResult(r))
	}
	return out, nil
}

// ListAlerts lista alertas por estado, ordenadas por urgencia.
func (uc *UseCase) ListAlerts(ctx context.Context, status string, limit, offset int) ([]dto.StockAlertDTO, error) {
	alerts, err := uc.alertRepo.ListByStatus(ctx, status, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("listar alertas: %w", err)
	}
	out := make([]dto.StockAlertDTO, 0, len(alerts))
	for _, a := range alerts {
		out = append(out, dto.FromStockAlert(a))
	}
	return out, nil
}

// UpdateInventoryFromDelivery aplica una entrega de proveedor: por cada línea
// resuelve las alertas pendientes del producto. La falla de una línea no
// bloquea a las demás. El ingreso físico de unidades se hace por recepción de
// mercancía (internal/application/receiving), no aquí.
func (uc *UseCase) UpdateInventoryFromDelivery(ctx context.Context, req dto.DeliveryRequest) (*dto.DeliveryResponse, error) {
	resp := &dto.DeliveryResponse{}
	for i, item := range req.Items {
		if item.ProductID == "" || item.Quantity <= 0 {
			resp.ItemErrors = append(resp.ItemErrors, fmt.Sprintf("línea %d: producto o cantidad inválidos", i))
			continue
		}
		n, err := uc.alertRepo.ResolvePendingByProduct(ctx, item.ProductID, item.WarehouseID)
		if err != nil {
			resp.ItemErrors = append(resp.ItemErrors, fmt.Sprintf("línea %d (%s): %v", i, item.ProductID, err))
			continue
		}
		resp.ItemsApplied++
		resp.AlertsResolved += n
	}
	if req.OrderID != "" {
		uc.log.Info().
			Str("order_id", req.OrderID).
			Int("items", resp.ItemsApplied).
			Int("alerts_resolved", resp.AlertsResolved).
			Msg("entrega aplicada")
	}
	return resp, nil
}

func (uc *UseCase) persistResult(ctx context.Context, r *entity.SyncResult) {
	if err := uc.syncLogRepo.Create(ctx, r); err != nil {
		uc.log.Error().Err(err).Str("integration_id", r.IntegrationID).Msg("guardar resultado de sincronización falló")
	}
}

func alertIDsOf(alerts []dto.StockAlertDTO) []string {
	ids := make([]string, len(alerts))
	for i, a := range alerts {
		ids[i] = a.ID
	}
	return ids
}
