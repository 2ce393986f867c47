// Package stock implementa el servicio de consulta de inventario: lecturas y
// agregaciones sobre la vista precalculada stock_summary_view.
package stock

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/AlmacenPos-api/internal/application/dto"
	"github.com/jhoicas/AlmacenPos-api/internal/domain"
	"github.com/jhoicas/AlmacenPos-api/internal/domain/entity"
	"github.com/jhoicas/AlmacenPos-api/internal/domain/repository"
)

// UseCase capa de solo lectura sobre los niveles de stock. Las funciones
// derivadas recalculan sobre el resultado completo de GetStockLevels
// (sin mantenimiento incremental).
type UseCase struct {
	levelRepo repository.StockLevelRepository
	whRepo    repository.WarehouseRepository
}

// NewUseCase construye el caso de uso.
func NewUseCase(levelRepo repository.StockLevelRepository, whRepo repository.WarehouseRepository) *UseCase {
	return &UseCase{levelRepo: levelRepo, whRepo: whRepo}
}

// GetStockLevels devuelve las filas de la vista, con filtro opcional.
func (uc *UseCase) GetStockLevels(ctx context.Context, f repository.StockLevelFilter) ([]entity.StockLevel, error) {
	return uc.levelRepo.GetStockLevels(ctx, f)
}

// GetLowStockAlerts devuelve las filas con 0 < disponible <= threshold.
func (uc *UseCase) GetLowStockAlerts(ctx context.Context, threshold int) ([]entity.StockLevel, error) {
	if threshold <= 0 {
		return nil, domain.ErrInvalidInput
	}
	levels, err := uc.levelRepo.GetStockLevels(ctx, repository.StockLevelFilter{})
	if err != nil {
		return nil, err
	}
	var out []entity.StockLevel
	for _, l := range levels {
		if l.AvailableQty > 0 && l.AvailableQty <= threshold {
			out = append(out, l)
		}
	}
	return out, nil
}

// GetOutOfStockItems devuelve las filas con disponible = 0.
func (uc *UseCase) GetOutOfStockItems(ctx context.Context) ([]entity.StockLevel, error) {
	levels, err := uc.levelRepo.GetStockLevels(ctx, repository.StockLevelFilter{})
	if err != nil {
		return nil, err
	}
	var out []entity.StockLevel
	for _, l := range levels {
		if l.AvailableQty == 0 {
			out = append(out, l)
		}
	}
	return out, nil
}

// LowStockThresholdDefault umbral por defecto del resumen de bodega.
const LowStockThresholdDefault = 5

// GetWarehouseSummary agrega conteo de productos, totales y productos en
// quiebre/bajo stock para una bodega.
func (uc *UseCase) GetWarehouseSummary(ctx context.Context, warehouseID string, lowStockThreshold int) (*dto.WarehouseSummaryDTO, error) {
	wh, err := uc.whRepo.GetByID(ctx, warehouseID)
	if err != nil {
		return nil, err
	}
	if wh == nil {
		return nil, domain.ErrNotFound
	}
	if lowStockThreshold <= 0 {
		lowStockThreshold = LowStockThresholdDefault
	}

	levels, err := uc.levelRepo.GetStockLevels(ctx, repository.StockLevelFilter{WarehouseID: warehouseID})
	if err != nil {
		return nil, err
	}

	sum := &dto.WarehouseSummaryDTO{
		WarehouseID:    warehouseID,
		WarehouseName:  wh.Name,
		AvailableValue: decimal.Zero,
	}
	for _, l := range levels {
		sum.ProductCount++
		sum.TotalQty += l.TotalQty
		sum.AvailableQty += l.AvailableQty
		sum.AvailableValue = sum.AvailableValue.Add(l.AvailableValue)
		switch {
		case l.AvailableQty == 0:
			sum.OutOfStockCount++
		case l.AvailableQty <= lowStockThreshold:
			sum.LowStockCount++
		}
	}
	return sum, nil
}
