package stock

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/AlmacenPos-api/internal/domain"
	"github.com/jhoicas/AlmacenPos-api/internal/domain/entity"
	"github.com/jhoicas/AlmacenPos-api/internal/domain/repository"
)

type fakeLevelRepo struct {
	levels []entity.StockLevel
}

func (f *fakeLevelRepo) GetStockLevels(_ context.Context, filter repository.StockLevelFilter) ([]entity.StockLevel, error) {
	var out []entity.StockLevel
	for _, l := range f.levels {
		if filter.ProductID != "" && l.ProductID != filter.ProductID {
			continue
		}
		if filter.WarehouseID != "" && l.WarehouseID != filter.WarehouseID {
			continue
		}
		out = append(out, l)
	}
	return out, nil
}

type fakeWarehouseRepo struct {
	repository.WarehouseRepository
	warehouses map[string]*entity.Warehouse
}

func (f *fakeWarehouseRepo) GetByID(_ context.Context, id string) (*entity.Warehouse, error) {
	return f.warehouses[id], nil
}

func level(productID, warehouseID string, available, total int, cost float64) entity.StockLevel {
	c := decimal.NewFromFloat(cost)
	return entity.StockLevel{
		ProductID:      productID,
		WarehouseID:    warehouseID,
		TotalQty:       total,
		AvailableQty:   available,
		AverageCost:    c,
		AvailableValue: c.Mul(decimal.NewFromInt(int64(available))),
	}
}

func newTestUseCase(levels ...entity.StockLevel) *UseCase {
	return NewUseCase(
		&fakeLevelRepo{levels: levels},
		&fakeWarehouseRepo{warehouses: map[string]*entity.Warehouse{
			"wh-1": {ID: "wh-1", Name: "Bodega Central"},
		}},
	)
}

func TestGetLowStockAlerts_FiltraPorUmbral(t *testing.T) {
	uc := newTestUseCase(
		level("p-cero", "wh-1", 0, 10, 1),
		level("p-bajo", "wh-1", 3, 10, 1),
		level("p-borde", "wh-1", 5, 10, 1),
		level("p-sano", "wh-1", 6, 10, 1),
	)

	out, err := uc.GetLowStockAlerts(context.Background(), 5)
	require.NoError(t, err)
	require.Len(t, out, 2)
	// Cero disponible no es "bajo": es quiebre y va en GetOutOfStockItems.
	assert.Equal(t, "p-bajo", out[0].ProductID)
	assert.Equal(t, "p-borde", out[1].ProductID)
}

func TestGetLowStockAlerts_UmbralInvalido(t *testing.T) {
	uc := newTestUseCase()
	_, err := uc.GetLowStockAlerts(context.Background(), 0)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestGetOutOfStockItems(t *testing.T) {
	uc := newTestUseCase(
		level("p-cero", "wh-1", 0, 10, 1),
		level("p-sano", "wh-1", 6, 10, 1),
	)

	out, err := uc.GetOutOfStockItems(context.Background())
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, "p-cero", out[0].ProductID)
}

func TestGetWarehouseSummary_Agrega(t *testing.T) {
	uc := newTestUseCase(
		level("p1", "wh-1", 0, 5, 100),  // quiebre
		level("p2", "wh-1", 4, 8, 50),   // bajo stock (umbral 5)
		level("p3", "wh-1", 20, 25, 10), // sano
		level("p4", "wh-2", 1, 1, 999),  // otra bodega: fuera del resumen
	)

	sum, err := uc.GetWarehouseSummary(context.Background(), "wh-1", 0)
	require.NoError(t, err)
	assert.Equal(t, "Bodega Central", sum.WarehouseName)
	assert.Equal(t, 3, sum.ProductCount)
	assert.Equal(t, 38, sum.TotalQty)
	assert.Equal(t, 24, sum.AvailableQty)
	assert.Equal(t, 1, sum.OutOfStockCount)
	assert.Equal(t, 1, sum.LowStockCount)
	// 4*50 + 20*10 = 400
	assert.True(t, sum.AvailableValue.Equal(decimal.NewFromInt(400)), "valor = %s", sum.AvailableValue)
}

func TestGetWarehouseSummary_BodegaInexistente(t *testing.T) {
	uc := newTestUseCase()
	_, err := uc.GetWarehouseSummary(context.Background(), "wh-fantasma", 5)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
