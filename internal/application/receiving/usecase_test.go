package receiving

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/AlmacenPos-api/internal/application/dto"
	"github.com/jhoicas/AlmacenPos-api/internal/domain"
	"github.com/jhoicas/AlmacenPos-api/internal/domain/entity"
	"github.com/jhoicas/AlmacenPos-api/internal/domain/repository"
	"github.com/jhoicas/AlmacenPos-api/pkg/logger"
)

// ─────────────────────────────────────────────
// Fakes en memoria
// ─────────────────────────────────────────────

type fakeSerialRepo struct {
	repository.SerialNumberRepository
	existing  map[string]bool // códigos ya tomados
	created   []*entity.SerialNumber
	createErr error
	maxSeq    int
}

func (f *fakeSerialRepo) MaxSequence(_ context.Context, _ string) (int, error) {
	return f.maxSeq, nil
}

func (f *fakeSerialRepo) ExistsByCode(_ context.Context, code string) (bool, error) {
	return f.existing[code], nil
}

func (f *fakeSerialRepo) CreateBatch(_ context.Context, sns []*entity.SerialNumber) error {
	if f.createErr != nil {
		return f.createErr
	}
	f.created = append(f.created, sns...)
	return nil
}

type fakeMovementRepo struct {
	repository.StockMovementRepository
	created []*entity.StockMovement
}

func (f *fakeMovementRepo) CreateBatch(_ context.Context, ms []*entity.StockMovement) error {
	f.created = append(f.created, ms...)
	return nil
}

type fakeReceiveRepo struct {
	repository.ReceiveLogRepository
	logs    []*entity.ReceiveLog
	nextSeq int
}

func (f *fakeReceiveRepo) NextDailySequence(_ context.Context, _ time.Time) (int, error) {
	if f.nextSeq == 0 {
		return 1, nil
	}
	return f.nextSeq, nil
}

func (f *fakeReceiveRepo) Create(_ context.Context, r *entity.ReceiveLog) error {
	f.logs = append(f.logs, r)
	return nil
}

type fakeProductRepo struct {
	repository.ProductRepository
	products map[string]*entity.Product
}

func (f *fakeProductRepo) GetByID(_ context.Context, id string) (*entity.Product, error) {
	return f.products[id], nil
}

type fakeWarehouseRepo struct {
	repository.WarehouseRepository
	warehouses map[string]*entity.Warehouse
}

func (f *fakeWarehouseRepo) GetByID(_ context.Context, id string) (*entity.Warehouse, error) {
	return f.warehouses[id], nil
}

// fakeTxRunner pasa los mismos fakes a fn; registra si todo se escribió o nada.
type fakeTxRunner struct {
	snRepo      *fakeSerialRepo
	movRepo     *fakeMovementRepo
	receiveRepo *fakeReceiveRepo
	rolledBack  bool
}

func (f *fakeTxRunner) Run(ctx context.Context, fn func(
	repository.SerialNumberRepository,
	repository.StockMovementRepository,
	repository.ReceiveLogRepository,
) error) error {
	snBefore := len(f.snRepo.created)
	movBefore := len(f.movRepo.created)
	logBefore := len(f.receiveRepo.logs)
	if err := fn(f.snRepo, f.movRepo, f.receiveRepo); err != nil {
		f.snRepo.created = f.snRepo.created[:snBefore]
		f.movRepo.created = f.movRepo.created[:movBefore]
		f.receiveRepo.logs = f.receiveRepo.logs[:logBefore]
		f.rolledBack = true
		return err
	}
	return nil
}

type testEnv struct {
	uc       *UseCase
	serials  *fakeSerialRepo
	movs     *fakeMovementRepo
	receives *fakeReceiveRepo
	products *fakeProductRepo
	tx       *fakeTxRunner
}

func newTestEnv() *testEnv {
	env := &testEnv{
		serials:  &fakeSerialRepo{existing: map[string]bool{}},
		movs:     &fakeMovementRepo{},
		receives: &fakeReceiveRepo{},
		products: &fakeProductRepo{products: map[string]*entity.Product{}},
	}
	env.tx = &fakeTxRunner{snRepo: env.serials, movRepo: env.movs, receiveRepo: env.receives}
	whRepo := &fakeWarehouseRepo{warehouses: map[string]*entity.Warehouse{
		"wh-1": {ID: "wh-1", Name: "Bodega Central"},
	}}
	env.uc = NewUseCase(env.tx, env.serials, env.receives, env.products, whRepo, logger.Nop())
	return env
}

// ─────────────────────────────────────────────
// Recepción
// ─────────────────────────────────────────────

func TestReceiveGoods_GeneraSerialesYMovimientos(t *testing.T) {
	env := newTestEnv()
	env.products.products["p1"] = &entity.Product{ID: "p1", Code: "LAPTOP", IsActive: true}

	resp, err := env.uc.ReceiveGoods(context.Background(), "user-1", dto.ReceiveGoodsRequest{
		WarehouseID: "wh-1",
		SupplierID:  "sup-1",
		Items: []dto.ReceiveItem{
			{ProductID: "p1", Quantity: 3, UnitCost: decimal.NewFromInt(500)},
		},
	})
	require.NoError(t, err)
	require.Len(t, resp.Items, 1)
	assert.Len(t, resp.Items[0].SerialNumbers, 3)
	assert.Empty(t, resp.Items[0].Error)

	// Número de recepción del día con secuencia 001.
	wantPrefix := "RCV-" + time.Now().Format("20060102") + "-"
	assert.True(t, strings.HasPrefix(resp.ReceiveNumber, wantPrefix), "número = %s", resp.ReceiveNumber)
	assert.True(t, strings.HasSuffix(resp.ReceiveNumber, "-001"))

	// Tres filas de serie disponibles + tres movimientos receive de +1.
	require.Len(t, env.serials.created, 3)
	for _, sn := range env.serials.created {
		assert.Equal(t, entity.SNStatusAvailable, sn.Status)
		assert.Equal(t, "wh-1", sn.WarehouseID)
	}
	require.Len(t, env.movs.created, 3)
	for _, m := range env.movs.created {
		assert.Equal(t, entity.MovementTypeReceive, m.Type)
		assert.Equal(t, 1, m.Quantity)
		assert.Equal(t, "receive_log", m.ReferenceType)
		assert.Equal(t, resp.ReceiveLogID, m.ReferenceID)
	}

	// Encabezado con costo total 3 * 500.
	require.Len(t, env.receives.logs, 1)
	assert.Equal(t, 3, env.receives.logs[0].ItemCount)
	assert.True(t, env.receives.logs[0].TotalCost.Equal(decimal.NewFromInt(1500)))
}

func TestReceiveGoods_SecuenciaContinuaDesdeMaxima(t *testing.T) {
	env := newTestEnv()
	env.products.products["p1"] = &entity.Product{ID: "p1", Code: "LAPTOP"}
	env.serials.maxSeq = 41

	resp, err := env.uc.ReceiveGoods(context.Background(), "user-1", dto.ReceiveGoodsRequest{
		WarehouseID: "wh-1",
		Items:       []dto.ReceiveItem{{ProductID: "p1", Quantity: 2, UnitCost: decimal.NewFromInt(10)}},
	})
	require.NoError(t, err)

	year := time.Now().Format("2006")
	assert.Equal(t, []string{"LAPTOP-" + year + "-042", "LAPTOP-" + year + "-043"}, resp.Items[0].SerialNumbers)
}

func TestReceiveGoods_LineaInvalidaSeAisla(t *testing.T) {
	env := newTestEnv()
	env.products.products["p1"] = &entity.Product{ID: "p1", Code: "LAPTOP"}

	resp, err := env.uc.ReceiveGoods(context.Background(), "user-1", dto.ReceiveGoodsRequest{
		WarehouseID: "wh-1",
		Items: []dto.ReceiveItem{
			{ProductID: "p1", Quantity: 2, UnitCost: decimal.NewFromInt(10)},
			{ProductID: "p-fantasma", Quantity: 1, UnitCost: decimal.NewFromInt(10)},
		},
	})
	require.NoError(t, err)
	require.Len(t, resp.Items, 2)
	assert.Len(t, resp.Items[0].SerialNumbers, 2)
	assert.Equal(t, "producto no encontrado", resp.Items[1].Error)

	// Solo la línea válida quedó escrita.
	assert.Len(t, env.serials.created, 2)
	assert.Len(t, env.receives.logs, 1)
}

func TestReceiveGoods_DuplicadoSeReportaYNoSeInserta(t *testing.T) {
	env := newTestEnv()
	env.products.products["p1"] = &entity.Product{ID: "p1", Code: "LAPTOP"}
	year := time.Now().Format("2006")
	env.serials.existing["LAPTOP-"+year+"-001"] = true

	resp, err := env.uc.ReceiveGoods(context.Background(), "user-1", dto.ReceiveGoodsRequest{
		WarehouseID: "wh-1",
		Items:       []dto.ReceiveItem{{ProductID: "p1", Quantity: 2, UnitCost: decimal.NewFromInt(10)}},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"LAPTOP-" + year + "-001"}, resp.Items[0].Duplicates)
	assert.Len(t, resp.Items[0].SerialNumbers, 1)
	assert.Len(t, env.serials.created, 1)
}

func TestReceiveGoods_SinLineasValidasNoEscribeNada(t *testing.T) {
	env := newTestEnv()

	resp, err := env.uc.ReceiveGoods(context.Background(), "user-1", dto.ReceiveGoodsRequest{
		WarehouseID: "wh-1",
		Items:       []dto.ReceiveItem{{ProductID: "p-fantasma", Quantity: 1}},
	})
	require.NoError(t, err)
	assert.Empty(t, resp.ReceiveNumber)
	assert.Empty(t, env.receives.logs)
	assert.Empty(t, env.serials.created)
}

func TestReceiveGoods_FallaEnTransaccionRevierteTodo(t *testing.T) {
	env := newTestEnv()
	env.products.products["p1"] = &entity.Product{ID: "p1", Code: "LAPTOP"}
	env.serials.createErr = errors.New("unique violation")

	_, err := env.uc.ReceiveGoods(context.Background(), "user-1", dto.ReceiveGoodsRequest{
		WarehouseID: "wh-1",
		Items:       []dto.ReceiveItem{{ProductID: "p1", Quantity: 2, UnitCost: decimal.NewFromInt(10)}},
	})
	require.Error(t, err)
	assert.True(t, env.tx.rolledBack)
	assert.Empty(t, env.serials.created)
	assert.Empty(t, env.movs.created)
	assert.Empty(t, env.receives.logs)
}

func TestReceiveGoods_BodegaInexistente(t *testing.T) {
	env := newTestEnv()

	_, err := env.uc.ReceiveGoods(context.Background(), "user-1", dto.ReceiveGoodsRequest{
		WarehouseID: "wh-fantasma",
		Items:       []dto.ReceiveItem{{ProductID: "p1", Quantity: 1}},
	})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestReceiveNumber_Formato(t *testing.T) {
	day := time.Date(2025, 3, 9, 15, 0, 0, 0, time.UTC)
	assert.Equal(t, "RCV-20250309-007", ReceiveNumber(day, 7))
}
