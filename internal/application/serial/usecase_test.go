package serial

import (
	"context"
	"errors"
	"fmt"
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
	byID        map[string]*entity.SerialNumber
	byCode      map[string]*entity.SerialNumber
	maxSeq      int
	updated     map[string]repository.StatusUpdate
	transferred []string
}

func newFakeSerialRepo() *fakeSerialRepo {
	return &fakeSerialRepo{
		byID:    map[string]*entity.SerialNumber{},
		byCode:  map[string]*entity.SerialNumber{},
		updated: map[string]repository.StatusUpdate{},
	}
}

func (f *fakeSerialRepo) add(sn *entity.SerialNumber) {
	f.byID[sn.ID] = sn
	f.byCode[sn.Code] = sn
}

func (f *fakeSerialRepo) CreateBatch(_ context.Context, sns []*entity.SerialNumber) error {
	for _, sn := range sns {
		f.add(sn)
	}
	return nil
}

func (f *fakeSerialRepo) ExistsByCode(_ context.Context, code string) (bool, error) {
	_, ok := f.byCode[code]
	return ok, nil
}

func (f *fakeSerialRepo) MaxSequence(_ context.Context, _ string) (int, error) {
	return f.maxSeq, nil
}

func (f *fakeSerialRepo) GetByIDs(_ context.Context, ids []string) ([]*entity.SerialNumber, error) {
	var out []*entity.SerialNumber
	for _, id := range ids {
		if sn, ok := f.byID[id]; ok {
			out = append(out, sn)
		}
	}
	return out, nil
}

func (f *fakeSerialRepo) BulkUpdateStatus(_ context.Context, ids []string, upd repository.StatusUpdate) (int, error) {
	n := 0
	for _, id := range ids {
		if sn, ok := f.byID[id]; ok {
			sn.Status = upd.Status
			f.updated[id] = upd
			n++
		}
	}
	return n, nil
}

func (f *fakeSerialRepo) Transfer(_ context.Context, ids []string, toWarehouseID string) (int, error) {
	n := 0
	for _, id := range ids {
		if sn, ok := f.byID[id]; ok {
			sn.WarehouseID = toWarehouseID
			sn.Status = entity.SNStatusTransferred
			f.transferred = append(f.transferred, id)
			n++
		}
	}
	return n, nil
}

type fakeMovementRepo struct {
	repository.StockMovementRepository
	created   []*entity.StockMovement
	createErr error
}

func (f *fakeMovementRepo) CreateBatch(_ context.Context, ms []*entity.StockMovement) error {
	if f.createErr != nil {
		return f.createErr
	}
	f.created = append(f.created, ms...)
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

type testEnv struct {
	uc      *UseCase
	serials *fakeSerialRepo
	movs    *fakeMovementRepo
}

func newTestEnv() *testEnv {
	env := &testEnv{serials: newFakeSerialRepo(), movs: &fakeMovementRepo{}}
	products := &fakeProductRepo{products: map[string]*entity.Product{
		"p1": {ID: "p1", Code: "LAPTOP", IsActive: true},
	}}
	warehouses := &fakeWarehouseRepo{warehouses: map[string]*entity.Warehouse{
		"wh-1": {ID: "wh-1", Name: "Bodega Central"},
		"wh-2": {ID: "wh-2", Name: "Sucursal Norte"},
	}}
	env.uc = NewUseCase(env.serials, env.movs, products, warehouses, logger.Nop())
	return env
}

func seeded(env *testEnv, id, warehouseID, status string) *entity.SerialNumber {
	sn := &entity.SerialNumber{
		ID:          id,
		Code:        "LAPTOP-2025-" + id,
		ProductID:   "p1",
		WarehouseID: warehouseID,
		UnitCost:    decimal.NewFromInt(100),
		Status:      status,
	}
	env.serials.add(sn)
	return sn
}

// ─────────────────────────────────────────────
// Generación
// ─────────────────────────────────────────────

func TestGenerate_SecuenciaArrancaTrasLaMaxima(t *testing.T) {
	env := newTestEnv()
	env.serials.maxSeq = 7

	resp, err := env.uc.GenerateAndCreate(context.Background(), dto.GenerateSerialsRequest{
		ProductID: "p1", WarehouseID: "wh-1", Quantity: 3,
	})
	require.NoError(t, err)

	year := time.Now().Format("2006")
	assert.Equal(t, []string{
		"LAPTOP-" + year + "-008",
		"LAPTOP-" + year + "-009",
		"LAPTOP-" + year + "-010",
	}, resp.SerialNumbers)
	assert.Empty(t, resp.Duplicates)
}

func TestGenerate_ColisionNoAbortaElLote(t *testing.T) {
	env := newTestEnv()
	year := time.Now().Format("2006")
	env.serials.add(&entity.SerialNumber{ID: "x", Code: "LAPTOP-" + year + "-002"})

	resp, err := env.uc.GenerateAndCreate(context.Background(), dto.GenerateSerialsRequest{
		ProductID: "p1", WarehouseID: "wh-1", Quantity: 3,
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"LAPTOP-" + year + "-001", "LAPTOP-" + year + "-003"}, resp.SerialNumbers)
	assert.Equal(t, []string{"LAPTOP-" + year + "-002"}, resp.Duplicates)
}

func TestGenerate_CantidadFueraDeRango(t *testing.T) {
	env := newTestEnv()
	for _, qty := range []int{0, 1001} {
		_, err := env.uc.GenerateAndCreate(context.Background(), dto.GenerateSerialsRequest{
			ProductID: "p1", WarehouseID: "wh-1", Quantity: qty,
		})
		require.Error(t, err, "quantity = %d", qty)
		assert.Equal(t, domain.CodeValidation, domain.CodeOf(err))
	}
}

func TestGenerate_ProductoInexistente(t *testing.T) {
	env := newTestEnv()
	_, err := env.uc.GenerateAndCreate(context.Background(), dto.GenerateSerialsRequest{
		ProductID: "p-fantasma", WarehouseID: "wh-1", Quantity: 1,
	})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestGenerate_ConMes(t *testing.T) {
	env := newTestEnv()
	resp, err := env.uc.GenerateAndCreate(context.Background(), dto.GenerateSerialsRequest{
		ProductID: "p1", WarehouseID: "wh-1", Quantity: 1, IncludeMonth: true,
	})
	require.NoError(t, err)
	require.Len(t, resp.SerialNumbers, 1)
	wantPrefix := "LAPTOP-" + time.Now().Format("2006") + "-" + fmt.Sprintf("%02d", int(time.Now().Month())) + "-"
	assert.True(t, strings.HasPrefix(resp.SerialNumbers[0], wantPrefix), "código = %s", resp.SerialNumbers[0])
}

// ─────────────────────────────────────────────
// Cambios de estado
// ─────────────────────────────────────────────

func TestBulkUpdateStatus_VentaMarcaSoldAtYRegistraSalida(t *testing.T) {
	env := newTestEnv()
	seeded(env, "sn-1", "wh-1", entity.SNStatusAvailable)
	seeded(env, "sn-2", "wh-1", entity.SNStatusAvailable)

	n, err := env.uc.BulkUpdateStatus(context.Background(), "user-1", dto.BulkStatusRequest{
		SerialNumberIDs: []string{"sn-1", "sn-2"},
		Status:          entity.SNStatusSold,
		ReferenceType:   "sale",
		ReferenceID:     "inv-42",
	})
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	require.NotNil(t, env.serials.updated["sn-1"].SoldAt)

	require.Len(t, env.movs.created, 2)
	for _, m := range env.movs.created {
		assert.Equal(t, entity.MovementTypeWithdraw, m.Type)
		assert.Equal(t, -1, m.Quantity)
		assert.Equal(t, "inv-42", m.ReferenceID)
	}
}

func TestBulkUpdateStatus_DevolucionRegistraEntrada(t *testing.T) {
	env := newTestEnv()
	seeded(env, "sn-1", "wh-1", entity.SNStatusSold)

	_, err := env.uc.BulkUpdateStatus(context.Background(), "user-1", dto.BulkStatusRequest{
		SerialNumberIDs: []string{"sn-1"},
		Status:          entity.SNStatusAvailable,
	})
	require.NoError(t, err)
	require.Len(t, env.movs.created, 1)
	assert.Equal(t, entity.MovementTypeReturn, env.movs.created[0].Type)
	assert.Equal(t, 1, env.movs.created[0].Quantity)
}

func TestBulkUpdateStatus_ReservaNoGeneraMovimiento(t *testing.T) {
	env := newTestEnv()
	seeded(env, "sn-1", "wh-1", entity.SNStatusAvailable)

	_, err := env.uc.BulkUpdateStatus(context.Background(), "user-1", dto.BulkStatusRequest{
		SerialNumberIDs: []string{"sn-1"},
		Status:          entity.SNStatusReserved,
	})
	require.NoError(t, err)
	assert.Empty(t, env.movs.created)
}

func TestBulkUpdateStatus_EstadoDesconocidoRechazado(t *testing.T) {
	env := newTestEnv()
	_, err := env.uc.BulkUpdateStatus(context.Background(), "user-1", dto.BulkStatusRequest{
		SerialNumberIDs: []string{"sn-1"},
		Status:          "en_la_luna",
	})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestBulkUpdateStatus_FalloDeMovimientosNoRevierteEstado(t *testing.T) {
	env := newTestEnv()
	seeded(env, "sn-1", "wh-1", entity.SNStatusAvailable)
	env.movs.createErr = errors.New("ledger caído")

	n, err := env.uc.BulkUpdateStatus(context.Background(), "user-1", dto.BulkStatusRequest{
		SerialNumberIDs: []string{"sn-1"},
		Status:          entity.SNStatusSold,
	})
	// El cambio de estado queda; el movimiento perdido solo se loguea.
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Equal(t, entity.SNStatusSold, env.serials.byID["sn-1"].Status)
}

// ─────────────────────────────────────────────
// Traslados
// ─────────────────────────────────────────────

func TestTransfer_RegistraSalidaYEntrada(t *testing.T) {
	env := newTestEnv()
	seeded(env, "sn-1", "wh-1", entity.SNStatusAvailable)

	n, err := env.uc.Transfer(context.Background(), "user-1", dto.TransferSerialsRequest{
		SerialNumberIDs: []string{"sn-1"},
		ToWarehouseID:   "wh-2",
	})
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Equal(t, "wh-2", env.serials.byID["sn-1"].WarehouseID)

	require.Len(t, env.movs.created, 2)
	out, in := env.movs.created[0], env.movs.created[1]
	assert.Equal(t, entity.MovementTypeTransferOut, out.Type)
	assert.Equal(t, -1, out.Quantity)
	assert.Equal(t, "wh-1", out.WarehouseID)
	assert.Equal(t, entity.MovementTypeTransferIn, in.Type)
	assert.Equal(t, 1, in.Quantity)
	assert.Equal(t, "wh-2", in.WarehouseID)
	// Ambos comparten la referencia del traslado.
	assert.Equal(t, out.ReferenceID, in.ReferenceID)
}

func TestTransfer_MismaBodegaRechazado(t *testing.T) {
	env := newTestEnv()
	seeded(env, "sn-1", "wh-1", entity.SNStatusAvailable)

	_, err := env.uc.Transfer(context.Background(), "user-1", dto.TransferSerialsRequest{
		SerialNumberIDs: []string{"sn-1"},
		ToWarehouseID:   "wh-1",
	})
	assert.ErrorIs(t, err, domain.ErrConflict)
}

func TestTransfer_BodegaDestinoInexistente(t *testing.T) {
	env := newTestEnv()
	_, err := env.uc.Transfer(context.Background(), "user-1", dto.TransferSerialsRequest{
		SerialNumberIDs: []string{"sn-1"},
		ToWarehouseID:   "wh-fantasma",
	})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
