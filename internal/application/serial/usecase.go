// Package serial implementa el servicio de números de serie: generación de
// lotes con verificación de unicidad, transiciones de estado con registro de
// movimientos y estadísticas.
package serial

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/AlmacenPos-api/internal/application/dto"
	"github.com/jhoicas/AlmacenPos-api/internal/domain"
	"github.com/jhoicas/AlmacenPos-api/internal/domain/entity"
	serialdom "github.com/jhoicas/AlmacenPos-api/internal/domain/serial"
	"github.com/jhoicas/AlmacenPos-api/internal/domain/repository"
	"github.com/jhoicas/AlmacenPos-api/pkg/logger"
)

// UseCase orquesta las operaciones sobre números de serie.
type UseCase struct {
	snRepo      repository.SerialNumberRepository
	movRepo     repository.StockMovementRepository
	productRepo repository.ProductRepository
	whRepo      repository.WarehouseRepository
	log         *logger.Logger
}

// NewUseCase construye el caso de uso.
func NewUseCase(
	snRepo repository.SerialNumberRepository,
	movRepo repository.StockMovementRepository,
	productRepo repository.ProductRepository,
	whRepo repository.WarehouseRepository,
	log *logger.Logger,
) *UseCase {
	return &UseCase{
		snRepo:      snRepo,
		movRepo:     movRepo,
		productRepo: productRepo,
		whRepo:      whRepo,
		log:         log.Component("serial"),
	}
}

// GenerateAndCreate sintetiza quantity códigos consecutivos y persiste los que
// no colisionan. La secuencia inicial es max(existente)+1 para el prefijo
// producto/año[/mes]. Cada código se verifica individualmente: una colisión
// marca ese código como duplicado pero no aborta el lote.
//
// La verificación es optimista (sin reserva ni bloqueo): dos generaciones
// concurrentes del mismo producto pueden colisionar al insertar; la colisión
// se reporta como duplicado. Comportamiento heredado del sistema origen.
func (uc *UseCase) GenerateAndCreate(ctx context.Context, in dto.GenerateSerialsRequest) (*dto.GenerateSerialsResponse, error) {
	product, err := uc.productRepo.GetByID(ctx, in.ProductID)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, domain.ErrNotFound
	}
	wh, err := uc.whRepo.GetByID(ctx, in.WarehouseID)
	if err != nil {
		return nil, err
	}
	if wh == nil {
		return nil, domain.ErrNotFound
	}
	if err := serialdom.ValidateRequest(product.Code, in.Quantity); err != nil {
		return nil, err
	}

	cfg := serialdom.DefaultConfig()
	cfg.IncludeMonth = in.IncludeMonth
	if in.Pattern != "" {
		cfg.Pattern = in.Pattern
	}

	now := time.Now()
	prefix := serialdom.Prefix(cfg, product.Code, now)
	maxSeq, err := uc.snRepo.MaxSequence(ctx, prefix)
	if err != nil {
		return nil, fmt.Errorf("buscar secuencia máxima: %w", err)
	}

	resp := &dto.GenerateSerialsResponse{}
	var batch []*entity.SerialNumber
	for i := 1; i <= in.Quantity; i++ {
		code := serialdom.BuildCode(cfg, product.Code, now, maxSeq+i)
		if err := serialdom.ValidateCode(code); err != nil {
			resp.Errors = append(resp.Errors, fmt.Sprintf("%s: %v", code, err))
			continue
		}
		exists, err := uc.snRepo.ExistsByCode(ctx, code)
		if err != nil {
			resp.Errors = append(resp.Errors, fmt.Sprintf("%s: %v", code, err))
			continue
		}
		if exists {
			resp.Duplicates = append(resp.Duplicates, code)
			continue
		}
		batch = append(batch, &entity.SerialNumber{
			ID:          uuid.New().String(),
			Code:        code,
			ProductID:   in.ProductID,
			WarehouseID: in.WarehouseID,
			UnitCost:    in.UnitCost,
			Status:      entity.SNStatusAvailable,
			CreatedAt:   now,
			UpdatedAt:   now,
		})
		resp.SerialNumbers = append(resp.SerialNumbers, code)
	}

	if len(batch) > 0 {
		if err := uc.snRepo.CreateBatch(ctx, batch); err != nil {
			return nil, fmt.Errorf("crear números de serie: %w", err)
		}
	}
	uc.log.Info().
		Str("product_id", in.ProductID).
		Int("requested", in.Quantity).
		Int("created", len(batch)).
		Int("duplicates", len(resp.Duplicates)).
		Msg("lote de números de serie generado")
	return resp, nil
}

// Validate verifica formato y reporta existencia por separado.
func (uc *UseCase) Validate(ctx context.Context, code string) (*dto.ValidateSerialResponse, error) {
	out := &dto.ValidateSerialResponse{Code: code}
	if err := serialdom.ValidateCode(code); err != nil {
		out.Message = err.Error()
		return out, nil
	}
	out.Valid = true
	exists, err := uc.snRepo.ExistsByCode(ctx, code)
	if err != nil {
		return nil, err
	}
	out.Exists = exists
	return out, nil
}

// Get devuelve un número de serie o nil si no existe (lectura resiliente:
// los fallos del repositorio se degradan a nil para no romper el render del UI).
func (uc *UseCase) Get(ctx context.Context, id string) *entity.SerialNumber {
	sn, err := uc.snRepo.GetByID(ctx, id)
	if err != nil {
		uc.log.Warn().Err(err).Str("id", id).Msg("lectura de número de serie falló")
		return nil
	}
	return sn
}

// List lista números de serie con filtro.
func (uc *UseCase) List(ctx context.Context, f repository.SerialNumberFilter) ([]*entity.SerialNumber, error) {
	return uc.snRepo.List(ctx, f)
}

// BulkUpdateStatus fija el nuevo estado en un solo round-trip y registra un
// movimiento por unidad. No hay tabla de transiciones: cualquier estado puede
// fijarse sobre cualquier otro (permisividad heredada del origen).
//
// Contrato at-least-once/best-effort: el fallo al insertar movimientos se
// registra en el log pero NO revierte el cambio de estado (sin atomicidad
// entre ambas escrituras; ver DESIGN.md).
func (uc *UseCase) BulkUpdateStatus(ctx context.Context, userID string, in dto.BulkStatusRequest) (int, error) {
	if len(in.SerialNumberIDs) == 0 || !entity.IsValidSNStatus(in.Status) {
		return 0, domain.ErrInvalidInput
	}

	// Leer antes de actualizar para construir los movimientos con bodega y costo.
	sns, err := uc.snRepo.GetByIDs(ctx, in.SerialNumberIDs)
	if err != nil {
		return 0, err
	}
	if len(sns) == 0 {
		return 0, domain.ErrNotFound
	}

	upd := repository.StatusUpdate{
		Status:        in.Status,
		ReferenceType: in.ReferenceType,
		ReferenceID:   in.ReferenceID,
	}
	if in.Status == entity.SNStatusSold {
		now := time.Now()
		upd.SoldAt = &now
	}
	affected, err := uc.snRepo.BulkUpdateStatus(ctx, in.SerialNumberIDs, upd)
	if err != nil {
		return 0, fmt.Errorf("actualizar estado: %w", err)
	}

	uc.appendStatusMovements(ctx, userID, sns, in)
	return affected, nil
}

// appendStatusMovements inserta los movimientos derivados del cambio de estado.
// Best-effort: el error solo se loguea.
func (uc *UseCase) appendStatusMovements(ctx context.Context, userID string, sns []*entity.SerialNumber, in dto.BulkStatusRequest) {
	movType, qty := movementForStatus(in.Status)
	if movType == "" {
		return
	}
	now := time.Now()
	movs := make([]*entity.StockMovement, 0, len(sns))
	for _, sn := range sns {
		movs = append(movs, &entity.StockMovement{
			ID:             uuid.New().String(),
			ProductID:      sn.ProductID,
			WarehouseID:    sn.WarehouseID,
			SerialNumberID: sn.ID,
			Type:           movType,
			Quantity:       qty,
			UnitCost:       sn.UnitCost,
			ReferenceType:  in.ReferenceType,
			ReferenceID:    in.ReferenceID,
			CreatedAt:      now,
			CreatedBy:      userID,
		})
	}
	if err := uc.movRepo.CreateBatch(ctx, movs); err != nil {
		uc.log.Error().Err(err).
			Str("status", in.Status).
			Int("count", len(movs)).
			Msg("movimientos de cambio de estado no registrados")
	}
}

// movementForStatus mapea estado destino → (tipo de movimiento, signo).
// reserved y transferred no generan movimiento aquí (transferred usa Transfer).
func movementForStatus(status string) (string, int) {
	switch status {
	case entity.SNStatusSold:
		return entity.MovementTypeWithdraw, -1
	case entity.SNStatusClaimed:
		return entity.MovementTypeClaim, -1
	case entity.SNStatusDamaged:
		return entity.MovementTypeAdjustment, -1
	case entity.SNStatusAvailable:
		return entity.MovementTypeReturn, 1
	default:
		return "", 0
	}
}

// Transfer traslada unidades a otra bodega: actualiza filas y registra dos
// movimientos por unidad (transfer_out en origen, transfer_in en destino).
// Los movimientos son best-effort igual que en BulkUpdateStatus.
func (uc *UseCase) Transfer(ctx context.Context, userID string, in dto.TransferSerialsRequest) (int, error) {
	if len(in.SerialNumberIDs) == 0 || in.ToWarehouseID == "" {
		return 0, domain.ErrInvalidInput
	}
	wh, err := uc.whRepo.GetByID(ctx, in.ToWarehouseID)
	if err != nil {
		return 0, err
	}
	if wh == nil {
		return 0, domain.ErrNotFound
	}

	sns, err := uc.snRepo.GetByIDs(ctx, in.SerialNumberIDs)
	if err != nil {
		return 0, err
	}
	if len(sns) == 0 {
		return 0, domain.ErrNotFound
	}
	for _, sn := range sns {
		if sn.WarehouseID == in.ToWarehouseID {
			return 0, domain.ErrConflict
		}
	}

	affected, err := uc.snRepo.Transfer(ctx, in.SerialNumberIDs, in.ToWarehouseID)
	if err != nil {
		return 0, fmt.Errorf("trasladar números de serie: %w", err)
	}

	now := time.Now()
	transferID := uuid.New().String()
	movs := make([]*entity.StockMovement, 0, 2*len(sns))
	for _, sn := range sns {
		movs = append(movs,
			&entity.StockMovement{
				ID:             uuid.New().String(),
				ProductID:      sn.ProductID,
				WarehouseID:    sn.WarehouseID,
				SerialNumberID: sn.ID,
				Type:           entity.MovementTypeTransferOut,
				Quantity:       -1,
				UnitCost:       sn.UnitCost,
				ReferenceType:  "transfer",
				ReferenceID:    transferID,
				Notes:          in.Notes,
				CreatedAt:      now,
				CreatedBy:      userID,
			},
			&entity.StockMovement{
				ID:             uuid.New().String(),
				ProductID:      sn.ProductID,
				WarehouseID:    in.ToWarehouseID,
				SerialNumberID: sn.ID,
				Type:           entity.MovementTypeTransferIn,
				Quantity:       1,
				UnitCost:       sn.UnitCost,
				ReferenceType:  "transfer",
				ReferenceID:    transferID,
				Notes:          in.Notes,
				CreatedAt:      now,
				CreatedBy:      userID,
			},
		)
	}
	if err := uc.movRepo.CreateBatch(ctx, movs); err != nil {
		uc.log.Error().Err(err).
			Str("to_warehouse", in.ToWarehouseID).
			Int("count", len(sns)).
			Msg("movimientos de traslado no registrados")
	}
	return affected, nil
}

// Stats devuelve conteo y valor agregados por estado y bodega.
func (uc *UseCase) Stats(ctx context.Context, warehouseID string) ([]dto.SerialStatsRow, error) {
	rows, err := uc.snRepo.Stats(ctx, warehouseID)
	if err != nil {
		return nil, err
	}
	out := make([]dto.SerialStatsRow, 0, len(rows))
	for _, r := range rows {
		out = append(out, dto.SerialStatsRow{
			WarehouseID: r.WarehouseID,
			Status:      r.Status,
			Count:       r.Count,
			TotalValue:  r.TotalValue,
		})
	}
	return out, nil
}

// Delete es la eliminación administrativa masiva.
func (uc *UseCase) Delete(ctx context.Context, ids []string) (int, error) {
	if len(ids) == 0 {
		return 0, domain.ErrInvalidInput
	}
	return uc.snRepo.DeleteByIDs(ctx, ids)
}
