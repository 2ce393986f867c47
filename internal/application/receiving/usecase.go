// Package receiving implementa la recepción de mercancía: genera los números
// de serie de cada línea, registra los movimientos de entrada y el encabezado
// RCV-{YYYYMMDD}-{NNN}, todo en una sola transacción.
package receiving

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/AlmacenPos-api/internal/application/dto"
	"github.com/jhoicas/AlmacenPos-api/internal/domain"
	"github.com/jhoicas/AlmacenPos-api/internal/domain/entity"
	"github.com/jhoicas/AlmacenPos-api/internal/domain/repository"
	serialdom "github.com/jhoicas/AlmacenPos-api/internal/domain/serial"
	"github.com/jhoicas/AlmacenPos-api/pkg/logger"
)

// UseCase orquesta la recepción de mercancía.
type UseCase struct {
	txRunner    TxRunner
	snRepo      repository.SerialNumberRepository
	receiveRepo repository.ReceiveLogRepository
	productRepo repository.ProductRepository
	whRepo      repository.WarehouseRepository
	log         *logger.Logger
}

// NewUseCase construye el caso de uso.
func NewUseCase(
	txRunner TxRunner,
	snRepo repository.SerialNumberRepository,
	receiveRepo repository.ReceiveLogRepository,
	productRepo repository.ProductRepository,
	whRepo repository.WarehouseRepository,
	log *logger.Logger,
) *UseCase {
	return &UseCase{
		txRunner:    txRunner,
		snRepo:      snRepo,
		receiveRepo: receiveRepo,
		productRepo: productRepo,
		whRepo:      whRepo,
		log:         log.Component("receiving"),
	}
}

// preparado es una línea validada lista para insertar.
type preparado struct {
	result *dto.ReceiveItemResult
	batch  []*entity.SerialNumber
	movs   []*entity.StockMovement
	cost   decimal.Decimal
}

// ReceiveGoods procesa una recepción completa. La validación y la síntesis de
// códigos corren por línea y las fallas se aíslan (una línea inválida no tumba
// la recepción); la escritura de lo que sí validó es una sola transacción.
func (uc *UseCase) ReceiveGoods(ctx context.Context, userID string, req dto.ReceiveGoodsRequest) (*dto.ReceiveGoodsResponse, error) {
	if req.WarehouseID == "" || len(req.Items) == 0 {
		return nil, domain.ErrInvalidInput
	}
	wh, err := uc.whRepo.GetByID(ctx, req.WarehouseID)
	if err != nil {
		return nil, err
	}
	if wh == nil {
		return nil, domain.ErrNotFound
	}

	now := time.Now()
	resp := &dto.ReceiveGoodsResponse{}
	var prepared []preparado
	for _, item := range req.Items {
		p := uc.prepareItem(ctx, userID, req.WarehouseID, item, now)
		resp.Items = append(resp.Items, *p.result)
		if p.result.Error == "" && len(p.batch) > 0 {
			prepared = append(prepared, p)
		}
	}
	if len(prepared) == 0 {
		return resp, nil
	}

	seq, err := uc.receiveRepo.NextDailySequence(ctx, now)
	if err != nil {
		return nil, fmt.Errorf("secuencia diaria de recepción: %w", err)
	}
	logEntry := &entity.ReceiveLog{
		ID:            uuid.New().String(),
		ReceiveNumber: ReceiveNumber(now, seq),
		WarehouseID:   req.WarehouseID,
		SupplierID:    req.SupplierID,
		OrderID:       req.OrderID,
		Notes:         req.Notes,
		TotalCost:     decimal.Zero,
		CreatedAt:     now,
		CreatedBy:     userID,
	}

	err = uc.txRunner.Run(ctx, func(
		snRepo repository.SerialNumberRepository,
		movRepo repository.StockMovementRepository,
		receiveRepo repository.ReceiveLogRepository,
	) error {
		for _, p := range prepared {
			for _, m := range p.movs {
				m.ReferenceID = logEntry.ID
			}
			if err := snRepo.CreateBatch(ctx, p.batch); err != nil {
				return fmt.Errorf("crear números de serie de %s: %w", p.result.ProductID, err)
			}
			if err := movRepo.CreateBatch(ctx, p.movs); err != nil {
				return fmt.Errorf("registrar movimientos de %s: %w", p.result.ProductID, err)
			}
			logEntry.ItemCount += len(p.batch)
			logEntry.TotalCost = logEntry.TotalCost.Add(p.cost)
		}
		return receiveRepo.Create(ctx, logEntry)
	})
	if err != nil {
		return nil, fmt.Errorf("recepción %s: %w", logEntry.ReceiveNumber, err)
	}

	resp.ReceiveNumber = logEntry.ReceiveNumber
	resp.ReceiveLogID = logEntry.ID
	uc.log.Info().
		Str("receive_number", logEntry.ReceiveNumber).
		Str("warehouse_id", req.WarehouseID).
		Int("units", logEntry.ItemCount).
		Msg("recepción de mercancía registrada")
	return resp, nil
}

// prepareItem valida la línea, sintetiza sus códigos y arma filas y movimientos.
// Cualquier falla deja el error en el resultado de la línea sin abortar el resto.
func (uc *UseCase) prepareItem(ctx context.Context, userID, warehouseID string, item dto.ReceiveItem, now time.Time) preparado {
	p := preparado{result: &dto.ReceiveItemResult{ProductID: item.ProductID}}

	product, err := uc.productRepo.GetByID(ctx, item.ProductID)
	if err != nil {
		p.result.Error = err.Error()
		return p
	}
	if product == nil {
		p.result.Error = "producto no encontrado"
		return p
	}
	if err := serialdom.ValidateRequest(product.Code, item.Quantity); err != nil {
		p.result.Error = err.Error()
		return p
	}

	cfg := serialdom.DefaultConfig()
	prefix := serialdom.Prefix(cfg, product.Code, now)
	maxSeq, err := uc.snRepo.MaxSequence(ctx, prefix)
	if err != nil {
		p.result.Error = err.Error()
		return p
	}

	for i := 1; i <= item.Quantity; i++ {
		code := serialdom.BuildCode(cfg, product.Code, now, maxSeq+i)
		exists, err := uc.snRepo.ExistsByCode(ctx, code)
		if err != nil {
			p.result.Error = err.Error()
			return p
		}
		if exists {
			p.result.Duplicates = append(p.result.Duplicates, code)
			continue
		}
		sn := &entity.SerialNumber{
			ID:          uuid.New().String(),
			Code:        code,
			ProductID:   item.ProductID,
			WarehouseID: warehouseID,
			UnitCost:    item.UnitCost,
			Status:      entity.SNStatusAvailable,
			CreatedAt:   now,
			UpdatedAt:   now,
		}
		p.batch = append(p.batch, sn)
		p.movs = append(p.movs, &entity.StockMovement{
			ID:             uuid.New().String(),
			ProductID:      item.ProductID,
			WarehouseID:    warehouseID,
			SerialNumberID: sn.ID,
			Type:           entity.MovementTypeReceive,
			Quantity:       1,
			UnitCost:       item.UnitCost,
			ReferenceType:  "receive_log",
			CreatedAt:      now,
			CreatedBy:      userID,
		})
		p.cost = p.cost.Add(item.UnitCost)
		p.result.SerialNumbers = append(p.result.SerialNumbers, code)
	}
	return p
}

// Get devuelve un encabezado de recepción o nil si no existe.
func (uc *UseCase) Get(ctx context.Context, id string) (*dto.ReceiveLogDTO, error) {
	rl, err := uc.receiveRepo.GetByID(ctx, id)
	if err != nil || rl == nil {
		return nil, err
	}
	out := dto.FromReceiveLog(rl)
	return &out, nil
}

// List lista recepciones recientes.
func (uc *UseCase) List(ctx context.Context, limit, offset int) ([]dto.ReceiveLogDTO, error) {
	logs, err := uc.receiveRepo.List(ctx, limit, offset)
	if err != nil {
		return nil, err
	}
	out := make([]dto.ReceiveLogDTO, 0, len(logs))
	for _, rl := range logs {
		out = append(out, dto.FromReceiveLog(rl))
	}
	return out, nil
}

// ReceiveNumber arma el número RCV-{YYYYMMDD}-{NNN}.
func ReceiveNumber(day time.Time, seq int) string {
	return fmt.Sprintf("RCV-%s-%03d", day.Format("20060102"), seq)
}
