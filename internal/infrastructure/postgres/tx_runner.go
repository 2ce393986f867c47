package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jhoicas/AlmacenPos-api/internal/application/purchasing"
	"github.com/jhoicas/AlmacenPos-api/internal/application/receiving"
	"github.com/jhoicas/AlmacenPos-api/internal/domain/repository"
)

var _ receiving.TxRunner = (*TxRunner)(nil)
var _ purchasing.TxRunner = (*PurchaseTxRunner)(nil)

// TxRunner ejecuta callbacks de recepción dentro de una transacción PostgreSQL.
type TxRunner struct {
	pool *pgxpool.Pool
}

// NewTxRunner construye el runner con el pool.
func NewTxRunner(pool *pgxpool.Pool) *TxRunner {
	return &TxRunner{pool: pool}
}

// Run inicia una transacción, ejecuta fn con repos atados a la tx y hace Commit o Rollback.
func (r *TxRunner) Run(ctx context.Context, fn func(
	snRepo repository.SerialNumberRepository,
	movRepo repository.StockMovementRepository,
	receiveRepo repository.ReceiveLogRepository,
) error) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err := fn(
		NewSerialNumberRepository(tx),
		NewStockMovementRepository(tx),
		NewReceiveLogRepository(tx),
	); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// PurchaseTxRunner ejecuta callbacks de compras dentro de una transacción.
type PurchaseTxRunner struct {
	pool *pgxpool.Pool
}

// NewPurchaseTxRunner construye el runner de compras.
func NewPurchaseTxRunner(pool *pgxpool.Pool) *PurchaseTxRunner {
	return &PurchaseTxRunner{pool: pool}
}

// Run inicia una transacción con repos de órdenes y alertas (orden + ítems y
// alertas a processing, todo o nada).
func (r *PurchaseTxRunner) Run(ctx context.Context, fn func(
	poRepo repository.PurchaseOrderRepository,
	alertRepo repository.StockAlertRepository,
) error) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err := fn(
		NewPurchaseOrderRepository(tx),
		NewStockAlertRepository(tx),
	); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}
