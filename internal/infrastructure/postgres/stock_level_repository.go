package postgres

import (
	"context"
	"fmt"

	"github.com/jhoicas/AlmacenPos-api/internal/domain/entity"
	"github.com/jhoicas/AlmacenPos-api/internal/domain/repository"
)

var _ repository.StockLevelRepository = (*StockLevelRepo)(nil)

// StockLevelRepo lectura sobre stock_summary_view (usable con pool o tx).
// La vista agrega las filas de product_serial_numbers por (producto, bodega);
// este adaptador no muta nada.
type StockLevelRepo struct {
	q Querier
}

// NewStockLevelRepository construye el adaptador. Pasar pool o tx (Querier).
func NewStockLevelRepository(q Querier) *StockLevelRepo {
	return &StockLevelRepo{q: q}
}

// GetStockLevels devuelve las filas de la vista con filtro opcional.
func (r *StockLevelRepo) GetStockLevels(ctx context.Context, f repository.StockLevelFilter) ([]entity.StockLevel, error) {
	query := `
		SELECT product_id, product_code, product_name, warehouse_id, warehouse_name,
		       total_qty, available_qty, sold_qty, transferred_qty, claimed_qty,
		       damaged_qty, reserved_qty, average_cost, available_value, updated_at
		FROM stock_summary_view WHERE 1=1`
	args := []any{}
	n := 0
	if f.ProductID != "" {
		n++
		query += fmt.Sprintf(" AND product_id = $%d", n)
		args = append(args, f.ProductID)
	}
	if f.WarehouseID != "" {
		n++
		query += fmt.Sprintf(" AND warehouse_id = $%d", n)
		args = append(args, f.WarehouseID)
	}
	query += " ORDER BY product_code, warehouse_id"

	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query stock levels: %w", err)
	}
	defer rows.Close()

	var out []entity.StockLevel
	for rows.Next() {
		var l entity.StockLevel
		err := rows.Scan(
			&l.ProductID, &l.ProductCode, &l.ProductName, &l.WarehouseID, &l.WarehouseName,
			&l.TotalQty, &l.AvailableQty, &l.SoldQty, &l.TransferredQty, &l.ClaimedQty,
			&l.DamagedQty, &l.ReservedQty, &l.AverageCost, &l.AvailableValue, &l.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan stock level: %w", err)
		}
		out = append(out, l)
	}
	return out, rows.Err()
}
