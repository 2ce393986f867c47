package repository

import (
	"context"

	"github.com/jhoicas/AlmacenPos-api/internal/domain/entity"
)

// StockLevelFilter filtra las filas de la vista de stock.
type StockLevelFilter struct {
	ProductID   string
	WarehouseID string
}

// StockLevelRepository define el puerto de lectura sobre stock_summary_view.
// La vista es precalculada; este puerto no muta nada.
type StockLevelRepository interface {
	GetStockLevels(ctx context.Context, f StockLevelFilter) ([]entity.StockLevel, error)
}
