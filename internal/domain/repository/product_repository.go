package repository

import (
	"context"

	"github.com/jhoicas/AlmacenPos-api/internal/domain/entity"
)

// ProductRepository define el puerto de persistencia de productos.
// Las lecturas devuelven (nil, nil) cuando el recurso no existe.
type ProductRepository interface {
	GetByID(ctx context.Context, id string) (*entity.Product, error)
	GetByCode(ctx context.Context, code string) (*entity.Product, error)
	List(ctx context.Context, limit, offset int) ([]*entity.Product, error)
	// ListActive devuelve los productos activos, opcionalmente filtrados.
	// productID y warehouseID vacíos = todos (warehouseID filtra por existencia de stock).
	ListActive(ctx context.Context, productID string) ([]*entity.Product, error)
	Create(ctx context.Context, p *entity.Product) error
	Update(ctx context.Context, p *entity.Product) error
}

// WarehouseRepository define el puerto de persistencia de bodegas.
type WarehouseRepository interface {
	GetByID(ctx context.Context, id string) (*entity.Warehouse, error)
	List(ctx context.Context) ([]*entity.Warehouse, error)
	Create(ctx context.Context, w *entity.Warehouse) error
	Update(ctx context.Context, w *entity.Warehouse) error
}
