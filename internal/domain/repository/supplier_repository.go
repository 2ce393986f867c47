package repository

import (
	"context"

	"github.com/jhoicas/AlmacenPos-api/internal/domain/entity"
)

// SupplierRepository define el puerto de proveedores y sus mappings por producto.
// Los mappings solo se leen: el scoring nunca los muta.
type SupplierRepository interface {
	GetByID(ctx context.Context, id string) (*entity.Supplier, error)
	List(ctx context.Context, limit, offset int) ([]*entity.Supplier, error)
	Create(ctx context.Context, s *entity.Supplier) error
	// GetActiveMappingsByProduct devuelve los mappings activos de un producto,
	// ordenados por priority ascendente.
	GetActiveMappingsByProduct(ctx context.Context, productID string) ([]entity.SupplierProductMapping, error)
	// GetMapping devuelve el mapping proveedor-producto, o (nil, nil) si no existe.
	GetMapping(ctx context.Context, supplierID, productID string) (*entity.SupplierProductMapping, error)
}
