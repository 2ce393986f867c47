package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/AlmacenPos-api/internal/application/dto"
	"github.com/jhoicas/AlmacenPos-api/internal/domain"
	"github.com/jhoicas/AlmacenPos-api/internal/domain/entity"
	"github.com/jhoicas/AlmacenPos-api/internal/domain/repository"
)

// ProductUseCase casos de uso CRUD para productos. El stock no se edita aquí:
// se deriva de los números de serie (recepciones, ventas, traslados).
type ProductUseCase struct {
	repo repository.ProductRepository
}

// NewProductUseCase construye el caso de uso.
func NewProductUseCase(repo repository.ProductRepository) *ProductUseCase {
	return &ProductUseCase{repo: repo}
}

// Create crea un nuevo producto. Cost inicia en 0 (se calcula en recepciones).
func (uc *ProductUseCase) Create(ctx context.Context, in dto.CreateProductRequest) (*dto.ProductResponse, error) {
	if in.Code == "" || in.Name == "" {
		return nil, domain.ErrInvalidInput
	}
	existing, _ := uc.repo.GetByCode(ctx, in.Code)
	if existing != nil {
		return nil, domain.ErrDuplicate
	}
	if in.UnitMeasure == "" {
		in.UnitMeasure = "unidad"
	}
	now := time.Now()
	product := &entity.Product{
		ID:                  uuid.New().String(),
		Code:                in.Code,
		Name:                in.Name,
		Description:         in.Description,
		Price:               in.Price,
		Cost:                decimal.Zero,
		ReorderPoint:        in.ReorderPoint,
		ReorderQuantity:     in.ReorderQuantity,
		PreferredSupplierID: in.PreferredSupplierID,
		UnitMeasure:         in.UnitMeasure,
		IsActive:            true,
		CreatedAt:           now,
		UpdatedAt:           now,
	}
	if err := uc.repo.Create(ctx, product); err != nil {
		return nil, err
	}
	return toProductResponse(product), nil
}

// GetByID obtiene un producto por ID.
func (uc *ProductUseCase) GetByID(ctx context.Context, id string) (*dto.ProductResponse, error) {
	product, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, nil
	}
	return toProductResponse(product), nil
}

// Update actualiza un producto. Code y Cost no se modifican: el código es
// prefijo de los números de serie ya emitidos.
func (uc *ProductUseCase) Update(ctx context.Context, id string, in dto.UpdateProductRequest) (*dto.ProductResponse, error) {
	product, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, nil
	}
	if in.Name != nil {
		product.Name = *in.Name
	}
	if in.Description != nil {
		product.Description = *in.Description
	}
	if in.Price != nil {
		product.Price = *in.Price
	}
	if in.ReorderPoint != nil {
		product.ReorderPoint = *in.ReorderPoint
	}
	if in.ReorderQuantity != nil {
		product.ReorderQuantity = *in.ReorderQuantity
	}
	if in.PreferredSupplierID != nil {
		product.PreferredSupplierID = *in.PreferredSupplierID
	}
	if in.IsActive != nil {
		product.IsActive = *in.IsActive
	}
	product.UpdatedAt = time.Now()
	if err := uc.repo.Update(ctx, product); err != nil {
		return nil, err
	}
	return toProductResponse(product), nil
}

// List lista productos con paginación.
func (uc *ProductUseCase) List(ctx context.Context, limit, offset int) ([]dto.ProductResponse, error) {
	list, err := uc.repo.List(ctx, limit, offset)
	if err != nil {
		return nil, err
	}
	items := make([]dto.ProductResponse, 0, len(list))
	for _, p := range list {
		items = append(items, *toProductResponse(p))
	}
	return items, nil
}

func toProductResponse(p *entity.Product) *dto.ProductResponse {
	if p == nil {
		return nil
	}
	return &dto.ProductResponse{
		ID:                  p.ID,
		Code:                p.Code,
		Name:                p.Name,
		Description:         p.Description,
		Price:               p.Price,
		Cost:                p.Cost,
		ReorderPoint:        p.ReorderPoint,
		ReorderQuantity:     p.ReorderQuantity,
		PreferredSupplierID: p.PreferredSupplierID,
		UnitMeasure:         p.UnitMeasure,
		IsActive:            p.IsActive,
		CreatedAt:           p.CreatedAt,
		UpdatedAt:           p.UpdatedAt,
	}
}
