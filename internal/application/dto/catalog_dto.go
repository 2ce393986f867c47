package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// CreateProductRequest body para POST /api/products.
type CreateProductRequest struct {
	Code                string          `json:"code"`
	Name                string          `json:"name"`
	Description         string          `json:"description,omitempty"`
	Price               decimal.Decimal `json:"price"`
	ReorderPoint        int             `json:"reorder_point,omitempty"`
	ReorderQuantity     int             `json:"reorder_quantity,omitempty"`
	PreferredSupplierID string          `json:"preferred_supplier_id,omitempty"`
	UnitMeasure         string          `json:"unit_measure,omitempty"`
}

// UpdateProductRequest body para PUT /api/products/:id. Campos nil no se tocan.
type UpdateProductRequest struct {
	Name                *string          `json:"name,omitempty"`
	Description         *string          `json:"description,omitempty"`
	Price               *decimal.Decimal `json:"price,omitempty"`
	ReorderPoint        *int             `json:"reorder_point,omitempty"`
	ReorderQuantity     *int             `json:"reorder_quantity,omitempty"`
	PreferredSupplierID *string          `json:"preferred_supplier_id,omitempty"`
	IsActive            *bool            `json:"is_active,omitempty"`
}

// ProductResponse producto para la API. Cost se deriva de las recepciones.
type ProductResponse struct {
	ID                  string          `json:"id"`
	Code                string          `json:"code"`
	Name                string          `json:"name"`
	Description         string          `json:"description,omitempty"`
	Price               decimal.Decimal `json:"price"`
	Cost                decimal.Decimal `json:"cost"`
	ReorderPoint        int             `json:"reorder_point"`
	ReorderQuantity     int             `json:"reorder_quantity"`
	PreferredSupplierID string          `json:"preferred_supplier_id,omitempty"`
	UnitMeasure         string          `json:"unit_measure,omitempty"`
	IsActive            bool            `json:"is_active"`
	CreatedAt           time.Time       `json:"created_at"`
	UpdatedAt           time.Time       `json:"updated_at"`
}

// CreateWarehouseRequest body para POST /api/warehouses.
type CreateWarehouseRequest struct {
	Name    string `json:"name"`
	Address string `json:"address,omitempty"`
}

// WarehouseResponse bodega para la API.
type WarehouseResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Address   string    `json:"address,omitempty"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
}

// CreateSupplierRequest body para POST /api/suppliers.
type CreateSupplierRequest struct {
	Code          string `json:"code"`
	Name          string `json:"name"`
	ContactPerson string `json:"contact_person,omitempty"`
	Phone         string `json:"phone,omitempty"`
	Email         string `json:"email,omitempty"`
	Address       string `json:"address,omitempty"`
	TaxID         string `json:"tax_id,omitempty"`
}

// SupplierResponse proveedor para la API.
type SupplierResponse struct {
	ID            string    `json:"id"`
	Code          string    `json:"code"`
	Name          string    `json:"name"`
	ContactPerson string    `json:"contact_person,omitempty"`
	Phone         string    `json:"phone,omitempty"`
	Email         string    `json:"email,omitempty"`
	Address       string    `json:"address,omitempty"`
	TaxID         string    `json:"tax_id,omitempty"`
	IsActive      bool      `json:"is_active"`
	CreatedAt     time.Time `json:"created_at"`
}
