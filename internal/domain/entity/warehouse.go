package entity

import "time"

// Warehouse representa una bodega o sucursal donde se almacena inventario.
type Warehouse struct {
	ID        string
	Name      string
	Address   string
	IsActive  bool
	CreatedAt time.Time
	UpdatedAt time.Time
}
