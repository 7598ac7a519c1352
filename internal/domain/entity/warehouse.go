package entity

import "time"

// Warehouse representa una bodega o sucursal donde se almacena inventario.
// Latitude/Longitude son atributos opcionales de ubicación.
type Warehouse struct {
	ID        string
	TenantID  string
	Name      string
	Address   string
	Latitude  *float64
	Longitude *float64
	IsActive  bool
	CreatedAt time.Time
	UpdatedAt time.Time
}
