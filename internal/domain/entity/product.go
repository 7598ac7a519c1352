package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Unidad por defecto de los productos.
const DefaultUnit = "unidad"

// Product representa un producto del inventario (multi-bodega).
// El stock total nunca se guarda aquí: se deriva siempre de las filas de Stock.
type Product struct {
	ID            string
	TenantID      string
	CategoryID    string // vacío si no tiene categoría
	SKU           string
	Barcode       string
	Name          string
	Description   string
	Unit          string
	MinStockLevel decimal.Decimal
	IsActive      bool
	CreatedAt     time.Time
	UpdatedAt     time.Time
}
