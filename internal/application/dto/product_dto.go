package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// CreateProductRequest entrada para crear un producto.
// Si InitialQuantity > 0 se registra un movimiento de entrada en WarehouseID.
type CreateProductRequest struct {
	SKU             string           `json:"sku" validate:"max=100"`
	Barcode         string           `json:"barcode" validate:"max=100"`
	Name            string           `json:"name" validate:"required,min=1,max=200"`
	Description     string           `json:"description"`
	CategoryID      string           `json:"category_id" validate:"omitempty,uuid"`
	Unit            string           `json:"unit" validate:"max=20"`
	MinStockLevel   decimal.Decimal  `json:"min_stock_level" validate:"gte=0"`
	InitialQuantity *decimal.Decimal `json:"initial_quantity,omitempty"`
	WarehouseID     string           `json:"warehouse_id,omitempty" validate:"required_with=InitialQuantity,omitempty,uuid"`
}

// UpdateProductRequest entrada para actualizar un producto.
// StockQuantity aplica un movimiento (MovementType, por defecto adjustment) en WarehouseID;
// IdempotencyKey evita aplicarlo dos veces si el cliente reintenta.
type UpdateProductRequest struct {
	SKU            *string          `json:"sku" validate:"omitempty,max=100"`
	Barcode        *string          `json:"barcode" validate:"omitempty,max=100"`
	Name           *string          `json:"name" validate:"omitempty,min=1,max=200"`
	Description    *string          `json:"description"`
	CategoryID     *string          `json:"category_id" validate:"omitempty,uuid"`
	Unit           *string          `json:"unit" validate:"omitempty,max=20"`
	MinStockLevel  *decimal.Decimal `json:"min_stock_level" validate:"omitempty,gte=0"`
	IsActive       *bool            `json:"is_active"`
	StockQuantity  *decimal.Decimal `json:"stock_quantity,omitempty"`
	WarehouseID    string           `json:"warehouse_id,omitempty" validate:"required_with=StockQuantity,omitempty,uuid"`
	MovementType   string           `json:"movement_type,omitempty" validate:"omitempty,oneof=in out adjustment"`
	IdempotencyKey string           `json:"idempotency_key,omitempty" validate:"required_with=StockQuantity,max=128"`
}

// ProductResponse salida de un producto. TotalStock se calcula desde los saldos.
type ProductResponse struct {
	ID            string                `json:"id"`
	TenantID      string                `json:"tenant_id"`
	CategoryID    string                `json:"category_id,omitempty"`
	SKU           string                `json:"sku,omitempty"`
	Barcode       string                `json:"barcode,omitempty"`
	Name          string                `json:"name"`
	Description   string                `json:"description,omitempty"`
	Unit          string                `json:"unit"`
	MinStockLevel decimal.Decimal       `json:"min_stock_level"`
	IsActive      bool                  `json:"is_active"`
	TotalStock    *decimal.Decimal      `json:"total_stock,omitempty"`
	StockLevel    string                `json:"stock_level,omitempty"`
	Warehouses    []WarehouseBalanceDTO `json:"warehouses,omitempty"`
	Movement      *MovementResponse     `json:"movement,omitempty"`
	StockWarning  string                `json:"stock_warning,omitempty"` // movimiento no registrado; producto creado
	CreatedAt     time.Time             `json:"created_at"`
	UpdatedAt     time.Time             `json:"updated_at"`
}

// ProductListResponse lista paginada de productos.
type ProductListResponse struct {
	Items []ProductResponse `json:"items"`
	Page  PageResponse      `json:"page"`
}
