package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// RecordMovementRequest body para POST /api/inventory/movements.
// quantity es el destino absoluto cuando movement_type es adjustment.
type RecordMovementRequest struct {
	ProductID      string          `json:"product_id" validate:"required,uuid"`
	WarehouseID    string          `json:"warehouse_id" validate:"required,uuid"`
	MovementType   string          `json:"movement_type" validate:"required,oneof=in out adjustment"`
	Quantity       decimal.Decimal `json:"quantity" validate:"gte=0"`
	ReferenceNo    string          `json:"reference_no,omitempty" validate:"max=100"`
	Notes          string          `json:"notes,omitempty" validate:"max=1000"`
	IdempotencyKey string          `json:"idempotency_key" validate:"required,max=128"`
}

// MovementResponse movimiento del ledger.
type MovementResponse struct {
	ID             string          `json:"id"`
	ProductID      string          `json:"product_id"`
	WarehouseID    string          `json:"warehouse_id"`
	MovementType   string          `json:"movement_type"`
	Quantity       decimal.Decimal `json:"quantity"`
	ReferenceNo    string          `json:"reference_no,omitempty"`
	Notes          string          `json:"notes,omitempty"`
	IdempotencyKey string          `json:"idempotency_key"`
	BalanceBefore  decimal.Decimal `json:"balance_before"`
	BalanceAfter   decimal.Decimal `json:"balance_after"`
	Clamped        bool            `json:"clamped"`
	CreatedBy      string          `json:"created_by,omitempty"`
	CreatedAt      time.Time       `json:"created_at"`
}

// BalanceResponse saldo de un producto en una bodega.
type BalanceResponse struct {
	ProductID   string          `json:"product_id"`
	WarehouseID string          `json:"warehouse_id"`
	Quantity    decimal.Decimal `json:"quantity"`
	LastUpdated *time.Time      `json:"last_updated,omitempty"`
}

// MovementResultResponse respuesta de POST /api/inventory/movements.
type MovementResultResponse struct {
	Movement MovementResponse `json:"movement"`
	Balance  BalanceResponse  `json:"balance"`
	Replayed bool             `json:"replayed"`
}

// MovementListResponse historial paginado de movimientos.
type MovementListResponse struct {
	Items []MovementResponse `json:"items"`
	Page  PageResponse       `json:"page"`
}

// WarehouseBalanceDTO una fila del desglose por bodega.
type WarehouseBalanceDTO struct {
	WarehouseID   string          `json:"warehouse_id"`
	WarehouseName string          `json:"warehouse_name"`
	Quantity      decimal.Decimal `json:"quantity"`
}

// TotalStockResponse respuesta de GET /api/inventory/total-stock.
type TotalStockResponse struct {
	ProductID     string                `json:"product_id"`
	TotalStock    decimal.Decimal       `json:"total_stock"`
	MinStockLevel decimal.Decimal       `json:"min_stock_level"`
	Level         string                `json:"level"` // normal|low|critical
	IsLowStock    bool                  `json:"is_low_stock"`
	IsCritical    bool                  `json:"is_critical"`
	Warehouses    []WarehouseBalanceDTO `json:"warehouses"`
}

// BreakdownResponse respuesta de GET /api/inventory/breakdown.
type BreakdownResponse struct {
	ProductID  string                `json:"product_id"`
	Warehouses []WarehouseBalanceDTO `json:"warehouses"`
}

// RecomputeResponse respuesta de POST /api/inventory/recompute.
type RecomputeResponse struct {
	Balance   BalanceResponse `json:"balance"`
	Previous  decimal.Decimal `json:"previous"`
	Computed  decimal.Decimal `json:"computed"`
	Diverged  bool            `json:"diverged"`
	Repaired  bool            `json:"repaired"`
	Movements int             `json:"movements"`
}

// DivergenceDTO saldo que no coincide con su ledger.
type DivergenceDTO struct {
	ProductID   string          `json:"product_id"`
	WarehouseID string          `json:"warehouse_id"`
	Stored      decimal.Decimal `json:"stored"`
	Computed    decimal.Decimal `json:"computed"`
}

// ReconcileResponse respuesta de POST /api/inventory/reconcile.
type ReconcileResponse struct {
	DryRun    bool            `json:"dry_run"`
	Checked   int             `json:"checked"`
	Repaired  int             `json:"repaired"`
	Divergent []DivergenceDTO `json:"divergent"`
}

// StockStatusDTO fila del reporte de stock.
type StockStatusDTO struct {
	ProductID     string          `json:"product_id"`
	SKU           string          `json:"sku,omitempty"`
	ProductName   string          `json:"product_name"`
	CategoryName  string          `json:"category_name,omitempty"`
	Unit          string          `json:"unit"`
	MinStockLevel decimal.Decimal `json:"min_stock_level"`
	TotalStock    decimal.Decimal `json:"total_stock"`
	Level         string          `json:"level"`
	Shortage      decimal.Decimal `json:"shortage"`
}
