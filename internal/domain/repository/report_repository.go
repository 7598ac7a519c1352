package repository

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/stock-ledger-api/internal/domain/entity"
)

// ProductStockRow stock total de un producto (suma de sus filas de Stock) con datos de catálogo.
type ProductStockRow struct {
	ProductID     string
	SKU           string
	ProductName   string
	CategoryName  string
	Unit          string
	MinStockLevel decimal.Decimal
	TotalStock    decimal.Decimal
}

// MovementRow movimiento con nombres resueltos para reportes.
type MovementRow struct {
	Movement      *entity.StockMovement
	ProductName   string
	WarehouseName string
}

// WarehouseStockRow stock agregado por bodega.
type WarehouseStockRow struct {
	WarehouseID   string
	WarehouseName string
	Quantity      decimal.Decimal
	Products      int
}

// MovementTypeCount número de movimientos y cantidad acumulada por tipo.
type MovementTypeCount struct {
	Type     entity.MovementType
	Count    int
	Quantity decimal.Decimal
}

// Counters contadores del dashboard.
type Counters struct {
	Products   int
	Warehouses int
	Categories int
	Movements  int
}

// ReportRepository consultas read-only para reportes y dashboard.
// Lee el Balance Store y el catálogo; el ledger solo para historial y conteos.
type ReportRepository interface {
	ProductStock(ctx context.Context, tenantID string) ([]ProductStockRow, error)
	RecentMovements(ctx context.Context, tenantID string, limit int) ([]MovementRow, error)
	StockByWarehouse(ctx context.Context, tenantID string) ([]WarehouseStockRow, error)
	MovementsByType(ctx context.Context, tenantID string, since time.Time) ([]MovementTypeCount, error)
	Counters(ctx context.Context, tenantID string) (*Counters, error)
}
