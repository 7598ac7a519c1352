package dto

import "github.com/shopspring/decimal"

// DashboardSummaryDTO respuesta de GET /api/dashboard/summary.
// Contadores del tenant, productos con stock bajo y series para gráficas.
type DashboardSummaryDTO struct {
	TotalProducts   int `json:"total_products"`
	TotalWarehouses int `json:"total_warehouses"`
	TotalCategories int `json:"total_categories"`
	TotalMovements  int `json:"total_movements"`
	LowStockCount   int `json:"low_stock_count"`
	CriticalCount   int `json:"critical_count"`

	// Top 5 por faltante
	LowStock []StockStatusDTO `json:"low_stock"`

	StockByWarehouse []WarehouseStockDTO   `json:"stock_by_warehouse"`
	MovementsByType  []MovementTypeStatDTO `json:"movements_by_type"` // últimos 30 días

	DateLabel string `json:"date_label"` // ej: "Febrero 2026"
}

// WarehouseStockDTO stock total por bodega.
type WarehouseStockDTO struct {
	WarehouseID   string          `json:"warehouse_id"`
	WarehouseName string          `json:"warehouse_name"`
	Quantity      decimal.Decimal `json:"quantity"`
	Products      int             `json:"products"`
}

// MovementTypeStatDTO movimientos por tipo.
type MovementTypeStatDTO struct {
	MovementType string          `json:"movement_type"`
	Count        int             `json:"count"`
	Quantity     decimal.Decimal `json:"quantity"`
}
