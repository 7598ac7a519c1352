package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// StockReportResponse respuesta de GET /api/reports/stock.
type StockReportResponse struct {
	GeneratedAt time.Time        `json:"generated_at"`
	Products    int              `json:"products"`
	Low         int              `json:"low"`
	Critical    int              `json:"critical"`
	Items       []StockStatusDTO `json:"items"`
}

// MovementReportItem movimiento con nombres para GET /api/reports/movements.
type MovementReportItem struct {
	MovementResponse
	ProductName   string `json:"product_name"`
	WarehouseName string `json:"warehouse_name"`
}

// MovementReportResponse últimos movimientos.
type MovementReportResponse struct {
	Items []MovementReportItem `json:"items"`
}

// LowStockReportResponse respuesta de GET /api/reports/low-stock, ordenada por faltante.
type LowStockReportResponse struct {
	Items         []StockStatusDTO `json:"items"`
	TotalShortage decimal.Decimal  `json:"total_shortage"`
}
