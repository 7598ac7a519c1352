package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/stock-ledger-api/internal/domain/entity"
	"github.com/jhoicas/stock-ledger-api/internal/domain/repository"
)

var _ repository.ReportRepository = (*ReportRepo)(nil)

// ReportRepo consultas de solo lectura para reportes y dashboard.
// Los totales salen de la tabla stock (saldos materializados), nunca de sumar el ledger.
type ReportRepo struct {
	q Querier
}

// NewReportRepository construye el adaptador de reportes.
func NewReportRepository(q Querier) *ReportRepo {
	return &ReportRepo{q: q}
}

// ProductStock stock total por producto activo, con categoría.
func (r *ReportRepo) ProductStock(ctx context.Context, tenantID string) ([]repository.ProductStockRow, error) {
	const query = `
	SELECT
	    p.id                           AS product_id,
	    p.sku                          AS sku,
	    p.name                         AS product_name,
	    COALESCE(c.name, '')           AS category_name,
	    p.unit                         AS unit,
	    p.min_stock_level              AS min_stock_level,
	    COALESCE(SUM(s.quantity), 0)   AS total_stock
	FROM products p
	LEFT JOIN categories c ON c.id = p.category_id
	LEFT JOIN stock      s ON s.tenant_id = p.tenant_id AND s.product_id = p.id
	WHERE p.tenant_id = $1
	  AND p.is_active
	GROUP BY p.id, p.sku, p.name, c.name, p.unit, p.min_stock_level
	ORDER BY p.name`

	var rows []struct {
		ProductID     string          `db:"product_id"`
		SKU           string          `db:"sku"`
		ProductName   string          `db:"product_name"`
		CategoryName  string          `db:"category_name"`
		Unit          string          `db:"unit"`
		MinStockLevel decimal.Decimal `db:"min_stock_level"`
		TotalStock    decimal.Decimal `db:"total_stock"`
	}
	if err := pgxscan.Select(ctx, r.q, &rows, query, tenantID); err != nil {
		return nil, classify("report.ProductStock", err)
	}
	out := make([]repository.ProductStockRow, 0, len(rows))
	for _, row := range rows {
		out = append(out, repository.ProductStockRow{
			ProductID:     row.ProductID,
			SKU:           row.SKU,
			ProductName:   row.ProductName,
			CategoryName:  row.CategoryName,
			Unit:          row.Unit,
			MinStockLevel: row.MinStockLevel,
			TotalStock:    row.TotalStock,
		})
	}
	return out, nil
}

// RecentMovements últimos movimientos del tenant con nombres de producto y bodega.
func (r *ReportRepo) RecentMovements(ctx context.Context, tenantID string, limit int) ([]repository.MovementRow, error) {
	const query = `
	SELECT
	    m.id, m.tenant_id, m.product_id, m.warehouse_id, m.movement_type, m.quantity,
	    m.reference_no, m.notes, m.idempotency_key, m.fingerprint,
	    m.balance_before, m.balance_after, m.clamped, m.created_by, m.created_at,
	    COALESCE(p.name, '') AS product_name,
	    COALESCE(w.name, '') AS warehouse_name
	FROM stock_movements m
	LEFT JOIN products   p ON p.id = m.product_id
	LEFT JOIN warehouses w ON w.id = m.warehouse_id
	WHERE m.tenant_id = $1
	ORDER BY m.created_at DESC, m.id DESC
	LIMIT $2`

	var rows []struct {
		movementRow
		ProductName   string `db:"product_name"`
		WarehouseName string `db:"warehouse_name"`
	}
	if err := pgxscan.Select(ctx, r.q, &rows, query, tenantID, limit); err != nil {
		return nil, classify("report.RecentMovements", err)
	}
	out := make([]repository.MovementRow, 0, len(rows))
	for _, row := range rows {
		out = append(out, repository.MovementRow{
			Movement:      row.movementRow.toEntity(),
			ProductName:   row.ProductName,
			WarehouseName: row.WarehouseName,
		})
	}
	return out, nil
}

// StockByWarehouse stock total por bodega activa; products cuenta saldos positivos.
func (r *ReportRepo) StockByWarehouse(ctx context.Context, tenantID string) ([]repository.WarehouseStockRow, error) {
	const query = `
	SELECT
	    w.id,
	    w.name,
	    COALESCE(SUM(s.quantity), 0)                 AS quantity,
	    COUNT(s.product_id) FILTER (WHERE s.quantity > 0) AS products
	FROM warehouses w
	LEFT JOIN stock s ON s.tenant_id = w.tenant_id AND s.warehouse_id = w.id
	WHERE w.tenant_id = $1
	  AND w.is_active
	GROUP BY w.id, w.name
	ORDER BY w.name`

	rows, err := r.q.Query(ctx, query, tenantID)
	if err != nil {
		return nil, classify("report.StockByWarehouse", err)
	}
	defer rows.Close()

	var results []repository.WarehouseStockRow
	for rows.Next() {
		var row repository.WarehouseStockRow
		if err := rows.Scan(&row.WarehouseID, &row.WarehouseName, &row.Quantity, &row.Products); err != nil {
			return nil, fmt.Errorf("report.StockByWarehouse scan: %w", err)
		}
		results = append(results, row)
	}
	if err := rows.Err(); err != nil {
		return nil, classify("report.StockByWarehouse", err)
	}
	return results, nil
}

// MovementsByType cantidad de movimientos y unidades por tipo desde since.
func (r *ReportRepo) MovementsByType(ctx context.Context, tenantID string, since time.Time) ([]repository.MovementTypeCount, error) {
	const query = `
	SELECT movement_type, COUNT(*), COALESCE(SUM(quantity), 0)
	FROM stock_movements
	WHERE tenant_id = $1 AND created_at >= $2
	GROUP BY movement_type
	ORDER BY movement_type`

	rows, err := r.q.Query(ctx, query, tenantID, since)
	if err != nil {
		return nil, classify("report.MovementsByType", err)
	}
	defer rows.Close()

	var results []repository.MovementTypeCount
	for rows.Next() {
		var (
			row repository.MovementTypeCount
			t   string
		)
		if err := rows.Scan(&t, &row.Count, &row.Quantity); err != nil {
			return nil, fmt.Errorf("report.MovementsByType scan: %w", err)
		}
		row.Type = entity.MovementType(t)
		results = append(results, row)
	}
	if err := rows.Err(); err != nil {
		return nil, classify("report.MovementsByType", err)
	}
	return results, nil
}

// Counters totales del dashboard en una sola consulta.
func (r *ReportRepo) Counters(ctx context.Context, tenantID string) (*repository.Counters, error) {
	const query = `
	SELECT
	    (SELECT COUNT(*) FROM products        WHERE tenant_id = $1 AND is_active),
	    (SELECT COUNT(*) FROM warehouses      WHERE tenant_id = $1 AND is_active),
	    (SELECT COUNT(*) FROM categories      WHERE tenant_id = $1),
	    (SELECT COUNT(*) FROM stock_movements WHERE tenant_id = $1)`

	var c repository.Counters
	if err := r.q.QueryRow(ctx, query, tenantID).Scan(&c.Products, &c.Warehouses, &c.Categories, &c.Movements); err != nil {
		return nil, classify("report.Counters", err)
	}
	return &c, nil
}
