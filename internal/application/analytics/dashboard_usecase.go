// Package analytics contiene el resumen del dashboard de inventario.
package analytics

import (
	"context"
	"fmt"
	"time"

	"github.com/jhoicas/stock-ledger-api/internal/application/dto"
	appinventory "github.com/jhoicas/stock-ledger-api/internal/application/inventory"
	"github.com/jhoicas/stock-ledger-api/internal/domain/inventory"
	"github.com/jhoicas/stock-ledger-api/internal/domain/repository"
)

const (
	dashboardLowStockTop = 5                   // productos en el widget de stock bajo
	dashboardWindow      = 30 * 24 * time.Hour // ventana de la serie de movimientos
)

// DashboardUseCase genera el resumen del dashboard.
//
// Fuentes: ReportRepository (consultas read-only) y la fachada de stock para los niveles.
// No calcula saldos desde el ledger.
type DashboardUseCase struct {
	reportRepo repository.ReportRepository
	query      *appinventory.StockQueryUseCase
	now        func() time.Time
}

// NewDashboardUseCase construye el caso de uso.
func NewDashboardUseCase(reportRepo repository.ReportRepository, query *appinventory.StockQueryUseCase) *DashboardUseCase {
	return &DashboardUseCase{reportRepo: reportRepo, query: query, now: time.Now}
}

// WithClock reemplaza el reloj (tests).
func (uc *DashboardUseCase) WithClock(now func() time.Time) *DashboardUseCase {
	uc.now = now
	return uc
}

// GetSummary construye el DashboardSummaryDTO del tenant.
//
// Cuatro consultas en paralelo:
//  1. Counters          → totales de catálogo y movimientos
//  2. LowStockProducts  → productos en low/critical
//  3. StockByWarehouse  → serie por bodega
//  4. MovementsByType   → serie por tipo (últimos 30 días)
func (uc *DashboardUseCase) GetSummary(ctx context.Context, tenantID string) (*dto.DashboardSummaryDTO, error) {
	now := uc.now()
	since := now.Add(-dashboardWindow)

	type countersResult struct {
		c   *repository.Counters
		err error
	}
	type lowResult struct {
		items []appinventory.ProductStockStatus
		err   error
	}
	type warehousesResult struct {
		rows []repository.WarehouseStockRow
		err  error
	}
	type typesResult struct {
		rows []repository.MovementTypeCount
		err  error
	}

	countersCh := make(chan countersResult, 1)
	lowCh := make(chan lowResult, 1)
	whCh := make(chan warehousesResult, 1)
	typesCh := make(chan typesResult, 1)

	go func() {
		c, err := uc.reportRepo.Counters(ctx, tenantID)
		countersCh <- countersResult{c, err}
	}()
	go func() {
		items, err := uc.query.LowStockProducts(ctx, tenantID)
		lowCh <- lowResult{items, err}
	}()
	go func() {
		rows, err := uc.reportRepo.StockByWarehouse(ctx, tenantID)
		whCh <- warehousesResult{rows, err}
	}()
	go func() {
		rows, err := uc.reportRepo.MovementsByType(ctx, tenantID, since)
		typesCh <- typesResult{rows, err}
	}()

	counters := <-countersCh
	low := <-lowCh
	wh := <-whCh
	types := <-typesCh

	if counters.err != nil {
		return nil, fmt.Errorf("dashboard: contadores: %w", counters.err)
	}
	if low.err != nil {
		return nil, fmt.Errorf("dashboard: stock bajo: %w", low.err)
	}
	if wh.err != nil {
		return nil, fmt.Errorf("dashboard: stock por bodega: %w", wh.err)
	}
	if types.err != nil {
		return nil, fmt.Errorf("dashboard: movimientos por tipo: %w", types.err)
	}

	out := &dto.DashboardSummaryDTO{
		TotalProducts:    counters.c.Products,
		TotalWarehouses:  counters.c.Warehouses,
		TotalCategories:  counters.c.Categories,
		TotalMovements:   counters.c.Movements,
		LowStockCount:    len(low.items),
		StockByWarehouse: make([]dto.WarehouseStockDTO, 0, len(wh.rows)),
		MovementsByType:  make([]dto.MovementTypeStatDTO, 0, len(types.rows)),
		DateLabel:        monthLabel(now),
	}
	for _, it := range low.items {
		if it.Level == inventory.StockLevelCritical {
			out.CriticalCount++
		}
	}
	top := low.items
	if len(top) > dashboardLowStockTop {
		top = top[:dashboardLowStockTop]
	}
	out.LowStock = appinventory.ToStockStatusDTO(top)

	for _, r := range wh.rows {
		out.StockByWarehouse = append(out.StockByWarehouse, dto.WarehouseStockDTO{
			WarehouseID:   r.WarehouseID,
			WarehouseName: r.WarehouseName,
			Quantity:      r.Quantity,
			Products:      r.Products,
		})
	}
	for _, r := range types.rows {
		out.MovementsByType = append(out.MovementsByType, dto.MovementTypeStatDTO{
			MovementType: string(r.Type),
			Count:        r.Count,
			Quantity:     r.Quantity,
		})
	}
	return out, nil
}

// monthLabel devuelve una etiqueta legible del mes, ej: "Febrero 2026".
func monthLabel(t time.Time) string {
	months := [...]string{
		"Enero", "Febrero", "Marzo", "Abril", "Mayo", "Junio",
		"Julio", "Agosto", "Septiembre", "Octubre", "Noviembre", "Diciembre",
	}
	return fmt.Sprintf("%s %d", months[t.Month()-1], t.Year())
}
