package memory

import (
	"context"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/stock-ledger-api/internal/domain/entity"
	"github.com/jhoicas/stock-ledger-api/internal/domain/repository"
)

type reportRepo struct{ s *Store }

func (r *reportRepo) ProductStock(_ context.Context, tenantID string) ([]repository.ProductStockRow, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	totals := make(map[string]decimal.Decimal)
	for k, st := range r.s.stock {
		if k.TenantID == tenantID {
			totals[k.ProductID] = totals[k.ProductID].Add(st.Quantity)
		}
	}
	var out []repository.ProductStockRow
	for _, p := range r.s.products {
		if p.TenantID != tenantID || !p.IsActive {
			continue
		}
		row := repository.ProductStockRow{
			ProductID:     p.ID,
			SKU:           p.SKU,
			ProductName:   p.Name,
			Unit:          p.Unit,
			MinStockLevel: p.MinStockLevel,
			TotalStock:    totals[p.ID],
		}
		if c, ok := r.s.categories[p.CategoryID]; ok {
			row.CategoryName = c.Name
		}
		out = append(out, row)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ProductName < out[j].ProductName })
	return out, nil
}

func (r *reportRepo) RecentMovements(_ context.Context, tenantID string, limit int) ([]repository.MovementRow, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var movs []*entity.StockMovement
	for _, m := range r.s.movements {
		if m.TenantID == tenantID {
			cp := *m
			movs = append(movs, &cp)
		}
	}
	sortNewestFirst(movs)
	movs = paginate(movs, limit, 0)
	out := make([]repository.MovementRow, 0, len(movs))
	for _, m := range movs {
		row := repository.MovementRow{Movement: m}
		if p, ok := r.s.products[m.ProductID]; ok {
			row.ProductName = p.Name
		}
		if w, ok := r.s.warehouses[m.WarehouseID]; ok {
			row.WarehouseName = w.Name
		}
		out = append(out, row)
	}
	return out, nil
}

// StockByWarehouse bodegas activas con su stock total; Products cuenta los saldos positivos.
func (r *reportRepo) StockByWarehouse(_ context.Context, tenantID string) ([]repository.WarehouseStockRow, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var out []repository.WarehouseStockRow
	for _, w := range r.s.warehouses {
		if w.TenantID != tenantID || !w.IsActive {
			continue
		}
		row := repository.WarehouseStockRow{WarehouseID: w.ID, WarehouseName: w.Name, Quantity: decimal.Zero}
		for k, st := range r.s.stock {
			if k.TenantID == tenantID && k.WarehouseID == w.ID {
				row.Quantity = row.Quantity.Add(st.Quantity)
				if st.Quantity.IsPositive() {
					row.Products++
				}
			}
		}
		out = append(out, row)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].WarehouseName < out[j].WarehouseName })
	return out, nil
}

func (r *reportRepo) MovementsByType(_ context.Context, tenantID string, since time.Time) ([]repository.MovementTypeCount, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	byType := make(map[entity.MovementType]*repository.MovementTypeCount)
	for _, m := range r.s.movements {
		if m.TenantID != tenantID || m.CreatedAt.Before(since) {
			continue
		}
		c, ok := byType[m.Type]
		if !ok {
			c = &repository.MovementTypeCount{Type: m.Type, Quantity: decimal.Zero}
			byType[m.Type] = c
		}
		c.Count++
		c.Quantity = c.Quantity.Add(m.Quantity)
	}
	out := make([]repository.MovementTypeCount, 0, len(byType))
	for _, c := range byType {
		out = append(out, *c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Type < out[j].Type })
	return out, nil
}

func (r *reportRepo) Counters(_ context.Context, tenantID string) (*repository.Counters, error) {
	if err := r.s.injected(OpReportCounters); err != nil {
		return nil, err
	}
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	c := &repository.Counters{}
	for _, p := range r.s.products {
		if p.TenantID == tenantID && p.IsActive {
			c.Products++
		}
	}
	for _, w := range r.s.warehouses {
		if w.TenantID == tenantID && w.IsActive {
			c.Warehouses++
		}
	}
	for _, cat := range r.s.categories {
		if cat.TenantID == tenantID {
			c.Categories++
		}
	}
	for _, m := range r.s.movements {
		if m.TenantID == tenantID {
			c.Movements++
		}
	}
	return c, nil
}
