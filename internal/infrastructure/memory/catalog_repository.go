package memory

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/jhoicas/stock-ledger-api/internal/domain"
	"github.com/jhoicas/stock-ledger-api/internal/domain/entity"
	"github.com/jhoicas/stock-ledger-api/internal/domain/repository"
)

type productRepo struct{ s *Store }

func (r *productRepo) Create(_ context.Context, p *entity.Product) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.products[p.ID]; ok {
		return fmt.Errorf("crear producto: %w", domain.ErrDuplicate)
	}
	if p.SKU != "" {
		for _, o := range r.s.products {
			if o.TenantID == p.TenantID && o.SKU == p.SKU {
				return fmt.Errorf("crear producto: %w: sku %s", domain.ErrDuplicate, p.SKU)
			}
		}
	}
	cp := *p
	r.s.products[p.ID] = &cp
	return nil
}

func (r *productRepo) GetByID(_ context.Context, tenantID, id string) (*entity.Product, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	p, ok := r.s.products[id]
	if !ok || p.TenantID != tenantID {
		return nil, nil
	}
	cp := *p
	return &cp, nil
}

func (r *productRepo) GetBySKU(_ context.Context, tenantID, sku string) (*entity.Product, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	for _, p := range r.s.products {
		if p.TenantID == tenantID && p.SKU == sku {
			cp := *p
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *productRepo) Update(_ context.Context, p *entity.Product) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	cur, ok := r.s.products[p.ID]
	if !ok || cur.TenantID != p.TenantID {
		return fmt.Errorf("actualizar producto %s: %w", p.ID, domain.ErrNotFound)
	}
	cp := *p
	r.s.products[p.ID] = &cp
	return nil
}

func (r *productRepo) List(_ context.Context, f repository.ProductFilter) ([]*entity.Product, error) {
	r.s.mu.RLock()
	var out []*entity.Product
	search := strings.ToLower(strings.TrimSpace(f.Search))
	for _, p := range r.s.products {
		if p.TenantID != f.TenantID {
			continue
		}
		if f.ActiveOnly && !p.IsActive {
			continue
		}
		if f.CategoryID != "" && p.CategoryID != f.CategoryID {
			continue
		}
		if search != "" &&
			!strings.Contains(strings.ToLower(p.Name), search) &&
			!strings.Contains(strings.ToLower(p.SKU), search) &&
			!strings.Contains(strings.ToLower(p.Barcode), search) {
			continue
		}
		cp := *p
		out = append(out, &cp)
	}
	r.s.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return paginate(out, f.Limit, f.Offset), nil
}

func (r *productRepo) Deactivate(_ context.Context, tenantID, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p, ok := r.s.products[id]
	if !ok || p.TenantID != tenantID {
		return fmt.Errorf("desactivar producto %s: %w", id, domain.ErrNotFound)
	}
	p.IsActive = false
	return nil
}

type warehouseRepo struct{ s *Store }

func (r *warehouseRepo) Create(_ context.Context, w *entity.Warehouse) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.warehouses[w.ID]; ok {
		return fmt.Errorf("crear bodega: %w", domain.ErrDuplicate)
	}
	cp := *w
	r.s.warehouses[w.ID] = &cp
	return nil
}

func (r *warehouseRepo) GetByID(_ context.Context, tenantID, id string) (*entity.Warehouse, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	w, ok := r.s.warehouses[id]
	if !ok || w.TenantID != tenantID {
		return nil, nil
	}
	cp := *w
	return &cp, nil
}

func (r *warehouseRepo) Update(_ context.Context, w *entity.Warehouse) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	cur, ok := r.s.warehouses[w.ID]
	if !ok || cur.TenantID != w.TenantID {
		return fmt.Errorf("actualizar bodega %s: %w", w.ID, domain.ErrNotFound)
	}
	cp := *w
	r.s.warehouses[w.ID] = &cp
	return nil
}

func (r *warehouseRepo) ListByTenant(_ context.Context, tenantID string, limit, offset int) ([]*entity.Warehouse, error) {
	r.s.mu.RLock()
	var out []*entity.Warehouse
	for _, w := range r.s.warehouses {
		if w.TenantID == tenantID {
			cp := *w
			out = append(out, &cp)
		}
	}
	r.s.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return paginate(out, limit, offset), nil
}

func (r *warehouseRepo) Deactivate(_ context.Context, tenantID, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	w, ok := r.s.warehouses[id]
	if !ok || w.TenantID != tenantID {
		return fmt.Errorf("desactivar bodega %s: %w", id, domain.ErrNotFound)
	}
	w.IsActive = false
	return nil
}

type categoryRepo struct{ s *Store }

func (r *categoryRepo) Create(_ context.Context, c *entity.Category) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, o := range r.s.categories {
		if o.TenantID == c.TenantID && o.Name == c.Name {
			return fmt.Errorf("crear categoría: %w: %s", domain.ErrDuplicate, c.Name)
		}
	}
	cp := *c
	r.s.categories[c.ID] = &cp
	return nil
}

func (r *categoryRepo) GetByID(_ context.Context, tenantID, id string) (*entity.Category, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	c, ok := r.s.categories[id]
	if !ok || c.TenantID != tenantID {
		return nil, nil
	}
	cp := *c
	return &cp, nil
}

func (r *categoryRepo) Update(_ context.Context, c *entity.Category) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	cur, ok := r.s.categories[c.ID]
	if !ok || cur.TenantID != c.TenantID {
		return fmt.Errorf("actualizar categoría %s: %w", c.ID, domain.ErrNotFound)
	}
	cp := *c
	r.s.categories[c.ID] = &cp
	return nil
}

func (r *categoryRepo) ListByTenant(_ context.Context, tenantID string, limit, offset int) ([]*entity.Category, error) {
	r.s.mu.RLock()
	var out []*entity.Category
	for _, c := range r.s.categories {
		if c.TenantID == tenantID {
			cp := *c
			out = append(out, &cp)
		}
	}
	r.s.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return paginate(out, limit, offset), nil
}

// Delete deja sin categoría a los productos que la usaban.
func (r *categoryRepo) Delete(_ context.Context, tenantID, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	c, ok := r.s.categories[id]
	if !ok || c.TenantID != tenantID {
		return fmt.Errorf("eliminar categoría %s: %w", id, domain.ErrNotFound)
	}
	delete(r.s.categories, id)
	for _, p := range r.s.products {
		if p.TenantID == tenantID && p.CategoryID == id {
			p.CategoryID = ""
		}
	}
	return nil
}
