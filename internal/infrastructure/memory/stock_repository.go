package memory

import (
	"context"
	"fmt"
	"sort"

	"github.com/jhoicas/stock-ledger-api/internal/domain"
	"github.com/jhoicas/stock-ledger-api/internal/domain/entity"
)

type stockRepo struct {
	s  *Store
	tx *tx
}

func (r *stockRepo) Get(_ context.Context, key entity.StockKey) (*entity.Stock, error) {
	if err := r.s.injected(OpStockGet); err != nil {
		return nil, err
	}
	if r.tx != nil {
		if st, ok := r.tx.stock[key]; ok {
			cp := *st
			return &cp, nil
		}
	}
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	if st, ok := r.s.stock[key]; ok {
		cp := *st
		return &cp, nil
	}
	return entity.EmptyStock(key), nil
}

// GetForUpdate sin bloqueo de fila: el CAS de versión en el commit detecta escrituras concurrentes.
func (r *stockRepo) GetForUpdate(ctx context.Context, key entity.StockKey) (*entity.Stock, error) {
	return r.Get(ctx, key)
}

func (r *stockRepo) Upsert(_ context.Context, st *entity.Stock) error {
	if err := r.s.injected(OpStockUpsert); err != nil {
		return err
	}
	if st.Quantity.IsNegative() {
		return fmt.Errorf("upsert stock %s: %w: cantidad negativa", st.Key(), domain.ErrStorage)
	}
	cp := *st
	if r.tx != nil {
		r.tx.stock[st.Key()] = &cp
		return nil
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.checkVersionLocked(st.Key(), st); err != nil {
		return err
	}
	r.s.stock[st.Key()] = &cp
	return nil
}

func (r *stockRepo) ListByProduct(_ context.Context, tenantID, productID string) ([]*entity.Stock, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var out []*entity.Stock
	for k, st := range r.s.stock {
		if k.TenantID == tenantID && k.ProductID == productID {
			cp := *st
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].WarehouseID < out[j].WarehouseID })
	return out, nil
}

func (r *stockRepo) ListByTenant(_ context.Context, tenantID string) ([]*entity.Stock, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var out []*entity.Stock
	for k, st := range r.s.stock {
		if k.TenantID == tenantID {
			cp := *st
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].ProductID != out[j].ProductID {
			return out[i].ProductID < out[j].ProductID
		}
		return out[i].WarehouseID < out[j].WarehouseID
	})
	return out, nil
}
