package memory

import (
	"context"
	"fmt"
	"sort"

	"github.com/jhoicas/stock-ledger-api/internal/domain"
	"github.com/jhoicas/stock-ledger-api/internal/domain/entity"
	"github.com/jhoicas/stock-ledger-api/internal/domain/inventory"
	"github.com/jhoicas/stock-ledger-api/internal/domain/repository"
)

type movementRepo struct {
	s  *Store
	tx *tx
}

func (r *movementRepo) Create(_ context.Context, m *entity.StockMovement) error {
	if err := r.s.injected(OpMovementCreate); err != nil {
		return err
	}
	if r.tx != nil {
		for _, p := range r.tx.movements {
			if p.TenantID == m.TenantID && p.IdempotencyKey == m.IdempotencyKey {
				return fmt.Errorf("crear movimiento: %w: idempotency_key %s", domain.ErrDuplicate, m.IdempotencyKey)
			}
		}
		cp := *m
		r.tx.movements = append(r.tx.movements, &cp)
		return nil
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.idemKeys[idemIndex(m.TenantID, m.IdempotencyKey)]; ok {
		return fmt.Errorf("crear movimiento: %w: idempotency_key %s", domain.ErrDuplicate, m.IdempotencyKey)
	}
	r.s.appendMovementLocked(m)
	return nil
}

func (r *movementRepo) GetByIdempotencyKey(_ context.Context, tenantID, key string) (*entity.StockMovement, error) {
	if r.tx != nil {
		for _, p := range r.tx.movements {
			if p.TenantID == tenantID && p.IdempotencyKey == key {
				cp := *p
				return &cp, nil
			}
		}
	}
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	if m, ok := r.s.idemKeys[idemIndex(tenantID, key)]; ok {
		cp := *m
		return &cp, nil
	}
	return nil, nil
}

func (r *movementRepo) ListByKey(_ context.Context, key entity.StockKey) ([]*entity.StockMovement, error) {
	r.s.mu.RLock()
	var out []*entity.StockMovement
	for _, m := range r.s.movements {
		if m.Key() == key {
			cp := *m
			out = append(out, &cp)
		}
	}
	r.s.mu.RUnlock()
	if r.tx != nil {
		for _, m := range r.tx.movements {
			if m.Key() == key {
				cp := *m
				out = append(out, &cp)
			}
		}
	}
	inventory.SortForReplay(out)
	return out, nil
}

func (r *movementRepo) ListKeys(_ context.Context, tenantID string) ([]entity.StockKey, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	seen := make(map[entity.StockKey]struct{})
	var out []entity.StockKey
	for _, m := range r.s.movements {
		k := m.Key()
		if k.TenantID != tenantID {
			continue
		}
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, k)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].String() < out[j].String() })
	return out, nil
}

// List historial del tenant, más reciente primero.
func (r *movementRepo) List(_ context.Context, f repository.MovementFilter) ([]*entity.StockMovement, error) {
	r.s.mu.RLock()
	var out []*entity.StockMovement
	for _, m := range r.s.movements {
		if !matchMovement(m, f) {
			continue
		}
		cp := *m
		out = append(out, &cp)
	}
	r.s.mu.RUnlock()
	sortNewestFirst(out)
	return paginate(out, f.Limit, f.Offset), nil
}

func matchMovement(m *entity.StockMovement, f repository.MovementFilter) bool {
	switch {
	case m.TenantID != f.TenantID:
		return false
	case f.ProductID != "" && m.ProductID != f.ProductID:
		return false
	case f.WarehouseID != "" && m.WarehouseID != f.WarehouseID:
		return false
	case f.Type != "" && m.Type != f.Type:
		return false
	case f.From != nil && m.CreatedAt.Before(*f.From):
		return false
	case f.To != nil && !m.CreatedAt.Before(*f.To):
		return false
	}
	return true
}

func sortNewestFirst(movs []*entity.StockMovement) {
	sort.Slice(movs, func(i, j int) bool {
		if !movs[i].CreatedAt.Equal(movs[j].CreatedAt) {
			return movs[i].CreatedAt.After(movs[j].CreatedAt)
		}
		return movs[i].ID > movs[j].ID
	})
}

func paginate[T any](items []T, limit, offset int) []T {
	if offset < 0 {
		offset = 0
	}
	if offset >= len(items) {
		return nil
	}
	items = items[offset:]
	if limit > 0 && limit < len(items) {
		items = items[:limit]
	}
	return items
}
