package inventory

import (
	"context"
	"sort"

	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/jhoicas/stock-ledger-api/internal/domain"
	"github.com/jhoicas/stock-ledger-api/internal/domain/entity"
	"github.com/jhoicas/stock-ledger-api/internal/domain/inventory"
	"github.com/jhoicas/stock-ledger-api/internal/domain/repository"
)

// RecomputeInput entrada de RecomputeBalance. Con DryRun solo se audita, sin reparar.
type RecomputeInput struct {
	TenantID    string
	ProductID   string
	WarehouseID string
	DryRun      bool
}

// RecomputeResult saldo reconstruido desde el ledger.
// Diverged indica que el saldo almacenado (Previous) no coincidía con el fold: el invariante
// del motor se rompió y debe alertarse.
type RecomputeResult struct {
	Balance   *entity.Stock
	Previous  decimal.Decimal
	Computed  decimal.Decimal
	Diverged  bool
	Repaired  bool
	Movements int
}

// RecomputeBalance reconstruye el saldo de una clave aplicando todos sus movimientos en orden
// (created_at, id) desde cero, y lo repara si difiere (salvo DryRun).
func (uc *StockLedgerUseCase) RecomputeBalance(ctx context.Context, in RecomputeInput) (*RecomputeResult, error) {
	if in.TenantID == "" {
		return nil, domain.ErrUnauthorized
	}
	if in.ProductID == "" || in.WarehouseID == "" {
		return nil, domain.Invalid("product_id y warehouse_id son obligatorios")
	}
	if err := uc.ensureReferences(ctx, in.TenantID, in.ProductID, in.WarehouseID, false); err != nil {
		return nil, err
	}
	key := entity.StockKey{TenantID: in.TenantID, ProductID: in.ProductID, WarehouseID: in.WarehouseID}
	return uc.recomputeKey(ctx, key, in.DryRun)
}

func (uc *StockLedgerUseCase) recomputeKey(ctx context.Context, key entity.StockKey, dryRun bool) (*RecomputeResult, error) {
	ctx, span := tracer.Start(ctx, "inventory.RecomputeBalance", trace.WithAttributes(
		attribute.String("stock.key", key.String()),
		attribute.Bool("dry_run", dryRun),
	))
	defer span.End()

	var res *RecomputeResult
	err := uc.withKeyLock(ctx, key, "recompute balance", func() error {
		return uc.txRunner.Run(ctx, func(movRepo repository.StockMovementRepository, stockRepo repository.StockRepository) error {
			movs, err := movRepo.ListByKey(ctx, key)
			if err != nil {
				return err
			}
			var stock *entity.Stock
			if dryRun || len(movs) == 0 {
				stock, err = stockRepo.Get(ctx, key)
			} else {
				stock, err = stockRepo.GetForUpdate(ctx, key)
			}
			if err != nil {
				return err
			}

			inventory.SortForReplay(movs)
			folded := inventory.Fold(movs)
			res = &RecomputeResult{
				Balance:   stock,
				Previous:  stock.Quantity,
				Computed:  folded,
				Diverged:  !folded.Equal(stock.Quantity),
				Movements: len(movs),
			}
			if !res.Diverged || dryRun {
				return nil
			}

			repaired := *stock
			repaired.Quantity = folded
			repaired.Version = stock.Version + 1
			if len(movs) > 0 {
				repaired.LastUpdated = movs[len(movs)-1].CreatedAt
			}
			if err := stockRepo.Upsert(ctx, &repaired); err != nil {
				return err
			}
			res.Balance = &repaired
			res.Repaired = true
			return nil
		})
	})
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	span.SetAttributes(attribute.Bool("diverged", res.Diverged))
	if res.Diverged {
		uc.log.Error().
			Str("tenant_id", key.TenantID).
			Str("product_id", key.ProductID).
			Str("warehouse_id", key.WarehouseID).
			Str("stored", res.Previous.String()).
			Str("computed", res.Computed.String()).
			Bool("repaired", res.Repaired).
			Msg("saldo divergente del ledger")
	}
	return res, nil
}

// KeyDivergence saldo divergente encontrado en una auditoría.
type KeyDivergence struct {
	ProductID   string
	WarehouseID string
	Stored      decimal.Decimal
	Computed    decimal.Decimal
}

// ReconcileReport resultado de ReconcileTenant.
type ReconcileReport struct {
	TenantID  string
	DryRun    bool
	Checked   int
	Repaired  int
	Divergent []KeyDivergence
}

// ReconcileTenant recalcula todos los saldos de un tenant: los que tienen fila y los que
// tienen movimientos. Reemplaza los scripts manuales de auditoría y deduplicación.
func (uc *StockLedgerUseCase) ReconcileTenant(ctx context.Context, tenantID string, dryRun bool) (*ReconcileReport, error) {
	if tenantID == "" {
		return nil, domain.ErrUnauthorized
	}
	keys, err := uc.tenantKeys(ctx, tenantID)
	if err != nil {
		return nil, err
	}

	report := &ReconcileReport{TenantID: tenantID, DryRun: dryRun, Divergent: []KeyDivergence{}}
	for _, key := range keys {
		if err := ctx.Err(); err != nil {
			return report, err
		}
		res, err := uc.recomputeKey(ctx, key, dryRun)
		if err != nil {
			return report, err
		}
		report.Checked++
		if !res.Diverged {
			continue
		}
		report.Divergent = append(report.Divergent, KeyDivergence{
			ProductID:   key.ProductID,
			WarehouseID: key.WarehouseID,
			Stored:      res.Previous,
			Computed:    res.Computed,
		})
		if res.Repaired {
			report.Repaired++
		}
	}

	uc.log.Tenant(tenantID).Info().
		Bool("dry_run", dryRun).
		Int("checked", report.Checked).
		Int("divergent", len(report.Divergent)).
		Int("repaired", report.Repaired).
		Msg("reconciliación de tenant terminada")
	return report, nil
}

// tenantKeys une las claves con fila de saldo y las claves con movimientos, en orden estable.
func (uc *StockLedgerUseCase) tenantKeys(ctx context.Context, tenantID string) ([]entity.StockKey, error) {
	seen := make(map[entity.StockKey]struct{})
	var keys []entity.StockKey
	add := func(k entity.StockKey) {
		if _, ok := seen[k]; ok {
			return
		}
		seen[k] = struct{}{}
		keys = append(keys, k)
	}

	stocks, err := uc.stockRepo.ListByTenant(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	for _, s := range stocks {
		add(s.Key())
	}
	movKeys, err := uc.movRepo.ListKeys(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	for _, k := range movKeys {
		add(k)
	}

	sort.Slice(keys, func(i, j int) bool { return keys[i].String() < keys[j].String() })
	return keys, nil
}
