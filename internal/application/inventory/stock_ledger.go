// Package inventory implementa el motor de reconciliación del stock (único escritor del
// ledger y de los saldos) y la fachada de consultas sobre los saldos materializados.
package inventory

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"

	"github.com/jhoicas/stock-ledger-api/internal/domain"
	"github.com/jhoicas/stock-ledger-api/internal/domain/entity"
	"github.com/jhoicas/stock-ledger-api/internal/domain/repository"
	"github.com/jhoicas/stock-ledger-api/pkg/logger"
)

var tracer = otel.Tracer("stock-ledger/inventory")

// LedgerOptions política de reintentos ante conflictos de concurrencia.
type LedgerOptions struct {
	MaxRetries   int
	RetryBackoff time.Duration
}

// DefaultLedgerOptions valores usados si no se configuran.
func DefaultLedgerOptions() LedgerOptions {
	return LedgerOptions{MaxRetries: 3, RetryBackoff: 50 * time.Millisecond}
}

// StockLedgerUseCase es el motor de reconciliación: registra movimientos de forma atómica e
// idempotente, serializados por (tenant, producto, bodega), y recalcula saldos desde el ledger.
type StockLedgerUseCase struct {
	txRunner      TxRunner
	locker        KeyLocker
	movRepo       repository.StockMovementRepository // lecturas fuera de la tx
	stockRepo     repository.StockRepository
	productRepo   repository.ProductRepository
	warehouseRepo repository.WarehouseRepository
	log           *logger.Logger
	opts          LedgerOptions
	now           func() time.Time
}

// NewStockLedgerUseCase construye el motor.
func NewStockLedgerUseCase(
	txRunner TxRunner,
	locker KeyLocker,
	movRepo repository.StockMovementRepository,
	stockRepo repository.StockRepository,
	productRepo repository.ProductRepository,
	warehouseRepo repository.WarehouseRepository,
	log *logger.Logger,
	opts LedgerOptions,
) *StockLedgerUseCase {
	if log == nil {
		log = logger.Nop()
	}
	if opts.MaxRetries < 0 {
		opts.MaxRetries = 0
	}
	return &StockLedgerUseCase{
		txRunner:      txRunner,
		locker:        locker,
		movRepo:       movRepo,
		stockRepo:     stockRepo,
		productRepo:   productRepo,
		warehouseRepo: warehouseRepo,
		log:           log.Named("stock_ledger"),
		opts:          opts,
		now:           time.Now,
	}
}

// WithClock reemplaza el reloj (tests).
func (uc *StockLedgerUseCase) WithClock(now func() time.Time) *StockLedgerUseCase {
	uc.now = now
	return uc
}

// ListMovements devuelve el historial del ledger según los filtros.
func (uc *StockLedgerUseCase) ListMovements(ctx context.Context, filter repository.MovementFilter) ([]*entity.StockMovement, error) {
	if filter.TenantID == "" {
		return nil, domain.ErrUnauthorized
	}
	if filter.Type != "" && !filter.Type.Valid() {
		return nil, domain.Invalid("movement_type %q no soportado", filter.Type)
	}
	if filter.Limit <= 0 || filter.Limit > 500 {
		filter.Limit = 50
	}
	if filter.Offset < 0 {
		filter.Offset = 0
	}
	return uc.movRepo.List(ctx, filter)
}

// withKeyLock ejecuta fn dentro de la sección exclusiva de key y reintenta mientras
// el error sea un conflicto (lock no obtenido, serialización, deadlock) y quede presupuesto.
func (uc *StockLedgerUseCase) withKeyLock(ctx context.Context, key entity.StockKey, op string, fn func() error) error {
	for attempt := 0; ; attempt++ {
		err := uc.lockedOnce(ctx, key, fn)
		if err == nil || !errors.Is(err, domain.ErrConflict) {
			return err
		}
		if attempt >= uc.opts.MaxRetries || ctx.Err() != nil {
			return fmt.Errorf("%s %s: %d intentos: %w", op, key, attempt+1, err)
		}
		uc.log.Warn().
			Err(err).
			Str("op", op).
			Str("stock_key", key.String()).
			Int("attempt", attempt+1).
			Msg("conflicto de concurrencia, reintentando")
		if werr := sleepCtx(ctx, uc.opts.RetryBackoff*time.Duration(attempt+1)); werr != nil {
			return fmt.Errorf("%s %s: %w: %w", op, key, domain.ErrConflict, werr)
		}
	}
}

func (uc *StockLedgerUseCase) lockedOnce(ctx context.Context, key entity.StockKey, fn func() error) error {
	unlock, err := uc.locker.Lock(ctx, key.String())
	if err != nil {
		return err
	}
	defer unlock()
	return fn()
}

// ensureReferences verifica que producto y bodega existan en el tenant.
// requireActive rechaza además los inactivos (no se registran movimientos sobre ellos).
func (uc *StockLedgerUseCase) ensureReferences(ctx context.Context, tenantID, productID, warehouseID string, requireActive bool) error {
	product, err := uc.productRepo.GetByID(ctx, tenantID, productID)
	if err != nil {
		return err
	}
	if product == nil || (requireActive && !product.IsActive) {
		return fmt.Errorf("%w: producto %s", domain.ErrNotFound, productID)
	}
	warehouse, err := uc.warehouseRepo.GetByID(ctx, tenantID, warehouseID)
	if err != nil {
		return err
	}
	if warehouse == nil || (requireActive && !warehouse.IsActive) {
		return fmt.Errorf("%w: bodega %s", domain.ErrNotFound, warehouseID)
	}
	return nil
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
