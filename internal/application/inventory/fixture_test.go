package inventory_test

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	appinventory "github.com/jhoicas/stock-ledger-api/internal/application/inventory"
	"github.com/jhoicas/stock-ledger-api/internal/domain/entity"
	"github.com/jhoicas/stock-ledger-api/internal/infrastructure/lock"
	"github.com/jhoicas/stock-ledger-api/internal/infrastructure/memory"
	"github.com/jhoicas/stock-ledger-api/pkg/logger"
)

// ──────────────────────────────────────────────────────────────────────────────
// Helpers de test
// ──────────────────────────────────────────────────────────────────────────────

const (
	tenantID     = "tenant-a"
	otherTenant  = "tenant-b"
	productID    = "prod-1"
	warehouseID  = "bod-1"
	warehouse2ID = "bod-2"
	actorID      = "user-1"
)

type fixture struct {
	store  *memory.Store
	locker *lock.Local
	ledger *appinventory.StockLedgerUseCase
	query  *appinventory.StockQueryUseCase
}

type fixtureOption func(*fixtureConfig)

type fixtureConfig struct {
	opts        appinventory.LedgerOptions
	lockTimeout time.Duration
	log         *logger.Logger
}

func withOptions(o appinventory.LedgerOptions) fixtureOption {
	return func(c *fixtureConfig) { c.opts = o }
}

func withLockTimeout(d time.Duration) fixtureOption {
	return func(c *fixtureConfig) { c.lockTimeout = d }
}

func withLogger(l *logger.Logger) fixtureOption {
	return func(c *fixtureConfig) { c.log = l }
}

// newFixture arma el motor sobre el almacén en memoria con un producto (mínimo 20)
// y dos bodegas activas.
func newFixture(t *testing.T, options ...fixtureOption) *fixture {
	t.Helper()
	cfg := fixtureConfig{
		opts:        appinventory.LedgerOptions{MaxRetries: 3, RetryBackoff: time.Millisecond},
		lockTimeout: time.Second,
		log:         logger.Nop(),
	}
	for _, o := range options {
		o(&cfg)
	}

	store := memory.NewStore()
	locker := lock.NewLocal(cfg.lockTimeout)
	f := &fixture{
		store:  store,
		locker: locker,
		ledger: appinventory.NewStockLedgerUseCase(
			store.TxRunner(), locker,
			store.MovementRepo(), store.StockRepo(),
			store.ProductRepo(), store.WarehouseRepo(),
			cfg.log, cfg.opts,
		),
		query: appinventory.NewStockQueryUseCase(
			store.StockRepo(), store.ProductRepo(), store.WarehouseRepo(), store.ReportRepo(),
		),
	}
	f.seedProduct(t, tenantID, productID, "Tornillo 3/8", "20")
	f.seedWarehouse(t, tenantID, warehouseID, "Bodega Norte")
	f.seedWarehouse(t, tenantID, warehouse2ID, "Bodega Centro")
	return f
}

func (f *fixture) seedProduct(t *testing.T, tenant, id, name, min string) {
	t.Helper()
	now := time.Now().UTC()
	require.NoError(t, f.store.ProductRepo().Create(context.Background(), &entity.Product{
		ID:            id,
		TenantID:      tenant,
		SKU:           "SKU-" + id,
		Name:          name,
		Unit:          entity.DefaultUnit,
		MinStockLevel: decimal.RequireFromString(min),
		IsActive:      true,
		CreatedAt:     now,
		UpdatedAt:     now,
	}))
}

func (f *fixture) seedWarehouse(t *testing.T, tenant, id, name string) {
	t.Helper()
	now := time.Now().UTC()
	require.NoError(t, f.store.WarehouseRepo().Create(context.Background(), &entity.Warehouse{
		ID:        id,
		TenantID:  tenant,
		Name:      name,
		IsActive:  true,
		CreatedAt: now,
		UpdatedAt: now,
	}))
}

func (f *fixture) record(t *testing.T, typ entity.MovementType, qty, key string) *appinventory.MovementResult {
	t.Helper()
	res, err := f.ledger.RecordMovement(context.Background(), cmd(typ, qty, key))
	require.NoError(t, err)
	return res
}

func (f *fixture) balance(t *testing.T, warehouse string) decimal.Decimal {
	t.Helper()
	st, err := f.query.GetBalance(context.Background(), entity.StockKey{TenantID: tenantID, ProductID: productID, WarehouseID: warehouse})
	require.NoError(t, err)
	return st.Quantity
}

func (f *fixture) ledgerRows(t *testing.T, warehouse string) []*entity.StockMovement {
	t.Helper()
	movs, err := f.store.MovementRepo().ListByKey(context.Background(), entity.StockKey{TenantID: tenantID, ProductID: productID, WarehouseID: warehouse})
	require.NoError(t, err)
	return movs
}

func cmd(typ entity.MovementType, qty, key string) appinventory.RecordMovementCommand {
	return appinventory.RecordMovementCommand{
		TenantID:       tenantID,
		ProductID:      productID,
		WarehouseID:    warehouseID,
		Type:           typ,
		Quantity:       decimal.RequireFromString(qty),
		IdempotencyKey: key,
		ActorID:        actorID,
	}
}

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }
