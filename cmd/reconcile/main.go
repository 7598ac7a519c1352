// Command reconcile audita (y repara) los saldos de un tenant recalculándolos desde el ledger.
//
//	reconcile -tenant acme -dry-run
//	reconcile -tenant acme -product <uuid> -warehouse <uuid>
//
// Sale con código 2 si quedan saldos divergentes sin reparar.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/jhoicas/stock-ledger-api/internal/application/inventory"
	"github.com/jhoicas/stock-ledger-api/internal/infrastructure/lock"
	"github.com/jhoicas/stock-ledger-api/internal/infrastructure/postgres"
	"github.com/jhoicas/stock-ledger-api/pkg/config"
	"github.com/jhoicas/stock-ledger-api/pkg/logger"
)

func main() {
	os.Exit(run())
}

func run() int {
	tenantID := flag.String("tenant", "", "Obligatorio: tenant a auditar")
	productID := flag.String("product", "", "Opcional: limitar a un producto (requiere -warehouse)")
	warehouseID := flag.String("warehouse", "", "Opcional: limitar a una bodega (requiere -product)")
	dryRun := flag.Bool("dry-run", false, "Solo reportar divergencias, sin reparar")
	flag.Parse()

	if strings.TrimSpace(*tenantID) == "" {
		fmt.Fprintln(os.Stderr, "-tenant es obligatorio")
		return 1
	}
	if (*productID == "") != (*warehouseID == "") {
		fmt.Fprintln(os.Stderr, "-product y -warehouse van juntos")
		return 1
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "cargar configuración: %v\n", err)
		return 1
	}
	log := logger.New(logger.Config{Env: cfg.App.Env, Level: cfg.App.LogLevel})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		log.Error().Err(err).Msg("conexión a PostgreSQL")
		return 1
	}
	defer pool.Close()

	locker, closeLocker, err := lock.FromConfig(ctx, cfg, log)
	if err != nil {
		log.Error().Err(err).Msg("backend de lock")
		return 1
	}
	defer closeLocker()

	ledger := inventory.NewStockLedgerUseCase(
		postgres.NewTxRunner(pool, postgres.TxOptions{
			LockTimeout:      cfg.DB.LockTimeout,
			StatementTimeout: cfg.DB.StatementTimeout,
		}),
		locker,
		postgres.NewStockMovementRepository(pool),
		postgres.NewStockRepository(pool),
		postgres.NewProductRepository(pool),
		postgres.NewWarehouseRepository(pool),
		log,
		inventory.LedgerOptions{MaxRetries: cfg.Ledger.MaxRetries, RetryBackoff: cfg.Ledger.RetryBackoff},
	)

	if *productID != "" {
		return recomputeOne(ctx, ledger, *tenantID, *productID, *warehouseID, *dryRun)
	}
	return reconcileAll(ctx, ledger, *tenantID, *dryRun)
}

func recomputeOne(ctx context.Context, ledger *inventory.StockLedgerUseCase, tenantID, productID, warehouseID string, dryRun bool) int {
	res, err := ledger.RecomputeBalance(ctx, inventory.RecomputeInput{
		TenantID:    tenantID,
		ProductID:   productID,
		WarehouseID: warehouseID,
		DryRun:      dryRun,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "recompute: %v\n", err)
		return 1
	}
	fmt.Printf("movimientos=%d almacenado=%s calculado=%s divergente=%t reparado=%t\n",
		res.Movements, res.Previous, res.Computed, res.Diverged, res.Repaired)
	if res.Diverged && !res.Repaired {
		return 2
	}
	return 0
}

func reconcileAll(ctx context.Context, ledger *inventory.StockLedgerUseCase, tenantID string, dryRun bool) int {
	report, err := ledger.ReconcileTenant(ctx, tenantID, dryRun)
	if err != nil {
		fmt.Fprintf(os.Stderr, "reconcile: %v\n", err)
		if report == nil {
			return 1
		}
	}
	for _, d := range report.Divergent {
		fmt.Printf("%s\t%s\talmacenado=%s\tcalculado=%s\n", d.ProductID, d.WarehouseID, d.Stored, d.Computed)
	}
	fmt.Printf("tenant=%s revisados=%d divergentes=%d reparados=%d dry_run=%t\n",
		report.TenantID, report.Checked, len(report.Divergent), report.Repaired, report.DryRun)
	switch {
	case err != nil:
		return 1
	case len(report.Divergent) > report.Repaired:
		return 2
	}
	return 0
}
