package inventory_test

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appinventory "github.com/jhoicas/stock-ledger-api/internal/application/inventory"
	"github.com/jhoicas/stock-ledger-api/internal/domain"
	"github.com/jhoicas/stock-ledger-api/internal/domain/entity"
	"github.com/jhoicas/stock-ledger-api/internal/domain/repository"
	"github.com/jhoicas/stock-ledger-api/internal/infrastructure/memory"
	"github.com/jhoicas/stock-ledger-api/pkg/logger"
)

// ──────────────────────────────────────────────────────────────────────────────
// Escenarios
// ──────────────────────────────────────────────────────────────────────────────

func TestRecordMovement_EscenarioEntradaSalidaAjusteYRecorte(t *testing.T) {
	f := newFixture(t)
	assert.True(t, f.balance(t, warehouseID).IsZero())

	res := f.record(t, entity.MovementTypeIn, "100", "k1")
	assert.True(t, res.Balance.Quantity.Equal(d("100")))
	assert.False(t, res.Replayed)

	res = f.record(t, entity.MovementTypeOut, "30", "k2")
	assert.True(t, res.Balance.Quantity.Equal(d("70")))

	res = f.record(t, entity.MovementTypeAdjustment, "50", "k3")
	assert.True(t, res.Balance.Quantity.Equal(d("50")), "el ajuste fija el saldo")

	res = f.record(t, entity.MovementTypeOut, "1000", "k4")
	assert.True(t, res.Balance.Quantity.IsZero(), "la salida se recorta en cero")
	assert.True(t, res.Movement.Clamped)
	assert.True(t, res.Movement.BalanceBefore.Equal(d("50")))
	assert.True(t, res.Movement.Quantity.Equal(d("1000")), "el ledger conserva la cantidad pedida")

	assert.True(t, f.balance(t, warehouseID).IsZero())
	assert.Len(t, f.ledgerRows(t, warehouseID), 4)
}

func TestRecordMovement_DosEntradasConcurrentesSuman(t *testing.T) {
	f := newFixture(t)
	var wg sync.WaitGroup
	for _, key := range []string{"a", "b"} {
		wg.Add(1)
		go func(key string) {
			defer wg.Done()
			_, err := f.ledger.RecordMovement(context.Background(), cmd(entity.MovementTypeIn, "10", key))
			assert.NoError(t, err)
		}(key)
	}
	wg.Wait()

	assert.True(t, f.balance(t, warehouseID).Equal(d("20")))
	assert.Len(t, f.ledgerRows(t, warehouseID), 2)
}

func TestRecordMovement_MismaClaveDosVecesAplicaUnaVez(t *testing.T) {
	f := newFixture(t)
	first := f.record(t, entity.MovementTypeIn, "10", "dup")
	second := f.record(t, entity.MovementTypeIn, "10", "dup")

	assert.False(t, first.Replayed)
	assert.True(t, second.Replayed)
	assert.Equal(t, first.Movement.ID, second.Movement.ID, "el reintento devuelve el movimiento original")
	assert.True(t, second.Balance.Quantity.Equal(d("10")))
	assert.True(t, f.balance(t, warehouseID).Equal(d("10")))
	assert.Len(t, f.ledgerRows(t, warehouseID), 1)
}

// ──────────────────────────────────────────────────────────────────────────────
// Propiedades
// ──────────────────────────────────────────────────────────────────────────────

func TestRecordMovement_RepeticionDevuelveElSaldoDelPrimerRegistro(t *testing.T) {
	f := newFixture(t)
	first := f.record(t, entity.MovementTypeIn, "10", "r-1")
	f.record(t, entity.MovementTypeIn, "5", "r-2")

	again := f.record(t, entity.MovementTypeIn, "10", "r-1")

	assert.True(t, again.Replayed)
	assert.True(t, again.Balance.Quantity.Equal(d("10")), "saldo dejado por el primer registro")
	assert.True(t, again.Balance.LastUpdated.Equal(first.Balance.LastUpdated))
	assert.True(t, f.balance(t, warehouseID).Equal(d("15")))
}

func TestRecordMovement_EntradaQueDesbordaElSaldoEsInvalida(t *testing.T) {
	f := newFixture(t)
	f.record(t, entity.MovementTypeAdjustment, "9999999999999999", "big-1")

	_, err := f.ledger.RecordMovement(context.Background(), cmd(entity.MovementTypeIn, "1", "big-2"))

	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	assert.True(t, f.balance(t, warehouseID).Equal(d("9999999999999999")))
	assert.Len(t, f.ledgerRows(t, warehouseID), 1, "el movimiento rechazado no se persiste")
}

func TestRecordMovement_NEntradasConcurrentesSumanN(t *testing.T) {
	f := newFixture(t, withLockTimeout(5*time.Second))
	const n = 50
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := f.ledger.RecordMovement(context.Background(), cmd(entity.MovementTypeIn, "1", fmt.Sprintf("in-%d", i)))
			assert.NoError(t, err)
		}(i)
	}
	wg.Wait()

	assert.True(t, f.balance(t, warehouseID).Equal(d("50")))
	rows := f.ledgerRows(t, warehouseID)
	require.Len(t, rows, n)
	for i := 1; i < len(rows); i++ {
		assert.True(t, rows[i].CreatedAt.After(rows[i-1].CreatedAt), "created_at estrictamente creciente por saldo")
		assert.True(t, rows[i].BalanceBefore.Equal(rows[i-1].BalanceAfter), "cada movimiento parte del saldo anterior")
	}

	stocks, err := f.store.StockRepo().ListByProduct(context.Background(), tenantID, productID)
	require.NoError(t, err)
	assert.Len(t, stocks, 1, "una sola fila de saldo por producto y bodega")
}

func TestRecordMovement_ReintentosConcurrentesMismaClave(t *testing.T) {
	f := newFixture(t)
	const n = 10
	results := make([]*appinventory.MovementResult, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			res, err := f.ledger.RecordMovement(context.Background(), cmd(entity.MovementTypeIn, "7", "same"))
			assert.NoError(t, err)
			results[i] = res
		}(i)
	}
	wg.Wait()

	applied := 0
	for _, r := range results {
		require.NotNil(t, r)
		if !r.Replayed {
			applied++
		}
	}
	assert.Equal(t, 1, applied, "solo un envío muta el saldo")
	assert.True(t, f.balance(t, warehouseID).Equal(d("7")))
	assert.Len(t, f.ledgerRows(t, warehouseID), 1)
}

func TestRecordMovement_SaldoNuncaNegativo(t *testing.T) {
	f := newFixture(t)
	steps := []struct {
		typ entity.MovementType
		qty string
	}{
		{entity.MovementTypeOut, "5"},
		{entity.MovementTypeIn, "3"},
		{entity.MovementTypeOut, "3.0001"},
		{entity.MovementTypeAdjustment, "0"},
		{entity.MovementTypeOut, "1"},
	}
	for i, s := range steps {
		res := f.record(t, s.typ, s.qty, fmt.Sprintf("s-%d", i))
		assert.False(t, res.Balance.Quantity.IsNegative(), "paso %d", i)
	}
	assert.True(t, f.balance(t, warehouseID).IsZero())
}

func TestRecordMovement_BodegasSonIndependientes(t *testing.T) {
	f := newFixture(t)
	f.record(t, entity.MovementTypeIn, "10", "w1")
	c := cmd(entity.MovementTypeIn, "4", "w2")
	c.WarehouseID = warehouse2ID
	_, err := f.ledger.RecordMovement(context.Background(), c)
	require.NoError(t, err)

	assert.True(t, f.balance(t, warehouseID).Equal(d("10")))
	assert.True(t, f.balance(t, warehouse2ID).Equal(d("4")))
}

// ──────────────────────────────────────────────────────────────────────────────
// Idempotencia
// ──────────────────────────────────────────────────────────────────────────────

func TestRecordMovement_ClaveReutilizadaConOtroContenido(t *testing.T) {
	f := newFixture(t)
	f.record(t, entity.MovementTypeIn, "10", "k")

	_, err := f.ledger.RecordMovement(context.Background(), cmd(entity.MovementTypeIn, "11", "k"))
	require.ErrorIs(t, err, domain.ErrIdempotencyMismatch)
	assert.ErrorIs(t, err, domain.ErrInvalidInput, "es un error de validación")
	assert.Equal(t, domain.KindValidation, domain.KindOf(err))
	assert.True(t, f.balance(t, warehouseID).Equal(d("10")))
}

func TestRecordMovement_ClaveEsPorTenant(t *testing.T) {
	f := newFixture(t)
	f.seedProduct(t, otherTenant, "prod-b", "Otro", "0")
	f.seedWarehouse(t, otherTenant, "bod-b", "Otra")
	f.record(t, entity.MovementTypeIn, "10", "shared")

	res, err := f.ledger.RecordMovement(context.Background(), appinventory.RecordMovementCommand{
		TenantID: otherTenant, ProductID: "prod-b", WarehouseID: "bod-b",
		Type: entity.MovementTypeIn, Quantity: d("3"), IdempotencyKey: "shared",
	})
	require.NoError(t, err)
	assert.False(t, res.Replayed)
	assert.True(t, res.Balance.Quantity.Equal(d("3")))
}

// duplicateOnCommit simula otra instancia que confirma la misma clave justo antes del commit.
type duplicateOnCommit struct {
	inner appinventory.TxRunner
	store *memory.Store
	dupe  *entity.StockMovement
	once  sync.Once
}

func (r *duplicateOnCommit) Run(ctx context.Context, fn func(repository.StockMovementRepository, repository.StockRepository) error) error {
	return r.inner.Run(ctx, func(m repository.StockMovementRepository, s repository.StockRepository) error {
		if err := fn(m, s); err != nil {
			return err
		}
		var err error
		r.once.Do(func() { err = r.store.MovementRepo().Create(ctx, r.dupe) })
		return err
	})
}

func TestRecordMovement_DuplicadoEnCommitSeResuelveComoRepeticion(t *testing.T) {
	// Fingerprint del mismo comando calculado por otro motor.
	ref := newFixture(t)
	original := ref.record(t, entity.MovementTypeIn, "10", "race").Movement

	f := newFixture(t)
	runner := &duplicateOnCommit{inner: f.store.TxRunner(), store: f.store, dupe: original}
	ledger := appinventory.NewStockLedgerUseCase(
		runner, f.locker,
		f.store.MovementRepo(), f.store.StockRepo(),
		f.store.ProductRepo(), f.store.WarehouseRepo(),
		logger.Nop(), appinventory.LedgerOptions{MaxRetries: 3, RetryBackoff: time.Millisecond},
	)

	res, err := ledger.RecordMovement(context.Background(), cmd(entity.MovementTypeIn, "10", "race"))
	require.NoError(t, err)
	assert.True(t, res.Replayed)
	assert.Equal(t, original.ID, res.Movement.ID)
	assert.Len(t, f.ledgerRows(t, warehouseID), 1, "el movimiento perdedor no se persiste")
}

// ──────────────────────────────────────────────────────────────────────────────
// Validación y existencia
// ──────────────────────────────────────────────────────────────────────────────

func TestRecordMovement_Validacion(t *testing.T) {
	f := newFixture(t)
	cases := []struct {
		name string
		mut  func(*appinventory.RecordMovementCommand)
	}{
		{"tipo desconocido", func(c *appinventory.RecordMovementCommand) { c.Type = "transfer" }},
		{"entrada en cero", func(c *appinventory.RecordMovementCommand) { c.Quantity = d("0") }},
		{"cantidad negativa", func(c *appinventory.RecordMovementCommand) { c.Quantity = d("-2") }},
		{"más de 4 decimales", func(c *appinventory.RecordMovementCommand) { c.Quantity = d("1.00001") }},
		{"sin clave", func(c *appinventory.RecordMovementCommand) { c.IdempotencyKey = "  " }},
		{"clave muy larga", func(c *appinventory.RecordMovementCommand) { c.IdempotencyKey = strings.Repeat("k", 129) }},
		{"sin producto", func(c *appinventory.RecordMovementCommand) { c.ProductID = "" }},
		{"notas muy largas", func(c *appinventory.RecordMovementCommand) { c.Notes = strings.Repeat("n", 1001) }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			c := cmd(entity.MovementTypeIn, "1", "v")
			tc.mut(&c)
			_, err := f.ledger.RecordMovement(context.Background(), c)
			require.ErrorIs(t, err, domain.ErrInvalidInput)
		})
	}
	assert.Empty(t, f.ledgerRows(t, warehouseID))
}

func TestRecordMovement_TipoYClaveSeNormalizan(t *testing.T) {
	f := newFixture(t)
	c := cmd(" IN ", "2", "  k-1  ")
	res, err := f.ledger.RecordMovement(context.Background(), c)
	require.NoError(t, err)
	assert.Equal(t, entity.MovementTypeIn, res.Movement.Type)
	assert.Equal(t, "k-1", res.Movement.IdempotencyKey)
}

func TestRecordMovement_SinTenantNoAutorizado(t *testing.T) {
	f := newFixture(t)
	c := cmd(entity.MovementTypeIn, "1", "x")
	c.TenantID = ""
	_, err := f.ledger.RecordMovement(context.Background(), c)
	require.ErrorIs(t, err, domain.ErrUnauthorized)
}

func TestRecordMovement_ProductoOBodegaInexistente(t *testing.T) {
	f := newFixture(t)

	c := cmd(entity.MovementTypeIn, "1", "x1")
	c.ProductID = "no-existe"
	_, err := f.ledger.RecordMovement(context.Background(), c)
	require.ErrorIs(t, err, domain.ErrNotFound)

	c = cmd(entity.MovementTypeIn, "1", "x2")
	c.WarehouseID = "no-existe"
	_, err = f.ledger.RecordMovement(context.Background(), c)
	require.ErrorIs(t, err, domain.ErrNotFound)

	c = cmd(entity.MovementTypeIn, "1", "x3")
	c.TenantID = otherTenant
	_, err = f.ledger.RecordMovement(context.Background(), c)
	require.ErrorIs(t, err, domain.ErrNotFound, "un producto de otro tenant no existe")
}

func TestRecordMovement_ProductoInactivoNoRecibeMovimientos(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.store.ProductRepo().Deactivate(context.Background(), tenantID, productID))
	_, err := f.ledger.RecordMovement(context.Background(), cmd(entity.MovementTypeIn, "1", "x"))
	require.ErrorIs(t, err, domain.ErrNotFound)
}

// ──────────────────────────────────────────────────────────────────────────────
// Concurrencia y fallos
// ──────────────────────────────────────────────────────────────────────────────

func TestRecordMovement_LockOcupadoDevuelveConflicto(t *testing.T) {
	f := newFixture(t,
		withLockTimeout(20*time.Millisecond),
		withOptions(appinventory.LedgerOptions{MaxRetries: 1, RetryBackoff: time.Millisecond}),
	)
	key := entity.StockKey{TenantID: tenantID, ProductID: productID, WarehouseID: warehouseID}
	unlock, err := f.locker.Lock(context.Background(), key.String())
	require.NoError(t, err)
	defer unlock()

	_, err = f.ledger.RecordMovement(context.Background(), cmd(entity.MovementTypeIn, "1", "busy"))
	require.ErrorIs(t, err, domain.ErrConflict)
	assert.Equal(t, domain.KindConflict, domain.KindOf(err))
	assert.Empty(t, f.ledgerRows(t, warehouseID))
}

func TestRecordMovement_ConflictoTransitorioSeReintenta(t *testing.T) {
	f := newFixture(t)
	f.store.FailNext(memory.OpCommit, fmt.Errorf("serialización: %w", domain.ErrConflict))
	f.store.FailNext(memory.OpCommit, fmt.Errorf("deadlock: %w", domain.ErrConflict))

	res := f.record(t, entity.MovementTypeIn, "5", "retry")
	assert.False(t, res.Replayed)
	assert.True(t, f.balance(t, warehouseID).Equal(d("5")))
	assert.Len(t, f.ledgerRows(t, warehouseID), 1)
}

func TestRecordMovement_ReintentosAgotados(t *testing.T) {
	f := newFixture(t, withOptions(appinventory.LedgerOptions{MaxRetries: 2, RetryBackoff: time.Millisecond}))
	for i := 0; i < 3; i++ {
		f.store.FailNext(memory.OpCommit, domain.ErrConflict)
	}
	_, err := f.ledger.RecordMovement(context.Background(), cmd(entity.MovementTypeIn, "5", "retry"))
	require.ErrorIs(t, err, domain.ErrConflict)
	assert.Empty(t, f.ledgerRows(t, warehouseID))
}

func TestRecordMovement_FalloDeUpsertNoDejaMovimiento(t *testing.T) {
	f := newFixture(t)
	f.record(t, entity.MovementTypeIn, "10", "base")
	f.store.FailNext(memory.OpStockUpsert, fmt.Errorf("disco lleno: %w", domain.ErrStorage))

	_, err := f.ledger.RecordMovement(context.Background(), cmd(entity.MovementTypeOut, "4", "fails"))
	require.ErrorIs(t, err, domain.ErrStorage)
	assert.True(t, f.balance(t, warehouseID).Equal(d("10")))
	assert.Len(t, f.ledgerRows(t, warehouseID), 1, "ni ledger ni saldo cambian")

	// El mismo envío se puede reintentar y se aplica normalmente.
	res := f.record(t, entity.MovementTypeOut, "4", "fails")
	assert.False(t, res.Replayed)
	assert.True(t, res.Balance.Quantity.Equal(d("6")))
}

func TestRecordMovement_FalloDeLedgerNoTocaSaldo(t *testing.T) {
	f := newFixture(t)
	f.store.FailNext(memory.OpMovementCreate, domain.ErrStorage)
	_, err := f.ledger.RecordMovement(context.Background(), cmd(entity.MovementTypeIn, "10", "x"))
	require.ErrorIs(t, err, domain.ErrStorage)
	assert.True(t, f.balance(t, warehouseID).IsZero())
}

func TestRecordMovement_ContextoCanceladoNoAplica(t *testing.T) {
	f := newFixture(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := f.ledger.RecordMovement(ctx, cmd(entity.MovementTypeIn, "10", "x"))
	require.Error(t, err)
	assert.Empty(t, f.ledgerRows(t, warehouseID))
}

// ──────────────────────────────────────────────────────────────────────────────
// Logs
// ──────────────────────────────────────────────────────────────────────────────

func TestRecordMovement_RecorteSeRegistraComoWarning(t *testing.T) {
	var buf bytes.Buffer
	f := newFixture(t, withLogger(logger.NewWithWriter(&buf, "debug")))
	f.record(t, entity.MovementTypeIn, "5", "a")
	buf.Reset()

	f.record(t, entity.MovementTypeOut, "8", "b")
	out := buf.String()
	assert.Contains(t, out, `"level":"warn"`)
	assert.Contains(t, out, `"idempotency_key":"b"`)
}

func TestListMovements_FiltrosYLimites(t *testing.T) {
	f := newFixture(t)
	f.record(t, entity.MovementTypeIn, "5", "a")
	f.record(t, entity.MovementTypeOut, "1", "b")

	list, err := f.ledger.ListMovements(context.Background(), repository.MovementFilter{TenantID: tenantID, Type: entity.MovementTypeOut})
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "b", list[0].IdempotencyKey)

	_, err = f.ledger.ListMovements(context.Background(), repository.MovementFilter{TenantID: tenantID, Type: "transfer"})
	require.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = f.ledger.ListMovements(context.Background(), repository.MovementFilter{})
	require.ErrorIs(t, err, domain.ErrUnauthorized)
}
