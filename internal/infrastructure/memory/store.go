// Package memory implementa los puertos de persistencia en memoria, con la misma semántica
// transaccional que Postgres: escrituras en staging, commit todo-o-nada, CAS de versión en los
// saldos y unicidad de la clave de idempotencia. Se usa en tests y en modo local sin base de datos.
package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/jhoicas/stock-ledger-api/internal/domain"
	"github.com/jhoicas/stock-ledger-api/internal/domain/entity"
	"github.com/jhoicas/stock-ledger-api/internal/domain/repository"
)

// Operaciones donde se puede inyectar un fallo con FailNext.
const (
	OpMovementCreate = "movement.create"
	OpStockUpsert    = "stock.upsert"
	OpStockGet       = "stock.get"
	OpCommit         = "commit"
	OpReportCounters = "report.counters"
)

// Store almacén compartido por todos los repositorios en memoria.
type Store struct {
	mu         sync.RWMutex
	products   map[string]*entity.Product
	warehouses map[string]*entity.Warehouse
	categories map[string]*entity.Category
	stock      map[entity.StockKey]*entity.Stock
	movements  []*entity.StockMovement
	idemKeys   map[string]*entity.StockMovement

	failMu   sync.Mutex
	failures map[string][]error
}

// NewStore crea un almacén vacío.
func NewStore() *Store {
	return &Store{
		products:   make(map[string]*entity.Product),
		warehouses: make(map[string]*entity.Warehouse),
		categories: make(map[string]*entity.Category),
		stock:      make(map[entity.StockKey]*entity.Stock),
		idemKeys:   make(map[string]*entity.StockMovement),
		failures:   make(map[string][]error),
	}
}

// FailNext hace que la próxima llamada a op devuelva err. Se consume una vez.
func (s *Store) FailNext(op string, err error) {
	s.failMu.Lock()
	defer s.failMu.Unlock()
	s.failures[op] = append(s.failures[op], err)
}

func (s *Store) injected(op string) error {
	s.failMu.Lock()
	defer s.failMu.Unlock()
	q := s.failures[op]
	if len(q) == 0 {
		return nil
	}
	err := q[0]
	s.failures[op] = q[1:]
	return err
}

// OverwriteStock escribe un saldo sin CAS ni ledger. Solo para simular corrupción en tests.
func (s *Store) OverwriteStock(st *entity.Stock) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *st
	s.stock[st.Key()] = &cp
}

// Repositorios fuera de transacción (auto-commit).

func (s *Store) ProductRepo() repository.ProductRepository        { return &productRepo{s: s} }
func (s *Store) WarehouseRepo() repository.WarehouseRepository    { return &warehouseRepo{s: s} }
func (s *Store) CategoryRepo() repository.CategoryRepository      { return &categoryRepo{s: s} }
func (s *Store) StockRepo() repository.StockRepository            { return &stockRepo{s: s} }
func (s *Store) MovementRepo() repository.StockMovementRepository { return &movementRepo{s: s} }
func (s *Store) ReportRepo() repository.ReportRepository          { return &reportRepo{s: s} }

// TxRunner ejecuta fn con repositorios de ledger y saldo atados a una transacción en memoria.
type TxRunner struct {
	s *Store
}

// TxRunner devuelve el runner transaccional del almacén.
func (s *Store) TxRunner() *TxRunner { return &TxRunner{s: s} }

// Run aplica las escrituras de fn solo si fn termina sin error y el commit valida.
func (r *TxRunner) Run(ctx context.Context, fn func(
	movRepo repository.StockMovementRepository,
	stockRepo repository.StockRepository,
) error) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("tx: %w: %w", domain.ErrConflict, err)
	}
	t := &tx{stock: make(map[entity.StockKey]*entity.Stock)}
	if err := fn(&movementRepo{s: r.s, tx: t}, &stockRepo{s: r.s, tx: t}); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("tx: %w: %w", domain.ErrConflict, err)
	}
	return r.s.commit(t)
}

// tx escrituras pendientes de una transacción.
type tx struct {
	movements []*entity.StockMovement
	stock     map[entity.StockKey]*entity.Stock
}

func idemIndex(tenantID, key string) string { return tenantID + "\x00" + key }

// commit valida unicidad y versiones y publica todo o nada.
func (s *Store) commit(t *tx) error {
	if err := s.injected(OpCommit); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, m := range t.movements {
		if _, ok := s.idemKeys[idemIndex(m.TenantID, m.IdempotencyKey)]; ok {
			return fmt.Errorf("commit: %w: idempotency_key %s", domain.ErrDuplicate, m.IdempotencyKey)
		}
	}
	for k, st := range t.stock {
		if err := s.checkVersionLocked(k, st); err != nil {
			return err
		}
	}
	for _, m := range t.movements {
		s.appendMovementLocked(m)
	}
	for k, st := range t.stock {
		cp := *st
		s.stock[k] = &cp
	}
	return nil
}

func (s *Store) checkVersionLocked(k entity.StockKey, st *entity.Stock) error {
	if st.Quantity.IsNegative() {
		return fmt.Errorf("stock %s: %w: cantidad negativa", k, domain.ErrStorage)
	}
	var stored int64
	if cur, ok := s.stock[k]; ok {
		stored = cur.Version
	}
	if stored != st.Version-1 {
		return fmt.Errorf("stock %s: %w: versión %d, se esperaba %d", k, domain.ErrConflict, stored, st.Version-1)
	}
	return nil
}

func (s *Store) appendMovementLocked(m *entity.StockMovement) {
	cp := *m
	s.movements = append(s.movements, &cp)
	s.idemKeys[idemIndex(m.TenantID, m.IdempotencyKey)] = &cp
}
