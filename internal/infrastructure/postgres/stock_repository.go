package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/stock-ledger-api/internal/domain"
	"github.com/jhoicas/stock-ledger-api/internal/domain/entity"
	"github.com/jhoicas/stock-ledger-api/internal/domain/repository"
)

var _ repository.StockRepository = (*StockRepo)(nil)

var stockColumns = []string{"tenant_id", "product_id", "warehouse_id", "quantity", "version", "last_updated"}

type stockRow struct {
	TenantID    string          `db:"tenant_id"`
	ProductID   string          `db:"product_id"`
	WarehouseID string          `db:"warehouse_id"`
	Quantity    decimal.Decimal `db:"quantity"`
	Version     int64           `db:"version"`
	LastUpdated *time.Time      `db:"last_updated"`
}

func (r stockRow) toEntity() *entity.Stock {
	s := &entity.Stock{
		TenantID:    r.TenantID,
		ProductID:   r.ProductID,
		WarehouseID: r.WarehouseID,
		Quantity:    r.Quantity,
		Version:     r.Version,
	}
	if r.LastUpdated != nil {
		s.LastUpdated = *r.LastUpdated
	}
	return s
}

// StockRepo implementación del Balance Store sobre PostgreSQL (usable con pool o tx).
// La tabla stock tiene UNIQUE (tenant_id, product_id, warehouse_id).
type StockRepo struct {
	q Querier
}

// NewStockRepository construye el adaptador de stock. Pasar pool o tx (Querier).
func NewStockRepository(q Querier) *StockRepo {
	return &StockRepo{q: q}
}

func whereKey(key entity.StockKey) squirrel.Eq {
	return squirrel.Eq{
		"tenant_id":    key.TenantID,
		"product_id":   key.ProductID,
		"warehouse_id": key.WarehouseID,
	}
}

// Get obtiene el saldo de la clave; saldo en cero si no hay fila.
func (r *StockRepo) Get(ctx context.Context, key entity.StockKey) (*entity.Stock, error) {
	sql, args, err := psql.Select(stockColumns...).From("stock").Where(whereKey(key)).ToSql()
	if err != nil {
		return nil, fmt.Errorf("build get stock: %w", err)
	}
	var row stockRow
	if err := pgxscan.Get(ctx, r.q, &row, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return entity.EmptyStock(key), nil
		}
		return nil, classify("get stock", err)
	}
	return row.toEntity(), nil
}

// GetForUpdate asegura que la fila exista (en cero, versión 0) y la bloquea hasta el fin de la tx.
// Solo tiene sentido dentro de TxRunner.Run.
func (r *StockRepo) GetForUpdate(ctx context.Context, key entity.StockKey) (*entity.Stock, error) {
	insert, args, err := psql.Insert("stock").
		Columns("tenant_id", "product_id", "warehouse_id", "quantity", "version").
		Values(key.TenantID, key.ProductID, key.WarehouseID, decimal.Zero, 0).
		Suffix("ON CONFLICT (tenant_id, product_id, warehouse_id) DO NOTHING").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build ensure stock: %w", err)
	}
	if _, err := r.q.Exec(ctx, insert, args...); err != nil {
		return nil, classify("ensure stock", err)
	}

	sql, args, err := psql.Select(stockColumns...).From("stock").Where(whereKey(key)).Suffix("FOR UPDATE").ToSql()
	if err != nil {
		return nil, fmt.Errorf("build lock stock: %w", err)
	}
	var row stockRow
	if err := pgxscan.Get(ctx, r.q, &row, sql, args...); err != nil {
		return nil, classify("lock stock", err)
	}
	return row.toEntity(), nil
}

// Upsert escribe el saldo solo si la versión almacenada es stock.Version-1; si no, ErrConflict.
func (r *StockRepo) Upsert(ctx context.Context, stock *entity.Stock) error {
	if stock.Quantity.IsNegative() {
		return fmt.Errorf("upsert stock %s: %w: cantidad negativa", stock.Key(), domain.ErrStorage)
	}
	sql, args, err := psql.Insert("stock").
		Columns(stockColumns...).
		Values(stock.TenantID, stock.ProductID, stock.WarehouseID, stock.Quantity, stock.Version, nullTime(stock.LastUpdated)).
		Suffix(`ON CONFLICT (tenant_id, product_id, warehouse_id) DO UPDATE
			SET quantity = EXCLUDED.quantity, version = EXCLUDED.version, last_updated = EXCLUDED.last_updated
			WHERE stock.version = EXCLUDED.version - 1`).
		ToSql()
	if err != nil {
		return fmt.Errorf("build upsert stock: %w", err)
	}
	tag, err := r.q.Exec(ctx, sql, args...)
	if err != nil {
		return classify("upsert stock", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("upsert stock %s: versión %d obsoleta: %w", stock.Key(), stock.Version, domain.ErrConflict)
	}
	return nil
}

// ListByProduct filas de saldo del producto, ordenadas por bodega.
func (r *StockRepo) ListByProduct(ctx context.Context, tenantID, productID string) ([]*entity.Stock, error) {
	return r.list(ctx, "list stock by product",
		psql.Select(stockColumns...).From("stock").
			Where(squirrel.Eq{"tenant_id": tenantID, "product_id": productID}).
			OrderBy("warehouse_id"))
}

// ListByTenant todas las filas del tenant, por producto y bodega.
func (r *StockRepo) ListByTenant(ctx context.Context, tenantID string) ([]*entity.Stock, error) {
	return r.list(ctx, "list stock by tenant",
		psql.Select(stockColumns...).From("stock").
			Where(squirrel.Eq{"tenant_id": tenantID}).
			OrderBy("product_id", "warehouse_id"))
}

func (r *StockRepo) list(ctx context.Context, op string, q squirrel.SelectBuilder) ([]*entity.Stock, error) {
	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build %s: %w", op, err)
	}
	var rows []stockRow
	if err := pgxscan.Select(ctx, r.q, &rows, sql, args...); err != nil {
		return nil, classify(op, err)
	}
	out := make([]*entity.Stock, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toEntity())
	}
	return out, nil
}

// nullTime convierte el instante cero en NULL.
func nullTime(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	return &t
}
