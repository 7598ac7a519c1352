package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/stock-ledger-api/internal/domain/entity"
	"github.com/jhoicas/stock-ledger-api/internal/domain/repository"
)

var _ repository.StockMovementRepository = (*StockMovementRepo)(nil)

var movementColumns = []string{
	"id", "tenant_id", "product_id", "warehouse_id", "movement_type", "quantity",
	"reference_no", "notes", "idempotency_key", "fingerprint",
	"balance_before", "balance_after", "clamped", "created_by", "created_at",
}

type movementRow struct {
	ID             string          `db:"id"`
	TenantID       string          `db:"tenant_id"`
	ProductID      string          `db:"product_id"`
	WarehouseID    string          `db:"warehouse_id"`
	Type           string          `db:"movement_type"`
	Quantity       decimal.Decimal `db:"quantity"`
	ReferenceNo    string          `db:"reference_no"`
	Notes          string          `db:"notes"`
	IdempotencyKey string          `db:"idempotency_key"`
	Fingerprint    string          `db:"fingerprint"`
	BalanceBefore  decimal.Decimal `db:"balance_before"`
	BalanceAfter   decimal.Decimal `db:"balance_after"`
	Clamped        bool            `db:"clamped"`
	CreatedBy      *string         `db:"created_by"`
	CreatedAt      time.Time       `db:"created_at"`
}

func (r movementRow) toEntity() *entity.StockMovement {
	m := &entity.StockMovement{
		ID:             r.ID,
		TenantID:       r.TenantID,
		ProductID:      r.ProductID,
		WarehouseID:    r.WarehouseID,
		Type:           entity.MovementType(r.Type),
		Quantity:       r.Quantity,
		ReferenceNo:    r.ReferenceNo,
		Notes:          r.Notes,
		IdempotencyKey: r.IdempotencyKey,
		Fingerprint:    r.Fingerprint,
		BalanceBefore:  r.BalanceBefore,
		BalanceAfter:   r.BalanceAfter,
		Clamped:        r.Clamped,
		CreatedAt:      r.CreatedAt,
	}
	if r.CreatedBy != nil {
		m.CreatedBy = *r.CreatedBy
	}
	return m
}

// StockMovementRepo ledger append-only sobre PostgreSQL (usable con pool o tx).
// UNIQUE (tenant_id, idempotency_key) respalda la idempotencia.
type StockMovementRepo struct {
	q Querier
}

// NewStockMovementRepository construye el adaptador. Pasar pool o tx (Querier).
func NewStockMovementRepository(q Querier) *StockMovementRepo {
	return &StockMovementRepo{q: q}
}

// Create agrega un movimiento al ledger.
func (r *StockMovementRepo) Create(ctx context.Context, m *entity.StockMovement) error {
	createdBy := (*string)(nil)
	if m.CreatedBy != "" {
		createdBy = &m.CreatedBy
	}
	sql, args, err := psql.Insert("stock_movements").
		Columns(movementColumns...).
		Values(
			m.ID, m.TenantID, m.ProductID, m.WarehouseID, string(m.Type), m.Quantity,
			m.ReferenceNo, m.Notes, m.IdempotencyKey, m.Fingerprint,
			m.BalanceBefore, m.BalanceAfter, m.Clamped, createdBy, m.CreatedAt,
		).
		ToSql()
	if err != nil {
		return fmt.Errorf("build create movement: %w", err)
	}
	if _, err := r.q.Exec(ctx, sql, args...); err != nil {
		return classify("create movement", err)
	}
	return nil
}

// GetByIdempotencyKey devuelve nil, nil si la clave no fue usada en el tenant.
func (r *StockMovementRepo) GetByIdempotencyKey(ctx context.Context, tenantID, key string) (*entity.StockMovement, error) {
	sql, args, err := psql.Select(movementColumns...).From("stock_movements").
		Where(squirrel.Eq{"tenant_id": tenantID, "idempotency_key": key}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build get movement by key: %w", err)
	}
	var row movementRow
	if err := pgxscan.Get(ctx, r.q, &row, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, nil
		}
		return nil, classify("get movement by key", err)
	}
	return row.toEntity(), nil
}

// ListByKey movimientos de un saldo en orden de aplicación.
func (r *StockMovementRepo) ListByKey(ctx context.Context, key entity.StockKey) ([]*entity.StockMovement, error) {
	return r.selectMovements(ctx, "list movements by key",
		psql.Select(movementColumns...).From("stock_movements").
			Where(whereKey(key)).
			OrderBy("created_at ASC", "id ASC"))
}

// ListKeys claves de saldo con al menos un movimiento.
func (r *StockMovementRepo) ListKeys(ctx context.Context, tenantID string) ([]entity.StockKey, error) {
	sql, args, err := psql.Select("tenant_id", "product_id", "warehouse_id").
		Distinct().
		From("stock_movements").
		Where(squirrel.Eq{"tenant_id": tenantID}).
		OrderBy("product_id", "warehouse_id").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list keys: %w", err)
	}
	var rows []struct {
		TenantID    string `db:"tenant_id"`
		ProductID   string `db:"product_id"`
		WarehouseID string `db:"warehouse_id"`
	}
	if err := pgxscan.Select(ctx, r.q, &rows, sql, args...); err != nil {
		return nil, classify("list keys", err)
	}
	keys := make([]entity.StockKey, 0, len(rows))
	for _, row := range rows {
		keys = append(keys, entity.StockKey{TenantID: row.TenantID, ProductID: row.ProductID, WarehouseID: row.WarehouseID})
	}
	return keys, nil
}

// List historial filtrado, más reciente primero.
func (r *StockMovementRepo) List(ctx context.Context, f repository.MovementFilter) ([]*entity.StockMovement, error) {
	q := psql.Select(movementColumns...).From("stock_movements").
		Where(squirrel.Eq{"tenant_id": f.TenantID})
	if f.ProductID != "" {
		q = q.Where(squirrel.Eq{"product_id": f.ProductID})
	}
	if f.WarehouseID != "" {
		q = q.Where(squirrel.Eq{"warehouse_id": f.WarehouseID})
	}
	if f.Type != "" {
		q = q.Where(squirrel.Eq{"movement_type": string(f.Type)})
	}
	if f.From != nil {
		q = q.Where(squirrel.GtOrEq{"created_at": *f.From})
	}
	if f.To != nil {
		q = q.Where(squirrel.Lt{"created_at": *f.To})
	}
	q = q.OrderBy("created_at DESC", "id DESC")
	if f.Limit > 0 {
		q = q.Limit(uint64(f.Limit))
	}
	if f.Offset > 0 {
		q = q.Offset(uint64(f.Offset))
	}
	return r.selectMovements(ctx, "list movements", q)
}

func (r *StockMovementRepo) selectMovements(ctx context.Context, op string, q squirrel.SelectBuilder) ([]*entity.StockMovement, error) {
	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build %s: %w", op, err)
	}
	var rows []movementRow
	if err := pgxscan.Select(ctx, r.q, &rows, sql, args...); err != nil {
		return nil, classify(op, err)
	}
	out := make([]*entity.StockMovement, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toEntity())
	}
	return out, nil
}
