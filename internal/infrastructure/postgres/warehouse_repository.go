package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/stock-ledger-api/internal/domain"
	"github.com/jhoicas/stock-ledger-api/internal/domain/entity"
	"github.com/jhoicas/stock-ledger-api/internal/domain/repository"
)

var _ repository.WarehouseRepository = (*WarehouseRepo)(nil)

const warehouseColumns = `id, tenant_id, name, address, latitude, longitude, is_active, created_at, updated_at`

// WarehouseRepo implementación del puerto WarehouseRepository sobre PostgreSQL.
type WarehouseRepo struct {
	q Querier
}

// NewWarehouseRepository construye el adaptador de persistencia para bodegas.
func NewWarehouseRepository(q Querier) *WarehouseRepo {
	return &WarehouseRepo{q: q}
}

func scanWarehouse(row pgx.Row) (*entity.Warehouse, error) {
	var w entity.Warehouse
	if err := row.Scan(&w.ID, &w.TenantID, &w.Name, &w.Address, &w.Latitude, &w.Longitude,
		&w.IsActive, &w.CreatedAt, &w.UpdatedAt); err != nil {
		return nil, err
	}
	return &w, nil
}

// Create persiste una nueva bodega.
func (r *WarehouseRepo) Create(ctx context.Context, w *entity.Warehouse) error {
	query := `
		INSERT INTO warehouses (id, tenant_id, name, address, latitude, longitude, is_active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`
	_, err := r.q.Exec(ctx, query,
		w.ID, w.TenantID, w.Name, w.Address, w.Latitude, w.Longitude, w.IsActive, w.CreatedAt, w.UpdatedAt,
	)
	if err != nil {
		return classify("insert warehouse", err)
	}
	return nil
}

// GetByID obtiene una bodega del tenant; nil, nil si no existe.
func (r *WarehouseRepo) GetByID(ctx context.Context, tenantID, id string) (*entity.Warehouse, error) {
	query := `SELECT ` + warehouseColumns + ` FROM warehouses WHERE tenant_id = $1 AND id = $2`
	w, err := scanWarehouse(r.q.QueryRow(ctx, query, tenantID, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, classify("get warehouse", err)
	}
	return w, nil
}

// Update actualiza una bodega existente.
func (r *WarehouseRepo) Update(ctx context.Context, w *entity.Warehouse) error {
	query := `
		UPDATE warehouses SET name = $3, address = $4, latitude = $5, longitude = $6, is_active = $7, updated_at = $8
		WHERE tenant_id = $1 AND id = $2`
	cmd, err := r.q.Exec(ctx, query,
		w.TenantID, w.ID, w.Name, w.Address, w.Latitude, w.Longitude, w.IsActive, w.UpdatedAt,
	)
	if err != nil {
		return classify("update warehouse", err)
	}
	if cmd.RowsAffected() == 0 {
		return fmt.Errorf("update warehouse %s: %w", w.ID, domain.ErrNotFound)
	}
	return nil
}

// ListByTenant lista bodegas del tenant por nombre.
func (r *WarehouseRepo) ListByTenant(ctx context.Context, tenantID string, limit, offset int) ([]*entity.Warehouse, error) {
	if limit <= 0 {
		limit = 100
	}
	if offset < 0 {
		offset = 0
	}
	query := `SELECT ` + warehouseColumns + ` FROM warehouses WHERE tenant_id = $1 ORDER BY name, id LIMIT $2 OFFSET $3`
	rows, err := r.q.Query(ctx, query, tenantID, limit, offset)
	if err != nil {
		return nil, classify("list warehouses", err)
	}
	defer rows.Close()
	var list []*entity.Warehouse
	for rows.Next() {
		w, err := scanWarehouse(rows)
		if err != nil {
			return nil, fmt.Errorf("scan warehouse: %w", err)
		}
		list = append(list, w)
	}
	if err := rows.Err(); err != nil {
		return nil, classify("list warehouses", err)
	}
	return list, nil
}

// Deactivate marca la bodega como inactiva; sus saldos y movimientos se conservan.
func (r *WarehouseRepo) Deactivate(ctx context.Context, tenantID, id string) error {
	cmd, err := r.q.Exec(ctx,
		`UPDATE warehouses SET is_active = false, updated_at = now() WHERE tenant_id = $1 AND id = $2`,
		tenantID, id,
	)
	if err != nil {
		return classify("deactivate warehouse", err)
	}
	if cmd.RowsAffected() == 0 {
		return fmt.Errorf("deactivate warehouse %s: %w", id, domain.ErrNotFound)
	}
	return nil
}
