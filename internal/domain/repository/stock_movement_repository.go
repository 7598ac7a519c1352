package repository

import (
	"context"
	"time"

	"github.com/jhoicas/stock-ledger-api/internal/domain/entity"
)

// MovementFilter filtros para el historial de movimientos.
type MovementFilter struct {
	TenantID    string
	ProductID   string
	WarehouseID string
	Type        entity.MovementType
	From, To    *time.Time // intervalo [From, To)
	Limit       int
	Offset      int
}

// StockMovementRepository define el puerto del ledger. Solo inserta y lee: no hay update ni delete.
type StockMovementRepository interface {
	// Create agrega un movimiento. Devuelve ErrDuplicate si la clave de idempotencia ya existe en el tenant.
	Create(ctx context.Context, movement *entity.StockMovement) error
	// GetByIdempotencyKey devuelve nil, nil si la clave no fue usada.
	GetByIdempotencyKey(ctx context.Context, tenantID, key string) (*entity.StockMovement, error)
	// ListByKey devuelve los movimientos de un saldo en orden (created_at, id).
	ListByKey(ctx context.Context, key entity.StockKey) ([]*entity.StockMovement, error)
	// ListKeys devuelve las claves de saldo con al menos un movimiento.
	ListKeys(ctx context.Context, tenantID string) ([]entity.StockKey, error)
	List(ctx context.Context, filter MovementFilter) ([]*entity.StockMovement, error)
}
