package repository

import (
	"context"

	"github.com/jhoicas/stock-ledger-api/internal/domain/entity"
)

// StockRepository define el puerto del Balance Store: lectura y upsert por clave compuesta.
// El almacenamiento garantiza una sola fila por (tenant, producto, bodega).
type StockRepository interface {
	// Get devuelve el saldo de la clave, o un saldo en cero (Version 0) si no hay fila.
	Get(ctx context.Context, key entity.StockKey) (*entity.Stock, error)
	// GetForUpdate crea la fila en cero si no existe y la bloquea hasta el fin de la transacción.
	GetForUpdate(ctx context.Context, key entity.StockKey) (*entity.Stock, error)
	// Upsert escribe el saldo. Falla con ErrConflict si la versión almacenada no es stock.Version-1.
	Upsert(ctx context.Context, stock *entity.Stock) error
	ListByProduct(ctx context.Context, tenantID, productID string) ([]*entity.Stock, error)
	ListByTenant(ctx context.Context, tenantID string) ([]*entity.Stock, error)
}
