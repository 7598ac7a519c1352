package repository

import (
	"context"

	"github.com/jhoicas/stock-ledger-api/internal/domain/entity"
)

// CategoryRepository define el puerto de persistencia para Category (DIP).
type CategoryRepository interface {
	Create(ctx context.Context, category *entity.Category) error
	GetByID(ctx context.Context, tenantID, id string) (*entity.Category, error)
	Update(ctx context.Context, category *entity.Category) error
	ListByTenant(ctx context.Context, tenantID string, limit, offset int) ([]*entity.Category, error)
	// Delete elimina la categoría; los productos quedan sin categoría.
	Delete(ctx context.Context, tenantID, id string) error
}
