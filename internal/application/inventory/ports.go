package inventory

import (
	"context"

	"github.com/jhoicas/stock-ledger-api/internal/domain/repository"
)

// TxRunner ejecuta una función dentro de una transacción de BD, pasando repositorios atados a esa tx.
// Si fn devuelve error no persiste nada: el append al ledger y el upsert del saldo son una sola unidad.
type TxRunner interface {
	Run(ctx context.Context, fn func(
		movRepo repository.StockMovementRepository,
		stockRepo repository.StockRepository,
	) error) error
}

// KeyLocker provee la sección exclusiva por clave de saldo.
// Lock espera como máximo el timeout configurado en la implementación y devuelve
// un error que envuelve domain.ErrConflict si no lo obtiene.
type KeyLocker interface {
	Lock(ctx context.Context, key string) (unlock func(), err error)
}
