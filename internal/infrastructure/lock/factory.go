package lock

import (
	"context"
	"fmt"

	"github.com/jhoicas/stock-ledger-api/pkg/config"
	"github.com/jhoicas/stock-ledger-api/pkg/logger"
)

// Locker sección exclusiva por clave; unlock libera y es seguro llamarlo más de una vez.
type Locker interface {
	Lock(ctx context.Context, key string) (unlock func(), err error)
}

// FromConfig elige el backend según LOCK_BACKEND. closeFn libera las conexiones abiertas.
func FromConfig(ctx context.Context, cfg *config.Config, log *logger.Logger) (Locker, func(), error) {
	switch cfg.Lock.Backend {
	case config.LockBackendRedis:
		rdb, err := Connect(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			return nil, nil, err
		}
		locker := NewRedis(rdb, RedisOptions{TTL: cfg.Lock.TTL, Timeout: cfg.Ledger.LockTimeout}, log)
		return locker, func() { _ = rdb.Close() }, nil
	case config.LockBackendLocal, "":
		return NewLocal(cfg.Ledger.LockTimeout), func() {}, nil
	default:
		return nil, nil, fmt.Errorf("lock: backend %q no soportado", cfg.Lock.Backend)
	}
}
