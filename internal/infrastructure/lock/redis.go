package lock

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/bsm/redislock"
	"github.com/redis/go-redis/v9"

	"github.com/jhoicas/stock-ledger-api/internal/domain"
	"github.com/jhoicas/stock-ledger-api/pkg/logger"
)

const (
	redisKeyPrefix    = "stock-ledger:lock:"
	redisRetryBackoff = 25 * time.Millisecond
	redisReleaseWait  = 2 * time.Second
)

// RedisOptions configuración del lock distribuido.
type RedisOptions struct {
	// TTL del lock en Redis; debe superar la duración máxima de una transacción.
	TTL time.Duration
	// Timeout espera máxima para obtenerlo.
	Timeout time.Duration
}

// Redis lock por clave compartido entre instancias (bsm/redislock).
type Redis struct {
	client *redislock.Client
	opts   RedisOptions
	log    *logger.Logger
}

// NewRedis crea el lock sobre un cliente go-redis ya conectado.
func NewRedis(rdb *redis.Client, opts RedisOptions, log *logger.Logger) *Redis {
	if opts.TTL <= 0 {
		opts.TTL = 30 * time.Second
	}
	if log == nil {
		log = logger.Nop()
	}
	return &Redis{client: redislock.New(rdb), opts: opts, log: log.Named("redis_lock")}
}

// Lock obtiene la clave reintentando hasta Timeout. Si no la obtiene devuelve ErrConflict.
func (r *Redis) Lock(ctx context.Context, key string) (func(), error) {
	obtainCtx := ctx
	if r.opts.Timeout > 0 {
		var cancel context.CancelFunc
		obtainCtx, cancel = context.WithTimeout(ctx, r.opts.Timeout)
		defer cancel()
	}
	l, err := r.client.Obtain(obtainCtx, redisKeyPrefix+key, r.opts.TTL, &redislock.Options{
		RetryStrategy: redislock.LinearBackoff(redisRetryBackoff),
	})
	switch {
	case errors.Is(err, redislock.ErrNotObtained),
		errors.Is(err, context.DeadlineExceeded),
		errors.Is(err, context.Canceled):
		return nil, fmt.Errorf("lock %s: %w: %w", key, domain.ErrConflict, err)
	case err != nil:
		return nil, fmt.Errorf("lock %s: %w: %w", key, domain.ErrStorage, err)
	}

	return func() {
		// Se libera aunque el contexto de la petición ya esté cancelado.
		rctx, cancel := context.WithTimeout(context.Background(), redisReleaseWait)
		defer cancel()
		if err := l.Release(rctx); err != nil && !errors.Is(err, redislock.ErrLockNotHeld) {
			r.log.Warn().Err(err).Str("key", key).Msg("no se pudo liberar el lock en redis")
		}
	}, nil
}

// Connect abre el cliente de Redis y verifica la conexión.
func Connect(ctx context.Context, addr, password string, db int) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis %s: %w", addr, err)
	}
	return rdb, nil
}
