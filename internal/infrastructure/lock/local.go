// Package lock implementa la sección exclusiva por clave de saldo: en proceso (Local) o
// distribuida sobre Redis (Redis) cuando hay varias instancias de la API.
package lock

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/jhoicas/stock-ledger-api/internal/domain"
)

// Local lock por clave dentro del proceso. Claves distintas no compiten entre sí.
type Local struct {
	mu      sync.Mutex
	entries map[string]*entry
	timeout time.Duration
}

type entry struct {
	sem  chan struct{}
	refs int
}

// NewLocal crea el lock. timeout acota la espera; 0 espera hasta que se cancele el contexto.
func NewLocal(timeout time.Duration) *Local {
	return &Local{entries: make(map[string]*entry), timeout: timeout}
}

// Lock toma la sección de key. Devuelve un error que envuelve domain.ErrConflict si vence la espera.
func (l *Local) Lock(ctx context.Context, key string) (func(), error) {
	e := l.acquireEntry(key)

	if l.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, l.timeout)
		defer cancel()
	}
	select {
	case e.sem <- struct{}{}:
	case <-ctx.Done():
		l.releaseEntry(key, e)
		return nil, fmt.Errorf("lock %s: %w: %w", key, domain.ErrConflict, ctx.Err())
	}

	var once sync.Once
	return func() {
		once.Do(func() {
			<-e.sem
			l.releaseEntry(key, e)
		})
	}, nil
}

func (l *Local) acquireEntry(key string) *entry {
	l.mu.Lock()
	defer l.mu.Unlock()
	e, ok := l.entries[key]
	if !ok {
		e = &entry{sem: make(chan struct{}, 1)}
		l.entries[key] = e
	}
	e.refs++
	return e
}

func (l *Local) releaseEntry(key string, e *entry) {
	l.mu.Lock()
	defer l.mu.Unlock()
	e.refs--
	if e.refs == 0 {
		delete(l.entries, key)
	}
}
