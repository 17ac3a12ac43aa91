package redis

import (
	"context"
	"errors"
	"time"

	"github.com/bsm/redislock"
	"github.com/jhoicas/hospitality-ops/internal/application/stats"
)

var _ stats.Locker = (*Locker)(nil)

// Locker serializa el recálculo de estadísticas por departamento entre instancias.
type Locker struct {
	client  *redislock.Client
	backoff time.Duration
	retries int
}

// NewLocker envuelve un cliente redislock. Obtain reintenta hasta retries veces con espera
// lineal de base backoff; retries <= 0 hace un solo intento.
func NewLocker(client *redislock.Client, backoff time.Duration, retries int) *Locker {
	return &Locker{client: client, backoff: backoff, retries: retries}
}

// Obtain toma el lock; si sigue tomado al agotar los reintentos devuelve stats.ErrNotObtained.
func (l *Locker) Obtain(ctx context.Context, key string, ttl time.Duration) (func(context.Context) error, error) {
	lock, err := l.client.Obtain(ctx, key, ttl, lockOptions(l.backoff, l.retries))
	if err != nil {
		if errors.Is(err, redislock.ErrNotObtained) {
			return nil, stats.ErrNotObtained
		}
		return nil, err
	}
	return func(ctx context.Context) error {
		if err := lock.Release(ctx); err != nil && !errors.Is(err, redislock.ErrLockNotHeld) {
			return err
		}
		return nil
	}, nil
}

func lockOptions(backoff time.Duration, retries int) *redislock.Options {
	if retries <= 0 || backoff <= 0 {
		return &redislock.Options{RetryStrategy: redislock.NoRetry()}
	}
	return &redislock.Options{
		RetryStrategy: redislock.LimitRetry(redislock.LinearBackoff(backoff), retries),
	}
}
