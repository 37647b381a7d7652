// Package redislock coordina el barrido diario de cuarentena entre réplicas de la API.
// Solo la réplica que obtiene la llave del día ejecuta el barrido.
package redislock

import (
	"context"
	"fmt"
	"time"

	"github.com/jhoicas/bebidas-api/pkg/config"
	"github.com/redis/go-redis/v9"
)

const keyPrefix = "bebidas:quarantine-sweep:"

// Locker adquiere la llave del barrido de un día. Con client nil siempre concede (instancia única).
type Locker struct {
	client *redis.Client
	owner  string
	ttl    time.Duration
}

// NewClient crea el cliente Redis y verifica la conexión. Devuelve nil, nil si no hay REDIS_ADDR.
func NewClient(ctx context.Context, cfg config.RedisConfig) (*redis.Client, error) {
	if cfg.Addr == "" {
		return nil, nil
	}
	client := redis.NewClient(&redis.Options{
		Addr:         cfg.Addr,
		Password:     cfg.Password,
		DB:           cfg.DB,
		DialTimeout:  3 * time.Second,
		ReadTimeout:  2 * time.Second,
		WriteTimeout: 2 * time.Second,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("conexión Redis: %w", err)
	}
	return client, nil
}

// New construye el locker. owner identifica a la réplica (se guarda como valor de la llave).
func New(client *redis.Client, owner string, ttl time.Duration) *Locker {
	if ttl <= 0 {
		ttl = 23 * time.Hour
	}
	return &Locker{client: client, owner: owner, ttl: ttl}
}

// Key llave del barrido para la fecha civil dada.
func Key(day time.Time) string {
	return keyPrefix + day.Format("2006-01-02")
}

// TryAcquire intenta tomar la llave del día con SET NX. false si otra réplica ya la tiene.
// La llave no se libera: expira sola, así un reinicio el mismo día no repite el barrido.
func (l *Locker) TryAcquire(ctx context.Context, day time.Time) (bool, error) {
	if l == nil || l.client == nil {
		return true, nil
	}
	ok, err := l.client.SetNX(ctx, Key(day), l.owner, l.ttl).Result()
	if err != nil {
		return false, fmt.Errorf("redis setnx %s: %w", Key(day), err)
	}
	return ok, nil
}

// Holder réplica que tomó la llave del día, "" si nadie.
func (l *Locker) Holder(ctx context.Context, day time.Time) (string, error) {
	if l == nil || l.client == nil {
		return "", nil
	}
	v, err := l.client.Get(ctx, Key(day)).Result()
	if err == redis.Nil {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("redis get %s: %w", Key(day), err)
	}
	return v, nil
}
