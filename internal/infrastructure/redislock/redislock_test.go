package redislock

import (
	"context"
	"testing"
	"time"

	"github.com/jhoicas/bebidas-api/pkg/clock"
	"github.com/jhoicas/bebidas-api/pkg/config"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKey(t *testing.T) {
	assert.Equal(t, "bebidas:quarantine-sweep:2024-06-01", Key(clock.Date(2024, 6, 1)))
}

func TestTryAcquire_SinRedisSiempreConcede(t *testing.T) {
	l := New(nil, "api-1", 0)
	ok, err := l.TryAcquire(context.Background(), clock.Date(2024, 6, 1))
	require.NoError(t, err)
	assert.True(t, ok)

	holder, err := l.Holder(context.Background(), clock.Date(2024, 6, 1))
	require.NoError(t, err)
	assert.Empty(t, holder)
}

func TestNewClient_SinDireccion(t *testing.T) {
	client, err := NewClient(context.Background(), config.RedisConfig{})
	require.NoError(t, err)
	assert.Nil(t, client)
}

func TestTryAcquire_RedisInalcanzable(t *testing.T) {
	client := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 200 * time.Millisecond,
		MaxRetries:  -1,
	})
	defer client.Close()

	l := New(client, "api-1", time.Minute)
	ok, err := l.TryAcquire(context.Background(), clock.Date(2024, 6, 1))
	assert.Error(t, err)
	assert.False(t, ok)
}
