package cache_test

import (
	"context"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Reportes-api/internal/infrastructure/cache"
	"github.com/jhoicas/Reportes-api/pkg/config"
)

func TestNoopReportCache_NuncaEncuentra(t *testing.T) {
	c := cache.NoopReportCache{}
	require.NoError(t, c.Set(context.Background(), "reports:sales:x", []byte(`[]`), time.Minute))

	payload, ok, err := c.Get(context.Background(), "reports:sales:x")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Nil(t, payload)
}

// Sin servidor escuchando, los errores de Redis se propagan envueltos para que el
// caso de uso los registre y recalcule.
func TestRedisReportCache_ServidorInaccesible(t *testing.T) {
	client := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 100 * time.Millisecond,
		MaxRetries:  -1,
	})
	c := cache.NewRedisReportCacheWithClient(client)
	defer c.Close()

	_, ok, err := c.Get(context.Background(), "reports:sales:x")
	assert.False(t, ok)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "reports:sales:x")

	err = c.Set(context.Background(), "reports:sales:x", []byte(`[]`), time.Minute)
	assert.Error(t, err)
}

func TestNewRedisReportCache_FallaSinServidor(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	_, err := cache.NewRedisReportCache(ctx, config.RedisConfig{Addr: "127.0.0.1:1"})
	assert.Error(t, err)
}
