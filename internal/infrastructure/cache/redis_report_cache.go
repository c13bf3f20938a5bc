// Package cache implementa la caché de reportes del caso de uso (reports.ReportCache).
package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/jhoicas/Reportes-api/internal/application/reports"
	"github.com/jhoicas/Reportes-api/pkg/config"
)

var _ reports.ReportCache = (*RedisReportCache)(nil)

// RedisReportCache guarda el JSON de cada reporte con expiración. Las claves ya llegan
// con el prefijo "reports:" desde el caso de uso.
type RedisReportCache struct {
	client *redis.Client
}

// NewRedisReportCache abre el cliente y verifica la conexión.
func NewRedisReportCache(ctx context.Context, cfg config.RedisConfig) (*RedisReportCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("cache: conectar a Redis %s: %w", cfg.Addr, err)
	}
	return &RedisReportCache{client: client}, nil
}

// NewRedisReportCacheWithClient usa un cliente ya creado (tests, cliente compartido).
func NewRedisReportCacheWithClient(client *redis.Client) *RedisReportCache {
	return &RedisReportCache{client: client}
}

func (c *RedisReportCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	payload, err := c.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("cache: leer %s: %w", key, err)
	}
	return payload, true, nil
}

func (c *RedisReportCache) Set(ctx context.Context, key string, payload []byte, ttl time.Duration) error {
	if err := c.client.Set(ctx, key, payload, ttl).Err(); err != nil {
		return fmt.Errorf("cache: escribir %s: %w", key, err)
	}
	return nil
}

// Close cierra el cliente Redis.
func (c *RedisReportCache) Close() error {
	return c.client.Close()
}
