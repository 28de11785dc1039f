package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"github.com/vfg2006/ads-analytics-api/internal/config"
)

// RedisCache implementa StatusCache sobre Redis
type RedisCache struct {
	client *redis.Client
}

// NewRedisCache conecta ao Redis configurado. O ping inicial é apenas
// diagnóstico: mesmo sem conexão o cache continua utilizável como um
// cache que sempre falha (e portanto sempre reporta miss).
func NewRedisCache(ctx context.Context, cfg config.Redis) (*RedisCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("erro ao conectar ao Redis: %w", err)
	}

	logrus.WithFields(logrus.Fields{
		"addr": cfg.Addr,
		"db":   cfg.DB,
	}).Info("Conexão com Redis estabelecida com sucesso")

	return &RedisCache{client: client}, nil
}

func (c *RedisCache) Get(ctx context.Context, key string) ([]byte, bool) {
	value, err := c.client.Get(ctx, key).Bytes()
	if err == redis.Nil {
		return nil, false
	}
	if err != nil {
		// Falha de leitura vira miss; o chamador segue para a sondagem
		logrus.WithError(err).WithField("key", key).Warn("cache: falha ao ler do Redis, tratando como miss")
		return nil, false
	}

	return value, true
}

func (c *RedisCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) {
	if err := c.client.Set(ctx, key, value, ttl).Err(); err != nil {
		logrus.WithError(err).WithField("key", key).Warn("cache: falha ao gravar no Redis, resultado não cacheado")
	}
}

// Close encerra a conexão com o Redis
func (c *RedisCache) Close() error {
	return c.client.Close()
}
