package cache

import (
	"context"
	"time"
)

// StatusCache é um cache chave-valor com TTL usado para segurar os
// resultados das verificações de conexão. O cache é uma otimização sobre
// sondagens a APIs com rate limit, nunca uma dependência de correção:
// toda operação é best-effort e falhas são tratadas como cache miss.
type StatusCache interface {
	// Get devolve o valor e true em caso de hit; qualquer falha do
	// backend é reportada como miss
	Get(ctx context.Context, key string) ([]byte, bool)
	// Set grava com TTL; escritas concorrentes na mesma chave resolvem
	// por last-write-wins e falhas são engolidas
	Set(ctx context.Context, key string, value []byte, ttl time.Duration)
}

// NoopCache é a variante desabilitada, usada quando não há Redis
// configurado: todo Get é miss e todo Set é descartado
type NoopCache struct{}

func NewNoopCache() *NoopCache {
	return &NoopCache{}
}

func (NoopCache) Get(ctx context.Context, key string) ([]byte, bool) {
	return nil, false
}

func (NoopCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) {}
