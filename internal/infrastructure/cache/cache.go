// Package cache provee un cliente de cache con dos backends:
//   - memory (in-process, go-cache), para desarrollo y tests
//   - redis, compartido entre réplicas
package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jhoicas/storehub-api/pkg/config"
)

// Client define las operaciones de cache.
type Client interface {
	// Get obtiene un valor. Retorna ErrNotFound si no existe o expiró.
	Get(ctx context.Context, key string) (string, error)
	// Set guarda un valor; ttl 0 significa sin expiración.
	Set(ctx context.Context, key, value string, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Ping(ctx context.Context) error
	Close() error
}

// ErrNotFound la key no existe.
var ErrNotFound = errors.New("cache: key not found")

// New crea un cliente según cfg.Driver.
func New(cfg config.CacheConfig) (Client, error) {
	switch cfg.Driver {
	case "redis":
		return NewRedis(cfg)
	case "memory", "":
		return NewMemory(cfg.Prefix), nil
	default:
		return nil, fmt.Errorf("cache: driver desconocido %q", cfg.Driver)
	}
}

func prefixed(prefix, key string) string {
	if prefix == "" {
		return key
	}
	return prefix + ":" + key
}
