package cache_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/storehub-api/internal/domain/entity"
	"github.com/jhoicas/storehub-api/internal/infrastructure/cache"
	"github.com/jhoicas/storehub-api/internal/testutil"
	"github.com/jhoicas/storehub-api/pkg/config"
)

// failingClient cache que siempre falla (simula Redis caído).
type failingClient struct{}

var errDown = errors.New("redis: connection refused")

func (failingClient) Get(context.Context, string) (string, error)              { return "", errDown }
func (failingClient) Set(context.Context, string, string, time.Duration) error { return errDown }
func (failingClient) Delete(context.Context, string) error                     { return errDown }
func (failingClient) Ping(context.Context) error                               { return errDown }
func (failingClient) Close() error                                             { return nil }

func TestMemory_GetSetDelete(t *testing.T) {
	ctx := context.Background()
	c := cache.NewMemory("test")

	_, err := c.Get(ctx, "k")
	assert.ErrorIs(t, err, cache.ErrNotFound)

	require.NoError(t, c.Set(ctx, "k", "v", 0))
	v, err := c.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "v", v)

	require.NoError(t, c.Delete(ctx, "k"))
	_, err = c.Get(ctx, "k")
	assert.ErrorIs(t, err, cache.ErrNotFound)
}

func TestMemory_Expira(t *testing.T) {
	ctx := context.Background()
	c := cache.NewMemory("")
	require.NoError(t, c.Set(ctx, "k", "v", 20*time.Millisecond))
	time.Sleep(40 * time.Millisecond)
	_, err := c.Get(ctx, "k")
	assert.ErrorIs(t, err, cache.ErrNotFound)
}

func TestNew_DriverDesconocido(t *testing.T) {
	_, err := cache.New(config.CacheConfig{Driver: "memcached"})
	assert.Error(t, err)

	c, err := cache.New(config.CacheConfig{Driver: "memory"})
	require.NoError(t, err)
	assert.NoError(t, c.Ping(context.Background()))
}

// ──────────────────────────────────────────────────────────────────────────────
// Decorador de tiendas
// ──────────────────────────────────────────────────────────────────────────────

func TestStoreRepository_CacheaLecturas(t *testing.T) {
	ctx := context.Background()
	inner := testutil.NewStores()
	inner.Add("S1", 7)
	repo := cache.NewStoreRepository(inner, cache.NewMemory("t"), time.Minute, nil)

	for i := 0; i < 3; i++ {
		s, err := repo.GetByCode(ctx, "S1")
		require.NoError(t, err)
		assert.Equal(t, int64(7), s.OwnerUserID)
	}
	assert.Equal(t, 1, inner.Gets)
}

func TestStoreRepository_NoCacheaInexistentes(t *testing.T) {
	ctx := context.Background()
	inner := testutil.NewStores()
	repo := cache.NewStoreRepository(inner, cache.NewMemory("t"), time.Minute, nil)

	s, err := repo.GetByCode(ctx, "S1")
	require.NoError(t, err)
	assert.Nil(t, s)

	inner.Add("S1", 0)
	s, err = repo.GetByCode(ctx, "S1")
	require.NoError(t, err)
	require.NotNil(t, s)
}

func TestStoreRepository_InvalidaEnEscrituras(t *testing.T) {
	ctx := context.Background()
	inner := testutil.NewStores()
	inner.Add("S1", 0)
	repo := cache.NewStoreRepository(inner, cache.NewMemory("t"), time.Minute, nil)

	_, err := repo.GetByCode(ctx, "S1")
	require.NoError(t, err)
	require.NoError(t, repo.SetStatus(ctx, "S1", entity.StoreStatusFrozen))

	s, err := repo.GetByCode(ctx, "S1")
	require.NoError(t, err)
	assert.Equal(t, entity.StoreStatusFrozen, s.Status)

	s.Name = "Otra"
	require.NoError(t, repo.UpdateMetadata(ctx, s))
	s, err = repo.GetByCode(ctx, "S1")
	require.NoError(t, err)
	assert.Equal(t, "Otra", s.Name)
}

func TestStoreRepository_CacheCaidoNoFalla(t *testing.T) {
	ctx := context.Background()
	inner := testutil.NewStores()
	inner.Add("S1", 0)
	repo := cache.NewStoreRepository(inner, failingClient{}, time.Minute, nil)

	s, err := repo.GetByCode(ctx, "S1")
	require.NoError(t, err)
	assert.Equal(t, "S1", s.StoreCode)
	assert.NoError(t, repo.SetStatus(ctx, "S1", entity.StoreStatusFrozen))
}
