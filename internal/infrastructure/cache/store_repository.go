package cache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/jhoicas/storehub-api/internal/domain/entity"
	"github.com/jhoicas/storehub-api/internal/domain/repository"
	"github.com/jhoicas/storehub-api/pkg/logger"
)

var _ repository.StoreRepository = (*StoreRepository)(nil)

// StoreRepository decora un StoreRepository cacheando GetByCode.
// Las tiendas inexistentes no se cachean. Una falla del cache nunca falla la operación:
// se registra y se va directo al repositorio.
type StoreRepository struct {
	next  repository.StoreRepository
	cache Client
	ttl   time.Duration
	log   *logger.Logger
}

// NewStoreRepository construye el decorador.
func NewStoreRepository(next repository.StoreRepository, c Client, ttl time.Duration, log *logger.Logger) *StoreRepository {
	if log == nil {
		log = logger.Nop()
	}
	return &StoreRepository{next: next, cache: c, ttl: ttl, log: log}
}

func storeKey(code string) string { return "store:" + code }

func (r *StoreRepository) GetByCode(ctx context.Context, storeCode string) (*entity.Store, error) {
	raw, err := r.cache.Get(ctx, storeKey(storeCode))
	switch {
	case err == nil:
		var s entity.Store
		if jerr := json.Unmarshal([]byte(raw), &s); jerr == nil {
			return &s, nil
		}
		r.invalidate(ctx, storeCode)
	case err != ErrNotFound:
		r.log.Warn().Err(err).Str("store_code", storeCode).Msg("cache de tiendas no disponible")
	}

	s, err := r.next.GetByCode(ctx, storeCode)
	if err != nil || s == nil {
		return s, err
	}
	if b, jerr := json.Marshal(s); jerr == nil {
		if serr := r.cache.Set(ctx, storeKey(storeCode), string(b), r.ttl); serr != nil {
			r.log.Warn().Err(serr).Str("store_code", storeCode).Msg("no se pudo cachear la tienda")
		}
	}
	return s, nil
}

func (r *StoreRepository) Create(ctx context.Context, s *entity.Store) error {
	return r.next.Create(ctx, s)
}

func (r *StoreRepository) List(ctx context.Context) ([]*entity.Store, error) {
	return r.next.List(ctx)
}

func (r *StoreRepository) UpdateMetadata(ctx context.Context, s *entity.Store) error {
	if err := r.next.UpdateMetadata(ctx, s); err != nil {
		return err
	}
	r.invalidate(ctx, s.StoreCode)
	return nil
}

func (r *StoreRepository) SetStatus(ctx context.Context, storeCode, status string) error {
	if err := r.next.SetStatus(ctx, storeCode, status); err != nil {
		return err
	}
	r.invalidate(ctx, storeCode)
	return nil
}

func (r *StoreRepository) invalidate(ctx context.Context, storeCode string) {
	if err := r.cache.Delete(ctx, storeKey(storeCode)); err != nil {
		r.log.Warn().Err(err).Str("store_code", storeCode).Msg("no se pudo invalidar la tienda en cache")
	}
}
