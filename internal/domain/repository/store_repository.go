package repository

import (
	"context"

	"github.com/jhoicas/storehub-api/internal/domain/entity"
)

// StoreRepository define el puerto de persistencia para Store.
// GetByCode devuelve (nil, nil) si no existe.
type StoreRepository interface {
	Create(ctx context.Context, store *entity.Store) error
	GetByCode(ctx context.Context, storeCode string) (*entity.Store, error)
	List(ctx context.Context) ([]*entity.Store, error)
	UpdateMetadata(ctx context.Context, store *entity.Store) error
	SetStatus(ctx context.Context, storeCode, status string) error
}
