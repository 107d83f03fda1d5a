package usecase

import (
	"context"

	"github.com/jhoicas/storehub-api/internal/domain/repository"
)

// StoreTxRunner ejecuta escrituras de tienda y usuario dentro de una transacción.
// Los repos recibidos en fn están atados a la transacción.
type StoreTxRunner interface {
	RunStoreWrite(ctx context.Context, fn func(users repository.UserRepository, stores repository.StoreRepository) error) error
}
