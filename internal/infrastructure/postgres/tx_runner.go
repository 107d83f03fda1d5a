package postgres

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jhoicas/storehub-api/internal/application/usecase"
	"github.com/jhoicas/storehub-api/internal/domain/repository"
)

// Ensure TxRunner implements usecase.StoreTxRunner.
var _ usecase.StoreTxRunner = (*TxRunner)(nil)

// TxRunner ejecuta callbacks dentro de una transacción PostgreSQL.
type TxRunner struct {
	pool *pgxpool.Pool
}

// NewTxRunner construye el runner con el pool.
func NewTxRunner(pool *pgxpool.Pool) *TxRunner {
	return &TxRunner{pool: pool}
}

// RunStoreWrite inicia una transacción, ejecuta fn con repos de usuarios y tiendas atados a la tx
// y hace Commit o Rollback.
func (r *TxRunner) RunStoreWrite(ctx context.Context, fn func(
	users repository.UserRepository,
	stores repository.StoreRepository,
) error) error {
	return inTx(ctx, r.pool, func(tx pgx.Tx) error {
		return fn(NewUserRepository(tx), NewStoreRepository(tx))
	})
}
