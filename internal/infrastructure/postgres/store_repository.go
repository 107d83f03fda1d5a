package postgres

import (
	"context"
	"fmt"

	"github.com/jhoicas/storehub-api/internal/domain"
	"github.com/jhoicas/storehub-api/internal/domain/entity"
	"github.com/jhoicas/storehub-api/internal/domain/repository"
)

// Asegura que StoreRepo implementa repository.StoreRepository.
var _ repository.StoreRepository = (*StoreRepo)(nil)

// StoreRepo implementación del puerto StoreRepository sobre PostgreSQL.
type StoreRepo struct {
	q Querier
}

// NewStoreRepository construye el adaptador de persistencia para tiendas. Pasar pool o tx (Querier).
func NewStoreRepository(q Querier) *StoreRepo {
	return &StoreRepo{q: q}
}

const storeColumns = `id, store_code, name, description, currency_code, status, owner_user_id, created_at, updated_at`

// Create persiste una nueva tienda y completa ID y timestamps.
func (r *StoreRepo) Create(ctx context.Context, s *entity.Store) error {
	query := `
		INSERT INTO stores (store_code, name, description, currency_code, status, owner_user_id)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at, updated_at`
	err := r.q.QueryRow(ctx, query,
		s.StoreCode, s.Name, s.Description, s.CurrencyCode, s.Status, s.OwnerUserID,
	).Scan(&s.ID, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert store: %w", err)
	}
	return nil
}

// GetByCode obtiene una tienda por store_code.
func (r *StoreRepo) GetByCode(ctx context.Context, storeCode string) (*entity.Store, error) {
	query := `SELECT ` + storeColumns + ` FROM stores WHERE store_code = $1`
	var s entity.Store
	err := r.q.QueryRow(ctx, query, storeCode).Scan(
		&s.ID, &s.StoreCode, &s.Name, &s.Description, &s.CurrencyCode, &s.Status,
		&s.OwnerUserID, &s.CreatedAt, &s.UpdatedAt,
	)
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get store: %w", err)
	}
	return &s, nil
}

// List devuelve todas las tiendas en orden de creación.
func (r *StoreRepo) List(ctx context.Context) ([]*entity.Store, error) {
	query := `SELECT ` + storeColumns + ` FROM stores ORDER BY id`
	rows, err := r.q.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list stores: %w", err)
	}
	defer rows.Close()

	var list []*entity.Store
	for rows.Next() {
		var s entity.Store
		if err := rows.Scan(&s.ID, &s.StoreCode, &s.Name, &s.Description, &s.CurrencyCode, &s.Status,
			&s.OwnerUserID, &s.CreatedAt, &s.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan store: %w", err)
		}
		list = append(list, &s)
	}
	return list, rows.Err()
}

// UpdateMetadata actualiza nombre, descripción y moneda.
func (r *StoreRepo) UpdateMetadata(ctx context.Context, s *entity.Store) error {
	query := `
		UPDATE stores SET name = $2, description = $3, currency_code = $4, updated_at = now()
		WHERE store_code = $1
		RETURNING updated_at`
	err := r.q.QueryRow(ctx, query, s.StoreCode, s.Name, s.Description, s.CurrencyCode).Scan(&s.UpdatedAt)
	if err != nil {
		if isNoRows(err) {
			return domain.ErrNotFound
		}
		return fmt.Errorf("update store: %w", err)
	}
	return nil
}

// SetStatus cambia el estado (active/frozen).
func (r *StoreRepo) SetStatus(ctx context.Context, storeCode, status string) error {
	cmd, err := r.q.Exec(ctx,
		`UPDATE stores SET status = $2, updated_at = now() WHERE store_code = $1`, storeCode, status)
	if err != nil {
		return fmt.Errorf("set store status: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}
