package postgres

import (
	"context"
	"fmt"

	"github.com/jhoicas/storehub-api/internal/domain/entity"
	"github.com/jhoicas/storehub-api/internal/domain/repository"
)

var _ repository.RoleRepository = (*RoleRepo)(nil)

// RoleRepo catálogo de roles sobre PostgreSQL.
type RoleRepo struct {
	q Querier
}

// NewRoleRepository construye el adaptador. Pasar pool o tx (Querier).
func NewRoleRepository(q Querier) *RoleRepo {
	return &RoleRepo{q: q}
}

// EnsureRoles inserta los roles que falten en una sola sentencia; los existentes no se tocan.
func (r *RoleRepo) EnsureRoles(ctx context.Context, roles []entity.Role) error {
	ids := make([]int32, 0, len(roles))
	names := make([]string, 0, len(roles))
	for _, role := range roles {
		ids = append(ids, int32(role.ID))
		names = append(names, role.Name)
	}
	const query = `
		INSERT INTO roles (id, name)
		SELECT * FROM unnest($1::int[], $2::text[])
		ON CONFLICT DO NOTHING`
	if _, err := r.q.Exec(ctx, query, ids, names); err != nil {
		return fmt.Errorf("ensure roles: %w", err)
	}
	return nil
}

// List devuelve el catálogo ordenado por id.
func (r *RoleRepo) List(ctx context.Context) ([]entity.Role, error) {
	return r.list(ctx, `SELECT id, name FROM roles ORDER BY id`)
}

// GetByNames devuelve los roles existentes entre los nombres pedidos.
func (r *RoleRepo) GetByNames(ctx context.Context, names []string) ([]entity.Role, error) {
	return r.list(ctx, `SELECT id, name FROM roles WHERE name = ANY($1) ORDER BY id`, names)
}

func (r *RoleRepo) list(ctx context.Context, query string, args ...any) ([]entity.Role, error) {
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list roles: %w", err)
	}
	defer rows.Close()
	var list []entity.Role
	for rows.Next() {
		var role entity.Role
		if err := rows.Scan(&role.ID, &role.Name); err != nil {
			return nil, fmt.Errorf("scan role: %w", err)
		}
		list = append(list, role)
	}
	return list, rows.Err()
}
