package postgres

import (
	"fmt"
	"strings"

	"github.com/jhoicas/storehub-api/internal/domain/authz"
	"github.com/jhoicas/storehub-api/internal/domain/entity"
)

// userSortColumns columna SQL de cada campo ordenable. Debe cubrir entity.UserSortFields.
var userSortColumns = map[string]string{
	entity.UserSortFullName:  "u.fullname",
	entity.UserSortEmail:     "lower(u.email)",
	entity.UserSortCreatedAt: "u.created_at",
	entity.UserSortUpdatedAt: "u.updated_at",
	entity.UserSortCountry:   "u.country",
	entity.UserSortStoreCode: "s.store_code",
}

const userFrom = `FROM users u LEFT JOIN stores s ON s.id = u.from_store_id`

// userQuery WHERE y ORDER BY de un listado, con sus argumentos posicionales.
type userQuery struct {
	where   string
	orderBy string
	args    []any
}

func (q *userQuery) arg(v any) string {
	q.args = append(q.args, v)
	return fmt.Sprintf("$%d", len(q.args))
}

// buildUserQuery compila filtros y órdenes ya reconciliados. Los valores van siempre como
// argumentos; solo los nombres de columna salen de userSortColumns.
func buildUserQuery(lq entity.UserListQuery) (*userQuery, error) {
	q := &userQuery{}
	f := lq.Filter

	conds := []string{"u.is_active = " + q.arg(!f.Inactive)}
	if len(f.Names) > 0 {
		patterns := make([]string, 0, len(f.Names))
		for _, n := range f.Names {
			patterns = append(patterns, "%"+escapeLike(n)+"%")
		}
		conds = append(conds, "u.fullname ILIKE ANY("+q.arg(patterns)+")")
	}
	if len(f.Emails) > 0 {
		conds = append(conds, "lower(u.email) = ANY("+q.arg(f.Emails)+")")
	}
	if len(f.Stores) > 0 {
		conds = append(conds, "s.store_code = ANY("+q.arg(f.Stores)+")")
	}
	if len(f.Countries) > 0 {
		conds = append(conds, "u.country = ANY("+q.arg(f.Countries)+")")
	}
	if f.Platform {
		conds = append(conds, `EXISTS (
			SELECT 1 FROM user_roles ur JOIN roles r ON r.id = ur.role_id
			 WHERE ur.user_id = u.id AND r.name = ANY(`+q.arg(authz.PlatformRoleNames())+`))`)
	}
	q.where = "WHERE " + strings.Join(conds, " AND ")

	order := make([]string, 0, len(lq.Orders)+1)
	for _, o := range lq.Orders {
		col, ok := userSortColumns[o.Field]
		if !ok {
			return nil, fmt.Errorf("orden sin columna: %q", o.Field)
		}
		dir := "ASC"
		if o.Desc {
			dir = "DESC"
		}
		order = append(order, col+" "+dir+" NULLS LAST")
	}
	order = append(order, "u.id ASC")
	q.orderBy = "ORDER BY " + strings.Join(order, ", ")
	return q, nil
}

// escapeLike escapa los comodines de LIKE para que el nombre se busque literal.
func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}
