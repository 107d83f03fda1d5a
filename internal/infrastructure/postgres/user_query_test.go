package postgres

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/storehub-api/internal/domain/authz"
	"github.com/jhoicas/storehub-api/internal/domain/entity"
)

func TestUserSortColumns_CubreTodosLosCampos(t *testing.T) {
	for _, field := range entity.UserSortFields {
		_, ok := userSortColumns[field]
		assert.True(t, ok, "campo %q sin columna", field)
	}
	assert.Len(t, userSortColumns, len(entity.UserSortFields))
}

func TestBuildUserQuery_SinFiltros(t *testing.T) {
	q, err := buildUserQuery(entity.UserListQuery{})
	require.NoError(t, err)
	assert.Equal(t, "WHERE u.is_active = $1", q.where)
	assert.Equal(t, "ORDER BY u.id ASC", q.orderBy)
	assert.Equal(t, []any{true}, q.args)
}

func TestBuildUserQuery_FiltrosYOrden(t *testing.T) {
	lq := entity.UserListQuery{
		Filter: entity.UserFilter{
			Names:     []string{"ana_50%"},
			Emails:    []string{"a@example.com"},
			Stores:    []string{"S1"},
			Countries: []string{"CO"},
			Platform:  true,
			Inactive:  true,
		},
		Orders: []entity.UserOrder{
			{Field: entity.UserSortStoreCode},
			{Field: entity.UserSortCreatedAt, Desc: true},
		},
	}
	q, err := buildUserQuery(lq)
	require.NoError(t, err)

	require.Len(t, q.args, 6)
	assert.Equal(t, false, q.args[0])
	assert.Equal(t, []string{`%ana\_50\%%`}, q.args[1])
	assert.Equal(t, []string{"a@example.com"}, q.args[2])
	assert.Equal(t, []string{"S1"}, q.args[3])
	assert.Equal(t, []string{"CO"}, q.args[4])
	assert.ElementsMatch(t, authz.PlatformRoleNames(), q.args[5])

	// Cada argumento tiene su placeholder y no hay placeholders de más.
	for i := 1; i <= len(q.args); i++ {
		assert.Contains(t, q.where, fmt.Sprintf("$%d", i))
	}
	assert.NotContains(t, q.where, "$7")
	assert.Contains(t, q.where, "u.fullname ILIKE ANY($2)")
	assert.Contains(t, q.where, "s.store_code = ANY($4)")

	assert.Equal(t, "ORDER BY s.store_code ASC NULLS LAST, u.created_at DESC NULLS LAST, u.id ASC", q.orderBy)
}

func TestBuildUserQuery_ValoresNuncaEnElSQL(t *testing.T) {
	evil := "x'; DROP TABLE users; --"
	q, err := buildUserQuery(entity.UserListQuery{Filter: entity.UserFilter{Names: []string{evil}, Emails: []string{evil}}})
	require.NoError(t, err)
	assert.False(t, strings.Contains(q.where, "DROP"))
}

func TestBuildUserQuery_CampoDesconocido(t *testing.T) {
	_, err := buildUserQuery(entity.UserListQuery{Orders: []entity.UserOrder{{Field: "password"}}})
	assert.Error(t, err)
}

func TestEscapeLike(t *testing.T) {
	assert.Equal(t, `a\%b\_c\\d`, escapeLike(`a%b_c\d`))
	assert.Equal(t, "ana", escapeLike("ana"))
}
