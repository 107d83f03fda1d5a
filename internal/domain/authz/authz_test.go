package authz_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/storehub-api/internal/domain"
	"github.com/jhoicas/storehub-api/internal/domain/authz"
	"github.com/jhoicas/storehub-api/internal/domain/entity"
)

// ──────────────────────────────────────────────────────────────────────────────
// Helpers de test
// ──────────────────────────────────────────────────────────────────────────────

func newContext(active bool, storeCode string, roles ...string) *authz.AuthContext {
	u := &entity.User{ID: 1, UID: "uid-1", IsActive: active, StoreCode: storeCode}
	for _, r := range roles {
		u.Roles = append(u.Roles, entity.Role{Name: r})
	}
	return authz.NewAuthContext(u)
}

// ──────────────────────────────────────────────────────────────────────────────
// Catálogo de roles
// ──────────────────────────────────────────────────────────────────────────────

func TestRegistry_CatalogoCerrado(t *testing.T) {
	all := authz.AllRoles()
	require.Len(t, all, 8)
	for i, r := range all {
		assert.Equal(t, i+1, r.ID, "los IDs son fijos y consecutivos")
		assert.True(t, authz.RoleExists(r.Name))
	}

	assert.False(t, authz.RoleExists("owner"), "la comparación es sensible a mayúsculas")
	assert.False(t, authz.RoleExists("Admin"))
	assert.False(t, authz.IsStoreScoped("Admin"), "un rol desconocido no es de tienda")
	assert.False(t, authz.IsPlatform("Admin"), "un rol desconocido no es de plataforma")
}

func TestRegistry_CategoriasDisjuntas(t *testing.T) {
	assert.ElementsMatch(t,
		[]string{entity.RoleOwner, entity.RoleSupport, entity.RoleAccounts, entity.RoleReports},
		authz.PlatformRoleNames())
	assert.ElementsMatch(t,
		[]string{entity.RoleStoreOwner, entity.RoleStoreAccount, entity.RoleStoreSupport, entity.RoleStoreCustomer},
		authz.StoreRoleNames())
	for _, n := range authz.RoleNames() {
		assert.NotEqual(t, authz.IsPlatform(n), authz.IsStoreScoped(n), n)
	}
}

func TestRegistry_AllRolesDevuelveCopia(t *testing.T) {
	all := authz.AllRoles()
	all[0].Name = "Hacked"
	assert.Equal(t, entity.RoleOwner, authz.AllRoles()[0].Name)
}

func TestValidateRoleNames(t *testing.T) {
	got, err := authz.ValidateRoleNames([]string{entity.RoleStoreSupport, entity.RoleStoreSupport, entity.RoleStoreAccount})
	require.NoError(t, err)
	assert.Equal(t, []string{entity.RoleStoreSupport, entity.RoleStoreAccount}, got)

	_, err = authz.ValidateRoleNames(nil)
	assert.ErrorIs(t, err, domain.ErrInvalidParams)

	_, err = authz.ValidateRoleNames([]string{entity.RoleOwner, "SuperUser"})
	assert.ErrorIs(t, err, domain.ErrInvalidParams)
}

// ──────────────────────────────────────────────────────────────────────────────
// Guard
// ──────────────────────────────────────────────────────────────────────────────

func TestAuthorize_Tabla(t *testing.T) {
	cases := []struct {
		name    string
		ctx     *authz.AuthContext
		allowed []string
		want    authz.Decision
	}{
		{"rol exacto", newContext(true, "", entity.RoleOwner), []string{entity.RoleOwner}, authz.Allow()},
		{"uno de varios roles", newContext(true, "S1", entity.RoleStoreSupport, entity.RoleStoreCustomer), []string{entity.RoleStoreCustomer}, authz.Allow()},
		{"sin herencia Owner -> StoreOwner", newContext(true, "", entity.RoleOwner), []string{entity.RoleStoreOwner}, authz.Deny(authz.ReasonNoMatchingRole)},
		{"lista vacía", newContext(true, "", entity.RoleOwner), nil, authz.Deny(authz.ReasonNoMatchingRole)},
		{"inactivo con rol correcto", newContext(false, "", entity.RoleOwner), []string{entity.RoleOwner}, authz.Deny(authz.ReasonUserInactive)},
		{"inactivo sin rol", newContext(false, "", entity.RoleReports), []string{entity.RoleOwner}, authz.Deny(authz.ReasonUserInactive)},
		{"no resuelto", nil, []string{entity.RoleOwner}, authz.Deny(authz.ReasonUnresolved)},
		{"contexto sin usuario", &authz.AuthContext{}, []string{entity.RoleOwner}, authz.Deny(authz.ReasonUnresolved)},
		{"rol desconocido nunca coincide", newContext(true, "", "Admin"), []string{"Admin"}, authz.Deny(authz.ReasonNoMatchingRole)},
		{"mayúsculas importan", newContext(true, "", entity.RoleOwner), []string{"owner"}, authz.Deny(authz.ReasonNoMatchingRole)},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, authz.Authorize(tc.ctx, tc.allowed...))
		})
	}
}

// Propiedad: Allow sii roles ∩ permitidos ≠ ∅ y el usuario está activo.
func TestAuthorize_Propiedad(t *testing.T) {
	names := authz.RoleNames()
	for mask := 0; mask < 1<<len(names); mask += 7 {
		var held []string
		for i, n := range names {
			if mask&(1<<i) != 0 {
				held = append(held, n)
			}
		}
		for _, allowed := range [][]string{{entity.RoleOwner}, {entity.RoleStoreOwner, entity.RoleSupport}, authz.StoreRoleNames()} {
			for _, active := range []bool{true, false} {
				ctx := newContext(active, "S1", held...)
				intersects := false
				for _, a := range allowed {
					for _, h := range held {
						intersects = intersects || a == h
					}
				}
				d := authz.Authorize(ctx, allowed...)
				assert.Equal(t, intersects && active, d.Allowed, "held=%v allowed=%v active=%v", held, allowed, active)
			}
		}
	}
}

// Escenario: usuario desactivado con rol Owner contra {Owner} -> Deny(UserInactive).
func TestAuthorize_OwnerDesactivado(t *testing.T) {
	d := authz.Authorize(newContext(false, "", entity.RoleOwner), entity.RoleOwner)
	assert.False(t, d.Allowed)
	assert.Equal(t, authz.ReasonUserInactive, d.Reason)
	assert.ErrorIs(t, d.Err(), domain.ErrUserInactive)
}

func TestDecision_Err(t *testing.T) {
	assert.NoError(t, authz.Allow().Err())
	assert.ErrorIs(t, authz.Deny(authz.ReasonNoMatchingRole).Err(), domain.ErrNoMatchingRole)
	assert.ErrorIs(t, authz.Deny(authz.ReasonUnresolved).Err(), domain.ErrUnresolved)
}

func TestAuthContext_CanActOnStore(t *testing.T) {
	assert.True(t, newContext(true, "", entity.RoleSupport).CanActOnStore("ANY"))
	assert.True(t, newContext(true, "S1", entity.RoleStoreOwner).CanActOnStore("S1"))
	assert.False(t, newContext(true, "S1", entity.RoleStoreOwner).CanActOnStore("S2"))
	assert.False(t, newContext(true, "", entity.RoleStoreOwner).CanActOnStore(""))
	var nilCtx *authz.AuthContext
	assert.False(t, nilCtx.CanActOnStore("S1"))
}
