package identity_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/storehub-api/internal/application/identity"
	"github.com/jhoicas/storehub-api/internal/domain"
	"github.com/jhoicas/storehub-api/internal/domain/authz"
	"github.com/jhoicas/storehub-api/internal/domain/entity"
	"github.com/jhoicas/storehub-api/internal/testutil"
)

// ──────────────────────────────────────────────────────────────────────────────
// Helpers de test
// ──────────────────────────────────────────────────────────────────────────────

type env struct {
	provider *testutil.Provider
	users    *testutil.Users
	roles    *testutil.Roles
	stores   *testutil.Stores
	resolver *identity.Resolver
}

func newEnv() *env {
	e := &env{
		provider: testutil.NewProvider(),
		roles:    testutil.SeededRoles(),
		stores:   testutil.NewStores(),
	}
	e.users = testutil.NewUsers(e.stores)
	e.resolver = identity.NewResolver(e.provider, e.users, e.roles, e.stores, nil)
	return e
}

// ──────────────────────────────────────────────────────────────────────────────
// Resolución de usuarios existentes
// ──────────────────────────────────────────────────────────────────────────────

// Caso 1: usuario existente con rol de tienda -> contexto con roles y alcance.
func TestResolve_UsuarioExistente(t *testing.T) {
	e := newEnv()
	e.stores.Add("S1", 0)
	e.users.Add("u1", "S1", entity.RoleStoreOwner, entity.RoleStoreSupport)
	e.provider.AddAccount("tok-1", "u1", "u1@example.com", "U1")

	actx, err := e.resolver.Resolve(context.Background(), "tok-1", nil)
	require.NoError(t, err)
	assert.Equal(t, "u1", actx.UID())
	assert.Equal(t, "S1", actx.StoreScope)
	assert.Equal(t, []string{entity.RoleStoreOwner, entity.RoleStoreSupport}, actx.RoleList())
	assert.False(t, actx.Created)
}

// Propiedad: dos resoluciones de la misma credencial dan el mismo uid, roles y alcance.
func TestResolve_EsDeterminista(t *testing.T) {
	e := newEnv()
	e.users.Add("u1", "", entity.RoleSupport)
	e.provider.AddAccount("tok-1", "u1", "u1@example.com", "U1")

	a, err := e.resolver.Resolve(context.Background(), "tok-1", nil)
	require.NoError(t, err)
	b, err := e.resolver.Resolve(context.Background(), "tok-1", nil)
	require.NoError(t, err)
	assert.Equal(t, a.UID(), b.UID())
	assert.Equal(t, a.RoleList(), b.RoleList())
	assert.Equal(t, a.StoreScope, b.StoreScope)
}

// Caso 2: uid desconocido sin bootstrap -> UserNotFound y nada se crea.
func TestResolve_SinBootstrap_UserNotFound(t *testing.T) {
	e := newEnv()
	e.provider.AddAccount("tok-x", "ux", "ux@example.com", "UX")

	_, err := e.resolver.Resolve(context.Background(), "tok-x", nil)
	assert.ErrorIs(t, err, domain.ErrUserNotFound)
	assert.Nil(t, e.users.Get("ux"))
}

// Caso 3: usuario desactivado -> contexto completo junto con UserInactive.
func TestResolve_UsuarioInactivo(t *testing.T) {
	e := newEnv()
	u := e.users.Add("u1", "", entity.RoleOwner)
	require.NoError(t, e.users.SetActive(context.Background(), u.ID, false))
	e.provider.AddAccount("tok-1", "u1", "u1@example.com", "U1")

	actx, err := e.resolver.Resolve(context.Background(), "tok-1", nil)
	assert.ErrorIs(t, err, domain.ErrUserInactive)
	require.NotNil(t, actx)
	assert.True(t, actx.HasRole(entity.RoleOwner))
	assert.Equal(t, authz.ReasonUserInactive, authz.Authorize(actx, entity.RoleOwner).Reason)
}

// ──────────────────────────────────────────────────────────────────────────────
// Errores de credencial y de proveedor
// ──────────────────────────────────────────────────────────────────────────────

func TestResolve_CredencialVacia(t *testing.T) {
	e := newEnv()
	for _, cred := range []string{"", "   "} {
		_, err := e.resolver.Resolve(context.Background(), cred, nil)
		assert.ErrorIs(t, err, domain.ErrUnresolved)
	}
	assert.Zero(t, e.provider.Verifications, "no se consulta al proveedor sin credencial")
}

func TestResolve_TokenInvalido(t *testing.T) {
	e := newEnv()
	_, err := e.resolver.Resolve(context.Background(), "no-existe", nil)
	assert.ErrorIs(t, err, domain.ErrInvalidCredential)
	assert.False(t, domain.IsRetryable(err))
}

func TestResolve_CuentaDeshabilitadaEnProveedor(t *testing.T) {
	e := newEnv()
	e.users.Add("u1", "", entity.RoleOwner)
	e.provider.AddAccount("tok-1", "u1", "u1@example.com", "U1")
	require.NoError(t, e.provider.SetDisabled(context.Background(), "u1", true))

	_, err := e.resolver.Resolve(context.Background(), "tok-1", nil)
	assert.ErrorIs(t, err, domain.ErrInvalidCredential)
}

func TestResolve_ProveedorCaido(t *testing.T) {
	e := newEnv()
	e.provider.VerifyErr = errors.New("dial tcp: connection refused")

	_, err := e.resolver.Resolve(context.Background(), "tok-1", nil)
	assert.ErrorIs(t, err, domain.ErrProviderUnavailable, "errores sin clasificar se tratan como indisponibilidad")
	assert.True(t, domain.IsRetryable(err))
}

func TestResolve_ContextoCancelado(t *testing.T) {
	e := newEnv()
	e.provider.AddAccount("tok-1", "u1", "u1@example.com", "U1")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := e.resolver.Resolve(ctx, "tok-1", nil)
	assert.ErrorIs(t, err, domain.ErrProviderUnavailable)
}

func TestResolve_FallaDePersistencia(t *testing.T) {
	e := newEnv()
	e.provider.AddAccount("tok-1", "u1", "u1@example.com", "U1")
	e.users.Err = errors.New("conn reset")

	_, err := e.resolver.Resolve(context.Background(), "tok-1", nil)
	require.Error(t, err)
	assert.False(t, domain.IsRetryable(err))
	assert.NotErrorIs(t, err, domain.ErrUserNotFound)
}

// ──────────────────────────────────────────────────────────────────────────────
// Bootstrap
// ──────────────────────────────────────────────────────────────────────────────

// Caso 4: bootstrap con StoreCustomer crea el usuario ligado a la tienda.
func TestResolve_BootstrapClienteDeTienda(t *testing.T) {
	e := newEnv()
	e.stores.Add("S1", 0)
	e.provider.AddAccount("tok-new", "new", "new@example.com", "Nuevo")

	actx, err := e.resolver.Resolve(context.Background(), "tok-new",
		&identity.Bootstrap{Roles: []string{entity.RoleStoreCustomer}, StoreCode: "S1"})
	require.NoError(t, err)
	assert.True(t, actx.Created)
	assert.Equal(t, "S1", actx.StoreScope)

	stored := e.users.Get("new")
	require.NotNil(t, stored)
	assert.Equal(t, "new@example.com", stored.Email)
	assert.Equal(t, "Nuevo", stored.FullName)
	assert.True(t, stored.IsActive)
	assert.Equal(t, []string{entity.RoleStoreCustomer}, stored.RoleNames())

	// Segunda vez: ya existe, no se vuelve a crear.
	again, err := e.resolver.Resolve(context.Background(), "tok-new",
		&identity.Bootstrap{Roles: []string{entity.RoleStoreCustomer}, StoreCode: "S1"})
	require.NoError(t, err)
	assert.False(t, again.Created)
	assert.Equal(t, stored.ID, again.User.ID)
}

// Caso 5: el uid esperado no coincide con el del token -> RestrictedAccess y nada se crea.
func TestResolve_BootstrapUIDAjeno(t *testing.T) {
	e := newEnv()
	e.stores.Add("S1", 0)
	e.provider.AddAccount("tok-new", "new", "new@example.com", "Nuevo")

	_, err := e.resolver.Resolve(context.Background(), "tok-new",
		&identity.Bootstrap{Roles: []string{entity.RoleStoreCustomer}, StoreCode: "S1", ExpectedUID: "otro"})
	assert.ErrorIs(t, err, domain.ErrRestrictedAccess)
	assert.Nil(t, e.users.Get("new"))
	assert.Nil(t, e.users.Get("otro"))

	actx, err := e.resolver.Resolve(context.Background(), "tok-new",
		&identity.Bootstrap{Roles: []string{entity.RoleStoreCustomer}, StoreCode: "S1", ExpectedUID: "new"})
	require.NoError(t, err)
	assert.True(t, actx.Created)
}

func TestResolve_BootstrapValidaciones(t *testing.T) {
	cases := []struct {
		name    string
		boot    identity.Bootstrap
		wantErr error
	}{
		{"rol desconocido", identity.Bootstrap{Roles: []string{"Admin"}}, domain.ErrInvalidParams},
		{"sin roles", identity.Bootstrap{}, domain.ErrInvalidParams},
		{"rol de tienda sin tienda", identity.Bootstrap{Roles: []string{entity.RoleStoreCustomer}}, domain.ErrInvalidParams},
		{"tienda sin rol de tienda", identity.Bootstrap{Roles: []string{entity.RoleReports}, StoreCode: "S1"}, domain.ErrInvalidParams},
		{"tienda inexistente", identity.Bootstrap{Roles: []string{entity.RoleStoreCustomer}, StoreCode: "NOPE"}, domain.ErrNotFound},
		{"tienda congelada", identity.Bootstrap{Roles: []string{entity.RoleStoreCustomer}, StoreCode: "FROZEN"}, domain.ErrConflict},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			e := newEnv()
			e.stores.Add("S1", 0)
			e.stores.Add("FROZEN", 0)
			require.NoError(t, e.stores.SetStatus(context.Background(), "FROZEN", entity.StoreStatusFrozen))
			e.provider.AddAccount("tok-new", "new", "new@example.com", "Nuevo")

			boot := tc.boot
			_, err := e.resolver.Resolve(context.Background(), "tok-new", &boot)
			assert.ErrorIs(t, err, tc.wantErr)
			assert.Nil(t, e.users.Get("new"), "no debe quedar un usuario a medias")
		})
	}
}

func TestResolve_BootstrapCatalogoSinSembrar(t *testing.T) {
	e := newEnv()
	e.roles = testutil.NewRoles()
	e.resolver = identity.NewResolver(e.provider, e.users, e.roles, e.stores, nil)
	e.provider.AddAccount("tok-new", "new", "new@example.com", "Nuevo")

	_, err := e.resolver.Resolve(context.Background(), "tok-new", &identity.Bootstrap{Roles: []string{entity.RoleReports}})
	require.Error(t, err)
	assert.Nil(t, e.users.Get("new"))
}
