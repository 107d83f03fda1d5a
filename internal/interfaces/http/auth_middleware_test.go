package http_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/storehub-api/internal/application/identity"
	"github.com/jhoicas/storehub-api/internal/domain/entity"
	apphttp "github.com/jhoicas/storehub-api/internal/interfaces/http"
	"github.com/jhoicas/storehub-api/internal/testutil"
)

// ──────────────────────────────────────────────────────────────────────────────
// Helpers de test
// ──────────────────────────────────────────────────────────────────────────────

type fixture struct {
	provider *testutil.Provider
	users    *testutil.Users
	stores   *testutil.Stores
	roles    *testutil.Roles
	resolver *identity.Resolver
}

func newFixture() *fixture {
	f := &fixture{provider: testutil.NewProvider(), stores: testutil.NewStores(), roles: testutil.SeededRoles()}
	f.users = testutil.NewUsers(f.stores)
	f.resolver = identity.NewResolver(f.provider, f.users, f.roles, f.stores, nil)
	return f
}

// withUser registra un usuario y un token "tok-<uid>" para él.
func (f *fixture) withUser(uid, storeCode string, roles ...string) *entity.User {
	u := f.users.Add(uid, storeCode, roles...)
	f.provider.AddAccount("tok-"+uid, uid, uid+"@example.com", "User "+uid)
	return u
}

// buildTestApp construye una aplicación Fiber mínima con:
//   - ResolveIdentity para resolver el Bearer Token y cargar el AuthContext
//   - RequireAnyRole para autorizar el acceso
//   - Un handler dummy que devuelve 200 si pasa los middlewares
func (f *fixture) buildTestApp(allowedRoles ...string) *fiber.App {
	app := fiber.New(fiber.Config{ErrorHandler: apphttp.ErrorHandler(nil)})
	app.Get("/protected",
		apphttp.ResolveIdentity(f.resolver, nil, nil),
		apphttp.RequireAnyRole(allowedRoles...),
		func(c *fiber.Ctx) error {
			return c.JSON(fiber.Map{"uid": apphttp.GetAuthContext(c).UID()})
		},
	)
	return app
}

// doRequest lanza una petición y devuelve la respuesta.
func doRequest(t *testing.T, app *fiber.App, method, path, authHeader, body string) *http.Response {
	t.Helper()
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, r)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

type envelope struct {
	Status      bool            `json:"status"`
	Data        json.RawMessage `json:"data"`
	Error       json.RawMessage `json:"error"`
	ErrorParams map[string]any  `json:"error_params"`
}

func decode(t *testing.T, resp *http.Response) envelope {
	t.Helper()
	defer resp.Body.Close()
	var env envelope
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&env))
	return env
}

// assertDenied verifica status y código de un envelope de error.
func assertDenied(t *testing.T, resp *http.Response, status int, code string) {
	t.Helper()
	assert.Equal(t, status, resp.StatusCode)
	env := decode(t, resp)
	assert.False(t, env.Status)
	assert.Equal(t, "{}", string(env.Data))
	assert.Equal(t, code, env.ErrorParams["code"])
}

// ──────────────────────────────────────────────────────────────────────────────
// Tests RequireAnyRole
// ──────────────────────────────────────────────────────────────────────────────

// Caso 1: El usuario tiene uno de los roles permitidos → 200.
func TestRequireAnyRole_RolPermitido(t *testing.T) {
	f := newFixture()
	f.withUser("u1", "", entity.RoleSupport)
	app := f.buildTestApp(entity.RoleOwner, entity.RoleSupport)

	resp := doRequest(t, app, http.MethodGet, "/protected", "Bearer tok-u1", "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

// Caso 2: Rol no incluido → 401 NO_MATCHING_ROLE. Sin herencia: Owner no implica Support.
func TestRequireAnyRole_SinRolPermitido(t *testing.T) {
	f := newFixture()
	f.withUser("u1", "", entity.RoleOwner)
	app := f.buildTestApp(entity.RoleSupport)

	resp := doRequest(t, app, http.MethodGet, "/protected", "Bearer tok-u1", "")
	assertDenied(t, resp, http.StatusUnauthorized, "NO_MATCHING_ROLE")
}

// Caso 3: Usuario desactivado con rol permitido → 401 USER_INACTIVE.
func TestRequireAnyRole_UsuarioInactivo(t *testing.T) {
	f := newFixture()
	u := f.withUser("u1", "", entity.RoleOwner)
	require.NoError(t, f.users.SetActive(context.Background(), u.ID, false))
	app := f.buildTestApp(entity.RoleOwner)

	resp := doRequest(t, app, http.MethodGet, "/protected", "Bearer tok-u1", "")
	assertDenied(t, resp, http.StatusUnauthorized, "USER_INACTIVE")
}

// Caso 4: Sin header Authorization → 401 MISSING_TOKEN.
func TestResolveIdentity_SinToken(t *testing.T) {
	f := newFixture()
	app := f.buildTestApp(entity.RoleOwner)

	resp := doRequest(t, app, http.MethodGet, "/protected", "", "")
	assertDenied(t, resp, http.StatusUnauthorized, "MISSING_TOKEN")
	assert.Zero(t, f.provider.Verifications)
}

// Caso 5: Formato distinto de "Bearer <token>" → 401 INVALID_TOKEN.
func TestResolveIdentity_FormatoInvalido(t *testing.T) {
	f := newFixture()
	app := f.buildTestApp(entity.RoleOwner)

	resp := doRequest(t, app, http.MethodGet, "/protected", "Token abc", "")
	assertDenied(t, resp, http.StatusUnauthorized, "INVALID_TOKEN")
}

// Caso 6: Token que el proveedor no reconoce → 401 INVALID_TOKEN.
func TestResolveIdentity_TokenInvalido(t *testing.T) {
	f := newFixture()
	app := f.buildTestApp(entity.RoleOwner)

	resp := doRequest(t, app, http.MethodGet, "/protected", "Bearer nope", "")
	assertDenied(t, resp, http.StatusUnauthorized, "INVALID_TOKEN")
}

// Caso 7: Token válido de un uid sin usuario interno → 404 USER_NOT_FOUND.
func TestResolveIdentity_UsuarioNoRegistrado(t *testing.T) {
	f := newFixture()
	f.provider.AddAccount("tok-x", "x", "x@example.com", "X")
	app := f.buildTestApp(entity.RoleOwner)

	resp := doRequest(t, app, http.MethodGet, "/protected", "Bearer tok-x", "")
	assertDenied(t, resp, http.StatusNotFound, "USER_NOT_FOUND")
}

// Caso 8: Proveedor caído → 503, reintentable.
func TestResolveIdentity_ProveedorCaido(t *testing.T) {
	f := newFixture()
	f.provider.VerifyErr = errors.New("dial tcp: i/o timeout")
	app := f.buildTestApp(entity.RoleOwner)

	resp := doRequest(t, app, http.MethodGet, "/protected", "Bearer tok-u1", "")
	assertDenied(t, resp, http.StatusServiceUnavailable, "PROVIDER_UNAVAILABLE")
}

// Caso 9: Un rol fuera del catálogo es un error de configuración de rutas.
func TestRequireAnyRole_RolDesconocidoPanic(t *testing.T) {
	assert.Panics(t, func() { apphttp.RequireAnyRole("Admin") })
	assert.Panics(t, func() { apphttp.RequireAnyRole("owner") }, "la comparación distingue mayúsculas")
	assert.Panics(t, func() { apphttp.RequireAnyRole() })
	assert.NotPanics(t, func() { apphttp.RequireAnyRole(entity.RoleStoreCustomer) })
}
