package authz

import (
	"sort"

	"github.com/jhoicas/storehub-api/internal/domain/entity"
)

// AuthContext identidad resuelta para un único request. Se crea por request y no se comparte.
type AuthContext struct {
	User       *entity.User
	Roles      map[string]struct{}
	StoreScope string // store_code si el usuario está ligado a una tienda
	Created    bool   // el usuario se creó en este request (bootstrap)
}

// NewAuthContext construye el contexto a partir del usuario persistido.
func NewAuthContext(u *entity.User) *AuthContext {
	roles := make(map[string]struct{}, len(u.Roles))
	for _, r := range u.Roles {
		roles[r.Name] = struct{}{}
	}
	return &AuthContext{User: u, Roles: roles, StoreScope: u.StoreCode}
}

// Resolved informa si hay un usuario detrás del contexto.
func (a *AuthContext) Resolved() bool {
	return a != nil && a.User != nil
}

// Active informa si el usuario está resuelto y activo.
func (a *AuthContext) Active() bool {
	return a.Resolved() && a.User.IsActive
}

// UID uid externo del usuario o "" si no está resuelto.
func (a *AuthContext) UID() string {
	if !a.Resolved() {
		return ""
	}
	return a.User.UID
}

// HasRole comparación exacta; los roles fuera del catálogo nunca cuentan.
func (a *AuthContext) HasRole(name string) bool {
	if a == nil || !RoleExists(name) {
		return false
	}
	_, ok := a.Roles[name]
	return ok
}

// HasAnyRole informa si el contexto tiene al menos uno de los roles.
func (a *AuthContext) HasAnyRole(names ...string) bool {
	for _, n := range names {
		if a.HasRole(n) {
			return true
		}
	}
	return false
}

// HasPlatformRole informa si tiene algún rol de plataforma.
func (a *AuthContext) HasPlatformRole() bool {
	return a.HasAnyRole(PlatformRoleNames()...)
}

// HasStoreRole informa si tiene algún rol de tienda.
func (a *AuthContext) HasStoreRole() bool {
	return a.HasAnyRole(StoreRoleNames()...)
}

// RoleList roles en orden alfabético (para respuestas y logs).
func (a *AuthContext) RoleList() []string {
	if a == nil {
		return nil
	}
	out := make([]string, 0, len(a.Roles))
	for r := range a.Roles {
		out = append(out, r)
	}
	sort.Strings(out)
	return out
}

// CanActOnStore informa si el contexto puede operar sobre la tienda indicada:
// los roles de plataforma sobre cualquiera, los de tienda solo sobre la propia.
func (a *AuthContext) CanActOnStore(storeCode string) bool {
	if a.HasPlatformRole() {
		return true
	}
	return a.HasStoreRole() && a.StoreScope != "" && a.StoreScope == storeCode
}
