// Package authz contiene el núcleo de autorización: catálogo de roles, contexto de
// identidad por request, guard por roles y reconciliación de filtros de listados.
package authz

import (
	"fmt"

	"github.com/jhoicas/storehub-api/internal/domain"
	"github.com/jhoicas/storehub-api/internal/domain/entity"
)

// catalog es cerrado y conocido en compilación; se siembra una vez al arrancar.
var catalog = []entity.Role{
	{ID: 1, Name: entity.RoleOwner},
	{ID: 2, Name: entity.RoleSupport},
	{ID: 3, Name: entity.RoleAccounts},
	{ID: 4, Name: entity.RoleReports},
	{ID: 5, Name: entity.RoleStoreOwner},
	{ID: 6, Name: entity.RoleStoreAccount},
	{ID: 7, Name: entity.RoleStoreSupport},
	{ID: 8, Name: entity.RoleStoreCustomer},
}

var storeScoped = map[string]bool{
	entity.RoleOwner:         false,
	entity.RoleSupport:       false,
	entity.RoleAccounts:      false,
	entity.RoleReports:       false,
	entity.RoleStoreOwner:    true,
	entity.RoleStoreAccount:  true,
	entity.RoleStoreSupport:  true,
	entity.RoleStoreCustomer: true,
}

// RoleExists informa si el nombre pertenece al catálogo (comparación exacta).
func RoleExists(name string) bool {
	_, ok := storeScoped[name]
	return ok
}

// IsStoreScoped informa si el rol limita la visibilidad a una tienda. Falso para roles desconocidos.
func IsStoreScoped(name string) bool {
	return storeScoped[name]
}

// IsPlatform informa si el rol ve datos de todas las tiendas. Falso para roles desconocidos.
func IsPlatform(name string) bool {
	scoped, ok := storeScoped[name]
	return ok && !scoped
}

// AllRoles devuelve una copia del catálogo en orden de ID.
func AllRoles() []entity.Role {
	out := make([]entity.Role, len(catalog))
	copy(out, catalog)
	return out
}

// RoleNames nombres de todo el catálogo.
func RoleNames() []string {
	out := make([]string, 0, len(catalog))
	for _, r := range catalog {
		out = append(out, r.Name)
	}
	return out
}

// PlatformRoleNames nombres de los roles de plataforma.
func PlatformRoleNames() []string {
	var out []string
	for _, r := range catalog {
		if IsPlatform(r.Name) {
			out = append(out, r.Name)
		}
	}
	return out
}

// StoreRoleNames nombres de los roles de tienda.
func StoreRoleNames() []string {
	var out []string
	for _, r := range catalog {
		if IsStoreScoped(r.Name) {
			out = append(out, r.Name)
		}
	}
	return out
}

// ValidateRoleNames exige una lista no vacía de roles conocidos y la devuelve sin duplicados.
func ValidateRoleNames(names []string) ([]string, error) {
	if len(names) == 0 {
		return nil, fmt.Errorf("%w: se requiere al menos un rol", domain.ErrInvalidParams)
	}
	seen := make(map[string]struct{}, len(names))
	out := make([]string, 0, len(names))
	for _, n := range names {
		if !RoleExists(n) {
			return nil, fmt.Errorf("%w: rol desconocido %q", domain.ErrInvalidParams, n)
		}
		if _, dup := seen[n]; dup {
			continue
		}
		seen[n] = struct{}{}
		out = append(out, n)
	}
	return out, nil
}
