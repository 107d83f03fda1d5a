package authz

import (
	"fmt"
	"net/mail"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/jhoicas/storehub-api/internal/domain"
	"github.com/jhoicas/storehub-api/internal/domain/entity"
	"github.com/jhoicas/storehub-api/pkg/locale"
)

// Claves reconocidas en los listados de usuarios.
const (
	FilterFullNames = "filter_fullnames"
	FilterEmails    = "filter_emails"
	FilterStores    = "filter_stores"
	FilterCountries = "filter_countries"
	FilterPlatform  = "filter_platform"
	FilterInactive  = "filter_inactive"
	OrderBy         = "order_by"
)

const (
	maxFilterValues = 50
	maxNameLength   = 100
	maxEmailLength  = 254
)

var sortable = func() map[string]struct{} {
	m := make(map[string]struct{}, len(entity.UserSortFields))
	for _, f := range entity.UserSortFields {
		m[f] = struct{}{}
	}
	return m
}()

// ReconcileListing valida y acota los filtros y órdenes de un listado según la visibilidad
// del contexto. El orden de los pasos es parte del contrato: forma, luego alcance, luego
// inyección de la tienda propia. No ejecuta la consulta.
func ReconcileListing(actx *AuthContext, rawFilters map[string][]string, rawOrders []string) (*entity.UserListQuery, error) {
	if !actx.Resolved() {
		return nil, domain.ErrUnresolved
	}

	filter, err := parseFilters(rawFilters)
	if err != nil {
		return nil, err
	}
	orders, err := parseOrders(rawOrders)
	if err != nil {
		return nil, err
	}

	// Un rol de plataforma da visibilidad total aunque el usuario también tenga un rol de tienda.
	if actx.HasPlatformRole() {
		return &entity.UserListQuery{Filter: filter, Orders: orders}, nil
	}
	if !actx.HasStoreRole() || actx.StoreScope == "" {
		return nil, fmt.Errorf("%w: el usuario no tiene alcance de datos", domain.ErrRestrictedAccess)
	}
	if filter.Platform {
		return nil, fmt.Errorf("%w: %s", domain.ErrRestrictedAccess, FilterPlatform)
	}
	for _, s := range filter.Stores {
		if s != actx.StoreScope {
			return nil, fmt.Errorf("%w: tienda %q fuera del alcance", domain.ErrRestrictedAccess, s)
		}
	}
	filter.Stores = []string{actx.StoreScope}

	return &entity.UserListQuery{Filter: filter, Orders: orders}, nil
}

func parseFilters(raw map[string][]string) (entity.UserFilter, error) {
	var f entity.UserFilter
	for key, values := range raw {
		if len(values) > maxFilterValues {
			return f, invalid("demasiados valores para %s", key)
		}
		var err error
		switch key {
		case FilterFullNames:
			f.Names, err = parseList(key, values, validName)
		case FilterEmails:
			f.Emails, err = parseList(key, values, validEmail)
		case FilterStores:
			f.Stores, err = parseList(key, values, nil)
		case FilterCountries:
			f.Countries, err = parseList(key, values, locale.Country)
		case FilterPlatform:
			f.Platform, err = parseFlag(key, values)
		case FilterInactive:
			f.Inactive, err = parseFlag(key, values)
		default:
			return f, invalid("filtro desconocido %q", key)
		}
		if err != nil {
			return f, err
		}
	}
	return f, nil
}

func parseList(key string, values []string, check func(string) (string, error)) ([]string, error) {
	out := make([]string, 0, len(values))
	seen := make(map[string]struct{}, len(values))
	for _, v := range values {
		v = strings.TrimSpace(v)
		if v == "" {
			return nil, invalid("valor vacío en %s", key)
		}
		if check != nil {
			var err error
			if v, err = check(v); err != nil {
				return nil, invalid("%s: %v", key, err)
			}
		}
		if _, dup := seen[v]; dup {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out, nil
}

func parseFlag(key string, values []string) (bool, error) {
	if len(values) != 1 {
		return false, invalid("%s admite un único valor", key)
	}
	b, err := strconv.ParseBool(strings.TrimSpace(values[0]))
	if err != nil {
		return false, invalid("%s debe ser 0 o 1", key)
	}
	return b, nil
}

func parseOrders(raw []string) ([]entity.UserOrder, error) {
	out := make([]entity.UserOrder, 0, len(raw))
	seen := make(map[string]struct{}, len(raw))
	for _, v := range raw {
		v = strings.TrimSpace(v)
		desc := strings.HasPrefix(v, "-")
		field := strings.TrimPrefix(v, "-")
		if _, ok := sortable[field]; !ok {
			return nil, invalid("orden desconocido %q", v)
		}
		if _, dup := seen[field]; dup {
			return nil, invalid("orden repetido %q", field)
		}
		seen[field] = struct{}{}
		out = append(out, entity.UserOrder{Field: field, Desc: desc})
	}
	return out, nil
}

func validName(v string) (string, error) {
	if utf8.RuneCountInString(v) > maxNameLength {
		return "", fmt.Errorf("nombre demasiado largo")
	}
	return v, nil
}

func validEmail(v string) (string, error) {
	if len(v) > maxEmailLength {
		return "", fmt.Errorf("email demasiado largo")
	}
	addr, err := mail.ParseAddress(v)
	if err != nil || addr.Address != v {
		return "", fmt.Errorf("email inválido %q", v)
	}
	return strings.ToLower(v), nil
}

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", domain.ErrInvalidParams, fmt.Sprintf(format, args...))
}
