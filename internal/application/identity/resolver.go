// Package identity resuelve la identidad externa (Firebase) de un request en el usuario interno
// con sus roles y su tienda. Es el único punto que traduce un token en un authz.AuthContext.
package identity

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jhoicas/storehub-api/internal/application/ports"
	"github.com/jhoicas/storehub-api/internal/domain"
	"github.com/jhoicas/storehub-api/internal/domain/authz"
	"github.com/jhoicas/storehub-api/internal/domain/entity"
	"github.com/jhoicas/storehub-api/internal/domain/repository"
	"github.com/jhoicas/storehub-api/pkg/logger"
)

// Bootstrap permite crear el usuario interno cuando la identidad es válida pero aún no existe.
// Roles son nombres del catálogo; StoreCode es obligatorio si hay algún rol de tienda.
// Si ExpectedUID no está vacío, el token debe pertenecer a ese uid.
type Bootstrap struct {
	Roles       []string
	StoreCode   string
	ExpectedUID string
}

// Resolver traduce credenciales en contextos de autorización.
type Resolver struct {
	provider ports.IdentityProvider
	users    repository.UserRepository
	roles    repository.RoleRepository
	stores   repository.StoreRepository
	log      *logger.Logger
}

// NewResolver construye el resolver con sus puertos.
func NewResolver(
	provider ports.IdentityProvider,
	users repository.UserRepository,
	roles repository.RoleRepository,
	stores repository.StoreRepository,
	log *logger.Logger,
) *Resolver {
	if log == nil {
		log = logger.Nop()
	}
	return &Resolver{provider: provider, users: users, roles: roles, stores: stores, log: log}
}

// Resolve verifica la credencial y devuelve el contexto del usuario interno.
// Con bootstrap == nil un uid desconocido es domain.ErrUserNotFound.
// Un usuario desactivado devuelve el contexto completo junto con domain.ErrUserInactive.
func (r *Resolver) Resolve(ctx context.Context, credential string, bootstrap *Bootstrap) (*authz.AuthContext, error) {
	credential = strings.TrimSpace(credential)
	if credential == "" {
		return nil, domain.ErrUnresolved
	}
	if err := ctx.Err(); err != nil {
		return nil, unavailable(err)
	}

	ident, err := r.provider.VerifyToken(ctx, credential)
	if err != nil {
		return nil, classifyProvider(ctx, err)
	}
	if ident == nil || ident.UID == "" {
		return nil, fmt.Errorf("%w: identidad sin uid", domain.ErrInvalidCredential)
	}
	if ident.Disabled {
		return nil, fmt.Errorf("%w: cuenta deshabilitada en el proveedor", domain.ErrInvalidCredential)
	}
	// El uid de la ruta se compara antes de consultar o crear el usuario.
	if bootstrap != nil && bootstrap.ExpectedUID != "" && bootstrap.ExpectedUID != ident.UID {
		return nil, fmt.Errorf("%w: el token no pertenece al uid %q", domain.ErrRestrictedAccess, bootstrap.ExpectedUID)
	}

	user, err := r.users.FindByUID(ctx, ident.UID)
	if err != nil {
		return nil, r.persistenceErr(ctx, "buscar usuario", err)
	}

	created := false
	if user == nil {
		if bootstrap == nil {
			return nil, domain.ErrUserNotFound
		}
		user, created, err = r.bootstrap(ctx, ident, bootstrap)
		if err != nil {
			return nil, err
		}
	}

	actx := authz.NewAuthContext(user)
	actx.Created = created
	if !user.IsActive {
		return actx, domain.ErrUserInactive
	}
	return actx, nil
}

// bootstrap crea el usuario con los roles y la tienda pedidos. Si otro request lo creó
// en paralelo se devuelve el existente.
func (r *Resolver) bootstrap(ctx context.Context, ident *ports.ExternalIdentity, b *Bootstrap) (*entity.User, bool, error) {
	names, err := authz.ValidateRoleNames(b.Roles)
	if err != nil {
		return nil, false, err
	}
	storeScoped := false
	for _, n := range names {
		if authz.IsStoreScoped(n) {
			storeScoped = true
			break
		}
	}

	user := &entity.User{
		UID:      ident.UID,
		Email:    ident.Email,
		FullName: ident.DisplayName,
		IsActive: true,
	}

	switch {
	case storeScoped:
		if b.StoreCode == "" {
			return nil, false, fmt.Errorf("%w: los roles de tienda requieren store_code", domain.ErrInvalidParams)
		}
		store, err := r.stores.GetByCode(ctx, b.StoreCode)
		if err != nil {
			return nil, false, r.persistenceErr(ctx, "buscar tienda", err)
		}
		if store == nil {
			return nil, false, fmt.Errorf("%w: tienda %q", domain.ErrNotFound, b.StoreCode)
		}
		if !store.IsActive() {
			return nil, false, fmt.Errorf("%w: la tienda %q está congelada", domain.ErrConflict, b.StoreCode)
		}
		id := store.ID
		user.StoreID = &id
		user.StoreCode = store.StoreCode
	case b.StoreCode != "":
		return nil, false, fmt.Errorf("%w: store_code sin rol de tienda", domain.ErrInvalidParams)
	}

	roles, err := r.roles.GetByNames(ctx, names)
	if err != nil {
		return nil, false, r.persistenceErr(ctx, "obtener roles", err)
	}
	if len(roles) != len(names) {
		return nil, false, fmt.Errorf("catálogo de roles incompleto: se esperaban %d roles, hay %d", len(names), len(roles))
	}
	user.Roles = roles

	if err := r.users.Create(ctx, user); err != nil {
		if errors.Is(err, domain.ErrDuplicate) {
			existing, ferr := r.users.FindByUID(ctx, ident.UID)
			if ferr != nil {
				return nil, false, r.persistenceErr(ctx, "releer usuario", ferr)
			}
			if existing != nil {
				return existing, false, nil
			}
		}
		return nil, false, r.persistenceErr(ctx, "crear usuario", err)
	}

	r.log.Info().
		Str("uid", user.UID).
		Str("store_code", user.StoreCode).
		Strs("roles", names).
		Msg("usuario creado desde el proveedor de identidad")
	return user, true, nil
}

func (r *Resolver) persistenceErr(ctx context.Context, op string, err error) error {
	if ctx.Err() != nil {
		return unavailable(ctx.Err())
	}
	r.log.Error().Err(err).Str("op", op).Msg("falla de persistencia resolviendo identidad")
	return fmt.Errorf("%s: %w", op, err)
}

// classifyProvider deja pasar los errores ya clasificados; el resto se trata como indisponibilidad.
func classifyProvider(ctx context.Context, err error) error {
	if ctx.Err() != nil {
		return unavailable(ctx.Err())
	}
	switch {
	case errors.Is(err, domain.ErrInvalidCredential),
		errors.Is(err, domain.ErrProviderUnavailable),
		errors.Is(err, domain.ErrUserNotFound):
		return err
	}
	return unavailable(err)
}

func unavailable(cause error) error {
	return fmt.Errorf("%w: %v", domain.ErrProviderUnavailable, cause)
}
