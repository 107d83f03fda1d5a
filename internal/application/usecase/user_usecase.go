package usecase

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/jhoicas/storehub-api/internal/application/dto"
	"github.com/jhoicas/storehub-api/internal/application/ports"
	"github.com/jhoicas/storehub-api/internal/domain"
	"github.com/jhoicas/storehub-api/internal/domain/authz"
	"github.com/jhoicas/storehub-api/internal/domain/entity"
	"github.com/jhoicas/storehub-api/internal/domain/repository"
	"github.com/jhoicas/storehub-api/pkg/locale"
	"github.com/jhoicas/storehub-api/pkg/logger"
)

// ListUsersInput parámetros crudos de un listado de usuarios.
type ListUsersInput struct {
	Filters map[string][]string
	Orders  []string
	PerPage int
	Page    int
}

// UserUseCase aplica reglas de negocio para usuarios.
type UserUseCase struct {
	users    repository.UserRepository
	roles    repository.RoleRepository
	stores   repository.StoreRepository
	provider ports.IdentityProvider
	log      *logger.Logger
}

// NewUserUseCase construye el caso de uso con los puertos de persistencia y el proveedor de identidad.
func NewUserUseCase(
	users repository.UserRepository,
	roles repository.RoleRepository,
	stores repository.StoreRepository,
	provider ports.IdentityProvider,
	log *logger.Logger,
) *UserUseCase {
	if log == nil {
		log = logger.Nop()
	}
	return &UserUseCase{users: users, roles: roles, stores: stores, provider: provider, log: log}
}

// Get devuelve los datos del proveedor y del usuario interno. Ambas consultas van en paralelo.
// Fuera del propio uid, los roles de tienda solo leen usuarios de su tienda.
func (uc *UserUseCase) Get(ctx context.Context, actx *authz.AuthContext, uid string) (*dto.UserDetailResponse, error) {
	if !entity.ValidUID(uid) {
		return nil, fmt.Errorf("%w: uid", domain.ErrInvalidParams)
	}
	var (
		ident *ports.ExternalIdentity
		user  *entity.User
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		ident, err = uc.provider.GetUser(gctx, uid)
		return err
	})
	g.Go(func() error {
		var err error
		if user, err = uc.users.FindByUID(gctx, uid); err != nil {
			return fmt.Errorf("buscar usuario: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if actx.UID() != uid {
		storeCode := ""
		if user != nil {
			storeCode = user.StoreCode
		}
		if !actx.CanActOnStore(storeCode) {
			return nil, fmt.Errorf("%w: usuario %q fuera del alcance", domain.ErrRestrictedAccess, uid)
		}
	}
	return &dto.UserDetailResponse{
		UserMeta: identityToMeta(ident),
		UserData: entityToUserResponse(user),
	}, nil
}

// List lista usuarios con la visibilidad del contexto.
func (uc *UserUseCase) List(ctx context.Context, actx *authz.AuthContext, in ListUsersInput) (*dto.UserPageResponse, error) {
	if err := validPaging(in); err != nil {
		return nil, err
	}
	q, err := authz.ReconcileListing(actx, in.Filters, in.Orders)
	if err != nil {
		return nil, err
	}
	return uc.query(ctx, q, in)
}

// ListPlatform lista solo usuarios con algún rol de plataforma.
func (uc *UserUseCase) ListPlatform(ctx context.Context, actx *authz.AuthContext, in ListUsersInput) (*dto.UserPageResponse, error) {
	if err := validPaging(in); err != nil {
		return nil, err
	}
	q, err := authz.ReconcileListing(actx, in.Filters, in.Orders)
	if err != nil {
		return nil, err
	}
	q.Filter.Platform = true
	return uc.query(ctx, q, in)
}

// ListStore lista los usuarios de una tienda. El store_code de la ruta reemplaza cualquier
// filter_stores del query y pasa por la misma reconciliación que el resto de filtros.
func (uc *UserUseCase) ListStore(ctx context.Context, actx *authz.AuthContext, storeCode string, in ListUsersInput) (*dto.UserPageResponse, error) {
	if err := validPaging(in); err != nil {
		return nil, err
	}
	filters := make(map[string][]string, len(in.Filters)+1)
	for k, v := range in.Filters {
		filters[k] = v
	}
	filters[authz.FilterStores] = []string{storeCode}

	q, err := authz.ReconcileListing(actx, filters, in.Orders)
	if err != nil {
		return nil, err
	}
	store, err := uc.stores.GetByCode(ctx, storeCode)
	if err != nil {
		return nil, fmt.Errorf("buscar tienda: %w", err)
	}
	if store == nil {
		return nil, fmt.Errorf("%w: tienda %q", domain.ErrNotFound, storeCode)
	}
	return uc.query(ctx, q, in)
}

func (uc *UserUseCase) query(ctx context.Context, q *entity.UserListQuery, in ListUsersInput) (*dto.UserPageResponse, error) {
	page, err := uc.users.Query(ctx, *q, in.PerPage, in.Page)
	if err != nil {
		return nil, fmt.Errorf("listar usuarios: %w", err)
	}
	items := make([]dto.UserResponse, 0, len(page.Items))
	for _, u := range page.Items {
		items = append(items, *entityToUserResponse(u))
	}
	return &dto.UserPageResponse{
		Meta: dto.PagingMeta{
			Next:       page.HasNext,
			Prev:       page.HasPrev,
			Pages:      page.Pages,
			TotalItems: page.Total,
		},
		Items: items,
	}, nil
}

// ToggleActive invierte el estado activo del usuario. Primero se refleja en el proveedor
// (disabled) y luego en la base, para que un fallo del proveedor no deje estados cruzados.
func (uc *UserUseCase) ToggleActive(ctx context.Context, uid string) (*dto.UserResponse, error) {
	user, err := uc.mustFind(ctx, uid)
	if err != nil {
		return nil, err
	}
	active := !user.IsActive
	if err := uc.setActive(ctx, user, active); err != nil {
		return nil, err
	}
	return entityToUserResponse(user), nil
}

func (uc *UserUseCase) setActive(ctx context.Context, user *entity.User, active bool) error {
	if err := uc.provider.SetDisabled(ctx, user.UID, !active); err != nil {
		return err
	}
	if err := uc.users.SetActive(ctx, user.ID, active); err != nil {
		uc.log.Error().Err(err).Str("uid", user.UID).Bool("active", active).
			Msg("el proveedor quedó actualizado pero la base no")
		return fmt.Errorf("actualizar estado: %w", err)
	}
	user.IsActive = active
	return nil
}

// MarkTutorialPassed marca el tutorial como visto. Solo el propio usuario o un rol de plataforma.
func (uc *UserUseCase) MarkTutorialPassed(ctx context.Context, actx *authz.AuthContext, uid string) error {
	if actx.UID() != uid && !actx.HasPlatformRole() {
		return fmt.Errorf("%w: solo el propio usuario", domain.ErrRestrictedAccess)
	}
	user, err := uc.mustFind(ctx, uid)
	if err != nil {
		return err
	}
	if err := uc.users.MarkTutorialPassed(ctx, user.ID); err != nil {
		return fmt.Errorf("marcar tutorial: %w", err)
	}
	return nil
}

// UpdateOwnProfile actualiza el perfil del usuario autenticado.
func (uc *UserUseCase) UpdateOwnProfile(ctx context.Context, actx *authz.AuthContext, in dto.UpdateUserInfoRequest) error {
	if !actx.Resolved() {
		return domain.ErrUnresolved
	}
	return uc.updateProfile(ctx, actx.User, in)
}

// UpdateProfileBySupport actualiza el perfil de otro usuario. Support puede sobre cualquiera;
// StoreSupport solo sobre usuarios de su misma tienda.
func (uc *UserUseCase) UpdateProfileBySupport(ctx context.Context, actx *authz.AuthContext, uid string, in dto.UpdateUserInfoRequest) error {
	target, err := uc.mustFind(ctx, uid)
	if err != nil {
		return err
	}
	if !actx.HasRole(entity.RoleSupport) && !actx.CanActOnStore(target.StoreCode) {
		return fmt.Errorf("%w: el usuario no pertenece a la misma tienda", domain.ErrRestrictedAccess)
	}
	return uc.updateProfile(ctx, target, in)
}

func (uc *UserUseCase) updateProfile(ctx context.Context, user *entity.User, in dto.UpdateUserInfoRequest) error {
	if err := in.Validate(); err != nil {
		return err
	}
	country, err := locale.Country(in.Country)
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrInvalidParams, err)
	}
	currency, err := locale.Currency(in.Currency)
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrInvalidParams, err)
	}
	profile := entity.UserProfile{
		FullName: in.FullName,
		Phone:    in.Phone,
		Address1: in.Address1,
		Address2: in.Address2,
		Country:  country,
		Currency: currency,
	}
	if err := uc.users.UpdateProfile(ctx, user.ID, profile); err != nil {
		return fmt.Errorf("actualizar perfil: %w", err)
	}
	return nil
}

// CreateStaff registra en el proveedor una cuenta nueva y la crea como staff de la tienda.
// Los roles de tienda solo pueden crear staff en su propia tienda.
func (uc *UserUseCase) CreateStaff(ctx context.Context, actx *authz.AuthContext, storeCode string, in dto.CreateStaffRequest) (*dto.UserResponse, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}
	if !actx.CanActOnStore(storeCode) {
		return nil, fmt.Errorf("%w: tienda %q fuera del alcance", domain.ErrRestrictedAccess, storeCode)
	}
	names, err := authz.ValidateRoleNames(in.Roles)
	if err != nil {
		return nil, err
	}
	for _, n := range names {
		if !authz.IsStoreScoped(n) {
			return nil, fmt.Errorf("%w: %s no es un rol de tienda", domain.ErrInvalidParams, n)
		}
	}
	store, err := uc.activeStore(ctx, storeCode)
	if err != nil {
		return nil, err
	}
	roles, err := uc.loadRoles(ctx, names)
	if err != nil {
		return nil, err
	}

	uid, err := uc.provider.CreateUser(ctx, in.Email, in.Password, in.FullName)
	if err != nil {
		return nil, err
	}
	storeID := store.ID
	user := &entity.User{
		UID:       uid,
		Email:     in.Email,
		FullName:  in.FullName,
		IsActive:  true,
		StoreID:   &storeID,
		StoreCode: store.StoreCode,
		Roles:     roles,
	}
	if err := uc.users.Create(ctx, user); err != nil {
		uc.log.Error().Err(err).Str("uid", uid).Str("store_code", storeCode).
			Msg("cuenta creada en el proveedor sin usuario interno")
		return nil, fmt.Errorf("crear usuario: %w", err)
	}
	uc.log.Info().Str("uid", uid).Str("store_code", storeCode).Strs("roles", names).Msg("staff creado")
	return entityToUserResponse(user), nil
}

// SyncPlatformUser crea (o actualiza los roles de) un usuario de plataforma a partir de su
// cuenta en el proveedor. Los roles de tienda que ya tuviera se conservan.
func (uc *UserUseCase) SyncPlatformUser(ctx context.Context, uid string, in dto.SyncPlatformUserRequest) (*dto.SyncUserResponse, error) {
	if !entity.ValidUID(uid) {
		return nil, fmt.Errorf("%w: uid", domain.ErrInvalidParams)
	}
	names, err := authz.ValidateRoleNames(in.RoleNames)
	if err != nil {
		return nil, err
	}
	for _, n := range names {
		if !authz.IsPlatform(n) {
			return nil, fmt.Errorf("%w: %s no es un rol de plataforma", domain.ErrInvalidParams, n)
		}
	}
	ident, err := uc.provider.GetUser(ctx, uid)
	if err != nil {
		return nil, err
	}
	user, err := uc.users.FindByUID(ctx, uid)
	if err != nil {
		return nil, fmt.Errorf("buscar usuario: %w", err)
	}

	if user == nil {
		roles, err := uc.loadRoles(ctx, names)
		if err != nil {
			return nil, err
		}
		user = &entity.User{
			UID:      uid,
			Email:    ident.Email,
			FullName: ident.DisplayName,
			IsActive: !ident.Disabled,
			Roles:    roles,
		}
		if err := uc.users.Create(ctx, user); err != nil {
			return nil, fmt.Errorf("crear usuario: %w", err)
		}
		uc.log.Info().Str("uid", uid).Strs("roles", names).Msg("usuario de plataforma sincronizado")
	} else {
		for _, r := range user.Roles {
			if authz.IsStoreScoped(r.Name) {
				names = append(names, r.Name)
			}
		}
		roles, err := uc.loadRoles(ctx, names)
		if err != nil {
			return nil, err
		}
		if err := uc.users.SetRoles(ctx, user.ID, roles); err != nil {
			return nil, fmt.Errorf("actualizar roles: %w", err)
		}
		user.Roles = roles
	}

	return &dto.SyncUserResponse{User: identityToMeta(ident), ExtendInfo: entityToUserResponse(user)}, nil
}

// ConfirmStoreBinding valida el resultado del bootstrap de un cliente de tienda: el uid de la
// ruta debe ser el del token y el usuario debe quedar ligado a esa tienda.
func (uc *UserUseCase) ConfirmStoreBinding(actx *authz.AuthContext, uid, storeCode string) (*dto.UserResponse, error) {
	if !entity.ValidUID(uid) {
		return nil, fmt.Errorf("%w: uid", domain.ErrInvalidParams)
	}
	if actx.UID() != uid {
		return nil, fmt.Errorf("%w: el uid no corresponde al token", domain.ErrRestrictedAccess)
	}
	if !actx.Created && actx.StoreScope != storeCode {
		return nil, fmt.Errorf("%w: el usuario ya existe", domain.ErrDuplicate)
	}
	return entityToUserResponse(actx.User), nil
}

func (uc *UserUseCase) mustFind(ctx context.Context, uid string) (*entity.User, error) {
	if !entity.ValidUID(uid) {
		return nil, fmt.Errorf("%w: uid", domain.ErrInvalidParams)
	}
	user, err := uc.users.FindByUID(ctx, uid)
	if err != nil {
		return nil, fmt.Errorf("buscar usuario: %w", err)
	}
	if user == nil {
		return nil, domain.ErrUserNotFound
	}
	return user, nil
}

func (uc *UserUseCase) activeStore(ctx context.Context, storeCode string) (*entity.Store, error) {
	store, err := uc.stores.GetByCode(ctx, storeCode)
	if err != nil {
		return nil, fmt.Errorf("buscar tienda: %w", err)
	}
	if store == nil {
		return nil, fmt.Errorf("%w: tienda %q", domain.ErrNotFound, storeCode)
	}
	if !store.IsActive() {
		return nil, fmt.Errorf("%w: la tienda %q está congelada", domain.ErrConflict, storeCode)
	}
	return store, nil
}

func (uc *UserUseCase) loadRoles(ctx context.Context, names []string) ([]entity.Role, error) {
	return loadRoles(ctx, uc.roles, names)
}

func loadRoles(ctx context.Context, repo repository.RoleRepository, names []string) ([]entity.Role, error) {
	roles, err := repo.GetByNames(ctx, names)
	if err != nil {
		return nil, fmt.Errorf("obtener roles: %w", err)
	}
	if len(roles) != len(names) {
		return nil, fmt.Errorf("catálogo de roles incompleto: se esperaban %d roles, hay %d", len(names), len(roles))
	}
	return roles, nil
}

func validPaging(in ListUsersInput) error {
	if !dto.ValidPerPage(in.PerPage) {
		return fmt.Errorf("%w: per_page debe ser uno de %v", domain.ErrInvalidParams, dto.AllowedPerPage)
	}
	if in.Page < 1 {
		return fmt.Errorf("%w: page debe ser >= 1", domain.ErrInvalidParams)
	}
	return nil
}
