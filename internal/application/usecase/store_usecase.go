package usecase

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/jhoicas/storehub-api/internal/application/dto"
	"github.com/jhoicas/storehub-api/internal/application/ports"
	"github.com/jhoicas/storehub-api/internal/domain"
	"github.com/jhoicas/storehub-api/internal/domain/authz"
	"github.com/jhoicas/storehub-api/internal/domain/entity"
	"github.com/jhoicas/storehub-api/internal/domain/repository"
	"github.com/jhoicas/storehub-api/pkg/locale"
	"github.com/jhoicas/storehub-api/pkg/logger"
)

const storeCodeLength = 12

// StoreUseCase aplica reglas de negocio para tiendas.
type StoreUseCase struct {
	stores   repository.StoreRepository
	users    repository.UserRepository
	roles    repository.RoleRepository
	tx       StoreTxRunner
	provider ports.IdentityProvider
	log      *logger.Logger
	newCode  func() string
}

// NewStoreUseCase construye el caso de uso.
func NewStoreUseCase(
	stores repository.StoreRepository,
	users repository.UserRepository,
	roles repository.RoleRepository,
	tx StoreTxRunner,
	provider ports.IdentityProvider,
	log *logger.Logger,
) *StoreUseCase {
	if log == nil {
		log = logger.Nop()
	}
	return &StoreUseCase{
		stores:   stores,
		users:    users,
		roles:    roles,
		tx:       tx,
		provider: provider,
		log:      log,
		newCode:  newStoreCode,
	}
}

// newStoreCode genera un store_code corto a partir de un UUID v4.
func newStoreCode() string {
	return strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:storeCodeLength])
}

// Info devuelve una tienda por store_code.
func (uc *StoreUseCase) Info(ctx context.Context, storeCode string) (*dto.StoreResponse, error) {
	store, err := uc.stores.GetByCode(ctx, storeCode)
	if err != nil {
		return nil, fmt.Errorf("buscar tienda: %w", err)
	}
	if store == nil {
		return nil, fmt.Errorf("%w: tienda %q", domain.ErrNotFound, storeCode)
	}
	return entityToStoreResponse(store), nil
}

// List devuelve todas las tiendas.
func (uc *StoreUseCase) List(ctx context.Context) ([]dto.StoreResponse, error) {
	list, err := uc.stores.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("listar tiendas: %w", err)
	}
	items := make([]dto.StoreResponse, 0, len(list))
	for _, s := range list {
		items = append(items, *entityToStoreResponse(s))
	}
	return items, nil
}

// Create crea la tienda, la liga al usuario dueño y le otorga StoreOwner, todo en una transacción.
func (uc *StoreUseCase) Create(ctx context.Context, ownerUID string, in dto.StoreRequest) (*dto.StoreResponse, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}
	currency, err := locale.Currency(in.CurrencyCode)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidParams, err)
	}
	owner, err := uc.findOwner(ctx, ownerUID)
	if err != nil {
		return nil, err
	}
	if !owner.IsActive {
		return nil, fmt.Errorf("%w: el dueño está inactivo", domain.ErrConflict)
	}
	if owner.StoreID != nil {
		return nil, fmt.Errorf("%w: el usuario ya está ligado a la tienda %q", domain.ErrConflict, owner.StoreCode)
	}

	names := append(owner.RoleNames(), entity.RoleStoreOwner)
	names, err = authz.ValidateRoleNames(names)
	if err != nil {
		return nil, err
	}
	roles, err := loadRoles(ctx, uc.roles, names)
	if err != nil {
		return nil, err
	}

	store := &entity.Store{
		StoreCode:    uc.newCode(),
		Name:         in.Name,
		Description:  in.Description,
		CurrencyCode: currency,
		Status:       entity.StoreStatusActive,
		OwnerUserID:  owner.ID,
	}
	err = uc.tx.RunStoreWrite(ctx, func(users repository.UserRepository, stores repository.StoreRepository) error {
		if err := stores.Create(ctx, store); err != nil {
			return err
		}
		if err := users.BindStore(ctx, owner.ID, store.ID); err != nil {
			return err
		}
		return users.SetRoles(ctx, owner.ID, roles)
	})
	if err != nil {
		return nil, fmt.Errorf("crear tienda: %w", err)
	}
	uc.log.Info().Str("store_code", store.StoreCode).Str("owner_uid", ownerUID).Msg("tienda creada")
	return entityToStoreResponse(store), nil
}

// Freeze congela la tienda del dueño indicado y desactiva al dueño (proveedor y base).
// Repetirla sobre una tienda ya congelada no cambia nada.
func (uc *StoreUseCase) Freeze(ctx context.Context, ownerUID, storeCode string) error {
	owner, err := uc.findOwner(ctx, ownerUID)
	if err != nil {
		return err
	}
	store, err := uc.ownedStore(ctx, owner, storeCode)
	if err != nil {
		return err
	}
	if store.Status != entity.StoreStatusFrozen {
		if err := uc.stores.SetStatus(ctx, storeCode, entity.StoreStatusFrozen); err != nil {
			return fmt.Errorf("congelar tienda: %w", err)
		}
	}
	if owner.IsActive {
		if err := uc.provider.SetDisabled(ctx, owner.UID, true); err != nil {
			return err
		}
		if err := uc.users.SetActive(ctx, owner.ID, false); err != nil {
			return fmt.Errorf("desactivar dueño: %w", err)
		}
	}
	uc.log.Info().Str("store_code", storeCode).Str("owner_uid", ownerUID).Msg("tienda congelada")
	return nil
}

// UpdateMetadata actualiza nombre, descripción y moneda. Los roles de tienda solo sobre la propia;
// una tienda congelada no admite cambios.
func (uc *StoreUseCase) UpdateMetadata(ctx context.Context, actx *authz.AuthContext, ownerUID, storeCode string, in dto.StoreRequest) (*dto.StoreResponse, error) {
	if !actx.CanActOnStore(storeCode) {
		return nil, fmt.Errorf("%w: tienda %q fuera del alcance", domain.ErrRestrictedAccess, storeCode)
	}
	if err := in.Validate(); err != nil {
		return nil, err
	}
	currency, err := locale.Currency(in.CurrencyCode)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidParams, err)
	}
	owner, err := uc.findOwner(ctx, ownerUID)
	if err != nil {
		return nil, err
	}
	store, err := uc.ownedStore(ctx, owner, storeCode)
	if err != nil {
		return nil, err
	}
	if !store.IsActive() {
		return nil, fmt.Errorf("%w: la tienda %q está congelada", domain.ErrConflict, storeCode)
	}
	store.Name = in.Name
	store.Description = in.Description
	store.CurrencyCode = currency
	if err := uc.stores.UpdateMetadata(ctx, store); err != nil {
		return nil, fmt.Errorf("actualizar tienda: %w", err)
	}
	return entityToStoreResponse(store), nil
}

func (uc *StoreUseCase) findOwner(ctx context.Context, uid string) (*entity.User, error) {
	if !entity.ValidUID(uid) {
		return nil, fmt.Errorf("%w: uid", domain.ErrInvalidParams)
	}
	owner, err := uc.users.FindByUID(ctx, uid)
	if err != nil {
		return nil, fmt.Errorf("buscar usuario: %w", err)
	}
	if owner == nil {
		return nil, domain.ErrUserNotFound
	}
	return owner, nil
}

// ownedStore devuelve la tienda solo si pertenece al dueño indicado.
func (uc *StoreUseCase) ownedStore(ctx context.Context, owner *entity.User, storeCode string) (*entity.Store, error) {
	store, err := uc.stores.GetByCode(ctx, storeCode)
	if err != nil {
		return nil, fmt.Errorf("buscar tienda: %w", err)
	}
	if store == nil || store.OwnerUserID != owner.ID {
		return nil, fmt.Errorf("%w: tienda %q del usuario %q", domain.ErrNotFound, storeCode, owner.UID)
	}
	return store, nil
}
