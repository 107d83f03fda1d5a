package usecase_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/storehub-api/internal/application/dto"
	"github.com/jhoicas/storehub-api/internal/application/usecase"
	"github.com/jhoicas/storehub-api/internal/domain"
	"github.com/jhoicas/storehub-api/internal/domain/entity"
	"github.com/jhoicas/storehub-api/internal/testutil"
)

type storeEnv struct {
	provider *testutil.Provider
	users    *testutil.Users
	stores   *testutil.Stores
	tx       *testutil.Tx
	uc       *usecase.StoreUseCase
}

func newStoreEnv() *storeEnv {
	e := &storeEnv{provider: testutil.NewProvider(), stores: testutil.NewStores()}
	e.users = testutil.NewUsers(e.stores)
	e.tx = &testutil.Tx{Users: e.users, Stores: e.stores}
	e.uc = usecase.NewStoreUseCase(e.stores, e.users, testutil.SeededRoles(), e.tx, e.provider, nil)
	return e
}

func storeRequest() dto.StoreRequest {
	return dto.StoreRequest{Name: "Mi Tienda", Description: "desc", CurrencyCode: "usd"}
}

func TestStoreUseCase_Create(t *testing.T) {
	e := newStoreEnv()
	e.users.Add("owner", "", entity.RoleOwner)

	out, err := e.uc.Create(context.Background(), "owner", storeRequest())
	require.NoError(t, err)
	assert.Len(t, out.StoreCode, 12)
	assert.Equal(t, "USD", out.CurrencyCode)
	assert.Equal(t, entity.StoreStatusActive, out.Status)
	assert.Equal(t, 1, e.tx.Runs)

	owner := e.users.Get("owner")
	assert.Equal(t, out.StoreCode, owner.StoreCode)
	assert.ElementsMatch(t, []string{entity.RoleOwner, entity.RoleStoreOwner}, owner.RoleNames())

	info, err := e.uc.Info(context.Background(), out.StoreCode)
	require.NoError(t, err)
	assert.Equal(t, "Mi Tienda", info.Name)
}

func TestStoreUseCase_Create_Rechazos(t *testing.T) {
	e := newStoreEnv()
	e.stores.Add("S1", 0)
	e.users.Add("bound", "S1", entity.RoleStoreOwner)
	inactive := e.users.Add("inactive", "")
	require.NoError(t, e.users.SetActive(context.Background(), inactive.ID, false))

	_, err := e.uc.Create(context.Background(), "bound", storeRequest())
	assert.ErrorIs(t, err, domain.ErrConflict)

	_, err = e.uc.Create(context.Background(), "inactive", storeRequest())
	assert.ErrorIs(t, err, domain.ErrConflict)

	_, err = e.uc.Create(context.Background(), "nadie", storeRequest())
	assert.ErrorIs(t, err, domain.ErrUserNotFound)

	bad := storeRequest()
	bad.CurrencyCode = "DOLLAR"
	_, err = e.uc.Create(context.Background(), "inactive", bad)
	assert.ErrorIs(t, err, domain.ErrInvalidParams)

	assert.Zero(t, e.tx.Runs)
}

func TestStoreUseCase_Freeze(t *testing.T) {
	e := newStoreEnv()
	owner := e.users.Add("owner", "")
	e.provider.AddAccount("", "owner", "owner@example.com", "Owner")
	e.stores.Add("S1", owner.ID)

	require.NoError(t, e.uc.Freeze(context.Background(), "owner", "S1"))
	st, _ := e.stores.GetByCode(context.Background(), "S1")
	assert.Equal(t, entity.StoreStatusFrozen, st.Status)
	assert.False(t, e.users.Get("owner").IsActive)
	assert.True(t, e.provider.Account("owner").Disabled)

	// Repetir no reactiva al dueño.
	require.NoError(t, e.uc.Freeze(context.Background(), "owner", "S1"))
	assert.False(t, e.users.Get("owner").IsActive)
}

func TestStoreUseCase_Freeze_TiendaDeOtroDueño(t *testing.T) {
	e := newStoreEnv()
	e.users.Add("owner", "")
	other := e.users.Add("other", "")
	e.stores.Add("S1", other.ID)

	err := e.uc.Freeze(context.Background(), "owner", "S1")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestStoreUseCase_UpdateMetadata(t *testing.T) {
	e := newStoreEnv()
	owner := e.users.Add("owner", "S1", entity.RoleStoreOwner)
	support := e.users.Add("support", "", entity.RoleSupport)
	e.stores.Add("S1", owner.ID)
	e.stores.Add("FROZEN", owner.ID)
	require.NoError(t, e.stores.SetStatus(context.Background(), "FROZEN", entity.StoreStatusFrozen))

	in := storeRequest()
	in.Name = "Renombrada"
	out, err := e.uc.UpdateMetadata(context.Background(), actor(owner), "owner", "S1", in)
	require.NoError(t, err)
	assert.Equal(t, "Renombrada", out.Name)

	_, err = e.uc.UpdateMetadata(context.Background(), actor(support), "owner", "FROZEN", in)
	assert.ErrorIs(t, err, domain.ErrConflict)

	_, err = e.uc.UpdateMetadata(context.Background(), actor(owner), "owner", "FROZEN", in)
	assert.ErrorIs(t, err, domain.ErrRestrictedAccess, "StoreOwner solo sobre su propia tienda")

	_, err = e.uc.UpdateMetadata(context.Background(), actor(support), "support", "S1", in)
	assert.ErrorIs(t, err, domain.ErrNotFound, "la tienda debe ser del uid de la ruta")
}

func TestStoreUseCase_List(t *testing.T) {
	e := newStoreEnv()
	e.stores.Add("S1", 0)
	e.stores.Add("S2", 0)

	out, err := e.uc.List(context.Background())
	require.NoError(t, err)
	require.Len(t, out, 2)
	assert.Equal(t, "S1", out[0].StoreCode)

	_, err = e.uc.Info(context.Background(), "NOPE")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
