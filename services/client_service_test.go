package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carbuapp/oficina-api/tests/testutil"
)

func TestClientService_CreateAndList(t *testing.T) {
	f := newFixture(t)
	clients := NewClientService(f.store)

	created, err := clients.Create(f.ctx, f.scope1, ClientInput{Name: "  Ana  ", Phone: strPtr("11999990000")})
	require.NoError(t, err)
	assert.Equal(t, "Ana", created.Name)
	assert.Equal(t, f.w1.ID, created.WorkshopID)

	list, err := clients.List(f.ctx, f.scope1)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, created.ID, list[0].ID, "newest first")
	for _, c := range list {
		assert.Equal(t, f.w1.ID, c.WorkshopID)
	}
}

func TestClientService_CreateRequiresName(t *testing.T) {
	f := newFixture(t)
	clients := NewClientService(f.store)

	_, err := clients.Create(f.ctx, f.scope1, ClientInput{Name: "   "})
	require.ErrorIs(t, err, ErrValidation)
	assert.Equal(t, "name is required", MessageOf(err))
}

func TestClientService_TenantIsolation(t *testing.T) {
	f := newFixture(t)
	clients := NewClientService(f.store)

	_, err := clients.Update(f.ctx, f.scope2, f.client1.ID, ClientUpdate{Name: strPtr("Hijacked")})
	assert.ErrorIs(t, err, ErrNotFound)

	err = clients.Delete(f.ctx, f.scope2, f.client1.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	list, err := clients.List(f.ctx, f.scope2)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, f.client2.ID, list[0].ID)

	list, err = clients.List(f.ctx, f.scope1)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "Maria", list[0].Name)
}

func TestClientService_Update(t *testing.T) {
	f := newFixture(t)
	clients := NewClientService(f.store)

	updated, err := clients.Update(f.ctx, f.scope1, f.client1.ID, ClientUpdate{Phone: strPtr("1133334444")})
	require.NoError(t, err)
	assert.Equal(t, "Maria", updated.Name)
	require.NotNil(t, updated.Phone)
	assert.Equal(t, "1133334444", *updated.Phone)

	_, err = clients.Update(f.ctx, f.scope1, f.client1.ID, ClientUpdate{Name: strPtr("")})
	assert.ErrorIs(t, err, ErrValidation)
}

func TestClientService_UpdateWithNoFieldsIsANoOp(t *testing.T) {
	f := newFixture(t)
	clients := NewClientService(f.store)

	got, err := clients.Update(f.ctx, f.scope1, f.client1.ID, ClientUpdate{})
	require.NoError(t, err)
	assert.Equal(t, f.client1.ID, got.ID)
	assert.Equal(t, "Maria", got.Name)
}

func TestClientService_DeleteGuard(t *testing.T) {
	f := newFixture(t)
	clients := NewClientService(f.store)
	testutil.SeedVehicle(t, f.db, f.w1.ID, f.client1.ID, "SEC0ND1")

	err := clients.Delete(f.ctx, f.scope1, f.client1.ID)
	require.ErrorIs(t, err, ErrConflict)
	assert.Equal(t, "cannot delete client: it has 2 dependent vehicle(s), remove them first", MessageOf(err))

	lonely := testutil.SeedClient(t, f.db, f.w1.ID, "Sem carro")
	require.NoError(t, clients.Delete(f.ctx, f.scope1, lonely.ID))

	err = clients.Delete(f.ctx, f.scope1, lonely.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}
