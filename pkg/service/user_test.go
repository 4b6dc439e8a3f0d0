package service_test

import (
	"context"
	"testing"

	"github.com/Sternrassler/foodapp/internal/testutil"
	"github.com/Sternrassler/foodapp/pkg/cache"
	"github.com/Sternrassler/foodapp/pkg/model"
	"github.com/Sternrassler/foodapp/pkg/service"
	"github.com/Sternrassler/foodapp/pkg/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUsers_CreateEvictsList(t *testing.T) {
	ctx := context.Background()
	f := testutil.NewFixture(t)
	users := f.Services.Users

	asha := f.SeedUser(t, "asha")
	all, err := users.All(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.True(t, f.Cached(t, cache.RegionUser, cache.AllUsersKey))

	ravi := f.SeedUser(t, "ravi")
	assert.False(t, f.Cached(t, cache.RegionUser, cache.AllUsersKey))
	assert.True(t, f.Cached(t, cache.RegionUser, cache.IDKey(ravi.ID)))

	all, err = users.All(ctx)
	require.NoError(t, err)
	assert.Equal(t, []model.User{asha, ravi}, all)
}

func TestUsers_AllEmpty(t *testing.T) {
	f := testutil.NewFixture(t)

	_, err := f.Services.Users.All(context.Background())
	assert.ErrorIs(t, err, service.ErrNotFound)
}

func TestUsers_Update(t *testing.T) {
	ctx := context.Background()
	f := testutil.NewFixture(t)
	u := f.SeedUser(t, "asha")
	_, err := f.Services.Users.All(ctx)
	require.NoError(t, err)

	updated, err := f.Services.Users.Update(ctx, u.ID, model.User{Username: "asha.k", Email: "asha.k@example.com", Address: "7 Hill View"})
	require.NoError(t, err)
	assert.Equal(t, "USER", updated.Role, "role is not a profile field")
	assert.False(t, f.Cached(t, cache.RegionUser, cache.AllUsersKey))

	f.ResetCalls()
	got, err := f.Services.Users.Get(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, "7 Hill View", got.Address)
	assert.Zero(t, f.Users.Calls(store.OpFind))

	_, err = f.Services.Users.Update(ctx, u.ID, model.User{Username: "asha"})
	assert.ErrorIs(t, err, service.ErrValidationFailed)
	_, err = f.Services.Users.Update(ctx, 50, model.User{Username: "x", Email: "x@example.com"})
	assert.ErrorIs(t, err, service.ErrNotFound)
}

func TestUsers_Image(t *testing.T) {
	ctx := context.Background()
	f := testutil.NewFixture(t)
	users := f.Services.Users
	u := f.SeedUser(t, "asha")

	_, err := users.Image(ctx, u.ID)
	assert.ErrorIs(t, err, service.ErrNotFound)

	_, err = users.UploadImage(ctx, u.ID, nil)
	assert.ErrorIs(t, err, service.ErrValidationFailed)

	png := []byte{0x89, 'P', 'N', 'G'}
	_, err = users.UploadImage(ctx, u.ID, png)
	require.NoError(t, err)

	f.ResetCalls()
	img, err := users.Image(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, png, img)
	assert.Zero(t, f.Users.Calls(store.OpFind))

	_, err = users.Image(ctx, 99)
	assert.ErrorIs(t, err, service.ErrNotFound)
}

func TestUsers_Delete(t *testing.T) {
	ctx := context.Background()
	f := testutil.NewFixture(t)
	u := f.SeedUser(t, "asha")
	_, err := f.Services.Users.All(ctx)
	require.NoError(t, err)

	require.NoError(t, f.Services.Users.Delete(ctx, u.ID))
	assert.False(t, f.Cached(t, cache.RegionUser, cache.IDKey(u.ID)))
	assert.False(t, f.Cached(t, cache.RegionUser, cache.AllUsersKey))

	_, err = f.Services.Users.Get(ctx, u.ID)
	assert.ErrorIs(t, err, service.ErrNotFound)
	assert.ErrorIs(t, f.Services.Users.Delete(ctx, u.ID), service.ErrNotFound)
}

func TestUsers_Warm(t *testing.T) {
	ctx := context.Background()
	f := testutil.NewFixture(t)

	require.NoError(t, f.Services.Users.Warm(ctx))
	assert.False(t, f.Cached(t, cache.RegionUser, cache.AllUsersKey))

	f.SeedUser(t, "asha")
	f.SeedUser(t, "ravi")
	require.NoError(t, f.Services.Users.Warm(ctx))
	assert.True(t, f.Cached(t, cache.RegionUser, cache.AllUsersKey))

	f.ResetCalls()
	all, err := f.Services.Users.All(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 2)
	assert.Zero(t, f.Users.Calls(store.OpFindAll))
}
