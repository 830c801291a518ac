package user

import (
	"context"
	"testing"

	"storeadmin/internal/models"
	"storeadmin/internal/repositories"
	"storeadmin/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestUsers_Integration(t *testing.T) {
	store := testutil.SetupStore(t)
	svc := NewService(store, nil, zap.NewNop())
	ctx := context.Background()

	testutil.CreateUser(t, store, models.RoleAdmin)
	c, err := svc.CreateCustomer(ctx, CreateCustomerInput{FullName: "Sam Lee", Email: "Sam@Example.com", Password: "Secret123"})
	require.NoError(t, err)
	assert.Equal(t, "sam@example.com", c.Email)
	assert.Equal(t, models.UserStatusActive, c.Status)

	_, err = svc.CreateCustomer(ctx, CreateCustomerInput{FullName: "Sam", Email: "sam@example.com", Password: "Secret123"})
	assert.ErrorIs(t, err, ErrEmailTaken)

	list, total, err := svc.ListCustomers(ctx, repositories.UserFilter{})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, list, 1)

	_, total, err = svc.ListCustomers(ctx, repositories.UserFilter{Search: "lee"})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)

	before, err := svc.Get(ctx, c.ID)
	require.NoError(t, err)

	suspended, err := svc.UpdateStatus(ctx, c.ID, models.UserStatusSuspended)
	require.NoError(t, err)
	assert.Equal(t, models.UserStatusSuspended, suspended.Status)

	var version int
	require.NoError(t, store.DB.Raw("SELECT token_version FROM users WHERE id = ?", c.ID).Row().Scan(&version))
	assert.Equal(t, before.TokenVersion+1, version)

	_, err = svc.UpdateStatus(ctx, c.ID, "banned")
	require.Error(t, err)
	_, err = svc.UpdateStatus(ctx, 999999, models.UserStatusActive)
	assert.ErrorIs(t, err, ErrUserNotFound)

	st, err := svc.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), st.Total)
	assert.Equal(t, int64(1), st.Suspended)
}
