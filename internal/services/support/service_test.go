package support

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

func ptr[T any](v T) *T { return &v }

func TestSupport_Integration(t *testing.T) {
	store := testutil.SetupStore(t)
	svc := NewService(store, zap.NewNop())
	ctx := context.Background()

	customer := testutil.CreateUser(t, store, models.RoleCustomer)
	other := testutil.CreateUser(t, store, models.RoleCustomer)
	admin := testutil.CreateUser(t, store, models.RoleAdmin)

	tk, err := svc.Create(ctx, customer.ID, CreateInput{Subject: "Late parcel", Description: "Order has not arrived"})
	require.NoError(t, err)
	assert.Regexp(t, `^TKT-`, tk.TicketNumber)
	assert.Equal(t, models.TicketStatusOpen, tk.Status)
	assert.Equal(t, models.PriorityMedium, tk.Priority)

	_, err = svc.Create(ctx, customer.ID, CreateInput{Subject: "x", Description: "y", Priority: "someday"})
	require.Error(t, err)

	_, err = svc.Update(ctx, tk.ID, UpdateInput{AssignedTo: &other.ID})
	assert.ErrorIs(t, err, ErrAssigneeNotAdmin)

	_, err = svc.Rate(ctx, customer.ID, tk.ID, 5)
	assert.ErrorIs(t, err, ErrNotRateable)

	tk, err = svc.Update(ctx, tk.ID, UpdateInput{
		Status:        ptr(models.TicketStatusResolved),
		Priority:      ptr(models.PriorityHigh),
		AssignedTo:    &admin.ID,
		AdminResponse: ptr("Reshipped"),
	})
	require.NoError(t, err)
	assert.Equal(t, models.TicketStatusResolved, tk.Status)
	require.NotNil(t, tk.AssignedTo)
	assert.Equal(t, admin.ID, *tk.AssignedTo)

	_, err = svc.Rate(ctx, other.ID, tk.ID, 5)
	assert.ErrorIs(t, err, ErrNotTicketOwner)

	_, err = svc.Rate(ctx, customer.ID, tk.ID, 6)
	require.Error(t, err)

	tk, err = svc.Rate(ctx, customer.ID, tk.ID, 4)
	require.NoError(t, err)
	require.NotNil(t, tk.SatisfactionRating)
	assert.Equal(t, 4, *tk.SatisfactionRating)

	_, total, err := svc.List(ctx, repositories.TicketFilter{Priority: models.PriorityHigh})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)

	st, err := svc.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), st.Total)
	assert.InDelta(t, 4.0, st.AverageSatisfaction, 0.001)
}
