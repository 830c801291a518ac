package dashboard

import (
	"context"
	"errors"
	"testing"
	"time"

	"storeadmin/internal/config"
	"storeadmin/internal/events"
	"storeadmin/internal/models"
	"storeadmin/internal/repositories"
	"storeadmin/internal/services/order"
	"storeadmin/internal/testutil"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type MockCache struct {
	mock.Mock
}

func (m *MockCache) Get(ctx context.Context, key string, dest interface{}) (bool, error) {
	args := m.Called(ctx, key, dest)
	if st, ok := args.Get(0).(*models.DashboardStats); ok {
		*dest.(*models.DashboardStats) = *st
		return true, args.Error(1)
	}
	return false, args.Error(1)
}

func (m *MockCache) SetWithTTL(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	return m.Called(ctx, key, value, ttl).Error(0)
}

func (m *MockCache) Delete(ctx context.Context, keys ...string) error {
	return m.Called(ctx, keys).Error(0)
}

func TestStats_ServedFromCache(t *testing.T) {
	c := new(MockCache)
	c.On("Get", mock.Anything, "dashboard:stats:admin", mock.Anything).
		Return(&models.DashboardStats{TotalOrders: 42}, nil)

	svc := NewService(&repositories.Store{}, c, time.Minute, zap.NewNop())
	st, err := svc.Stats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(42), st.TotalOrders)
	c.AssertExpectations(t)
}

func TestDashboard_Integration(t *testing.T) {
	store := testutil.SetupStore(t)
	ctx := context.Background()

	c := new(MockCache)
	c.On("Get", mock.Anything, "dashboard:stats:admin", mock.Anything).Return(nil, errors.New("redis down"))
	c.On("SetWithTTL", mock.Anything, "dashboard:stats:admin", mock.Anything, time.Minute).Return(nil)
	svc := NewService(store, c, time.Minute, zap.NewNop())

	orders := order.NewService(store, config.Pricing{TaxRate: decimal.Zero, ShippingFlatFee: decimal.Zero}, events.Noop{}, zap.NewNop())
	customer := testutil.CreateUser(t, store, models.RoleCustomer)
	p := testutil.CreateProduct(t, store, "20.00", 10)
	o, err := orders.Create(ctx, order.CreateInput{
		CustomerID: customer.ID,
		Items:      []order.Line{{ProductID: p.ID, Quantity: 2}},
		ShippingAddress: &models.AddressSnapshot{
			StreetAddress: "1 Main St", City: "Springfield", State: "IL", PostalCode: "62701", Country: "US",
		},
		PaymentMethod: models.PaymentMethodUPI,
	})
	require.NoError(t, err)
	for _, status := range []string{models.OrderStatusConfirmed, models.OrderStatusProcessing, models.OrderStatusShipped, models.OrderStatusDelivered} {
		_, err = orders.UpdateStatus(ctx, o.ID, status)
		require.NoError(t, err)
	}

	st, err := svc.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), st.TotalCustomers)
	assert.Equal(t, int64(1), st.TotalOrders)
	assert.True(t, st.TotalRevenue.Equal(decimal.RequireFromString("40")))
	require.Len(t, st.RecentOrders, 1)
	require.Len(t, st.TopProducts, 1)
	assert.Equal(t, int64(2), st.TopProducts[0].Quantity)
	require.Len(t, st.MonthlyRevenue, 1)
	c.AssertExpectations(t)
}
