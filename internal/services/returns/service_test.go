package returns

import (
	"context"
	"testing"

	"storeadmin/internal/config"
	"storeadmin/internal/events"
	"storeadmin/internal/models"
	"storeadmin/internal/repositories"
	"storeadmin/internal/services/order"
	"storeadmin/internal/testutil"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestReturns_Integration(t *testing.T) {
	store := testutil.SetupStore(t)
	svc := NewService(store, zap.NewNop())
	orders := order.NewService(store, config.Pricing{TaxRate: decimal.Zero, ShippingFlatFee: decimal.Zero}, events.Noop{}, zap.NewNop())
	ctx := context.Background()

	customer := testutil.CreateUser(t, store, models.RoleCustomer)
	p := testutil.CreateProduct(t, store, "30.00", 10)
	o, err := orders.Create(ctx, order.CreateInput{
		CustomerID: customer.ID,
		Items:      []order.Line{{ProductID: p.ID, Quantity: 2}},
		ShippingAddress: &models.AddressSnapshot{
			StreetAddress: "1 Main St", City: "Springfield", State: "IL", PostalCode: "62701", Country: "US",
		},
		PaymentMethod: models.PaymentMethodUPI,
	})
	require.NoError(t, err)

	base := CreateInput{
		OrderID: o.ID, CustomerID: customer.ID, ProductID: p.ID,
		Quantity: 1, Reason: "wrong size", RefundAmount: decimal.RequireFromString("30"),
	}

	t.Run("create validation", func(t *testing.T) {
		tests := []struct {
			name string
			edit func(in *CreateInput)
			want error
		}{
			{"missing order", func(in *CreateInput) { in.OrderID = 999999 }, ErrOrderNotFound},
			{"foreign order", func(in *CreateInput) { in.CustomerID = customer.ID + 1000 }, ErrOrderNotOwned},
			{"product not in order", func(in *CreateInput) { in.ProductID = p.ID + 1000 }, ErrProductNotInOrder},
			{"too many", func(in *CreateInput) { in.Quantity = 3 }, ErrQuantityExceeded},
			{"refund above line total", func(in *CreateInput) { in.RefundAmount = decimal.RequireFromString("60.01") }, ErrRefundAmountTooHigh},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				in := base
				tt.edit(&in)
				_, err := svc.Create(ctx, in)
				assert.ErrorIs(t, err, tt.want)
			})
		}
	})

	t.Run("lifecycle", func(t *testing.T) {
		ro, err := svc.Create(ctx, base)
		require.NoError(t, err)
		assert.Regexp(t, `^RET-\d+-[0-9A-F]{6}$`, ro.ReturnID)
		assert.Equal(t, models.ReturnStatusInitiated, ro.Status)

		_, err = svc.UpdateStatus(ctx, ro.ID, StatusUpdate{Status: models.ReturnStatusReturned})
		assert.ErrorIs(t, err, ErrInvalidTransition)

		tracking := "1Z999"
		ro, err = svc.UpdateStatus(ctx, ro.ID, StatusUpdate{Status: models.ReturnStatusInProgress, TrackingNumber: &tracking})
		require.NoError(t, err)
		assert.Equal(t, "1Z999", ro.TrackingNumber)

		notes := "box damaged"
		ro, err = svc.UpdateStatus(ctx, ro.ID, StatusUpdate{Status: models.ReturnStatusInProgress, Notes: &notes})
		require.NoError(t, err)
		assert.Equal(t, "box damaged", ro.Notes)
		assert.Nil(t, ro.ProcessedDate)

		ro, err = svc.UpdateStatus(ctx, ro.ID, StatusUpdate{Status: models.ReturnStatusQC})
		require.NoError(t, err)
		ro, err = svc.UpdateStatus(ctx, ro.ID, StatusUpdate{Status: models.ReturnStatusScrapped})
		require.NoError(t, err)
		assert.NotNil(t, ro.ProcessedDate)

		_, err = svc.UpdateStatus(ctx, ro.ID, StatusUpdate{Status: models.ReturnStatusCancelled})
		assert.ErrorIs(t, err, ErrInvalidTransition)
	})

	t.Run("queries", func(t *testing.T) {
		_, total, err := svc.List(ctx, repositories.ReturnFilter{Status: models.ReturnStatusScrapped})
		require.NoError(t, err)
		assert.Equal(t, int64(1), total)

		st, err := svc.Stats(ctx)
		require.NoError(t, err)
		assert.Equal(t, int64(1), st.Total)
	})

	t.Run("refund amount is rounded before it is checked", func(t *testing.T) {
		in := base
		in.RefundAmount = decimal.RequireFromString("60.004")
		ro, err := svc.Create(ctx, in)
		require.NoError(t, err)
		assert.Equal(t, "60.00", ro.RefundAmount.StringFixed(2))
	})
}
