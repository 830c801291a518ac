package order

import (
	"context"
	"sync"
	"testing"

	apperrors "storeadmin/internal/errors"
	"storeadmin/internal/events"
	"storeadmin/internal/models"
	"storeadmin/internal/repositories"
	"storeadmin/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func errorFields(err error) map[string]string {
	return apperrors.From(err).Fields
}

var testAddress = &models.AddressSnapshot{
	FullName: "Jane Doe", StreetAddress: "1 Main St", City: "Springfield",
	State: "IL", PostalCode: "62701", Country: "US",
}

func countOrders(t *testing.T, store *repositories.Store, customerID uint) int64 {
	t.Helper()
	var n int64
	require.NoError(t, store.DB.Model(&models.Order{}).Where("customer_id = ?", customerID).Count(&n).Error)
	return n
}

func TestOrder_Integration(t *testing.T) {
	store := testutil.SetupStore(t)
	svc := NewService(store, testPricing, events.Noop{}, zap.NewNop())
	ctx := context.Background()

	customer := testutil.CreateUser(t, store, models.RoleCustomer)

	t.Run("insufficient stock persists nothing", func(t *testing.T) {
		p := testutil.CreateProduct(t, store, "10.00", 5)
		other := testutil.CreateProduct(t, store, "10.00", 5)

		_, err := svc.Create(ctx, CreateInput{
			CustomerID:      customer.ID,
			Items:           []Line{{ProductID: other.ID, Quantity: 1}, {ProductID: p.ID, Quantity: 10}},
			ShippingAddress: testAddress,
			PaymentMethod:   models.PaymentMethodCreditCard,
		})
		require.ErrorIs(t, err, ErrInsufficientStock)
		assert.Equal(t, apperrors.KindInsufficientStock, apperrors.From(err).Kind)

		assert.Zero(t, countOrders(t, store, customer.ID))
		got, err := store.Products.GetByID(ctx, other.ID)
		require.NoError(t, err)
		assert.Equal(t, 5, got.StockQuantity)
	})

	t.Run("inactive products cannot be ordered", func(t *testing.T) {
		buyer := testutil.CreateUser(t, store, models.RoleCustomer)
		p := testutil.CreateProduct(t, store, "10.00", 5)
		require.NoError(t, store.DB.Model(&models.Product{}).Where("id = ?", p.ID).
			Update("status", models.ProductStatusDraft).Error)

		_, err := svc.Create(ctx, CreateInput{
			CustomerID:      buyer.ID,
			Items:           []Line{{ProductID: p.ID, Quantity: 1}},
			ShippingAddress: testAddress,
			PaymentMethod:   models.PaymentMethodCreditCard,
		})
		require.ErrorIs(t, err, ErrProductUnavailable)
		assert.Equal(t, apperrors.KindInsufficientStock, apperrors.From(err).Kind)
		assert.Zero(t, countOrders(t, store, buyer.ID))

		got, err := store.Products.GetByID(ctx, p.ID)
		require.NoError(t, err)
		assert.Equal(t, 5, got.StockQuantity)
	})

	t.Run("clear cart removes only the ordered products", func(t *testing.T) {
		buyer := testutil.CreateUser(t, store, models.RoleCustomer)
		bought := testutil.CreateProduct(t, store, "10.00", 5)
		kept := testutil.CreateProduct(t, store, "10.00", 5)

		cart, err := store.Carts.GetOrCreate(ctx, buyer.ID)
		require.NoError(t, err)
		require.NoError(t, store.Carts.UpsertItem(ctx, &models.CartItem{CartID: cart.ID, ProductID: bought.ID, Quantity: 1}, 5))
		require.NoError(t, store.Carts.UpsertItem(ctx, &models.CartItem{
			CartID: cart.ID, ProductID: bought.ID, Quantity: 1, SelectedAttributes: models.AttributeSet{"size": "L"},
		}, 5))
		require.NoError(t, store.Carts.UpsertItem(ctx, &models.CartItem{CartID: cart.ID, ProductID: kept.ID, Quantity: 2}, 5))

		_, err = svc.Create(ctx, CreateInput{
			CustomerID:      buyer.ID,
			Items:           []Line{{ProductID: bought.ID, Quantity: 2}},
			ShippingAddress: testAddress,
			PaymentMethod:   models.PaymentMethodCreditCard,
			ClearCart:       true,
		})
		require.NoError(t, err)

		items, err := store.Carts.Items(ctx, cart.ID)
		require.NoError(t, err)
		require.Len(t, items, 1)
		assert.Equal(t, kept.ID, items[0].ProductID)
	})

	t.Run("places order and decrements stock", func(t *testing.T) {
		p := testutil.CreateProduct(t, store, "25.00", 3)
		addr := &models.CustomerAddress{
			CustomerID: customer.ID, AddressType: models.AddressTypeShipping,
			StreetAddress: "9 Elm Rd", City: "Austin", State: "TX", PostalCode: "73301", Country: "US",
		}
		require.NoError(t, store.Addresses.Create(ctx, addr))

		o, err := svc.Create(ctx, CreateInput{
			CustomerID:        customer.ID,
			Items:             []Line{{ProductID: p.ID, Quantity: 2}, {ProductID: p.ID, Quantity: 1}},
			ShippingAddressID: &addr.ID,
			PaymentMethod:     models.PaymentMethodCashOnDelivery,
		})
		require.NoError(t, err)
		assert.Regexp(t, `^ORD-\d+-[0-9A-F]{6}$`, o.OrderNumber)
		assert.Equal(t, models.OrderStatusPending, o.Status)
		assert.Equal(t, "75.00", o.Subtotal.StringFixed(2))
		assert.Equal(t, "132.50", o.TotalAmount.StringFixed(2))
		require.Len(t, o.Items, 1)
		assert.Equal(t, 3, o.Items[0].Quantity)

		// snapshot survives address mutation
		addr.City = "Dallas"
		require.NoError(t, store.Addresses.Save(ctx, addr))
		loaded, err := svc.Get(ctx, o.ID)
		require.NoError(t, err)
		assert.Equal(t, "Austin", loaded.ShippingAddress.City)
		assert.Equal(t, "Austin", loaded.BillingAddress.City)

		prod, err := store.Products.GetByID(ctx, p.ID)
		require.NoError(t, err)
		assert.Equal(t, 0, prod.StockQuantity)
		assert.Equal(t, models.StockOutOfStock, prod.StockStatus)
	})

	t.Run("rejects another customer's address", func(t *testing.T) {
		stranger := testutil.CreateUser(t, store, models.RoleCustomer)
		addr := &models.CustomerAddress{
			CustomerID: stranger.ID, AddressType: models.AddressTypeShipping,
			StreetAddress: "1 Way", City: "Reno", State: "NV", PostalCode: "89501", Country: "US",
		}
		require.NoError(t, store.Addresses.Create(ctx, addr))
		p := testutil.CreateProduct(t, store, "1.00", 1)

		_, err := svc.Create(ctx, CreateInput{
			CustomerID:        customer.ID,
			Items:             []Line{{ProductID: p.ID, Quantity: 1}},
			ShippingAddressID: &addr.ID,
			PaymentMethod:     models.PaymentMethodUPI,
		})
		assert.ErrorIs(t, err, ErrAddressNotFound)
	})

	t.Run("status machine and cancellation restock", func(t *testing.T) {
		p := testutil.CreateProduct(t, store, "5.00", 4)
		o, err := svc.Create(ctx, CreateInput{
			CustomerID:      customer.ID,
			Items:           []Line{{ProductID: p.ID, Quantity: 4}},
			ShippingAddress: testAddress,
			PaymentMethod:   models.PaymentMethodUPI,
		})
		require.NoError(t, err)

		_, err = svc.UpdateStatus(ctx, o.ID, models.OrderStatusDelivered)
		assert.ErrorIs(t, err, ErrInvalidTransition)

		o, err = svc.UpdateStatus(ctx, o.ID, models.OrderStatusConfirmed)
		require.NoError(t, err)
		assert.Equal(t, models.OrderStatusConfirmed, o.Status)

		o, err = svc.UpdateStatus(ctx, o.ID, models.OrderStatusCancelled)
		require.NoError(t, err)
		assert.Equal(t, models.OrderStatusCancelled, o.Status)

		prod, err := store.Products.GetByID(ctx, p.ID)
		require.NoError(t, err)
		assert.Equal(t, 4, prod.StockQuantity)
		assert.Equal(t, models.StockInStock, prod.StockStatus)

		_, err = svc.UpdateStatus(ctx, o.ID, models.OrderStatusConfirmed)
		assert.ErrorIs(t, err, ErrInvalidTransition)
	})

	t.Run("shipping and delivery are stamped", func(t *testing.T) {
		p := testutil.CreateProduct(t, store, "5.00", 1)
		o, err := svc.Create(ctx, CreateInput{
			CustomerID:      customer.ID,
			Items:           []Line{{ProductID: p.ID, Quantity: 1}},
			ShippingAddress: testAddress,
			PaymentMethod:   models.PaymentMethodUPI,
		})
		require.NoError(t, err)
		for _, st := range []string{models.OrderStatusConfirmed, models.OrderStatusProcessing, models.OrderStatusShipped, models.OrderStatusDelivered} {
			o, err = svc.UpdateStatus(ctx, o.ID, st)
			require.NoError(t, err)
		}
		assert.NotNil(t, o.ShippedDate)
		assert.NotNil(t, o.DeliveredDate)
	})

	t.Run("concurrent orders never oversell", func(t *testing.T) {
		p := testutil.CreateProduct(t, store, "1.00", 3)
		var (
			wg      sync.WaitGroup
			mu      sync.Mutex
			success int
		)
		for i := 0; i < 6; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				_, err := svc.Create(ctx, CreateInput{
					CustomerID:      customer.ID,
					Items:           []Line{{ProductID: p.ID, Quantity: 1}},
					ShippingAddress: testAddress,
					PaymentMethod:   models.PaymentMethodUPI,
				})
				if err == nil {
					mu.Lock()
					success++
					mu.Unlock()
				}
			}()
		}
		wg.Wait()
		assert.Equal(t, 3, success)

		prod, err := store.Products.GetByID(ctx, p.ID)
		require.NoError(t, err)
		assert.Equal(t, 0, prod.StockQuantity)
	})

	t.Run("queries", func(t *testing.T) {
		orders, total, err := svc.ListByCustomer(ctx, customer.ID, repositories.Page{Limit: 2})
		require.NoError(t, err)
		assert.Len(t, orders, 2)
		assert.GreaterOrEqual(t, total, int64(3))

		st, err := svc.Stats(ctx)
		require.NoError(t, err)
		assert.Equal(t, total, st.TotalOrders)

		_, err = svc.Get(ctx, 999999)
		assert.ErrorIs(t, err, ErrOrderNotFound)
	})
}
