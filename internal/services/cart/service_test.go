package cart

import (
	"context"
	"sync"
	"testing"

	apperrors "storeadmin/internal/errors"
	"storeadmin/internal/models"
	"storeadmin/internal/testutil"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestBuildView(t *testing.T) {
	sale := decimal.NewNullDecimal(decimal.RequireFromString("8.50"))
	items := []models.CartItem{
		{ID: 1, ProductID: 10, Quantity: 2, Product: &models.Product{
			ID: 10, Name: "Mug", Price: decimal.RequireFromString("10.00"), SalePrice: sale, StockQuantity: 7,
			Images: []models.ProductImage{{ImageURL: "/uploads/a.png", IsPrimary: true}},
		}},
		{ID: 2, ProductID: 11, Quantity: 3, Product: &models.Product{
			ID: 11, Name: "Tee", Price: decimal.RequireFromString("3.333"), StockQuantity: 3,
		}},
	}

	v := buildView(5, items)
	assert.Equal(t, uint(5), v.CartID)
	assert.Equal(t, 5, v.TotalItems)
	assert.Equal(t, "27.00", v.TotalPrice.StringFixed(2))
	assert.Equal(t, "/uploads/a.png", v.Items[0].ImageURL)
	assert.Equal(t, 7, v.Items[0].MaxQuantity)
	assert.True(t, v.Items[0].LineTotal.Equal(decimal.RequireFromString("17")))
}

func TestBuildView_Empty(t *testing.T) {
	v := buildView(1, nil)
	assert.NotNil(t, v.Items)
	assert.Zero(t, v.TotalItems)
	assert.True(t, v.TotalPrice.IsZero())
}

func TestCart_Integration(t *testing.T) {
	store := testutil.SetupStore(t)
	svc := NewService(store, zap.NewNop())
	ctx := context.Background()

	user := testutil.CreateUser(t, store, models.RoleCustomer)
	product := testutil.CreateProduct(t, store, "20.00", 5)

	t.Run("add merges and clamps to stock", func(t *testing.T) {
		_, err := svc.AddItem(ctx, user.ID, product.ID, 3, nil)
		require.NoError(t, err)
		v, err := svc.AddItem(ctx, user.ID, product.ID, 4, nil)
		require.NoError(t, err)

		require.Len(t, v.Items, 1)
		assert.Equal(t, 5, v.Items[0].Quantity)
		assert.Equal(t, "100.00", v.TotalPrice.StringFixed(2))
	})

	t.Run("attribute sets are compared as sets", func(t *testing.T) {
		_, err := svc.Clear(ctx, user.ID)
		require.NoError(t, err)

		_, err = svc.AddItem(ctx, user.ID, product.ID, 1, models.AttributeSet{"size": "M", "color": "red"})
		require.NoError(t, err)
		v, err := svc.AddItem(ctx, user.ID, product.ID, 1, models.AttributeSet{"color": "red", "size": "M"})
		require.NoError(t, err)
		require.Len(t, v.Items, 1)
		assert.Equal(t, 2, v.Items[0].Quantity)

		v, err = svc.AddItem(ctx, user.ID, product.ID, 1, models.AttributeSet{"color": "blue", "size": "M"})
		require.NoError(t, err)
		assert.Len(t, v.Items, 2)
	})

	t.Run("update clamps and remove checks ownership", func(t *testing.T) {
		v, err := svc.Clear(ctx, user.ID)
		require.NoError(t, err)
		require.Empty(t, v.Items)

		v, err = svc.AddItem(ctx, user.ID, product.ID, 1, nil)
		require.NoError(t, err)
		itemID := v.Items[0].ID

		v, err = svc.UpdateItem(ctx, user.ID, itemID, 50)
		require.NoError(t, err)
		assert.Equal(t, 5, v.Items[0].Quantity)

		_, err = svc.UpdateItem(ctx, user.ID, itemID, 0)
		assert.ErrorIs(t, err, ErrInvalidQuantity)

		other := testutil.CreateUser(t, store, models.RoleCustomer)
		_, err = svc.RemoveItem(ctx, other.ID, itemID)
		assert.ErrorIs(t, err, ErrCartItemNotFound)

		v, err = svc.RemoveItem(ctx, user.ID, itemID)
		require.NoError(t, err)
		assert.Empty(t, v.Items)
	})

	t.Run("rejects missing and out of stock products", func(t *testing.T) {
		_, err := svc.AddItem(ctx, user.ID, 999999, 1, nil)
		assert.ErrorIs(t, err, ErrProductNotFound)

		empty := testutil.CreateProduct(t, store, "5.00", 0)
		_, err = svc.AddItem(ctx, user.ID, empty.ID, 1, nil)
		assert.ErrorIs(t, err, ErrOutOfStock)
		assert.Equal(t, apperrors.KindInsufficientStock, apperrors.From(err).Kind)

		_, err = svc.AddItem(ctx, user.ID, product.ID, 0, nil)
		assert.ErrorIs(t, err, ErrInvalidQuantity)
	})

	t.Run("sync replaces merges and skips", func(t *testing.T) {
		other := testutil.CreateProduct(t, store, "1.50", 2)
		empty := testutil.CreateProduct(t, store, "1.00", 0)

		v, err := svc.Sync(ctx, user.ID, []SyncItem{
			{ProductID: product.ID, Quantity: 2},
			{ProductID: product.ID, Quantity: 2},
			{ProductID: other.ID, Quantity: 9},
			{ProductID: empty.ID, Quantity: 1},
			{ProductID: 999999, Quantity: 1},
			{ProductID: product.ID, Quantity: -1, SelectedAttributes: models.AttributeSet{"size": "L"}},
		})
		require.NoError(t, err)
		require.Len(t, v.Items, 2)

		byProduct := map[uint]int{}
		for _, it := range v.Items {
			byProduct[it.ProductID] = it.Quantity
		}
		assert.Equal(t, 4, byProduct[product.ID])
		assert.Equal(t, 2, byProduct[other.ID])
		assert.Equal(t, 6, v.TotalItems)
	})

	t.Run("concurrent first access creates one cart", func(t *testing.T) {
		fresh := testutil.CreateUser(t, store, models.RoleCustomer)
		ids := make([]uint, 8)
		var wg sync.WaitGroup
		for i := range ids {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				id, err := svc.GetOrCreateCart(ctx, fresh.ID)
				assert.NoError(t, err)
				ids[i] = id
			}(i)
		}
		wg.Wait()
		for _, id := range ids {
			assert.Equal(t, ids[0], id)
		}
	})
}
