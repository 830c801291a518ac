package models

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAttributeSet_Key(t *testing.T) {
	a := AttributeSet{"size": "M", "color": "red"}
	b := AttributeSet{"color": "red", "size": "M"}

	assert.Equal(t, "color=red&size=M", a.Key())
	assert.True(t, a.Equal(b))
	assert.False(t, a.Equal(AttributeSet{"size": "M"}))
	assert.Equal(t, "", AttributeSet(nil).Key())
	assert.True(t, AttributeSet{}.Equal(nil))

	// separators inside names or values must not collide with real pairs
	tricky := AttributeSet{"a": "1&b=2"}
	plain := AttributeSet{"a": "1", "b": "2"}
	assert.NotEqual(t, tricky.Key(), plain.Key())
}

func TestAttributeSet_ValueScan(t *testing.T) {
	v, err := AttributeSet{}.Value()
	require.NoError(t, err)
	assert.Nil(t, v)

	v, err = AttributeSet{"size": "L"}.Value()
	require.NoError(t, err)

	var got AttributeSet
	require.NoError(t, got.Scan(v))
	assert.Equal(t, AttributeSet{"size": "L"}, got)

	require.NoError(t, got.Scan(nil))
	assert.Nil(t, got)
	assert.Error(t, got.Scan(42))
}

func TestStockStatusFor(t *testing.T) {
	assert.Equal(t, StockInStock, StockStatusFor(3, StockOutOfStock))
	assert.Equal(t, StockInStock, StockStatusFor(1, StockBackorder))
	assert.Equal(t, StockOutOfStock, StockStatusFor(0, StockInStock))
	assert.Equal(t, StockBackorder, StockStatusFor(0, StockBackorder))
}

func TestProduct_EffectivePrice(t *testing.T) {
	p := Product{Price: decimal.NewFromInt(100)}
	assert.True(t, p.EffectivePrice().Equal(decimal.NewFromInt(100)))

	p.SalePrice = decimal.NewNullDecimal(decimal.NewFromInt(80))
	assert.True(t, p.EffectivePrice().Equal(decimal.NewFromInt(80)))
}

func TestCanTransitionOrder(t *testing.T) {
	tests := []struct {
		from, to string
		want     bool
	}{
		{OrderStatusPending, OrderStatusConfirmed, true},
		{OrderStatusPending, OrderStatusCancelled, true},
		{OrderStatusPending, OrderStatusShipped, false},
		{OrderStatusProcessing, OrderStatusShipped, true},
		{OrderStatusShipped, OrderStatusCancelled, false},
		{OrderStatusDelivered, OrderStatusRefunded, true},
		{OrderStatusCancelled, OrderStatusPending, false},
		{OrderStatusRefunded, OrderStatusDelivered, false},
	}
	for _, tt := range tests {
		t.Run(tt.from+"->"+tt.to, func(t *testing.T) {
			assert.Equal(t, tt.want, CanTransitionOrder(tt.from, tt.to))
		})
	}
}

func TestCanTransitionReturn(t *testing.T) {
	tests := []struct {
		from, to string
		want     bool
	}{
		{ReturnStatusInitiated, ReturnStatusInProgress, true},
		{ReturnStatusInitiated, ReturnStatusQC, false},
		{ReturnStatusInitiated, ReturnStatusInitiated, true},
		{ReturnStatusInProgress, ReturnStatusCancelled, true},
		{ReturnStatusInProgress, ReturnStatusReturned, false},
		{ReturnStatusQC, ReturnStatusReturned, true},
		{ReturnStatusQC, ReturnStatusScrapped, true},
		{ReturnStatusReturned, ReturnStatusCancelled, false},
		{ReturnStatusCancelled, ReturnStatusCancelled, false},
	}
	for _, tt := range tests {
		t.Run(tt.from+"->"+tt.to, func(t *testing.T) {
			assert.Equal(t, tt.want, CanTransitionReturn(tt.from, tt.to))
		})
	}
}

func TestPaymentStatusFor(t *testing.T) {
	s, ok := PaymentStatusFor(TransactionStatusCompleted)
	assert.True(t, ok)
	assert.Equal(t, PaymentStatusPaid, s)

	s, ok = PaymentStatusFor(TransactionStatusRefunded)
	assert.True(t, ok)
	assert.Equal(t, PaymentStatusRefunded, s)

	_, ok = PaymentStatusFor(TransactionStatusCancelled)
	assert.False(t, ok)
}

func TestGetDefaultPermissions(t *testing.T) {
	admin := GetDefaultPermissions(RoleAdmin)
	customer := GetDefaultPermissions(RoleCustomer)

	assert.Contains(t, admin, PermissionWriteAdmin)
	assert.NotContains(t, customer, PermissionWriteAdmin)
	assert.Contains(t, customer, PermissionCartWrite)
	assert.Empty(t, GetDefaultPermissions("guest"))
}
