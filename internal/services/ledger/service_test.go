package ledger

import (
	"context"
	"errors"
	"testing"
	"time"

	apperrors "storeadmin/internal/errors"
	"storeadmin/internal/gateway"
	"storeadmin/internal/models"
	"storeadmin/internal/repositories"
	"storeadmin/internal/testutil"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type MockGateway struct {
	mock.Mock
}

func (m *MockGateway) Refund(ctx context.Context, req gateway.RefundRequest) (gateway.RefundResult, error) {
	args := m.Called(ctx, req)
	return args.Get(0).(gateway.RefundResult), args.Error(1)
}

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func TestCreateInput_Normalize(t *testing.T) {
	in := CreateInput{CustomerID: 1, Amount: dec("10"), Currency: " usd "}
	require.NoError(t, in.normalize())
	assert.Equal(t, "USD", in.Currency)
	assert.Equal(t, models.TransactionTypePayment, in.TransactionType)

	bad := CreateInput{Amount: dec("0"), TransactionType: "gift", PaymentMethod: "gold"}
	err := bad.normalize()
	require.Error(t, err)
	fields := apperrors.From(err).Fields
	assert.Contains(t, fields, "customerId")
	assert.Contains(t, fields, "amount")
	assert.Contains(t, fields, "transactionType")
	assert.Contains(t, fields, "paymentMethod")

	subCent := CreateInput{CustomerID: 1, Amount: dec("0.004")}
	err = subCent.normalize()
	require.Error(t, err)
	assert.Equal(t, apperrors.KindInvalidInput, apperrors.From(err).Kind)
	assert.Contains(t, apperrors.From(err).Fields, "amount")

	rounded := CreateInput{CustomerID: 1, Amount: dec("10.005")}
	require.NoError(t, rounded.normalize())
	assert.Equal(t, "10.01", rounded.Amount.StringFixed(2))
}

func TestMergeExtra(t *testing.T) {
	md := &models.TransactionMetadata{OriginalTransactionID: "TXN-1", Extra: models.JSON{"a": 1.0, "b": "x"}}
	out := mergeExtra(md, models.JSON{"b": "y", "c": true})

	assert.Equal(t, "TXN-1", out.OriginalTransactionID)
	assert.Equal(t, models.JSON{"a": 1.0, "b": "y", "c": true}, out.Extra)
	assert.Equal(t, "x", md.Extra["b"])

	assert.Equal(t, models.JSON{"k": "v"}, mergeExtra(nil, models.JSON{"k": "v"}).Extra)
}

func createOrder(t *testing.T, store *repositories.Store, customerID uint) *models.Order {
	t.Helper()
	o := &models.Order{
		OrderNumber:   "ORD-TEST-" + time.Now().Format("150405.000000"),
		CustomerID:    customerID,
		Status:        models.OrderStatusPending,
		PaymentStatus: models.PaymentStatusPending,
		PaymentMethod: models.PaymentMethodCreditCard,
		Subtotal:      dec("100"),
		TotalAmount:   dec("100"),
		OrderDate:     time.Now(),
	}
	require.NoError(t, store.Orders.Create(context.Background(), o))
	return o
}

func paymentStatus(t *testing.T, store *repositories.Store, orderID uint) string {
	t.Helper()
	o, err := store.Orders.GetByID(context.Background(), orderID)
	require.NoError(t, err)
	return o.PaymentStatus
}

func TestLedger_Integration(t *testing.T) {
	store := testutil.SetupStore(t)
	gw := new(MockGateway)
	svc := NewService(store, gw, nil, zap.NewNop())
	ctx := context.Background()

	customer := testutil.CreateUser(t, store, models.RoleCustomer)

	t.Run("create validates references", func(t *testing.T) {
		_, err := svc.Create(ctx, CreateInput{CustomerID: 999999, Amount: dec("1")})
		assert.ErrorIs(t, err, ErrCustomerNotFound)

		missing := uint(999999)
		_, err = svc.Create(ctx, CreateInput{CustomerID: customer.ID, OrderID: &missing, Amount: dec("1")})
		assert.ErrorIs(t, err, ErrOrderNotFound)

		stranger := testutil.CreateUser(t, store, models.RoleCustomer)
		o := createOrder(t, store, stranger.ID)
		_, err = svc.Create(ctx, CreateInput{CustomerID: customer.ID, OrderID: &o.ID, Amount: dec("1")})
		assert.ErrorIs(t, err, ErrOrderCustomerMismatch)
	})

	t.Run("status propagation fires once", func(t *testing.T) {
		o := createOrder(t, store, customer.ID)
		txn, err := svc.Create(ctx, CreateInput{CustomerID: customer.ID, OrderID: &o.ID, Amount: dec("100")})
		require.NoError(t, err)
		assert.Regexp(t, `^TXN-\d+-[0-9A-F]{6}$`, txn.TransactionID)
		assert.Equal(t, models.TransactionStatusPending, txn.Status)

		done, err := svc.UpdateStatus(ctx, txn.ID, StatusUpdate{
			Status:               models.TransactionStatusCompleted,
			GatewayTransactionID: "ch_123",
			Metadata:             models.JSON{"source": "webhook"},
		})
		require.NoError(t, err)
		assert.Equal(t, "ch_123", done.GatewayTransactionID)
		require.NotNil(t, done.Metadata)
		assert.Equal(t, "webhook", done.Metadata.Extra["source"])
		assert.Equal(t, models.PaymentStatusPaid, paymentStatus(t, store, o.ID))

		// a repeated call must not touch the order again
		require.NoError(t, store.Orders.UpdateFields(ctx, o.ID, map[string]any{"payment_status": models.PaymentStatusPending}))
		_, err = svc.UpdateStatus(ctx, txn.ID, StatusUpdate{Status: models.TransactionStatusCompleted})
		require.NoError(t, err)
		assert.Equal(t, models.PaymentStatusPending, paymentStatus(t, store, o.ID))

		_, err = svc.UpdateStatus(ctx, txn.ID, StatusUpdate{Status: models.TransactionStatusFailed, FailureReason: "chargeback"})
		require.NoError(t, err)
		assert.Equal(t, models.PaymentStatusFailed, paymentStatus(t, store, o.ID))
	})

	t.Run("refund rows do not move the order payment status", func(t *testing.T) {
		o := createOrder(t, store, customer.ID)
		refund, err := svc.Create(ctx, CreateInput{
			CustomerID:      customer.ID,
			OrderID:         &o.ID,
			Amount:          dec("20"),
			TransactionType: models.TransactionTypeRefund,
		})
		require.NoError(t, err)

		_, err = svc.UpdateStatus(ctx, refund.ID, StatusUpdate{Status: models.TransactionStatusCompleted})
		require.NoError(t, err)
		assert.Equal(t, models.PaymentStatusPending, paymentStatus(t, store, o.ID))
	})

	t.Run("refunds accumulate up to the original amount", func(t *testing.T) {
		o := createOrder(t, store, customer.ID)
		txn, err := svc.Create(ctx, CreateInput{CustomerID: customer.ID, OrderID: &o.ID, Amount: dec("100")})
		require.NoError(t, err)

		_, err = svc.ProcessRefund(ctx, txn.TransactionID, dec("10"), "")
		assert.ErrorIs(t, err, ErrTransactionNotFound)

		_, err = svc.UpdateStatus(ctx, txn.ID, StatusUpdate{Status: models.TransactionStatusCompleted})
		require.NoError(t, err)

		_, err = svc.ProcessRefund(ctx, txn.TransactionID, dec("0.004"), "sub cent")
		assert.Equal(t, apperrors.KindInvalidInput, apperrors.From(err).Kind)

		_, err = svc.ProcessRefund(ctx, txn.TransactionID, dec("150"), "too much")
		assert.ErrorIs(t, err, ErrRefundExceedsOriginal)
		assert.Equal(t, apperrors.KindRefundExceedsOriginal, apperrors.From(err).Kind)

		out, err := svc.ProcessRefund(ctx, txn.TransactionID, dec("60"), "damaged")
		require.NoError(t, err)
		assert.Regexp(t, `^RFND-\d+-[0-9A-F]{6}$`, out.Refund.TransactionID)
		assert.Equal(t, models.TransactionStatusCompleted, out.Original.Status)
		assert.Equal(t, "60.00", out.Original.RefundedAmount.StringFixed(2))
		assert.Equal(t, txn.TransactionID, out.Refund.Metadata.OriginalTransactionID)
		assert.Equal(t, models.PaymentStatusPaid, paymentStatus(t, store, o.ID))

		_, err = svc.ProcessRefund(ctx, txn.TransactionID, dec("40.01"), "")
		assert.ErrorIs(t, err, ErrRefundExceedsOriginal)

		out, err = svc.ProcessRefund(ctx, txn.TransactionID, dec("40"), "rest")
		require.NoError(t, err)
		assert.Equal(t, models.TransactionStatusRefunded, out.Original.Status)
		assert.Equal(t, models.PaymentStatusRefunded, paymentStatus(t, store, o.ID))

		_, err = svc.ProcessRefund(ctx, txn.TransactionID, dec("1"), "")
		assert.ErrorIs(t, err, ErrTransactionNotFound)

		_, err = svc.ProcessRefund(ctx, out.Refund.TransactionID, dec("1"), "")
		assert.ErrorIs(t, err, ErrNotRefundable)

		var sum decimal.Decimal
		require.NoError(t, store.DB.Model(&models.Transaction{}).
			Select("COALESCE(SUM(amount), 0)").
			Where("transaction_type = ? AND order_id = ?", models.TransactionTypeRefund, o.ID).
			Row().Scan(&sum))
		assert.Equal(t, "100.00", sum.StringFixed(2))
	})

	t.Run("stripe refunds are settled after commit", func(t *testing.T) {
		txn, err := svc.Create(ctx, CreateInput{
			CustomerID:           customer.ID,
			Amount:               dec("20"),
			PaymentGateway:       models.GatewayStripe,
			GatewayTransactionID: "pi_abc",
		})
		require.NoError(t, err)
		_, err = svc.UpdateStatus(ctx, txn.ID, StatusUpdate{Status: models.TransactionStatusCompleted})
		require.NoError(t, err)

		gw.On("Refund", mock.Anything, mock.MatchedBy(func(r gateway.RefundRequest) bool {
			return r.GatewayTransactionID == "pi_abc" && r.Amount.Equal(dec("5"))
		})).Return(gateway.RefundResult{GatewayRefundID: "re_1", Status: "succeeded"}, nil).Once()
		gw.On("Refund", mock.Anything, mock.MatchedBy(func(r gateway.RefundRequest) bool {
			return r.Amount.Equal(dec("6"))
		})).Return(gateway.RefundResult{}, errors.New("stripe down")).Once()

		out, err := svc.ProcessRefund(ctx, txn.TransactionID, dec("5"), "")
		require.NoError(t, err)
		stored, err := svc.Get(ctx, out.Refund.ID)
		require.NoError(t, err)
		assert.Equal(t, "re_1", stored.GatewayTransactionID)
		assert.Equal(t, "re_1", stored.Metadata.GatewayRefundID)

		// gateway failure keeps the ledger entry
		out, err = svc.ProcessRefund(ctx, txn.TransactionID, dec("6"), "")
		require.NoError(t, err)
		assert.Equal(t, "11.00", out.Original.RefundedAmount.StringFixed(2))

		gw.AssertExpectations(t)
	})

	t.Run("queries", func(t *testing.T) {
		_, total, err := svc.ListByCustomer(ctx, customer.ID, repositories.TransactionFilter{TransactionType: models.TransactionTypeRefund})
		require.NoError(t, err)
		assert.Equal(t, int64(4), total)

		st, err := svc.Stats(ctx)
		require.NoError(t, err)
		assert.Positive(t, st.Total)
		assert.Equal(t, "111.00", st.TotalRefunds.StringFixed(2))
	})
}
