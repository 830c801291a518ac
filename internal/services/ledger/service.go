// Package ledger records payments and refunds and keeps the owning order's
// payment status in step with them.
package ledger

import (
	"context"
	"fmt"
	"strings"

	apperrors "storeadmin/internal/errors"
	"storeadmin/internal/events"
	"storeadmin/internal/gateway"
	"storeadmin/internal/models"
	"storeadmin/internal/repositories"
	"storeadmin/internal/utils"
	"storeadmin/internal/validation"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

type CreateInput struct {
	CustomerID           uint            `json:"customerId"`
	OrderID              *uint           `json:"orderId"`
	Amount               decimal.Decimal `json:"amount"`
	Currency             string          `json:"currency"`
	TransactionType      string          `json:"transactionType"`
	PaymentMethod        string          `json:"paymentMethod"`
	PaymentGateway       string          `json:"paymentGateway"`
	GatewayTransactionID string          `json:"gatewayTransactionId"`
	Description          string          `json:"description"`
	Metadata             models.JSON     `json:"metadata"`
}

func (in *CreateInput) normalize() error {
	if in.TransactionType == "" {
		in.TransactionType = models.TransactionTypePayment
	}
	in.Currency = strings.ToUpper(strings.TrimSpace(in.Currency))
	if in.Currency == "" {
		in.Currency = "USD"
	}
	in.Amount = in.Amount.Round(2)

	v := validation.New()
	v.Check(in.CustomerID != 0, "customerId", "must be provided")
	v.PositiveAmount("amount", in.Amount)
	v.Check(len(in.Currency) == 3, "currency", "must be a 3 letter code")
	v.Check(models.IsTransactionType(in.TransactionType), "transactionType", "unknown transaction type")
	if in.PaymentMethod != "" {
		v.OneOf("paymentMethod", in.PaymentMethod, models.PaymentMethods...)
	}
	v.MaxLength("description", in.Description, validation.MaxDescriptionLength)
	return v.Err()
}

type StatusUpdate struct {
	Status               string      `json:"status"`
	FailureReason        string      `json:"failureReason"`
	GatewayTransactionID string      `json:"gatewayTransactionId"`
	Metadata             models.JSON `json:"metadata"`
}

type RefundOutcome struct {
	Refund   *models.Transaction `json:"refund"`
	Original *models.Transaction `json:"original"`
}

type Service interface {
	Create(ctx context.Context, in CreateInput) (*models.Transaction, error)
	UpdateStatus(ctx context.Context, id uint, u StatusUpdate) (*models.Transaction, error)
	ProcessRefund(ctx context.Context, transactionID string, amount decimal.Decimal, reason string) (*RefundOutcome, error)
	Get(ctx context.Context, id uint) (*models.Transaction, error)
	List(ctx context.Context, f repositories.TransactionFilter) ([]models.Transaction, int64, error)
	ListByCustomer(ctx context.Context, customerID uint, f repositories.TransactionFilter) ([]models.Transaction, int64, error)
	Stats(ctx context.Context) (*repositories.TransactionStats, error)
}

type service struct {
	store     *repositories.Store
	gateway   gateway.RefundGateway
	publisher events.Publisher
	log       *zap.Logger
}

func NewService(store *repositories.Store, gw gateway.RefundGateway, publisher events.Publisher, log *zap.Logger) Service {
	if store == nil {
		panic("ledger: store is required")
	}
	if gw == nil {
		gw = gateway.Noop{}
	}
	if publisher == nil {
		publisher = events.Noop{}
	}
	return &service{store: store, gateway: gw, publisher: publisher, log: log}
}

func (s *service) Create(ctx context.Context, in CreateInput) (*models.Transaction, error) {
	if err := in.normalize(); err != nil {
		return nil, err
	}

	t := &models.Transaction{
		TransactionID:        utils.NewReference(utils.PrefixTransaction),
		CustomerID:           in.CustomerID,
		OrderID:              in.OrderID,
		Amount:               in.Amount,
		RefundedAmount:       decimal.Zero,
		Currency:             in.Currency,
		TransactionType:      in.TransactionType,
		Status:               models.TransactionStatusPending,
		PaymentMethod:        in.PaymentMethod,
		PaymentGateway:       in.PaymentGateway,
		GatewayTransactionID: in.GatewayTransactionID,
		Description:          in.Description,
	}
	if len(in.Metadata) > 0 {
		t.Metadata = &models.TransactionMetadata{Extra: in.Metadata}
	}

	err := s.store.WithTx(ctx, func(tx *repositories.Store) error {
		c, err := tx.Users.GetByID(ctx, in.CustomerID)
		if err != nil {
			return err
		}
		if c == nil {
			return ErrCustomerNotFound
		}
		if in.OrderID != nil {
			o, err := tx.Orders.GetByID(ctx, *in.OrderID)
			if err != nil {
				return err
			}
			if o == nil {
				return ErrOrderNotFound
			}
			if o.CustomerID != in.CustomerID {
				return ErrOrderCustomerMismatch
			}
		}
		return tx.Transactions.Create(ctx, t)
	})
	if err != nil {
		return nil, apperrors.Internal(err)
	}
	return t, nil
}

// UpdateStatus is idempotent: repeating a status writes the optional fields
// again but never re-propagates to the order or re-publishes.
func (s *service) UpdateStatus(ctx context.Context, id uint, u StatusUpdate) (*models.Transaction, error) {
	if !models.IsTransactionStatus(u.Status) {
		return nil, apperrors.Validation(map[string]string{"status": "unknown transaction status"})
	}

	var (
		changed bool
		prev    string
		t       *models.Transaction
	)
	err := s.store.WithTx(ctx, func(tx *repositories.Store) error {
		var err error
		t, err = tx.Transactions.LockByID(ctx, id)
		if err != nil {
			return err
		}
		if t == nil {
			return ErrTransactionNotFound
		}

		prev = t.Status
		changed = prev != u.Status
		cols := []string{"status"}
		t.Status = u.Status
		if u.FailureReason != "" {
			t.FailureReason = u.FailureReason
			cols = append(cols, "failure_reason")
		}
		if u.GatewayTransactionID != "" {
			t.GatewayTransactionID = u.GatewayTransactionID
			cols = append(cols, "gateway_transaction_id")
		}
		if len(u.Metadata) > 0 {
			t.Metadata = mergeExtra(t.Metadata, u.Metadata)
			cols = append(cols, "metadata")
		}
		if err := tx.Transactions.UpdateColumns(ctx, t, cols...); err != nil {
			return err
		}

		if changed {
			return propagate(ctx, tx, t)
		}
		return nil
	})
	if err != nil {
		return nil, apperrors.Internal(err)
	}

	if changed {
		s.statusChanged(ctx, t, prev)
	}
	return s.Get(ctx, id)
}

// propagate moves the linked order's payment status to match t.Status.
// Refund rows never drive the order; the original's flip to refunded does.
func propagate(ctx context.Context, tx *repositories.Store, t *models.Transaction) error {
	if t.OrderID == nil || t.TransactionType == models.TransactionTypeRefund {
		return nil
	}
	ps, ok := models.PaymentStatusFor(t.Status)
	if !ok {
		return nil
	}
	return tx.Orders.UpdateFields(ctx, *t.OrderID, map[string]any{"payment_status": ps})
}

func mergeExtra(md *models.TransactionMetadata, extra models.JSON) *models.TransactionMetadata {
	out := &models.TransactionMetadata{}
	if md != nil {
		*out = *md
	}
	merged := make(models.JSON, len(out.Extra)+len(extra))
	for k, v := range out.Extra {
		merged[k] = v
	}
	for k, v := range extra {
		merged[k] = v
	}
	out.Extra = merged
	return out
}

func (s *service) statusChanged(ctx context.Context, t *models.Transaction, prev string) {
	events.Emit(ctx, s.publisher, s.log, events.NewEvent(events.TransactionStatusChanged, t.TransactionID, map[string]any{
		"transactionId": t.TransactionID,
		"orderId":       t.OrderID,
		"from":          prev,
		"to":            t.Status,
	}))
}

// ProcessRefund refunds part or all of a completed transaction. Refunds are
// cumulative; once they reach the full amount the original flips to refunded.
// Gateway settlement happens after commit and never undoes the ledger entry.
func (s *service) ProcessRefund(ctx context.Context, transactionID string, amount decimal.Decimal, reason string) (*RefundOutcome, error) {
	amount = amount.Round(2)
	v := validation.New()
	v.Required("transactionId", transactionID)
	v.PositiveAmount("amount", amount)
	v.MaxLength("reason", reason, validation.MaxReasonLength)
	if err := v.Err(); err != nil {
		return nil, err
	}

	var (
		orig    *models.Transaction
		refund  *models.Transaction
		flipped bool
	)
	err := s.store.WithTx(ctx, func(tx *repositories.Store) error {
		var err error
		orig, err = tx.Transactions.LockByTransactionID(ctx, transactionID)
		if err != nil {
			return err
		}
		if orig == nil || orig.Status != models.TransactionStatusCompleted {
			return ErrTransactionNotFound.WithMessage("completed transaction %s not found", transactionID)
		}
		if orig.TransactionType == models.TransactionTypeRefund {
			return ErrNotRefundable
		}
		if orig.RefundedAmount.Add(amount).GreaterThan(orig.Amount) {
			return ErrRefundExceedsOriginal.WithMessage("refund of %s exceeds refundable balance %s",
				amount.StringFixed(2), orig.Refundable().StringFixed(2))
		}

		refund = &models.Transaction{
			TransactionID:   utils.NewReference(utils.PrefixRefund),
			CustomerID:      orig.CustomerID,
			OrderID:         orig.OrderID,
			Amount:          amount,
			RefundedAmount:  decimal.Zero,
			Currency:        orig.Currency,
			TransactionType: models.TransactionTypeRefund,
			Status:          models.TransactionStatusCompleted,
			PaymentMethod:   orig.PaymentMethod,
			PaymentGateway:  orig.PaymentGateway,
			Description:     fmt.Sprintf("Refund for %s", orig.TransactionID),
			Metadata: &models.TransactionMetadata{
				OriginalTransactionID: orig.TransactionID,
				RefundReason:          reason,
			},
		}
		if err := tx.Transactions.Create(ctx, refund); err != nil {
			return err
		}

		orig.RefundedAmount = orig.RefundedAmount.Add(amount)
		cols := []string{"refunded_amount"}
		if orig.RefundedAmount.Equal(orig.Amount) {
			orig.Status = models.TransactionStatusRefunded
			cols = append(cols, "status")
			flipped = true
		}
		if err := tx.Transactions.UpdateColumns(ctx, orig, cols...); err != nil {
			return err
		}
		if flipped {
			return propagate(ctx, tx, orig)
		}
		return nil
	})
	if err != nil {
		return nil, apperrors.Internal(err)
	}

	if orig.PaymentGateway == models.GatewayStripe {
		s.settle(ctx, orig, refund, reason)
	}

	events.Emit(ctx, s.publisher, s.log, events.NewEvent(events.RefundProcessed, refund.TransactionID, map[string]any{
		"refundId":              refund.TransactionID,
		"originalTransactionId": orig.TransactionID,
		"amount":                refund.Amount,
		"fullyRefunded":         flipped,
	}))
	if flipped {
		s.statusChanged(ctx, orig, models.TransactionStatusCompleted)
	}
	return &RefundOutcome{Refund: refund, Original: orig}, nil
}

func (s *service) settle(ctx context.Context, orig, refund *models.Transaction, reason string) {
	ctx = context.WithoutCancel(ctx)
	res, err := s.gateway.Refund(ctx, gateway.RefundRequest{
		GatewayTransactionID: orig.GatewayTransactionID,
		Amount:               refund.Amount,
		Currency:             refund.Currency,
		Reason:               reason,
		RefundID:             refund.TransactionID,
	})
	if err != nil {
		s.log.Error("gateway refund failed",
			zap.String("refund_id", refund.TransactionID),
			zap.String("original_transaction_id", orig.TransactionID),
			zap.String("gateway", orig.PaymentGateway),
			zap.Error(err),
		)
		return
	}
	if res.GatewayRefundID == "" {
		return
	}

	refund.GatewayTransactionID = res.GatewayRefundID
	refund.Metadata.GatewayRefundID = res.GatewayRefundID
	if err := s.store.Transactions.UpdateColumns(ctx, refund, "gateway_transaction_id", "metadata"); err != nil {
		s.log.Error("store gateway refund id failed",
			zap.String("refund_id", refund.TransactionID),
			zap.String("gateway_refund_id", res.GatewayRefundID),
			zap.Error(err),
		)
	}
}

func (s *service) Get(ctx context.Context, id uint) (*models.Transaction, error) {
	t, err := s.store.Transactions.GetByID(ctx, id)
	if err != nil {
		return nil, apperrors.Internal(err)
	}
	if t == nil {
		return nil, ErrTransactionNotFound
	}
	return t, nil
}

func (s *service) List(ctx context.Context, f repositories.TransactionFilter) ([]models.Transaction, int64, error) {
	out, total, err := s.store.Transactions.List(ctx, f)
	if err != nil {
		return nil, 0, apperrors.Internal(err)
	}
	return out, total, nil
}

func (s *service) ListByCustomer(ctx context.Context, customerID uint, f repositories.TransactionFilter) ([]models.Transaction, int64, error) {
	f.CustomerID = &customerID
	return s.List(ctx, f)
}

func (s *service) Stats(ctx context.Context) (*repositories.TransactionStats, error) {
	st, err := s.store.Transactions.Stats(ctx)
	if err != nil {
		return nil, apperrors.Internal(err)
	}
	return st, nil
}
