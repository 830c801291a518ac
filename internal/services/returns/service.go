// Package returns tracks product returns from initiation through quality check.
package returns

import (
	"context"
	"time"

	apperrors "storeadmin/internal/errors"
	"storeadmin/internal/models"
	"storeadmin/internal/repositories"
	"storeadmin/internal/utils"
	"storeadmin/internal/validation"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

type CreateInput struct {
	OrderID      uint            `json:"orderId"`
	CustomerID   uint            `json:"customerId"`
	ProductID    uint            `json:"productId"`
	Quantity     int             `json:"quantity"`
	Reason       string          `json:"reason"`
	RefundAmount decimal.Decimal `json:"refundAmount"`
	Notes        string          `json:"notes"`
}

type StatusUpdate struct {
	Status         string  `json:"status"`
	TrackingNumber *string `json:"trackingNumber"`
	Notes          *string `json:"notes"`
}

type Service interface {
	Create(ctx context.Context, in CreateInput) (*models.ReturnOrder, error)
	UpdateStatus(ctx context.Context, id uint, u StatusUpdate) (*models.ReturnOrder, error)
	Get(ctx context.Context, id uint) (*models.ReturnOrder, error)
	List(ctx context.Context, f repositories.ReturnFilter) ([]models.ReturnOrder, int64, error)
	Stats(ctx context.Context) (*repositories.ReturnStats, error)
}

type service struct {
	store *repositories.Store
	log   *zap.Logger
}

func NewService(store *repositories.Store, log *zap.Logger) Service {
	if store == nil {
		panic("returns: store is required")
	}
	return &service{store: store, log: log}
}

func (s *service) Create(ctx context.Context, in CreateInput) (*models.ReturnOrder, error) {
	in.RefundAmount = in.RefundAmount.Round(2)
	v := validation.New()
	v.Check(in.OrderID != 0, "orderId", "must be provided")
	v.Check(in.CustomerID != 0, "customerId", "must be provided")
	v.Check(in.ProductID != 0, "productId", "must be provided")
	v.Check(in.Quantity > 0, "quantity", "must be greater than zero")
	v.Required("reason", in.Reason)
	v.MaxLength("reason", in.Reason, validation.MaxReasonLength)
	v.NonNegativeAmount("refundAmount", in.RefundAmount)
	if err := v.Err(); err != nil {
		return nil, err
	}

	o, err := s.store.Orders.GetByID(ctx, in.OrderID)
	if err != nil {
		return nil, apperrors.Internal(err)
	}
	if o == nil {
		return nil, ErrOrderNotFound
	}
	if o.CustomerID != in.CustomerID {
		return nil, ErrOrderNotOwned
	}

	var line *models.OrderItem
	for i := range o.Items {
		if pid := o.Items[i].ProductID; pid != nil && *pid == in.ProductID {
			line = &o.Items[i]
			break
		}
	}
	if line == nil {
		return nil, ErrProductNotInOrder
	}
	if in.Quantity > line.Quantity {
		return nil, ErrQuantityExceeded
	}
	if in.RefundAmount.GreaterThan(line.TotalPrice) {
		return nil, ErrRefundAmountTooHigh
	}

	ro := &models.ReturnOrder{
		ReturnID:     utils.NewReference(utils.PrefixReturn),
		OrderID:      in.OrderID,
		CustomerID:   in.CustomerID,
		ProductID:    in.ProductID,
		Quantity:     in.Quantity,
		Reason:       in.Reason,
		RefundAmount: in.RefundAmount,
		Notes:        in.Notes,
		Status:       models.ReturnStatusInitiated,
		ReturnDate:   time.Now(),
	}
	if err := s.store.Returns.Create(ctx, ro); err != nil {
		return nil, apperrors.Internal(err)
	}
	return ro, nil
}

func (s *service) UpdateStatus(ctx context.Context, id uint, u StatusUpdate) (*models.ReturnOrder, error) {
	if !models.IsReturnStatus(u.Status) {
		return nil, apperrors.Validation(map[string]string{"status": "unknown return status"})
	}

	err := s.store.WithTx(ctx, func(tx *repositories.Store) error {
		ro, err := tx.Returns.LockByID(ctx, id)
		if err != nil {
			return err
		}
		if ro == nil {
			return ErrReturnNotFound
		}
		if !models.CanTransitionReturn(ro.Status, u.Status) {
			return ErrInvalidTransition.WithMessage("cannot move return from %s to %s", ro.Status, u.Status)
		}

		fields := map[string]any{"status": u.Status}
		if u.TrackingNumber != nil {
			fields["tracking_number"] = *u.TrackingNumber
		}
		if u.Notes != nil {
			fields["notes"] = *u.Notes
		}
		if models.IsTerminalReturnStatus(u.Status) {
			fields["processed_date"] = time.Now()
		}
		return tx.Returns.UpdateFields(ctx, id, fields)
	})
	if err != nil {
		return nil, apperrors.Internal(err)
	}
	return s.Get(ctx, id)
}

func (s *service) Get(ctx context.Context, id uint) (*models.ReturnOrder, error) {
	ro, err := s.store.Returns.GetByID(ctx, id)
	if err != nil {
		return nil, apperrors.Internal(err)
	}
	if ro == nil {
		return nil, ErrReturnNotFound
	}
	return ro, nil
}

func (s *service) List(ctx context.Context, f repositories.ReturnFilter) ([]models.ReturnOrder, int64, error) {
	out, total, err := s.store.Returns.List(ctx, f)
	if err != nil {
		return nil, 0, apperrors.Internal(err)
	}
	return out, total, nil
}

func (s *service) Stats(ctx context.Context) (*repositories.ReturnStats, error) {
	st, err := s.store.Returns.Stats(ctx)
	if err != nil {
		return nil, apperrors.Internal(err)
	}
	return st, nil
}
