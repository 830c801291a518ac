// Package order places orders atomically against live stock and drives the
// order status machine.
package order

import (
	"context"
	"sort"
	"time"

	"storeadmin/internal/config"
	apperrors "storeadmin/internal/errors"
	"storeadmin/internal/events"
	"storeadmin/internal/models"
	"storeadmin/internal/repositories"
	"storeadmin/internal/utils"
	"storeadmin/internal/validation"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

type Line struct {
	ProductID uint `json:"productId"`
	Quantity  int  `json:"quantity"`
}

// CreateInput describes an order. Addresses are given either by id or inline;
// the billing address falls back to the shipping one. ClearCart removes the
// ordered products from the customer's cart in the same unit.
type CreateInput struct {
	CustomerID        uint                    `json:"customerId"`
	Items             []Line                  `json:"items"`
	ShippingAddressID *uint                   `json:"shippingAddressId"`
	BillingAddressID  *uint                   `json:"billingAddressId"`
	ShippingAddress   *models.AddressSnapshot `json:"shippingAddress"`
	BillingAddress    *models.AddressSnapshot `json:"billingAddress"`
	PaymentMethod     string                  `json:"paymentMethod"`
	Notes             string                  `json:"notes"`
	Discount          decimal.Decimal         `json:"discountAmount"`
	ClearCart         bool                    `json:"clearCart"`
}

type Service interface {
	Create(ctx context.Context, in CreateInput) (*models.Order, error)
	UpdateStatus(ctx context.Context, orderID uint, status string) (*models.Order, error)
	Get(ctx context.Context, orderID uint) (*models.Order, error)
	List(ctx context.Context, f repositories.OrderFilter) ([]models.Order, int64, error)
	ListByCustomer(ctx context.Context, customerID uint, page repositories.Page) ([]models.Order, int64, error)
	Stats(ctx context.Context) (*repositories.OrderStats, error)
}

type service struct {
	store     *repositories.Store
	pricing   config.Pricing
	publisher events.Publisher
	log       *zap.Logger
}

func NewService(store *repositories.Store, pricing config.Pricing, publisher events.Publisher, log *zap.Logger) Service {
	if store == nil {
		panic("order: store is required")
	}
	if publisher == nil {
		publisher = events.Noop{}
	}
	return &service{store: store, pricing: pricing, publisher: publisher, log: log}
}

func validateCreate(in CreateInput) error {
	v := validation.New()
	v.Check(in.CustomerID != 0, "customerId", "must be provided")
	v.Check(len(in.Items) > 0, "items", "must contain at least one item")
	for _, it := range in.Items {
		if it.ProductID == 0 {
			v.AddError("items", "every item needs a productId")
		}
		if it.Quantity <= 0 {
			v.AddError("items", "every quantity must be greater than zero")
		}
	}
	v.OneOf("paymentMethod", in.PaymentMethod, models.PaymentMethods...)
	v.NonNegativeAmount("discountAmount", in.Discount)
	if in.ShippingAddressID == nil && in.ShippingAddress == nil {
		v.AddError("shippingAddress", "must be provided")
	}
	checkSnapshot(v, "shippingAddress", in.ShippingAddress)
	checkSnapshot(v, "billingAddress", in.BillingAddress)
	return v.Err()
}

func checkSnapshot(v *validation.Validator, field string, a *models.AddressSnapshot) {
	if a == nil {
		return
	}
	for _, part := range []string{a.StreetAddress, a.City, a.State, a.PostalCode, a.Country} {
		if part == "" {
			v.AddError(field, "street, city, state, postal code and country are required")
			return
		}
	}
}

func (s *service) Create(ctx context.Context, in CreateInput) (*models.Order, error) {
	if err := validateCreate(in); err != nil {
		return nil, err
	}
	lines := mergeLines(in.Items)

	var o *models.Order
	err := s.store.WithTx(ctx, func(tx *repositories.Store) error {
		customer, err := tx.Users.GetByID(ctx, in.CustomerID)
		if err != nil {
			return err
		}
		if customer == nil {
			return ErrCustomerNotFound
		}

		shipping, err := resolveAddress(ctx, tx, in.CustomerID, in.ShippingAddressID, in.ShippingAddress)
		if err != nil {
			return err
		}
		billing, err := resolveAddress(ctx, tx, in.CustomerID, in.BillingAddressID, in.BillingAddress)
		if err != nil {
			return err
		}
		if billing == nil {
			billing = shipping
		}

		ids := make([]uint, len(lines))
		for i, l := range lines {
			ids[i] = l.ProductID
		}
		products, err := tx.Products.LockByIDs(ctx, ids)
		if err != nil {
			return err
		}
		for _, l := range lines {
			p, ok := products[l.ProductID]
			if !ok {
				return ErrProductNotFound.WithMessage("product %d not found", l.ProductID)
			}
			if p.Status != models.ProductStatusActive {
				return ErrProductUnavailable.WithMessage("%s is not available for sale", p.Name)
			}
			if p.StockQuantity < l.Quantity {
				return ErrInsufficientStock.WithMessage("insufficient stock for %s: %d available, %d requested",
					p.Name, p.StockQuantity, l.Quantity)
			}
		}

		items, totals, err := priceLines(lines, products, s.pricing, in.Discount)
		if err != nil {
			return err
		}

		o = &models.Order{
			OrderNumber:     utils.NewReference(utils.PrefixOrder),
			CustomerID:      in.CustomerID,
			Status:          models.OrderStatusPending,
			PaymentStatus:   models.PaymentStatusPending,
			PaymentMethod:   in.PaymentMethod,
			Subtotal:        totals.Subtotal,
			TaxAmount:       totals.Tax,
			ShippingAmount:  totals.Shipping,
			DiscountAmount:  totals.Discount,
			TotalAmount:     totals.Total,
			ShippingAddress: shipping,
			BillingAddress:  billing,
			Notes:           in.Notes,
			OrderDate:       time.Now(),
			Items:           items,
		}
		if err := tx.Orders.Create(ctx, o); err != nil {
			return err
		}

		for _, l := range lines {
			ok, err := tx.Products.DecrementStock(ctx, l.ProductID, l.Quantity)
			if err != nil {
				return err
			}
			if !ok {
				return ErrInsufficientStock.WithMessage("insufficient stock for product %d", l.ProductID)
			}
		}

		if in.ClearCart {
			return tx.Carts.RemoveProducts(ctx, in.CustomerID, ids)
		}
		return nil
	})
	if err != nil {
		return nil, apperrors.Internal(err)
	}

	s.log.Info("order placed",
		zap.String("order_number", o.OrderNumber),
		zap.Uint("customer_id", o.CustomerID),
		zap.String("total", o.TotalAmount.StringFixed(2)),
	)
	events.Emit(ctx, s.publisher, s.log, events.NewEvent(events.OrderCreated, o.OrderNumber, map[string]any{
		"orderId":     o.ID,
		"orderNumber": o.OrderNumber,
		"customerId":  o.CustomerID,
		"totalAmount": o.TotalAmount,
		"items":       len(o.Items),
	}))
	return o, nil
}

func resolveAddress(ctx context.Context, tx *repositories.Store, customerID uint, id *uint, inline *models.AddressSnapshot) (*models.AddressSnapshot, error) {
	if id == nil {
		return inline, nil
	}
	a, err := tx.Addresses.GetByID(ctx, *id)
	if err != nil {
		return nil, err
	}
	if a == nil || a.CustomerID != customerID {
		return nil, ErrAddressNotFound
	}
	return a.Snapshot(), nil
}

func (s *service) UpdateStatus(ctx context.Context, orderID uint, status string) (*models.Order, error) {
	if !models.IsOrderStatus(status) {
		return nil, apperrors.Validation(map[string]string{"status": "unknown order status"})
	}

	var from string
	var orderNumber string
	err := s.store.WithTx(ctx, func(tx *repositories.Store) error {
		o, err := tx.Orders.LockByID(ctx, orderID)
		if err != nil {
			return err
		}
		if o == nil {
			return ErrOrderNotFound
		}
		if !models.CanTransitionOrder(o.Status, status) {
			return ErrInvalidTransition.WithMessage("cannot move order from %s to %s", o.Status, status)
		}
		from, orderNumber = o.Status, o.OrderNumber

		now := time.Now()
		fields := map[string]any{"status": status}
		switch status {
		case models.OrderStatusShipped:
			fields["shipped_date"] = now
		case models.OrderStatusDelivered:
			fields["delivered_date"] = now
		case models.OrderStatusCancelled:
			for _, it := range o.Items {
				if it.ProductID == nil {
					continue
				}
				if err := tx.Products.IncrementStock(ctx, *it.ProductID, it.Quantity); err != nil {
					return err
				}
			}
		}
		return tx.Orders.UpdateFields(ctx, o.ID, fields)
	})
	if err != nil {
		return nil, apperrors.Internal(err)
	}

	events.Emit(ctx, s.publisher, s.log, events.NewEvent(events.OrderStatusChanged, orderNumber, map[string]any{
		"orderId": orderID,
		"from":    from,
		"to":      status,
	}))
	return s.Get(ctx, orderID)
}

func (s *service) Get(ctx context.Context, orderID uint) (*models.Order, error) {
	o, err := s.store.Orders.GetByID(ctx, orderID)
	if err != nil {
		return nil, apperrors.Internal(err)
	}
	if o == nil {
		return nil, ErrOrderNotFound
	}
	return o, nil
}

func (s *service) List(ctx context.Context, f repositories.OrderFilter) ([]models.Order, int64, error) {
	orders, total, err := s.store.Orders.List(ctx, f)
	if err != nil {
		return nil, 0, apperrors.Internal(err)
	}
	return orders, total, nil
}

func (s *service) ListByCustomer(ctx context.Context, customerID uint, page repositories.Page) ([]models.Order, int64, error) {
	return s.List(ctx, repositories.OrderFilter{Page: page, CustomerID: &customerID})
}

func (s *service) Stats(ctx context.Context) (*repositories.OrderStats, error) {
	st, err := s.store.Orders.Stats(ctx)
	if err != nil {
		return nil, apperrors.Internal(err)
	}
	return st, nil
}

func sortIDs(ids []uint) {
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
}
