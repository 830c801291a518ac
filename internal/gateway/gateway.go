// Package gateway settles refunds with the payment processor that took the
// original payment.
package gateway

import (
	"context"
	"errors"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/stripe/stripe-go/v72"
	"github.com/stripe/stripe-go/v72/client"
)

var ErrMissingReference = errors.New("gateway transaction id is required")

type RefundRequest struct {
	// GatewayTransactionID is the charge (ch_) or payment intent (pi_) id.
	GatewayTransactionID string
	Amount               decimal.Decimal
	Currency             string
	Reason               string
	RefundID             string
}

type RefundResult struct {
	GatewayRefundID string
	Status          string
}

type RefundGateway interface {
	Refund(ctx context.Context, req RefundRequest) (RefundResult, error)
}

type StripeGateway struct {
	api *client.API
}

func NewStripeGateway(secretKey string) *StripeGateway {
	return &StripeGateway{api: client.New(secretKey, nil)}
}

func (g *StripeGateway) Refund(ctx context.Context, req RefundRequest) (RefundResult, error) {
	if req.GatewayTransactionID == "" {
		return RefundResult{}, ErrMissingReference
	}

	params := &stripe.RefundParams{
		Amount: stripe.Int64(toMinorUnits(req.Amount)),
	}
	params.Context = ctx
	if strings.HasPrefix(req.GatewayTransactionID, "pi_") {
		params.PaymentIntent = stripe.String(req.GatewayTransactionID)
	} else {
		params.Charge = stripe.String(req.GatewayTransactionID)
	}
	if req.RefundID != "" {
		params.SetIdempotencyKey(req.RefundID)
		params.AddMetadata("refund_id", req.RefundID)
	}
	if req.Reason != "" {
		params.AddMetadata("reason", req.Reason)
	}

	r, err := g.api.Refunds.New(params)
	if err != nil {
		return RefundResult{}, err
	}
	return RefundResult{GatewayRefundID: r.ID, Status: string(r.Status)}, nil
}

// Noop accepts every refund without contacting a processor.
type Noop struct{}

func (Noop) Refund(context.Context, RefundRequest) (RefundResult, error) {
	return RefundResult{Status: "skipped"}, nil
}

// New returns a stripe gateway when a key is configured.
func New(stripeKey string) RefundGateway {
	if stripeKey == "" {
		return Noop{}
	}
	return NewStripeGateway(stripeKey)
}

func toMinorUnits(amount decimal.Decimal) int64 {
	return amount.Mul(decimal.NewFromInt(100)).Round(0).IntPart()
}
