package models

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	TransactionTypePayment    = "payment"
	TransactionTypeRefund     = "refund"
	TransactionTypeChargeback = "chargeback"
	TransactionTypeAdjustment = "adjustment"
	TransactionTypeCredit     = "credit"
)

const (
	TransactionStatusPending   = "pending"
	TransactionStatusCompleted = "completed"
	TransactionStatusFailed    = "failed"
	TransactionStatusCancelled = "cancelled"
	TransactionStatusRefunded  = "refunded"
)

const GatewayStripe = "stripe"

func IsTransactionType(t string) bool {
	switch t {
	case TransactionTypePayment, TransactionTypeRefund, TransactionTypeChargeback,
		TransactionTypeAdjustment, TransactionTypeCredit:
		return true
	}
	return false
}

func IsTransactionStatus(s string) bool {
	switch s {
	case TransactionStatusPending, TransactionStatusCompleted, TransactionStatusFailed,
		TransactionStatusCancelled, TransactionStatusRefunded:
		return true
	}
	return false
}

// PaymentStatusFor maps a transaction status to the payment status of the owning
// order. ok is false when the transaction status does not affect the order.
func PaymentStatusFor(txStatus string) (status string, ok bool) {
	switch txStatus {
	case TransactionStatusCompleted:
		return PaymentStatusPaid, true
	case TransactionStatusFailed:
		return PaymentStatusFailed, true
	case TransactionStatusRefunded:
		return PaymentStatusRefunded, true
	}
	return "", false
}

// TransactionMetadata is the structured part of a transaction's metadata column.
type TransactionMetadata struct {
	OriginalTransactionID string `json:"originalTransactionId,omitempty"`
	RefundReason          string `json:"refundReason,omitempty"`
	GatewayRefundID       string `json:"gatewayRefundId,omitempty"`
	Extra                 JSON   `json:"extra,omitempty"`
}

type Transaction struct {
	ID                   uint                 `gorm:"primaryKey" json:"id"`
	TransactionID        string               `gorm:"uniqueIndex;not null" json:"transactionId"`
	CustomerID           uint                 `gorm:"not null;index" json:"customerId"`
	Customer             *User                `gorm:"foreignKey:CustomerID" json:"customer,omitempty"`
	OrderID              *uint                `gorm:"index" json:"orderId"`
	Order                *Order               `gorm:"foreignKey:OrderID" json:"order,omitempty"`
	Amount               decimal.Decimal      `gorm:"type:numeric(12,2);not null" json:"amount"`
	RefundedAmount       decimal.Decimal      `gorm:"type:numeric(12,2);not null;default:0" json:"refundedAmount"`
	Currency             string               `gorm:"not null;default:'USD'" json:"currency"`
	TransactionType      string               `gorm:"not null;index" json:"transactionType"`
	Status               string               `gorm:"not null;default:'pending';index" json:"status"`
	PaymentMethod        string               `json:"paymentMethod"`
	PaymentGateway       string               `json:"paymentGateway"`
	GatewayTransactionID string               `json:"gatewayTransactionId"`
	Description          string               `json:"description"`
	FailureReason        string               `json:"failureReason"`
	Metadata             *TransactionMetadata `gorm:"type:jsonb;serializer:json" json:"metadata,omitempty"`
	CreatedAt            time.Time            `json:"createdAt"`
	UpdatedAt            time.Time            `json:"updatedAt"`
}

// Refundable is what remains to be refunded against this transaction.
func (t *Transaction) Refundable() decimal.Decimal {
	return t.Amount.Sub(t.RefundedAmount)
}
