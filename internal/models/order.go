package models

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	OrderStatusPending    = "pending"
	OrderStatusConfirmed  = "confirmed"
	OrderStatusProcessing = "processing"
	OrderStatusShipped    = "shipped"
	OrderStatusDelivered  = "delivered"
	OrderStatusCancelled  = "cancelled"
	OrderStatusRefunded   = "refunded"
)

const (
	PaymentStatusPending  = "pending"
	PaymentStatusPaid     = "paid"
	PaymentStatusFailed   = "failed"
	PaymentStatusRefunded = "refunded"
)

const (
	PaymentMethodCreditCard     = "credit_card"
	PaymentMethodDebitCard      = "debit_card"
	PaymentMethodUPI            = "upi"
	PaymentMethodNetBanking     = "net_banking"
	PaymentMethodWallet         = "wallet"
	PaymentMethodCashOnDelivery = "cash_on_delivery"
	PaymentMethodBankTransfer   = "bank_transfer"
)

var PaymentMethods = []string{
	PaymentMethodCreditCard,
	PaymentMethodDebitCard,
	PaymentMethodUPI,
	PaymentMethodNetBanking,
	PaymentMethodWallet,
	PaymentMethodCashOnDelivery,
	PaymentMethodBankTransfer,
}

var orderTransitions = map[string][]string{
	OrderStatusPending:    {OrderStatusConfirmed, OrderStatusCancelled},
	OrderStatusConfirmed:  {OrderStatusProcessing, OrderStatusCancelled},
	OrderStatusProcessing: {OrderStatusShipped, OrderStatusCancelled},
	OrderStatusShipped:    {OrderStatusDelivered},
	OrderStatusDelivered:  {OrderStatusRefunded},
}

// CanTransitionOrder reports whether an order may move from one status to another.
func CanTransitionOrder(from, to string) bool {
	for _, s := range orderTransitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

func IsOrderStatus(s string) bool {
	switch s {
	case OrderStatusPending, OrderStatusConfirmed, OrderStatusProcessing, OrderStatusShipped,
		OrderStatusDelivered, OrderStatusCancelled, OrderStatusRefunded:
		return true
	}
	return false
}

// AddressSnapshot is the copy of an address frozen into an order.
type AddressSnapshot struct {
	FullName      string `json:"fullName,omitempty"`
	StreetAddress string `json:"streetAddress"`
	AddressLine2  string `json:"addressLine2,omitempty"`
	City          string `json:"city"`
	State         string `json:"state"`
	PostalCode    string `json:"postalCode"`
	Country       string `json:"country"`
	Phone         string `json:"phone,omitempty"`
}

type Order struct {
	ID              uint             `gorm:"primaryKey" json:"id"`
	OrderNumber     string           `gorm:"uniqueIndex;not null" json:"orderNumber"`
	CustomerID      uint             `gorm:"not null;index" json:"customerId"`
	Customer        *User            `gorm:"foreignKey:CustomerID" json:"customer,omitempty"`
	Status          string           `gorm:"not null;default:'pending';index" json:"status"`
	PaymentStatus   string           `gorm:"not null;default:'pending'" json:"paymentStatus"`
	PaymentMethod   string           `gorm:"not null" json:"paymentMethod"`
	Subtotal        decimal.Decimal  `gorm:"type:numeric(12,2);not null" json:"subtotal"`
	TaxAmount       decimal.Decimal  `gorm:"type:numeric(12,2);not null;default:0" json:"taxAmount"`
	ShippingAmount  decimal.Decimal  `gorm:"type:numeric(12,2);not null;default:0" json:"shippingAmount"`
	DiscountAmount  decimal.Decimal  `gorm:"type:numeric(12,2);not null;default:0" json:"discountAmount"`
	TotalAmount     decimal.Decimal  `gorm:"type:numeric(12,2);not null" json:"totalAmount"`
	ShippingAddress *AddressSnapshot `gorm:"type:jsonb;serializer:json" json:"shippingAddress"`
	BillingAddress  *AddressSnapshot `gorm:"type:jsonb;serializer:json" json:"billingAddress"`
	Notes           string           `json:"notes"`
	OrderDate       time.Time        `gorm:"not null" json:"orderDate"`
	ShippedDate     *time.Time       `json:"shippedDate,omitempty"`
	DeliveredDate   *time.Time       `json:"deliveredDate,omitempty"`
	Items           []OrderItem      `gorm:"foreignKey:OrderID" json:"items,omitempty"`
	CreatedAt       time.Time        `json:"createdAt"`
	UpdatedAt       time.Time        `json:"updatedAt"`
}

// OrderItem is frozen at placement time; later product edits do not touch it.
type OrderItem struct {
	ID          uint            `gorm:"primaryKey" json:"id"`
	OrderID     uint            `gorm:"not null;index" json:"orderId"`
	ProductID   *uint           `gorm:"index" json:"productId"`
	ProductName string          `gorm:"not null" json:"productName"`
	ProductSKU  string          `gorm:"column:product_sku;not null" json:"productSku"`
	UnitPrice   decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"unitPrice"`
	Quantity    int             `gorm:"not null" json:"quantity"`
	TotalPrice  decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"totalPrice"`
	CreatedAt   time.Time       `json:"createdAt"`
}
