package models

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	ReturnStatusInitiated  = "Return Initiated"
	ReturnStatusInProgress = "Return in Progress"
	ReturnStatusQC         = "QC in Progress"
	ReturnStatusReturned   = "Returned"
	ReturnStatusScrapped   = "Scrapped"
	ReturnStatusCancelled  = "Cancelled"
)

func IsReturnStatus(s string) bool {
	switch s {
	case ReturnStatusInitiated, ReturnStatusInProgress, ReturnStatusQC,
		ReturnStatusReturned, ReturnStatusScrapped, ReturnStatusCancelled:
		return true
	}
	return false
}

func IsTerminalReturnStatus(s string) bool {
	return s == ReturnStatusReturned || s == ReturnStatusScrapped || s == ReturnStatusCancelled
}

// CanTransitionReturn allows one step forward, Cancelled from any open status,
// and a same-status update of an open return.
func CanTransitionReturn(from, to string) bool {
	if IsTerminalReturnStatus(from) {
		return false
	}
	if from == to || to == ReturnStatusCancelled {
		return true
	}
	switch from {
	case ReturnStatusInitiated:
		return to == ReturnStatusInProgress
	case ReturnStatusInProgress:
		return to == ReturnStatusQC
	case ReturnStatusQC:
		return to == ReturnStatusReturned || to == ReturnStatusScrapped
	}
	return false
}

type ReturnOrder struct {
	ID             uint            `gorm:"primaryKey" json:"id"`
	ReturnID       string          `gorm:"uniqueIndex;not null" json:"returnId"`
	OrderID        uint            `gorm:"not null;index" json:"orderId"`
	Order          *Order          `gorm:"foreignKey:OrderID" json:"order,omitempty"`
	CustomerID     uint            `gorm:"not null;index" json:"customerId"`
	Customer       *User           `gorm:"foreignKey:CustomerID" json:"customer,omitempty"`
	ProductID      uint            `gorm:"not null" json:"productId"`
	Product        *Product        `gorm:"foreignKey:ProductID" json:"product,omitempty"`
	Quantity       int             `gorm:"not null" json:"quantity"`
	Reason         string          `gorm:"not null" json:"reason"`
	RefundAmount   decimal.Decimal `gorm:"type:numeric(12,2);not null;default:0" json:"refundAmount"`
	TrackingNumber string          `json:"trackingNumber"`
	Notes          string          `json:"notes"`
	Status         string          `gorm:"not null;default:'Return Initiated';index" json:"status"`
	ReturnDate     time.Time       `gorm:"not null" json:"returnDate"`
	ProcessedDate  *time.Time      `json:"processedDate,omitempty"`
	CreatedAt      time.Time       `json:"createdAt"`
	UpdatedAt      time.Time       `json:"updatedAt"`
}
