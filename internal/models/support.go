package models

import "time"

const (
	TicketStatusOpen       = "open"
	TicketStatusInProgress = "in-progress"
	TicketStatusResolved   = "resolved"
	TicketStatusClosed     = "closed"
)

const (
	PriorityLow    = "low"
	PriorityMedium = "medium"
	PriorityHigh   = "high"
	PriorityUrgent = "urgent"
)

func IsTicketStatus(s string) bool {
	switch s {
	case TicketStatusOpen, TicketStatusInProgress, TicketStatusResolved, TicketStatusClosed:
		return true
	}
	return false
}

func IsPriority(p string) bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh, PriorityUrgent:
		return true
	}
	return false
}

type SupportTicket struct {
	ID                 uint      `gorm:"primaryKey" json:"id"`
	TicketNumber       string    `gorm:"uniqueIndex;not null" json:"ticketNumber"`
	CustomerID         uint      `gorm:"not null;index" json:"customerId"`
	Customer           *User     `gorm:"foreignKey:CustomerID" json:"customer,omitempty"`
	Subject            string    `gorm:"not null" json:"subject"`
	Description        string    `gorm:"type:text;not null" json:"description"`
	Status             string    `gorm:"not null;default:'open';index" json:"status"`
	Priority           string    `gorm:"not null;default:'medium'" json:"priority"`
	AssignedTo         *uint     `json:"assignedTo"`
	Assignee           *User     `gorm:"foreignKey:AssignedTo" json:"assignee,omitempty"`
	AdminResponse      string    `gorm:"type:text" json:"adminResponse"`
	SatisfactionRating *int      `json:"satisfactionRating"`
	CreatedAt          time.Time `json:"createdAt"`
	UpdatedAt          time.Time `json:"updatedAt"`
}
