package models

import "time"

const (
	AddressTypeBilling  = "billing"
	AddressTypeShipping = "shipping"
)

type CustomerAddress struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	CustomerID    uint      `gorm:"not null;index" json:"customerId"`
	Customer      *User     `gorm:"foreignKey:CustomerID" json:"customer,omitempty"`
	AddressType   string    `gorm:"not null" json:"addressType"`
	FullName      string    `json:"fullName"`
	Phone         string    `json:"phone"`
	StreetAddress string    `gorm:"not null" json:"streetAddress"`
	AddressLine2  string    `json:"addressLine2"`
	City          string    `gorm:"not null" json:"city"`
	State         string    `gorm:"not null" json:"state"`
	PostalCode    string    `gorm:"not null" json:"postalCode"`
	Country       string    `gorm:"not null" json:"country"`
	IsDefault     bool      `gorm:"not null;default:false" json:"isDefault"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

func (a *CustomerAddress) Snapshot() *AddressSnapshot {
	return &AddressSnapshot{
		FullName:      a.FullName,
		StreetAddress: a.StreetAddress,
		AddressLine2:  a.AddressLine2,
		City:          a.City,
		State:         a.State,
		PostalCode:    a.PostalCode,
		Country:       a.Country,
		Phone:         a.Phone,
	}
}

func IsAddressType(t string) bool {
	return t == AddressTypeBilling || t == AddressTypeShipping
}
