package models

import (
	"time"

	"github.com/lib/pq"
)

const (
	KYCStatusPending  = "pending"
	KYCStatusAccepted = "accepted"
	KYCStatusRejected = "rejected"
)

const (
	DocumentAadhaar        = "aadhaar"
	DocumentPAN            = "pan"
	DocumentPassport       = "passport"
	DocumentDrivingLicense = "driving_license"
)

func IsDocumentType(t string) bool {
	switch t {
	case DocumentAadhaar, DocumentPAN, DocumentPassport, DocumentDrivingLicense:
		return true
	}
	return false
}

type KYCApplication struct {
	ID              uint           `gorm:"primaryKey" json:"id"`
	ApplicationID   string         `gorm:"uniqueIndex;not null" json:"applicationId"`
	UserID          uint           `gorm:"not null;index" json:"userId"`
	User            *User          `gorm:"foreignKey:UserID" json:"user,omitempty"`
	DocumentType    string         `gorm:"not null" json:"documentType"`
	DocumentNumber  string         `gorm:"not null" json:"documentNumber"`
	FrontImageURL   string         `json:"frontImageUrl"`
	BackImageURL    string         `json:"backImageUrl"`
	SelfieImageURL  string         `json:"selfieImageUrl"`
	AssetIDs        pq.StringArray `gorm:"type:text[]" json:"-"`
	Status          string         `gorm:"not null;default:'pending';index" json:"status"`
	RejectionReason string         `json:"rejectionReason"`
	SubmittedDate   time.Time      `gorm:"not null" json:"submittedDate"`
	ReviewedDate    *time.Time     `json:"reviewedDate,omitempty"`
	ReviewedBy      *uint          `json:"reviewedBy,omitempty"`
	CreatedAt       time.Time      `json:"createdAt"`
	UpdatedAt       time.Time      `json:"updatedAt"`
}

func (KYCApplication) TableName() string { return "kyc_applications" }
