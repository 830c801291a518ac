package models

import "time"

const (
	ReviewStatusPending  = "pending"
	ReviewStatusApproved = "approved"
	ReviewStatusRejected = "rejected"
)

type Review struct {
	ID                   uint      `gorm:"primaryKey" json:"id"`
	ProductID            uint      `gorm:"not null;uniqueIndex:ux_reviews_user_product,priority:2" json:"productId"`
	Product              *Product  `gorm:"foreignKey:ProductID" json:"product,omitempty"`
	UserID               uint      `gorm:"not null;uniqueIndex:ux_reviews_user_product,priority:1" json:"userId"`
	User                 *User     `gorm:"foreignKey:UserID" json:"user,omitempty"`
	OrderID              *uint     `json:"orderId"`
	Rating               int       `gorm:"not null" json:"rating"`
	Title                string    `json:"title"`
	Comment              string    `gorm:"type:text" json:"comment"`
	ProductQualityRating *int      `json:"productQualityRating"`
	ShippingRating       *int      `json:"shippingRating"`
	SellerRating         *int      `json:"sellerRating"`
	Status               string    `gorm:"not null;default:'pending';index" json:"status"`
	AdminReply           string    `json:"adminReply"`
	CreatedAt            time.Time `json:"createdAt"`
	UpdatedAt            time.Time `json:"updatedAt"`
}
