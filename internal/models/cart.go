package models

import "time"

type Cart struct {
	ID        uint       `gorm:"primaryKey" json:"id"`
	UserID    uint       `gorm:"not null;uniqueIndex" json:"userId"`
	Items     []CartItem `gorm:"foreignKey:CartID" json:"items,omitempty"`
	CreatedAt time.Time  `json:"createdAt"`
	UpdatedAt time.Time  `json:"updatedAt"`
}

// CartItem is one line of a cart. A line is identified by its product and the
// canonical key of its selected attributes.
type CartItem struct {
	ID                 uint         `gorm:"primaryKey" json:"id"`
	CartID             uint         `gorm:"not null;uniqueIndex:ux_cart_items_line,priority:1" json:"cartId"`
	ProductID          uint         `gorm:"not null;uniqueIndex:ux_cart_items_line,priority:2" json:"productId"`
	AttributesKey      string       `gorm:"not null;default:'';uniqueIndex:ux_cart_items_line,priority:3" json:"-"`
	SelectedAttributes AttributeSet `gorm:"type:jsonb" json:"selectedAttributes,omitempty"`
	Quantity           int          `gorm:"not null" json:"quantity"`
	Product            *Product     `gorm:"foreignKey:ProductID" json:"-"`
	CreatedAt          time.Time    `json:"createdAt"`
	UpdatedAt          time.Time    `json:"updatedAt"`
}
