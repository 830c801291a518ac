package models

import (
	"time"

	"github.com/lib/pq"
	"github.com/shopspring/decimal"
)

const (
	StockInStock    = "in_stock"
	StockOutOfStock = "out_of_stock"
	StockBackorder  = "on_backorder"
)

const (
	ProductStatusActive   = "active"
	ProductStatusInactive = "inactive"
	ProductStatusDraft    = "draft"
)

type Category struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Name        string    `gorm:"not null" json:"name"`
	Slug        string    `gorm:"uniqueIndex;not null" json:"slug"`
	Description string    `json:"description"`
	ParentID    *uint     `gorm:"index" json:"parentId"`
	IsActive    bool      `gorm:"not null;default:true" json:"isActive"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

type Product struct {
	ID               uint                `gorm:"primaryKey" json:"id"`
	Name             string              `gorm:"not null" json:"name"`
	Slug             string              `gorm:"uniqueIndex;not null" json:"slug"`
	SKU              string              `gorm:"column:sku;uniqueIndex;not null" json:"sku"`
	Description      string              `gorm:"type:text" json:"description"`
	ShortDescription string              `json:"shortDescription"`
	CategoryID       *uint               `gorm:"index" json:"categoryId"`
	Category         *Category           `gorm:"foreignKey:CategoryID" json:"category,omitempty"`
	Brand            string              `json:"brand"`
	Price            decimal.Decimal     `gorm:"type:numeric(12,2);not null" json:"price"`
	SalePrice        decimal.NullDecimal `gorm:"type:numeric(12,2)" json:"salePrice"`
	StockQuantity    int                 `gorm:"not null;default:0" json:"stockQuantity"`
	StockStatus      string              `gorm:"not null;default:'in_stock'" json:"stockStatus"`
	Weight           decimal.NullDecimal `gorm:"type:numeric(10,3)" json:"weight"`
	Dimensions       string              `json:"dimensions"`
	Status           string              `gorm:"not null;default:'active'" json:"status"`
	Featured         bool                `gorm:"not null;default:false" json:"featured"`
	MetaTitle        string              `json:"metaTitle"`
	MetaDescription  string              `json:"metaDescription"`
	Images           []ProductImage      `gorm:"foreignKey:ProductID" json:"images,omitempty"`
	Attributes       []ProductAttribute  `gorm:"foreignKey:ProductID" json:"attributes,omitempty"`
	Variants         []ProductVariant    `gorm:"foreignKey:ProductID" json:"variants,omitempty"`
	CreatedAt        time.Time           `json:"createdAt"`
	UpdatedAt        time.Time           `json:"updatedAt"`
}

// EffectivePrice is the price a customer pays for one unit.
func (p *Product) EffectivePrice() decimal.Decimal {
	if p.SalePrice.Valid {
		return p.SalePrice.Decimal
	}
	return p.Price
}

// PrimaryImageURL returns the URL of the primary image, if the images were loaded.
func (p *Product) PrimaryImageURL() string {
	for _, img := range p.Images {
		if img.IsPrimary {
			return img.ImageURL
		}
	}
	return ""
}

// StockStatusFor derives the stock status for a quantity. A product marked
// on_backorder keeps that status while it has no stock.
func StockStatusFor(qty int, current string) string {
	if qty > 0 {
		return StockInStock
	}
	if current == StockBackorder {
		return StockBackorder
	}
	return StockOutOfStock
}

type ProductImage struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	ProductID uint      `gorm:"not null;index" json:"productId"`
	ImageURL  string    `gorm:"not null" json:"imageUrl"`
	PublicID  string    `gorm:"not null" json:"publicId"`
	AltText   string    `json:"altText"`
	SortOrder int       `gorm:"not null;default:0" json:"sortOrder"`
	IsPrimary bool      `gorm:"not null;default:false" json:"isPrimary"`
	CreatedAt time.Time `json:"createdAt"`
}

type ProductAttribute struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	ProductID uint           `gorm:"not null;uniqueIndex:ux_product_attributes_name,priority:1" json:"productId"`
	Name      string         `gorm:"not null;uniqueIndex:ux_product_attributes_name,priority:2" json:"name"`
	Values    pq.StringArray `gorm:"type:text[];not null" json:"values"`
}

type ProductVariant struct {
	ID            uint                `gorm:"primaryKey" json:"id"`
	ProductID     uint                `gorm:"not null;index" json:"productId"`
	SKU           string              `gorm:"column:sku;uniqueIndex;not null" json:"sku"`
	Name          string              `json:"name"`
	Price         decimal.Decimal     `gorm:"type:numeric(12,2);not null" json:"price"`
	SalePrice     decimal.NullDecimal `gorm:"type:numeric(12,2)" json:"salePrice"`
	StockQuantity int                 `gorm:"not null;default:0" json:"stockQuantity"`
	Enabled       bool                `gorm:"not null;default:true" json:"enabled"`
	CreatedAt     time.Time           `json:"createdAt"`
	UpdatedAt     time.Time           `json:"updatedAt"`
}
