package repositories

import (
	"context"
	"errors"

	"storeadmin/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type CartRepo interface {
	// GetOrCreate is idempotent under concurrency: the insert is a no-op when
	// another request created the cart first, and the select sees that row.
	GetOrCreate(ctx context.Context, userID uint) (*models.Cart, error)
	Items(ctx context.Context, cartID uint) ([]models.CartItem, error)
	GetItem(ctx context.Context, cartID, itemID uint) (*models.CartItem, error)
	// UpsertItem inserts the line or adds to the quantity of the matching line,
	// never storing more than maxQty.
	UpsertItem(ctx context.Context, item *models.CartItem, maxQty int) error
	SetItemQuantity(ctx context.Context, itemID uint, qty int) error
	DeleteItem(ctx context.Context, cartID, itemID uint) (bool, error)
	Clear(ctx context.Context, cartID uint) error
	// RemoveProducts drops every line of the user's cart that holds one of
	// productIDs, whatever its attributes.
	RemoveProducts(ctx context.Context, userID uint, productIDs []uint) error
}

type cartRepo struct{ db *gorm.DB }

func NewCartRepo(db *gorm.DB) CartRepo { return &cartRepo{db: db} }

func (r *cartRepo) GetOrCreate(ctx context.Context, userID uint) (*models.Cart, error) {
	db := r.db.WithContext(ctx)
	if err := db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}},
		DoNothing: true,
	}).Create(&models.Cart{UserID: userID}).Error; err != nil {
		return nil, err
	}

	var cart models.Cart
	if err := db.First(&cart, "user_id = ?", userID).Error; err != nil {
		return nil, err
	}
	return &cart, nil
}

func (r *cartRepo) Items(ctx context.Context, cartID uint) ([]models.CartItem, error) {
	var items []models.CartItem
	err := r.db.WithContext(ctx).
		Preload("Product").
		Preload("Product.Images", "is_primary = ?", true).
		Where("cart_id = ?", cartID).
		Order("id ASC").
		Find(&items).Error
	return items, err
}

func (r *cartRepo) GetItem(ctx context.Context, cartID, itemID uint) (*models.CartItem, error) {
	var item models.CartItem
	err := r.db.WithContext(ctx).First(&item, "id = ? AND cart_id = ?", itemID, cartID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &item, err
}

func (r *cartRepo) UpsertItem(ctx context.Context, item *models.CartItem, maxQty int) error {
	item.AttributesKey = item.SelectedAttributes.Key()
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "cart_id"}, {Name: "product_id"}, {Name: "attributes_key"}},
		DoUpdates: clause.Set{
			{Column: clause.Column{Name: "quantity"}, Value: gorm.Expr("LEAST(cart_items.quantity + excluded.quantity, ?)", maxQty)},
			{Column: clause.Column{Name: "updated_at"}, Value: gorm.Expr("now()")},
		},
	}).Create(item).Error
}

func (r *cartRepo) SetItemQuantity(ctx context.Context, itemID uint, qty int) error {
	return r.db.WithContext(ctx).Model(&models.CartItem{}).
		Where("id = ?", itemID).
		Update("quantity", qty).Error
}

func (r *cartRepo) DeleteItem(ctx context.Context, cartID, itemID uint) (bool, error) {
	tx := r.db.WithContext(ctx).
		Where("id = ? AND cart_id = ?", itemID, cartID).
		Delete(&models.CartItem{})
	return tx.RowsAffected > 0, tx.Error
}

func (r *cartRepo) Clear(ctx context.Context, cartID uint) error {
	return r.db.WithContext(ctx).Where("cart_id = ?", cartID).Delete(&models.CartItem{}).Error
}

func (r *cartRepo) RemoveProducts(ctx context.Context, userID uint, productIDs []uint) error {
	if len(productIDs) == 0 {
		return nil
	}
	db := r.db.WithContext(ctx)
	carts := db.Model(&models.Cart{}).Select("id").Where("user_id = ?", userID)
	return db.Where("cart_id IN (?) AND product_id IN ?", carts, productIDs).Delete(&models.CartItem{}).Error
}
