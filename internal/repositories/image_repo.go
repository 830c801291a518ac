package repositories

import (
	"context"
	"errors"

	"storeadmin/internal/models"

	"gorm.io/gorm"
)

type ImageRepo interface {
	Create(ctx context.Context, images []models.ProductImage) error
	Get(ctx context.Context, productID, imageID uint) (*models.ProductImage, error)
	ListByProduct(ctx context.Context, productID uint) ([]models.ProductImage, error)
	NextSortOrder(ctx context.Context, productID uint) (int, error)
	HasPrimary(ctx context.Context, productID uint) (bool, error)
	ClearPrimary(ctx context.Context, productID uint) error
	MarkPrimary(ctx context.Context, imageID uint) error
	SetSortOrder(ctx context.Context, productID, imageID uint, order int) (bool, error)
	Delete(ctx context.Context, imageID uint) error
	// PromoteFirst marks the image with the lowest sort order as primary.
	PromoteFirst(ctx context.Context, productID uint) error
}

type imageRepo struct{ db *gorm.DB }

func NewImageRepo(db *gorm.DB) ImageRepo { return &imageRepo{db: db} }

func (r *imageRepo) Create(ctx context.Context, images []models.ProductImage) error {
	if len(images) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Create(&images).Error
}

func (r *imageRepo) Get(ctx context.Context, productID, imageID uint) (*models.ProductImage, error) {
	var img models.ProductImage
	err := r.db.WithContext(ctx).First(&img, "id = ? AND product_id = ?", imageID, productID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &img, err
}

func (r *imageRepo) ListByProduct(ctx context.Context, productID uint) ([]models.ProductImage, error) {
	var out []models.ProductImage
	err := r.db.WithContext(ctx).
		Where("product_id = ?", productID).
		Order("sort_order ASC, id ASC").
		Find(&out).Error
	return out, err
}

func (r *imageRepo) NextSortOrder(ctx context.Context, productID uint) (int, error) {
	var next int
	err := r.db.WithContext(ctx).Model(&models.ProductImage{}).
		Where("product_id = ?", productID).
		Select("COALESCE(MAX(sort_order) + 1, 0)").
		Scan(&next).Error
	return next, err
}

func (r *imageRepo) HasPrimary(ctx context.Context, productID uint) (bool, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&models.ProductImage{}).
		Where("product_id = ? AND is_primary", productID).
		Count(&n).Error
	return n > 0, err
}

func (r *imageRepo) ClearPrimary(ctx context.Context, productID uint) error {
	return r.db.WithContext(ctx).Model(&models.ProductImage{}).
		Where("product_id = ? AND is_primary", productID).
		Update("is_primary", false).Error
}

func (r *imageRepo) MarkPrimary(ctx context.Context, imageID uint) error {
	return r.db.WithContext(ctx).Model(&models.ProductImage{}).
		Where("id = ?", imageID).
		Update("is_primary", true).Error
}

func (r *imageRepo) SetSortOrder(ctx context.Context, productID, imageID uint, order int) (bool, error) {
	tx := r.db.WithContext(ctx).Model(&models.ProductImage{}).
		Where("id = ? AND product_id = ?", imageID, productID).
		Update("sort_order", order)
	return tx.RowsAffected > 0, tx.Error
}

func (r *imageRepo) Delete(ctx context.Context, imageID uint) error {
	return r.db.WithContext(ctx).Delete(&models.ProductImage{}, imageID).Error
}

func (r *imageRepo) PromoteFirst(ctx context.Context, productID uint) error {
	return r.db.WithContext(ctx).Exec(`
UPDATE product_images SET is_primary = true
WHERE id = (
	SELECT id FROM product_images
	WHERE product_id = ?
	ORDER BY sort_order ASC, id ASC
	LIMIT 1
)`, productID).Error
}
