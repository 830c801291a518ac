package repositories

import (
	"context"
	"errors"

	"storeadmin/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ProductFilter struct {
	Page
	Search      string
	CategoryID  *uint
	Status      string
	StockStatus string
	Featured    *bool
}

type ProductRepo interface {
	Create(ctx context.Context, p *models.Product) error
	GetByID(ctx context.Context, id uint) (*models.Product, error)
	GetBySKU(ctx context.Context, sku string) (*models.Product, error)
	GetByIDs(ctx context.Context, ids []uint) (map[uint]*models.Product, error)
	LockByID(ctx context.Context, id uint) (*models.Product, error)
	// LockByIDs locks rows in ascending id order so concurrent placements
	// cannot deadlock on each other.
	LockByIDs(ctx context.Context, ids []uint) (map[uint]*models.Product, error)
	ShareLockByID(ctx context.Context, id uint) (*models.Product, error)
	Save(ctx context.Context, p *models.Product) error
	Delete(ctx context.Context, id uint) (bool, error)
	List(ctx context.Context, f ProductFilter) ([]models.Product, int64, error)
	// DecrementStock subtracts qty only if enough stock is left and
	// recomputes stock_status in the same statement.
	DecrementStock(ctx context.Context, id uint, qty int) (bool, error)
	IncrementStock(ctx context.Context, id uint, qty int) error
	ReplaceAttributes(ctx context.Context, productID uint, attrs []models.ProductAttribute) error
	CreateVariant(ctx context.Context, v *models.ProductVariant) error
	DeleteVariant(ctx context.Context, productID, variantID uint) (bool, error)
	SKUOrSlugTaken(ctx context.Context, sku, slug string, exceptID uint) (skuTaken, slugTaken bool, err error)
}

type productRepo struct{ db *gorm.DB }

func NewProductRepo(db *gorm.DB) ProductRepo { return &productRepo{db: db} }

func withProductChildren(q *gorm.DB) *gorm.DB {
	return q.Preload("Category").
		Preload("Images", func(db *gorm.DB) *gorm.DB { return db.Order("sort_order ASC, id ASC") }).
		Preload("Attributes", func(db *gorm.DB) *gorm.DB { return db.Order("name ASC") }).
		Preload("Variants", func(db *gorm.DB) *gorm.DB { return db.Order("id ASC") })
}

func (r *productRepo) Create(ctx context.Context, p *models.Product) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(p).Error
}

func (r *productRepo) GetByID(ctx context.Context, id uint) (*models.Product, error) {
	var p models.Product
	err := withProductChildren(r.db.WithContext(ctx)).First(&p, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &p, err
}

func (r *productRepo) GetBySKU(ctx context.Context, sku string) (*models.Product, error) {
	var p models.Product
	err := r.db.WithContext(ctx).First(&p, "sku = ?", sku).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &p, err
}

func (r *productRepo) GetByIDs(ctx context.Context, ids []uint) (map[uint]*models.Product, error) {
	out := make(map[uint]*models.Product, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	var rows []models.Product
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&rows).Error; err != nil {
		return nil, err
	}
	for i := range rows {
		out[rows[i].ID] = &rows[i]
	}
	return out, nil
}

func (r *productRepo) LockByID(ctx context.Context, id uint) (*models.Product, error) {
	return r.lockOne(ctx, id, "UPDATE")
}

func (r *productRepo) ShareLockByID(ctx context.Context, id uint) (*models.Product, error) {
	return r.lockOne(ctx, id, "SHARE")
}

func (r *productRepo) lockOne(ctx context.Context, id uint, strength string) (*models.Product, error) {
	var p models.Product
	err := r.db.WithContext(ctx).Clauses(clause.Locking{Strength: strength}).First(&p, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &p, err
}

func (r *productRepo) LockByIDs(ctx context.Context, ids []uint) (map[uint]*models.Product, error) {
	out := make(map[uint]*models.Product, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	var rows []models.Product
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id IN ?", ids).
		Order("id ASC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	for i := range rows {
		out[rows[i].ID] = &rows[i]
	}
	return out, nil
}

func (r *productRepo) Save(ctx context.Context, p *models.Product) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Save(p).Error
}

func (r *productRepo) Delete(ctx context.Context, id uint) (bool, error) {
	tx := r.db.WithContext(ctx).Delete(&models.Product{}, id)
	return tx.RowsAffected > 0, tx.Error
}

func (r *productRepo) List(ctx context.Context, f ProductFilter) ([]models.Product, int64, error) {
	q := r.db.WithContext(ctx).Model(&models.Product{})
	if f.Search != "" {
		s := like(f.Search)
		q = q.Where("name ILIKE ? OR sku ILIKE ? OR brand ILIKE ?", s, s, s)
	}
	if f.CategoryID != nil {
		q = q.Where("category_id = ?", *f.CategoryID)
	}
	if f.Status != "" {
		q = q.Where("status = ?", f.Status)
	}
	if f.StockStatus != "" {
		q = q.Where("stock_status = ?", f.StockStatus)
	}
	if f.Featured != nil {
		q = q.Where("featured = ?", *f.Featured)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var products []models.Product
	q = q.Preload("Category").
		Preload("Images", "is_primary = ?", true).
		Order("created_at DESC")
	err := f.Page.apply(q).Find(&products).Error
	return products, total, err
}

func (r *productRepo) DecrementStock(ctx context.Context, id uint, qty int) (bool, error) {
	tx := r.db.WithContext(ctx).Exec(`
UPDATE products
SET stock_quantity = stock_quantity - @q,
    stock_status = CASE
        WHEN stock_quantity - @q > 0 THEN 'in_stock'
        WHEN stock_status = 'on_backorder' THEN 'on_backorder'
        ELSE 'out_of_stock'
    END,
    updated_at = now()
WHERE id = @id
  AND stock_quantity >= @q
`, map[string]any{
		"id": id,
		"q":  qty,
	})
	return tx.RowsAffected > 0, tx.Error
}

func (r *productRepo) IncrementStock(ctx context.Context, id uint, qty int) error {
	return r.db.WithContext(ctx).Exec(`
UPDATE products
SET stock_quantity = stock_quantity + @q,
    stock_status = CASE WHEN stock_quantity + @q > 0 THEN 'in_stock' ELSE stock_status END,
    updated_at = now()
WHERE id = @id
`, map[string]any{
		"id": id,
		"q":  qty,
	}).Error
}

func (r *productRepo) ReplaceAttributes(ctx context.Context, productID uint, attrs []models.ProductAttribute) error {
	db := r.db.WithContext(ctx)
	if err := db.Where("product_id = ?", productID).Delete(&models.ProductAttribute{}).Error; err != nil {
		return err
	}
	if len(attrs) == 0 {
		return nil
	}
	for i := range attrs {
		attrs[i].ID = 0
		attrs[i].ProductID = productID
	}
	return db.Create(&attrs).Error
}

func (r *productRepo) CreateVariant(ctx context.Context, v *models.ProductVariant) error {
	return r.db.WithContext(ctx).Create(v).Error
}

func (r *productRepo) DeleteVariant(ctx context.Context, productID, variantID uint) (bool, error) {
	tx := r.db.WithContext(ctx).
		Where("product_id = ? AND id = ?", productID, variantID).
		Delete(&models.ProductVariant{})
	return tx.RowsAffected > 0, tx.Error
}

func (r *productRepo) SKUOrSlugTaken(ctx context.Context, sku, slug string, exceptID uint) (bool, bool, error) {
	var row struct {
		SKUTaken  bool
		SlugTaken bool
	}
	err := r.db.WithContext(ctx).Raw(`
SELECT
	EXISTS (SELECT 1 FROM products WHERE sku = ? AND id <> ?)  AS sku_taken,
	EXISTS (SELECT 1 FROM products WHERE slug = ? AND id <> ?) AS slug_taken`,
		sku, exceptID, slug, exceptID).Scan(&row).Error
	return row.SKUTaken, row.SlugTaken, err
}
