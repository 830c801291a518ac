// Package catalog manages products, categories, product images, attributes
// and variants, and moves the catalog in and out of spreadsheets.
package catalog

import (
	"context"
	"errors"
	"io"
	"time"

	apperrors "storeadmin/internal/errors"
	"storeadmin/internal/models"
	"storeadmin/internal/repositories"
	"storeadmin/internal/repositories/cache"
	"storeadmin/internal/storage"
	"storeadmin/internal/utils"
	"storeadmin/internal/validation"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type ProductInput struct {
	Name             string              `json:"name"`
	Slug             string              `json:"slug"`
	SKU              string              `json:"sku"`
	Description      string              `json:"description"`
	ShortDescription string              `json:"shortDescription"`
	CategoryID       *uint               `json:"categoryId"`
	Brand            string              `json:"brand"`
	Price            decimal.Decimal     `json:"price"`
	SalePrice        decimal.NullDecimal `json:"salePrice"`
	StockQuantity    int                 `json:"stockQuantity"`
	StockStatus      string              `json:"stockStatus"`
	Weight           decimal.NullDecimal `json:"weight"`
	Dimensions       string              `json:"dimensions"`
	Status           string              `json:"status"`
	Featured         bool                `json:"featured"`
	MetaTitle        string              `json:"metaTitle"`
	MetaDescription  string              `json:"metaDescription"`
}

func (in *ProductInput) normalize() {
	if in.Slug == "" {
		in.Slug = in.Name
	}
	in.Slug = utils.Slugify(in.Slug)
	if in.Status == "" {
		in.Status = models.ProductStatusActive
	}
}

func (in *ProductInput) validate() error {
	v := validation.New()
	v.Required("name", in.Name)
	v.MaxLength("name", in.Name, validation.MaxNameLength)
	v.Required("sku", in.SKU)
	v.Check(in.Slug != "", "slug", "must contain at least one letter or digit")
	v.NonNegativeAmount("price", in.Price)
	if in.SalePrice.Valid {
		v.NonNegativeAmount("salePrice", in.SalePrice.Decimal)
	}
	v.Check(in.StockQuantity >= 0, "stockQuantity", "must not be negative")
	v.MaxLength("description", in.Description, validation.MaxDescriptionLength)
	v.OneOf("status", in.Status, models.ProductStatusActive, models.ProductStatusInactive, models.ProductStatusDraft)
	if in.StockStatus != "" {
		v.OneOf("stockStatus", in.StockStatus, models.StockInStock, models.StockOutOfStock, models.StockBackorder)
	}
	if err := v.Err(); err != nil {
		return err
	}
	if in.SalePrice.Valid && in.SalePrice.Decimal.GreaterThan(in.Price) {
		return ErrSalePriceTooHigh
	}
	return nil
}

func (in *ProductInput) apply(p *models.Product) {
	p.Name = in.Name
	p.Slug = in.Slug
	p.SKU = in.SKU
	p.Description = in.Description
	p.ShortDescription = in.ShortDescription
	p.CategoryID = in.CategoryID
	p.Brand = in.Brand
	p.Price = in.Price.Round(2)
	p.SalePrice = in.SalePrice
	p.StockQuantity = in.StockQuantity
	p.StockStatus = models.StockStatusFor(in.StockQuantity, in.StockStatus)
	p.Weight = in.Weight
	p.Dimensions = in.Dimensions
	p.Status = in.Status
	p.Featured = in.Featured
	p.MetaTitle = in.MetaTitle
	p.MetaDescription = in.MetaDescription
}

type CategoryInput struct {
	Name        string `json:"name"`
	Slug        string `json:"slug"`
	Description string `json:"description"`
	ParentID    *uint  `json:"parentId"`
	IsActive    *bool  `json:"isActive"`
}

type Service interface {
	CreateProduct(ctx context.Context, in ProductInput) (*models.Product, error)
	UpdateProduct(ctx context.Context, id uint, in ProductInput) (*models.Product, error)
	DeleteProduct(ctx context.Context, id uint) error
	GetProduct(ctx context.Context, id uint) (*models.Product, error)
	ListProducts(ctx context.Context, f repositories.ProductFilter) ([]models.Product, int64, error)

	CreateCategory(ctx context.Context, in CategoryInput) (*models.Category, error)
	ListCategories(ctx context.Context, activeOnly bool) ([]models.Category, error)

	AddImages(ctx context.Context, productID uint, files []ImageFile) ([]models.ProductImage, error)
	ListImages(ctx context.Context, productID uint) ([]models.ProductImage, error)
	SetPrimaryImage(ctx context.Context, productID, imageID uint) error
	ReorderImages(ctx context.Context, productID uint, order []ImageOrder) error
	DeleteImage(ctx context.Context, productID, imageID uint) error

	SetAttributes(ctx context.Context, productID uint, attrs map[string][]string) ([]models.ProductAttribute, error)
	AddVariant(ctx context.Context, productID uint, in VariantInput) (*models.ProductVariant, error)
	DeleteVariant(ctx context.Context, productID, variantID uint) error

	Export(ctx context.Context, w io.Writer) error
	Import(ctx context.Context, r io.ReaderAt, size int64) (*ImportResult, error)
}

type service struct {
	store  *repositories.Store
	assets storage.AssetStore
	cache  cache.Cache
	ttl    time.Duration
	log    *zap.Logger
}

// NewService wires the catalog. A nil cache disables product caching.
func NewService(store *repositories.Store, assets storage.AssetStore, c cache.Cache, productTTL time.Duration, log *zap.Logger) Service {
	if store == nil {
		panic("catalog: store is required")
	}
	return &service{store: store, assets: assets, cache: c, ttl: productTTL, log: log}
}

func productKey(id uint) string {
	return cache.GenerateKey(cache.EntityProduct, cache.KeyID, id)
}

func (s *service) invalidate(ctx context.Context, id uint) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Delete(context.WithoutCancel(ctx), productKey(id)); err != nil {
		s.log.Warn("product cache invalidation failed", zap.Uint("product_id", id), zap.Error(err))
	}
}

func (s *service) CreateProduct(ctx context.Context, in ProductInput) (*models.Product, error) {
	in.normalize()
	if err := in.validate(); err != nil {
		return nil, err
	}

	p := &models.Product{}
	err := s.store.WithTx(ctx, func(tx *repositories.Store) error {
		if err := checkCategory(ctx, tx, in.CategoryID); err != nil {
			return err
		}
		if err := checkUnique(ctx, tx, in.SKU, in.Slug, 0); err != nil {
			return err
		}
		in.apply(p)
		return tx.Products.Create(ctx, p)
	})
	if err != nil {
		return nil, mapWriteErr(err)
	}
	return s.GetProduct(ctx, p.ID)
}

func (s *service) UpdateProduct(ctx context.Context, id uint, in ProductInput) (*models.Product, error) {
	in.normalize()
	if err := in.validate(); err != nil {
		return nil, err
	}

	err := s.store.WithTx(ctx, func(tx *repositories.Store) error {
		p, err := tx.Products.LockByID(ctx, id)
		if err != nil {
			return err
		}
		if p == nil {
			return ErrProductNotFound
		}
		if err := checkCategory(ctx, tx, in.CategoryID); err != nil {
			return err
		}
		if err := checkUnique(ctx, tx, in.SKU, in.Slug, id); err != nil {
			return err
		}
		if in.StockStatus == "" {
			in.StockStatus = p.StockStatus
		}
		in.apply(p)
		return tx.Products.Save(ctx, p)
	})
	if err != nil {
		return nil, mapWriteErr(err)
	}
	s.invalidate(ctx, id)
	return s.GetProduct(ctx, id)
}

// DeleteProduct removes the product and, through the schema's cascades, its
// images, attributes, variants and cart lines. Image assets are removed
// after commit.
func (s *service) DeleteProduct(ctx context.Context, id uint) error {
	var images []models.ProductImage
	err := s.store.WithTx(ctx, func(tx *repositories.Store) error {
		p, err := tx.Products.LockByID(ctx, id)
		if err != nil {
			return err
		}
		if p == nil {
			return ErrProductNotFound
		}
		if images, err = tx.Images.ListByProduct(ctx, id); err != nil {
			return err
		}
		_, err = tx.Products.Delete(ctx, id)
		return err
	})
	if err != nil {
		return mapWriteErr(err)
	}

	s.invalidate(ctx, id)
	ids := make([]string, 0, len(images))
	for _, img := range images {
		ids = append(ids, img.PublicID)
	}
	s.removeAssets(ctx, ids)
	return nil
}

// GetProduct reads through the product cache.
func (s *service) GetProduct(ctx context.Context, id uint) (*models.Product, error) {
	key := productKey(id)
	if s.cache != nil {
		var cached models.Product
		hit, err := s.cache.Get(ctx, key, &cached)
		if err != nil {
			s.log.Warn("product cache read failed", zap.Uint("product_id", id), zap.Error(err))
		}
		if hit {
			return &cached, nil
		}
	}

	p, err := s.store.Products.GetByID(ctx, id)
	if err != nil {
		return nil, apperrors.Internal(err)
	}
	if p == nil {
		return nil, ErrProductNotFound
	}

	if s.cache != nil {
		if err := s.cache.SetWithTTL(ctx, key, p, s.ttl); err != nil {
			s.log.Warn("product cache write failed", zap.Uint("product_id", id), zap.Error(err))
		}
	}
	return p, nil
}

func (s *service) ListProducts(ctx context.Context, f repositories.ProductFilter) ([]models.Product, int64, error) {
	out, total, err := s.store.Products.List(ctx, f)
	if err != nil {
		return nil, 0, apperrors.Internal(err)
	}
	return out, total, nil
}

func (s *service) CreateCategory(ctx context.Context, in CategoryInput) (*models.Category, error) {
	if in.Slug == "" {
		in.Slug = in.Name
	}
	in.Slug = utils.Slugify(in.Slug)

	v := validation.New()
	v.Required("name", in.Name)
	v.MaxLength("name", in.Name, validation.MaxNameLength)
	v.Check(in.Slug != "", "slug", "must contain at least one letter or digit")
	if err := v.Err(); err != nil {
		return nil, err
	}

	if in.ParentID != nil {
		parent, err := s.store.Categories.GetByID(ctx, *in.ParentID)
		if err != nil {
			return nil, apperrors.Internal(err)
		}
		if parent == nil {
			return nil, ErrCategoryNotFound
		}
	}

	c := &models.Category{
		Name:        in.Name,
		Slug:        in.Slug,
		Description: in.Description,
		ParentID:    in.ParentID,
		IsActive:    in.IsActive == nil || *in.IsActive,
	}
	if err := s.store.Categories.Create(ctx, c); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrDuplicateCategory
		}
		return nil, apperrors.Internal(err)
	}
	return c, nil
}

func (s *service) ListCategories(ctx context.Context, activeOnly bool) ([]models.Category, error) {
	out, err := s.store.Categories.List(ctx, activeOnly)
	if err != nil {
		return nil, apperrors.Internal(err)
	}
	return out, nil
}

func checkCategory(ctx context.Context, tx *repositories.Store, id *uint) error {
	if id == nil {
		return nil
	}
	c, err := tx.Categories.GetByID(ctx, *id)
	if err != nil {
		return err
	}
	if c == nil {
		return ErrCategoryNotFound
	}
	return nil
}

func checkUnique(ctx context.Context, tx *repositories.Store, sku, slug string, exceptID uint) error {
	skuTaken, slugTaken, err := tx.Products.SKUOrSlugTaken(ctx, sku, slug, exceptID)
	if err != nil {
		return err
	}
	if skuTaken {
		return ErrDuplicateSKU
	}
	if slugTaken {
		return ErrDuplicateSlug
	}
	return nil
}

// mapWriteErr turns constraint violations that slipped past the pre-checks
// into conflicts.
func mapWriteErr(err error) error {
	switch {
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return ErrDuplicateSKU.WithMessage("a product with this sku or slug already exists")
	case errors.Is(err, gorm.ErrForeignKeyViolated):
		return ErrProductInUse
	}
	return apperrors.Internal(err)
}

func (s *service) removeAssets(ctx context.Context, publicIDs []string) {
	if s.assets == nil {
		return
	}
	ctx = context.WithoutCancel(ctx)
	for _, id := range publicIDs {
		if err := s.assets.Delete(ctx, id); err != nil {
			s.log.Warn("product asset delete failed", zap.String("public_id", id), zap.Error(err))
		}
	}
}
