package repositories

import (
	"context"
	"errors"

	"storeadmin/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ReviewFilter struct {
	Page
	Status    string
	ProductID *uint
	Rating    int
	Search    string
}

type ReviewStats struct {
	Total         int64                `json:"total"`
	ByStatus      []models.CountBucket `json:"byStatus"`
	ByRating      []models.CountBucket `json:"byRating"`
	AverageRating float64              `json:"averageRating"`
}

type ReviewRepo interface {
	Create(ctx context.Context, rv *models.Review) error
	GetByID(ctx context.Context, id uint) (*models.Review, error)
	UpdateFields(ctx context.Context, id uint, fields map[string]any) error
	Delete(ctx context.Context, id uint) (bool, error)
	List(ctx context.Context, f ReviewFilter) ([]models.Review, int64, error)
	Stats(ctx context.Context) (*ReviewStats, error)
}

type reviewRepo struct{ db *gorm.DB }

func NewReviewRepo(db *gorm.DB) ReviewRepo { return &reviewRepo{db: db} }

func (r *reviewRepo) Create(ctx context.Context, rv *models.Review) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(rv).Error
}

func (r *reviewRepo) GetByID(ctx context.Context, id uint) (*models.Review, error) {
	var rv models.Review
	err := r.db.WithContext(ctx).Preload("User").Preload("Product").First(&rv, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &rv, err
}

func (r *reviewRepo) UpdateFields(ctx context.Context, id uint, fields map[string]any) error {
	return r.db.WithContext(ctx).Model(&models.Review{}).Where("id = ?", id).Updates(fields).Error
}

func (r *reviewRepo) Delete(ctx context.Context, id uint) (bool, error) {
	tx := r.db.WithContext(ctx).Delete(&models.Review{}, id)
	return tx.RowsAffected > 0, tx.Error
}

func (r *reviewRepo) List(ctx context.Context, f ReviewFilter) ([]models.Review, int64, error) {
	q := r.db.WithContext(ctx).Model(&models.Review{})
	if f.Status != "" {
		q = q.Where("reviews.status = ?", f.Status)
	}
	if f.ProductID != nil {
		q = q.Where("reviews.product_id = ?", *f.ProductID)
	}
	if f.Rating > 0 {
		q = q.Where("reviews.rating = ?", f.Rating)
	}
	if f.Search != "" {
		s := like(f.Search)
		q = q.Joins("JOIN users u ON u.id = reviews.user_id").
			Joins("JOIN products p ON p.id = reviews.product_id").
			Where("reviews.title ILIKE ? OR reviews.comment ILIKE ? OR u.full_name ILIKE ? OR p.name ILIKE ?", s, s, s, s)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var out []models.Review
	q = q.Preload("User").Preload("Product").Order("reviews.created_at DESC")
	err := f.Page.apply(q).Find(&out).Error
	return out, total, err
}

func (r *reviewRepo) Stats(ctx context.Context) (*ReviewStats, error) {
	st := &ReviewStats{}
	db := r.db.WithContext(ctx)

	var agg struct {
		Total   int64
		Average float64
	}
	if err := db.Raw(`SELECT COUNT(*) AS total, COALESCE(ROUND(AVG(rating), 2), 0)::float8 AS average FROM reviews`).
		Scan(&agg).Error; err != nil {
		return nil, err
	}
	st.Total = agg.Total
	st.AverageRating = agg.Average

	var err error
	if st.ByStatus, err = countBy(ctx, r.db, &models.Review{}, "status"); err != nil {
		return nil, err
	}
	if err := db.Model(&models.Review{}).
		Select("rating::text AS key, COUNT(*) AS count").
		Group("rating").Order("rating DESC").
		Scan(&st.ByRating).Error; err != nil {
		return nil, err
	}
	return st, nil
}
