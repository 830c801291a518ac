package repositories

import (
	"context"
	"errors"

	"storeadmin/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type BlogFilter struct {
	Page
	Status   string
	AuthorID *uint
	Tag      string
	Search   string
}

type BlogStats struct {
	Total      int64                `json:"total"`
	ByStatus   []models.CountBucket `json:"byStatus"`
	TotalViews int64                `json:"totalViews"`
}

type BlogRepo interface {
	Create(ctx context.Context, b *models.Blog) error
	GetByID(ctx context.Context, id uint) (*models.Blog, error)
	GetBySlug(ctx context.Context, slug string) (*models.Blog, error)
	Save(ctx context.Context, b *models.Blog) error
	Delete(ctx context.Context, id uint) (bool, error)
	SlugTaken(ctx context.Context, slug string, exceptID uint) (bool, error)
	IncrementViews(ctx context.Context, id uint) error
	List(ctx context.Context, f BlogFilter) ([]models.Blog, int64, error)
	Stats(ctx context.Context) (*BlogStats, error)
}

type blogRepo struct{ db *gorm.DB }

func NewBlogRepo(db *gorm.DB) BlogRepo { return &blogRepo{db: db} }

func (r *blogRepo) Create(ctx context.Context, b *models.Blog) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(b).Error
}

func (r *blogRepo) GetByID(ctx context.Context, id uint) (*models.Blog, error) {
	var b models.Blog
	err := r.db.WithContext(ctx).Preload("Author").First(&b, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &b, err
}

func (r *blogRepo) GetBySlug(ctx context.Context, slug string) (*models.Blog, error) {
	var b models.Blog
	err := r.db.WithContext(ctx).Preload("Author").First(&b, "slug = ?", slug).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &b, err
}

func (r *blogRepo) Save(ctx context.Context, b *models.Blog) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Save(b).Error
}

func (r *blogRepo) Delete(ctx context.Context, id uint) (bool, error) {
	tx := r.db.WithContext(ctx).Delete(&models.Blog{}, id)
	return tx.RowsAffected > 0, tx.Error
}

func (r *blogRepo) SlugTaken(ctx context.Context, slug string, exceptID uint) (bool, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&models.Blog{}).
		Where("slug = ? AND id <> ?", slug, exceptID).
		Count(&n).Error
	return n > 0, err
}

func (r *blogRepo) IncrementViews(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Model(&models.Blog{}).
		Where("id = ?", id).
		UpdateColumn("view_count", gorm.Expr("view_count + 1")).Error
}

func (r *blogRepo) List(ctx context.Context, f BlogFilter) ([]models.Blog, int64, error) {
	q := r.db.WithContext(ctx).Model(&models.Blog{})
	if f.Status != "" {
		q = q.Where("status = ?", f.Status)
	}
	if f.AuthorID != nil {
		q = q.Where("author_id = ?", *f.AuthorID)
	}
	if f.Tag != "" {
		q = q.Where("? = ANY(tags)", f.Tag)
	}
	if f.Search != "" {
		s := like(f.Search)
		q = q.Where("title ILIKE ? OR excerpt ILIKE ?", s, s)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var out []models.Blog
	q = q.Preload("Author").Order("COALESCE(published_at, created_at) DESC")
	err := f.Page.apply(q).Find(&out).Error
	return out, total, err
}

func (r *blogRepo) Stats(ctx context.Context) (*BlogStats, error) {
	st := &BlogStats{}
	var agg struct {
		Total int64
		Views int64
	}
	if err := r.db.WithContext(ctx).
		Raw(`SELECT COUNT(*) AS total, COALESCE(SUM(view_count), 0) AS views FROM blogs`).
		Scan(&agg).Error; err != nil {
		return nil, err
	}
	st.Total = agg.Total
	st.TotalViews = agg.Views

	var err error
	if st.ByStatus, err = countBy(ctx, r.db, &models.Blog{}, "status"); err != nil {
		return nil, err
	}
	return st, nil
}
