package repositories

import (
	"context"
	"errors"

	"storeadmin/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type KYCFilter struct {
	Page
	Status       string
	DocumentType string
	Search       string
}

type KYCStats struct {
	Total          int64                `json:"total"`
	ByStatus       []models.CountBucket `json:"byStatus"`
	ByDocumentType []models.CountBucket `json:"byDocumentType"`
	LastSevenDays  int64                `json:"submittedLast7Days"`
}

type KYCRepo interface {
	Create(ctx context.Context, k *models.KYCApplication) error
	GetByID(ctx context.Context, id uint) (*models.KYCApplication, error)
	LockByID(ctx context.Context, id uint) (*models.KYCApplication, error)
	// ActiveForUser returns the pending or accepted application of a user.
	ActiveForUser(ctx context.Context, userID uint) (*models.KYCApplication, error)
	LatestForUser(ctx context.Context, userID uint) (*models.KYCApplication, error)
	UpdateFields(ctx context.Context, id uint, fields map[string]any) error
	List(ctx context.Context, f KYCFilter) ([]models.KYCApplication, int64, error)
	Stats(ctx context.Context) (*KYCStats, error)
}

type kycRepo struct{ db *gorm.DB }

func NewKYCRepo(db *gorm.DB) KYCRepo { return &kycRepo{db: db} }

func (r *kycRepo) Create(ctx context.Context, k *models.KYCApplication) error {
	return r.db.WithContext(ctx).Omit("User").Create(k).Error
}

func (r *kycRepo) GetByID(ctx context.Context, id uint) (*models.KYCApplication, error) {
	var k models.KYCApplication
	err := r.db.WithContext(ctx).Preload("User").First(&k, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &k, err
}

func (r *kycRepo) LockByID(ctx context.Context, id uint) (*models.KYCApplication, error) {
	var k models.KYCApplication
	err := r.db.WithContext(ctx).Clauses(clause.Locking{Strength: "UPDATE"}).First(&k, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &k, err
}

func (r *kycRepo) ActiveForUser(ctx context.Context, userID uint) (*models.KYCApplication, error) {
	var k models.KYCApplication
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND status IN ?", userID, []string{models.KYCStatusPending, models.KYCStatusAccepted}).
		First(&k).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &k, err
}

func (r *kycRepo) LatestForUser(ctx context.Context, userID uint) (*models.KYCApplication, error) {
	var k models.KYCApplication
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("submitted_date DESC, id DESC").
		First(&k).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &k, err
}

func (r *kycRepo) UpdateFields(ctx context.Context, id uint, fields map[string]any) error {
	return r.db.WithContext(ctx).Model(&models.KYCApplication{}).Where("id = ?", id).Updates(fields).Error
}

func (r *kycRepo) List(ctx context.Context, f KYCFilter) ([]models.KYCApplication, int64, error) {
	q := r.db.WithContext(ctx).Model(&models.KYCApplication{})
	if f.Status != "" {
		q = q.Where("kyc_applications.status = ?", f.Status)
	}
	if f.DocumentType != "" {
		q = q.Where("kyc_applications.document_type = ?", f.DocumentType)
	}
	if f.Search != "" {
		s := like(f.Search)
		q = q.Joins("JOIN users u ON u.id = kyc_applications.user_id").
			Where("kyc_applications.application_id ILIKE ? OR u.full_name ILIKE ? OR u.email ILIKE ?", s, s, s)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var out []models.KYCApplication
	q = q.Preload("User").Order("kyc_applications.submitted_date DESC")
	err := f.Page.apply(q).Find(&out).Error
	return out, total, err
}

func (r *kycRepo) Stats(ctx context.Context) (*KYCStats, error) {
	st := &KYCStats{}
	db := r.db.WithContext(ctx)

	if err := db.Model(&models.KYCApplication{}).Count(&st.Total).Error; err != nil {
		return nil, err
	}
	if err := db.Model(&models.KYCApplication{}).
		Where("submitted_date >= now() - interval '7 days'").
		Count(&st.LastSevenDays).Error; err != nil {
		return nil, err
	}

	var err error
	if st.ByStatus, err = countBy(ctx, r.db, &models.KYCApplication{}, "status"); err != nil {
		return nil, err
	}
	if st.ByDocumentType, err = countBy(ctx, r.db, &models.KYCApplication{}, "document_type"); err != nil {
		return nil, err
	}
	return st, nil
}
