package repositories

import (
	"context"
	"errors"

	"storeadmin/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type UserFilter struct {
	Page
	Role   string
	Status string
	Search string
}

type CustomerStats struct {
	Total        int64 `json:"total"`
	Active       int64 `json:"active"`
	Inactive     int64 `json:"inactive"`
	Suspended    int64 `json:"suspended"`
	NewLast30    int64 `json:"newLast30Days"`
	WithOrders   int64 `json:"withOrders"`
	WithApproved int64 `json:"withAcceptedKyc"`
}

type UserRepo interface {
	Create(ctx context.Context, u *models.User) error
	GetByID(ctx context.Context, id uint) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	// LockByID takes a row lock on the user; callers use it to serialise
	// per-customer invariants such as default addresses.
	LockByID(ctx context.Context, id uint) (*models.User, error)
	UpdateFields(ctx context.Context, id uint, fields map[string]any) error
	IncrementTokenVersion(ctx context.Context, id uint) (int, error)
	List(ctx context.Context, f UserFilter) ([]models.User, int64, error)
	CustomerStats(ctx context.Context) (*CustomerStats, error)
}

type userRepo struct{ db *gorm.DB }

func NewUserRepo(db *gorm.DB) UserRepo { return &userRepo{db: db} }

func (r *userRepo) Create(ctx context.Context, u *models.User) error {
	return r.db.WithContext(ctx).Create(u).Error
}

func (r *userRepo) GetByID(ctx context.Context, id uint) (*models.User, error) {
	var u models.User
	err := r.db.WithContext(ctx).First(&u, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &u, err
}

func (r *userRepo) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	var u models.User
	err := r.db.WithContext(ctx).First(&u, "lower(email) = lower(?)", email).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &u, err
}

func (r *userRepo) LockByID(ctx context.Context, id uint) (*models.User, error) {
	var u models.User
	err := r.db.WithContext(ctx).Clauses(clause.Locking{Strength: "UPDATE"}).First(&u, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &u, err
}

func (r *userRepo) UpdateFields(ctx context.Context, id uint, fields map[string]any) error {
	return r.db.WithContext(ctx).Model(&models.User{}).Where("id = ?", id).Updates(fields).Error
}

func (r *userRepo) IncrementTokenVersion(ctx context.Context, id uint) (int, error) {
	var version int
	err := r.db.WithContext(ctx).Raw(`
UPDATE users SET token_version = token_version + 1, updated_at = now()
WHERE id = ?
RETURNING token_version`, id).Scan(&version).Error
	return version, err
}

func (r *userRepo) List(ctx context.Context, f UserFilter) ([]models.User, int64, error) {
	q := r.db.WithContext(ctx).Model(&models.User{})
	if f.Role != "" {
		q = q.Where("role = ?", f.Role)
	}
	if f.Status != "" {
		q = q.Where("status = ?", f.Status)
	}
	if f.Search != "" {
		s := like(f.Search)
		q = q.Where("full_name ILIKE ? OR email ILIKE ? OR phone ILIKE ?", s, s, s)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var users []models.User
	err := f.Page.apply(q.Order("created_at DESC")).Find(&users).Error
	return users, total, err
}

func (r *userRepo) CustomerStats(ctx context.Context) (*CustomerStats, error) {
	var st CustomerStats
	err := r.db.WithContext(ctx).Raw(`
SELECT
	COUNT(*)                                                         AS total,
	COUNT(*) FILTER (WHERE status = 'active')                        AS active,
	COUNT(*) FILTER (WHERE status = 'inactive')                      AS inactive,
	COUNT(*) FILTER (WHERE status = 'suspended')                     AS suspended,
	COUNT(*) FILTER (WHERE created_at >= now() - interval '30 days') AS new_last30,
	COUNT(*) FILTER (WHERE EXISTS (SELECT 1 FROM orders o WHERE o.customer_id = users.id))  AS with_orders,
	COUNT(*) FILTER (WHERE EXISTS (
		SELECT 1 FROM kyc_applications k WHERE k.user_id = users.id AND k.status = 'accepted')) AS with_approved
FROM users
WHERE role = 'customer'`).Scan(&st).Error
	return &st, err
}
