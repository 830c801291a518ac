package repositories

import (
	"context"
	"errors"

	"storeadmin/internal/models"

	"gorm.io/gorm"
)

type AddressFilter struct {
	Page
	AddressType string
	Search      string
}

type AddressStats struct {
	Total                int64 `json:"total"`
	Billing              int64 `json:"billing"`
	Shipping             int64 `json:"shipping"`
	Defaults             int64 `json:"defaults"`
	CustomersWithDefault int64 `json:"customersWithDefault"`
}

type AddressRepo interface {
	Create(ctx context.Context, a *models.CustomerAddress) error
	GetByID(ctx context.Context, id uint) (*models.CustomerAddress, error)
	Save(ctx context.Context, a *models.CustomerAddress) error
	Delete(ctx context.Context, id uint) (bool, error)
	// ClearDefault unsets isDefault on every address of the customer and type
	// except exceptID (0 clears all).
	ClearDefault(ctx context.Context, customerID uint, addressType string, exceptID uint) error
	MarkDefault(ctx context.Context, id uint) error
	ListByCustomer(ctx context.Context, customerID uint, addressType string) ([]models.CustomerAddress, error)
	List(ctx context.Context, f AddressFilter) ([]models.CustomerAddress, int64, error)
	Stats(ctx context.Context) (*AddressStats, error)
}

type addressRepo struct{ db *gorm.DB }

func NewAddressRepo(db *gorm.DB) AddressRepo { return &addressRepo{db: db} }

func (r *addressRepo) Create(ctx context.Context, a *models.CustomerAddress) error {
	return r.db.WithContext(ctx).Omit("Customer").Create(a).Error
}

func (r *addressRepo) GetByID(ctx context.Context, id uint) (*models.CustomerAddress, error) {
	var a models.CustomerAddress
	err := r.db.WithContext(ctx).First(&a, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &a, err
}

func (r *addressRepo) Save(ctx context.Context, a *models.CustomerAddress) error {
	return r.db.WithContext(ctx).Omit("Customer").Save(a).Error
}

func (r *addressRepo) Delete(ctx context.Context, id uint) (bool, error) {
	tx := r.db.WithContext(ctx).Delete(&models.CustomerAddress{}, id)
	return tx.RowsAffected > 0, tx.Error
}

func (r *addressRepo) ClearDefault(ctx context.Context, customerID uint, addressType string, exceptID uint) error {
	return r.db.WithContext(ctx).Model(&models.CustomerAddress{}).
		Where("customer_id = ? AND address_type = ? AND is_default AND id <> ?", customerID, addressType, exceptID).
		Update("is_default", false).Error
}

func (r *addressRepo) MarkDefault(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Model(&models.CustomerAddress{}).
		Where("id = ?", id).
		Update("is_default", true).Error
}

func (r *addressRepo) ListByCustomer(ctx context.Context, customerID uint, addressType string) ([]models.CustomerAddress, error) {
	q := r.db.WithContext(ctx).Where("customer_id = ?", customerID)
	if addressType != "" {
		q = q.Where("address_type = ?", addressType)
	}
	var out []models.CustomerAddress
	err := q.Order("is_default DESC, created_at DESC").Find(&out).Error
	return out, err
}

func (r *addressRepo) List(ctx context.Context, f AddressFilter) ([]models.CustomerAddress, int64, error) {
	q := r.db.WithContext(ctx).Model(&models.CustomerAddress{}).
		Joins("JOIN users u ON u.id = customer_addresses.customer_id")
	if f.AddressType != "" {
		q = q.Where("customer_addresses.address_type = ?", f.AddressType)
	}
	if f.Search != "" {
		s := like(f.Search)
		q = q.Where(`u.full_name ILIKE ? OR u.email ILIKE ? OR customer_addresses.city ILIKE ?
			OR customer_addresses.postal_code ILIKE ?`, s, s, s, s)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var out []models.CustomerAddress
	q = q.Preload("Customer").Order("customer_addresses.created_at DESC")
	err := f.Page.apply(q).Find(&out).Error
	return out, total, err
}

func (r *addressRepo) Stats(ctx context.Context) (*AddressStats, error) {
	var st AddressStats
	err := r.db.WithContext(ctx).Raw(`
SELECT
	COUNT(*)                                           AS total,
	COUNT(*) FILTER (WHERE address_type = 'billing')   AS billing,
	COUNT(*) FILTER (WHERE address_type = 'shipping')  AS shipping,
	COUNT(*) FILTER (WHERE is_default)                 AS defaults,
	COUNT(DISTINCT customer_id) FILTER (WHERE is_default) AS customers_with_default
FROM customer_addresses`).Scan(&st).Error
	return &st, err
}
