package repositories

import (
	"context"
	"errors"

	"storeadmin/internal/models"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ReturnFilter struct {
	Page
	Status     string
	CustomerID *uint
	Search     string
	Returned   DateRange
}

type ReturnStats struct {
	Total         int64                `json:"total"`
	ByStatus      []models.CountBucket `json:"byStatus"`
	TotalRefunded decimal.Decimal      `json:"totalRefunded"`
	LastSevenDays int64                `json:"returnsLast7Days"`
}

type ReturnRepo interface {
	Create(ctx context.Context, ro *models.ReturnOrder) error
	GetByID(ctx context.Context, id uint) (*models.ReturnOrder, error)
	LockByID(ctx context.Context, id uint) (*models.ReturnOrder, error)
	UpdateFields(ctx context.Context, id uint, fields map[string]any) error
	List(ctx context.Context, f ReturnFilter) ([]models.ReturnOrder, int64, error)
	Stats(ctx context.Context) (*ReturnStats, error)
}

type returnRepo struct{ db *gorm.DB }

func NewReturnRepo(db *gorm.DB) ReturnRepo { return &returnRepo{db: db} }

func (r *returnRepo) Create(ctx context.Context, ro *models.ReturnOrder) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(ro).Error
}

func (r *returnRepo) GetByID(ctx context.Context, id uint) (*models.ReturnOrder, error) {
	var ro models.ReturnOrder
	err := r.db.WithContext(ctx).Preload("Order").Preload("Customer").Preload("Product").First(&ro, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &ro, err
}

func (r *returnRepo) LockByID(ctx context.Context, id uint) (*models.ReturnOrder, error) {
	var ro models.ReturnOrder
	err := r.db.WithContext(ctx).Clauses(clause.Locking{Strength: "UPDATE"}).First(&ro, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &ro, err
}

func (r *returnRepo) UpdateFields(ctx context.Context, id uint, fields map[string]any) error {
	return r.db.WithContext(ctx).Model(&models.ReturnOrder{}).Where("id = ?", id).Updates(fields).Error
}

func (r *returnRepo) List(ctx context.Context, f ReturnFilter) ([]models.ReturnOrder, int64, error) {
	q := r.db.WithContext(ctx).Model(&models.ReturnOrder{})
	if f.Status != "" {
		q = q.Where("return_orders.status = ?", f.Status)
	}
	if f.CustomerID != nil {
		q = q.Where("return_orders.customer_id = ?", *f.CustomerID)
	}
	if f.Search != "" {
		s := like(f.Search)
		q = q.Joins("JOIN users u ON u.id = return_orders.customer_id").
			Joins("JOIN orders o ON o.id = return_orders.order_id").
			Where(`return_orders.return_id ILIKE ? OR o.order_number ILIKE ? OR u.full_name ILIKE ?
				OR return_orders.tracking_number ILIKE ?`, s, s, s, s)
	}
	q = f.Returned.apply(q, "return_orders.return_date")

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var out []models.ReturnOrder
	q = q.Preload("Order").Preload("Customer").Preload("Product").Order("return_orders.return_date DESC")
	err := f.Page.apply(q).Find(&out).Error
	return out, total, err
}

func (r *returnRepo) Stats(ctx context.Context) (*ReturnStats, error) {
	st := &ReturnStats{}
	var agg struct {
		Total     int64
		Refunded  decimal.Decimal
		LastSeven int64
	}
	if err := r.db.WithContext(ctx).Raw(`
SELECT
	COUNT(*) AS total,
	COALESCE(SUM(refund_amount) FILTER (WHERE status = 'Returned'), 0) AS refunded,
	COUNT(*) FILTER (WHERE return_date >= now() - interval '7 days')  AS last_seven
FROM return_orders`).Scan(&agg).Error; err != nil {
		return nil, err
	}
	st.Total = agg.Total
	st.TotalRefunded = agg.Refunded
	st.LastSevenDays = agg.LastSeven

	var err error
	if st.ByStatus, err = countBy(ctx, r.db, &models.ReturnOrder{}, "status"); err != nil {
		return nil, err
	}
	return st, nil
}
