package repositories

import (
	"context"
	"errors"

	"storeadmin/internal/models"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type OrderFilter struct {
	Page
	CustomerID *uint
	Status     string
	Search     string
	Created    DateRange
}

type OrderStats struct {
	TotalOrders       int64                `json:"totalOrders"`
	ByStatus          []models.CountBucket `json:"byStatus"`
	TotalRevenue      decimal.Decimal      `json:"totalRevenue"`
	AverageOrderValue decimal.Decimal      `json:"averageOrderValue"`
	LastSevenDays     int64                `json:"ordersLast7Days"`
}

type OrderRepo interface {
	// Create inserts the header and its items.
	Create(ctx context.Context, o *models.Order) error
	GetByID(ctx context.Context, id uint) (*models.Order, error)
	LockByID(ctx context.Context, id uint) (*models.Order, error)
	UpdateFields(ctx context.Context, id uint, fields map[string]any) error
	List(ctx context.Context, f OrderFilter) ([]models.Order, int64, error)
	Stats(ctx context.Context) (*OrderStats, error)
}

type orderRepo struct{ db *gorm.DB }

func NewOrderRepo(db *gorm.DB) OrderRepo { return &orderRepo{db: db} }

func (r *orderRepo) Create(ctx context.Context, o *models.Order) error {
	return r.db.WithContext(ctx).Omit("Customer").Create(o).Error
}

func (r *orderRepo) GetByID(ctx context.Context, id uint) (*models.Order, error) {
	var o models.Order
	err := r.db.WithContext(ctx).
		Preload("Customer").
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("id ASC") }).
		First(&o, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &o, err
}

func (r *orderRepo) LockByID(ctx context.Context, id uint) (*models.Order, error) {
	var o models.Order
	err := r.db.WithContext(ctx).Clauses(clause.Locking{Strength: "UPDATE"}).First(&o, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	err = r.db.WithContext(ctx).Where("order_id = ?", id).Order("id ASC").Find(&o.Items).Error
	return &o, err
}

func (r *orderRepo) UpdateFields(ctx context.Context, id uint, fields map[string]any) error {
	return r.db.WithContext(ctx).Model(&models.Order{}).Where("id = ?", id).Updates(fields).Error
}

func (r *orderRepo) List(ctx context.Context, f OrderFilter) ([]models.Order, int64, error) {
	q := r.db.WithContext(ctx).Model(&models.Order{})
	if f.CustomerID != nil {
		q = q.Where("orders.customer_id = ?", *f.CustomerID)
	}
	if f.Status != "" {
		q = q.Where("orders.status = ?", f.Status)
	}
	if f.Search != "" {
		s := like(f.Search)
		q = q.Joins("JOIN users u ON u.id = orders.customer_id").
			Where("orders.order_number ILIKE ? OR u.full_name ILIKE ? OR u.email ILIKE ?", s, s, s)
	}
	q = f.Created.apply(q, "orders.order_date")

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var orders []models.Order
	q = q.Preload("Customer").Preload("Items").Order("orders.created_at DESC")
	err := f.Page.apply(q).Find(&orders).Error
	return orders, total, err
}

func (r *orderRepo) Stats(ctx context.Context) (*OrderStats, error) {
	db := r.db.WithContext(ctx)
	st := &OrderStats{}

	var agg struct {
		Total     int64
		Revenue   decimal.Decimal
		Average   decimal.Decimal
		LastSeven int64
	}
	if err := db.Raw(`
SELECT
	COUNT(*) AS total,
	COALESCE(SUM(total_amount) FILTER (WHERE status = 'delivered'), 0) AS revenue,
	COALESCE(AVG(total_amount), 0)::numeric(12,2)                      AS average,
	COUNT(*) FILTER (WHERE order_date >= now() - interval '7 days')    AS last_seven
FROM orders`).Scan(&agg).Error; err != nil {
		return nil, err
	}
	st.TotalOrders = agg.Total
	st.TotalRevenue = agg.Revenue
	st.AverageOrderValue = agg.Average
	st.LastSevenDays = agg.LastSeven

	byStatus, err := countBy(ctx, r.db, &models.Order{}, "status")
	if err != nil {
		return nil, err
	}
	st.ByStatus = byStatus
	return st, nil
}
