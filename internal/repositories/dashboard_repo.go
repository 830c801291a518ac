package repositories

import (
	"context"

	"storeadmin/internal/models"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type DashboardRepo interface {
	Totals(ctx context.Context) (customers, activeProducts, orders int64, revenue decimal.Decimal, err error)
	RecentOrders(ctx context.Context, n int) ([]models.Order, error)
	MonthlyRevenue(ctx context.Context, months int) ([]models.MonthlyRevenue, error)
	TopProducts(ctx context.Context, n int) ([]models.TopProduct, error)
	OrderStatusDistribution(ctx context.Context) ([]models.CountBucket, error)
	CustomerGrowth(ctx context.Context, months int) ([]models.MonthlyCount, error)
}

type dashboardRepo struct{ db *gorm.DB }

func NewDashboardRepo(db *gorm.DB) DashboardRepo { return &dashboardRepo{db: db} }

func (r *dashboardRepo) Totals(ctx context.Context) (int64, int64, int64, decimal.Decimal, error) {
	var row struct {
		Customers      int64
		ActiveProducts int64
		Orders         int64
		Revenue        decimal.Decimal
	}
	err := r.db.WithContext(ctx).Raw(`
SELECT
	(SELECT COUNT(*) FROM users WHERE role = 'customer')       AS customers,
	(SELECT COUNT(*) FROM products WHERE status = 'active')    AS active_products,
	(SELECT COUNT(*) FROM orders)                              AS orders,
	(SELECT COALESCE(SUM(total_amount), 0) FROM orders WHERE status = 'delivered') AS revenue`).
		Scan(&row).Error
	return row.Customers, row.ActiveProducts, row.Orders, row.Revenue, err
}

func (r *dashboardRepo) RecentOrders(ctx context.Context, n int) ([]models.Order, error) {
	var out []models.Order
	err := r.db.WithContext(ctx).Preload("Customer").Order("created_at DESC").Limit(n).Find(&out).Error
	return out, err
}

func (r *dashboardRepo) MonthlyRevenue(ctx context.Context, months int) ([]models.MonthlyRevenue, error) {
	var out []models.MonthlyRevenue
	err := r.db.WithContext(ctx).Raw(`
SELECT
	to_char(date_trunc('month', order_date), 'YYYY-MM') AS month,
	COALESCE(SUM(total_amount), 0)                      AS revenue,
	COUNT(*)                                            AS orders
FROM orders
WHERE status = 'delivered'
  AND order_date >= date_trunc('month', now()) - make_interval(months => ?)
GROUP BY 1
ORDER BY 1`, months-1).Scan(&out).Error
	return out, err
}

func (r *dashboardRepo) TopProducts(ctx context.Context, n int) ([]models.TopProduct, error) {
	var out []models.TopProduct
	err := r.db.WithContext(ctx).Raw(`
SELECT
	oi.product_id      AS product_id,
	MAX(oi.product_name) AS product_name,
	SUM(oi.quantity)   AS quantity,
	SUM(oi.total_price) AS revenue
FROM order_items oi
JOIN orders o ON o.id = oi.order_id
WHERE o.status = 'delivered' AND oi.product_id IS NOT NULL
GROUP BY oi.product_id
ORDER BY quantity DESC
LIMIT ?`, n).Scan(&out).Error
	return out, err
}

func (r *dashboardRepo) OrderStatusDistribution(ctx context.Context) ([]models.CountBucket, error) {
	return countBy(ctx, r.db, &models.Order{}, "status")
}

func (r *dashboardRepo) CustomerGrowth(ctx context.Context, months int) ([]models.MonthlyCount, error) {
	var out []models.MonthlyCount
	err := r.db.WithContext(ctx).Raw(`
SELECT
	to_char(date_trunc('month', created_at), 'YYYY-MM') AS month,
	COUNT(*)                                            AS count
FROM users
WHERE role = 'customer'
  AND created_at >= date_trunc('month', now()) - make_interval(months => ?)
GROUP BY 1
ORDER BY 1`, months-1).Scan(&out).Error
	return out, err
}
