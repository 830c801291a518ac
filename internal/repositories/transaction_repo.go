package repositories

import (
	"context"
	"errors"

	"storeadmin/internal/models"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type TransactionFilter struct {
	Page
	CustomerID      *uint
	Status          string
	TransactionType string
	PaymentMethod   string
	Search          string
	Created         DateRange
}

type MethodTotal struct {
	Key    string          `json:"key"`
	Count  int64           `json:"count"`
	Amount decimal.Decimal `json:"amount"`
}

type TransactionStats struct {
	Total           int64                `json:"total"`
	ByStatus        []models.CountBucket `json:"byStatus"`
	TotalRevenue    decimal.Decimal      `json:"totalRevenue"`
	TotalRefunds    decimal.Decimal      `json:"totalRefunds"`
	AverageAmount   decimal.Decimal      `json:"averageAmount"`
	ByPaymentMethod []MethodTotal        `json:"byPaymentMethod"`
	ByType          []MethodTotal        `json:"byType"`
}

type TransactionRepo interface {
	Create(ctx context.Context, t *models.Transaction) error
	GetByID(ctx context.Context, id uint) (*models.Transaction, error)
	GetByTransactionID(ctx context.Context, txnID string) (*models.Transaction, error)
	LockByID(ctx context.Context, id uint) (*models.Transaction, error)
	LockByTransactionID(ctx context.Context, txnID string) (*models.Transaction, error)
	UpdateFields(ctx context.Context, id uint, fields map[string]any) error
	// UpdateColumns writes the named columns from t, running serializers.
	UpdateColumns(ctx context.Context, t *models.Transaction, columns ...string) error
	List(ctx context.Context, f TransactionFilter) ([]models.Transaction, int64, error)
	Stats(ctx context.Context) (*TransactionStats, error)
}

type transactionRepo struct{ db *gorm.DB }

func NewTransactionRepo(db *gorm.DB) TransactionRepo { return &transactionRepo{db: db} }

func (r *transactionRepo) Create(ctx context.Context, t *models.Transaction) error {
	return r.db.WithContext(ctx).Omit("Customer", "Order").Create(t).Error
}

func (r *transactionRepo) GetByID(ctx context.Context, id uint) (*models.Transaction, error) {
	var t models.Transaction
	err := r.db.WithContext(ctx).Preload("Customer").Preload("Order").First(&t, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &t, err
}

func (r *transactionRepo) GetByTransactionID(ctx context.Context, txnID string) (*models.Transaction, error) {
	var t models.Transaction
	err := r.db.WithContext(ctx).First(&t, "transaction_id = ?", txnID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &t, err
}

func (r *transactionRepo) LockByID(ctx context.Context, id uint) (*models.Transaction, error) {
	var t models.Transaction
	err := r.db.WithContext(ctx).Clauses(clause.Locking{Strength: "UPDATE"}).First(&t, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &t, err
}

func (r *transactionRepo) LockByTransactionID(ctx context.Context, txnID string) (*models.Transaction, error) {
	var t models.Transaction
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&t, "transaction_id = ?", txnID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &t, err
}

func (r *transactionRepo) UpdateFields(ctx context.Context, id uint, fields map[string]any) error {
	return r.db.WithContext(ctx).Model(&models.Transaction{}).Where("id = ?", id).Updates(fields).Error
}

func (r *transactionRepo) UpdateColumns(ctx context.Context, t *models.Transaction, columns ...string) error {
	return r.db.WithContext(ctx).Model(t).Select(columns).Updates(t).Error
}

func (r *transactionRepo) List(ctx context.Context, f TransactionFilter) ([]models.Transaction, int64, error) {
	q := r.db.WithContext(ctx).Model(&models.Transaction{})
	if f.CustomerID != nil {
		q = q.Where("transactions.customer_id = ?", *f.CustomerID)
	}
	if f.Status != "" {
		q = q.Where("transactions.status = ?", f.Status)
	}
	if f.TransactionType != "" {
		q = q.Where("transactions.transaction_type = ?", f.TransactionType)
	}
	if f.PaymentMethod != "" {
		q = q.Where("transactions.payment_method = ?", f.PaymentMethod)
	}
	if f.Search != "" {
		s := like(f.Search)
		q = q.Joins("JOIN users u ON u.id = transactions.customer_id").
			Where(`transactions.transaction_id ILIKE ? OR transactions.gateway_transaction_id ILIKE ?
				OR u.full_name ILIKE ? OR u.email ILIKE ?`, s, s, s, s)
	}
	q = f.Created.apply(q, "transactions.created_at")

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var out []models.Transaction
	q = q.Preload("Customer").Order("transactions.created_at DESC")
	err := f.Page.apply(q).Find(&out).Error
	return out, total, err
}

func (r *transactionRepo) Stats(ctx context.Context) (*TransactionStats, error) {
	db := r.db.WithContext(ctx)
	st := &TransactionStats{}

	var agg struct {
		Total   int64
		Revenue decimal.Decimal
		Refunds decimal.Decimal
		Average decimal.Decimal
	}
	if err := db.Raw(`
SELECT
	COUNT(*) AS total,
	COALESCE(SUM(amount) FILTER (WHERE transaction_type = 'payment' AND status IN ('completed','refunded')), 0) AS revenue,
	COALESCE(SUM(amount) FILTER (WHERE transaction_type = 'refund' AND status = 'completed'), 0)              AS refunds,
	COALESCE(AVG(amount), 0)::numeric(12,2) AS average
FROM transactions`).Scan(&agg).Error; err != nil {
		return nil, err
	}
	st.Total = agg.Total
	st.TotalRevenue = agg.Revenue
	st.TotalRefunds = agg.Refunds
	st.AverageAmount = agg.Average

	var err error
	if st.ByStatus, err = countBy(ctx, r.db, &models.Transaction{}, "status"); err != nil {
		return nil, err
	}
	if err := db.Model(&models.Transaction{}).
		Select("COALESCE(payment_method, '') AS key, COUNT(*) AS count, SUM(amount) AS amount").
		Group("payment_method").Order("count DESC").
		Scan(&st.ByPaymentMethod).Error; err != nil {
		return nil, err
	}
	if err := db.Model(&models.Transaction{}).
		Select("transaction_type AS key, COUNT(*) AS count, SUM(amount) AS amount").
		Group("transaction_type").Order("count DESC").
		Scan(&st.ByType).Error; err != nil {
		return nil, err
	}
	return st, nil
}
