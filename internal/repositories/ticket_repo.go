package repositories

import (
	"context"
	"errors"

	"storeadmin/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type TicketFilter struct {
	Page
	Status     string
	Priority   string
	CustomerID *uint
	Search     string
}

type TicketStats struct {
	Total               int64                `json:"total"`
	ByStatus            []models.CountBucket `json:"byStatus"`
	ByPriority          []models.CountBucket `json:"byPriority"`
	AverageSatisfaction float64              `json:"averageSatisfaction"`
	Unassigned          int64                `json:"unassigned"`
}

type TicketRepo interface {
	Create(ctx context.Context, t *models.SupportTicket) error
	GetByID(ctx context.Context, id uint) (*models.SupportTicket, error)
	LockByID(ctx context.Context, id uint) (*models.SupportTicket, error)
	UpdateFields(ctx context.Context, id uint, fields map[string]any) error
	List(ctx context.Context, f TicketFilter) ([]models.SupportTicket, int64, error)
	Stats(ctx context.Context) (*TicketStats, error)
}

type ticketRepo struct{ db *gorm.DB }

func NewTicketRepo(db *gorm.DB) TicketRepo { return &ticketRepo{db: db} }

func (r *ticketRepo) Create(ctx context.Context, t *models.SupportTicket) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(t).Error
}

func (r *ticketRepo) GetByID(ctx context.Context, id uint) (*models.SupportTicket, error) {
	var t models.SupportTicket
	err := r.db.WithContext(ctx).Preload("Customer").Preload("Assignee").First(&t, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &t, err
}

func (r *ticketRepo) LockByID(ctx context.Context, id uint) (*models.SupportTicket, error) {
	var t models.SupportTicket
	err := r.db.WithContext(ctx).Clauses(clause.Locking{Strength: "UPDATE"}).First(&t, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &t, err
}

func (r *ticketRepo) UpdateFields(ctx context.Context, id uint, fields map[string]any) error {
	return r.db.WithContext(ctx).Model(&models.SupportTicket{}).Where("id = ?", id).Updates(fields).Error
}

func (r *ticketRepo) List(ctx context.Context, f TicketFilter) ([]models.SupportTicket, int64, error) {
	q := r.db.WithContext(ctx).Model(&models.SupportTicket{})
	if f.Status != "" {
		q = q.Where("support_tickets.status = ?", f.Status)
	}
	if f.Priority != "" {
		q = q.Where("support_tickets.priority = ?", f.Priority)
	}
	if f.CustomerID != nil {
		q = q.Where("support_tickets.customer_id = ?", *f.CustomerID)
	}
	if f.Search != "" {
		s := like(f.Search)
		q = q.Joins("JOIN users u ON u.id = support_tickets.customer_id").
			Where("support_tickets.ticket_number ILIKE ? OR support_tickets.subject ILIKE ? OR u.full_name ILIKE ? OR u.email ILIKE ?",
				s, s, s, s)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var out []models.SupportTicket
	q = q.Preload("Customer").Preload("Assignee").Order("support_tickets.created_at DESC")
	err := f.Page.apply(q).Find(&out).Error
	return out, total, err
}

func (r *ticketRepo) Stats(ctx context.Context) (*TicketStats, error) {
	st := &TicketStats{}
	var agg struct {
		Total      int64
		Average    float64
		Unassigned int64
	}
	if err := r.db.WithContext(ctx).Raw(`
SELECT
	COUNT(*) AS total,
	COALESCE(ROUND(AVG(satisfaction_rating), 2), 0)::float8 AS average,
	COUNT(*) FILTER (WHERE assigned_to IS NULL AND status IN ('open','in-progress')) AS unassigned
FROM support_tickets`).Scan(&agg).Error; err != nil {
		return nil, err
	}
	st.Total = agg.Total
	st.AverageSatisfaction = agg.Average
	st.Unassigned = agg.Unassigned

	var err error
	if st.ByStatus, err = countBy(ctx, r.db, &models.SupportTicket{}, "status"); err != nil {
		return nil, err
	}
	if st.ByPriority, err = countBy(ctx, r.db, &models.SupportTicket{}, "priority"); err != nil {
		return nil, err
	}
	return st, nil
}
