// Package support manages customer support tickets.
package support

import (
	"context"

	apperrors "storeadmin/internal/errors"
	"storeadmin/internal/models"
	"storeadmin/internal/repositories"
	"storeadmin/internal/utils"
	"storeadmin/internal/validation"

	"go.uber.org/zap"
)

type CreateInput struct {
	Subject     string `json:"subject"`
	Description string `json:"description"`
	Priority    string `json:"priority"`
}

// UpdateInput carries the admin-editable fields; nil leaves a field unchanged.
type UpdateInput struct {
	Status        *string `json:"status"`
	Priority      *string `json:"priority"`
	AssignedTo    *uint   `json:"assignedTo"`
	AdminResponse *string `json:"adminResponse"`
}

type Service interface {
	Create(ctx context.Context, customerID uint, in CreateInput) (*models.SupportTicket, error)
	Update(ctx context.Context, id uint, in UpdateInput) (*models.SupportTicket, error)
	Rate(ctx context.Context, customerID, id uint, rating int) (*models.SupportTicket, error)
	Get(ctx context.Context, id uint) (*models.SupportTicket, error)
	List(ctx context.Context, f repositories.TicketFilter) ([]models.SupportTicket, int64, error)
	Stats(ctx context.Context) (*repositories.TicketStats, error)
}

type service struct {
	store *repositories.Store
	log   *zap.Logger
}

func NewService(store *repositories.Store, log *zap.Logger) Service {
	if store == nil {
		panic("support: store is required")
	}
	return &service{store: store, log: log}
}

func (s *service) Create(ctx context.Context, customerID uint, in CreateInput) (*models.SupportTicket, error) {
	if in.Priority == "" {
		in.Priority = models.PriorityMedium
	}
	v := validation.New()
	v.Required("subject", in.Subject)
	v.MaxLength("subject", in.Subject, validation.MaxNameLength)
	v.Required("description", in.Description)
	v.MaxLength("description", in.Description, validation.MaxDescriptionLength)
	v.Check(models.IsPriority(in.Priority), "priority", "must be low, medium, high or urgent")
	if err := v.Err(); err != nil {
		return nil, err
	}

	u, err := s.store.Users.GetByID(ctx, customerID)
	if err != nil {
		return nil, apperrors.Internal(err)
	}
	if u == nil {
		return nil, ErrCustomerNotFound
	}

	t := &models.SupportTicket{
		TicketNumber: utils.NewReference(utils.PrefixTicket),
		CustomerID:   customerID,
		Subject:      in.Subject,
		Description:  in.Description,
		Status:       models.TicketStatusOpen,
		Priority:     in.Priority,
	}
	if err := s.store.Tickets.Create(ctx, t); err != nil {
		return nil, apperrors.Internal(err)
	}
	return t, nil
}

func (s *service) Update(ctx context.Context, id uint, in UpdateInput) (*models.SupportTicket, error) {
	v := validation.New()
	if in.Status != nil {
		v.Check(models.IsTicketStatus(*in.Status), "status", "must be open, in-progress, resolved or closed")
	}
	if in.Priority != nil {
		v.Check(models.IsPriority(*in.Priority), "priority", "must be low, medium, high or urgent")
	}
	if in.AdminResponse != nil {
		v.MaxLength("adminResponse", *in.AdminResponse, validation.MaxDescriptionLength)
	}
	if err := v.Err(); err != nil {
		return nil, err
	}

	err := s.store.WithTx(ctx, func(tx *repositories.Store) error {
		t, err := tx.Tickets.LockByID(ctx, id)
		if err != nil {
			return err
		}
		if t == nil {
			return ErrTicketNotFound
		}

		fields := map[string]any{}
		if in.Status != nil {
			fields["status"] = *in.Status
		}
		if in.Priority != nil {
			fields["priority"] = *in.Priority
		}
		if in.AdminResponse != nil {
			fields["admin_response"] = *in.AdminResponse
		}
		if in.AssignedTo != nil {
			assignee, err := tx.Users.GetByID(ctx, *in.AssignedTo)
			if err != nil {
				return err
			}
			if assignee == nil || !assignee.IsAdmin() {
				return ErrAssigneeNotAdmin
			}
			fields["assigned_to"] = *in.AssignedTo
		}
		if len(fields) == 0 {
			return nil
		}
		return tx.Tickets.UpdateFields(ctx, id, fields)
	})
	if err != nil {
		return nil, apperrors.Internal(err)
	}
	return s.Get(ctx, id)
}

func (s *service) Rate(ctx context.Context, customerID, id uint, rating int) (*models.SupportTicket, error) {
	v := validation.New()
	v.IntRange("rating", &rating, 1, 5)
	if err := v.Err(); err != nil {
		return nil, err
	}

	err := s.store.WithTx(ctx, func(tx *repositories.Store) error {
		t, err := tx.Tickets.LockByID(ctx, id)
		if err != nil {
			return err
		}
		if t == nil {
			return ErrTicketNotFound
		}
		if t.CustomerID != customerID {
			return ErrNotTicketOwner
		}
		if t.Status != models.TicketStatusResolved && t.Status != models.TicketStatusClosed {
			return ErrNotRateable
		}
		return tx.Tickets.UpdateFields(ctx, id, map[string]any{"satisfaction_rating": rating})
	})
	if err != nil {
		return nil, apperrors.Internal(err)
	}
	return s.Get(ctx, id)
}

func (s *service) Get(ctx context.Context, id uint) (*models.SupportTicket, error) {
	t, err := s.store.Tickets.GetByID(ctx, id)
	if err != nil {
		return nil, apperrors.Internal(err)
	}
	if t == nil {
		return nil, ErrTicketNotFound
	}
	return t, nil
}

func (s *service) List(ctx context.Context, f repositories.TicketFilter) ([]models.SupportTicket, int64, error) {
	out, total, err := s.store.Tickets.List(ctx, f)
	if err != nil {
		return nil, 0, apperrors.Internal(err)
	}
	return out, total, nil
}

func (s *service) Stats(ctx context.Context) (*repositories.TicketStats, error) {
	st, err := s.store.Tickets.Stats(ctx)
	if err != nil {
		return nil, apperrors.Internal(err)
	}
	return st, nil
}
