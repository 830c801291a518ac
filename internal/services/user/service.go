// Package user is the admin view of customer accounts.
package user

import (
	"context"
	"errors"
	"strings"

	apperrors "storeadmin/internal/errors"
	"storeadmin/internal/models"
	"storeadmin/internal/repositories"
	"storeadmin/internal/repositories/cache"
	"storeadmin/internal/services/auth"
	"storeadmin/internal/validation"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

type CreateCustomerInput struct {
	FullName string `json:"fullName"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
	Password string `json:"password"`
	Status   string `json:"status"`
}

type Service interface {
	ListCustomers(ctx context.Context, f repositories.UserFilter) ([]models.User, int64, error)
	Get(ctx context.Context, id uint) (*models.User, error)
	CreateCustomer(ctx context.Context, in CreateCustomerInput) (*models.User, error)
	UpdateStatus(ctx context.Context, id uint, status string) (*models.User, error)
	Stats(ctx context.Context) (*repositories.CustomerStats, error)
}

type service struct {
	store *repositories.Store
	cache cache.Cache
	log   *zap.Logger
}

func NewService(store *repositories.Store, c cache.Cache, log *zap.Logger) Service {
	if store == nil {
		panic("user: store is required")
	}
	return &service{store: store, cache: c, log: log}
}

func (s *service) ListCustomers(ctx context.Context, f repositories.UserFilter) ([]models.User, int64, error) {
	f.Role = models.RoleCustomer
	out, total, err := s.store.Users.List(ctx, f)
	if err != nil {
		return nil, 0, apperrors.Internal(err)
	}
	return out, total, nil
}

func (s *service) Get(ctx context.Context, id uint) (*models.User, error) {
	u, err := s.store.Users.GetByID(ctx, id)
	if err != nil {
		return nil, apperrors.Internal(err)
	}
	if u == nil {
		return nil, ErrUserNotFound
	}
	return u, nil
}

func (s *service) CreateCustomer(ctx context.Context, in CreateCustomerInput) (*models.User, error) {
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	if in.Status == "" {
		in.Status = models.UserStatusActive
	}
	v := validation.New()
	v.Required("fullName", in.FullName)
	v.MaxLength("fullName", in.FullName, validation.MaxNameLength)
	v.Email("email", in.Email)
	if in.Phone != "" {
		v.Phone("phone", in.Phone)
	}
	v.Password("password", in.Password)
	v.OneOf("status", in.Status, models.UserStatusActive, models.UserStatusInactive, models.UserStatusSuspended)
	if err := v.Err(); err != nil {
		return nil, err
	}

	hash, err := auth.HashPassword(in.Password)
	if err != nil {
		return nil, apperrors.Internal(err)
	}
	u := &models.User{
		Email:        in.Email,
		Password:     hash,
		FullName:     in.FullName,
		Phone:        in.Phone,
		Role:         models.RoleCustomer,
		Status:       in.Status,
		TokenVersion: 1,
	}
	if err := s.store.Users.Create(ctx, u); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrEmailTaken
		}
		return nil, apperrors.Internal(err)
	}
	return u, nil
}

// UpdateStatus changes the account status. Leaving active revokes the
// customer's sessions.
func (s *service) UpdateStatus(ctx context.Context, id uint, status string) (*models.User, error) {
	v := validation.New()
	v.OneOf("status", status, models.UserStatusActive, models.UserStatusInactive, models.UserStatusSuspended)
	if err := v.Err(); err != nil {
		return nil, err
	}

	var revoked bool
	err := s.store.WithTx(ctx, func(tx *repositories.Store) error {
		u, err := tx.Users.LockByID(ctx, id)
		if err != nil {
			return err
		}
		if u == nil {
			return ErrUserNotFound
		}
		if u.Status == status {
			return nil
		}
		if err := tx.Users.UpdateFields(ctx, id, map[string]any{"status": status}); err != nil {
			return err
		}
		if status != models.UserStatusActive {
			revoked = true
			_, err = tx.Users.IncrementTokenVersion(ctx, id)
		}
		return err
	})
	if err != nil {
		return nil, apperrors.Internal(err)
	}

	if revoked && s.cache != nil {
		if err := s.cache.Delete(context.WithoutCancel(ctx), auth.TokenVersionKey(id)); err != nil {
			s.log.Warn("token version cache invalidation failed", zap.Uint("user_id", id), zap.Error(err))
		}
	}
	s.log.Info("user status updated", zap.Uint("user_id", id), zap.String("status", status))
	return s.Get(ctx, id)
}

func (s *service) Stats(ctx context.Context) (*repositories.CustomerStats, error) {
	st, err := s.store.Users.CustomerStats(ctx)
	if err != nil {
		return nil, apperrors.Internal(err)
	}
	return st, nil
}
