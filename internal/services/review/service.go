package review

import (
	"context"
	"errors"

	apperrors "storeadmin/internal/errors"
	"storeadmin/internal/models"
	"storeadmin/internal/repositories"
	"storeadmin/internal/validation"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

type CreateInput struct {
	ProductID            uint   `json:"productId"`
	OrderID              *uint  `json:"orderId"`
	Rating               int    `json:"rating"`
	Title                string `json:"title"`
	Comment              string `json:"comment"`
	ProductQualityRating *int   `json:"productQualityRating"`
	ShippingRating       *int   `json:"shippingRating"`
	SellerRating         *int   `json:"sellerRating"`
}

type Service interface {
	Create(ctx context.Context, userID uint, in CreateInput) (*models.Review, error)
	UpdateStatus(ctx context.Context, id uint, status string, adminReply *string) (*models.Review, error)
	Delete(ctx context.Context, id uint) error
	Get(ctx context.Context, id uint) (*models.Review, error)
	List(ctx context.Context, f repositories.ReviewFilter) ([]models.Review, int64, error)
	Stats(ctx context.Context) (*repositories.ReviewStats, error)
}

type service struct {
	store *repositories.Store
	log   *zap.Logger
}

func NewService(store *repositories.Store, log *zap.Logger) Service {
	if store == nil {
		panic("review: store is required")
	}
	return &service{store: store, log: log}
}

func (s *service) Create(ctx context.Context, userID uint, in CreateInput) (*models.Review, error) {
	v := validation.New()
	v.Check(in.ProductID != 0, "productId", "must be provided")
	v.IntRange("rating", &in.Rating, 1, 5)
	v.IntRange("productQualityRating", in.ProductQualityRating, 1, 5)
	v.IntRange("shippingRating", in.ShippingRating, 1, 5)
	v.IntRange("sellerRating", in.SellerRating, 1, 5)
	v.MaxLength("title", in.Title, validation.MaxNameLength)
	v.MaxLength("comment", in.Comment, validation.MaxDescriptionLength)
	if err := v.Err(); err != nil {
		return nil, err
	}

	p, err := s.store.Products.GetByID(ctx, in.ProductID)
	if err != nil {
		return nil, apperrors.Internal(err)
	}
	if p == nil {
		return nil, ErrProductNotFound
	}
	if in.OrderID != nil {
		o, err := s.store.Orders.GetByID(ctx, *in.OrderID)
		if err != nil {
			return nil, apperrors.Internal(err)
		}
		if o == nil {
			return nil, ErrOrderNotFound
		}
		if o.CustomerID != userID {
			return nil, ErrOrderNotOwned
		}
	}

	rv := &models.Review{
		ProductID:            in.ProductID,
		UserID:               userID,
		OrderID:              in.OrderID,
		Rating:               in.Rating,
		Title:                in.Title,
		Comment:              in.Comment,
		ProductQualityRating: in.ProductQualityRating,
		ShippingRating:       in.ShippingRating,
		SellerRating:         in.SellerRating,
		Status:               models.ReviewStatusPending,
	}
	if err := s.store.Reviews.Create(ctx, rv); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrAlreadyReviewed
		}
		return nil, apperrors.Internal(err)
	}
	return rv, nil
}

func (s *service) UpdateStatus(ctx context.Context, id uint, status string, adminReply *string) (*models.Review, error) {
	v := validation.New()
	v.OneOf("status", status, models.ReviewStatusPending, models.ReviewStatusApproved, models.ReviewStatusRejected)
	if adminReply != nil {
		v.MaxLength("adminReply", *adminReply, validation.MaxDescriptionLength)
	}
	if err := v.Err(); err != nil {
		return nil, err
	}

	if _, err := s.Get(ctx, id); err != nil {
		return nil, err
	}
	fields := map[string]any{"status": status}
	if adminReply != nil {
		fields["admin_reply"] = *adminReply
	}
	if err := s.store.Reviews.UpdateFields(ctx, id, fields); err != nil {
		return nil, apperrors.Internal(err)
	}
	return s.Get(ctx, id)
}

func (s *service) Delete(ctx context.Context, id uint) error {
	ok, err := s.store.Reviews.Delete(ctx, id)
	if err != nil {
		return apperrors.Internal(err)
	}
	if !ok {
		return ErrReviewNotFound
	}
	return nil
}

func (s *service) Get(ctx context.Context, id uint) (*models.Review, error) {
	rv, err := s.store.Reviews.GetByID(ctx, id)
	if err != nil {
		return nil, apperrors.Internal(err)
	}
	if rv == nil {
		return nil, ErrReviewNotFound
	}
	return rv, nil
}

func (s *service) List(ctx context.Context, f repositories.ReviewFilter) ([]models.Review, int64, error) {
	out, total, err := s.store.Reviews.List(ctx, f)
	if err != nil {
		return nil, 0, apperrors.Internal(err)
	}
	return out, total, nil
}

func (s *service) Stats(ctx context.Context) (*repositories.ReviewStats, error) {
	st, err := s.store.Reviews.Stats(ctx)
	if err != nil {
		return nil, apperrors.Internal(err)
	}
	return st, nil
}
