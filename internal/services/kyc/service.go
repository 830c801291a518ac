// Package kyc runs the identity verification workflow. A user holds at most
// one application that is pending or accepted.
package kyc

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	apperrors "storeadmin/internal/errors"
	"storeadmin/internal/events"
	"storeadmin/internal/models"
	"storeadmin/internal/repositories"
	"storeadmin/internal/storage"
	"storeadmin/internal/utils"
	"storeadmin/internal/validation"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// File is an uploaded image. Reader is consumed once.
type File struct {
	Filename string
	Reader   io.Reader
}

type CreateInput struct {
	DocumentType   string
	DocumentNumber string
	Front          *File
	Back           *File
	Selfie         *File
}

func (in CreateInput) validate() error {
	v := validation.New()
	v.OneOf("documentType", in.DocumentType,
		models.DocumentAadhaar, models.DocumentPAN, models.DocumentPassport, models.DocumentDrivingLicense)
	v.Required("documentNumber", in.DocumentNumber)
	v.MaxLength("documentNumber", in.DocumentNumber, 64)
	return v.Err()
}

type Service interface {
	Create(ctx context.Context, userID uint, in CreateInput) (*models.KYCApplication, error)
	CreateForUser(ctx context.Context, adminID uint, email string, in CreateInput) (*models.KYCApplication, error)
	UpdateStatus(ctx context.Context, id uint, status, reason string, reviewerID uint) (*models.KYCApplication, error)
	GetStatus(ctx context.Context, userID uint) (*models.KYCApplication, error)
	Get(ctx context.Context, id uint) (*models.KYCApplication, error)
	List(ctx context.Context, f repositories.KYCFilter) ([]models.KYCApplication, int64, error)
	Stats(ctx context.Context) (*repositories.KYCStats, error)
}

type service struct {
	store     *repositories.Store
	assets    storage.AssetStore
	publisher events.Publisher
	log       *zap.Logger
}

func NewService(store *repositories.Store, assets storage.AssetStore, publisher events.Publisher, log *zap.Logger) Service {
	if store == nil || assets == nil {
		panic("kyc: store and asset store are required")
	}
	if publisher == nil {
		publisher = events.Noop{}
	}
	return &service{store: store, assets: assets, publisher: publisher, log: log}
}

func (s *service) Create(ctx context.Context, userID uint, in CreateInput) (*models.KYCApplication, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	return s.create(ctx, userID, in)
}

func (s *service) CreateForUser(ctx context.Context, adminID uint, email string, in CreateInput) (*models.KYCApplication, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	if in.Front == nil {
		return nil, ErrFrontImageRequired
	}

	u, err := s.store.Users.GetByEmail(ctx, strings.TrimSpace(email))
	if err != nil {
		return nil, apperrors.Internal(err)
	}
	if u == nil {
		return nil, ErrUserNotFound
	}
	if !u.IsActive() {
		return nil, ErrUserInactive
	}

	app, err := s.create(ctx, u.ID, in)
	if err != nil {
		return nil, err
	}
	s.log.Info("audit: kyc application created by admin",
		zap.Uint("admin_id", adminID),
		zap.Uint("user_id", u.ID),
		zap.String("application_id", app.ApplicationID),
		zap.String("document_type", app.DocumentType),
	)
	return app, nil
}

// create uploads the images first so no transaction is held across the
// asset store, then inserts under a lock on the user row. Uploaded assets are
// removed again if anything after the upload fails.
func (s *service) create(ctx context.Context, userID uint, in CreateInput) (*models.KYCApplication, error) {
	app := &models.KYCApplication{
		ApplicationID:  utils.NewReference(utils.PrefixKYC),
		UserID:         userID,
		DocumentType:   in.DocumentType,
		DocumentNumber: strings.TrimSpace(in.DocumentNumber),
		Status:         models.KYCStatusPending,
		SubmittedDate:  time.Now(),
	}

	folder := fmt.Sprintf("kyc/%d", userID)
	uploads := []struct {
		file *File
		dst  *string
	}{
		{in.Front, &app.FrontImageURL},
		{in.Back, &app.BackImageURL},
		{in.Selfie, &app.SelfieImageURL},
	}
	for _, u := range uploads {
		if u.file == nil {
			continue
		}
		asset, err := s.assets.Upload(ctx, u.file.Reader, u.file.Filename, folder)
		if err != nil {
			s.cleanup(ctx, app.AssetIDs)
			if errors.Is(err, storage.ErrUnsupportedType) {
				return nil, ErrUnsupportedImage
			}
			return nil, apperrors.Internal(fmt.Errorf("upload kyc image: %w", err))
		}
		*u.dst = asset.URL
		app.AssetIDs = append(app.AssetIDs, asset.PublicID)
	}

	err := s.store.WithTx(ctx, func(tx *repositories.Store) error {
		u, err := tx.Users.LockByID(ctx, userID)
		if err != nil {
			return err
		}
		if u == nil {
			return ErrUserNotFound
		}
		active, err := tx.KYC.ActiveForUser(ctx, userID)
		if err != nil {
			return err
		}
		if active != nil {
			return ErrDuplicateApplication
		}
		return tx.KYC.Create(ctx, app)
	})
	if err != nil {
		s.cleanup(ctx, app.AssetIDs)
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrDuplicateApplication
		}
		return nil, apperrors.Internal(err)
	}
	return app, nil
}

func (s *service) cleanup(ctx context.Context, publicIDs []string) {
	ctx = context.WithoutCancel(ctx)
	for _, id := range publicIDs {
		if err := s.assets.Delete(ctx, id); err != nil {
			s.log.Warn("kyc asset cleanup failed", zap.String("public_id", id), zap.Error(err))
		}
	}
}

func (s *service) UpdateStatus(ctx context.Context, id uint, status, reason string, reviewerID uint) (*models.KYCApplication, error) {
	if status != models.KYCStatusAccepted && status != models.KYCStatusRejected {
		return nil, apperrors.Validation(map[string]string{"status": "must be accepted or rejected"})
	}
	reason = strings.TrimSpace(reason)
	if status == models.KYCStatusRejected && reason == "" {
		return nil, ErrReasonRequired
	}
	if status == models.KYCStatusAccepted {
		reason = ""
	}

	var applicationID string
	err := s.store.WithTx(ctx, func(tx *repositories.Store) error {
		app, err := tx.KYC.LockByID(ctx, id)
		if err != nil {
			return err
		}
		if app == nil {
			return ErrApplicationNotFound
		}
		if app.Status != models.KYCStatusPending {
			return ErrAlreadyReviewed.WithMessage("kyc application is already %s", app.Status)
		}
		applicationID = app.ApplicationID
		return tx.KYC.UpdateFields(ctx, id, map[string]any{
			"status":           status,
			"rejection_reason": reason,
			"reviewed_by":      reviewerID,
			"reviewed_date":    time.Now(),
		})
	})
	if err != nil {
		return nil, apperrors.Internal(err)
	}

	events.Emit(ctx, s.publisher, s.log, events.NewEvent(events.KYCReviewed, applicationID, map[string]any{
		"applicationId": applicationID,
		"status":        status,
		"reviewedBy":    reviewerID,
	}))
	return s.Get(ctx, id)
}

func (s *service) GetStatus(ctx context.Context, userID uint) (*models.KYCApplication, error) {
	app, err := s.store.KYC.LatestForUser(ctx, userID)
	if err != nil {
		return nil, apperrors.Internal(err)
	}
	if app == nil {
		return nil, ErrApplicationNotFound
	}
	return app, nil
}

func (s *service) Get(ctx context.Context, id uint) (*models.KYCApplication, error) {
	app, err := s.store.KYC.GetByID(ctx, id)
	if err != nil {
		return nil, apperrors.Internal(err)
	}
	if app == nil {
		return nil, ErrApplicationNotFound
	}
	return app, nil
}

func (s *service) List(ctx context.Context, f repositories.KYCFilter) ([]models.KYCApplication, int64, error) {
	out, total, err := s.store.KYC.List(ctx, f)
	if err != nil {
		return nil, 0, apperrors.Internal(err)
	}
	return out, total, nil
}

func (s *service) Stats(ctx context.Context) (*repositories.KYCStats, error) {
	st, err := s.store.KYC.Stats(ctx)
	if err != nil {
		return nil, apperrors.Internal(err)
	}
	return st, nil
}
