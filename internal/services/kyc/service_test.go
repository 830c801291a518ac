package kyc

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	apperrors "storeadmin/internal/errors"
	"storeadmin/internal/models"
	"storeadmin/internal/repositories"
	"storeadmin/internal/storage"
	"storeadmin/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type MockAssetStore struct {
	mock.Mock
}

func (m *MockAssetStore) Upload(ctx context.Context, r io.Reader, filename, folder string) (storage.Asset, error) {
	args := m.Called(ctx, r, filename, folder)
	return args.Get(0).(storage.Asset), args.Error(1)
}

func (m *MockAssetStore) Delete(ctx context.Context, publicID string) error {
	return m.Called(ctx, publicID).Error(0)
}

func file(name string) *File {
	return &File{Filename: name, Reader: strings.NewReader("data")}
}

func TestCreateInput_Validate(t *testing.T) {
	tests := []struct {
		name    string
		in      CreateInput
		wantErr bool
	}{
		{"valid", CreateInput{DocumentType: models.DocumentPassport, DocumentNumber: "P123"}, false},
		{"unknown type", CreateInput{DocumentType: "voter_id", DocumentNumber: "V1"}, true},
		{"blank number", CreateInput{DocumentType: models.DocumentPAN, DocumentNumber: "  "}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.in.validate()
			if tt.wantErr {
				assert.Equal(t, "VALIDATION_FAILED", apperrors.From(err).Code)
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestUpdateStatus_ValidatesBeforeTouchingStore(t *testing.T) {
	svc := &service{store: repositories.New(&gorm.DB{}), log: zap.NewNop()}

	_, err := svc.UpdateStatus(context.Background(), 1, models.KYCStatusRejected, "   ", 9)
	assert.ErrorIs(t, err, ErrReasonRequired)

	_, err = svc.UpdateStatus(context.Background(), 1, models.KYCStatusPending, "", 9)
	assert.Equal(t, apperrors.KindInvalidInput, apperrors.From(err).Kind)
}

func TestCreate_UploadFailureCleansUp(t *testing.T) {
	assets := new(MockAssetStore)
	assets.On("Upload", mock.Anything, mock.Anything, "front.png", "kyc/7").
		Return(storage.Asset{URL: "/uploads/kyc/7/a.png", PublicID: "kyc/7/a.png"}, nil)
	assets.On("Upload", mock.Anything, mock.Anything, "back.png", "kyc/7").
		Return(storage.Asset{}, errors.New("disk full"))
	assets.On("Delete", mock.Anything, "kyc/7/a.png").Return(errors.New("still busy"))

	svc := &service{store: repositories.New(&gorm.DB{}), assets: assets, log: zap.NewNop()}
	_, err := svc.Create(context.Background(), 7, CreateInput{
		DocumentType:   models.DocumentPassport,
		DocumentNumber: "P1",
		Front:          file("front.png"),
		Back:           file("back.png"),
	})

	require.Error(t, err)
	assert.Equal(t, apperrors.KindInternal, apperrors.From(err).Kind)
	assets.AssertExpectations(t)
}

func TestKYC_Integration(t *testing.T) {
	store := testutil.SetupStore(t)
	local, err := storage.NewLocalStore(t.TempDir(), "/uploads")
	require.NoError(t, err)
	svc := NewService(store, local, nil, zap.NewNop())
	ctx := context.Background()

	admin := testutil.CreateUser(t, store, models.RoleAdmin)
	user := testutil.CreateUser(t, store, models.RoleCustomer)

	in := func() CreateInput {
		return CreateInput{DocumentType: models.DocumentPassport, DocumentNumber: "P-001", Front: file("front.jpg")}
	}

	app, err := svc.Create(ctx, user.ID, in())
	require.NoError(t, err)
	assert.Regexp(t, `^KYC-\d+-[0-9A-F]{6}$`, app.ApplicationID)
	assert.Equal(t, models.KYCStatusPending, app.Status)
	assert.NotEmpty(t, app.FrontImageURL)

	t.Run("duplicate pending application", func(t *testing.T) {
		_, err := svc.Create(ctx, user.ID, in())
		assert.ErrorIs(t, err, ErrDuplicateApplication)
		assert.Equal(t, apperrors.KindConflict, apperrors.From(err).Kind)
	})

	t.Run("rejection needs a reason and is final", func(t *testing.T) {
		_, err := svc.UpdateStatus(ctx, app.ID, models.KYCStatusRejected, "", admin.ID)
		assert.ErrorIs(t, err, ErrReasonRequired)

		rejected, err := svc.UpdateStatus(ctx, app.ID, models.KYCStatusRejected, "blurry scan", admin.ID)
		require.NoError(t, err)
		assert.Equal(t, models.KYCStatusRejected, rejected.Status)
		assert.Equal(t, "blurry scan", rejected.RejectionReason)
		require.NotNil(t, rejected.ReviewedBy)
		assert.Equal(t, admin.ID, *rejected.ReviewedBy)
		assert.NotNil(t, rejected.ReviewedDate)

		_, err = svc.UpdateStatus(ctx, app.ID, models.KYCStatusAccepted, "", admin.ID)
		assert.ErrorIs(t, err, ErrAlreadyReviewed)
	})

	t.Run("rejected user can apply again and be accepted", func(t *testing.T) {
		again, err := svc.Create(ctx, user.ID, in())
		require.NoError(t, err)

		accepted, err := svc.UpdateStatus(ctx, again.ID, models.KYCStatusAccepted, "ignored", admin.ID)
		require.NoError(t, err)
		assert.Empty(t, accepted.RejectionReason)

		latest, err := svc.GetStatus(ctx, user.ID)
		require.NoError(t, err)
		assert.Equal(t, again.ID, latest.ID)

		_, err = svc.Create(ctx, user.ID, in())
		assert.ErrorIs(t, err, ErrDuplicateApplication)
	})

	t.Run("admin create by email", func(t *testing.T) {
		other := testutil.CreateUser(t, store, models.RoleCustomer)

		noFront := in()
		noFront.Front = nil
		_, err := svc.CreateForUser(ctx, admin.ID, other.Email, noFront)
		assert.ErrorIs(t, err, ErrFrontImageRequired)

		_, err = svc.CreateForUser(ctx, admin.ID, "nobody@example.com", in())
		assert.ErrorIs(t, err, ErrUserNotFound)

		require.NoError(t, store.Users.UpdateFields(ctx, other.ID, map[string]any{"status": models.UserStatusSuspended}))
		_, err = svc.CreateForUser(ctx, admin.ID, other.Email, in())
		assert.ErrorIs(t, err, ErrUserInactive)

		require.NoError(t, store.Users.UpdateFields(ctx, other.ID, map[string]any{"status": models.UserStatusActive}))
		app, err := svc.CreateForUser(ctx, admin.ID, strings.ToUpper(other.Email), in())
		require.NoError(t, err)
		assert.Equal(t, other.ID, app.UserID)
	})

	t.Run("queries", func(t *testing.T) {
		_, total, err := svc.List(ctx, repositories.KYCFilter{Status: models.KYCStatusPending})
		require.NoError(t, err)
		assert.Equal(t, int64(1), total)

		st, err := svc.Stats(ctx)
		require.NoError(t, err)
		assert.Equal(t, int64(3), st.Total)

		_, err = svc.GetStatus(ctx, admin.ID)
		assert.ErrorIs(t, err, ErrApplicationNotFound)
	})
}
