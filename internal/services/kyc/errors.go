package kyc

import apperrors "storeadmin/internal/errors"

var (
	ErrApplicationNotFound  = apperrors.New(apperrors.KindNotFound, "KYC_NOT_FOUND", "kyc application not found")
	ErrUserNotFound         = apperrors.New(apperrors.KindNotFound, "USER_NOT_FOUND", "user not found")
	ErrDuplicateApplication = apperrors.Conflict("DUPLICATE_APPLICATION", "user already has a pending or accepted kyc application")
	ErrAlreadyReviewed      = apperrors.New(apperrors.KindInvalidInput, "KYC_ALREADY_REVIEWED", "kyc application has already been reviewed")
	ErrReasonRequired       = apperrors.Validation(map[string]string{"rejectionReason": "is required when rejecting"})
	ErrUserInactive         = apperrors.InvalidInput("user account is not active")
	ErrFrontImageRequired   = apperrors.Validation(map[string]string{"frontImage": "is required"})
	ErrUnsupportedImage     = apperrors.Validation(map[string]string{"images": "unsupported file type"})
)
