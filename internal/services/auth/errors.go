package auth

import apperrors "storeadmin/internal/errors"

var (
	ErrInvalidCredentials  = apperrors.New(apperrors.KindUnauthorized, "INVALID_CREDENTIALS", "invalid email or password")
	ErrAccountInactive     = apperrors.New(apperrors.KindForbidden, "ACCOUNT_INACTIVE", "account is not active")
	ErrEmailTaken          = apperrors.Conflict("EMAIL_TAKEN", "an account with this email already exists")
	ErrInvalidRefreshToken = apperrors.New(apperrors.KindUnauthorized, "INVALID_REFRESH_TOKEN", "invalid refresh token")
	ErrSessionExpired      = apperrors.New(apperrors.KindUnauthorized, "SESSION_EXPIRED", "session expired")
	ErrUserNotFound        = apperrors.New(apperrors.KindNotFound, "USER_NOT_FOUND", "user not found")
	ErrWrongPassword       = apperrors.New(apperrors.KindInvalidInput, "WRONG_PASSWORD", "current password is incorrect")
)
