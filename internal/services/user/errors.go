package user

import apperrors "storeadmin/internal/errors"

var (
	ErrUserNotFound = apperrors.New(apperrors.KindNotFound, "USER_NOT_FOUND", "user not found")
	ErrEmailTaken   = apperrors.Conflict("EMAIL_TAKEN", "an account with this email already exists")
)
