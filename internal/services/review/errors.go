package review

import apperrors "storeadmin/internal/errors"

var (
	ErrReviewNotFound  = apperrors.New(apperrors.KindNotFound, "REVIEW_NOT_FOUND", "review not found")
	ErrProductNotFound = apperrors.New(apperrors.KindNotFound, "PRODUCT_NOT_FOUND", "product not found")
	ErrOrderNotFound   = apperrors.New(apperrors.KindNotFound, "ORDER_NOT_FOUND", "order not found")
	ErrOrderNotOwned   = apperrors.New(apperrors.KindInvalidInput, "ORDER_NOT_OWNED", "order does not belong to the reviewer")
	ErrAlreadyReviewed = apperrors.Conflict("REVIEW_EXISTS", "product already reviewed by this user")
)
