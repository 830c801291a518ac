package returns

import apperrors "storeadmin/internal/errors"

var (
	ErrReturnNotFound      = apperrors.New(apperrors.KindNotFound, "RETURN_NOT_FOUND", "return not found")
	ErrOrderNotFound       = apperrors.New(apperrors.KindNotFound, "ORDER_NOT_FOUND", "order not found")
	ErrOrderNotOwned       = apperrors.New(apperrors.KindInvalidInput, "ORDER_NOT_OWNED", "order does not belong to the customer")
	ErrProductNotInOrder   = apperrors.New(apperrors.KindInvalidInput, "PRODUCT_NOT_IN_ORDER", "product is not part of the order")
	ErrQuantityExceeded    = apperrors.New(apperrors.KindInvalidInput, "RETURN_QUANTITY_EXCEEDED", "return quantity exceeds ordered quantity")
	ErrRefundAmountTooHigh = apperrors.New(apperrors.KindInvalidInput, "REFUND_AMOUNT_TOO_HIGH", "refund amount exceeds the line total")
	ErrInvalidTransition   = apperrors.New(apperrors.KindInvalidInput, "INVALID_STATUS_TRANSITION", "return status transition not allowed")
)
