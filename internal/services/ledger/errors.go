package ledger

import apperrors "storeadmin/internal/errors"

var (
	ErrTransactionNotFound   = apperrors.New(apperrors.KindNotFound, "TRANSACTION_NOT_FOUND", "transaction not found")
	ErrCustomerNotFound      = apperrors.New(apperrors.KindNotFound, "CUSTOMER_NOT_FOUND", "customer not found")
	ErrOrderNotFound         = apperrors.New(apperrors.KindNotFound, "ORDER_NOT_FOUND", "order not found")
	ErrOrderCustomerMismatch = apperrors.New(apperrors.KindInvalidInput, "ORDER_NOT_OWNED", "order does not belong to the customer")
	ErrNotRefundable         = apperrors.New(apperrors.KindInvalidInput, "NOT_REFUNDABLE", "refund transactions cannot be refunded")
	ErrRefundExceedsOriginal = apperrors.New(apperrors.KindRefundExceedsOriginal, "REFUND_EXCEEDS_ORIGINAL",
		"refund amount exceeds the refundable balance of the original transaction")
)
