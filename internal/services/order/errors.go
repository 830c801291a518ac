package order

import apperrors "storeadmin/internal/errors"

var (
	ErrOrderNotFound      = apperrors.New(apperrors.KindNotFound, "ORDER_NOT_FOUND", "order not found")
	ErrProductNotFound    = apperrors.New(apperrors.KindNotFound, "PRODUCT_NOT_FOUND", "product not found")
	ErrCustomerNotFound   = apperrors.New(apperrors.KindNotFound, "CUSTOMER_NOT_FOUND", "customer not found")
	ErrInsufficientStock  = apperrors.New(apperrors.KindInsufficientStock, "INSUFFICIENT_STOCK", "insufficient stock")
	ErrAddressNotFound    = apperrors.New(apperrors.KindInvalidInput, "ADDRESS_NOT_FOUND", "address does not belong to the customer")
	ErrDiscountTooLarge   = apperrors.New(apperrors.KindInvalidInput, "DISCOUNT_TOO_LARGE", "discount exceeds order total")
	ErrInvalidTransition  = apperrors.New(apperrors.KindInvalidInput, "INVALID_STATUS_TRANSITION", "order status transition not allowed")
	ErrProductUnavailable = apperrors.New(apperrors.KindInsufficientStock, "PRODUCT_UNAVAILABLE", "product is not available for sale")
)
