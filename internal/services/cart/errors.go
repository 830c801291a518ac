package cart

import apperrors "storeadmin/internal/errors"

var (
	ErrProductNotFound  = apperrors.New(apperrors.KindNotFound, "PRODUCT_NOT_FOUND", "product not found")
	ErrCartItemNotFound = apperrors.New(apperrors.KindNotFound, "CART_ITEM_NOT_FOUND", "cart item not found")
	ErrOutOfStock       = apperrors.New(apperrors.KindInsufficientStock, "OUT_OF_STOCK", "product is out of stock")
	ErrInvalidQuantity  = apperrors.InvalidInput("quantity must be at least 1")
)
