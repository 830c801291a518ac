package catalog

import apperrors "storeadmin/internal/errors"

var (
	ErrProductNotFound     = apperrors.New(apperrors.KindNotFound, "PRODUCT_NOT_FOUND", "product not found")
	ErrCategoryNotFound    = apperrors.New(apperrors.KindNotFound, "CATEGORY_NOT_FOUND", "category not found")
	ErrImageNotFound       = apperrors.New(apperrors.KindNotFound, "IMAGE_NOT_FOUND", "image not found")
	ErrVariantNotFound     = apperrors.New(apperrors.KindNotFound, "VARIANT_NOT_FOUND", "variant not found")
	ErrDuplicateSKU        = apperrors.Conflict("DUPLICATE_SKU", "a product with this sku already exists")
	ErrDuplicateSlug       = apperrors.Conflict("DUPLICATE_SLUG", "a product with this slug already exists")
	ErrDuplicateCategory   = apperrors.Conflict("DUPLICATE_CATEGORY", "a category with this slug already exists")
	ErrDuplicateVariantSKU = apperrors.Conflict("DUPLICATE_VARIANT_SKU", "a variant with this sku already exists")
	ErrProductInUse        = apperrors.Conflict("PRODUCT_IN_USE", "product is referenced by other records")
	ErrSalePriceTooHigh    = apperrors.New(apperrors.KindInvalidInput, "SALE_PRICE_TOO_HIGH", "sale price cannot exceed the regular price")
	ErrNoImages            = apperrors.New(apperrors.KindInvalidInput, "NO_IMAGES", "at least one image is required")
	ErrUnsupportedImage    = apperrors.New(apperrors.KindInvalidInput, "UNSUPPORTED_IMAGE", "unsupported image type")
	ErrInvalidWorkbook     = apperrors.New(apperrors.KindInvalidInput, "INVALID_WORKBOOK", "workbook is empty or missing the header row")
)
