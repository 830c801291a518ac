package address

import apperrors "storeadmin/internal/errors"

var (
	ErrAddressNotFound  = apperrors.New(apperrors.KindNotFound, "ADDRESS_NOT_FOUND", "address not found")
	ErrCustomerNotFound = apperrors.New(apperrors.KindNotFound, "CUSTOMER_NOT_FOUND", "customer not found")
	ErrDefaultConflict  = apperrors.Conflict("DEFAULT_ADDRESS_CONFLICT", "another default address was set concurrently")
)
