package support

import apperrors "storeadmin/internal/errors"

var (
	ErrTicketNotFound   = apperrors.New(apperrors.KindNotFound, "TICKET_NOT_FOUND", "ticket not found")
	ErrCustomerNotFound = apperrors.New(apperrors.KindNotFound, "CUSTOMER_NOT_FOUND", "customer not found")
	ErrAssigneeNotAdmin = apperrors.New(apperrors.KindInvalidInput, "ASSIGNEE_NOT_ADMIN", "tickets can only be assigned to admin users")
	ErrNotTicketOwner   = apperrors.New(apperrors.KindForbidden, "NOT_TICKET_OWNER", "only the ticket owner can rate it")
	ErrNotRateable      = apperrors.New(apperrors.KindInvalidInput, "TICKET_NOT_RATEABLE", "only resolved or closed tickets can be rated")
)
