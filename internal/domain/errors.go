package domain

import "errors"

var (
	ErrEventNotFound        = errors.New("event not found")
	ErrTicketTypeNotFound   = errors.New("ticket type not found")
	ErrRegistrationNotFound = errors.New("registration not found")

	ErrSoldOut        = errors.New("ticket type sold out")
	ErrSaleNotStarted = errors.New("ticket sales have not started")
	ErrSaleEnded      = errors.New("ticket sales have ended")

	ErrEmailRequired  = errors.New("attendee email required")
	ErrEmailInvalid   = errors.New("attendee email invalid")
	ErrNameRequired   = errors.New("attendee name required")
	ErrNameInvalid    = errors.New("attendee name must be 2-255 characters")
	ErrDuplicateEmail = errors.New("email already registered for event")

	ErrEventNameRequired  = errors.New("event name required")
	ErrTicketNameRequired = errors.New("ticket type name required")
	ErrInvalidQuantity    = errors.New("invalid quantity")
	ErrInvalidSaleWindow  = errors.New("sale start must precede sale end")
	ErrInvalidID          = errors.New("invalid id")

	// ErrBusy means the ticket-type row lock could not be acquired within
	// the bounded wait. Retryable.
	ErrBusy = errors.New("ticket type busy, retry")
)

// IsCapacityError reports whether err is one of the sale-window or
// availability rejections produced under the row lock.
func IsCapacityError(err error) bool {
	return errors.Is(err, ErrSoldOut) ||
		errors.Is(err, ErrSaleNotStarted) ||
		errors.Is(err, ErrSaleEnded)
}
