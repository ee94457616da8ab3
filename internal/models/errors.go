package models

import "errors"

// Error kinds. Handlers map these to HTTP statuses with errors.Is.
var (
	ErrInvalidArgument = errors.New("invalid argument")
	ErrNotFound        = errors.New("not found")
	ErrConflict        = errors.New("conflict")
	ErrUnauthorized    = errors.New("user is not authorized")
	ErrForbidden       = errors.New("operation is forbidden for user")
	ErrUnavailable     = errors.New("service unavailable")
)

// DomainError carries a client-facing message and unwraps to its kind.
type DomainError struct {
	Kind error
	Msg  string
}

func (e *DomainError) Error() string { return e.Msg }

func (e *DomainError) Unwrap() error { return e.Kind }

func newError(kind error, msg string) *DomainError {
	return &DomainError{Kind: kind, Msg: msg}
}

var (
	ErrInvalidEventID    = newError(ErrInvalidArgument, "Invalid event ID")
	ErrInvalidBookingID  = newError(ErrInvalidArgument, "Invalid booking ID")
	ErrInvalidCategoryID = newError(ErrInvalidArgument, "Invalid category ID")
	ErrInvalidPrice      = newError(ErrInvalidArgument, "Price bounds must be non-negative numbers")
	ErrEventPrice        = newError(ErrInvalidArgument, "Price must be between 0 and 9999999999.99")
	ErrUnknownCategory   = newError(ErrInvalidArgument, "Category not found")
	ErrCategoryName      = newError(ErrInvalidArgument, "Category name is required and must be at most 100 characters")

	ErrEventNotFound    = newError(ErrNotFound, "Event not found")
	ErrCategoryNotFound = newError(ErrNotFound, "Category not found")
	ErrBookingNotFound  = newError(ErrNotFound, "Booking not found")

	ErrAlreadyBooked  = newError(ErrConflict, "You have already booked this event")
	ErrCategoryExists = newError(ErrConflict, "Category already exists")

	ErrNotAuthenticated = newError(ErrUnauthorized, "Not authorized, no token")

	ErrSearchDisabled = newError(ErrUnavailable, "Search is not available")
)

// Message returns the client-facing text of err, or fallback when err is not a domain error.
func Message(err error, fallback string) string {
	var de *DomainError
	if errors.As(err, &de) {
		return de.Msg
	}
	return fallback
}
