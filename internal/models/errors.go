package models

import "errors"

// Purchase failures, checked in this order by CheckPurchase.
var (
	ErrEventNotFound           = errors.New("event not found")
	ErrEventNotPublished       = errors.New("event is not open for registration")
	ErrInvalidTicketType       = errors.New("ticket type does not exist for this event")
	ErrInvalidQuantity         = errors.New("quantity must be at least 1")
	ErrInsufficientInventory   = errors.New("not enough tickets available")
	ErrQuantityLimitExceeded   = errors.New("quantity exceeds the per-person ticket limit")
	ErrFreeTicketLimitExceeded = errors.New("only one free ticket can be claimed per order")
	ErrDuplicateFreeTicket     = errors.New("you already hold a free ticket of this type for this event")
)

var (
	ErrNotFound     = errors.New("not found")
	ErrForbidden    = errors.New("forbidden")
	ErrValidation   = errors.New("validation failed")
	ErrInvalidState = errors.New("operation not allowed in the current state")
)
