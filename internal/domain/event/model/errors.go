package model

import "event_marketplace/pkg/errs"

var (
	ErrEventNotFound    = errs.NotFound("EVENT_NOT_FOUND", "event not found")
	ErrEventNotOpen     = errs.Conflict("EVENT_NOT_OPEN", "event is not available")
	ErrSelfBooking      = errs.Validation("SELF_BOOKING", "you cannot book your own event")
	ErrCapacityExceeded = errs.Conflict("CAPACITY_EXCEEDED", "not enough seats left")
	ErrForbidden        = errs.Forbidden("FORBIDDEN", "you do not have permission to access this event")
)
