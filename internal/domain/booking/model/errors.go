package model

import "event_marketplace/pkg/errs"

var (
	ErrBookingNotFound  = errs.NotFound("BOOKING_NOT_FOUND", "booking not found")
	ErrAlreadyBooked    = errs.Conflict("ALREADY_BOOKED", "already booked this event")
	ErrAlreadyCancelled = errs.Conflict("ALREADY_CANCELLED", "booking already cancelled")
	ErrNotCancellable   = errs.Conflict("NOT_CANCELLABLE", "completed bookings cannot be cancelled")
	ErrNotPending       = errs.Conflict("BOOKING_NOT_PENDING", "booking is not awaiting payment")
	ErrForbidden        = errs.Forbidden("FORBIDDEN", "you do not have permission to access this booking")
)
