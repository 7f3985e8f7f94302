package model

import "event_marketplace/pkg/errs"

var (
	ErrPaymentNotFound     = errs.NotFound("PAYMENT_NOT_FOUND", "payment not found")
	ErrVerificationFailed  = errs.Validation("VERIFICATION_FAILED", "payment verification failed")
	ErrProviderUnavailable = errs.Provider("PROVIDER_UNAVAILABLE", "payment provider unavailable, please retry")
	ErrPaymentInProgress   = errs.Conflict("PAYMENT_IN_PROGRESS", "a payment for this booking is being prepared, please retry")

	// ErrPendingExists 部分唯一索引冲突：该预订已有 PENDING 支付
	ErrPendingExists = errs.Conflict("PENDING_PAYMENT_EXISTS", "booking already has a pending payment")
)
