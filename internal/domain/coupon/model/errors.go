package model

import "event_marketplace/pkg/errs"

var (
	ErrCouponNotFound      = errs.NotFound("COUPON_NOT_FOUND", "invalid coupon")
	ErrCouponInactive      = errs.Conflict("COUPON_INACTIVE", "coupon inactive")
	ErrCouponExpired       = errs.Conflict("COUPON_EXPIRED", "coupon expired")
	ErrCouponLimitReached  = errs.Conflict("COUPON_LIMIT_REACHED", "coupon limit reached")
	ErrCouponMinimumNotMet = errs.Conflict("COUPON_MINIMUM_NOT_MET", "minimum amount not met")
	ErrCouponExists        = errs.Conflict("COUPON_EXISTS", "coupon code already exists")
)
