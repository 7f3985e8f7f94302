package response

// 业务状态码
const (
	CodeSuccess = 0
	CodeError   = 1

	// 认证错误 100xx
	ErrAuthFailed   = 10003
	ErrTokenInvalid = 10004
	ErrNoPermission = 10005

	// 优惠券模块错误 200xx
	ErrCouponNotFound      = 20001
	ErrCouponLimitReached  = 20002
	ErrCouponInactive      = 20003
	ErrCouponExpired       = 20004
	ErrCouponMinimumNotMet = 20005
	ErrCouponExists        = 20006

	// 活动模块错误 300xx
	ErrEventNotFound    = 30001
	ErrEventNotOpen     = 30002
	ErrSelfBooking      = 30003
	ErrCapacityExceeded = 30004

	// 预订模块错误 400xx
	ErrAlreadyBooked     = 40001
	ErrBookingNotFound   = 40002
	ErrAlreadyCancelled  = 40003
	ErrNotCancellable    = 40004
	ErrBookingNotPending = 40005

	// 系统错误 500xx
	ErrServerInternal  = 50001
	ErrInvalidParam    = 50002
	ErrTooManyRequests = 50003

	// 支付模块错误 600xx
	ErrPaymentNotFound     = 60001
	ErrVerificationFailed  = 60002
	ErrProviderUnavailable = 60003
	ErrPaymentInProgress   = 60004
)

// reasonCodes 业务错误 Reason 到业务码的映射
var reasonCodes = map[string]int{
	"INVALID_INPUT":          ErrInvalidParam,
	"FORBIDDEN":              ErrNoPermission,
	"COUPON_NOT_FOUND":       ErrCouponNotFound,
	"COUPON_INACTIVE":        ErrCouponInactive,
	"COUPON_EXPIRED":         ErrCouponExpired,
	"COUPON_LIMIT_REACHED":   ErrCouponLimitReached,
	"COUPON_MINIMUM_NOT_MET": ErrCouponMinimumNotMet,
	"COUPON_EXISTS":          ErrCouponExists,
	"EVENT_NOT_FOUND":        ErrEventNotFound,
	"EVENT_NOT_OPEN":         ErrEventNotOpen,
	"SELF_BOOKING":           ErrSelfBooking,
	"CAPACITY_EXCEEDED":      ErrCapacityExceeded,
	"ALREADY_BOOKED":         ErrAlreadyBooked,
	"BOOKING_NOT_FOUND":      ErrBookingNotFound,
	"ALREADY_CANCELLED":      ErrAlreadyCancelled,
	"NOT_CANCELLABLE":        ErrNotCancellable,
	"BOOKING_NOT_PENDING":    ErrBookingNotPending,
	"PAYMENT_NOT_FOUND":      ErrPaymentNotFound,
	"VERIFICATION_FAILED":    ErrVerificationFailed,
	"PROVIDER_UNAVAILABLE":   ErrProviderUnavailable,
	"PAYMENT_IN_PROGRESS":    ErrPaymentInProgress,
}

// CodeOf 返回 Reason 对应的业务码
func CodeOf(reason string) int {
	if code, ok := reasonCodes[reason]; ok {
		return code
	}
	return CodeError
}
