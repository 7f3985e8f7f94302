package model

import (
	"time"

	baseModel "event_marketplace/pkg/model"

	"github.com/shopspring/decimal"
)

// BookingStatus 预订状态
type BookingStatus string

const (
	StatusPending   BookingStatus = "PENDING"
	StatusConfirmed BookingStatus = "CONFIRMED"
	StatusCancelled BookingStatus = "CANCELLED"
	StatusCompleted BookingStatus = "COMPLETED"
)

// SeatHoldingStatuses 占用座位的状态
var SeatHoldingStatuses = []BookingStatus{StatusPending, StatusConfirmed}

// Booking 预订，金额创建后不可变
type Booking struct {
	baseModel.BaseModel
	UserID      string          `gorm:"type:uuid;not null;uniqueIndex:idx_bookings_user_event" json:"userId"`
	EventID     string          `gorm:"type:uuid;not null;index;uniqueIndex:idx_bookings_user_event" json:"eventId"`
	Quantity    int             `gorm:"not null" json:"quantity"`
	Subtotal    decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"subtotal"`
	Discount    decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"discount"`
	Amount      decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"amount"`
	CouponCode  *string         `gorm:"type:varchar(50)" json:"couponCode"`
	Status      BookingStatus   `gorm:"type:varchar(20);index;not null" json:"status"`
	CancelledAt *time.Time      `json:"cancelledAt"`
}

// Pricing 创建预订时的价格快照
type Pricing struct {
	Subtotal   decimal.Decimal
	Discount   decimal.Decimal
	Amount     decimal.Decimal
	CouponCode *string
}

// NewBooking 需要付款的预订为 PENDING，免费预订直接 CONFIRMED
func NewBooking(userID, eventID string, quantity int, p Pricing) *Booking {
	status := StatusConfirmed
	if p.Amount.IsPositive() {
		status = StatusPending
	}
	return &Booking{
		UserID:     userID,
		EventID:    eventID,
		Quantity:   quantity,
		Subtotal:   p.Subtotal,
		Discount:   p.Discount,
		Amount:     p.Amount,
		CouponCode: p.CouponCode,
		Status:     status,
	}
}

// transitions 合法的状态迁移
var transitions = map[BookingStatus][]BookingStatus{
	StatusPending:   {StatusConfirmed, StatusCancelled},
	StatusConfirmed: {StatusCancelled, StatusCompleted},
}

// CanTransition 是否允许从 from 迁移到 to
func CanTransition(from, to BookingStatus) bool {
	for _, s := range transitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

// SourcesOf 能迁移到 to 的状态，用作条件更新的 WHERE status IN (...)
func SourcesOf(to BookingStatus) []BookingStatus {
	var from []BookingStatus
	for _, s := range []BookingStatus{StatusPending, StatusConfirmed, StatusCancelled, StatusCompleted} {
		if CanTransition(s, to) {
			from = append(from, s)
		}
	}
	return from
}

// CheckCancel 校验取消请求
func (b *Booking) CheckCancel(userID string) error {
	if b.UserID != userID {
		return ErrForbidden.WithMessage("you do not have permission to cancel this booking")
	}
	switch b.Status {
	case StatusCancelled:
		return ErrAlreadyCancelled
	case StatusCompleted:
		return ErrNotCancellable
	}
	return nil
}

// HoldsSeats 是否占用座位
func (b *Booking) HoldsSeats() bool {
	return b.Status == StatusPending || b.Status == StatusConfirmed
}
