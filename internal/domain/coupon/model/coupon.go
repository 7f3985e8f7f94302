package model

import (
	"strings"
	"time"

	baseModel "event_marketplace/pkg/model"

	"github.com/shopspring/decimal"
)

// DiscountType 折扣类型
type DiscountType string

const (
	TypePercentage DiscountType = "PERCENTAGE"
	TypeFixed      DiscountType = "FIXED"
)

// Coupon 优惠码
type Coupon struct {
	baseModel.BaseModel
	Code      string          `gorm:"type:varchar(50);uniqueIndex;not null" json:"code"`
	Discount  decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"discount"`
	Type      DiscountType    `gorm:"type:varchar(20);not null" json:"type"`
	IsActive  bool            `gorm:"not null" json:"isActive"`
	MaxUses   *int            `json:"maxUses"` // nil 表示不限次数
	UsedCount int             `gorm:"not null" json:"usedCount"`
	ExpiresAt *time.Time      `json:"expiresAt"`
	MinAmount decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"minAmount"`
}

// NormalizeCode 优惠码统一去空格并大写
func NormalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// Check 按顺序校验：停用 → 过期 → 次数用尽 → 未达最低金额
func (c *Coupon) Check(now time.Time, subtotal decimal.Decimal) error {
	if !c.IsActive {
		return ErrCouponInactive
	}
	if c.ExpiresAt != nil && now.After(*c.ExpiresAt) {
		return ErrCouponExpired
	}
	if c.MaxUses != nil && c.UsedCount >= *c.MaxUses {
		return ErrCouponLimitReached
	}
	if subtotal.LessThan(c.MinAmount) {
		return ErrCouponMinimumNotMet.
			WithMessage("minimum " + c.MinAmount.StringFixed(2) + " required").
			WithDetail("minAmount", c.MinAmount.StringFixed(2))
	}
	return nil
}

// Remaining 剩余可用次数，不限次数时返回 nil
func (c *Coupon) Remaining() *int {
	if c.MaxUses == nil {
		return nil
	}
	left := *c.MaxUses - c.UsedCount
	if left < 0 {
		left = 0
	}
	return &left
}
