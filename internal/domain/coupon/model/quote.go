package model

import (
	baseModel "event_marketplace/pkg/model"

	"github.com/shopspring/decimal"
)

// Quote 报价
type Quote struct {
	Subtotal    decimal.Decimal `json:"subtotal"`
	Discount    decimal.Decimal `json:"discount"`
	FinalAmount decimal.Decimal `json:"finalAmount"`
	Coupon      *AppliedCoupon  `json:"coupon,omitempty"`
}

// AppliedCoupon 报价中使用的优惠码快照
type AppliedCoupon struct {
	Code     string          `json:"code"`
	Type     DiscountType    `json:"type"`
	Discount decimal.Decimal `json:"discount"`
}

// Price 计算报价，coupon 为 nil 时不打折
func Price(fee decimal.Decimal, quantity int, coupon *Coupon) Quote {
	subtotal := baseModel.RoundMoney(fee.Mul(decimal.NewFromInt(int64(quantity))))
	q := Quote{
		Subtotal:    subtotal,
		Discount:    decimal.Zero,
		FinalAmount: subtotal,
	}
	if coupon == nil {
		return q
	}

	var discount decimal.Decimal
	switch coupon.Type {
	case TypePercentage:
		discount = subtotal.Mul(coupon.Discount).Div(decimal.NewFromInt(100))
	default:
		discount = coupon.Discount
	}
	discount = baseModel.RoundMoney(decimal.Min(discount, subtotal))
	if discount.IsNegative() {
		discount = decimal.Zero
	}

	q.Discount = discount
	q.FinalAmount = decimal.Max(subtotal.Sub(discount), decimal.Zero)
	q.Coupon = &AppliedCoupon{Code: coupon.Code, Type: coupon.Type, Discount: coupon.Discount}
	return q
}

// CouponCode 报价使用的优惠码，未使用时为 nil
func (q Quote) CouponCode() *string {
	if q.Coupon == nil {
		return nil
	}
	code := q.Coupon.Code
	return &code
}
