package service

import (
	"context"
	"errors"
	"time"

	"event_marketplace/internal/domain/coupon/model"
	"event_marketplace/internal/domain/coupon/repository"
	"event_marketplace/pkg/errs"
	"event_marketplace/pkg/metrics"
	baseModel "event_marketplace/pkg/model"
	"event_marketplace/pkg/utils"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// CreateCouponInput 创建优惠码参数
type CreateCouponInput struct {
	Code      string          `json:"code" validate:"required,min=3,max=50"`
	Type      string          `json:"type" validate:"required,oneof=PERCENTAGE FIXED"`
	Discount  decimal.Decimal `json:"discount"`
	MaxUses   *int            `json:"maxUses" validate:"omitempty,min=1"`
	ExpiresAt *time.Time      `json:"expiresAt"`
	MinAmount decimal.Decimal `json:"minAmount"`
	IsActive  *bool           `json:"isActive"`
}

type CouponService interface {
	CreateCoupon(ctx context.Context, in CreateCouponInput) (*model.Coupon, error)
	GetCoupon(ctx context.Context, code string) (*model.Coupon, error)
	// Quote 只读报价，code 为空时不打折
	Quote(ctx context.Context, code string, fee decimal.Decimal, quantity int) (*model.Quote, error)
	// Reserve 须在事务中调用：校验并占用一次
	Reserve(ctx context.Context, code string, fee decimal.Decimal, quantity int) (*model.Quote, error)
	// Release 须在事务中调用：归还一次占用
	Release(ctx context.Context, code string) error
}

type couponService struct {
	repo    repository.CouponRepository
	metrics *metrics.MetricsCollector
	log     *zap.Logger
	now     func() time.Time
}

func NewCouponService(repo repository.CouponRepository, m *metrics.MetricsCollector, log *zap.Logger) CouponService {
	return &couponService{
		repo:    repo,
		metrics: m,
		log:     log,
		now:     time.Now,
	}
}

func (s *couponService) CreateCoupon(ctx context.Context, in CreateCouponInput) (*model.Coupon, error) {
	if err := utils.ValidateStruct(in); err != nil {
		return nil, err
	}
	if !in.Discount.IsPositive() {
		return nil, errs.ErrInvalidInput.WithMessage("discount must be positive")
	}
	if in.Type == string(model.TypePercentage) && in.Discount.GreaterThan(decimal.NewFromInt(100)) {
		return nil, errs.ErrInvalidInput.WithMessage("percentage discount cannot exceed 100")
	}
	if in.MinAmount.IsNegative() {
		return nil, errs.ErrInvalidInput.WithMessage("minAmount cannot be negative")
	}

	active := true
	if in.IsActive != nil {
		active = *in.IsActive
	}

	coupon := &model.Coupon{
		Code:      model.NormalizeCode(in.Code),
		Type:      model.DiscountType(in.Type),
		Discount:  baseModel.RoundMoney(in.Discount),
		IsActive:  active,
		MaxUses:   in.MaxUses,
		ExpiresAt: in.ExpiresAt,
		MinAmount: baseModel.RoundMoney(in.MinAmount),
	}
	if err := s.repo.Create(ctx, coupon); err != nil {
		return nil, err
	}

	s.log.Info("coupon created", zap.String("code", coupon.Code), zap.String("type", in.Type))
	return coupon, nil
}

func (s *couponService) GetCoupon(ctx context.Context, code string) (*model.Coupon, error) {
	code = model.NormalizeCode(code)
	if code == "" {
		return nil, model.ErrCouponNotFound
	}
	return s.repo.GetByCode(ctx, code)
}

func (s *couponService) Quote(ctx context.Context, code string, fee decimal.Decimal, quantity int) (*model.Quote, error) {
	code = model.NormalizeCode(code)
	if code == "" {
		q := model.Price(fee, quantity, nil)
		return &q, nil
	}

	coupon, err := s.repo.GetByCode(ctx, code)
	if err != nil {
		return nil, err
	}

	q := model.Price(fee, quantity, nil)
	if err := coupon.Check(s.now(), q.Subtotal); err != nil {
		return nil, err
	}

	q = model.Price(fee, quantity, coupon)
	return &q, nil
}

func (s *couponService) Reserve(ctx context.Context, code string, fee decimal.Decimal, quantity int) (*model.Quote, error) {
	if model.NormalizeCode(code) == "" {
		q := model.Price(fee, quantity, nil)
		return &q, nil
	}

	q, err := s.Quote(ctx, code, fee, quantity)
	if err == nil {
		// 并发下校验通过后可能已被抢完，以条件更新为准
		err = s.repo.IncrementUsage(ctx, q.Coupon.Code)
	}
	s.metrics.RecordCoupon("reserve", metrics.Outcome(err, isCouponRejection))
	if err != nil {
		return nil, err
	}
	return q, nil
}

func (s *couponService) Release(ctx context.Context, code string) error {
	code = model.NormalizeCode(code)
	if code == "" {
		return nil
	}

	err := s.repo.DecrementUsage(ctx, code)
	s.metrics.RecordCoupon("release", metrics.Outcome(err, nil))
	return err
}

func isCouponRejection(err error) bool {
	var e *errs.Error
	return errors.As(err, &e) && e.Kind != errs.KindInternal
}
