package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"event_marketplace/internal/domain/coupon/model"
	"event_marketplace/pkg/errs"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// MockCouponRepository is a mock of CouponRepository
type MockCouponRepository struct {
	mock.Mock
}

func (m *MockCouponRepository) Create(ctx context.Context, coupon *model.Coupon) error {
	args := m.Called(ctx, coupon)
	return args.Error(0)
}

func (m *MockCouponRepository) GetByCode(ctx context.Context, code string) (*model.Coupon, error) {
	args := m.Called(ctx, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Coupon), args.Error(1)
}

func (m *MockCouponRepository) IncrementUsage(ctx context.Context, code string) error {
	args := m.Called(ctx, code)
	return args.Error(0)
}

func (m *MockCouponRepository) DecrementUsage(ctx context.Context, code string) error {
	args := m.Called(ctx, code)
	return args.Error(0)
}

func intPtr(v int) *int { return &v }

func welcome20(used int) *model.Coupon {
	return &model.Coupon{
		Code:      "WELCOME20",
		Type:      model.TypePercentage,
		Discount:  decimal.NewFromInt(20),
		IsActive:  true,
		MaxUses:   intPtr(1),
		UsedCount: used,
		MinAmount: decimal.Zero,
	}
}

func newService(repo *MockCouponRepository) *couponService {
	return NewCouponService(repo, nil, zap.NewNop()).(*couponService)
}

func TestQuote(t *testing.T) {
	ctx := context.Background()
	fee := decimal.NewFromInt(100)

	t.Run("no coupon", func(t *testing.T) {
		repo := new(MockCouponRepository)
		q, err := newService(repo).Quote(ctx, "  ", fee, 2)

		require.NoError(t, err)
		assert.Equal(t, "200", q.FinalAmount.String())
		repo.AssertNotCalled(t, "GetByCode", mock.Anything, mock.Anything)
	})

	t.Run("code is normalized", func(t *testing.T) {
		repo := new(MockCouponRepository)
		repo.On("GetByCode", ctx, "WELCOME20").Return(welcome20(0), nil)

		q, err := newService(repo).Quote(ctx, " welcome20 ", fee, 1)

		require.NoError(t, err)
		assert.Equal(t, "20", q.Discount.String())
		assert.Equal(t, "80", q.FinalAmount.String())
		repo.AssertExpectations(t)
	})

	t.Run("unknown code", func(t *testing.T) {
		repo := new(MockCouponRepository)
		repo.On("GetByCode", ctx, "NOPE").Return(nil, model.ErrCouponNotFound)

		_, err := newService(repo).Quote(ctx, "nope", fee, 1)
		assert.ErrorIs(t, err, model.ErrCouponNotFound)
	})

	t.Run("expired coupon", func(t *testing.T) {
		repo := new(MockCouponRepository)
		c := welcome20(0)
		expired := time.Now().Add(-time.Minute)
		c.ExpiresAt = &expired
		repo.On("GetByCode", ctx, "WELCOME20").Return(c, nil)

		_, err := newService(repo).Quote(ctx, "WELCOME20", fee, 1)
		assert.ErrorIs(t, err, model.ErrCouponExpired)
	})
}

func TestReserve(t *testing.T) {
	ctx := context.Background()
	fee := decimal.NewFromInt(100)

	t.Run("increments usage and returns quote", func(t *testing.T) {
		repo := new(MockCouponRepository)
		repo.On("GetByCode", ctx, "WELCOME20").Return(welcome20(0), nil)
		repo.On("IncrementUsage", ctx, "WELCOME20").Return(nil)

		q, err := newService(repo).Reserve(ctx, "welcome20", fee, 1)

		require.NoError(t, err)
		assert.Equal(t, "80", q.FinalAmount.String())
		assert.Equal(t, "WELCOME20", *q.CouponCode())
		repo.AssertExpectations(t)
	})

	t.Run("limit reached before increment", func(t *testing.T) {
		repo := new(MockCouponRepository)
		repo.On("GetByCode", ctx, "WELCOME20").Return(welcome20(1), nil)

		_, err := newService(repo).Reserve(ctx, "WELCOME20", fee, 1)

		assert.ErrorIs(t, err, model.ErrCouponLimitReached)
		repo.AssertNotCalled(t, "IncrementUsage", mock.Anything, mock.Anything)
	})

	t.Run("lost the race on the conditional update", func(t *testing.T) {
		repo := new(MockCouponRepository)
		repo.On("GetByCode", ctx, "WELCOME20").Return(welcome20(0), nil)
		repo.On("IncrementUsage", ctx, "WELCOME20").Return(model.ErrCouponLimitReached)

		_, err := newService(repo).Reserve(ctx, "WELCOME20", fee, 1)
		assert.ErrorIs(t, err, model.ErrCouponLimitReached)
	})

	t.Run("without code nothing is reserved", func(t *testing.T) {
		repo := new(MockCouponRepository)
		q, err := newService(repo).Reserve(ctx, "", fee, 3)

		require.NoError(t, err)
		assert.Nil(t, q.CouponCode())
		repo.AssertNotCalled(t, "IncrementUsage", mock.Anything, mock.Anything)
	})

	t.Run("quote and reserve agree", func(t *testing.T) {
		repo := new(MockCouponRepository)
		c := &model.Coupon{
			Code:      "FIXED15",
			Type:      model.TypeFixed,
			Discount:  decimal.RequireFromString("15.50"),
			IsActive:  true,
			MinAmount: decimal.NewFromInt(50),
		}
		repo.On("GetByCode", ctx, "FIXED15").Return(c, nil)
		repo.On("IncrementUsage", ctx, "FIXED15").Return(nil)
		svc := newService(repo)

		quoted, err := svc.Quote(ctx, "FIXED15", decimal.RequireFromString("33.33"), 3)
		require.NoError(t, err)
		reserved, err := svc.Reserve(ctx, "FIXED15", decimal.RequireFromString("33.33"), 3)
		require.NoError(t, err)

		assert.True(t, quoted.Discount.Equal(reserved.Discount))
		assert.True(t, quoted.FinalAmount.Equal(reserved.FinalAmount))
		assert.Equal(t, "84.49", reserved.FinalAmount.StringFixed(2))
	})
}

func TestRelease(t *testing.T) {
	ctx := context.Background()

	t.Run("decrements normalized code", func(t *testing.T) {
		repo := new(MockCouponRepository)
		repo.On("DecrementUsage", ctx, "WELCOME20").Return(nil)

		assert.NoError(t, newService(repo).Release(ctx, "welcome20"))
		repo.AssertExpectations(t)
	})

	t.Run("infrastructure error is returned", func(t *testing.T) {
		repo := new(MockCouponRepository)
		repo.On("DecrementUsage", ctx, "WELCOME20").Return(errors.New("connection reset"))

		err := newService(repo).Release(ctx, "WELCOME20")
		assert.Error(t, err)
		assert.Equal(t, errs.KindInternal, errs.KindOf(err))
	})
}

func TestCreateCoupon(t *testing.T) {
	ctx := context.Background()

	t.Run("creates normalized active coupon", func(t *testing.T) {
		repo := new(MockCouponRepository)
		repo.On("Create", ctx, mock.AnythingOfType("*model.Coupon")).Return(nil)

		c, err := newService(repo).CreateCoupon(ctx, CreateCouponInput{
			Code:     "spring10",
			Type:     "PERCENTAGE",
			Discount: decimal.NewFromInt(10),
			MaxUses:  intPtr(100),
		})

		require.NoError(t, err)
		assert.Equal(t, "SPRING10", c.Code)
		assert.True(t, c.IsActive)
		assert.Equal(t, 0, c.UsedCount)
	})

	t.Run("rejects percentage above 100", func(t *testing.T) {
		repo := new(MockCouponRepository)
		_, err := newService(repo).CreateCoupon(ctx, CreateCouponInput{
			Code:     "HUGE",
			Type:     "PERCENTAGE",
			Discount: decimal.NewFromInt(150),
		})
		assert.ErrorIs(t, err, errs.ErrInvalidInput)
	})

	t.Run("rejects unknown type", func(t *testing.T) {
		repo := new(MockCouponRepository)
		_, err := newService(repo).CreateCoupon(ctx, CreateCouponInput{
			Code:     "BOGO",
			Type:     "BUY_ONE",
			Discount: decimal.NewFromInt(1),
		})
		assert.ErrorIs(t, err, errs.ErrInvalidInput)
	})

	t.Run("duplicate code", func(t *testing.T) {
		repo := new(MockCouponRepository)
		repo.On("Create", ctx, mock.AnythingOfType("*model.Coupon")).Return(model.ErrCouponExists)

		_, err := newService(repo).CreateCoupon(ctx, CreateCouponInput{
			Code:     "WELCOME20",
			Type:     "FIXED",
			Discount: decimal.NewFromInt(5),
		})
		assert.ErrorIs(t, err, model.ErrCouponExists)
	})
}
