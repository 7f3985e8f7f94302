package repository

import (
	"context"
	"errors"
	"fmt"

	"event_marketplace/internal/domain/coupon/model"
	"event_marketplace/internal/pkg/txn"
	"event_marketplace/pkg/database"

	"gorm.io/gorm"
)

type CouponRepository interface {
	Create(ctx context.Context, coupon *model.Coupon) error
	GetByCode(ctx context.Context, code string) (*model.Coupon, error)
	IncrementUsage(ctx context.Context, code string) error
	DecrementUsage(ctx context.Context, code string) error
}

type couponRepository struct {
	db *gorm.DB
}

func NewCouponRepository(db *gorm.DB) CouponRepository {
	return &couponRepository{db: db}
}

func (r *couponRepository) Create(ctx context.Context, coupon *model.Coupon) error {
	if err := txn.DB(ctx, r.db).Create(coupon).Error; err != nil {
		if database.IsUniqueViolation(err) {
			return model.ErrCouponExists
		}
		return fmt.Errorf("create coupon: %w", err)
	}
	return nil
}

func (r *couponRepository) GetByCode(ctx context.Context, code string) (*model.Coupon, error) {
	var coupon model.Coupon
	err := txn.DB(ctx, r.db).Where("code = ?", code).First(&coupon).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, model.ErrCouponNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get coupon %s: %w", code, err)
	}
	return &coupon, nil
}

// IncrementUsage 条件更新占用一次，并发下不会超过 max_uses
func (r *couponRepository) IncrementUsage(ctx context.Context, code string) error {
	result := txn.DB(ctx, r.db).Model(&model.Coupon{}).
		Where("code = ? AND is_active = ? AND (max_uses IS NULL OR used_count < max_uses)", code, true).
		UpdateColumn("used_count", gorm.Expr("used_count + 1"))

	if result.Error != nil {
		return fmt.Errorf("increment coupon usage: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return model.ErrCouponLimitReached
	}
	return nil
}

// DecrementUsage 释放一次占用，不会低于 0；优惠码已删除时忽略
func (r *couponRepository) DecrementUsage(ctx context.Context, code string) error {
	result := txn.DB(ctx, r.db).Model(&model.Coupon{}).
		Where("code = ?", code).
		UpdateColumn("used_count", gorm.Expr("GREATEST(used_count - 1, 0)"))

	if result.Error != nil {
		return fmt.Errorf("decrement coupon usage: %w", result.Error)
	}
	return nil
}
