package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"event_marketplace/internal/domain/booking/model"
	"event_marketplace/internal/pkg/txn"
	"event_marketplace/pkg/database"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type BookingRepository interface {
	// Create (user_id, event_id) 唯一冲突时返回 ErrAlreadyBooked
	Create(ctx context.Context, booking *model.Booking) error
	GetByID(ctx context.Context, id string) (*model.Booking, error)
	// LockByID SELECT ... FOR UPDATE，须在事务中调用
	LockByID(ctx context.Context, id string) (*model.Booking, error)
	ExistsForUserEvent(ctx context.Context, userID, eventID string) (bool, error)
	// Transition 条件更新：仅当当前状态可迁移到 to 时生效
	Transition(ctx context.Context, id string, to model.BookingStatus) (bool, error)
	CompleteConfirmedForEvent(ctx context.Context, eventID string) (int64, error)
	ListByUser(ctx context.Context, userID string) ([]model.BookingView, error)
	ListByEvent(ctx context.Context, eventID string) ([]model.BookingView, error)
}

type bookingRepository struct {
	db *gorm.DB
}

func NewBookingRepository(db *gorm.DB) BookingRepository {
	return &bookingRepository{db: db}
}

func (r *bookingRepository) Create(ctx context.Context, booking *model.Booking) error {
	err := txn.DB(ctx, r.db).Create(booking).Error
	if database.IsUniqueViolation(err) {
		return model.ErrAlreadyBooked
	}
	if err != nil {
		return fmt.Errorf("create booking: %w", err)
	}
	return nil
}

func (r *bookingRepository) GetByID(ctx context.Context, id string) (*model.Booking, error) {
	var booking model.Booking
	err := txn.DB(ctx, r.db).Where("id = ?", id).First(&booking).Error
	return r.found(&booking, id, err)
}

func (r *bookingRepository) LockByID(ctx context.Context, id string) (*model.Booking, error) {
	var booking model.Booking
	err := txn.DB(ctx, r.db).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ?", id).
		First(&booking).Error
	return r.found(&booking, id, err)
}

func (r *bookingRepository) found(booking *model.Booking, id string, err error) (*model.Booking, error) {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, model.ErrBookingNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get booking %s: %w", id, err)
	}
	return booking, nil
}

func (r *bookingRepository) ExistsForUserEvent(ctx context.Context, userID, eventID string) (bool, error) {
	var count int64
	err := txn.DB(ctx, r.db).Model(&model.Booking{}).
		Where("user_id = ? AND event_id = ?", userID, eventID).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("check existing booking: %w", err)
	}
	return count > 0, nil
}

func (r *bookingRepository) Transition(ctx context.Context, id string, to model.BookingStatus) (bool, error) {
	from := model.SourcesOf(to)
	if len(from) == 0 {
		return false, fmt.Errorf("no transition leads to %s", to)
	}

	updates := map[string]interface{}{"status": to}
	if to == model.StatusCancelled {
		updates["cancelled_at"] = time.Now()
	}

	res := txn.DB(ctx, r.db).Model(&model.Booking{}).
		Where("id = ? AND status IN ?", id, from).
		Updates(updates)
	if res.Error != nil {
		return false, fmt.Errorf("transition booking %s to %s: %w", id, to, res.Error)
	}
	return res.RowsAffected > 0, nil
}

func (r *bookingRepository) CompleteConfirmedForEvent(ctx context.Context, eventID string) (int64, error) {
	res := txn.DB(ctx, r.db).Model(&model.Booking{}).
		Where("event_id = ? AND status = ?", eventID, model.StatusConfirmed).
		Update("status", model.StatusCompleted)
	if res.Error != nil {
		return 0, fmt.Errorf("complete bookings for event %s: %w", eventID, res.Error)
	}
	return res.RowsAffected, nil
}

func (r *bookingRepository) ListByUser(ctx context.Context, userID string) ([]model.BookingView, error) {
	var views []model.BookingView
	if err := r.views(ctx).Where("b.user_id = ?", userID).Scan(&views).Error; err != nil {
		return nil, fmt.Errorf("list bookings of user %s: %w", userID, err)
	}
	return views, nil
}

func (r *bookingRepository) ListByEvent(ctx context.Context, eventID string) ([]model.BookingView, error) {
	var views []model.BookingView
	if err := r.views(ctx).Where("b.event_id = ?", eventID).Scan(&views).Error; err != nil {
		return nil, fmt.Errorf("list bookings of event %s: %w", eventID, err)
	}
	return views, nil
}

// views 每个预订至多一条未删除的支付记录
func (r *bookingRepository) views(ctx context.Context) *gorm.DB {
	return txn.DB(ctx, r.db).
		Table("bookings AS b").
		Select("b.*, e.name AS event_name, e.date AS event_date, e.status AS event_status, e.host_id AS host_id, p.status AS payment_status").
		Joins("JOIN events e ON e.id = b.event_id").
		Joins("LEFT JOIN payments p ON p.booking_id = b.id AND p.deleted_at IS NULL").
		Where("b.deleted_at IS NULL").
		Order("b.created_at DESC")
}
