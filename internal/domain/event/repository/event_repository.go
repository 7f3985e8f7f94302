package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"event_marketplace/internal/domain/event/model"
	"event_marketplace/internal/pkg/txn"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// countedStatuses 占用座位的预订状态
var countedStatuses = []string{"PENDING", "CONFIRMED"}

type EventRepository interface {
	Create(ctx context.Context, event *model.Event) error
	GetByID(ctx context.Context, id string) (*model.Event, error)
	// LockByID SELECT ... FOR UPDATE，须在事务中调用
	LockByID(ctx context.Context, id string) (*model.Event, error)
	// SumBookedSeats 统计 PENDING/CONFIRMED 预订的座位数
	SumBookedSeats(ctx context.Context, eventID string) (int, error)
	UpdateStatus(ctx context.Context, id string, status model.EventStatus) error
	// ListDueForCompletion 返回给定活动中已过期但未完结的 ID
	ListDueForCompletion(ctx context.Context, ids []string, now time.Time) ([]string, error)
}

type eventRepository struct {
	db *gorm.DB
}

func NewEventRepository(db *gorm.DB) EventRepository {
	return &eventRepository{db: db}
}

func (r *eventRepository) Create(ctx context.Context, event *model.Event) error {
	if err := txn.DB(ctx, r.db).Create(event).Error; err != nil {
		return fmt.Errorf("create event: %w", err)
	}
	return nil
}

func (r *eventRepository) GetByID(ctx context.Context, id string) (*model.Event, error) {
	var event model.Event
	err := txn.DB(ctx, r.db).Where("id = ?", id).First(&event).Error
	return r.found(&event, id, err)
}

func (r *eventRepository) LockByID(ctx context.Context, id string) (*model.Event, error) {
	var event model.Event
	err := txn.DB(ctx, r.db).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ?", id).
		First(&event).Error
	return r.found(&event, id, err)
}

func (r *eventRepository) found(event *model.Event, id string, err error) (*model.Event, error) {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, model.ErrEventNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get event %s: %w", id, err)
	}
	return event, nil
}

func (r *eventRepository) SumBookedSeats(ctx context.Context, eventID string) (int, error) {
	var total int64
	err := txn.DB(ctx, r.db).
		Table("bookings").
		Where("event_id = ? AND status IN ? AND deleted_at IS NULL", eventID, countedStatuses).
		Select("COALESCE(SUM(quantity), 0)").
		Scan(&total).Error
	if err != nil {
		return 0, fmt.Errorf("sum booked seats for %s: %w", eventID, err)
	}
	return int(total), nil
}

func (r *eventRepository) UpdateStatus(ctx context.Context, id string, status model.EventStatus) error {
	err := txn.DB(ctx, r.db).Model(&model.Event{}).
		Where("id = ?", id).
		Update("status", status).Error
	if err != nil {
		return fmt.Errorf("update event %s status: %w", id, err)
	}
	return nil
}

func (r *eventRepository) ListDueForCompletion(ctx context.Context, ids []string, now time.Time) ([]string, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var due []string
	err := txn.DB(ctx, r.db).Model(&model.Event{}).
		Where("id IN ? AND date < ? AND status NOT IN ?", ids, now,
			[]model.EventStatus{model.StatusCompleted, model.StatusCancelled}).
		Pluck("id", &due).Error
	if err != nil {
		return nil, fmt.Errorf("list events due for completion: %w", err)
	}
	return due, nil
}
