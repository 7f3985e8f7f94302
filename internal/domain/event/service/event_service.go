package service

import (
	"context"
	"time"

	"event_marketplace/internal/domain/event/model"
	"event_marketplace/internal/domain/event/repository"
	"event_marketplace/internal/pkg/broker"
	"event_marketplace/internal/pkg/txn"
	"event_marketplace/pkg/errs"
	"event_marketplace/pkg/metrics"
	baseModel "event_marketplace/pkg/model"
	"event_marketplace/pkg/utils"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// BookingCompleter 活动完结时把 CONFIRMED 预订置为 COMPLETED
type BookingCompleter interface {
	CompleteConfirmedForEvent(ctx context.Context, eventID string) (int64, error)
}

// CreateEventInput 创建活动参数
type CreateEventInput struct {
	HostID          string          `json:"-" validate:"required"`
	Name            string          `json:"name" validate:"required,max=200"`
	MaxParticipants int             `json:"maxParticipants" validate:"min=1"`
	JoiningFee      decimal.Decimal `json:"joiningFee"`
	Date            time.Time       `json:"date" validate:"required"`
}

type EventService interface {
	CreateEvent(ctx context.Context, in CreateEventInput) (*model.Event, error)
	// GetEvent 读取活动，过期未完结的活动会先完结
	GetEvent(ctx context.Context, id string) (*model.Event, error)
	// Reconcile 完结过期活动及其已确认预订，幂等
	Reconcile(ctx context.Context, id string) (bool, error)
	// ReconcileMany 批量完结，返回完结数量
	ReconcileMany(ctx context.Context, ids []string) (int, error)
}

type eventService struct {
	repo      repository.EventRepository
	tx        txn.Manager
	bookings  BookingCompleter
	publisher broker.Publisher
	metrics   *metrics.MetricsCollector
	log       *zap.Logger
	now       func() time.Time
}

func NewEventService(
	repo repository.EventRepository,
	tx txn.Manager,
	bookings BookingCompleter,
	publisher broker.Publisher,
	m *metrics.MetricsCollector,
	log *zap.Logger,
) EventService {
	return &eventService{
		repo:      repo,
		tx:        tx,
		bookings:  bookings,
		publisher: publisher,
		metrics:   m,
		log:       log,
		now:       time.Now,
	}
}

func (s *eventService) CreateEvent(ctx context.Context, in CreateEventInput) (*model.Event, error) {
	if err := utils.ValidateStruct(in); err != nil {
		return nil, err
	}
	if in.JoiningFee.IsNegative() {
		return nil, errs.ErrInvalidInput.WithMessage("joiningFee cannot be negative")
	}
	if !in.Date.After(s.now()) {
		return nil, errs.ErrInvalidInput.WithMessage("date must be in the future")
	}

	event := &model.Event{
		HostID:          in.HostID,
		Name:            in.Name,
		MaxParticipants: in.MaxParticipants,
		Status:          model.StatusOpen,
		JoiningFee:      baseModel.RoundMoney(in.JoiningFee),
		Date:            in.Date,
	}
	if err := s.repo.Create(ctx, event); err != nil {
		return nil, err
	}

	s.log.Info("event created",
		zap.String("event_id", event.ID),
		zap.String("host_id", event.HostID),
		zap.Int("max_participants", event.MaxParticipants))
	return event, nil
}

func (s *eventService) GetEvent(ctx context.Context, id string) (*model.Event, error) {
	event, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if _, err := s.complete(ctx, event); err != nil {
		return nil, err
	}
	return event, nil
}

func (s *eventService) Reconcile(ctx context.Context, id string) (bool, error) {
	event, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return false, err
	}
	return s.complete(ctx, event)
}

func (s *eventService) ReconcileMany(ctx context.Context, ids []string) (int, error) {
	due, err := s.repo.ListDueForCompletion(ctx, ids, s.now())
	if err != nil {
		return 0, err
	}

	completed := 0
	for _, id := range due {
		ok, err := s.Reconcile(ctx, id)
		if err != nil {
			return completed, err
		}
		if ok {
			completed++
		}
	}
	return completed, nil
}

// complete 在行锁下复查后完结活动，成功时同步更新 event
func (s *eventService) complete(ctx context.Context, event *model.Event) (bool, error) {
	now := s.now()
	if !event.NeedsCompletion(now) {
		return false, nil
	}

	var done bool
	var bookings int64
	err := s.tx.Do(ctx, func(ctx context.Context) error {
		locked, err := s.repo.LockByID(ctx, event.ID)
		if err != nil {
			return err
		}
		if !locked.NeedsCompletion(now) {
			event.Status = locked.Status
			return nil
		}

		if err := s.repo.UpdateStatus(ctx, event.ID, model.StatusCompleted); err != nil {
			return err
		}
		bookings, err = s.bookings.CompleteConfirmedForEvent(ctx, event.ID)
		if err != nil {
			return err
		}
		done = true
		return nil
	})
	if err != nil {
		return false, err
	}
	if !done {
		return false, nil
	}

	event.Status = model.StatusCompleted
	s.metrics.RecordEventCompleted()
	s.log.Info("event completed",
		zap.String("event_id", event.ID),
		zap.Int64("bookings_completed", bookings))
	if err := s.publisher.Publish(ctx, broker.NewEvent(broker.EventEventCompleted, map[string]interface{}{
		"eventId":           event.ID,
		"bookingsCompleted": bookings,
	})); err != nil {
		s.log.Warn("publish event.completed failed", zap.String("event_id", event.ID), zap.Error(err))
	}
	return true, nil
}
