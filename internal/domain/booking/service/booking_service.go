package service

import (
	"context"
	"strings"

	"event_marketplace/internal/domain/booking/model"
	"event_marketplace/internal/domain/booking/repository"
	couponModel "event_marketplace/internal/domain/coupon/model"
	couponService "event_marketplace/internal/domain/coupon/service"
	eventModel "event_marketplace/internal/domain/event/model"
	eventRepo "event_marketplace/internal/domain/event/repository"
	eventService "event_marketplace/internal/domain/event/service"
	"event_marketplace/internal/pkg/broker"
	"event_marketplace/internal/pkg/txn"
	"event_marketplace/pkg/errs"
	"event_marketplace/pkg/metrics"
	"event_marketplace/pkg/utils"

	"go.uber.org/zap"
)

// CreateBookingInput 预订参数
type CreateBookingInput struct {
	UserID     string `validate:"required"`
	EventID    string `validate:"required,uuid"`
	Quantity   int    `validate:"min=1"`
	CouponCode string `validate:"max=50"`
}

// ValidateCouponInput 优惠码试算参数
type ValidateCouponInput struct {
	Code     string `validate:"required,max=50"`
	EventID  string `validate:"required,uuid"`
	Quantity int    `validate:"min=1"`
}

type BookingService interface {
	// CreateBooking 座位准入、优惠码占用、写入预订在同一事务内完成
	CreateBooking(ctx context.Context, in CreateBookingInput) (*model.Booking, error)
	// CancelBooking 取消预订并归还优惠码与座位
	CancelBooking(ctx context.Context, bookingID, userID string) (*model.Booking, error)
	// ValidateCoupon 只读试算，与下单使用同一套计价规则
	ValidateCoupon(ctx context.Context, in ValidateCouponInput) (*couponModel.Quote, error)
	ListMyBookings(ctx context.Context, userID string) ([]model.BookingView, error)
	// ListEventBookings 仅活动主办方或管理员可查看
	ListEventBookings(ctx context.Context, eventID, userID, role string) ([]model.BookingView, error)
}

type bookingService struct {
	repo      repository.BookingRepository
	eventRepo eventRepo.EventRepository
	events    eventService.EventService
	ledger    *eventService.CapacityLedger
	coupons   couponService.CouponService
	tx        txn.Manager
	publisher broker.Publisher
	metrics   *metrics.MetricsCollector
	log       *zap.Logger
}

func NewBookingService(
	repo repository.BookingRepository,
	eRepo eventRepo.EventRepository,
	events eventService.EventService,
	coupons couponService.CouponService,
	tx txn.Manager,
	publisher broker.Publisher,
	m *metrics.MetricsCollector,
	log *zap.Logger,
) BookingService {
	return &bookingService{
		repo:      repo,
		eventRepo: eRepo,
		events:    events,
		ledger:    eventService.NewCapacityLedger(eRepo),
		coupons:   coupons,
		tx:        tx,
		publisher: publisher,
		metrics:   m,
		log:       log,
	}
}

func (s *bookingService) CreateBooking(ctx context.Context, in CreateBookingInput) (*model.Booking, error) {
	in.CouponCode = strings.TrimSpace(in.CouponCode)
	if err := utils.ValidateStruct(in); err != nil {
		return nil, err
	}

	booking, full, err := s.createBooking(ctx, in)
	s.metrics.RecordBooking("create", metrics.Outcome(err, isBusiness), in.Quantity)
	if err != nil {
		if isBusiness(err) {
			s.log.Info("booking rejected",
				zap.String("user_id", in.UserID),
				zap.String("event_id", in.EventID),
				zap.Int("quantity", in.Quantity),
				zap.Error(err))
		} else {
			s.log.Error("create booking failed", zap.String("event_id", in.EventID), zap.Error(err))
		}
		return nil, err
	}

	s.log.Info("booking created",
		zap.String("booking_id", booking.ID),
		zap.String("event_id", booking.EventID),
		zap.String("status", string(booking.Status)),
		zap.String("amount", booking.Amount.StringFixed(2)),
		zap.Bool("event_full", full))
	s.publish(ctx, broker.EventBookingCreated, map[string]interface{}{
		"bookingId":  booking.ID,
		"userId":     booking.UserID,
		"eventId":    booking.EventID,
		"quantity":   booking.Quantity,
		"amount":     booking.Amount,
		"status":     booking.Status,
		"couponCode": booking.CouponCode,
		"eventFull":  full,
	})
	return booking, nil
}

func (s *bookingService) createBooking(ctx context.Context, in CreateBookingInput) (*model.Booking, bool, error) {
	// 已过期的活动先完结，避免在事务中读到陈旧状态
	if _, err := s.events.Reconcile(ctx, in.EventID); err != nil {
		return nil, false, err
	}

	var booking *model.Booking
	var full bool
	err := s.tx.Do(ctx, func(ctx context.Context) error {
		event, err := s.eventRepo.LockByID(ctx, in.EventID)
		if err != nil {
			return err
		}
		if _, err := s.ledger.Admit(ctx, event, in.UserID, in.Quantity); err != nil {
			return err
		}

		exists, err := s.repo.ExistsForUserEvent(ctx, in.UserID, in.EventID)
		if err != nil {
			return err
		}
		if exists {
			return model.ErrAlreadyBooked
		}

		quote, err := s.coupons.Reserve(ctx, in.CouponCode, event.JoiningFee, in.Quantity)
		if err != nil {
			return err
		}

		b := model.NewBooking(in.UserID, in.EventID, in.Quantity, model.Pricing{
			Subtotal:   quote.Subtotal,
			Discount:   quote.Discount,
			Amount:     quote.FinalAmount,
			CouponCode: quote.CouponCode(),
		})
		if err := s.repo.Create(ctx, b); err != nil {
			return err
		}

		full, err = s.ledger.Settle(ctx, event)
		if err != nil {
			return err
		}
		booking = b
		return nil
	})
	if err != nil {
		return nil, false, err
	}
	return booking, full, nil
}

func (s *bookingService) CancelBooking(ctx context.Context, bookingID, userID string) (*model.Booking, error) {
	if bookingID == "" || userID == "" {
		return nil, errs.ErrInvalidInput.WithMessage("booking id is required")
	}

	// 先无锁读取以获得活动 ID，加锁顺序固定为 活动 → 预订
	current, err := s.repo.GetByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if err := current.CheckCancel(userID); err != nil {
		s.metrics.RecordBooking("cancel", metrics.OutcomeRejected, 0)
		return nil, err
	}

	var cancelled *model.Booking
	var reopened bool
	err = s.tx.Do(ctx, func(ctx context.Context) error {
		event, err := s.eventRepo.LockByID(ctx, current.EventID)
		if err != nil {
			return err
		}
		booking, err := s.repo.LockByID(ctx, bookingID)
		if err != nil {
			return err
		}
		if err := booking.CheckCancel(userID); err != nil {
			return err
		}

		ok, err := s.repo.Transition(ctx, booking.ID, model.StatusCancelled)
		if err != nil {
			return err
		}
		if !ok {
			return model.ErrAlreadyCancelled
		}

		if booking.CouponCode != nil {
			if err := s.coupons.Release(ctx, *booking.CouponCode); err != nil {
				return err
			}
		}

		reopened, err = s.ledger.Release(ctx, event)
		if err != nil {
			return err
		}

		booking.Status = model.StatusCancelled
		cancelled = booking
		return nil
	})
	s.metrics.RecordBooking("cancel", metrics.Outcome(err, isBusiness), 0)
	if err != nil {
		return nil, err
	}

	s.log.Info("booking cancelled",
		zap.String("booking_id", cancelled.ID),
		zap.String("event_id", cancelled.EventID),
		zap.Bool("event_reopened", reopened))
	s.publish(ctx, broker.EventBookingCancelled, map[string]interface{}{
		"bookingId":     cancelled.ID,
		"userId":        cancelled.UserID,
		"eventId":       cancelled.EventID,
		"quantity":      cancelled.Quantity,
		"couponCode":    cancelled.CouponCode,
		"eventReopened": reopened,
	})
	return cancelled, nil
}

func (s *bookingService) ValidateCoupon(ctx context.Context, in ValidateCouponInput) (*couponModel.Quote, error) {
	in.Code = strings.TrimSpace(in.Code)
	if err := utils.ValidateStruct(in); err != nil {
		return nil, err
	}

	event, err := s.events.GetEvent(ctx, in.EventID)
	if err != nil {
		return nil, err
	}
	return s.coupons.Quote(ctx, in.Code, event.JoiningFee, in.Quantity)
}

func (s *bookingService) ListMyBookings(ctx context.Context, userID string) ([]model.BookingView, error) {
	views, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	n, err := s.events.ReconcileMany(ctx, eventIDs(views))
	if err != nil {
		return nil, err
	}
	if n == 0 {
		return views, nil
	}
	return s.repo.ListByUser(ctx, userID)
}

func (s *bookingService) ListEventBookings(ctx context.Context, eventID, userID, role string) ([]model.BookingView, error) {
	event, err := s.events.GetEvent(ctx, eventID)
	if err != nil {
		return nil, err
	}
	if role != utils.RoleAdmin && event.HostID != userID {
		return nil, eventModel.ErrForbidden.WithMessage("only the host can view bookings of this event")
	}
	return s.repo.ListByEvent(ctx, eventID)
}

func (s *bookingService) publish(ctx context.Context, eventType string, payload map[string]interface{}) {
	if err := s.publisher.Publish(ctx, broker.NewEvent(eventType, payload)); err != nil {
		s.log.Warn("publish domain event failed", zap.String("type", eventType), zap.Error(err))
	}
}

func eventIDs(views []model.BookingView) []string {
	seen := make(map[string]struct{}, len(views))
	ids := make([]string, 0, len(views))
	for _, v := range views {
		if _, ok := seen[v.EventID]; ok {
			continue
		}
		seen[v.EventID] = struct{}{}
		ids = append(ids, v.EventID)
	}
	return ids
}

func isBusiness(err error) bool {
	return errs.KindOf(err) != errs.KindInternal
}
