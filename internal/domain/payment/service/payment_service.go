package service

import (
	"context"
	"errors"
	"net/http"
	"time"

	bookingModel "event_marketplace/internal/domain/booking/model"
	"event_marketplace/internal/domain/payment/model"
	"event_marketplace/internal/domain/payment/provider"
	"event_marketplace/internal/domain/payment/repository"
	"event_marketplace/internal/pkg/broker"
	"event_marketplace/internal/pkg/locker"
	"event_marketplace/internal/pkg/txn"
	"event_marketplace/pkg/errs"
	"event_marketplace/pkg/metrics"

	"go.uber.org/zap"
)

// BookingStore 支付流程用到的预订操作
type BookingStore interface {
	GetByID(ctx context.Context, id string) (*bookingModel.Booking, error)
	Transition(ctx context.Context, id string, to bookingModel.BookingStatus) (bool, error)
}

// Settings 启动时确定的支付参数
type Settings struct {
	Mode     string
	Currency string
	LockTTL  time.Duration
	// IntentTTL 渠道交易有效期，期内渠道查不到的交易仍视为可用
	IntentTTL time.Duration
	// AcceptDemoRefs 真实模式下是否仍接受演示凭据
	AcceptDemoRefs bool
}

type PaymentService interface {
	// CreateIntent 为待支付预订创建或复用支付凭据
	CreateIntent(ctx context.Context, bookingID, userID string) (*model.Intent, error)
	// Confirm 向渠道核实后完成支付并确认预订，可重复调用
	Confirm(ctx context.Context, ref string) (*model.ConfirmResult, error)
	// HandleNotification 渠道异步通知，验签后转入 Confirm
	HandleNotification(ctx context.Context, channel string, r *http.Request) error
	History(ctx context.Context, userID string) ([]model.HistoryEntry, error)
	Mode() string
	RegisterProvider(p provider.Provider)
}

type paymentService struct {
	repo      repository.PaymentRepository
	bookings  BookingStore
	primary   provider.Provider
	providers map[string]provider.Provider
	tx        txn.Manager
	locker    locker.Locker
	publisher broker.Publisher
	metrics   *metrics.MetricsCollector
	log       *zap.Logger
	settings  Settings
	now       func() time.Time
}

func NewPaymentService(
	repo repository.PaymentRepository,
	bookings BookingStore,
	primary provider.Provider,
	tx txn.Manager,
	lk locker.Locker,
	publisher broker.Publisher,
	m *metrics.MetricsCollector,
	log *zap.Logger,
	settings Settings,
) PaymentService {
	s := &paymentService{
		repo:      repo,
		bookings:  bookings,
		primary:   primary,
		providers: make(map[string]provider.Provider),
		tx:        tx,
		locker:    lk,
		publisher: publisher,
		metrics:   m,
		log:       log,
		settings:  settings,
		now:       time.Now,
	}
	s.RegisterProvider(primary)
	if settings.AcceptDemoRefs && primary.Name() != provider.MethodDemo {
		s.RegisterProvider(provider.NewFallbackProvider())
	}
	return s
}

// RegisterProvider 注册支付渠道，按 payment_method 查找
func (s *paymentService) RegisterProvider(p provider.Provider) {
	s.providers[p.Name()] = p
}

func (s *paymentService) Mode() string {
	return s.settings.Mode
}

// providerFor 已有支付记录按其创建渠道核实，未注册的渠道交给主渠道
func (s *paymentService) providerFor(method string) provider.Provider {
	if p, ok := s.providers[method]; ok {
		return p
	}
	return s.primary
}

func (s *paymentService) CreateIntent(ctx context.Context, bookingID, userID string) (*model.Intent, error) {
	intent, err := s.createIntent(ctx, bookingID, userID)
	s.metrics.RecordPayment("create_intent", s.settings.Mode, metrics.Outcome(err, isBusiness))
	if err != nil {
		if !isBusiness(err) {
			s.log.Error("create payment intent failed", zap.String("booking_id", bookingID), zap.Error(err))
		}
		return nil, err
	}
	return intent, nil
}

func (s *paymentService) createIntent(ctx context.Context, bookingID, userID string) (*model.Intent, error) {
	if bookingID == "" || userID == "" {
		return nil, errs.ErrInvalidInput.WithMessage("bookingId is required")
	}

	booking, err := s.bookings.GetByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if booking.UserID != userID {
		return nil, bookingModel.ErrForbidden
	}
	if booking.Status != bookingModel.StatusPending {
		return nil, bookingModel.ErrNotPending.WithDetail("status", string(booking.Status))
	}

	// 锁只用于减少重复的渠道调用，唯一索引才是最终保证
	release, err := s.locker.Acquire(ctx, "payment:intent:"+bookingID, s.settings.LockTTL)
	switch {
	case errors.Is(err, locker.ErrNotAcquired):
		return nil, model.ErrPaymentInProgress
	case err != nil:
		s.log.Warn("intent lock unavailable, continuing without it", zap.String("booking_id", bookingID), zap.Error(err))
	default:
		defer release()
	}

	existing, err := s.repo.FindPendingByBooking(ctx, bookingID)
	if err != nil && !errors.Is(err, model.ErrPaymentNotFound) {
		return nil, err
	}
	if existing != nil {
		live, err := s.isLive(ctx, existing)
		if err != nil {
			return nil, err
		}
		if live {
			s.log.Debug("returning existing payment intent", zap.String("transaction_id", existing.TransactionID))
			return model.IntentOf(existing, s.settings.Mode, true), nil
		}
	}

	created, err := s.primary.Create(ctx, provider.CreateRequest{
		Amount:   booking.Amount,
		Currency: s.settings.Currency,
		Subject:  "Event booking " + booking.ID,
		Expire:   s.settings.IntentTTL,
		Metadata: map[string]string{
			"bookingId": booking.ID,
			"userId":    userID,
			"eventId":   booking.EventID,
		},
	})
	if err != nil {
		return nil, model.ErrProviderUnavailable.Wrap(err)
	}

	payment := &model.Payment{
		BookingID:     booking.ID,
		Amount:        booking.Amount,
		Currency:      s.settings.Currency,
		TransactionID: created.Ref,
		ClientSecret:  created.ClientSecret,
		PaymentMethod: s.primary.Name(),
		Status:        model.StatusPending,
	}

	if existing != nil {
		return s.supersede(ctx, existing, payment)
	}

	if err := s.repo.Create(ctx, payment); err != nil {
		if errors.Is(err, model.ErrPendingExists) {
			// 并发请求先写入了，返回胜出者
			return s.winner(ctx, bookingID)
		}
		return nil, err
	}

	s.log.Info("payment intent created",
		zap.String("payment_id", payment.ID),
		zap.String("booking_id", booking.ID),
		zap.String("transaction_id", payment.TransactionID),
		zap.String("method", payment.PaymentMethod))
	return model.IntentOf(payment, s.settings.Mode, false), nil
}

// isLive 渠道侧交易仍可支付（或已支付待确认）
func (s *paymentService) isLive(ctx context.Context, p *model.Payment) (bool, error) {
	status, err := s.providerFor(p.PaymentMethod).Retrieve(ctx, p.TransactionID)
	switch {
	case errors.Is(err, provider.ErrIntentNotFound):
		// 支付宝在买家打开收银台前查不到交易
		return s.settings.IntentTTL > 0 && s.now().Sub(p.UpdatedAt) < s.settings.IntentTTL, nil
	case err != nil:
		return false, model.ErrProviderUnavailable.Wrap(err)
	}
	return status != provider.StatusClosed, nil
}

func (s *paymentService) supersede(ctx context.Context, existing, replacement *model.Payment) (*model.Intent, error) {
	ok, err := s.repo.Supersede(ctx, existing.ID, existing.TransactionID, replacement)
	if err != nil {
		return nil, err
	}
	if !ok {
		return s.winner(ctx, existing.BookingID)
	}

	replacement.BaseModel = existing.BaseModel
	s.log.Info("payment intent superseded",
		zap.String("payment_id", existing.ID),
		zap.String("old_transaction_id", existing.TransactionID),
		zap.String("transaction_id", replacement.TransactionID))
	return model.IntentOf(replacement, s.settings.Mode, false), nil
}

func (s *paymentService) winner(ctx context.Context, bookingID string) (*model.Intent, error) {
	current, err := s.repo.FindPendingByBooking(ctx, bookingID)
	if errors.Is(err, model.ErrPaymentNotFound) {
		return nil, model.ErrPaymentInProgress
	}
	if err != nil {
		return nil, err
	}
	return model.IntentOf(current, s.settings.Mode, true), nil
}

func (s *paymentService) Confirm(ctx context.Context, ref string) (*model.ConfirmResult, error) {
	result, err := s.confirm(ctx, ref)
	s.metrics.RecordPayment("confirm", s.settings.Mode, metrics.Outcome(err, isBusiness))
	if err != nil {
		if isBusiness(err) {
			s.log.Info("payment confirmation rejected", zap.String("transaction_id", ref), zap.Error(err))
		} else {
			s.log.Error("confirm payment failed", zap.String("transaction_id", ref), zap.Error(err))
		}
		return nil, err
	}
	return result, nil
}

func (s *paymentService) confirm(ctx context.Context, ref string) (*model.ConfirmResult, error) {
	if ref == "" {
		return nil, errs.ErrInvalidInput.WithMessage("paymentIntentId is required")
	}

	payment, err := s.repo.GetByTransactionID(ctx, ref)
	if err != nil {
		return nil, err
	}
	if payment.Status == model.StatusCompleted {
		return alreadyConfirmed(payment), nil
	}

	// 渠道调用在事务之外
	status, err := s.providerFor(payment.PaymentMethod).Retrieve(ctx, ref)
	switch {
	case errors.Is(err, provider.ErrIntentNotFound):
		return nil, model.ErrVerificationFailed.Wrap(err)
	case err != nil:
		return nil, model.ErrProviderUnavailable.Wrap(err)
	case status != provider.StatusSucceeded:
		return nil, model.ErrVerificationFailed.WithDetail("providerStatus", string(status))
	}

	var completed, bookingConfirmed bool
	err = s.tx.Do(ctx, func(ctx context.Context) error {
		ok, err := s.repo.MarkCompleted(ctx, payment.ID, s.now())
		if err != nil {
			return err
		}
		if !ok {
			// 并发确认已完成
			return nil
		}
		completed = true

		bookingConfirmed, err = s.bookings.Transition(ctx, payment.BookingID, bookingModel.StatusConfirmed)
		return err
	})
	if err != nil {
		return nil, err
	}
	if !completed {
		return alreadyConfirmed(payment), nil
	}

	if !bookingConfirmed {
		// 付款期间预订已被取消：支付照常完成，预订保持原状态
		s.log.Warn("payment completed for a booking that is no longer pending",
			zap.String("payment_id", payment.ID),
			zap.String("booking_id", payment.BookingID))
	} else {
		s.log.Info("payment confirmed",
			zap.String("payment_id", payment.ID),
			zap.String("booking_id", payment.BookingID))
	}

	if err := s.publisher.Publish(ctx, broker.NewEvent(broker.EventPaymentConfirmed, map[string]interface{}{
		"paymentId":        payment.ID,
		"bookingId":        payment.BookingID,
		"transactionId":    payment.TransactionID,
		"amount":           payment.Amount,
		"currency":         payment.Currency,
		"bookingConfirmed": bookingConfirmed,
	})); err != nil {
		s.log.Warn("publish payment.confirmed failed", zap.String("payment_id", payment.ID), zap.Error(err))
	}

	return &model.ConfirmResult{
		Success:          true,
		Message:          "Payment confirmed successfully",
		PaymentID:        payment.ID,
		BookingID:        payment.BookingID,
		BookingConfirmed: bookingConfirmed,
	}, nil
}

func alreadyConfirmed(p *model.Payment) *model.ConfirmResult {
	return &model.ConfirmResult{
		Success:          true,
		Message:          "Payment already confirmed",
		PaymentID:        p.ID,
		BookingID:        p.BookingID,
		AlreadyConfirmed: true,
	}
}

func (s *paymentService) HandleNotification(ctx context.Context, channel string, r *http.Request) error {
	p, ok := s.providers[channel]
	if !ok {
		return errs.ErrInvalidInput.WithMessage("unsupported payment channel")
	}
	notifier, ok := p.(provider.Notifier)
	if !ok {
		return errs.ErrInvalidInput.WithMessage("unsupported payment channel")
	}

	n, err := notifier.ParseNotification(ctx, r)
	if err != nil {
		if errors.Is(err, provider.ErrNotificationUnsupported) {
			return errs.ErrInvalidInput.WithMessage("unsupported payment channel")
		}
		return model.ErrVerificationFailed.Wrap(err)
	}
	if !n.Paid {
		s.log.Info("ignoring unpaid notification", zap.String("channel", channel), zap.String("transaction_id", n.Ref))
		return nil
	}

	_, err = s.Confirm(ctx, n.Ref)
	return err
}

func (s *paymentService) History(ctx context.Context, userID string) ([]model.HistoryEntry, error) {
	if userID == "" {
		return nil, errs.ErrInvalidInput.WithMessage("user id is required")
	}
	return s.repo.History(ctx, userID)
}

func isBusiness(err error) bool {
	return errs.KindOf(err) != errs.KindInternal
}
