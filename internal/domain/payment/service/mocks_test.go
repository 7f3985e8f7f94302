package service

import (
	"context"
	"net/http"
	"time"

	bookingModel "event_marketplace/internal/domain/booking/model"
	"event_marketplace/internal/domain/payment/model"
	"event_marketplace/internal/domain/payment/provider"
	"event_marketplace/internal/pkg/broker"

	"github.com/stretchr/testify/mock"
)

// MockPaymentRepository is a mock of PaymentRepository
type MockPaymentRepository struct {
	mock.Mock
}

func (m *MockPaymentRepository) Create(ctx context.Context, payment *model.Payment) error {
	args := m.Called(ctx, payment)
	if args.Error(0) == nil && payment.ID == "" {
		payment.ID = "payment-new"
	}
	return args.Error(0)
}

func (m *MockPaymentRepository) FindPendingByBooking(ctx context.Context, bookingID string) (*model.Payment, error) {
	args := m.Called(ctx, bookingID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Payment), args.Error(1)
}

func (m *MockPaymentRepository) GetByTransactionID(ctx context.Context, transactionID string) (*model.Payment, error) {
	args := m.Called(ctx, transactionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Payment), args.Error(1)
}

func (m *MockPaymentRepository) Supersede(ctx context.Context, id, oldRef string, replacement *model.Payment) (bool, error) {
	args := m.Called(ctx, id, oldRef, replacement)
	return args.Bool(0), args.Error(1)
}

func (m *MockPaymentRepository) MarkCompleted(ctx context.Context, id string, at time.Time) (bool, error) {
	args := m.Called(ctx, id, at)
	return args.Bool(0), args.Error(1)
}

func (m *MockPaymentRepository) History(ctx context.Context, userID string) ([]model.HistoryEntry, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.HistoryEntry), args.Error(1)
}

// MockBookingStore is a mock of BookingStore
type MockBookingStore struct {
	mock.Mock
}

func (m *MockBookingStore) GetByID(ctx context.Context, id string) (*bookingModel.Booking, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*bookingModel.Booking), args.Error(1)
}

func (m *MockBookingStore) Transition(ctx context.Context, id string, to bookingModel.BookingStatus) (bool, error) {
	args := m.Called(ctx, id, to)
	return args.Bool(0), args.Error(1)
}

// MockProvider is a mock of provider.Provider and provider.Notifier
type MockProvider struct {
	mock.Mock
	name string
}

func (m *MockProvider) Name() string {
	return m.name
}

func (m *MockProvider) Create(ctx context.Context, req provider.CreateRequest) (*provider.Intent, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*provider.Intent), args.Error(1)
}

func (m *MockProvider) Retrieve(ctx context.Context, ref string) (provider.Status, error) {
	args := m.Called(ctx, ref)
	return args.Get(0).(provider.Status), args.Error(1)
}

func (m *MockProvider) ParseNotification(ctx context.Context, r *http.Request) (*provider.Notification, error) {
	args := m.Called(ctx, r)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*provider.Notification), args.Error(1)
}

// MockPublisher is a mock of broker.Publisher
type MockPublisher struct {
	mock.Mock
}

func (m *MockPublisher) Publish(ctx context.Context, ev broker.Event) error {
	args := m.Called(ctx, ev)
	return args.Error(0)
}

// stubLocker 返回预设结果，记录释放次数
type stubLocker struct {
	err      error
	released int
}

func (l *stubLocker) Acquire(ctx context.Context, key string, ttl time.Duration) (func(), error) {
	if l.err != nil {
		return nil, l.err
	}
	return func() { l.released++ }, nil
}

// fakeTx 直接执行 fn，记录调用次数
type fakeTx struct {
	calls int
}

func (f *fakeTx) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	f.calls++
	return fn(ctx)
}
