package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"event_marketplace/internal/domain/event/model"
	"event_marketplace/pkg/errs"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func openEvent(max int) *model.Event {
	e := &model.Event{
		HostID:          "host-1",
		Name:            "Rooftop Jazz",
		MaxParticipants: max,
		Status:          model.StatusOpen,
		JoiningFee:      decimal.NewFromInt(100),
		Date:            time.Now().Add(48 * time.Hour),
	}
	e.ID = "event-1"
	return e
}

func TestAdmit(t *testing.T) {
	ctx := context.Background()

	t.Run("admits when seats remain", func(t *testing.T) {
		repo := new(MockEventRepository)
		repo.On("SumBookedSeats", ctx, "event-1").Return(3, nil)
		ledger := NewCapacityLedger(repo)

		adm, err := ledger.Admit(ctx, openEvent(5), "user-1", 2)

		require.NoError(t, err)
		assert.Equal(t, 3, adm.BookedBefore)
		assert.Equal(t, 0, adm.Remaining)
	})

	t.Run("capacity exceeded carries remaining and requested", func(t *testing.T) {
		repo := new(MockEventRepository)
		repo.On("SumBookedSeats", ctx, "event-1").Return(4, nil)
		ledger := NewCapacityLedger(repo)

		_, err := ledger.Admit(ctx, openEvent(5), "user-1", 2)

		require.ErrorIs(t, err, model.ErrCapacityExceeded)
		e, _ := errs.As(err)
		assert.Equal(t, 1, e.Details["remaining"])
		assert.Equal(t, 2, e.Details["requested"])
		assert.Equal(t, "only 1 seat(s) left, requested 2", e.Message)
	})

	t.Run("rejects before counting", func(t *testing.T) {
		repo := new(MockEventRepository)
		ledger := NewCapacityLedger(repo)

		full := openEvent(5)
		full.Status = model.StatusFull
		_, err := ledger.Admit(ctx, full, "user-1", 1)
		assert.ErrorIs(t, err, model.ErrEventNotOpen)

		_, err = ledger.Admit(ctx, openEvent(5), "host-1", 1)
		assert.ErrorIs(t, err, model.ErrSelfBooking)

		_, err = ledger.Admit(ctx, openEvent(5), "user-1", 0)
		assert.ErrorIs(t, err, errs.ErrInvalidInput)

		past := openEvent(5)
		past.Date = time.Now().Add(-time.Hour)
		_, err = ledger.Admit(ctx, past, "user-1", 1)
		assert.ErrorIs(t, err, model.ErrEventNotOpen)

		repo.AssertNotCalled(t, "SumBookedSeats", mock.Anything, mock.Anything)
	})

	t.Run("overbooked total never yields negative remaining", func(t *testing.T) {
		repo := new(MockEventRepository)
		repo.On("SumBookedSeats", ctx, "event-1").Return(7, nil)

		_, err := NewCapacityLedger(repo).Admit(ctx, openEvent(5), "user-1", 1)

		e, _ := errs.As(err)
		assert.Equal(t, 0, e.Details["remaining"])
	})
}

func TestSettle(t *testing.T) {
	ctx := context.Background()

	t.Run("marks full when total reaches max", func(t *testing.T) {
		repo := new(MockEventRepository)
		repo.On("SumBookedSeats", ctx, "event-1").Return(1, nil)
		repo.On("UpdateStatus", ctx, "event-1", model.StatusFull).Return(nil)
		event := openEvent(1)

		full, err := NewCapacityLedger(repo).Settle(ctx, event)

		require.NoError(t, err)
		assert.True(t, full)
		assert.Equal(t, model.StatusFull, event.Status)
		repo.AssertExpectations(t)
	})

	t.Run("stays open below max", func(t *testing.T) {
		repo := new(MockEventRepository)
		repo.On("SumBookedSeats", ctx, "event-1").Return(2, nil)

		full, err := NewCapacityLedger(repo).Settle(ctx, openEvent(5))

		require.NoError(t, err)
		assert.False(t, full)
		repo.AssertNotCalled(t, "UpdateStatus", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("propagates count error", func(t *testing.T) {
		repo := new(MockEventRepository)
		repo.On("SumBookedSeats", ctx, "event-1").Return(0, errors.New("deadlock detected"))

		_, err := NewCapacityLedger(repo).Settle(ctx, openEvent(5))
		assert.Error(t, err)
	})
}

func TestRelease(t *testing.T) {
	ctx := context.Background()

	t.Run("reopens full event with a free seat", func(t *testing.T) {
		repo := new(MockEventRepository)
		repo.On("SumBookedSeats", ctx, "event-1").Return(0, nil)
		repo.On("UpdateStatus", ctx, "event-1", model.StatusOpen).Return(nil)
		event := openEvent(1)
		event.Status = model.StatusFull

		reopened, err := NewCapacityLedger(repo).Release(ctx, event)

		require.NoError(t, err)
		assert.True(t, reopened)
		assert.Equal(t, model.StatusOpen, event.Status)
	})

	t.Run("keeps full when still at capacity", func(t *testing.T) {
		repo := new(MockEventRepository)
		repo.On("SumBookedSeats", ctx, "event-1").Return(2, nil)
		event := openEvent(2)
		event.Status = model.StatusFull

		reopened, err := NewCapacityLedger(repo).Release(ctx, event)

		require.NoError(t, err)
		assert.False(t, reopened)
		repo.AssertNotCalled(t, "UpdateStatus", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("ignores events that are not full", func(t *testing.T) {
		repo := new(MockEventRepository)
		event := openEvent(2)
		event.Status = model.StatusCompleted

		reopened, err := NewCapacityLedger(repo).Release(ctx, event)

		require.NoError(t, err)
		assert.False(t, reopened)
		repo.AssertNotCalled(t, "SumBookedSeats", mock.Anything, mock.Anything)
	})
}
