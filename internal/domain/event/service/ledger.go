package service

import (
	"context"
	"fmt"
	"time"

	"event_marketplace/internal/domain/event/model"
	"event_marketplace/internal/domain/event/repository"
	"event_marketplace/pkg/errs"
)

// Admission 准入结果
type Admission struct {
	EventID      string `json:"eventId"`
	Requested    int    `json:"requested"`
	BookedBefore int    `json:"bookedBefore"`
	Remaining    int    `json:"remaining"` // 准入后剩余座位
}

// CapacityLedger 座位账本，所有方法须在持有活动行锁的事务中调用
type CapacityLedger struct {
	repo repository.EventRepository
	now  func() time.Time
}

func NewCapacityLedger(repo repository.EventRepository) *CapacityLedger {
	return &CapacityLedger{repo: repo, now: time.Now}
}

// Admit 检查并准入 quantity 个座位；总数在事务内重新统计
func (l *CapacityLedger) Admit(ctx context.Context, event *model.Event, userID string, quantity int) (*Admission, error) {
	if quantity < 1 {
		return nil, errs.ErrInvalidInput.WithMessage("quantity must be at least 1")
	}
	if event.Status != model.StatusOpen || event.IsPast(l.now()) {
		return nil, model.ErrEventNotOpen.WithDetail("status", string(event.Status))
	}
	if event.HostID == userID {
		return nil, model.ErrSelfBooking
	}

	booked, err := l.repo.SumBookedSeats(ctx, event.ID)
	if err != nil {
		return nil, err
	}

	remaining := event.MaxParticipants - booked
	if remaining < 0 {
		remaining = 0
	}
	if quantity > remaining {
		return nil, model.ErrCapacityExceeded.
			WithMessage(fmt.Sprintf("only %d seat(s) left, requested %d", remaining, quantity)).
			WithDetail("remaining", remaining).
			WithDetail("requested", quantity)
	}

	return &Admission{
		EventID:      event.ID,
		Requested:    quantity,
		BookedBefore: booked,
		Remaining:    remaining - quantity,
	}, nil
}

// Settle 预订写入后重新统计，满员则置为 FULL
func (l *CapacityLedger) Settle(ctx context.Context, event *model.Event) (bool, error) {
	total, err := l.repo.SumBookedSeats(ctx, event.ID)
	if err != nil {
		return false, err
	}
	if total < event.MaxParticipants || event.Status == model.StatusFull {
		return false, nil
	}

	if err := l.repo.UpdateStatus(ctx, event.ID, model.StatusFull); err != nil {
		return false, err
	}
	event.Status = model.StatusFull
	return true, nil
}

// Release 取消预订后调用：FULL 且座位重新有空余时恢复 OPEN
func (l *CapacityLedger) Release(ctx context.Context, event *model.Event) (bool, error) {
	if event.Status != model.StatusFull {
		return false, nil
	}

	total, err := l.repo.SumBookedSeats(ctx, event.ID)
	if err != nil {
		return false, err
	}
	if total >= event.MaxParticipants {
		return false, nil
	}

	if err := l.repo.UpdateStatus(ctx, event.ID, model.StatusOpen); err != nil {
		return false, err
	}
	event.Status = model.StatusOpen
	return true, nil
}
