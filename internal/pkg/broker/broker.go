package broker

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// 领域事件类型，同时作为路由键
const (
	EventBookingCreated   = "booking.created"
	EventBookingCancelled = "booking.cancelled"
	EventPaymentConfirmed = "payment.confirmed"
	EventEventCompleted   = "event.completed"
)

// Event 领域事件
type Event struct {
	ID         string      `json:"id"`
	Type       string      `json:"type"`
	OccurredAt time.Time   `json:"occurredAt"`
	Payload    interface{} `json:"payload"`
}

// NewEvent 创建领域事件
func NewEvent(eventType string, payload interface{}) Event {
	return Event{
		ID:         uuid.NewString(),
		Type:       eventType,
		OccurredAt: time.Now().UTC(),
		Payload:    payload,
	}
}

// Publisher 事务提交后发布领域事件，失败不影响主流程
type Publisher interface {
	Publish(ctx context.Context, ev Event) error
}

// LogPublisher 未配置消息队列时只记录日志
type LogPublisher struct {
	log *zap.Logger
}

func NewLogPublisher(log *zap.Logger) *LogPublisher {
	return &LogPublisher{log: log}
}

func (p *LogPublisher) Publish(ctx context.Context, ev Event) error {
	p.log.Debug("domain event",
		zap.String("id", ev.ID),
		zap.String("type", ev.Type),
		zap.Any("payload", ev.Payload))
	return nil
}
