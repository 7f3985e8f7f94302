package model

import (
	"time"

	baseModel "event_marketplace/pkg/model"

	"github.com/shopspring/decimal"
)

// EventStatus 活动状态
type EventStatus string

const (
	StatusOpen      EventStatus = "OPEN"
	StatusFull      EventStatus = "FULL"
	StatusCancelled EventStatus = "CANCELLED"
	StatusCompleted EventStatus = "COMPLETED"
)

// Event 活动
type Event struct {
	baseModel.BaseModel
	HostID          string          `gorm:"type:uuid;index;not null" json:"hostId"`
	Name            string          `gorm:"type:varchar(200);not null" json:"name"`
	MaxParticipants int             `gorm:"not null" json:"maxParticipants"`
	Status          EventStatus     `gorm:"type:varchar(20);index;not null" json:"status"`
	JoiningFee      decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"joiningFee"`
	Date            time.Time       `gorm:"index;not null" json:"date"`
}

// IsPast 活动时间已过
func (e *Event) IsPast(now time.Time) bool {
	return e.Date.Before(now)
}

// NeedsCompletion 已过期且未完结的活动需要补做完结；取消的活动保持取消
func (e *Event) NeedsCompletion(now time.Time) bool {
	return e.IsPast(now) && e.Status != StatusCompleted && e.Status != StatusCancelled
}
