package model

import (
	"time"

	baseModel "event_marketplace/pkg/model"

	"github.com/shopspring/decimal"
)

// PaymentStatus 支付状态
type PaymentStatus string

const (
	StatusPending   PaymentStatus = "PENDING"
	StatusCompleted PaymentStatus = "COMPLETED"
)

// Payment 支付记录，每个预订至多一条 PENDING
type Payment struct {
	baseModel.BaseModel
	BookingID     string          `gorm:"type:uuid;not null;index;uniqueIndex:idx_payments_booking_pending,where:status = 'PENDING'" json:"bookingId"`
	Amount        decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"amount"`
	Currency      string          `gorm:"type:varchar(3);not null" json:"currency"`
	TransactionID string          `gorm:"type:varchar(64);uniqueIndex;not null" json:"transactionId"`
	ClientSecret  string          `gorm:"type:text" json:"-"`
	PaymentMethod string          `gorm:"type:varchar(20);not null" json:"paymentMethod"`
	Status        PaymentStatus   `gorm:"type:varchar(20);index;not null" json:"status"`
	CompletedAt   *time.Time      `json:"completedAt"`
}

// Intent 返回给客户端的支付凭据
type Intent struct {
	PaymentID       string          `json:"paymentId"`
	BookingID       string          `json:"bookingId"`
	PaymentIntentID string          `json:"paymentIntentId"`
	ClientSecret    string          `json:"clientSecret"`
	Amount          decimal.Decimal `json:"amount"`
	Currency        string          `json:"currency"`
	Method          string          `json:"paymentMethod"`
	Mode            string          `json:"mode"`
	Reused          bool            `json:"reused"`
}

// IntentOf 由支付记录构造凭据
func IntentOf(p *Payment, mode string, reused bool) *Intent {
	return &Intent{
		PaymentID:       p.ID,
		BookingID:       p.BookingID,
		PaymentIntentID: p.TransactionID,
		ClientSecret:    p.ClientSecret,
		Amount:          p.Amount,
		Currency:        p.Currency,
		Method:          p.PaymentMethod,
		Mode:            mode,
		Reused:          reused,
	}
}

// ConfirmResult 确认结果
type ConfirmResult struct {
	Success          bool   `json:"success"`
	Message          string `json:"message"`
	PaymentID        string `json:"paymentId"`
	BookingID        string `json:"bookingId"`
	BookingConfirmed bool   `json:"bookingConfirmed"`
	AlreadyConfirmed bool   `json:"alreadyConfirmed"`
}

// HistoryEntry 支付历史读模型
type HistoryEntry struct {
	ID            string          `db:"id" json:"id"`
	BookingID     string          `db:"booking_id" json:"bookingId"`
	Amount        decimal.Decimal `db:"amount" json:"amount"`
	Currency      string          `db:"currency" json:"currency"`
	TransactionID string          `db:"transaction_id" json:"transactionId"`
	PaymentMethod string          `db:"payment_method" json:"paymentMethod"`
	Status        string          `db:"status" json:"status"`
	CompletedAt   *time.Time      `db:"completed_at" json:"completedAt"`
	CreatedAt     time.Time       `db:"created_at" json:"createdAt"`
	Quantity      int             `db:"quantity" json:"quantity"`
	BookingStatus string          `db:"booking_status" json:"bookingStatus"`
	EventID       string          `db:"event_id" json:"eventId"`
	EventName     string          `db:"event_name" json:"eventName"`
	EventDate     time.Time       `db:"event_date" json:"eventDate"`
}
