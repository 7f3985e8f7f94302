package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"event_marketplace/internal/domain/payment/model"
	"event_marketplace/internal/pkg/txn"
	"event_marketplace/pkg/database"

	"github.com/jmoiron/sqlx"
	"gorm.io/gorm"
)

type PaymentRepository interface {
	// Create 该预订已有 PENDING 支付时返回 ErrPendingExists
	Create(ctx context.Context, payment *model.Payment) error
	// FindPendingByBooking 没有时返回 ErrPaymentNotFound
	FindPendingByBooking(ctx context.Context, bookingID string) (*model.Payment, error)
	GetByTransactionID(ctx context.Context, transactionID string) (*model.Payment, error)
	// Supersede 原地替换失效的渠道凭据，仅当 oldRef 仍是当前 PENDING 凭据时生效
	Supersede(ctx context.Context, id, oldRef string, replacement *model.Payment) (bool, error)
	// MarkCompleted 条件更新 PENDING → COMPLETED
	MarkCompleted(ctx context.Context, id string, at time.Time) (bool, error)
	History(ctx context.Context, userID string) ([]model.HistoryEntry, error)
}

type paymentRepository struct {
	db  *gorm.DB
	sdb *sqlx.DB
}

func NewPaymentRepository(db *gorm.DB, sdb *sqlx.DB) PaymentRepository {
	return &paymentRepository{db: db, sdb: sdb}
}

func (r *paymentRepository) Create(ctx context.Context, payment *model.Payment) error {
	err := txn.DB(ctx, r.db).Create(payment).Error
	if database.IsUniqueViolation(err) {
		return model.ErrPendingExists.Wrap(err)
	}
	if err != nil {
		return fmt.Errorf("create payment: %w", err)
	}
	return nil
}

func (r *paymentRepository) FindPendingByBooking(ctx context.Context, bookingID string) (*model.Payment, error) {
	var payment model.Payment
	err := txn.DB(ctx, r.db).
		Where("booking_id = ? AND status = ?", bookingID, model.StatusPending).
		First(&payment).Error
	return r.found(&payment, err)
}

func (r *paymentRepository) GetByTransactionID(ctx context.Context, transactionID string) (*model.Payment, error) {
	var payment model.Payment
	err := txn.DB(ctx, r.db).Where("transaction_id = ?", transactionID).First(&payment).Error
	return r.found(&payment, err)
}

func (r *paymentRepository) found(payment *model.Payment, err error) (*model.Payment, error) {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, model.ErrPaymentNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get payment: %w", err)
	}
	return payment, nil
}

func (r *paymentRepository) Supersede(ctx context.Context, id, oldRef string, replacement *model.Payment) (bool, error) {
	res := txn.DB(ctx, r.db).Model(&model.Payment{}).
		Where("id = ? AND transaction_id = ? AND status = ?", id, oldRef, model.StatusPending).
		Updates(map[string]interface{}{
			"transaction_id": replacement.TransactionID,
			"client_secret":  replacement.ClientSecret,
			"payment_method": replacement.PaymentMethod,
			"amount":         replacement.Amount,
			"currency":       replacement.Currency,
		})
	if res.Error != nil {
		return false, fmt.Errorf("supersede payment %s: %w", id, res.Error)
	}
	return res.RowsAffected > 0, nil
}

func (r *paymentRepository) MarkCompleted(ctx context.Context, id string, at time.Time) (bool, error) {
	res := txn.DB(ctx, r.db).Model(&model.Payment{}).
		Where("id = ? AND status = ?", id, model.StatusPending).
		Updates(map[string]interface{}{
			"status":       model.StatusCompleted,
			"completed_at": at,
		})
	if res.Error != nil {
		return false, fmt.Errorf("complete payment %s: %w", id, res.Error)
	}
	return res.RowsAffected > 0, nil
}

const historyQuery = `
SELECT p.id, p.booking_id, p.amount, p.currency, p.transaction_id, p.payment_method, p.status,
       p.completed_at, p.created_at, b.quantity, b.status AS booking_status,
       e.id AS event_id, e.name AS event_name, e.date AS event_date
FROM payments p
JOIN bookings b ON b.id = p.booking_id
JOIN events e ON e.id = b.event_id
WHERE b.user_id = $1 AND p.deleted_at IS NULL
ORDER BY p.created_at DESC`

func (r *paymentRepository) History(ctx context.Context, userID string) ([]model.HistoryEntry, error) {
	entries := []model.HistoryEntry{}
	if err := r.sdb.SelectContext(ctx, &entries, historyQuery, userID); err != nil {
		return nil, fmt.Errorf("payment history of %s: %w", userID, err)
	}
	return entries, nil
}
