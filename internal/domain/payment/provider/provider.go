package provider

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Status 支付渠道侧的交易状态
type Status string

const (
	StatusPending   Status = "pending"
	StatusSucceeded Status = "succeeded"
	StatusClosed    Status = "closed"
)

// ErrIntentNotFound 渠道侧不存在该交易，可以重建
var ErrIntentNotFound = errors.New("payment intent not found at provider")

// ErrNotificationUnsupported 渠道不支持异步通知
var ErrNotificationUnsupported = errors.New("provider does not support notifications")

// CreateRequest 发起支付参数
type CreateRequest struct {
	Amount   decimal.Decimal
	Currency string
	Subject  string
	Metadata map[string]string
	// Expire 渠道侧交易有效期，0 使用渠道默认值
	Expire time.Duration
}

// Intent 渠道返回的支付凭据
type Intent struct {
	Ref          string
	ClientSecret string
}

// Notification 异步通知解析结果
type Notification struct {
	Ref  string
	Paid bool
}

// Provider 支付渠道
type Provider interface {
	// Name 同时作为 payments.payment_method 的取值
	Name() string
	Create(ctx context.Context, req CreateRequest) (*Intent, error)
	Retrieve(ctx context.Context, ref string) (Status, error)
}

// Notifier 支持验签异步通知的渠道
type Notifier interface {
	ParseNotification(ctx context.Context, r *http.Request) (*Notification, error)
}

// newRef 生成商户订单号，32 位以内满足两个渠道的长度限制
func newRef(prefix string) string {
	return prefix + strings.ReplaceAll(uuid.NewString(), "-", "")[:32-len(prefix)]
}
