package provider

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"event_marketplace/internal/pkg/config"
	"event_marketplace/pkg/metrics"
)

// Guarded 为渠道调用加上超时、熔断与耗时统计
type Guarded struct {
	inner   Provider
	breaker *CircuitBreaker
	timeout time.Duration
	metrics *metrics.MetricsCollector
}

func NewGuarded(inner Provider, breaker *CircuitBreaker, timeout time.Duration, m *metrics.MetricsCollector) *Guarded {
	return &Guarded{inner: inner, breaker: breaker, timeout: timeout, metrics: m}
}

func (g *Guarded) Name() string {
	return g.inner.Name()
}

func (g *Guarded) Create(ctx context.Context, req CreateRequest) (*Intent, error) {
	var intent *Intent
	err := g.call(ctx, "create", func(ctx context.Context) error {
		var err error
		intent, err = g.inner.Create(ctx, req)
		return err
	})
	return intent, err
}

func (g *Guarded) Retrieve(ctx context.Context, ref string) (Status, error) {
	var status Status
	var notFound bool
	err := g.call(ctx, "retrieve", func(ctx context.Context) error {
		s, err := g.inner.Retrieve(ctx, ref)
		// 交易不存在是正常应答，不计入熔断
		if errors.Is(err, ErrIntentNotFound) {
			notFound = true
			return nil
		}
		status = s
		return err
	})
	if err != nil {
		return "", err
	}
	if notFound {
		return "", ErrIntentNotFound
	}
	return status, nil
}

func (g *Guarded) ParseNotification(ctx context.Context, r *http.Request) (*Notification, error) {
	n, ok := g.inner.(Notifier)
	if !ok {
		return nil, ErrNotificationUnsupported
	}
	return n.ParseNotification(ctx, r)
}

func (g *Guarded) call(ctx context.Context, op string, fn func(ctx context.Context) error) error {
	if g.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.timeout)
		defer cancel()
	}

	start := time.Now()
	err := g.breaker.Call(func() error { return fn(ctx) })
	if !errors.Is(err, ErrCircuitOpen) {
		g.metrics.ObserveProvider(g.inner.Name(), op, time.Since(start), err)
	}
	return err
}

// New 按配置创建实际渠道，mode 为 fallback 时返回演示渠道
func New(ctx context.Context, cfg config.PaymentConfig, mode string, m *metrics.MetricsCollector) (Provider, error) {
	var inner Provider
	switch {
	case mode != config.PaymentModeLive:
		inner = NewFallbackProvider()
	case cfg.Channel == config.ChannelAlipay:
		p, err := NewAlipayProvider(cfg.Alipay)
		if err != nil {
			return nil, err
		}
		inner = p
	case cfg.Channel == config.ChannelWechat:
		p, err := NewWechatProvider(ctx, cfg.Wechat)
		if err != nil {
			return nil, err
		}
		inner = p
	default:
		return nil, fmt.Errorf("unsupported payment channel %q", cfg.Channel)
	}

	return NewGuarded(inner, NewCircuitBreaker(cfg.BreakerFailures, cfg.BreakerReset), cfg.ProviderTimeout, m), nil
}

var (
	_ Provider = (*Guarded)(nil)
	_ Notifier = (*Guarded)(nil)
)
