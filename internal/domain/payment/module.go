package payment

import (
	"context"

	bookingRepo "event_marketplace/internal/domain/booking/repository"
	"event_marketplace/internal/domain/payment/handler"
	"event_marketplace/internal/domain/payment/provider"
	"event_marketplace/internal/domain/payment/repository"
	"event_marketplace/internal/domain/payment/service"
	"event_marketplace/internal/pkg/config"
	"event_marketplace/internal/pkg/middleware"
	"event_marketplace/internal/pkg/registry"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// PaymentModule 支付模块
type PaymentModule struct{}

func init() {
	registry.Register(&PaymentModule{})
}

func (m *PaymentModule) Name() string {
	return "payment"
}

func (m *PaymentModule) Priority() int {
	// 支付模块依赖预订模块，所以优先级较低
	return 30
}

func (m *PaymentModule) Init(ctx *registry.ModuleContext) error {
	cfg := ctx.Config.Payment
	mode := cfg.ResolveMode(ctx.Config.App.Env)

	// 1. 支付渠道：模式在启动时确定
	primary, err := provider.New(context.Background(), cfg, mode, ctx.Metrics)
	if err != nil {
		return err
	}

	// 2. 依赖注入
	pRepo := repository.NewPaymentRepository(ctx.DB, ctx.SQLX)
	bRepo := bookingRepo.NewBookingRepository(ctx.DB)
	pService := service.NewPaymentService(pRepo, bRepo, primary, ctx.Tx, ctx.Locker, ctx.Publisher, ctx.Metrics, ctx.Logger, service.Settings{
		Mode:           mode,
		Currency:       cfg.Currency,
		LockTTL:        cfg.IntentLockTTL,
		IntentTTL:      cfg.IntentTTL,
		AcceptDemoRefs: cfg.AcceptDemoRefs,
	})
	if mode == config.PaymentModeLive && cfg.AcceptDemoRefs {
		ctx.Logger.Warn("live payment mode accepts demo references", zap.String("method", primary.Name()))
	}
	pHandler := handler.NewPaymentHandler(pService)

	ctx.Logger.Info("payment provider ready",
		zap.String("mode", mode),
		zap.String("method", primary.Name()),
		zap.String("currency", cfg.Currency))

	// 3. 路由注册
	setupRoutes(ctx.Router, pHandler)

	return nil
}

func setupRoutes(r *gin.Engine, h *handler.PaymentHandler) {
	g := r.Group("/payment")

	g.GET("/mode", h.Mode)

	// 支付回调 (无需鉴权，但需验签)
	g.POST("/notify/alipay", h.AlipayNotify)
	g.POST("/notify/wechat", h.WechatNotify)

	// 需要鉴权的接口
	auth := g.Group("")
	auth.Use(middleware.AuthMiddleware())
	{
		auth.POST("/create-intent", h.CreateIntent)
		auth.POST("/confirm", h.Confirm)
		auth.GET("/history", h.History)
	}
}
