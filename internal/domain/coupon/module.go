package coupon

import (
	"event_marketplace/internal/domain/coupon/handler"
	"event_marketplace/internal/domain/coupon/repository"
	"event_marketplace/internal/domain/coupon/service"
	"event_marketplace/internal/pkg/middleware"
	"event_marketplace/internal/pkg/registry"

	"github.com/gin-gonic/gin"
)

// CouponModule 优惠码模块
type CouponModule struct{}

func init() {
	registry.Register(&CouponModule{})
}

func (m *CouponModule) Name() string {
	return "coupon"
}

func (m *CouponModule) Priority() int {
	return 10
}

func (m *CouponModule) Init(ctx *registry.ModuleContext) error {
	// 1. 依赖注入
	cRepo := repository.NewCouponRepository(ctx.DB)
	cService := service.NewCouponService(cRepo, ctx.Metrics, ctx.Logger)
	cHandler := handler.NewCouponHandler(cService)

	// 2. 路由注册
	setupRoutes(ctx.Router, cHandler)

	return nil
}

func setupRoutes(r *gin.Engine, h *handler.CouponHandler) {
	g := r.Group("/coupons")

	g.GET("/:code", h.GetCoupon)

	// 需要管理员权限的路由组
	admin := g.Group("")
	admin.Use(middleware.AuthMiddleware(), middleware.AdminMiddleware())
	{
		admin.POST("", h.CreateCoupon)
	}
}
