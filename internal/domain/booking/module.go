package booking

import (
	"event_marketplace/internal/domain/booking/handler"
	"event_marketplace/internal/domain/booking/repository"
	"event_marketplace/internal/domain/booking/service"
	couponRepo "event_marketplace/internal/domain/coupon/repository"
	couponService "event_marketplace/internal/domain/coupon/service"
	eventRepo "event_marketplace/internal/domain/event/repository"
	eventService "event_marketplace/internal/domain/event/service"
	"event_marketplace/internal/pkg/middleware"
	"event_marketplace/internal/pkg/registry"
	"event_marketplace/pkg/utils"

	"github.com/gin-gonic/gin"
)

// BookingModule 预订模块
type BookingModule struct{}

func init() {
	registry.Register(&BookingModule{})
}

func (m *BookingModule) Name() string {
	return "booking"
}

func (m *BookingModule) Priority() int {
	return 20
}

func (m *BookingModule) Init(ctx *registry.ModuleContext) error {
	// 1. 依赖注入
	bRepo := repository.NewBookingRepository(ctx.DB)
	eRepo := eventRepo.NewEventRepository(ctx.DB)
	eService := eventService.NewEventService(eRepo, ctx.Tx, bRepo, ctx.Publisher, ctx.Metrics, ctx.Logger)
	cService := couponService.NewCouponService(couponRepo.NewCouponRepository(ctx.DB), ctx.Metrics, ctx.Logger)
	bService := service.NewBookingService(bRepo, eRepo, eService, cService, ctx.Tx, ctx.Publisher, ctx.Metrics, ctx.Logger)
	bHandler := handler.NewBookingHandler(bService)

	// 2. 路由注册
	setupRoutes(ctx.Router, bHandler)

	return nil
}

func setupRoutes(r *gin.Engine, h *handler.BookingHandler) {
	g := r.Group("/bookings")

	g.POST("/validate-coupon", h.ValidateCoupon)

	auth := g.Group("")
	auth.Use(middleware.AuthMiddleware())
	{
		auth.POST("", h.CreateBooking)
		auth.PATCH("/:id/cancel", h.CancelBooking)
		auth.GET("/my-bookings", h.GetMyBookings)
	}

	host := g.Group("/event")
	host.Use(middleware.AuthMiddleware(), middleware.RoleMiddleware(utils.RoleHost, utils.RoleAdmin))
	{
		host.GET("/:eventId", h.GetEventBookings)
	}
}
