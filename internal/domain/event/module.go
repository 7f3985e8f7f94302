package event

import (
	bookingRepo "event_marketplace/internal/domain/booking/repository"
	"event_marketplace/internal/domain/event/handler"
	"event_marketplace/internal/domain/event/repository"
	"event_marketplace/internal/domain/event/service"
	"event_marketplace/internal/pkg/middleware"
	"event_marketplace/internal/pkg/registry"
	"event_marketplace/pkg/utils"

	"github.com/gin-gonic/gin"
)

// EventModule 活动模块
type EventModule struct{}

func init() {
	registry.Register(&EventModule{})
}

func (m *EventModule) Name() string {
	return "event"
}

func (m *EventModule) Priority() int {
	return 10
}

func (m *EventModule) Init(ctx *registry.ModuleContext) error {
	// 1. 依赖注入
	eRepo := repository.NewEventRepository(ctx.DB)
	bRepo := bookingRepo.NewBookingRepository(ctx.DB)
	eService := service.NewEventService(eRepo, ctx.Tx, bRepo, ctx.Publisher, ctx.Metrics, ctx.Logger)
	eHandler := handler.NewEventHandler(eService)

	// 2. 路由注册
	setupRoutes(ctx.Router, eHandler)

	return nil
}

func setupRoutes(r *gin.Engine, h *handler.EventHandler) {
	g := r.Group("/events")

	g.GET("/:id", h.GetEvent)

	host := g.Group("")
	host.Use(middleware.AuthMiddleware(), middleware.RoleMiddleware(utils.RoleHost, utils.RoleAdmin))
	{
		host.POST("", h.CreateEvent)
	}
}
