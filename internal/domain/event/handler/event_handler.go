package handler

import (
	"net/http"

	"event_marketplace/internal/domain/event/service"
	"event_marketplace/internal/pkg/middleware"
	"event_marketplace/pkg/response"

	"github.com/gin-gonic/gin"
)

type EventHandler struct {
	service service.EventService
}

func NewEventHandler(service service.EventService) *EventHandler {
	return &EventHandler{service: service}
}

// GetEvent 活动详情
// @Summary 活动详情
// @Tags events
// @Produce json
// @Param id path string true "活动ID"
// @Success 200 {object} response.Response
// @Router /events/{id} [get]
func (h *EventHandler) GetEvent(c *gin.Context) {
	event, err := h.service.GetEvent(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, event)
}

// CreateEvent 主办方创建活动
// @Summary 创建活动
// @Tags events
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body service.CreateEventInput true "活动"
// @Success 201 {object} response.Response
// @Router /events [post]
func (h *EventHandler) CreateEvent(c *gin.Context) {
	userID, _, ok := middleware.CurrentUser(c)
	if !ok {
		response.Error(c, http.StatusUnauthorized, response.ErrTokenInvalid, "User not authenticated")
		return
	}

	var input service.CreateEventInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.Error(c, http.StatusBadRequest, response.ErrInvalidParam, err.Error())
		return
	}
	input.HostID = userID

	event, err := h.service.CreateEvent(c.Request.Context(), input)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Created(c, event)
}
