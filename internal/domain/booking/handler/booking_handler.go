package handler

import (
	"net/http"

	"event_marketplace/internal/domain/booking/service"
	"event_marketplace/internal/pkg/middleware"
	"event_marketplace/pkg/response"

	"github.com/gin-gonic/gin"
)

// CreateBookingRequest 下单请求
type CreateBookingRequest struct {
	EventID    string `json:"eventId"`
	Quantity   *int   `json:"quantity"` // 缺省为 1
	CouponCode string `json:"couponCode"`
}

// ValidateCouponRequest 优惠码试算请求
type ValidateCouponRequest struct {
	Code     string `json:"code"`
	EventID  string `json:"eventId"`
	Quantity *int   `json:"quantity"`
}

type BookingHandler struct {
	service service.BookingService
}

func NewBookingHandler(service service.BookingService) *BookingHandler {
	return &BookingHandler{service: service}
}

func quantityOrDefault(q *int) int {
	if q == nil {
		return 1
	}
	return *q
}

// CreateBooking 预订活动
// @Summary 预订活动
// @Tags bookings
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body CreateBookingRequest true "预订"
// @Success 201 {object} response.Response
// @Failure 409 {object} response.Response
// @Router /bookings [post]
func (h *BookingHandler) CreateBooking(c *gin.Context) {
	userID, _, ok := middleware.CurrentUser(c)
	if !ok {
		response.Error(c, http.StatusUnauthorized, response.ErrTokenInvalid, "User not authenticated")
		return
	}

	var req CreateBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, response.ErrInvalidParam, err.Error())
		return
	}

	booking, err := h.service.CreateBooking(c.Request.Context(), service.CreateBookingInput{
		UserID:     userID,
		EventID:    req.EventID,
		Quantity:   quantityOrDefault(req.Quantity),
		CouponCode: req.CouponCode,
	})
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Created(c, booking)
}

// CancelBooking 取消预订
// @Summary 取消预订
// @Tags bookings
// @Produce json
// @Security BearerAuth
// @Param id path string true "预订ID"
// @Success 200 {object} response.Response
// @Router /bookings/{id}/cancel [patch]
func (h *BookingHandler) CancelBooking(c *gin.Context) {
	userID, _, ok := middleware.CurrentUser(c)
	if !ok {
		response.Error(c, http.StatusUnauthorized, response.ErrTokenInvalid, "User not authenticated")
		return
	}

	booking, err := h.service.CancelBooking(c.Request.Context(), c.Param("id"), userID)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, booking)
}

// ValidateCoupon 优惠码试算
// @Summary 优惠码试算
// @Tags bookings
// @Accept json
// @Produce json
// @Param body body ValidateCouponRequest true "试算"
// @Success 200 {object} response.Response
// @Router /bookings/validate-coupon [post]
func (h *BookingHandler) ValidateCoupon(c *gin.Context) {
	var req ValidateCouponRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, response.ErrInvalidParam, err.Error())
		return
	}

	quote, err := h.service.ValidateCoupon(c.Request.Context(), service.ValidateCouponInput{
		Code:     req.Code,
		EventID:  req.EventID,
		Quantity: quantityOrDefault(req.Quantity),
	})
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, quote)
}

// GetMyBookings 我的预订
// @Summary 我的预订
// @Tags bookings
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Response
// @Router /bookings/my-bookings [get]
func (h *BookingHandler) GetMyBookings(c *gin.Context) {
	userID, _, ok := middleware.CurrentUser(c)
	if !ok {
		response.Error(c, http.StatusUnauthorized, response.ErrTokenInvalid, "User not authenticated")
		return
	}

	views, err := h.service.ListMyBookings(c.Request.Context(), userID)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, views)
}

// GetEventBookings 活动的预订列表
// @Summary 活动的预订列表
// @Tags bookings
// @Produce json
// @Security BearerAuth
// @Param eventId path string true "活动ID"
// @Success 200 {object} response.Response
// @Router /bookings/event/{eventId} [get]
func (h *BookingHandler) GetEventBookings(c *gin.Context) {
	userID, role, ok := middleware.CurrentUser(c)
	if !ok {
		response.Error(c, http.StatusUnauthorized, response.ErrTokenInvalid, "User not authenticated")
		return
	}

	views, err := h.service.ListEventBookings(c.Request.Context(), c.Param("eventId"), userID, role)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, views)
}
