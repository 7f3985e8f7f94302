package handler

import (
	"net/http"

	"event_marketplace/internal/domain/payment/provider"
	"event_marketplace/internal/domain/payment/service"
	"event_marketplace/internal/pkg/middleware"
	"event_marketplace/pkg/logger"
	"event_marketplace/pkg/response"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type PaymentHandler struct {
	service service.PaymentService
}

func NewPaymentHandler(s service.PaymentService) *PaymentHandler {
	return &PaymentHandler{service: s}
}

type CreateIntentInput struct {
	BookingID string `json:"bookingId" binding:"required"`
}

type ConfirmInput struct {
	PaymentIntentID string `json:"paymentIntentId" binding:"required"`
}

// CreateIntent 创建支付凭据
// @Summary 创建支付凭据
// @Tags Payment
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param input body CreateIntentInput true "预订"
// @Success 200 {object} response.Response{data=model.Intent}
// @Failure 502 {object} response.Response
// @Router /payment/create-intent [post]
func (h *PaymentHandler) CreateIntent(c *gin.Context) {
	userID, _, ok := middleware.CurrentUser(c)
	if !ok {
		response.Error(c, http.StatusUnauthorized, response.ErrTokenInvalid, "User not authenticated")
		return
	}

	var input CreateIntentInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.Error(c, http.StatusBadRequest, response.ErrInvalidParam, err.Error())
		return
	}

	intent, err := h.service.CreateIntent(c.Request.Context(), input.BookingID, userID)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, intent)
}

// Confirm 确认支付
// @Summary 确认支付
// @Tags Payment
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param input body ConfirmInput true "支付凭据"
// @Success 200 {object} response.Response{data=model.ConfirmResult}
// @Router /payment/confirm [post]
func (h *PaymentHandler) Confirm(c *gin.Context) {
	var input ConfirmInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.Error(c, http.StatusBadRequest, response.ErrInvalidParam, err.Error())
		return
	}

	result, err := h.service.Confirm(c.Request.Context(), input.PaymentIntentID)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, result)
}

// History 支付历史
// @Summary 支付历史
// @Tags Payment
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Response{data=[]model.HistoryEntry}
// @Router /payment/history [get]
func (h *PaymentHandler) History(c *gin.Context) {
	userID, _, ok := middleware.CurrentUser(c)
	if !ok {
		response.Error(c, http.StatusUnauthorized, response.ErrTokenInvalid, "User not authenticated")
		return
	}

	entries, err := h.service.History(c.Request.Context(), userID)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, entries)
}

// Mode 当前支付模式
// @Summary 当前支付模式
// @Tags Payment
// @Produce json
// @Success 200 {object} response.Response
// @Router /payment/mode [get]
func (h *PaymentHandler) Mode(c *gin.Context) {
	response.Success(c, gin.H{"mode": h.service.Mode()})
}

// AlipayNotify 支付宝回调
// @Summary 支付宝回调
// @Tags Payment
// @Router /payment/notify/alipay [post]
func (h *PaymentHandler) AlipayNotify(c *gin.Context) {
	if err := h.service.HandleNotification(c.Request.Context(), provider.MethodAlipay, c.Request); err != nil {
		logger.Log.Warn("alipay notification failed", zap.Error(err))
		c.String(http.StatusOK, "fail") // 告诉支付宝处理失败，它会重试
		return
	}
	c.String(http.StatusOK, "success")
}

// WechatNotify 微信支付回调
// @Summary 微信支付回调
// @Tags Payment
// @Router /payment/notify/wechat [post]
func (h *PaymentHandler) WechatNotify(c *gin.Context) {
	if err := h.service.HandleNotification(c.Request.Context(), provider.MethodWechat, c.Request); err != nil {
		logger.Log.Warn("wechat notification failed", zap.Error(err))
		// 返回 4xx/5xx 表示失败，微信会重试
		c.JSON(http.StatusInternalServerError, gin.H{"code": "FAIL", "message": err.Error()})
		return
	}
	c.Status(http.StatusOK)
}
