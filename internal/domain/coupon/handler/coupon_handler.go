package handler

import (
	"net/http"

	"event_marketplace/internal/domain/coupon/service"
	"event_marketplace/pkg/response"

	"github.com/gin-gonic/gin"
)

type CouponHandler struct {
	service service.CouponService
}

func NewCouponHandler(service service.CouponService) *CouponHandler {
	return &CouponHandler{service: service}
}

// CreateCoupon 创建优惠码
// @Summary 创建优惠码
// @Tags coupons
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body service.CreateCouponInput true "优惠码"
// @Success 201 {object} response.Response
// @Router /coupons [post]
func (h *CouponHandler) CreateCoupon(c *gin.Context) {
	var input service.CreateCouponInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.Error(c, http.StatusBadRequest, response.ErrInvalidParam, err.Error())
		return
	}

	coupon, err := h.service.CreateCoupon(c.Request.Context(), input)
	if err != nil {
		response.FromError(c, err)
		return
	}

	response.Created(c, coupon)
}

// GetCoupon 查询优惠码
// @Summary 查询优惠码
// @Tags coupons
// @Produce json
// @Param code path string true "优惠码"
// @Success 200 {object} response.Response
// @Router /coupons/{code} [get]
func (h *CouponHandler) GetCoupon(c *gin.Context) {
	coupon, err := h.service.GetCoupon(c.Request.Context(), c.Param("code"))
	if err != nil {
		response.FromError(c, err)
		return
	}

	response.Success(c, gin.H{
		"code":      coupon.Code,
		"type":      coupon.Type,
		"discount":  coupon.Discount,
		"isActive":  coupon.IsActive,
		"expiresAt": coupon.ExpiresAt,
		"minAmount": coupon.MinAmount,
		"remaining": coupon.Remaining(),
	})
}
