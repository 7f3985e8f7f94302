package response

import (
	"net/http"

	"event_marketplace/pkg/errs"

	"github.com/gin-gonic/gin"
)

// Response 统一响应结构
type Response struct {
	Code    int         `json:"code"`              // 业务码
	Message string      `json:"message"`           // 提示信息
	Data    interface{} `json:"data"`              // 数据
	Details interface{} `json:"details,omitempty"` // 错误详情
}

// Success 成功响应
func Success(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, Response{
		Code:    CodeSuccess,
		Message: "success",
		Data:    data,
	})
}

// Created 创建成功响应
func Created(c *gin.Context, data interface{}) {
	c.JSON(http.StatusCreated, Response{
		Code:    CodeSuccess,
		Message: "success",
		Data:    data,
	})
}

// Error 错误响应
func Error(c *gin.Context, httpCode int, errCode int, msg string) {
	c.JSON(httpCode, Response{
		Code:    errCode,
		Message: msg,
		Data:    nil,
	})
}

// Fail 业务失败响应 (HTTP 200, 业务码非 0)
func Fail(c *gin.Context, errCode int, msg string) {
	c.JSON(http.StatusOK, Response{
		Code:    errCode,
		Message: msg,
		Data:    nil,
	})
}

// FromError 按错误类别输出响应，内部错误不暴露细节
func FromError(c *gin.Context, err error) {
	e, ok := errs.As(err)
	if !ok || e.Kind == errs.KindInternal {
		_ = c.Error(err)
		Error(c, http.StatusInternalServerError, ErrServerInternal, "internal server error")
		return
	}

	resp := Response{
		Code:    CodeOf(e.Reason),
		Message: e.Message,
	}
	if len(e.Details) > 0 {
		resp.Details = e.Details
	}
	c.JSON(StatusOf(e.Kind), resp)
}

// StatusOf 错误类别对应的 HTTP 状态码
func StatusOf(kind errs.Kind) int {
	switch kind {
	case errs.KindValidation:
		return http.StatusBadRequest
	case errs.KindNotFound:
		return http.StatusNotFound
	case errs.KindConflict:
		return http.StatusConflict
	case errs.KindForbidden:
		return http.StatusForbidden
	case errs.KindProvider:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
