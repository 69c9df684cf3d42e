package util

import (
	"errors"
	"net/http"

	"phone-shop/internal/service"

	"github.com/gin-gonic/gin"
)

// 通用返回结构里的 data 使用 map
type Response map[string]interface{}

// 业务错误码
const (
	CodeOK                = 0
	CodeInvalidParam      = 40001
	CodeAuth              = 40101
	CodeNotFound          = 40401
	CodeInsufficientStock = 40901
	CodeOverpayment       = 40902
	CodeServerErr         = 50001
)

// Success 统一成功返回
func Success(c *gin.Context, data Response) {
	c.JSON(http.StatusOK, gin.H{
		"code": CodeOK,
		"data": data,
	})
}

// Error 统一错误返回
func Error(c *gin.Context, httpStatus int, code int, msg string) {
	c.JSON(httpStatus, gin.H{
		"code":    code,
		"message": msg,
	})
}

// ErrorFrom 把 service 层的错误映射成 HTTP 状态和业务错误码。
// 校验类错误直接把原因返回给前端，存储错误只返回笼统提示。
func ErrorFrom(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrValidation):
		Error(c, http.StatusBadRequest, CodeInvalidParam, err.Error())
	case errors.Is(err, service.ErrNotFound):
		Error(c, http.StatusNotFound, CodeNotFound, err.Error())
	case errors.Is(err, service.ErrInsufficientStock):
		Error(c, http.StatusConflict, CodeInsufficientStock, err.Error())
	case errors.Is(err, service.ErrOverpayment):
		Error(c, http.StatusConflict, CodeOverpayment, err.Error())
	default:
		_ = c.Error(err)
		Error(c, http.StatusInternalServerError, CodeServerErr, "服务器内部错误")
	}
}
