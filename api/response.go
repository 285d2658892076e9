package api

import (
	"errors"
	"net/http"

	"lifebook/service"

	"github.com/gin-gonic/gin"
)

// Response 通用响应结构
type Response struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// PageResponse 分页响应结构
type PageResponse struct {
	Total    int64       `json:"total"`
	Page     int         `json:"page"`
	PageSize int         `json:"page_size"`
	List     interface{} `json:"list"`
}

// Success 成功响应
func Success(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, Response{
		Code:    200,
		Message: "success",
		Data:    data,
	})
}

// SuccessWithMessage 带消息的成功响应
func SuccessWithMessage(c *gin.Context, message string, data interface{}) {
	c.JSON(http.StatusOK, Response{
		Code:    200,
		Message: message,
		Data:    data,
	})
}

// Error 错误响应
func Error(c *gin.Context, code int, message string) {
	c.JSON(code, Response{
		Code:    code,
		Message: message,
	})
}

// BadRequest 400 错误响应
func BadRequest(c *gin.Context, message string) {
	Error(c, http.StatusBadRequest, message)
}

// Unauthorized 401 错误响应
func Unauthorized(c *gin.Context, message string) {
	Error(c, http.StatusUnauthorized, message)
}

// InternalError 500 错误响应
func InternalError(c *gin.Context, message string) {
	Error(c, http.StatusInternalServerError, message)
}

// NotFound 404 错误响应
func NotFound(c *gin.Context, message string) {
	Error(c, http.StatusNotFound, message)
}

// ServiceError 把业务层的哨兵错误翻译成对应的 HTTP 响应
// 未识别的错误按 500 处理并套用脱敏兜底文案
func ServiceError(c *gin.Context, err error, fallback string) {
	switch {
	case errors.Is(err, service.ErrNotFound):
		NotFound(c, err.Error())
	case errors.Is(err, service.ErrDuplicateName),
		errors.Is(err, service.ErrDefaultCategory),
		errors.Is(err, service.ErrCategoryInUse):
		Error(c, http.StatusConflict, err.Error())
	case errors.Is(err, service.ErrFutureDate),
		errors.Is(err, service.ErrEmptyReason),
		errors.Is(err, service.ErrInsufficientBalance),
		errors.Is(err, service.ErrInvalidName),
		errors.Is(err, service.ErrInvalidBudget),
		errors.Is(err, service.ErrInvalidMonth),
		errors.Is(err, service.ErrPastDeadline),
		errors.Is(err, service.ErrInvalidTimeRange):
		BadRequest(c, err.Error())
	default:
		InternalError(c, SafeErrorMessage(err, fallback))
	}
}
