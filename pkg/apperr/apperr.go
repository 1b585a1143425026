package apperr

import (
	"errors"
	"fmt"
	"net/http"

	"shop_api/pkg/response"
)

// AppError 业务错误：携带 HTTP 状态码、业务码和可安全返回给前端的消息
// 非 AppError 的错误视为非预期错误，只打日志，对外返回通用 500
type AppError struct {
	Status  int    // HTTP 状态码
	Code    int    // 业务码 (见 pkg/response/code.go)
	Message string // 安全的用户可见消息
	Err     error  // 底层错误 (可选)
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// IsOperational 运维可预期的错误 (4xx)，消息可直接透出
func (e *AppError) IsOperational() bool {
	return e.Status < http.StatusInternalServerError
}

// Validation 参数/输入错误 (400)
func Validation(message string) *AppError {
	return &AppError{Status: http.StatusBadRequest, Code: response.ErrInvalidParam, Message: message}
}

// NotFound 资源不存在 (404)
func NotFound(message string) *AppError {
	return &AppError{Status: http.StatusNotFound, Code: response.ErrNotFound, Message: message}
}

// Conflict 资源冲突，例如优惠券码重复 (400)
func Conflict(message string) *AppError {
	return &AppError{Status: http.StatusBadRequest, Code: response.ErrConflict, Message: message}
}

// PaymentChannel 不支持的支付渠道 (400)
func PaymentChannel(message string) *AppError {
	return &AppError{Status: http.StatusBadRequest, Code: response.ErrPaymentChannel, Message: message}
}

// PaymentIncomplete 网关侧支付未完成 (400)
func PaymentIncomplete(message string) *AppError {
	return &AppError{Status: http.StatusBadRequest, Code: response.ErrPaymentIncomplete, Message: message}
}

// Unauthorized 认证失败 (401)
func Unauthorized(message string) *AppError {
	return &AppError{Status: http.StatusUnauthorized, Code: response.ErrAuthFailed, Message: message}
}

// Internal 包装非预期错误 (500)
func Internal(err error) *AppError {
	return &AppError{
		Status:  http.StatusInternalServerError,
		Code:    response.ErrServerInternal,
		Message: "Internal server error",
		Err:     err,
	}
}

// As 提取 AppError，便于 handler 统一映射
func As(err error) (*AppError, bool) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}
