package utils

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
)

// ErrNotFound 记录不存在
var ErrNotFound = errors.New("project not found")

// ApiError 自定义API错误
type ApiError struct {
	StatusCode int
	Message    string
	ErrorCode  string
}

// Error 实现error接口
func (e *ApiError) Error() string {
	return e.Message
}

// NewApiError 创建API错误
func NewApiError(message string, statusCode int, errorCode string) *ApiError {
	return &ApiError{
		StatusCode: statusCode,
		Message:    message,
		ErrorCode:  errorCode,
	}
}

// CreateNotFoundError 创建资源不存在错误
func CreateNotFoundError(resource string) *ApiError {
	return NewApiError(resource+" not found", http.StatusNotFound, "RESOURCE_NOT_FOUND")
}

// CreateUnauthorizedError 创建未授权错误
func CreateUnauthorizedError() *ApiError {
	return NewApiError("unauthorized", http.StatusUnauthorized, "UNAUTHORIZED")
}

// CreateBadRequestError 创建错误请求错误
func CreateBadRequestError(message string) *ApiError {
	return NewApiError(message, http.StatusBadRequest, "BAD_REQUEST")
}

// ValidationError 必填字段缺失等可由用户修正的错误
type ValidationError struct {
	Field   string
	Message string
}

// Error 实现error接口
func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// NewValidationError 创建校验错误
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}

// PersistenceError 存储读写失败，内存中的结果仍然有效
type PersistenceError struct {
	Op  string
	Err error
}

// Error 实现error接口
func (e *PersistenceError) Error() string {
	return fmt.Sprintf("%s failed: %v", e.Op, e.Err)
}

// Unwrap 返回底层错误
func (e *PersistenceError) Unwrap() error {
	return e.Err
}

// IsPersistenceError 判断是否为存储失败
func IsPersistenceError(err error) bool {
	var pe *PersistenceError
	return errors.As(err, &pe)
}

// ToApiError 将领域错误映射为API错误
func ToApiError(err error) *ApiError {
	var apiErr *ApiError
	if errors.As(err, &apiErr) {
		return apiErr
	}
	var ve *ValidationError
	if errors.As(err, &ve) {
		return NewApiError(ve.Error(), http.StatusBadRequest, "VALIDATION_ERROR")
	}
	if errors.Is(err, ErrNotFound) {
		return CreateNotFoundError("project")
	}
	var pe *PersistenceError
	if errors.As(err, &pe) {
		return NewApiError(pe.Error(), http.StatusInternalServerError, "PERSISTENCE_ERROR")
	}
	return NewApiError(err.Error(), http.StatusInternalServerError, "")
}

// HandleError 处理错误并返回适当的响应
func HandleError(c *gin.Context, err error) {
	if c == nil {
		return
	}
	// 记录错误
	LogError(err, map[string]interface{}{
		"path":   c.Request.URL.Path,
		"method": c.Request.Method,
	}, "API错误")

	apiErr := ToApiError(err)
	response := gin.H{"success": false, "error": apiErr.Message}
	if apiErr.ErrorCode != "" {
		response["code"] = apiErr.ErrorCode
	}
	c.JSON(apiErr.StatusCode, response)
}

// SuccessResponse 成功响应
func SuccessResponse(c *gin.Context, data interface{}, message string, statusCode ...int) {
	code := http.StatusOK
	if len(statusCode) > 0 {
		code = statusCode[0]
	}

	response := gin.H{"success": true}
	if data != nil {
		response["data"] = data
	}
	if message != "" {
		response["message"] = message
	}

	c.JSON(code, response)
}

// MutationResponse 写操作响应，存储失败时附带警告而不是报错
func MutationResponse(c *gin.Context, data interface{}, err error, message string, statusCode ...int) {
	if err == nil {
		SuccessResponse(c, data, message, statusCode...)
		return
	}
	if !IsPersistenceError(err) {
		HandleError(c, err)
		return
	}

	Logger.Warn().Err(err).Str("path", c.Request.URL.Path).Msg("数据保存失败，变更仅存在于内存")

	code := http.StatusOK
	if len(statusCode) > 0 {
		code = statusCode[0]
	}
	c.JSON(code, gin.H{
		"success": true,
		"data":    data,
		"message": message,
		"warning": "changes were applied but could not be saved: " + err.Error(),
	})
}

// ErrorResponse 错误响应
func ErrorResponse(c *gin.Context, message string, statusCode int) {
	c.JSON(statusCode, gin.H{
		"success": false,
		"error":   message,
	})
}
