package errors

import (
	"errors"
	"fmt"
)

// ErrorCode 错误码类型
type ErrorCode string

// 预定义错误码
const (
	// 输入错误
	ErrCodeInvalidInput ErrorCode = "INVALID_INPUT"

	// 配置错误（构造期缺少凭证或模型标识）
	ErrCodeConfiguration ErrorCode = "CONFIGURATION_ERROR"

	// 外部服务错误
	ErrCodeEmbeddingProvider  ErrorCode = "EMBEDDING_PROVIDER_ERROR"
	ErrCodeGenerationProvider ErrorCode = "GENERATION_PROVIDER_ERROR"

	// 分块存储错误
	ErrCodeChunkStore ErrorCode = "CHUNK_STORE_ERROR"
)

// ErrorType 错误类型
type ErrorType int

const (
	ErrorTypeInput ErrorType = iota
	ErrorTypeConfiguration
	ErrorTypeExternal
	ErrorTypeStorage
)

// AppError 应用错误结构体
type AppError struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
	Type    ErrorType `json:"-"`
	Stage   string    `json:"stage,omitempty"`
	Cause   error     `json:"-"`
}

// Error 实现error接口
func (e *AppError) Error() string {
	msg := e.Message
	if e.Cause != nil {
		msg = fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	if e.Stage != "" {
		return fmt.Sprintf("[%s] %s", e.Stage, msg)
	}
	return msg
}

// Unwrap 返回底层错误
func (e *AppError) Unwrap() error {
	return e.Cause
}

// WithCause 添加错误原因
func (e *AppError) WithCause(cause error) *AppError {
	e.Cause = cause
	return e
}

// WithStage 标记出错的流水线阶段
func (e *AppError) WithStage(stage string) *AppError {
	e.Stage = stage
	return e
}

// NewInvalidInput 创建输入错误
func NewInvalidInput(format string, args ...interface{}) *AppError {
	return &AppError{
		Code:    ErrCodeInvalidInput,
		Message: fmt.Sprintf(format, args...),
		Type:    ErrorTypeInput,
	}
}

// NewConfiguration 创建配置错误
func NewConfiguration(format string, args ...interface{}) *AppError {
	return &AppError{
		Code:    ErrCodeConfiguration,
		Message: fmt.Sprintf(format, args...),
		Type:    ErrorTypeConfiguration,
	}
}

// NewEmbeddingProvider 创建嵌入服务错误，保留原始错误供上层Unwrap
func NewEmbeddingProvider(cause error) *AppError {
	return &AppError{
		Code:    ErrCodeEmbeddingProvider,
		Message: "embedding provider request failed",
		Type:    ErrorTypeExternal,
		Cause:   cause,
	}
}

// NewGenerationProvider 创建生成服务错误
func NewGenerationProvider(cause error) *AppError {
	return &AppError{
		Code:    ErrCodeGenerationProvider,
		Message: "generation provider request failed",
		Type:    ErrorTypeExternal,
		Cause:   cause,
	}
}

// NewChunkStore 创建分块存储错误
func NewChunkStore(message string, cause error) *AppError {
	return &AppError{
		Code:    ErrCodeChunkStore,
		Message: message,
		Type:    ErrorTypeStorage,
		Cause:   cause,
	}
}

// TagStage 给错误标记阶段名。AppError直接写入Stage字段，
// 其他错误包装为带阶段标记的AppError，原错误保持可Unwrap。
func TagStage(err error, stage string) error {
	if err == nil {
		return nil
	}
	var appErr *AppError
	if errors.As(err, &appErr) {
		appErr.Stage = stage
		return err
	}
	return &AppError{
		Message: err.Error(),
		Stage:   stage,
		Cause:   err,
	}
}

// IsCode 判断错误链中是否存在指定错误码
func IsCode(err error, code ErrorCode) bool {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code == code
	}
	return false
}

// StageOf 提取错误上的阶段标记，没有则返回空串
func StageOf(err error) string {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Stage
	}
	return ""
}
