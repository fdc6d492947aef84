package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// 错误码
const (
	CodeBadRequest      = 400
	CodeUnauthorized    = 401
	CodeForbidden       = 403
	CodeNotFound        = 404
	CodeConflict        = 409
	CodeInternalError   = 500
	CodeDatabaseError   = 501
	CodeValidationError = 503
)

// AppError 应用错误
type AppError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Err     error  `json:"-"`
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%d] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%d] %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// Is 按错误码比较，便于 errors.Is(err, ErrRecordNotFound)
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	if !ok {
		return false
	}
	return e.Code == t.Code && e.Message == t.Message
}

// HTTPStatus 内部错误码映射为 HTTP 状态码
func (e *AppError) HTTPStatus() int {
	switch e.Code {
	case CodeDatabaseError:
		return http.StatusInternalServerError
	case CodeValidationError:
		return http.StatusBadRequest
	}
	if e.Code >= 400 && e.Code < 600 {
		return e.Code
	}
	return http.StatusInternalServerError
}

// New 创建新错误
func New(code int, message string) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
	}
}

// Wrap 包装错误
func Wrap(code int, message string, err error) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// As 提取 AppError
func As(err error) (*AppError, bool) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// IsPersistence 是否为存储层错误
func IsPersistence(err error) bool {
	appErr, ok := As(err)
	return ok && appErr.Code == CodeDatabaseError
}

// 预定义错误，Message 即返回给调用方的文案
var (
	ErrUnauthorized  = New(CodeUnauthorized, "Unauthorized")
	ErrInvalidToken  = New(CodeUnauthorized, "Invalid token")
	ErrInternalError = New(CodeInternalError, "Internal server error")

	ErrOrganizationIDRequired = New(CodeBadRequest, "Organization ID is required")
	ErrProfileNotFound        = New(CodeNotFound, "Profile not found")
	ErrOrganizationNotFound   = New(CodeNotFound, "Organization not found")
	ErrDeploymentNotFound     = New(CodeNotFound, "Deployment not found")
	ErrSiteCreatorRequired    = New(CodeForbidden, "Access denied. Site creator role required.")
	ErrForeignOrganization    = New(CodeForbidden, "Access denied. You can only deploy organizations created by your team.")
	ErrDeploymentInProgress   = New(CodeConflict, "A deployment for this organization is already in progress")
	ErrHostingNotConfigured   = New(CodeInternalError, "Hosting integration not configured. Please contact administrator.")
	ErrRecordNotFound         = New(CodeNotFound, "Record not found")
)
