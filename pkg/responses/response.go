package responses

import (
	"net/http"

	"github.com/gin-gonic/gin"

	pkgErrors "tenant-deployer/pkg/errors"
)

// ErrorResponse 错误响应结构
type ErrorResponse struct {
	Error  string `json:"error"`
	Detail string `json:"detail,omitempty"` // 详细错误信息（可选）
}

// JSON 自定义成功结构
func JSON(c *gin.Context, body interface{}) {
	c.JSON(http.StatusOK, body)
}

// Error 错误响应，HTTP 状态码由 AppError 决定
func Error(c *gin.Context, err error) {
	if appErr, ok := pkgErrors.As(err); ok {
		c.JSON(appErr.HTTPStatus(), ErrorResponse{Error: appErr.Message})
		return
	}

	c.JSON(http.StatusInternalServerError, ErrorResponse{Error: pkgErrors.ErrInternalError.Message})
}

// ErrorWithDetail 带详细信息的错误响应
func ErrorWithDetail(c *gin.Context, status int, message, detail string) {
	c.JSON(status, ErrorResponse{
		Error:  message,
		Detail: detail,
	})
}
