package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"tenant-deployer/pkg/constants"
)

// RequestIDMiddleware 透传或生成请求 ID
func RequestIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(constants.HeaderRequestID)
		if id == "" || len(id) > 128 {
			id = uuid.NewString()
		}
		c.Set(constants.CtxKeyRequestID, id)
		c.Header(constants.HeaderRequestID, id)
		c.Next()
	}
}
