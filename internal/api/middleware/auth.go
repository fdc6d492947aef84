package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"tenant-deployer/internal/pkg/jwt"
	"tenant-deployer/pkg/constants"
	pkgErrors "tenant-deployer/pkg/errors"
	"tenant-deployer/pkg/responses"
)

// AuthMiddleware JWT认证中间件，校验通过后将 claims 存入 context
func AuthMiddleware(verifier *jwt.Verifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		// 获取Authorization header
		authHeader := c.GetHeader(constants.HeaderAuthorization)
		if authHeader == "" || !strings.HasPrefix(authHeader, constants.HeaderBearerPrefix) {
			responses.Error(c, pkgErrors.ErrUnauthorized)
			c.Abort()
			return
		}

		// 提取Token
		token := strings.TrimSpace(strings.TrimPrefix(authHeader, constants.HeaderBearerPrefix))
		if token == "" {
			responses.Error(c, pkgErrors.ErrUnauthorized)
			c.Abort()
			return
		}

		// 验证Token
		claims, err := verifier.Validate(token)
		if err != nil {
			responses.Error(c, err)
			c.Abort()
			return
		}

		c.Set(constants.CtxKeyCaller, claims)
		c.Next()
	}
}

// CallerFrom 读取 AuthMiddleware 写入的调用方
func CallerFrom(c *gin.Context) (*jwt.Claims, bool) {
	v, ok := c.Get(constants.CtxKeyCaller)
	if !ok {
		return nil, false
	}
	claims, ok := v.(*jwt.Claims)
	return claims, ok
}
