package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"tenant-deployer/internal/dto"
)

// HealthHandler 健康检查
type HealthHandler struct {
	service string
	db      *gorm.DB
	hosting bool
}

// NewHealthHandler hostingConfigured 仅用于展示，未配置托管平台不影响健康状态
func NewHealthHandler(service string, db *gorm.DB, hostingConfigured bool) *HealthHandler {
	return &HealthHandler{service: service, db: db, hosting: hostingConfigured}
}

// Health 健康检查
// @Summary 健康检查
// @Tags Health
// @Produce json
// @Success 200 {object} dto.HealthResponse
// @Failure 503 {object} dto.HealthResponse
// @Router /health [get]
func (h *HealthHandler) Health(c *gin.Context) {
	resp := dto.HealthResponse{
		Status:  "ok",
		Service: h.service,
		Checks:  map[string]string{"database": "ok", "hosting": "configured"},
		Time:    time.Now().UTC().Format(time.RFC3339),
	}
	if !h.hosting {
		resp.Checks["hosting"] = "not_configured"
	}

	if err := h.ping(c.Request.Context()); err != nil {
		resp.Status = "degraded"
		resp.Checks["database"] = err.Error()
		c.JSON(http.StatusServiceUnavailable, resp)
		return
	}

	c.JSON(http.StatusOK, resp)
}

func (h *HealthHandler) ping(ctx context.Context) error {
	sqlDB, err := h.db.DB()
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	return sqlDB.PingContext(ctx)
}
