package router

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"gorm.io/gorm"

	"tenant-deployer/internal/api/handler"
	"tenant-deployer/internal/api/middleware"
	"tenant-deployer/internal/pkg/config"
	"tenant-deployer/internal/pkg/jwt"
	"tenant-deployer/internal/service"
	"tenant-deployer/pkg/utils"
)

// Deps 路由依赖，由 main 负责构造与关闭
type Deps struct {
	DB                *gorm.DB
	Verifier          *jwt.Verifier
	Authz             service.AuthorizationService
	Deploy            service.DeployService
	Status            service.DeploymentStatusService
	HostingConfigured bool
}

// Setup 设置路由
func Setup(cfg *config.Config, deps *Deps) *gin.Engine {
	// 设置Gin模式
	if cfg.Server.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	utils.RegisterBindingTagNames()

	r := gin.New()

	// 全局中间件
	r.Use(gin.Recovery())
	r.Use(middleware.RequestIDMiddleware())
	r.Use(middleware.LoggerMiddleware())
	r.Use(middleware.MetricsMiddleware())
	r.Use(middleware.CORSMiddleware())

	// 健康检查
	healthHandler := handler.NewHealthHandler(cfg.Server.Name, deps.DB, deps.HostingConfigured)
	r.GET("/health", healthHandler.Health)

	// 监控指标
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// Swagger API 文档
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	deploymentHandler := handler.NewDeploymentHandler(deps.Authz, deps.Deploy, deps.Status)

	// API v1
	v1 := r.Group("/api/v1")
	{
		authed := v1.Group("")
		authed.Use(middleware.AuthMiddleware(deps.Verifier))
		{
			// 站点部署
			groupDeployments := authed.Group("/deployments")
			{
				groupDeployments.POST("", deploymentHandler.Create) // 部署租户站点
				groupDeployments.GET("", deploymentHandler.Get)     // 查询部署状态（query: organizationId, deploymentId）
			}
		}
	}

	return r
}
