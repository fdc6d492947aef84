package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"tenant-deployer/internal/adapter/notification"
	"tenant-deployer/internal/api/router"
	"tenant-deployer/internal/model"
	"tenant-deployer/internal/pkg/config"
	"tenant-deployer/internal/pkg/database"
	"tenant-deployer/internal/pkg/hosting"
	"tenant-deployer/internal/pkg/hosting/api"
	"tenant-deployer/internal/pkg/jwt"
	"tenant-deployer/internal/pkg/lock"
	"tenant-deployer/internal/pkg/logger"
	"tenant-deployer/internal/pkg/metrics"
	"tenant-deployer/internal/repository"
	"tenant-deployer/internal/scheduler"
	"tenant-deployer/internal/service"

	_ "tenant-deployer/docs" // Swagger docs
)

// @title Tenant Deployer API
// @version 1.0
// @description 租户站点部署编排 API 文档
// @description 为租户创建托管项目、关联仓库、写入环境变量并触发首次构建

// @contact.name API Support
// @contact.email support@example.com

// @license.name Apache 2.0
// @license.url http://www.apache.org/licenses/LICENSE-2.0.html

// @host localhost:8080
// @BasePath /

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.

var (
	configFile = flag.String("config", "", "配置文件路径 (例如: -config=configs/config.yaml)")
	version    = flag.Bool("version", false, "显示版本信息")
)

const (
	appVersion = "1.0.0"
	appName    = "tenant-deployer"
)

func main() {
	// 解析命令行参数
	flag.Parse()

	// 显示版本信息
	if *version {
		fmt.Printf("%s version %s\n", appName, appVersion)
		os.Exit(0)
	}

	// init config logger
	var cfg *config.Config
	{
		// 优先级: 命令行参数 > 环境变量 > 默认路径
		configPath := getConfigPath()

		// 加载配置
		c, err := config.Load(configPath)
		if err != nil {
			fmt.Printf("加载配置失败: %v\n", err)
			fmt.Println("\n使用方式:")
			fmt.Println("  1. 命令行参数指定:")
			fmt.Println("     ./tenant-deployer -config=configs/config.yaml")
			fmt.Println("  2. 环境变量指定:")
			fmt.Println("     export CONFIG_FILE=configs/config.yaml")
			fmt.Println("     ./tenant-deployer")
			fmt.Println("  3. 使用默认配置:")
			fmt.Println("     ./tenant-deployer  (将使用 configs/config.yaml)")
			os.Exit(1)
		}
		cfg = c

		// 初始化日志
		if err := logger.Init(&cfg.Log); err != nil {
			fmt.Printf("初始化日志失败: %v\n", err)
			os.Exit(1)
		}
		logger.Info(fmt.Sprintf("Load config file: %s of %s", configPath, getConfigSource()))

		defer func() {
			_ = logger.Close()
		}()
	}

	logger.Info(fmt.Sprintf("服务 %s 启动中...", appName), zap.String("version", appVersion))

	metrics.Init(prometheus.DefaultRegisterer)

	// 初始化数据库
	db, err := database.Open(&cfg.Database)
	if err != nil {
		logger.Fatal("初始化数据库失败", zap.Error(err))
	}
	defer func() {
		_ = database.Close(db)
	}()
	logger.Info(fmt.Sprintf("数据库连接成功 %s:%v", cfg.Database.Host, cfg.Database.Port), zap.String("database", cfg.Database.Database))

	if cfg.Database.AutoMigrate {
		if err := database.Migrate(db, model.AllModels()...); err != nil {
			logger.Fatal("数据库迁移失败", zap.Error(err))
		}
	}

	// 托管平台未配置时服务仍可启动，部署请求返回 500
	var hostingProvider api.HostingProvider
	if p, err := hosting.NewProvider(cfg.Hosting); err != nil {
		if !errors.Is(err, hosting.ErrNotConfigured) {
			logger.Fatal("初始化托管平台客户端失败", zap.Error(err))
		}
		logger.Warn("未配置托管平台 Token，部署功能不可用")
	} else {
		hostingProvider = p
	}

	// 租户部署锁
	locker := newLocker(cfg)
	defer func() {
		_ = locker.Close()
	}()

	// Repository
	orgRepo := repository.NewOrganizationRepository(db)
	profileRepo := repository.NewProfileRepository(db)
	recordRepo := repository.NewDeploymentRecordRepository(db)
	activityRepo := repository.NewActivityLogRepository(db)

	// 事件通知
	var (
		publisher  service.EventPublisher
		dispatcher *notification.Dispatcher
	)
	notifier, closeNotifier := newNotifier(cfg, activityRepo)
	defer closeNotifier()
	if cfg.Core.Notification.Enabled {
		dispatcher = notification.NewDispatcher(notifier, cfg.Core.Notification.QueueSize, logger.Log)
		publisher = dispatcher
	}

	// Service
	authzService := service.NewAuthorizationService(profileRepo, orgRepo)
	deployService := service.NewDeployService(hostingProvider, orgRepo, recordRepo, locker, publisher, cfg)
	statusService := service.NewDeploymentStatusService(hostingProvider, orgRepo, recordRepo, publisher)

	// 初始化并启动定时任务调度器
	taskScheduler := scheduler.NewScheduler(statusService, logger.Log, &cfg.Core)
	if err := taskScheduler.Start(cfg.Core.ReconcileCron); err != nil {
		logger.Warn("定时任务调度器启动失败", zap.Error(err))
	}

	// 设置路由
	r := router.Setup(cfg, &router.Deps{
		DB:                db,
		Verifier:          jwt.NewVerifier(cfg.Auth.JWT),
		Authz:             authzService,
		Deploy:            deployService,
		Status:            statusService,
		HostingConfigured: hostingProvider != nil,
	})

	// 创建HTTP服务器
	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:    addr,
		Handler: r,
	}

	// 启动服务器
	go func() {
		logger.Info(fmt.Sprintf("%s 服务启动成功", cfg.Server.Name),
			zap.String("address", addr),
			zap.String("mode", cfg.Server.Mode),
		)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("服务器启动失败", zap.Error(err))
		}
	}()

	// 优雅关闭
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("服务正在关闭...")

	// 关闭定时任务调度器
	taskScheduler.Stop()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("服务器关闭异常", zap.Error(err))
	}

	// 请求结束后再排空通知队列
	if dispatcher != nil {
		if err := dispatcher.Close(ctx); err != nil {
			logger.Warn("通知队列未完全投递", zap.Error(err))
		}
	}

	logger.Info("服务已关闭")
}

// newLocker Redis 不可用时退回单进程锁
func newLocker(cfg *config.Config) lock.Locker {
	if !cfg.Redis.Enabled {
		return lock.NewMemoryLocker()
	}
	l, err := lock.NewRedisLocker(cfg.Redis, logger.Log)
	if err != nil {
		logger.Warn("连接 Redis 失败，使用进程内部署锁", zap.String("addr", cfg.Redis.Addr), zap.Error(err))
		return lock.NewMemoryLocker()
	}
	logger.Info("部署锁使用 Redis", zap.String("addr", cfg.Redis.Addr))
	return l
}

// newNotifier 组装通知渠道，返回的 close 负责释放 Kafka 连接
func newNotifier(cfg *config.Config, activityRepo repository.ActivityLogRepository) (notification.Notifier, func()) {
	notifiers := []notification.Notifier{
		notification.NewLogNotifier(logger.Log),
		notification.NewActivityNotifier(activityRepo),
	}
	closeFn := func() {}

	if cfg.Kafka.Enabled {
		k, err := notification.NewKafkaNotifier(cfg.Kafka)
		if err != nil {
			logger.Warn("初始化 Kafka 通知失败", zap.Error(err))
		} else {
			notifiers = append(notifiers, k)
			closeFn = func() { _ = k.Close() }
		}
	}

	if cfg.Core.Notification.LarkWebhook != "" {
		notifiers = append(notifiers, notification.NewLarkNotifier(cfg.Core.Notification.LarkWebhook, logger.Log))
	}

	return notification.NewMultiNotifier(logger.Log, notifiers...), closeFn
}

// getConfigPath 获取配置文件路径
// 优先级: 命令行参数 > 环境变量 > 默认路径
func getConfigPath() string {
	// 1. 命令行参数
	if *configFile != "" {
		return *configFile
	}

	// 2. 环境变量
	if envConfig := os.Getenv("CONFIG_FILE"); envConfig != "" {
		return envConfig
	}

	// 3. 默认路径
	return "configs/config.yaml"
}

// getConfigSource 获取配置来源说明
func getConfigSource() string {
	if *configFile != "" {
		return "命令行参数"
	}
	if os.Getenv("CONFIG_FILE") != "" {
		return "环境变量"
	}
	return "默认配置"
}
