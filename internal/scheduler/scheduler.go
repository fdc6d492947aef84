package scheduler

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"tenant-deployer/internal/pkg/config"
)

const defaultReconcileCron = "0 */2 * * * *"

// Reconciler 同步构建中的部署记录
type Reconciler interface {
	ReconcileBuilding(ctx context.Context, window time.Duration) (int, error)
}

// Scheduler 调度器
type Scheduler struct {
	cron          *cron.Cron
	logger        *zap.Logger
	reconciler    Reconciler
	window        time.Duration
	timeout       time.Duration
	cronSchedules map[string]cron.EntryID // 存储任务ID，便于管理
}

// NewScheduler 创建调度器
func NewScheduler(reconciler Reconciler, logger *zap.Logger, cfg *config.CoreConfig) *Scheduler {
	// 创建 cron 实例（带秒级支持），上一轮未结束时跳过
	c := cron.New(
		cron.WithSeconds(),
		cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger)),
	)

	window := cfg.ReconcileWindow
	if window <= 0 {
		window = 24 * time.Hour
	}

	return &Scheduler{
		cron:          c,
		logger:        logger,
		reconciler:    reconciler,
		window:        window,
		timeout:       time.Minute,
		cronSchedules: make(map[string]cron.EntryID),
	}
}

// Start 启动调度器
func (s *Scheduler) Start(cronExpr string) error {
	log := s.logger.Sugar()

	log.Info("启动定时任务调度器...")

	// cron 表达式格式: 秒 分 时 日 月 周
	if cronExpr == "" {
		cronExpr = defaultReconcileCron
		log.Warnf("未配置core.reconcile_cron，使用默认值 %s", cronExpr)
	}

	entryID, err := s.cron.AddFunc(cronExpr, func() {
		if _, err := s.TriggerReconcile(); err != nil {
			log.Errorf("部署状态同步任务执行失败: %v", err)
		}
	})
	if err != nil {
		log.Errorf("注册部署状态同步任务失败 %s: %v", cronExpr, err)
		return err
	}

	s.cronSchedules["deploy_reconcile"] = entryID
	log.Infof("部署状态同步任务已注册: %s entry_id=%d", cronExpr, entryID)

	// 启动 cron
	s.cron.Start()
	log.Info("定时任务调度器启动成功")

	return nil
}

// Stop 停止调度器
func (s *Scheduler) Stop() {
	s.logger.Info("正在停止定时任务调度器...")

	// 停止 cron（等待正在执行的任务完成）
	ctx := s.cron.Stop()
	<-ctx.Done()

	s.logger.Info("定时任务调度器已停止")
}

// TriggerReconcile 执行一轮状态同步，返回状态变化的记录数
func (s *Scheduler) TriggerReconcile() (int, error) {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	start := time.Now()
	changed, err := s.reconciler.ReconcileBuilding(ctx, s.window)
	if err != nil {
		return 0, err
	}

	if changed > 0 {
		s.logger.Info("部署状态同步完成",
			zap.Int("changed", changed),
			zap.Duration("cost", time.Since(start)))
	}
	return changed, nil
}
