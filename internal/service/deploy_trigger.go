package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"tenant-deployer/internal/pkg/config"
	"tenant-deployer/internal/pkg/hosting/api"
	"tenant-deployer/internal/pkg/logger"
)

// DeploymentTrigger 触发首次构建：等待 Git 连接生效，同步类错误重试一次
type DeploymentTrigger struct {
	hosting          api.HostingProvider
	propagationDelay time.Duration
	retryDelay       time.Duration
	timeout          time.Duration
}

func NewDeploymentTrigger(hosting api.HostingProvider, cfg config.DeployConfig) *DeploymentTrigger {
	return &DeploymentTrigger{
		hosting:          hosting,
		propagationDelay: cfg.PropagationDelay,
		retryDelay:       cfg.RetryDelay,
		timeout:          cfg.TriggerTimeout,
	}
}

// Trigger 最多调用平台两次，第二次仅在首次返回同步类错误时发生
func (t *DeploymentTrigger) Trigger(ctx context.Context, projectID, name string, source api.GitSource) (*api.Deployment, error) {
	if t.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, t.timeout)
		defer cancel()
	}

	if err := wait(ctx, t.propagationDelay); err != nil {
		return nil, err
	}

	deployment, err := t.hosting.TriggerDeployment(ctx, projectID, name, source)
	if err == nil {
		return deployment, nil
	}
	if !api.IsTransientGitSync(err) {
		return nil, err
	}

	logger.Info("仓库尚未同步到构建系统，稍后重试",
		zap.String("project_id", projectID),
		zap.Duration("retry_delay", t.retryDelay),
		zap.Error(err))

	if err := wait(ctx, t.retryDelay); err != nil {
		return nil, err
	}
	return t.hosting.TriggerDeployment(ctx, projectID, name, source)
}

// wait 可被 ctx 取消的等待
func wait(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
