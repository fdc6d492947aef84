package hosting

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"tenant-deployer/internal/pkg/config"
	"tenant-deployer/internal/pkg/hosting/api"
	"tenant-deployer/internal/pkg/hosting/vercel"
	"tenant-deployer/internal/pkg/metrics"
)

// ErrNotConfigured 未配置平台 Token
var ErrNotConfigured = errors.New("hosting platform token not configured")

// NewProvider 根据配置创建托管平台客户端，并附加调用指标
func NewProvider(cfg config.HostingConfig) (api.HostingProvider, error) {
	if cfg.Token == "" {
		return nil, ErrNotConfigured
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	provider, err := vercel.NewProvider(&api.ProviderConfig{
		BaseURL:      cfg.BaseURL,
		Token:        cfg.Token,
		TeamID:       cfg.TeamID,
		DashboardURL: cfg.DashboardURL,
	}, &http.Client{Timeout: timeout})
	if err != nil {
		return nil, fmt.Errorf("创建托管平台客户端失败: %w", err)
	}

	return Instrument(provider), nil
}

// Instrument 为 provider 记录 Prometheus 调用次数与耗时
func Instrument(p api.HostingProvider) api.HostingProvider {
	return &instrumented{next: p}
}

type instrumented struct {
	next api.HostingProvider
}

func observe(op string, start time.Time, err error) {
	status := http.StatusOK
	if err != nil {
		status = 0
		var hpe *api.HostingPlatformError
		if errors.As(err, &hpe) {
			status = hpe.Status
		}
	}
	metrics.ObserveHostingCall(op, status, time.Since(start))
}

func (i *instrumented) CreateProject(ctx context.Context, name, framework string) (*api.Project, error) {
	start := time.Now()
	p, err := i.next.CreateProject(ctx, name, framework)
	observe("create_project", start, err)
	return p, err
}

func (i *instrumented) GetProject(ctx context.Context, projectID string) (*api.Project, error) {
	start := time.Now()
	p, err := i.next.GetProject(ctx, projectID)
	observe("get_project", start, err)
	return p, err
}

func (i *instrumented) DeleteProject(ctx context.Context, projectID string) error {
	start := time.Now()
	err := i.next.DeleteProject(ctx, projectID)
	observe("delete_project", start, err)
	return err
}

func (i *instrumented) ConnectRepository(ctx context.Context, projectID, repoURL string) error {
	start := time.Now()
	err := i.next.ConnectRepository(ctx, projectID, repoURL)
	observe("connect_repository", start, err)
	return err
}

func (i *instrumented) SetEnvironmentVariables(ctx context.Context, projectID string, vars []api.EnvVar) error {
	start := time.Now()
	err := i.next.SetEnvironmentVariables(ctx, projectID, vars)
	observe("set_environment_variables", start, err)
	return err
}

func (i *instrumented) TriggerDeployment(ctx context.Context, projectID, name string, source api.GitSource) (*api.Deployment, error) {
	start := time.Now()
	d, err := i.next.TriggerDeployment(ctx, projectID, name, source)
	observe("trigger_deployment", start, err)
	return d, err
}

func (i *instrumented) GetDeployment(ctx context.Context, deploymentID string) (*api.Deployment, error) {
	start := time.Now()
	d, err := i.next.GetDeployment(ctx, deploymentID)
	observe("get_deployment", start, err)
	return d, err
}

func (i *instrumented) DashboardURL(projectID string) string {
	return i.next.DashboardURL(projectID)
}

func (i *instrumented) SettingsURL(projectID string) string {
	return i.next.SettingsURL(projectID)
}
