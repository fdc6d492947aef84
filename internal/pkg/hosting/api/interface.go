package api

import "context"

// HostingProvider 托管平台提供者接口，所有失败均返回 *HostingPlatformError
type HostingProvider interface {
	// CreateProject 创建托管项目（私有源码）
	CreateProject(ctx context.Context, name, framework string) (*Project, error)

	// GetProject 查询项目
	GetProject(ctx context.Context, projectID string) (*Project, error)

	// DeleteProject 删除项目
	DeleteProject(ctx context.Context, projectID string) error

	// ConnectRepository 将 GitHub 仓库关联到项目
	// repoURL: 如 https://github.com/owner/repo(.git)
	ConnectRepository(ctx context.Context, projectID, repoURL string) error

	// SetEnvironmentVariables 逐个写入环境变量
	SetEnvironmentVariables(ctx context.Context, projectID string, vars []EnvVar) error

	// TriggerDeployment 按 Git 来源触发生产构建
	TriggerDeployment(ctx context.Context, projectID, name string, source GitSource) (*Deployment, error)

	// GetDeployment 查询构建状态
	GetDeployment(ctx context.Context, deploymentID string) (*Deployment, error)

	// DashboardURL 项目控制台地址
	DashboardURL(projectID string) string

	// SettingsURL 项目 Git 设置页地址
	SettingsURL(projectID string) string
}
