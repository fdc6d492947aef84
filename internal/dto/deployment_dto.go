package dto

import "tenant-deployer/internal/model"

// CreateDeploymentRequest 部署站点请求
type CreateDeploymentRequest struct {
	OrganizationID string  `json:"organizationId" binding:"max=64"`
	GitRepository  *string `json:"gitRepository" binding:"omitempty,max=512"`
	Branch         *string `json:"branch" binding:"omitempty,max=128"`
}

// DeploymentQuery 查询部署状态
type DeploymentQuery struct {
	OrganizationID string `form:"organizationId" binding:"max=64"`
	DeploymentID   string `form:"deploymentId" binding:"omitempty,max=36"`
}

// DeploymentResult 部署编排结果
type DeploymentResult struct {
	OrganizationID       string   `json:"organizationId"`
	ProjectName          string   `json:"projectName"`
	BaseURL              string   `json:"baseUrl"`
	HostingProjectID     string   `json:"hostingProjectId"`
	HostingDeploymentID  *string  `json:"hostingDeploymentId"`
	DeploymentStatus     string   `json:"deploymentStatus"`
	DashboardURL         string   `json:"dashboardUrl"`
	SettingsURL          string   `json:"settingsUrl"`
	DeploymentURL        *string  `json:"deploymentUrl"`
	ManualDeploymentNote *string  `json:"manualDeploymentNote"`
	Instructions         []string `json:"instructions"`
	EstimatedReadyTime   *string  `json:"estimatedReadyTime"` // RFC3339，未触发构建时为空
}

// CreateDeploymentResponse POST /deployments 响应
type CreateDeploymentResponse struct {
	Success bool              `json:"success"`
	Message string            `json:"message"`
	Data    *DeploymentResult `json:"data"`
}

// HostingPlatformStatus 托管平台实时状态
type HostingPlatformStatus struct {
	State   string `json:"state"`
	URL     string `json:"url"`
	Created int64  `json:"created"`
	Ready   *int64 `json:"ready,omitempty"`
}

// DeploymentStatusView 部署记录 + 平台状态
type DeploymentStatusView struct {
	*model.DeploymentRecord
	HostingPlatformStatus *HostingPlatformStatus `json:"hostingPlatformStatus,omitempty"`
}

// DeploymentStatusResponse GET /deployments 响应
type DeploymentStatusResponse struct {
	Success    bool                  `json:"success"`
	Deployment *DeploymentStatusView `json:"deployment"`
}
