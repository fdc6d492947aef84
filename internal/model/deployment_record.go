package model

import (
	"time"

	"gorm.io/datatypes"
)

const DeploymentRecordTableName = "deployments"

// DeploymentRecord 一次编排的记录，按 created_at 最新的一条为当前状态
type DeploymentRecord struct {
	ID             string `gorm:"primaryKey;size:36" json:"id"`
	OrganizationID string `gorm:"column:organization_id;size:64;not null;index:idx_deployments_org_created" json:"organization_id"`

	// 托管平台
	HostingProjectID    string  `gorm:"column:hosting_project_id;size:128;not null" json:"hosting_project_id"`
	HostingDeploymentID *string `gorm:"column:hosting_deployment_id;size:128" json:"hosting_deployment_id"`
	ProjectName         string  `gorm:"column:project_name;size:128;not null" json:"project_name"`
	BaseURL             string  `gorm:"column:base_url;size:512" json:"base_url"`
	GitRepository       string  `gorm:"column:git_repository;size:512" json:"git_repository"`
	GitBranch           string  `gorm:"column:git_branch;size:128" json:"git_branch"`

	// 状态追踪
	Status          string            `gorm:"size:20;not null;index" json:"status"`
	DeployedURL     *string           `gorm:"column:deployed_url;size:512" json:"deployed_url"`
	HostingSnapshot datatypes.JSONMap `gorm:"column:hosting_snapshot;type:json" json:"hosting_snapshot,omitempty"` // 最近一次轮询结果
	ErrorMessage    *string           `gorm:"type:text" json:"error_message"`

	CreatedBy string    `gorm:"column:created_by;size:255" json:"created_by"`
	CreatedAt time.Time `gorm:"not null;autoCreateTime;index:idx_deployments_org_created" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;autoUpdateTime" json:"updated_at"`
}

// TableName 指定表名
func (DeploymentRecord) TableName() string {
	return DeploymentRecordTableName
}
