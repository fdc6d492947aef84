package model

const OrganizationTableName = "organizations"

// Organization 租户，行由上游系统创建，这里只回写部署相关字段
type Organization struct {
	ID             string `gorm:"primaryKey;size:64" json:"id"`
	Name           string `gorm:"size:255;not null" json:"name"`
	Type           string `gorm:"size:20;not null;default:general" json:"type"` // platform/general/tenant
	CreatedByEmail string `gorm:"column:created_by_email;size:255;index" json:"created_by_email"`

	// 部署信息
	BaseURL             *string `gorm:"column:base_url;size:512" json:"base_url"`
	HostingProjectID    *string `gorm:"column:hosting_project_id;size:128" json:"hosting_project_id"`
	HostingDeploymentID *string `gorm:"column:hosting_deployment_id;size:128" json:"hosting_deployment_id"`
	DeploymentStatus    *string `gorm:"column:deployment_status;size:20" json:"deployment_status"` // created/building/ready/error/canceled

	Timestamps
}

// TableName 指定表名
func (Organization) TableName() string {
	return OrganizationTableName
}
