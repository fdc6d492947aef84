package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"tenant-deployer/internal/model"
	pkgErrors "tenant-deployer/pkg/errors"
)

// OrganizationDeployment 编排结束后回写到组织的字段
type OrganizationDeployment struct {
	BaseURL             string
	HostingProjectID    string
	HostingDeploymentID *string
	DeploymentStatus    string
}

type OrganizationRepository interface {
	FindByID(ctx context.Context, id string) (*model.Organization, error)
	UpdateDeployment(ctx context.Context, id string, d *OrganizationDeployment) error
	// UpdateDeploymentStatus 仅当组织当前指向该部署时才回写状态，返回是否命中
	UpdateDeploymentStatus(ctx context.Context, id, hostingDeploymentID, status string) (bool, error)
}

type organizationRepository struct {
	db *gorm.DB
}

func NewOrganizationRepository(db *gorm.DB) OrganizationRepository {
	return &organizationRepository{db: db}
}

func (r *organizationRepository) FindByID(ctx context.Context, id string) (*model.Organization, error) {
	var org model.Organization
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&org).Error; err != nil {
		return nil, wrapFind(err, "查询组织失败")
	}
	return &org, nil
}

func (r *organizationRepository) UpdateDeployment(ctx context.Context, id string, d *OrganizationDeployment) error {
	updates := map[string]interface{}{
		"base_url":              d.BaseURL,
		"hosting_project_id":    d.HostingProjectID,
		"hosting_deployment_id": d.HostingDeploymentID,
		"deployment_status":     d.DeploymentStatus,
		"updated_at":            time.Now().UTC(),
	}

	if err := r.db.WithContext(ctx).Model(&model.Organization{}).
		Where("id = ?", id).
		Updates(updates).Error; err != nil {
		return pkgErrors.Wrap(pkgErrors.CodeDatabaseError, "更新组织部署信息失败", err)
	}
	return nil
}

func (r *organizationRepository) UpdateDeploymentStatus(ctx context.Context, id, hostingDeploymentID, status string) (bool, error) {
	result := r.db.WithContext(ctx).Model(&model.Organization{}).
		Where("id = ? AND hosting_deployment_id = ?", id, hostingDeploymentID).
		Updates(map[string]interface{}{
			"deployment_status": status,
			"updated_at":        time.Now().UTC(),
		})
	if result.Error != nil {
		return false, pkgErrors.Wrap(pkgErrors.CodeDatabaseError, "更新组织部署状态失败", result.Error)
	}
	return result.RowsAffected > 0, nil
}
