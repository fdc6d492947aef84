package repository

import (
	"context"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"tenant-deployer/internal/model"
	pkgErrors "tenant-deployer/pkg/errors"
)

// RecordStatusUpdate 状态同步时更新的字段
type RecordStatusUpdate struct {
	Status          string
	DeployedURL     *string
	HostingSnapshot datatypes.JSONMap
}

type DeploymentRecordRepository interface {
	Create(ctx context.Context, record *model.DeploymentRecord) error
	FindLatest(ctx context.Context, organizationID string) (*model.DeploymentRecord, error)
	FindByID(ctx context.Context, organizationID, id string) (*model.DeploymentRecord, error)
	UpdateStatus(ctx context.Context, id string, u *RecordStatusUpdate) (time.Time, error)
	// FindBuildingSince 仍在构建中且创建时间晚于 since 的记录
	FindBuildingSince(ctx context.Context, status string, since time.Time, limit int) ([]*model.DeploymentRecord, error)
}

type deploymentRecordRepository struct {
	db *gorm.DB
}

func NewDeploymentRecordRepository(db *gorm.DB) DeploymentRecordRepository {
	return &deploymentRecordRepository{db: db}
}

func (r *deploymentRecordRepository) Create(ctx context.Context, record *model.DeploymentRecord) error {
	if err := r.db.WithContext(ctx).Create(record).Error; err != nil {
		return pkgErrors.Wrap(pkgErrors.CodeDatabaseError, "创建部署记录失败", err)
	}
	return nil
}

func (r *deploymentRecordRepository) FindLatest(ctx context.Context, organizationID string) (*model.DeploymentRecord, error) {
	var record model.DeploymentRecord
	if err := r.db.WithContext(ctx).
		Where("organization_id = ?", organizationID).
		Order("created_at DESC").
		First(&record).Error; err != nil {
		return nil, wrapFind(err, "查询部署记录失败")
	}
	return &record, nil
}

func (r *deploymentRecordRepository) FindByID(ctx context.Context, organizationID, id string) (*model.DeploymentRecord, error) {
	var record model.DeploymentRecord
	if err := r.db.WithContext(ctx).
		Where("id = ? AND organization_id = ?", id, organizationID).
		First(&record).Error; err != nil {
		return nil, wrapFind(err, "查询部署记录失败")
	}
	return &record, nil
}

// UpdateStatus 返回写入的 updated_at
func (r *deploymentRecordRepository) UpdateStatus(ctx context.Context, id string, u *RecordStatusUpdate) (time.Time, error) {
	now := time.Now().UTC()
	updates := map[string]interface{}{
		"status":           u.Status,
		"hosting_snapshot": u.HostingSnapshot,
		"updated_at":       now,
	}
	// 平台未返回地址时保留已有的 deployed_url
	if u.DeployedURL != nil {
		updates["deployed_url"] = u.DeployedURL
	}

	if err := r.db.WithContext(ctx).Model(&model.DeploymentRecord{}).
		Where("id = ?", id).
		Updates(updates).Error; err != nil {
		return time.Time{}, pkgErrors.Wrap(pkgErrors.CodeDatabaseError, "更新部署记录状态失败", err)
	}
	return now, nil
}

func (r *deploymentRecordRepository) FindBuildingSince(ctx context.Context, status string, since time.Time, limit int) ([]*model.DeploymentRecord, error) {
	var records []*model.DeploymentRecord
	query := r.db.WithContext(ctx).
		Where("status = ? AND created_at >= ? AND hosting_deployment_id IS NOT NULL", status, since).
		Order("created_at ASC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	if err := query.Find(&records).Error; err != nil {
		return nil, pkgErrors.Wrap(pkgErrors.CodeDatabaseError, "查询构建中记录失败", err)
	}
	return records, nil
}
