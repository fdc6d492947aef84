package repository

import (
	"context"

	"gorm.io/gorm"

	"tenant-deployer/internal/model"
	pkgErrors "tenant-deployer/pkg/errors"
)

type ActivityLogRepository interface {
	Create(ctx context.Context, log *model.ActivityLog) error
	FindByOrganization(ctx context.Context, organizationID string) ([]*model.ActivityLog, error)
}

type activityLogRepository struct {
	db *gorm.DB
}

func NewActivityLogRepository(db *gorm.DB) ActivityLogRepository {
	return &activityLogRepository{db: db}
}

func (r *activityLogRepository) Create(ctx context.Context, log *model.ActivityLog) error {
	if err := r.db.WithContext(ctx).Create(log).Error; err != nil {
		return pkgErrors.Wrap(pkgErrors.CodeDatabaseError, "写入操作日志失败", err)
	}
	return nil
}

func (r *activityLogRepository) FindByOrganization(ctx context.Context, organizationID string) ([]*model.ActivityLog, error) {
	var logs []*model.ActivityLog
	if err := r.db.WithContext(ctx).
		Where("organization_id = ?", organizationID).
		Order("created_at DESC").
		Find(&logs).Error; err != nil {
		return nil, pkgErrors.Wrap(pkgErrors.CodeDatabaseError, "查询操作日志失败", err)
	}
	return logs, nil
}
