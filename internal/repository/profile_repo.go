package repository

import (
	"context"

	"gorm.io/gorm"

	"tenant-deployer/internal/model"
	"tenant-deployer/pkg/constants"
	pkgErrors "tenant-deployer/pkg/errors"
)

type ProfileRepository interface {
	FindByID(ctx context.Context, id string) (*model.Profile, error)
	// FindTeamEmails 组织内管理员与站点创建者的邮箱
	FindTeamEmails(ctx context.Context, organizationID string) ([]string, error)
}

type profileRepository struct {
	db *gorm.DB
}

func NewProfileRepository(db *gorm.DB) ProfileRepository {
	return &profileRepository{db: db}
}

func (r *profileRepository) FindByID(ctx context.Context, id string) (*model.Profile, error) {
	var profile model.Profile
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&profile).Error; err != nil {
		return nil, wrapFind(err, "查询用户资料失败")
	}
	return &profile, nil
}

func (r *profileRepository) FindTeamEmails(ctx context.Context, organizationID string) ([]string, error) {
	var emails []string
	if err := r.db.WithContext(ctx).Model(&model.Profile{}).
		Where("organization_id = ?", organizationID).
		Where("role = ? OR is_site_creator = ?", constants.RoleAdmin, true).
		Pluck("email", &emails).Error; err != nil {
		return nil, pkgErrors.Wrap(pkgErrors.CodeDatabaseError, "查询团队成员失败", err)
	}
	return emails, nil
}
