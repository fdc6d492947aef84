package service

import (
	"context"
	"errors"

	"github.com/samber/lo"
	"go.uber.org/zap"

	"tenant-deployer/internal/model"
	"tenant-deployer/internal/pkg/auth"
	"tenant-deployer/internal/pkg/logger"
	"tenant-deployer/internal/repository"
	pkgErrors "tenant-deployer/pkg/errors"
)

// ErrVerifyingPermissions 团队成员查询失败
var ErrVerifyingPermissions = pkgErrors.New(pkgErrors.CodeInternalError, "Error verifying permissions")

// AuthorizationService 判断调用方能否部署某个组织的站点
//  1. 调用方 profile 必须存在
//  2. 需要 site:deploy 权限（站点创建者）
//  3. 非本组织且无跨组织权限时，仅允许部署由本团队管理员/站点创建者创建的组织
type AuthorizationService interface {
	AuthorizeDeploy(ctx context.Context, profileID, organizationID string) (*model.Profile, *model.Organization, error)
}

type authorizationService struct {
	profileRepo repository.ProfileRepository
	orgRepo     repository.OrganizationRepository
}

// NewAuthorizationService 创建 AuthorizationService
func NewAuthorizationService(profileRepo repository.ProfileRepository, orgRepo repository.OrganizationRepository) AuthorizationService {
	return &authorizationService{
		profileRepo: profileRepo,
		orgRepo:     orgRepo,
	}
}

func (s *authorizationService) AuthorizeDeploy(ctx context.Context, profileID, organizationID string) (*model.Profile, *model.Organization, error) {
	profile, err := s.profileRepo.FindByID(ctx, profileID)
	if err != nil {
		if errors.Is(err, pkgErrors.ErrRecordNotFound) {
			return nil, nil, pkgErrors.ErrProfileNotFound
		}
		return nil, nil, err
	}

	roles := auth.RolesOf(profile.Role, profile.IsSiteCreator)
	if !auth.Allow(roles, auth.PermSiteDeploy) {
		return nil, nil, pkgErrors.ErrSiteCreatorRequired
	}

	org, err := s.orgRepo.FindByID(ctx, organizationID)
	if err != nil {
		if errors.Is(err, pkgErrors.ErrRecordNotFound) {
			return nil, nil, pkgErrors.ErrOrganizationNotFound
		}
		return nil, nil, err
	}

	if profile.BelongsTo(organizationID) || auth.Allow(roles, auth.PermTenantCross) {
		return profile, org, nil
	}

	// 调用方未归属任何组织时没有团队可言
	if profile.OrganizationID == nil {
		return nil, nil, pkgErrors.ErrForeignOrganization
	}

	emails, err := s.profileRepo.FindTeamEmails(ctx, *profile.OrganizationID)
	if err != nil {
		logger.Error("查询团队成员失败", zap.String("profile_id", profileID), zap.Error(err))
		return nil, nil, ErrVerifyingPermissions
	}
	if org.CreatedByEmail == "" || !lo.Contains(emails, org.CreatedByEmail) {
		return nil, nil, pkgErrors.ErrForeignOrganization
	}

	return profile, org, nil
}
