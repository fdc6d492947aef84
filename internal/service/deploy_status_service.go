package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/samber/lo"
	"go.uber.org/zap"
	"gorm.io/datatypes"

	"tenant-deployer/internal/adapter/notification"
	"tenant-deployer/internal/dto"
	"tenant-deployer/internal/model"
	"tenant-deployer/internal/pkg/hosting/api"
	"tenant-deployer/internal/pkg/logger"
	"tenant-deployer/internal/repository"
	"tenant-deployer/pkg/constants"
	pkgErrors "tenant-deployer/pkg/errors"
)

const reconcileBatchSize = 100

// DeploymentStatusService 查询部署记录并与托管平台状态对齐
type DeploymentStatusService interface {
	// GetStatus deploymentID 为空时取最新一条
	GetStatus(ctx context.Context, organizationID, deploymentID string) (*dto.DeploymentStatusView, error)
	// ReconcileBuilding 同步窗口内仍在构建中的记录，返回状态变化的条数
	ReconcileBuilding(ctx context.Context, window time.Duration) (int, error)
}

type deploymentStatusService struct {
	hosting    api.HostingProvider
	orgRepo    repository.OrganizationRepository
	recordRepo repository.DeploymentRecordRepository
	publisher  EventPublisher
}

func NewDeploymentStatusService(
	hosting api.HostingProvider,
	orgRepo repository.OrganizationRepository,
	recordRepo repository.DeploymentRecordRepository,
	publisher EventPublisher,
) DeploymentStatusService {
	if publisher == nil {
		publisher = noopPublisher{}
	}
	return &deploymentStatusService{
		hosting:    hosting,
		orgRepo:    orgRepo,
		recordRepo: recordRepo,
		publisher:  publisher,
	}
}

func (s *deploymentStatusService) GetStatus(ctx context.Context, organizationID, deploymentID string) (*dto.DeploymentStatusView, error) {
	var (
		record *model.DeploymentRecord
		err    error
	)
	if deploymentID != "" {
		record, err = s.recordRepo.FindByID(ctx, organizationID, deploymentID)
	} else {
		record, err = s.recordRepo.FindLatest(ctx, organizationID)
	}
	if err != nil {
		if errors.Is(err, pkgErrors.ErrRecordNotFound) {
			return nil, pkgErrors.ErrDeploymentNotFound
		}
		return nil, err
	}

	view := &dto.DeploymentStatusView{DeploymentRecord: record}
	if record.HostingDeploymentID == nil || s.hosting == nil {
		return view, nil
	}

	record, status, _ := s.reconcile(ctx, record)
	view.DeploymentRecord = record
	view.HostingPlatformStatus = status
	return view, nil
}

func (s *deploymentStatusService) ReconcileBuilding(ctx context.Context, window time.Duration) (int, error) {
	if s.hosting == nil {
		return 0, nil
	}

	since := time.Now().UTC().Add(-window)
	records, err := s.recordRepo.FindBuildingSince(ctx, constants.DeploymentStatusBuilding, since, reconcileBatchSize)
	if err != nil {
		return 0, err
	}

	changed := 0
	for _, record := range records {
		if ctx.Err() != nil {
			break
		}
		if _, _, updated := s.reconcile(ctx, record); updated {
			changed++
		}
	}
	return changed, nil
}

// reconcile 轮询平台并在状态变化时回写；任何失败都返回原记录
func (s *deploymentStatusService) reconcile(ctx context.Context, record *model.DeploymentRecord) (*model.DeploymentRecord, *dto.HostingPlatformStatus, bool) {
	deploymentID := lo.FromPtr(record.HostingDeploymentID)

	d, err := s.hosting.GetDeployment(ctx, deploymentID)
	if err != nil {
		logger.Warn("查询平台构建状态失败",
			zap.String("record_id", record.ID),
			zap.String("deployment_id", deploymentID),
			zap.Error(err))
		return record, nil, false
	}

	status := &dto.HostingPlatformStatus{
		State:   d.State,
		URL:     d.URL,
		Created: d.Created,
		Ready:   d.Ready,
	}

	next := MapPlatformState(d.State)
	if next == "" {
		logger.Debug("未知的平台构建状态", zap.String("state", d.State))
		return record, status, false
	}
	if strings.EqualFold(next, record.Status) {
		return record, status, false
	}
	if err := ValidateTransition(record.Status, next); err != nil {
		logger.Warn("忽略非法状态流转", zap.String("record_id", record.ID), zap.Error(err))
		return record, status, false
	}

	update := &repository.RecordStatusUpdate{
		Status:          next,
		HostingSnapshot: snapshotOf(d),
	}
	if d.URL != "" {
		update.DeployedURL = lo.ToPtr(withScheme(d.URL))
	}

	updatedAt, err := s.recordRepo.UpdateStatus(ctx, record.ID, update)
	if err != nil {
		logger.Error("回写部署记录状态失败", zap.String("record_id", record.ID), zap.Error(err))
		return record, status, false
	}

	current, err := s.orgRepo.UpdateDeploymentStatus(ctx, record.OrganizationID, deploymentID, next)
	if err != nil {
		logger.Error("回写组织部署状态失败",
			zap.String("organization_id", record.OrganizationID),
			zap.Bool("persistence", pkgErrors.IsPersistence(err)),
			zap.Error(err))
	} else if !current {
		// 组织已指向更新的部署，旧记录只更新自身
		logger.Debug("部署记录已被取代，跳过组织状态回写",
			zap.String("organization_id", record.OrganizationID),
			zap.String("deployment_id", deploymentID))
	}

	logger.Info("部署状态已更新",
		zap.String("record_id", record.ID),
		zap.String("from", record.Status),
		zap.String("to", next))

	s.publisher.Publish(&notification.Event{
		Type:                notification.EventStatusChanged,
		OrganizationID:      record.OrganizationID,
		ProjectName:         record.ProjectName,
		HostingProjectID:    record.HostingProjectID,
		HostingDeploymentID: deploymentID,
		Status:              next,
		BaseURL:             record.BaseURL,
	})

	// 重新读取，保证返回值与之后的读取一致
	fresh, err := s.recordRepo.FindByID(ctx, record.OrganizationID, record.ID)
	if err != nil {
		updated := *record
		updated.Status = next
		if update.DeployedURL != nil {
			updated.DeployedURL = update.DeployedURL
		}
		updated.HostingSnapshot = update.HostingSnapshot
		updated.UpdatedAt = updatedAt
		return &updated, status, true
	}
	return fresh, status, true
}

func snapshotOf(d *api.Deployment) datatypes.JSONMap {
	snapshot := datatypes.JSONMap{
		"state":   d.State,
		"url":     d.URL,
		"created": d.Created,
	}
	if d.Ready != nil {
		snapshot["ready"] = *d.Ready
	}
	return snapshot
}
