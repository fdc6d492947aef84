package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/samber/lo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tenant-deployer/internal/adapter/notification"
	"tenant-deployer/internal/model"
	"tenant-deployer/internal/pkg/hosting/api"
	"tenant-deployer/internal/pkg/hosting/hostingtest"
	"tenant-deployer/internal/repository"
	"tenant-deployer/pkg/constants"
	pkgErrors "tenant-deployer/pkg/errors"
)

func (e *env) seedRecord(t *testing.T, id, status string, deploymentID *string, createdAt time.Time) *model.DeploymentRecord {
	t.Helper()
	record := &model.DeploymentRecord{
		ID:                  id,
		OrganizationID:      tenantID,
		HostingProjectID:    "prj_1",
		HostingDeploymentID: deploymentID,
		ProjectName:         "acme---co-12345678",
		BaseURL:             "https://acme---co-12345678.vercel.app",
		Status:              status,
		CreatedBy:           "creator",
		CreatedAt:           createdAt,
		UpdatedAt:           createdAt,
	}
	require.NoError(t, e.recordRepo.Create(context.Background(), record))
	return record
}

// pointOrgAt 让组织指向给定的构建，模拟该构建由最近一次部署触发
func (e *env) pointOrgAt(t *testing.T, deploymentID string) {
	t.Helper()
	require.NoError(t, e.orgRepo.UpdateDeployment(context.Background(), tenantID, &repository.OrganizationDeployment{
		BaseURL:             "https://acme---co-12345678.vercel.app",
		HostingProjectID:    "prj_1",
		HostingDeploymentID: lo.ToPtr(deploymentID),
		DeploymentStatus:    constants.DeploymentStatusBuilding,
	}))
}

func (e *env) statusService(hosting api.HostingProvider) DeploymentStatusService {
	return NewDeploymentStatusService(hosting, e.orgRepo, e.recordRepo, e.events)
}

func TestGetStatusNotFound(t *testing.T) {
	e := newEnv(t)
	svc := e.statusService(hostingtest.New())

	_, err := svc.GetStatus(context.Background(), tenantID, "")
	assert.True(t, errors.Is(err, pkgErrors.ErrDeploymentNotFound))

	e.seedRecord(t, "rec-1", constants.DeploymentStatusCreated, nil, time.Now().UTC())
	_, err = svc.GetStatus(context.Background(), "foreign-org-0001", "rec-1")
	assert.True(t, errors.Is(err, pkgErrors.ErrDeploymentNotFound))
}

func TestGetStatusWithoutBuildSkipsPlatform(t *testing.T) {
	e := newEnv(t)
	fake := hostingtest.New()
	e.seedRecord(t, "rec-1", constants.DeploymentStatusCreated, nil, time.Now().UTC())

	view, err := e.statusService(fake).GetStatus(context.Background(), tenantID, "")
	require.NoError(t, err)
	assert.Equal(t, constants.DeploymentStatusCreated, view.Status)
	assert.Nil(t, view.HostingPlatformStatus)
	assert.Zero(t, fake.GetCalls)
}

func TestGetStatusReturnsLatest(t *testing.T) {
	e := newEnv(t)
	now := time.Now().UTC()
	e.seedRecord(t, "rec-old", constants.DeploymentStatusCreated, nil, now.Add(-time.Hour))
	e.seedRecord(t, "rec-new", constants.DeploymentStatusCreated, nil, now)

	svc := e.statusService(hostingtest.New())
	view, err := svc.GetStatus(context.Background(), tenantID, "")
	require.NoError(t, err)
	assert.Equal(t, "rec-new", view.ID)

	view, err = svc.GetStatus(context.Background(), tenantID, "rec-old")
	require.NoError(t, err)
	assert.Equal(t, "rec-old", view.ID)
}

func TestGetStatusReconcilesReadyBuild(t *testing.T) {
	e := newEnv(t)
	fake := hostingtest.New()
	fake.SetState("dpl_1", "READY")
	e.pointOrgAt(t, "dpl_1")
	e.seedRecord(t, "rec-1", constants.DeploymentStatusBuilding, lo.ToPtr("dpl_1"), time.Now().UTC())

	svc := e.statusService(fake)
	view, err := svc.GetStatus(context.Background(), tenantID, "rec-1")
	require.NoError(t, err)

	assert.Equal(t, constants.DeploymentStatusReady, view.Status)
	assert.Equal(t, "https://dpl_1.vercel.app", lo.FromPtr(view.DeployedURL))
	require.NotNil(t, view.HostingPlatformStatus)
	assert.Equal(t, "READY", view.HostingPlatformStatus.State)
	assert.Equal(t, "READY", view.HostingSnapshot["state"])

	org := e.org(t, tenantID)
	assert.Equal(t, constants.DeploymentStatusReady, lo.FromPtr(org.DeploymentStatus))

	require.Len(t, e.events.events, 1)
	assert.Equal(t, notification.EventStatusChanged, e.events.events[0].Type)
	assert.Equal(t, constants.DeploymentStatusReady, e.events.events[0].Status)

	// 再次读取不会产生新的变更
	again, err := svc.GetStatus(context.Background(), tenantID, "rec-1")
	require.NoError(t, err)
	assert.Equal(t, view.Status, again.Status)
	assert.Equal(t, view.DeployedURL, again.DeployedURL)
	assert.Len(t, e.events.events, 1)
}

func TestGetStatusKeepsRecordWhenStateUnchanged(t *testing.T) {
	e := newEnv(t)
	fake := hostingtest.New()
	fake.SetState("dpl_1", "BUILDING")
	seeded := e.seedRecord(t, "rec-1", constants.DeploymentStatusBuilding, lo.ToPtr("dpl_1"), time.Now().UTC())

	view, err := e.statusService(fake).GetStatus(context.Background(), tenantID, "rec-1")
	require.NoError(t, err)
	assert.Equal(t, constants.DeploymentStatusBuilding, view.Status)
	assert.Nil(t, view.DeployedURL)
	assert.Equal(t, "BUILDING", view.HostingPlatformStatus.State)
	assert.WithinDuration(t, seeded.UpdatedAt, view.UpdatedAt, time.Second)
	assert.Empty(t, e.events.events)
}

func TestGetStatusSwallowsPollFailure(t *testing.T) {
	e := newEnv(t)
	fake := hostingtest.New()
	fake.GetErr = &api.HostingPlatformError{Status: 503, Message: "Service unavailable"}
	e.seedRecord(t, "rec-1", constants.DeploymentStatusBuilding, lo.ToPtr("dpl_1"), time.Now().UTC())

	view, err := e.statusService(fake).GetStatus(context.Background(), tenantID, "")
	require.NoError(t, err)
	assert.Equal(t, constants.DeploymentStatusBuilding, view.Status)
	assert.Nil(t, view.HostingPlatformStatus)
	assert.Equal(t, 1, fake.GetCalls)
}

func TestGetStatusIgnoresUnknownAndInvalidStates(t *testing.T) {
	e := newEnv(t)
	fake := hostingtest.New()
	fake.SetState("dpl_1", "DELETED")
	fake.SetState("dpl_2", "BUILDING")
	e.seedRecord(t, "rec-1", constants.DeploymentStatusBuilding, lo.ToPtr("dpl_1"), time.Now().UTC())
	e.seedRecord(t, "rec-2", constants.DeploymentStatusReady, lo.ToPtr("dpl_2"), time.Now().UTC())

	svc := e.statusService(fake)
	view, err := svc.GetStatus(context.Background(), tenantID, "rec-1")
	require.NoError(t, err)
	assert.Equal(t, constants.DeploymentStatusBuilding, view.Status)

	view, err = svc.GetStatus(context.Background(), tenantID, "rec-2")
	require.NoError(t, err)
	assert.Equal(t, constants.DeploymentStatusReady, view.Status)
	assert.Empty(t, e.events.events)
}

func TestGetStatusWithoutHosting(t *testing.T) {
	e := newEnv(t)
	e.seedRecord(t, "rec-1", constants.DeploymentStatusBuilding, lo.ToPtr("dpl_1"), time.Now().UTC())

	view, err := e.statusService(nil).GetStatus(context.Background(), tenantID, "")
	require.NoError(t, err)
	assert.Equal(t, constants.DeploymentStatusBuilding, view.Status)
	assert.Nil(t, view.HostingPlatformStatus)
}

func TestReconcileBuilding(t *testing.T) {
	e := newEnv(t)
	fake := hostingtest.New()
	now := time.Now().UTC()

	fake.SetState("dpl_ready", "READY")
	fake.SetState("dpl_failed", "ERROR")
	fake.SetState("dpl_busy", "BUILDING")
	fake.SetState("dpl_stale", "READY")
	e.seedRecord(t, "rec-ready", constants.DeploymentStatusBuilding, lo.ToPtr("dpl_ready"), now.Add(-time.Minute))
	e.seedRecord(t, "rec-failed", constants.DeploymentStatusBuilding, lo.ToPtr("dpl_failed"), now.Add(-2*time.Minute))
	e.seedRecord(t, "rec-busy", constants.DeploymentStatusBuilding, lo.ToPtr("dpl_busy"), now.Add(-3*time.Minute))
	e.seedRecord(t, "rec-stale", constants.DeploymentStatusBuilding, lo.ToPtr("dpl_stale"), now.Add(-48*time.Hour))
	e.seedRecord(t, "rec-created", constants.DeploymentStatusCreated, nil, now)

	changed, err := e.statusService(fake).ReconcileBuilding(context.Background(), 24*time.Hour)
	require.NoError(t, err)
	assert.Equal(t, 2, changed)
	assert.Equal(t, 3, fake.GetCalls)

	get := func(id string) *model.DeploymentRecord {
		r, err := e.recordRepo.FindByID(context.Background(), tenantID, id)
		require.NoError(t, err)
		return r
	}
	assert.Equal(t, constants.DeploymentStatusReady, get("rec-ready").Status)
	assert.Equal(t, constants.DeploymentStatusError, get("rec-failed").Status)
	assert.Equal(t, constants.DeploymentStatusBuilding, get("rec-busy").Status)
	assert.Equal(t, constants.DeploymentStatusBuilding, get("rec-stale").Status)
}

func TestReconcileSupersededBuildLeavesOrganization(t *testing.T) {
	e := newEnv(t)
	fake := hostingtest.New()
	deploySvc := e.deployService(fake, nil)

	first, err := e.deploy(t, deploySvc, nil)
	require.NoError(t, err)
	require.Equal(t, "dpl_prj_1_1", lo.FromPtr(first.HostingDeploymentID))

	// 第二次部署关联仓库失败，组织停留在 created 且没有构建
	fake.ConnectErr = &api.HostingPlatformError{Status: 400, Message: "GitHub integration missing"}
	second, err := e.deploy(t, deploySvc, nil)
	require.NoError(t, err)
	require.Equal(t, constants.DeploymentStatusCreated, second.DeploymentStatus)

	fake.SetState("dpl_prj_1_1", "READY")
	changed, err := e.statusService(fake).ReconcileBuilding(context.Background(), time.Hour)
	require.NoError(t, err)
	assert.Equal(t, 1, changed)

	org := e.org(t, tenantID)
	assert.Equal(t, constants.DeploymentStatusCreated, lo.FromPtr(org.DeploymentStatus))
	assert.Equal(t, "prj_2", lo.FromPtr(org.HostingProjectID))
	assert.Nil(t, org.HostingDeploymentID)

	// 旧记录本身仍然完成对齐
	var superseded model.DeploymentRecord
	require.NoError(t, e.db.Where("hosting_deployment_id = ?", "dpl_prj_1_1").First(&superseded).Error)
	assert.Equal(t, constants.DeploymentStatusReady, superseded.Status)
}

func TestReconcileBuildingWithoutHosting(t *testing.T) {
	e := newEnv(t)
	changed, err := e.statusService(nil).ReconcileBuilding(context.Background(), time.Hour)
	require.NoError(t, err)
	assert.Zero(t, changed)
}
