package service

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/samber/lo"
	"go.uber.org/zap"

	"tenant-deployer/internal/adapter/notification"
	"tenant-deployer/internal/dto"
	"tenant-deployer/internal/model"
	"tenant-deployer/internal/pkg/config"
	"tenant-deployer/internal/pkg/hosting/api"
	"tenant-deployer/internal/pkg/lock"
	"tenant-deployer/internal/pkg/logger"
	"tenant-deployer/internal/pkg/metrics"
	"tenant-deployer/internal/repository"
	"tenant-deployer/pkg/constants"
	pkgErrors "tenant-deployer/pkg/errors"
)

const estimatedBuildTime = 5 * time.Minute

var projectNameInvalidChars = regexp.MustCompile(`[^a-z0-9]`)

// EventPublisher 事件异步投递
type EventPublisher interface {
	Publish(event *notification.Event)
}

type noopPublisher struct{}

func (noopPublisher) Publish(*notification.Event) {}

// DeployService 站点部署编排
type DeployService interface {
	// Deploy 创建项目后的步骤均降级处理，只要项目已创建就返回结果
	Deploy(ctx context.Context, caller *model.Profile, org *model.Organization, req *dto.CreateDeploymentRequest) (*dto.DeploymentResult, error)
}

type deployService struct {
	hosting    api.HostingProvider
	trigger    *DeploymentTrigger
	orgRepo    repository.OrganizationRepository
	recordRepo repository.DeploymentRecordRepository
	locker     lock.Locker
	publisher  EventPublisher

	hostingCfg config.HostingConfig
	siteEnv    config.SiteEnvConfig
	lockTTL    time.Duration
	now        func() time.Time
}

// NewDeployService hosting 为 nil 表示未配置托管平台
func NewDeployService(
	hosting api.HostingProvider,
	orgRepo repository.OrganizationRepository,
	recordRepo repository.DeploymentRecordRepository,
	locker lock.Locker,
	publisher EventPublisher,
	cfg *config.Config,
) DeployService {
	if publisher == nil {
		publisher = noopPublisher{}
	}
	if locker == nil {
		locker = lock.NewMemoryLocker()
	}

	s := &deployService{
		hosting:    hosting,
		orgRepo:    orgRepo,
		recordRepo: recordRepo,
		locker:     locker,
		publisher:  publisher,
		hostingCfg: cfg.Hosting,
		siteEnv:    cfg.SiteEnv,
		lockTTL:    lockTTLFor(cfg),
		now:        time.Now,
	}
	if hosting != nil {
		s.trigger = NewDeploymentTrigger(hosting, cfg.Core.Deploy)
	}
	return s
}

// lockTTLMargin 写库与日志等收尾步骤的余量
const lockTTLMargin = 30 * time.Second

// lockTTLFor 锁有效期不短于最坏情况的编排耗时：建项目、关联仓库、逐个写变量各占一次请求超时，再加触发预算
func lockTTLFor(cfg *config.Config) time.Duration {
	calls := time.Duration(2 + maxSiteEnvVars)
	worst := calls*cfg.Hosting.Timeout + cfg.Core.Deploy.TriggerTimeout + lockTTLMargin
	return max(cfg.Core.Deploy.LockTTL, worst)
}

// ProjectName 租户名转小写，非 [a-z0-9] 替换为 "-"，再拼接 id 前 8 位
func ProjectName(orgName, orgID string) string {
	name := projectNameInvalidChars.ReplaceAllString(strings.ToLower(orgName), "-")
	suffix := orgID
	if len(suffix) > 8 {
		suffix = suffix[:8]
	}
	return name + "-" + suffix
}

// pipeline 一次编排过程中的中间结果
type pipeline struct {
	org         *model.Organization
	caller      *model.Profile
	projectName string
	baseURL     string
	repo        string
	branch      string

	project    *api.Project
	linked     bool
	deployment *api.Deployment

	linkErr    error
	envErr     error
	triggerErr error
}

func (s *deployService) Deploy(ctx context.Context, caller *model.Profile, org *model.Organization, req *dto.CreateDeploymentRequest) (*dto.DeploymentResult, error) {
	if s.hosting == nil {
		return nil, pkgErrors.ErrHostingNotConfigured
	}

	unlock, err := s.acquire(ctx, org.ID)
	if err != nil {
		return nil, err
	}
	defer unlock()

	// 客户端断开后继续执行，已创建的项目必须落库
	ctx = context.WithoutCancel(ctx)

	p := &pipeline{
		org:         org,
		caller:      caller,
		projectName: ProjectName(org.Name, org.ID),
		repo:        lo.FromPtr(req.GitRepository),
		branch:      lo.FromPtr(req.Branch),
	}
	if p.repo == "" {
		p.repo = s.hostingCfg.DefaultRepository
	}
	if p.branch == "" {
		p.branch = s.hostingCfg.DefaultBranch
	}
	if p.branch == "" {
		p.branch = "main"
	}
	p.baseURL = fmt.Sprintf("https://%s.%s", p.projectName, s.hostingCfg.SiteDomain)

	if err := s.provision(ctx, p); err != nil {
		return nil, err
	}
	s.link(ctx, p)
	s.configure(ctx, p)
	s.triggerBuild(ctx, p)
	s.record(ctx, p)

	result := s.buildResult(p)
	metrics.IncDeployOutcome(result.DeploymentStatus)

	s.publisher.Publish(&notification.Event{
		Type:                notification.EventSiteDeployed,
		OrganizationID:      org.ID,
		OrganizationName:    org.Name,
		ProjectName:         p.projectName,
		HostingProjectID:    p.project.ID,
		HostingDeploymentID: lo.FromPtr(result.HostingDeploymentID),
		Status:              result.DeploymentStatus,
		BaseURL:             p.baseURL,
		UserEmail:           caller.Email,
		Message:             lo.FromPtr(result.ManualDeploymentNote),
		Timestamp:           s.now().UTC(),
	})

	return result, nil
}

// acquire 锁存储不可用时放行
func (s *deployService) acquire(ctx context.Context, orgID string) (lock.Unlock, error) {
	unlock, ok, err := s.locker.TryLock(ctx, constants.LockKeyDeployPrefix+orgID, s.lockTTL)
	if err != nil {
		logger.Warn("获取部署锁失败，继续执行", zap.String("organization_id", orgID), zap.Error(err))
		return func() {}, nil
	}
	if !ok {
		return nil, pkgErrors.ErrDeploymentInProgress
	}
	return unlock, nil
}

// provision 唯一会导致请求失败的步骤，不重试以免重复创建
func (s *deployService) provision(ctx context.Context, p *pipeline) error {
	project, err := s.hosting.CreateProject(ctx, p.projectName, s.hostingCfg.Framework)
	if err != nil {
		logger.Error("创建托管项目失败",
			zap.String("organization_id", p.org.ID),
			zap.String("project_name", p.projectName),
			zap.Error(err))
		return pkgErrors.Wrap(pkgErrors.CodeInternalError,
			fmt.Sprintf("Failed to create hosting project: %s", hostingMessage(err)), err)
	}

	p.project = project
	logger.Info("托管项目已创建",
		zap.String("organization_id", p.org.ID),
		zap.String("project_id", project.ID),
		zap.String("project_name", p.projectName))
	return nil
}

func (s *deployService) link(ctx context.Context, p *pipeline) {
	if p.repo == "" {
		logger.Warn("未配置代码仓库，跳过关联", zap.String("project_id", p.project.ID))
		return
	}

	if err := s.hosting.ConnectRepository(ctx, p.project.ID, p.repo); err != nil {
		p.linkErr = err
		logger.Warn("关联代码仓库失败，需手动关联",
			zap.String("project_id", p.project.ID),
			zap.String("repository", p.repo),
			zap.Error(err))
		return
	}
	p.linked = true
}

func (s *deployService) configure(ctx context.Context, p *pipeline) {
	vars := BuildSiteEnv(s.siteEnv, p.org.ID, p.org.Name, p.baseURL)
	if err := s.hosting.SetEnvironmentVariables(ctx, p.project.ID, vars); err != nil {
		p.envErr = err
		logger.Warn("写入环境变量失败，需手动配置",
			zap.String("project_id", p.project.ID),
			zap.Error(err))
	}
}

func (s *deployService) triggerBuild(ctx context.Context, p *pipeline) {
	if !p.linked {
		return
	}

	deployment, err := s.trigger.Trigger(ctx, p.project.ID, p.projectName, api.GitSource{Repo: p.repo, Ref: p.branch})
	if err != nil {
		p.triggerErr = err
		logger.Warn("触发首次构建失败，需手动部署",
			zap.String("project_id", p.project.ID),
			zap.Error(err))
		return
	}
	p.deployment = deployment
	logger.Info("首次构建已触发",
		zap.String("project_id", p.project.ID),
		zap.String("deployment_id", deployment.UID))
}

// record 写库失败只记日志，平台资源已创建，以响应为准
func (s *deployService) record(ctx context.Context, p *pipeline) {
	status := initialStatus(p.deployment != nil)
	var deploymentID *string
	if p.deployment != nil {
		deploymentID = lo.ToPtr(p.deployment.UID)
	}

	if err := s.orgRepo.UpdateDeployment(ctx, p.org.ID, &repository.OrganizationDeployment{
		BaseURL:             p.baseURL,
		HostingProjectID:    p.project.ID,
		HostingDeploymentID: deploymentID,
		DeploymentStatus:    status,
	}); err != nil {
		logger.Error("回写组织部署信息失败",
			zap.String("organization_id", p.org.ID),
			zap.Bool("persistence", pkgErrors.IsPersistence(err)),
			zap.Error(err))
	}

	record := &model.DeploymentRecord{
		ID:                  uuid.NewString(),
		OrganizationID:      p.org.ID,
		HostingProjectID:    p.project.ID,
		HostingDeploymentID: deploymentID,
		ProjectName:         p.projectName,
		BaseURL:             p.baseURL,
		GitRepository:       p.repo,
		GitBranch:           p.branch,
		Status:              status,
		ErrorMessage:        p.degradedSummary(),
		CreatedBy:           p.caller.ID,
	}
	if err := s.recordRepo.Create(ctx, record); err != nil {
		logger.Error("写入部署记录失败",
			zap.String("organization_id", p.org.ID),
			zap.Bool("persistence", pkgErrors.IsPersistence(err)),
			zap.Error(err))
	}
}

// degradedSummary 降级步骤的错误汇总
func (p *pipeline) degradedSummary() *string {
	var parts []string
	if p.linkErr != nil {
		parts = append(parts, "connect repository: "+hostingMessage(p.linkErr))
	}
	if p.envErr != nil {
		parts = append(parts, "set environment variables: "+hostingMessage(p.envErr))
	}
	if p.triggerErr != nil {
		parts = append(parts, "trigger deployment: "+hostingMessage(p.triggerErr))
	}
	if len(parts) == 0 {
		return nil
	}
	return lo.ToPtr(strings.Join(parts, "; "))
}

func (s *deployService) buildResult(p *pipeline) *dto.DeploymentResult {
	dashboardURL := s.hosting.DashboardURL(p.project.ID)
	settingsURL := s.hosting.SettingsURL(p.project.ID)

	result := &dto.DeploymentResult{
		OrganizationID:   p.org.ID,
		ProjectName:      p.projectName,
		BaseURL:          p.baseURL,
		HostingProjectID: p.project.ID,
		DeploymentStatus: initialStatus(p.deployment != nil),
		DashboardURL:     dashboardURL,
		SettingsURL:      settingsURL,
	}

	switch {
	case p.deployment != nil:
		result.HostingDeploymentID = lo.ToPtr(p.deployment.UID)
		if p.deployment.URL != "" {
			result.DeploymentURL = lo.ToPtr(withScheme(p.deployment.URL))
		}
		result.EstimatedReadyTime = lo.ToPtr(s.now().UTC().Add(estimatedBuildTime).Format(time.RFC3339))
		result.Instructions = []string{
			"The first deployment was triggered automatically; no action is required.",
			fmt.Sprintf("The site will be available at %s once the build finishes (usually within 5 minutes).", p.baseURL),
			fmt.Sprintf("Follow the build progress in the hosting dashboard: %s", dashboardURL),
		}
	case p.linked:
		result.ManualDeploymentNote = lo.ToPtr("The repository was connected, but the first deployment could not be started automatically. Trigger it manually from the hosting dashboard.")
		result.Instructions = []string{
			fmt.Sprintf("Open the project dashboard: %s", dashboardURL),
			fmt.Sprintf("Create a new production deployment from branch %q.", p.branch),
			fmt.Sprintf("Once the build finishes the site will be available at %s.", p.baseURL),
		}
	case p.repo == "":
		result.ManualDeploymentNote = lo.ToPtr("No source repository is configured. Connect a repository and deploy manually.")
		result.Instructions = []string{
			fmt.Sprintf("Open the project Git settings: %s", settingsURL),
			"Connect the repository that contains the tenant site.",
			fmt.Sprintf("Deploy from the project dashboard: %s", dashboardURL),
		}
	default:
		result.ManualDeploymentNote = lo.ToPtr("The hosting project was created, but the repository could not be connected automatically. Connect it manually and trigger the first deployment.")
		result.Instructions = []string{
			fmt.Sprintf("Open the project Git settings: %s", settingsURL),
			fmt.Sprintf("Connect the repository %s.", p.repo),
			fmt.Sprintf("Create a production deployment from branch %q in the dashboard: %s", p.branch, dashboardURL),
		}
	}

	if p.envErr != nil {
		result.Instructions = append(result.Instructions,
			fmt.Sprintf("Environment variables could not be configured automatically; add them in the project settings: %s", dashboardURL+"/settings/environment-variables"))
	}

	return result
}

// hostingMessage 平台错误取上游文案
func hostingMessage(err error) string {
	var hpe *api.HostingPlatformError
	if errors.As(err, &hpe) {
		if hpe.Status > 0 {
			return fmt.Sprintf("%d - %s", hpe.Status, hpe.Message)
		}
		return hpe.Message
	}
	return err.Error()
}

func withScheme(u string) string {
	if strings.HasPrefix(u, "http://") || strings.HasPrefix(u, "https://") {
		return u
	}
	return "https://" + u
}
