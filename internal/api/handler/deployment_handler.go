package handler

import (
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"tenant-deployer/internal/api/middleware"
	"tenant-deployer/internal/dto"
	"tenant-deployer/internal/pkg/logger"
	"tenant-deployer/internal/service"
	pkgErrors "tenant-deployer/pkg/errors"
	"tenant-deployer/pkg/responses"
	"tenant-deployer/pkg/utils"
)

const deploymentInitiatedMessage = "Site deployment initiated successfully"

// DeploymentHandler 站点部署处理器
type DeploymentHandler struct {
	authz  service.AuthorizationService
	deploy service.DeployService
	status service.DeploymentStatusService
}

func NewDeploymentHandler(
	authz service.AuthorizationService,
	deploy service.DeployService,
	status service.DeploymentStatusService,
) *DeploymentHandler {
	return &DeploymentHandler{
		authz:  authz,
		deploy: deploy,
		status: status,
	}
}

// Create 部署租户站点
// @Summary 部署租户站点
// @Description 创建托管项目、关联仓库、写入环境变量并触发首次构建；创建项目之后的步骤失败时返回 200 与手动操作说明
// @Tags Deployment
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.CreateDeploymentRequest true "部署请求"
// @Success 200 {object} dto.CreateDeploymentResponse
// @Failure 400 {object} responses.ErrorResponse
// @Failure 401 {object} responses.ErrorResponse
// @Failure 403 {object} responses.ErrorResponse
// @Failure 404 {object} responses.ErrorResponse
// @Failure 409 {object} responses.ErrorResponse
// @Failure 500 {object} responses.ErrorResponse
// @Router /api/v1/deployments [post]
func (h *DeploymentHandler) Create(c *gin.Context) {
	caller, ok := middleware.CallerFrom(c)
	if !ok {
		responses.Error(c, pkgErrors.ErrUnauthorized)
		return
	}

	var req dto.CreateDeploymentRequest
	// 空 body 按缺少 organizationId 处理
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		responses.ErrorWithDetail(c, http.StatusBadRequest, "Invalid request body", utils.FormatValidationError(err))
		return
	}
	req.OrganizationID = strings.TrimSpace(req.OrganizationID)
	if req.OrganizationID == "" {
		responses.Error(c, pkgErrors.ErrOrganizationIDRequired)
		return
	}

	ctx := c.Request.Context()
	profile, org, err := h.authz.AuthorizeDeploy(ctx, caller.Subject, req.OrganizationID)
	if err != nil {
		logger.Warn("部署鉴权未通过",
			zap.String("profile_id", caller.Subject),
			zap.String("organization_id", req.OrganizationID),
			zap.Error(err))
		responses.Error(c, err)
		return
	}

	result, err := h.deploy.Deploy(ctx, profile, org, &req)
	if err != nil {
		responses.Error(c, err)
		return
	}

	responses.JSON(c, dto.CreateDeploymentResponse{
		Success: true,
		Message: deploymentInitiatedMessage,
		Data:    result,
	})
}

// Get 查询部署状态
// @Summary 查询部署状态
// @Description 返回最新（或指定）部署记录，构建中时同步托管平台状态
// @Tags Deployment
// @Produce json
// @Security BearerAuth
// @Param organizationId query string true "组织ID"
// @Param deploymentId query string false "部署记录ID，为空取最新"
// @Success 200 {object} dto.DeploymentStatusResponse
// @Failure 400 {object} responses.ErrorResponse
// @Failure 401 {object} responses.ErrorResponse
// @Failure 404 {object} responses.ErrorResponse
// @Router /api/v1/deployments [get]
func (h *DeploymentHandler) Get(c *gin.Context) {
	var query dto.DeploymentQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		responses.ErrorWithDetail(c, http.StatusBadRequest, "Invalid query parameters", utils.FormatValidationError(err))
		return
	}
	query.OrganizationID = strings.TrimSpace(query.OrganizationID)
	if query.OrganizationID == "" {
		responses.Error(c, pkgErrors.ErrOrganizationIDRequired)
		return
	}

	view, err := h.status.GetStatus(c.Request.Context(), query.OrganizationID, strings.TrimSpace(query.DeploymentID))
	if err != nil {
		responses.Error(c, err)
		return
	}

	responses.JSON(c, dto.DeploymentStatusResponse{
		Success:    true,
		Deployment: view,
	})
}
