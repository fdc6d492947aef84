package vercel

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"

	"tenant-deployer/internal/pkg/hosting/api"
)

const defaultBaseURL = "https://api.vercel.com"

// githubRepoPattern 从仓库地址提取 owner/repo
var githubRepoPattern = regexp.MustCompile(`github\.com[/:]([^/]+)/([^/?#]+)`)

// Provider Vercel 平台提供者
type Provider struct {
	config     *api.ProviderConfig
	httpClient *http.Client
}

// NewProvider 创建 Vercel 提供者
func NewProvider(config *api.ProviderConfig, httpClient *http.Client) (api.HostingProvider, error) {
	if config.Token == "" {
		return nil, fmt.Errorf("hosting token is required")
	}
	if config.BaseURL == "" {
		config.BaseURL = defaultBaseURL
	}
	if config.DashboardURL == "" {
		config.DashboardURL = "https://vercel.com/dashboard"
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}

	return &Provider{
		config:     config,
		httpClient: httpClient,
	}, nil
}

// CreateProject 创建项目，不在创建时关联仓库
func (p *Provider) CreateProject(ctx context.Context, name, framework string) (*api.Project, error) {
	body := map[string]interface{}{
		"name":         name,
		"framework":    framework,
		"publicSource": false,
	}

	var project api.Project
	if err := p.do(ctx, http.MethodPost, "/v10/projects", body, &project); err != nil {
		return nil, err
	}
	return &project, nil
}

// GetProject 查询项目
func (p *Provider) GetProject(ctx context.Context, projectID string) (*api.Project, error) {
	var project api.Project
	if err := p.do(ctx, http.MethodGet, "/v10/projects/"+url.PathEscape(projectID), nil, &project); err != nil {
		return nil, err
	}
	return &project, nil
}

// DeleteProject 删除项目
func (p *Provider) DeleteProject(ctx context.Context, projectID string) error {
	return p.do(ctx, http.MethodDelete, "/v10/projects/"+url.PathEscape(projectID), nil, nil)
}

// ConnectRepository 关联 GitHub 仓库
func (p *Provider) ConnectRepository(ctx context.Context, projectID, repoURL string) error {
	repo, err := ParseGitHubRepo(repoURL)
	if err != nil {
		return err
	}

	body := map[string]interface{}{
		"type": "github",
		"repo": repo,
		"gitSource": map[string]string{
			"type": "github",
			"repo": repo,
		},
	}
	return p.do(ctx, http.MethodPost, "/v10/projects/"+url.PathEscape(projectID)+"/link", body, nil)
}

// SetEnvironmentVariables 逐个写入，单个失败不影响其余变量，返回合并后的错误
func (p *Provider) SetEnvironmentVariables(ctx context.Context, projectID string, vars []api.EnvVar) error {
	path := "/v10/projects/" + url.PathEscape(projectID) + "/env"
	var errs []error
	for _, v := range vars {
		if err := p.do(ctx, http.MethodPost, path, v, nil); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", v.Key, err))
			if ctx.Err() != nil {
				break
			}
		}
	}
	return errors.Join(errs...)
}

// TriggerDeployment 触发生产构建
func (p *Provider) TriggerDeployment(ctx context.Context, projectID, name string, source api.GitSource) (*api.Deployment, error) {
	repo, err := ParseGitHubRepo(source.Repo)
	if err != nil {
		return nil, err
	}

	body := map[string]interface{}{
		"name":    name,
		"project": projectID,
		"target":  "production",
		"gitSource": map[string]string{
			"type":   "github",
			"repoId": repo,
			"ref":    source.Ref,
		},
	}

	var deployment api.Deployment
	if err := p.do(ctx, http.MethodPost, "/v13/deployments", body, &deployment); err != nil {
		return nil, err
	}
	return &deployment, nil
}

// GetDeployment 查询构建状态
func (p *Provider) GetDeployment(ctx context.Context, deploymentID string) (*api.Deployment, error) {
	var deployment api.Deployment
	if err := p.do(ctx, http.MethodGet, "/v13/deployments/"+url.PathEscape(deploymentID), nil, &deployment); err != nil {
		return nil, err
	}
	return &deployment, nil
}

func (p *Provider) DashboardURL(projectID string) string {
	return fmt.Sprintf("%s/projects/%s", strings.TrimSuffix(p.config.DashboardURL, "/"), projectID)
}

func (p *Provider) SettingsURL(projectID string) string {
	return p.DashboardURL(projectID) + "/settings/git"
}

// ParseGitHubRepo 解析出 owner/repo，去掉 .git 后缀
func ParseGitHubRepo(repoURL string) (string, error) {
	m := githubRepoPattern.FindStringSubmatch(repoURL)
	if m == nil {
		return "", &api.HostingPlatformError{Status: http.StatusBadRequest, Message: "Invalid GitHub URL format"}
	}
	return m[1] + "/" + strings.TrimSuffix(m[2], ".git"), nil
}

// do 发送请求并解析响应，out 为 nil 时丢弃响应体
func (p *Provider) do(ctx context.Context, method, path string, in, out interface{}) error {
	var reader io.Reader
	if in != nil {
		payload, err := json.Marshal(in)
		if err != nil {
			return &api.HostingPlatformError{Message: fmt.Sprintf("encode request: %v", err)}
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, p.endpoint(path), reader)
	if err != nil {
		return &api.HostingPlatformError{Message: err.Error()}
	}
	p.setHeaders(req)

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return &api.HostingPlatformError{Message: err.Error()}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return &api.HostingPlatformError{Status: resp.StatusCode, Message: fmt.Sprintf("read response: %v", err)}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &api.HostingPlatformError{Status: resp.StatusCode, Message: errorMessage(body)}
	}

	if out == nil || len(body) == 0 {
		return nil
	}
	if err := json.Unmarshal(body, out); err != nil {
		return &api.HostingPlatformError{Status: resp.StatusCode, Message: fmt.Sprintf("decode response: %v", err)}
	}
	return nil
}

// endpoint 拼接地址，配置了团队时附加 teamId
func (p *Provider) endpoint(path string) string {
	u := strings.TrimSuffix(p.config.BaseURL, "/") + path
	if p.config.TeamID != "" {
		u += "?teamId=" + url.QueryEscape(p.config.TeamID)
	}
	return u
}

func (p *Provider) setHeaders(req *http.Request) {
	req.Header.Set("Authorization", "Bearer "+p.config.Token)
	req.Header.Set("Content-Type", "application/json")
}

// errorMessage 兼容 {"error":{"message":..}} 与 {"message":..} 两种格式
func errorMessage(body []byte) string {
	var payload struct {
		Error   json.RawMessage `json:"error"`
		Message string          `json:"message"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return "Unknown error"
	}

	if len(payload.Error) > 0 {
		var nested struct {
			Message string `json:"message"`
		}
		if err := json.Unmarshal(payload.Error, &nested); err == nil && nested.Message != "" {
			return nested.Message
		}
	}
	if payload.Message != "" {
		return payload.Message
	}
	return "Unknown error"
}
