// Package hostingtest 提供内存实现的托管平台，供测试使用
package hostingtest

import (
	"context"
	"fmt"
	"sync"

	"tenant-deployer/internal/pkg/hosting/api"
)

// Fake 可编排返回值的托管平台；Err 字段非空时对应方法返回该错误
type Fake struct {
	mu sync.Mutex

	CreateErr  error
	ConnectErr error
	EnvErr     error
	// TriggerErrs 按调用顺序返回，用尽后成功
	TriggerErrs []error
	GetErr      error

	// States GetDeployment 返回的状态，按 deployment id
	States map[string]string

	Projects      []string
	ConnectCalls  []string
	EnvCalls      [][]api.EnvVar
	TriggerCalls  []api.GitSource
	GetCalls      int
	nextProjectID int
}

func New() *Fake {
	return &Fake{States: map[string]string{}}
}

func (f *Fake) CreateProject(_ context.Context, name, _ string) (*api.Project, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.CreateErr != nil {
		return nil, f.CreateErr
	}
	f.nextProjectID++
	id := fmt.Sprintf("prj_%d", f.nextProjectID)
	f.Projects = append(f.Projects, name)
	return &api.Project{ID: id, Name: name}, nil
}

func (f *Fake) GetProject(_ context.Context, projectID string) (*api.Project, error) {
	return &api.Project{ID: projectID}, nil
}

func (f *Fake) DeleteProject(context.Context, string) error {
	return nil
}

func (f *Fake) ConnectRepository(_ context.Context, _, repoURL string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.ConnectCalls = append(f.ConnectCalls, repoURL)
	return f.ConnectErr
}

func (f *Fake) SetEnvironmentVariables(_ context.Context, _ string, vars []api.EnvVar) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.EnvCalls = append(f.EnvCalls, vars)
	return f.EnvErr
}

func (f *Fake) TriggerDeployment(_ context.Context, projectID, _ string, source api.GitSource) (*api.Deployment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := len(f.TriggerCalls)
	f.TriggerCalls = append(f.TriggerCalls, source)
	if n < len(f.TriggerErrs) && f.TriggerErrs[n] != nil {
		return nil, f.TriggerErrs[n]
	}
	id := fmt.Sprintf("dpl_%s_%d", projectID, n+1)
	f.States[id] = "QUEUED"
	return &api.Deployment{UID: id, URL: id + ".vercel.app", State: "QUEUED", Created: 1700000000000}, nil
}

func (f *Fake) GetDeployment(_ context.Context, deploymentID string) (*api.Deployment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.GetCalls++
	if f.GetErr != nil {
		return nil, f.GetErr
	}
	state, ok := f.States[deploymentID]
	if !ok {
		return nil, &api.HostingPlatformError{Status: 404, Message: "Deployment not found"}
	}
	return &api.Deployment{UID: deploymentID, URL: deploymentID + ".vercel.app", State: state, Created: 1700000000000}, nil
}

func (f *Fake) DashboardURL(projectID string) string {
	return "https://dashboard.test/projects/" + projectID
}

func (f *Fake) SettingsURL(projectID string) string {
	return f.DashboardURL(projectID) + "/settings/git"
}

// SetState 修改平台上的构建状态
func (f *Fake) SetState(deploymentID, state string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.States[deploymentID] = state
}

// TriggerCount 触发调用次数
func (f *Fake) TriggerCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.TriggerCalls)
}

var _ api.HostingProvider = (*Fake)(nil)
