package api

// Project 托管项目
type Project struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	AccountID string `json:"accountId"`
	CreatedAt int64  `json:"createdAt"`
	UpdatedAt int64  `json:"updatedAt"`
}

// Deployment 构建信息，State 为平台原始值（QUEUED/BUILDING/READY/...）
type Deployment struct {
	UID     string `json:"uid"`
	Name    string `json:"name"`
	URL     string `json:"url"`
	State   string `json:"state"`
	Created int64  `json:"created"`
	Ready   *int64 `json:"ready,omitempty"`
}

// EnvVar 项目环境变量
type EnvVar struct {
	Key    string   `json:"key"`
	Value  string   `json:"value"`
	Target []string `json:"target"`
	Type   string   `json:"type"` // plain or encrypted
}

// GitSource 触发构建使用的代码来源
type GitSource struct {
	Repo string // 仓库地址
	Ref  string // 分支或提交
}

// ProviderConfig 通用平台配置
type ProviderConfig struct {
	BaseURL      string
	Token        string
	TeamID       string
	DashboardURL string
}
