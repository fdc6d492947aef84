package notification

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"

	"tenant-deployer/pkg/constants"
)

// EventType 事件类型
type EventType string

const (
	EventSiteDeployed  EventType = "site_deployed"  // 编排完成（无论是否触发构建）
	EventStatusChanged EventType = "status_changed" // 状态同步发现变化
)

// Event 部署事件
type Event struct {
	Type                EventType `json:"type"`
	OrganizationID      string    `json:"organization_id"`
	OrganizationName    string    `json:"organization_name,omitempty"`
	ProjectName         string    `json:"project_name,omitempty"`
	HostingProjectID    string    `json:"hosting_project_id,omitempty"`
	HostingDeploymentID string    `json:"hosting_deployment_id,omitempty"`
	Status              string    `json:"status"`
	BaseURL             string    `json:"base_url,omitempty"`
	UserEmail           string    `json:"user_email,omitempty"`
	Message             string    `json:"message,omitempty"`
	Timestamp           time.Time `json:"timestamp"`
}

// Notifier 通知器接口
type Notifier interface {
	// Send 发送通知
	Send(ctx context.Context, event *Event) error
}

// ============= Lark 通知适配器 =============

// LarkNotifier Lark通知器
type LarkNotifier struct {
	webhookURL string
	logger     *zap.Logger
	client     *http.Client
}

// NewLarkNotifier 创建Lark通知器
func NewLarkNotifier(webhookURL string, logger *zap.Logger) *LarkNotifier {
	return &LarkNotifier{
		webhookURL: webhookURL,
		logger:     logger,
		client: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// Send 发送通知
func (n *LarkNotifier) Send(ctx context.Context, event *Event) error {
	if n.webhookURL == "" {
		return nil
	}

	jsonData, err := json.Marshal(n.buildLarkMessage(event))
	if err != nil {
		return fmt.Errorf("序列化消息失败: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.webhookURL, bytes.NewBuffer(jsonData))
	if err != nil {
		return fmt.Errorf("创建请求失败: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("发送请求失败: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("Lark API返回错误状态码: %d", resp.StatusCode)
	}

	n.logger.Debug("Lark通知发送成功",
		zap.String("type", string(event.Type)),
		zap.String("organization_id", event.OrganizationID))
	return nil
}

// buildLarkMessage 构建Lark卡片消息
func (n *LarkNotifier) buildLarkMessage(event *Event) map[string]interface{} {
	title, color := "📢 站点部署通知", "grey"
	switch event.Status {
	case constants.DeploymentStatusBuilding:
		title, color = "🚀 站点构建中", "blue"
	case constants.DeploymentStatusReady:
		title, color = "✅ 站点已上线", "green"
	case constants.DeploymentStatusError:
		title, color = "❌ 站点构建失败", "red"
	case constants.DeploymentStatusCreated:
		title, color = "🛠 项目已创建，需手动部署", "orange"
	}

	content := fmt.Sprintf("**组织**: %s (%s)\n**项目**: %s\n**地址**: %s\n**操作人**: %s",
		event.OrganizationName, event.OrganizationID, event.ProjectName, event.BaseURL, event.UserEmail)
	if event.Message != "" {
		content += "\n**消息**: " + event.Message
	}

	return map[string]interface{}{
		"msg_type": "interactive",
		"card": map[string]interface{}{
			"header": map[string]interface{}{
				"title": map[string]interface{}{
					"tag":     "plain_text",
					"content": title,
				},
				"template": color,
			},
			"elements": []interface{}{
				map[string]interface{}{
					"tag": "div",
					"text": map[string]interface{}{
						"tag":     "lark_md",
						"content": content,
					},
				},
				map[string]interface{}{
					"tag": "div",
					"text": map[string]interface{}{
						"tag":     "plain_text",
						"content": fmt.Sprintf("时间: %s", event.Timestamp.Format("2006-01-02 15:04:05")),
					},
				},
			},
		},
	}
}

// ============= 多通知器 =============

// MultiNotifier 同时发送到多个渠道，单个失败不影响其他渠道
type MultiNotifier struct {
	notifiers []Notifier
	logger    *zap.Logger
}

// NewMultiNotifier 创建多通知器
func NewMultiNotifier(logger *zap.Logger, notifiers ...Notifier) *MultiNotifier {
	return &MultiNotifier{
		notifiers: notifiers,
		logger:    logger,
	}
}

// Send 发送到所有通知器，返回最后一个错误
func (m *MultiNotifier) Send(ctx context.Context, event *Event) error {
	var lastErr error
	for _, notifier := range m.notifiers {
		if err := notifier.Send(ctx, event); err != nil {
			m.logger.Error("发送通知失败", zap.String("type", string(event.Type)), zap.Error(err))
			lastErr = err
		}
	}
	return lastErr
}

// ============= 日志通知器 =============

// LogNotifier 仅记录日志
type LogNotifier struct {
	logger *zap.Logger
}

// NewLogNotifier 创建日志通知器
func NewLogNotifier(logger *zap.Logger) *LogNotifier {
	return &LogNotifier{
		logger: logger,
	}
}

// Send 记录通知到日志
func (n *LogNotifier) Send(ctx context.Context, event *Event) error {
	n.logger.Info("📢 部署通知",
		zap.String("type", string(event.Type)),
		zap.String("organization_id", event.OrganizationID),
		zap.String("project", event.ProjectName),
		zap.String("status", event.Status),
		zap.String("user", event.UserEmail),
		zap.String("message", event.Message))
	return nil
}
