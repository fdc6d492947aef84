package notification

import (
	"context"
	"fmt"

	"tenant-deployer/internal/model"
	"tenant-deployer/internal/repository"
	"tenant-deployer/pkg/constants"
)

// ActivityNotifier 写入组织操作日志，仅记录部署事件
type ActivityNotifier struct {
	repo repository.ActivityLogRepository
}

func NewActivityNotifier(repo repository.ActivityLogRepository) *ActivityNotifier {
	return &ActivityNotifier{repo: repo}
}

func (n *ActivityNotifier) Send(ctx context.Context, event *Event) error {
	if event.Type != EventSiteDeployed {
		return nil
	}

	details := fmt.Sprintf("Site for %q deployed as hosting project %s (status: %s)",
		event.OrganizationName, event.ProjectName, event.Status)

	return n.repo.Create(ctx, &model.ActivityLog{
		OrganizationID: event.OrganizationID,
		Action:         constants.ActivityActionDeployed,
		Details:        details,
		UserEmail:      event.UserEmail,
	})
}
