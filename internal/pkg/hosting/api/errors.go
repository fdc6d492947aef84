package api

import (
	"errors"
	"fmt"
	"strings"
)

// HostingPlatformError 托管平台调用失败，Status 为 0 表示请求未到达平台
type HostingPlatformError struct {
	Status  int
	Message string
}

func (e *HostingPlatformError) Error() string {
	return fmt.Sprintf("hosting platform error: %d - %s", e.Status, e.Message)
}

// transientGitSyncPatterns 仓库关联尚未同步到构建系统时平台返回的文案
var transientGitSyncPatterns = []string{
	"repository does not contain",
	"branch or commit reference",
	"repository can't be found",
}

// IsTransientGitSync 判断是否为可重试的 Git 同步错误
func IsTransientGitSync(err error) bool {
	if err == nil {
		return false
	}

	msg := err.Error()
	var hpe *HostingPlatformError
	if errors.As(err, &hpe) {
		msg = hpe.Message
	}

	msg = strings.ToLower(msg)
	for _, p := range transientGitSyncPatterns {
		if strings.Contains(msg, p) {
			return true
		}
	}
	return false
}
