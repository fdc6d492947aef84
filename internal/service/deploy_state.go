package service

import (
	"fmt"
	"strings"

	"tenant-deployer/pkg/constants"
)

// allowedTransitions 由状态同步驱动的状态流转
var allowedTransitions = map[string][]string{
	constants.DeploymentStatusBuilding: {
		constants.DeploymentStatusReady,
		constants.DeploymentStatusError,
		constants.DeploymentStatusCanceled,
	},
	constants.DeploymentStatusReady: {
		constants.DeploymentStatusError,
		constants.DeploymentStatusCanceled,
	},
	constants.DeploymentStatusError: {
		constants.DeploymentStatusReady,
	},
}

// ValidateTransition 校验记录状态流转；新一轮编排(created/building)不经过这里
func ValidateTransition(from, to string) error {
	from, to = strings.ToLower(from), strings.ToLower(to)
	if from == to {
		return nil
	}
	for _, next := range allowedTransitions[from] {
		if next == to {
			return nil
		}
	}
	return fmt.Errorf("invalid deployment status transition: %s -> %s", from, to)
}

// MapPlatformState 平台状态映射为本地状态，未知状态返回空串
func MapPlatformState(state string) string {
	switch strings.ToUpper(state) {
	case constants.PlatformStateQueued, constants.PlatformStateInitializing, constants.PlatformStateBuilding:
		return constants.DeploymentStatusBuilding
	case constants.PlatformStateReady:
		return constants.DeploymentStatusReady
	case constants.PlatformStateError:
		return constants.DeploymentStatusError
	case constants.PlatformStateCanceled:
		return constants.DeploymentStatusCanceled
	default:
		return ""
	}
}

// initialStatus 编排结束时的状态
func initialStatus(triggered bool) string {
	if triggered {
		return constants.DeploymentStatusBuilding
	}
	return constants.DeploymentStatusCreated
}
