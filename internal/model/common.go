package model

import (
	"time"
)

// Timestamps 通用时间字段
type Timestamps struct {
	CreatedAt time.Time `gorm:"not null;autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;autoUpdateTime" json:"updated_at"`
}

// AllModels 需要自动迁移的模型
func AllModels() []interface{} {
	return []interface{}{
		&Organization{},
		&Profile{},
		&DeploymentRecord{},
		&ActivityLog{},
	}
}
