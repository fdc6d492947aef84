package model

import "time"

const ActivityLogTableName = "activity_logs"

// ActivityLog 组织操作日志
type ActivityLog struct {
	ID             int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	OrganizationID string    `gorm:"column:organization_id;size:64;not null;index" json:"organization_id"`
	Action         string    `gorm:"size:32;not null" json:"action"`
	Details        string    `gorm:"type:text" json:"details"`
	UserEmail      string    `gorm:"column:user_email;size:255" json:"user_email"`
	CreatedAt      time.Time `gorm:"not null;autoCreateTime" json:"created_at"`
}

// TableName 指定表名
func (ActivityLog) TableName() string {
	return ActivityLogTableName
}
