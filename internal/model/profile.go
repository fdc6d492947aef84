package model

const ProfileTableName = "profiles"

// Profile 调用方身份，ID 即 token subject；只读
type Profile struct {
	ID             string  `gorm:"primaryKey;size:64" json:"id"`
	Email          string  `gorm:"size:255;index" json:"email"`
	Role           string  `gorm:"size:20;not null;default:user" json:"role"` // admin/user
	OrganizationID *string `gorm:"column:organization_id;size:64;index" json:"organization_id"`
	IsSiteCreator  bool    `gorm:"column:is_site_creator;not null;default:false" json:"is_site_creator"`
}

// TableName 指定表名
func (Profile) TableName() string {
	return ProfileTableName
}

// BelongsTo 是否属于指定组织
func (p *Profile) BelongsTo(orgID string) bool {
	return p.OrganizationID != nil && *p.OrganizationID == orgID
}
