package model

import "time"

type Community struct {
	ID                   uint64    `gorm:"primaryKey" json:"id"`
	Name                 string    `gorm:"uniqueIndex;size:64;not null" json:"name"`
	Description          string    `gorm:"type:text" json:"description"`
	CreatorID            uint64    `gorm:"not null;index" json:"creator_id"`
	RequiresJoinApproval bool      `gorm:"not null" json:"requires_join_approval"`
	RequiresPostApproval bool      `gorm:"not null" json:"requires_post_approval"`
	AllowPostImages      bool      `gorm:"not null" json:"allow_post_images"`
	CreatedAt            time.Time `json:"created_at"`
	UpdatedAt            time.Time `json:"updated_at"`
}

// CommunitySettings 社区可被管理员修改的开关
type CommunitySettings struct {
	RequiresJoinApproval bool `json:"requires_join_approval"`
	RequiresPostApproval bool `json:"requires_post_approval"`
	AllowPostImages      bool `json:"allow_post_images"`
}

// DefaultCommunitySettings 新建社区的默认配置，所有建社区的路径都从这里取
var DefaultCommunitySettings = CommunitySettings{
	RequiresJoinApproval: false,
	RequiresPostApproval: false,
	AllowPostImages:      true,
}

// SettingsPatch 部分更新，nil 表示不修改
type SettingsPatch struct {
	RequiresJoinApproval *bool `json:"requires_join_approval"`
	RequiresPostApproval *bool `json:"requires_post_approval"`
	AllowPostImages      *bool `json:"allow_post_images"`
}

func (c *Community) Settings() CommunitySettings {
	return CommunitySettings{
		RequiresJoinApproval: c.RequiresJoinApproval,
		RequiresPostApproval: c.RequiresPostApproval,
		AllowPostImages:      c.AllowPostImages,
	}
}

func (c *Community) ApplySettings(s CommunitySettings) {
	c.RequiresJoinApproval = s.RequiresJoinApproval
	c.RequiresPostApproval = s.RequiresPostApproval
	c.AllowPostImages = s.AllowPostImages
}

// Apply 把 patch 合并到 s 上
func (p SettingsPatch) Apply(s CommunitySettings) CommunitySettings {
	if p.RequiresJoinApproval != nil {
		s.RequiresJoinApproval = *p.RequiresJoinApproval
	}
	if p.RequiresPostApproval != nil {
		s.RequiresPostApproval = *p.RequiresPostApproval
	}
	if p.AllowPostImages != nil {
		s.AllowPostImages = *p.AllowPostImages
	}
	return s
}

func (p SettingsPatch) Empty() bool {
	return p.RequiresJoinApproval == nil && p.RequiresPostApproval == nil && p.AllowPostImages == nil
}
