package model

import (
	"fmt"
	"time"
)

// Capability 可下放给版主的四种权限
type Capability int

const (
	ManageSettings Capability = iota + 1
	ManageMembers
	ManagePosts
	ManageComments
)

var capabilityNames = map[Capability]string{
	ManageSettings: "manage_settings",
	ManageMembers:  "manage_members",
	ManagePosts:    "manage_posts",
	ManageComments: "manage_comments",
}

func (c Capability) String() string {
	if name, ok := capabilityNames[c]; ok {
		return name
	}
	return fmt.Sprintf("capability(%d)", int(c))
}

// ParseCapability 只接受四个固定名字
func ParseCapability(s string) (Capability, bool) {
	for c, name := range capabilityNames {
		if name == s {
			return c, true
		}
	}
	return 0, false
}

// Permissions 固定四个字段，不按字符串动态取列
type Permissions struct {
	ManageSettings bool `json:"manage_settings"`
	ManageMembers  bool `json:"manage_members"`
	ManagePosts    bool `json:"manage_posts"`
	ManageComments bool `json:"manage_comments"`
}

// AllPermissions admin 以及没有显式记录的 moderator 使用
var AllPermissions = Permissions{
	ManageSettings: true,
	ManageMembers:  true,
	ManagePosts:    true,
	ManageComments: true,
}

func (p Permissions) Allows(c Capability) bool {
	switch c {
	case ManageSettings:
		return p.ManageSettings
	case ManageMembers:
		return p.ManageMembers
	case ManagePosts:
		return p.ManagePosts
	case ManageComments:
		return p.ManageComments
	default:
		return false
	}
}

type ModeratorPermission struct {
	CommunityID    uint64    `gorm:"primaryKey;autoIncrement:false" json:"community_id"`
	UserID         uint64    `gorm:"primaryKey;autoIncrement:false" json:"user_id"`
	ManageSettings bool      `gorm:"not null" json:"manage_settings"`
	ManageMembers  bool      `gorm:"not null" json:"manage_members"`
	ManagePosts    bool      `gorm:"not null" json:"manage_posts"`
	ManageComments bool      `gorm:"not null" json:"manage_comments"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

func (p *ModeratorPermission) Permissions() Permissions {
	return Permissions{
		ManageSettings: p.ManageSettings,
		ManageMembers:  p.ManageMembers,
		ManagePosts:    p.ManagePosts,
		ManageComments: p.ManageComments,
	}
}
