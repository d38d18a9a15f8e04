package model

import "time"

type Role string

const (
	RoleMember    Role = "member"
	RoleModerator Role = "moderator"
	RoleAdmin     Role = "admin"
)

func (r Role) Valid() bool {
	switch r {
	case RoleMember, RoleModerator, RoleAdmin:
		return true
	}
	return false
}

// Staff moderator 或 admin
func (r Role) Staff() bool {
	return r == RoleModerator || r == RoleAdmin
}

type CommunityMember struct {
	ID          uint64    `gorm:"primaryKey" json:"id"`
	CommunityID uint64    `gorm:"not null;index;uniqueIndex:uk_community_user" json:"community_id"`
	UserID      uint64    `gorm:"not null;index;uniqueIndex:uk_community_user" json:"user_id"`
	Role        Role      `gorm:"type:varchar(16);not null;default:'member'" json:"role"`
	JoinedAt    time.Time `gorm:"not null" json:"joined_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}
