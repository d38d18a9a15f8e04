package model

import "time"

// BannedUser ban_expires_at 为空表示永久封禁；过期后记录保留为历史
type BannedUser struct {
	CommunityID  uint64     `gorm:"primaryKey;autoIncrement:false" json:"community_id"`
	UserID       uint64     `gorm:"primaryKey;autoIncrement:false" json:"user_id"`
	Reason       string     `gorm:"type:text" json:"reason"`
	BannedBy     uint64     `gorm:"not null" json:"banned_by"`
	BanExpiresAt *time.Time `gorm:"index" json:"ban_expires_at"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

func (b *BannedUser) ActiveAt(now time.Time) bool {
	return b.BanExpiresAt == nil || b.BanExpiresAt.After(now)
}
