package model

import (
	"time"

	"gorm.io/datatypes"
)

type ModerationStatus string

const (
	ModerationPending  ModerationStatus = "pending"
	ModerationApproved ModerationStatus = "approved"
	ModerationRejected ModerationStatus = "rejected"
)

// PostModeration 每个帖子最多一行
type PostModeration struct {
	PostID      uint64           `gorm:"primaryKey;autoIncrement:false" json:"post_id"`
	CommunityID uint64           `gorm:"not null;index:idx_pm_community_status,priority:1" json:"community_id"`
	Status      ModerationStatus `gorm:"type:varchar(16);not null;index:idx_pm_community_status,priority:2" json:"status"`
	ModeratorID *uint64          `json:"moderator_id"`
	Reason      *string          `gorm:"type:text" json:"reason"`
	ModeratedAt *time.Time       `json:"moderated_at"`
	CreatedAt   time.Time        `json:"created_at"`
}

func (PostModeration) TableName() string { return "post_moderation" }

// 审计动作
const (
	ActionBan               = "BAN"
	ActionUnban             = "UNBAN"
	ActionApprove           = "APPROVE"
	ActionReject            = "REJECT"
	ActionUpdateSettings    = "UPDATE_SETTINGS"
	ActionUpdateMemberRole  = "UPDATE_MEMBER_ROLE"
	ActionUpdatePermissions = "UPDATE_PERMISSIONS"
	ActionAddMember         = "ADD_MEMBER"
	ActionRemoveMember      = "REMOVE_MEMBER"
	ActionRemovePost        = "REMOVE_POST"
	ActionRemoveComment     = "REMOVE_COMMENT"
)

// 审计目标类型
const (
	TargetUser        = "USER"
	TargetPost        = "POST"
	TargetComment     = "COMMENT"
	TargetJoinRequest = "JOIN_REQUEST"
	TargetCommunity   = "COMMUNITY"
)

// ModerationLogEntry 只追加，不更新不删除
type ModerationLogEntry struct {
	ID          uint64         `gorm:"primaryKey" json:"id"`
	CommunityID uint64         `gorm:"not null;index:idx_log_community_id,priority:1" json:"community_id"`
	ModeratorID uint64         `gorm:"not null;index" json:"moderator_id"`
	ActionType  string         `gorm:"size:32;not null;index" json:"action_type"`
	TargetID    *uint64        `json:"target_id"`
	TargetType  *string        `gorm:"size:32" json:"target_type"`
	Reason      *string        `gorm:"type:text" json:"reason"`
	Metadata    datatypes.JSON `json:"metadata"`
	CreatedAt   time.Time      `gorm:"not null;index" json:"created_at"`
}

func (ModerationLogEntry) TableName() string { return "moderation_log" }

// ModerationOutbox 审计事件发件箱，与审计记录同一事务写入，由 relayer 异步投递 kafka
type ModerationOutbox struct {
	ID          uint64         `gorm:"primaryKey"`
	EventID     string         `gorm:"size:36;not null;uniqueIndex"`
	LogEntryID  uint64         `gorm:"not null;index"`
	CommunityID uint64         `gorm:"not null"`
	ActionType  string         `gorm:"size:32;not null"`
	Payload     datatypes.JSON `gorm:"not null"`
	Status      int8           `gorm:"not null;default:0;index;comment:'0=pending,1=sent,2=failed'"`
	Retry       int            `gorm:"not null;default:0"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

func (ModerationOutbox) TableName() string { return "moderation_outbox" }

const (
	OutboxPending int8 = 0
	OutboxSent    int8 = 1
	OutboxFailed  int8 = 2
)
