package model

import (
	"fmt"
	"time"
)

type JoinRequestStatus string

const (
	JoinRequestPending  JoinRequestStatus = "pending"
	JoinRequestApproved JoinRequestStatus = "approved"
	JoinRequestRejected JoinRequestStatus = "rejected"
)

// JoinRequest PendingKey 仅在 pending 时有值，唯一索引保证同一 (community, user) 最多一个 pending
type JoinRequest struct {
	ID          uint64            `gorm:"primaryKey" json:"id"`
	CommunityID uint64            `gorm:"not null;index:idx_jr_community_status,priority:1" json:"community_id"`
	UserID      uint64            `gorm:"not null;index" json:"user_id"`
	Status      JoinRequestStatus `gorm:"type:varchar(16);not null;index:idx_jr_community_status,priority:2" json:"status"`
	PendingKey  *string           `gorm:"size:64;uniqueIndex:uk_join_request_pending" json:"-"`
	RequestedAt time.Time         `gorm:"not null" json:"requested_at"`
	UpdatedAt   time.Time         `json:"updated_at"`
}

func PendingJoinKey(communityID, userID uint64) *string {
	k := fmt.Sprintf("%d:%d", communityID, userID)
	return &k
}
