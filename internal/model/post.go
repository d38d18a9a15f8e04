package model

import "time"

const (
	PostNormal        = 0
	PostDeleted       = 1
	PostRejected      = 2
	PostPendingReview = 3
)

type Post struct {
	ID          uint64    `gorm:"primaryKey" json:"id"`
	CommunityID uint64    `gorm:"not null;index:idx_community_time,priority:1" json:"community_id"`
	AuthorID    uint64    `gorm:"not null;index" json:"author_id"`
	Title       string    `gorm:"size:200;not null" json:"title"`
	Content     string    `gorm:"type:text" json:"content"`
	Status      int       `gorm:"not null;default:0" json:"status"` // 0=normal 1=deleted 2=rejected 3=pending_review
	CreatedAt   time.Time `gorm:"index:idx_community_time,priority:2" json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Comment ParentID 为 0 表示直接回复帖子
type Comment struct {
	ID        uint64    `gorm:"primaryKey" json:"id"`
	PostID    uint64    `gorm:"not null;index" json:"post_id"`
	ParentID  uint64    `gorm:"not null;default:0;index" json:"parent_id"`
	AuthorID  uint64    `gorm:"not null;index" json:"author_id"`
	Content   string    `gorm:"type:text;not null" json:"content"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
