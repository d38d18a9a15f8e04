package rdb

import (
	"gorm.io/gorm"

	"Lee_Forum/internal/model"
)

type ModerationLogRepository struct {
	DB *gorm.DB
}

// LogFilter ActionType 为空不过滤；BeforeID > 0 时走游标分页
type LogFilter struct {
	CommunityID uint64
	ActionType  string
	BeforeID    uint64
	Offset      int
	Limit       int
}

// Insert 只追加，本仓储不提供更新与删除
func (r *ModerationLogRepository) Insert(entry *model.ModerationLogEntry) error {
	return r.DB.Create(entry).Error
}

// List 按 created_at 倒序，同一时间按自增 id 倒序
func (r *ModerationLogRepository) List(f LogFilter) ([]model.ModerationLogEntry, error) {
	var list []model.ModerationLogEntry
	q := r.DB.Where("community_id = ?", f.CommunityID)
	if f.ActionType != "" {
		q = q.Where("action_type = ?", f.ActionType)
	}
	if f.BeforeID > 0 {
		q = q.Where("id < ?", f.BeforeID)
	} else if f.Offset > 0 {
		q = q.Offset(f.Offset)
	}
	err := q.Order("created_at DESC, id DESC").Limit(f.Limit).Find(&list).Error
	return list, err
}

func (r *ModerationLogRepository) Count(communityID uint64) (int64, error) {
	var n int64
	err := r.DB.Model(&model.ModerationLogEntry{}).Where("community_id = ?", communityID).Count(&n).Error
	return n, err
}
