package rdb

import (
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"Lee_Forum/internal/model"
)

type BanRepository struct {
	DB *gorm.DB
}

// Upsert 已有封禁记录时刷新 reason / banned_by / 过期时间，保证每对 (community, user) 只有一行
func (r *BanRepository) Upsert(ban *model.BannedUser) error {
	return r.DB.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "community_id"}, {Name: "user_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"reason", "banned_by", "ban_expires_at", "updated_at"}),
	}).Create(ban).Error
}

// Find 不存在返回 nil, nil；过期记录同样返回
func (r *BanRepository) Find(communityID, userID uint64) (*model.BannedUser, error) {
	var b model.BannedUser
	err := r.DB.Where("community_id = ? AND user_id = ?", communityID, userID).First(&b).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &b, nil
}

// IsActive ban_expires_at 为空或在 now 之后
func (r *BanRepository) IsActive(communityID, userID uint64, now time.Time) (bool, error) {
	var n int64
	err := r.DB.Model(&model.BannedUser{}).
		Where("community_id = ? AND user_id = ?", communityID, userID).
		Where("ban_expires_at IS NULL OR ban_expires_at > ?", now).
		Count(&n).Error
	return n > 0, err
}

func (r *BanRepository) Delete(communityID, userID uint64) (bool, error) {
	tx := r.DB.Where("community_id = ? AND user_id = ?", communityID, userID).Delete(&model.BannedUser{})
	return tx.RowsAffected > 0, tx.Error
}

// List activeOnly 时排除已过期的历史记录
func (r *BanRepository) List(communityID uint64, activeOnly bool, now time.Time, offset, limit int) ([]model.BannedUser, error) {
	var list []model.BannedUser
	q := r.DB.Where("community_id = ?", communityID)
	if activeOnly {
		q = q.Where("ban_expires_at IS NULL OR ban_expires_at > ?", now)
	}
	err := q.Order("created_at DESC, user_id ASC").Offset(offset).Limit(limit).Find(&list).Error
	return list, err
}
