package rdb

import (
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"Lee_Forum/internal/model"
)

type PostModerationRepository struct {
	DB *gorm.DB
}

// Find 不存在返回 nil, nil；事务中加行锁
func (r *PostModerationRepository) Find(postID uint64) (*model.PostModeration, error) {
	var pm model.PostModeration
	err := r.DB.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("post_id = ?", postID).
		First(&pm).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &pm, nil
}

// Insert 幂等插入，已存在则不覆盖
func (r *PostModerationRepository) Insert(pm *model.PostModeration) error {
	return r.DB.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "post_id"}},
		DoNothing: true,
	}).Create(pm).Error
}

func (r *PostModerationRepository) Save(pm *model.PostModeration) error {
	return r.DB.Model(&model.PostModeration{}).
		Where("post_id = ?", pm.PostID).
		Updates(map[string]any{
			"status":       pm.Status,
			"moderator_id": pm.ModeratorID,
			"reason":       pm.Reason,
			"moderated_at": pm.ModeratedAt,
		}).Error
}

// ListByStatus 队列按入队时间先后
func (r *PostModerationRepository) ListByStatus(communityID uint64, status model.ModerationStatus, offset, limit int) ([]model.PostModeration, error) {
	var list []model.PostModeration
	err := r.DB.Where("community_id = ? AND status = ?", communityID, status).
		Order("created_at ASC, post_id ASC").
		Offset(offset).
		Limit(limit).
		Find(&list).Error
	return list, err
}

func (r *PostModerationRepository) Count(postID uint64) (int64, error) {
	var n int64
	err := r.DB.Model(&model.PostModeration{}).Where("post_id = ?", postID).Count(&n).Error
	return n, err
}
