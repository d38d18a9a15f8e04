package rdb

import (
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"Lee_Forum/internal/model"
)

type PermissionRepository struct {
	DB *gorm.DB
}

// Find 没有显式权限记录时返回 nil, nil
func (r *PermissionRepository) Find(communityID, userID uint64) (*model.ModeratorPermission, error) {
	var p model.ModeratorPermission
	err := r.DB.Where("community_id = ? AND user_id = ?", communityID, userID).First(&p).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// Upsert 存在则覆盖四个开关
func (r *PermissionRepository) Upsert(p *model.ModeratorPermission) error {
	return r.DB.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "community_id"}, {Name: "user_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"manage_settings", "manage_members", "manage_posts", "manage_comments", "updated_at",
		}),
	}).Create(p).Error
}

func (r *PermissionRepository) Delete(communityID, userID uint64) error {
	return r.DB.Where("community_id = ? AND user_id = ?", communityID, userID).
		Delete(&model.ModeratorPermission{}).Error
}
