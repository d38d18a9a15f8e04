package rdb

import (
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"Lee_Forum/internal/model"
)

type CommunityMemberRepository struct {
	DB *gorm.DB
}

// Find 不存在时返回 nil, nil；在事务中加行锁
func (r *CommunityMemberRepository) Find(communityID, userID uint64) (*model.CommunityMember, error) {
	var m model.CommunityMember
	err := r.DB.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("community_id = ? AND user_id = ?", communityID, userID).
		First(&m).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &m, nil
}

// Insert 幂等插入：若已存在 (community_id, user_id) 则不报错，返回是否真正插入
func (r *CommunityMemberRepository) Insert(member *model.CommunityMember) (bool, error) {
	tx := r.DB.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "community_id"}, {Name: "user_id"}},
		DoNothing: true,
	}).Create(member)
	return tx.RowsAffected > 0, tx.Error
}

func (r *CommunityMemberRepository) UpdateRole(communityID, userID uint64, role model.Role) error {
	return r.DB.Model(&model.CommunityMember{}).
		Where("community_id = ? AND user_id = ?", communityID, userID).
		Update("role", role).Error
}

// Delete 返回是否删除了记录
func (r *CommunityMemberRepository) Delete(communityID, userID uint64) (bool, error) {
	tx := r.DB.Where("community_id = ? AND user_id = ?", communityID, userID).
		Delete(&model.CommunityMember{})
	return tx.RowsAffected > 0, tx.Error
}

// List 按加入时间排序，role 为空时不过滤
func (r *CommunityMemberRepository) List(communityID uint64, role model.Role, offset, limit int) ([]model.CommunityMember, error) {
	var list []model.CommunityMember
	q := r.DB.Where("community_id = ?", communityID)
	if role != "" {
		q = q.Where("role = ?", role)
	}
	err := q.Order("joined_at ASC, id ASC").Offset(offset).Limit(limit).Find(&list).Error
	return list, err
}

func (r *CommunityMemberRepository) CountByRole(communityID uint64, role model.Role) (int64, error) {
	var n int64
	err := r.DB.Model(&model.CommunityMember{}).
		Where("community_id = ? AND role = ?", communityID, role).
		Count(&n).Error
	return n, err
}
