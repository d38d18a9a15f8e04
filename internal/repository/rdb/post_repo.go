package rdb

import (
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"Lee_Forum/internal/model"
)

type PostRepository struct {
	DB *gorm.DB
}

func (r *PostRepository) Create(post *model.Post) error {
	return r.DB.Create(post).Error
}

// FindByID 已删除的帖子视为不存在，返回 nil, nil
func (r *PostRepository) FindByID(id uint64) (*model.Post, error) {
	var post model.Post
	err := r.DB.Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&post, "id = ? AND status <> ?", id, model.PostDeleted).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &post, nil
}

// ListByCommunity 基础分页查询，只返回公开可见的帖子
func (r *PostRepository) ListByCommunity(communityID uint64, offset, limit int) ([]model.Post, error) {
	var list []model.Post
	err := r.DB.
		Where("community_id = ? AND status = ?", communityID, model.PostNormal).
		Order("created_at DESC, id DESC").
		Offset(offset).
		Limit(limit).
		Find(&list).Error
	return list, err
}

func (r *PostRepository) UpdateStatus(id uint64, status int) error {
	return r.DB.Model(&model.Post{}).
		Where("id = ? AND status <> ?", id, model.PostDeleted).
		Update("status", status).Error
}

// Delete 软删除，返回是否命中
func (r *PostRepository) Delete(id uint64) (bool, error) {
	tx := r.DB.Model(&model.Post{}).
		Where("id = ? AND status <> ?", id, model.PostDeleted).
		Update("status", model.PostDeleted)
	return tx.RowsAffected > 0, tx.Error
}
