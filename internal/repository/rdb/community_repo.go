package rdb

import (
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"Lee_Forum/internal/model"
)

type CommunityRepository struct {
	DB *gorm.DB
}

func (r *CommunityRepository) Create(c *model.Community) error {
	return r.DB.Create(c).Error
}

// FindByID 不存在返回 nil, nil
func (r *CommunityRepository) FindByID(id uint64) (*model.Community, error) {
	var community model.Community
	err := r.DB.First(&community, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &community, nil
}

// FindForUpdate 修改设置时加行锁
func (r *CommunityRepository) FindForUpdate(id uint64) (*model.Community, error) {
	var community model.Community
	err := r.DB.Clauses(clause.Locking{Strength: "UPDATE"}).First(&community, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &community, nil
}

func (r *CommunityRepository) FindByName(name string) (*model.Community, error) {
	var community model.Community
	err := r.DB.Where("name = ?", name).First(&community).Error
	return &community, err
}

func (r *CommunityRepository) List(offset, limit int) ([]model.Community, error) {
	var list []model.Community
	err := r.DB.Order("id desc").Offset(offset).Limit(limit).Find(&list).Error
	return list, err
}

func (r *CommunityRepository) UpdateSettings(id uint64, s model.CommunitySettings) error {
	return r.DB.Model(&model.Community{}).Where("id = ?", id).Updates(map[string]any{
		"requires_join_approval": s.RequiresJoinApproval,
		"requires_post_approval": s.RequiresPostApproval,
		"allow_post_images":      s.AllowPostImages,
	}).Error
}

// NamesByIDs 审计日志展示用
func (r *CommunityRepository) NamesByIDs(ids []uint64) (map[uint64]string, error) {
	out := make(map[uint64]string, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	var rows []model.Community
	if err := r.DB.Select("id", "name").Where("id IN ?", ids).Find(&rows).Error; err != nil {
		return nil, err
	}
	for _, c := range rows {
		out[c.ID] = c.Name
	}
	return out, nil
}
