package rdb

import (
	"gorm.io/gorm"

	"Lee_Forum/internal/model"
)

// UserRepository 用户表归认证层所有，这里只读
type UserRepository struct {
	DB *gorm.DB
}

func (r *UserRepository) FindByID(id uint64) (*model.User, error) {
	var user model.User
	err := r.DB.First(&user, id).Error
	return &user, err
}

// UsernamesByIDs 审计日志展示用，缺失的 id 不出现在结果里
func (r *UserRepository) UsernamesByIDs(ids []uint64) (map[uint64]string, error) {
	out := make(map[uint64]string, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	var rows []model.User
	if err := r.DB.Select("id", "username").Where("id IN ?", ids).Find(&rows).Error; err != nil {
		return nil, err
	}
	for _, u := range rows {
		out[u.ID] = u.Username
	}
	return out, nil
}
