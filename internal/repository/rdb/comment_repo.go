package rdb

import (
	"errors"

	"gorm.io/gorm"

	"Lee_Forum/internal/model"
)

type CommentRepository struct {
	DB *gorm.DB
}

func (r *CommentRepository) Create(c *model.Comment) error {
	return r.DB.Create(c).Error
}

// FindByID 不存在返回 nil, nil
func (r *CommentRepository) FindByID(id uint64) (*model.Comment, error) {
	var c model.Comment
	err := r.DB.First(&c, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// SubtreeIDs 用显式工作栈收集 rootID 及其全部回复，不递归
func (r *CommentRepository) SubtreeIDs(rootID uint64) ([]uint64, error) {
	ids := []uint64{rootID}
	seen := map[uint64]bool{rootID: true}
	stack := []uint64{rootID}
	for len(stack) > 0 {
		// 一次取出当前栈里所有节点，按层批量查子节点
		parents := stack
		stack = nil
		var children []uint64
		if err := r.DB.Model(&model.Comment{}).
			Where("parent_id IN ?", parents).
			Pluck("id", &children).Error; err != nil {
			return nil, err
		}
		for _, id := range children {
			if seen[id] {
				continue
			}
			seen[id] = true
			ids = append(ids, id)
			stack = append(stack, id)
		}
	}
	return ids, nil
}

// DeleteByIDs 一条语句批量删除，返回删除行数
func (r *CommentRepository) DeleteByIDs(ids []uint64) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	tx := r.DB.Where("id IN ?", ids).Delete(&model.Comment{})
	return tx.RowsAffected, tx.Error
}
