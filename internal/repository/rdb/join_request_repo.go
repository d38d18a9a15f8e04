package rdb

import (
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"Lee_Forum/internal/model"
)

type JoinRequestRepository struct {
	DB *gorm.DB
}

// Create 插入 pending 申请；唯一索引冲突时返回 gorm.ErrDuplicatedKey
func (r *JoinRequestRepository) Create(req *model.JoinRequest) error {
	return r.DB.Create(req).Error
}

// FindByID 不存在返回 nil, nil；事务中加行锁
func (r *JoinRequestRepository) FindByID(id uint64) (*model.JoinRequest, error) {
	var req model.JoinRequest
	err := r.DB.Clauses(clause.Locking{Strength: "UPDATE"}).First(&req, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &req, nil
}

func (r *JoinRequestRepository) HasPending(communityID, userID uint64) (bool, error) {
	var n int64
	err := r.DB.Model(&model.JoinRequest{}).
		Where("community_id = ? AND user_id = ? AND status = ?", communityID, userID, model.JoinRequestPending).
		Count(&n).Error
	return n > 0, err
}

// Resolve 只改 pending 的记录，终态不可再改；返回是否命中
func (r *JoinRequestRepository) Resolve(id uint64, status model.JoinRequestStatus, at time.Time) (bool, error) {
	tx := r.DB.Model(&model.JoinRequest{}).
		Where("id = ? AND status = ?", id, model.JoinRequestPending).
		Updates(map[string]any{
			"status":      status,
			"pending_key": nil,
			"updated_at":  at,
		})
	return tx.RowsAffected == 1, tx.Error
}

// ListPending 按申请时间先后
func (r *JoinRequestRepository) ListPending(communityID uint64, offset, limit int) ([]model.JoinRequest, error) {
	var list []model.JoinRequest
	err := r.DB.Where("community_id = ? AND status = ?", communityID, model.JoinRequestPending).
		Order("requested_at ASC, id ASC").
		Offset(offset).
		Limit(limit).
		Find(&list).Error
	return list, err
}

// ClosePending 用户经其它途径入群后，关闭其 pending 申请；返回是否命中
func (r *JoinRequestRepository) ClosePending(communityID, userID uint64, status model.JoinRequestStatus, at time.Time) (bool, error) {
	tx := r.DB.Model(&model.JoinRequest{}).
		Where("community_id = ? AND user_id = ? AND status = ?", communityID, userID, model.JoinRequestPending).
		Updates(map[string]any{
			"status":      status,
			"pending_key": nil,
			"updated_at":  at,
		})
	return tx.RowsAffected > 0, tx.Error
}

func (r *JoinRequestRepository) CountByStatus(communityID, userID uint64, status model.JoinRequestStatus) (int64, error) {
	var n int64
	err := r.DB.Model(&model.JoinRequest{}).
		Where("community_id = ? AND user_id = ? AND status = ?", communityID, userID, status).
		Count(&n).Error
	return n, err
}
