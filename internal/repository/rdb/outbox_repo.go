package rdb

import (
	"errors"

	"gorm.io/gorm"

	"Lee_Forum/internal/model"
)

type OutboxRepository struct {
	DB *gorm.DB
}

func (r *OutboxRepository) Insert(ob *model.ModerationOutbox) error {
	return r.DB.Create(ob).Error
}

// ListPending 查询待投递及投递失败待重试的事件，maxRetry 之后不再重试
func (r *OutboxRepository) ListPending(batchSize, maxRetry int) ([]model.ModerationOutbox, error) {
	var list []model.ModerationOutbox
	err := r.DB.Where("status = ? OR (status = ? AND retry < ?)", model.OutboxPending, model.OutboxFailed, maxRetry).
		Order("id ASC").
		Limit(batchSize).
		Find(&list).Error
	return list, err
}

// MarkFailed outbox 记录消息失败重试
func (r *OutboxRepository) MarkFailed(id uint64) error {
	return r.DB.Model(&model.ModerationOutbox{}).Where("id = ?", id).
		Updates(map[string]any{"status": model.OutboxFailed, "retry": gorm.Expr("retry + 1")}).Error
}

// MarkSent outbox 成功投递
func (r *OutboxRepository) MarkSent(id uint64) error {
	return r.DB.Model(&model.ModerationOutbox{}).Where("id = ?", id).
		Update("status", model.OutboxSent).Error
}

// FindByLogEntry 不存在返回 nil, nil
func (r *OutboxRepository) FindByLogEntry(logEntryID uint64) (*model.ModerationOutbox, error) {
	var ob model.ModerationOutbox
	err := r.DB.Where("log_entry_id = ?", logEntryID).First(&ob).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &ob, nil
}
