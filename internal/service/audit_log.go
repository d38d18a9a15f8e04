package service

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"

	"Lee_Forum/internal/model"
	"Lee_Forum/internal/pkg"
	"Lee_Forum/internal/pkg/errs"
	"Lee_Forum/internal/repository/rdb"
)

// AuditEntry 一条待追加的审计记录，TargetType / Reason 为空表示不填
type AuditEntry struct {
	CommunityID uint64
	ModeratorID uint64
	ActionType  string
	TargetID    *uint64
	TargetType  string
	Reason      string
	Metadata    any
}

// ModerationEvent 发件箱 payload，也是 kafka 消息体
type ModerationEvent struct {
	EventID     string          `json:"event_id"`
	LogEntryID  uint64          `json:"log_entry_id"`
	CommunityID uint64          `json:"community_id"`
	ModeratorID uint64          `json:"moderator_id"`
	ActionType  string          `json:"action_type"`
	TargetID    *uint64         `json:"target_id,omitempty"`
	TargetType  *string         `json:"target_type,omitempty"`
	Reason      *string         `json:"reason,omitempty"`
	Metadata    json.RawMessage `json:"metadata,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`
}

// LogView 展示用，带上操作人用户名和社区名
type LogView struct {
	model.ModerationLogEntry
	ModeratorName string `json:"moderator_name"`
	CommunityName string `json:"community_name"`
}

type LogQuery struct {
	CommunityID uint64
	ViewerID    uint64
	ActionType  string
	BeforeID    uint64
	Limit       int
	Offset      int
}

type LogPage struct {
	Entries      []LogView `json:"entries"`
	NextBeforeID uint64    `json:"next_before_id,omitempty"`
}

// AuditLog 只追加的管理操作记录。append 总在调用方的事务里执行，
// 写入失败会让整个操作回滚
type AuditLog struct {
	store    *rdb.Store
	resolver *PermissionResolver
	now      Clock
	paging   Paging
}

func NewAuditLog(store *rdb.Store, resolver *PermissionResolver, now Clock, paging Paging) *AuditLog {
	return &AuditLog{store: store, resolver: resolver, now: now, paging: paging}
}

// Append 单独使用时自带事务
func (a *AuditLog) Append(ctx context.Context, e AuditEntry) (*model.ModerationLogEntry, error) {
	var entry *model.ModerationLogEntry
	err := a.store.Transaction(ctx, func(tx *rdb.Tx) error {
		var err error
		entry, err = a.append(tx, e)
		return err
	})
	return entry, err
}

// List 按 created_at 倒序，同一时刻按写入顺序倒序
func (a *AuditLog) List(ctx context.Context, communityID uint64, limit, offset int) ([]model.ModerationLogEntry, error) {
	limit, offset = a.paging.Normalize(limit, offset)
	list, err := a.store.Read(ctx).Logs.List(rdb.LogFilter{
		CommunityID: communityID,
		Offset:      offset,
		Limit:       limit,
	})
	return list, errs.Transaction(err)
}

// Browse 版主查看审计日志：支持 action_type 过滤和 before_id 游标，结果补全用户名和社区名
func (a *AuditLog) Browse(ctx context.Context, q LogQuery) (*LogPage, error) {
	tx := a.store.Read(ctx)
	community, err := tx.Communities.FindByID(q.CommunityID)
	if err != nil {
		return nil, errs.Transaction(err)
	}
	if community == nil {
		return nil, errs.NotFound("community %d", q.CommunityID)
	}
	staff, err := a.resolver.isStaff(tx, q.CommunityID, q.ViewerID)
	if err != nil {
		return nil, errs.Transaction(err)
	}
	if !staff {
		return nil, errs.PermissionDenied("moderation log is visible to moderators only")
	}

	limit, offset := a.paging.Normalize(q.Limit, q.Offset)
	list, err := tx.Logs.List(rdb.LogFilter{
		CommunityID: q.CommunityID,
		ActionType:  q.ActionType,
		BeforeID:    q.BeforeID,
		Offset:      offset,
		Limit:       limit,
	})
	if err != nil {
		return nil, errs.Transaction(err)
	}

	ids := make([]uint64, 0, len(list))
	for _, e := range list {
		ids = append(ids, e.ModeratorID)
	}
	names, err := tx.Users.UsernamesByIDs(ids)
	if err != nil {
		return nil, errs.Transaction(err)
	}

	page := &LogPage{Entries: make([]LogView, 0, len(list))}
	for _, e := range list {
		page.Entries = append(page.Entries, LogView{
			ModerationLogEntry: e,
			ModeratorName:      names[e.ModeratorID],
			CommunityName:      community.Name,
		})
	}
	if len(list) == limit {
		page.NextBeforeID = list[len(list)-1].ID
	}
	return page, nil
}

func (a *AuditLog) append(tx *rdb.Tx, e AuditEntry) (*model.ModerationLogEntry, error) {
	entry := &model.ModerationLogEntry{
		CommunityID: e.CommunityID,
		ModeratorID: e.ModeratorID,
		ActionType:  e.ActionType,
		TargetID:    e.TargetID,
		Reason:      pkg.CleanReason(e.Reason),
		CreatedAt:   a.now(),
	}
	if e.TargetType != "" {
		entry.TargetType = ptr(e.TargetType)
	}
	if e.Metadata != nil {
		raw, err := json.Marshal(e.Metadata)
		if err != nil {
			return nil, errs.InvalidArgument("audit metadata: %v", err)
		}
		entry.Metadata = datatypes.JSON(raw)
	}
	if err := tx.Logs.Insert(entry); err != nil {
		return nil, err
	}

	event := ModerationEvent{
		EventID:     uuid.NewString(),
		LogEntryID:  entry.ID,
		CommunityID: entry.CommunityID,
		ModeratorID: entry.ModeratorID,
		ActionType:  entry.ActionType,
		TargetID:    entry.TargetID,
		TargetType:  entry.TargetType,
		Reason:      entry.Reason,
		Metadata:    json.RawMessage(entry.Metadata),
		CreatedAt:   entry.CreatedAt,
	}
	payload, err := json.Marshal(event)
	if err != nil {
		return nil, err
	}
	if err := tx.Outbox.Insert(&model.ModerationOutbox{
		EventID:     event.EventID,
		LogEntryID:  entry.ID,
		CommunityID: entry.CommunityID,
		ActionType:  entry.ActionType,
		Payload:     datatypes.JSON(payload),
		Status:      model.OutboxPending,
		CreatedAt:   entry.CreatedAt,
		UpdatedAt:   entry.CreatedAt,
	}); err != nil {
		return nil, err
	}
	return entry, nil
}
