package service

import (
	"context"

	"go.uber.org/zap"

	"Lee_Forum/internal/model"
	"Lee_Forum/internal/pkg"
	"Lee_Forum/internal/pkg/errs"
	"Lee_Forum/internal/pkg/logger"
	"Lee_Forum/internal/repository/rdb"
)

// PostAction 版主对待审帖子的处理
type PostAction string

const (
	PostApprove PostAction = "approve"
	PostReject  PostAction = "reject"
)

// PostModerationQueue 每个帖子最多一行审核状态。与入群申请不同，审核结论可以反复修改
type PostModerationQueue struct {
	store  *rdb.Store
	audit  *AuditLog
	log    *logger.Logger
	now    Clock
	paging Paging
}

func NewPostModerationQueue(store *rdb.Store, audit *AuditLog, log *logger.Logger, now Clock, paging Paging) *PostModerationQueue {
	return &PostModerationQueue{store: store, audit: audit, log: log, now: now, paging: paging}
}

// Enqueue 幂等：已在队列中的帖子原样返回
func (q *PostModerationQueue) Enqueue(ctx context.Context, postID uint64) (*model.PostModeration, error) {
	var pm *model.PostModeration
	err := q.store.Transaction(ctx, func(tx *rdb.Tx) error {
		post, err := tx.Posts.FindByID(postID)
		if err != nil {
			return err
		}
		if post == nil {
			return errs.NotFound("post %d", postID)
		}
		pm, err = q.enqueue(tx, post)
		return err
	})
	return pm, err
}

// Decide 设置结论并写 APPROVE / REJECT 审计；帖子可见状态同步切换
func (q *PostModerationQueue) Decide(ctx context.Context, postID, moderatorID uint64, action PostAction, reason string) (*model.PostModeration, error) {
	var status model.ModerationStatus
	var auditAction string
	var postStatus int
	switch action {
	case PostApprove:
		status, auditAction, postStatus = model.ModerationApproved, model.ActionApprove, model.PostNormal
	case PostReject:
		status, auditAction, postStatus = model.ModerationRejected, model.ActionReject, model.PostRejected
	default:
		return nil, errs.InvalidArgument("unknown moderation action %q", action)
	}

	var pm *model.PostModeration
	err := q.store.Transaction(ctx, func(tx *rdb.Tx) error {
		var err error
		pm, err = tx.PostModeration.Find(postID)
		if err != nil {
			return err
		}
		if pm == nil {
			return errs.NotFound("post %d is not in the moderation queue", postID)
		}
		previous := pm.Status

		now := q.now()
		pm.Status = status
		pm.ModeratorID = ptr(moderatorID)
		pm.Reason = pkg.CleanReason(reason)
		pm.ModeratedAt = ptr(now)
		if err := tx.PostModeration.Save(pm); err != nil {
			return err
		}
		if err := tx.Posts.UpdateStatus(postID, postStatus); err != nil {
			return err
		}
		_, err = q.audit.append(tx, AuditEntry{
			CommunityID: pm.CommunityID,
			ModeratorID: moderatorID,
			ActionType:  auditAction,
			TargetID:    ptr(postID),
			TargetType:  model.TargetPost,
			Reason:      reason,
			Metadata:    map[string]any{"previous_status": previous},
		})
		return err
	})
	if err != nil {
		return nil, err
	}
	q.log.With(ctx).Info("post moderated",
		zap.Uint64("post_id", postID),
		zap.String("status", string(status)),
		zap.Uint64("moderator_id", moderatorID),
	)
	return pm, nil
}

func (q *PostModerationQueue) Status(ctx context.Context, postID uint64) (*model.PostModeration, error) {
	pm, err := q.store.Read(ctx).PostModeration.Find(postID)
	if err != nil {
		return nil, errs.Transaction(err)
	}
	if pm == nil {
		return nil, errs.NotFound("post %d is not in the moderation queue", postID)
	}
	return pm, nil
}

// ListPending 按入队时间先后
func (q *PostModerationQueue) ListPending(ctx context.Context, communityID uint64, limit, offset int) ([]model.PostModeration, error) {
	limit, offset = q.paging.Normalize(limit, offset)
	list, err := q.store.Read(ctx).PostModeration.ListByStatus(communityID, model.ModerationPending, offset, limit)
	return list, errs.Transaction(err)
}

// enqueue 新入队的帖子同时转为待审核，对外不可见
func (q *PostModerationQueue) enqueue(tx *rdb.Tx, post *model.Post) (*model.PostModeration, error) {
	existing, err := tx.PostModeration.Find(post.ID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return existing, nil
	}

	pm := &model.PostModeration{
		PostID:      post.ID,
		CommunityID: post.CommunityID,
		Status:      model.ModerationPending,
		CreatedAt:   q.now(),
	}
	if err := tx.PostModeration.Insert(pm); err != nil {
		return nil, err
	}
	if post.Status != model.PostPendingReview {
		if err := tx.Posts.UpdateStatus(post.ID, model.PostPendingReview); err != nil {
			return nil, err
		}
		post.Status = model.PostPendingReview
	}
	// 并发入队时以先写入的那行为准
	return tx.PostModeration.Find(post.ID)
}
