package service

import (
	"context"
	"errors"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"Lee_Forum/internal/model"
	"Lee_Forum/internal/pkg/errs"
	"Lee_Forum/internal/pkg/logger"
	"Lee_Forum/internal/repository/rdb"
)

// JoinDecision 审批结果
type JoinDecision string

const (
	JoinApprove JoinDecision = "approved"
	JoinReject  JoinDecision = "rejected"
)

// JoinRequestWorkflow pending -> approved | rejected，两个终态都不可再改
type JoinRequestWorkflow struct {
	store   *rdb.Store
	members *MembershipStore
	bans    *BanManager
	audit   *AuditLog
	log     *logger.Logger
	now     Clock
	paging  Paging
}

func NewJoinRequestWorkflow(store *rdb.Store, members *MembershipStore, bans *BanManager, audit *AuditLog, log *logger.Logger, now Clock, paging Paging) *JoinRequestWorkflow {
	return &JoinRequestWorkflow{store: store, members: members, bans: bans, audit: audit, log: log, now: now, paging: paging}
}

func (w *JoinRequestWorkflow) Create(ctx context.Context, communityID, userID uint64) (*model.JoinRequest, error) {
	var req *model.JoinRequest
	err := w.store.Transaction(ctx, func(tx *rdb.Tx) error {
		community, err := tx.Communities.FindByID(communityID)
		if err != nil {
			return err
		}
		if community == nil {
			return errs.NotFound("community %d", communityID)
		}
		req, err = w.create(tx, communityID, userID)
		return err
	})
	if err != nil {
		return nil, err
	}
	w.log.With(ctx).Info("join request created",
		zap.Uint64("request_id", req.ID),
		zap.Uint64("community_id", communityID),
		zap.Uint64("user_id", userID),
	)
	return req, nil
}

// Resolve 只能处理 pending 的申请，其余一律 NotFound。
// 通过时成员写入、审计、状态更新在同一事务内提交
func (w *JoinRequestWorkflow) Resolve(ctx context.Context, requestID uint64, decision JoinDecision, moderatorID uint64) (*model.JoinRequest, error) {
	if decision != JoinApprove && decision != JoinReject {
		return nil, errs.InvalidArgument("unknown decision %q", decision)
	}

	var req *model.JoinRequest
	err := w.store.Transaction(ctx, func(tx *rdb.Tx) error {
		var err error
		req, err = tx.JoinRequests.FindByID(requestID)
		if err != nil {
			return err
		}
		if req == nil || req.Status != model.JoinRequestPending {
			return errs.NotFound("pending join request %d", requestID)
		}

		action := model.ActionReject
		metadata := map[string]any{"user_id": req.UserID}
		if decision == JoinApprove {
			banned, err := w.bans.isBanned(tx, req.CommunityID, req.UserID)
			if err != nil {
				return err
			}
			if banned {
				return errs.Conflict("user %d is banned in community %d", req.UserID, req.CommunityID)
			}
			// 已经是成员时只关闭申请，不改动现有角色
			_, isMember, err := w.members.getRole(tx, req.CommunityID, req.UserID)
			if err != nil {
				return err
			}
			if !isMember {
				if _, err := w.members.upsertMember(tx, req.CommunityID, req.UserID, model.RoleMember); err != nil {
					return err
				}
			}
			metadata["already_member"] = isMember
			action = model.ActionApprove
		}

		if _, err := w.audit.append(tx, AuditEntry{
			CommunityID: req.CommunityID,
			ModeratorID: moderatorID,
			ActionType:  action,
			TargetID:    ptr(req.ID),
			TargetType:  model.TargetJoinRequest,
			Metadata:    metadata,
		}); err != nil {
			return err
		}

		now := w.now()
		status := model.JoinRequestStatus(decision)
		ok, err := tx.JoinRequests.Resolve(req.ID, status, now)
		if err != nil {
			return err
		}
		if !ok {
			return errs.NotFound("pending join request %d", requestID)
		}
		req.Status = status
		req.PendingKey = nil
		req.UpdatedAt = now
		return nil
	})
	if err != nil {
		return nil, err
	}
	w.log.With(ctx).Info("join request resolved",
		zap.Uint64("request_id", requestID),
		zap.String("decision", string(decision)),
		zap.Uint64("moderator_id", moderatorID),
	)
	return req, nil
}

func (w *JoinRequestWorkflow) Get(ctx context.Context, requestID uint64) (*model.JoinRequest, error) {
	req, err := w.store.Read(ctx).JoinRequests.FindByID(requestID)
	if err != nil {
		return nil, errs.Transaction(err)
	}
	if req == nil {
		return nil, errs.NotFound("join request %d", requestID)
	}
	return req, nil
}

// ListPending 按申请时间先后
func (w *JoinRequestWorkflow) ListPending(ctx context.Context, communityID uint64, limit, offset int) ([]model.JoinRequest, error) {
	limit, offset = w.paging.Normalize(limit, offset)
	list, err := w.store.Read(ctx).JoinRequests.ListPending(communityID, offset, limit)
	return list, errs.Transaction(err)
}

// create 依次检查成员、封禁、已有 pending；唯一索引兜住并发重复提交
func (w *JoinRequestWorkflow) create(tx *rdb.Tx, communityID, userID uint64) (*model.JoinRequest, error) {
	_, isMember, err := w.members.getRole(tx, communityID, userID)
	if err != nil {
		return nil, err
	}
	if isMember {
		return nil, errs.Conflict("user %d is already a member of community %d", userID, communityID)
	}
	banned, err := w.bans.isBanned(tx, communityID, userID)
	if err != nil {
		return nil, err
	}
	if banned {
		return nil, errs.Conflict("user %d is banned in community %d", userID, communityID)
	}
	pending, err := tx.JoinRequests.HasPending(communityID, userID)
	if err != nil {
		return nil, err
	}
	if pending {
		return nil, errs.Conflict("user %d already has a pending request for community %d", userID, communityID)
	}

	now := w.now()
	req := &model.JoinRequest{
		CommunityID: communityID,
		UserID:      userID,
		Status:      model.JoinRequestPending,
		PendingKey:  model.PendingJoinKey(communityID, userID),
		RequestedAt: now,
		UpdatedAt:   now,
	}
	if err := tx.JoinRequests.Create(req); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, errs.Conflict("user %d already has a pending request for community %d", userID, communityID)
		}
		return nil, err
	}
	return req, nil
}
