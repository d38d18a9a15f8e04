package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"Lee_Forum/internal/model"
	"Lee_Forum/internal/pkg"
	"Lee_Forum/internal/pkg/errs"
	"Lee_Forum/internal/pkg/logger"
	"Lee_Forum/internal/repository/rdb"
)

// BanManager 封禁会撤销成员身份，并挡住之后的入群申请和发帖
type BanManager struct {
	store   *rdb.Store
	members *MembershipStore
	audit   *AuditLog
	log     *logger.Logger
	now     Clock
	paging  Paging
}

func NewBanManager(store *rdb.Store, members *MembershipStore, audit *AuditLog, log *logger.Logger, now Clock, paging Paging) *BanManager {
	return &BanManager{store: store, members: members, audit: audit, log: log, now: now, paging: paging}
}

// Ban durationDays 为 nil 表示永久封禁。重复封禁刷新原记录，不报错。
// 事务内顺序：删成员，写封禁记录，写审计
func (b *BanManager) Ban(ctx context.Context, communityID, userID, moderatorID uint64, reason string, durationDays *int) (*model.BannedUser, error) {
	if durationDays != nil && *durationDays <= 0 {
		return nil, errs.InvalidArgument("duration_days must be positive")
	}

	var ban *model.BannedUser
	err := b.store.Transaction(ctx, func(tx *rdb.Tx) error {
		community, err := tx.Communities.FindByID(communityID)
		if err != nil {
			return err
		}
		if community == nil {
			return errs.NotFound("community %d", communityID)
		}

		now := b.now()
		var expiresAt *time.Time
		if durationDays != nil {
			expiresAt = ptr(now.AddDate(0, 0, *durationDays))
		}

		removed, err := b.members.removeMember(tx, communityID, userID)
		if err != nil {
			return err
		}

		record := &model.BannedUser{
			CommunityID:  communityID,
			UserID:       userID,
			BannedBy:     moderatorID,
			BanExpiresAt: expiresAt,
			CreatedAt:    now,
			UpdatedAt:    now,
		}
		if r := pkg.CleanReason(reason); r != nil {
			record.Reason = *r
		}
		if err := tx.Bans.Upsert(record); err != nil {
			return err
		}

		metadata := map[string]any{"membership_removed": removed}
		if durationDays != nil {
			metadata["duration_days"] = *durationDays
			metadata["expires_at"] = expiresAt
		}
		if _, err := b.audit.append(tx, AuditEntry{
			CommunityID: communityID,
			ModeratorID: moderatorID,
			ActionType:  model.ActionBan,
			TargetID:    ptr(userID),
			TargetType:  model.TargetUser,
			Reason:      reason,
			Metadata:    metadata,
		}); err != nil {
			return err
		}

		ban, err = tx.Bans.Find(communityID, userID)
		return err
	})
	if err != nil {
		b.log.With(ctx).Error("ban failed", zap.Uint64("community_id", communityID), zap.Uint64("user_id", userID), zap.Error(err))
		return nil, err
	}
	b.log.With(ctx).Info("user banned",
		zap.Uint64("community_id", communityID),
		zap.Uint64("user_id", userID),
		zap.Uint64("moderator_id", moderatorID),
		zap.Timep("expires_at", ban.BanExpiresAt),
	)
	return ban, nil
}

// IsBanned 过期的封禁记录不算
func (b *BanManager) IsBanned(ctx context.Context, communityID, userID uint64) (bool, error) {
	banned, err := b.isBanned(b.store.Read(ctx), communityID, userID)
	return banned, errs.Transaction(err)
}

// Unban 不恢复成员身份，需要重新走加入流程
func (b *BanManager) Unban(ctx context.Context, communityID, userID, moderatorID uint64, reason string) error {
	err := b.store.Transaction(ctx, func(tx *rdb.Tx) error {
		deleted, err := tx.Bans.Delete(communityID, userID)
		if err != nil {
			return err
		}
		if !deleted {
			return errs.NotFound("user %d is not banned in community %d", userID, communityID)
		}
		_, err = b.audit.append(tx, AuditEntry{
			CommunityID: communityID,
			ModeratorID: moderatorID,
			ActionType:  model.ActionUnban,
			TargetID:    ptr(userID),
			TargetType:  model.TargetUser,
			Reason:      reason,
		})
		return err
	})
	if err != nil {
		return err
	}
	b.log.With(ctx).Info("user unbanned",
		zap.Uint64("community_id", communityID),
		zap.Uint64("user_id", userID),
		zap.Uint64("moderator_id", moderatorID),
	)
	return nil
}

// Get 返回封禁记录（含已过期的历史），不存在为 NotFound
func (b *BanManager) Get(ctx context.Context, communityID, userID uint64) (*model.BannedUser, error) {
	ban, err := b.store.Read(ctx).Bans.Find(communityID, userID)
	if err != nil {
		return nil, errs.Transaction(err)
	}
	if ban == nil {
		return nil, errs.NotFound("user %d is not banned in community %d", userID, communityID)
	}
	return ban, nil
}

func (b *BanManager) List(ctx context.Context, communityID uint64, activeOnly bool, limit, offset int) ([]model.BannedUser, error) {
	limit, offset = b.paging.Normalize(limit, offset)
	list, err := b.store.Read(ctx).Bans.List(communityID, activeOnly, b.now(), offset, limit)
	return list, errs.Transaction(err)
}

func (b *BanManager) isBanned(tx *rdb.Tx, communityID, userID uint64) (bool, error) {
	return tx.Bans.IsActive(communityID, userID, b.now())
}
