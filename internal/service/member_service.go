package service

import (
	"context"

	"go.uber.org/zap"

	"Lee_Forum/internal/model"
	"Lee_Forum/internal/pkg/errs"
	"Lee_Forum/internal/pkg/logger"
	"Lee_Forum/internal/repository/rdb"
)

// MemberService 版主对成员的管理：加人、改角色、踢人、下放权限。
// 每个动作都先做权限检查，再写审计
type MemberService struct {
	store    *rdb.Store
	members  *MembershipStore
	resolver *PermissionResolver
	bans     *BanManager
	audit    *AuditLog
	log      *logger.Logger
	now      Clock
	paging   Paging
}

func NewMemberService(store *rdb.Store, members *MembershipStore, resolver *PermissionResolver, bans *BanManager,
	audit *AuditLog, log *logger.Logger, now Clock, paging Paging) *MemberService {
	return &MemberService{
		store:    store,
		members:  members,
		resolver: resolver,
		bans:     bans,
		audit:    audit,
		log:      log,
		now:      now,
		paging:   paging,
	}
}

func (s *MemberService) GetMember(ctx context.Context, communityID, userID uint64) (*model.CommunityMember, error) {
	member, err := s.store.Read(ctx).Members.Find(communityID, userID)
	if err != nil {
		return nil, errs.Transaction(err)
	}
	if member == nil {
		return nil, errs.NotFound("user %d is not a member of community %d", userID, communityID)
	}
	return member, nil
}

// ListMembers role 为空时返回全部
func (s *MemberService) ListMembers(ctx context.Context, communityID uint64, role model.Role, limit, offset int) ([]model.CommunityMember, error) {
	if role != "" && !role.Valid() {
		return nil, errs.InvalidArgument("unknown role %q", role)
	}
	limit, offset = s.paging.Normalize(limit, offset)
	list, err := s.store.Read(ctx).Members.List(communityID, role, offset, limit)
	return list, errs.Transaction(err)
}

// AddMember 版主直接拉人入群，被封禁的用户不能加入
func (s *MemberService) AddMember(ctx context.Context, communityID, actorID, userID uint64, role model.Role) (*model.CommunityMember, error) {
	if role == "" {
		role = model.RoleMember
	}
	var member *model.CommunityMember
	err := s.store.Transaction(ctx, func(tx *rdb.Tx) error {
		if err := s.resolver.require(tx, communityID, actorID, model.ManageMembers); err != nil {
			return err
		}
		if err := s.requireRoleGrant(tx, communityID, actorID, "", role); err != nil {
			return err
		}
		_, isMember, err := s.members.getRole(tx, communityID, userID)
		if err != nil {
			return err
		}
		if isMember {
			return errs.Conflict("user %d is already a member of community %d", userID, communityID)
		}
		banned, err := s.bans.isBanned(tx, communityID, userID)
		if err != nil {
			return err
		}
		if banned {
			return errs.Conflict("user %d is banned in community %d", userID, communityID)
		}
		member, err = s.members.upsertMember(tx, communityID, userID, role)
		if err != nil {
			return err
		}
		if _, err := tx.JoinRequests.ClosePending(communityID, userID, model.JoinRequestApproved, s.now()); err != nil {
			return err
		}
		_, err = s.audit.append(tx, AuditEntry{
			CommunityID: communityID,
			ModeratorID: actorID,
			ActionType:  model.ActionAddMember,
			TargetID:    ptr(userID),
			TargetType:  model.TargetUser,
			Metadata:    map[string]any{"role": role},
		})
		return err
	})
	if err != nil {
		return nil, err
	}
	s.log.With(ctx).Info("member added", zap.Uint64("community_id", communityID), zap.Uint64("user_id", userID), zap.String("role", string(role)))
	return member, nil
}

// SetRole 角色未变化时不写审计；降为普通成员时权限记录随之删除
func (s *MemberService) SetRole(ctx context.Context, communityID, actorID, userID uint64, role model.Role) (*model.CommunityMember, error) {
	if !role.Valid() {
		return nil, errs.InvalidArgument("unknown role %q", role)
	}
	var member *model.CommunityMember
	err := s.store.Transaction(ctx, func(tx *rdb.Tx) error {
		if err := s.resolver.require(tx, communityID, actorID, model.ManageMembers); err != nil {
			return err
		}
		current, isMember, err := s.members.getRole(tx, communityID, userID)
		if err != nil {
			return err
		}
		if !isMember {
			return errs.NotFound("user %d is not a member of community %d", userID, communityID)
		}
		if err := s.requireRoleGrant(tx, communityID, actorID, current, role); err != nil {
			return err
		}
		if current == role {
			member, err = tx.Members.Find(communityID, userID)
			return err
		}
		if err := s.keepOneAdmin(tx, communityID, current, role); err != nil {
			return err
		}

		member, err = s.members.upsertMember(tx, communityID, userID, role)
		if err != nil {
			return err
		}
		_, err = s.audit.append(tx, AuditEntry{
			CommunityID: communityID,
			ModeratorID: actorID,
			ActionType:  model.ActionUpdateMemberRole,
			TargetID:    ptr(userID),
			TargetType:  model.TargetUser,
			Metadata:    map[string]any{"old_role": current, "new_role": role},
		})
		return err
	})
	if err != nil {
		return nil, err
	}
	s.log.With(ctx).Info("member role updated", zap.Uint64("community_id", communityID), zap.Uint64("user_id", userID), zap.String("role", string(role)))
	return member, nil
}

// RemoveMember 踢出成员；版主不能踢 admin，也不能踢自己
func (s *MemberService) RemoveMember(ctx context.Context, communityID, actorID, userID uint64, reason string) error {
	err := s.store.Transaction(ctx, func(tx *rdb.Tx) error {
		if err := s.resolver.require(tx, communityID, actorID, model.ManageMembers); err != nil {
			return err
		}
		if err := s.resolver.requireOutranks(tx, communityID, actorID, userID); err != nil {
			return err
		}
		current, isMember, err := s.members.getRole(tx, communityID, userID)
		if err != nil {
			return err
		}
		if !isMember {
			return errs.NotFound("user %d is not a member of community %d", userID, communityID)
		}
		if err := s.keepOneAdmin(tx, communityID, current, model.RoleMember); err != nil {
			return err
		}
		if _, err := s.members.removeMember(tx, communityID, userID); err != nil {
			return err
		}
		_, err = s.audit.append(tx, AuditEntry{
			CommunityID: communityID,
			ModeratorID: actorID,
			ActionType:  model.ActionRemoveMember,
			TargetID:    ptr(userID),
			TargetType:  model.TargetUser,
			Reason:      reason,
			Metadata:    map[string]any{"role": current},
		})
		return err
	})
	if err != nil {
		return err
	}
	s.log.With(ctx).Info("member removed", zap.Uint64("community_id", communityID), zap.Uint64("user_id", userID), zap.Uint64("actor_id", actorID))
	return nil
}

func (s *MemberService) GetPermissions(ctx context.Context, communityID, userID uint64) (*Effective, error) {
	return s.resolver.Effective(ctx, communityID, userID)
}

// SetPermissions 只能作用于 moderator；admin 不受显式权限限制。
// 操作人须为 admin，或持有 manage_members 的其他版主
func (s *MemberService) SetPermissions(ctx context.Context, communityID, actorID, userID uint64, perms model.Permissions) (*Effective, error) {
	err := s.store.Transaction(ctx, func(tx *rdb.Tx) error {
		if err := s.resolver.require(tx, communityID, actorID, model.ManageMembers); err != nil {
			return err
		}
		actorRole, _, err := s.members.getRole(tx, communityID, actorID)
		if err != nil {
			return err
		}
		if actorID == userID && actorRole != model.RoleAdmin {
			return errs.PermissionDenied("moderators cannot change their own permissions")
		}
		role, isMember, err := s.members.getRole(tx, communityID, userID)
		if err != nil {
			return err
		}
		if !isMember {
			return errs.NotFound("user %d is not a member of community %d", userID, communityID)
		}
		if role != model.RoleModerator {
			return errs.InvalidArgument("permissions apply to moderators only, user %d is %s", userID, role)
		}

		now := s.now()
		if err := tx.Permissions.Upsert(&model.ModeratorPermission{
			CommunityID:    communityID,
			UserID:         userID,
			ManageSettings: perms.ManageSettings,
			ManageMembers:  perms.ManageMembers,
			ManagePosts:    perms.ManagePosts,
			ManageComments: perms.ManageComments,
			CreatedAt:      now,
			UpdatedAt:      now,
		}); err != nil {
			return err
		}
		_, err = s.audit.append(tx, AuditEntry{
			CommunityID: communityID,
			ModeratorID: actorID,
			ActionType:  model.ActionUpdatePermissions,
			TargetID:    ptr(userID),
			TargetType:  model.TargetUser,
			Metadata:    perms,
		})
		return err
	})
	if err != nil {
		return nil, err
	}
	s.log.With(ctx).Info("moderator permissions updated", zap.Uint64("community_id", communityID), zap.Uint64("user_id", userID))
	return &Effective{Role: model.RoleModerator, Permissions: perms, Explicit: true}, nil
}

// requireRoleGrant 只有 admin 能授予或收回 admin
func (s *MemberService) requireRoleGrant(tx *rdb.Tx, communityID, actorID uint64, from, to model.Role) error {
	if from != model.RoleAdmin && to != model.RoleAdmin {
		return nil
	}
	actorRole, _, err := s.members.getRole(tx, communityID, actorID)
	if err != nil {
		return err
	}
	if actorRole != model.RoleAdmin {
		return errs.PermissionDenied("only admins can grant or revoke admin")
	}
	return nil
}

func (s *MemberService) keepOneAdmin(tx *rdb.Tx, communityID uint64, from, to model.Role) error {
	if from != model.RoleAdmin || to == model.RoleAdmin {
		return nil
	}
	n, err := s.members.adminCount(tx, communityID)
	if err != nil {
		return err
	}
	if n <= 1 {
		return errs.Conflict("community %d must keep at least one admin", communityID)
	}
	return nil
}
