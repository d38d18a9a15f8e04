package service

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"Lee_Forum/internal/model"
	"Lee_Forum/internal/pkg/errs"
	"Lee_Forum/internal/pkg/logger"
	"Lee_Forum/internal/repository/rdb"
)

// JoinResult Join 走了哪条路径：直接加入或提交申请
type JoinResult struct {
	Status  string                 `json:"status"` // joined | pending
	Member  *model.CommunityMember `json:"member,omitempty"`
	Request *model.JoinRequest     `json:"request,omitempty"`
}

const (
	JoinedDirectly = "joined"
	JoinPending    = "pending"
)

type CommunityService struct {
	store    *rdb.Store
	members  *MembershipStore
	resolver *PermissionResolver
	requests *JoinRequestWorkflow
	bans     *BanManager
	audit    *AuditLog
	log      *logger.Logger
	now      Clock
	paging   Paging
}

func NewCommunityService(store *rdb.Store, members *MembershipStore, resolver *PermissionResolver, requests *JoinRequestWorkflow,
	bans *BanManager, audit *AuditLog, log *logger.Logger, now Clock, paging Paging) *CommunityService {
	return &CommunityService{
		store:    store,
		members:  members,
		resolver: resolver,
		requests: requests,
		bans:     bans,
		audit:    audit,
		log:      log,
		now:      now,
		paging:   paging,
	}
}

// CreateCommunity settings 为 nil 时使用默认配置；创建者成为 admin
func (s *CommunityService) CreateCommunity(ctx context.Context, userID uint64, name, desc string, settings *model.CommunitySettings) (*model.Community, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, errs.InvalidArgument("community name required")
	}
	cfg := model.DefaultCommunitySettings
	if settings != nil {
		cfg = *settings
	}

	community := &model.Community{
		Name:        name,
		Description: desc,
		CreatorID:   userID,
		CreatedAt:   s.now(),
		UpdatedAt:   s.now(),
	}
	community.ApplySettings(cfg)

	err := s.store.Transaction(ctx, func(tx *rdb.Tx) error {
		if err := tx.Communities.Create(community); err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return errs.Conflict("community %q already exists", name)
			}
			return err
		}
		_, err := s.members.upsertMember(tx, community.ID, userID, model.RoleAdmin)
		return err
	})
	if err != nil {
		return nil, err
	}
	s.log.With(ctx).Info("community created", zap.Uint64("community_id", community.ID), zap.Uint64("creator_id", userID))
	return community, nil
}

func (s *CommunityService) GetCommunity(ctx context.Context, communityID uint64) (*model.Community, error) {
	community, err := s.store.Read(ctx).Communities.FindByID(communityID)
	if err != nil {
		return nil, errs.Transaction(err)
	}
	if community == nil {
		return nil, errs.NotFound("community %d", communityID)
	}
	return community, nil
}

// RequiresPostApproval 发帖时决定是否进入审核队列
func (s *CommunityService) RequiresPostApproval(ctx context.Context, communityID uint64) (bool, error) {
	community, err := s.GetCommunity(ctx, communityID)
	if err != nil {
		return false, err
	}
	return community.RequiresPostApproval, nil
}

// UpdateSettings 需要 manage_settings；设置没有变化时不写库也不记审计
func (s *CommunityService) UpdateSettings(ctx context.Context, communityID, actorID uint64, patch model.SettingsPatch) (*model.Community, error) {
	if patch.Empty() {
		return nil, errs.InvalidArgument("no settings to update")
	}

	var community *model.Community
	err := s.store.Transaction(ctx, func(tx *rdb.Tx) error {
		var err error
		community, err = tx.Communities.FindForUpdate(communityID)
		if err != nil {
			return err
		}
		if community == nil {
			return errs.NotFound("community %d", communityID)
		}
		if err := s.resolver.require(tx, communityID, actorID, model.ManageSettings); err != nil {
			return err
		}

		old := community.Settings()
		next := patch.Apply(old)
		if next == old {
			return nil
		}
		if err := tx.Communities.UpdateSettings(communityID, next); err != nil {
			return err
		}
		community.ApplySettings(next)
		_, err = s.audit.append(tx, AuditEntry{
			CommunityID: communityID,
			ModeratorID: actorID,
			ActionType:  model.ActionUpdateSettings,
			TargetID:    ptr(communityID),
			TargetType:  model.TargetCommunity,
			Metadata:    map[string]any{"old": old, "new": next},
		})
		return err
	})
	if err != nil {
		return nil, err
	}
	s.log.With(ctx).Info("community settings updated", zap.Uint64("community_id", communityID), zap.Uint64("actor_id", actorID))
	return community, nil
}

// Join 开放社区直接加入，需要审批的社区转为入群申请
func (s *CommunityService) Join(ctx context.Context, communityID, userID uint64) (*JoinResult, error) {
	result := &JoinResult{}
	err := s.store.Transaction(ctx, func(tx *rdb.Tx) error {
		community, err := tx.Communities.FindByID(communityID)
		if err != nil {
			return err
		}
		if community == nil {
			return errs.NotFound("community %d", communityID)
		}
		if community.RequiresJoinApproval {
			req, err := s.requests.create(tx, communityID, userID)
			if err != nil {
				return err
			}
			result.Status, result.Request = JoinPending, req
			return nil
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
		member, err := s.members.upsertMember(tx, communityID, userID, model.RoleMember)
		if err != nil {
			return err
		}
		// 社区改为开放前留下的申请
		if _, err := tx.JoinRequests.ClosePending(communityID, userID, model.JoinRequestApproved, s.now()); err != nil {
			return err
		}
		result.Status, result.Member = JoinedDirectly, member
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.log.With(ctx).Info("join community", zap.Uint64("community_id", communityID), zap.Uint64("user_id", userID), zap.String("status", result.Status))
	return result, nil
}

// Leave 最后一个 admin 不能退出
func (s *CommunityService) Leave(ctx context.Context, communityID, userID uint64) error {
	return s.store.Transaction(ctx, func(tx *rdb.Tx) error {
		role, isMember, err := s.members.getRole(tx, communityID, userID)
		if err != nil {
			return err
		}
		if !isMember {
			return errs.NotFound("user %d is not a member of community %d", userID, communityID)
		}
		if role == model.RoleAdmin {
			n, err := s.members.adminCount(tx, communityID)
			if err != nil {
				return err
			}
			if n <= 1 {
				return errs.Conflict("the last admin cannot leave community %d", communityID)
			}
		}
		_, err = s.members.removeMember(tx, communityID, userID)
		return err
	})
}

func (s *CommunityService) ListCommunities(ctx context.Context, page, size int) ([]model.Community, error) {
	if page <= 0 {
		page = 1
	}
	size, _ = s.paging.Normalize(size, 0)
	offset := (page - 1) * size
	list, err := s.store.Read(ctx).Communities.List(offset, size)
	return list, errs.Transaction(err)
}
