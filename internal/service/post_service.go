package service

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"Lee_Forum/internal/model"
	"Lee_Forum/internal/pkg/errs"
	"Lee_Forum/internal/pkg/logger"
	"Lee_Forum/internal/repository/rdb"
)

type PostService struct {
	store    *rdb.Store
	members  *MembershipStore
	resolver *PermissionResolver
	bans     *BanManager
	queue    *PostModerationQueue
	audit    *AuditLog
	log      *logger.Logger
	now      Clock
	paging   Paging
}

func NewPostService(store *rdb.Store, members *MembershipStore, resolver *PermissionResolver, bans *BanManager,
	queue *PostModerationQueue, audit *AuditLog, log *logger.Logger, now Clock, paging Paging) *PostService {
	return &PostService{
		store:    store,
		members:  members,
		resolver: resolver,
		bans:     bans,
		queue:    queue,
		audit:    audit,
		log:      log,
		now:      now,
		paging:   paging,
	}
}

// CreatePost 只有成员能发帖，被封禁者拒绝；社区开启发帖审核时帖子在同一事务内入队
func (s *PostService) CreatePost(ctx context.Context, userID, communityID uint64, title, content string) (*model.Post, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, errs.InvalidArgument("title required")
	}

	var post *model.Post
	err := s.store.Transaction(ctx, func(tx *rdb.Tx) error {
		community, err := tx.Communities.FindByID(communityID)
		if err != nil {
			return err
		}
		if community == nil {
			return errs.NotFound("community %d", communityID)
		}
		banned, err := s.bans.isBanned(tx, communityID, userID)
		if err != nil {
			return err
		}
		if banned {
			return errs.PermissionDenied("user %d is banned in community %d", userID, communityID)
		}
		// 判断是否是 community 成员
		_, isMember, err := s.members.getRole(tx, communityID, userID)
		if err != nil {
			return err
		}
		if !isMember {
			return errs.PermissionDenied("user %d is not a member of community %d", userID, communityID)
		}

		now := s.now()
		post = &model.Post{
			CommunityID: communityID,
			AuthorID:    userID,
			Title:       title,
			Content:     content,
			Status:      model.PostNormal,
			CreatedAt:   now,
			UpdatedAt:   now,
		}
		if community.RequiresPostApproval {
			post.Status = model.PostPendingReview
		}
		if err := tx.Posts.Create(post); err != nil {
			return err
		}
		if community.RequiresPostApproval {
			_, err = s.queue.enqueue(tx, post)
		}
		return err
	})
	if err != nil {
		return nil, err
	}
	s.log.With(ctx).Info("post created",
		zap.Uint64("post_id", post.ID),
		zap.Uint64("community_id", communityID),
		zap.Bool("pending_review", post.Status == model.PostPendingReview),
	)
	return post, nil
}

// GetPost 含待审核与被拒的帖子，已删除的视为不存在
func (s *PostService) GetPost(ctx context.Context, postID uint64) (*model.Post, error) {
	post, err := s.store.Read(ctx).Posts.FindByID(postID)
	if err != nil {
		return nil, errs.Transaction(err)
	}
	if post == nil {
		return nil, errs.NotFound("post %d", postID)
	}
	return post, nil
}

// ListByCommunity 社区帖子列表，只含已公开的帖子
func (s *PostService) ListByCommunity(ctx context.Context, communityID uint64, page, size int) ([]model.Post, error) {
	if page <= 0 {
		page = 1
	}
	size, _ = s.paging.Normalize(size, 0)
	offset := (page - 1) * size
	list, err := s.store.Read(ctx).Posts.ListByCommunity(communityID, offset, size)
	return list, errs.Transaction(err)
}

// DeletePost 作者本人直接删除；他人删除需要 manage_posts 并记 REMOVE_POST 审计
func (s *PostService) DeletePost(ctx context.Context, userID, postID uint64, reason string) error {
	var moderated bool
	err := s.store.Transaction(ctx, func(tx *rdb.Tx) error {
		post, err := tx.Posts.FindByID(postID)
		if err != nil {
			return err
		}
		if post == nil {
			return errs.NotFound("post %d", postID)
		}
		if post.AuthorID != userID {
			if err := s.resolver.require(tx, post.CommunityID, userID, model.ManagePosts); err != nil {
				return err
			}
			moderated = true
		}
		if _, err := tx.Posts.Delete(postID); err != nil {
			return err
		}
		if !moderated {
			return nil
		}
		_, err = s.audit.append(tx, AuditEntry{
			CommunityID: post.CommunityID,
			ModeratorID: userID,
			ActionType:  model.ActionRemovePost,
			TargetID:    ptr(postID),
			TargetType:  model.TargetPost,
			Reason:      reason,
			Metadata:    map[string]any{"author_id": post.AuthorID, "title": post.Title},
		})
		return err
	})
	if err != nil {
		return err
	}
	s.log.With(ctx).Info("post deleted", zap.Uint64("post_id", postID), zap.Uint64("actor_id", userID), zap.Bool("moderated", moderated))
	return nil
}
