package service

import (
	"context"

	"go.uber.org/zap"

	"Lee_Forum/internal/model"
	"Lee_Forum/internal/pkg/errs"
	"Lee_Forum/internal/pkg/logger"
	"Lee_Forum/internal/repository/rdb"
)

type CommentService struct {
	store    *rdb.Store
	resolver *PermissionResolver
	audit    *AuditLog
	log      *logger.Logger
}

func NewCommentService(store *rdb.Store, resolver *PermissionResolver, audit *AuditLog, log *logger.Logger) *CommentService {
	return &CommentService{store: store, resolver: resolver, audit: audit, log: log}
}

// DeleteThread 删除评论及其全部回复，返回删除条数。
// 先收集整棵子树的 id，再一条语句删除
func (s *CommentService) DeleteThread(ctx context.Context, userID, commentID uint64, reason string) (int64, error) {
	var deleted int64
	var moderated bool
	err := s.store.Transaction(ctx, func(tx *rdb.Tx) error {
		comment, err := tx.Comments.FindByID(commentID)
		if err != nil {
			return err
		}
		if comment == nil {
			return errs.NotFound("comment %d", commentID)
		}
		post, err := tx.Posts.FindByID(comment.PostID)
		if err != nil {
			return err
		}
		if post == nil {
			return errs.NotFound("post %d", comment.PostID)
		}
		if comment.AuthorID != userID {
			if err := s.resolver.require(tx, post.CommunityID, userID, model.ManageComments); err != nil {
				return err
			}
			moderated = true
		}

		ids, err := tx.Comments.SubtreeIDs(commentID)
		if err != nil {
			return err
		}
		deleted, err = tx.Comments.DeleteByIDs(ids)
		if err != nil {
			return err
		}
		if !moderated {
			return nil
		}
		_, err = s.audit.append(tx, AuditEntry{
			CommunityID: post.CommunityID,
			ModeratorID: userID,
			ActionType:  model.ActionRemoveComment,
			TargetID:    ptr(commentID),
			TargetType:  model.TargetComment,
			Reason:      reason,
			Metadata:    map[string]any{"post_id": post.ID, "author_id": comment.AuthorID, "deleted_count": deleted},
		})
		return err
	})
	if err != nil {
		return 0, err
	}
	s.log.With(ctx).Info("comment thread deleted", zap.Uint64("comment_id", commentID), zap.Int64("deleted", deleted), zap.Bool("moderated", moderated))
	return deleted, nil
}
