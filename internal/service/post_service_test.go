package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"Lee_Forum/internal/model"
	"Lee_Forum/internal/pkg/errs"
)

func TestCreatePost_OpenCommunity(t *testing.T) {
	f := newFixture(t)
	c := f.staffedCommunity(t)

	post, err := f.posts.CreatePost(f.ctx, userID, c.ID, "hello", "world")
	require.NoError(t, err)
	assert.Equal(t, model.PostNormal, post.Status)
	assert.Equal(t, int64(0), f.countRows(t, &model.PostModeration{}, "post_id = ?", post.ID))

	list, err := f.posts.ListByCommunity(f.ctx, c.ID, 1, 10)
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func TestCreatePost_RequiresApproval(t *testing.T) {
	f := newFixture(t)
	c := f.community(t, reviewedCommunity)
	f.member(t, c.ID, userID, model.RoleMember)

	post, err := f.posts.CreatePost(f.ctx, userID, c.ID, "hello", "world")
	require.NoError(t, err)
	assert.Equal(t, model.PostPendingReview, post.Status)

	status, err := f.queue.Status(f.ctx, post.ID)
	require.NoError(t, err)
	assert.Equal(t, model.ModerationPending, status.Status)

	list, err := f.posts.ListByCommunity(f.ctx, c.ID, 1, 10)
	require.NoError(t, err)
	assert.Empty(t, list)

	_, err = f.queue.Decide(f.ctx, post.ID, modID, PostApprove, "")
	require.NoError(t, err)
	list, err = f.posts.ListByCommunity(f.ctx, c.ID, 1, 10)
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func TestCreatePost_Rejections(t *testing.T) {
	f := newFixture(t)
	c := f.staffedCommunity(t)

	_, err := f.posts.CreatePost(f.ctx, 404, c.ID, "hello", "")
	assert.ErrorIs(t, err, errs.ErrPermissionDenied)
	_, err = f.posts.CreatePost(f.ctx, userID, c.ID, "  ", "")
	assert.ErrorIs(t, err, errs.ErrInvalidArgument)
	_, err = f.posts.CreatePost(f.ctx, userID, c.ID+1000, "hello", "")
	assert.ErrorIs(t, err, errs.ErrNotFound)

	_, err = f.bans.Ban(f.ctx, c.ID, userID, adminID, "", nil)
	require.NoError(t, err)
	_, err = f.posts.CreatePost(f.ctx, userID, c.ID, "hello", "")
	assert.ErrorIs(t, err, errs.ErrPermissionDenied)
}

func TestDeletePost(t *testing.T) {
	f := newFixture(t)
	c := f.staffedCommunity(t)
	f.member(t, c.ID, 4, model.RoleMember)

	own, err := f.posts.CreatePost(f.ctx, userID, c.ID, "mine", "")
	require.NoError(t, err)
	require.NoError(t, f.posts.DeletePost(f.ctx, userID, own.ID, ""))
	assert.Empty(t, f.logs(t, c.ID))
	assert.ErrorIs(t, f.posts.DeletePost(f.ctx, userID, own.ID, ""), errs.ErrNotFound)

	other, err := f.posts.CreatePost(f.ctx, userID, c.ID, "theirs", "")
	require.NoError(t, err)
	assert.ErrorIs(t, f.posts.DeletePost(f.ctx, 4, other.ID, ""), errs.ErrPermissionDenied)

	require.NoError(t, f.posts.DeletePost(f.ctx, modID, other.ID, "spam"))
	logs := f.logs(t, c.ID)
	require.Len(t, logs, 1)
	assert.Equal(t, model.ActionRemovePost, logs[0].ActionType)
	assert.Equal(t, other.ID, *logs[0].TargetID)
}
