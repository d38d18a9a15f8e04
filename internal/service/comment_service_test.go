package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"Lee_Forum/internal/model"
	"Lee_Forum/internal/pkg/errs"
	"Lee_Forum/internal/repository/rdb/rdbtest"
)

func (f *fixture) comment(t *testing.T, postID, parentID, authorID uint64) uint64 {
	t.Helper()
	c := &model.Comment{PostID: postID, ParentID: parentID, AuthorID: authorID, Content: "x"}
	require.NoError(t, f.db.Create(c).Error)
	return c.ID
}

func TestDeleteThread_DeepChain(t *testing.T) {
	f := newFixture(t)
	c := f.staffedCommunity(t)
	post := rdbtest.SeedPost(t, f.db, c.ID, userID, model.PostNormal)

	root := f.comment(t, post.ID, 0, userID)
	sibling := f.comment(t, post.ID, 0, userID)
	parent := root
	for i := 0; i < 200; i++ {
		parent = f.comment(t, post.ID, parent, 4)
	}
	f.comment(t, post.ID, root, 5)

	n, err := f.comments.DeleteThread(f.ctx, userID, root, "")
	require.NoError(t, err)
	assert.Equal(t, int64(202), n)

	assert.Equal(t, int64(1), f.countRows(t, &model.Comment{}, "post_id = ?", post.ID))
	assert.Equal(t, int64(1), f.countRows(t, &model.Comment{}, "id = ?", sibling))
	assert.Empty(t, f.logs(t, c.ID))
}

func TestDeleteThread_Moderated(t *testing.T) {
	f := newFixture(t)
	c := f.staffedCommunity(t)
	post := rdbtest.SeedPost(t, f.db, c.ID, userID, model.PostNormal)
	root := f.comment(t, post.ID, 0, userID)
	f.comment(t, post.ID, root, 4)

	_, err := f.comments.DeleteThread(f.ctx, 4, root, "")
	assert.ErrorIs(t, err, errs.ErrPermissionDenied)

	f.setPermissions(t, c.ID, modID, model.Permissions{ManagePosts: true})
	_, err = f.comments.DeleteThread(f.ctx, modID, root, "")
	assert.ErrorIs(t, err, errs.ErrPermissionDenied)
	assert.Equal(t, int64(2), f.countRows(t, &model.Comment{}, "post_id = ?", post.ID))

	n, err := f.comments.DeleteThread(f.ctx, adminID, root, "flame war")
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	logs := f.logs(t, c.ID)
	require.Len(t, logs, 1)
	assert.Equal(t, model.ActionRemoveComment, logs[0].ActionType)
	assert.Equal(t, model.TargetComment, *logs[0].TargetType)
	assert.Contains(t, string(logs[0].Metadata), `"deleted_count":2`)

	_, err = f.comments.DeleteThread(f.ctx, adminID, root, "")
	assert.ErrorIs(t, err, errs.ErrNotFound)
}
