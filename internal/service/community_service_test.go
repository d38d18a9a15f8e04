package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"Lee_Forum/internal/model"
	"Lee_Forum/internal/pkg/errs"
)

func TestCreateCommunity(t *testing.T) {
	f := newFixture(t)

	c, err := f.communities.CreateCommunity(f.ctx, 1, "  golang ", "gophers", nil)
	require.NoError(t, err)
	assert.Equal(t, "golang", c.Name)
	assert.Equal(t, model.DefaultCommunitySettings, c.Settings())

	role, ok, err := f.members.GetRole(f.ctx, c.ID, 1)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, model.RoleAdmin, role)

	_, err = f.communities.CreateCommunity(f.ctx, 2, "golang", "", nil)
	assert.ErrorIs(t, err, errs.ErrConflict)
	_, err = f.communities.CreateCommunity(f.ctx, 2, " ", "", nil)
	assert.ErrorIs(t, err, errs.ErrInvalidArgument)

	custom, err := f.communities.CreateCommunity(f.ctx, 2, "private", "", &closedCommunity)
	require.NoError(t, err)
	assert.True(t, custom.RequiresJoinApproval)

	got, err := f.communities.GetCommunity(f.ctx, custom.ID)
	require.NoError(t, err)
	assert.Equal(t, "private", got.Name)
	_, err = f.communities.GetCommunity(f.ctx, 404)
	assert.ErrorIs(t, err, errs.ErrNotFound)
}

func TestUpdateSettings(t *testing.T) {
	f := newFixture(t)
	c, err := f.communities.CreateCommunity(f.ctx, 1, "golang", "", nil)
	require.NoError(t, err)
	f.member(t, c.ID, 2, model.RoleModerator)
	f.member(t, c.ID, 3, model.RoleMember)

	on := true
	patch := model.SettingsPatch{RequiresPostApproval: &on}

	_, err = f.communities.UpdateSettings(f.ctx, c.ID, 3, patch)
	assert.ErrorIs(t, err, errs.ErrPermissionDenied)

	f.setPermissions(t, c.ID, 2, model.Permissions{ManagePosts: true})
	_, err = f.communities.UpdateSettings(f.ctx, c.ID, 2, patch)
	assert.ErrorIs(t, err, errs.ErrPermissionDenied)
	assert.Empty(t, f.logs(t, c.ID))

	updated, err := f.communities.UpdateSettings(f.ctx, c.ID, 1, patch)
	require.NoError(t, err)
	assert.True(t, updated.RequiresPostApproval)
	assert.True(t, updated.AllowPostImages)

	requires, err := f.communities.RequiresPostApproval(f.ctx, c.ID)
	require.NoError(t, err)
	assert.True(t, requires)

	logs := f.logs(t, c.ID)
	require.Len(t, logs, 1)
	assert.Equal(t, model.ActionUpdateSettings, logs[0].ActionType)
	assert.JSONEq(t, `{
		"old": {"requires_join_approval": false, "requires_post_approval": false, "allow_post_images": true},
		"new": {"requires_join_approval": false, "requires_post_approval": true, "allow_post_images": true}
	}`, string(logs[0].Metadata))

	// 无变化不写审计
	_, err = f.communities.UpdateSettings(f.ctx, c.ID, 1, patch)
	require.NoError(t, err)
	assert.Len(t, f.logs(t, c.ID), 1)

	_, err = f.communities.UpdateSettings(f.ctx, c.ID, 1, model.SettingsPatch{})
	assert.ErrorIs(t, err, errs.ErrInvalidArgument)
	_, err = f.communities.UpdateSettings(f.ctx, 404, 1, patch)
	assert.ErrorIs(t, err, errs.ErrNotFound)
}

func TestJoin(t *testing.T) {
	f := newFixture(t)
	open := f.community(t, model.DefaultCommunitySettings)
	closed := f.community(t, closedCommunity)

	res, err := f.communities.Join(f.ctx, open.ID, 7)
	require.NoError(t, err)
	assert.Equal(t, JoinedDirectly, res.Status)
	require.NotNil(t, res.Member)
	assert.Equal(t, model.RoleMember, res.Member.Role)

	_, err = f.communities.Join(f.ctx, open.ID, 7)
	assert.ErrorIs(t, err, errs.ErrConflict)

	res, err = f.communities.Join(f.ctx, closed.ID, 7)
	require.NoError(t, err)
	assert.Equal(t, JoinPending, res.Status)
	require.NotNil(t, res.Request)
	_, ok, err := f.members.GetRole(f.ctx, closed.ID, 7)
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = f.bans.Ban(f.ctx, open.ID, 8, 1, "", nil)
	require.NoError(t, err)
	_, err = f.communities.Join(f.ctx, open.ID, 8)
	assert.ErrorIs(t, err, errs.ErrConflict)

	_, err = f.communities.Join(f.ctx, 404, 7)
	assert.ErrorIs(t, err, errs.ErrNotFound)

	// 自助加入不是管理动作
	assert.Len(t, f.logs(t, open.ID), 1)
}

func TestLeave(t *testing.T) {
	f := newFixture(t)
	c, err := f.communities.CreateCommunity(f.ctx, 1, "golang", "", nil)
	require.NoError(t, err)
	f.member(t, c.ID, 7, model.RoleMember)

	require.NoError(t, f.communities.Leave(f.ctx, c.ID, 7))
	assert.ErrorIs(t, f.communities.Leave(f.ctx, c.ID, 7), errs.ErrNotFound)

	assert.ErrorIs(t, f.communities.Leave(f.ctx, c.ID, 1), errs.ErrConflict)

	f.member(t, c.ID, 2, model.RoleAdmin)
	assert.NoError(t, f.communities.Leave(f.ctx, c.ID, 1))
}

func TestListCommunities(t *testing.T) {
	f := newFixture(t)
	for i := 0; i < 3; i++ {
		f.community(t, model.DefaultCommunitySettings)
	}
	list, err := f.communities.ListCommunities(f.ctx, 1, 2)
	require.NoError(t, err)
	assert.Len(t, list, 2)
	list, err = f.communities.ListCommunities(f.ctx, 2, 2)
	require.NoError(t, err)
	assert.Len(t, list, 1)
}
