package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"Lee_Forum/internal/model"
	"Lee_Forum/internal/pkg/errs"
)

const (
	adminID = uint64(1)
	modID   = uint64(2)
	userID  = uint64(3)
)

func (f *fixture) staffedCommunity(t *testing.T) *model.Community {
	t.Helper()
	c := f.community(t, model.DefaultCommunitySettings)
	f.member(t, c.ID, adminID, model.RoleAdmin)
	f.member(t, c.ID, modID, model.RoleModerator)
	f.member(t, c.ID, userID, model.RoleMember)
	return c
}

func TestSetRole(t *testing.T) {
	f := newFixture(t)
	c := f.staffedCommunity(t)

	m, err := f.memberSvc.SetRole(f.ctx, c.ID, modID, userID, model.RoleModerator)
	require.NoError(t, err)
	assert.Equal(t, model.RoleModerator, m.Role)

	logs := f.logs(t, c.ID)
	require.Len(t, logs, 1)
	assert.Equal(t, model.ActionUpdateMemberRole, logs[0].ActionType)
	assert.JSONEq(t, `{"old_role":"member","new_role":"moderator"}`, string(logs[0].Metadata))

	// 同角色不记审计
	_, err = f.memberSvc.SetRole(f.ctx, c.ID, modID, userID, model.RoleModerator)
	require.NoError(t, err)
	assert.Len(t, f.logs(t, c.ID), 1)

	_, err = f.memberSvc.SetRole(f.ctx, c.ID, modID, userID, model.RoleAdmin)
	assert.ErrorIs(t, err, errs.ErrPermissionDenied)
	_, err = f.memberSvc.SetRole(f.ctx, c.ID, modID, adminID, model.RoleMember)
	assert.ErrorIs(t, err, errs.ErrPermissionDenied)

	_, err = f.memberSvc.SetRole(f.ctx, c.ID, adminID, userID, model.RoleAdmin)
	require.NoError(t, err)

	_, err = f.memberSvc.SetRole(f.ctx, c.ID, adminID, 404, model.RoleMember)
	assert.ErrorIs(t, err, errs.ErrNotFound)
	_, err = f.memberSvc.SetRole(f.ctx, c.ID, adminID, userID, model.Role("root"))
	assert.ErrorIs(t, err, errs.ErrInvalidArgument)
}

func TestSetRole_KeepsLastAdmin(t *testing.T) {
	f := newFixture(t)
	c := f.staffedCommunity(t)

	_, err := f.memberSvc.SetRole(f.ctx, c.ID, adminID, adminID, model.RoleMember)
	assert.ErrorIs(t, err, errs.ErrConflict)
}

func TestSetRole_DemotionDropsPermissions(t *testing.T) {
	f := newFixture(t)
	c := f.staffedCommunity(t)
	f.setPermissions(t, c.ID, modID, model.Permissions{ManagePosts: true})

	_, err := f.memberSvc.SetRole(f.ctx, c.ID, adminID, modID, model.RoleMember)
	require.NoError(t, err)
	assert.Equal(t, int64(0), f.countRows(t, &model.ModeratorPermission{}, "community_id = ? AND user_id = ?", c.ID, modID))

	// 再次提升后回到默认全部权限
	_, err = f.memberSvc.SetRole(f.ctx, c.ID, adminID, modID, model.RoleModerator)
	require.NoError(t, err)
	ok, err := f.resolver.Authorize(f.ctx, c.ID, modID, model.ManageSettings)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestAddMember(t *testing.T) {
	f := newFixture(t)
	c := f.staffedCommunity(t)

	m, err := f.memberSvc.AddMember(f.ctx, c.ID, modID, 10, "")
	require.NoError(t, err)
	assert.Equal(t, model.RoleMember, m.Role)

	_, err = f.memberSvc.AddMember(f.ctx, c.ID, modID, 10, "")
	assert.ErrorIs(t, err, errs.ErrConflict)
	_, err = f.memberSvc.AddMember(f.ctx, c.ID, userID, 11, "")
	assert.ErrorIs(t, err, errs.ErrPermissionDenied)
	_, err = f.memberSvc.AddMember(f.ctx, c.ID, modID, 11, model.RoleAdmin)
	assert.ErrorIs(t, err, errs.ErrPermissionDenied)

	_, err = f.bans.Ban(f.ctx, c.ID, 12, adminID, "", nil)
	require.NoError(t, err)
	_, err = f.memberSvc.AddMember(f.ctx, c.ID, modID, 12, "")
	assert.ErrorIs(t, err, errs.ErrConflict)

	page, err := f.memberSvc.ListMembers(f.ctx, c.ID, model.RoleMember, 10, 0)
	require.NoError(t, err)
	require.Len(t, page, 2)
	assert.Equal(t, userID, page[0].UserID)
	assert.Equal(t, uint64(10), page[1].UserID)
}

func TestRemoveMember(t *testing.T) {
	f := newFixture(t)
	c := f.staffedCommunity(t)

	assert.ErrorIs(t, f.memberSvc.RemoveMember(f.ctx, c.ID, modID, adminID, ""), errs.ErrPermissionDenied)
	assert.ErrorIs(t, f.memberSvc.RemoveMember(f.ctx, c.ID, userID, modID, ""), errs.ErrPermissionDenied)
	assert.ErrorIs(t, f.memberSvc.RemoveMember(f.ctx, c.ID, modID, modID, ""), errs.ErrInvalidArgument)
	assert.ErrorIs(t, f.memberSvc.RemoveMember(f.ctx, c.ID, modID, 404, ""), errs.ErrNotFound)

	require.NoError(t, f.memberSvc.RemoveMember(f.ctx, c.ID, modID, userID, "rude"))
	_, err := f.memberSvc.GetMember(f.ctx, c.ID, userID)
	assert.ErrorIs(t, err, errs.ErrNotFound)

	logs := f.logs(t, c.ID)
	require.Len(t, logs, 1)
	assert.Equal(t, model.ActionRemoveMember, logs[0].ActionType)
	assert.Equal(t, "rude", *logs[0].Reason)
}

func TestSetPermissions(t *testing.T) {
	f := newFixture(t)
	c := f.staffedCommunity(t)
	f.member(t, c.ID, 4, model.RoleModerator)

	perms := model.Permissions{ManagePosts: true, ManageComments: true}
	eff, err := f.memberSvc.SetPermissions(f.ctx, c.ID, adminID, modID, perms)
	require.NoError(t, err)
	assert.True(t, eff.Explicit)

	got, err := f.memberSvc.GetPermissions(f.ctx, c.ID, modID)
	require.NoError(t, err)
	assert.Equal(t, perms, got.Permissions)

	// modID 已没有 manage_members
	_, err = f.memberSvc.SetPermissions(f.ctx, c.ID, modID, 4, perms)
	assert.ErrorIs(t, err, errs.ErrPermissionDenied)
	// 默认全权限的版主可以改别的版主，但不能改自己
	_, err = f.memberSvc.SetPermissions(f.ctx, c.ID, 4, modID, model.AllPermissions)
	require.NoError(t, err)
	_, err = f.memberSvc.SetPermissions(f.ctx, c.ID, 4, 4, model.AllPermissions)
	assert.ErrorIs(t, err, errs.ErrPermissionDenied)

	_, err = f.memberSvc.SetPermissions(f.ctx, c.ID, adminID, adminID, perms)
	assert.ErrorIs(t, err, errs.ErrInvalidArgument)
	_, err = f.memberSvc.SetPermissions(f.ctx, c.ID, adminID, userID, perms)
	assert.ErrorIs(t, err, errs.ErrInvalidArgument)
	_, err = f.memberSvc.SetPermissions(f.ctx, c.ID, adminID, 404, perms)
	assert.ErrorIs(t, err, errs.ErrNotFound)

	logs := f.logs(t, c.ID)
	require.Len(t, logs, 2)
	assert.Equal(t, model.ActionUpdatePermissions, logs[0].ActionType)
}
