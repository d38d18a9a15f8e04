package service

import (
	"context"

	"Lee_Forum/internal/model"
	"Lee_Forum/internal/pkg/errs"
	"Lee_Forum/internal/repository/rdb"
)

// PermissionResolver 角色 + 显式权限记录 -> 是否允许某项管理操作。
// 不缓存，每次都重新读库
type PermissionResolver struct {
	store   *rdb.Store
	members *MembershipStore
}

// Effective 某个成员实际生效的权限
type Effective struct {
	Role        model.Role        `json:"role"`
	Permissions model.Permissions `json:"permissions"`
	Explicit    bool              `json:"explicit"`
}

func NewPermissionResolver(store *rdb.Store, members *MembershipStore) *PermissionResolver {
	return &PermissionResolver{store: store, members: members}
}

func (p *PermissionResolver) Authorize(ctx context.Context, communityID, userID uint64, c model.Capability) (bool, error) {
	ok, err := p.authorize(p.store.Read(ctx), communityID, userID, c)
	return ok, errs.Transaction(err)
}

// Require 不允许时返回 ErrPermissionDenied
func (p *PermissionResolver) Require(ctx context.Context, communityID, userID uint64, c model.Capability) error {
	return p.require(p.store.Read(ctx), communityID, userID, c)
}

// Effective 非成员返回 NotFound；admin 与无记录的 moderator 为全部权限，普通成员为空
func (p *PermissionResolver) Effective(ctx context.Context, communityID, userID uint64) (*Effective, error) {
	tx := p.store.Read(ctx)
	role, ok, err := p.members.getRole(tx, communityID, userID)
	if err != nil {
		return nil, errs.Transaction(err)
	}
	if !ok {
		return nil, errs.NotFound("user %d is not a member of community %d", userID, communityID)
	}
	eff := &Effective{Role: role}
	switch role {
	case model.RoleAdmin:
		eff.Permissions = model.AllPermissions
	case model.RoleModerator:
		row, err := tx.Permissions.Find(communityID, userID)
		if err != nil {
			return nil, errs.Transaction(err)
		}
		if row == nil {
			eff.Permissions = model.AllPermissions
		} else {
			eff.Permissions = row.Permissions()
			eff.Explicit = true
		}
	}
	return eff, nil
}

// authorize 顺序固定：admin 直接放行；非版主拒绝；版主无记录时默认全部授予，有记录按对应字段
func (p *PermissionResolver) authorize(tx *rdb.Tx, communityID, userID uint64, c model.Capability) (bool, error) {
	role, ok, err := p.members.getRole(tx, communityID, userID)
	if err != nil {
		return false, err
	}
	if !ok {
		return false, nil
	}
	if role == model.RoleAdmin {
		return true, nil
	}
	if role != model.RoleModerator {
		return false, nil
	}
	row, err := tx.Permissions.Find(communityID, userID)
	if err != nil {
		return false, err
	}
	if row == nil {
		return true, nil
	}
	return row.Permissions().Allows(c), nil
}

func (p *PermissionResolver) require(tx *rdb.Tx, communityID, userID uint64, c model.Capability) error {
	ok, err := p.authorize(tx, communityID, userID, c)
	if err != nil {
		return errs.Transaction(err)
	}
	if !ok {
		return errs.PermissionDenied("user %d lacks %s in community %d", userID, c, communityID)
	}
	return nil
}

// requireOutranks 成员类管理动作不能作用于自己，非 admin 不能作用于 admin
func (p *PermissionResolver) requireOutranks(tx *rdb.Tx, communityID, actorID, targetID uint64) error {
	if actorID == targetID {
		return errs.InvalidArgument("cannot moderate yourself")
	}
	actorRole, _, err := p.members.getRole(tx, communityID, actorID)
	if err != nil {
		return err
	}
	if actorRole == model.RoleAdmin {
		return nil
	}
	targetRole, _, err := p.members.getRole(tx, communityID, targetID)
	if err != nil {
		return err
	}
	if targetRole == model.RoleAdmin {
		return errs.PermissionDenied("moderators cannot act on admin %d", targetID)
	}
	return nil
}

// CheckTarget 供 handler 在封禁等操作前调用
func (p *PermissionResolver) CheckTarget(ctx context.Context, communityID, actorID, targetID uint64) error {
	return errs.Transaction(p.requireOutranks(p.store.Read(ctx), communityID, actorID, targetID))
}

// isStaff 审计日志只对版主和管理员开放
func (p *PermissionResolver) isStaff(tx *rdb.Tx, communityID, userID uint64) (bool, error) {
	role, ok, err := p.members.getRole(tx, communityID, userID)
	if err != nil {
		return false, err
	}
	return ok && role.Staff(), nil
}
