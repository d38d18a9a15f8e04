package service

import (
	"context"
	"fmt"

	"Lee_Forum/internal/model"
	"Lee_Forum/internal/pkg/errs"
	"Lee_Forum/internal/repository/rdb"
)

// MembershipStore 社区成员关系 (community, user) -> role，其它组件都经由它读写成员
type MembershipStore struct {
	store *rdb.Store
	now   Clock
}

func NewMembershipStore(store *rdb.Store, now Clock) *MembershipStore {
	return &MembershipStore{store: store, now: now}
}

// GetRole ok=false 表示不是成员
func (m *MembershipStore) GetRole(ctx context.Context, communityID, userID uint64) (model.Role, bool, error) {
	role, ok, err := m.getRole(m.store.Read(ctx), communityID, userID)
	return role, ok, errs.Transaction(err)
}

func (m *MembershipStore) UpsertMember(ctx context.Context, communityID, userID uint64, role model.Role) (*model.CommunityMember, error) {
	var member *model.CommunityMember
	err := m.store.Transaction(ctx, func(tx *rdb.Tx) error {
		var err error
		member, err = m.upsertMember(tx, communityID, userID, role)
		return err
	})
	return member, err
}

// RemoveMember 成员不存在返回 false，不算错误
func (m *MembershipStore) RemoveMember(ctx context.Context, communityID, userID uint64) (bool, error) {
	var removed bool
	err := m.store.Transaction(ctx, func(tx *rdb.Tx) error {
		var err error
		removed, err = m.removeMember(tx, communityID, userID)
		return err
	})
	return removed, err
}

func (m *MembershipStore) getRole(tx *rdb.Tx, communityID, userID uint64) (model.Role, bool, error) {
	member, err := tx.Members.Find(communityID, userID)
	if err != nil || member == nil {
		return "", false, err
	}
	return member.Role, true, nil
}

func (m *MembershipStore) upsertMember(tx *rdb.Tx, communityID, userID uint64, role model.Role) (*model.CommunityMember, error) {
	if !role.Valid() {
		return nil, errs.InvalidArgument("unknown role %q", role)
	}
	// 插入与并发插入冲突时重读一次再走更新分支
	for attempt := 0; attempt < 2; attempt++ {
		existing, err := tx.Members.Find(communityID, userID)
		if err != nil {
			return nil, err
		}
		if existing != nil {
			if existing.Role == role {
				return existing, nil
			}
			if err := tx.Members.UpdateRole(communityID, userID, role); err != nil {
				return nil, err
			}
			if existing.Role.Staff() && !role.Staff() {
				if err := tx.Permissions.Delete(communityID, userID); err != nil {
					return nil, err
				}
			}
			existing.Role = role
			return existing, nil
		}

		now := m.now()
		member := &model.CommunityMember{
			CommunityID: communityID,
			UserID:      userID,
			Role:        role,
			JoinedAt:    now,
			UpdatedAt:   now,
		}
		inserted, err := tx.Members.Insert(member)
		if err != nil {
			return nil, err
		}
		if inserted {
			return member, nil
		}
	}
	return nil, fmt.Errorf("upsert member %d/%d: row vanished between insert and read", communityID, userID)
}

// removeMember 同时清掉权限记录
func (m *MembershipStore) removeMember(tx *rdb.Tx, communityID, userID uint64) (bool, error) {
	removed, err := tx.Members.Delete(communityID, userID)
	if err != nil {
		return false, err
	}
	if err := tx.Permissions.Delete(communityID, userID); err != nil {
		return false, err
	}
	return removed, nil
}

// adminCount 最后一个管理员不能被降级、移除或自行退出
func (m *MembershipStore) adminCount(tx *rdb.Tx, communityID uint64) (int64, error) {
	return tx.Members.CountByRole(communityID, model.RoleAdmin)
}
