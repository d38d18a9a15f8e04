package service

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"Lee_Forum/internal/model"
	"Lee_Forum/internal/pkg/errs"
	"Lee_Forum/internal/repository/rdb"
	"Lee_Forum/internal/repository/rdb/rdbtest"
)

func TestAudit_AppendWritesOutbox(t *testing.T) {
	f := newFixture(t)
	c := f.community(t, model.DefaultCommunitySettings)

	entry, err := f.audit.Append(f.ctx, AuditEntry{
		CommunityID: c.ID,
		ModeratorID: 2,
		ActionType:  model.ActionBan,
		TargetID:    ptr(uint64(7)),
		TargetType:  model.TargetUser,
		Reason:      "<b>spam</b>",
		Metadata:    map[string]any{"duration_days": 3},
	})
	require.NoError(t, err)
	require.NotNil(t, entry.Reason)
	assert.Equal(t, "spam", *entry.Reason)

	ob, err := f.store.Read(f.ctx).Outbox.FindByLogEntry(entry.ID)
	require.NoError(t, err)
	require.NotNil(t, ob)
	assert.Equal(t, model.OutboxPending, ob.Status)

	var event ModerationEvent
	require.NoError(t, json.Unmarshal(ob.Payload, &event))
	assert.Equal(t, ob.EventID, event.EventID)
	assert.Equal(t, model.ActionBan, event.ActionType)
	assert.Equal(t, uint64(7), *event.TargetID)
	assert.JSONEq(t, `{"duration_days":3}`, string(event.Metadata))
}

func TestAudit_RollbackDropsEntryAndEvent(t *testing.T) {
	f := newFixture(t)
	c := f.community(t, model.DefaultCommunitySettings)
	boom := errors.New("boom")

	err := f.store.Transaction(f.ctx, func(tx *rdb.Tx) error {
		if _, err := f.audit.append(tx, AuditEntry{CommunityID: c.ID, ModeratorID: 2, ActionType: model.ActionUnban}); err != nil {
			return err
		}
		return boom
	})
	assert.ErrorIs(t, err, errs.ErrTransaction)
	assert.ErrorIs(t, err, boom)

	n, err := f.store.Read(f.ctx).Logs.Count(c.ID)
	require.NoError(t, err)
	assert.Zero(t, n)
	assert.Equal(t, int64(0), f.countRows(t, &model.ModerationOutbox{}, "community_id = ?", c.ID))
}

func TestAudit_ListPaginationIsStable(t *testing.T) {
	f := newFixture(t)
	c := f.community(t, model.DefaultCommunitySettings)
	for i := 0; i < 7; i++ {
		_, err := f.audit.Append(f.ctx, AuditEntry{CommunityID: c.ID, ModeratorID: 2, ActionType: model.ActionApprove})
		require.NoError(t, err)
	}

	seen := map[uint64]bool{}
	var prev uint64
	for offset := 0; offset < 7; offset += 3 {
		page, err := f.audit.List(f.ctx, c.ID, 3, offset)
		require.NoError(t, err)
		for _, e := range page {
			assert.False(t, seen[e.ID], "duplicate entry %d", e.ID)
			seen[e.ID] = true
			if prev != 0 {
				assert.Less(t, e.ID, prev)
			}
			prev = e.ID
		}
	}
	assert.Len(t, seen, 7)
}

func TestAudit_Browse(t *testing.T) {
	f := newFixture(t)
	c := f.community(t, model.DefaultCommunitySettings)
	rdbtest.SeedUser(t, f.db, 2, "mod_alice")
	f.member(t, c.ID, 2, model.RoleModerator)
	f.member(t, c.ID, 3, model.RoleMember)

	for i := 0; i < 3; i++ {
		_, err := f.bans.Ban(f.ctx, c.ID, uint64(10+i), 2, "", nil)
		require.NoError(t, err)
	}
	require.NoError(t, f.bans.Unban(f.ctx, c.ID, 10, 2, ""))

	page, err := f.audit.Browse(f.ctx, LogQuery{CommunityID: c.ID, ViewerID: 2, Limit: 2})
	require.NoError(t, err)
	require.Len(t, page.Entries, 2)
	assert.Equal(t, model.ActionUnban, page.Entries[0].ActionType)
	assert.Equal(t, "mod_alice", page.Entries[0].ModeratorName)
	assert.Equal(t, c.Name, page.Entries[0].CommunityName)
	require.NotZero(t, page.NextBeforeID)

	next, err := f.audit.Browse(f.ctx, LogQuery{CommunityID: c.ID, ViewerID: 2, Limit: 2, BeforeID: page.NextBeforeID})
	require.NoError(t, err)
	require.Len(t, next.Entries, 2)
	assert.Less(t, next.Entries[0].ID, page.NextBeforeID)

	bans, err := f.audit.Browse(f.ctx, LogQuery{CommunityID: c.ID, ViewerID: 2, ActionType: model.ActionBan})
	require.NoError(t, err)
	assert.Len(t, bans.Entries, 3)
	assert.Zero(t, bans.NextBeforeID)

	_, err = f.audit.Browse(f.ctx, LogQuery{CommunityID: c.ID, ViewerID: 3})
	assert.ErrorIs(t, err, errs.ErrPermissionDenied)
	_, err = f.audit.Browse(f.ctx, LogQuery{CommunityID: c.ID + 1000, ViewerID: 2})
	assert.ErrorIs(t, err, errs.ErrNotFound)
}
