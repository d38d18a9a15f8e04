package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"Lee_Forum/internal/config"
	"Lee_Forum/internal/model"
	"Lee_Forum/internal/pkg/logger"
)

func TestOutboxRelayer_DrainOnce(t *testing.T) {
	f := newFixture(t)
	c := f.community(t, model.DefaultCommunitySettings)
	for _, action := range []string{model.ActionBan, model.ActionUnban, model.ActionApprove} {
		_, err := f.audit.Append(f.ctx, AuditEntry{CommunityID: c.ID, ModeratorID: 2, ActionType: action})
		require.NoError(t, err)
	}

	var got []string
	fail := true
	sender := func(_ context.Context, ob *model.ModerationOutbox) error {
		if ob.ActionType == model.ActionUnban && fail {
			return errors.New("broker down")
		}
		got = append(got, ob.ActionType)
		return nil
	}
	relayer := NewOutboxRelayer(f.store, config.OutboxConfig{BatchSize: 10}, sender, logger.Nop())

	assert.Equal(t, 2, relayer.DrainOnce(f.ctx))
	assert.Equal(t, []string{model.ActionBan, model.ActionApprove}, got)

	var failed model.ModerationOutbox
	require.NoError(t, f.db.Where("action_type = ?", model.ActionUnban).First(&failed).Error)
	assert.Equal(t, model.OutboxFailed, failed.Status)
	assert.Equal(t, 1, failed.Retry)

	fail = false
	assert.Equal(t, 1, relayer.DrainOnce(f.ctx))
	assert.Equal(t, 0, relayer.DrainOnce(f.ctx))
	assert.Equal(t, int64(3), f.countRows(t, &model.ModerationOutbox{}, "status = ?", model.OutboxSent))
}

func TestOutboxRelayer_GivesUpAfterMaxRetry(t *testing.T) {
	f := newFixture(t)
	c := f.community(t, model.DefaultCommunitySettings)
	_, err := f.audit.Append(f.ctx, AuditEntry{CommunityID: c.ID, ModeratorID: 2, ActionType: model.ActionBan})
	require.NoError(t, err)

	calls := 0
	sender := func(context.Context, *model.ModerationOutbox) error {
		calls++
		return errors.New("broker down")
	}
	relayer := NewOutboxRelayer(f.store, config.OutboxConfig{}, sender, logger.Nop())
	for i := 0; i < MaxOutboxRetry+3; i++ {
		relayer.DrainOnce(f.ctx)
	}
	assert.Equal(t, MaxOutboxRetry, calls)
}
