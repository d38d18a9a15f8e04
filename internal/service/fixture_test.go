package service

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"Lee_Forum/internal/model"
	"Lee_Forum/internal/pkg/logger"
	"Lee_Forum/internal/repository/rdb"
	"Lee_Forum/internal/repository/rdb/rdbtest"
)

// fakeClock 每次取时间前进 1ms，保证写入顺序和时间顺序一致
type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{t: time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(time.Millisecond)
	return c.t
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
}

type fixture struct {
	ctx   context.Context
	db    *gorm.DB
	store *rdb.Store
	clock *fakeClock

	members     *MembershipStore
	resolver    *PermissionResolver
	audit       *AuditLog
	bans        *BanManager
	requests    *JoinRequestWorkflow
	queue       *PostModerationQueue
	communities *CommunityService
	memberSvc   *MemberService
	posts       *PostService
	comments    *CommentService

	seq int
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store, db := rdbtest.NewStore(t)
	clock := newFakeClock()

	svc := New(store, logger.Nop(), Paging{Default: 20, Max: 100}, clock.Now)
	return &fixture{
		ctx:         context.Background(),
		db:          db,
		store:       store,
		clock:       clock,
		members:     svc.Members,
		resolver:    svc.Resolver,
		audit:       svc.Audit,
		bans:        svc.Bans,
		requests:    svc.Requests,
		queue:       svc.Queue,
		communities: svc.Communities,
		memberSvc:   svc.MemberAdmin,
		posts:       svc.Posts,
		comments:    svc.Comments,
	}
}

// community 直接写库建一个社区，名字自动去重
func (f *fixture) community(t testing.TB, settings model.CommunitySettings) *model.Community {
	t.Helper()
	f.seq++
	return rdbtest.SeedCommunity(t, f.db, fmt.Sprintf("c%d", f.seq), settings)
}

func (f *fixture) member(t testing.TB, communityID, userID uint64, role model.Role) {
	t.Helper()
	_, err := f.members.UpsertMember(f.ctx, communityID, userID, role)
	require.NoError(t, err)
}

func (f *fixture) logs(t testing.TB, communityID uint64) []model.ModerationLogEntry {
	t.Helper()
	list, err := f.audit.List(f.ctx, communityID, 100, 0)
	require.NoError(t, err)
	return list
}

func (f *fixture) countRows(t testing.TB, m any, query string, args ...any) int64 {
	t.Helper()
	var n int64
	require.NoError(t, f.db.Model(m).Where(query, args...).Count(&n).Error)
	return n
}
