// Package rdbtest 为测试提供内存 SQLite 上的 rdb.Store
package rdbtest

import (
	"testing"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"Lee_Forum/internal/model"
	"Lee_Forum/internal/repository/rdb"
)

// NewStore 每个测试一个独立的内存库，已完成迁移。
// 单连接：事务内的查询必须走事务句柄，否则会阻塞
func NewStore(t testing.TB) (*rdb.Store, *gorm.DB) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("sql db: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)

	store := rdb.NewStore(db)
	if err := store.AutoMigrate(); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store, db
}

// SeedCommunity 直接写库，不经过业务逻辑
func SeedCommunity(t testing.TB, db *gorm.DB, name string, settings model.CommunitySettings) *model.Community {
	t.Helper()
	c := &model.Community{Name: name, CreatorID: 1}
	c.ApplySettings(settings)
	if err := db.Create(c).Error; err != nil {
		t.Fatalf("seed community: %v", err)
	}
	return c
}

func SeedUser(t testing.TB, db *gorm.DB, id uint64, username string) *model.User {
	t.Helper()
	u := &model.User{ID: id, Username: username, Password: "x", Email: username + "@example.com"}
	if err := db.Create(u).Error; err != nil {
		t.Fatalf("seed user: %v", err)
	}
	return u
}

func SeedPost(t testing.TB, db *gorm.DB, communityID, authorID uint64, status int) *model.Post {
	t.Helper()
	p := &model.Post{CommunityID: communityID, AuthorID: authorID, Title: "title", Content: "content", Status: status}
	if err := db.Create(p).Error; err != nil {
		t.Fatalf("seed post: %v", err)
	}
	return p
}
