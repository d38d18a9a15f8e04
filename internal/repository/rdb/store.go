package rdb

import (
	"context"
	"fmt"

	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"Lee_Forum/internal/config"
	"Lee_Forum/internal/model"
	"Lee_Forum/internal/pkg/errs"
)

// Store 持有连接池，只通过 Read / Transaction 暴露仓储，避免全局 DB
type Store struct {
	db *gorm.DB
}

// Tx 一个工作单元内的全部仓储，共享同一个 *gorm.DB（事务或普通连接）
type Tx struct {
	Communities    *CommunityRepository
	Members        *CommunityMemberRepository
	Permissions    *PermissionRepository
	JoinRequests   *JoinRequestRepository
	Bans           *BanRepository
	PostModeration *PostModerationRepository
	Logs           *ModerationLogRepository
	Outbox         *OutboxRepository
	Posts          *PostRepository
	Comments       *CommentRepository
	Users          *UserRepository
}

func newTx(db *gorm.DB) *Tx {
	return &Tx{
		Communities:    &CommunityRepository{DB: db},
		Members:        &CommunityMemberRepository{DB: db},
		Permissions:    &PermissionRepository{DB: db},
		JoinRequests:   &JoinRequestRepository{DB: db},
		Bans:           &BanRepository{DB: db},
		PostModeration: &PostModerationRepository{DB: db},
		Logs:           &ModerationLogRepository{DB: db},
		Outbox:         &OutboxRepository{DB: db},
		Posts:          &PostRepository{DB: db},
		Comments:       &CommentRepository{DB: db},
		Users:          &UserRepository{DB: db},
	}
}

// Open 按 driver 打开数据库，mysql 为默认
func Open(cfg config.DatabaseConfig) (*Store, error) {
	var dialector gorm.Dialector
	switch cfg.Driver {
	case "", "mysql":
		dialector = mysql.Open(cfg.DSN)
	case "postgres":
		dialector = postgres.Open(cfg.DSN)
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Driver)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Warn),
		TranslateError: true,
	})
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	if cfg.MaxIdleConns > 0 {
		sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	}
	if cfg.MaxOpenConns > 0 {
		sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	}
	return NewStore(db), nil
}

func NewStore(db *gorm.DB) *Store {
	return &Store{db: db}
}

// AutoMigrate 建表（开发阶段 OK）
func (s *Store) AutoMigrate() error {
	return s.db.AutoMigrate(
		&model.User{},
		&model.Community{},
		&model.CommunityMember{},
		&model.ModeratorPermission{},
		&model.JoinRequest{},
		&model.BannedUser{},
		&model.Post{},
		&model.Comment{},
		&model.PostModeration{},
		&model.ModerationLogEntry{},
		&model.ModerationOutbox{},
	)
}

func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// Read 非事务读
func (s *Store) Read(ctx context.Context) *Tx {
	return newTx(s.db.WithContext(ctx))
}

// Transaction fn 内所有写入一起提交或一起回滚；存储错误统一包装为 ErrTransaction
func (s *Store) Transaction(ctx context.Context, fn func(tx *Tx) error) error {
	err := s.db.WithContext(ctx).Transaction(func(db *gorm.DB) error {
		return fn(newTx(db))
	})
	return errs.Transaction(err)
}
