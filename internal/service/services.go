package service

import (
	"Lee_Forum/internal/pkg/logger"
	"Lee_Forum/internal/repository/rdb"
)

// Services 按依赖顺序装配全部组件，共享同一个 Store
type Services struct {
	Members     *MembershipStore
	Resolver    *PermissionResolver
	Audit       *AuditLog
	Bans        *BanManager
	Requests    *JoinRequestWorkflow
	Queue       *PostModerationQueue
	Communities *CommunityService
	MemberAdmin *MemberService
	Posts       *PostService
	Comments    *CommentService
}

func New(store *rdb.Store, log *logger.Logger, paging Paging, now Clock) *Services {
	s := &Services{}
	s.Members = NewMembershipStore(store, now)
	s.Resolver = NewPermissionResolver(store, s.Members)
	s.Audit = NewAuditLog(store, s.Resolver, now, paging)
	s.Bans = NewBanManager(store, s.Members, s.Audit, log, now, paging)
	s.Requests = NewJoinRequestWorkflow(store, s.Members, s.Bans, s.Audit, log, now, paging)
	s.Queue = NewPostModerationQueue(store, s.Audit, log, now, paging)
	s.Communities = NewCommunityService(store, s.Members, s.Resolver, s.Requests, s.Bans, s.Audit, log, now, paging)
	s.MemberAdmin = NewMemberService(store, s.Members, s.Resolver, s.Bans, s.Audit, log, now, paging)
	s.Posts = NewPostService(store, s.Members, s.Resolver, s.Bans, s.Queue, s.Audit, log, now, paging)
	s.Comments = NewCommentService(store, s.Resolver, s.Audit, log)
	return s
}
