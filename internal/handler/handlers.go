package handler

import "Lee_Forum/internal/service"

type Handlers struct {
	Community   *CommunityHandler
	Member      *MemberHandler
	JoinRequest *JoinRequestHandler
	Ban         *BanHandler
	Post        *PostHandler
	Comment     *CommentHandler
	Audit       *AuditHandler
}

func New(s *service.Services) *Handlers {
	return &Handlers{
		Community:   NewCommunityHandler(s.Communities),
		Member:      NewMemberHandler(s.MemberAdmin),
		JoinRequest: NewJoinRequestHandler(s.Requests, s.Resolver),
		Ban:         NewBanHandler(s.Bans, s.Resolver),
		Post:        NewPostHandler(s.Posts, s.Queue, s.Communities, s.Resolver),
		Comment:     NewCommentHandler(s.Comments),
		Audit:       NewAuditHandler(s.Audit),
	}
}
