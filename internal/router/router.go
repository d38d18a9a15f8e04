package router

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"Lee_Forum/internal/config"
	"Lee_Forum/internal/handler"
	"Lee_Forum/internal/middleware"
	"Lee_Forum/internal/pkg/logger"
)

// InitRouter 注册全部接口，auth 为登录态校验中间件
func InitRouter(cfg config.ServerConfig, h *handler.Handlers, auth gin.HandlerFunc, log *logger.Logger) *gin.Engine {
	r := gin.New()
	r.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.AllowOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", middleware.TraceHeader},
		ExposeHeaders:    []string{middleware.TraceHeader},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))
	r.Use(middleware.Trace(), middleware.RequestLogger(log), gin.Recovery())

	api := r.Group("/api")
	api.Use(auth)

	// 社区相关接口
	communityGroup := api.Group("/community")
	{
		communityGroup.POST("", h.Community.Create)
		communityGroup.GET("/list", h.Community.List)
		communityGroup.GET("/:id", h.Community.Get)
		communityGroup.PATCH("/:id/settings", h.Community.UpdateSettings)
		communityGroup.POST("/:id/join", h.Community.Join)
		communityGroup.POST("/:id/leave", h.Community.Leave)

		communityGroup.GET("/:id/members", h.Member.List)
		communityGroup.POST("/:id/members", h.Member.Add)
		communityGroup.GET("/:id/members/:uid", h.Member.Get)
		communityGroup.PUT("/:id/members/:uid/role", h.Member.SetRole)
		communityGroup.DELETE("/:id/members/:uid", h.Member.Remove)
		communityGroup.GET("/:id/members/:uid/permissions", h.Member.GetPermissions)
		communityGroup.PUT("/:id/members/:uid/permissions", h.Member.SetPermissions)

		communityGroup.POST("/:id/join-requests", h.JoinRequest.Create)
		communityGroup.GET("/:id/join-requests", h.JoinRequest.ListPending)

		communityGroup.POST("/:id/bans", h.Ban.Ban)
		communityGroup.GET("/:id/bans", h.Ban.List)
		communityGroup.GET("/:id/bans/:uid", h.Ban.Check)
		communityGroup.DELETE("/:id/bans/:uid", h.Ban.Unban)

		communityGroup.GET("/:id/moderation/posts", h.Post.ListPendingReview)
		communityGroup.GET("/:id/moderation-log", h.Audit.List)
	}

	// 加群申请
	requestGroup := api.Group("/join-requests")
	{
		requestGroup.POST("/:rid/approve", h.JoinRequest.Approve)
		requestGroup.POST("/:rid/reject", h.JoinRequest.Reject)
	}

	// 帖子相关接口
	postGroup := api.Group("/post")
	{
		postGroup.POST("/create", h.Post.CreatePost)
		postGroup.GET("/list/:id", h.Post.ListByCommunity)
		postGroup.DELETE("/:id", h.Post.DeletePost)
		postGroup.GET("/:id/moderation", h.Post.ModerationStatus)
		postGroup.POST("/:id/moderation", h.Post.Decide)
		postGroup.POST("/:id/moderation/enqueue", h.Post.Enqueue)
	}

	api.DELETE("/comment/:id", h.Comment.Delete)

	return r
}
