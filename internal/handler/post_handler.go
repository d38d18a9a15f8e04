package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"Lee_Forum/internal/model"
	"Lee_Forum/internal/pkg/errs"
	"Lee_Forum/internal/service"
)

type PostHandler struct {
	svc         *service.PostService
	queue       *service.PostModerationQueue
	communities *service.CommunityService
	resolver    *service.PermissionResolver
}

type CreatePostReq struct {
	CommunityID uint64 `json:"community_id" binding:"required"`
	Title       string `json:"title"`
	Content     string `json:"content"`
}

type DecideReq struct {
	Action service.PostAction `json:"action" binding:"required"`
	Reason string             `json:"reason"`
}

type DeleteReq struct {
	Reason string `json:"reason"`
}

func NewPostHandler(svc *service.PostService, queue *service.PostModerationQueue, communities *service.CommunityService,
	resolver *service.PermissionResolver) *PostHandler {
	return &PostHandler{svc: svc, queue: queue, communities: communities, resolver: resolver}
}

// CreatePost 创建帖子接口
func (h *PostHandler) CreatePost(c *gin.Context) {
	var req CreatePostReq
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid params")
		return
	}

	post, err := h.svc.CreatePost(c.Request.Context(), currentUser(c), req.CommunityID, req.Title, req.Content)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"id": post.ID, "status": post.Status})
}

// ListByCommunity 获取帖子列表接口
func (h *PostHandler) ListByCommunity(c *gin.Context) {
	communityID, ok := paramID(c, "id")
	if !ok {
		return
	}
	page, _ := strconv.Atoi(c.Query("page"))
	size, _ := strconv.Atoi(c.Query("size"))

	list, err := h.svc.ListByCommunity(c.Request.Context(), communityID, page, size)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"list": list})
}

func (h *PostHandler) DeletePost(c *gin.Context) {
	postID, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req DeleteReq
	_ = c.ShouldBindJSON(&req)
	if err := h.svc.DeletePost(c.Request.Context(), currentUser(c), postID, req.Reason); err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"msg": "ok"})
}

// Enqueue 手动把帖子送审，只对开启发帖审核的社区有效
func (h *PostHandler) Enqueue(c *gin.Context) {
	postID, ok := paramID(c, "id")
	if !ok {
		return
	}
	ctx := c.Request.Context()
	post, err := h.svc.GetPost(ctx, postID)
	if err != nil {
		fail(c, err)
		return
	}
	if err := h.resolver.Require(ctx, post.CommunityID, currentUser(c), model.ManagePosts); err != nil {
		fail(c, err)
		return
	}
	requires, err := h.communities.RequiresPostApproval(ctx, post.CommunityID)
	if err != nil {
		fail(c, err)
		return
	}
	if !requires {
		fail(c, errs.InvalidArgument("community %d does not require post approval", post.CommunityID))
		return
	}
	pm, err := h.queue.Enqueue(ctx, postID)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, pm)
}

// ModerationStatus 作者本人或 manage_posts 持有者可查
func (h *PostHandler) ModerationStatus(c *gin.Context) {
	postID, ok := paramID(c, "id")
	if !ok {
		return
	}
	ctx := c.Request.Context()
	post, err := h.svc.GetPost(ctx, postID)
	if err != nil {
		fail(c, err)
		return
	}
	if actor := currentUser(c); actor != post.AuthorID {
		if err := h.resolver.Require(ctx, post.CommunityID, actor, model.ManagePosts); err != nil {
			fail(c, err)
			return
		}
	}
	pm, err := h.queue.Status(ctx, postID)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, pm)
}

func (h *PostHandler) Decide(c *gin.Context) {
	postID, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req DecideReq
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid params")
		return
	}
	ctx := c.Request.Context()
	actor := currentUser(c)
	status, err := h.queue.Status(ctx, postID)
	if err != nil {
		fail(c, err)
		return
	}
	if err := h.resolver.Require(ctx, status.CommunityID, actor, model.ManagePosts); err != nil {
		fail(c, err)
		return
	}
	pm, err := h.queue.Decide(ctx, postID, actor, req.Action, req.Reason)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, pm)
}

func (h *PostHandler) ListPendingReview(c *gin.Context) {
	communityID, ok := paramID(c, "id")
	if !ok {
		return
	}
	ctx := c.Request.Context()
	if err := h.resolver.Require(ctx, communityID, currentUser(c), model.ManagePosts); err != nil {
		fail(c, err)
		return
	}
	limit, offset := pageParams(c)
	list, err := h.queue.ListPending(ctx, communityID, limit, offset)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"list": list})
}
