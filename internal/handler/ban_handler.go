package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"Lee_Forum/internal/model"
	"Lee_Forum/internal/service"
)

type BanHandler struct {
	bans     *service.BanManager
	resolver *service.PermissionResolver
}

type BanReq struct {
	UserID       uint64 `json:"user_id" binding:"required"`
	Reason       string `json:"reason"`
	DurationDays *int   `json:"duration_days"`
}

type UnbanReq struct {
	Reason string `json:"reason"`
}

func NewBanHandler(bans *service.BanManager, resolver *service.PermissionResolver) *BanHandler {
	return &BanHandler{bans: bans, resolver: resolver}
}

func (h *BanHandler) Ban(c *gin.Context) {
	communityID, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req BanReq
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid params")
		return
	}
	ctx := c.Request.Context()
	actor := currentUser(c)
	if err := h.resolver.Require(ctx, communityID, actor, model.ManageMembers); err != nil {
		fail(c, err)
		return
	}
	if err := h.resolver.CheckTarget(ctx, communityID, actor, req.UserID); err != nil {
		fail(c, err)
		return
	}
	ban, err := h.bans.Ban(ctx, communityID, req.UserID, actor, req.Reason, req.DurationDays)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, ban)
}

func (h *BanHandler) Unban(c *gin.Context) {
	communityID, ok := paramID(c, "id")
	if !ok {
		return
	}
	userID, ok := paramID(c, "uid")
	if !ok {
		return
	}
	var req UnbanReq
	_ = c.ShouldBindJSON(&req)

	ctx := c.Request.Context()
	actor := currentUser(c)
	if err := h.resolver.Require(ctx, communityID, actor, model.ManageMembers); err != nil {
		fail(c, err)
		return
	}
	if err := h.bans.Unban(ctx, communityID, userID, actor, req.Reason); err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"msg": "ok"})
}

// Check 用户可以查自己；查别人需要 manage_members
func (h *BanHandler) Check(c *gin.Context) {
	communityID, ok := paramID(c, "id")
	if !ok {
		return
	}
	userID, ok := paramID(c, "uid")
	if !ok {
		return
	}
	ctx := c.Request.Context()
	if actor := currentUser(c); actor != userID {
		if err := h.resolver.Require(ctx, communityID, actor, model.ManageMembers); err != nil {
			fail(c, err)
			return
		}
	}
	banned, err := h.bans.IsBanned(ctx, communityID, userID)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"banned": banned})
}

func (h *BanHandler) List(c *gin.Context) {
	communityID, ok := paramID(c, "id")
	if !ok {
		return
	}
	ctx := c.Request.Context()
	if err := h.resolver.Require(ctx, communityID, currentUser(c), model.ManageMembers); err != nil {
		fail(c, err)
		return
	}
	limit, offset := pageParams(c)
	list, err := h.bans.List(ctx, communityID, c.Query("active") != "false", limit, offset)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"list": list})
}
