package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"Lee_Forum/internal/model"
	"Lee_Forum/internal/service"
)

type JoinRequestHandler struct {
	workflow *service.JoinRequestWorkflow
	resolver *service.PermissionResolver
}

func NewJoinRequestHandler(workflow *service.JoinRequestWorkflow, resolver *service.PermissionResolver) *JoinRequestHandler {
	return &JoinRequestHandler{workflow: workflow, resolver: resolver}
}

// Create 当前用户申请加入
func (h *JoinRequestHandler) Create(c *gin.Context) {
	communityID, ok := paramID(c, "id")
	if !ok {
		return
	}
	req, err := h.workflow.Create(c.Request.Context(), communityID, currentUser(c))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, req)
}

func (h *JoinRequestHandler) ListPending(c *gin.Context) {
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
	list, err := h.workflow.ListPending(ctx, communityID, limit, offset)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"list": list})
}

func (h *JoinRequestHandler) Approve(c *gin.Context) {
	h.resolve(c, service.JoinApprove)
}

func (h *JoinRequestHandler) Reject(c *gin.Context) {
	h.resolve(c, service.JoinReject)
}

func (h *JoinRequestHandler) resolve(c *gin.Context, decision service.JoinDecision) {
	requestID, ok := paramID(c, "rid")
	if !ok {
		return
	}
	ctx := c.Request.Context()
	actor := currentUser(c)

	pending, err := h.workflow.Get(ctx, requestID)
	if err != nil {
		fail(c, err)
		return
	}
	if err := h.resolver.Require(ctx, pending.CommunityID, actor, model.ManageMembers); err != nil {
		fail(c, err)
		return
	}
	req, err := h.workflow.Resolve(ctx, requestID, decision, actor)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, req)
}
