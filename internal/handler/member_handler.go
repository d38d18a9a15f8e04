package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"Lee_Forum/internal/model"
	"Lee_Forum/internal/service"
)

type MemberHandler struct {
	svc *service.MemberService
}

type AddMemberReq struct {
	UserID uint64     `json:"user_id" binding:"required"`
	Role   model.Role `json:"role"`
}

type SetRoleReq struct {
	Role model.Role `json:"role" binding:"required"`
}

type RemoveMemberReq struct {
	Reason string `json:"reason"`
}

func NewMemberHandler(svc *service.MemberService) *MemberHandler {
	return &MemberHandler{svc: svc}
}

func (h *MemberHandler) List(c *gin.Context) {
	communityID, ok := paramID(c, "id")
	if !ok {
		return
	}
	limit, offset := pageParams(c)
	list, err := h.svc.ListMembers(c.Request.Context(), communityID, model.Role(c.Query("role")), limit, offset)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"list": list})
}

func (h *MemberHandler) Get(c *gin.Context) {
	communityID, ok := paramID(c, "id")
	if !ok {
		return
	}
	userID, ok := paramID(c, "uid")
	if !ok {
		return
	}
	member, err := h.svc.GetMember(c.Request.Context(), communityID, userID)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, member)
}

func (h *MemberHandler) Add(c *gin.Context) {
	communityID, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req AddMemberReq
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid params")
		return
	}
	member, err := h.svc.AddMember(c.Request.Context(), communityID, currentUser(c), req.UserID, req.Role)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, member)
}

func (h *MemberHandler) SetRole(c *gin.Context) {
	communityID, ok := paramID(c, "id")
	if !ok {
		return
	}
	userID, ok := paramID(c, "uid")
	if !ok {
		return
	}
	var req SetRoleReq
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid params")
		return
	}
	member, err := h.svc.SetRole(c.Request.Context(), communityID, currentUser(c), userID, req.Role)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, member)
}

func (h *MemberHandler) Remove(c *gin.Context) {
	communityID, ok := paramID(c, "id")
	if !ok {
		return
	}
	userID, ok := paramID(c, "uid")
	if !ok {
		return
	}
	var req RemoveMemberReq
	// body 可选
	_ = c.ShouldBindJSON(&req)
	if err := h.svc.RemoveMember(c.Request.Context(), communityID, currentUser(c), userID, req.Reason); err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"msg": "ok"})
}

func (h *MemberHandler) GetPermissions(c *gin.Context) {
	communityID, ok := paramID(c, "id")
	if !ok {
		return
	}
	userID, ok := paramID(c, "uid")
	if !ok {
		return
	}
	eff, err := h.svc.GetPermissions(c.Request.Context(), communityID, userID)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, eff)
}

func (h *MemberHandler) SetPermissions(c *gin.Context) {
	communityID, ok := paramID(c, "id")
	if !ok {
		return
	}
	userID, ok := paramID(c, "uid")
	if !ok {
		return
	}
	var perms model.Permissions
	if err := c.ShouldBindJSON(&perms); err != nil {
		badRequest(c, "invalid params")
		return
	}
	eff, err := h.svc.SetPermissions(c.Request.Context(), communityID, currentUser(c), userID, perms)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, eff)
}
