package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"Lee_Forum/internal/model"
	"Lee_Forum/internal/service"
)

type CommunityHandler struct {
	svc *service.CommunityService
}

type CommunityCreateReq struct {
	Name        string                   `json:"name" binding:"required"`
	Description string                   `json:"description"`
	Settings    *model.CommunitySettings `json:"settings"`
}

func NewCommunityHandler(svc *service.CommunityService) *CommunityHandler {
	return &CommunityHandler{svc: svc}
}

func (h *CommunityHandler) Create(c *gin.Context) {
	var req CommunityCreateReq
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid params")
		return
	}

	community, err := h.svc.CreateCommunity(c.Request.Context(), currentUser(c), req.Name, req.Description, req.Settings)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, community)
}

func (h *CommunityHandler) Get(c *gin.Context) {
	communityID, ok := paramID(c, "id")
	if !ok {
		return
	}
	community, err := h.svc.GetCommunity(c.Request.Context(), communityID)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, community)
}

func (h *CommunityHandler) List(c *gin.Context) {
	page, _ := strconv.Atoi(c.Query("page"))
	size, _ := strconv.Atoi(c.Query("size"))

	list, err := h.svc.ListCommunities(c.Request.Context(), page, size)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"list": list})
}

func (h *CommunityHandler) UpdateSettings(c *gin.Context) {
	communityID, ok := paramID(c, "id")
	if !ok {
		return
	}
	var patch model.SettingsPatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		badRequest(c, "invalid params")
		return
	}
	community, err := h.svc.UpdateSettings(c.Request.Context(), communityID, currentUser(c), patch)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, community)
}

func (h *CommunityHandler) Join(c *gin.Context) {
	communityID, ok := paramID(c, "id")
	if !ok {
		return
	}
	res, err := h.svc.Join(c.Request.Context(), communityID, currentUser(c))
	if err != nil {
		fail(c, err)
		return
	}
	status := http.StatusOK
	if res.Status == service.JoinPending {
		status = http.StatusAccepted
	}
	c.JSON(status, res)
}

func (h *CommunityHandler) Leave(c *gin.Context) {
	communityID, ok := paramID(c, "id")
	if !ok {
		return
	}
	if err := h.svc.Leave(c.Request.Context(), communityID, currentUser(c)); err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"msg": "ok"})
}
