package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"Lee_Forum/internal/service"
)

type AuditHandler struct {
	audit *service.AuditLog
}

func NewAuditHandler(audit *service.AuditLog) *AuditHandler {
	return &AuditHandler{audit: audit}
}

// List ?limit=&offset= 或 ?before_id= 游标，可选 action_type 过滤
func (h *AuditHandler) List(c *gin.Context) {
	communityID, ok := paramID(c, "id")
	if !ok {
		return
	}
	limit, offset := pageParams(c)
	beforeID, _ := strconv.ParseUint(c.Query("before_id"), 10, 64)

	page, err := h.audit.Browse(c.Request.Context(), service.LogQuery{
		CommunityID: communityID,
		ViewerID:    currentUser(c),
		ActionType:  c.Query("action_type"),
		BeforeID:    beforeID,
		Limit:       limit,
		Offset:      offset,
	})
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, page)
}
