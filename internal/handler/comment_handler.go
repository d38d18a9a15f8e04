package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"Lee_Forum/internal/service"
)

type CommentHandler struct {
	svc *service.CommentService
}

func NewCommentHandler(svc *service.CommentService) *CommentHandler {
	return &CommentHandler{svc: svc}
}

// Delete 连同所有回复一起删除
func (h *CommentHandler) Delete(c *gin.Context) {
	commentID, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req DeleteReq
	_ = c.ShouldBindJSON(&req)
	n, err := h.svc.DeleteThread(c.Request.Context(), currentUser(c), commentID, req.Reason)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"deleted": n})
}
