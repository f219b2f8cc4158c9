package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"planboard.app/server/internal/http/dto"
	"planboard.app/server/internal/http/middleware"
	"planboard.app/server/internal/service"
)

type CommentHandler struct {
	comments service.CommentService
}

func NewCommentHandler(comments service.CommentService) *CommentHandler {
	return &CommentHandler{comments: comments}
}

func (h *CommentHandler) Add(c *gin.Context) {
	ctx := c.Request.Context()

	var req dto.AddCommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	comment, err := h.comments.Add(ctx, middleware.GetUserID(ctx), req.TaskID, req.Content)
	if err != nil {
		respondError(c, err, "failed to add comment")
		return
	}
	c.JSON(http.StatusOK, dto.CommentResponse{Comment: comment})
}

func (h *CommentHandler) List(c *gin.Context) {
	comments, err := h.comments.ListForTask(c.Request.Context(), c.Param("taskId"))
	if err != nil {
		respondError(c, err, "failed to list comments")
		return
	}
	c.JSON(http.StatusOK, dto.CommentsResponse{Comments: comments})
}
