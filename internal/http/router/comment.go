package router

import (
	"github.com/gin-gonic/gin"

	"planboard.app/server/internal/http/handler"
)

func CommentRouter(rg *gin.RouterGroup, h *handler.CommentHandler) {
	rg.POST("", h.Add)
	rg.GET("/:taskId", h.List)
}
