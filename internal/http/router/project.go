package router

import (
	"github.com/gin-gonic/gin"

	"planboard.app/server/internal/http/handler"
)

func ProjectRouter(rg *gin.RouterGroup, h *handler.ProjectHandler) {
	rg.POST("", h.Create)
	rg.PUT("", h.Update)
	rg.POST("/:projectId/addMember", h.AddMember)
}
