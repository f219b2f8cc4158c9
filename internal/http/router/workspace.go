package router

import (
	"github.com/gin-gonic/gin"

	"planboard.app/server/internal/http/handler"
)

func WorkspaceRouter(rg *gin.RouterGroup, h *handler.WorkspaceHandler) {
	rg.GET("", h.List)
	rg.POST("", h.Create)
	rg.GET("/memberships", h.Memberships)
	rg.POST("/add-member", h.AddMember)
	rg.POST("/invite-member", h.InviteMember)
}
