package router

import (
	"github.com/gin-gonic/gin"

	"planboard.app/server/internal/http/handler"
	"planboard.app/server/internal/http/middleware"
	"planboard.app/server/internal/identity"
	"planboard.app/server/internal/service"
)

type RouterConfig struct {
	Verifier     identity.Verifier
	HealthChecks map[string]handler.HealthCheck
	// Webhooks is nil when no webhook secret is configured; the route is
	// then not registered.
	Webhooks identity.PayloadVerifier
}

func SetupRoutes(router *gin.Engine, services *service.Services, cfg RouterConfig) {
	healthHandler := handler.NewHealthHandler(cfg.HealthChecks)
	router.GET("/health", healthHandler.Health)

	if cfg.Webhooks != nil {
		webhookHandler := handler.NewWebhookHandler(cfg.Webhooks, services.Users())
		router.POST("/webhooks/workos", webhookHandler.Identity)
	}

	api := router.Group("/api")
	api.Use(middleware.RequireAuth(cfg.Verifier, services.Users()))
	{
		WorkspaceRouter(api.Group("/workspaces"), handler.NewWorkspaceHandler(services.Workspaces()))
		ProjectRouter(api.Group("/projects"), handler.NewProjectHandler(services.Projects()))
		TaskRouter(api.Group("/tasks"), handler.NewTaskHandler(services.Tasks()))
		CommentRouter(api.Group("/comments"), handler.NewCommentHandler(services.Comments()))
	}
}
