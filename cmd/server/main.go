package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"planboard.app/server/common/id"
	"planboard.app/server/common/logger"
	"planboard.app/server/common/otel"
	"planboard.app/server/core/config"
	"planboard.app/server/core/db"
	"planboard.app/server/internal/http/handler"
	"planboard.app/server/internal/http/middleware"
	httprouter "planboard.app/server/internal/http/router"
	"planboard.app/server/internal/identity"
	"planboard.app/server/internal/notify"
	"planboard.app/server/internal/queue"
	"planboard.app/server/internal/service"
	"planboard.app/server/internal/store"
)

func main() {
	fmt.Printf("%s\n", banner)
	ctx := context.Background()

	cfg, err := config.Load(config.ServiceTypeServer)
	if err != nil {
		slog.ErrorContext(ctx, "failed to load config", "error", err)
		os.Exit(1)
	}

	// OTel must init before logger (logger uses OTel provider in production)
	telemetry, err := otel.Setup(ctx, cfg.OTel, cfg.Env)
	if err != nil {
		os.Stderr.WriteString("failed to initialize otel: " + err.Error() + "\n")
		os.Exit(1)
	}

	logger.Setup(cfg)

	if telemetry != nil {
		slog.InfoContext(ctx, "otel initialized", "endpoint", cfg.OTel.Endpoint)
	} else {
		slog.InfoContext(ctx, "otel disabled (no endpoint configured)")
	}

	slog.InfoContext(ctx, "planboard server starting", "env", cfg.Env, "service", cfg.OTel.ServiceName)
	if err := id.Init(1); err != nil {
		slog.ErrorContext(ctx, "failed to initialize snowflake id generator", "error", err)
		os.Exit(1)
	}

	database, err := db.New(ctx, cfg.DB)
	if err != nil {
		slog.ErrorContext(ctx, "failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer database.Close()
	if err := database.Migrate(ctx); err != nil {
		slog.ErrorContext(ctx, "failed to apply migrations", "error", err)
		os.Exit(1)
	}
	slog.InfoContext(ctx, "database connected")

	redisOpts, err := redis.ParseURL(cfg.Pipeline.RedisURL)
	if err != nil {
		slog.ErrorContext(ctx, "failed to parse redis url", "error", err)
		os.Exit(1)
	}
	redisClient := redis.NewClient(redisOpts)
	if err := redisClient.Ping(ctx).Err(); err != nil {
		slog.ErrorContext(ctx, "failed to connect to redis", "error", err)
		os.Exit(1)
	}
	slog.InfoContext(ctx, "redis connected", "stream", cfg.Pipeline.RedisStream)

	schemas, err := queue.NewSchemas()
	if err != nil {
		slog.ErrorContext(ctx, "failed to compile event schemas", "error", err)
		os.Exit(1)
	}
	eventProducer := queue.NewRedisProducer(redisClient, cfg.Pipeline.RedisStream, schemas, nil)
	defer eventProducer.Close()

	mailer, err := notify.NewSMTPMailer(cfg.SMTP, nil)
	if err != nil {
		slog.ErrorContext(ctx, "failed to create mailer", "error", err)
		os.Exit(1)
	}

	verifier, err := identity.NewVerifier(cfg.Identity)
	if err != nil {
		slog.ErrorContext(ctx, "failed to create token verifier", "error", err)
		os.Exit(1)
	}

	var directory identity.Directory
	if cfg.WorkOS.Enabled() {
		directory = identity.NewWorkOSDirectory(cfg.WorkOS)
	}

	services := service.NewServices(
		store.NewStores(database.Conn()),
		service.NewTxRunner(database),
		eventProducer,
		mailer,
		directory,
		cfg.DashboardURL,
	)

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	// Unknown body fields are rejected rather than silently dropped.
	binding.EnableDecoderDisallowUnknownFields = true

	router := setupRouter(cfg, services, httprouter.RouterConfig{
		Verifier: verifier,
		Webhooks: identity.NewWebhookVerifier(cfg.WorkOS),
		HealthChecks: map[string]handler.HealthCheck{
			"postgres": database.Ping,
			"redis": func(ctx context.Context) error {
				return redisClient.Ping(ctx).Err()
			},
		},
	})
	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	go func() {
		slog.InfoContext(ctx, "http server starting", "port", cfg.Port, "cors_origin", cfg.DashboardURL)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.ErrorContext(ctx, "http server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.InfoContext(ctx, "shutting down...")

	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.ErrorContext(shutdownCtx, "http server shutdown error", "error", err)
	}

	if telemetry != nil {
		if err := telemetry.Shutdown(shutdownCtx); err != nil {
			slog.ErrorContext(shutdownCtx, "otel shutdown error", "error", err)
		}
	}

	slog.InfoContext(shutdownCtx, "shutdown complete")
}

func setupRouter(cfg config.Config, services *service.Services, routes httprouter.RouterConfig) *gin.Engine {
	router := gin.New()

	// Order matters: OTel creates span → Recovery catches panics → Logger logs with trace context
	if cfg.OTel.Enabled() {
		router.Use(otelgin.Middleware(cfg.OTel.ServiceName))
	}
	router.Use(middleware.Recovery())
	router.Use(middleware.RequestID())
	router.Use(middleware.Logger())
	router.Use(middleware.CORS(cfg.DashboardURL))

	httprouter.SetupRoutes(router, services, routes)

	return router
}

const banner = `
 ___  _      _   _  _ ___  ___   _   ___ ___
| _ \| |    /_\ | \| | _ )/ _ \ /_\ | _ \   \
|  _/| |__ / _ \| .' | _ \ (_) / _ \|   / |) |
|_|  |____/_/ \_\_|\_|___/\___/_/ \_\_|_\___/  server
`
