package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	"planboard.app/server/common/id"
	"planboard.app/server/common/logger"
	"planboard.app/server/common/otel"
	"planboard.app/server/core/config"
	"planboard.app/server/core/db"
	"planboard.app/server/internal/notify"
	"planboard.app/server/internal/queue"
	"planboard.app/server/internal/service"
	"planboard.app/server/internal/store"
	"planboard.app/server/internal/worker"
)

func main() {
	fmt.Printf("%s\n", banner)
	ctx := context.Background()

	cfg, err := config.Load(config.ServiceTypeWorker)
	if err != nil {
		slog.ErrorContext(ctx, "failed to load config", "error", err)
		os.Exit(1)
	}

	telemetry, err := otel.Setup(ctx, cfg.OTel, cfg.Env)
	if err != nil {
		os.Stderr.WriteString("failed to initialize otel: " + err.Error() + "\n")
		os.Exit(1)
	}

	logger.Setup(cfg)

	slog.InfoContext(ctx, "planboard worker starting",
		"env", cfg.Env,
		"consumer_group", cfg.Pipeline.RedisGroup,
		"consumer_name", cfg.Pipeline.RedisConsumer)

	// Different node id than the server so ids never collide.
	if err := id.Init(2); err != nil {
		slog.ErrorContext(ctx, "failed to initialize id generator", "error", err)
		os.Exit(1)
	}

	database, err := db.New(ctx, cfg.DB)
	if err != nil {
		slog.ErrorContext(ctx, "failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer database.Close()
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
	defer redisClient.Close()
	slog.InfoContext(ctx, "redis connected", "stream", cfg.Pipeline.RedisStream)

	schemas, err := queue.NewSchemas()
	if err != nil {
		slog.ErrorContext(ctx, "failed to compile event schemas", "error", err)
		os.Exit(1)
	}

	consumer, err := queue.NewRedisConsumer(ctx, redisClient, queue.ConsumerConfig{
		Stream:       cfg.Pipeline.RedisStream,
		Group:        cfg.Pipeline.RedisGroup,
		Consumer:     cfg.Pipeline.RedisConsumer,
		DLQStream:    cfg.Pipeline.RedisDLQStream,
		BatchSize:    10,
		Block:        5 * time.Second,
		MaxAttempts:  cfg.Pipeline.MaxAttempts,
		RequeueDelay: time.Second,
	}, schemas)
	if err != nil {
		slog.ErrorContext(ctx, "failed to create consumer", "error", err)
		os.Exit(1)
	}

	mailer, err := notify.NewSMTPMailer(cfg.SMTP, nil)
	if err != nil {
		slog.ErrorContext(ctx, "failed to create mailer", "error", err)
		os.Exit(1)
	}

	stores := store.NewStores(database.Conn())
	// The worker never publishes, so no producer is wired into its services.
	services := service.NewServices(stores, service.NewTxRunner(database), nil, mailer, nil, cfg.DashboardURL)

	w := worker.New(consumer, map[queue.EventName]worker.Handler{
		queue.EventTaskAssigned:     worker.TaskAssignedHandler(stores.Tasks(), mailer, cfg.DashboardURL),
		queue.EventWorkspaceCreated: worker.WorkspaceCreatedHandler(services.Workspaces()),
		queue.EventUserUpdated:      worker.UserUpdatedHandler(services.Users()),
		queue.EventUserDeleted:      worker.UserDeletedHandler(services.Users()),
	}, worker.Config{
		MaxAttempts: cfg.Pipeline.MaxAttempts,
	})

	reclaimer := worker.NewReclaimer(consumer, w.Handle, worker.ReclaimerConfig{
		MinIdle:   5 * time.Minute,
		Interval:  time.Minute,
		BatchSize: 10,
	})

	errCh := make(chan error, 2)
	go func() {
		errCh <- w.Run(ctx)
	}()
	go func() {
		reclaimer.Run(ctx)
		errCh <- nil
	}()

	slog.InfoContext(ctx, "worker initialized and running")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.InfoContext(ctx, "shutting down worker...")

	shutdownCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	// Reclaimer first; it is quick. The worker may be mid-message.
	reclaimer.Stop()
	w.Stop()

	select {
	case <-shutdownCtx.Done():
		slog.WarnContext(ctx, "shutdown timeout exceeded")
	case err := <-errCh:
		if err != nil {
			slog.ErrorContext(ctx, "worker error during shutdown", "error", err)
		}
	}

	if telemetry != nil {
		if err := telemetry.Shutdown(shutdownCtx); err != nil {
			slog.ErrorContext(shutdownCtx, "otel shutdown error", "error", err)
		}
	}

	slog.InfoContext(shutdownCtx, "worker shutdown complete")
}

const banner = `
 ___  _      _   _  _ ___  ___   _   ___ ___
| _ \| |    /_\ | \| | _ )/ _ \ /_\ | _ \   \
|  _/| |__ / _ \| .' | _ \ (_) / _ \|   / |) |
|_|  |____/_/ \_\_|\_|___/\___/_/ \_\_|_\___/  worker
`
