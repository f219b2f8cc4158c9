package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/spf13/cobra"

	"planboard.app/server/common/logger"
	"planboard.app/server/internal/client"
	"planboard.app/server/internal/clientstate"
)

var Version = "dev"

// app is built before each command runs and torn down after it.
type app struct {
	cfg       Config
	api       *client.Client
	kv        *clientstate.SQLiteKV
	store     *clientstate.Store
	refresher *clientstate.Refresher
}

func main() {
	slog.SetDefault(slog.New(logger.NewTraceHandler(
		slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}),
	)))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	rootCmd, a := newRootCmd()
	err := execute(ctx, rootCmd, a)
	stop()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// execute runs the command tree and tears the app down whether or not the
// command failed.
func execute(ctx context.Context, rootCmd *cobra.Command, a *app) error {
	defer a.close()
	return rootCmd.ExecuteContext(ctx)
}

func newRootCmd() (*cobra.Command, *app) {
	a := &app{}
	var configPath string

	rootCmd := &cobra.Command{
		Use:           "planctl",
		Short:         "Terminal client for planboard workspaces, projects and tasks",
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.open(cmd.Context(), configPath)
		},
	}
	rootCmd.PersistentFlags().StringVar(&configPath, "config", defaultConfigPath(), "config file")

	rootCmd.AddCommand(workspacesCmd(a))
	rootCmd.AddCommand(useCmd(a))
	rootCmd.AddCommand(workspaceCmd(a))
	rootCmd.AddCommand(memberCmd(a))
	rootCmd.AddCommand(projectsCmd(a))
	rootCmd.AddCommand(projectCmd(a))
	rootCmd.AddCommand(tasksCmd(a))
	rootCmd.AddCommand(taskCmd(a))
	rootCmd.AddCommand(commentCmd(a))
	rootCmd.AddCommand(statsCmd(a))
	rootCmd.AddCommand(watchCmd(a))
	rootCmd.AddCommand(logoutCmd(a))

	return rootCmd, a
}

// open loads config and state, then fetches the caller's workspaces.
func (a *app) open(ctx context.Context, configPath string) error {
	cfg, err := loadConfig(configPath)
	if err != nil {
		return err
	}
	a.cfg = cfg

	kv, err := clientstate.OpenSQLiteKV(cfg.StatePath)
	if err != nil {
		return fmt.Errorf("open state: %w", err)
	}
	a.kv = kv
	a.store = clientstate.NewStore(kv)

	a.api = client.New(client.Config{
		BaseURL: cfg.APIURL,
		Token: func(context.Context) (string, error) {
			if cfg.Token == "" {
				return "", errors.New("no token configured; set PLANCTL_TOKEN")
			}
			return cfg.Token, nil
		},
	})
	a.refresher = clientstate.NewRefresher(a.store, a.api.ListWorkspaces, clientstate.DefaultRefreshDelay)
	return nil
}

// load runs the initial workspace fetch. Commands that only touch local
// state skip it.
func (a *app) load(ctx context.Context) error {
	if err := a.refresher.Initial(ctx); err != nil {
		return fmt.Errorf("loading workspaces: %w", err)
	}
	return nil
}

// loadWithStatus is load for commands whose output is the workspace list.
func (a *app) loadWithStatus(ctx context.Context) error {
	if a.refresher.Loading() {
		fmt.Fprintln(os.Stderr, "loading workspaces…")
	}
	return a.load(ctx)
}

// refreshAfterChange schedules a refetch and blocks until it has landed, so
// the cache reflects a change the server made.
func (a *app) refreshAfterChange() {
	a.refresher.Trigger()
	a.refresher.Wait()
}

// callerID is the configured user id, else the subject of the API token.
// The token is only decoded here; the server verifies it.
func (a *app) callerID() (string, error) {
	if a.cfg.UserID != "" {
		return a.cfg.UserID, nil
	}
	claims := &jwt.RegisteredClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(a.cfg.Token, claims); err != nil {
		return "", fmt.Errorf("reading user id from token: %w; set PLANCTL_USER_ID", err)
	}
	if claims.Subject == "" {
		return "", errors.New("token has no subject; set PLANCTL_USER_ID")
	}
	return claims.Subject, nil
}

func (a *app) close() {
	if a.refresher != nil {
		a.refresher.Close()
	}
	if a.kv != nil {
		if err := a.kv.Close(); err != nil {
			slog.Warn("closing state", "error", err)
		}
	}
}

// currentWorkspaceID returns the selected workspace or an error telling the
// user to pick one.
func (a *app) currentWorkspaceID() (string, error) {
	id := a.store.CurrentWorkspaceID()
	if id == "" {
		return "", errors.New("no workspace selected; create one with `planctl workspace create`")
	}
	return id, nil
}

// waitForWorkspace polls through the refresher until id shows up or the
// deadline passes. Workspace creation is processed by the worker, so the
// first refetch can miss it.
func (a *app) waitForWorkspace(ctx context.Context, id string, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	ticker := time.NewTicker(250 * time.Millisecond)
	defer ticker.Stop()

	for {
		for _, known := range a.store.WorkspaceIDs() {
			if known == id {
				return nil
			}
		}
		a.refresher.Trigger()

		select {
		case <-ctx.Done():
			return fmt.Errorf("workspace %s not visible yet; run `planctl workspaces` later", id)
		case <-ticker.C:
		}
	}
}
