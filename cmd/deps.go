package cmd

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/ashraf950/timesheet-client/internal"
	"github.com/ashraf950/timesheet-client/internal/api"
	"github.com/ashraf950/timesheet-client/internal/session"
	"github.com/ashraf950/timesheet-client/internal/workspace"
	"github.com/ashraf950/timesheet-client/pkg/logger"
)

type Dependencies struct {
	Config    *internal.Config
	Logger    *slog.Logger
	Store     *session.SQLiteStore
	Session   *session.Manager
	Client    *api.Client
	Workspace *workspace.Workspace
}

func initializeDependencies(ctx context.Context) (*Dependencies, error) {
	config, err := loadConfig(configDir)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	logger.Init(config.Env, config.Logging.Level, config.Logging.Format)
	lg := logger.LoggerWrapper()

	store, err := session.OpenSQLite(ctx, config.Session.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to open session store: %w", err)
	}

	key, err := config.Session.Key()
	if err != nil {
		_ = store.Close()
		return nil, err
	}
	cipher, err := session.NewCipher(key)
	if err != nil {
		_ = store.Close()
		return nil, err
	}

	sessions := session.NewManager(store, cipher, lg.With("component", "session"))
	if err := sessions.Init(ctx); err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("failed to load session: %w", err)
	}

	client := api.NewClient(api.Config{
		BaseURL: config.API.BaseURL,
		Timeout: config.API.Timeout,
	}, sessions, lg.With("component", "api"))

	return &Dependencies{
		Config:    config,
		Logger:    lg,
		Store:     store,
		Session:   sessions,
		Client:    client,
		Workspace: workspace.New(client, sessions, lg),
	}, nil
}

func (d *Dependencies) Close() {
	if err := d.Store.Close(); err != nil {
		d.Logger.Warn("failed to close session store", "error", err)
	}
}

type runFunc func(cmd *cobra.Command, args []string, deps *Dependencies) error

// withDeps builds the dependencies for one command run and tears them
// down afterwards.
func withDeps(fn runFunc) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		deps, err := initializeDependencies(cmd.Context())
		if err != nil {
			return err
		}
		defer deps.Close()
		cmd.SetContext(logger.NewContext(cmd.Context(), deps.Logger.With("command", cmd.CommandPath())))
		return fn(cmd, args, deps)
	}
}
