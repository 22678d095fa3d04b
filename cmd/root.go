// Package cmd wires the crawler's commands to the application services.
package cmd

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/freeman-jiang/resonant/internal/config"
	"github.com/freeman-jiang/resonant/internal/logging"
	"github.com/freeman-jiang/resonant/internal/metrics"
	"github.com/freeman-jiang/resonant/internal/store"
)

var cfgFile string

// appKeyType is the key for storing the App in the context.
type appKeyType string

const appKey appKeyType = "app"

// App bundles the services every command needs: configuration, logging,
// and the two database-backed stores.
type App struct {
	Config config.Config
	Logger *zap.Logger
	DB     *pgxpool.Pool
	Tasks  *store.TaskStore
	Pages  *store.PageStore
}

// Close releases the App's resources.
func (a *App) Close() {
	if a.DB != nil {
		a.DB.Close()
	}
	if a.Logger != nil {
		_ = a.Logger.Sync()
	}
}

// newApp is the application factory. It's a variable so tests can replace
// it with a mock factory.
var newApp = func(ctx context.Context) (*App, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	logger, err := logging.New(cfg.Logging.Development)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}

	metrics.Init()

	pool, err := store.Connect(ctx, cfg.DB.DSN, logger)
	if err != nil {
		return nil, fmt.Errorf("connect database: %w", err)
	}

	return &App{
		Config: cfg,
		Logger: logger,
		DB:     pool,
		Tasks:  store.NewTaskStore(pool),
		Pages:  store.NewPageStore(pool),
	}, nil
}

func appFromContext(ctx context.Context) (*App, error) {
	app, ok := ctx.Value(appKey).(*App)
	if !ok || app == nil {
		return nil, fmt.Errorf("application not initialized")
	}
	return app, nil
}

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "resonant",
		Short: "Crawl the long-tail web and rank what it finds.",
		Long: `resonant builds a corpus of article-like pages for a recommendation
feed. It crawls outward from curated roots, filters out listings and
comment threads, and propagates trust through the link graph so that
pages near good writing rank above pages that merely accumulate links.`,

		// Runs after flags are parsed but before the subcommand's RunE,
		// so every command sees a fully built App in its context.
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			app, err := newApp(cmd.Context())
			if err != nil {
				return fmt.Errorf("initialize application services: %w", err)
			}
			cmd.SetContext(context.WithValue(cmd.Context(), appKey, app))
			return nil
		},

		PersistentPostRun: func(cmd *cobra.Command, _ []string) {
			if app, ok := cmd.Context().Value(appKey).(*App); ok && app != nil {
				app.Close()
			}
		},
	}

	cmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is environment only)")

	cmd.AddCommand(newCrawlCmd())
	cmd.AddCommand(newRankCmd())
	cmd.AddCommand(newSeedCmd())
	cmd.AddCommand(newResetCmd())

	return cmd
}

// Execute is the main entry point.
func Execute() error {
	return newRootCmd().Execute()
}
