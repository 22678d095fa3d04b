package cmd

import (
	"context"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/freeman-jiang/resonant/internal/api"
	"github.com/freeman-jiang/resonant/internal/crawl"
	"github.com/freeman-jiang/resonant/internal/extract"
	"github.com/freeman-jiang/resonant/internal/feeds"
	"github.com/freeman-jiang/resonant/internal/fetch"
)

func newCrawlCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "crawl",
		Short: "Run the crawl worker pool until interrupted or out of budget.",
		RunE: func(cmd *cobra.Command, _ []string) error {
			app, err := appFromContext(cmd.Context())
			if err != nil {
				return err
			}
			return runCrawl(cmd.Context(), app)
		},
	}
}

func runCrawl(ctx context.Context, app *App) error {
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	fetcher := fetch.New(fetch.Config{
		UserAgent: app.Config.Crawler.UserAgent,
		Timeout:   app.Config.FetchTimeout(),
	})

	pool := crawl.NewPool(
		app.Tasks,
		app.Pages,
		fetcher,
		extract.New(),
		feeds.NewDiscoverer(fetcher, app.Logger),
		crawl.Config{
			Workers:  app.Config.Crawler.Workers,
			MaxDepth: app.Config.Crawler.MaxDepth,
			MaxPages: app.Config.Crawler.MaxPages,
			IdleWait: app.Config.IdleWait(),
		},
		app.Logger,
	)

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", app.Config.Server.Port),
		Handler:           api.NewServer(app.Tasks, app.Pages, app.Tasks, app.Logger).Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		app.Logger.Info("operator api listening", zap.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			app.Logger.Error("operator api failed", zap.Error(err))
		}
	}()

	pool.Run(ctx)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shut down operator api: %w", err)
	}
	return nil
}
