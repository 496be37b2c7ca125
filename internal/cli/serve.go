package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/pfrederiksen/sheet-countdown/internal/logger"
	"github.com/pfrederiksen/sheet-countdown/internal/server"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

// watchDebounce collapses the burst of events an atomic row write produces.
const watchDebounce = 100 * time.Millisecond

var flagAddr string

func newServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the countdown widget over HTTP",
		Long: `Serve the countdown widget as a web page.
The widget refreshes from the spreadsheet every refresh interval. Append
?row=N to the page URL for a read-only widget bound to row N.`,
		Args: cobra.NoArgs,
		RunE: runServe,
	}

	cmd.Flags().StringVar(&flagAddr, "addr", "", "Listen address (overrides config)")
	return cmd
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if flagAddr != "" {
		cfg.Server.Addr = flagAddr
	}
	if err := setupLogging(cfg); err != nil {
		return err
	}

	a, err := newApp(cfg)
	if err != nil {
		return err
	}

	srv, err := server.New(server.Config{
		Addr:        cfg.Server.Addr,
		Controller:  a.controller,
		Fetcher:     a.fetcher,
		PageRefresh: cfg.RefreshInterval(),
	})
	if err != nil {
		return fmt.Errorf("initializing server: %w", err)
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return runAll(ctx, a, func(ctx context.Context) error {
		return srv.ListenAndServe(ctx)
	})
}

// runAll runs surface alongside the refresh loop and, when enabled, the row
// file watcher. The first to fail or return stops the others.
func runAll(ctx context.Context, a *app, surface func(ctx context.Context) error) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return a.controller.Run(ctx)
	})

	if a.cfg.Store.Watch {
		g.Go(func() error {
			return a.store.Watch(ctx, watchDebounce, a.controller.StoreChanged)
		})
	}

	g.Go(func() error {
		defer cancel()
		return surface(ctx)
	})

	if err := g.Wait(); err != nil {
		return err
	}
	logger.Info("Shut down cleanly", nil)
	return nil
}
