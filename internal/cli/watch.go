package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/pfrederiksen/sheet-countdown/internal/configstore"
	"github.com/pfrederiksen/sheet-countdown/internal/logger"
	"github.com/pfrederiksen/sheet-countdown/internal/tui"
	"github.com/spf13/cobra"
)

func newWatchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "watch",
		Short: "Show the countdown widget in the terminal",
		Long: `Show the countdown widget in the terminal.
Press tab to switch to the row selector, enter to save, o to open the
spreadsheet and q to quit. Logs are written to a file while the widget
owns the screen.`,
		Args: cobra.NoArgs,
		RunE: runWatch,
	}
}

func runWatch(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	level, err := logLevel(cfg)
	if err != nil {
		return err
	}

	logPath := expandHome(cfg.Logging.File)
	if logPath == "" {
		store, err := configstore.NewFileStore(cfg.Store.DataDir)
		if err != nil {
			return fmt.Errorf("initializing row store: %w", err)
		}
		logPath = filepath.Join(filepath.Dir(store.Path()), "watch.log")
	}

	logFile, err := tea.LogToFile(logPath, "sheet-countdown")
	if err != nil {
		return fmt.Errorf("opening log file: %w", err)
	}
	defer logFile.Close()

	// Hand stderr back once the screen is released.
	prev := logger.Default()
	logger.SetDefault(logger.New(level, logFile))
	defer logger.SetDefault(prev)

	a, err := newApp(cfg)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return runAll(ctx, a, func(ctx context.Context) error {
		return tui.Run(ctx, a.controller)
	})
}
