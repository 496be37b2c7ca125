package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pfrederiksen/sheet-countdown/internal/config"
	"github.com/pfrederiksen/sheet-countdown/internal/configstore"
	"github.com/pfrederiksen/sheet-countdown/internal/logger"
	"github.com/pfrederiksen/sheet-countdown/internal/sheet"
	"github.com/pfrederiksen/sheet-countdown/internal/widget"
	"github.com/spf13/cobra"
)

const (
	ExitSuccess = 0
	ExitError   = 1
)

var (
	flagConfig  string
	flagCSVURL  string
	flagDataDir string
	flagVerbose bool
)

// NewRootCmd creates the root command
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sheet-countdown",
		Short: "Count down the days to a date kept in a published spreadsheet",
		Long: `A countdown widget fed by a published spreadsheet.
Each row of the sheet holds a title and a YYYY-MM-DD date; the widget shows
the title of the selected row and how many days remain until its date.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringVar(&flagConfig, "config", defaultConfigPath(), "Path to the YAML config file")
	cmd.PersistentFlags().StringVar(&flagCSVURL, "csv-url", "", "Published CSV URL of the spreadsheet (overrides config)")
	cmd.PersistentFlags().StringVar(&flagDataDir, "data-dir", "", "Directory holding the selected row (overrides config)")
	cmd.PersistentFlags().BoolVar(&flagVerbose, "verbose", false, "Enable verbose logging")

	cmd.AddCommand(
		newServeCmd(),
		newWatchCmd(),
		newShowCmd(),
		newRowCmd(),
		newConfigCmd(),
	)

	return cmd
}

func defaultConfigPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "sheet-countdown", "config.yaml")
}

// loadConfig reads the config file and applies command-line overrides on top.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(expandHome(flagConfig))
	if err != nil {
		return nil, err
	}

	if flagCSVURL != "" {
		cfg.Sheet.CSVURL = flagCSVURL
	}
	if flagDataDir != "" {
		cfg.Store.DataDir = flagDataDir
	}
	return cfg, nil
}

func expandHome(path string) string {
	if !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, path[2:])
}

// logLevel resolves the configured level, with --verbose forcing debug.
func logLevel(cfg *config.Config) (logger.Level, error) {
	if flagVerbose {
		return logger.LevelDebug, nil
	}
	if cfg.Logging.Level == "" {
		return logger.LevelInfo, nil
	}
	return logger.ParseLevel(cfg.Logging.Level)
}

func setupLogging(cfg *config.Config) error {
	level, err := logLevel(cfg)
	if err != nil {
		return err
	}
	logger.SetDefault(logger.New(level, os.Stderr))
	return nil
}

// app holds the collaborators shared by the long-running commands.
type app struct {
	cfg        *config.Config
	store      *configstore.FileStore
	fetcher    *sheet.Fetcher
	controller *widget.Controller
}

func newApp(cfg *config.Config) (*app, error) {
	store, err := configstore.NewFileStore(cfg.Store.DataDir)
	if err != nil {
		return nil, fmt.Errorf("initializing row store: %w", err)
	}

	fetcher := sheet.NewFetcher(cfg.Sheet.CSVURL, cfg.SheetTimeout())

	controller, err := widget.New(widget.Options{
		Fetcher:            fetcher,
		Store:              store,
		EditURL:            cfg.Sheet.EditURL,
		RefreshInterval:    cfg.RefreshInterval(),
		RevealDelay:        cfg.RevealDelay(),
		TransitionDuration: cfg.TransitionDuration(),
	})
	if err != nil {
		return nil, fmt.Errorf("initializing widget: %w", err)
	}

	logger.Debug("Application initialized", logger.Fields{
		"csv_url":  fetcher.URL(),
		"row_file": store.Path(),
	})

	return &app{cfg: cfg, store: store, fetcher: fetcher, controller: controller}, nil
}

// Execute runs the CLI
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(ExitError)
	}
	os.Exit(ExitSuccess)
}
