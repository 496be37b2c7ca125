package cli

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/pfrederiksen/sheet-countdown/internal/configstore"
	"github.com/pfrederiksen/sheet-countdown/internal/sheet"
	"github.com/pfrederiksen/sheet-countdown/internal/widget"
	"github.com/spf13/cobra"
)

var (
	flagFormat string
	flagRow    int
)

// now is the clock used by show; tests replace it.
var now = time.Now

func newShowCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "show",
		Short: "Print the countdown once",
		Long: `Fetch the spreadsheet once and print the countdown for the selected row.
Without --row the stored row is used. A row that cannot be read prints the
error title and exits with status 1.`,
		Args: cobra.NoArgs,
		RunE: runShow,
	}

	cmd.Flags().StringVar(&flagFormat, "format", "text", "Output format: text, json or ics")
	cmd.Flags().IntVar(&flagRow, "row", 0, "Row to show instead of the stored one")
	return cmd
}

func runShow(cmd *cobra.Command, args []string) error {
	format := OutputFormat(strings.ToLower(flagFormat))
	if format != FormatText && format != FormatJSON && format != FormatICS {
		return fmt.Errorf("invalid format: %s (must be 'text', 'json' or 'ics')", flagFormat)
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if err := setupLogging(cfg); err != nil {
		return err
	}

	row := flagRow
	if row == 0 {
		store, err := configstore.NewFileStore(cfg.Store.DataDir)
		if err != nil {
			return fmt.Errorf("initializing row store: %w", err)
		}
		row = store.Get()
	}
	if row < 1 {
		return fmt.Errorf("%w: %d", configstore.ErrInvalidRow, row)
	}

	fetcher := sheet.NewFetcher(cfg.Sheet.CSVURL, cfg.SheetTimeout())
	checkedAt := now()
	render := widget.RunCycle(cmd.Context(), fetcher, row, checkedAt)

	result := NewOutputResult(render, cfg.Sheet.EditURL, checkedAt)
	if err := WriteOutput(cmd.OutOrStdout(), result, format, flagVerbose); err != nil {
		return fmt.Errorf("writing output: %w", err)
	}

	if render.Err != nil {
		return describeCycleError(row, render.Err)
	}
	return nil
}

func describeCycleError(row int, err error) error {
	var fetchErr *sheet.FetchError
	switch {
	case errors.As(err, &fetchErr):
		return fmt.Errorf("fetching spreadsheet: %w", err)
	case errors.Is(err, sheet.ErrRowNotFound):
		return fmt.Errorf("row %d: %w", row, err)
	default:
		return err
	}
}
