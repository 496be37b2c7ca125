package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/pfrederiksen/sheet-countdown/internal/configstore"
	"github.com/spf13/cobra"
)

func newRowCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "row",
		Short: "Inspect or change the selected spreadsheet row",
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "get",
			Short: "Print the selected row",
			Args:  cobra.NoArgs,
			RunE:  runRowGet,
		},
		&cobra.Command{
			Use:   "set ROW",
			Short: "Select the row to count down to",
			Long: `Select the row to count down to. Row 1 is the header line, so the
first data row is 2. A running serve or watch picks the change up.`,
			Args: cobra.ExactArgs(1),
			RunE: runRowSet,
		},
	)
	return cmd
}

func openStore() (*configstore.FileStore, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	if err := setupLogging(cfg); err != nil {
		return nil, err
	}

	store, err := configstore.NewFileStore(cfg.Store.DataDir)
	if err != nil {
		return nil, fmt.Errorf("initializing row store: %w", err)
	}
	return store, nil
}

func runRowGet(cmd *cobra.Command, args []string) error {
	store, err := openStore()
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), store.Get())
	return nil
}

func runRowSet(cmd *cobra.Command, args []string) error {
	row, err := strconv.Atoi(strings.TrimSpace(args[0]))
	if err != nil {
		return fmt.Errorf("%w: %q", configstore.ErrInvalidRow, args[0])
	}

	store, err := openStore()
	if err != nil {
		return err
	}
	if err := store.Set(row); err != nil {
		return err
	}

	if flagVerbose {
		fmt.Fprintf(cmd.ErrOrStderr(), "Saved row to %s\n", store.Path())
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Configuración guardada: fila %d\n", row)
	return nil
}
