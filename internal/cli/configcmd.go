package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var flagForce bool

func newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage the configuration file",
	}

	initCmd := &cobra.Command{
		Use:   "init",
		Short: "Write the current settings to the config file",
		Long: `Write the built-in defaults, with environment and flag overrides applied,
to the file named by --config. An existing file is kept unless --force is set.`,
		Args: cobra.NoArgs,
		RunE: runConfigInit,
	}
	initCmd.Flags().BoolVar(&flagForce, "force", false, "Overwrite an existing config file")

	cmd.AddCommand(initCmd)
	return cmd
}

func runConfigInit(cmd *cobra.Command, args []string) error {
	path := expandHome(flagConfig)
	if path == "" {
		return errors.New("no config path: set --config")
	}

	if _, err := os.Stat(path); err == nil && !flagForce {
		return fmt.Errorf("config file %s already exists (use --force to overwrite)", path)
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if err := cfg.Save(path); err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", path)
	return nil
}
