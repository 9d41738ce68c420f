package commands

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/banklift-dev/banklift/internal/config"
)

// ConfigFileName is the per-directory configuration file.
const ConfigFileName = "banklift.yaml"

func newInitCommand() *cobra.Command {
	var account string
	var journal string

	cmd := &cobra.Command{
		Use:   "init [directory]",
		Short: "Set up a directory for bank imports",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := "."
			if len(args) > 0 {
				dir = args[0]
			}

			absDir, err := filepath.Abs(dir)
			if err != nil {
				return fmt.Errorf("resolving path: %w", err)
			}

			return runInit(cmd, absDir, account, journal)
		},
	}

	cmd.Flags().StringVar(&account, "account", "", "account the bank exports belong to (required)")
	_ = cmd.MarkFlagRequired("account")
	cmd.Flags().StringVar(&journal, "journal", "", "existing beancount journal to learn counter accounts from")

	return cmd
}

func runInit(cmd *cobra.Command, dir, account, journal string) error {
	cfg := config.Default()
	cfg.Account = account
	cfg.Journal = journal
	if err := cfg.Validate(); err != nil {
		return err
	}

	for _, d := range []string{"import", filepath.Join("import", "processed")} {
		if err := os.MkdirAll(filepath.Join(dir, d), 0o755); err != nil {
			return fmt.Errorf("creating directory %s: %w", d, err)
		}
	}

	if err := config.Save(filepath.Join(dir, ConfigFileName), cfg); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Initialized banklift import directory at %s\n", dir)
	return nil
}
