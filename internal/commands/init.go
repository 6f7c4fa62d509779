package commands

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/cleared-dev/ledger/internal/accounts"
	"github.com/cleared-dev/ledger/internal/config"
)

func newInitCommand(a *app) *cobra.Command {
	var name string
	var driver string
	var dsn string
	var noChart bool

	cmd := &cobra.Command{
		Use:   "init [directory]",
		Short: "Create ledger.yaml and the database, optionally with a first company",
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
			if err := os.MkdirAll(absDir, 0o755); err != nil {
				return fmt.Errorf("creating directory: %w", err)
			}

			cfgPath := filepath.Join(absDir, config.FileName)
			if _, err := os.Stat(cfgPath); err == nil {
				return fmt.Errorf("%s already exists", cfgPath)
			}
			cfg := config.Default()
			if driver != "" {
				cfg.Database.Driver = driver
			}
			if dsn != "" {
				cfg.Database.DSN = dsn
			}
			if err := config.Save(cfgPath, cfg); err != nil {
				return err
			}
			if err := os.MkdirAll(filepath.Join(absDir, cfg.Import.Dir), 0o755); err != nil {
				return fmt.Errorf("creating import dir: %w", err)
			}

			a.configPath = cfgPath
			if err := a.open(cmd); err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Initialized ledger at %s\n", absDir)

			if name == "" {
				return nil
			}
			c, err := a.companies.Create(name)
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "Created company %q (id %d)\n", c.Name, c.ID)
			if noChart {
				return nil
			}
			n, err := a.accounts.ImportChart(c.ID, accounts.DefaultChart())
			if err != nil {
				return fmt.Errorf("writing chart of accounts: %w", err)
			}
			fmt.Fprintf(out, "Created %d accounts\n", n)
			return nil
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "create a company with this name")
	cmd.Flags().StringVar(&driver, "driver", "", "database driver (sqlite3 or mysql)")
	cmd.Flags().StringVar(&dsn, "dsn", "", "database DSN; a file path for sqlite3")
	cmd.Flags().BoolVar(&noChart, "no-chart", false, "skip the default chart of accounts")

	return cmd
}
