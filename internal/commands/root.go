package commands

import (
	"fmt"
	"io"
	"path/filepath"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/cleared-dev/ledger/internal/accounts"
	"github.com/cleared-dev/ledger/internal/activity"
	"github.com/cleared-dev/ledger/internal/attributes"
	"github.com/cleared-dev/ledger/internal/buildinfo"
	"github.com/cleared-dev/ledger/internal/companies"
	"github.com/cleared-dev/ledger/internal/config"
	"github.com/cleared-dev/ledger/internal/display"
	"github.com/cleared-dev/ledger/internal/journal"
	"github.com/cleared-dev/ledger/internal/logging"
	"github.com/cleared-dev/ledger/internal/model"
	"github.com/cleared-dev/ledger/internal/store"
	"github.com/cleared-dev/ledger/internal/templates"
)

// app carries the global flags and the services opened for one invocation.
type app struct {
	configPath string
	envFile    string
	debug      bool
	company    string

	cfg    *config.Config
	logger *zap.Logger
	store  *store.Store
	money  *display.Formatter

	companies  *companies.Service
	accounts   *accounts.Service
	journal    *journal.Service
	templates  *templates.Service
	attributes *attributes.Service
	activity   *activity.Service
}

// Execute runs the CLI with args and releases the database afterwards.
func Execute(args []string, stdout, stderr io.Writer) error {
	a := &app{}
	defer a.close()

	cmd := newRootCommand(a)
	cmd.SetArgs(args)
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)
	return cmd.Execute()
}

// newRootCommand creates the root CLI command with all subcommands registered.
func newRootCommand(a *app) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:     "ledger",
		Short:   "Multi-company double-entry bookkeeping",
		Version: buildinfo.String(),
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		SilenceUsage: true,
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&a.configPath, "config", config.FileName, "path to ledger.yaml")
	flags.StringVar(&a.envFile, "env", "", "dotenv file with LEDGER_* overrides")
	flags.BoolVar(&a.debug, "debug", false, "log at debug level to stderr")
	flags.StringVarP(&a.company, "company", "c", "", "company name or ID")

	rootCmd.AddCommand(
		newVersionCommand(),
		newInitCommand(a),
		newCompanyCommand(a),
		newAccountCommand(a),
		newTxCommand(a),
		newQuickCommand(a),
		newRecurringCommand(a),
		newAttributeCommand(a),
		newImportCommand(a),
	)

	return rootCmd
}

// open loads configuration, builds the logger and connects to the database.
// It is a no-op after the first call.
func (a *app) open(cmd *cobra.Command) error {
	if a.store != nil {
		return nil
	}

	cfg, err := config.LoadOrDefault(a.configPath)
	if err != nil {
		return err
	}
	if err := cfg.ApplyEnv(a.envFile); err != nil {
		return err
	}
	if a.debug {
		cfg.Logging.Environment = logging.EnvironmentDevelopment
		cfg.Logging.Level = "debug"
	}
	a.cfg = cfg

	logger, err := logging.New(cfg.Logging, cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	a.logger = logger.With(zap.String("command", cmd.CommandPath()))

	money, err := display.NewFormatter(cfg.Display.Currency)
	if err != nil {
		return err
	}
	a.money = money

	st, err := store.Open(cfg.Database.Driver, a.dsn())
	if err != nil {
		return err
	}
	a.store = st

	a.companies = companies.NewService(st, a.logger)
	a.accounts = accounts.NewService(st, a.logger)
	a.journal = journal.NewService(st, a.logger)
	a.templates = templates.NewService(st, a.logger)
	a.attributes = attributes.NewService(st, a.logger)
	a.activity = activity.NewService(st, a.logger)
	return nil
}

// dsn resolves a relative SQLite path against the config file's directory.
func (a *app) dsn() string {
	dsn := a.cfg.Database.DSN
	if store.Dialect(a.cfg.Database.Driver) == store.DialectMySQL {
		return dsn
	}
	return a.relative(dsn)
}

func (a *app) relative(path string) string {
	if path == "" || filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(filepath.Dir(a.configPath), path)
}

func (a *app) close() {
	if a.store != nil {
		a.store.Close()
		a.store = nil
	}
	if a.logger != nil {
		_ = a.logger.Sync()
	}
}

// companyID resolves the --company flag.
func (a *app) companyID() (int64, error) {
	if a.company == "" {
		return 0, fmt.Errorf("--company is required")
	}
	c, err := a.companies.Resolve(a.company)
	if err != nil {
		return 0, err
	}
	return c.ID, nil
}

// scoped opens the app and resolves the company for a command.
func (a *app) scoped(cmd *cobra.Command) (int64, error) {
	if err := a.open(cmd); err != nil {
		return 0, err
	}
	return a.companyID()
}

// account resolves an account key within a company.
func (a *app) account(companyID int64, key string) (model.Account, error) {
	acct, err := a.accounts.GetByKey(companyID, key)
	if err != nil {
		return model.Account{}, fmt.Errorf("account %q: %w", key, err)
	}
	return acct, nil
}

// keyLookup maps account IDs to keys for display.
func (a *app) keyLookup(companyID int64) (func(int64) string, error) {
	accts, err := a.accounts.List(companyID)
	if err != nil {
		return nil, err
	}
	keys := make(map[int64]string, len(accts))
	for _, acct := range accts {
		keys[acct.ID] = acct.Key
	}
	return func(id int64) string { return keys[id] }, nil
}

func newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print build information",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Fprintln(cmd.OutOrStdout(), "ledger "+buildinfo.String())
			return nil
		},
	}
}
