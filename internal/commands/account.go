package commands

import (
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/cleared-dev/ledger/internal/accounts"
	"github.com/cleared-dev/ledger/internal/display"
	"github.com/cleared-dev/ledger/internal/model"
)

func newAccountCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "account",
		Aliases: []string{"accounts"},
		Short:   "Manage the chart of accounts",
	}
	cmd.AddCommand(
		newAccountCreateCommand(a),
		newAccountUpdateCommand(a),
		newAccountListCommand(a),
		&cobra.Command{
			Use:   "tree",
			Short: "Show the account hierarchy with balances",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				cid, err := a.scoped(cmd)
				if err != nil {
					return err
				}
				tree, err := a.accounts.Tree(cid)
				if err != nil {
					return err
				}
				return display.WriteTree(cmd.OutOrStdout(), a.money, tree)
			},
		},
		&cobra.Command{
			Use:   "balance KEY",
			Short: "Show the aggregated balance of an account",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				cid, err := a.scoped(cmd)
				if err != nil {
					return err
				}
				acct, err := a.account(cid, args[0])
				if err != nil {
					return err
				}
				bal, err := a.accounts.Balance(cid, acct.ID)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\n", acct.Key, a.money.Amount(bal))
				return nil
			},
		},
		&cobra.Command{
			Use:   "activity KEY",
			Short: "Show the running-balance statement of an account and its descendants",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				cid, err := a.scoped(cmd)
				if err != nil {
					return err
				}
				acct, err := a.account(cid, args[0])
				if err != nil {
					return err
				}
				st, err := a.activity.Statement(cid, acct.ID)
				if err != nil {
					return err
				}
				return display.WriteStatement(cmd.OutOrStdout(), a.money, st)
			},
		},
		&cobra.Command{
			Use:   "trial-balance",
			Short: "Check that assets minus liabilities equal equity",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				cid, err := a.scoped(cmd)
				if err != nil {
					return err
				}
				tb, err := a.accounts.TrialBalance(cid)
				if err != nil {
					return err
				}
				if err := display.WriteTrialBalance(cmd.OutOrStdout(), a.money, tb); err != nil {
					return err
				}
				return tb.Err()
			},
		},
		&cobra.Command{
			Use:   "delete KEY",
			Short: "Delete an account and its descendants",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				cid, err := a.scoped(cmd)
				if err != nil {
					return err
				}
				acct, err := a.account(cid, args[0])
				if err != nil {
					return err
				}
				if err := a.accounts.Delete(cid, acct.ID); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Deleted account %s\n", acct.Key)
				return nil
			},
		},
		&cobra.Command{
			Use:   "import FILE",
			Short: "Create accounts from a chart CSV; all or nothing",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				cid, err := a.scoped(cmd)
				if err != nil {
					return err
				}
				f, err := os.Open(args[0])
				if err != nil {
					return err
				}
				defer f.Close()
				entries, err := accounts.ReadAccounts(f)
				if err != nil {
					return err
				}
				n, err := a.accounts.ImportChart(cid, entries)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Imported %d accounts\n", n)
				return nil
			},
		},
		&cobra.Command{
			Use:   "export [FILE]",
			Short: "Write the chart of accounts as CSV (stdout by default)",
			Args:  cobra.MaximumNArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				cid, err := a.scoped(cmd)
				if err != nil {
					return err
				}
				entries, err := a.accounts.ExportChart(cid)
				if err != nil {
					return err
				}
				if len(args) == 0 {
					return accounts.WriteAccounts(cmd.OutOrStdout(), entries)
				}
				f, err := os.Create(args[0])
				if err != nil {
					return err
				}
				if err := accounts.WriteAccounts(f, entries); err != nil {
					f.Close()
					return err
				}
				return f.Close()
			},
		},
	)
	return cmd
}

func newAccountCreateCommand(a *app) *cobra.Command {
	var parent, description, kind, openingDate, openingBalance string
	var leaf bool

	cmd := &cobra.Command{
		Use:   "create KEY",
		Short: "Create an account",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cid, err := a.scoped(cmd)
			if err != nil {
				return err
			}
			p := accounts.AccountParams{Key: args[0], Description: description, IsLeaf: leaf}
			if p.Kind, err = model.ParseAccountKind(kind); err != nil {
				return model.NewValidationError("kind", err.Error())
			}
			if parent != "" {
				pa, err := a.account(cid, parent)
				if err != nil {
					return err
				}
				p.ParentID = pa.ID
			}
			if openingDate != "" {
				if p.OpeningDate, err = parseDate(openingDate); err != nil {
					return err
				}
			}
			if p.OpeningBalance, err = parseAmount("opening_balance", openingBalance); err != nil {
				return err
			}

			acct, err := a.accounts.Create(cid, p)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Created account %s (id %d)\n", acct.Key, acct.ID)
			return nil
		},
	}

	cmd.Flags().StringVar(&kind, "kind", "", "asset, liability or equity (required)")
	_ = cmd.MarkFlagRequired("kind")
	cmd.Flags().StringVar(&parent, "parent", "", "parent account key")
	cmd.Flags().StringVar(&description, "description", "", "description")
	cmd.Flags().BoolVar(&leaf, "leaf", false, "account can receive postings")
	cmd.Flags().StringVar(&openingDate, "opening-date", "", "opening date YYYY-MM-DD (default today)")
	cmd.Flags().StringVar(&openingBalance, "opening-balance", "", "opening balance, leaf accounts only")
	return cmd
}

func newAccountUpdateCommand(a *app) *cobra.Command {
	var description, openingDate, openingBalance string

	cmd := &cobra.Command{
		Use:   "update KEY",
		Short: "Change an account's description or opening balance",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cid, err := a.scoped(cmd)
			if err != nil {
				return err
			}
			acct, err := a.account(cid, args[0])
			if err != nil {
				return err
			}

			var u accounts.AccountUpdate
			if cmd.Flags().Changed("description") {
				u.Description = &description
			}
			if cmd.Flags().Changed("opening-date") {
				d, err := parseDate(openingDate)
				if err != nil {
					return err
				}
				u.OpeningDate = &d
			}
			if cmd.Flags().Changed("opening-balance") {
				b, err := parseAmount("opening_balance", openingBalance)
				if err != nil {
					return err
				}
				u.OpeningBalance = &b
			}

			if _, err := a.accounts.Update(cid, acct.ID, u); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Updated account %s\n", acct.Key)
			return nil
		},
	}

	cmd.Flags().StringVar(&description, "description", "", "new description")
	cmd.Flags().StringVar(&openingDate, "opening-date", "", "new opening date YYYY-MM-DD")
	cmd.Flags().StringVar(&openingBalance, "opening-balance", "", "new opening balance")
	return cmd
}

func newAccountListCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List accounts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cid, err := a.scoped(cmd)
			if err != nil {
				return err
			}
			accts, err := a.accounts.List(cid)
			if err != nil {
				return err
			}
			return writeAccounts(cmd.OutOrStdout(), a.money, accts)
		},
	}
}

func writeAccounts(w io.Writer, money *display.Formatter, accts []model.Account) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "Key\tDescription\tKind\tLeaf\tOpened\tOpening Balance")
	for _, acct := range accts {
		leaf := ""
		if acct.IsLeaf {
			leaf = "yes"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n",
			acct.Key, acct.Description, acct.Kind, leaf, acct.OpeningDate.Format(dateFormat), money.Amount(acct.OpeningBalance))
	}
	return tw.Flush()
}
