package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/cleared-dev/ledger/internal/display"
	"github.com/cleared-dev/ledger/internal/id"
)

const lineHelp = `Lines use ACCOUNT:DEBIT:CREDIT[:NOTES], e.g. --line Cash:100: --line Revenue::100.
When editing, prefix a line with DETAIL_ID= to update that detail in place;
details not mentioned are removed.`

func newTxCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "tx",
		Aliases: []string{"transaction"},
		Short:   "Post and manage journal transactions",
	}
	cmd.AddCommand(
		newTxPostCommand(a),
		newTxEditCommand(a),
		&cobra.Command{
			Use:   "show REF",
			Short: "Show a transaction and its lines",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				cid, err := a.scoped(cmd)
				if err != nil {
					return err
				}
				txID, err := id.ParseTransactionRef(args[0])
				if err != nil {
					return err
				}
				txn, err := a.journal.Get(cid, txID)
				if err != nil {
					return err
				}
				keyOf, err := a.keyLookup(cid)
				if err != nil {
					return err
				}
				return display.WriteTransaction(cmd.OutOrStdout(), a.money, txn, keyOf)
			},
		},
		&cobra.Command{
			Use:   "list",
			Short: "List transactions by date",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				cid, err := a.scoped(cmd)
				if err != nil {
					return err
				}
				txns, err := a.journal.List(cid)
				if err != nil {
					return err
				}
				return display.WriteTransactions(cmd.OutOrStdout(), a.money, txns)
			},
		},
		&cobra.Command{
			Use:   "delete REF",
			Short: "Delete a transaction and its lines",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				cid, err := a.scoped(cmd)
				if err != nil {
					return err
				}
				txID, err := id.ParseTransactionRef(args[0])
				if err != nil {
					return err
				}
				if err := a.journal.Delete(cid, txID); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Deleted %s\n", id.FormatTransactionRef(txID))
				return nil
			},
		},
		&cobra.Command{
			Use:   "import FILE",
			Short: "Post every entry of a journal CSV; all or nothing",
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
				n, err := a.journal.ImportCSV(cid, f)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Imported %d transactions\n", n)
				return nil
			},
		},
	)
	return cmd
}

func newTxPostCommand(a *app) *cobra.Command {
	var date, notes string
	var lines []string

	cmd := &cobra.Command{
		Use:   "post",
		Short: "Post a balanced transaction",
		Long:  "Post a balanced transaction.\n\n" + lineHelp,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cid, err := a.scoped(cmd)
			if err != nil {
				return err
			}
			d, err := parseDate(date)
			if err != nil {
				return err
			}
			ls, err := a.resolveLines(cid, lines)
			if err != nil {
				return err
			}
			txn, err := a.journal.Post(cid, d, notes, ls)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Posted %s\n", id.FormatTransactionRef(txn.ID))
			return nil
		},
	}

	cmd.Flags().StringVar(&date, "date", "", "transaction date YYYY-MM-DD (default today)")
	cmd.Flags().StringVar(&notes, "notes", "", "transaction notes")
	cmd.Flags().StringArrayVar(&lines, "line", nil, "ACCOUNT:DEBIT:CREDIT[:NOTES], repeatable")
	return cmd
}

func newTxEditCommand(a *app) *cobra.Command {
	var date, notes string
	var lines []string

	cmd := &cobra.Command{
		Use:   "edit REF",
		Short: "Replace a transaction's header and lines",
		Long:  "Replace a transaction's header and lines. The full line set must be given.\n\n" + lineHelp,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cid, err := a.scoped(cmd)
			if err != nil {
				return err
			}
			txID, err := id.ParseTransactionRef(args[0])
			if err != nil {
				return err
			}
			current, err := a.journal.Get(cid, txID)
			if err != nil {
				return err
			}

			d := current.Date
			if cmd.Flags().Changed("date") {
				if d, err = parseDate(date); err != nil {
					return err
				}
			}
			n := current.Notes
			if cmd.Flags().Changed("notes") {
				n = notes
			}
			ls := current.Lines()
			if len(lines) > 0 {
				if ls, err = a.resolveLines(cid, lines); err != nil {
					return err
				}
			}

			txn, err := a.journal.Edit(cid, txID, d, n, ls)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Updated %s\n", id.FormatTransactionRef(txn.ID))
			return nil
		},
	}

	cmd.Flags().StringVar(&date, "date", "", "new transaction date YYYY-MM-DD")
	cmd.Flags().StringVar(&notes, "notes", "", "new transaction notes")
	cmd.Flags().StringArrayVar(&lines, "line", nil, "[DETAIL_ID=]ACCOUNT:DEBIT:CREDIT[:NOTES], repeatable")
	return cmd
}
