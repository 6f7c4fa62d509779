package commands

import (
	"fmt"
	"strconv"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/cleared-dev/ledger/internal/display"
	"github.com/cleared-dev/ledger/internal/id"
	"github.com/cleared-dev/ledger/internal/model"
)

func newQuickCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "quick",
		Short: "Manage two-line quick transaction templates",
	}
	cmd.AddCommand(
		newQuickCreateCommand(a),
		newQuickSubmitCommand(a),
		&cobra.Command{
			Use:   "list",
			Short: "List quick templates",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				cid, err := a.scoped(cmd)
				if err != nil {
					return err
				}
				list, err := a.templates.ListQuick(cid)
				if err != nil {
					return err
				}
				keyOf, err := a.keyLookup(cid)
				if err != nil {
					return err
				}
				tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
				fmt.Fprintln(tw, "Name\tFrom\tCharge\tTo\tCharge")
				for _, q := range list {
					fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", q.Name, keyOf(q.AccountFromID), q.FromCharge, keyOf(q.AccountToID), q.ToCharge)
				}
				return tw.Flush()
			},
		},
		&cobra.Command{
			Use:   "delete NAME",
			Short: "Delete a quick template",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				cid, err := a.scoped(cmd)
				if err != nil {
					return err
				}
				q, err := a.templates.GetQuickByName(cid, args[0])
				if err != nil {
					return err
				}
				if err := a.templates.DeleteQuick(cid, q.ID); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Deleted quick template %q\n", q.Name)
				return nil
			},
		},
	)
	return cmd
}

func newQuickCreateCommand(a *app) *cobra.Command {
	var from, to, fromCharge, toCharge string

	cmd := &cobra.Command{
		Use:   "create NAME",
		Short: "Create a quick template; one unit through both sides must balance",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cid, err := a.scoped(cmd)
			if err != nil {
				return err
			}
			fromAcct, err := a.account(cid, from)
			if err != nil {
				return err
			}
			toAcct, err := a.account(cid, to)
			if err != nil {
				return err
			}
			fc, err := model.ParseChargeKind(fromCharge)
			if err != nil {
				return model.NewValidationError("from_charge", err.Error())
			}
			tc, err := model.ParseChargeKind(toCharge)
			if err != nil {
				return model.NewValidationError("to_charge", err.Error())
			}

			q, err := a.templates.CreateQuick(cid, model.QuickTransaction{
				Name:          args[0],
				AccountFromID: fromAcct.ID,
				FromCharge:    fc,
				AccountToID:   toAcct.ID,
				ToCharge:      tc,
			})
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Created quick template %q\n", q.Name)
			return nil
		},
	}

	cmd.Flags().StringVar(&from, "from", "", "first account key (required)")
	cmd.Flags().StringVar(&fromCharge, "from-charge", "debit", "debit or credit")
	cmd.Flags().StringVar(&to, "to", "", "second account key (required)")
	cmd.Flags().StringVar(&toCharge, "to-charge", "credit", "debit or credit")
	_ = cmd.MarkFlagRequired("from")
	_ = cmd.MarkFlagRequired("to")
	return cmd
}

func newQuickSubmitCommand(a *app) *cobra.Command {
	var date, notes string
	var preview bool

	cmd := &cobra.Command{
		Use:   "submit NAME AMOUNT",
		Short: "Post a transaction from a quick template",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cid, err := a.scoped(cmd)
			if err != nil {
				return err
			}
			q, err := a.templates.GetQuickByName(cid, args[0])
			if err != nil {
				return err
			}
			amount, err := parseAmount("amount", args[1])
			if err != nil {
				return err
			}
			d, err := parseDate(date)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if preview {
				from, to, err := a.templates.ExpandQuick(cid, q.ID, amount, d, notes)
				if err != nil {
					return err
				}
				keyOf, err := a.keyLookup(cid)
				if err != nil {
					return err
				}
				return display.WriteTransaction(out, a.money, model.Transaction{Date: d, Notes: notes, Details: []model.Detail{from, to}}, keyOf)
			}

			txn, err := a.templates.SubmitQuick(cid, q.ID, amount, d, notes)
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "Posted %s\n", id.FormatTransactionRef(txn.ID))
			return nil
		},
	}

	cmd.Flags().StringVar(&date, "date", "", "transaction date YYYY-MM-DD (default today)")
	cmd.Flags().StringVar(&notes, "notes", "", "notes for both lines")
	cmd.Flags().BoolVar(&preview, "preview", false, "print the expanded lines without posting")
	return cmd
}

func newRecurringCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "recurring",
		Short: "Manage reusable multi-line transaction templates",
	}

	var fromRef string
	create := &cobra.Command{
		Use:   "create NAME",
		Short: "Save a posted transaction as a recurring template",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cid, err := a.scoped(cmd)
			if err != nil {
				return err
			}
			txID, err := id.ParseTransactionRef(fromRef)
			if err != nil {
				return err
			}
			rec, err := a.templates.CreateRecurringFromTransaction(cid, txID, args[0])
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Created recurring template %q (id %d)\n", rec.Name, rec.ID)
			return nil
		},
	}
	create.Flags().StringVar(&fromRef, "from", "", "transaction reference to copy (required)")
	_ = create.MarkFlagRequired("from")

	var postDate string
	post := &cobra.Command{
		Use:   "post NAME",
		Short: "Post a transaction prefilled from a recurring template",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cid, err := a.scoped(cmd)
			if err != nil {
				return err
			}
			rec, err := a.recurring(cid, args[0])
			if err != nil {
				return err
			}
			d, err := parseDate(postDate)
			if err != nil {
				return err
			}
			txn, err := a.templates.PostRecurring(cid, rec.ID, d)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Posted %s\n", id.FormatTransactionRef(txn.ID))
			return nil
		},
	}
	post.Flags().StringVar(&postDate, "date", "", "transaction date YYYY-MM-DD (default today)")

	var editName, editNotes string
	var editLines []string
	edit := &cobra.Command{
		Use:   "edit NAME",
		Short: "Replace a recurring template's name, notes or lines",
		Long:  "Replace a recurring template's name, notes or lines.\n\n" + lineHelp,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cid, err := a.scoped(cmd)
			if err != nil {
				return err
			}
			rec, err := a.recurring(cid, args[0])
			if err != nil {
				return err
			}
			name, notes, lines := rec.Name, rec.Notes, rec.Lines()
			if cmd.Flags().Changed("name") {
				name = editName
			}
			if cmd.Flags().Changed("notes") {
				notes = editNotes
			}
			if len(editLines) > 0 {
				if lines, err = a.resolveLines(cid, editLines); err != nil {
					return err
				}
			}
			if _, err := a.templates.EditRecurring(cid, rec.ID, name, notes, lines); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Updated recurring template %q\n", name)
			return nil
		},
	}
	edit.Flags().StringVar(&editName, "name", "", "new name")
	edit.Flags().StringVar(&editNotes, "notes", "", "new notes")
	edit.Flags().StringArrayVar(&editLines, "line", nil, "ACCOUNT:DEBIT:CREDIT[:NOTES], repeatable")

	cmd.AddCommand(
		create,
		post,
		edit,
		&cobra.Command{
			Use:   "list",
			Short: "List recurring templates",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				cid, err := a.scoped(cmd)
				if err != nil {
					return err
				}
				list, err := a.templates.ListRecurring(cid)
				if err != nil {
					return err
				}
				tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
				fmt.Fprintln(tw, "ID\tName\tLines\tNotes")
				for _, r := range list {
					fmt.Fprintf(tw, "%d\t%s\t%d\t%s\n", r.ID, r.Name, len(r.Details), r.Notes)
				}
				return tw.Flush()
			},
		},
		&cobra.Command{
			Use:   "show NAME",
			Short: "Show the lines a recurring template prefills",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				cid, err := a.scoped(cmd)
				if err != nil {
					return err
				}
				rec, err := a.recurring(cid, args[0])
				if err != nil {
					return err
				}
				notes, lines, err := a.templates.Prefill(cid, rec.ID)
				if err != nil {
					return err
				}
				keyOf, err := a.keyLookup(cid)
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "%s  %s\n", rec.Name, notes)
				tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
				fmt.Fprintln(tw, "Account\tDebit\tCredit\tNotes")
				for _, l := range lines {
					fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", keyOf(l.AccountID), a.money.Amount(l.Debit), a.money.Amount(l.Credit), l.Notes)
				}
				return tw.Flush()
			},
		},
		&cobra.Command{
			Use:   "delete NAME",
			Short: "Delete a recurring template",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				cid, err := a.scoped(cmd)
				if err != nil {
					return err
				}
				rec, err := a.recurring(cid, args[0])
				if err != nil {
					return err
				}
				if err := a.templates.DeleteRecurring(cid, rec.ID); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Deleted recurring template %q\n", rec.Name)
				return nil
			},
		},
	)
	return cmd
}

// recurring finds a template by exact name, falling back to a numeric ID.
func (a *app) recurring(companyID int64, ref string) (model.RecurringTransaction, error) {
	list, err := a.templates.ListRecurring(companyID)
	if err != nil {
		return model.RecurringTransaction{}, err
	}
	for _, r := range list {
		if r.Name == ref {
			return r, nil
		}
	}
	if n, err := strconv.ParseInt(ref, 10, 64); err == nil {
		return a.templates.GetRecurring(companyID, n)
	}
	return model.RecurringTransaction{}, fmt.Errorf("recurring template %q: %w", ref, model.ErrNotFound)
}
