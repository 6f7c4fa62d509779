package commands

import (
	"fmt"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/cleared-dev/ledger/internal/model"
)

func newAttributeCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "attribute",
		Short: "Define custom attributes and tag transaction lines with them",
	}

	var kind string
	var choices []string
	create := &cobra.Command{
		Use:   "create NAME",
		Short: "Define an attribute",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cid, err := a.scoped(cmd)
			if err != nil {
				return err
			}
			k, err := model.ParseAttributeKind(kind)
			if err != nil {
				return model.NewValidationError("kind", err.Error())
			}
			attr, err := a.attributes.Create(cid, args[0], k, choices)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Created attribute %q (id %d)\n", attr.Name, attr.ID)
			return nil
		},
	}
	create.Flags().StringVar(&kind, "kind", "text", "text, number, date, choice or array")
	create.Flags().StringSliceVar(&choices, "choice", nil, "allowed value for a choice attribute, repeatable")

	cmd.AddCommand(
		create,
		&cobra.Command{
			Use:   "list",
			Short: "List attributes",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				cid, err := a.scoped(cmd)
				if err != nil {
					return err
				}
				attrs, err := a.attributes.List(cid)
				if err != nil {
					return err
				}
				tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
				fmt.Fprintln(tw, "ID\tName\tKind\tChoices")
				for _, at := range attrs {
					fmt.Fprintf(tw, "%d\t%s\t%s\t%s\n", at.ID, at.Name, at.Kind, strings.Join(at.Choices(), ", "))
				}
				return tw.Flush()
			},
		},
		&cobra.Command{
			Use:   "set DETAIL_ID ATTRIBUTE VALUE",
			Short: "Set an attribute value on a transaction line",
			Args:  cobra.ExactArgs(3),
			RunE: func(cmd *cobra.Command, args []string) error {
				cid, err := a.scoped(cmd)
				if err != nil {
					return err
				}
				detailID, err := strconv.ParseInt(args[0], 10, 64)
				if err != nil {
					return model.NewValidationError("detail", fmt.Sprintf("%q is not a detail id", args[0]))
				}
				attr, err := a.attribute(cid, args[1])
				if err != nil {
					return err
				}
				if err := a.attributes.Set(cid, detailID, attr.ID, args[2]); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Set %s on detail %d\n", attr.Name, detailID)
				return nil
			},
		},
		&cobra.Command{
			Use:   "show DETAIL_ID",
			Short: "Show the attribute values of a transaction line",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				cid, err := a.scoped(cmd)
				if err != nil {
					return err
				}
				detailID, err := strconv.ParseInt(args[0], 10, 64)
				if err != nil {
					return model.NewValidationError("detail", fmt.Sprintf("%q is not a detail id", args[0]))
				}
				values, err := a.attributes.Values(cid, detailID)
				if err != nil {
					return err
				}
				attrs, err := a.attributes.List(cid)
				if err != nil {
					return err
				}
				names := make(map[int64]string, len(attrs))
				for _, at := range attrs {
					names[at.ID] = at.Name
				}
				tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
				fmt.Fprintln(tw, "Attribute\tValue")
				for _, v := range values {
					fmt.Fprintf(tw, "%s\t%s\n", names[v.AttributeID], v.Value)
				}
				return tw.Flush()
			},
		},
	)
	return cmd
}

// attribute finds an attribute by name or numeric ID.
func (a *app) attribute(companyID int64, ref string) (model.Attribute, error) {
	attrs, err := a.attributes.List(companyID)
	if err != nil {
		return model.Attribute{}, err
	}
	n, _ := strconv.ParseInt(ref, 10, 64)
	for _, at := range attrs {
		if at.Name == ref {
			return at, nil
		}
	}
	for _, at := range attrs {
		if n > 0 && at.ID == n {
			return at, nil
		}
	}
	return model.Attribute{}, fmt.Errorf("attribute %q: %w", ref, model.ErrNotFound)
}
