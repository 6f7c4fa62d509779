package commands

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/cleared-dev/ledger/internal/importer"
)

func newImportCommand(a *app) *cobra.Command {
	var format, deposit, withdrawal string
	var keep bool

	cmd := &cobra.Command{
		Use:   "import [FILE...]",
		Short: "Post bank CSV rows through the deposit and withdrawal quick templates",
		Long: `Post bank CSV rows through quick templates: money in uses the deposit
template, money out the withdrawal template with the absolute amount.
Without arguments every CSV in the configured import directory is posted
and then moved to its processed/ subdirectory.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cid, err := a.scoped(cmd)
			if err != nil {
				return err
			}
			imp := a.cfg.Import
			if cmd.Flags().Changed("format") {
				imp.Format = format
			}
			if cmd.Flags().Changed("deposit") {
				imp.DepositTemplate = deposit
			}
			if cmd.Flags().Changed("withdrawal") {
				imp.WithdrawalTemplate = withdrawal
			}

			parser := importer.DefaultRegistry().Get(imp.Format)
			if parser == nil {
				return fmt.Errorf("unknown import format %q", imp.Format)
			}
			if imp.DepositTemplate == "" || imp.WithdrawalTemplate == "" {
				return fmt.Errorf("deposit and withdrawal templates are required (flags or import section of %s)", a.configPath)
			}
			dep, err := a.templates.GetQuickByName(cid, imp.DepositTemplate)
			if err != nil {
				return fmt.Errorf("deposit template: %w", err)
			}
			wd, err := a.templates.GetQuickByName(cid, imp.WithdrawalTemplate)
			if err != nil {
				return fmt.Errorf("withdrawal template: %w", err)
			}
			poster := &importer.Poster{
				Submitter:    a.templates,
				CompanyID:    cid,
				DepositID:    dep.ID,
				WithdrawalID: wd.ID,
				Logger:       a.logger,
			}

			dir := a.relative(imp.Dir)
			files := args
			scanned := len(args) == 0
			if scanned {
				found, err := importer.Scan(dir)
				if err != nil {
					return err
				}
				for _, f := range found {
					files = append(files, f.Path)
				}
			}

			out := cmd.OutOrStdout()
			if len(files) == 0 {
				fmt.Fprintf(out, "No CSV files in %s\n", dir)
				return nil
			}
			for _, path := range files {
				res, err := postFile(parser, poster, path)
				if err != nil {
					return err
				}
				fmt.Fprintf(out, "%s: posted %d, skipped %d\n", path, len(res.Posted), res.Skipped)
				a.logger.Info("bank file imported", zap.String("file", path), zap.Int("posted", len(res.Posted)))
				if scanned && !keep {
					if err := importer.MarkProcessed(dir, filepath.Base(path)); err != nil {
						return err
					}
				}
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&format, "format", "", "bank export format (default from config)")
	cmd.Flags().StringVar(&deposit, "deposit", "", "quick template for money in")
	cmd.Flags().StringVar(&withdrawal, "withdrawal", "", "quick template for money out")
	cmd.Flags().BoolVar(&keep, "keep", false, "leave scanned files in the import directory")
	return cmd
}

func postFile(parser importer.Parser, poster *importer.Poster, path string) (importer.Result, error) {
	f, err := os.Open(path)
	if err != nil {
		return importer.Result{}, err
	}
	defer f.Close()

	rows, err := parser.Parse(f)
	if err != nil {
		return importer.Result{}, fmt.Errorf("%s: %w", path, err)
	}
	res, err := poster.Post(rows)
	if err != nil {
		return res, fmt.Errorf("%s: %w", path, err)
	}
	return res, nil
}
