package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"budget/internal/export"
	"budget/internal/ledger"
)

func newExportCmd(opts *options) *cobra.Command {
	var (
		flags periodFlags
		out   string
	)

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write one month to an xlsx workbook",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			_, store, err := opts.openBackend(ctx)
			if err != nil {
				return err
			}
			defer store.Close()

			u, err := resolveUser(ctx, store.Users, flags.user)
			if err != nil {
				return err
			}
			svc := ledger.NewService(store.Ledger, nil)
			expenses, err := svc.ListExpenses(ctx, u.ID, flags.year, flags.month)
			if err != nil {
				return err
			}
			summary, err := svc.Summarize(ctx, u.ID, flags.year, flags.month)
			if err != nil {
				return err
			}

			if out == "" {
				out = export.Filename(flags.year, flags.month)
			}
			f, err := os.Create(out)
			if err != nil {
				return fmt.Errorf("create %s: %w", out, err)
			}
			if err := export.Write(f, flags.year, flags.month, expenses, summary); err != nil {
				f.Close()
				return err
			}
			if err := f.Close(); err != nil {
				return fmt.Errorf("close %s: %w", out, err)
			}

			opts.logger.Info("Exported period", "user_id", u.ID, "year", flags.year, "month", flags.month, "expenses", len(expenses))
			fmt.Fprintln(cmd.OutOrStdout(), out)
			return nil
		},
	}
	flags.register(cmd)
	cmd.Flags().StringVar(&out, "out", "", "output file (default budget_YYYY_MM.xlsx)")
	return cmd
}
