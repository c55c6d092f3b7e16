package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"budget/internal/ledger"
)

type periodFlags struct {
	user  string
	year  int
	month int
}

func (f *periodFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.user, "user", "", "user email or id")
	cmd.Flags().IntVar(&f.year, "year", 0, "calendar year")
	cmd.Flags().IntVar(&f.month, "month", 0, "calendar month (1-12)")
	for _, name := range []string{"user", "year", "month"} {
		_ = cmd.MarkFlagRequired(name)
	}
}

func newSummaryCmd(opts *options) *cobra.Command {
	var flags periodFlags

	cmd := &cobra.Command{
		Use:   "summary",
		Short: "Print salary, total expenses and balance for one month",
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
			summary, err := ledger.NewService(store.Ledger, nil).Summarize(ctx, u.ID, flags.year, flags.month)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Period:         %04d-%02d\n", flags.year, flags.month)
			fmt.Fprintf(out, "Salary:         %s\n", summary.Salary)
			fmt.Fprintf(out, "Total expenses: %s\n", summary.TotalExpenses)
			fmt.Fprintf(out, "Balance:        %s\n", summary.Balance)
			return nil
		},
	}
	flags.register(cmd)
	return cmd
}
