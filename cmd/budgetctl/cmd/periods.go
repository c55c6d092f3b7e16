package cmd

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"budget/internal/ledger"
)

func newPeriodsCmd(opts *options) *cobra.Command {
	var user string

	cmd := &cobra.Command{
		Use:   "periods",
		Short: "List a user's months with their salary",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			_, store, err := opts.openBackend(ctx)
			if err != nil {
				return err
			}
			defer store.Close()

			u, err := resolveUser(ctx, store.Users, user)
			if err != nil {
				return err
			}
			periods, err := ledger.NewService(store.Ledger, nil).ListPeriods(ctx, u.ID)
			if err != nil {
				return err
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "PERIOD\tSALARY")
			for _, p := range periods {
				fmt.Fprintf(tw, "%04d-%02d\t%s\n", p.Year, p.Month, p.Salary)
			}
			return tw.Flush()
		},
	}
	cmd.Flags().StringVar(&user, "user", "", "user email or id")
	_ = cmd.MarkFlagRequired("user")
	return cmd
}
