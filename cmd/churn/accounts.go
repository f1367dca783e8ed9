package main

import (
	"fmt"

	"github.com/Veraticus/churn/internal/cli"
	"github.com/Veraticus/churn/internal/common"
	"github.com/spf13/cobra"
)

func accountsCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "accounts",
		Short: "List Plaid accounts",
		Long: `List the account IDs reachable with the configured Plaid access token.
Use one with 'churn predict --plaid-account ID'.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			fetcher, err := a.newFetcher(a.cfg.Plaid, a.logger)
			if err != nil {
				return common.NewUserError("failed to configure Plaid", err)
			}

			ids, err := fetcher.GetAccounts(cmd.Context())
			if err != nil {
				return fmt.Errorf("failed to list Plaid accounts: %w", err)
			}
			if len(ids) == 0 {
				_, err := fmt.Fprintln(a.out, cli.FormatInfo("No accounts linked to this access token"))
				return err
			}

			if _, err := fmt.Fprintln(a.out, cli.FormatTitle("Plaid Accounts")); err != nil {
				return err
			}
			for _, id := range ids {
				if _, err := fmt.Fprintln(a.out, "  "+id); err != nil {
					return err
				}
			}
			return nil
		},
	}
}
