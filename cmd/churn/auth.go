package main

import (
	"fmt"

	"github.com/Veraticus/churn/internal/cli"
	"github.com/Veraticus/churn/internal/common"
	"github.com/Veraticus/churn/internal/sheets"
	"github.com/spf13/cobra"
	"golang.org/x/oauth2"
)

func authCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "auth",
		Short: "Authenticate with external services",
		Long:  `Authenticate with external services like Google Sheets.`,
	}

	cmd.AddCommand(authSheetsCmd(a))

	return cmd
}

func authSheetsCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sheets",
		Short: "Authorize churn to write Google Sheets reports",
		Long: `Run the Google OAuth2 flow and save the refresh token used by
'churn export'.

This command will:
1. Start a local callback server
2. Print a URL to open in your browser
3. Save the token to sheets.token_file once you approve access

Requires sheets.client_id and sheets.client_secret (or GOOGLE_SHEETS_CLIENT_ID
and GOOGLE_SHEETS_CLIENT_SECRET).`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			force, _ := cmd.Flags().GetBool("force")
			addr, _ := cmd.Flags().GetString("callback")

			oauthCfg := a.cfg.Sheets.OAuth2()
			oauthCfg.CallbackAddr = addr
			oauthCfg.Out = a.out
			if oauthCfg.ClientID == "" || oauthCfg.ClientSecret == "" {
				return common.NewUserError("Google OAuth client ID and secret are required", common.ErrMissingConfig)
			}

			var (
				token *oauth2.Token
				err   error
			)
			if force {
				token, err = sheets.AuthenticateOAuth2Interactive(ctx, oauthCfg)
			} else {
				token, err = sheets.GetOrCreateToken(ctx, oauthCfg)
			}
			if err != nil {
				return fmt.Errorf("google sheets authentication failed: %w", err)
			}
			if token.RefreshToken == "" {
				return common.NewUserError("Google did not return a refresh token; run again with --force", common.ErrMissingConfig)
			}

			_, err = fmt.Fprintln(a.out, cli.FormatSuccess("Google Sheets authorized; token stored in "+oauthCfg.TokenFile))
			return err
		},
	}

	cmd.Flags().Bool("force", false, "Re-run authorization even if a token is saved")
	cmd.Flags().String("callback", "localhost:8080", "Address of the local OAuth callback server")

	return cmd
}
