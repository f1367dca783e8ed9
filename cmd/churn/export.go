package main

import (
	"fmt"

	"github.com/Veraticus/churn/internal/cli"
	"github.com/Veraticus/churn/internal/common"
	"github.com/Veraticus/churn/internal/storage"
	"github.com/spf13/cobra"
)

func exportCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export recorded predictions to Google Sheets",
		Long: `Write a churn risk report to Google Sheets: a summary, a breakdown by
source, and every prediction in the period.

Authenticate first with 'churn auth sheets' or configure a service account
(sheets.service_account_path or GOOGLE_SHEETS_SERVICE_ACCOUNT_PATH).`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			since, _ := cmd.Flags().GetString("since")
			limit, _ := cmd.Flags().GetInt("limit")

			sinceTime, err := parseSince(since, a.now())
			if err != nil {
				return err
			}

			sheetsCfg, err := a.cfg.Sheets.Writer()
			if err != nil {
				return common.NewUserError("Google Sheets is not configured; run 'churn auth sheets'", err)
			}

			store, err := a.openStorage(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			predictions, err := store.ListPredictions(ctx, storage.PredictionFilter{Since: sinceTime, Limit: limit})
			if err != nil {
				return fmt.Errorf("failed to list predictions: %w", err)
			}
			summary, err := store.SummarizePredictions(ctx, sinceTime)
			if err != nil {
				return err
			}

			writer, err := a.newReportWriter(ctx, sheetsCfg, a.logger)
			if err != nil {
				return fmt.Errorf("failed to create sheets writer: %w", err)
			}
			if err := writer.Write(ctx, predictions, summary); err != nil {
				return fmt.Errorf("failed to export report: %w", err)
			}

			_, err = fmt.Fprintln(a.out, cli.FormatSuccess(fmt.Sprintf("Exported %d predictions to %q", len(predictions), sheetsCfg.SpreadsheetName)))
			return err
		},
	}

	cmd.Flags().String("since", "", "Only export predictions made since (date, 30d, or 12h)")
	cmd.Flags().Int("limit", 0, "Maximum predictions to export (0 for all)")

	return cmd
}
