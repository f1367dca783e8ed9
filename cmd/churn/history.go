package main

import (
	"fmt"
	"path/filepath"

	"github.com/Veraticus/churn/internal/cli"
	"github.com/Veraticus/churn/internal/common"
	"github.com/Veraticus/churn/internal/storage"
	"github.com/spf13/cobra"
)

func historyCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recorded predictions",
		Long: `List predictions recorded by predict and score, newest first, followed
by a summary of the same period.

--since accepts a date (2024-05-01), a day count (30d) or a duration (12h).`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runHistory(a, cmd)
		},
	}

	cmd.Flags().Int64("customer", 0, "Only show this customer ID")
	cmd.Flags().String("since", "", "Only show predictions made since")
	cmd.Flags().Int("limit", 20, "Maximum predictions to list (0 for all)")

	cmd.AddCommand(historyPruneCmd(a))
	cmd.AddCommand(historyBackupCmd(a))

	return cmd
}

func runHistory(a *app, cmd *cobra.Command) error {
	ctx := cmd.Context()
	since, _ := cmd.Flags().GetString("since")
	limit, _ := cmd.Flags().GetInt("limit")

	filter := storage.PredictionFilter{Limit: limit}
	if cmd.Flags().Changed("customer") {
		id, _ := cmd.Flags().GetInt64("customer")
		filter.CustomerID = &id
	}
	sinceTime, err := parseSince(since, a.now())
	if err != nil {
		return err
	}
	filter.Since = sinceTime

	store, err := a.openStorage(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	predictions, err := store.ListPredictions(ctx, filter)
	if err != nil {
		return fmt.Errorf("failed to list predictions: %w", err)
	}
	if len(predictions) == 0 {
		_, err := fmt.Fprintln(a.out, cli.FormatInfo("No predictions found"))
		return err
	}

	if err := cli.WritePredictionTable(a.out, predictions); err != nil {
		return err
	}

	summary, err := store.SummarizePredictions(ctx, sinceTime)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(a.out, "\n"+cli.RenderSummary(summary))
	return err
}

func historyPruneCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "prune",
		Short: "Delete old predictions",
		Long: `Delete predictions made before a point in time.

--before accepts a date (2024-01-01), a day count (90d) or a duration (720h).`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			before, _ := cmd.Flags().GetString("before")

			cutoff, err := parseSince(before, a.now())
			if err != nil {
				return err
			}
			if cutoff.IsZero() {
				return common.NewUserError("--before is required", common.ErrMissingField)
			}

			store, err := a.openStorage(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			noBackup, _ := cmd.Flags().GetBool("no-backup")
			if !noBackup {
				backup, err := store.AutoBackup(ctx, a.backupDir(), "prune", a.now())
				if err != nil {
					return err
				}
				a.logger.Info("Backed up prediction history", "path", backup.Path, "predictions", backup.Predictions)
			}

			n, err := store.DeletePredictionsBefore(ctx, cutoff)
			if err != nil {
				return err
			}
			a.logger.Info("Pruned prediction history", "before", cutoff, "deleted", n)
			_, err = fmt.Fprintln(a.out, cli.FormatSuccess(fmt.Sprintf("Deleted %d predictions", n)))
			return err
		},
	}

	cmd.Flags().String("before", "", "Delete predictions made before this time")
	cmd.Flags().Bool("no-backup", false, "Do not back up the history before deleting")
	_ = cmd.MarkFlagRequired("before")

	return cmd
}

func historyBackupCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "backup [PATH]",
		Short: "Back up the prediction history",
		Long: `Write a verified copy of the prediction history database.

Without PATH the copy is written to the backups directory next to the
database. prune makes an automatic backup there first and keeps the
newest few.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			now := a.now()

			dest := filepath.Join(a.backupDir(), "churn-"+now.UTC().Format("20060102-150405")+".db")
			if len(args) == 1 {
				dest = args[0]
			}

			store, err := a.openStorage(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			backup, err := store.BackupTo(ctx, dest, now)
			if err != nil {
				return fmt.Errorf("backup failed: %w", err)
			}
			_, err = fmt.Fprintln(a.out, cli.FormatSuccess(fmt.Sprintf("Backed up %d predictions to %s", backup.Predictions, backup.Path)))
			return err
		},
	}
}
