package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/Veraticus/churn/internal/cli"
	"github.com/Veraticus/churn/internal/common"
	"github.com/Veraticus/churn/internal/engine"
	"github.com/Veraticus/churn/internal/model"
	"github.com/Veraticus/churn/internal/ofx"
	"github.com/Veraticus/churn/internal/tui"
	"github.com/Veraticus/churn/internal/tui/themes"
	"github.com/spf13/cobra"
)

func predictCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "predict",
		Short: "Predict churn for one customer",
		Long: `Predict whether a customer is likely to leave the bank.

By default an interactive form is shown. Every field can be prefilled with a
flag of the same name, and the credit, debit, balance and last transaction
fields can be filled from a bank statement.

Examples:
  # Interactive form
  churn predict

  # Line-by-line prompts for plain terminals
  churn predict --plain

  # Score straight from flags
  churn predict --no-input --customer_id 42 --age 51 --vintage 120

  # Fill account activity from an OFX/QFX export
  churn predict --ofx ~/Downloads/checking.qfx

  # Fill account activity from a Plaid account
  churn predict --plaid-account acc_123`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runPredict(a, cmd)
		},
	}

	cmd.Flags().Bool("plain", false, "Prompt line by line instead of the interactive form")
	cmd.Flags().Bool("no-input", false, "Score the values given by flags without prompting")
	cmd.Flags().String("ofx", "", "OFX/QFX statement to fill account activity from")
	cmd.Flags().String("plaid-account", "", "Plaid account ID to fill account activity from")
	cmd.Flags().Bool("no-save", false, "Do not record predictions in the history database")
	cmd.Flags().Bool("details", false, "Show the derived features with each result")
	cmd.Flags().String("theme", "default", "Form theme (default, catppuccin-mocha)")
	cmd.MarkFlagsMutuallyExclusive("plain", "no-input")
	cmd.MarkFlagsMutuallyExclusive("ofx", "plaid-account")

	for _, field := range model.FormFields {
		usage := field.Label
		if hint := field.Hint(); hint != "" {
			usage += " (" + hint + ")"
		}
		cmd.Flags().String(field.Name, "", usage)
	}

	return cmd
}

func runPredict(a *app, cmd *cobra.Command) error {
	ctx := cmd.Context()
	plain, _ := cmd.Flags().GetBool("plain")
	noInput, _ := cmd.Flags().GetBool("no-input")
	ofxPath, _ := cmd.Flags().GetString("ofx")
	plaidAccount, _ := cmd.Flags().GetString("plaid-account")
	noSave, _ := cmd.Flags().GetBool("no-save")
	details, _ := cmd.Flags().GetBool("details")
	theme, _ := cmd.Flags().GetString("theme")

	values := model.DefaultValues(a.now())
	for _, field := range model.FormFields {
		if cmd.Flags().Changed(field.Name) {
			values[field.Name], _ = cmd.Flags().GetString(field.Name)
		}
	}

	source := model.SourceForm
	if noInput {
		source = model.SourceFlags
	}

	var notice string
	switch {
	case ofxPath != "":
		activity, err := a.ofxActivity(ctx, ofxPath)
		if err != nil {
			return err
		}
		activity.ApplyToValues(values)
		source = model.SourceOFX
		notice = fmt.Sprintf("Account activity from %s (%d transactions)", ofxPath, activity.Transactions)
	case plaidAccount != "":
		activity, err := a.plaidActivity(ctx, plaidAccount)
		if err != nil {
			return err
		}
		activity.ApplyToValues(values)
		source = model.SourcePlaid
		notice = fmt.Sprintf("Account activity from Plaid account %s (%d transactions)", plaidAccount, activity.Transactions)
	}

	var recorder engine.Recorder
	if !noSave {
		store, err := a.openStorage(ctx)
		if err != nil {
			return err
		}
		defer func() { _ = store.Close() }()
		recorder = store
	}

	predictor, err := a.newPredictor(recorder)
	if err != nil {
		return err
	}

	switch {
	case noInput:
		return a.predictOnce(ctx, predictor, values, source, details)
	case plain:
		return a.predictPlain(ctx, predictor, values, source, details)
	}

	predictions, err := tui.Run(ctx, a.in, a.out,
		tui.WithPredictor(predictor),
		tui.WithDefaults(values),
		tui.WithSource(source),
		tui.WithNotice(notice),
		tui.WithDetails(details),
		tui.WithTheme(themes.GetTheme(theme)),
	)
	if err != nil {
		return err
	}
	a.logger.Info("Prediction session finished", "predictions", len(predictions))
	return nil
}

func (a *app) predictOnce(ctx context.Context, predictor *engine.Predictor, values map[string]string, source model.Source, details bool) error {
	raw, err := model.ParseRawRecord(values)
	if err != nil {
		return common.NewUserError("invalid customer record", err)
	}

	prediction, err := predictor.Predict(ctx, raw, source)
	if err != nil {
		return common.NewUserError("prediction failed", err)
	}

	_, err = fmt.Fprintln(a.out, cli.RenderPrediction(prediction, details))
	return err
}

// predictPlain prompts for customers until the user declines another one.
// Each new form starts from the previous customer's answers.
func (a *app) predictPlain(ctx context.Context, predictor *engine.Predictor, values map[string]string, source model.Source, details bool) error {
	prompter := cli.NewFormPrompter(a.in, a.out)
	if _, err := fmt.Fprintln(a.out, cli.FormatTitle("Customer Churn Prediction")); err != nil {
		return err
	}

	for {
		raw, err := prompter.Prompt(ctx, values)
		if err != nil {
			return err
		}

		prediction, err := predictor.Predict(ctx, raw, source)
		if err != nil {
			common.LogError(err, "Prediction failed", common.Fields{"customer_id": raw.CustomerID, "source": source})
			if _, werr := fmt.Fprintln(a.out, cli.FormatError(err.Error())); werr != nil {
				return werr
			}
		} else if _, err := fmt.Fprintln(a.out, cli.RenderPrediction(prediction, details)); err != nil {
			return err
		}
		values = raw.Values()

		again, err := prompter.Confirm(ctx, "Score another customer?")
		if err != nil || !again {
			return err
		}
	}
}

func (a *app) ofxActivity(ctx context.Context, path string) (model.Activity, error) {
	f, err := os.Open(path)
	if err != nil {
		return model.Activity{}, fmt.Errorf("failed to open OFX file: %w", err)
	}
	defer func() { _ = f.Close() }()

	stmt, err := ofx.NewParser(a.logger).ParseStatement(ctx, f)
	if err != nil {
		return model.Activity{}, common.NewUserError("failed to read statement "+path, err)
	}

	asOf := stmt.BalanceAsOf
	if asOf.IsZero() {
		asOf = a.now()
	}
	a.logger.Debug("Parsed OFX statement",
		"account", stmt.AccountID,
		"transactions", len(stmt.Transactions),
		"as_of", asOf.Format(time.DateOnly))
	return stmt.Summarize(asOf), nil
}

// plaidActivity fetches the current and previous calendar month of activity.
func (a *app) plaidActivity(ctx context.Context, accountID string) (model.Activity, error) {
	fetcher, err := a.newFetcher(a.cfg.Plaid, a.logger)
	if err != nil {
		return model.Activity{}, common.NewUserError("failed to configure Plaid", err)
	}

	end := a.now()
	start := time.Date(end.Year(), end.Month(), 1, 0, 0, 0, 0, end.Location()).AddDate(0, -1, 0)
	stmt, err := fetcher.GetStatement(ctx, accountID, start, end)
	if err != nil {
		return model.Activity{}, fmt.Errorf("failed to fetch Plaid activity: %w", err)
	}
	return stmt.Summarize(end), nil
}
