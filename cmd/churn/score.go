package main

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/Veraticus/churn/internal/cli"
	"github.com/Veraticus/churn/internal/common"
	"github.com/Veraticus/churn/internal/engine"
	"github.com/Veraticus/churn/internal/model"
	"github.com/spf13/cobra"
)

func scoreCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "score FILE.csv",
		Short: "Score every customer in a CSV file",
		Long: `Score a CSV file of customers. The header must name every raw field
(customer_id, vintage, age, ... last_transaction); extra columns are ignored.

Rows that cannot be parsed or scored are reported and skipped.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runScore(a, cmd, args[0])
		},
	}

	cmd.Flags().StringP("output", "o", "", "Write results to this CSV file")
	cmd.Flags().Bool("no-save", false, "Do not record predictions in the history database")
	cmd.Flags().Bool("quiet", false, "Hide the progress bar and results table")

	return cmd
}

func runScore(a *app, cmd *cobra.Command, path string) error {
	ctx := cmd.Context()
	output, _ := cmd.Flags().GetString("output")
	noSave, _ := cmd.Flags().GetBool("no-save")
	quiet, _ := cmd.Flags().GetBool("quiet")

	raws, rowNumbers, parseFailures, err := readCustomers(path)
	if err != nil {
		return err
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

	var progress engine.ProgressFunc
	if !quiet && len(raws) > 0 {
		progress = cli.ProgressReporter(cli.NewProgressBar(a.errOut, len(raws), "Scoring customers"))
	}

	result, err := predictor.PredictBatch(ctx, raws, model.SourceBatch, progress)
	if err != nil {
		return fmt.Errorf("batch scoring stopped: %w", err)
	}

	for _, f := range result.Failures {
		parseFailures = append(parseFailures, rowFailure{
			line: rowNumbers[f.Index],
			err:  f.Err,
		})
	}

	if output != "" {
		if err := writeResults(output, result.Predictions); err != nil {
			return err
		}
		a.logger.Info("Wrote results", "path", output, "rows", len(result.Predictions))
	}

	if !quiet {
		if err := cli.WritePredictionTable(a.out, result.Predictions); err != nil {
			return err
		}
	}

	churned := 0
	for _, p := range result.Predictions {
		if p.Churn {
			churned++
		}
	}
	summary := fmt.Sprintf("Scored %d customers: %d at high risk", len(result.Predictions), churned)
	if _, err := fmt.Fprintln(a.out, cli.FormatSuccess(summary)); err != nil {
		return err
	}

	for _, f := range parseFailures {
		common.LogDebug("Row could not be scored", common.Fields{"file": path, "line": f.line, "error": f.err})
		if _, err := fmt.Fprintln(a.errOut, cli.FormatWarning(fmt.Sprintf("line %d: %v", f.line, f.err))); err != nil {
			return err
		}
	}
	if len(parseFailures) > 0 {
		return common.NewUserError(fmt.Sprintf("%d rows could not be scored", len(parseFailures)), common.ErrInvalidData)
	}
	return nil
}

type rowFailure struct {
	err  error
	line int
}

// readCustomers parses every data row of a customers CSV. Rows that fail to
// parse are returned as failures; rowNumbers maps each parsed record to its
// line in the file.
func readCustomers(path string) ([]model.RawRecord, []int, []rowFailure, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer func() { _ = f.Close() }()

	r := csv.NewReader(f)
	r.TrimLeadingSpace = true
	header, err := r.Read()
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to read CSV header: %w", err)
	}
	for i := range header {
		header[i] = strings.TrimSpace(strings.TrimPrefix(header[i], "\ufeff"))
	}

	var missing []string
	for _, field := range model.RawFields {
		if !slices.Contains(header, field) {
			missing = append(missing, field)
		}
	}
	if len(missing) > 0 {
		return nil, nil, nil, fmt.Errorf("%w: CSV header lacks %s", common.ErrMissingField, strings.Join(missing, ", "))
	}

	var (
		raws       []model.RawRecord
		rowNumbers []int
		failures   []rowFailure
	)
	for line := 2; ; line++ {
		record, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			failures = append(failures, rowFailure{line: line, err: err})
			continue
		}

		values := make(map[string]string, len(header))
		for i, name := range header {
			if i < len(record) {
				values[name] = record[i]
			}
		}
		raw, err := model.ParseRawRecord(values)
		if err != nil {
			failures = append(failures, rowFailure{line: line, err: err})
			continue
		}
		raws = append(raws, raw)
		rowNumbers = append(rowNumbers, line)
	}

	return raws, rowNumbers, failures, nil
}

var resultHeader = []string{"id", "customer_id", "probability", "threshold", "churn", "label", "created_at"}

func writeResults(path string, predictions []*model.Prediction) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}

	w := csv.NewWriter(f)
	if err := w.Write(resultHeader); err != nil {
		_ = f.Close()
		return fmt.Errorf("failed to write results: %w", err)
	}
	for _, p := range predictions {
		if err := w.Write([]string{
			p.ID,
			strconv.FormatInt(p.CustomerID, 10),
			strconv.FormatFloat(p.Probability, 'f', 6, 64),
			strconv.FormatFloat(p.Threshold, 'f', -1, 64),
			strconv.FormatBool(p.Churn),
			string(p.Label),
			p.CreatedAt.Format(time.RFC3339),
		}); err != nil {
			_ = f.Close()
			return fmt.Errorf("failed to write results: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		_ = f.Close()
		return fmt.Errorf("failed to write results: %w", err)
	}
	return f.Close()
}
