package sheets

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"sort"

	"github.com/Veraticus/churn/internal/model"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"
)

// ReportWriter writes a churn risk report somewhere.
type ReportWriter interface {
	Write(ctx context.Context, predictions []*model.Prediction, summary model.PredictionSummary) error
}

// Writer implements ReportWriter for Google Sheets.
type Writer struct {
	service *sheets.Service
	logger  *slog.Logger
	config  Config
}

const predictionColumnCount = 8

// NewWriter creates a new Google Sheets report writer.
func NewWriter(ctx context.Context, config Config, logger *slog.Logger) (*Writer, error) {
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	service, err := createSheetsService(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("failed to create sheets service: %w", err)
	}

	return &Writer{
		config:  config,
		service: service,
		logger:  logger,
	}, nil
}

// Write replaces the sheet contents with the report. Each API call is made
// once; a failed call aborts the export.
func (w *Writer) Write(ctx context.Context, predictions []*model.Prediction, summary model.PredictionSummary) error {
	w.logger.Info("starting report generation",
		"predictions", len(predictions),
		"since", summary.Since.Format("2006-01-02"))

	spreadsheetID, err := w.getOrCreateSpreadsheet(ctx)
	if err != nil {
		return fmt.Errorf("failed to get spreadsheet: %w", err)
	}

	if clearErr := w.clearSheet(ctx, spreadsheetID); clearErr != nil {
		return fmt.Errorf("failed to clear sheet: %w", clearErr)
	}

	values := prepareReportData(predictions, summary)

	if err := w.writeData(ctx, spreadsheetID, values); err != nil {
		return fmt.Errorf("failed to write data: %w", err)
	}

	if w.config.EnableFormatting {
		firstPredictionRow := len(values) - len(predictions)
		if err := w.applyFormatting(ctx, spreadsheetID, firstPredictionRow, len(values)); err != nil {
			// Formatting is cosmetic; the data is already written.
			w.logger.Warn("failed to apply formatting", "error", err)
		}
	}

	w.logger.Info("report generation completed",
		"spreadsheet_id", spreadsheetID,
		"rows_written", len(values))

	return nil
}

// createSheetsService creates a Google Sheets API service.
func createSheetsService(ctx context.Context, config Config) (*sheets.Service, error) {
	var tokenSource oauth2.TokenSource

	if config.ServiceAccountPath != "" {
		jsonKey, err := os.ReadFile(config.ServiceAccountPath)
		if err != nil {
			return nil, fmt.Errorf("unable to read service account key file: %w", err)
		}

		jwtConfig, err := google.JWTConfigFromJSON(jsonKey, sheets.SpreadsheetsScope)
		if err != nil {
			return nil, fmt.Errorf("unable to parse service account key: %w", err)
		}

		tokenSource = jwtConfig.TokenSource(ctx)
	} else {
		client := newOAuthConfig(config.ClientID, config.ClientSecret, "")
		token := &oauth2.Token{
			RefreshToken: config.RefreshToken,
			TokenType:    "Bearer",
		}
		tokenSource = client.TokenSource(ctx, token)
	}

	httpClient := oauth2.NewClient(ctx, tokenSource)
	srv, err := sheets.NewService(ctx, option.WithHTTPClient(httpClient))
	if err != nil {
		return nil, fmt.Errorf("unable to create sheets service: %w", err)
	}

	return srv, nil
}

// getOrCreateSpreadsheet gets an existing spreadsheet or creates a new one.
func (w *Writer) getOrCreateSpreadsheet(ctx context.Context) (string, error) {
	if w.config.SpreadsheetID != "" {
		_, err := w.service.Spreadsheets.Get(w.config.SpreadsheetID).Context(ctx).Do()
		if err != nil {
			return "", fmt.Errorf("unable to access spreadsheet %s: %w", w.config.SpreadsheetID, err)
		}
		return w.config.SpreadsheetID, nil
	}

	spreadsheet := &sheets.Spreadsheet{
		Properties: &sheets.SpreadsheetProperties{
			Title:    w.config.SpreadsheetName,
			TimeZone: w.config.TimeZone,
		},
		Sheets: []*sheets.Sheet{
			{
				Properties: &sheets.SheetProperties{
					Title: "Predictions",
				},
			},
		},
	}

	created, err := w.service.Spreadsheets.Create(spreadsheet).Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("unable to create spreadsheet: %w", err)
	}

	w.logger.Info("created new spreadsheet",
		"id", created.SpreadsheetId,
		"url", created.SpreadsheetUrl)

	return created.SpreadsheetId, nil
}

// clearSheet clears all data from the sheet.
func (w *Writer) clearSheet(ctx context.Context, spreadsheetID string) error {
	_, err := w.service.Spreadsheets.Values.Clear(spreadsheetID, "A:Z", &sheets.ClearValuesRequest{}).Context(ctx).Do()
	return err
}

// prepareReportData lays out the summary, a per-source breakdown and the
// prediction rows (highest probability first).
func prepareReportData(predictions []*model.Prediction, summary model.PredictionSummary) [][]any {
	sources := summarizeBySource(predictions)
	values := make([][]any, 0, 12+len(sources)+len(predictions))

	period := summary.Since.Format("Jan 2, 2006") + " onwards"
	if !summary.Until.IsZero() {
		period = fmt.Sprintf("%s - %s", summary.Since.Format("Jan 2, 2006"), summary.Until.Format("Jan 2, 2006"))
	}

	values = append(values,
		[]any{"Churn Risk Report", period},
		[]any{}, // Empty row
		[]any{"Summary"},
		[]any{"Total Predictions", summary.Total},
		[]any{"Likely to Churn", summary.ChurnCount},
		[]any{"Churn Rate", summary.ChurnRate()},
		[]any{"Mean Probability", summary.MeanProbability},
		[]any{}, // Empty row
		[]any{"By Source"},
		[]any{"Source", "Predictions", "Likely to Churn"},
	)

	for _, s := range sources {
		values = append(values, []any{s.Source, s.Total, s.ChurnCount})
	}

	values = append(values,
		[]any{}, // Empty row
		[]any{"Predictions"},
		[]any{"Scored At", "Customer", "Probability", "Threshold", "Churn", "Assessment", "Source", "ID"},
	)

	sorted := append([]*model.Prediction(nil), predictions...)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Probability > sorted[j].Probability
	})
	for _, p := range sorted {
		values = append(values, NewPredictionRow(p).Values())
	}

	return values
}

// summarizeBySource counts predictions per source, ordered by source name.
func summarizeBySource(predictions []*model.Prediction) []SourceSummaryRow {
	bySource := make(map[string]*SourceSummaryRow)
	for _, p := range predictions {
		row, ok := bySource[string(p.Source)]
		if !ok {
			row = &SourceSummaryRow{Source: string(p.Source)}
			bySource[string(p.Source)] = row
		}
		row.Total++
		if p.Churn {
			row.ChurnCount++
		}
	}

	rows := make([]SourceSummaryRow, 0, len(bySource))
	for _, row := range bySource {
		rows = append(rows, *row)
	}
	sort.Slice(rows, func(i, j int) bool {
		return rows[i].Source < rows[j].Source
	})
	return rows
}

// writeData writes the data to the spreadsheet.
func (w *Writer) writeData(ctx context.Context, spreadsheetID string, values [][]any) error {
	// Write in batches to avoid API limits
	for i := 0; i < len(values); i += w.config.BatchSize {
		end := min(i+w.config.BatchSize, len(values))

		batch := values[i:end]
		valueRange := &sheets.ValueRange{
			Values: batch,
		}

		rangeStr := fmt.Sprintf("A%d", i+1)
		_, err := w.service.Spreadsheets.Values.Update(spreadsheetID, rangeStr, valueRange).
			ValueInputOption("USER_ENTERED").
			Context(ctx).
			Do()

		if err != nil {
			return fmt.Errorf("failed to write batch starting at row %d: %w", i+1, err)
		}

		w.logger.Debug("wrote batch", "start_row", i+1, "rows", len(batch))
	}

	return nil
}

func repeatFormat(startRow, endRow, startCol, endCol int64, format *sheets.CellFormat, fields string) *sheets.Request {
	return &sheets.Request{
		RepeatCell: &sheets.RepeatCellRequest{
			Range: &sheets.GridRange{
				StartRowIndex:    startRow,
				EndRowIndex:      endRow,
				StartColumnIndex: startCol,
				EndColumnIndex:   endCol,
			},
			Cell:   &sheets.CellData{UserEnteredFormat: format},
			Fields: fields,
		},
	}
}

// highRiskRule shades prediction rows whose churn column is Yes.
func highRiskRule(firstRow, lastRow int64) *sheets.Request {
	return &sheets.Request{
		AddConditionalFormatRule: &sheets.AddConditionalFormatRuleRequest{
			Rule: &sheets.ConditionalFormatRule{
				Ranges: []*sheets.GridRange{{
					StartRowIndex:    firstRow,
					EndRowIndex:      lastRow,
					StartColumnIndex: 0,
					EndColumnIndex:   predictionColumnCount,
				}},
				BooleanRule: &sheets.BooleanRule{
					Condition: &sheets.BooleanCondition{
						Type:   "CUSTOM_FORMULA",
						Values: []*sheets.ConditionValue{{UserEnteredValue: fmt.Sprintf(`=$E%d="Yes"`, firstRow+1)}},
					},
					Format: &sheets.CellFormat{
						BackgroundColor: &sheets.Color{Red: 0.98, Green: 0.85, Blue: 0.85},
					},
				},
			},
			Index: 0,
		},
	}
}

// applyFormatting styles the title and section labels, shows probabilities
// as percentages and shades high risk customers.
func (w *Writer) applyFormatting(ctx context.Context, spreadsheetID string, firstPredictionRow, totalRows int) error {
	first, last := int64(firstPredictionRow), int64(totalRows)
	requests := []*sheets.Request{
		repeatFormat(0, 1, 0, 2,
			&sheets.CellFormat{TextFormat: &sheets.TextFormat{Bold: true, FontSize: 16}},
			"userEnteredFormat.textFormat"),
		repeatFormat(2, last, 0, 1,
			&sheets.CellFormat{TextFormat: &sheets.TextFormat{Bold: true}},
			"userEnteredFormat.textFormat"),
		repeatFormat(first, last, 2, 4,
			&sheets.CellFormat{NumberFormat: &sheets.NumberFormat{Type: "PERCENT", Pattern: "0.0%"}},
			"userEnteredFormat.numberFormat"),
		highRiskRule(first, last),
		{
			AutoResizeDimensions: &sheets.AutoResizeDimensionsRequest{
				Dimensions: &sheets.DimensionRange{
					Dimension:  "COLUMNS",
					StartIndex: 0,
					EndIndex:   predictionColumnCount,
				},
			},
		},
	}

	_, err := w.service.Spreadsheets.BatchUpdate(spreadsheetID, &sheets.BatchUpdateSpreadsheetRequest{
		Requests: requests,
	}).Context(ctx).Do()
	return err
}
