package cli

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/Veraticus/churn/internal/model"
	"github.com/Veraticus/churn/internal/reference"
)

const timeLayout = "2006-01-02 15:04"

// RenderPrediction renders one prediction result. With details, the
// derived feature vector is listed as well.
func RenderPrediction(p *model.Prediction, details bool) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s %d\n", BoldStyle.Render("Customer:"), p.CustomerID)
	fmt.Fprintf(&b, "%s %.2f%%\n", BoldStyle.Render("Churn Probability:"), p.Probability*100)
	fmt.Fprintf(&b, "%s %.3f\n", SubtleStyle.Render("Threshold:"), p.Threshold)
	b.WriteString(FormatRisk(p.Churn, p.Label))

	if details {
		b.WriteString("\n\n" + BoldStyle.Render("Features") + "\n")
		for _, f := range p.Features.Features() {
			fmt.Fprintf(&b, "  %-20s %s\n", f.Name, f.String())
		}
	}

	return RenderBox(ChartIcon+" Prediction Result", strings.TrimRight(b.String(), "\n"))
}

// WritePredictionTable writes predictions as an aligned table.
func WritePredictionTable(w io.Writer, predictions []*model.Prediction) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	header := TableHeaderStyle
	if _, err := fmt.Fprintln(tw, strings.Join([]string{
		header.Render("CREATED"),
		header.Render("CUSTOMER"),
		header.Render("PROBABILITY"),
		header.Render("RISK"),
		header.Render("SOURCE"),
		header.Render("ID"),
	}, "\t")); err != nil {
		return fmt.Errorf("failed to write table header: %w", err)
	}

	for _, p := range predictions {
		risk := SuccessStyle.Render("low")
		if p.Churn {
			risk = ErrorStyle.Render("high")
		}
		if _, err := fmt.Fprintf(tw, "%s\t%d\t%.2f%%\t%s\t%s\t%s\n",
			p.CreatedAt.Local().Format(timeLayout),
			p.CustomerID,
			p.Probability*100,
			risk,
			p.Source,
			SubtleStyle.Render(p.ID),
		); err != nil {
			return fmt.Errorf("failed to write table row: %w", err)
		}
	}
	return tw.Flush()
}

// RenderSummary renders aggregate prediction statistics.
func RenderSummary(s model.PredictionSummary) string {
	if s.Total == 0 {
		return FormatInfo("No predictions recorded")
	}
	var b strings.Builder
	fmt.Fprintf(&b, "%s %d\n", BoldStyle.Render("Predictions:"), s.Total)
	fmt.Fprintf(&b, "%s %d (%.1f%%)\n", BoldStyle.Render("Likely to churn:"), s.ChurnCount, s.ChurnRate()*100)
	fmt.Fprintf(&b, "%s %.2f%%\n", BoldStyle.Render("Mean probability:"), s.MeanProbability*100)
	fmt.Fprintf(&b, "%s %s to %s", SubtleStyle.Render("Period:"),
		s.Since.Local().Format(timeLayout), s.Until.Local().Format(timeLayout))
	return RenderBox("Summary", b.String())
}

// WriteReference writes the reference statistics and imputation medians.
func WriteReference(w io.Writer, ds *reference.Dataset) error {
	s := ds.Stats()
	var b strings.Builder
	fmt.Fprintf(&b, "%s %d (%d dropped)\n", BoldStyle.Render("Rows:"), s.Rows, ds.Dropped())
	fmt.Fprintf(&b, "%s %s\n", BoldStyle.Render("Reference date:"), s.ReferenceDate.Format("2006-01-02"))
	fmt.Fprintf(&b, "%s %g to %g months\n", BoldStyle.Render("Vintage:"), s.VintageMin, s.VintageMax)
	fmt.Fprintf(&b, "%s %d to %d days", BoldStyle.Render("Days since last transaction:"), s.RecencyMin, s.RecencyMax)
	if _, err := fmt.Fprintln(w, RenderBox("Reference Population", b.String())); err != nil {
		return fmt.Errorf("failed to write reference stats: %w", err)
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	header := TableHeaderStyle
	if _, err := fmt.Fprintf(tw, "%s\t%s\n", header.Render("COLUMN"), header.Render("MEDIAN")); err != nil {
		return fmt.Errorf("failed to write medians header: %w", err)
	}
	medians := ds.Medians()
	for _, name := range ds.NumericColumns() {
		if _, err := fmt.Fprintf(tw, "%s\t%g\n", name, medians[name]); err != nil {
			return fmt.Errorf("failed to write median: %w", err)
		}
	}
	return tw.Flush()
}
