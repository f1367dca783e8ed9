// Package reference loads and cleans the historical customer population that
// feature normalization is computed against.
package reference

import (
	"fmt"
	"io"
	"math"
	"os"
	"sort"
	"time"

	"github.com/Veraticus/churn/internal/common"
	"github.com/Veraticus/churn/internal/model"
	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
)

// UnknownCategory replaces missing text values.
const UnknownCategory = "Unknown"

// missingValues are the cell contents treated as missing.
var missingValues = []string{"", "NA", "NaN", "nan", "null", "<nil>"}

// Dataset is the cleaned reference population. It is read-only after Read.
type Dataset struct {
	numeric         map[string][]float64
	text            map[string][]string
	medians         map[string]float64
	lastTransaction []time.Time
	columns         []string
	stats           Stats
	dropped         int
}

// Load reads a reference dataset from a CSV file.
func Load(path string) (*Dataset, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open reference dataset: %w", err)
	}
	defer f.Close()

	ds, err := Read(f)
	if err != nil {
		return nil, fmt.Errorf("failed to load reference dataset %s: %w", path, err)
	}
	return ds, nil
}

// Read parses and cleans a reference dataset:
// rows with an unparsable last_transaction are dropped, missing numeric values
// are replaced with the column median of the remaining rows, and missing text
// values become UnknownCategory. The returned dataset always has valid Stats.
func Read(r io.Reader) (*Dataset, error) {
	df := dataframe.ReadCSV(r,
		dataframe.WithTypes(map[string]series.Type{
			model.FieldLastTransaction: series.String,
		}),
		dataframe.NaNValues(missingValues),
	)
	if df.Err != nil {
		return nil, fmt.Errorf("failed to parse reference CSV: %w", df.Err)
	}

	for _, required := range []string{model.FieldVintage, model.FieldLastTransaction} {
		if !hasColumn(df, required) {
			return nil, common.NewDataError(required, "column missing from reference dataset", common.ErrMissingField)
		}
	}

	dates, keep := parseDates(df.Col(model.FieldLastTransaction).Records())

	ds := &Dataset{
		numeric:         make(map[string][]float64),
		text:            make(map[string][]string),
		medians:         make(map[string]float64),
		lastTransaction: dates,
		columns:         df.Names(),
		dropped:         df.Nrow() - len(dates),
	}

	for _, name := range df.Names() {
		if name == model.FieldLastTransaction {
			continue
		}

		col := df.Col(name)
		switch col.Type() {
		case series.Float, series.Int:
			values := filter(col.Float(), keep)
			m := median(values)
			for i, v := range values {
				if math.IsNaN(v) {
					values[i] = m
				}
			}
			ds.numeric[name] = values
			ds.medians[name] = m
		default:
			records := col.Records()
			missing := col.IsNaN()
			values := make([]string, 0, len(dates))
			for i, ok := range keep {
				if !ok {
					continue
				}
				if missing[i] {
					values = append(values, UnknownCategory)
				} else {
					values = append(values, records[i])
				}
			}
			ds.text[name] = values
		}
	}

	vintage, ok := ds.numeric[model.FieldVintage]
	if !ok {
		return nil, common.NewDataError(model.FieldVintage, "reference column is not numeric", nil)
	}

	ds.stats = computeStats(vintage, ds.lastTransaction)
	if err := ds.stats.Validate(); err != nil {
		return nil, err
	}

	return ds, nil
}

// Stats returns the normalization statistics.
func (d *Dataset) Stats() Stats {
	return d.stats
}

// Rows returns the number of rows kept after cleaning.
func (d *Dataset) Rows() int {
	return len(d.lastTransaction)
}

// Dropped returns the number of rows discarded for an unparsable last_transaction.
func (d *Dataset) Dropped() int {
	return d.dropped
}

// Columns returns the column names in file order.
func (d *Dataset) Columns() []string {
	return append([]string(nil), d.columns...)
}

// Medians returns the imputation value used for each numeric column.
func (d *Dataset) Medians() map[string]float64 {
	out := make(map[string]float64, len(d.medians))
	for k, v := range d.medians {
		out[k] = v
	}
	return out
}

// NumericColumns returns the numeric column names in sorted order.
func (d *Dataset) NumericColumns() []string {
	names := make([]string, 0, len(d.numeric))
	for name := range d.numeric {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Numeric returns a copy of a cleaned numeric column.
func (d *Dataset) Numeric(name string) ([]float64, bool) {
	values, ok := d.numeric[name]
	if !ok {
		return nil, false
	}
	return append([]float64(nil), values...), true
}

// Text returns a copy of a cleaned text column.
func (d *Dataset) Text(name string) ([]string, bool) {
	values, ok := d.text[name]
	if !ok {
		return nil, false
	}
	return append([]string(nil), values...), true
}

// LastTransactions returns a copy of the parsed last_transaction column.
func (d *Dataset) LastTransactions() []time.Time {
	return append([]time.Time(nil), d.lastTransaction...)
}

func hasColumn(df dataframe.DataFrame, name string) bool {
	for _, n := range df.Names() {
		if n == name {
			return true
		}
	}
	return false
}

// parseDates parses every record, returning the parsed dates of the rows
// that succeeded and a mask of which rows those were.
func parseDates(records []string) ([]time.Time, []bool) {
	dates := make([]time.Time, 0, len(records))
	keep := make([]bool, len(records))
	for i, rec := range records {
		t, err := model.ParseDate(rec)
		if err != nil {
			continue
		}
		keep[i] = true
		dates = append(dates, t)
	}
	return dates, keep
}

func filter(values []float64, keep []bool) []float64 {
	out := make([]float64, 0, len(values))
	for i, v := range values {
		if keep[i] {
			out = append(out, v)
		}
	}
	return out
}
