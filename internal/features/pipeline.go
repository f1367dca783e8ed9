// Package features turns a raw customer record into the classifier's feature vector.
package features

import (
	"errors"
	"math"

	"github.com/Veraticus/churn/internal/common"
	"github.com/Veraticus/churn/internal/model"
	"github.com/Veraticus/churn/internal/reference"
)

// SmoothingOffset is added to every ratio denominator.
const SmoothingOffset = 1

// Gender codes.
const (
	GenderCodeMale    = 0
	GenderCodeFemale  = 1
	GenderCodeUnknown = 2
)

var genderCodes = map[string]int{
	model.GenderMale:    GenderCodeMale,
	model.GenderFemale:  GenderCodeFemale,
	model.GenderUnknown: GenderCodeUnknown,
}

// Pipeline derives features against a fixed reference population.
type Pipeline struct {
	stats reference.Stats
}

// NewPipeline creates a pipeline from a loaded reference dataset.
func NewPipeline(ds *reference.Dataset) (*Pipeline, error) {
	if ds == nil {
		return nil, common.NewDataError("reference", "dataset is required", common.ErrDegenerateReference)
	}
	return NewPipelineFromStats(ds.Stats())
}

// NewPipelineFromStats creates a pipeline from precomputed statistics.
func NewPipelineFromStats(stats reference.Stats) (*Pipeline, error) {
	if err := stats.Validate(); err != nil {
		return nil, err
	}
	return &Pipeline{stats: stats}, nil
}

// Stats returns the statistics the pipeline normalizes against.
func (p *Pipeline) Stats() reference.Stats {
	return p.stats
}

// Derive computes the feature vector for raw.
func (p *Pipeline) Derive(raw model.RawRecord) (model.FeatureVector, error) {
	return Derive(raw, p.stats)
}

// Derive computes the feature vector for raw relative to stats.
// It is pure: the same inputs always produce the same vector.
func Derive(raw model.RawRecord, stats reference.Stats) (model.FeatureVector, error) {
	if err := stats.Validate(); err != nil {
		return model.FeatureVector{}, err
	}
	if err := checkRequired(raw); err != nil {
		return model.FeatureVector{}, err
	}

	recency := reference.DaysSince(stats.ReferenceDate, raw.LastTransaction)
	avgDiff := raw.AvgBalancePrevQ - raw.AvgBalancePrevQ2

	v := model.FeatureVector{
		Age:              raw.Age,
		Gender:           GenderCode(raw.Gender),
		Dependents:       raw.Dependents,
		Occupation:       raw.Occupation,
		City:             raw.City,
		NetWorthCategory: raw.NetWorthCategory,

		Loyalty:    (raw.Vintage - stats.VintageMin) / stats.VintageRange(),
		Engagement: 1 - float64(recency-stats.RecencyMin)/stats.RecencyRange(),

		BalanceChange:    raw.CurrentMonthBalance - raw.PreviousMonthBalance,
		BalanceRatio:     smoothedRatio(raw.CurrentMonthBalance, raw.PreviousMonthBalance),
		AvgBalanceDiff:   avgDiff,
		AvgBalanceGrowth: smoothedRatio(avgDiff, raw.AvgBalancePrevQ2),
		BalanceVolatility: sampleStdDev(
			raw.CurrentBalance,
			raw.PreviousMonthBalance,
			raw.PreviousMonthEndBalance,
			raw.AvgBalancePrevQ,
			raw.AvgBalancePrevQ2,
		),

		CreditChange: raw.CurrentMonthCredit - raw.PreviousMonthCredit,
		CreditRatio:  smoothedRatio(raw.CurrentMonthCredit, raw.PreviousMonthCredit),
		DebitChange:  raw.CurrentMonthDebit - raw.PreviousMonthDebit,
		DebitRatio:   smoothedRatio(raw.CurrentMonthDebit, raw.PreviousMonthDebit),
	}

	if err := checkFinite(v); err != nil {
		return model.FeatureVector{}, err
	}
	return v, nil
}

// GenderCode maps a gender label to its categorical code. Unrecognized labels
// map to GenderCodeUnknown.
func GenderCode(gender string) int {
	if code, ok := genderCodes[gender]; ok {
		return code
	}
	return GenderCodeUnknown
}

func smoothedRatio(numerator, denominator float64) float64 {
	return numerator / (denominator + SmoothingOffset)
}

// sampleStdDev returns the standard deviation with n-1 degrees of freedom.
func sampleStdDev(values ...float64) float64 {
	n := float64(len(values))
	if n < 2 {
		return 0
	}
	var sum float64
	for _, v := range values {
		sum += v
	}
	mean := sum / n

	var ss float64
	for _, v := range values {
		d := v - mean
		ss += d * d
	}
	return math.Sqrt(ss / (n - 1))
}

func checkRequired(raw model.RawRecord) error {
	var errs []error
	if raw.LastTransaction.IsZero() {
		errs = append(errs, common.NewDataError(model.FieldLastTransaction, "is required", common.ErrMissingField))
	}
	for _, f := range []struct{ name, value string }{
		{model.FieldOccupation, raw.Occupation},
		{model.FieldCity, raw.City},
		{model.FieldNetWorthCategory, raw.NetWorthCategory},
	} {
		if f.value == "" {
			errs = append(errs, common.NewDataError(f.name, "is required", common.ErrMissingField))
		}
	}
	return errors.Join(errs...)
}

// checkFinite rejects vectors with NaN or infinite entries, which only occur
// when a balance of exactly -SmoothingOffset lands in a denominator.
func checkFinite(v model.FeatureVector) error {
	var errs []error
	for _, f := range v.Features() {
		if f.Kind != model.KindNumeric {
			continue
		}
		if math.IsNaN(f.Number) || math.IsInf(f.Number, 0) {
			errs = append(errs, common.NewDataError(f.Name, "derived value is not finite", nil))
		}
	}
	return errors.Join(errs...)
}
