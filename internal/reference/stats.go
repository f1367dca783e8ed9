package reference

import (
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/Veraticus/churn/internal/common"
)

// Stats are the reference population statistics the feature pipeline
// normalizes against.
type Stats struct {
	ReferenceDate time.Time
	VintageMin    float64
	VintageMax    float64
	RecencyMin    int
	RecencyMax    int
	Rows          int
}

// Validate rejects statistics that would make loyalty or engagement undefined.
func (s Stats) Validate() error {
	if s.Rows == 0 {
		return common.NewDataError("reference", "no valid rows after cleaning", common.ErrDegenerateReference)
	}
	if !(s.VintageMax > s.VintageMin) {
		return common.NewDataError("vintage",
			fmt.Sprintf("reference range [%g, %g] has no width", s.VintageMin, s.VintageMax),
			common.ErrDegenerateReference)
	}
	if s.RecencyMax <= s.RecencyMin {
		return common.NewDataError("last_transaction",
			fmt.Sprintf("reference recency range [%d, %d] days has no width", s.RecencyMin, s.RecencyMax),
			common.ErrDegenerateReference)
	}
	return nil
}

// VintageRange returns the width of the vintage range.
func (s Stats) VintageRange() float64 {
	return s.VintageMax - s.VintageMin
}

// RecencyRange returns the width of the recency range in days.
func (s Stats) RecencyRange() float64 {
	return float64(s.RecencyMax - s.RecencyMin)
}

// DaysSince returns the whole days from t to reference, rounded toward
// negative infinity.
func DaysSince(reference, t time.Time) int {
	return int(math.Floor(reference.Sub(t).Hours() / 24))
}

// computeStats derives Stats from cleaned columns.
func computeStats(vintage []float64, lastTransaction []time.Time) Stats {
	s := Stats{Rows: len(lastTransaction)}
	if s.Rows == 0 {
		return s
	}

	s.VintageMin, s.VintageMax = minMax(vintage)

	for _, t := range lastTransaction {
		if t.After(s.ReferenceDate) {
			s.ReferenceDate = t
		}
	}

	for i, t := range lastTransaction {
		days := DaysSince(s.ReferenceDate, t)
		if i == 0 || days < s.RecencyMin {
			s.RecencyMin = days
		}
		if i == 0 || days > s.RecencyMax {
			s.RecencyMax = days
		}
	}

	return s
}

// minMax returns the extremes of x, ignoring NaN. Both are NaN when x has no numbers.
func minMax(x []float64) (float64, float64) {
	lo, hi := math.NaN(), math.NaN()
	for _, v := range x {
		if math.IsNaN(v) {
			continue
		}
		if math.IsNaN(lo) || v < lo {
			lo = v
		}
		if math.IsNaN(hi) || v > hi {
			hi = v
		}
	}
	return lo, hi
}

// median returns the median of the non-NaN values of x, or NaN if there are none.
func median(x []float64) float64 {
	values := make([]float64, 0, len(x))
	for _, v := range x {
		if !math.IsNaN(v) {
			values = append(values, v)
		}
	}
	n := len(values)
	if n == 0 {
		return math.NaN()
	}
	sort.Float64s(values)
	mid := n / 2
	if n%2 == 0 {
		return (values[mid-1] + values[mid]) / 2
	}
	return values[mid]
}
