package validation

import (
	"math"
	"testing"
	"time"

	"github.com/Veraticus/churn/internal/common"
	"github.com/Veraticus/churn/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validRecord() model.RawRecord {
	return model.RawRecord{
		CustomerID:       7,
		Vintage:          60,
		Age:              35,
		Gender:           model.GenderFemale,
		Dependents:       2,
		Occupation:       "salaried",
		City:             "1020",
		NetWorthCategory: "2",
		BranchCode:       3,
		CurrentBalance:   1200,
		LastTransaction:  time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
	}
}

func TestValidator_Record(t *testing.T) {
	tests := []struct {
		mutate     func(*model.RawRecord)
		name       string
		wantFields []string
	}{
		{name: "valid", mutate: func(*model.RawRecord) {}},
		{name: "age lower bound", mutate: func(r *model.RawRecord) { r.Age = 18 }},
		{name: "age upper bound", mutate: func(r *model.RawRecord) { r.Age = 100 }},
		{name: "negative balance allowed", mutate: func(r *model.RawRecord) { r.CurrentBalance = -50 }},
		{name: "too young", mutate: func(r *model.RawRecord) { r.Age = 17 }, wantFields: []string{"age"}},
		{name: "too old", mutate: func(r *model.RawRecord) { r.Age = 101 }, wantFields: []string{"age"}},
		{name: "too many dependents", mutate: func(r *model.RawRecord) { r.Dependents = 11 }, wantFields: []string{"dependents"}},
		{name: "vintage out of range", mutate: func(r *model.RawRecord) { r.Vintage = 501 }, wantFields: []string{"vintage"}},
		{name: "missing occupation", mutate: func(r *model.RawRecord) { r.Occupation = "" }, wantFields: []string{"occupation"}},
		{name: "missing date", mutate: func(r *model.RawRecord) { r.LastTransaction = time.Time{} }, wantFields: []string{"last_transaction"}},
		{name: "not a number", mutate: func(r *model.RawRecord) { r.CurrentMonthDebit = math.NaN() }, wantFields: []string{"current_month_debit"}},
		{name: "infinite", mutate: func(r *model.RawRecord) { r.PreviousMonthBalance = math.Inf(1) }, wantFields: []string{"previous_month_balance"}},
		{
			name: "multiple",
			mutate: func(r *model.RawRecord) {
				r.Age = 5
				r.City = ""
			},
			wantFields: []string{"age", "city"},
		},
	}

	v := New()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := validRecord()
			tt.mutate(&r)

			err := v.Record(r)
			if len(tt.wantFields) == 0 {
				require.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.ErrorIs(t, err, common.ErrInvalidData)
			assert.ElementsMatch(t, tt.wantFields, common.DataErrorFields(err))
		})
	}
}

func TestValidator_MessageNamesBound(t *testing.T) {
	r := validRecord()
	r.Age = 12

	err := New().Record(r)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "age: must be at least 18")
}
