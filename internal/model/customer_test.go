package model

import (
	"testing"
	"time"

	"github.com/Veraticus/churn/internal/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validValues() map[string]string {
	return DefaultValues(time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC))
}

func TestParseRawRecord_Defaults(t *testing.T) {
	r, err := ParseRawRecord(validValues())
	require.NoError(t, err)

	assert.Equal(t, int64(1), r.CustomerID)
	assert.Equal(t, 60.0, r.Vintage)
	assert.Equal(t, 35.0, r.Age)
	assert.Equal(t, GenderMale, r.Gender)
	assert.Equal(t, "self_employed", r.Occupation)
	assert.Equal(t, "1020", r.City)
	assert.Equal(t, "1", r.NetWorthCategory)
	assert.Equal(t, time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC), r.LastTransaction)
}

func TestParseRawRecord_Errors(t *testing.T) {
	tests := []struct {
		mutate     func(map[string]string)
		name       string
		wantFields []string
	}{
		{
			name:       "missing field",
			mutate:     func(v map[string]string) { delete(v, FieldVintage) },
			wantFields: []string{FieldVintage},
		},
		{
			name:       "blank field",
			mutate:     func(v map[string]string) { v[FieldCity] = "  " },
			wantFields: []string{FieldCity},
		},
		{
			name:       "unparsable number",
			mutate:     func(v map[string]string) { v[FieldCurrentBalance] = "lots" },
			wantFields: []string{FieldCurrentBalance},
		},
		{
			name:       "fractional identifier",
			mutate:     func(v map[string]string) { v[FieldCustomerID] = "1.5" },
			wantFields: []string{FieldCustomerID},
		},
		{
			name:       "bad date",
			mutate:     func(v map[string]string) { v[FieldLastTransaction] = "15/03/2024" },
			wantFields: []string{FieldLastTransaction},
		},
		{
			name: "several problems reported together",
			mutate: func(v map[string]string) {
				v[FieldAge] = "old"
				delete(v, FieldGender)
			},
			wantFields: []string{FieldAge, FieldGender},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			values := validValues()
			tt.mutate(values)

			_, err := ParseRawRecord(values)
			require.Error(t, err)
			assert.ErrorIs(t, err, common.ErrInvalidData)
			assert.ElementsMatch(t, tt.wantFields, common.DataErrorFields(err))
		})
	}
}

func TestParseRawRecord_IdentifierWithDecimalSuffix(t *testing.T) {
	values := validValues()
	values[FieldCustomerID] = "42.0"

	r, err := ParseRawRecord(values)
	require.NoError(t, err)
	assert.Equal(t, int64(42), r.CustomerID)
}

func TestParseDate_Layouts(t *testing.T) {
	for _, input := range []string{
		"2024-03-15",
		"2024-03-15 10:30:00",
		"2024-03-15T10:30:00",
		"2024-03-15T10:30:00Z",
	} {
		got, err := ParseDate(input)
		require.NoError(t, err, input)
		assert.Equal(t, 2024, got.Year())
		assert.Equal(t, time.March, got.Month())
		assert.Equal(t, 15, got.Day())
	}
}

func TestRawRecord_ValuesRoundTrip(t *testing.T) {
	r, err := ParseRawRecord(validValues())
	require.NoError(t, err)

	again, err := ParseRawRecord(r.Values())
	require.NoError(t, err)
	assert.Equal(t, r, again)
}
