package testutil

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/Veraticus/churn/internal/inference"
	"github.com/Veraticus/churn/internal/model"
)

// ReferenceCSV is a small reference dataset. Vintage spans 10 to 100 and
// last transactions span 2019-05-21 to 2019-12-31.
const ReferenceCSV = `customer_id,vintage,age,gender,dependents,occupation,city,customer_nw_category,branch_code,current_balance,last_transaction
1,10,66,Male,0,self_employed,187,2,755,1458.71,2019-05-21
2,40,35,Female,0,salaried,1020,2,3214,5390.37,2019-11-01
3,55,90,Male,1,retired,1020,3,582,310.05,2019-08-06
4,100,42,Female,2,company,1494,3,388,927.72,2019-12-31
`

// WriteFile writes content to name inside a temporary directory and
// returns its path.
func WriteFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("failed to write %s: %v", name, err)
	}
	return path
}

// WriteReference writes ReferenceCSV and returns its path.
func WriteReference(t *testing.T) string {
	t.Helper()
	return WriteFile(t, "churn_dataset.csv", ReferenceCSV)
}

// Scorecard returns a small valid scoring model. Low engagement and
// shrinking balances push the probability up.
func Scorecard() inference.Scorecard {
	return inference.Scorecard{
		Version:      "fixture",
		FeatureOrder: append([]string(nil), model.FeatureNames...),
		Intercept:    0.5,
		Numeric: map[string]float64{
			model.FeatureEngagement:   -3,
			model.FeatureBalanceRatio: -0.5,
			model.FeatureAge:          0.01,
		},
		Categorical: map[string]map[string]float64{
			model.FeatureOccupation: {"student": 1},
		},
	}
}

// WriteScorecard writes sc as JSON and returns its path.
func WriteScorecard(t *testing.T, sc inference.Scorecard) string {
	t.Helper()
	data, err := json.Marshal(sc)
	if err != nil {
		t.Fatalf("failed to encode scorecard: %v", err)
	}
	return WriteFile(t, "model.json", string(data))
}

// RawValues returns textual values for a complete, valid record.
func RawValues(customerID string) map[string]string {
	values := model.DefaultValues(time.Date(2019, 12, 1, 0, 0, 0, 0, time.UTC))
	values[model.FieldCustomerID] = customerID
	values[model.FieldCurrentBalance] = "1200.5"
	values[model.FieldPreviousMonthEndBalance] = "1100"
	values[model.FieldAvgBalancePrevQ] = "1000"
	values[model.FieldAvgBalancePrevQ2] = "950"
	values[model.FieldCurrentMonthCredit] = "300"
	values[model.FieldPreviousMonthCredit] = "250"
	values[model.FieldCurrentMonthDebit] = "200"
	values[model.FieldPreviousMonthDebit] = "180"
	values[model.FieldCurrentMonthBalance] = "1150"
	values[model.FieldPreviousMonthBalance] = "1080"
	return values
}

// Prediction builds a stored prediction classified at the default threshold.
func Prediction(id string, customerID int64, probability float64, at time.Time) *model.Prediction {
	churn, label := model.Decide(probability, model.DefaultThreshold)
	return &model.Prediction{
		ID:          id,
		CreatedAt:   at,
		CustomerID:  customerID,
		Source:      model.SourceForm,
		Probability: probability,
		Threshold:   model.DefaultThreshold,
		Churn:       churn,
		Label:       label,
		Features: model.FeatureVector{
			Age:        35,
			Occupation: "salaried",
			City:       "1020",
			Loyalty:    0.5,
		},
	}
}
