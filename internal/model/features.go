package model

import (
	"strconv"
)

// Feature names in the order the classifier expects them.
const (
	FeatureAge               = "age"
	FeatureGender            = "gender"
	FeatureDependents        = "dependents"
	FeatureOccupation        = "occupation"
	FeatureCity              = "city"
	FeatureNetWorthCategory  = "customer_nw_category"
	FeatureLoyalty           = "loyalty"
	FeatureEngagement        = "engagement"
	FeatureBalanceChange     = "balance_change"
	FeatureBalanceRatio      = "balance_ratio"
	FeatureAvgBalanceDiff    = "avg_balance_diff"
	FeatureAvgBalanceGrowth  = "avg_balance_growth"
	FeatureBalanceVolatility = "balance_volatility"
	FeatureCreditChange      = "credit_change"
	FeatureCreditRatio       = "credit_ratio"
	FeatureDebitChange       = "debit_change"
	FeatureDebitRatio        = "debit_ratio"
)

// FeatureNames is the fixed feature order. Categorical indices depend on it.
var FeatureNames = []string{
	FeatureAge,
	FeatureGender,
	FeatureDependents,
	FeatureOccupation,
	FeatureCity,
	FeatureNetWorthCategory,
	FeatureLoyalty,
	FeatureEngagement,
	FeatureBalanceChange,
	FeatureBalanceRatio,
	FeatureAvgBalanceDiff,
	FeatureAvgBalanceGrowth,
	FeatureBalanceVolatility,
	FeatureCreditChange,
	FeatureCreditRatio,
	FeatureDebitChange,
	FeatureDebitRatio,
}

// CategoricalFeatures are the features the classifier treats as categories.
var CategoricalFeatures = []string{
	FeatureGender,
	FeatureOccupation,
	FeatureCity,
	FeatureNetWorthCategory,
}

// FeatureKind distinguishes numeric from categorical features.
type FeatureKind string

const (
	KindNumeric     FeatureKind = "numeric"
	KindCategorical FeatureKind = "categorical"
)

// Feature is a single named entry of a FeatureVector.
type Feature struct {
	Name   string      `json:"name"`
	Kind   FeatureKind `json:"kind"`
	Text   string      `json:"text,omitempty"`
	Number float64     `json:"number"`
}

// Value returns the feature as the classifier receives it: a string for
// categorical features and a float64 otherwise.
func (f Feature) Value() any {
	if f.Kind == KindCategorical {
		return f.Text
	}
	return f.Number
}

// String formats the feature value for display.
func (f Feature) String() string {
	if f.Kind == KindCategorical {
		return f.Text
	}
	return strconv.FormatFloat(f.Number, 'f', 4, 64)
}

// FeatureVector is the classifier input derived from one RawRecord.
type FeatureVector struct {
	Occupation        string  `json:"occupation"`
	City              string  `json:"city"`
	NetWorthCategory  string  `json:"customer_nw_category"`
	Age               float64 `json:"age"`
	Dependents        float64 `json:"dependents"`
	Loyalty           float64 `json:"loyalty"`
	Engagement        float64 `json:"engagement"`
	BalanceChange     float64 `json:"balance_change"`
	BalanceRatio      float64 `json:"balance_ratio"`
	AvgBalanceDiff    float64 `json:"avg_balance_diff"`
	AvgBalanceGrowth  float64 `json:"avg_balance_growth"`
	BalanceVolatility float64 `json:"balance_volatility"`
	CreditChange      float64 `json:"credit_change"`
	CreditRatio       float64 `json:"credit_ratio"`
	DebitChange       float64 `json:"debit_change"`
	DebitRatio        float64 `json:"debit_ratio"`
	Gender            int     `json:"gender"`
}

// Features returns the vector as named entries in FeatureNames order.
func (v FeatureVector) Features() []Feature {
	num := func(name string, x float64) Feature {
		return Feature{Name: name, Kind: KindNumeric, Number: x}
	}
	cat := func(name, s string) Feature {
		return Feature{Name: name, Kind: KindCategorical, Text: s}
	}

	return []Feature{
		num(FeatureAge, v.Age),
		cat(FeatureGender, strconv.Itoa(v.Gender)),
		num(FeatureDependents, v.Dependents),
		cat(FeatureOccupation, v.Occupation),
		cat(FeatureCity, v.City),
		cat(FeatureNetWorthCategory, v.NetWorthCategory),
		num(FeatureLoyalty, v.Loyalty),
		num(FeatureEngagement, v.Engagement),
		num(FeatureBalanceChange, v.BalanceChange),
		num(FeatureBalanceRatio, v.BalanceRatio),
		num(FeatureAvgBalanceDiff, v.AvgBalanceDiff),
		num(FeatureAvgBalanceGrowth, v.AvgBalanceGrowth),
		num(FeatureBalanceVolatility, v.BalanceVolatility),
		num(FeatureCreditChange, v.CreditChange),
		num(FeatureCreditRatio, v.CreditRatio),
		num(FeatureDebitChange, v.DebitChange),
		num(FeatureDebitRatio, v.DebitRatio),
	}
}

// IsCategorical reports whether the named feature is categorical.
func IsCategorical(name string) bool {
	for _, c := range CategoricalFeatures {
		if c == name {
			return true
		}
	}
	return false
}
