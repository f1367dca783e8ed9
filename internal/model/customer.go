package model

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/Veraticus/churn/internal/common"
)

// Raw record field names as they appear in forms and CSV headers.
const (
	FieldCustomerID              = "customer_id"
	FieldVintage                 = "vintage"
	FieldAge                     = "age"
	FieldGender                  = "gender"
	FieldDependents              = "dependents"
	FieldOccupation              = "occupation"
	FieldCity                    = "city"
	FieldNetWorthCategory        = "customer_nw_category"
	FieldBranchCode              = "branch_code"
	FieldCurrentBalance          = "current_balance"
	FieldPreviousMonthEndBalance = "previous_month_end_balance"
	FieldAvgBalancePrevQ         = "average_monthly_balance_prevQ"
	FieldAvgBalancePrevQ2        = "average_monthly_balance_prevQ2"
	FieldCurrentMonthCredit      = "current_month_credit"
	FieldPreviousMonthCredit     = "previous_month_credit"
	FieldCurrentMonthDebit       = "current_month_debit"
	FieldPreviousMonthDebit      = "previous_month_debit"
	FieldCurrentMonthBalance     = "current_month_balance"
	FieldPreviousMonthBalance    = "previous_month_balance"
	FieldLastTransaction         = "last_transaction"
)

// RawFields lists every raw record field in form order.
var RawFields = []string{
	FieldCustomerID,
	FieldVintage,
	FieldAge,
	FieldGender,
	FieldDependents,
	FieldOccupation,
	FieldCity,
	FieldNetWorthCategory,
	FieldBranchCode,
	FieldCurrentBalance,
	FieldPreviousMonthEndBalance,
	FieldAvgBalancePrevQ,
	FieldAvgBalancePrevQ2,
	FieldCurrentMonthCredit,
	FieldPreviousMonthCredit,
	FieldCurrentMonthDebit,
	FieldPreviousMonthDebit,
	FieldCurrentMonthBalance,
	FieldPreviousMonthBalance,
	FieldLastTransaction,
}

// Gender values accepted by the form.
const (
	GenderMale    = "Male"
	GenderFemale  = "Female"
	GenderUnknown = "Unknown"
)

// Occupations offered by the form.
var Occupations = []string{"self_employed", "salaried", "retired", "student", "company", "Unknown"}

// NetWorthCategories offered by the form.
var NetWorthCategories = []string{"1", "2", "3"}

// DateLayouts are the accepted last_transaction formats, tried in order.
var DateLayouts = []string{
	"2006-01-02",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	time.RFC3339,
}

// RawRecord is one customer's unprocessed attributes.
// It is built per prediction and never modified afterwards.
type RawRecord struct {
	LastTransaction         time.Time `json:"last_transaction" validate:"required"`
	Gender                  string    `json:"gender" validate:"required"`
	Occupation              string    `json:"occupation" validate:"required"`
	City                    string    `json:"city" validate:"required"`
	NetWorthCategory        string    `json:"customer_nw_category" validate:"required"`
	CustomerID              int64     `json:"customer_id"`
	BranchCode              int64     `json:"branch_code"`
	Vintage                 float64   `json:"vintage" validate:"gte=0,lte=500"`
	Age                     float64   `json:"age" validate:"gte=18,lte=100"`
	Dependents              float64   `json:"dependents" validate:"gte=0,lte=10"`
	CurrentBalance          float64   `json:"current_balance" validate:"finite"`
	PreviousMonthEndBalance float64   `json:"previous_month_end_balance" validate:"finite"`
	AvgBalancePrevQ         float64   `json:"average_monthly_balance_prevQ" validate:"finite"`
	AvgBalancePrevQ2        float64   `json:"average_monthly_balance_prevQ2" validate:"finite"`
	CurrentMonthCredit      float64   `json:"current_month_credit" validate:"finite"`
	PreviousMonthCredit     float64   `json:"previous_month_credit" validate:"finite"`
	CurrentMonthDebit       float64   `json:"current_month_debit" validate:"finite"`
	PreviousMonthDebit      float64   `json:"previous_month_debit" validate:"finite"`
	CurrentMonthBalance     float64   `json:"current_month_balance" validate:"finite"`
	PreviousMonthBalance    float64   `json:"previous_month_balance" validate:"finite"`
}

// ParseDate parses a last_transaction value using DateLayouts.
func ParseDate(value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	for _, layout := range DateLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized date %q", value)
}

// ParseRawRecord builds a RawRecord from textual field values keyed by field name.
// Every field is required. All problems are reported together as DataErrors.
func ParseRawRecord(values map[string]string) (RawRecord, error) {
	p := &fieldParser{values: values}

	r := RawRecord{
		CustomerID:              p.integer(FieldCustomerID),
		Vintage:                 p.number(FieldVintage),
		Age:                     p.number(FieldAge),
		Gender:                  p.text(FieldGender),
		Dependents:              p.number(FieldDependents),
		Occupation:              p.text(FieldOccupation),
		City:                    p.text(FieldCity),
		NetWorthCategory:        p.text(FieldNetWorthCategory),
		BranchCode:              p.integer(FieldBranchCode),
		CurrentBalance:          p.number(FieldCurrentBalance),
		PreviousMonthEndBalance: p.number(FieldPreviousMonthEndBalance),
		AvgBalancePrevQ:         p.number(FieldAvgBalancePrevQ),
		AvgBalancePrevQ2:        p.number(FieldAvgBalancePrevQ2),
		CurrentMonthCredit:      p.number(FieldCurrentMonthCredit),
		PreviousMonthCredit:     p.number(FieldPreviousMonthCredit),
		CurrentMonthDebit:       p.number(FieldCurrentMonthDebit),
		PreviousMonthDebit:      p.number(FieldPreviousMonthDebit),
		CurrentMonthBalance:     p.number(FieldCurrentMonthBalance),
		PreviousMonthBalance:    p.number(FieldPreviousMonthBalance),
		LastTransaction:         p.date(FieldLastTransaction),
	}

	if len(p.errs) > 0 {
		return RawRecord{}, errors.Join(p.errs...)
	}
	return r, nil
}

// Values renders the record back into textual field values.
func (r RawRecord) Values() map[string]string {
	f := func(v float64) string { return strconv.FormatFloat(v, 'f', -1, 64) }
	return map[string]string{
		FieldCustomerID:              strconv.FormatInt(r.CustomerID, 10),
		FieldVintage:                 f(r.Vintage),
		FieldAge:                     f(r.Age),
		FieldGender:                  r.Gender,
		FieldDependents:              f(r.Dependents),
		FieldOccupation:              r.Occupation,
		FieldCity:                    r.City,
		FieldNetWorthCategory:        r.NetWorthCategory,
		FieldBranchCode:              strconv.FormatInt(r.BranchCode, 10),
		FieldCurrentBalance:          f(r.CurrentBalance),
		FieldPreviousMonthEndBalance: f(r.PreviousMonthEndBalance),
		FieldAvgBalancePrevQ:         f(r.AvgBalancePrevQ),
		FieldAvgBalancePrevQ2:        f(r.AvgBalancePrevQ2),
		FieldCurrentMonthCredit:      f(r.CurrentMonthCredit),
		FieldPreviousMonthCredit:     f(r.PreviousMonthCredit),
		FieldCurrentMonthDebit:       f(r.CurrentMonthDebit),
		FieldPreviousMonthDebit:      f(r.PreviousMonthDebit),
		FieldCurrentMonthBalance:     f(r.CurrentMonthBalance),
		FieldPreviousMonthBalance:    f(r.PreviousMonthBalance),
		FieldLastTransaction:         r.LastTransaction.Format("2006-01-02"),
	}
}

// DefaultValues returns the form defaults for a new record.
func DefaultValues(today time.Time) map[string]string {
	return map[string]string{
		FieldCustomerID:              "1",
		FieldVintage:                 "60",
		FieldAge:                     "35",
		FieldGender:                  GenderMale,
		FieldDependents:              "0",
		FieldOccupation:              Occupations[0],
		FieldCity:                    "1020",
		FieldNetWorthCategory:        NetWorthCategories[0],
		FieldBranchCode:              "1",
		FieldCurrentBalance:          "0.0",
		FieldPreviousMonthEndBalance: "0.0",
		FieldAvgBalancePrevQ:         "0.0",
		FieldAvgBalancePrevQ2:        "0.0",
		FieldCurrentMonthCredit:      "0.0",
		FieldPreviousMonthCredit:     "0.0",
		FieldCurrentMonthDebit:       "0.0",
		FieldPreviousMonthDebit:      "0.0",
		FieldCurrentMonthBalance:     "0.0",
		FieldPreviousMonthBalance:    "0.0",
		FieldLastTransaction:         today.Format("2006-01-02"),
	}
}

type fieldParser struct {
	values map[string]string
	errs   []error
}

func (p *fieldParser) raw(field string) (string, bool) {
	v, ok := p.values[field]
	v = strings.TrimSpace(v)
	if !ok || v == "" {
		p.errs = append(p.errs, common.NewDataError(field, "is required", common.ErrMissingField))
		return "", false
	}
	return v, true
}

func (p *fieldParser) text(field string) string {
	v, _ := p.raw(field)
	return v
}

func (p *fieldParser) number(field string) float64 {
	v, ok := p.raw(field)
	if !ok {
		return 0
	}
	n, err := strconv.ParseFloat(v, 64)
	if err != nil {
		p.errs = append(p.errs, common.NewDataError(field, fmt.Sprintf("%q is not a number", v), nil))
		return 0
	}
	return n
}

func (p *fieldParser) integer(field string) int64 {
	v, ok := p.raw(field)
	if !ok {
		return 0
	}
	// Identifiers exported from spreadsheets often carry a ".0" suffix.
	n, err := strconv.ParseFloat(v, 64)
	if err != nil || n != float64(int64(n)) {
		p.errs = append(p.errs, common.NewDataError(field, fmt.Sprintf("%q is not an integer", v), nil))
		return 0
	}
	return int64(n)
}

func (p *fieldParser) date(field string) time.Time {
	v, ok := p.raw(field)
	if !ok {
		return time.Time{}
	}
	t, err := ParseDate(v)
	if err != nil {
		p.errs = append(p.errs, common.NewDataError(field, "is not a date", err))
		return time.Time{}
	}
	return t
}
