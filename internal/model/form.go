package model

import "fmt"

// InputKind describes how a form field is entered.
type InputKind int

const (
	InputInteger InputKind = iota
	InputNumber
	InputText
	InputChoice
	InputDate
)

// FormField describes one raw record field as presented to a user.
type FormField struct {
	Name    string
	Label   string
	Group   string
	Choices []string
	Min     float64
	Max     float64
	Kind    InputKind
	Bounded bool
}

// Hint returns a short description of the accepted values.
func (f FormField) Hint() string {
	switch {
	case f.Kind == InputChoice:
		return fmt.Sprintf("one of %v", f.Choices)
	case f.Kind == InputDate:
		return "YYYY-MM-DD"
	case f.Bounded:
		return fmt.Sprintf("%g to %g", f.Min, f.Max)
	default:
		return ""
	}
}

// Form groups.
const (
	GroupProfile  = "Profile"
	GroupBalances = "Balances"
	GroupFlows    = "Credits & Debits"
	GroupActivity = "Activity"
)

// FormFields lists every raw record field in form order.
var FormFields = []FormField{
	{Name: FieldCustomerID, Label: "Customer ID", Group: GroupProfile, Kind: InputInteger},
	{Name: FieldVintage, Label: "Vintage (months)", Group: GroupProfile, Kind: InputNumber, Bounded: true, Min: 0, Max: 500},
	{Name: FieldAge, Label: "Age", Group: GroupProfile, Kind: InputNumber, Bounded: true, Min: 18, Max: 100},
	{Name: FieldGender, Label: "Gender", Group: GroupProfile, Kind: InputChoice, Choices: []string{GenderMale, GenderFemale, GenderUnknown}},
	{Name: FieldDependents, Label: "Dependents", Group: GroupProfile, Kind: InputNumber, Bounded: true, Min: 0, Max: 10},
	{Name: FieldOccupation, Label: "Occupation", Group: GroupProfile, Kind: InputChoice, Choices: Occupations},
	{Name: FieldCity, Label: "City Code", Group: GroupProfile, Kind: InputText},
	{Name: FieldNetWorthCategory, Label: "Net Worth Category", Group: GroupProfile, Kind: InputChoice, Choices: NetWorthCategories},
	{Name: FieldBranchCode, Label: "Branch Code", Group: GroupProfile, Kind: InputInteger},
	{Name: FieldCurrentBalance, Label: "Current Balance", Group: GroupBalances, Kind: InputNumber},
	{Name: FieldPreviousMonthEndBalance, Label: "Previous Month End Balance", Group: GroupBalances, Kind: InputNumber},
	{Name: FieldAvgBalancePrevQ, Label: "Avg Monthly Balance Prev Q", Group: GroupBalances, Kind: InputNumber},
	{Name: FieldAvgBalancePrevQ2, Label: "Avg Monthly Balance Prev Q2", Group: GroupBalances, Kind: InputNumber},
	{Name: FieldCurrentMonthCredit, Label: "Current Month Credit", Group: GroupFlows, Kind: InputNumber},
	{Name: FieldPreviousMonthCredit, Label: "Previous Month Credit", Group: GroupFlows, Kind: InputNumber},
	{Name: FieldCurrentMonthDebit, Label: "Current Month Debit", Group: GroupFlows, Kind: InputNumber},
	{Name: FieldPreviousMonthDebit, Label: "Previous Month Debit", Group: GroupFlows, Kind: InputNumber},
	{Name: FieldCurrentMonthBalance, Label: "Current Month Balance", Group: GroupActivity, Kind: InputNumber},
	{Name: FieldPreviousMonthBalance, Label: "Previous Month Balance", Group: GroupActivity, Kind: InputNumber},
	{Name: FieldLastTransaction, Label: "Last Transaction Date", Group: GroupActivity, Kind: InputDate},
}

// LookupFormField returns the form description of a raw field.
func LookupFormField(name string) (FormField, bool) {
	for _, f := range FormFields {
		if f.Name == name {
			return f, true
		}
	}
	return FormField{}, false
}
