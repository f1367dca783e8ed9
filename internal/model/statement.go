package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Statement is the balance and transaction history of one account, as
// reported by an OFX file or the Plaid API.
type Statement struct {
	BalanceAsOf  time.Time
	AccountID    string
	Transactions []Transaction
	Balance      float64
}

// Activity is the part of a raw record that can be derived from a statement.
type Activity struct {
	LastTransaction     time.Time
	CurrentBalance      float64
	CurrentMonthCredit  float64
	PreviousMonthCredit float64
	CurrentMonthDebit   float64
	PreviousMonthDebit  float64
	Transactions        int
}

// Summarize totals credits and debits for the calendar month containing asOf
// and the month before it. Debits are reported as positive amounts.
// Duplicate transactions (same hash) are counted once.
func (s Statement) Summarize(asOf time.Time) Activity {
	currentStart := time.Date(asOf.Year(), asOf.Month(), 1, 0, 0, 0, 0, asOf.Location())
	previousStart := currentStart.AddDate(0, -1, 0)
	nextStart := currentStart.AddDate(0, 1, 0)

	var curCredit, prevCredit, curDebit, prevDebit decimal.Decimal
	seen := make(map[string]bool, len(s.Transactions))

	activity := Activity{CurrentBalance: s.Balance}
	for _, tx := range s.Transactions {
		hash := tx.Hash
		if hash == "" {
			hash = tx.GenerateHash()
		}
		if seen[hash] {
			continue
		}
		seen[hash] = true
		activity.Transactions++

		if tx.Date.After(activity.LastTransaction) {
			activity.LastTransaction = tx.Date
		}

		amount := decimal.NewFromFloat(tx.Amount)
		date := tx.Date.In(asOf.Location())
		switch {
		case !date.Before(currentStart) && date.Before(nextStart):
			if tx.IsCredit() {
				curCredit = curCredit.Add(amount)
			} else {
				curDebit = curDebit.Sub(amount)
			}
		case !date.Before(previousStart) && date.Before(currentStart):
			if tx.IsCredit() {
				prevCredit = prevCredit.Add(amount)
			} else {
				prevDebit = prevDebit.Sub(amount)
			}
		}
	}

	activity.CurrentMonthCredit = curCredit.InexactFloat64()
	activity.PreviousMonthCredit = prevCredit.InexactFloat64()
	activity.CurrentMonthDebit = curDebit.InexactFloat64()
	activity.PreviousMonthDebit = prevDebit.InexactFloat64()
	return activity
}

// ApplyTo returns a copy of r with its transaction-flow fields replaced by the
// activity. The last transaction date is only replaced when one was seen.
func (a Activity) ApplyTo(r RawRecord) RawRecord {
	r.CurrentBalance = a.CurrentBalance
	r.CurrentMonthCredit = a.CurrentMonthCredit
	r.PreviousMonthCredit = a.PreviousMonthCredit
	r.CurrentMonthDebit = a.CurrentMonthDebit
	r.PreviousMonthDebit = a.PreviousMonthDebit
	if !a.LastTransaction.IsZero() {
		r.LastTransaction = a.LastTransaction
	}
	return r
}

// ApplyToValues writes the activity into textual form values.
func (a Activity) ApplyToValues(values map[string]string) {
	r := a.ApplyTo(RawRecord{})
	rendered := r.Values()
	for _, field := range []string{
		FieldCurrentBalance,
		FieldCurrentMonthCredit,
		FieldPreviousMonthCredit,
		FieldCurrentMonthDebit,
		FieldPreviousMonthDebit,
	} {
		values[field] = rendered[field]
	}
	if !a.LastTransaction.IsZero() {
		values[FieldLastTransaction] = rendered[FieldLastTransaction]
	}
}
