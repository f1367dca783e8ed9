package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 12, 0, 0, 0, time.UTC)
}

func TestStatement_Summarize(t *testing.T) {
	stmt := Statement{
		AccountID: "acc1",
		Balance:   1500.25,
		Transactions: []Transaction{
			{ID: "1", Date: day(2024, 3, 2), Name: "PAYROLL", Amount: 1000.10, AccountID: "acc1"},
			{ID: "2", Date: day(2024, 3, 5), Name: "GROCER", Amount: -45.20, AccountID: "acc1"},
			{ID: "3", Date: day(2024, 2, 20), Name: "PAYROLL", Amount: 900, AccountID: "acc1"},
			{ID: "4", Date: day(2024, 2, 21), Name: "RENT", Amount: -800.30, AccountID: "acc1"},
			{ID: "5", Date: day(2024, 1, 15), Name: "OLD", Amount: -10, AccountID: "acc1"},
			// same movement reported twice
			{ID: "6", Date: day(2024, 3, 5), Name: "GROCER", Amount: -45.20, AccountID: "acc1"},
		},
	}

	got := stmt.Summarize(day(2024, 3, 10))

	assert.Equal(t, 1500.25, got.CurrentBalance)
	assert.InDelta(t, 1000.10, got.CurrentMonthCredit, 1e-9)
	assert.InDelta(t, 45.20, got.CurrentMonthDebit, 1e-9)
	assert.InDelta(t, 900, got.PreviousMonthCredit, 1e-9)
	assert.InDelta(t, 800.30, got.PreviousMonthDebit, 1e-9)
	assert.Equal(t, day(2024, 3, 5), got.LastTransaction)
	assert.Equal(t, 5, got.Transactions)
}

func TestStatement_SummarizeEmpty(t *testing.T) {
	got := Statement{Balance: 10}.Summarize(day(2024, 3, 10))

	assert.Equal(t, 10.0, got.CurrentBalance)
	assert.Zero(t, got.CurrentMonthCredit)
	assert.True(t, got.LastTransaction.IsZero())
}

func TestActivity_ApplyTo(t *testing.T) {
	base := RawRecord{
		Age:             40,
		CurrentBalance:  1,
		LastTransaction: day(2023, 12, 1),
	}

	a := Activity{
		CurrentBalance:     250,
		CurrentMonthCredit: 100,
		PreviousMonthDebit: 30,
		LastTransaction:    day(2024, 3, 5),
	}

	got := a.ApplyTo(base)
	assert.Equal(t, 40.0, got.Age)
	assert.Equal(t, 250.0, got.CurrentBalance)
	assert.Equal(t, 100.0, got.CurrentMonthCredit)
	assert.Equal(t, 30.0, got.PreviousMonthDebit)
	assert.Equal(t, day(2024, 3, 5), got.LastTransaction)
	assert.Equal(t, 1.0, base.CurrentBalance, "original record is not modified")

	kept := Activity{}.ApplyTo(base)
	assert.Equal(t, base.LastTransaction, kept.LastTransaction)
}

func TestActivity_ApplyToValues(t *testing.T) {
	values := DefaultValues(day(2024, 1, 1))
	Activity{CurrentMonthCredit: 12.5, LastTransaction: day(2024, 3, 5)}.ApplyToValues(values)

	assert.Equal(t, "12.5", values[FieldCurrentMonthCredit])
	assert.Equal(t, "2024-03-05", values[FieldLastTransaction])
	assert.Equal(t, "35", values[FieldAge])
}
