package model

import (
	"crypto/sha256"
	"fmt"
	"time"
)

// Transaction is one posted account movement from a statement source.
// Amount is signed: credits are positive, debits negative.
type Transaction struct {
	Date      time.Time
	ID        string
	Name      string // Raw transaction description
	AccountID string
	Hash      string
	Type      string // Transaction type (e.g., DEBIT, CREDIT, CHECK, ATM)
	Amount    float64
}

// IsCredit reports whether money moved into the account.
func (t *Transaction) IsCredit() bool {
	return t.Amount > 0
}

// GenerateHash creates a unique hash for duplicate detection.
func (t *Transaction) GenerateHash() string {
	data := fmt.Sprintf("%s:%.2f:%s:%s",
		t.Date.Format("2006-01-02"),
		t.Amount,
		t.Name,
		t.AccountID)
	hash := sha256.Sum256([]byte(data))
	return fmt.Sprintf("%x", hash)
}
