package plaid

import (
	"context"
	"time"

	"github.com/Veraticus/churn/internal/model"
)

// StatementFetcher fetches account activity from a bank data provider.
type StatementFetcher interface {
	GetStatement(ctx context.Context, accountID string, start, end time.Time) (model.Statement, error)
	GetAccounts(ctx context.Context) ([]string, error)
}
