package plaid

import (
	"context"
	"time"

	"github.com/Veraticus/churn/internal/model"
)

// MockClient is a StatementFetcher for tests.
type MockClient struct {
	GetStatementFn func(ctx context.Context, accountID string, start, end time.Time) (model.Statement, error)
	GetAccountsFn  func(ctx context.Context) ([]string, error)

	GetStatementCalls []GetStatementCall
	GetAccountsCalls  int
}

// GetStatementCall records the parameters of a GetStatement call.
type GetStatementCall struct {
	Start     time.Time
	End       time.Time
	AccountID string
}

// NewMockClient creates a new mock Plaid client.
func NewMockClient() *MockClient {
	return &MockClient{}
}

// GetStatement implements StatementFetcher.
func (m *MockClient) GetStatement(ctx context.Context, accountID string, start, end time.Time) (model.Statement, error) {
	m.GetStatementCalls = append(m.GetStatementCalls, GetStatementCall{
		AccountID: accountID,
		Start:     start,
		End:       end,
	})

	if m.GetStatementFn != nil {
		return m.GetStatementFn(ctx, accountID, start, end)
	}
	return model.Statement{AccountID: accountID, BalanceAsOf: end}, nil
}

// GetAccounts implements StatementFetcher.
func (m *MockClient) GetAccounts(ctx context.Context) ([]string, error) {
	m.GetAccountsCalls++

	if m.GetAccountsFn != nil {
		return m.GetAccountsFn(ctx)
	}
	return []string{}, nil
}

var _ StatementFetcher = (*MockClient)(nil)
