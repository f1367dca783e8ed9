// Package plaid builds account statements from the Plaid API.
package plaid

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"
	"unicode"

	"github.com/Veraticus/churn/internal/common"
	"github.com/Veraticus/churn/internal/model"
	"github.com/plaid/plaid-go/v20/plaid"
)

const (
	// EnvironmentSandbox is Plaid's test environment.
	EnvironmentSandbox = "sandbox"
	// EnvironmentProduction is Plaid's live environment.
	EnvironmentProduction = "production"

	dateLayout = "2006-01-02"
	pageSize   = int32(500) // Plaid's max page size
)

// Config holds Plaid API configuration.
type Config struct {
	ClientID    string
	Secret      string
	Environment string // sandbox or production
	AccessToken string
	// BaseURL overrides the environment's API host.
	BaseURL string
}

// Validate ensures all required fields are present.
func (c *Config) Validate() error {
	var missing []string
	if c.ClientID == "" {
		missing = append(missing, "client ID")
	}
	if c.Secret == "" {
		missing = append(missing, "secret")
	}
	if c.AccessToken == "" {
		missing = append(missing, "access token")
	}
	if c.Environment == "" {
		missing = append(missing, "environment")
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: plaid %s required", common.ErrMissingConfig, strings.Join(missing, ", "))
	}

	switch c.Environment {
	case EnvironmentSandbox, EnvironmentProduction:
		return nil
	default:
		return fmt.Errorf("%w: plaid environment must be %s or %s, got %q",
			common.ErrInvalidConfig, EnvironmentSandbox, EnvironmentProduction, c.Environment)
	}
}

// api is the subset of the Plaid API the client calls.
type api interface {
	accounts(ctx context.Context, accessToken, accountID string) ([]plaid.AccountBase, error)
	transactions(ctx context.Context, accessToken, accountID string, start, end time.Time, offset int32) ([]plaid.Transaction, int32, error)
}

// Client implements StatementFetcher.
type Client struct {
	api         api
	logger      *slog.Logger
	accessToken string
}

// NewClient creates a new Plaid client with the given configuration.
func NewClient(cfg Config, logger *slog.Logger) (*Client, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	configuration := plaid.NewConfiguration()
	configuration.AddDefaultHeader("PLAID-CLIENT-ID", cfg.ClientID)
	configuration.AddDefaultHeader("PLAID-SECRET", cfg.Secret)

	switch {
	case cfg.BaseURL != "":
		configuration.UseEnvironment(plaid.Environment(cfg.BaseURL))
	case cfg.Environment == EnvironmentProduction:
		configuration.UseEnvironment(plaid.Production)
	default:
		configuration.UseEnvironment(plaid.Sandbox)
	}

	return newClient(&plaidAPI{client: plaid.NewAPIClient(configuration)}, cfg.AccessToken, logger), nil
}

func newClient(a api, accessToken string, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		api:         a,
		accessToken: accessToken,
		logger:      logger.With("component", "plaid"),
	}
}

// GetStatement fetches the current balance and the posted transactions
// between start and end for one account. Plaid reports money leaving the
// account as positive amounts; the statement uses the opposite sign.
func (c *Client) GetStatement(ctx context.Context, accountID string, start, end time.Time) (model.Statement, error) {
	if ctx == nil {
		return model.Statement{}, fmt.Errorf("context cannot be nil")
	}
	if accountID == "" {
		return model.Statement{}, fmt.Errorf("%w: plaid account ID is required", common.ErrMissingConfig)
	}
	if start.After(end) {
		return model.Statement{}, fmt.Errorf("start date %s is after end date %s",
			start.Format(dateLayout), end.Format(dateLayout))
	}

	accounts, err := c.api.accounts(ctx, c.accessToken, accountID)
	if err != nil {
		return model.Statement{}, err
	}
	var account *plaid.AccountBase
	for i := range accounts {
		if accounts[i].GetAccountId() == accountID {
			account = &accounts[i]
			break
		}
	}
	if account == nil {
		return model.Statement{}, fmt.Errorf("plaid account %s: %w", accountID, common.ErrNotFound)
	}

	c.logger.Info("Fetching transactions from Plaid",
		"account_id", accountID,
		"start_date", start.Format(dateLayout),
		"end_date", end.Format(dateLayout))

	var all []plaid.Transaction
	for offset := int32(0); ; {
		page, total, err := c.api.transactions(ctx, c.accessToken, accountID, start, end, offset)
		if err != nil {
			return model.Statement{}, err
		}
		all = append(all, page...)
		offset += int32(len(page))

		c.logger.Debug("Fetched transaction batch",
			"count", len(page),
			"offset", offset,
			"total", total)

		if len(page) == 0 || offset >= total {
			break
		}
	}

	stmt := model.Statement{
		AccountID:    accountID,
		Balance:      accountBalance(account.GetBalances()),
		BalanceAsOf:  end,
		Transactions: make([]model.Transaction, 0, len(all)),
	}
	for _, pt := range all {
		if pt.GetPending() {
			continue
		}
		tx, err := mapTransaction(pt)
		if err != nil {
			c.logger.Warn("Skipping transaction", "transaction_id", pt.GetTransactionId(), "error", err)
			continue
		}
		stmt.Transactions = append(stmt.Transactions, tx)
	}

	c.logger.Info("Fetched statement", "account_id", accountID, "transactions", len(stmt.Transactions))
	return stmt, nil
}

// GetAccounts lists the IDs of the accounts linked to the access token.
func (c *Client) GetAccounts(ctx context.Context) ([]string, error) {
	if ctx == nil {
		return nil, fmt.Errorf("context cannot be nil")
	}

	accounts, err := c.api.accounts(ctx, c.accessToken, "")
	if err != nil {
		return nil, err
	}

	ids := make([]string, 0, len(accounts))
	for _, account := range accounts {
		ids = append(ids, account.GetAccountId())
	}
	return ids, nil
}

// accountBalance prefers the posted balance and falls back to the available one.
func accountBalance(b plaid.AccountBalance) float64 {
	if current, ok := b.GetCurrentOk(); ok && current != nil {
		return *current
	}
	return b.GetAvailable()
}

func mapTransaction(pt plaid.Transaction) (model.Transaction, error) {
	date, err := time.Parse(dateLayout, pt.GetDate())
	if err != nil {
		return model.Transaction{}, fmt.Errorf("invalid transaction date %q: %w", pt.GetDate(), err)
	}

	name := pt.GetMerchantName()
	if name == "" {
		name = pt.GetName()
	}

	tx := model.Transaction{
		Date:      date,
		ID:        pt.GetTransactionId(),
		Name:      cleanMerchantName(name),
		AccountID: pt.GetAccountId(),
		Type:      transactionType(pt),
		Amount:    -pt.GetAmount(),
	}
	tx.Hash = tx.GenerateHash()
	return tx, nil
}

func transactionType(pt plaid.Transaction) string {
	if pt.GetCheckNumber() != "" {
		return "CHECK"
	}
	switch pt.GetPaymentChannel() {
	case "online":
		return "ONLINE"
	case "in store":
		return "POS"
	default:
		if pt.GetAmount() < 0 {
			return "CREDIT"
		}
		return "DEBIT"
	}
}

var merchantSuffixes = []string{"Llc", "Inc", "Corp", "Corporation", "Company", "Co", "Ltd", "Limited"}

// cleanMerchantName title-cases a merchant name and strips trailing
// reference numbers and company suffixes.
func cleanMerchantName(name string) string {
	words := strings.Fields(strings.ToLower(name))
	for i, word := range words {
		runes := []rune(word)
		for j := range runes {
			if j == 0 || !unicode.IsLetter(runes[j-1]) {
				runes[j] = unicode.ToUpper(runes[j])
			}
		}
		words[i] = string(runes)
	}

	if n := len(words); n > 1 && len(words[n-1]) > 5 && isAllDigits(words[n-1]) {
		words = words[:n-1]
	}

	for len(words) > 1 && isSuffix(words[len(words)-1]) {
		words = words[:len(words)-1]
	}
	return strings.Join(words, " ")
}

func isSuffix(word string) bool {
	for _, s := range merchantSuffixes {
		if word == s {
			return true
		}
	}
	return false
}

func isAllDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// plaidAPI calls the real Plaid endpoints.
type plaidAPI struct {
	client *plaid.APIClient
}

func (p *plaidAPI) accounts(ctx context.Context, accessToken, accountID string) ([]plaid.AccountBase, error) {
	request := plaid.NewAccountsGetRequest(accessToken)
	if accountID != "" {
		request.SetOptions(plaid.AccountsGetRequestOptions{AccountIds: &[]string{accountID}})
	}

	resp, _, err := p.client.PlaidApi.AccountsGet(ctx).AccountsGetRequest(*request).Execute()
	if err != nil {
		return nil, wrapError("fetch accounts", err)
	}
	return resp.GetAccounts(), nil
}

func (p *plaidAPI) transactions(ctx context.Context, accessToken, accountID string, start, end time.Time, offset int32) ([]plaid.Transaction, int32, error) {
	request := plaid.NewTransactionsGetRequest(accessToken, start.Format(dateLayout), end.Format(dateLayout))
	request.SetOptions(plaid.TransactionsGetRequestOptions{
		AccountIds: &[]string{accountID},
		Count:      plaid.PtrInt32(pageSize),
		Offset:     plaid.PtrInt32(offset),
	})

	resp, _, err := p.client.PlaidApi.TransactionsGet(ctx).TransactionsGetRequest(*request).Execute()
	if err != nil {
		return nil, 0, wrapError("fetch transactions", err)
	}
	return resp.GetTransactions(), resp.GetTotalTransactions(), nil
}

// wrapError surfaces Plaid's error code and message when the response carried one.
func wrapError(action string, err error) error {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("failed to %s: %w", action, err)
	}
	plaidErr, convErr := plaid.ToPlaidError(err)
	if convErr != nil {
		return fmt.Errorf("failed to %s: %w", action, err)
	}
	return fmt.Errorf("plaid API error: %s - %s: %w", plaidErr.ErrorCode, plaidErr.ErrorMessage, err)
}

var _ StatementFetcher = (*Client)(nil)
