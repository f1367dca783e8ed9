// Package ofx reads account activity from OFX/QFX statement files.
package ofx

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"regexp"
	"strings"

	"github.com/Veraticus/churn/internal/model"
	"github.com/aclindsa/ofxgo"
)

// ErrNoStatement is returned when a file has no bank or credit card statement.
var ErrNoStatement = errors.New("no bank or credit card statement in OFX file")

var (
	severityRegex = regexp.MustCompile(`(?i)<SEVERITY>(Info|Warn|Error)</SEVERITY>`)
	// Opening tags missing their closing bracket at the end of a line.
	tagFixRegex = regexp.MustCompile(`(?m)^(\s*<[A-Z][A-Z0-9._]*[A-Z0-9])$`)
)

// Parser implements OFX/QFX file parsing.
type Parser struct {
	logger *slog.Logger
}

// NewParser creates a new OFX parser.
func NewParser(logger *slog.Logger) *Parser {
	if logger == nil {
		logger = slog.Default()
	}
	return &Parser{logger: logger}
}

// preprocessOFX fixes common formatting issues in OFX files.
func (p *Parser) preprocessOFX(content string) string {
	content = strings.TrimLeft(content, " \t\r\n")

	// SEVERITY must be INFO, WARN, or ERROR
	content = severityRegex.ReplaceAllStringFunc(content, strings.ToUpper)

	return tagFixRegex.ReplaceAllString(content, "$1>")
}

// ParseStatement returns the first bank or credit card statement in the file.
func (p *Parser) ParseStatement(ctx context.Context, reader io.Reader) (model.Statement, error) {
	statements, err := p.ParseStatements(ctx, reader)
	if err != nil {
		return model.Statement{}, err
	}
	if len(statements) > 1 {
		p.logger.Info("OFX file has several statements, using the first",
			"account", statements[0].AccountID,
			"statements", len(statements))
	}
	return statements[0], nil
}

// ParseStatements returns every bank and credit card statement in the file,
// bank statements first.
func (p *Parser) ParseStatements(ctx context.Context, reader io.Reader) ([]model.Statement, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	content, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("failed to read OFX file: %w", err)
	}

	resp, err := ofxgo.ParseResponse(strings.NewReader(p.preprocessOFX(string(content))))
	if err != nil {
		return nil, fmt.Errorf("failed to parse OFX file: %w", err)
	}

	var statements []model.Statement

	for _, msg := range resp.Bank {
		if stmt, ok := msg.(*ofxgo.StatementResponse); ok {
			statements = append(statements, p.statement(
				string(stmt.BankAcctFrom.AcctID), stmt.BalAmt, stmt.DtAsOf, stmt.BankTranList))
		}
	}

	for _, msg := range resp.CreditCard {
		if stmt, ok := msg.(*ofxgo.CCStatementResponse); ok {
			statements = append(statements, p.statement(
				string(stmt.CCAcctFrom.AcctID), stmt.BalAmt, stmt.DtAsOf, stmt.BankTranList))
		}
	}

	if len(statements) == 0 {
		return nil, ErrNoStatement
	}

	p.logger.Debug("Parsed OFX file", "statements", len(statements))
	return statements, nil
}

func (p *Parser) statement(accountID string, balance ofxgo.Amount, asOf ofxgo.Date, list *ofxgo.TransactionList) model.Statement {
	balanceFloat, _ := balance.Float64()
	stmt := model.Statement{
		AccountID:   accountID,
		Balance:     balanceFloat,
		BalanceAsOf: asOf.Time,
	}

	if list == nil {
		return stmt
	}

	for _, ofxTx := range list.Transactions {
		stmt.Transactions = append(stmt.Transactions, p.convertTransaction(ofxTx, accountID))
	}
	return stmt
}

// convertTransaction converts an OFX transaction to our model. OFX amounts
// are already signed with debits negative.
func (p *Parser) convertTransaction(ofxTx ofxgo.Transaction, accountID string) model.Transaction {
	amount, _ := ofxTx.TrnAmt.Float64()

	tx := model.Transaction{
		ID:        string(ofxTx.FiTID),
		Date:      ofxTx.DtPosted.Time,
		Name:      description(ofxTx),
		Amount:    amount,
		AccountID: accountID,
		Type:      ofxTx.TrnType.String(),
	}
	tx.Hash = tx.GenerateHash()

	return tx
}

// description picks the payee, name or memo, in that order. It feeds the
// duplicate hash, so two postings differing only in description stay apart.
func description(tx ofxgo.Transaction) string {
	if tx.Payee != nil && strings.TrimSpace(string(tx.Payee.Name)) != "" {
		return strings.TrimSpace(string(tx.Payee.Name))
	}
	if name := strings.TrimSpace(string(tx.Name)); name != "" {
		return name
	}
	return strings.TrimSpace(string(tx.Memo))
}
