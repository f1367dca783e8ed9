package ofx

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/aclindsa/ofxgo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Sample OFX data for testing.
const sampleBankOFX = `OFXHEADER:100
DATA:OFXSGML
VERSION:102
SECURITY:NONE
ENCODING:USASCII
CHARSET:1252
COMPRESSION:NONE
OLDFILEUID:NONE
NEWFILEUID:NONE

<OFX>
<SIGNONMSGSRSV1>
<SONRS>
<STATUS>
<CODE>0
<SEVERITY>INFO
</STATUS>
<DTSERVER>20240315120000[0:GMT]
<LANGUAGE>ENG
</SONRS>
</SIGNONMSGSRSV1>
<BANKMSGSRSV1>
<STMTTRNRS>
<TRNUID>1
<STATUS>
<CODE>0
<SEVERITY>INFO
</STATUS>
<STMTRS>
<CURDEF>USD
<BANKACCTFROM>
<BANKID>123456789
<ACCTID>1234567890
<ACCTTYPE>CHECKING
</BANKACCTFROM>
<BANKTRANLIST>
<DTSTART>20240101120000[0:GMT]
<DTEND>20240131120000[0:GMT]
<STMTTRN>
<TRNTYPE>DEBIT
<DTPOSTED>20240115120000[0:GMT]
<TRNAMT>-25.50
<FITID>2024011501
<NAME>STARBUCKS STORE #1234
</STMTTRN>
<STMTTRN>
<TRNTYPE>DEBIT
<DTPOSTED>20240120120000[0:GMT]
<TRNAMT>-125.00
<FITID>2024012001
<NAME>Whole Foods Market
</STMTTRN>
<STMTTRN>
<TRNTYPE>CREDIT
<DTPOSTED>20240105120000[0:GMT]
<TRNAMT>2500.00
<FITID>2024010501
<NAME>PAYROLL DEPOSIT
</STMTTRN>
<STMTTRN>
<TRNTYPE>DEBIT
<DTPOSTED>20231228120000[0:GMT]
<TRNAMT>-80.25
<FITID>2023122801
<NAME>POS PURCHASE GROCER
</STMTTRN>
<STMTTRN>
<TRNTYPE>CHECK
<DTPOSTED>20240125120000[0:GMT]
<TRNAMT>-500.00
<FITID>2024012501
<CHECKNUM>1234
<NAME>CHECK #1234
</STMTTRN>
</BANKTRANLIST>
<LEDGERBAL>
<BALAMT>1000.00
<DTASOF>20240131120000[0:GMT]
</LEDGERBAL>
</STMTRS>
</STMTTRNRS>
</BANKMSGSRSV1>
</OFX>`

const sampleCreditCardOFX = `OFXHEADER:100
DATA:OFXSGML
VERSION:102
SECURITY:NONE
ENCODING:USASCII
CHARSET:1252
COMPRESSION:NONE
OLDFILEUID:NONE
NEWFILEUID:NONE

<OFX>
<SIGNONMSGSRSV1>
<SONRS>
<STATUS>
<CODE>0
<SEVERITY>INFO
</STATUS>
<DTSERVER>20240315120000[0:GMT]
<LANGUAGE>ENG
</SONRS>
</SIGNONMSGSRSV1>
<CREDITCARDMSGSRSV1>
<CCSTMTTRNRS>
<TRNUID>1
<STATUS>
<CODE>0
<SEVERITY>INFO
</STATUS>
<CCSTMTRS>
<CURDEF>USD
<CCACCTFROM>
<ACCTID>4111111111111111
</CCACCTFROM>
<BANKTRANLIST>
<DTSTART>20240101120000[0:GMT]
<DTEND>20240131120000[0:GMT]
<STMTTRN>
<TRNTYPE>DEBIT
<DTPOSTED>20240110120000[0:GMT]
<TRNAMT>-45.99
<FITID>CC2024011001
<NAME>AMAZON.COM*RT4Y7HG2
</STMTTRN>
<STMTTRN>
<TRNTYPE>DEBIT
<DTPOSTED>20240115120000[0:GMT]
<TRNAMT>-15.00
<FITID>CC2024011501
<NAME>NETFLIX.COM
</STMTTRN>
</BANKTRANLIST>
<LEDGERBAL>
<BALAMT>-500.00
<DTASOF>20240131120000[0:GMT]
</LEDGERBAL>
</CCSTMTRS>
</CCSTMTTRNRS>
</CREDITCARDMSGSRSV1>
</OFX>`

func TestParseStatements(t *testing.T) {
	tests := []struct {
		name          string
		ofxData       string
		account       string
		expectedCount int
		expectedError bool
	}{
		{
			name:          "valid bank statement",
			ofxData:       sampleBankOFX,
			account:       "1234567890",
			expectedCount: 5,
		},
		{
			name:          "valid credit card statement",
			ofxData:       sampleCreditCardOFX,
			account:       "4111111111111111",
			expectedCount: 2,
		},
		{
			name:          "invalid OFX data",
			ofxData:       "not valid OFX",
			expectedError: true,
		},
		{
			name:          "empty OFX",
			ofxData:       "",
			expectedError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			parser := NewParser(nil)
			statements, err := parser.ParseStatements(context.Background(), strings.NewReader(tt.ofxData))

			if tt.expectedError {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			require.Len(t, statements, 1)
			assert.Equal(t, tt.account, statements[0].AccountID)
			assert.Len(t, statements[0].Transactions, tt.expectedCount)
		})
	}
}

func TestParseStatement_Bank(t *testing.T) {
	parser := NewParser(nil)

	stmt, err := parser.ParseStatement(context.Background(), strings.NewReader(sampleBankOFX))
	require.NoError(t, err)

	assert.Equal(t, "1234567890", stmt.AccountID)
	assert.Equal(t, 1000.00, stmt.Balance)
	assert.Equal(t, 2024, stmt.BalanceAsOf.Year())
	assert.Equal(t, time.January, stmt.BalanceAsOf.Month())
	require.Len(t, stmt.Transactions, 5)

	tx1 := stmt.Transactions[0]
	assert.Equal(t, "2024011501", tx1.ID)
	assert.Equal(t, "STARBUCKS STORE #1234", tx1.Name)
	assert.Equal(t, -25.50, tx1.Amount)
	assert.Equal(t, "DEBIT", tx1.Type)
	assert.Equal(t, "1234567890", tx1.AccountID)
	assert.Equal(t, 15, tx1.Date.Day())
	assert.NotEmpty(t, tx1.Hash)

	deposit := stmt.Transactions[2]
	assert.Equal(t, 2500.00, deposit.Amount)
	assert.True(t, deposit.IsCredit())

	assert.Equal(t, "POS PURCHASE GROCER", stmt.Transactions[3].Name)
}

func TestParseStatement_Activity(t *testing.T) {
	parser := NewParser(nil)

	stmt, err := parser.ParseStatement(context.Background(), strings.NewReader(sampleBankOFX))
	require.NoError(t, err)

	activity := stmt.Summarize(stmt.BalanceAsOf)
	assert.Equal(t, 1000.00, activity.CurrentBalance)
	assert.Equal(t, 2500.00, activity.CurrentMonthCredit)
	assert.Equal(t, 0.0, activity.PreviousMonthCredit)
	assert.Equal(t, 650.50, activity.CurrentMonthDebit)
	assert.Equal(t, 80.25, activity.PreviousMonthDebit)
	assert.Equal(t, 25, activity.LastTransaction.Day())
}

func TestParseStatement_CreditCard(t *testing.T) {
	parser := NewParser(nil)

	stmt, err := parser.ParseStatement(context.Background(), strings.NewReader(sampleCreditCardOFX))
	require.NoError(t, err)

	assert.Equal(t, "4111111111111111", stmt.AccountID)
	assert.Equal(t, -500.00, stmt.Balance)
	require.Len(t, stmt.Transactions, 2)
	assert.Equal(t, "AMAZON.COM*RT4Y7HG2", stmt.Transactions[0].Name)
	assert.Equal(t, -45.99, stmt.Transactions[0].Amount)
	assert.Equal(t, -15.00, stmt.Transactions[1].Amount)
}

func TestParseStatement_Canceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewParser(nil).ParseStatement(ctx, strings.NewReader(sampleBankOFX))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestPreprocessOFX(t *testing.T) {
	parser := NewParser(nil)

	in := "\n\n  <OFX>\n<SEVERITY>Info</SEVERITY>\n<CODE\n"
	out := parser.preprocessOFX(in)

	assert.True(t, strings.HasPrefix(out, "<OFX>"))
	assert.Contains(t, out, "<SEVERITY>INFO</SEVERITY>")
	assert.Contains(t, out, "<CODE>")
}

func TestDescription(t *testing.T) {
	tests := []struct {
		tx   ofxgo.Transaction
		name string
		want string
	}{
		{
			name: "payee wins",
			tx:   ofxgo.Transaction{Payee: &ofxgo.Payee{Name: "City Water"}, Name: "ACH DEBIT"},
			want: "City Water",
		},
		{
			name: "name trimmed",
			tx:   ofxgo.Transaction{Name: "  NETFLIX.COM  "},
			want: "NETFLIX.COM",
		},
		{
			name: "memo when name is blank",
			tx:   ofxgo.Transaction{Memo: "Transfer from savings"},
			want: "Transfer from savings",
		},
		{
			name: "nothing",
			tx:   ofxgo.Transaction{},
			want: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, description(tt.tx))
		})
	}
}
