package domain

import (
	"regexp"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// AccountType classifies a ledger account
type AccountType string

const (
	AccountTypeCash        AccountType = "cash"
	AccountTypeBank        AccountType = "bank"
	AccountTypeMobileMoney AccountType = "mobileMoney"
	AccountTypePettyCash   AccountType = "pettyCash"
	AccountTypeGL          AccountType = "gl"
)

// IsValid checks whether the account type is one of the known types
func (t AccountType) IsValid() bool {
	switch t {
	case AccountTypeCash, AccountTypeBank, AccountTypeMobileMoney, AccountTypePettyCash, AccountTypeGL:
		return true
	}
	return false
}

// Account represents a named pool of value with a cached running balance.
// The cached balance is a materialized fold over journal history: debit
// postings add, credit postings subtract, uniformly across all types, so
// the signed sum over the whole chart is always zero.
type Account struct {
	ID          int64           `json:"id"`
	Name        string          `json:"name"` // unique, normalized
	Type        AccountType     `json:"type"`
	Currency    string          `json:"currency"`
	Description string          `json:"description,omitempty"`
	Balance     decimal.Decimal `json:"balance"`
	IsActive    bool            `json:"is_active"`
	CreatedAt   time.Time       `json:"-"`
	UpdatedAt   time.Time       `json:"-"`
}

// IsGL returns true for general-ledger bookkeeping accounts (receivables,
// payables, income pools) as opposed to real money accounts
func (a *Account) IsGL() bool {
	return a.Type == AccountTypeGL
}

// IsValid checks required fields
func (a *Account) IsValid() bool {
	return a.Name != "" && a.Type.IsValid()
}

// AccountFilter represents filter criteria for account queries
type AccountFilter struct {
	Type     *AccountType
	IsActive *bool
	IsGL     *bool
}

var nameSpaces = regexp.MustCompile(`\s+`)

// NormalizeAccountName trims and collapses internal whitespace so that
// "Fines  Receivable " and "Fines Receivable" resolve to the same account
func NormalizeAccountName(name string) string {
	return nameSpaces.ReplaceAllString(strings.TrimSpace(name), " ")
}

// Names of bookkeeping accounts the posting engine creates on demand
const (
	AccountFinesReceivable  = "Fines Receivable"
	AccountFinesCollected   = "Fines Collected"
	AccountMemberDeposits   = "Member Deposits"
	AccountLoansLedger      = "Loans Ledger"
	AccountRefundsPayable   = "Refunds Payable"
	AccountDividendsPayable = "Dividends Payable"
)

// glNamePatterns classify accounts as bookkeeping pools by name suffix,
// matching the naming convention of the chart of accounts
var glNamePatterns = []*regexp.Regexp{
	regexp.MustCompile(`Received$`),
	regexp.MustCompile(`Payable$`),
	regexp.MustCompile(`Receivable$`),
	regexp.MustCompile(`Expense$`),
	regexp.MustCompile(`Collected$`),
	regexp.MustCompile(`Income$`),
	regexp.MustCompile(`Deposits$`),
	regexp.MustCompile(`Ledger$`),
	regexp.MustCompile(`GL Account$`),
}

// IsGLName reports whether an account name follows one of the general-ledger
// naming patterns
func IsGLName(name string) bool {
	for _, p := range glNamePatterns {
		if p.MatchString(name) {
			return true
		}
	}
	return false
}

// DefaultChartAccounts is the chart of accounts seeded at startup. Further
// accounts are created lazily by the registry as postings reference them.
var DefaultChartAccounts = []*Account{
	{
		Name:        "Cashbox",
		Type:        AccountTypeCash,
		Currency:    "KES",
		Description: "Office cash drawer",
		IsActive:    true,
	},
	{
		Name:        "Bank",
		Type:        AccountTypeBank,
		Currency:    "KES",
		Description: "Main settlement bank account",
		IsActive:    true,
	},
	{
		Name:        "Mpesa",
		Type:        AccountTypeMobileMoney,
		Currency:    "KES",
		Description: "Mobile money collection account",
		IsActive:    true,
	},
	{
		Name:        "Petty Cash",
		Type:        AccountTypePettyCash,
		Currency:    "KES",
		Description: "Small office expenses",
		IsActive:    true,
	},
	{
		Name:        AccountFinesReceivable,
		Type:        AccountTypeGL,
		Currency:    "KES",
		Description: "Fines imposed but not yet paid",
		IsActive:    true,
	},
	{
		Name:        AccountFinesCollected,
		Type:        AccountTypeGL,
		Currency:    "KES",
		Description: "Fine income",
		IsActive:    true,
	},
	{
		Name:        AccountMemberDeposits,
		Type:        AccountTypeGL,
		Currency:    "KES",
		Description: "Member savings pool",
		IsActive:    true,
	},
	{
		Name:        AccountLoansLedger,
		Type:        AccountTypeGL,
		Currency:    "KES",
		Description: "Outstanding loan principal",
		IsActive:    true,
	},
}
