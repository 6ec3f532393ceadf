package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// StatementRow is one line of an account statement: the entry as seen from
// the statement account's side, with the running balance after it applied
type StatementRow struct {
	EntryID        int64           `json:"entry_id"`
	Date           time.Time       `json:"date"`
	Reference      string          `json:"reference"`
	Description    string          `json:"description"`
	Category       string          `json:"category"`
	MoneyIn        decimal.Decimal `json:"money_in"`
	MoneyOut       decimal.Decimal `json:"money_out"`
	RunningBalance decimal.Decimal `json:"running_balance"`
}

// StatementMeta summarizes a statement period
type StatementMeta struct {
	AccountID      int64           `json:"account_id,omitempty"`
	AccountName    string          `json:"account_name,omitempty"`
	StartDate      time.Time       `json:"start_date"`
	EndDate        time.Time       `json:"end_date"`
	OpeningBalance decimal.Decimal `json:"opening_balance"`
	ClosingBalance decimal.Decimal `json:"closing_balance"`
	TotalMoneyIn   decimal.Decimal `json:"total_money_in"`
	TotalMoneyOut  decimal.Decimal `json:"total_money_out"`
	NetChange      decimal.Decimal `json:"net_change"`
	EntryCount     int             `json:"entry_count"`
}

// AccountStatement replays an account's entries over a period with the
// opening balance computed as of the period start
type AccountStatement struct {
	Rows []*StatementRow `json:"rows"`
	Meta StatementMeta   `json:"meta"`
}

// GeneralLedgerAccount is the per-account section of the general ledger view
type GeneralLedgerAccount struct {
	Account        *Account        `json:"account"`
	Rows           []*StatementRow `json:"rows"`
	TotalDebits    decimal.Decimal `json:"total_debits"`
	TotalCredits   decimal.Decimal `json:"total_credits"`
	NetChange      decimal.Decimal `json:"net_change"`
	ClosingBalance decimal.Decimal `json:"closing_balance"`
}

// GeneralLedger lists every account touched in a period plus a master
// cross-account reconciliation
type GeneralLedger struct {
	Accounts     []*GeneralLedgerAccount `json:"accounts"`
	StartDate    time.Time               `json:"start_date"`
	EndDate      time.Time               `json:"end_date"`
	TotalDebits  decimal.Decimal         `json:"total_debits"`
	TotalCredits decimal.Decimal         `json:"total_credits"`
	IsBalanced   bool                    `json:"is_balanced"`
}

// TrialBalanceRow places one account's balance in the debit or the credit
// column per its natural balance sign
type TrialBalanceRow struct {
	AccountID   int64           `json:"account_id"`
	AccountName string          `json:"account_name"`
	AccountType AccountType     `json:"account_type"`
	Debit       decimal.Decimal `json:"debit"`
	Credit      decimal.Decimal `json:"credit"`
}

// TrialBalance is the one-row-per-account balance check as of a point in
// time; TotalDebit must equal TotalCredit
type TrialBalance struct {
	Rows        []*TrialBalanceRow `json:"rows"`
	AsOf        time.Time          `json:"as_of"`
	TotalDebit  decimal.Decimal    `json:"total_debit"`
	TotalCredit decimal.Decimal    `json:"total_credit"`
	IsBalanced  bool               `json:"is_balanced"`
}
