package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// BalanceSummaryAccount is one real account line on the dashboard summary
type BalanceSummaryAccount struct {
	AccountID   int64           `json:"account_id"`
	AccountName string          `json:"account_name"`
	Balance     decimal.Decimal `json:"balance"`
}

// BalanceSummaryGroup groups real accounts of one type with their subtotal
type BalanceSummaryGroup struct {
	Type     AccountType              `json:"type"`
	Accounts []*BalanceSummaryAccount `json:"accounts"`
	Total    decimal.Decimal          `json:"total"`
}

// BalanceSummary is the dashboard view: real (non-GL) accounts grouped by
// type with per-type totals and an overall total
type BalanceSummary struct {
	Groups      []*BalanceSummaryGroup `json:"groups"`
	Total       decimal.Decimal        `json:"total"`
	GeneratedAt time.Time              `json:"generated_at"`
}

// CategorySummaryRow is one category's net position over all time
type CategorySummaryRow struct {
	LedgerID     int64           `json:"ledger_id"`
	CategoryName string          `json:"category_name"`
	CategoryType CategoryType    `json:"category_type"`
	Balance      decimal.Decimal `json:"balance"`
	TotalAmount  decimal.Decimal `json:"total_amount"`
}

// CategorySummary is the income/expense rollup across category ledgers
type CategorySummary struct {
	Rows          []*CategorySummaryRow `json:"rows"`
	TotalIncome   decimal.Decimal       `json:"total_income"`
	TotalExpenses decimal.Decimal       `json:"total_expenses"`
	NetResult     decimal.Decimal       `json:"net_result"`
}
