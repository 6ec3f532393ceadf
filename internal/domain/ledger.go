package domain

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	xerrors "sacco-ledger-service/pkg/xerrors"
)

// CategoryType classifies a category ledger
type CategoryType string

const (
	CategoryTypeIncome  CategoryType = "income"
	CategoryTypeExpense CategoryType = "expense"
)

// IsValid checks whether the category type is known
func (t CategoryType) IsValid() bool {
	return t == CategoryTypeIncome || t == CategoryTypeExpense
}

// CategoryEntryType is the direction of a category ledger entry
type CategoryEntryType string

const (
	CategoryEntryCredit   CategoryEntryType = "credit"
	CategoryEntryDebit    CategoryEntryType = "debit"
	CategoryEntryTransfer CategoryEntryType = "transfer"
)

// IsValid checks whether the entry type is known
func (t CategoryEntryType) IsValid() bool {
	return t == CategoryEntryCredit || t == CategoryEntryDebit || t == CategoryEntryTransfer
}

// CategoryLedger is an auxiliary per-category sub-ledger tracking income and
// expense volumes alongside the general ledger. Balance is the running net;
// TotalAmount accumulates absolute volume and only grows.
type CategoryLedger struct {
	ID           int64           `json:"id"`
	CategoryName string          `json:"category_name"`
	CategoryType CategoryType    `json:"category_type"`
	Balance      decimal.Decimal `json:"balance"`
	TotalAmount  decimal.Decimal `json:"total_amount"`
	CreatedAt    time.Time       `json:"created_at"`
}

// CategoryLedgerEntry is one appended movement on a category ledger.
// BalanceAfter records the ledger balance immediately after this entry.
type CategoryLedgerEntry struct {
	ID           int64             `json:"id"`
	LedgerID     int64             `json:"ledger_id"`
	Type         CategoryEntryType `json:"type"`
	Amount       decimal.Decimal   `json:"amount"`
	BalanceAfter decimal.Decimal   `json:"balance_after"`
	Description  string            `json:"description"`
	SourceType   string            `json:"source_type,omitempty"`
	Reference    string            `json:"reference"`
	Narration    string            `json:"narration,omitempty"`
	Date         time.Time         `json:"date"`
	CreatedAt    time.Time         `json:"created_at"`
}

// CategoryPosting describes a category ledger append carried inside an
// atomic posting. The ledger is resolved by ID when set, otherwise
// get-or-created by name and type.
type CategoryPosting struct {
	LedgerID     int64
	CategoryName string
	CategoryType CategoryType
	Type         CategoryEntryType
	Amount       decimal.Decimal
	Description  string
	SourceType   string
	Reference    string
	Narration    string
	Date         time.Time
}

// Validate rejects a malformed category posting before any write
func (cp *CategoryPosting) Validate() error {
	if !cp.Type.IsValid() {
		return fmt.Errorf("%w: %q", xerrors.ErrUnknownEntryType, cp.Type)
	}
	if !cp.Amount.IsPositive() {
		return fmt.Errorf("%w: got %s", xerrors.ErrNonPositiveAmount, cp.Amount)
	}
	if cp.LedgerID == 0 {
		if cp.CategoryName == "" {
			return fmt.Errorf("%w: category name is required", xerrors.ErrValidation)
		}
		if !cp.CategoryType.IsValid() {
			return fmt.Errorf("%w: %q", xerrors.ErrUnknownCategoryType, cp.CategoryType)
		}
	}
	return nil
}

// NextBalance applies one entry to a prior balance: credits add, debits
// subtract, transfers carry a signed amount set by the caller. Negative
// results are allowed; the ledger records what happened, it does not gate it.
func NextBalance(prior decimal.Decimal, entryType CategoryEntryType, amount decimal.Decimal) decimal.Decimal {
	switch entryType {
	case CategoryEntryCredit:
		return prior.Add(amount)
	case CategoryEntryDebit:
		return prior.Sub(amount)
	default:
		return prior.Add(amount)
	}
}
