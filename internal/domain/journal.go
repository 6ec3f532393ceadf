package domain

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	xerrors "sacco-ledger-service/pkg/xerrors"
)

// Category labels attached by the posting engine
const (
	CategoryFine             = "fine"
	CategoryFinePayment      = "fine_payment"
	CategoryDeposit          = "deposit"
	CategoryExpense          = "expense"
	CategoryTransferMovement = "transfer"
	CategoryRefund           = "refund"
	CategoryDividend         = "dividend"
	CategoryLoanDisbursement = "loan_disbursement"
	CategoryVoidReversal     = "void_reversal"
)

// JournalEntry is an immutable balanced double-entry record: exactly one
// debit account and one credit account for a single amount. Entries are
// created only by the posting engine and never edited; a void appends a
// compensating entry and flips IsVoided on the original.
type JournalEntry struct {
	ID              int64           `json:"id"`
	Date            time.Time       `json:"date"`
	Reference       string          `json:"reference"`
	Description     string          `json:"description"`
	Narration       string          `json:"narration,omitempty"`
	DebitAccountID  int64           `json:"debit_account_id"`
	DebitAmount     decimal.Decimal `json:"debit_amount"`
	CreditAccountID int64           `json:"credit_account_id"`
	CreditAmount    decimal.Decimal `json:"credit_amount"`
	Category        string          `json:"category"`
	IsVoided        bool            `json:"is_voided"`
	IdempotencyKey  *string         `json:"idempotency_key,omitempty"`
	CreatedAt       time.Time       `json:"created_at"`
}

// Validate enforces the double-entry invariants before any write
func (j *JournalEntry) Validate() error {
	if !j.DebitAmount.Equal(j.CreditAmount) {
		return fmt.Errorf("%w: debit %s vs credit %s",
			xerrors.ErrUnbalancedEntry, j.DebitAmount, j.CreditAmount)
	}
	if !j.DebitAmount.IsPositive() {
		return fmt.Errorf("%w: got %s", xerrors.ErrNonPositiveAmount, j.DebitAmount)
	}
	if j.DebitAccountID == j.CreditAccountID {
		return fmt.Errorf("%w: account %d on both sides", xerrors.ErrSameAccountEntry, j.DebitAccountID)
	}
	if j.Reference == "" {
		return fmt.Errorf("%w: reference is required", xerrors.ErrValidation)
	}
	return nil
}

// Amount returns the single monetary amount of the entry
func (j *JournalEntry) Amount() decimal.Decimal {
	return j.DebitAmount
}

// ReversalOf builds the compensating entry for a void: debit and credit
// sides swapped, same amount, so the pair nets to zero on every account
func ReversalOf(orig *JournalEntry, reason string, now time.Time) *JournalEntry {
	return &JournalEntry{
		Date:            now,
		Reference:       "VOID-" + orig.Reference,
		Description:     fmt.Sprintf("Reversal of %s: %s", orig.Reference, reason),
		Narration:       orig.Narration,
		DebitAccountID:  orig.CreditAccountID,
		DebitAmount:     orig.CreditAmount,
		CreditAccountID: orig.DebitAccountID,
		CreditAmount:    orig.DebitAmount,
		Category:        CategoryVoidReversal,
	}
}

// JournalFilter represents filter criteria for journal queries
type JournalFilter struct {
	AccountID     *int64
	Category      *string
	StartDate     *time.Time
	EndDate       *time.Time
	IncludeVoided bool
	Limit         int
	Offset        int
}

// Posting is the single atomic unit of work handed to the store: the journal
// entry, its balance deltas, an optional category ledger append, and an
// optional business-record mutation all commit or fail together.
type Posting struct {
	Entry    *JournalEntry
	Category *CategoryPosting
	Fine     *FineMutation
}

// Validate rejects a posting before any write happens
func (p *Posting) Validate() error {
	if p.Entry == nil {
		return fmt.Errorf("%w: posting requires a journal entry", xerrors.ErrValidation)
	}
	if err := p.Entry.Validate(); err != nil {
		return err
	}
	if p.Category != nil {
		if err := p.Category.Validate(); err != nil {
			return err
		}
	}
	return nil
}
