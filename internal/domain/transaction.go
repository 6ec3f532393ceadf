package domain

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	xerrors "sacco-ledger-service/pkg/xerrors"
)

// FineStatus tracks cumulative repayment of an imposed fine
type FineStatus string

const (
	FineStatusUnpaid  FineStatus = "unpaid"
	FineStatusPartial FineStatus = "partial"
	FineStatusPaid    FineStatus = "paid"
)

// Fine is a business record that triggers postings. PaidAmount and Status
// are mutated only through the posting engine, never directly.
type Fine struct {
	ID         int64           `json:"id"`
	MemberID   int64           `json:"member_id"`
	Amount     decimal.Decimal `json:"amount"`
	PaidAmount decimal.Decimal `json:"paid_amount"`
	Status     FineStatus      `json:"status"`
	Reason     string          `json:"reason,omitempty"`
	PaidDate   *time.Time      `json:"paid_date,omitempty"`
	CreatedAt  time.Time       `json:"created_at"`
}

// StatusFor derives the repayment status from a cumulative paid amount
func (f *Fine) StatusFor(paidAmount decimal.Decimal) FineStatus {
	switch {
	case !paidAmount.IsPositive():
		return FineStatusUnpaid
	case paidAmount.LessThan(f.Amount):
		return FineStatusPartial
	default:
		return FineStatusPaid
	}
}

// FineMutation is the fine state change applied inside the posting atomic
// unit, so the journal entry and the status flip commit together.
// OldPaidAmount is the cumulative amount the caller computed the payment
// difference from; the store rejects the posting if the row has moved.
type FineMutation struct {
	FineID        int64
	OldPaidAmount decimal.Decimal
	PaidAmount    decimal.Decimal
	Status        FineStatus
	PaidDate      *time.Time
}

// WithdrawalKind is the tagged dispatch for outgoing money movements. Each
// kind has exactly one posting rule; unknown kinds are rejected up front.
type WithdrawalKind string

const (
	WithdrawalExpense          WithdrawalKind = "expense"
	WithdrawalTransfer         WithdrawalKind = "transfer"
	WithdrawalRefund           WithdrawalKind = "refund"
	WithdrawalDividend         WithdrawalKind = "dividend"
	WithdrawalLoanDisbursement WithdrawalKind = "loan_disbursement"
)

// IsValid checks whether the kind has a posting rule
func (k WithdrawalKind) IsValid() bool {
	switch k {
	case WithdrawalExpense, WithdrawalTransfer, WithdrawalRefund,
		WithdrawalDividend, WithdrawalLoanDisbursement:
		return true
	}
	return false
}

// Withdrawal is the business record for any outgoing movement from a real
// account. CounterAccountID is only meaningful for the transfer kind.
type Withdrawal struct {
	ID               int64           `json:"id"`
	Kind             WithdrawalKind  `json:"kind"`
	AccountID        int64           `json:"account_id"`
	CounterAccountID int64           `json:"counter_account_id,omitempty"`
	Amount           decimal.Decimal `json:"amount"`
	Category         string          `json:"category,omitempty"` // expense category name
	Description      string          `json:"description,omitempty"`
	Reference        string          `json:"reference"`
	Date             time.Time       `json:"date"`
	CreatedAt        time.Time       `json:"created_at"`
}

// Validate checks the withdrawal before it reaches the posting engine
func (w *Withdrawal) Validate() error {
	if !w.Kind.IsValid() {
		return fmt.Errorf("%w: %q", xerrors.ErrUnknownWithdrawalKind, w.Kind)
	}
	if !w.Amount.IsPositive() {
		return fmt.Errorf("%w: got %s", xerrors.ErrNonPositiveAmount, w.Amount)
	}
	if w.AccountID == 0 {
		return fmt.Errorf("%w: source account is required", xerrors.ErrValidation)
	}
	if w.Kind == WithdrawalTransfer && w.CounterAccountID == w.AccountID {
		return fmt.Errorf("%w: account %d", xerrors.ErrSameAccountEntry, w.AccountID)
	}
	if w.Kind == WithdrawalExpense && w.Category == "" {
		return fmt.Errorf("%w: expense category is required", xerrors.ErrValidation)
	}
	return nil
}

// Deposit is the business record for incoming member money
type Deposit struct {
	ID          int64           `json:"id"`
	MemberID    int64           `json:"member_id"`
	AccountID   int64           `json:"account_id"`
	Amount      decimal.Decimal `json:"amount"`
	Description string          `json:"description,omitempty"`
	Reference   string          `json:"reference"`
	Date        time.Time       `json:"date"`
	CreatedAt   time.Time       `json:"created_at"`
}
