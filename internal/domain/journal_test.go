package domain

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	xerrors "sacco-ledger-service/pkg/xerrors"
)

func validEntry() *JournalEntry {
	return &JournalEntry{
		Date:            time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC),
		Reference:       "JE-TEST-001",
		Description:     "test entry",
		DebitAccountID:  1,
		DebitAmount:     decimal.NewFromInt(500),
		CreditAccountID: 2,
		CreditAmount:    decimal.NewFromInt(500),
		Category:        CategoryDeposit,
	}
}

func TestJournalEntryValidate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		mutate  func(*JournalEntry)
		wantErr error
	}{
		{
			name:   "valid entry",
			mutate: func(j *JournalEntry) {},
		},
		{
			name: "unbalanced sides",
			mutate: func(j *JournalEntry) {
				j.CreditAmount = decimal.NewFromInt(499)
			},
			wantErr: xerrors.ErrUnbalancedEntry,
		},
		{
			name: "zero amount",
			mutate: func(j *JournalEntry) {
				j.DebitAmount = decimal.Zero
				j.CreditAmount = decimal.Zero
			},
			wantErr: xerrors.ErrNonPositiveAmount,
		},
		{
			name: "negative amount",
			mutate: func(j *JournalEntry) {
				j.DebitAmount = decimal.NewFromInt(-10)
				j.CreditAmount = decimal.NewFromInt(-10)
			},
			wantErr: xerrors.ErrNonPositiveAmount,
		},
		{
			name: "same account both sides",
			mutate: func(j *JournalEntry) {
				j.CreditAccountID = j.DebitAccountID
			},
			wantErr: xerrors.ErrSameAccountEntry,
		},
		{
			name: "missing reference",
			mutate: func(j *JournalEntry) {
				j.Reference = ""
			},
			wantErr: xerrors.ErrValidation,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			entry := validEntry()
			tt.mutate(entry)
			err := entry.Validate()
			if tt.wantErr == nil {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, tt.wantErr)
			}
		})
	}
}

func TestReversalOf(t *testing.T) {
	t.Parallel()

	orig := validEntry()
	orig.ID = 42
	now := time.Date(2026, 3, 11, 9, 0, 0, 0, time.UTC)

	rev := ReversalOf(orig, "duplicate capture", now)

	assert.Equal(t, orig.CreditAccountID, rev.DebitAccountID)
	assert.Equal(t, orig.DebitAccountID, rev.CreditAccountID)
	assert.True(t, rev.DebitAmount.Equal(orig.DebitAmount))
	assert.True(t, rev.CreditAmount.Equal(orig.CreditAmount))
	assert.Equal(t, "VOID-"+orig.Reference, rev.Reference)
	assert.Equal(t, CategoryVoidReversal, rev.Category)
	assert.Equal(t, now, rev.Date)
	assert.Contains(t, rev.Description, "duplicate capture")

	// Swapped sides must still form a valid entry.
	require.NoError(t, rev.Validate())
}

func TestPostingValidate(t *testing.T) {
	t.Parallel()

	t.Run("nil entry rejected", func(t *testing.T) {
		t.Parallel()
		p := &Posting{}
		assert.ErrorIs(t, p.Validate(), xerrors.ErrValidation)
	})

	t.Run("invalid category posting rejected", func(t *testing.T) {
		t.Parallel()
		p := &Posting{
			Entry: validEntry(),
			Category: &CategoryPosting{
				Type:   CategoryEntryType("bogus"),
				Amount: decimal.NewFromInt(500),
			},
		}
		assert.ErrorIs(t, p.Validate(), xerrors.ErrUnknownEntryType)
	})

	t.Run("category posting without name or ledger rejected", func(t *testing.T) {
		t.Parallel()
		p := &Posting{
			Entry: validEntry(),
			Category: &CategoryPosting{
				Type:   CategoryEntryCredit,
				Amount: decimal.NewFromInt(500),
			},
		}
		assert.ErrorIs(t, p.Validate(), xerrors.ErrValidation)
	})
}

func TestWithdrawalValidate(t *testing.T) {
	t.Parallel()

	base := func() *Withdrawal {
		return &Withdrawal{
			Kind:      WithdrawalExpense,
			AccountID: 1,
			Amount:    decimal.NewFromInt(200),
			Category:  "Operating Costs",
			Reference: "WDR-TEST-001",
		}
	}

	tests := []struct {
		name    string
		mutate  func(*Withdrawal)
		wantErr error
	}{
		{name: "valid expense", mutate: func(w *Withdrawal) {}},
		{
			name:    "unknown kind",
			mutate:  func(w *Withdrawal) { w.Kind = "teleport" },
			wantErr: xerrors.ErrUnknownWithdrawalKind,
		},
		{
			name:    "non positive amount",
			mutate:  func(w *Withdrawal) { w.Amount = decimal.Zero },
			wantErr: xerrors.ErrNonPositiveAmount,
		},
		{
			name:    "missing source account",
			mutate:  func(w *Withdrawal) { w.AccountID = 0 },
			wantErr: xerrors.ErrValidation,
		},
		{
			name: "transfer to same account",
			mutate: func(w *Withdrawal) {
				w.Kind = WithdrawalTransfer
				w.CounterAccountID = w.AccountID
			},
			wantErr: xerrors.ErrSameAccountEntry,
		},
		{
			name:    "expense without category",
			mutate:  func(w *Withdrawal) { w.Category = "" },
			wantErr: xerrors.ErrValidation,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			w := base()
			tt.mutate(w)
			err := w.Validate()
			if tt.wantErr == nil {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, tt.wantErr)
			}
		})
	}
}

func TestFineStatusFor(t *testing.T) {
	t.Parallel()

	fine := &Fine{Amount: decimal.NewFromInt(1000)}

	assert.Equal(t, FineStatusUnpaid, fine.StatusFor(decimal.Zero))
	assert.Equal(t, FineStatusUnpaid, fine.StatusFor(decimal.NewFromInt(-5)))
	assert.Equal(t, FineStatusPartial, fine.StatusFor(decimal.NewFromInt(400)))
	assert.Equal(t, FineStatusPaid, fine.StatusFor(decimal.NewFromInt(1000)))
	assert.Equal(t, FineStatusPaid, fine.StatusFor(decimal.NewFromInt(1200)))
}

func TestNextBalance(t *testing.T) {
	t.Parallel()

	prior := decimal.NewFromInt(100)

	credit := NextBalance(prior, CategoryEntryCredit, decimal.NewFromInt(40))
	assert.True(t, credit.Equal(decimal.NewFromInt(140)))

	debit := NextBalance(prior, CategoryEntryDebit, decimal.NewFromInt(40))
	assert.True(t, debit.Equal(decimal.NewFromInt(60)))

	// Transfers carry a signed delta chosen by the caller.
	out := NextBalance(prior, CategoryEntryTransfer, decimal.NewFromInt(-150))
	assert.True(t, out.Equal(decimal.NewFromInt(-50)), "negative balances are recorded, not rejected")
}

func TestNormalizeAccountName(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "Fines Receivable", NormalizeAccountName("  Fines   Receivable "))
	assert.Equal(t, "Petty Cash", NormalizeAccountName("Petty Cash"))
	assert.Equal(t, "", NormalizeAccountName("   "))
}

func TestIsGLName(t *testing.T) {
	t.Parallel()

	assert.True(t, IsGLName("Fines Receivable"))
	assert.True(t, IsGLName("Dividends Payable"))
	assert.True(t, IsGLName("Member Deposits"))
	assert.True(t, IsGLName("Loans Ledger"))
	assert.False(t, IsGLName("Cashbox"))
	assert.False(t, IsGLName("Mpesa"))
}
