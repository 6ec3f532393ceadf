package usecase

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"sacco-ledger-service/internal/domain"
	publisher "sacco-ledger-service/internal/pub"
	"sacco-ledger-service/internal/repository/memory"
	"sacco-ledger-service/pkg/utils"
	xerrors "sacco-ledger-service/pkg/xerrors"
)

type fixture struct {
	mem     *memory.Store
	posting *PostingUsecase
	voids   *VoidUsecase
	cash    *domain.Account
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	mem := memory.NewStore()
	log := zap.NewNop()
	refs := utils.NewReferenceGenerator()

	cash, err := mem.GetOrCreate(context.Background(), "Cashbox", domain.AccountTypeCash, "office cash")
	require.NoError(t, err)

	return &fixture{
		mem:     mem,
		posting: NewPostingUsecase(mem.Accounts(), mem.Fines(), mem.Ledger(), refs, publisher.NoopPublisher{}, log),
		voids:   NewVoidUsecase(mem.Ledger(), mem.Journal(), mem.Voids(), publisher.NoopPublisher{}, log),
		cash:    cash,
	}
}

func TestImposeFine(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	ctx := context.Background()

	fine, entry, err := f.posting.ImposeFine(ctx, 7, decimal.NewFromInt(1000), "late arrival", time.Now(), "")
	require.NoError(t, err)

	assert.Equal(t, domain.FineStatusUnpaid, fine.Status)
	assert.True(t, fine.PaidAmount.IsZero())
	assert.Equal(t, domain.CategoryFine, entry.Category)
	assert.True(t, strings.HasPrefix(entry.Reference, "FINE-"))

	receivable, err := f.mem.GetByName(ctx, domain.AccountFinesReceivable)
	require.NoError(t, err)
	assert.True(t, receivable.Balance.Equal(decimal.NewFromInt(1000)))

	collected, err := f.mem.GetByName(ctx, domain.AccountFinesCollected)
	require.NoError(t, err)
	assert.True(t, collected.Balance.Equal(decimal.NewFromInt(-1000)))

	_, _, err = f.posting.ImposeFine(ctx, 7, decimal.Zero, "nothing", time.Now(), "")
	assert.ErrorIs(t, err, xerrors.ErrNonPositiveAmount)
}

func TestRecordFinePaymentLifecycle(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	ctx := context.Background()

	fine, _, err := f.posting.ImposeFine(ctx, 7, decimal.NewFromInt(1000), "late arrival", time.Now(), "")
	require.NoError(t, err)

	// Partial payment: only the difference is posted, no paid date yet.
	updated, entry, err := f.posting.RecordFinePayment(ctx, fine.ID, decimal.NewFromInt(400), f.cash.ID, time.Now(), "")
	require.NoError(t, err)
	assert.Equal(t, domain.FineStatusPartial, updated.Status)
	assert.Nil(t, updated.PaidDate)
	assert.True(t, entry.DebitAmount.Equal(decimal.NewFromInt(400)))
	assert.Equal(t, f.cash.ID, entry.DebitAccountID)

	// Cumulative amount to full: posts the remaining 600 and stamps the date.
	updated, entry, err = f.posting.RecordFinePayment(ctx, fine.ID, decimal.NewFromInt(1000), f.cash.ID, time.Now(), "")
	require.NoError(t, err)
	assert.Equal(t, domain.FineStatusPaid, updated.Status)
	assert.NotNil(t, updated.PaidDate)
	assert.True(t, entry.DebitAmount.Equal(decimal.NewFromInt(600)))

	cash, err := f.mem.GetByID(ctx, f.cash.ID)
	require.NoError(t, err)
	assert.True(t, cash.Balance.Equal(decimal.NewFromInt(1000)))
}

func TestRecordFinePaymentNoOpOnLowerAmount(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	ctx := context.Background()

	fine, _, err := f.posting.ImposeFine(ctx, 7, decimal.NewFromInt(1000), "late arrival", time.Now(), "")
	require.NoError(t, err)

	_, _, err = f.posting.RecordFinePayment(ctx, fine.ID, decimal.NewFromInt(400), f.cash.ID, time.Now(), "")
	require.NoError(t, err)

	// Replaying the same cumulative amount posts nothing.
	updated, entry, err := f.posting.RecordFinePayment(ctx, fine.ID, decimal.NewFromInt(400), f.cash.ID, time.Now(), "")
	require.NoError(t, err)
	assert.Nil(t, entry)
	assert.True(t, updated.PaidAmount.Equal(decimal.NewFromInt(400)))

	// A lower cumulative amount does not roll anything back either.
	updated, entry, err = f.posting.RecordFinePayment(ctx, fine.ID, decimal.NewFromInt(100), f.cash.ID, time.Now(), "")
	require.NoError(t, err)
	assert.Nil(t, entry)
	assert.True(t, updated.PaidAmount.Equal(decimal.NewFromInt(400)))

	_, _, err = f.posting.RecordFinePayment(ctx, 9999, decimal.NewFromInt(100), f.cash.ID, time.Now(), "")
	assert.ErrorIs(t, err, xerrors.ErrFineNotFound)
}

func TestRecordDeposit(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	ctx := context.Background()

	entry, err := f.posting.RecordDeposit(ctx, &domain.Deposit{
		MemberID:  12,
		AccountID: f.cash.ID,
		Amount:    decimal.NewFromInt(2500),
	}, "dep-12-2026-04")
	require.NoError(t, err)

	assert.Equal(t, domain.CategoryDeposit, entry.Category)
	assert.True(t, strings.HasPrefix(entry.Reference, "DEP-"))

	deposits, err := f.mem.GetByName(ctx, domain.AccountMemberDeposits)
	require.NoError(t, err)
	assert.True(t, deposits.Balance.Equal(decimal.NewFromInt(-2500)))

	// Same idempotency key replays the original entry.
	again, err := f.posting.RecordDeposit(ctx, &domain.Deposit{
		MemberID:  12,
		AccountID: f.cash.ID,
		Amount:    decimal.NewFromInt(2500),
	}, "dep-12-2026-04")
	require.NoError(t, err)
	assert.Equal(t, entry.ID, again.ID)

	cash, err := f.mem.GetByID(ctx, f.cash.ID)
	require.NoError(t, err)
	assert.True(t, cash.Balance.Equal(decimal.NewFromInt(2500)))
}

func TestRecordWithdrawalExpense(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.posting.RecordDeposit(ctx, &domain.Deposit{
		MemberID: 1, AccountID: f.cash.ID, Amount: decimal.NewFromInt(5000),
	}, "")
	require.NoError(t, err)

	entry, err := f.posting.RecordWithdrawal(ctx, &domain.Withdrawal{
		Kind:      domain.WithdrawalExpense,
		AccountID: f.cash.ID,
		Amount:    decimal.NewFromInt(800),
		Category:  "Operating Costs",
	}, "")
	require.NoError(t, err)

	assert.Equal(t, domain.CategoryExpense, entry.Category)
	assert.Equal(t, f.cash.ID, entry.CreditAccountID)
	assert.True(t, strings.HasPrefix(entry.Reference, "WDR-"))

	// The expense kind books against a lazily created expense account and
	// mirrors the movement on the category ledger.
	expenseAcct, err := f.mem.GetByName(ctx, "Operating Costs")
	require.NoError(t, err)
	assert.True(t, expenseAcct.Balance.Equal(decimal.NewFromInt(800)))

	ledgers, err := f.mem.ListLedgers(ctx)
	require.NoError(t, err)
	require.Len(t, ledgers, 1)
	assert.Equal(t, "Operating Costs", ledgers[0].CategoryName)
	assert.Equal(t, domain.CategoryTypeExpense, ledgers[0].CategoryType)
	assert.True(t, ledgers[0].Balance.Equal(decimal.NewFromInt(800)))

	legs, err := f.mem.ListLedgerEntries(ctx, ledgers[0].ID)
	require.NoError(t, err)
	require.Len(t, legs, 1)
	assert.Equal(t, entry.Reference, legs[0].Reference)
}

func TestRecordWithdrawalTransfer(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	ctx := context.Background()

	bank, err := f.mem.GetOrCreate(ctx, "Bank", domain.AccountTypeBank, "")
	require.NoError(t, err)

	_, err = f.posting.RecordDeposit(ctx, &domain.Deposit{
		MemberID: 1, AccountID: f.cash.ID, Amount: decimal.NewFromInt(3000),
	}, "")
	require.NoError(t, err)

	entry, err := f.posting.RecordWithdrawal(ctx, &domain.Withdrawal{
		Kind:             domain.WithdrawalTransfer,
		AccountID:        f.cash.ID,
		CounterAccountID: bank.ID,
		Amount:           decimal.NewFromInt(2000),
	}, "")
	require.NoError(t, err)
	assert.Equal(t, bank.ID, entry.DebitAccountID)
	assert.Equal(t, f.cash.ID, entry.CreditAccountID)

	gotBank, err := f.mem.GetByID(ctx, bank.ID)
	require.NoError(t, err)
	assert.True(t, gotBank.Balance.Equal(decimal.NewFromInt(2000)))

	// Transfer without a destination is rejected before any write.
	_, err = f.posting.RecordWithdrawal(ctx, &domain.Withdrawal{
		Kind:      domain.WithdrawalTransfer,
		AccountID: f.cash.ID,
		Amount:    decimal.NewFromInt(100),
	}, "")
	assert.ErrorIs(t, err, xerrors.ErrValidation)
}

func TestRecordWithdrawalBookkeepingKinds(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.posting.RecordDeposit(ctx, &domain.Deposit{
		MemberID: 1, AccountID: f.cash.ID, Amount: decimal.NewFromInt(10000),
	}, "")
	require.NoError(t, err)

	tests := []struct {
		kind     domain.WithdrawalKind
		category string
		account  string
	}{
		{domain.WithdrawalRefund, domain.CategoryRefund, domain.AccountRefundsPayable},
		{domain.WithdrawalDividend, domain.CategoryDividend, domain.AccountDividendsPayable},
		{domain.WithdrawalLoanDisbursement, domain.CategoryLoanDisbursement, domain.AccountLoansLedger},
	}
	for _, tt := range tests {
		t.Run(string(tt.kind), func(t *testing.T) {
			entry, err := f.posting.RecordWithdrawal(ctx, &domain.Withdrawal{
				Kind:      tt.kind,
				AccountID: f.cash.ID,
				Amount:    decimal.NewFromInt(500),
			}, "")
			require.NoError(t, err)
			assert.Equal(t, tt.category, entry.Category)

			debited, err := f.mem.GetByName(ctx, tt.account)
			require.NoError(t, err)
			assert.Equal(t, debited.ID, entry.DebitAccountID)
		})
	}

	_, err = f.posting.RecordWithdrawal(ctx, &domain.Withdrawal{
		Kind:      "teleport",
		AccountID: f.cash.ID,
		Amount:    decimal.NewFromInt(1),
	}, "")
	assert.ErrorIs(t, err, xerrors.ErrUnknownWithdrawalKind)
}

func TestCategoryTransactionsAndTransfers(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	ctx := context.Background()

	leg, err := f.posting.PostCategoryTransaction(ctx, &domain.CategoryPosting{
		CategoryName: "Member Contributions",
		CategoryType: domain.CategoryTypeIncome,
		Type:         domain.CategoryEntryCredit,
		Amount:       decimal.NewFromInt(1200),
	})
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(leg.Reference, "CAT-"))

	other, err := f.mem.GetOrCreateLedger(ctx, "Welfare", domain.CategoryTypeIncome)
	require.NoError(t, err)

	legs, err := f.posting.TransferBetweenCategories(ctx, leg.LedgerID, other.ID, decimal.NewFromInt(200), "welfare allocation")
	require.NoError(t, err)
	require.Len(t, legs, 2)
	assert.True(t, strings.HasPrefix(legs[0].Reference, "TRF-"))
	assert.Equal(t, domain.CategoryEntryDebit, legs[0].Type)
	assert.Equal(t, domain.CategoryEntryCredit, legs[1].Type)
	assert.True(t, legs[0].BalanceAfter.Equal(decimal.NewFromInt(1000)))
	assert.True(t, legs[1].BalanceAfter.Equal(decimal.NewFromInt(200)))
}

func TestVoidEntry(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	ctx := context.Background()

	entry, err := f.posting.RecordDeposit(ctx, &domain.Deposit{
		MemberID: 5, AccountID: f.cash.ID, Amount: decimal.NewFromInt(900),
	}, "")
	require.NoError(t, err)

	_, _, err = f.voids.VoidEntry(ctx, entry.ID, "", "admin")
	assert.ErrorIs(t, err, xerrors.ErrValidation)
	_, _, err = f.voids.VoidEntry(ctx, entry.ID, "typo", "")
	assert.ErrorIs(t, err, xerrors.ErrValidation)

	record, reversal, err := f.voids.VoidEntry(ctx, entry.ID, "typo", "admin")
	require.NoError(t, err)
	assert.Equal(t, entry.ID, record.JournalEntryID)
	assert.Equal(t, domain.CategoryVoidReversal, reversal.Category)

	cash, err := f.mem.GetByID(ctx, f.cash.ID)
	require.NoError(t, err)
	assert.True(t, cash.Balance.IsZero())

	_, _, err = f.voids.VoidEntry(ctx, entry.ID, "again", "admin")
	assert.ErrorIs(t, err, xerrors.ErrAlreadyVoided)

	found, err := f.voids.GetVoidForEntry(ctx, entry.ID)
	require.NoError(t, err)
	assert.Equal(t, record.ID, found.ID)
}

func TestDeleteEntryAlwaysRefuses(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	ctx := context.Background()

	entry, err := f.posting.RecordDeposit(ctx, &domain.Deposit{
		MemberID: 5, AccountID: f.cash.ID, Amount: decimal.NewFromInt(100),
	}, "")
	require.NoError(t, err)

	err = f.voids.DeleteEntry(ctx, entry.ID)
	assert.ErrorIs(t, err, xerrors.ErrPostedDelete)

	err = f.voids.DeleteEntry(ctx, 9999)
	assert.ErrorIs(t, err, xerrors.ErrEntryNotFound)
}

func TestAccountUsecase(t *testing.T) {
	t.Parallel()
	mem := memory.NewStore()
	uc := NewAccountUsecase(mem.Accounts(), nil, zap.NewNop())
	ctx := context.Background()

	require.NoError(t, uc.SeedChart(ctx))

	cash, err := uc.GetByName(ctx, "Cashbox")
	require.NoError(t, err)
	assert.Equal(t, domain.AccountTypeCash, cash.Type)

	// Re-seeding keeps existing accounts.
	require.NoError(t, uc.SeedChart(ctx))
	again, err := uc.GetByName(ctx, "Cashbox")
	require.NoError(t, err)
	assert.Equal(t, cash.ID, again.ID)

	real, err := uc.ListReal(ctx)
	require.NoError(t, err)
	require.NotEmpty(t, real)
	for _, a := range real {
		assert.NotEqual(t, domain.AccountTypeGL, a.Type)
	}

	all, err := uc.List(ctx, nil)
	require.NoError(t, err)
	assert.Greater(t, len(all), len(real), "seeded chart includes bookkeeping pools")
}
