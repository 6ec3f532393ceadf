package domain

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func day(d int) time.Time {
	return time.Date(2026, 3, d, 0, 0, 0, 0, time.UTC)
}

func entry(id int64, date time.Time, debit, credit int64, amount int64, category string) *JournalEntry {
	return &JournalEntry{
		ID:              id,
		Date:            date,
		Reference:       "JE-TEST",
		DebitAccountID:  debit,
		DebitAmount:     decimal.NewFromInt(amount),
		CreditAccountID: credit,
		CreditAmount:    decimal.NewFromInt(amount),
		Category:        category,
	}
}

func TestEntryMovement(t *testing.T) {
	t.Parallel()

	j := entry(1, day(1), 10, 20, 300, CategoryDeposit)

	in, out := EntryMovement(j, AccountSet{10: true})
	assert.True(t, in.Equal(decimal.NewFromInt(300)))
	assert.True(t, out.IsZero())

	in, out = EntryMovement(j, AccountSet{20: true})
	assert.True(t, in.IsZero())
	assert.True(t, out.Equal(decimal.NewFromInt(300)))

	// Both sides inside the set: reported on both columns, nets to zero.
	in, out = EntryMovement(j, AccountSet{10: true, 20: true})
	assert.True(t, in.Equal(out))

	in, out = EntryMovement(j, AccountSet{99: true})
	assert.True(t, in.IsZero())
	assert.True(t, out.IsZero())
}

func TestCountsForStatement(t *testing.T) {
	t.Parallel()

	live := entry(1, day(1), 10, 20, 100, CategoryDeposit)
	assert.True(t, CountsForStatement(live))

	voided := entry(2, day(1), 10, 20, 100, CategoryDeposit)
	voided.IsVoided = true
	assert.False(t, CountsForStatement(voided))

	reversal := entry(3, day(2), 20, 10, 100, CategoryVoidReversal)
	assert.False(t, CountsForStatement(reversal))
}

func TestBuildStatement(t *testing.T) {
	t.Parallel()

	// Cash account 10 against pools 20 and 30.
	entries := []*JournalEntry{
		entry(1, day(1), 10, 20, 1000, CategoryDeposit), // before period, in opening
		entry(2, day(5), 10, 20, 500, CategoryDeposit),
		entry(3, day(7), 30, 10, 200, CategoryExpense),
		entry(4, day(9), 10, 20, 300, CategoryDeposit),
		entry(5, day(20), 10, 20, 999, CategoryDeposit), // after period
	}
	// A voided deposit and its reversal inside the period: both excluded.
	voided := entry(6, day(6), 10, 20, 400, CategoryDeposit)
	voided.IsVoided = true
	reversal := entry(7, day(6), 20, 10, 400, CategoryVoidReversal)
	entries = append(entries, voided, reversal)

	set := AccountSet{10: true}
	opening := FoldOpeningBalance(entries, set, day(4))
	require.True(t, opening.Equal(decimal.NewFromInt(1000)))

	st := BuildStatement(entries, set, opening, day(4), day(15))

	require.Len(t, st.Rows, 3)
	assert.Equal(t, int64(2), st.Rows[0].EntryID)
	assert.Equal(t, int64(3), st.Rows[1].EntryID)
	assert.Equal(t, int64(4), st.Rows[2].EntryID)

	assert.True(t, st.Rows[0].RunningBalance.Equal(decimal.NewFromInt(1500)))
	assert.True(t, st.Rows[1].RunningBalance.Equal(decimal.NewFromInt(1300)))
	assert.True(t, st.Rows[2].RunningBalance.Equal(decimal.NewFromInt(1600)))

	assert.True(t, st.Meta.OpeningBalance.Equal(decimal.NewFromInt(1000)))
	assert.True(t, st.Meta.ClosingBalance.Equal(decimal.NewFromInt(1600)))
	assert.True(t, st.Meta.TotalMoneyIn.Equal(decimal.NewFromInt(800)))
	assert.True(t, st.Meta.TotalMoneyOut.Equal(decimal.NewFromInt(200)))
	assert.True(t, st.Meta.NetChange.Equal(decimal.NewFromInt(600)))
	assert.Equal(t, 3, st.Meta.EntryCount)
}

func TestBuildStatementSameDayOrdering(t *testing.T) {
	t.Parallel()

	// Same date: entry ID breaks the tie, so the running balance follows
	// posting order.
	entries := []*JournalEntry{
		entry(1, day(5), 10, 20, 100, CategoryDeposit),
		entry(2, day(5), 30, 10, 60, CategoryExpense),
	}
	st := BuildStatement(entries, AccountSet{10: true}, decimal.Zero, day(1), day(31))

	require.Len(t, st.Rows, 2)
	assert.True(t, st.Rows[0].RunningBalance.Equal(decimal.NewFromInt(100)))
	assert.True(t, st.Rows[1].RunningBalance.Equal(decimal.NewFromInt(40)))
}

func TestBuildGeneralLedger(t *testing.T) {
	t.Parallel()

	accounts := []*Account{
		{ID: 10, Name: "Cashbox", Type: AccountTypeCash},
		{ID: 20, Name: "Member Deposits", Type: AccountTypeGL},
		{ID: 30, Name: "Bank", Type: AccountTypeBank},
	}
	entries := []*JournalEntry{
		entry(1, day(5), 10, 20, 700, CategoryDeposit),
		entry(2, day(6), 30, 20, 300, CategoryDeposit),
	}

	gl := BuildGeneralLedger(accounts, entries, day(1), day(31))

	assert.True(t, gl.TotalDebits.Equal(decimal.NewFromInt(1000)))
	assert.True(t, gl.TotalCredits.Equal(decimal.NewFromInt(1000)))
	assert.True(t, gl.IsBalanced)

	// Sections sorted by account name; every touched account present.
	require.Len(t, gl.Accounts, 3)
	assert.Equal(t, "Bank", gl.Accounts[0].Account.Name)
	assert.Equal(t, "Cashbox", gl.Accounts[1].Account.Name)
	assert.Equal(t, "Member Deposits", gl.Accounts[2].Account.Name)

	deposits := gl.Accounts[2]
	assert.True(t, deposits.TotalCredits.Equal(decimal.NewFromInt(1000)))
	assert.True(t, deposits.ClosingBalance.Equal(decimal.NewFromInt(-1000)))

	// Sum of per-account net changes across the chart is zero.
	net := decimal.Zero
	for _, sec := range gl.Accounts {
		net = net.Add(sec.NetChange)
	}
	assert.True(t, net.IsZero())
}

func TestBuildGeneralLedgerSkipsUntouchedAccounts(t *testing.T) {
	t.Parallel()

	accounts := []*Account{
		{ID: 10, Name: "Cashbox", Type: AccountTypeCash},
		{ID: 20, Name: "Member Deposits", Type: AccountTypeGL},
		{ID: 40, Name: "Petty Cash", Type: AccountTypePettyCash},
	}
	entries := []*JournalEntry{
		entry(1, day(5), 10, 20, 700, CategoryDeposit),
	}

	gl := BuildGeneralLedger(accounts, entries, day(1), day(31))

	require.Len(t, gl.Accounts, 2)
	for _, sec := range gl.Accounts {
		assert.NotEqual(t, "Petty Cash", sec.Account.Name)
	}
}

func TestBuildTrialBalance(t *testing.T) {
	t.Parallel()

	accounts := []*Account{
		{ID: 10, Name: "Cashbox", Type: AccountTypeCash},
		{ID: 20, Name: "Member Deposits", Type: AccountTypeGL},
		{ID: 30, Name: "Bank", Type: AccountTypeBank, Balance: decimal.NewFromInt(250)},
	}
	balances := map[int64]decimal.Decimal{
		10: decimal.NewFromInt(750),
		20: decimal.NewFromInt(-1000),
		// 30 intentionally missing: falls back to the cached balance.
	}

	tb := BuildTrialBalance(accounts, balances, day(31))

	require.Len(t, tb.Rows, 3)
	assert.Equal(t, "Bank", tb.Rows[0].AccountName)
	assert.True(t, tb.Rows[0].Debit.Equal(decimal.NewFromInt(250)))
	assert.True(t, tb.Rows[0].Credit.IsZero())

	assert.Equal(t, "Cashbox", tb.Rows[1].AccountName)
	assert.True(t, tb.Rows[1].Debit.Equal(decimal.NewFromInt(750)))

	assert.Equal(t, "Member Deposits", tb.Rows[2].AccountName)
	assert.True(t, tb.Rows[2].Debit.IsZero())
	assert.True(t, tb.Rows[2].Credit.Equal(decimal.NewFromInt(1000)))

	assert.True(t, tb.TotalDebit.Equal(decimal.NewFromInt(1000)))
	assert.True(t, tb.TotalCredit.Equal(decimal.NewFromInt(1000)))
	assert.True(t, tb.IsBalanced)
}
