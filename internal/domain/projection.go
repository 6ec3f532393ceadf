package domain

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"
)

// AccountSet picks which accounts a statement is viewed from. A per-account
// statement holds one ID; the combined statement holds every real account.
type AccountSet map[int64]bool

// EntryMovement resolves a journal entry against an account set. A debit
// into the set is money in, a credit out of the set is money out. An entry
// whose both sides are in the set reports both and nets to zero.
func EntryMovement(j *JournalEntry, set AccountSet) (moneyIn, moneyOut decimal.Decimal) {
	if set[j.DebitAccountID] {
		moneyIn = j.DebitAmount
	}
	if set[j.CreditAccountID] {
		moneyOut = j.CreditAmount
	}
	return moneyIn, moneyOut
}

// CountsForStatement reports whether an entry belongs in statement replay.
// Voided originals and their reversals cancel out and are both excluded.
func CountsForStatement(j *JournalEntry) bool {
	return !j.IsVoided && j.Category != CategoryVoidReversal
}

// FoldOpeningBalance replays entries dated strictly before start into an
// opening balance for the account set.
func FoldOpeningBalance(entries []*JournalEntry, set AccountSet, start time.Time) decimal.Decimal {
	opening := decimal.Zero
	for _, j := range entries {
		if !CountsForStatement(j) || !j.Date.Before(start) {
			continue
		}
		in, out := EntryMovement(j, set)
		opening = opening.Add(in).Sub(out)
	}
	return opening
}

// BuildStatement replays the period's entries on top of the opening balance.
// Entries must already be sorted by (date, id) ascending; rows that do not
// touch the account set are skipped.
func BuildStatement(entries []*JournalEntry, set AccountSet, opening decimal.Decimal, start, end time.Time) *AccountStatement {
	st := &AccountStatement{
		Rows: []*StatementRow{},
		Meta: StatementMeta{
			StartDate:      start,
			EndDate:        end,
			OpeningBalance: opening,
			ClosingBalance: opening,
			TotalMoneyIn:   decimal.Zero,
			TotalMoneyOut:  decimal.Zero,
			NetChange:      decimal.Zero,
		},
	}
	running := opening
	for _, j := range entries {
		if !CountsForStatement(j) {
			continue
		}
		if j.Date.Before(start) || j.Date.After(end) {
			continue
		}
		in, out := EntryMovement(j, set)
		if in.IsZero() && out.IsZero() {
			continue
		}
		running = running.Add(in).Sub(out)
		st.Rows = append(st.Rows, &StatementRow{
			EntryID:        j.ID,
			Date:           j.Date,
			Reference:      j.Reference,
			Description:    j.Description,
			Category:       j.Category,
			MoneyIn:        in,
			MoneyOut:       out,
			RunningBalance: running,
		})
		st.Meta.TotalMoneyIn = st.Meta.TotalMoneyIn.Add(in)
		st.Meta.TotalMoneyOut = st.Meta.TotalMoneyOut.Add(out)
	}
	st.Meta.NetChange = st.Meta.TotalMoneyIn.Sub(st.Meta.TotalMoneyOut)
	st.Meta.ClosingBalance = running
	st.Meta.EntryCount = len(st.Rows)
	return st
}

// BuildGeneralLedger projects the period's entries into a per-account view
// plus the master debit/credit reconciliation across every account touched.
func BuildGeneralLedger(accounts []*Account, entries []*JournalEntry, start, end time.Time) *GeneralLedger {
	gl := &GeneralLedger{
		Accounts:     []*GeneralLedgerAccount{},
		StartDate:    start,
		EndDate:      end,
		TotalDebits:  decimal.Zero,
		TotalCredits: decimal.Zero,
	}
	byID := make(map[int64]*Account, len(accounts))
	for _, a := range accounts {
		byID[a.ID] = a
	}
	for _, j := range entries {
		if !CountsForStatement(j) || j.Date.Before(start) || j.Date.After(end) {
			continue
		}
		gl.TotalDebits = gl.TotalDebits.Add(j.DebitAmount)
		gl.TotalCredits = gl.TotalCredits.Add(j.CreditAmount)
	}
	ordered := make([]*Account, len(accounts))
	copy(ordered, accounts)
	sort.Slice(ordered, func(i, k int) bool { return ordered[i].Name < ordered[k].Name })
	for _, a := range ordered {
		set := AccountSet{a.ID: true}
		opening := FoldOpeningBalance(entries, set, start)
		st := BuildStatement(entries, set, opening, start, end)
		if len(st.Rows) == 0 {
			continue
		}
		gl.Accounts = append(gl.Accounts, &GeneralLedgerAccount{
			Account:        a,
			Rows:           st.Rows,
			TotalDebits:    st.Meta.TotalMoneyIn,
			TotalCredits:   st.Meta.TotalMoneyOut,
			NetChange:      st.Meta.NetChange,
			ClosingBalance: st.Meta.ClosingBalance,
		})
	}
	gl.IsBalanced = gl.TotalDebits.Equal(gl.TotalCredits)
	return gl
}

// BuildTrialBalance places each account balance into the debit column when
// non-negative and into the credit column otherwise. With every balance a
// signed fold of balanced entries the two columns must agree.
func BuildTrialBalance(accounts []*Account, balances map[int64]decimal.Decimal, asOf time.Time) *TrialBalance {
	tb := &TrialBalance{
		Rows:        []*TrialBalanceRow{},
		AsOf:        asOf,
		TotalDebit:  decimal.Zero,
		TotalCredit: decimal.Zero,
	}
	ordered := make([]*Account, len(accounts))
	copy(ordered, accounts)
	sort.Slice(ordered, func(i, k int) bool { return ordered[i].Name < ordered[k].Name })
	for _, a := range ordered {
		bal, ok := balances[a.ID]
		if !ok {
			bal = a.Balance
		}
		row := &TrialBalanceRow{
			AccountID:   a.ID,
			AccountName: a.Name,
			AccountType: a.Type,
			Debit:       decimal.Zero,
			Credit:      decimal.Zero,
		}
		if bal.Sign() >= 0 {
			row.Debit = bal
		} else {
			row.Credit = bal.Abs()
		}
		tb.Rows = append(tb.Rows, row)
		tb.TotalDebit = tb.TotalDebit.Add(row.Debit)
		tb.TotalCredit = tb.TotalCredit.Add(row.Credit)
	}
	tb.IsBalanced = tb.TotalDebit.Equal(tb.TotalCredit)
	return tb
}
