package repository

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"sacco-ledger-service/internal/domain"
	xerrors "sacco-ledger-service/pkg/xerrors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

// LedgerStore is the single atomic writer of the ledger. Every operation is
// one unit of work: journal append, balance deltas, category appends, and
// business-record flips commit or fail together; a partial write is never
// observable.
type LedgerStore interface {
	ExecutePosting(ctx context.Context, p *domain.Posting) (*domain.JournalEntry, error)
	ExecuteVoid(ctx context.Context, entryID int64, reason, actor string) (*domain.VoidRecord, *domain.JournalEntry, error)
	AppendCategoryEntry(ctx context.Context, cp *domain.CategoryPosting) (*domain.CategoryLedgerEntry, error)
	ExecuteCategoryTransfer(ctx context.Context, fromLedgerID, toLedgerID int64, amount decimal.Decimal, reference, description string) ([]*domain.CategoryLedgerEntry, error)
}

type postingStore struct {
	db       *pgxpool.Pool
	journals JournalRepository
}

// NewPostingStore creates the postgres-backed atomic writer
func NewPostingStore(db *pgxpool.Pool, journals JournalRepository) LedgerStore {
	return &postingStore{db: db, journals: journals}
}

func (s *postingStore) beginTx(ctx context.Context) (pgx.Tx, error) {
	tx, err := s.db.BeginTx(ctx, pgx.TxOptions{
		IsoLevel:   pgx.ReadCommitted,
		AccessMode: pgx.ReadWrite,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	return tx, nil
}

// lockAccountsOrdered locks the given account rows in ascending ID order so
// concurrent postings touching the same accounts serialize without deadlock
func lockAccountsOrdered(ctx context.Context, tx pgx.Tx, ids ...int64) (map[int64]*domain.Account, error) {
	unique := make([]int64, 0, len(ids))
	seen := make(map[int64]bool, len(ids))
	for _, id := range ids {
		if !seen[id] {
			unique = append(unique, id)
			seen[id] = true
		}
	}
	sort.Slice(unique, func(i, j int) bool { return unique[i] < unique[j] })

	accounts := make(map[int64]*domain.Account, len(unique))
	for _, id := range unique {
		account, err := lockAccountForUpdate(ctx, tx, id)
		if err != nil {
			return nil, fmt.Errorf("account %d: %w", id, err)
		}
		if !account.IsActive {
			return nil, fmt.Errorf("account %q: %w", account.Name, xerrors.ErrAccountInactive)
		}
		accounts[id] = account
	}
	return accounts, nil
}

// ExecutePosting appends one balanced journal entry and everything it
// carries: both balance deltas, the optional category ledger append, and the
// optional fine state flip, in a single transaction with the touched account
// rows locked for the duration.
func (s *postingStore) ExecutePosting(ctx context.Context, p *domain.Posting) (*domain.JournalEntry, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}

	entry := p.Entry

	// Replaying the same idempotency key returns the original entry
	if entry.IdempotencyKey != nil {
		existing, err := s.journals.GetByIdempotencyKey(ctx, *entry.IdempotencyKey)
		if err == nil {
			return existing, nil
		}
		if !errors.Is(err, xerrors.ErrEntryNotFound) {
			return nil, fmt.Errorf("failed to check idempotency: %w", err)
		}
	}

	tx, err := s.beginTx(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	if _, err := lockAccountsOrdered(ctx, tx, entry.DebitAccountID, entry.CreditAccountID); err != nil {
		return nil, err
	}

	if err := insertJournalEntry(ctx, tx, entry); err != nil {
		if xerrors.IsUniqueViolation(err) && entry.IdempotencyKey != nil {
			// Lost the race to a concurrent replay of the same key
			return s.journals.GetByIdempotencyKey(ctx, *entry.IdempotencyKey)
		}
		return nil, err
	}

	// Debit adds, credit subtracts: the signed fold over the whole chart
	// stays zero after every posting
	if err := applyAccountDelta(ctx, tx, entry.DebitAccountID, entry.DebitAmount); err != nil {
		return nil, err
	}
	if err := applyAccountDelta(ctx, tx, entry.CreditAccountID, entry.CreditAmount.Neg()); err != nil {
		return nil, err
	}

	if p.Category != nil {
		if _, err := appendCategoryTx(ctx, tx, p.Category); err != nil {
			return nil, err
		}
	}

	if p.Fine != nil {
		fine, err := lockFineForUpdate(ctx, tx, p.Fine.FineID)
		if err != nil {
			return nil, err
		}
		if !fine.PaidAmount.Equal(p.Fine.OldPaidAmount) {
			return nil, fmt.Errorf("%w: fine %d paid amount moved from %s to %s",
				xerrors.ErrConflict, fine.ID, p.Fine.OldPaidAmount, fine.PaidAmount)
		}
		if err := applyFineMutation(ctx, tx, p.Fine); err != nil {
			return nil, err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit posting: %w", err)
	}

	return entry, nil
}

// ExecuteVoid flips Posted -> Voided and appends the compensating entry in
// one transaction. The is_voided guard makes a concurrent second void lose
// with a conflict instead of silently re-applying.
func (s *postingStore) ExecuteVoid(ctx context.Context, entryID int64, reason, actor string) (*domain.VoidRecord, *domain.JournalEntry, error) {
	tx, err := s.beginTx(ctx)
	if err != nil {
		return nil, nil, err
	}
	defer tx.Rollback(ctx)

	row := tx.QueryRow(ctx, baseJournalQuery+` WHERE id=$1 FOR UPDATE`, entryID)
	orig, err := scanJournalEntry(row)
	if err != nil {
		return nil, nil, err
	}
	if orig.IsVoided {
		return nil, nil, fmt.Errorf("entry %d: %w", entryID, xerrors.ErrAlreadyVoided)
	}

	if _, err := lockAccountsOrdered(ctx, tx, orig.DebitAccountID, orig.CreditAccountID); err != nil {
		return nil, nil, err
	}

	reversal := domain.ReversalOf(orig, reason, time.Now())
	if err := insertJournalEntry(ctx, tx, reversal); err != nil {
		return nil, nil, err
	}

	if err := applyAccountDelta(ctx, tx, reversal.DebitAccountID, reversal.DebitAmount); err != nil {
		return nil, nil, err
	}
	if err := applyAccountDelta(ctx, tx, reversal.CreditAccountID, reversal.CreditAmount.Neg()); err != nil {
		return nil, nil, err
	}

	if err := markEntryVoided(ctx, tx, orig.ID); err != nil {
		return nil, nil, err
	}

	record := &domain.VoidRecord{
		JournalEntryID:  orig.ID,
		ReversalEntryID: reversal.ID,
		Reason:          reason,
		Actor:           actor,
	}
	if err := insertVoidRecord(ctx, tx, record); err != nil {
		return nil, nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, nil, fmt.Errorf("failed to commit void: %w", err)
	}

	return record, reversal, nil
}

// AppendCategoryEntry appends one standalone category ledger entry
func (s *postingStore) AppendCategoryEntry(ctx context.Context, cp *domain.CategoryPosting) (*domain.CategoryLedgerEntry, error) {
	if err := cp.Validate(); err != nil {
		return nil, err
	}

	tx, err := s.beginTx(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	entry, err := appendCategoryTx(ctx, tx, cp)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit category entry: %w", err)
	}

	return entry, nil
}

// appendCategoryTx resolves and locks the target ledger, computes the new
// running balance, and writes entry plus ledger in the caller's transaction
func appendCategoryTx(ctx context.Context, tx pgx.Tx, cp *domain.CategoryPosting) (*domain.CategoryLedgerEntry, error) {
	var ledger *domain.CategoryLedger
	var err error

	if cp.LedgerID != 0 {
		ledger, err = lockCategoryLedger(ctx, tx, cp.LedgerID)
	} else {
		ledger, err = lockCategoryLedgerByName(ctx, tx, cp.CategoryName, cp.CategoryType)
	}
	if err != nil {
		return nil, err
	}

	newBalance := domain.NextBalance(ledger.Balance, cp.Type, cp.Amount)
	newTotal := ledger.TotalAmount.Add(cp.Amount)

	date := cp.Date
	if date.IsZero() {
		date = time.Now()
	}

	entry := &domain.CategoryLedgerEntry{
		LedgerID:     ledger.ID,
		Type:         cp.Type,
		Amount:       cp.Amount,
		BalanceAfter: newBalance,
		Description:  cp.Description,
		SourceType:   cp.SourceType,
		Reference:    cp.Reference,
		Narration:    cp.Narration,
		Date:         date,
	}

	if err := appendCategoryEntry(ctx, tx, entry, newBalance, newTotal); err != nil {
		return nil, err
	}

	return entry, nil
}

// ExecuteCategoryTransfer moves value between two category ledgers: one
// debit on the source, one credit on the destination, sharing a reference,
// committed together with both ledger rows locked in ID order.
func (s *postingStore) ExecuteCategoryTransfer(ctx context.Context, fromLedgerID, toLedgerID int64, amount decimal.Decimal, reference, description string) ([]*domain.CategoryLedgerEntry, error) {
	if fromLedgerID == toLedgerID {
		return nil, fmt.Errorf("%w: ledger %d", xerrors.ErrSameLedgerTransfer, fromLedgerID)
	}
	if !amount.IsPositive() {
		return nil, fmt.Errorf("%w: got %s", xerrors.ErrNonPositiveAmount, amount)
	}

	tx, err := s.beginTx(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	first, second := fromLedgerID, toLedgerID
	if second < first {
		first, second = second, first
	}
	ledgers := make(map[int64]*domain.CategoryLedger, 2)
	for _, id := range []int64{first, second} {
		l, err := lockCategoryLedger(ctx, tx, id)
		if err != nil {
			return nil, fmt.Errorf("ledger %d: %w", id, err)
		}
		ledgers[id] = l
	}

	now := time.Now()
	source, dest := ledgers[fromLedgerID], ledgers[toLedgerID]

	out := &domain.CategoryLedgerEntry{
		LedgerID:     source.ID,
		Type:         domain.CategoryEntryDebit,
		Amount:       amount,
		BalanceAfter: source.Balance.Sub(amount),
		Description:  description,
		SourceType:   "category_transfer",
		Reference:    reference,
		Date:         now,
	}
	if err := appendCategoryEntry(ctx, tx, out, out.BalanceAfter, source.TotalAmount.Add(amount)); err != nil {
		return nil, err
	}

	in := &domain.CategoryLedgerEntry{
		LedgerID:     dest.ID,
		Type:         domain.CategoryEntryCredit,
		Amount:       amount,
		BalanceAfter: dest.Balance.Add(amount),
		Description:  description,
		SourceType:   "category_transfer",
		Reference:    reference,
		Date:         now,
	}
	if err := appendCategoryEntry(ctx, tx, in, in.BalanceAfter, dest.TotalAmount.Add(amount)); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit category transfer: %w", err)
	}

	return []*domain.CategoryLedgerEntry{out, in}, nil
}
