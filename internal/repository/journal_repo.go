package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"sacco-ledger-service/internal/domain"
	xerrors "sacco-ledger-service/pkg/xerrors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// JournalRepository reads the immutable journal. Writes happen only through
// the posting store so that entry, balance deltas, and category appends
// commit as one unit.
type JournalRepository interface {
	GetByID(ctx context.Context, id int64) (*domain.JournalEntry, error)
	GetByIdempotencyKey(ctx context.Context, key string) (*domain.JournalEntry, error)
	List(ctx context.Context, f *domain.JournalFilter) ([]*domain.JournalEntry, error)
}

type journalRepo struct {
	db *pgxpool.Pool
}

func NewJournalRepo(db *pgxpool.Pool) JournalRepository {
	return &journalRepo{db: db}
}

const baseJournalQuery = `
	SELECT id, date, reference, description, narration,
	       debit_account_id, debit_amount, credit_account_id, credit_amount,
	       category, is_voided, idempotency_key, created_at
	FROM journal_entries`

func scanJournalEntry(row pgx.Row) (*domain.JournalEntry, error) {
	var j domain.JournalEntry
	err := row.Scan(
		&j.ID, &j.Date, &j.Reference, &j.Description, &j.Narration,
		&j.DebitAccountID, &j.DebitAmount, &j.CreditAccountID, &j.CreditAmount,
		&j.Category, &j.IsVoided, &j.IdempotencyKey, &j.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, xerrors.ErrEntryNotFound
		}
		return nil, fmt.Errorf("failed to scan journal entry: %w", err)
	}
	return &j, nil
}

func scanJournalRows(rows pgx.Rows) ([]*domain.JournalEntry, error) {
	defer rows.Close()
	var entries []*domain.JournalEntry

	for rows.Next() {
		var j domain.JournalEntry
		err := rows.Scan(
			&j.ID, &j.Date, &j.Reference, &j.Description, &j.Narration,
			&j.DebitAccountID, &j.DebitAmount, &j.CreditAccountID, &j.CreditAmount,
			&j.Category, &j.IsVoided, &j.IdempotencyKey, &j.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan journal row: %w", err)
		}
		entries = append(entries, &j)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	return entries, nil
}

// GetByID fetches a journal entry by its ID
func (r *journalRepo) GetByID(ctx context.Context, id int64) (*domain.JournalEntry, error) {
	row := r.db.QueryRow(ctx, baseJournalQuery+` WHERE id=$1`, id)
	return scanJournalEntry(row)
}

// GetByIdempotencyKey fetches an entry by idempotency key (duplicate detection)
func (r *journalRepo) GetByIdempotencyKey(ctx context.Context, key string) (*domain.JournalEntry, error) {
	row := r.db.QueryRow(ctx, baseJournalQuery+` WHERE idempotency_key=$1`, key)
	return scanJournalEntry(row)
}

// List fetches entries matching the filter, ordered by (date, id) ascending
// so running balances replay deterministically
func (r *journalRepo) List(ctx context.Context, f *domain.JournalFilter) ([]*domain.JournalEntry, error) {
	query := baseJournalQuery + ` WHERE 1=1`
	args := []interface{}{}
	argPos := 1

	if f != nil {
		if f.AccountID != nil {
			query += fmt.Sprintf(` AND (debit_account_id=$%d OR credit_account_id=$%d)`, argPos, argPos)
			args = append(args, *f.AccountID)
			argPos++
		}
		if f.Category != nil {
			query += fmt.Sprintf(` AND category=$%d`, argPos)
			args = append(args, *f.Category)
			argPos++
		}
		if f.StartDate != nil {
			query += fmt.Sprintf(` AND date >= $%d`, argPos)
			args = append(args, *f.StartDate)
			argPos++
		}
		if f.EndDate != nil {
			query += fmt.Sprintf(` AND date <= $%d`, argPos)
			args = append(args, *f.EndDate)
			argPos++
		}
		if !f.IncludeVoided {
			query += ` AND is_voided = false AND category <> '` + domain.CategoryVoidReversal + `'`
		}
	}

	query += ` ORDER BY date ASC, id ASC`

	if f != nil && f.Limit > 0 {
		query += fmt.Sprintf(` LIMIT $%d`, argPos)
		args = append(args, f.Limit)
		argPos++
		if f.Offset > 0 {
			query += fmt.Sprintf(` OFFSET $%d`, argPos)
			args = append(args, f.Offset)
		}
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query journal entries: %w", err)
	}

	return scanJournalRows(rows)
}

// insertJournalEntry appends one entry inside a posting transaction
func insertJournalEntry(ctx context.Context, tx pgx.Tx, j *domain.JournalEntry) error {
	err := tx.QueryRow(ctx, `
		INSERT INTO journal_entries (
			date, reference, description, narration,
			debit_account_id, debit_amount, credit_account_id, credit_amount,
			category, is_voided, idempotency_key, created_at
		)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,false,$10,$11)
		RETURNING id, created_at
	`, j.Date, j.Reference, j.Description, j.Narration,
		j.DebitAccountID, j.DebitAmount, j.CreditAccountID, j.CreditAmount,
		j.Category, j.IdempotencyKey, time.Now(),
	).Scan(&j.ID, &j.CreatedAt)

	if err != nil {
		return fmt.Errorf("failed to insert journal entry: %w", err)
	}
	return nil
}

// markEntryVoided flips the terminal state Posted -> Voided. The WHERE guard
// on is_voided makes the flip a compare-and-swap: a concurrent second void
// matches zero rows and surfaces as a conflict.
func markEntryVoided(ctx context.Context, tx pgx.Tx, entryID int64) error {
	cmdTag, err := tx.Exec(ctx, `
		UPDATE journal_entries
		SET is_voided = true
		WHERE id = $1 AND is_voided = false
	`, entryID)

	if err != nil {
		return fmt.Errorf("failed to mark entry voided: %w", err)
	}

	if cmdTag.RowsAffected() == 0 {
		return xerrors.ErrAlreadyVoided
	}

	return nil
}
