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

// VoidRepository reads the audit trail of reversals
type VoidRepository interface {
	GetByEntryID(ctx context.Context, entryID int64) (*domain.VoidRecord, error)
	List(ctx context.Context, f *domain.VoidFilter) ([]*domain.VoidRecord, error)
}

type voidRepo struct {
	db *pgxpool.Pool
}

func NewVoidRepo(db *pgxpool.Pool) VoidRepository {
	return &voidRepo{db: db}
}

const baseVoidQuery = `
	SELECT id, journal_entry_id, reversal_entry_id, reason, actor, created_at
	FROM void_records`

// GetByEntryID fetches the void record for an original journal entry
func (r *voidRepo) GetByEntryID(ctx context.Context, entryID int64) (*domain.VoidRecord, error) {
	row := r.db.QueryRow(ctx, baseVoidQuery+` WHERE journal_entry_id=$1`, entryID)

	var v domain.VoidRecord
	err := row.Scan(&v.ID, &v.JournalEntryID, &v.ReversalEntryID, &v.Reason, &v.Actor, &v.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, xerrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to scan void record: %w", err)
	}
	return &v, nil
}

// List fetches void records matching the filter, newest first
func (r *voidRepo) List(ctx context.Context, f *domain.VoidFilter) ([]*domain.VoidRecord, error) {
	query := baseVoidQuery + ` WHERE 1=1`
	args := []interface{}{}
	argPos := 1

	if f != nil {
		if f.JournalEntryID != nil {
			query += fmt.Sprintf(` AND journal_entry_id=$%d`, argPos)
			args = append(args, *f.JournalEntryID)
			argPos++
		}
		if f.Actor != nil {
			query += fmt.Sprintf(` AND actor=$%d`, argPos)
			args = append(args, *f.Actor)
			argPos++
		}
		if f.FromDate != nil {
			query += fmt.Sprintf(` AND created_at >= $%d`, argPos)
			args = append(args, *f.FromDate)
			argPos++
		}
		if f.ToDate != nil {
			query += fmt.Sprintf(` AND created_at <= $%d`, argPos)
			args = append(args, *f.ToDate)
			argPos++
		}
	}

	query += ` ORDER BY created_at DESC`

	if f != nil && f.Limit > 0 {
		query += fmt.Sprintf(` LIMIT $%d`, argPos)
		args = append(args, f.Limit)
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query void records: %w", err)
	}
	defer rows.Close()

	var records []*domain.VoidRecord
	for rows.Next() {
		var v domain.VoidRecord
		if err := rows.Scan(&v.ID, &v.JournalEntryID, &v.ReversalEntryID, &v.Reason, &v.Actor, &v.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan void record row: %w", err)
		}
		records = append(records, &v)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	return records, nil
}

// insertVoidRecord writes the audit record inside the void transaction
func insertVoidRecord(ctx context.Context, tx pgx.Tx, v *domain.VoidRecord) error {
	err := tx.QueryRow(ctx, `
		INSERT INTO void_records (journal_entry_id, reversal_entry_id, reason, actor, created_at)
		VALUES ($1,$2,$3,$4,$5)
		RETURNING id, created_at
	`, v.JournalEntryID, v.ReversalEntryID, v.Reason, v.Actor, time.Now()).Scan(&v.ID, &v.CreatedAt)

	if err != nil {
		return fmt.Errorf("failed to insert void record: %w", err)
	}
	return nil
}
