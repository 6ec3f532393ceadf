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

// FineRepository persists fine business records. PaidAmount and status are
// mutated only inside the posting transaction that records the payment.
type FineRepository interface {
	Create(ctx context.Context, f *domain.Fine) error
	GetByID(ctx context.Context, id int64) (*domain.Fine, error)
	ListByMember(ctx context.Context, memberID int64) ([]*domain.Fine, error)
}

type fineRepo struct {
	db *pgxpool.Pool
}

func NewFineRepo(db *pgxpool.Pool) FineRepository {
	return &fineRepo{db: db}
}

const baseFineQuery = `
	SELECT id, member_id, amount, paid_amount, status, reason, paid_date, created_at
	FROM fines`

func scanFine(row pgx.Row) (*domain.Fine, error) {
	var f domain.Fine
	err := row.Scan(
		&f.ID, &f.MemberID, &f.Amount, &f.PaidAmount, &f.Status,
		&f.Reason, &f.PaidDate, &f.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, xerrors.ErrFineNotFound
		}
		return nil, fmt.Errorf("failed to scan fine: %w", err)
	}
	return &f, nil
}

// Create inserts a new fine record in unpaid state
func (r *fineRepo) Create(ctx context.Context, f *domain.Fine) error {
	if !f.Amount.IsPositive() {
		return fmt.Errorf("%w: got %s", xerrors.ErrNonPositiveAmount, f.Amount)
	}

	now := time.Now()
	if f.Status == "" {
		f.Status = domain.FineStatusUnpaid
	}

	err := r.db.QueryRow(ctx, `
		INSERT INTO fines (member_id, amount, paid_amount, status, reason, created_at)
		VALUES ($1,$2,0,$3,$4,$5)
		RETURNING id, created_at
	`, f.MemberID, f.Amount, f.Status, f.Reason, now).Scan(&f.ID, &f.CreatedAt)

	if err != nil {
		return fmt.Errorf("failed to insert fine: %w", err)
	}
	return nil
}

// GetByID fetches a fine by ID
func (r *fineRepo) GetByID(ctx context.Context, id int64) (*domain.Fine, error) {
	row := r.db.QueryRow(ctx, baseFineQuery+` WHERE id=$1`, id)
	return scanFine(row)
}

// ListByMember fetches all fines for a member, newest first
func (r *fineRepo) ListByMember(ctx context.Context, memberID int64) ([]*domain.Fine, error) {
	rows, err := r.db.Query(ctx, baseFineQuery+` WHERE member_id=$1 ORDER BY created_at DESC`, memberID)
	if err != nil {
		return nil, fmt.Errorf("failed to query fines: %w", err)
	}
	defer rows.Close()

	var fines []*domain.Fine
	for rows.Next() {
		var f domain.Fine
		if err := rows.Scan(
			&f.ID, &f.MemberID, &f.Amount, &f.PaidAmount, &f.Status,
			&f.Reason, &f.PaidDate, &f.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan fine row: %w", err)
		}
		fines = append(fines, &f)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	return fines, nil
}

// lockFineForUpdate locks a fine row inside a posting transaction
func lockFineForUpdate(ctx context.Context, tx pgx.Tx, fineID int64) (*domain.Fine, error) {
	row := tx.QueryRow(ctx, baseFineQuery+` WHERE id=$1 FOR UPDATE`, fineID)
	return scanFine(row)
}

// applyFineMutation writes the payment state flip inside a posting transaction
func applyFineMutation(ctx context.Context, tx pgx.Tx, m *domain.FineMutation) error {
	cmdTag, err := tx.Exec(ctx, `
		UPDATE fines
		SET paid_amount = $1, status = $2, paid_date = COALESCE(paid_date, $3)
		WHERE id = $4
	`, m.PaidAmount, m.Status, m.PaidDate, m.FineID)

	if err != nil {
		return fmt.Errorf("failed to update fine: %w", err)
	}

	if cmdTag.RowsAffected() == 0 {
		return xerrors.ErrFineNotFound
	}

	return nil
}
