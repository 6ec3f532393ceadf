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
	"github.com/shopspring/decimal"
)

// CategoryRepository reads category sub-ledgers and their entries. Entry
// appends run through the posting store so balance, totalAmount, and the
// entry row move together.
type CategoryRepository interface {
	GetLedgerByID(ctx context.Context, id int64) (*domain.CategoryLedger, error)
	GetOrCreateLedger(ctx context.Context, name string, categoryType domain.CategoryType) (*domain.CategoryLedger, error)
	ListLedgers(ctx context.Context) ([]*domain.CategoryLedger, error)
	ListEntries(ctx context.Context, ledgerID int64) ([]*domain.CategoryLedgerEntry, error)
}

type categoryRepo struct {
	db *pgxpool.Pool
}

func NewCategoryRepo(db *pgxpool.Pool) CategoryRepository {
	return &categoryRepo{db: db}
}

const baseCategoryLedgerQuery = `
	SELECT id, category_name, category_type, balance, total_amount, created_at
	FROM category_ledgers`

func scanCategoryLedger(row pgx.Row) (*domain.CategoryLedger, error) {
	var l domain.CategoryLedger
	err := row.Scan(&l.ID, &l.CategoryName, &l.CategoryType, &l.Balance, &l.TotalAmount, &l.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, xerrors.ErrLedgerNotFound
		}
		return nil, fmt.Errorf("failed to scan category ledger: %w", err)
	}
	return &l, nil
}

// GetLedgerByID fetches a category ledger by ID
func (r *categoryRepo) GetLedgerByID(ctx context.Context, id int64) (*domain.CategoryLedger, error) {
	row := r.db.QueryRow(ctx, baseCategoryLedgerQuery+` WHERE id=$1`, id)
	return scanCategoryLedger(row)
}

// GetOrCreateLedger is idempotent by (name, type); creation races resolve by
// re-reading the winner's row
func (r *categoryRepo) GetOrCreateLedger(ctx context.Context, name string, categoryType domain.CategoryType) (*domain.CategoryLedger, error) {
	if !categoryType.IsValid() {
		return nil, fmt.Errorf("%w: %q", xerrors.ErrUnknownCategoryType, categoryType)
	}

	row := r.db.QueryRow(ctx, baseCategoryLedgerQuery+` WHERE category_name=$1 AND category_type=$2`, name, categoryType)
	ledger, err := scanCategoryLedger(row)
	if err == nil {
		return ledger, nil
	}
	if !errors.Is(err, xerrors.ErrLedgerNotFound) {
		return nil, err
	}

	now := time.Now()
	l := &domain.CategoryLedger{
		CategoryName: name,
		CategoryType: categoryType,
		Balance:      decimal.Zero,
		TotalAmount:  decimal.Zero,
		CreatedAt:    now,
	}

	err = r.db.QueryRow(ctx, `
		INSERT INTO category_ledgers (category_name, category_type, balance, total_amount, created_at)
		VALUES ($1,$2,0,0,$3)
		RETURNING id
	`, name, categoryType, now).Scan(&l.ID)

	if err != nil {
		if xerrors.IsUniqueViolation(err) {
			row := r.db.QueryRow(ctx, baseCategoryLedgerQuery+` WHERE category_name=$1 AND category_type=$2`, name, categoryType)
			return scanCategoryLedger(row)
		}
		return nil, fmt.Errorf("failed to create category ledger %q: %w", name, err)
	}

	return l, nil
}

// ListLedgers fetches all category ledgers ordered by name
func (r *categoryRepo) ListLedgers(ctx context.Context) ([]*domain.CategoryLedger, error) {
	rows, err := r.db.Query(ctx, baseCategoryLedgerQuery+` ORDER BY category_name ASC`)
	if err != nil {
		return nil, fmt.Errorf("failed to query category ledgers: %w", err)
	}
	defer rows.Close()

	var ledgers []*domain.CategoryLedger
	for rows.Next() {
		var l domain.CategoryLedger
		if err := rows.Scan(&l.ID, &l.CategoryName, &l.CategoryType, &l.Balance, &l.TotalAmount, &l.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan category ledger row: %w", err)
		}
		ledgers = append(ledgers, &l)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	return ledgers, nil
}

// ListEntries fetches a ledger's entries ordered by (date, id) ascending
func (r *categoryRepo) ListEntries(ctx context.Context, ledgerID int64) ([]*domain.CategoryLedgerEntry, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, ledger_id, type, amount, balance_after, description, source_type, reference, narration, date, created_at
		FROM category_ledger_entries
		WHERE ledger_id=$1
		ORDER BY date ASC, id ASC
	`, ledgerID)
	if err != nil {
		return nil, fmt.Errorf("failed to query category entries: %w", err)
	}
	defer rows.Close()

	var entries []*domain.CategoryLedgerEntry
	for rows.Next() {
		var e domain.CategoryLedgerEntry
		if err := rows.Scan(
			&e.ID, &e.LedgerID, &e.Type, &e.Amount, &e.BalanceAfter,
			&e.Description, &e.SourceType, &e.Reference, &e.Narration, &e.Date, &e.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan category entry row: %w", err)
		}
		entries = append(entries, &e)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	return entries, nil
}

// lockCategoryLedger locks a category ledger row inside a posting transaction
func lockCategoryLedger(ctx context.Context, tx pgx.Tx, ledgerID int64) (*domain.CategoryLedger, error) {
	row := tx.QueryRow(ctx, baseCategoryLedgerQuery+` WHERE id=$1 FOR UPDATE`, ledgerID)
	return scanCategoryLedger(row)
}

// lockCategoryLedgerByName locks by (name, type), creating the ledger first
// if it does not exist yet
func lockCategoryLedgerByName(ctx context.Context, tx pgx.Tx, name string, categoryType domain.CategoryType) (*domain.CategoryLedger, error) {
	row := tx.QueryRow(ctx, baseCategoryLedgerQuery+` WHERE category_name=$1 AND category_type=$2 FOR UPDATE`, name, categoryType)
	ledger, err := scanCategoryLedger(row)
	if err == nil {
		return ledger, nil
	}
	if !errors.Is(err, xerrors.ErrLedgerNotFound) {
		return nil, err
	}

	now := time.Now()
	l := &domain.CategoryLedger{
		CategoryName: name,
		CategoryType: categoryType,
		Balance:      decimal.Zero,
		TotalAmount:  decimal.Zero,
		CreatedAt:    now,
	}
	err = tx.QueryRow(ctx, `
		INSERT INTO category_ledgers (category_name, category_type, balance, total_amount, created_at)
		VALUES ($1,$2,0,0,$3)
		RETURNING id
	`, name, categoryType, now).Scan(&l.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to create category ledger %q: %w", name, err)
	}
	return l, nil
}

// appendCategoryEntry writes one entry and the new ledger balance inside a
// posting transaction. balanceAfter is computed by the caller from the
// locked ledger row.
func appendCategoryEntry(ctx context.Context, tx pgx.Tx, e *domain.CategoryLedgerEntry, newBalance, newTotal decimal.Decimal) error {
	err := tx.QueryRow(ctx, `
		INSERT INTO category_ledger_entries (
			ledger_id, type, amount, balance_after, description, source_type, reference, narration, date, created_at
		)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
		RETURNING id, created_at
	`, e.LedgerID, e.Type, e.Amount, e.BalanceAfter, e.Description,
		e.SourceType, e.Reference, e.Narration, e.Date, time.Now(),
	).Scan(&e.ID, &e.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert category entry: %w", err)
	}

	_, err = tx.Exec(ctx, `
		UPDATE category_ledgers
		SET balance = $1, total_amount = $2
		WHERE id = $3
	`, newBalance, newTotal, e.LedgerID)
	if err != nil {
		return fmt.Errorf("failed to update category ledger: %w", err)
	}

	return nil
}
