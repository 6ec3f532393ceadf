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

// AccountRepository is the account registry: stable identifiers behind the
// get-or-create-by-name pattern, so casing and whitespace differences never
// produce duplicate accounts
type AccountRepository interface {
	GetByID(ctx context.Context, accountID int64) (*domain.Account, error)
	GetByName(ctx context.Context, name string) (*domain.Account, error)

	// GetOrCreate is idempotent by normalized name (case-insensitive)
	GetOrCreate(ctx context.Context, name string, accountType domain.AccountType, description string) (*domain.Account, error)

	List(ctx context.Context, f *domain.AccountFilter) ([]*domain.Account, error)

	// Seed inserts the default chart of accounts, skipping existing names
	Seed(ctx context.Context, accounts []*domain.Account) error
}

type accountRepo struct {
	db *pgxpool.Pool
}

// NewAccountRepo creates a new account repository
func NewAccountRepo(db *pgxpool.Pool) AccountRepository {
	return &accountRepo{db: db}
}

const (
	baseAccountQuery = `
		SELECT id, name, type, currency, description, balance, is_active, created_at, updated_at
		FROM accounts`
)

// scanAccount scans a row into a domain.Account
func scanAccount(row pgx.Row) (*domain.Account, error) {
	var a domain.Account
	err := row.Scan(
		&a.ID, &a.Name, &a.Type, &a.Currency, &a.Description,
		&a.Balance, &a.IsActive, &a.CreatedAt, &a.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, xerrors.ErrAccountNotFound
		}
		return nil, fmt.Errorf("failed to scan account: %w", err)
	}
	return &a, nil
}

// scanAccountRows scans multiple rows into a domain.Account slice
func scanAccountRows(rows pgx.Rows) ([]*domain.Account, error) {
	defer rows.Close()
	var accounts []*domain.Account

	for rows.Next() {
		var a domain.Account
		err := rows.Scan(
			&a.ID, &a.Name, &a.Type, &a.Currency, &a.Description,
			&a.Balance, &a.IsActive, &a.CreatedAt, &a.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan account row: %w", err)
		}
		accounts = append(accounts, &a)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	return accounts, nil
}

// GetByID fetches an account by ID (primary key)
func (r *accountRepo) GetByID(ctx context.Context, accountID int64) (*domain.Account, error) {
	row := r.db.QueryRow(ctx, baseAccountQuery+` WHERE id=$1`, accountID)
	return scanAccount(row)
}

// GetByName fetches an account by normalized name (case-insensitive unique index)
func (r *accountRepo) GetByName(ctx context.Context, name string) (*domain.Account, error) {
	name = domain.NormalizeAccountName(name)
	row := r.db.QueryRow(ctx, baseAccountQuery+` WHERE LOWER(name)=LOWER($1)`, name)
	return scanAccount(row)
}

// GetOrCreate implements the idempotent registry lookup. Creation races on
// the unique name index resolve by re-reading the winner's row.
func (r *accountRepo) GetOrCreate(ctx context.Context, name string, accountType domain.AccountType, description string) (*domain.Account, error) {
	if !accountType.IsValid() {
		return nil, fmt.Errorf("%w: %q", xerrors.ErrUnknownAccountType, accountType)
	}

	name = domain.NormalizeAccountName(name)
	if name == "" {
		return nil, fmt.Errorf("%w: account name is required", xerrors.ErrValidation)
	}

	account, err := r.GetByName(ctx, name)
	if err == nil {
		return account, nil
	}
	if !errors.Is(err, xerrors.ErrAccountNotFound) {
		return nil, err
	}

	now := time.Now()
	a := &domain.Account{
		Name:        name,
		Type:        accountType,
		Currency:    "KES",
		Description: description,
		Balance:     decimal.Zero,
		IsActive:    true,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	err = r.db.QueryRow(ctx, `
		INSERT INTO accounts (name, type, currency, description, balance, is_active, created_at, updated_at)
		VALUES ($1,$2,$3,$4,0,$5,$6,$7)
		RETURNING id
	`, a.Name, a.Type, a.Currency, a.Description, a.IsActive, now, now).Scan(&a.ID)

	if err != nil {
		if xerrors.IsUniqueViolation(err) {
			return r.GetByName(ctx, name)
		}
		return nil, fmt.Errorf("failed to create account %q: %w", name, err)
	}

	return a, nil
}

// List supports flexible filtering for the registry and dashboard views
func (r *accountRepo) List(ctx context.Context, f *domain.AccountFilter) ([]*domain.Account, error) {
	query := baseAccountQuery + ` WHERE 1=1`
	args := []interface{}{}
	argPos := 1

	if f != nil {
		if f.Type != nil {
			query += fmt.Sprintf(` AND type=$%d`, argPos)
			args = append(args, *f.Type)
			argPos++
		}
		if f.IsActive != nil {
			query += fmt.Sprintf(` AND is_active=$%d`, argPos)
			args = append(args, *f.IsActive)
			argPos++
		}
		if f.IsGL != nil {
			if *f.IsGL {
				query += fmt.Sprintf(` AND type=$%d`, argPos)
			} else {
				query += fmt.Sprintf(` AND type<>$%d`, argPos)
			}
			args = append(args, domain.AccountTypeGL)
			argPos++
		}
	}

	query += ` ORDER BY name ASC`

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query accounts: %w", err)
	}

	return scanAccountRows(rows)
}

// Seed inserts the default chart of accounts, idempotent on name
func (r *accountRepo) Seed(ctx context.Context, accounts []*domain.Account) error {
	now := time.Now()
	for _, a := range accounts {
		if !a.IsValid() {
			return fmt.Errorf("%w: invalid chart account %q", xerrors.ErrValidation, a.Name)
		}
		_, err := r.db.Exec(ctx, `
			INSERT INTO accounts (name, type, currency, description, balance, is_active, created_at, updated_at)
			VALUES ($1,$2,$3,$4,0,$5,$6,$7)
			ON CONFLICT (name) DO NOTHING
		`, domain.NormalizeAccountName(a.Name), a.Type, a.Currency, a.Description, a.IsActive, now, now)
		if err != nil {
			return fmt.Errorf("failed to seed account %q: %w", a.Name, err)
		}
	}
	return nil
}

// lockAccountForUpdate locks an account row inside a posting transaction.
// Callers must lock accounts in ascending ID order to prevent deadlocks.
func lockAccountForUpdate(ctx context.Context, tx pgx.Tx, accountID int64) (*domain.Account, error) {
	row := tx.QueryRow(ctx, baseAccountQuery+` WHERE id=$1 FOR UPDATE`, accountID)
	return scanAccount(row)
}

// applyAccountDelta mutates the cached balance inside a posting transaction.
// The cached balance is a projection of journal history and must only move
// together with an entry append.
func applyAccountDelta(ctx context.Context, tx pgx.Tx, accountID int64, delta decimal.Decimal) error {
	cmdTag, err := tx.Exec(ctx, `
		UPDATE accounts
		SET balance = balance + $1, updated_at = $2
		WHERE id = $3
	`, delta, time.Now(), accountID)

	if err != nil {
		return fmt.Errorf("failed to apply balance delta: %w", err)
	}

	if cmdTag.RowsAffected() == 0 {
		return xerrors.ErrAccountNotFound
	}

	return nil
}
