package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"sacco-ledger-service/internal/domain"
	xerrors "sacco-ledger-service/pkg/xerrors"
)

// StatementRepository serves the read-side reports. Each report runs inside
// one repeatable-read transaction so rows and totals come from the same
// snapshot even while postings continue.
type StatementRepository interface {
	// AccountStatement replays one account over [start, end]. accountID 0
	// requests the combined statement across every real (non-GL) account.
	AccountStatement(ctx context.Context, accountID int64, start, end time.Time) (*domain.AccountStatement, error)
	GeneralLedger(ctx context.Context, start, end time.Time) (*domain.GeneralLedger, error)
	TrialBalance(ctx context.Context, asOf time.Time) (*domain.TrialBalance, error)
	BalanceSummary(ctx context.Context) (*domain.BalanceSummary, error)
	CategorySummary(ctx context.Context) (*domain.CategorySummary, error)
}

type statementRepo struct {
	db *pgxpool.Pool
}

func NewStatementRepo(db *pgxpool.Pool) StatementRepository {
	return &statementRepo{db: db}
}

func (r *statementRepo) beginRead(ctx context.Context) (pgx.Tx, error) {
	tx, err := r.db.BeginTx(ctx, pgx.TxOptions{
		IsoLevel:   pgx.RepeatableRead,
		AccessMode: pgx.ReadOnly,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to begin read transaction: %w", err)
	}
	return tx, nil
}

// statementEntryFilter keeps replay consistent with cached balances: voided
// originals and their reversals are excluded together.
const statementEntryFilter = `is_voided = false AND category <> 'void_reversal'`

func (r *statementRepo) AccountStatement(ctx context.Context, accountID int64, start, end time.Time) (*domain.AccountStatement, error) {
	tx, err := r.beginRead(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	set := domain.AccountSet{}
	var meta domain.StatementMeta
	if accountID != 0 {
		acct, err := scanAccount(tx.QueryRow(ctx, baseAccountQuery+` WHERE id = $1`, accountID))
		if err != nil {
			return nil, err
		}
		set[acct.ID] = true
		meta.AccountID = acct.ID
		meta.AccountName = acct.Name
	} else {
		rows, err := tx.Query(ctx, baseAccountQuery+` WHERE type <> $1 ORDER BY name`, string(domain.AccountTypeGL))
		if err != nil {
			return nil, fmt.Errorf("failed to list real accounts: %w", err)
		}
		accounts, err := scanAccountRows(rows)
		if err != nil {
			return nil, err
		}
		for _, a := range accounts {
			set[a.ID] = true
		}
	}

	ids := make([]int64, 0, len(set))
	for id := range set {
		ids = append(ids, id)
	}

	opening, err := openingBalanceTx(ctx, tx, ids, start)
	if err != nil {
		return nil, err
	}

	entries, err := periodEntriesTx(ctx, tx, ids, start, end)
	if err != nil {
		return nil, err
	}

	st := domain.BuildStatement(entries, set, opening, start, end)
	st.Meta.AccountID = meta.AccountID
	st.Meta.AccountName = meta.AccountName
	return st, nil
}

// openingBalanceTx folds all live entries dated before start from the point
// of view of the account set. An internal transfer between two accounts of
// the set contributes both sides and nets to zero.
func openingBalanceTx(ctx context.Context, tx pgx.Tx, accountIDs []int64, start time.Time) (decimal.Decimal, error) {
	query := `
		SELECT
			COALESCE(SUM(CASE WHEN debit_account_id = ANY($1) THEN debit_amount ELSE 0 END), 0)
			- COALESCE(SUM(CASE WHEN credit_account_id = ANY($1) THEN credit_amount ELSE 0 END), 0)
		FROM journal_entries
		WHERE date < $2 AND ` + statementEntryFilter

	var opening decimal.Decimal
	if err := tx.QueryRow(ctx, query, accountIDs, start).Scan(&opening); err != nil {
		return decimal.Zero, fmt.Errorf("failed to fold opening balance: %w", err)
	}
	return opening, nil
}

func periodEntriesTx(ctx context.Context, tx pgx.Tx, accountIDs []int64, start, end time.Time) ([]*domain.JournalEntry, error) {
	query := baseJournalQuery + `
		WHERE (debit_account_id = ANY($1) OR credit_account_id = ANY($1))
		  AND date >= $2 AND date <= $3
		  AND ` + statementEntryFilter + `
		ORDER BY date ASC, id ASC`

	rows, err := tx.Query(ctx, query, accountIDs, start, end)
	if err != nil {
		return nil, fmt.Errorf("failed to list period entries: %w", err)
	}
	return scanJournalRows(rows)
}

func (r *statementRepo) GeneralLedger(ctx context.Context, start, end time.Time) (*domain.GeneralLedger, error) {
	tx, err := r.beginRead(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	rows, err := tx.Query(ctx, baseAccountQuery+` ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("failed to list accounts: %w", err)
	}
	accounts, err := scanAccountRows(rows)
	if err != nil {
		return nil, err
	}

	// One pass over the full history up to the period end so every account's
	// opening balance comes from the same snapshot as its period rows.
	entryRows, err := tx.Query(ctx, baseJournalQuery+`
		WHERE date <= $1 AND `+statementEntryFilter+`
		ORDER BY date ASC, id ASC`, end)
	if err != nil {
		return nil, fmt.Errorf("failed to list entries: %w", err)
	}
	entries, err := scanJournalRows(entryRows)
	if err != nil {
		return nil, err
	}

	return domain.BuildGeneralLedger(accounts, entries, start, end), nil
}

func (r *statementRepo) TrialBalance(ctx context.Context, asOf time.Time) (*domain.TrialBalance, error) {
	tx, err := r.beginRead(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	rows, err := tx.Query(ctx, baseAccountQuery+` ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("failed to list accounts: %w", err)
	}
	accounts, err := scanAccountRows(rows)
	if err != nil {
		return nil, err
	}

	// Balances as of the cut are recomputed from the journal rather than
	// read from the cached column, so a trial balance for a past date stays
	// correct after later postings.
	query := `
		SELECT a.id,
			COALESCE(SUM(CASE WHEN j.debit_account_id = a.id THEN j.debit_amount ELSE 0 END), 0)
			- COALESCE(SUM(CASE WHEN j.credit_account_id = a.id THEN j.credit_amount ELSE 0 END), 0)
		FROM accounts a
		LEFT JOIN journal_entries j
			ON (j.debit_account_id = a.id OR j.credit_account_id = a.id)
			AND j.date <= $1
			AND j.is_voided = false
			AND j.category <> 'void_reversal'
		GROUP BY a.id`

	balanceRows, err := tx.Query(ctx, query, asOf)
	if err != nil {
		return nil, fmt.Errorf("failed to fold balances: %w", err)
	}
	defer balanceRows.Close()

	balances := make(map[int64]decimal.Decimal, len(accounts))
	for balanceRows.Next() {
		var id int64
		var bal decimal.Decimal
		if err := balanceRows.Scan(&id, &bal); err != nil {
			return nil, fmt.Errorf("failed to scan balance fold: %w", err)
		}
		balances[id] = bal
	}
	if err := balanceRows.Err(); err != nil {
		return nil, err
	}

	return domain.BuildTrialBalance(accounts, balances, asOf), nil
}

func (r *statementRepo) BalanceSummary(ctx context.Context) (*domain.BalanceSummary, error) {
	rows, err := r.db.Query(ctx, baseAccountQuery+`
		WHERE type <> $1 AND is_active = true
		ORDER BY type, name`, string(domain.AccountTypeGL))
	if err != nil {
		return nil, fmt.Errorf("failed to list real accounts: %w", err)
	}
	accounts, err := scanAccountRows(rows)
	if err != nil {
		return nil, err
	}

	summary := &domain.BalanceSummary{
		Groups:      []*domain.BalanceSummaryGroup{},
		Total:       decimal.Zero,
		GeneratedAt: time.Now(),
	}
	var current *domain.BalanceSummaryGroup
	for _, a := range accounts {
		if current == nil || current.Type != a.Type {
			current = &domain.BalanceSummaryGroup{
				Type:     a.Type,
				Accounts: []*domain.BalanceSummaryAccount{},
				Total:    decimal.Zero,
			}
			summary.Groups = append(summary.Groups, current)
		}
		current.Accounts = append(current.Accounts, &domain.BalanceSummaryAccount{
			AccountID:   a.ID,
			AccountName: a.Name,
			Balance:     a.Balance,
		})
		current.Total = current.Total.Add(a.Balance)
		summary.Total = summary.Total.Add(a.Balance)
	}
	return summary, nil
}

func (r *statementRepo) CategorySummary(ctx context.Context) (*domain.CategorySummary, error) {
	rows, err := r.db.Query(ctx, baseCategoryLedgerQuery+` ORDER BY category_type, category_name`)
	if err != nil {
		return nil, fmt.Errorf("failed to list category ledgers: %w", err)
	}
	defer rows.Close()

	summary := &domain.CategorySummary{
		Rows:          []*domain.CategorySummaryRow{},
		TotalIncome:   decimal.Zero,
		TotalExpenses: decimal.Zero,
	}
	for rows.Next() {
		ledger, err := scanCategoryLedger(rows)
		if err != nil {
			return nil, err
		}
		summary.Rows = append(summary.Rows, &domain.CategorySummaryRow{
			LedgerID:     ledger.ID,
			CategoryName: ledger.CategoryName,
			CategoryType: ledger.CategoryType,
			Balance:      ledger.Balance,
			TotalAmount:  ledger.TotalAmount,
		})
		switch ledger.CategoryType {
		case domain.CategoryTypeIncome:
			summary.TotalIncome = summary.TotalIncome.Add(ledger.Balance)
		case domain.CategoryTypeExpense:
			summary.TotalExpenses = summary.TotalExpenses.Add(ledger.Balance)
		default:
			return nil, fmt.Errorf("%w: %s", xerrors.ErrUnknownCategoryType, ledger.CategoryType)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	summary.NetResult = summary.TotalIncome.Sub(summary.TotalExpenses)
	return summary, nil
}
