package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"sacco-ledger-service/internal/domain"
	"sacco-ledger-service/internal/repository"
)

// StatementUsecase serves the reporting projections with short-lived
// caching. Reports are recomputed from the journal, so a stale cache can
// only ever be seconds behind, never wrong.
type StatementUsecase struct {
	statementRepo repository.StatementRepository
	redisClient   *redis.Client
}

// NewStatementUsecase initializes the usecase
func NewStatementUsecase(statementRepo repository.StatementRepository, redisClient *redis.Client) *StatementUsecase {
	return &StatementUsecase{
		statementRepo: statementRepo,
		redisClient:   redisClient,
	}
}

// AccountStatement replays one account, or all real accounts when accountID
// is 0, over a period
func (uc *StatementUsecase) AccountStatement(ctx context.Context, accountID int64, start, end time.Time) (*domain.AccountStatement, error) {
	cacheKey := fmt.Sprintf("report:statement:%d:%d:%d", accountID, start.Unix(), end.Unix())

	var statement domain.AccountStatement
	if cacheFetch(ctx, uc.redisClient, cacheKey, &statement) {
		return &statement, nil
	}

	result, err := uc.statementRepo.AccountStatement(ctx, accountID, start, end)
	if err != nil {
		return nil, fmt.Errorf("failed to build account statement: %w", err)
	}

	cacheStore(ctx, uc.redisClient, cacheKey, result, 1*time.Minute)
	return result, nil
}

// GeneralLedger builds the per-account view with the master debit/credit
// reconciliation
func (uc *StatementUsecase) GeneralLedger(ctx context.Context, start, end time.Time) (*domain.GeneralLedger, error) {
	cacheKey := fmt.Sprintf("report:gl:%d:%d", start.Unix(), end.Unix())

	var ledger domain.GeneralLedger
	if cacheFetch(ctx, uc.redisClient, cacheKey, &ledger) {
		return &ledger, nil
	}

	result, err := uc.statementRepo.GeneralLedger(ctx, start, end)
	if err != nil {
		return nil, fmt.Errorf("failed to build general ledger: %w", err)
	}

	cacheStore(ctx, uc.redisClient, cacheKey, result, 1*time.Minute)
	return result, nil
}

// TrialBalance recomputes every account balance as of a cut and places it
// in the debit or credit column
func (uc *StatementUsecase) TrialBalance(ctx context.Context, asOf time.Time) (*domain.TrialBalance, error) {
	cacheKey := fmt.Sprintf("report:trial:%d", asOf.Unix())

	var tb domain.TrialBalance
	if cacheFetch(ctx, uc.redisClient, cacheKey, &tb) {
		return &tb, nil
	}

	result, err := uc.statementRepo.TrialBalance(ctx, asOf)
	if err != nil {
		return nil, fmt.Errorf("failed to build trial balance: %w", err)
	}

	cacheStore(ctx, uc.redisClient, cacheKey, result, 1*time.Minute)
	return result, nil
}

// BalanceSummary is the dashboard view of real accounts grouped by type.
// Balances move on every posting, so the TTL is short.
func (uc *StatementUsecase) BalanceSummary(ctx context.Context) (*domain.BalanceSummary, error) {
	cacheKey := "report:balances"

	var summary domain.BalanceSummary
	if cacheFetch(ctx, uc.redisClient, cacheKey, &summary) {
		return &summary, nil
	}

	result, err := uc.statementRepo.BalanceSummary(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to build balance summary: %w", err)
	}

	cacheStore(ctx, uc.redisClient, cacheKey, result, 30*time.Second)
	return result, nil
}

// CategorySummary is the income and expense rollup across category ledgers
func (uc *StatementUsecase) CategorySummary(ctx context.Context) (*domain.CategorySummary, error) {
	cacheKey := "report:categories"

	var summary domain.CategorySummary
	if cacheFetch(ctx, uc.redisClient, cacheKey, &summary) {
		return &summary, nil
	}

	result, err := uc.statementRepo.CategorySummary(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to build category summary: %w", err)
	}

	cacheStore(ctx, uc.redisClient, cacheKey, result, 1*time.Minute)
	return result, nil
}

// InvalidateReports drops every cached report after a posting or void
func (uc *StatementUsecase) InvalidateReports(ctx context.Context) {
	cacheDrop(ctx, uc.redisClient, "report:*")
}
