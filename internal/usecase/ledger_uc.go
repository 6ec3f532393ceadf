package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"sacco-ledger-service/internal/domain"
	"sacco-ledger-service/internal/repository"
)

// CategoryUsecase is the read surface over category sub-ledgers
type CategoryUsecase struct {
	categoryRepo repository.CategoryRepository
	redisClient  *redis.Client
}

func NewCategoryUsecase(categoryRepo repository.CategoryRepository, redisClient *redis.Client) *CategoryUsecase {
	return &CategoryUsecase{
		categoryRepo: categoryRepo,
		redisClient:  redisClient,
	}
}

// GetLedger fetches one category ledger by ID
func (uc *CategoryUsecase) GetLedger(ctx context.Context, ledgerID int64) (*domain.CategoryLedger, error) {
	return uc.categoryRepo.GetLedgerByID(ctx, ledgerID)
}

// EnsureLedger resolves or creates a category ledger by name and type
func (uc *CategoryUsecase) EnsureLedger(ctx context.Context, name string, categoryType domain.CategoryType) (*domain.CategoryLedger, error) {
	ledger, err := uc.categoryRepo.GetOrCreateLedger(ctx, name, categoryType)
	if err != nil {
		return nil, fmt.Errorf("failed to ensure category ledger: %w", err)
	}

	cacheDrop(ctx, uc.redisClient, "categories:*")
	return ledger, nil
}

// ListLedgers returns every category ledger sorted by type then name
func (uc *CategoryUsecase) ListLedgers(ctx context.Context) ([]*domain.CategoryLedger, error) {
	cacheKey := "categories:ledgers"

	var ledgers []*domain.CategoryLedger
	if cacheFetch(ctx, uc.redisClient, cacheKey, &ledgers) {
		return ledgers, nil
	}

	ledgers, err := uc.categoryRepo.ListLedgers(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list category ledgers: %w", err)
	}

	cacheStore(ctx, uc.redisClient, cacheKey, ledgers, 30*time.Second)
	return ledgers, nil
}

// ListEntries returns a ledger's entries in (date, id) order
func (uc *CategoryUsecase) ListEntries(ctx context.Context, ledgerID int64) ([]*domain.CategoryLedgerEntry, error) {
	return uc.categoryRepo.ListEntries(ctx, ledgerID)
}
