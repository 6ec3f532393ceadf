package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"sacco-ledger-service/internal/domain"
	"sacco-ledger-service/internal/repository"
)

// AccountUsecase is the account registry surface: accounts come into being
// through get-or-create, so every posting path resolves a stable ID before
// writing anything.
type AccountUsecase struct {
	accountRepo repository.AccountRepository
	redisClient *redis.Client
	logger      *zap.Logger
}

// NewAccountUsecase initializes a new AccountUsecase
func NewAccountUsecase(accountRepo repository.AccountRepository, redisClient *redis.Client, logger *zap.Logger) *AccountUsecase {
	return &AccountUsecase{
		accountRepo: accountRepo,
		redisClient: redisClient,
		logger:      logger,
	}
}

// Register resolves or creates an account by normalized name
func (uc *AccountUsecase) Register(ctx context.Context, name string, accountType domain.AccountType, description string) (*domain.Account, error) {
	account, err := uc.accountRepo.GetOrCreate(ctx, name, accountType, description)
	if err != nil {
		return nil, fmt.Errorf("failed to register account: %w", err)
	}

	cacheDrop(ctx, uc.redisClient, "accounts:*")
	uc.logger.Info("account registered",
		zap.Int64("account_id", account.ID),
		zap.String("name", account.Name),
		zap.String("type", string(account.Type)))
	return account, nil
}

// Get fetches an account by ID
func (uc *AccountUsecase) Get(ctx context.Context, accountID int64) (*domain.Account, error) {
	return uc.accountRepo.GetByID(ctx, accountID)
}

// GetByName fetches an account by name, case-insensitive
func (uc *AccountUsecase) GetByName(ctx context.Context, name string) (*domain.Account, error) {
	return uc.accountRepo.GetByName(ctx, name)
}

// List returns accounts matching the filter, sorted by name
func (uc *AccountUsecase) List(ctx context.Context, f *domain.AccountFilter) ([]*domain.Account, error) {
	return uc.accountRepo.List(ctx, f)
}

// ListReal returns the non-GL accounts that hold actual money
func (uc *AccountUsecase) ListReal(ctx context.Context) ([]*domain.Account, error) {
	cacheKey := "accounts:real"

	var accounts []*domain.Account
	if cacheFetch(ctx, uc.redisClient, cacheKey, &accounts) {
		return accounts, nil
	}

	isGL := false
	accounts, err := uc.accountRepo.List(ctx, &domain.AccountFilter{IsGL: &isGL})
	if err != nil {
		return nil, fmt.Errorf("failed to list real accounts: %w", err)
	}

	cacheStore(ctx, uc.redisClient, cacheKey, accounts, 30*time.Second)
	return accounts, nil
}

// SeedChart installs the default chart of accounts, skipping names that
// already exist
func (uc *AccountUsecase) SeedChart(ctx context.Context) error {
	if err := uc.accountRepo.Seed(ctx, domain.DefaultChartAccounts); err != nil {
		return fmt.Errorf("failed to seed chart of accounts: %w", err)
	}
	uc.logger.Info("chart of accounts seeded")
	return nil
}
