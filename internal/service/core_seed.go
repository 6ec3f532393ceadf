package service

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"sacco-ledger-service/internal/domain"
	"sacco-ledger-service/internal/usecase"
)

// ChartSeeder installs the baseline ledger state at startup: the default
// chart of accounts and the standing category ledgers. Seeding is
// idempotent, so repeated startups change nothing.
type ChartSeeder struct {
	accountUC  *usecase.AccountUsecase
	categoryUC *usecase.CategoryUsecase
	logger     *zap.Logger
}

func NewChartSeeder(
	accountUC *usecase.AccountUsecase,
	categoryUC *usecase.CategoryUsecase,
	logger *zap.Logger,
) *ChartSeeder {
	return &ChartSeeder{
		accountUC:  accountUC,
		categoryUC: categoryUC,
		logger:     logger,
	}
}

// defaultCategories are the standing sub-ledgers every installation gets
var defaultCategories = []struct {
	Name string
	Type domain.CategoryType
}{
	{"Fines", domain.CategoryTypeIncome},
	{"Member Contributions", domain.CategoryTypeIncome},
	{"Operating Costs", domain.CategoryTypeExpense},
}

// SeedSystem seeds the chart of accounts and the default category ledgers
func (s *ChartSeeder) SeedSystem(ctx context.Context) error {
	s.logger.Info("starting system seeding")

	if err := s.accountUC.SeedChart(ctx); err != nil {
		return err
	}

	for _, c := range defaultCategories {
		if _, err := s.categoryUC.EnsureLedger(ctx, c.Name, c.Type); err != nil {
			return fmt.Errorf("failed to seed category %q: %w", c.Name, err)
		}
	}

	s.logger.Info("system seeding completed")
	return nil
}
