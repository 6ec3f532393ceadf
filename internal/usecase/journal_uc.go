package usecase

import (
	"context"

	"sacco-ledger-service/internal/domain"
	"sacco-ledger-service/internal/repository"
)

// JournalUsecase is the read surface over the immutable journal
type JournalUsecase struct {
	journalRepo repository.JournalRepository
}

func NewJournalUsecase(journalRepo repository.JournalRepository) *JournalUsecase {
	return &JournalUsecase{journalRepo: journalRepo}
}

// Get fetches one entry by ID, voided or not
func (uc *JournalUsecase) Get(ctx context.Context, entryID int64) (*domain.JournalEntry, error) {
	return uc.journalRepo.GetByID(ctx, entryID)
}

// List returns entries matching the filter in (date, id) order. Voided
// entries and their reversals are excluded unless the filter asks for them.
func (uc *JournalUsecase) List(ctx context.Context, f *domain.JournalFilter) ([]*domain.JournalEntry, error) {
	return uc.journalRepo.List(ctx, f)
}
