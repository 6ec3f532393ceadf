package usecase

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"sacco-ledger-service/internal/domain"
	publisher "sacco-ledger-service/internal/pub"
	"sacco-ledger-service/internal/repository"
	xerrors "sacco-ledger-service/pkg/xerrors"
)

// VoidUsecase owns the Posted -> Voided transition. Posted entries are
// never edited or deleted; the only correction is a void, which appends a
// compensating entry and leaves both visible to audit.
type VoidUsecase struct {
	store       repository.LedgerStore
	journalRepo repository.JournalRepository
	voidRepo    repository.VoidRepository
	events      publisher.EventPublisher
	logger      *zap.Logger
}

// NewVoidUsecase initializes a new VoidUsecase
func NewVoidUsecase(
	store repository.LedgerStore,
	journalRepo repository.JournalRepository,
	voidRepo repository.VoidRepository,
	events publisher.EventPublisher,
	logger *zap.Logger,
) *VoidUsecase {
	return &VoidUsecase{
		store:       store,
		journalRepo: journalRepo,
		voidRepo:    voidRepo,
		events:      events,
		logger:      logger,
	}
}

// VoidEntry voids a posted entry. A second void of the same entry fails
// with a conflict; it never re-applies.
func (uc *VoidUsecase) VoidEntry(ctx context.Context, entryID int64, reason, actor string) (*domain.VoidRecord, *domain.JournalEntry, error) {
	if reason == "" {
		return nil, nil, fmt.Errorf("%w: void reason is required", xerrors.ErrValidation)
	}
	if actor == "" {
		return nil, nil, fmt.Errorf("%w: void actor is required", xerrors.ErrValidation)
	}

	record, reversal, err := uc.store.ExecuteVoid(ctx, entryID, reason, actor)
	if err != nil {
		return nil, nil, err
	}

	uc.events.EntryVoided(ctx, record, reversal)
	uc.logger.Info("journal entry voided",
		zap.Int64("entry_id", entryID),
		zap.Int64("reversal_entry_id", reversal.ID),
		zap.String("actor", actor),
		zap.String("reason", reason))
	return record, reversal, nil
}

// DeleteEntry always refuses. The journal is append-only; the caller is
// pointed at void instead.
func (uc *VoidUsecase) DeleteEntry(ctx context.Context, entryID int64) error {
	if _, err := uc.journalRepo.GetByID(ctx, entryID); err != nil {
		return err
	}
	return fmt.Errorf("%w: entry %d is posted, void it instead", xerrors.ErrPostedDelete, entryID)
}

// GetVoidForEntry fetches the void record linked to an entry
func (uc *VoidUsecase) GetVoidForEntry(ctx context.Context, entryID int64) (*domain.VoidRecord, error) {
	return uc.voidRepo.GetByEntryID(ctx, entryID)
}

// ListVoids lists void records matching the filter, newest first
func (uc *VoidUsecase) ListVoids(ctx context.Context, f *domain.VoidFilter) ([]*domain.VoidRecord, error) {
	return uc.voidRepo.List(ctx, f)
}
