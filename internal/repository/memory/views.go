package memory

import (
	"context"

	"sacco-ledger-service/internal/domain"
	"sacco-ledger-service/internal/repository"
)

// The store exposes each repository interface through a thin view so the
// wiring code can swap it in wherever the postgres repositories go.

// Accounts returns the store as an account registry
func (s *Store) Accounts() repository.AccountRepository { return s }

// Journal returns the journal read view
func (s *Store) Journal() repository.JournalRepository { return journalView{s} }

// Categories returns the category ledger read view
func (s *Store) Categories() repository.CategoryRepository { return categoryView{s} }

// Fines returns the fine record view
func (s *Store) Fines() repository.FineRepository { return fineView{s} }

// Voids returns the void audit trail view
func (s *Store) Voids() repository.VoidRepository { return voidView{s} }

// Ledger returns the store as the atomic writer
func (s *Store) Ledger() repository.LedgerStore { return s }

// Statements returns the store as the report reader
func (s *Store) Statements() repository.StatementRepository { return s }

type journalView struct{ s *Store }

func (v journalView) GetByID(ctx context.Context, id int64) (*domain.JournalEntry, error) {
	return v.s.GetEntryByID(ctx, id)
}

func (v journalView) GetByIdempotencyKey(ctx context.Context, key string) (*domain.JournalEntry, error) {
	return v.s.GetByIdempotencyKey(ctx, key)
}

func (v journalView) List(ctx context.Context, f *domain.JournalFilter) ([]*domain.JournalEntry, error) {
	return v.s.ListEntries(ctx, f)
}

type categoryView struct{ s *Store }

func (v categoryView) GetLedgerByID(ctx context.Context, id int64) (*domain.CategoryLedger, error) {
	return v.s.GetLedgerByID(ctx, id)
}

func (v categoryView) GetOrCreateLedger(ctx context.Context, name string, categoryType domain.CategoryType) (*domain.CategoryLedger, error) {
	return v.s.GetOrCreateLedger(ctx, name, categoryType)
}

func (v categoryView) ListLedgers(ctx context.Context) ([]*domain.CategoryLedger, error) {
	return v.s.ListLedgers(ctx)
}

func (v categoryView) ListEntries(ctx context.Context, ledgerID int64) ([]*domain.CategoryLedgerEntry, error) {
	return v.s.ListLedgerEntries(ctx, ledgerID)
}

type fineView struct{ s *Store }

func (v fineView) Create(ctx context.Context, f *domain.Fine) error {
	return v.s.CreateFine(ctx, f)
}

func (v fineView) GetByID(ctx context.Context, id int64) (*domain.Fine, error) {
	return v.s.GetFineByID(ctx, id)
}

func (v fineView) ListByMember(ctx context.Context, memberID int64) ([]*domain.Fine, error) {
	return v.s.ListFinesByMember(ctx, memberID)
}

type voidView struct{ s *Store }

func (v voidView) GetByEntryID(ctx context.Context, entryID int64) (*domain.VoidRecord, error) {
	return v.s.GetVoidByEntryID(ctx, entryID)
}

func (v voidView) List(ctx context.Context, f *domain.VoidFilter) ([]*domain.VoidRecord, error) {
	return v.s.ListVoids(ctx, f)
}
