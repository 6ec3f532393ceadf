// Package memory provides an in-process implementation of the repository
// interfaces with the same locking and conflict semantics as the postgres
// store. It backs tests and the dev store driver.
package memory

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"sacco-ledger-service/internal/domain"
	xerrors "sacco-ledger-service/pkg/xerrors"
)

// Store holds the whole ledger state behind one mutex. Every write takes
// the lock for its full unit of work, which gives the same all-or-nothing
// visibility as the postgres transactions.
type Store struct {
	mu sync.RWMutex

	accounts       map[int64]*domain.Account
	accountsByName map[string]int64
	nextAccountID  int64

	entries     []*domain.JournalEntry
	entriesByID map[int64]*domain.JournalEntry
	entryByKey  map[string]int64
	nextEntryID int64

	ledgers       map[int64]*domain.CategoryLedger
	ledgersByKey  map[string]int64
	ledgerEntries map[int64][]*domain.CategoryLedgerEntry
	nextLedgerID  int64
	nextLEntryID  int64

	fines      map[int64]*domain.Fine
	nextFineID int64

	voids       []*domain.VoidRecord
	voidByEntry map[int64]*domain.VoidRecord
	nextVoidID  int64
}

// NewStore creates an empty in-memory ledger
func NewStore() *Store {
	return &Store{
		accounts:       map[int64]*domain.Account{},
		accountsByName: map[string]int64{},
		entriesByID:    map[int64]*domain.JournalEntry{},
		entryByKey:     map[string]int64{},
		ledgers:        map[int64]*domain.CategoryLedger{},
		ledgersByKey:   map[string]int64{},
		ledgerEntries:  map[int64][]*domain.CategoryLedgerEntry{},
		fines:          map[int64]*domain.Fine{},
		voidByEntry:    map[int64]*domain.VoidRecord{},
	}
}

func nameKey(name string) string {
	return strings.ToLower(domain.NormalizeAccountName(name))
}

func ledgerKey(name string, categoryType domain.CategoryType) string {
	return strings.ToLower(strings.TrimSpace(name)) + "|" + string(categoryType)
}

func cloneAccount(a *domain.Account) *domain.Account {
	c := *a
	return &c
}

func cloneEntry(j *domain.JournalEntry) *domain.JournalEntry {
	c := *j
	if j.IdempotencyKey != nil {
		k := *j.IdempotencyKey
		c.IdempotencyKey = &k
	}
	return &c
}

func cloneLedger(l *domain.CategoryLedger) *domain.CategoryLedger {
	c := *l
	return &c
}

func cloneLedgerEntry(e *domain.CategoryLedgerEntry) *domain.CategoryLedgerEntry {
	c := *e
	return &c
}

func cloneFine(f *domain.Fine) *domain.Fine {
	c := *f
	if f.PaidDate != nil {
		d := *f.PaidDate
		c.PaidDate = &d
	}
	return &c
}

func cloneVoid(v *domain.VoidRecord) *domain.VoidRecord {
	c := *v
	return &c
}

// --- AccountRepository ---

func (s *Store) GetByID(ctx context.Context, accountID int64) (*domain.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	a, ok := s.accounts[accountID]
	if !ok {
		return nil, fmt.Errorf("account %d: %w", accountID, xerrors.ErrAccountNotFound)
	}
	return cloneAccount(a), nil
}

func (s *Store) GetByName(ctx context.Context, name string) (*domain.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	id, ok := s.accountsByName[nameKey(name)]
	if !ok {
		return nil, fmt.Errorf("account %q: %w", name, xerrors.ErrAccountNotFound)
	}
	return cloneAccount(s.accounts[id]), nil
}

func (s *Store) GetOrCreate(ctx context.Context, name string, accountType domain.AccountType, description string) (*domain.Account, error) {
	if !accountType.IsValid() {
		return nil, fmt.Errorf("%w: %q", xerrors.ErrUnknownAccountType, accountType)
	}
	normalized := domain.NormalizeAccountName(name)
	if normalized == "" {
		return nil, fmt.Errorf("%w: account name is required", xerrors.ErrValidation)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if id, ok := s.accountsByName[nameKey(normalized)]; ok {
		return cloneAccount(s.accounts[id]), nil
	}

	now := time.Now()
	s.nextAccountID++
	a := &domain.Account{
		ID:          s.nextAccountID,
		Name:        normalized,
		Type:        accountType,
		Currency:    "KES",
		Description: description,
		Balance:     decimal.Zero,
		IsActive:    true,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	s.accounts[a.ID] = a
	s.accountsByName[nameKey(normalized)] = a.ID
	return cloneAccount(a), nil
}

func (s *Store) List(ctx context.Context, f *domain.AccountFilter) ([]*domain.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*domain.Account, 0, len(s.accounts))
	for _, a := range s.accounts {
		if f != nil {
			if f.Type != nil && a.Type != *f.Type {
				continue
			}
			if f.IsActive != nil && a.IsActive != *f.IsActive {
				continue
			}
			if f.IsGL != nil && a.IsGL() != *f.IsGL {
				continue
			}
		}
		out = append(out, cloneAccount(a))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (s *Store) Seed(ctx context.Context, accounts []*domain.Account) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	for _, seed := range accounts {
		normalized := domain.NormalizeAccountName(seed.Name)
		if _, ok := s.accountsByName[nameKey(normalized)]; ok {
			continue
		}
		s.nextAccountID++
		a := &domain.Account{
			ID:          s.nextAccountID,
			Name:        normalized,
			Type:        seed.Type,
			Currency:    seed.Currency,
			Description: seed.Description,
			Balance:     decimal.Zero,
			IsActive:    true,
			CreatedAt:   now,
			UpdatedAt:   now,
		}
		s.accounts[a.ID] = a
		s.accountsByName[nameKey(normalized)] = a.ID
	}
	return nil
}

// --- JournalRepository ---

func (s *Store) GetEntryByID(ctx context.Context, id int64) (*domain.JournalEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	j, ok := s.entriesByID[id]
	if !ok {
		return nil, fmt.Errorf("entry %d: %w", id, xerrors.ErrEntryNotFound)
	}
	return cloneEntry(j), nil
}

func (s *Store) GetByIdempotencyKey(ctx context.Context, key string) (*domain.JournalEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	id, ok := s.entryByKey[key]
	if !ok {
		return nil, fmt.Errorf("idempotency key %q: %w", key, xerrors.ErrEntryNotFound)
	}
	return cloneEntry(s.entriesByID[id]), nil
}

func (s *Store) ListEntries(ctx context.Context, f *domain.JournalFilter) ([]*domain.JournalEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*domain.JournalEntry
	for _, j := range s.entries {
		if f != nil {
			if f.AccountID != nil && j.DebitAccountID != *f.AccountID && j.CreditAccountID != *f.AccountID {
				continue
			}
			if f.Category != nil && j.Category != *f.Category {
				continue
			}
			if f.StartDate != nil && j.Date.Before(*f.StartDate) {
				continue
			}
			if f.EndDate != nil && j.Date.After(*f.EndDate) {
				continue
			}
			if !f.IncludeVoided && !domain.CountsForStatement(j) {
				continue
			}
		} else if !domain.CountsForStatement(j) {
			continue
		}
		out = append(out, cloneEntry(j))
	}

	sort.Slice(out, func(i, k int) bool {
		if !out[i].Date.Equal(out[k].Date) {
			return out[i].Date.Before(out[k].Date)
		}
		return out[i].ID < out[k].ID
	})

	if f != nil && f.Limit > 0 {
		start := f.Offset
		if start > len(out) {
			start = len(out)
		}
		end := start + f.Limit
		if end > len(out) {
			end = len(out)
		}
		out = out[start:end]
	}
	return out, nil
}

// --- CategoryRepository ---

func (s *Store) GetLedgerByID(ctx context.Context, id int64) (*domain.CategoryLedger, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	l, ok := s.ledgers[id]
	if !ok {
		return nil, fmt.Errorf("category ledger %d: %w", id, xerrors.ErrLedgerNotFound)
	}
	return cloneLedger(l), nil
}

func (s *Store) GetOrCreateLedger(ctx context.Context, name string, categoryType domain.CategoryType) (*domain.CategoryLedger, error) {
	if !categoryType.IsValid() {
		return nil, fmt.Errorf("%w: %q", xerrors.ErrUnknownCategoryType, categoryType)
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("%w: category name is required", xerrors.ErrValidation)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	return cloneLedger(s.getOrCreateLedgerLocked(name, categoryType)), nil
}

func (s *Store) getOrCreateLedgerLocked(name string, categoryType domain.CategoryType) *domain.CategoryLedger {
	if id, ok := s.ledgersByKey[ledgerKey(name, categoryType)]; ok {
		return s.ledgers[id]
	}
	s.nextLedgerID++
	l := &domain.CategoryLedger{
		ID:           s.nextLedgerID,
		CategoryName: name,
		CategoryType: categoryType,
		Balance:      decimal.Zero,
		TotalAmount:  decimal.Zero,
		CreatedAt:    time.Now(),
	}
	s.ledgers[l.ID] = l
	s.ledgersByKey[ledgerKey(name, categoryType)] = l.ID
	return l
}

func (s *Store) ListLedgers(ctx context.Context) ([]*domain.CategoryLedger, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*domain.CategoryLedger, 0, len(s.ledgers))
	for _, l := range s.ledgers {
		out = append(out, cloneLedger(l))
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CategoryType != out[j].CategoryType {
			return out[i].CategoryType < out[j].CategoryType
		}
		return out[i].CategoryName < out[j].CategoryName
	})
	return out, nil
}

func (s *Store) ListLedgerEntries(ctx context.Context, ledgerID int64) ([]*domain.CategoryLedgerEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if _, ok := s.ledgers[ledgerID]; !ok {
		return nil, fmt.Errorf("category ledger %d: %w", ledgerID, xerrors.ErrLedgerNotFound)
	}

	entries := s.ledgerEntries[ledgerID]
	out := make([]*domain.CategoryLedgerEntry, 0, len(entries))
	for _, e := range entries {
		out = append(out, cloneLedgerEntry(e))
	}
	sort.Slice(out, func(i, k int) bool {
		if !out[i].Date.Equal(out[k].Date) {
			return out[i].Date.Before(out[k].Date)
		}
		return out[i].ID < out[k].ID
	})
	return out, nil
}

// --- FineRepository ---

func (s *Store) CreateFine(ctx context.Context, f *domain.Fine) error {
	if !f.Amount.IsPositive() {
		return fmt.Errorf("%w: got %s", xerrors.ErrNonPositiveAmount, f.Amount)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextFineID++
	f.ID = s.nextFineID
	f.PaidAmount = decimal.Zero
	f.Status = domain.FineStatusUnpaid
	f.CreatedAt = time.Now()
	s.fines[f.ID] = cloneFine(f)
	return nil
}

func (s *Store) GetFineByID(ctx context.Context, id int64) (*domain.Fine, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	f, ok := s.fines[id]
	if !ok {
		return nil, fmt.Errorf("fine %d: %w", id, xerrors.ErrFineNotFound)
	}
	return cloneFine(f), nil
}

func (s *Store) ListFinesByMember(ctx context.Context, memberID int64) ([]*domain.Fine, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*domain.Fine
	for _, f := range s.fines {
		if f.MemberID == memberID {
			out = append(out, cloneFine(f))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}

// --- VoidRepository ---

func (s *Store) GetVoidByEntryID(ctx context.Context, entryID int64) (*domain.VoidRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.voidByEntry[entryID]
	if !ok {
		return nil, fmt.Errorf("void record for entry %d: %w", entryID, xerrors.ErrNotFound)
	}
	return cloneVoid(v), nil
}

func (s *Store) ListVoids(ctx context.Context, f *domain.VoidFilter) ([]*domain.VoidRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*domain.VoidRecord
	for _, v := range s.voids {
		if f != nil {
			if f.JournalEntryID != nil && v.JournalEntryID != *f.JournalEntryID {
				continue
			}
			if f.Actor != nil && v.Actor != *f.Actor {
				continue
			}
			if f.FromDate != nil && v.CreatedAt.Before(*f.FromDate) {
				continue
			}
			if f.ToDate != nil && v.CreatedAt.After(*f.ToDate) {
				continue
			}
		}
		out = append(out, cloneVoid(v))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })

	if f != nil && f.Limit > 0 {
		start := f.Offset
		if start > len(out) {
			start = len(out)
		}
		end := start + f.Limit
		if end > len(out) {
			end = len(out)
		}
		out = out[start:end]
	}
	return out, nil
}

// --- LedgerStore ---

func (s *Store) ExecutePosting(ctx context.Context, p *domain.Posting) (*domain.JournalEntry, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	entry := p.Entry
	if entry.IdempotencyKey != nil {
		if id, ok := s.entryByKey[*entry.IdempotencyKey]; ok {
			return cloneEntry(s.entriesByID[id]), nil
		}
	}

	debit, ok := s.accounts[entry.DebitAccountID]
	if !ok {
		return nil, fmt.Errorf("account %d: %w", entry.DebitAccountID, xerrors.ErrAccountNotFound)
	}
	credit, ok := s.accounts[entry.CreditAccountID]
	if !ok {
		return nil, fmt.Errorf("account %d: %w", entry.CreditAccountID, xerrors.ErrAccountNotFound)
	}
	for _, a := range []*domain.Account{debit, credit} {
		if !a.IsActive {
			return nil, fmt.Errorf("account %q: %w", a.Name, xerrors.ErrAccountInactive)
		}
	}

	// Validate everything the posting carries before mutating anything, so
	// a rejected fine flip leaves no half-applied entry behind.
	var fine *domain.Fine
	if p.Fine != nil {
		fine, ok = s.fines[p.Fine.FineID]
		if !ok {
			return nil, fmt.Errorf("fine %d: %w", p.Fine.FineID, xerrors.ErrFineNotFound)
		}
		if !fine.PaidAmount.Equal(p.Fine.OldPaidAmount) {
			return nil, fmt.Errorf("%w: fine %d paid amount moved from %s to %s",
				xerrors.ErrConflict, fine.ID, p.Fine.OldPaidAmount, fine.PaidAmount)
		}
	}

	stored := s.appendEntryLocked(entry)

	debit.Balance = debit.Balance.Add(entry.DebitAmount)
	debit.UpdatedAt = stored.CreatedAt
	credit.Balance = credit.Balance.Sub(entry.CreditAmount)
	credit.UpdatedAt = stored.CreatedAt

	if p.Category != nil {
		s.appendCategoryLocked(p.Category)
	}

	if fine != nil {
		fine.PaidAmount = p.Fine.PaidAmount
		fine.Status = p.Fine.Status
		if fine.PaidDate == nil {
			fine.PaidDate = p.Fine.PaidDate
		}
	}

	return cloneEntry(stored), nil
}

func (s *Store) appendEntryLocked(entry *domain.JournalEntry) *domain.JournalEntry {
	s.nextEntryID++
	stored := cloneEntry(entry)
	stored.ID = s.nextEntryID
	stored.CreatedAt = time.Now()
	if stored.Date.IsZero() {
		stored.Date = stored.CreatedAt
	}
	s.entries = append(s.entries, stored)
	s.entriesByID[stored.ID] = stored
	if stored.IdempotencyKey != nil {
		s.entryByKey[*stored.IdempotencyKey] = stored.ID
	}
	entry.ID = stored.ID
	entry.CreatedAt = stored.CreatedAt
	entry.Date = stored.Date
	return stored
}

func (s *Store) ExecuteVoid(ctx context.Context, entryID int64, reason, actor string) (*domain.VoidRecord, *domain.JournalEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	orig, ok := s.entriesByID[entryID]
	if !ok {
		return nil, nil, fmt.Errorf("entry %d: %w", entryID, xerrors.ErrEntryNotFound)
	}
	if orig.IsVoided {
		return nil, nil, fmt.Errorf("entry %d: %w", entryID, xerrors.ErrAlreadyVoided)
	}

	now := time.Now()
	reversal := s.appendEntryLocked(domain.ReversalOf(orig, reason, now))

	if debit, ok := s.accounts[reversal.DebitAccountID]; ok {
		debit.Balance = debit.Balance.Add(reversal.DebitAmount)
		debit.UpdatedAt = now
	}
	if credit, ok := s.accounts[reversal.CreditAccountID]; ok {
		credit.Balance = credit.Balance.Sub(reversal.CreditAmount)
		credit.UpdatedAt = now
	}

	orig.IsVoided = true

	s.nextVoidID++
	record := &domain.VoidRecord{
		ID:              s.nextVoidID,
		JournalEntryID:  orig.ID,
		ReversalEntryID: reversal.ID,
		Reason:          reason,
		Actor:           actor,
		CreatedAt:       now,
	}
	s.voids = append(s.voids, record)
	s.voidByEntry[orig.ID] = record

	return cloneVoid(record), cloneEntry(reversal), nil
}

func (s *Store) AppendCategoryEntry(ctx context.Context, cp *domain.CategoryPosting) (*domain.CategoryLedgerEntry, error) {
	if err := cp.Validate(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if cp.LedgerID != 0 {
		if _, ok := s.ledgers[cp.LedgerID]; !ok {
			return nil, fmt.Errorf("category ledger %d: %w", cp.LedgerID, xerrors.ErrLedgerNotFound)
		}
	}
	return cloneLedgerEntry(s.appendCategoryLocked(cp)), nil
}

func (s *Store) appendCategoryLocked(cp *domain.CategoryPosting) *domain.CategoryLedgerEntry {
	var ledger *domain.CategoryLedger
	if cp.LedgerID != 0 {
		ledger = s.ledgers[cp.LedgerID]
	} else {
		ledger = s.getOrCreateLedgerLocked(cp.CategoryName, cp.CategoryType)
	}

	ledger.Balance = domain.NextBalance(ledger.Balance, cp.Type, cp.Amount)
	ledger.TotalAmount = ledger.TotalAmount.Add(cp.Amount)

	date := cp.Date
	if date.IsZero() {
		date = time.Now()
	}

	s.nextLEntryID++
	e := &domain.CategoryLedgerEntry{
		ID:           s.nextLEntryID,
		LedgerID:     ledger.ID,
		Type:         cp.Type,
		Amount:       cp.Amount,
		BalanceAfter: ledger.Balance,
		Description:  cp.Description,
		SourceType:   cp.SourceType,
		Reference:    cp.Reference,
		Narration:    cp.Narration,
		Date:         date,
		CreatedAt:    time.Now(),
	}
	s.ledgerEntries[ledger.ID] = append(s.ledgerEntries[ledger.ID], e)
	return e
}

func (s *Store) ExecuteCategoryTransfer(ctx context.Context, fromLedgerID, toLedgerID int64, amount decimal.Decimal, reference, description string) ([]*domain.CategoryLedgerEntry, error) {
	if fromLedgerID == toLedgerID {
		return nil, fmt.Errorf("%w: ledger %d", xerrors.ErrSameLedgerTransfer, fromLedgerID)
	}
	if !amount.IsPositive() {
		return nil, fmt.Errorf("%w: got %s", xerrors.ErrNonPositiveAmount, amount)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	source, ok := s.ledgers[fromLedgerID]
	if !ok {
		return nil, fmt.Errorf("ledger %d: %w", fromLedgerID, xerrors.ErrLedgerNotFound)
	}
	dest, ok := s.ledgers[toLedgerID]
	if !ok {
		return nil, fmt.Errorf("ledger %d: %w", toLedgerID, xerrors.ErrLedgerNotFound)
	}

	// A transfer is a debit leg on the source and a credit leg on the
	// destination, sharing one reference.
	now := time.Now()
	out := s.appendCategoryLocked(&domain.CategoryPosting{
		LedgerID:    source.ID,
		Type:        domain.CategoryEntryDebit,
		Amount:      amount,
		Description: description,
		SourceType:  "category_transfer",
		Reference:   reference,
		Date:        now,
	})
	in := s.appendCategoryLocked(&domain.CategoryPosting{
		LedgerID:    dest.ID,
		Type:        domain.CategoryEntryCredit,
		Amount:      amount,
		Description: description,
		SourceType:  "category_transfer",
		Reference:   reference,
		Date:        now,
	})
	return []*domain.CategoryLedgerEntry{cloneLedgerEntry(out), cloneLedgerEntry(in)}, nil
}

// --- StatementRepository ---

func (s *Store) sortedEntriesLocked() []*domain.JournalEntry {
	out := make([]*domain.JournalEntry, len(s.entries))
	copy(out, s.entries)
	sort.Slice(out, func(i, k int) bool {
		if !out[i].Date.Equal(out[k].Date) {
			return out[i].Date.Before(out[k].Date)
		}
		return out[i].ID < out[k].ID
	})
	return out
}

func (s *Store) AccountStatement(ctx context.Context, accountID int64, start, end time.Time) (*domain.AccountStatement, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	set := domain.AccountSet{}
	var meta domain.StatementMeta
	if accountID != 0 {
		a, ok := s.accounts[accountID]
		if !ok {
			return nil, fmt.Errorf("account %d: %w", accountID, xerrors.ErrAccountNotFound)
		}
		set[a.ID] = true
		meta.AccountID = a.ID
		meta.AccountName = a.Name
	} else {
		for _, a := range s.accounts {
			if !a.IsGL() {
				set[a.ID] = true
			}
		}
	}

	entries := s.sortedEntriesLocked()
	opening := domain.FoldOpeningBalance(entries, set, start)
	st := domain.BuildStatement(entries, set, opening, start, end)
	st.Meta.AccountID = meta.AccountID
	st.Meta.AccountName = meta.AccountName
	return st, nil
}

func (s *Store) GeneralLedger(ctx context.Context, start, end time.Time) (*domain.GeneralLedger, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	accounts := make([]*domain.Account, 0, len(s.accounts))
	for _, a := range s.accounts {
		accounts = append(accounts, cloneAccount(a))
	}
	return domain.BuildGeneralLedger(accounts, s.sortedEntriesLocked(), start, end), nil
}

func (s *Store) TrialBalance(ctx context.Context, asOf time.Time) (*domain.TrialBalance, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	accounts := make([]*domain.Account, 0, len(s.accounts))
	balances := make(map[int64]decimal.Decimal, len(s.accounts))
	for _, a := range s.accounts {
		accounts = append(accounts, cloneAccount(a))
		balances[a.ID] = decimal.Zero
	}
	for _, j := range s.entries {
		if !domain.CountsForStatement(j) || j.Date.After(asOf) {
			continue
		}
		if bal, ok := balances[j.DebitAccountID]; ok {
			balances[j.DebitAccountID] = bal.Add(j.DebitAmount)
		}
		if bal, ok := balances[j.CreditAccountID]; ok {
			balances[j.CreditAccountID] = bal.Sub(j.CreditAmount)
		}
	}
	return domain.BuildTrialBalance(accounts, balances, asOf), nil
}

func (s *Store) BalanceSummary(ctx context.Context) (*domain.BalanceSummary, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var real []*domain.Account
	for _, a := range s.accounts {
		if !a.IsGL() && a.IsActive {
			real = append(real, cloneAccount(a))
		}
	}
	sort.Slice(real, func(i, j int) bool {
		if real[i].Type != real[j].Type {
			return real[i].Type < real[j].Type
		}
		return real[i].Name < real[j].Name
	})

	summary := &domain.BalanceSummary{
		Groups:      []*domain.BalanceSummaryGroup{},
		Total:       decimal.Zero,
		GeneratedAt: time.Now(),
	}
	var current *domain.BalanceSummaryGroup
	for _, a := range real {
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

func (s *Store) CategorySummary(ctx context.Context) (*domain.CategorySummary, error) {
	ledgers, err := s.ListLedgers(ctx)
	if err != nil {
		return nil, err
	}

	summary := &domain.CategorySummary{
		Rows:          []*domain.CategorySummaryRow{},
		TotalIncome:   decimal.Zero,
		TotalExpenses: decimal.Zero,
	}
	for _, l := range ledgers {
		summary.Rows = append(summary.Rows, &domain.CategorySummaryRow{
			LedgerID:     l.ID,
			CategoryName: l.CategoryName,
			CategoryType: l.CategoryType,
			Balance:      l.Balance,
			TotalAmount:  l.TotalAmount,
		})
		switch l.CategoryType {
		case domain.CategoryTypeIncome:
			summary.TotalIncome = summary.TotalIncome.Add(l.Balance)
		case domain.CategoryTypeExpense:
			summary.TotalExpenses = summary.TotalExpenses.Add(l.Balance)
		}
	}
	summary.NetResult = summary.TotalIncome.Sub(summary.TotalExpenses)
	return summary, nil
}
