package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"sacco-ledger-service/internal/domain"
	publisher "sacco-ledger-service/internal/pub"
	"sacco-ledger-service/internal/repository"
	"sacco-ledger-service/pkg/utils"
	xerrors "sacco-ledger-service/pkg/xerrors"
)

// PostingUsecase turns business events into balanced journal entries. Each
// operation builds one atomic posting and hands it to the store; nothing
// here writes balances directly.
type PostingUsecase struct {
	accountRepo repository.AccountRepository
	fineRepo    repository.FineRepository
	store       repository.LedgerStore
	refs        *utils.ReferenceGenerator
	events      publisher.EventPublisher
	logger      *zap.Logger
}

// NewPostingUsecase initializes a new PostingUsecase
func NewPostingUsecase(
	accountRepo repository.AccountRepository,
	fineRepo repository.FineRepository,
	store repository.LedgerStore,
	refs *utils.ReferenceGenerator,
	events publisher.EventPublisher,
	logger *zap.Logger,
) *PostingUsecase {
	return &PostingUsecase{
		accountRepo: accountRepo,
		fineRepo:    fineRepo,
		store:       store,
		refs:        refs,
		events:      events,
		logger:      logger,
	}
}

func optionalKey(key string) *string {
	if key == "" {
		return nil
	}
	return &key
}

// ImposeFine creates the fine record and books it in one posting: fines
// receivable takes the debit, fines collected the credit. The fine stays
// unpaid until payments arrive.
func (uc *PostingUsecase) ImposeFine(ctx context.Context, memberID int64, amount decimal.Decimal, reason string, date time.Time, idempotencyKey string) (*domain.Fine, *domain.JournalEntry, error) {
	if !amount.IsPositive() {
		return nil, nil, fmt.Errorf("%w: got %s", xerrors.ErrNonPositiveAmount, amount)
	}

	receivable, err := uc.accountRepo.GetOrCreate(ctx, domain.AccountFinesReceivable, domain.AccountTypeGL, "Fines imposed, not yet paid")
	if err != nil {
		return nil, nil, err
	}
	collected, err := uc.accountRepo.GetOrCreate(ctx, domain.AccountFinesCollected, domain.AccountTypeGL, "Fine income")
	if err != nil {
		return nil, nil, err
	}

	fine := &domain.Fine{
		MemberID: memberID,
		Amount:   amount,
		Reason:   reason,
	}
	if err := uc.fineRepo.Create(ctx, fine); err != nil {
		return nil, nil, fmt.Errorf("failed to create fine: %w", err)
	}

	entry := &domain.JournalEntry{
		Date:            date,
		Reference:       uc.refs.Next(utils.PrefixFine),
		Description:     fmt.Sprintf("Fine imposed on member %d: %s", memberID, reason),
		DebitAccountID:  receivable.ID,
		DebitAmount:     amount,
		CreditAccountID: collected.ID,
		CreditAmount:    amount,
		Category:        domain.CategoryFine,
		IdempotencyKey:  optionalKey(idempotencyKey),
	}

	posted, err := uc.store.ExecutePosting(ctx, &domain.Posting{Entry: entry})
	if err != nil {
		return nil, nil, err
	}

	uc.events.EntryPosted(ctx, posted)
	uc.logger.Info("fine imposed",
		zap.Int64("fine_id", fine.ID),
		zap.Int64("member_id", memberID),
		zap.String("amount", amount.String()),
		zap.String("reference", posted.Reference))
	return fine, posted, nil
}

// RecordFinePayment applies a cumulative paid amount to a fine. Only the
// positive difference over what was already paid is posted: cash takes the
// debit, fines collected the credit. A non-positive difference is a no-op.
func (uc *PostingUsecase) RecordFinePayment(ctx context.Context, fineID int64, amountPaid decimal.Decimal, cashAccountID int64, date time.Time, idempotencyKey string) (*domain.Fine, *domain.JournalEntry, error) {
	fine, err := uc.fineRepo.GetByID(ctx, fineID)
	if err != nil {
		return nil, nil, err
	}
	diff := amountPaid.Sub(fine.PaidAmount)
	if !diff.IsPositive() {
		return fine, nil, nil
	}

	cash, err := uc.accountRepo.GetByID(ctx, cashAccountID)
	if err != nil {
		return nil, nil, err
	}
	collected, err := uc.accountRepo.GetOrCreate(ctx, domain.AccountFinesCollected, domain.AccountTypeGL, "Fine income")
	if err != nil {
		return nil, nil, err
	}

	status := fine.StatusFor(amountPaid)
	mutation := &domain.FineMutation{
		FineID:        fine.ID,
		OldPaidAmount: fine.PaidAmount,
		PaidAmount:    amountPaid,
		Status:        status,
	}
	if status == domain.FineStatusPaid {
		paidDate := date
		mutation.PaidDate = &paidDate
	}

	entry := &domain.JournalEntry{
		Date:            date,
		Reference:       uc.refs.Next(utils.PrefixFine),
		Description:     fmt.Sprintf("Fine payment for fine %d", fine.ID),
		DebitAccountID:  cash.ID,
		DebitAmount:     diff,
		CreditAccountID: collected.ID,
		CreditAmount:    diff,
		Category:        domain.CategoryFinePayment,
		IdempotencyKey:  optionalKey(idempotencyKey),
	}

	posted, err := uc.store.ExecutePosting(ctx, &domain.Posting{Entry: entry, Fine: mutation})
	if err != nil {
		return nil, nil, err
	}

	updated, err := uc.fineRepo.GetByID(ctx, fineID)
	if err != nil {
		return nil, nil, err
	}

	uc.events.EntryPosted(ctx, posted)
	uc.logger.Info("fine payment recorded",
		zap.Int64("fine_id", fine.ID),
		zap.String("paid_amount", amountPaid.String()),
		zap.String("posted_diff", diff.String()),
		zap.String("status", string(updated.Status)))
	return updated, posted, nil
}

// RecordDeposit books incoming member money: the receiving account takes
// the debit, member deposits the credit
func (uc *PostingUsecase) RecordDeposit(ctx context.Context, d *domain.Deposit, idempotencyKey string) (*domain.JournalEntry, error) {
	if !d.Amount.IsPositive() {
		return nil, fmt.Errorf("%w: got %s", xerrors.ErrNonPositiveAmount, d.Amount)
	}

	account, err := uc.accountRepo.GetByID(ctx, d.AccountID)
	if err != nil {
		return nil, err
	}
	deposits, err := uc.accountRepo.GetOrCreate(ctx, domain.AccountMemberDeposits, domain.AccountTypeGL, "Member savings liability")
	if err != nil {
		return nil, err
	}

	reference := d.Reference
	if reference == "" {
		reference = uc.refs.Next(utils.PrefixDeposit)
	}
	description := d.Description
	if description == "" {
		description = fmt.Sprintf("Deposit from member %d", d.MemberID)
	}

	entry := &domain.JournalEntry{
		Date:            d.Date,
		Reference:       reference,
		Description:     description,
		DebitAccountID:  account.ID,
		DebitAmount:     d.Amount,
		CreditAccountID: deposits.ID,
		CreditAmount:    d.Amount,
		Category:        domain.CategoryDeposit,
		IdempotencyKey:  optionalKey(idempotencyKey),
	}

	posted, err := uc.store.ExecutePosting(ctx, &domain.Posting{Entry: entry})
	if err != nil {
		return nil, err
	}

	uc.events.EntryPosted(ctx, posted)
	uc.logger.Info("deposit recorded",
		zap.Int64("member_id", d.MemberID),
		zap.Int64("account_id", account.ID),
		zap.String("amount", d.Amount.String()),
		zap.String("reference", posted.Reference))
	return posted, nil
}

// RecordWithdrawal dispatches an outgoing movement by kind. Every kind
// credits the source account; the kind decides the debit side and whether a
// category ledger append rides along.
func (uc *PostingUsecase) RecordWithdrawal(ctx context.Context, w *domain.Withdrawal, idempotencyKey string) (*domain.JournalEntry, error) {
	if err := w.Validate(); err != nil {
		return nil, err
	}

	source, err := uc.accountRepo.GetByID(ctx, w.AccountID)
	if err != nil {
		return nil, err
	}

	reference := w.Reference
	if reference == "" {
		reference = uc.refs.Next(utils.PrefixWithdrawal)
	}

	var debitID int64
	var category string
	var categoryPosting *domain.CategoryPosting
	description := w.Description

	switch w.Kind {
	case domain.WithdrawalExpense:
		expense, err := uc.accountRepo.GetOrCreate(ctx, w.Category, domain.AccountTypeGL, "Expense account")
		if err != nil {
			return nil, err
		}
		debitID = expense.ID
		category = domain.CategoryExpense
		if description == "" {
			description = fmt.Sprintf("Expense: %s", w.Category)
		}
		categoryPosting = &domain.CategoryPosting{
			CategoryName: w.Category,
			CategoryType: domain.CategoryTypeExpense,
			Type:         domain.CategoryEntryCredit,
			Amount:       w.Amount,
			Description:  description,
			SourceType:   "withdrawal",
			Reference:    reference,
			Date:         w.Date,
		}

	case domain.WithdrawalTransfer:
		if w.CounterAccountID == 0 {
			return nil, fmt.Errorf("%w: transfer destination account is required", xerrors.ErrValidation)
		}
		dest, err := uc.accountRepo.GetByID(ctx, w.CounterAccountID)
		if err != nil {
			return nil, err
		}
		debitID = dest.ID
		category = domain.CategoryTransferMovement
		if description == "" {
			description = fmt.Sprintf("Transfer from %s to %s", source.Name, dest.Name)
		}

	case domain.WithdrawalRefund:
		refunds, err := uc.accountRepo.GetOrCreate(ctx, domain.AccountRefundsPayable, domain.AccountTypeGL, "Member refunds")
		if err != nil {
			return nil, err
		}
		debitID = refunds.ID
		category = domain.CategoryRefund
		if description == "" {
			description = "Member refund"
		}

	case domain.WithdrawalDividend:
		dividends, err := uc.accountRepo.GetOrCreate(ctx, domain.AccountDividendsPayable, domain.AccountTypeGL, "Dividend distributions")
		if err != nil {
			return nil, err
		}
		debitID = dividends.ID
		category = domain.CategoryDividend
		if description == "" {
			description = "Dividend payout"
		}

	case domain.WithdrawalLoanDisbursement:
		loans, err := uc.accountRepo.GetOrCreate(ctx, domain.AccountLoansLedger, domain.AccountTypeGL, "Outstanding member loans")
		if err != nil {
			return nil, err
		}
		debitID = loans.ID
		category = domain.CategoryLoanDisbursement
		if description == "" {
			description = "Loan disbursement"
		}

	default:
		return nil, fmt.Errorf("%w: %q", xerrors.ErrUnknownWithdrawalKind, w.Kind)
	}

	entry := &domain.JournalEntry{
		Date:            w.Date,
		Reference:       reference,
		Description:     description,
		DebitAccountID:  debitID,
		DebitAmount:     w.Amount,
		CreditAccountID: source.ID,
		CreditAmount:    w.Amount,
		Category:        category,
		IdempotencyKey:  optionalKey(idempotencyKey),
	}

	posted, err := uc.store.ExecutePosting(ctx, &domain.Posting{Entry: entry, Category: categoryPosting})
	if err != nil {
		return nil, err
	}

	uc.events.EntryPosted(ctx, posted)
	uc.logger.Info("withdrawal recorded",
		zap.String("kind", string(w.Kind)),
		zap.Int64("account_id", source.ID),
		zap.String("amount", w.Amount.String()),
		zap.String("reference", posted.Reference))
	return posted, nil
}

// PostCategoryTransaction appends a movement to a category ledger without a
// journal entry, for category-only bookkeeping
func (uc *PostingUsecase) PostCategoryTransaction(ctx context.Context, cp *domain.CategoryPosting) (*domain.CategoryLedgerEntry, error) {
	if cp.Reference == "" {
		cp.Reference = uc.refs.Next(utils.PrefixCategory)
	}

	entry, err := uc.store.AppendCategoryEntry(ctx, cp)
	if err != nil {
		return nil, err
	}

	uc.logger.Info("category transaction posted",
		zap.Int64("ledger_id", entry.LedgerID),
		zap.String("type", string(entry.Type)),
		zap.String("amount", entry.Amount.String()),
		zap.String("balance_after", entry.BalanceAfter.String()))
	return entry, nil
}

// TransferBetweenCategories moves value between two category ledgers under
// one shared reference
func (uc *PostingUsecase) TransferBetweenCategories(ctx context.Context, fromLedgerID, toLedgerID int64, amount decimal.Decimal, description string) ([]*domain.CategoryLedgerEntry, error) {
	reference := uc.refs.Next(utils.PrefixTransfer)

	entries, err := uc.store.ExecuteCategoryTransfer(ctx, fromLedgerID, toLedgerID, amount, reference, description)
	if err != nil {
		return nil, err
	}

	uc.logger.Info("category transfer recorded",
		zap.Int64("from_ledger_id", fromLedgerID),
		zap.Int64("to_ledger_id", toLedgerID),
		zap.String("amount", amount.String()),
		zap.String("reference", reference))
	return entries, nil
}

// GetFine fetches a fine with its repayment state
func (uc *PostingUsecase) GetFine(ctx context.Context, fineID int64) (*domain.Fine, error) {
	return uc.fineRepo.GetByID(ctx, fineID)
}

// ListMemberFines lists a member's fines, newest first
func (uc *PostingUsecase) ListMemberFines(ctx context.Context, memberID int64) ([]*domain.Fine, error) {
	return uc.fineRepo.ListByMember(ctx, memberID)
}
