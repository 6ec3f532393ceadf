package hrest

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"sacco-ledger-service/internal/domain"
	"sacco-ledger-service/internal/usecase"
	xerrors "sacco-ledger-service/pkg/xerrors"
)

// LedgerRestHandler exposes the posting and reporting operations over HTTP
type LedgerRestHandler struct {
	accountUC   *usecase.AccountUsecase
	postingUC   *usecase.PostingUsecase
	voidUC      *usecase.VoidUsecase
	journalUC   *usecase.JournalUsecase
	categoryUC  *usecase.CategoryUsecase
	statementUC *usecase.StatementUsecase
}

func NewLedgerRestHandler(
	accountUC *usecase.AccountUsecase,
	postingUC *usecase.PostingUsecase,
	voidUC *usecase.VoidUsecase,
	journalUC *usecase.JournalUsecase,
	categoryUC *usecase.CategoryUsecase,
	statementUC *usecase.StatementUsecase,
) *LedgerRestHandler {
	return &LedgerRestHandler{
		accountUC:   accountUC,
		postingUC:   postingUC,
		voidUC:      voidUC,
		journalUC:   journalUC,
		categoryUC:  categoryUC,
		statementUC: statementUC,
	}
}

func respondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func respondError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case xerrors.IsValidation(err):
		status = http.StatusBadRequest
	case xerrors.IsNotFound(err):
		status = http.StatusNotFound
	case xerrors.IsConflict(err):
		status = http.StatusConflict
	}
	respondJSON(w, status, map[string]string{"error": err.Error()})
}

func pathID(r *http.Request, name string) (int64, error) {
	return strconv.ParseInt(chi.URLParam(r, name), 10, 64)
}

// dateOrNow defaults missing transaction dates to the current time
func dateOrNow(t time.Time) time.Time {
	if t.IsZero() {
		return time.Now()
	}
	return t
}

// RegisterRoutes mounts the ledger API under /ledger
func (h *LedgerRestHandler) RegisterRoutes(r chi.Router) {
	r.Route("/ledger", func(r chi.Router) {
		r.Post("/accounts", h.RegisterAccount)
		r.Get("/accounts", h.ListAccounts)
		r.Get("/accounts/{id}", h.GetAccount)

		r.Post("/fines", h.ImposeFine)
		r.Get("/fines/{id}", h.GetFine)
		r.Post("/fines/{id}/payments", h.RecordFinePayment)
		r.Get("/members/{id}/fines", h.ListMemberFines)

		r.Post("/deposits", h.RecordDeposit)
		r.Post("/withdrawals", h.RecordWithdrawal)

		r.Get("/entries", h.ListEntries)
		r.Get("/entries/{id}", h.GetEntry)
		r.Post("/entries/{id}/void", h.VoidEntry)
		r.Delete("/entries/{id}", h.DeleteEntry)
		r.Get("/entries/{id}/void-record", h.GetVoidRecord)

		r.Get("/categories", h.ListCategoryLedgers)
		r.Get("/categories/{id}/entries", h.ListCategoryEntries)
		r.Post("/categories/transactions", h.PostCategoryTransaction)
		r.Post("/categories/transfers", h.TransferBetweenCategories)

		r.Get("/reports/statement", h.AccountStatement)
		r.Get("/reports/general-ledger", h.GeneralLedger)
		r.Get("/reports/trial-balance", h.TrialBalance)
		r.Get("/reports/balances", h.BalanceSummary)
		r.Get("/reports/categories", h.CategorySummary)
	})
}

// --- accounts ---

type registerAccountJSON struct {
	Name        string `json:"name"`
	Type        string `json:"type"`
	Description string `json:"description"`
}

func (h *LedgerRestHandler) RegisterAccount(w http.ResponseWriter, r *http.Request) {
	var in registerAccountJSON
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		respondJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	account, err := h.accountUC.Register(r.Context(), in.Name, domain.AccountType(in.Type), in.Description)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, account)
}

func (h *LedgerRestHandler) ListAccounts(w http.ResponseWriter, r *http.Request) {
	f := &domain.AccountFilter{}
	if v := r.URL.Query().Get("type"); v != "" {
		t := domain.AccountType(v)
		f.Type = &t
	}
	if v := r.URL.Query().Get("is_gl"); v != "" {
		isGL := v == "true"
		f.IsGL = &isGL
	}
	accounts, err := h.accountUC.List(r.Context(), f)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, accounts)
}

func (h *LedgerRestHandler) GetAccount(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		respondJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid account id"})
		return
	}
	account, err := h.accountUC.Get(r.Context(), id)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, account)
}

// --- fines ---

type imposeFineJSON struct {
	MemberID       int64           `json:"member_id"`
	Amount         decimal.Decimal `json:"amount"`
	Reason         string          `json:"reason"`
	Date           time.Time       `json:"date"`
	IdempotencyKey string          `json:"idempotency_key"`
}

func (h *LedgerRestHandler) ImposeFine(w http.ResponseWriter, r *http.Request) {
	var in imposeFineJSON
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		respondJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	fine, entry, err := h.postingUC.ImposeFine(r.Context(), in.MemberID, in.Amount, in.Reason, dateOrNow(in.Date), in.IdempotencyKey)
	if err != nil {
		respondError(w, err)
		return
	}
	h.statementUC.InvalidateReports(r.Context())
	respondJSON(w, http.StatusCreated, map[string]any{"fine": fine, "entry": entry})
}

func (h *LedgerRestHandler) GetFine(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		respondJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid fine id"})
		return
	}
	fine, err := h.postingUC.GetFine(r.Context(), id)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, fine)
}

type finePaymentJSON struct {
	AmountPaid     decimal.Decimal `json:"amount_paid"`
	CashAccountID  int64           `json:"cash_account_id"`
	Date           time.Time       `json:"date"`
	IdempotencyKey string          `json:"idempotency_key"`
}

func (h *LedgerRestHandler) RecordFinePayment(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		respondJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid fine id"})
		return
	}
	var in finePaymentJSON
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		respondJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	fine, entry, err := h.postingUC.RecordFinePayment(r.Context(), id, in.AmountPaid, in.CashAccountID, dateOrNow(in.Date), in.IdempotencyKey)
	if err != nil {
		respondError(w, err)
		return
	}
	h.statementUC.InvalidateReports(r.Context())
	respondJSON(w, http.StatusOK, map[string]any{"fine": fine, "entry": entry})
}

func (h *LedgerRestHandler) ListMemberFines(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		respondJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid member id"})
		return
	}
	fines, err := h.postingUC.ListMemberFines(r.Context(), id)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, fines)
}

// --- deposits and withdrawals ---

type depositJSON struct {
	MemberID       int64           `json:"member_id"`
	AccountID      int64           `json:"account_id"`
	Amount         decimal.Decimal `json:"amount"`
	Description    string          `json:"description"`
	Reference      string          `json:"reference"`
	Date           time.Time       `json:"date"`
	IdempotencyKey string          `json:"idempotency_key"`
}

func (h *LedgerRestHandler) RecordDeposit(w http.ResponseWriter, r *http.Request) {
	var in depositJSON
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		respondJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	entry, err := h.postingUC.RecordDeposit(r.Context(), &domain.Deposit{
		MemberID:    in.MemberID,
		AccountID:   in.AccountID,
		Amount:      in.Amount,
		Description: in.Description,
		Reference:   in.Reference,
		Date:        dateOrNow(in.Date),
	}, in.IdempotencyKey)
	if err != nil {
		respondError(w, err)
		return
	}
	h.statementUC.InvalidateReports(r.Context())
	respondJSON(w, http.StatusCreated, entry)
}

type withdrawalJSON struct {
	Kind             string          `json:"kind"`
	AccountID        int64           `json:"account_id"`
	CounterAccountID int64           `json:"counter_account_id"`
	Amount           decimal.Decimal `json:"amount"`
	Category         string          `json:"category"`
	Description      string          `json:"description"`
	Reference        string          `json:"reference"`
	Date             time.Time       `json:"date"`
	IdempotencyKey   string          `json:"idempotency_key"`
}

func (h *LedgerRestHandler) RecordWithdrawal(w http.ResponseWriter, r *http.Request) {
	var in withdrawalJSON
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		respondJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	entry, err := h.postingUC.RecordWithdrawal(r.Context(), &domain.Withdrawal{
		Kind:             domain.WithdrawalKind(in.Kind),
		AccountID:        in.AccountID,
		CounterAccountID: in.CounterAccountID,
		Amount:           in.Amount,
		Category:         in.Category,
		Description:      in.Description,
		Reference:        in.Reference,
		Date:             dateOrNow(in.Date),
	}, in.IdempotencyKey)
	if err != nil {
		respondError(w, err)
		return
	}
	h.statementUC.InvalidateReports(r.Context())
	respondJSON(w, http.StatusCreated, entry)
}

// --- journal entries ---

func (h *LedgerRestHandler) ListEntries(w http.ResponseWriter, r *http.Request) {
	f := &domain.JournalFilter{}
	q := r.URL.Query()
	if v := q.Get("account_id"); v != "" {
		if id, err := strconv.ParseInt(v, 10, 64); err == nil {
			f.AccountID = &id
		}
	}
	if v := q.Get("category"); v != "" {
		f.Category = &v
	}
	if v := q.Get("start"); v != "" {
		if t, err := time.Parse(time.RFC3339, v); err == nil {
			f.StartDate = &t
		}
	}
	if v := q.Get("end"); v != "" {
		if t, err := time.Parse(time.RFC3339, v); err == nil {
			f.EndDate = &t
		}
	}
	f.IncludeVoided = q.Get("include_voided") == "true"
	if v := q.Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			f.Limit = n
		}
	}
	if v := q.Get("offset"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			f.Offset = n
		}
	}

	entries, err := h.journalUC.List(r.Context(), f)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, entries)
}

func (h *LedgerRestHandler) GetEntry(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		respondJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid entry id"})
		return
	}
	entry, err := h.journalUC.Get(r.Context(), id)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, entry)
}

type voidJSON struct {
	Reason string `json:"reason"`
	Actor  string `json:"actor"`
}

func (h *LedgerRestHandler) VoidEntry(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		respondJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid entry id"})
		return
	}
	var in voidJSON
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		respondJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	record, reversal, err := h.voidUC.VoidEntry(r.Context(), id, in.Reason, in.Actor)
	if err != nil {
		respondError(w, err)
		return
	}
	h.statementUC.InvalidateReports(r.Context())
	respondJSON(w, http.StatusOK, map[string]any{"void_record": record, "reversal_entry": reversal})
}

func (h *LedgerRestHandler) DeleteEntry(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		respondJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid entry id"})
		return
	}
	if err := h.voidUC.DeleteEntry(r.Context(), id); err != nil {
		respondError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *LedgerRestHandler) GetVoidRecord(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		respondJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid entry id"})
		return
	}
	record, err := h.voidUC.GetVoidForEntry(r.Context(), id)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, record)
}

// --- category ledgers ---

func (h *LedgerRestHandler) ListCategoryLedgers(w http.ResponseWriter, r *http.Request) {
	ledgers, err := h.categoryUC.ListLedgers(r.Context())
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, ledgers)
}

func (h *LedgerRestHandler) ListCategoryEntries(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		respondJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid ledger id"})
		return
	}
	entries, err := h.categoryUC.ListEntries(r.Context(), id)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, entries)
}

type categoryTransactionJSON struct {
	LedgerID     int64           `json:"ledger_id"`
	CategoryName string          `json:"category_name"`
	CategoryType string          `json:"category_type"`
	Type         string          `json:"type"`
	Amount       decimal.Decimal `json:"amount"`
	Description  string          `json:"description"`
	SourceType   string          `json:"source_type"`
	Reference    string          `json:"reference"`
	Date         time.Time       `json:"date"`
}

func (h *LedgerRestHandler) PostCategoryTransaction(w http.ResponseWriter, r *http.Request) {
	var in categoryTransactionJSON
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		respondJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	entry, err := h.postingUC.PostCategoryTransaction(r.Context(), &domain.CategoryPosting{
		LedgerID:     in.LedgerID,
		CategoryName: in.CategoryName,
		CategoryType: domain.CategoryType(in.CategoryType),
		Type:         domain.CategoryEntryType(in.Type),
		Amount:       in.Amount,
		Description:  in.Description,
		SourceType:   in.SourceType,
		Reference:    in.Reference,
		Date:         dateOrNow(in.Date),
	})
	if err != nil {
		respondError(w, err)
		return
	}
	h.statementUC.InvalidateReports(r.Context())
	respondJSON(w, http.StatusCreated, entry)
}

type categoryTransferJSON struct {
	FromLedgerID int64           `json:"from_ledger_id"`
	ToLedgerID   int64           `json:"to_ledger_id"`
	Amount       decimal.Decimal `json:"amount"`
	Description  string          `json:"description"`
}

func (h *LedgerRestHandler) TransferBetweenCategories(w http.ResponseWriter, r *http.Request) {
	var in categoryTransferJSON
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		respondJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	entries, err := h.postingUC.TransferBetweenCategories(r.Context(), in.FromLedgerID, in.ToLedgerID, in.Amount, in.Description)
	if err != nil {
		respondError(w, err)
		return
	}
	h.statementUC.InvalidateReports(r.Context())
	respondJSON(w, http.StatusCreated, entries)
}

// --- reports ---

func reportPeriod(r *http.Request) (time.Time, time.Time) {
	start := time.Now().AddDate(0, -1, 0)
	end := time.Now()
	if v := r.URL.Query().Get("start"); v != "" {
		if t, err := time.Parse(time.RFC3339, v); err == nil {
			start = t
		}
	}
	if v := r.URL.Query().Get("end"); v != "" {
		if t, err := time.Parse(time.RFC3339, v); err == nil {
			end = t
		}
	}
	return start, end
}

func (h *LedgerRestHandler) AccountStatement(w http.ResponseWriter, r *http.Request) {
	var accountID int64
	if v := r.URL.Query().Get("account_id"); v != "" {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			respondJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid account id"})
			return
		}
		accountID = id
	}
	start, end := reportPeriod(r)
	statement, err := h.statementUC.AccountStatement(r.Context(), accountID, start, end)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, statement)
}

func (h *LedgerRestHandler) GeneralLedger(w http.ResponseWriter, r *http.Request) {
	start, end := reportPeriod(r)
	ledger, err := h.statementUC.GeneralLedger(r.Context(), start, end)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, ledger)
}

func (h *LedgerRestHandler) TrialBalance(w http.ResponseWriter, r *http.Request) {
	asOf := time.Now()
	if v := r.URL.Query().Get("as_of"); v != "" {
		if t, err := time.Parse(time.RFC3339, v); err == nil {
			asOf = t
		}
	}
	tb, err := h.statementUC.TrialBalance(r.Context(), asOf)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, tb)
}

func (h *LedgerRestHandler) BalanceSummary(w http.ResponseWriter, r *http.Request) {
	summary, err := h.statementUC.BalanceSummary(r.Context())
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, summary)
}

func (h *LedgerRestHandler) CategorySummary(w http.ResponseWriter, r *http.Request) {
	summary, err := h.statementUC.CategorySummary(r.Context())
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, summary)
}
