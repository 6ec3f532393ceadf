package hrest

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"sacco-ledger-service/internal/domain"
	publisher "sacco-ledger-service/internal/pub"
	"sacco-ledger-service/internal/repository/memory"
	"sacco-ledger-service/internal/usecase"
	"sacco-ledger-service/pkg/utils"
)

func newTestServer(t *testing.T) (*httptest.Server, *memory.Store) {
	t.Helper()
	mem := memory.NewStore()
	log := zap.NewNop()
	refs := utils.NewReferenceGenerator()

	handler := NewLedgerRestHandler(
		usecase.NewAccountUsecase(mem.Accounts(), nil, log),
		usecase.NewPostingUsecase(mem.Accounts(), mem.Fines(), mem.Ledger(), refs, publisher.NoopPublisher{}, log),
		usecase.NewVoidUsecase(mem.Ledger(), mem.Journal(), mem.Voids(), publisher.NoopPublisher{}, log),
		usecase.NewJournalUsecase(mem.Journal()),
		usecase.NewCategoryUsecase(mem.Categories(), nil),
		usecase.NewStatementUsecase(mem.Statements(), nil),
	)

	r := chi.NewRouter()
	handler.RegisterRoutes(r)

	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return srv, mem
}

func doJSON(t *testing.T, method, url string, body any) (*http.Response, map[string]json.RawMessage) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req, err := http.NewRequest(method, url, &buf)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })

	var decoded map[string]json.RawMessage
	if resp.ContentLength != 0 && resp.StatusCode != http.StatusNoContent {
		_ = json.NewDecoder(resp.Body).Decode(&decoded)
	}
	return resp, decoded
}

func TestAccountEndpoints(t *testing.T) {
	t.Parallel()
	srv, _ := newTestServer(t)

	resp, body := doJSON(t, http.MethodPost, srv.URL+"/ledger/accounts", map[string]string{
		"name": "Cashbox",
		"type": "cash",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var account domain.Account
	raw, _ := json.Marshal(body)
	require.NoError(t, json.Unmarshal(raw, &account))
	assert.Equal(t, "Cashbox", account.Name)
	assert.NotZero(t, account.ID)

	resp, _ = doJSON(t, http.MethodPost, srv.URL+"/ledger/accounts", map[string]string{
		"name": "Vault",
		"type": "vault",
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode, "unknown account type is a client error")

	resp, _ = doJSON(t, http.MethodGet, srv.URL+fmt.Sprintf("/ledger/accounts/%d", account.ID), nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, _ = doJSON(t, http.MethodGet, srv.URL+"/ledger/accounts/9999", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestDepositAndVoidFlow(t *testing.T) {
	t.Parallel()
	srv, mem := newTestServer(t)

	cash, err := mem.GetOrCreate(context.Background(), "Cashbox", domain.AccountTypeCash, "")
	require.NoError(t, err)

	resp, body := doJSON(t, http.MethodPost, srv.URL+"/ledger/deposits", map[string]any{
		"member_id":  12,
		"account_id": cash.ID,
		"amount":     "2500",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var entry domain.JournalEntry
	raw, _ := json.Marshal(body)
	require.NoError(t, json.Unmarshal(raw, &entry))
	require.NotZero(t, entry.ID)
	assert.True(t, entry.DebitAmount.Equal(decimal.NewFromInt(2500)))

	// Deleting a posted entry is refused; the caller must void.
	resp, _ = doJSON(t, http.MethodDelete, srv.URL+fmt.Sprintf("/ledger/entries/%d", entry.ID), nil)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)

	resp, _ = doJSON(t, http.MethodPost, srv.URL+fmt.Sprintf("/ledger/entries/%d/void", entry.ID), map[string]string{
		"reason": "cashier typo",
		"actor":  "admin@sacco",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	// Second void conflicts.
	resp, _ = doJSON(t, http.MethodPost, srv.URL+fmt.Sprintf("/ledger/entries/%d/void", entry.ID), map[string]string{
		"reason": "again",
		"actor":  "admin@sacco",
	})
	assert.Equal(t, http.StatusConflict, resp.StatusCode)

	// Void without a reason is a client error.
	resp, _ = doJSON(t, http.MethodPost, srv.URL+fmt.Sprintf("/ledger/entries/%d/void", entry.ID), map[string]string{
		"actor": "admin@sacco",
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, _ = doJSON(t, http.MethodGet, srv.URL+fmt.Sprintf("/ledger/entries/%d/void-record", entry.ID), nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	got, err := mem.GetByID(context.Background(), cash.ID)
	require.NoError(t, err)
	assert.True(t, got.Balance.IsZero())
}

func TestFineEndpoints(t *testing.T) {
	t.Parallel()
	srv, mem := newTestServer(t)

	cash, err := mem.GetOrCreate(context.Background(), "Cashbox", domain.AccountTypeCash, "")
	require.NoError(t, err)

	resp, body := doJSON(t, http.MethodPost, srv.URL+"/ledger/fines", map[string]any{
		"member_id": 7,
		"amount":    "1000",
		"reason":    "late arrival",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var fine domain.Fine
	require.NoError(t, json.Unmarshal(body["fine"], &fine))
	assert.Equal(t, domain.FineStatusUnpaid, fine.Status)

	resp, body = doJSON(t, http.MethodPost, srv.URL+fmt.Sprintf("/ledger/fines/%d/payments", fine.ID), map[string]any{
		"amount_paid":     "1000",
		"cash_account_id": cash.ID,
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.NoError(t, json.Unmarshal(body["fine"], &fine))
	assert.Equal(t, domain.FineStatusPaid, fine.Status)

	resp, _ = doJSON(t, http.MethodGet, srv.URL+"/ledger/members/7/fines", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, _ = doJSON(t, http.MethodPost, srv.URL+"/ledger/fines", map[string]any{
		"member_id": 7,
		"amount":    "0",
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestWithdrawalEndpointValidation(t *testing.T) {
	t.Parallel()
	srv, mem := newTestServer(t)

	cash, err := mem.GetOrCreate(context.Background(), "Cashbox", domain.AccountTypeCash, "")
	require.NoError(t, err)

	resp, _ := doJSON(t, http.MethodPost, srv.URL+"/ledger/withdrawals", map[string]any{
		"kind":       "teleport",
		"account_id": cash.ID,
		"amount":     "100",
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, _ = doJSON(t, http.MethodPost, srv.URL+"/ledger/withdrawals", map[string]any{
		"kind":       "expense",
		"account_id": cash.ID,
		"amount":     "100",
		"category":   "Operating Costs",
	})
	assert.Equal(t, http.StatusCreated, resp.StatusCode)
}

func TestReportEndpoints(t *testing.T) {
	t.Parallel()
	srv, mem := newTestServer(t)

	cash, err := mem.GetOrCreate(context.Background(), "Cashbox", domain.AccountTypeCash, "")
	require.NoError(t, err)

	resp, _ := doJSON(t, http.MethodPost, srv.URL+"/ledger/deposits", map[string]any{
		"member_id":  1,
		"account_id": cash.ID,
		"amount":     "4000",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	for _, path := range []string{
		fmt.Sprintf("/ledger/reports/statement?account_id=%d", cash.ID),
		"/ledger/reports/statement",
		"/ledger/reports/general-ledger",
		"/ledger/reports/trial-balance",
		"/ledger/reports/balances",
		"/ledger/reports/categories",
	} {
		resp, _ := doJSON(t, http.MethodGet, srv.URL+path, nil)
		assert.Equal(t, http.StatusOK, resp.StatusCode, path)
	}

	var tb domain.TrialBalance
	res, err := http.Get(srv.URL + "/ledger/reports/trial-balance")
	require.NoError(t, err)
	defer res.Body.Close()
	require.NoError(t, json.NewDecoder(res.Body).Decode(&tb))
	assert.True(t, tb.IsBalanced)
	assert.True(t, tb.TotalDebit.Equal(decimal.NewFromInt(4000)))
}

func TestListEntriesFilters(t *testing.T) {
	t.Parallel()
	srv, mem := newTestServer(t)

	cash, err := mem.GetOrCreate(context.Background(), "Cashbox", domain.AccountTypeCash, "")
	require.NoError(t, err)

	for i := 0; i < 3; i++ {
		resp, _ := doJSON(t, http.MethodPost, srv.URL+"/ledger/deposits", map[string]any{
			"member_id":  1,
			"account_id": cash.ID,
			"amount":     "100",
		})
		require.Equal(t, http.StatusCreated, resp.StatusCode)
	}

	resp, err := http.Get(srv.URL + "/ledger/entries?limit=2")
	require.NoError(t, err)
	defer resp.Body.Close()
	var entries []*domain.JournalEntry
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&entries))
	assert.Len(t, entries, 2)

	resp, err = http.Get(srv.URL + "/ledger/entries?category=fine")
	require.NoError(t, err)
	defer resp.Body.Close()
	entries = nil
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&entries))
	assert.Empty(t, entries)
}
