package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spendfree/spendfree/internal/entity/expense"
	"github.com/spendfree/spendfree/internal/entity/settings"
	"github.com/spendfree/spendfree/internal/model/budgets"
	"github.com/spendfree/spendfree/internal/model/ledger"
	"github.com/spendfree/spendfree/internal/model/statements"
	"github.com/spendfree/spendfree/internal/model/taxonomy"
	"github.com/spendfree/spendfree/internal/storage"
)

type cacheFake struct {
	summaries  map[string][]byte
	statements map[string][]byte
}

func newCacheFake() *cacheFake {
	return &cacheFake{
		summaries:  make(map[string][]byte),
		statements: make(map[string][]byte),
	}
}

func (f *cacheFake) CacheSummary(userID, period string, payload []byte) error {
	f.summaries[userID+":"+period] = payload
	return nil
}

func (f *cacheFake) GetSummary(userID, period string) ([]byte, error) {
	return f.summaries[userID+":"+period], nil
}

func (f *cacheFake) CacheStatement(userID, period string, payload []byte) error {
	f.statements[userID+":"+period] = payload
	return nil
}

func (f *cacheFake) GetStatement(userID, period string) ([]byte, error) {
	return f.statements[userID+":"+period], nil
}

func (f *cacheFake) Invalidate(userID string, periods []string) error {
	for _, p := range periods {
		delete(f.summaries, userID+":"+p)
	}
	return nil
}

type queueFake struct {
	messages [][]byte
}

func (f *queueFake) ProduceMessage(message []byte) error {
	f.messages = append(f.messages, message)
	return nil
}

type fixture struct {
	handler http.Handler
	store   *storage.InMemStorage
	cache   *cacheFake
	queue   *queueFake
}

func newFixture() *fixture {
	store := storage.NewInMemStorage()
	cache := newCacheFake()
	queue := &queueFake{}

	server := NewServer(
		taxonomy.NewService(store),
		ledger.NewService(store, cache),
		budgets.NewService(store, cache),
		statements.NewService(statements.NewGenerator(store), cache),
		queue,
	)
	return &fixture{handler: server.Routes(), store: store, cache: cache, queue: queue}
}

func (f *fixture) do(t *testing.T, method, target, user string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}

	req := httptest.NewRequest(method, target, &buf)
	if user != "" {
		req.Header.Set("X-User-Id", user)
	}
	rec := httptest.NewRecorder()
	f.handler.ServeHTTP(rec, req)
	return rec
}

func (f *fixture) seedSettings(t *testing.T, userID string) {
	t.Helper()
	require.NoError(t, f.store.SaveSettings(context.Background(), settings.UserSettings{
		UserID: userID,
		Banks:  []string{"HDFC"},
		CreditCards: []settings.CreditCard{
			{Name: "HDFC Millennia", Bank: "HDFC", Type: settings.CardTypeCredit},
		},
		Categories: []string{"Food", "Travel"},
	}))
}

func (f *fixture) seedExpense(t *testing.T, userID, date, category, sourceID string) {
	t.Helper()
	_, err := f.store.CreateExpense(context.Background(), expense.Record{
		UserID:          userID,
		Date:            date,
		CategoryID:      category,
		Description:     "test entry",
		Amount:          decimal.NewFromInt(100),
		PaymentType:     expense.PaymentUPI,
		SourceID:        sourceID,
		TransactionType: expense.TransactionDebit,
	})
	require.NoError(t, err)
}

func Test_OnMissingIdentityHeader_ShouldReturn401(t *testing.T) {
	f := newFixture()

	rec := f.do(t, http.MethodGet, "/api/v1/settings", "", nil)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func Test_OnGetAbsentSettings_ShouldReturn204(t *testing.T) {
	f := newFixture()

	rec := f.do(t, http.MethodGet, "/api/v1/settings", "user-1", nil)

	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func Test_OnReplaceThenGetSettings_ShouldRoundTrip(t *testing.T) {
	f := newFixture()

	rec := f.do(t, http.MethodPut, "/api/v1/settings", "user-1", map[string]any{
		"banks":       []string{"HDFC"},
		"creditCards": []map[string]string{{"name": "HDFC Millennia", "bank": "HDFC", "type": "credit"}},
		"categories":  []string{"Food"},
	})
	require.Equal(t, http.StatusNoContent, rec.Code)

	rec = f.do(t, http.MethodGet, "/api/v1/settings", "user-1", nil)

	assert.Equal(t, http.StatusOK, rec.Code)
	var res settings.UserSettings
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	assert.Equal(t, []string{"HDFC"}, res.Banks)
	assert.Equal(t, []string{"Food"}, res.Categories)
	require.Len(t, res.CreditCards, 1)
	assert.Equal(t, "HDFC Millennia", res.CreditCards[0].Name)
}

func Test_OnRemoveUsedCategory_ShouldReturn409(t *testing.T) {
	f := newFixture()
	f.seedSettings(t, "user-1")
	f.seedExpense(t, "user-1", "2026-08-10", "Food", "HDFC")

	rec := f.do(t, http.MethodDelete, "/api/v1/settings/categories/Food", "user-1", nil)

	assert.Equal(t, http.StatusConflict, rec.Code)
}

func Test_OnRemoveUnusedCategory_ShouldReturn204(t *testing.T) {
	f := newFixture()
	f.seedSettings(t, "user-1")

	rec := f.do(t, http.MethodDelete, "/api/v1/settings/categories/Travel", "user-1", nil)

	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func Test_OnRemoveCardWithEscapedName_ShouldMatch(t *testing.T) {
	f := newFixture()
	f.seedSettings(t, "user-1")

	rec := f.do(t, http.MethodDelete, "/api/v1/settings/cards/HDFC%20Millennia", "user-1", nil)

	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = f.do(t, http.MethodGet, "/api/v1/settings", "user-1", nil)
	var res settings.UserSettings
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	assert.Empty(t, res.CreditCards)
}

func Test_OnCheckUsage_ShouldReportInUse(t *testing.T) {
	f := newFixture()
	f.seedExpense(t, "user-1", "2026-08-10", "Food", "HDFC")

	rec := f.do(t, http.MethodGet, "/api/v1/settings/usage?kind=category&id=Food", "user-1", nil)

	assert.Equal(t, http.StatusOK, rec.Code)
	var res map[string]bool
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	assert.True(t, res["inUse"])
}

func Test_OnCheckUsageWithBadKind_ShouldReturn400(t *testing.T) {
	f := newFixture()

	rec := f.do(t, http.MethodGet, "/api/v1/settings/usage?kind=bank&id=HDFC", "user-1", nil)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func Test_OnCreateExpense_ShouldReturn201WithID(t *testing.T) {
	f := newFixture()

	rec := f.do(t, http.MethodPost, "/api/v1/expenses", "user-1", map[string]any{
		"date":            "2026-08-10",
		"categoryId":      "Food",
		"description":     "lunch",
		"amount":          "250.50",
		"paymentType":     "UPI",
		"sourceId":        "HDFC",
		"transactionType": "Debit",
	})

	assert.Equal(t, http.StatusCreated, rec.Code)
	var res map[string]int64
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	assert.NotZero(t, res["id"])
}

func Test_OnCreateExpenseWithBadDate_ShouldReturn400(t *testing.T) {
	f := newFixture()

	rec := f.do(t, http.MethodPost, "/api/v1/expenses", "user-1", map[string]any{
		"date":            "10.08.2026",
		"categoryId":      "Food",
		"amount":          "100",
		"paymentType":     "UPI",
		"sourceId":        "HDFC",
		"transactionType": "Debit",
	})

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func Test_OnListExpenses_ShouldReturnOwnRowsInRange(t *testing.T) {
	f := newFixture()
	f.seedExpense(t, "user-1", "2026-08-10", "Food", "HDFC")
	f.seedExpense(t, "user-1", "2026-09-10", "Food", "HDFC")
	f.seedExpense(t, "user-2", "2026-08-10", "Food", "HDFC")

	rec := f.do(t, http.MethodGet, "/api/v1/expenses?start=2026-08-01&end=2026-08-31", "user-1", nil)

	assert.Equal(t, http.StatusOK, rec.Code)
	var res []expense.Record
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	require.Len(t, res, 1)
	assert.Equal(t, "user-1", res[0].UserID)
	assert.Equal(t, "2026-08-10", res[0].Date)
}

func Test_OnDeleteExpenseWithBadID_ShouldReturn400(t *testing.T) {
	f := newFixture()

	rec := f.do(t, http.MethodDelete, "/api/v1/expenses/abc", "user-1", nil)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func Test_OnGetAbsentBudget_ShouldReturn204(t *testing.T) {
	f := newFixture()

	rec := f.do(t, http.MethodGet, "/api/v1/budget?month=8&year=2026", "user-1", nil)

	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func Test_OnSetThenGetBudget_ShouldRoundTrip(t *testing.T) {
	f := newFixture()

	rec := f.do(t, http.MethodPut, "/api/v1/budget", "user-1", map[string]any{
		"amount": "40000", "month": 8, "year": 2026,
	})
	require.Equal(t, http.StatusNoContent, rec.Code)

	rec = f.do(t, http.MethodGet, "/api/v1/budget?month=8&year=2026", "user-1", nil)

	assert.Equal(t, http.StatusOK, rec.Code)
	var res struct {
		Amount decimal.Decimal `json:"amount"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	assert.True(t, res.Amount.Equal(decimal.NewFromInt(40000)))
}

func Test_OnGetBudgetWithBadMonth_ShouldReturn400(t *testing.T) {
	f := newFixture()

	rec := f.do(t, http.MethodGet, "/api/v1/budget?month=13&year=2026", "user-1", nil)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func Test_OnSummary_ShouldReturnMonthAggregates(t *testing.T) {
	f := newFixture()
	f.seedExpense(t, "user-1", "2026-08-10", "Food", "HDFC")

	rec := f.do(t, http.MethodGet, "/api/v1/summary?month=8&year=2026", "user-1", nil)

	assert.Equal(t, http.StatusOK, rec.Code)
	var res struct {
		TotalDebit decimal.Decimal `json:"totalDebit"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	assert.True(t, res.TotalDebit.Equal(decimal.NewFromInt(100)))
}

func Test_OnRequestStatement_ShouldEnqueueAndReturn202(t *testing.T) {
	f := newFixture()

	rec := f.do(t, http.MethodPost, "/api/v1/statements", "user-1", map[string]any{
		"month": 8, "year": 2026,
	})

	assert.Equal(t, http.StatusAccepted, rec.Code)
	require.Len(t, f.queue.messages, 1)

	req, err := statements.RequestFromJSON(f.queue.messages[0])
	require.NoError(t, err)
	assert.Equal(t, "user-1", req.UserID)
	assert.Equal(t, 8, req.Month)
	assert.Equal(t, 2026, req.Year)
}

func Test_OnGetStatementBeforeGeneration_ShouldReturn404(t *testing.T) {
	f := newFixture()

	rec := f.do(t, http.MethodGet, "/api/v1/statements?month=8&year=2026", "user-1", nil)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func Test_OnPurgeLegacyBudgets_ShouldReportRows(t *testing.T) {
	f := newFixture()
	f.store.AddLegacyBudget("user-1", "Food", decimal.NewFromInt(5000))
	f.store.AddLegacyBudget("user-1", "total", decimal.NewFromInt(40000))

	rec := f.do(t, http.MethodPost, "/api/v1/admin/purge-legacy-budgets", "user-1", nil)

	assert.Equal(t, http.StatusOK, rec.Code)
	var res map[string]int64
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	assert.EqualValues(t, 1, res["purged"])
}

func Test_OnHealth_ShouldNotRequireIdentity(t *testing.T) {
	f := newFixture()

	rec := f.do(t, http.MethodGet, "/health", "", nil)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", rec.Body.String())
}
