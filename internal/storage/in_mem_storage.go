package storage

import (
	"context"
	"sort"
	"sync"

	"github.com/shopspring/decimal"

	"github.com/spendfree/spendfree/internal/entity/budget"
	"github.com/spendfree/spendfree/internal/entity/expense"
	"github.com/spendfree/spendfree/internal/entity/settings"
	"github.com/spendfree/spendfree/internal/model/customerr"
)

type budgetKey struct {
	userID string
	month  int
	year   int
}

type legacyBudget struct {
	userID     string
	categoryID string
	amount     decimal.Decimal
}

// InMemStorage mirrors the Postgres contract without a database. It backs
// the test suites and the `storage-backend: memory` mode.
type InMemStorage struct {
	mu            sync.Mutex
	settingsMap   map[string]settings.UserSettings
	expenseMap    map[int64]expense.Record
	budgetMap     map[budgetKey]budget.Record
	legacyBudgets []legacyBudget
	nextID        int64
}

func NewInMemStorage() *InMemStorage {
	return &InMemStorage{
		settingsMap: make(map[string]settings.UserSettings),
		expenseMap:  make(map[int64]expense.Record),
		budgetMap:   make(map[budgetKey]budget.Record),
		nextID:      1,
	}
}

func (s *InMemStorage) GetSettings(_ context.Context, userID string) (*settings.UserSettings, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.settingsMap[userID]
	if !ok {
		return nil, nil
	}
	clone := rec.Clone()
	return &clone, nil
}

func (s *InMemStorage) SaveSettings(_ context.Context, rec settings.UserSettings) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.settingsMap[rec.UserID] = rec.Clone()
	return nil
}

func (s *InMemStorage) ReplaceSettingsIfUnused(_ context.Context, rec settings.UserSettings, kind expense.UsageKind, ident string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.usageExistsLocked(rec.UserID, kind, ident) {
		return &customerr.ConflictError{Kind: string(kind), Item: ident}
	}
	s.settingsMap[rec.UserID] = rec.Clone()
	return nil
}

func (s *InMemStorage) ListExpenses(_ context.Context, userID, startDate, endDate string) ([]expense.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	res := make([]expense.Record, 0)
	for _, e := range s.expenseMap {
		if e.UserID == userID && e.Date >= startDate && e.Date <= endDate {
			res = append(res, e)
		}
	}
	sort.Slice(res, func(i, j int) bool {
		if res[i].Date != res[j].Date {
			return res[i].Date < res[j].Date
		}
		return res[i].ID < res[j].ID
	})
	return res, nil
}

func (s *InMemStorage) GetExpense(_ context.Context, id int64) (*expense.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.expenseMap[id]
	if !ok {
		return nil, nil
	}
	return &e, nil
}

func (s *InMemStorage) CreateExpense(_ context.Context, rec expense.Record) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec.ID = s.nextID
	s.nextID++
	s.expenseMap[rec.ID] = rec
	return rec.ID, nil
}

func (s *InMemStorage) UpdateExpense(_ context.Context, id int64, patch expense.Patch) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.expenseMap[id]
	if !ok {
		return nil
	}
	if patch.Date != nil {
		e.Date = *patch.Date
	}
	if patch.CategoryID != nil {
		e.CategoryID = *patch.CategoryID
	}
	if patch.Description != nil {
		e.Description = *patch.Description
	}
	if patch.Amount != nil {
		e.Amount = *patch.Amount
	}
	if patch.PaymentType != nil {
		e.PaymentType = *patch.PaymentType
	}
	if patch.SourceID != nil {
		e.SourceID = *patch.SourceID
	}
	if patch.TransactionType != nil {
		e.TransactionType = *patch.TransactionType
	}
	s.expenseMap[id] = e
	return nil
}

func (s *InMemStorage) DeleteExpense(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.expenseMap, id)
	return nil
}

func (s *InMemStorage) GetExpenseBySource(_ context.Context, userID, sourceID string) (*expense.Record, error) {
	return s.probe(userID, expense.UsageSource, sourceID)
}

func (s *InMemStorage) GetExpenseByCategory(_ context.Context, userID, categoryID string) (*expense.Record, error) {
	return s.probe(userID, expense.UsageCategory, categoryID)
}

func (s *InMemStorage) probe(userID string, kind expense.UsageKind, ident string) (*expense.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, e := range s.expenseMap {
		if e.UserID == userID && matchesUsage(e, kind, ident) {
			res := e
			return &res, nil
		}
	}
	return nil, nil
}

func (s *InMemStorage) CheckUsage(_ context.Context, userID string, kind expense.UsageKind, ident string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.usageExistsLocked(userID, kind, ident), nil
}

func (s *InMemStorage) usageExistsLocked(userID string, kind expense.UsageKind, ident string) bool {
	for _, e := range s.expenseMap {
		if e.UserID == userID && matchesUsage(e, kind, ident) {
			return true
		}
	}
	return false
}

func matchesUsage(e expense.Record, kind expense.UsageKind, ident string) bool {
	if kind == expense.UsageCategory {
		return e.CategoryID == ident
	}
	return e.SourceID == ident
}

func (s *InMemStorage) GetBudget(_ context.Context, userID string, month, year int) (*budget.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.budgetMap[budgetKey{userID, month, year}]
	if !ok {
		return nil, nil
	}
	return &rec, nil
}

func (s *InMemStorage) SaveBudget(_ context.Context, rec budget.Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.budgetMap[budgetKey{rec.UserID, rec.Month, rec.Year}] = rec
	return nil
}

// AddLegacyBudget seeds a pre-redesign per-category budget row. Only the
// purge operation ever sees these.
func (s *InMemStorage) AddLegacyBudget(userID, categoryID string, amount decimal.Decimal) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.legacyBudgets = append(s.legacyBudgets, legacyBudget{userID, categoryID, amount})
}

func (s *InMemStorage) PurgeLegacyBudgets(_ context.Context) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	kept := s.legacyBudgets[:0]
	var purged int64
	for _, b := range s.legacyBudgets {
		if b.categoryID == "total" {
			kept = append(kept, b)
			continue
		}
		purged++
	}
	s.legacyBudgets = kept
	return purged, nil
}
