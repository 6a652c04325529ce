package storage

import (
	"context"

	"github.com/spendfree/spendfree/internal/entity/budget"
	"github.com/spendfree/spendfree/internal/entity/expense"
	"github.com/spendfree/spendfree/internal/entity/settings"
)

// Storage is the full store contract; the entry points use it to swap the
// Postgres and in-memory backends. Services depend on their own narrower
// interfaces.
type Storage interface {
	GetSettings(ctx context.Context, userID string) (*settings.UserSettings, error)
	SaveSettings(ctx context.Context, rec settings.UserSettings) error
	ReplaceSettingsIfUnused(ctx context.Context, rec settings.UserSettings, kind expense.UsageKind, ident string) error

	ListExpenses(ctx context.Context, userID, startDate, endDate string) ([]expense.Record, error)
	GetExpense(ctx context.Context, id int64) (*expense.Record, error)
	CreateExpense(ctx context.Context, rec expense.Record) (int64, error)
	UpdateExpense(ctx context.Context, id int64, patch expense.Patch) error
	DeleteExpense(ctx context.Context, id int64) error
	GetExpenseBySource(ctx context.Context, userID, sourceID string) (*expense.Record, error)
	GetExpenseByCategory(ctx context.Context, userID, categoryID string) (*expense.Record, error)
	CheckUsage(ctx context.Context, userID string, kind expense.UsageKind, ident string) (bool, error)

	GetBudget(ctx context.Context, userID string, month, year int) (*budget.Record, error)
	SaveBudget(ctx context.Context, rec budget.Record) error
	PurgeLegacyBudgets(ctx context.Context) (int64, error)
}

var (
	_ Storage = (*PostgresStorage)(nil)
	_ Storage = (*InMemStorage)(nil)
)
