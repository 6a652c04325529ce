// Package budgets owns the one-per-month spending target.
package budgets

import (
	"context"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/spendfree/spendfree/internal/entity/budget"
	"github.com/spendfree/spendfree/internal/entity/statement"
	"github.com/spendfree/spendfree/internal/logger"
	"github.com/spendfree/spendfree/internal/model/customerr"
)

type budgetStorage interface {
	GetBudget(ctx context.Context, userID string, month, year int) (*budget.Record, error)
	SaveBudget(ctx context.Context, rec budget.Record) error
	PurgeLegacyBudgets(ctx context.Context) (int64, error)
}

type cacheInvalidator interface {
	Invalidate(userID string, periods []string) error
}

type Service struct {
	storage budgetStorage
	cache   cacheInvalidator
}

func NewService(storage budgetStorage, cache cacheInvalidator) *Service {
	return &Service{storage: storage, cache: cache}
}

// Get returns nil when the user has no budget for the period; that is the
// normal first-visit outcome, not a failure.
func (s *Service) Get(ctx context.Context, userID string, month, year int) (*budget.Record, error) {
	if !budget.ValidMonth(month) {
		return nil, &customerr.ValidationError{Field: "month", Err: "must be 1..12"}
	}
	res, err := s.storage.GetBudget(ctx, userID, month, year)
	return res, errors.Wrap(err, "get budget")
}

// Set upserts the monthly target keyed by (user, month, year).
func (s *Service) Set(ctx context.Context, userID string, amount decimal.Decimal, month, year int) error {
	if !budget.ValidMonth(month) {
		return &customerr.ValidationError{Field: "month", Err: "must be 1..12"}
	}
	if amount.LessThan(decimal.Zero) {
		return &customerr.ValidationError{Field: "amount", Err: "must be non-negative"}
	}

	rec := budget.Record{UserID: userID, Month: month, Year: year, Amount: amount}
	if err := s.storage.SaveBudget(ctx, rec); err != nil {
		return errors.Wrap(err, "set budget")
	}

	if err := s.cache.Invalidate(userID, []string{statement.Period(month, year)}); err != nil {
		logger.Warn("failed to invalidate cache", zap.String("userID", userID), zap.Error(err))
	}
	return nil
}

// PurgeLegacy drops the pre-redesign per-category budget rows.
func (s *Service) PurgeLegacy(ctx context.Context) (int64, error) {
	n, err := s.storage.PurgeLegacyBudgets(ctx)
	if err != nil {
		return 0, errors.Wrap(err, "purge legacy budgets")
	}
	logger.Info("purged legacy budgets", zap.Int64("rows", n))
	return n, nil
}
