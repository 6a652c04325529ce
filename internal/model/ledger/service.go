// Package ledger owns the per-user expense records: range reads, creation
// (single and batch), partial updates and unconditional deletes.
package ledger

import (
	"context"

	"github.com/opentracing/opentracing-go"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/spendfree/spendfree/internal/entity/expense"
	"github.com/spendfree/spendfree/internal/entity/statement"
	"github.com/spendfree/spendfree/internal/logger"
	"github.com/spendfree/spendfree/internal/model/customerr"
)

type ledgerStorage interface {
	ListExpenses(ctx context.Context, userID, startDate, endDate string) ([]expense.Record, error)
	GetExpense(ctx context.Context, id int64) (*expense.Record, error)
	CreateExpense(ctx context.Context, rec expense.Record) (int64, error)
	UpdateExpense(ctx context.Context, id int64, patch expense.Patch) error
	DeleteExpense(ctx context.Context, id int64) error
	GetExpenseBySource(ctx context.Context, userID, sourceID string) (*expense.Record, error)
	GetExpenseByCategory(ctx context.Context, userID, categoryID string) (*expense.Record, error)
}

type cacheInvalidator interface {
	Invalidate(userID string, periods []string) error
}

type Service struct {
	storage ledgerStorage
	cache   cacheInvalidator
}

func NewService(storage ledgerStorage, cache cacheInvalidator) *Service {
	return &Service{storage: storage, cache: cache}
}

func (s *Service) List(ctx context.Context, userID, startDate, endDate string) ([]expense.Record, error) {
	if !expense.ValidDate(startDate) {
		return nil, &customerr.ValidationError{Field: "startDate", Err: "must be yyyy-mm-dd"}
	}
	if !expense.ValidDate(endDate) {
		return nil, &customerr.ValidationError{Field: "endDate", Err: "must be yyyy-mm-dd"}
	}
	res, err := s.storage.ListExpenses(ctx, userID, startDate, endDate)
	return res, errors.Wrap(err, "list expenses")
}

// Create inserts unconditionally. The category and source are stored as the
// caller sent them; they are not validated against the taxonomy.
func (s *Service) Create(ctx context.Context, rec expense.Record) (int64, error) {
	span, ctx := opentracing.StartSpanFromContext(ctx, "createExpense")
	defer span.Finish()

	norm, err := normalize(rec)
	if err != nil {
		return 0, err
	}

	id, err := s.storage.CreateExpense(ctx, norm)
	if err != nil {
		return 0, errors.Wrap(err, "create expense")
	}

	s.invalidate(norm.UserID, statement.PeriodOfDate(norm.Date))
	return id, nil
}

// CreateBatch inserts the records one by one; ids of the inserted rows are
// returned in argument order. A mid-batch failure leaves the earlier
// inserts in place, the way the batch entry form retries.
func (s *Service) CreateBatch(ctx context.Context, recs []expense.Record) ([]int64, error) {
	ids := make([]int64, 0, len(recs))
	for _, rec := range recs {
		id, err := s.Create(ctx, rec)
		if err != nil {
			return ids, err
		}
		ids = append(ids, id)
	}
	return ids, nil
}

// Update patches only the supplied fields. Patching an absent id is a no-op.
func (s *Service) Update(ctx context.Context, id int64, patch expense.Patch) error {
	span, ctx := opentracing.StartSpanFromContext(ctx, "updateExpense")
	defer span.Finish()

	if patch.Empty() {
		return nil
	}
	if err := validatePatch(&patch); err != nil {
		return err
	}

	prev, err := s.storage.GetExpense(ctx, id)
	if err != nil {
		return errors.Wrap(err, "update expense")
	}
	if prev == nil {
		return nil
	}

	if err = s.storage.UpdateExpense(ctx, id, patch); err != nil {
		return errors.Wrap(err, "update expense")
	}

	periods := []string{statement.PeriodOfDate(prev.Date)}
	if patch.Date != nil {
		periods = append(periods, statement.PeriodOfDate(*patch.Date))
	}
	s.invalidate(prev.UserID, periods...)
	return nil
}

// Delete is idempotent in intent: an absent id is not an error.
func (s *Service) Delete(ctx context.Context, id int64) error {
	span, ctx := opentracing.StartSpanFromContext(ctx, "deleteExpense")
	defer span.Finish()

	prev, err := s.storage.GetExpense(ctx, id)
	if err != nil {
		return errors.Wrap(err, "delete expense")
	}
	if err = s.storage.DeleteExpense(ctx, id); err != nil {
		return errors.Wrap(err, "delete expense")
	}
	if prev != nil {
		s.invalidate(prev.UserID, statement.PeriodOfDate(prev.Date))
	}
	return nil
}

func (s *Service) DeleteBatch(ctx context.Context, ids []int64) error {
	for _, id := range ids {
		if err := s.Delete(ctx, id); err != nil {
			return err
		}
	}
	return nil
}

func (s *Service) GetBySource(ctx context.Context, userID, sourceID string) (*expense.Record, error) {
	res, err := s.storage.GetExpenseBySource(ctx, userID, sourceID)
	return res, errors.Wrap(err, "get by source")
}

func (s *Service) GetByCategory(ctx context.Context, userID, categoryID string) (*expense.Record, error) {
	res, err := s.storage.GetExpenseByCategory(ctx, userID, categoryID)
	return res, errors.Wrap(err, "get by category")
}

// invalidate drops cached month aggregates. The cache is advisory, so
// failures are logged rather than surfaced.
func (s *Service) invalidate(userID string, periods ...string) {
	valid := periods[:0]
	for _, p := range periods {
		if p != "" {
			valid = append(valid, p)
		}
	}
	if len(valid) == 0 {
		return
	}
	if err := s.cache.Invalidate(userID, valid); err != nil {
		logger.Warn("failed to invalidate cache", zap.String("userID", userID), zap.Error(err))
	}
}

func normalize(rec expense.Record) (expense.Record, error) {
	if !expense.ValidDate(rec.Date) {
		return rec, &customerr.ValidationError{Field: "date", Err: "must be yyyy-mm-dd"}
	}
	if rec.Amount.LessThan(decimal.Zero) {
		return rec, &customerr.ValidationError{Field: "amount", Err: "must be non-negative"}
	}
	rec.PaymentType = expense.NormalizePaymentType(rec.PaymentType)
	if !expense.ValidPaymentType(rec.PaymentType) {
		return rec, &customerr.ValidationError{Field: "paymentType", Err: "must be UPI, Card or Cash"}
	}
	if !expense.ValidTransactionType(rec.TransactionType) {
		return rec, &customerr.ValidationError{Field: "transactionType", Err: "must be Debit or Credit"}
	}
	if rec.PaymentType == expense.PaymentCash && rec.SourceID == "" {
		rec.SourceID = expense.CashSource
	}
	return rec, nil
}

func validatePatch(patch *expense.Patch) error {
	if patch.Date != nil && !expense.ValidDate(*patch.Date) {
		return &customerr.ValidationError{Field: "date", Err: "must be yyyy-mm-dd"}
	}
	if patch.Amount != nil && patch.Amount.LessThan(decimal.Zero) {
		return &customerr.ValidationError{Field: "amount", Err: "must be non-negative"}
	}
	if patch.PaymentType != nil {
		norm := expense.NormalizePaymentType(*patch.PaymentType)
		if !expense.ValidPaymentType(norm) {
			return &customerr.ValidationError{Field: "paymentType", Err: "must be UPI, Card or Cash"}
		}
		patch.PaymentType = &norm
	}
	if patch.TransactionType != nil && !expense.ValidTransactionType(*patch.TransactionType) {
		return &customerr.ValidationError{Field: "transactionType", Err: "must be Debit or Credit"}
	}
	return nil
}
