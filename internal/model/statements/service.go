package statements

import (
	"context"
	"encoding/json"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/spendfree/spendfree/internal/entity/statement"
	"github.com/spendfree/spendfree/internal/logger"
)

type statementCache interface {
	CacheSummary(userID, period string, payload []byte) error
	GetSummary(userID, period string) ([]byte, error)
	CacheStatement(userID, period string, payload []byte) error
	GetStatement(userID, period string) ([]byte, error)
}

// Service serves summaries through the cache and accepts worker-built
// statements into it.
type Service struct {
	generator *Generator
	cache     statementCache
}

func NewService(generator *Generator, cache statementCache) *Service {
	return &Service{generator: generator, cache: cache}
}

// Summary returns the cached month aggregate, computing and caching it on a
// miss. Writes to the month's ledger or budget invalidate the entry.
func (s *Service) Summary(ctx context.Context, userID string, month, year int) (*statement.Summary, error) {
	period := statement.Period(month, year)

	cached, err := s.cache.GetSummary(userID, period)
	if err != nil {
		logger.Warn("summary cache read failed", zap.String("userID", userID), zap.Error(err))
	}
	if cached != nil {
		var res statement.Summary
		if err = json.Unmarshal(cached, &res); err == nil {
			return &res, nil
		}
		logger.Warn("dropping unreadable cached summary", zap.String("userID", userID), zap.Error(err))
	}

	res, err := s.generator.BuildSummary(ctx, userID, month, year)
	if err != nil {
		return nil, err
	}

	payload, err := json.Marshal(res)
	if err != nil {
		return nil, errors.Wrap(err, "summary")
	}
	if err = s.cache.CacheSummary(userID, period, payload); err != nil {
		logger.Warn("summary cache write failed", zap.String("userID", userID), zap.Error(err))
	}
	return res, nil
}

// Statement returns the worker-built statement for the period, or nil when
// none has been generated yet.
func (s *Service) Statement(_ context.Context, userID string, month, year int) (*statement.Statement, error) {
	cached, err := s.cache.GetStatement(userID, statement.Period(month, year))
	if err != nil {
		return nil, errors.Wrap(err, "statement")
	}
	if cached == nil {
		return nil, nil
	}

	var res statement.Statement
	if err = json.Unmarshal(cached, &res); err != nil {
		return nil, errors.Wrap(err, "statement")
	}
	return &res, nil
}

// ProcessRequest is the worker side: build the statement and publish it to
// the cache the API serves polls from.
func (s *Service) ProcessRequest(ctx context.Context, req *Request) error {
	logger.Info("ProcessRequest - start",
		zap.String("userID", req.UserID), zap.Int("month", req.Month), zap.Int("year", req.Year))
	defer logger.Info("ProcessRequest - end")

	st, err := s.generator.BuildStatement(ctx, req.UserID, req.Month, req.Year)
	if err != nil {
		return errors.Wrap(err, "process request")
	}

	payload, err := json.Marshal(st)
	if err != nil {
		return errors.Wrap(err, "process request")
	}
	period := statement.Period(req.Month, req.Year)
	if err = s.cache.CacheStatement(req.UserID, period, payload); err != nil {
		return errors.Wrap(err, "process request")
	}

	summaryPayload, err := json.Marshal(st.Summary)
	if err != nil {
		return errors.Wrap(err, "process request")
	}
	if err = s.cache.CacheSummary(req.UserID, period, summaryPayload); err != nil {
		logger.Warn("summary cache write failed", zap.String("userID", req.UserID), zap.Error(err))
	}
	return nil
}
