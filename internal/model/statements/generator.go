// Package statements builds monthly account statements and dashboard
// summaries out of the ledger and budget stores.
package statements

import (
	"context"
	"sort"
	"time"

	"github.com/jinzhu/now"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"

	"github.com/spendfree/spendfree/internal/entity/budget"
	"github.com/spendfree/spendfree/internal/entity/expense"
	"github.com/spendfree/spendfree/internal/entity/statement"
	"github.com/spendfree/spendfree/internal/model/customerr"
)

type expensesStorage interface {
	ListExpenses(ctx context.Context, userID, startDate, endDate string) ([]expense.Record, error)
	GetBudget(ctx context.Context, userID string, month, year int) (*budget.Record, error)
}

type Generator struct {
	storage expensesStorage
}

func NewGenerator(storage expensesStorage) *Generator {
	return &Generator{storage: storage}
}

// monthRange returns the inclusive ISO date bounds of a calendar month.
func monthRange(month, year int) (string, string) {
	base := now.New(time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC))
	return base.BeginningOfMonth().Format(expense.DateLayout),
		base.EndOfMonth().Format(expense.DateLayout)
}

func (g *Generator) BuildSummary(ctx context.Context, userID string, month, year int) (*statement.Summary, error) {
	if !budget.ValidMonth(month) {
		return nil, &customerr.ValidationError{Field: "month", Err: "must be 1..12"}
	}

	start, end := monthRange(month, year)
	expenses, err := g.storage.ListExpenses(ctx, userID, start, end)
	if err != nil {
		return nil, errors.Wrap(err, "build summary")
	}

	res := summarize(expenses)
	res.Month = month
	res.Year = year

	rec, err := g.storage.GetBudget(ctx, userID, month, year)
	if err != nil {
		return nil, errors.Wrap(err, "build summary")
	}
	if rec != nil {
		amount := rec.Amount
		res.Budget = &amount
	}
	return &res, nil
}

func (g *Generator) BuildStatement(ctx context.Context, userID string, month, year int) (*statement.Statement, error) {
	summary, err := g.BuildSummary(ctx, userID, month, year)
	if err != nil {
		return nil, errors.Wrap(err, "build statement")
	}

	start, end := monthRange(month, year)
	expenses, err := g.storage.ListExpenses(ctx, userID, start, end)
	if err != nil {
		return nil, errors.Wrap(err, "build statement")
	}

	lines := make([]statement.Line, 0, len(expenses))
	for _, e := range expenses {
		lines = append(lines, statement.Line{
			Date:            e.Date,
			Description:     e.Description,
			CategoryID:      e.CategoryID,
			PaymentType:     e.PaymentType,
			TransactionType: e.TransactionType,
			Amount:          e.Amount,
		})
	}

	return &statement.Statement{
		UserID:      userID,
		Month:       month,
		Year:        year,
		GeneratedAt: time.Now(),
		Summary:     *summary,
		Lines:       lines,
	}, nil
}

// summarize folds a month of expenses into the dashboard figures. The
// category and payment breakdowns sum every transaction regardless of its
// direction, matching what the spending views have always shown.
func summarize(expenses []expense.Record) statement.Summary {
	res := statement.Summary{
		TotalDebit:  decimal.Zero,
		TotalCredit: decimal.Zero,
		Net:         decimal.Zero,
		TotalSpent:  decimal.Zero,
	}

	byCategory := make(map[string]decimal.Decimal)
	byPayment := make(map[string]decimal.Decimal)
	for _, e := range expenses {
		if e.TransactionType == expense.TransactionDebit {
			res.TotalDebit = res.TotalDebit.Add(e.Amount)
		} else {
			res.TotalCredit = res.TotalCredit.Add(e.Amount)
		}
		byCategory[e.CategoryID] = byCategory[e.CategoryID].Add(e.Amount)
		byPayment[e.PaymentType] = byPayment[e.PaymentType].Add(e.Amount)
		res.TotalSpent = res.TotalSpent.Add(e.Amount)
	}

	res.Net = res.TotalCredit.Sub(res.TotalDebit)
	res.ByCategory = sortedRows(byCategory)
	res.ByPaymentType = sortedRows(byPayment)
	return res
}

func sortedRows(m map[string]decimal.Decimal) []statement.CategoryAmount {
	rows := make([]statement.CategoryAmount, 0, len(m))
	for name, amount := range m {
		rows = append(rows, statement.CategoryAmount{Name: name, Amount: amount})
	}
	sort.Slice(rows, func(i, j int) bool {
		if !rows[i].Amount.Equal(rows[j].Amount) {
			return rows[i].Amount.GreaterThan(rows[j].Amount)
		}
		return rows[i].Name < rows[j].Name
	})
	return rows
}
