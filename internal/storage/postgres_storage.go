package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	// postgres driver
	_ "github.com/lib/pq"

	"github.com/spendfree/spendfree/internal/entity/budget"
	"github.com/spendfree/spendfree/internal/entity/expense"
	"github.com/spendfree/spendfree/internal/entity/settings"
	"github.com/spendfree/spendfree/internal/logger"
	"github.com/spendfree/spendfree/internal/model/customerr"
)

const dsnTemplate = "user=%s password=%s host=%s dbname=%s sslmode=disable"

var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

type config interface {
	Host() string
	Username() string
	Password() string
	Database() string
}

type PostgresStorage struct {
	db *sql.DB
}

func NewPostgresStorage(config config) (*PostgresStorage, error) {
	db, err := sql.Open("postgres", fmt.Sprintf(dsnTemplate,
		config.Username(),
		config.Password(),
		config.Host(),
		config.Database()))
	if err != nil {
		return nil, errors.Wrap(err, "cannot connect to database")
	}
	if err = db.Ping(); err != nil {
		return nil, errors.Wrap(err, "cannot connect to database")
	}
	if err = RunMigrations(db); err != nil {
		return nil, errors.Wrap(err, "cannot migrate database")
	}
	return &PostgresStorage{db}, nil
}

func (s *PostgresStorage) GetSettings(ctx context.Context, userID string) (*settings.UserSettings, error) {
	query := psql.Select("banks", "credit_cards", "categories").
		From("user_settings").
		Where(sq.Eq{"user_id": userID})

	var banksRaw, cardsRaw, catsRaw []byte
	err := query.RunWith(s.db).QueryRowContext(ctx).Scan(&banksRaw, &cardsRaw, &catsRaw)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Wrap(err, "get settings")
	}

	res := settings.UserSettings{UserID: userID}
	if err = json.Unmarshal(banksRaw, &res.Banks); err != nil {
		return nil, errors.Wrap(err, "get settings")
	}
	if err = json.Unmarshal(cardsRaw, &res.CreditCards); err != nil {
		return nil, errors.Wrap(err, "get settings")
	}
	if err = json.Unmarshal(catsRaw, &res.Categories); err != nil {
		return nil, errors.Wrap(err, "get settings")
	}
	return &res, nil
}

func (s *PostgresStorage) SaveSettings(ctx context.Context, rec settings.UserSettings) error {
	query, err := settingsUpsert(rec)
	if err != nil {
		return errors.Wrap(err, "save settings")
	}
	_, err = query.RunWith(s.db).ExecContext(ctx)
	return errors.Wrap(err, "save settings")
}

// ReplaceSettingsIfUnused performs the usage check and the settings write in
// one transaction, so a concurrent expense insert cannot slip between them.
func (s *PostgresStorage) ReplaceSettingsIfUnused(ctx context.Context, rec settings.UserSettings, kind expense.UsageKind, ident string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, "replace settings")
	}
	defer func() {
		txErr := tx.Rollback()
		if txErr != nil && !errors.Is(txErr, sql.ErrTxDone) {
			logger.Error("error when transaction rollback", zap.Error(txErr))
		}
	}()

	used, err := usageExists(ctx, tx, rec.UserID, kind, ident)
	if err != nil {
		return errors.Wrap(err, "replace settings")
	}
	if used {
		return &customerr.ConflictError{Kind: string(kind), Item: ident}
	}

	query, err := settingsUpsert(rec)
	if err != nil {
		return errors.Wrap(err, "replace settings")
	}
	if _, err = query.RunWith(tx).ExecContext(ctx); err != nil {
		return errors.Wrap(err, "replace settings")
	}
	return tx.Commit()
}

func settingsUpsert(rec settings.UserSettings) (sq.InsertBuilder, error) {
	banksRaw, err := json.Marshal(emptyAsList(rec.Banks))
	if err != nil {
		return sq.InsertBuilder{}, err
	}
	cardsRaw, err := json.Marshal(emptyCardsAsList(rec.CreditCards))
	if err != nil {
		return sq.InsertBuilder{}, err
	}
	catsRaw, err := json.Marshal(emptyAsList(rec.Categories))
	if err != nil {
		return sq.InsertBuilder{}, err
	}

	query := psql.Insert("user_settings").
		Columns("user_id", "banks", "credit_cards", "categories", "updated_at").
		Values(rec.UserID, banksRaw, cardsRaw, catsRaw, time.Now()).
		Suffix("ON CONFLICT(user_id) DO UPDATE SET banks = ?, credit_cards = ?, categories = ?, updated_at = ?",
			banksRaw, cardsRaw, catsRaw, time.Now())
	return query, nil
}

// emptyAsList keeps absent collections as JSON [] rather than null.
func emptyAsList(in []string) []string {
	if in == nil {
		return []string{}
	}
	return in
}

func emptyCardsAsList(in []settings.CreditCard) []settings.CreditCard {
	if in == nil {
		return []settings.CreditCard{}
	}
	return in
}

func (s *PostgresStorage) ListExpenses(ctx context.Context, userID, startDate, endDate string) ([]expense.Record, error) {
	query := psql.Select("id", "user_id", "date", "category_id", "description",
		"amount", "payment_type", "source_id", "transaction_type").
		From("expenses").
		Where(sq.Eq{"user_id": userID}).
		Where(sq.GtOrEq{"date": startDate}).
		Where(sq.LtOrEq{"date": endDate}).
		OrderBy("date ASC", "id ASC")

	rows, err := query.RunWith(s.db).QueryContext(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "list expenses")
	}
	defer func() {
		rowErr := rows.Close()
		if rowErr != nil {
			logger.Error("error closing rows", zap.Error(rowErr))
		}
	}()

	exps := make([]expense.Record, 0)
	for rows.Next() {
		var e expense.Record
		err = rows.Scan(&e.ID, &e.UserID, &e.Date, &e.CategoryID, &e.Description,
			&e.Amount, &e.PaymentType, &e.SourceID, &e.TransactionType)
		if err != nil {
			return nil, errors.Wrap(err, "list expenses")
		}
		exps = append(exps, e)
	}
	if err = rows.Err(); err != nil {
		return nil, errors.Wrap(err, "list expenses")
	}

	return exps, nil
}

func (s *PostgresStorage) GetExpense(ctx context.Context, id int64) (*expense.Record, error) {
	query := psql.Select("id", "user_id", "date", "category_id", "description",
		"amount", "payment_type", "source_id", "transaction_type").
		From("expenses").
		Where(sq.Eq{"id": id})

	var e expense.Record
	err := query.RunWith(s.db).QueryRowContext(ctx).Scan(&e.ID, &e.UserID, &e.Date,
		&e.CategoryID, &e.Description, &e.Amount, &e.PaymentType, &e.SourceID, &e.TransactionType)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Wrap(err, "get expense")
	}
	return &e, nil
}

func (s *PostgresStorage) CreateExpense(ctx context.Context, rec expense.Record) (int64, error) {
	query := psql.Insert("expenses").
		Columns("user_id", "date", "category_id", "description",
			"amount", "payment_type", "source_id", "transaction_type").
		Values(rec.UserID, rec.Date, rec.CategoryID, rec.Description,
			rec.Amount, rec.PaymentType, rec.SourceID, rec.TransactionType).
		Suffix("RETURNING id")

	var id int64
	err := query.RunWith(s.db).QueryRowContext(ctx).Scan(&id)
	return id, errors.Wrap(err, "create expense")
}

func (s *PostgresStorage) UpdateExpense(ctx context.Context, id int64, patch expense.Patch) error {
	if patch.Empty() {
		return nil
	}

	query := psql.Update("expenses").Where(sq.Eq{"id": id})
	if patch.Date != nil {
		query = query.Set("date", *patch.Date)
	}
	if patch.CategoryID != nil {
		query = query.Set("category_id", *patch.CategoryID)
	}
	if patch.Description != nil {
		query = query.Set("description", *patch.Description)
	}
	if patch.Amount != nil {
		query = query.Set("amount", *patch.Amount)
	}
	if patch.PaymentType != nil {
		query = query.Set("payment_type", *patch.PaymentType)
	}
	if patch.SourceID != nil {
		query = query.Set("source_id", *patch.SourceID)
	}
	if patch.TransactionType != nil {
		query = query.Set("transaction_type", *patch.TransactionType)
	}

	_, err := query.RunWith(s.db).ExecContext(ctx)
	return errors.Wrap(err, "update expense")
}

// DeleteExpense is idempotent in intent: deleting an absent id is not an error.
func (s *PostgresStorage) DeleteExpense(ctx context.Context, id int64) error {
	query := psql.Delete("expenses").Where(sq.Eq{"id": id})
	_, err := query.RunWith(s.db).ExecContext(ctx)
	return errors.Wrap(err, "delete expense")
}

func (s *PostgresStorage) GetExpenseBySource(ctx context.Context, userID, sourceID string) (*expense.Record, error) {
	return s.probeExpense(ctx, userID, "source_id", sourceID)
}

func (s *PostgresStorage) GetExpenseByCategory(ctx context.Context, userID, categoryID string) (*expense.Record, error) {
	return s.probeExpense(ctx, userID, "category_id", categoryID)
}

func (s *PostgresStorage) probeExpense(ctx context.Context, userID, column, value string) (*expense.Record, error) {
	query := psql.Select("id", "user_id", "date", "category_id", "description",
		"amount", "payment_type", "source_id", "transaction_type").
		From("expenses").
		Where(sq.Eq{"user_id": userID}).
		Where(sq.Eq{column: value}).
		Limit(1)

	var e expense.Record
	err := query.RunWith(s.db).QueryRowContext(ctx).Scan(&e.ID, &e.UserID, &e.Date,
		&e.CategoryID, &e.Description, &e.Amount, &e.PaymentType, &e.SourceID, &e.TransactionType)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Wrap(err, "probe expense")
	}
	return &e, nil
}

func (s *PostgresStorage) CheckUsage(ctx context.Context, userID string, kind expense.UsageKind, ident string) (bool, error) {
	return usageExists(ctx, s.db, userID, kind, ident)
}

func usageExists(ctx context.Context, runner sq.BaseRunner, userID string, kind expense.UsageKind, ident string) (bool, error) {
	column := "source_id"
	if kind == expense.UsageCategory {
		column = "category_id"
	}

	query := psql.Select("1").
		From("expenses").
		Where(sq.Eq{"user_id": userID}).
		Where(sq.Eq{column: ident}).
		Limit(1)

	var one int
	err := query.RunWith(runner).QueryRowContext(ctx).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, errors.Wrap(err, "check usage")
	}
	return true, nil
}

func (s *PostgresStorage) GetBudget(ctx context.Context, userID string, month, year int) (*budget.Record, error) {
	query := psql.Select("amount").
		From("budgets").
		Where(sq.Eq{"user_id": userID, "month": month, "year": year}).
		Where("category_id IS NULL")

	res := budget.Record{UserID: userID, Month: month, Year: year}
	err := query.RunWith(s.db).QueryRowContext(ctx).Scan(&res.Amount)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Wrap(err, "get budget")
	}
	return &res, nil
}

func (s *PostgresStorage) SaveBudget(ctx context.Context, rec budget.Record) error {
	query := psql.Insert("budgets").
		Columns("user_id", "amount", "month", "year", "updated_at").
		Values(rec.UserID, rec.Amount, rec.Month, rec.Year, time.Now()).
		Suffix("ON CONFLICT (user_id, month, year) WHERE category_id IS NULL DO UPDATE SET amount = ?, updated_at = ?",
			rec.Amount, time.Now())

	_, err := query.RunWith(s.db).ExecContext(ctx)
	return errors.Wrap(err, "save budget")
}

// PurgeLegacyBudgets removes budget rows written by the pre-redesign schema,
// which kept one row per category. The "total" row survives as the monthly
// target.
func (s *PostgresStorage) PurgeLegacyBudgets(ctx context.Context) (int64, error) {
	query := psql.Delete("budgets").
		Where("category_id IS NOT NULL").
		Where(sq.NotEq{"category_id": "total"})

	res, err := query.RunWith(s.db).ExecContext(ctx)
	if err != nil {
		return 0, errors.Wrap(err, "purge legacy budgets")
	}
	n, err := res.RowsAffected()
	return n, errors.Wrap(err, "purge legacy budgets")
}
