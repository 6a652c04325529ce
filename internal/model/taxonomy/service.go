// Package taxonomy owns the user-defined vocabulary of banks, cards and
// categories, and guards its edits against orphaning ledger rows.
package taxonomy

import (
	"context"

	"github.com/opentracing/opentracing-go"
	"github.com/opentracing/opentracing-go/ext"
	"github.com/pkg/errors"

	"github.com/spendfree/spendfree/internal/entity/expense"
	"github.com/spendfree/spendfree/internal/entity/settings"
)

type settingsStorage interface {
	GetSettings(ctx context.Context, userID string) (*settings.UserSettings, error)
	SaveSettings(ctx context.Context, rec settings.UserSettings) error
	ReplaceSettingsIfUnused(ctx context.Context, rec settings.UserSettings, kind expense.UsageKind, ident string) error
	CheckUsage(ctx context.Context, userID string, kind expense.UsageKind, ident string) (bool, error)
}

type Service struct {
	storage settingsStorage
}

func NewService(storage settingsStorage) *Service {
	return &Service{storage: storage}
}

func (s *Service) Get(ctx context.Context, userID string) (*settings.UserSettings, error) {
	res, err := s.storage.GetSettings(ctx, userID)
	return res, errors.Wrap(err, "get settings")
}

// Replace overwrites the user's three collections in full. Callers keep
// entries they do not intend to remove by passing them back. Cross-field
// consistency (a card naming a removed bank) is not validated here; the
// model tolerates that drift.
func (s *Service) Replace(ctx context.Context, userID string, banks []string, cards []settings.CreditCard, categories []string) error {
	rec := settings.UserSettings{
		UserID:      userID,
		Banks:       banks,
		CreditCards: cards,
		Categories:  categories,
	}
	return errors.Wrap(s.storage.SaveSettings(ctx, rec), "replace settings")
}

func (s *Service) CheckUsage(ctx context.Context, userID string, kind expense.UsageKind, ident string) (bool, error) {
	used, err := s.storage.CheckUsage(ctx, userID, kind, ident)
	return used, errors.Wrap(err, "check usage")
}

// RemoveBank deletes a bank and cascades removal of its dependent cards.
// Only the bank itself is usage-checked; the cascaded cards are not.
func (s *Service) RemoveBank(ctx context.Context, userID, name string) error {
	span, ctx := opentracing.StartSpanFromContext(ctx, "removeBank")
	defer span.Finish()
	span.SetTag("bank", name)

	err := s.remove(ctx, userID, expense.UsageSource, name, func(cur settings.UserSettings) settings.UserSettings {
		next := settings.UserSettings{UserID: userID}
		for _, b := range cur.Banks {
			if b != name {
				next.Banks = append(next.Banks, b)
			}
		}
		for _, c := range cur.CreditCards {
			if c.Bank != name {
				next.CreditCards = append(next.CreditCards, c)
			}
		}
		next.Categories = append(next.Categories, cur.Categories...)
		return next
	})
	if err != nil {
		ext.Error.Set(span, true)
		return errors.Wrap(err, "remove bank")
	}
	return nil
}

func (s *Service) RemoveCard(ctx context.Context, userID, name string) error {
	span, ctx := opentracing.StartSpanFromContext(ctx, "removeCard")
	defer span.Finish()
	span.SetTag("card", name)

	err := s.remove(ctx, userID, expense.UsageSource, name, func(cur settings.UserSettings) settings.UserSettings {
		next := settings.UserSettings{UserID: userID}
		next.Banks = append(next.Banks, cur.Banks...)
		for _, c := range cur.CreditCards {
			if c.Name != name {
				next.CreditCards = append(next.CreditCards, c)
			}
		}
		next.Categories = append(next.Categories, cur.Categories...)
		return next
	})
	if err != nil {
		ext.Error.Set(span, true)
		return errors.Wrap(err, "remove card")
	}
	return nil
}

func (s *Service) RemoveCategory(ctx context.Context, userID, name string) error {
	span, ctx := opentracing.StartSpanFromContext(ctx, "removeCategory")
	defer span.Finish()
	span.SetTag("category", name)

	err := s.remove(ctx, userID, expense.UsageCategory, name, func(cur settings.UserSettings) settings.UserSettings {
		next := settings.UserSettings{UserID: userID}
		next.Banks = append(next.Banks, cur.Banks...)
		next.CreditCards = append(next.CreditCards, cur.CreditCards...)
		for _, c := range cur.Categories {
			if c != name {
				next.Categories = append(next.Categories, c)
			}
		}
		return next
	})
	if err != nil {
		ext.Error.Set(span, true)
		return errors.Wrap(err, "remove category")
	}
	return nil
}

// remove runs the guard: the usage check and the settings write happen in
// one storage transaction, so a concurrent expense insert referencing the
// removed item either lands before the check or fails to block it — never
// in between.
func (s *Service) remove(ctx context.Context, userID string, kind expense.UsageKind, ident string, filter func(settings.UserSettings) settings.UserSettings) error {
	cur, err := s.storage.GetSettings(ctx, userID)
	if err != nil {
		return err
	}
	if cur == nil {
		return nil
	}

	next := filter(*cur)
	return s.storage.ReplaceSettingsIfUnused(ctx, next, kind, ident)
}
