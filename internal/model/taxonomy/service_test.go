package taxonomy

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/spendfree/spendfree/internal/entity/expense"
	"github.com/spendfree/spendfree/internal/entity/settings"
	"github.com/spendfree/spendfree/internal/model/customerr"
	"github.com/spendfree/spendfree/internal/storage"
)

func seedSettings(t *testing.T, store *storage.InMemStorage) settings.UserSettings {
	t.Helper()
	rec := settings.UserSettings{
		UserID: "user-1",
		Banks:  []string{"HDFC", "XYZ"},
		CreditCards: []settings.CreditCard{
			{Name: "XYZ Platinum", Bank: "XYZ", Type: settings.CardTypeCredit},
			{Name: "HDFC Millennia", Bank: "HDFC", Type: settings.CardTypeDebit},
		},
		Categories: []string{"Food", "Travel"},
	}
	assert.NoError(t, store.SaveSettings(context.Background(), rec))
	return rec
}

func seedExpense(t *testing.T, store *storage.InMemStorage, categoryID, sourceID string) {
	t.Helper()
	_, err := store.CreateExpense(context.Background(), expense.Record{
		UserID:          "user-1",
		Date:            "2026-08-01",
		CategoryID:      categoryID,
		Description:     "seed",
		Amount:          decimal.NewFromInt(100),
		PaymentType:     expense.PaymentUPI,
		SourceID:        sourceID,
		TransactionType: expense.TransactionDebit,
	})
	assert.NoError(t, err)
}

func Test_OnReplaceTwice_ShouldKeepSettingsUnchanged(t *testing.T) {
	ctx := context.Background()
	store := storage.NewInMemStorage()
	svc := NewService(store)

	banks := []string{"HDFC"}
	cards := []settings.CreditCard{{Name: "HDFC Millennia", Bank: "HDFC", Type: settings.CardTypeDebit}}
	categories := []string{"Food"}

	assert.NoError(t, svc.Replace(ctx, "user-1", banks, cards, categories))
	first, err := svc.Get(ctx, "user-1")
	assert.NoError(t, err)

	assert.NoError(t, svc.Replace(ctx, "user-1", banks, cards, categories))
	second, err := svc.Get(ctx, "user-1")
	assert.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, banks, second.Banks)
}

func Test_OnGetAbsentSettings_ShouldReturnNil(t *testing.T) {
	svc := NewService(storage.NewInMemStorage())

	res, err := svc.Get(context.Background(), "nobody")

	assert.NoError(t, err)
	assert.Nil(t, res)
}

func Test_OnRemoveUsedCategory_ShouldRejectAndKeepSettings(t *testing.T) {
	ctx := context.Background()
	store := storage.NewInMemStorage()
	svc := NewService(store)

	before := seedSettings(t, store)
	seedExpense(t, store, "Food", "HDFC")

	err := svc.RemoveCategory(ctx, "user-1", "Food")

	var conflict *customerr.ConflictError
	assert.ErrorAs(t, err, &conflict)
	assert.Equal(t, "Food", conflict.Item)

	after, err := svc.Get(ctx, "user-1")
	assert.NoError(t, err)
	assert.Equal(t, before.Categories, after.Categories)
}

func Test_OnRemoveUnusedBank_ShouldSucceed(t *testing.T) {
	ctx := context.Background()
	store := storage.NewInMemStorage()
	svc := NewService(store)

	seedSettings(t, store)

	assert.NoError(t, svc.RemoveBank(ctx, "user-1", "HDFC"))

	after, err := svc.Get(ctx, "user-1")
	assert.NoError(t, err)
	assert.Equal(t, []string{"XYZ"}, after.Banks)
}

func Test_OnRemoveBank_ShouldCascadeItsCards(t *testing.T) {
	ctx := context.Background()
	store := storage.NewInMemStorage()
	svc := NewService(store)

	seedSettings(t, store)

	assert.NoError(t, svc.RemoveBank(ctx, "user-1", "XYZ"))

	after, err := svc.Get(ctx, "user-1")
	assert.NoError(t, err)
	assert.Equal(t, []string{"HDFC"}, after.Banks)
	assert.Len(t, after.CreditCards, 1)
	assert.Equal(t, "HDFC Millennia", after.CreditCards[0].Name)
}

func Test_OnRemoveBank_ShouldNotUsageCheckCascadedCards(t *testing.T) {
	ctx := context.Background()
	store := storage.NewInMemStorage()
	svc := NewService(store)

	seedSettings(t, store)
	// The card is referenced, the bank itself is not. Only the bank is
	// usage-checked, so the removal goes through and takes the card along.
	seedExpense(t, store, "Travel", "XYZ Platinum")

	assert.NoError(t, svc.RemoveBank(ctx, "user-1", "XYZ"))

	after, err := svc.Get(ctx, "user-1")
	assert.NoError(t, err)
	assert.Equal(t, []string{"HDFC"}, after.Banks)
	assert.Len(t, after.CreditCards, 1)
}

func Test_OnRemoveUsedCard_ShouldRejectAsSourceConflict(t *testing.T) {
	ctx := context.Background()
	store := storage.NewInMemStorage()
	svc := NewService(store)

	seedSettings(t, store)
	seedExpense(t, store, "Food", "XYZ Platinum")

	err := svc.RemoveCard(ctx, "user-1", "XYZ Platinum")

	var conflict *customerr.ConflictError
	assert.ErrorAs(t, err, &conflict)
	assert.Equal(t, string(expense.UsageSource), conflict.Kind)
}

func Test_OnRemoveForUnknownUser_ShouldBeNoOp(t *testing.T) {
	svc := NewService(storage.NewInMemStorage())

	assert.NoError(t, svc.RemoveBank(context.Background(), "nobody", "HDFC"))
}

func Test_OnCheckUsage_ShouldSeeOnlyOwnExpenses(t *testing.T) {
	ctx := context.Background()
	store := storage.NewInMemStorage()
	svc := NewService(store)

	seedExpense(t, store, "Food", "HDFC")

	used, err := svc.CheckUsage(ctx, "user-1", expense.UsageCategory, "Food")
	assert.NoError(t, err)
	assert.True(t, used)

	used, err = svc.CheckUsage(ctx, "user-2", expense.UsageCategory, "Food")
	assert.NoError(t, err)
	assert.False(t, used)
}
