package budget

import "github.com/shopspring/decimal"

// Record is the single monthly spending target of a user. The
// (UserID, Month, Year) triple is unique; setting a budget is an upsert.
type Record struct {
	UserID string          `json:"userId"`
	Month  int             `json:"month"`
	Year   int             `json:"year"`
	Amount decimal.Decimal `json:"amount"`
}

func ValidMonth(m int) bool {
	return m >= 1 && m <= 12
}
