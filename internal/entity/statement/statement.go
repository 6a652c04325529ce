package statement

import (
	"time"

	"github.com/shopspring/decimal"
)

// CategoryAmount is one breakdown row, sorted by amount descending.
type CategoryAmount struct {
	Name   string          `json:"name"`
	Amount decimal.Decimal `json:"amount"`
}

// Summary aggregates one calendar month of a user's ledger, the figures the
// dashboard renders: debit/credit totals, per-category and per-payment
// breakdowns and the spend-vs-budget comparison.
type Summary struct {
	Month         int              `json:"month"`
	Year          int              `json:"year"`
	TotalDebit    decimal.Decimal  `json:"totalDebit"`
	TotalCredit   decimal.Decimal  `json:"totalCredit"`
	Net           decimal.Decimal  `json:"net"`
	ByCategory    []CategoryAmount `json:"byCategory"`
	ByPaymentType []CategoryAmount `json:"byPaymentType"`
	Budget        *decimal.Decimal `json:"budget,omitempty"`
	TotalSpent    decimal.Decimal  `json:"totalSpent"`
}

// Line is one ledger row of a monthly statement.
type Line struct {
	Date            string          `json:"date"`
	Description     string          `json:"description"`
	CategoryID      string          `json:"categoryId"`
	PaymentType     string          `json:"paymentType"`
	TransactionType string          `json:"transactionType"`
	Amount          decimal.Decimal `json:"amount"`
}

// Statement is the exportable monthly account statement. Rendering it into
// a document is the presentation layer's concern.
type Statement struct {
	UserID      string    `json:"userId"`
	Month       int       `json:"month"`
	Year        int       `json:"year"`
	GeneratedAt time.Time `json:"generatedAt"`
	Summary     Summary   `json:"summary"`
	Lines       []Line    `json:"lines"`
}
