package expense

import (
	"time"

	"github.com/shopspring/decimal"
)

// DateLayout is the wire and storage format for expense dates. Zero-padded
// ISO dates compare lexicographically in chronological order, which the
// range scans rely on.
const DateLayout = "2006-01-02"

const (
	PaymentUPI  = "UPI"
	PaymentCard = "Card"
	PaymentCash = "Cash"

	// legacyPaymentCard is the literal an older client version sent.
	legacyPaymentCard = "Credit Card"
)

const (
	TransactionDebit  = "Debit"
	TransactionCredit = "Credit"
)

// CashSource is the reserved sentinel source for cash payments; it never
// resolves against the user's taxonomy.
const CashSource = "Cash"

// UsageKind selects which soft reference a usage check probes.
type UsageKind string

const (
	UsageSource   UsageKind = "source"
	UsageCategory UsageKind = "category"
)

type Record struct {
	ID              int64           `json:"id"`
	UserID          string          `json:"userId"`
	Date            string          `json:"date"`
	CategoryID      string          `json:"categoryId"`
	Description     string          `json:"description"`
	Amount          decimal.Decimal `json:"amount"`
	PaymentType     string          `json:"paymentType"`
	SourceID        string          `json:"sourceId"`
	TransactionType string          `json:"transactionType"`
}

// Patch carries the mutable fields of a partial update. Nil means
// "leave unchanged".
type Patch struct {
	Date            *string          `json:"date"`
	CategoryID      *string          `json:"categoryId"`
	Description     *string          `json:"description"`
	Amount          *decimal.Decimal `json:"amount"`
	PaymentType     *string          `json:"paymentType"`
	SourceID        *string          `json:"sourceId"`
	TransactionType *string          `json:"transactionType"`
}

func (p Patch) Empty() bool {
	return p.Date == nil && p.CategoryID == nil && p.Description == nil &&
		p.Amount == nil && p.PaymentType == nil && p.SourceID == nil &&
		p.TransactionType == nil
}

// NormalizePaymentType folds the legacy "Credit Card" literal into Card.
func NormalizePaymentType(pt string) string {
	if pt == legacyPaymentCard {
		return PaymentCard
	}
	return pt
}

func ValidPaymentType(pt string) bool {
	switch pt {
	case PaymentUPI, PaymentCard, PaymentCash:
		return true
	}
	return false
}

func ValidTransactionType(tt string) bool {
	return tt == TransactionDebit || tt == TransactionCredit
}

func ValidDate(s string) bool {
	t, err := time.Parse(DateLayout, s)
	return err == nil && t.Format(DateLayout) == s
}

func ValidUsageKind(k UsageKind) bool {
	return k == UsageSource || k == UsageCategory
}
