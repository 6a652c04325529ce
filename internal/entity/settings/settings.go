package settings

// Card types a user can register under a bank.
const (
	CardTypeCredit = "Credit"
	CardTypeDebit  = "Debit"
)

type CreditCard struct {
	Name string `json:"name"`
	Bank string `json:"bank"`
	Type string `json:"type"`
}

// UserSettings is the per-user taxonomy every expense is classified against.
// The three collections are always replaced whole; there is no merge.
type UserSettings struct {
	UserID      string       `json:"userId"`
	Banks       []string     `json:"banks"`
	CreditCards []CreditCard `json:"creditCards"`
	Categories  []string     `json:"categories"`
}

func (s UserSettings) HasBank(name string) bool {
	for _, b := range s.Banks {
		if b == name {
			return true
		}
	}
	return false
}

func (s UserSettings) HasCategory(name string) bool {
	for _, c := range s.Categories {
		if c == name {
			return true
		}
	}
	return false
}

func (s UserSettings) CardByName(name string) (CreditCard, bool) {
	for _, c := range s.CreditCards {
		if c.Name == name {
			return c, true
		}
	}
	return CreditCard{}, false
}

// Clone returns a deep copy so callers can mutate collections freely.
func (s UserSettings) Clone() UserSettings {
	res := UserSettings{UserID: s.UserID}
	res.Banks = append([]string(nil), s.Banks...)
	res.CreditCards = append([]CreditCard(nil), s.CreditCards...)
	res.Categories = append([]string(nil), s.Categories...)
	return res
}
