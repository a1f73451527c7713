package models

import "time"

// Transaction types form a closed set; anything else is rejected at the
// API boundary before it can reach aggregation.
const (
	TypeIncome  = "income"
	TypeExpense = "expense"
)

// DefaultCategory is assigned when a transaction is created without one.
const DefaultCategory = "uncategorized"

// Transaction is a single recorded income or expense event. Amount is
// always a non-negative magnitude; the sign is implied by Type. Date is
// the economic event time and drives all period filtering; CreatedAt and
// UpdatedAt are audit-only.
type Transaction struct {
	ID          string    `json:"id"`
	UserID      int64     `json:"-"`
	Amount      Cents     `json:"amount"`
	Type        string    `json:"type"`
	Category    string    `json:"category"`
	Description string    `json:"description,omitempty"`
	Date        time.Time `json:"date"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// ValidType reports whether t is one of the supported transaction types.
func ValidType(t string) bool {
	return t == TypeIncome || t == TypeExpense
}

// Signed returns the amount with the sign implied by the transaction
// type: positive for income, negative for expense.
func (t *Transaction) Signed() Cents {
	if t.Type == TypeExpense {
		return -t.Amount
	}
	return t.Amount
}
