package domain

import (
	"encoding/json"
	"fmt"
	"time"
)

type TransactionType string

const (
	TransactionTypeIncome  TransactionType = "income"
	TransactionTypeExpense TransactionType = "expense"
)

// Valid reports whether t is one of the two known transaction types.
func (t TransactionType) Valid() bool {
	switch t {
	case TransactionTypeIncome, TransactionTypeExpense:
		return true
	}
	return false
}

// ParseTransactionType converts a wire value into a TransactionType.
func ParseTransactionType(s string) (TransactionType, error) {
	t := TransactionType(s)
	if !t.Valid() {
		return "", fmt.Errorf("unknown transaction type %q", s)
	}
	return t, nil
}

func (t *TransactionType) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("transaction type must be a string")
	}
	parsed, err := ParseTransactionType(s)
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

// Transaction is a single income or expense entry owned by exactly one user.
// Amount sign is independent of Type.
type Transaction struct {
	ID          int64
	UserID      int64
	Amount      float64
	Category    string
	Type        TransactionType
	Description *string
	Date        time.Time
}

// TransactionPatch carries the fields of a partial update. Only fields
// whose Set flag is true are applied.
type TransactionPatch struct {
	Amount      Optional[float64]         `json:"amount"`
	Category    Optional[string]          `json:"category"`
	Type        Optional[TransactionType] `json:"type"`
	Description Optional[*string]         `json:"description"`
	Date        Optional[time.Time]       `json:"date"`
}

// Empty reports whether the patch changes nothing.
func (p TransactionPatch) Empty() bool {
	return !p.Amount.Set && !p.Category.Set && !p.Type.Set && !p.Description.Set && !p.Date.Set
}

// Apply writes the present fields of p onto t.
func (p TransactionPatch) Apply(t *Transaction) {
	if p.Amount.Set {
		t.Amount = p.Amount.Value
	}
	if p.Category.Set {
		t.Category = p.Category.Value
	}
	if p.Type.Set {
		t.Type = p.Type.Value
	}
	if p.Description.Set {
		t.Description = p.Description.Value
	}
	if p.Date.Set {
		t.Date = p.Date.Value
	}
}

// MonthlyTotal is one row of the per-month analytics.
type MonthlyTotal struct {
	Month int
	Type  TransactionType
	Total float64
}

// CategoryTotal is one row of the per-category analytics.
type CategoryTotal struct {
	Category string
	Type     TransactionType
	Total    float64
}
