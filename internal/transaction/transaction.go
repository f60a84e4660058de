package transaction

import (
	"time"
)

// Type is the direction of a transaction.
type Type string

const (
	Income  Type = "income"
	Expense Type = "expense"
)

// Valid reports whether t is one of the known transaction types.
func (t Type) Valid() bool {
	return t == Income || t == Expense
}

// DateLayout is the calendar date form stored on every transaction.
const DateLayout = "2006-01-02"

// Transaction represents a stored income or expense record.
type Transaction struct {
	ID          int64
	Name        string
	Amount      int64 // smallest currency unit
	Date        string
	Type        Type
	Category    string
	Description string
	SourceRef   string // external id of an imported record, e.g. an M-PESA code
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Candidate holds the caller supplied fields of a new transaction.
type Candidate struct {
	Name        string
	Amount      int64
	Date        string
	Type        Type
	Category    string
	Description string
	SourceRef   string
}

// Patch lists the fields an update may change. A nil field is left as is.
type Patch struct {
	Name        *string
	Amount      *int64
	Date        *string
	Type        *Type
	Category    *string
	Description *string
}

// Empty reports whether the patch changes nothing.
func (p Patch) Empty() bool {
	return p.Name == nil && p.Amount == nil && p.Date == nil &&
		p.Type == nil && p.Category == nil && p.Description == nil
}

// Candidate returns the caller owned fields of t.
func (t Transaction) Candidate() Candidate {
	return Candidate{
		Name:        t.Name,
		Amount:      t.Amount,
		Date:        t.Date,
		Type:        t.Type,
		Category:    t.Category,
		Description: t.Description,
		SourceRef:   t.SourceRef,
	}
}

// Apply merges p over t. Supplied fields replace, the rest are kept.
// ID, SourceRef and timestamps are never touched.
func (t Transaction) Apply(p Patch) Transaction {
	if p.Name != nil {
		t.Name = *p.Name
	}
	if p.Amount != nil {
		t.Amount = *p.Amount
	}
	if p.Date != nil {
		t.Date = *p.Date
	}
	if p.Type != nil {
		t.Type = *p.Type
	}
	if p.Category != nil {
		t.Category = *p.Category
	}
	if p.Description != nil {
		t.Description = *p.Description
	}
	return t
}
