package storage

import (
	"time"

	"github.com/NgigiN/finance-tracker/internal/transaction"
)

// Transaction is the row stored in the transactions table.
type Transaction struct {
	ID          int64     `gorm:"primaryKey;autoIncrement"`
	Name        string    `gorm:"not null"`
	Amount      int64     `gorm:"not null"`
	Date        string    `gorm:"not null;index:idx_transactions_date"`
	Type        string    `gorm:"not null;index:idx_transactions_type"`
	Category    string    `gorm:"not null;index:idx_transactions_category"`
	Description string    `gorm:"not null"`
	SourceRef   *string   `gorm:"uniqueIndex:idx_transactions_source_ref"`
	CreatedAt   time.Time `gorm:"not null;autoCreateTime:false"`
	UpdatedAt   time.Time `gorm:"not null;autoUpdateTime:false"`
}

func (Transaction) TableName() string { return "transactions" }

func newRow(c transaction.Candidate, now time.Time) Transaction {
	var ref *string
	if c.SourceRef != "" {
		ref = &c.SourceRef
	}
	return Transaction{
		Name:        c.Name,
		Amount:      c.Amount,
		Date:        c.Date,
		Type:        string(c.Type),
		Category:    c.Category,
		Description: c.Description,
		SourceRef:   ref,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

func (r Transaction) toDomain() transaction.Transaction {
	var ref string
	if r.SourceRef != nil {
		ref = *r.SourceRef
	}
	return transaction.Transaction{
		ID:          r.ID,
		Name:        r.Name,
		Amount:      r.Amount,
		Date:        r.Date,
		Type:        transaction.Type(r.Type),
		Category:    r.Category,
		Description: r.Description,
		SourceRef:   ref,
		CreatedAt:   r.CreatedAt,
		UpdatedAt:   r.UpdatedAt,
	}
}

func toDomain(rows []Transaction) []transaction.Transaction {
	out := make([]transaction.Transaction, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.toDomain())
	}
	return out
}

// schemaVersion holds the single stored schema version marker.
type schemaVersion struct {
	ID        int `gorm:"primaryKey;autoIncrement:false"`
	Version   int `gorm:"not null"`
	UpdatedAt time.Time
}

func (schemaVersion) TableName() string { return "schema_versions" }

const schemaVersionRowID = 1
