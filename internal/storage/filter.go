package storage

import (
	"time"

	"github.com/NgigiN/finance-tracker/internal/transaction"
	"gorm.io/gorm"
)

// Filter narrows Find to records matching every non-zero field.
// From and To are inclusive calendar dates (2006-01-02).
type Filter struct {
	Type     transaction.Type
	Category string
	From     string
	To       string
}

// Match reports whether tx passes the filter. Find returns exactly the
// records for which Match is true.
func (f Filter) Match(tx transaction.Transaction) bool {
	if f.Type != "" && tx.Type != f.Type {
		return false
	}
	if f.Category != "" && tx.Category != f.Category {
		return false
	}
	if f.From != "" && tx.Date < f.From {
		return false
	}
	if f.To != "" {
		if next, ok := dayAfter(f.To); ok && tx.Date >= next {
			return false
		}
	}
	return true
}

// scope applies the filter as SQL conditions on the indexed columns. The
// upper bound is exclusive on the following day so timestamp dates on the
// last day are kept.
func (f Filter) scope(db *gorm.DB) *gorm.DB {
	if f.Type != "" {
		db = db.Where("type = ?", string(f.Type))
	}
	if f.Category != "" {
		db = db.Where("category = ?", f.Category)
	}
	if f.From != "" {
		db = db.Where("date >= ?", f.From)
	}
	if f.To != "" {
		if next, ok := dayAfter(f.To); ok {
			db = db.Where("date < ?", next)
		}
	}
	return db
}

func dayAfter(date string) (string, bool) {
	t, err := time.Parse(transaction.DateLayout, date)
	if err != nil {
		return "", false
	}
	return t.AddDate(0, 0, 1).Format(transaction.DateLayout), true
}
