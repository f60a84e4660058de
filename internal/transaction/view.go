package transaction

import (
	"sort"
	"strings"
)

// Tab selects which transactions a listing shows.
type Tab string

const (
	TabAll      Tab = "all"
	TabIncomes  Tab = "incomes"
	TabExpenses Tab = "expenses"
)

// ParseTab maps user input to a Tab, defaulting to TabAll.
func ParseTab(s string) Tab {
	switch Tab(strings.ToLower(strings.TrimSpace(s))) {
	case TabIncomes, "income":
		return TabIncomes
	case TabExpenses, "expense":
		return TabExpenses
	}
	return TabAll
}

// Filter returns the transactions visible under tab. The input is not modified.
func Filter(txs []Transaction, tab Tab) []Transaction {
	var want Type
	switch tab {
	case TabIncomes:
		want = Income
	case TabExpenses:
		want = Expense
	default:
		return append([]Transaction(nil), txs...)
	}

	out := make([]Transaction, 0, len(txs))
	for _, tx := range txs {
		if tx.Type == want {
			out = append(out, tx)
		}
	}
	return out
}

// SortNewestFirst returns a copy of txs ordered by date descending.
// Transactions on the same date are ordered by ID descending.
func SortNewestFirst(txs []Transaction) []Transaction {
	out := append([]Transaction(nil), txs...)
	sort.SliceStable(out, func(i, j int) bool {
		di, dj := sortKey(out[i].Date), sortKey(out[j].Date)
		if di != dj {
			return di > dj
		}
		return out[i].ID > out[j].ID
	})
	return out
}

func sortKey(date string) string {
	if len(date) >= len(DateLayout) {
		return date[:len(DateLayout)]
	}
	return date
}

// Totals is the income/expense summary of a set of transactions.
type Totals struct {
	Incomes  int64
	Expenses int64
	Balance  int64
}

// Summarize adds up incomes and expenses. Balance may be negative.
func Summarize(txs []Transaction) Totals {
	var t Totals
	for _, tx := range txs {
		if tx.Type == Expense {
			t.Expenses += tx.Amount
		} else {
			t.Incomes += tx.Amount
		}
	}
	t.Balance = t.Incomes - t.Expenses
	return t
}
