package transaction

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

var sample = []Transaction{
	{ID: 1, Name: "Salary", Amount: 1000, Date: "2026-10-01", Type: Income, Category: "work"},
	{ID: 2, Name: "Rent", Amount: 700, Date: "2026-10-02", Type: Expense, Category: "home"},
	{ID: 3, Name: "Coffee", Amount: 50, Date: "2026-10-02", Type: Expense, Category: "food"},
	{ID: 4, Name: "Gift", Amount: 200, Date: "2026-09-30", Type: Income, Category: "other"},
}

func ids(txs []Transaction) []int64 {
	out := []int64{}
	for _, tx := range txs {
		out = append(out, tx.ID)
	}
	return out
}

func TestFilter(t *testing.T) {
	assert.Equal(t, []int64{1, 2, 3, 4}, ids(Filter(sample, TabAll)))
	assert.Equal(t, []int64{1, 4}, ids(Filter(sample, TabIncomes)))
	assert.Equal(t, []int64{2, 3}, ids(Filter(sample, TabExpenses)))
	assert.Equal(t, []int64{}, ids(Filter(nil, TabIncomes)))
}

func TestParseTab(t *testing.T) {
	assert.Equal(t, TabIncomes, ParseTab("Incomes"))
	assert.Equal(t, TabExpenses, ParseTab("expense"))
	assert.Equal(t, TabAll, ParseTab("whatever"))
}

func TestSortNewestFirst(t *testing.T) {
	sorted := SortNewestFirst(sample)
	assert.Equal(t, []int64{3, 2, 1, 4}, ids(sorted))
	assert.Equal(t, int64(1), sample[0].ID, "input must not be reordered")
}

func TestSortMixedDateForms(t *testing.T) {
	txs := []Transaction{
		{ID: 1, Date: "2026-10-02"},
		{ID: 2, Date: "2026-10-03T08:00:00Z"},
		{ID: 3, Date: "2026-10-01"},
	}
	assert.Equal(t, []int64{2, 1, 3}, ids(SortNewestFirst(txs)))
}

func TestSummarize(t *testing.T) {
	assert.Equal(t, Totals{Incomes: 1200, Expenses: 750, Balance: 450}, Summarize(sample))
	assert.Equal(t, Totals{Expenses: 750, Balance: -750}, Summarize(Filter(sample, TabExpenses)))
	assert.Equal(t, Totals{}, Summarize(nil))
}
