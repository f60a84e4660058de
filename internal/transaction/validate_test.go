package transaction

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

var now = time.Date(2026, 10, 19, 9, 30, 0, 0, time.Local)

func valid() Candidate {
	return Candidate{
		Name:     "Coffee",
		Amount:   50000,
		Date:     "2026-10-19",
		Type:     Expense,
		Category: "food",
	}
}

func rules(vs []Violation) []Rule {
	var out []Rule
	for _, v := range vs {
		out = append(out, v.Rule)
	}
	return out
}

func TestValidateAt(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(c *Candidate)
		want   []Rule
	}{
		{"valid", func(c *Candidate) {}, nil},
		{"valid income with description", func(c *Candidate) { c.Type = Income; c.Description = "bonus" }, nil},
		{"blank name", func(c *Candidate) { c.Name = "   " }, []Rule{RuleName}},
		{"zero amount", func(c *Candidate) { c.Amount = 0 }, []Rule{RuleAmount}},
		{"negative amount", func(c *Candidate) { c.Amount = -5 }, []Rule{RuleAmount}},
		{"missing name and zero amount", func(c *Candidate) { c.Name = ""; c.Amount = 0 }, []Rule{RuleName, RuleAmount}},
		{"missing date", func(c *Candidate) { c.Date = "" }, []Rule{RuleDate}},
		{"garbage date", func(c *Candidate) { c.Date = "yesterday" }, []Rule{RuleDate}},
		{"impossible date", func(c *Candidate) { c.Date = "2026-02-30" }, []Rule{RuleDate}},
		{"tomorrow", func(c *Candidate) { c.Date = "2026-10-20" }, []Rule{RuleDate}},
		{"unknown type", func(c *Candidate) { c.Type = "transfer" }, []Rule{RuleType}},
		{"empty type", func(c *Candidate) { c.Type = "" }, []Rule{RuleType}},
		{"missing category", func(c *Candidate) { c.Category = "" }, []Rule{RuleCategory}},
		{
			"everything wrong",
			func(c *Candidate) { *c = Candidate{} },
			[]Rule{RuleName, RuleAmount, RuleDate, RuleType, RuleCategory},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := valid()
			tt.mutate(&c)
			assert.Equal(t, tt.want, rules(ValidateAt(c, now)))
		})
	}
}

func TestValidateDateMessages(t *testing.T) {
	tests := []struct {
		date string
		want string
	}{
		{"", MsgDateRequired},
		{"19/10/2026", MsgDateInvalid},
		{"2027-10-19", MsgDateInFuture},
	}
	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			c := valid()
			c.Date = tt.date
			vs := ValidateAt(c, now)
			if assert.Len(t, vs, 1) {
				assert.Equal(t, tt.want, vs[0].Message)
			}
		})
	}
}

func TestValidateToday(t *testing.T) {
	c := valid()
	c.Date = Today()
	assert.Empty(t, Validate(c))

	c.Date = time.Now().AddDate(1, 0, 0).Format(DateLayout)
	assert.Equal(t, []Rule{RuleDate}, rules(Validate(c)))
}

func TestValidateEndOfDayBoundary(t *testing.T) {
	late := time.Date(2026, 10, 19, 23, 59, 59, 0, time.Local)
	c := valid()
	c.Date = late.Format(time.RFC3339)
	assert.Empty(t, ValidateAt(c, now))

	c.Date = late.Add(2 * time.Second).Format(time.RFC3339)
	assert.Equal(t, []Rule{RuleDate}, rules(ValidateAt(c, now)))
}

func TestRuleString(t *testing.T) {
	assert.Equal(t, "amount", RuleAmount.String())
	assert.Equal(t, "unknown", Rule(0).String())
}
