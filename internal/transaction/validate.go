package transaction

import (
	"strings"
	"time"
)

// Rule identifies one business rule checked by Validate.
type Rule int

const (
	RuleName Rule = iota + 1
	RuleAmount
	RuleDate
	RuleType
	RuleCategory
)

func (r Rule) String() string {
	switch r {
	case RuleName:
		return "name"
	case RuleAmount:
		return "amount"
	case RuleDate:
		return "date"
	case RuleType:
		return "type"
	case RuleCategory:
		return "category"
	}
	return "unknown"
}

// Violation is a single broken rule.
type Violation struct {
	Rule    Rule
	Message string
}

func (v Violation) String() string {
	return v.Message
}

const (
	MsgNameRequired     = "transaction name is required"
	MsgAmountPositive   = "amount must be greater than zero"
	MsgDateRequired     = "date is required"
	MsgDateInvalid      = "date is not valid"
	MsgDateInFuture     = "transaction date cannot be in the future"
	MsgTypeInvalid      = "transaction type is not valid"
	MsgCategoryRequired = "category is required"
)

// Validate checks c against every rule using the current local time.
// An empty result means c is valid.
func Validate(c Candidate) []Violation {
	return ValidateAt(c, time.Now())
}

// ValidateAt is Validate with an explicit clock. Violations come back in
// rule order: name, amount, date, type, category.
func ValidateAt(c Candidate, now time.Time) []Violation {
	var violations []Violation

	if strings.TrimSpace(c.Name) == "" {
		violations = append(violations, Violation{RuleName, MsgNameRequired})
	}

	if c.Amount <= 0 {
		violations = append(violations, Violation{RuleAmount, MsgAmountPositive})
	}

	if msg := checkDate(c.Date, now); msg != "" {
		violations = append(violations, Violation{RuleDate, msg})
	}

	if !c.Type.Valid() {
		violations = append(violations, Violation{RuleType, MsgTypeInvalid})
	}

	if strings.TrimSpace(c.Category) == "" {
		violations = append(violations, Violation{RuleCategory, MsgCategoryRequired})
	}

	return violations
}

func checkDate(value string, now time.Time) string {
	if strings.TrimSpace(value) == "" {
		return MsgDateRequired
	}
	date, err := ParseDate(value, now.Location())
	if err != nil {
		return MsgDateInvalid
	}
	if date.After(EndOfDay(now)) {
		return MsgDateInFuture
	}
	return ""
}

// ParseDate accepts a calendar date (2006-01-02) or an RFC 3339 timestamp.
// Calendar dates are interpreted in loc.
func ParseDate(value string, loc *time.Location) (time.Time, error) {
	value = strings.TrimSpace(value)
	if t, err := time.ParseInLocation(DateLayout, value, loc); err == nil {
		return t, nil
	}
	return time.Parse(time.RFC3339Nano, value)
}

// EndOfDay returns the last instant of the day containing t, in t's location.
func EndOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 23, 59, 59, int(time.Second-time.Nanosecond), t.Location())
}

// Today formats the current local date in DateLayout.
func Today() string {
	return time.Now().Format(DateLayout)
}
