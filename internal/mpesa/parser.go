package mpesa

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/NgigiN/finance-tracker/internal/transaction"
	"github.com/shopspring/decimal"
)

// Currency is the currency of every M-PESA amount.
const Currency = "KES"

// ErrAmountTooLarge is returned for amounts that do not fit in int64 cents.
var ErrAmountTooLarge = errors.New("amount too large")

// ParsedTransaction is an outgoing M-PESA confirmation. Money fields are in cents.
type ParsedTransaction struct {
	TransactionID string
	Amount        int64
	Recipient     string
	DateTime      time.Time
	Balance       int64
	Cost          int64
}

// Ksh<number>[,number]* with optional fractional part
const money = `Ksh[\d,]+(?:\.\d+)?`

// More permissive pattern to support variants observed in messages:
// - Optional extra spaces/periods
// - Optional "for account ..." inside recipient text
// - "New M-PESA balance is" or "New business balance is"
// - Optional space before AM/PM, and none before "New ..." (e.g. "PM.New")
// - Extra trailing text after transaction cost
var messagePattern = regexp.MustCompile(`(?i)(\w+)\s+Confirmed\.?\s+(` + money + `)\s+(sent|paid)\s+to\s+(.*?)\s*\.?\s+on\s+(\d{1,2}/\d{1,2}/\d{2})\s+at\s+(\d{1,2}:\d{2}\s?(AM|PM))\.?\s*New\s+(?:M-PESA|business)\s+balance\s+is\s+(` + money + `)\.\s*Transaction\s+cost,?\s*(` + money + `)(?:\.|\b)`)

// IsMessage reports whether line looks like an M-PESA confirmation.
func IsMessage(line string) bool {
	if !strings.Contains(line, "Confirmed.") {
		return false
	}
	return strings.Contains(line, "sent to") || strings.Contains(line, "paid to") || strings.Contains(line, "received")
}

func ParseMPesaMessage(msg string) (*ParsedTransaction, error) {
	matches := messagePattern.FindStringSubmatch(msg)
	if len(matches) < 10 {
		return nil, fmt.Errorf("not a valid outgoing M-PESA message")
	}

	amount, err := parseKsh(matches[2])
	if err != nil {
		return nil, fmt.Errorf("failed to parse amount: %w", err)
	}

	recipient := strings.TrimSpace(strings.TrimSuffix(matches[4], "."))
	// Normalize double spaces
	recipient = strings.Join(strings.Fields(recipient), " ")

	dateTime, err := parseDateTime(matches[5], matches[6])
	if err != nil {
		return nil, fmt.Errorf("failed to parse date/time: %w", err)
	}

	balance, err := parseKsh(matches[8])
	if err != nil {
		return nil, fmt.Errorf("failed to parse balance: %w", err)
	}

	cost, err := parseKsh(matches[9])
	if err != nil {
		return nil, fmt.Errorf("failed to parse cost: %w", err)
	}

	return &ParsedTransaction{
		TransactionID: matches[1],
		Amount:        amount,
		Recipient:     recipient,
		DateTime:      dateTime,
		Balance:       balance,
		Cost:          cost,
	}, nil
}

// parseKsh turns "Ksh1,234.50" into 123450.
func parseKsh(s string) (int64, error) {
	s = strings.ReplaceAll(strings.TrimPrefix(s, "Ksh"), ",", "")
	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, err
	}
	cents := d.Shift(2).Round(0)
	if !cents.BigInt().IsInt64() {
		return 0, ErrAmountTooLarge
	}
	return cents.IntPart(), nil
}

func parseDateTime(date, clock string) (time.Time, error) {
	parts := strings.Split(date, "/")
	day, _ := strconv.Atoi(parts[0])
	month, _ := strconv.Atoi(parts[1])
	yy, _ := strconv.Atoi(parts[2])

	// Ensure time has a single space before AM/PM
	timePart := strings.ToUpper(strings.Join(strings.Fields(clock), ""))
	timePart = strings.TrimSuffix(strings.TrimSuffix(timePart, "AM"), "PM") + " " + timePart[len(timePart)-2:]

	return time.ParseInLocation("2006-01-02 3:04 PM", fmt.Sprintf("%d-%02d-%02d %s", 2000+yy, month, day, timePart), time.Local)
}

// Candidate turns the message into an expense ready for the store.
func (p *ParsedTransaction) Candidate(category, reason string) transaction.Candidate {
	desc := p.TransactionID
	if reason != "" {
		desc = p.TransactionID + ": " + reason
	}
	return transaction.Candidate{
		Name:        p.Recipient,
		Amount:      p.Amount,
		Date:        p.DateTime.Format(transaction.DateLayout),
		Type:        transaction.Expense,
		Category:    category,
		Description: desc,
		SourceRef:   p.TransactionID,
	}
}

// ParseMetadata reads "c:"/"Category:" and "r:"/"Reason:" lines that follow a message.
func ParseMetadata(lines []string) (category, reason string) {
	category = "uncategorized"
	for _, line := range lines {
		line = strings.TrimSpace(line)
		if v, ok := cutAny(line, "Category:", "c:"); ok {
			category = strings.ToLower(v)
		} else if v, ok := cutAny(line, "Reason:", "r:"); ok {
			reason = v
		}
	}
	return category, reason
}

func cutAny(line string, prefixes ...string) (string, bool) {
	for _, p := range prefixes {
		if rest, ok := strings.CutPrefix(line, p); ok {
			return strings.TrimSpace(rest), true
		}
	}
	return "", false
}

// Entry is one message plus its metadata lines.
type Entry struct {
	Message  string
	Metadata []string
}

// Split groups pasted text into messages, each followed by its metadata.
func Split(content string) []Entry {
	var entries []Entry
	for _, line := range strings.Split(content, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if IsMessage(line) {
			entries = append(entries, Entry{Message: line})
			continue
		}
		if len(entries) > 0 && isMetadata(line) {
			last := &entries[len(entries)-1]
			last.Metadata = append(last.Metadata, line)
		}
	}
	return entries
}

func isMetadata(line string) bool {
	_, ok := cutAny(line, "c:", "Category:", "r:", "Reason:")
	return ok
}
