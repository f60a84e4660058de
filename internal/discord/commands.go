package discord

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/NgigiN/finance-tracker/internal/mpesa"
	"github.com/NgigiN/finance-tracker/internal/storage"
	"github.com/NgigiN/finance-tracker/internal/transaction"
)

const listLimit = 10

const usage = "Commands:\n" +
	"!add <income|expense> <amount> <category> <name...>\n" +
	"!list [all|incomes|expenses]\n" +
	"!edit <id> name=\"...\" amount=... date=YYYY-MM-DD type=... category=... description=\"...\"\n" +
	"!delete <id>\n" +
	"!summary [category]\n" +
	"Or paste one or more M-PESA messages, each optionally followed by c: <category> and r: <reason>."

// Handle runs one chat message and returns the reply, or "" for no reply.
func (b *Bot) Handle(ctx context.Context, content string) string {
	content = strings.TrimSpace(content)
	if content == "" {
		return ""
	}

	if strings.HasPrefix(content, "!") {
		args := strings.Fields(content)
		switch strings.ToLower(args[0]) {
		case "!add":
			return b.handleAdd(ctx, args[1:])
		case "!list":
			return b.handleList(ctx, args[1:])
		case "!edit":
			return b.handleEdit(ctx, content)
		case "!delete":
			return b.handleDelete(ctx, args[1:])
		case "!summary":
			return b.handleSummaryCommand(ctx, args[1:])
		case "!help":
			return usage
		}
		return "Unknown command.\n" + usage
	}

	entries := mpesa.Split(content)
	switch {
	case len(entries) == 0:
		return "No M-PESA message found. Type !help for commands."
	case b.currency != mpesa.Currency:
		return fmt.Sprintf("M-PESA import needs CURRENCY=%s, this bot tracks %s.", mpesa.Currency, b.currency)
	case len(entries) == 1:
		return b.handleMPesa(ctx, entries[0])
	default:
		return b.handleBatch(ctx, entries)
	}
}

func (b *Bot) handleMPesa(ctx context.Context, e mpesa.Entry) string {
	parsed, err := mpesa.ParseMPesaMessage(e.Message)
	if err != nil {
		return fmt.Sprintf("Invalid Mpesa Message: %v", err)
	}
	category, reason := mpesa.ParseMetadata(e.Metadata)

	id, err := b.store.Save(ctx, parsed.Candidate(category, reason))
	var dup *storage.DuplicateError
	if errors.As(err, &dup) {
		return fmt.Sprintf("Already tracked %s as #%d", dup.Ref, dup.ID)
	}
	if err != nil {
		return failure("Failed to save transaction", err)
	}
	return fmt.Sprintf("Tracked %s (#%d): %s to %s in %s", parsed.TransactionID, id, b.format(parsed.Amount), parsed.Recipient, category)
}

func (b *Bot) handleBatch(ctx context.Context, entries []mpesa.Entry) string {
	var successCount int
	var errs []string

	for i, e := range entries {
		parsed, err := mpesa.ParseMPesaMessage(e.Message)
		if err != nil {
			errs = append(errs, fmt.Sprintf("Transaction %d: %v", i+1, err))
			continue
		}
		category, reason := mpesa.ParseMetadata(e.Metadata)
		if _, err := b.store.Save(ctx, parsed.Candidate(category, reason)); err != nil {
			errs = append(errs, fmt.Sprintf("Transaction %d: %v", i+1, err))
			continue
		}
		successCount++
	}

	var sb strings.Builder
	sb.WriteString("**Batch Processing Complete**\n")
	fmt.Fprintf(&sb, "Successfully processed: %d transactions\n", successCount)
	if len(errs) > 0 {
		fmt.Fprintf(&sb, "Failed: %d transactions\n", len(errs))
		sb.WriteString("**Errors:**\n")
		for _, e := range errs {
			fmt.Fprintf(&sb, "• %s\n", e)
		}
	}
	return sb.String()
}

func (b *Bot) handleAdd(ctx context.Context, args []string) string {
	if len(args) < 4 {
		return "Usage: !add <income|expense> <amount> <category> <name...>"
	}
	amount, err := b.parseAmount(args[1])
	if err != nil {
		return fmt.Sprintf("Invalid amount %q: %v", args[1], err)
	}

	c := transaction.Candidate{
		Type:     transaction.Type(strings.ToLower(args[0])),
		Amount:   amount,
		Category: strings.ToLower(args[2]),
		Name:     strings.Join(args[3:], " "),
		Date:     transaction.Today(),
	}
	id, err := b.store.Save(ctx, c)
	if err != nil {
		return failure("Failed to save transaction", err)
	}
	return fmt.Sprintf("Saved #%d: %s %s (%s)", id, c.Name, b.format(c.Amount), c.Category)
}

func (b *Bot) handleList(ctx context.Context, args []string) string {
	tab := transaction.TabAll
	if len(args) > 0 {
		tab = transaction.ParseTab(args[0])
	}

	all, err := b.store.GetAll(ctx)
	if err != nil {
		return failure("Failed to load transactions", err)
	}
	txs := transaction.SortNewestFirst(transaction.Filter(all, tab))
	if len(txs) == 0 {
		switch tab {
		case transaction.TabIncomes:
			return "No incomes recorded yet."
		case transaction.TabExpenses:
			return "No expenses recorded yet."
		}
		return "No transactions recorded yet."
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "**Transactions (%s)**\n\n", tab)
	b.writeLines(&sb, txs)
	totals := transaction.Summarize(all)
	fmt.Fprintf(&sb, "\nIncomes: %s | Expenses: %s | Balance: %s",
		b.format(totals.Incomes), b.format(totals.Expenses), b.format(totals.Balance))
	return sb.String()
}

var assignment = regexp.MustCompile(`(\w+)=("([^"]*)"|\S+)`)

func (b *Bot) handleEdit(ctx context.Context, content string) string {
	args := strings.Fields(content)
	if len(args) < 3 {
		return "Usage: !edit <id> key=value ..."
	}
	id, err := strconv.ParseInt(args[1], 10, 64)
	if err != nil {
		return fmt.Sprintf("Invalid id %q", args[1])
	}

	p, err := b.parsePatch(assignment.FindAllStringSubmatch(content, -1))
	if err != nil {
		return err.Error()
	}
	if p.Empty() {
		return "Nothing to change. Usage: !edit <id> key=value ..."
	}

	if err := b.store.Update(ctx, id, p); err != nil {
		return failure("Failed to update transaction", err)
	}
	return fmt.Sprintf("Updated #%d", id)
}

func (b *Bot) parsePatch(matches [][]string) (transaction.Patch, error) {
	var p transaction.Patch
	for _, m := range matches {
		key, value := strings.ToLower(m[1]), m[2]
		if strings.HasPrefix(value, `"`) {
			value = m[3]
		}
		switch key {
		case "name":
			p.Name = &value
		case "amount":
			amount, err := b.parseAmount(value)
			if err != nil {
				return p, fmt.Errorf("Invalid amount %q: %v", value, err)
			}
			p.Amount = &amount
		case "date":
			p.Date = &value
		case "type":
			typ := transaction.Type(strings.ToLower(value))
			p.Type = &typ
		case "category":
			category := strings.ToLower(value)
			p.Category = &category
		case "description":
			p.Description = &value
		default:
			return p, fmt.Errorf("Unknown field %q", key)
		}
	}
	return p, nil
}

func (b *Bot) handleDelete(ctx context.Context, args []string) string {
	if len(args) != 1 {
		return "Usage: !delete <id>"
	}
	id, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		return fmt.Sprintf("Invalid id %q", args[0])
	}
	if err := b.store.Delete(ctx, id); err != nil {
		return failure("Failed to delete transaction", err)
	}
	return fmt.Sprintf("Deleted #%d", id)
}

func (b *Bot) handleSummaryCommand(ctx context.Context, args []string) string {
	switch len(args) {
	case 0:
		return b.handleAllCategoriesSummary(ctx)
	case 1:
		return b.handleCategorySummary(ctx, strings.ToLower(args[0]))
	}
	return "Usage: !summary [category]\nExamples:\n!summary - show all categories\n!summary food - show food transactions"
}

func (b *Bot) handleAllCategoriesSummary(ctx context.Context) string {
	all, err := b.store.GetAll(ctx)
	if err != nil {
		return failure("Failed to get summary", err)
	}
	if len(all) == 0 {
		return "No transactions found."
	}
	byCategory, err := b.store.CategoryTotals(ctx, transaction.Expense)
	if err != nil {
		return failure("Failed to get summary", err)
	}

	var sb strings.Builder
	sb.WriteString("**Transaction Summary**\n\n")

	categories := make([]string, 0, len(byCategory))
	for c := range byCategory {
		categories = append(categories, c)
	}
	sort.Strings(categories)
	for _, c := range categories {
		fmt.Fprintf(&sb, "**%s**: %s\n", c, b.format(byCategory[c]))
	}

	totals := transaction.Summarize(all)
	fmt.Fprintf(&sb, "\n**Incomes**: %s\n**Expenses**: %s\n**Balance**: %s",
		b.format(totals.Incomes), b.format(totals.Expenses), b.format(totals.Balance))
	return sb.String()
}

func (b *Bot) handleCategorySummary(ctx context.Context, category string) string {
	txs, err := b.store.Find(ctx, storage.Filter{Type: transaction.Expense, Category: category})
	if err != nil {
		return failure("Failed to get transactions", err)
	}
	if len(txs) == 0 {
		return fmt.Sprintf("No transactions found for category: %s", category)
	}
	txs = transaction.SortNewestFirst(txs)

	var sb strings.Builder
	fmt.Fprintf(&sb, "**%s Transactions**\n\n", category)
	b.writeLines(&sb, txs)
	fmt.Fprintf(&sb, "\n**Total %s**: %s (%d transactions)", category, b.format(transaction.Summarize(txs).Expenses), len(txs))
	return sb.String()
}

// writeLines renders at most listLimit transactions.
func (b *Bot) writeLines(sb *strings.Builder, txs []transaction.Transaction) {
	limit := min(len(txs), listLimit)
	for _, tx := range txs[:limit] {
		sign := "-"
		if tx.Type == transaction.Income {
			sign = "+"
		}
		fmt.Fprintf(sb, "#%d %s **%s%s** %s [%s]\n", tx.ID, tx.Date, sign, b.format(tx.Amount), tx.Name, tx.Category)
	}
	if len(txs) > limit {
		fmt.Fprintf(sb, "... and %d more transactions\n", len(txs)-limit)
	}
}

func failure(prefix string, err error) string {
	var verr *storage.ValidationError
	switch {
	case errors.As(err, &verr):
		var sb strings.Builder
		sb.WriteString(prefix + ":\n")
		for _, v := range verr.Violations {
			fmt.Fprintf(&sb, "• %s\n", v.Message)
		}
		return sb.String()
	case errors.Is(err, storage.ErrNotFound):
		return prefix + ": transaction not found"
	}
	return fmt.Sprintf("%s: %v", prefix, err)
}
