package discord

import (
	"fmt"

	"github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"
)

// format renders an amount in minor units, e.g. 6500 KES as "KSh65.00".
func (b *Bot) format(amount int64) string {
	return money.New(amount, b.currency).Display()
}

// parseAmount reads a major-unit amount such as "65" or "65.50" and returns
// it in minor units of the bot's currency.
func (b *Bot) parseAmount(s string) (int64, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, err
	}
	fraction := 2
	if cur := money.GetCurrency(b.currency); cur != nil {
		fraction = cur.Fraction
	}
	minor := d.Shift(int32(fraction))
	if !minor.Equal(minor.Truncate(0)) {
		return 0, fmt.Errorf("too many decimal places for %s", b.currency)
	}
	if !minor.BigInt().IsInt64() {
		return 0, fmt.Errorf("amount too large")
	}
	return minor.IntPart(), nil
}
