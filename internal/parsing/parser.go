// Package parsing turns raw OCR text into a receipt record using pattern
// matching. It is the fallback used when model-based extraction is unavailable
// or returns something unusable, so it never fails: anything it cannot read is
// skipped and the record degrades to defaults.
package parsing

import (
	"strings"

	"github.com/shopspring/decimal"
)

// MaxInputBytes bounds how much OCR text is matched against
const MaxInputBytes = 64 << 10

// Parser builds receipt records from OCR text
type Parser struct {
	clock Clock
}

// NewParser creates a Parser that stamps records with the clock's date
func NewParser(clock Clock) *Parser {
	if clock == nil {
		clock = WallClock{}
	}
	return &Parser{clock: clock}
}

// ParseWithFallback parses text with a wall-clock Parser
func ParseWithFallback(text string) *Record {
	return NewParser(nil).Parse(text)
}

// Parse reconciles the amount, tax and item extractors into a single record
func (p *Parser) Parse(text string) *Record {
	text = clip(text)

	amounts := ExtractAmounts(text)
	tax := ExtractTax(text)
	items := ExtractItems(text)

	itemTotal := decimal.Zero
	itemPrices := make(map[string]bool, len(items))
	for _, item := range items {
		itemTotal = itemTotal.Add(item.Price)
		itemPrices[item.Price.StringFixed(2)] = true
	}

	// A labelled total wins. Otherwise the largest figure that isn't a line item or the tax.
	total := itemTotal.Add(tax)
	if printed := printedTotals(text); len(printed) > 0 {
		total = printed[0]
	} else {
		for _, amount := range amounts {
			if !itemPrices[amount.StringFixed(2)] && !amount.Equal(tax) {
				total = amount
				break
			}
		}
	}

	// Subtotal is derived and may disagree with the items; that is left visible.
	subtotal := itemTotal
	if tax.IsPositive() {
		subtotal = total.Sub(tax)
	}

	if len(items) > MaxItems {
		items = items[:MaxItems]
	}
	for i := range items {
		items[i].Price = items[i].Price.Round(2)
	}

	return &Record{
		Merchant: merchantFrom(text),
		Date:     p.clock.Now().Format(dateLayout),
		Total:    total.Round(2),
		Tax:      tax.Round(2),
		Subtotal: subtotal.Round(2),
		Items:    items,
		Category: DefaultCategory,
	}
}

// merchantFrom returns the first non-blank line of text
func merchantFrom(text string) string {
	for _, line := range strings.Split(text, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			return line
		}
	}
	return UnknownMerchant
}
