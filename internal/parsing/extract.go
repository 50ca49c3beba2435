package parsing

import (
	"regexp"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/shopspring/decimal"
)

var (
	minAmount = decimal.RequireFromString("0.01")
	maxAmount = decimal.RequireFromString("99999.99")
)

// Pattern order matters for tax: keyword-before-amount forms are tried first.
var (
	totalPattern    = regexp.MustCompile(`(?i)(?:total|amount|balance|due)\s*:?\s*[$£€]?\s*(\d+\.\d{2})`)
	subtotalPattern = regexp.MustCompile(`(?i)(?:subtotal|sub-total)\s*[$£€]?\s*(\d+\.\d{2})`)

	amountPatterns = []*regexp.Regexp{
		totalPattern,
		regexp.MustCompile(`(?i)[$£€](\d+\.\d{2})\b`),
		regexp.MustCompile(`(?i)\b(\d+\.\d{2})\s*[$£€]`),
		subtotalPattern,
		regexp.MustCompile(`(?i)\b(\d{1,3}(?:,\d{3})*\.\d{2})\b`),
	}

	// keywordPatterns are the amount patterns anchored on a printed total label
	keywordPatterns = []*regexp.Regexp{totalPattern, subtotalPattern}

	taxPatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)(?:tax|gst|vat|hst)\s*[$£€]?\s*(\d+\.\d{2})`),
		regexp.MustCompile(`(?i)(?:tax|gst|vat|hst)\s*:?\s*[$£€]?\s*(\d+\.\d{2})`),
		regexp.MustCompile(`(?i)[$£€](\d+\.\d{2})\s*(?:tax|gst|vat|hst)`),
	}

	itemPattern = regexp.MustCompile(`(.+?)\s+([$£€]?\s*\d+\.\d{2})\b`)

	// summaryLabel matches names that label a total or tax figure rather than a purchase
	summaryLabel = regexp.MustCompile(`(?i)^\W*(?:sub-?\s*total|grand\s+total|total|amount|balance|due|tax|gst|vat|hst)\b`)

	priceJunk = strings.NewReplacer("$", "", "£", "", "€", "", ",", "", " ", "", "\t", "")
)

// ExtractAmounts returns every plausible monetary amount in text, largest first, without duplicates
func ExtractAmounts(text string) []decimal.Decimal {
	return matchAmounts(clip(text), amountPatterns)
}

// printedTotals returns the in-range amounts next to a total, amount, balance, due or subtotal label, largest first
func printedTotals(text string) []decimal.Decimal {
	return matchAmounts(clip(text), keywordPatterns)
}

func matchAmounts(text string, patterns []*regexp.Regexp) []decimal.Decimal {
	seen := make(map[string]bool)
	amounts := make([]decimal.Decimal, 0)
	for _, pattern := range patterns {
		for _, match := range pattern.FindAllStringSubmatch(text, -1) {
			amount, ok := parseMoney(match[1])
			if !ok || amount.LessThan(minAmount) || amount.GreaterThan(maxAmount) {
				continue
			}
			key := amount.StringFixed(2)
			if seen[key] {
				continue
			}
			seen[key] = true
			amounts = append(amounts, amount)
		}
	}

	sort.Slice(amounts, func(i, j int) bool {
		return amounts[i].GreaterThan(amounts[j])
	})
	return amounts
}

// ExtractTax returns the first tax amount found, trying patterns in priority order
func ExtractTax(text string) decimal.Decimal {
	text = clip(text)

	for _, pattern := range taxPatterns {
		match := pattern.FindStringSubmatch(text)
		if match == nil {
			continue
		}
		if tax, ok := parseMoney(match[1]); ok {
			return tax
		}
	}
	return decimal.Zero
}

// ExtractItems returns named lines followed by a price, in text order
func ExtractItems(text string) []Item {
	text = clip(text)

	items := make([]Item, 0)
	for _, match := range itemPattern.FindAllStringSubmatch(text, -1) {
		name := strings.TrimSpace(match[1])
		price, ok := parseMoney(priceJunk.Replace(match[2]))
		if !ok || !price.IsPositive() || utf8.RuneCountInString(name) <= 1 {
			continue
		}
		if summaryLabel.MatchString(name) {
			continue
		}
		items = append(items, Item{Name: name, Price: price})
	}
	return items
}

// parseMoney parses a decimal figure, tolerating thousands separators
func parseMoney(s string) (decimal.Decimal, bool) {
	d, err := decimal.NewFromString(strings.ReplaceAll(strings.TrimSpace(s), ",", ""))
	if err != nil {
		return decimal.Zero, false
	}
	return d, true
}

// clip bounds the text handed to the matchers
func clip(text string) string {
	if len(text) <= MaxInputBytes {
		return text
	}
	text = text[:MaxInputBytes]
	// drop a rune split by the cut
	for len(text) > 0 {
		r, size := utf8.DecodeLastRuneInString(text)
		if r != utf8.RuneError || size != 1 {
			break
		}
		text = text[:len(text)-1]
	}
	return text
}
