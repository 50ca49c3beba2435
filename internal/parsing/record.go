package parsing

import (
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"
)

const (
	// UnknownMerchant is used when the text has no non-blank line
	UnknownMerchant = "Unknown"

	// DefaultCategory is the only category the fallback parser assigns
	DefaultCategory = "Other"

	// MaxItems caps the number of line items kept on a record
	MaxItems = 20

	dateLayout = "2006-01-02"
)

// Item is a single purchased line on a receipt
type Item struct {
	Name  string          `json:"name"`
	Price decimal.Decimal `json:"price"`
}

// Record is the normalized receipt produced by a parse
type Record struct {
	Merchant string          `json:"merchant"`
	Date     string          `json:"date"` // YYYY-MM-DD
	Total    decimal.Decimal `json:"total"`
	Tax      decimal.Decimal `json:"tax"`
	Subtotal decimal.Decimal `json:"subtotal"`
	Items    []Item          `json:"items"`
	Category string          `json:"category"`
}

// Clock provides the current time
type Clock interface {
	Now() time.Time
}

// WallClock reads the system time
type WallClock struct{}

func (WallClock) Now() time.Time {
	return time.Now()
}

// MarshalJSON writes the price with exactly two decimal places
func (i Item) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Name  string `json:"name"`
		Price string `json:"price"`
	}{i.Name, i.Price.StringFixed(2)})
}

// MarshalJSON writes money with exactly two decimal places and items as an array
func (r Record) MarshalJSON() ([]byte, error) {
	type plain Record
	items := r.Items
	if items == nil {
		items = []Item{}
	}
	return json.Marshal(struct {
		plain
		Total    string `json:"total"`
		Tax      string `json:"tax"`
		Subtotal string `json:"subtotal"`
		Items    []Item `json:"items"`
	}{
		plain:    plain(r),
		Total:    r.Total.StringFixed(2),
		Tax:      r.Tax.StringFixed(2),
		Subtotal: r.Subtotal.StringFixed(2),
		Items:    items,
	})
}
