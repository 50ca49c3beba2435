package scanning

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/santhosh-tekuri/jsonschema/v5"
	"github.com/shopspring/decimal"

	"github.com/zombor/raseed/internal/parsing"
)

const amountPattern = `^-?\d+(\.\d+)?$`

func amountSchema(nullable bool) map[string]any {
	types := []any{"number", "string"}
	if nullable {
		types = append(types, "null")
	}
	return map[string]any{"type": types, "pattern": amountPattern}
}

// receiptSchema constrains model replies before they are trusted
var receiptSchema = map[string]any{
	"type":     "object",
	"required": []any{"merchant", "total"},
	"properties": map[string]any{
		"merchant": map[string]any{"type": []any{"string", "null"}},
		"date":     map[string]any{"type": []any{"string", "null"}},
		"total":    amountSchema(false),
		"tax":      amountSchema(true),
		"subtotal": amountSchema(true),
		"category": map[string]any{"type": []any{"string", "null"}},
		"items": map[string]any{
			"type": []any{"array", "null"},
			"items": map[string]any{
				"type":     "object",
				"required": []any{"name", "price"},
				"properties": map[string]any{
					"name":  map[string]any{"type": "string"},
					"price": amountSchema(false),
				},
			},
		},
	},
}

var compiledReceiptSchema = mustCompileSchema(receiptSchema)

func mustCompileSchema(schemaMap map[string]any) *jsonschema.Schema {
	b, err := json.Marshal(schemaMap)
	if err != nil {
		panic(fmt.Sprintf("marshal receipt schema: %v", err))
	}
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource("receipt.json", bytes.NewReader(b)); err != nil {
		panic(fmt.Sprintf("add receipt schema: %v", err))
	}
	return compiler.MustCompile("receipt.json")
}

var dateLayouts = []string{
	"2006-01-02",
	"2006/01/02",
	"01/02/2006",
	"02-01-2006",
}

type modelItem struct {
	Name  string          `json:"name"`
	Price decimal.Decimal `json:"price"`
}

type modelReceipt struct {
	Merchant *string             `json:"merchant"`
	Date     *string             `json:"date"`
	Total    decimal.Decimal     `json:"total"`
	Tax      decimal.NullDecimal `json:"tax"`
	Subtotal decimal.NullDecimal `json:"subtotal"`
	Items    []modelItem         `json:"items"`
	Category *string             `json:"category"`
}

// cutJSONObject strips markdown fences and chatter around the outermost JSON object
func cutJSONObject(text string) (string, error) {
	text = strings.TrimSpace(text)
	text = strings.TrimPrefix(text, "```json")
	text = strings.TrimPrefix(text, "```")
	text = strings.TrimSpace(text)

	startIdx := strings.Index(text, "{")
	if startIdx == -1 {
		return "", errors.New("no JSON object found in response")
	}
	endIdx := strings.LastIndex(text, "}")
	if endIdx < startIdx {
		return "", errors.New("invalid JSON object in response")
	}
	return text[startIdx : endIdx+1], nil
}

// parseReceiptJSON validates a model reply and normalizes it into a record
func parseReceiptJSON(text string, clock parsing.Clock) (*parsing.Record, error) {
	raw, err := cutJSONObject(text)
	if err != nil {
		return nil, err
	}

	var doc any
	if err := json.Unmarshal([]byte(raw), &doc); err != nil {
		return nil, fmt.Errorf("unmarshaling json: %w", err)
	}
	if err := compiledReceiptSchema.Validate(doc); err != nil {
		return nil, fmt.Errorf("reply does not match receipt schema: %w", err)
	}

	var data modelReceipt
	if err := json.Unmarshal([]byte(raw), &data); err != nil {
		return nil, fmt.Errorf("decoding receipt: %w", err)
	}

	tax := decimal.Zero
	if data.Tax.Valid {
		tax = data.Tax.Decimal
	}
	if data.Total.IsNegative() || tax.IsNegative() {
		return nil, errors.New("negative total or tax")
	}
	subtotal := data.Total.Sub(tax)
	if data.Subtotal.Valid {
		subtotal = data.Subtotal.Decimal
	}

	items := make([]parsing.Item, 0, len(data.Items))
	for _, it := range data.Items {
		name := strings.TrimSpace(it.Name)
		if !it.Price.IsPositive() || utf8.RuneCountInString(name) <= 1 {
			continue
		}
		items = append(items, parsing.Item{Name: name, Price: it.Price.Round(2)})
		if len(items) == parsing.MaxItems {
			break
		}
	}

	return &parsing.Record{
		Merchant: orDefault(data.Merchant, parsing.UnknownMerchant),
		Date:     normalizeDate(data.Date, clock.Now()),
		Total:    data.Total.Round(2),
		Tax:      tax.Round(2),
		Subtotal: subtotal.Round(2),
		Items:    items,
		Category: orDefault(data.Category, parsing.DefaultCategory),
	}, nil
}

// normalizeDate reformats a model date as YYYY-MM-DD, or uses today
func normalizeDate(value *string, now time.Time) string {
	if value != nil {
		s := strings.TrimSpace(*value)
		for _, layout := range dateLayouts {
			if d, err := time.Parse(layout, s); err == nil {
				return d.Format("2006-01-02")
			}
		}
	}
	return now.Format("2006-01-02")
}

func orDefault(value *string, fallback string) string {
	if value == nil {
		return fallback
	}
	if s := strings.TrimSpace(*value); s != "" {
		return s
	}
	return fallback
}
