package scanning

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/zombor/raseed/internal/i18n"
	"github.com/zombor/raseed/internal/parsing"
)

// transcribePrompt is used by the vision-capable models acting as OCR
const transcribePrompt = `Transcribe all of the text on this receipt exactly as printed.
Keep the original line breaks and the order of the lines from top to bottom.
Do not summarize, translate, correct or add anything.
Return only the transcribed text.`

// extractionPrompt asks the model to structure OCR text as a receipt record
const extractionPrompt = `You are reading the OCR text of a shopping receipt. Extract the following fields:

1. **merchant**: the store or business name, usually the first lines of the receipt.
2. **date**: the purchase date in ISO 8601 format (YYYY-MM-DD).
3. **total**: the final amount paid, as a number.
4. **tax**: the total tax (tax, GST, VAT or HST) as a number, 0 if none is printed.
5. **subtotal**: the amount before tax, as a number.
6. **items**: every purchased line as {"name": string, "price": number}.
7. **category**: one of Groceries, Dining, Transport, Shopping, Health, Utilities, Entertainment, Other.

Return ONLY valid JSON in this exact format:
{
  "merchant": "Store Name",
  "date": "YYYY-MM-DD",
  "total": 0.00,
  "tax": 0.00,
  "subtotal": 0.00,
  "items": [{"name": "Item", "price": 0.00}],
  "category": "Other"
}

Important:
- Amounts must be numbers (not strings) in the receipt's currency units
- If you cannot find a field, use null for that field
- Do not include any text before or after the JSON
- Do not use markdown code blocks

Receipt text:
%s`

// ExtractionPrompt builds the structured-extraction prompt for OCR text
func ExtractionPrompt(text string) string {
	return fmt.Sprintf(extractionPrompt, text)
}

// SpendingQueryPrompt builds the prompt answering a spending question over receipts
func SpendingQueryPrompt(query, language string, receipts []parsing.Record) (string, error) {
	if receipts == nil {
		receipts = []parsing.Record{}
	}
	context, err := json.MarshalIndent(receipts, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshaling receipts: %w", err)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "User query: %q\n", strings.TrimSpace(query))
	fmt.Fprintf(&b, "Language: %s\n", i18n.Instruction(language))
	b.WriteString("Based on these receipts:\n")
	b.Write(context)
	b.WriteString("\nProvide a helpful, concise response in HTML format with basic styling.")
	return b.String(), nil
}
