package scanning

import (
	"context"
	"log/slog"

	"github.com/zombor/raseed/internal/parsing"
)

// Extractor structures OCR text, preferring the model and falling back to the parser
type Extractor struct {
	model  Model
	parser *parsing.Parser
	clock  parsing.Clock
}

// NewExtractor creates an Extractor. A nil model always uses the fallback parser.
func NewExtractor(model Model, clock parsing.Clock) *Extractor {
	if clock == nil {
		clock = parsing.WallClock{}
	}
	return &Extractor{
		model:  model,
		parser: parsing.NewParser(clock),
		clock:  clock,
	}
}

// Extract returns the receipt record for text and which path produced it.
// It never fails: model errors and unusable replies fall back to the parser.
func (e *Extractor) Extract(ctx context.Context, text string) (*parsing.Record, Source) {
	if e.model == nil {
		return e.parser.Parse(text), SourceFallback
	}

	reply, err := e.model.CompleteJSON(ctx, ExtractionPrompt(text))
	if err != nil {
		slog.Warn("Model extraction failed, using fallback parser", "error", err)
		return e.parser.Parse(text), SourceFallback
	}

	record, err := parseReceiptJSON(reply, e.clock)
	if err != nil {
		slog.Warn("Model reply unusable, using fallback parser", "error", err)
		return e.parser.Parse(text), SourceFallback
	}
	return record, SourceModel
}
