package scanning

import "context"

// Source records which path produced a receipt record
type Source string

const (
	// SourceModel means the language model produced the record
	SourceModel Source = "llm"
	// SourceFallback means the pattern-matching parser produced the record
	SourceFallback Source = "fallback"
)

// TextExtractor defines the interface for OCR providers
type TextExtractor interface {
	// ExtractText returns the text found in a receipt image or PDF
	ExtractText(ctx context.Context, imageData []byte, contentType string) (string, error)
	// Close releases the provider's resources
	Close() error
}

// Model defines the interface for hosted language models
type Model interface {
	// CompleteJSON asks the model for a JSON document and returns its raw reply
	CompleteJSON(ctx context.Context, prompt string) (string, error)
	// Complete returns the model's free-form reply to prompt
	Complete(ctx context.Context, prompt string) (string, error)
	// Close releases the model's resources
	Close() error
}
