package receipt

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/zombor/raseed/internal/parsing"
	"github.com/zombor/raseed/internal/scanning"
)

// queryContextSize is how many recent receipts a spending question sees
const queryContextSize = 10

// IDGenerator generates unique IDs for receipts and users
type IDGenerator interface {
	Generate() string
}

// TimeSource provides the current time
type TimeSource interface {
	Now() time.Time
}

// RecordExtractor turns OCR text into a receipt record
type RecordExtractor interface {
	Extract(ctx context.Context, text string) (*parsing.Record, scanning.Source)
}

// defaultIDGenerator generates random UUIDs
type defaultIDGenerator struct{}

func (g *defaultIDGenerator) Generate() string {
	return uuid.NewString()
}

// defaultTimeSource provides the current time
type defaultTimeSource struct{}

func (t *defaultTimeSource) Now() time.Time {
	return time.Now()
}

// Service handles receipt and account operations
type Service struct {
	db          DB
	ocr         scanning.TextExtractor
	extractor   RecordExtractor
	model       scanning.Model
	storage     Storage
	idGenerator IDGenerator
	timeSource  TimeSource

	// serializes the email check and write on signup
	signupMu sync.Mutex
}

// NewService creates a new Service with default ID generator and time source.
// model may be nil, in which case spending questions are unavailable.
func NewService(db DB, ocr scanning.TextExtractor, extractor RecordExtractor, model scanning.Model, storage Storage) *Service {
	return NewServiceWithDeps(db, ocr, extractor, model, storage, &defaultIDGenerator{}, &defaultTimeSource{})
}

// NewServiceWithDeps creates a new Service with custom dependencies for testing
func NewServiceWithDeps(db DB, ocr scanning.TextExtractor, extractor RecordExtractor, model scanning.Model, storage Storage, idGen IDGenerator, timeSrc TimeSource) *Service {
	return &Service{
		db:          db,
		ocr:         ocr,
		extractor:   extractor,
		model:       model,
		storage:     storage,
		idGenerator: idGen,
		timeSource:  timeSrc,
	}
}

// HasModel reports whether a language model is configured
func (s *Service) HasModel() bool {
	return s.model != nil
}

// ProcessReceipt stores an upload, reads its text and saves the structured receipt
func (s *Service) ProcessReceipt(ctx context.Context, userID, filename string, data []byte, contentType string) (*Receipt, error) {
	if len(data) == 0 {
		return nil, ErrEmptyImage
	}

	id := s.idGenerator.Generate()
	now := s.timeSource.Now()

	savedPath, err := s.storage.Save(storedName(id, filename), data)
	if err != nil {
		return nil, fmt.Errorf("saving file: %w", err)
	}

	text, err := s.ocr.ExtractText(ctx, data, contentType)
	if err != nil {
		slog.Error("Failed to read receipt text",
			"filename", filename,
			"content_type", contentType,
			"file_size", len(data),
			"error", err,
		)
		s.removeFile(savedPath)
		return nil, fmt.Errorf("reading receipt text: %w", err)
	}
	if strings.TrimSpace(text) == "" {
		s.removeFile(savedPath)
		return nil, ErrNoText
	}

	record, source := s.extractor.Extract(ctx, text)

	receipt := &Receipt{
		ID:          id,
		UserID:      userID,
		Timestamp:   now,
		ParsedData:  *record,
		RawText:     text,
		Source:      source,
		Filename:    savedPath,
		ContentType: contentType,
	}

	if err := s.db.SaveReceipt(receipt); err != nil {
		s.removeFile(savedPath)
		return nil, fmt.Errorf("saving receipt to database: %w", err)
	}

	slog.Info("Processed receipt",
		"receipt_id", id,
		"user_id", userID,
		"source", source,
		"merchant", record.Merchant,
		"total", record.Total.StringFixed(2),
	)
	return receipt, nil
}

func (s *Service) removeFile(name string) {
	if err := s.storage.Delete(name); err != nil {
		slog.Warn("Failed to delete file", "filename", name, "error", err)
	}
}

// GetReceipt retrieves one of a user's receipts
func (s *Service) GetReceipt(userID, id string) (*Receipt, error) {
	receipt, err := s.db.GetReceipt(userID, id)
	if err != nil {
		return nil, fmt.Errorf("getting receipt: %w", err)
	}
	return receipt, nil
}

// ListReceipts returns all of a user's receipts, newest first
func (s *Service) ListReceipts(userID string) ([]*Receipt, error) {
	receipts, err := s.db.ListReceipts(userID, 0)
	if err != nil {
		return nil, fmt.Errorf("listing receipts: %w", err)
	}
	return receipts, nil
}

// DeleteReceipt removes a receipt and its file
func (s *Service) DeleteReceipt(userID, id string) error {
	receipt, err := s.db.GetReceipt(userID, id)
	if err != nil {
		return fmt.Errorf("getting receipt for deletion: %w", err)
	}

	// A missing file must not keep the receipt alive
	s.removeFile(receipt.Filename)

	if err := s.db.DeleteReceipt(userID, id); err != nil {
		return fmt.Errorf("deleting receipt from database: %w", err)
	}
	return nil
}

// GetReceiptFile retrieves the stored image of a receipt
func (s *Service) GetReceiptFile(userID, id string) ([]byte, string, error) {
	receipt, err := s.db.GetReceipt(userID, id)
	if err != nil {
		return nil, "", fmt.Errorf("getting receipt: %w", err)
	}

	data, err := s.storage.Get(receipt.Filename)
	if err != nil {
		return nil, "", fmt.Errorf("getting receipt file: %w", err)
	}

	return data, receipt.ContentType, nil
}

// Stats summarizes a user's receipts
func (s *Service) Stats(userID string) (*Stats, error) {
	receipts, err := s.db.ListReceipts(userID, 0)
	if err != nil {
		return nil, fmt.Errorf("listing receipts: %w", err)
	}

	stats := &Stats{
		TotalReceipts: len(receipts),
		TotalSpent:    decimal.Zero,
		TopCategory:   NoCategory,
		AvgSpend:      decimal.Zero,
	}
	if len(receipts) == 0 {
		return stats, nil
	}

	counts := make(map[string]int)
	var order []string // categories by most recent use
	for _, r := range receipts {
		stats.TotalSpent = stats.TotalSpent.Add(r.ParsedData.Total)

		category := strings.TrimSpace(r.ParsedData.Category)
		if category == "" {
			category = UncategorizedLabel
		}
		if counts[category] == 0 {
			order = append(order, category)
		}
		counts[category]++
	}

	best := 0
	for _, category := range order {
		if counts[category] > best {
			best = counts[category]
			stats.TopCategory = category
		}
	}

	stats.TotalSpent = stats.TotalSpent.Round(2)
	stats.AvgSpend = stats.TotalSpent.Div(decimal.NewFromInt(int64(len(receipts)))).Round(2)
	return stats, nil
}

// AskQuestion answers a spending question over the user's most recent receipts
func (s *Service) AskQuestion(ctx context.Context, userID, query, language string) (string, error) {
	if strings.TrimSpace(query) == "" {
		return "", ErrEmptyQuery
	}
	if s.model == nil {
		return "", ErrModelUnavailable
	}

	receipts, err := s.db.ListReceipts(userID, queryContextSize)
	if err != nil {
		return "", fmt.Errorf("listing receipts: %w", err)
	}
	records := make([]parsing.Record, 0, len(receipts))
	for _, r := range receipts {
		records = append(records, r.ParsedData)
	}

	prompt, err := scanning.SpendingQueryPrompt(query, language, records)
	if err != nil {
		return "", err
	}
	answer, err := s.model.Complete(ctx, prompt)
	if err != nil {
		slog.Error("Failed to answer question", "user_id", userID, "error", err)
		return "", fmt.Errorf("asking model: %w", err)
	}
	return answer, nil
}

// CreateWalletPass builds a storeCard pass for one of a user's receipts
func (s *Service) CreateWalletPass(userID, receiptID string) (*WalletPass, error) {
	receipt, err := s.db.GetReceipt(userID, receiptID)
	if err != nil {
		return nil, fmt.Errorf("getting receipt: %w", err)
	}

	return &WalletPass{
		PassType:         "storeCard",
		SerialNumber:     receipt.ID,
		Description:      "Receipt stored in wallet",
		OrganizationName: "Raseed",
		LogoText:         "Receipt",
		BackgroundColor:  "rgb(102,126,234)",
		ForegroundColor:  "rgb(255,255,255)",
		Barcode: PassBarcode{
			Message:         receipt.ID,
			Format:          "PKBarcodeFormatQR",
			MessageEncoding: "iso-8859-1",
		},
		PrimaryFields: []PassField{
			{Key: "total", Label: "Total", Value: receipt.ParsedData.Total.StringFixed(2)},
		},
		SecondaryFields: []PassField{
			{Key: "merchant", Label: "Merchant", Value: receipt.ParsedData.Merchant},
			{Key: "date", Label: "Date", Value: receipt.ParsedData.Date},
		},
	}, nil
}
