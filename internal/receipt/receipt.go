package receipt

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"

	"github.com/zombor/raseed/internal/parsing"
	"github.com/zombor/raseed/internal/scanning"
)

var (
	// ErrNotFound is returned when a user or receipt document does not exist
	ErrNotFound = errors.New("not found")
	// ErrEmptyImage is returned for uploads without image data
	ErrEmptyImage = errors.New("no image data provided")
	// ErrNoText is returned when OCR finds no text on an upload
	ErrNoText = errors.New("no text found in image")
	// ErrEmptyQuery is returned for blank spending questions
	ErrEmptyQuery = errors.New("query is required")
	// ErrModelUnavailable is returned when a question is asked without a configured model
	ErrModelUnavailable = errors.New("language model not configured")
	// ErrEmailTaken is returned on signup with a registered email
	ErrEmailTaken = errors.New("email already registered")
	// ErrInvalidAccount is returned on signup with an unusable email or password
	ErrInvalidAccount = errors.New("invalid account details")
	// ErrInvalidCredentials is returned on a failed login
	ErrInvalidCredentials = errors.New("invalid email or password")
	// ErrUnsupportedLanguage is returned for language codes the interface does not offer
	ErrUnsupportedLanguage = errors.New("unsupported language")
)

const (
	// UncategorizedLabel counts receipts without a category in Stats
	UncategorizedLabel = "Uncategorized"
	// NoCategory is the top category of a user without receipts
	NoCategory = "None"
)

// Receipt is a processed receipt belonging to a user
type Receipt struct {
	ID          string          `json:"receiptId"`
	UserID      string          `json:"userId"`
	Timestamp   time.Time       `json:"timestamp"`
	ParsedData  parsing.Record  `json:"parsedData"`
	RawText     string          `json:"rawText"`
	Source      scanning.Source `json:"source"`
	Filename    string          `json:"filename"`
	ContentType string          `json:"contentType"`
}

// User is a local account
type User struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	Name         string    `json:"name"`
	Picture      string    `json:"picture,omitempty"`
	PasswordHash []byte    `json:"passwordHash,omitempty"`
	Language     string    `json:"language"`
	CreatedAt    time.Time `json:"createdAt"`
	LastLogin    time.Time `json:"lastLogin"`
}

// Stats summarizes a user's spending
type Stats struct {
	TotalReceipts int             `json:"total_receipts"`
	TotalSpent    decimal.Decimal `json:"total_spent"`
	TopCategory   string          `json:"top_category"`
	AvgSpend      decimal.Decimal `json:"avg_spend"`
}

// WalletPass is a storeCard pass descriptor for a receipt
type WalletPass struct {
	PassType         string      `json:"passType"`
	SerialNumber     string      `json:"serialNumber"`
	Description      string      `json:"description"`
	OrganizationName string      `json:"organizationName"`
	LogoText         string      `json:"logoText"`
	BackgroundColor  string      `json:"backgroundColor"`
	ForegroundColor  string      `json:"foregroundColor"`
	Barcode          PassBarcode `json:"barcode"`
	PrimaryFields    []PassField `json:"primaryFields"`
	SecondaryFields  []PassField `json:"secondaryFields"`
}

// PassField is a labelled value on a pass
type PassField struct {
	Key   string `json:"key"`
	Label string `json:"label"`
	Value string `json:"value"`
}

// PassBarcode is the scannable code on a pass
type PassBarcode struct {
	Message         string `json:"message"`
	Format          string `json:"format"`
	MessageEncoding string `json:"messageEncoding"`
}
