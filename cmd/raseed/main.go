package main

import (
	"context"
	"crypto/rand"
	_ "embed"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/peterbourgon/ff/v4"
	"github.com/peterbourgon/ff/v4/ffhelp"
	"github.com/zombor/raseed/internal/receipt"
	"github.com/zombor/raseed/internal/scanning"
)

//go:embed VERSION.txt
var versionFile string

var version = strings.TrimSpace(versionFile)

type config struct {
	visionKey   string
	geminiKey   string
	geminiModel string
	openaiKey   string
	openaiModel string
	openaiURL   string
	ollamaURL   string
	ollamaModel string
}

// providers builds vendor clients, sharing one client when OCR and the LLM use the same vendor
type providers struct {
	cfg     config
	gemini  *scanning.Gemini
	ollama  *scanning.Ollama
	closers []io.Closer
}

func (p *providers) getGemini() (*scanning.Gemini, error) {
	if p.gemini != nil {
		return p.gemini, nil
	}
	apiKey := p.cfg.geminiKey
	if apiKey == "" {
		apiKey = os.Getenv("GEMINI_API_KEY")
	}
	if apiKey == "" {
		return nil, errors.New("gemini API key is required. Set --gemini-key flag or GEMINI_API_KEY environment variable")
	}
	slog.Info("Initializing Gemini...", "model", p.cfg.geminiModel)
	g, err := scanning.NewGemini(apiKey, p.cfg.geminiModel)
	if err != nil {
		return nil, err
	}
	p.gemini = g
	p.closers = append(p.closers, g)
	return g, nil
}

func (p *providers) getOllama() (*scanning.Ollama, error) {
	if p.ollama != nil {
		return p.ollama, nil
	}
	slog.Info("Initializing Ollama...", "url", p.cfg.ollamaURL, "model", p.cfg.ollamaModel)
	o, err := scanning.NewOllama(p.cfg.ollamaURL, p.cfg.ollamaModel)
	if err != nil {
		return nil, err
	}
	p.ollama = o
	p.closers = append(p.closers, o)
	return o, nil
}

func (p *providers) textExtractor(kind string) (scanning.TextExtractor, error) {
	switch kind {
	case "vision":
		slog.Info("Initializing Cloud Vision OCR...")
		v, err := scanning.NewVision(context.Background(), p.cfg.visionKey)
		if err != nil {
			return nil, err
		}
		p.closers = append(p.closers, v)
		return v, nil
	case "gemini":
		return p.getGemini()
	case "ollama":
		return p.getOllama()
	}
	return nil, fmt.Errorf("invalid ocr type %q, valid: vision, gemini or ollama", kind)
}

// model returns nil when no LLM is configured
func (p *providers) model(kind string) (scanning.Model, error) {
	switch kind {
	case "none", "":
		return nil, nil
	case "gemini":
		return p.getGemini()
	case "ollama":
		return p.getOllama()
	case "openai":
		apiKey := p.cfg.openaiKey
		if apiKey == "" {
			apiKey = os.Getenv("OPENAI_API_KEY")
		}
		slog.Info("Initializing OpenAI...", "model", p.cfg.openaiModel)
		o, err := scanning.NewOpenAI(apiKey, p.cfg.openaiModel, p.cfg.openaiURL)
		if err != nil {
			return nil, err
		}
		p.closers = append(p.closers, o)
		return o, nil
	}
	return nil, fmt.Errorf("invalid llm type %q, valid: gemini, openai, ollama or none", kind)
}

func (p *providers) Close() {
	for _, c := range p.closers {
		if err := c.Close(); err != nil {
			slog.Warn("Error closing provider", "error", err)
		}
	}
}

func setupLogging(format string) error {
	var handler slog.Handler
	switch format {
	case "text":
		handler = slog.NewTextHandler(os.Stderr, nil)
	case "json":
		handler = slog.NewJSONHandler(os.Stderr, nil)
	default:
		return fmt.Errorf("invalid log format %q, valid: text or json", format)
	}
	slog.SetDefault(slog.New(handler))
	return nil
}

func main() {
	// Check for version flag before parsing other flags
	for _, arg := range os.Args[1:] {
		if arg == "--version" || arg == "-version" || arg == "-v" {
			fmt.Println(version)
			os.Exit(0)
		}
	}

	envErr := godotenv.Load()

	var cfg config
	fs := ff.NewFlagSet("raseed")
	var (
		port          = fs.IntLong("port", 8080, "HTTP server port")
		dbPath        = fs.StringLong("db", "raseed.db", "Database file path")
		storagePath   = fs.StringLong("storage", "./uploads", "Storage directory path")
		ocrType       = fs.StringLong("ocr", "vision", "OCR provider: 'vision', 'gemini' or 'ollama'")
		llmType       = fs.StringLong("llm", "gemini", "LLM provider: 'gemini', 'openai', 'ollama' or 'none'")
		sessionSecret = fs.StringLong("session-secret", "", "Secret used to sign session cookies (random when empty)")
		sessionTTL    = fs.DurationLong("session-ttl", receipt.DefaultSessionTTL, "Session lifetime")
		secureCookies = fs.BoolLong("secure-cookies", "Mark session cookies Secure (serve over HTTPS)")
		corsOrigins   = fs.StringLong("cors-origins", "*", "Comma separated CORS origins, '*' for any")
		logFormat     = fs.StringLong("log-format", "text", "Log format: 'text' or 'json'")
		showVersion   = fs.BoolLong("version", "Show version information")
	)
	fs.StringVar(&cfg.visionKey, 0, "vision-key", "", "Google Cloud Vision API key (application default credentials when empty)")
	fs.StringVar(&cfg.geminiKey, 0, "gemini-key", "", "Google Gemini API key (or set GEMINI_API_KEY env var)")
	fs.StringVar(&cfg.geminiModel, 0, "gemini-model", "gemini-1.5-flash", "Google Gemini model name")
	fs.StringVar(&cfg.openaiKey, 0, "openai-key", "", "OpenAI API key (or set OPENAI_API_KEY env var)")
	fs.StringVar(&cfg.openaiModel, 0, "openai-model", "gpt-4o-mini", "OpenAI model name")
	fs.StringVar(&cfg.openaiURL, 0, "openai-url", "", "OpenAI compatible API base URL (optional)")
	fs.StringVar(&cfg.ollamaURL, 0, "ollama-url", "http://localhost:11434", "Ollama API base URL")
	fs.StringVar(&cfg.ollamaModel, 0, "ollama-model", "llava", "Ollama model name (e.g., llava, llava-phi3, qwen2-vl)")

	if err := ff.Parse(fs, os.Args[1:],
		ff.WithEnvVarPrefix("RASEED"),
	); err != nil {
		fmt.Fprintf(os.Stderr, "%s\n", ffhelp.Flags(fs))
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	// Check version flag after parsing
	if *showVersion {
		fmt.Println(version)
		os.Exit(0)
	}

	if err := setupLogging(*logFormat); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
	if envErr != nil && !errors.Is(envErr, os.ErrNotExist) {
		slog.Warn("Failed to load .env file", "error", envErr)
	}

	// Initialize database
	slog.Info("Initializing database...")
	db, err := receipt.NewBoltDB(*dbPath)
	if err != nil {
		slog.Error("Failed to initialize database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	// Initialize OCR and LLM providers
	p := &providers{cfg: cfg}
	defer p.Close()

	ocr, err := p.textExtractor(*ocrType)
	if err != nil {
		slog.Error("Failed to initialize OCR", "error", err)
		os.Exit(1)
	}
	model, err := p.model(*llmType)
	if err != nil {
		slog.Error("Failed to initialize LLM", "error", err)
		os.Exit(1)
	}
	if model == nil {
		slog.Info("No LLM configured, using the fallback parser only")
	}

	// Initialize storage
	slog.Info("Initializing storage...")
	store, err := receipt.NewLocalStorage(*storagePath)
	if err != nil {
		slog.Error("Failed to initialize storage", "error", err)
		os.Exit(1)
	}

	// Initialize sessions
	secret := []byte(*sessionSecret)
	if len(secret) == 0 {
		secret = make([]byte, 32)
		if _, err := rand.Read(secret); err != nil {
			slog.Error("Failed to generate session secret", "error", err)
			os.Exit(1)
		}
		slog.Warn("No session secret configured, sessions will not survive a restart")
	}
	sessions, err := receipt.NewSessions(secret, *sessionTTL, nil)
	if err != nil {
		slog.Error("Failed to initialize sessions", "error", err)
		os.Exit(1)
	}
	sessions.SetSecure(*secureCookies)

	// Initialize service
	receiptService := receipt.NewService(db, ocr, scanning.NewExtractor(model, nil), model, store)

	// Initialize server
	server := receipt.NewServer(receiptService, sessions, receipt.ServerConfig{
		AllowedOrigins: splitOrigins(*corsOrigins),
		Services: map[string]bool{
			"ocr":      true,
			"llm":      model != nil,
			"database": true,
			"storage":  true,
		},
	})

	// Start server in goroutine
	addr := fmt.Sprintf(":%d", *port)
	go func() {
		if err := server.Start(addr); err != nil {
			slog.Error("Server error", "error", err)
			os.Exit(1)
		}
	}()

	slog.Info("Server started", "address", fmt.Sprintf("http://localhost%s", addr), "version", version, "ocr", *ocrType, "llm", *llmType)

	// Wait for interrupt signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	slog.Info("Shutting down...")
}

func splitOrigins(s string) []string {
	var origins []string
	for _, origin := range strings.Split(s, ",") {
		if origin = strings.TrimSpace(origin); origin != "" {
			origins = append(origins, origin)
		}
	}
	return origins
}
