package receipt

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/cors"
)

// ServerConfig holds the HTTP settings that do not belong to the service
type ServerConfig struct {
	// AllowedOrigins lists the CORS origins. Empty or "*" allows any origin without credentials.
	AllowedOrigins []string

	// Services reports which backends are configured, for the health endpoint
	Services map[string]bool
}

// Server handles HTTP requests for receipts and accounts
type Server struct {
	service  *Service
	sessions *Sessions
	config   ServerConfig
	mux      *http.ServeMux
	handler  http.Handler
}

// NewServer creates a new Server with default mux
func NewServer(service *Service, sessions *Sessions, config ServerConfig) *Server {
	return NewServerWithMux(service, sessions, config, http.NewServeMux())
}

// NewServerWithMux creates a new Server with a custom mux for testing
func NewServerWithMux(service *Service, sessions *Sessions, config ServerConfig, mux *http.ServeMux) *Server {
	s := &Server{
		service:  service,
		sessions: sessions,
		config:   config,
		mux:      mux,
	}
	s.registerRoutes()
	s.handler = corsHandler(config.AllowedOrigins)(mux)
	return s
}

// corsHandler answers preflight requests and sets CORS headers on every response
func corsHandler(origins []string) func(http.Handler) http.Handler {
	anyOrigin := len(origins) == 0 || (len(origins) == 1 && origins[0] == "*")
	if anyOrigin {
		origins = []string{"*"}
	}
	return cors.Handler(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Content-Disposition"},
		AllowCredentials: !anyOrigin,
		MaxAge:           3600,
	})
}

// requireAuth rejects requests without a valid session and stores the identity on the context
func (s *Server) requireAuth(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		identity, ok := s.sessions.FromRequest(r)
		if !ok {
			writeError(w, "Not authenticated", http.StatusUnauthorized)
			return
		}
		next(w, r.WithContext(WithIdentity(r.Context(), identity)))
	}
}

// registerRoutes registers all routes on the server's mux
func (s *Server) registerRoutes() {
	// Public endpoints
	s.mux.HandleFunc("GET /api/health", s.handleHealth)
	s.mux.HandleFunc("GET /api/languages", s.handleLanguages)
	s.mux.HandleFunc("POST /api/auth/signup", s.handleSignup)
	s.mux.HandleFunc("POST /api/auth/login", s.handleLogin)
	s.mux.HandleFunc("POST /api/logout", s.handleLogout)

	// Account
	s.mux.HandleFunc("GET /api/user-info", s.requireAuth(s.handleUserInfo))
	s.mux.HandleFunc("POST /api/update-language", s.requireAuth(s.handleUpdateLanguage))

	// Receipts (most specific paths first)
	s.mux.HandleFunc("POST /api/process-receipt", s.requireAuth(s.handleProcessReceipt))
	s.mux.HandleFunc("GET /api/get-receipts", s.requireAuth(s.handleListReceipts))
	s.mux.HandleFunc("GET /api/receipts/{id}/file", s.requireAuth(s.handleGetReceiptFile))
	s.mux.HandleFunc("GET /api/receipts/{id}", s.requireAuth(s.handleGetReceipt))
	s.mux.HandleFunc("DELETE /api/receipts/{id}", s.requireAuth(s.handleDeleteReceipt))
	s.mux.HandleFunc("GET /api/export", s.requireAuth(s.handleExport))

	// Insights
	s.mux.HandleFunc("GET /api/stats", s.requireAuth(s.handleStats))
	s.mux.HandleFunc("POST /api/process-query", s.requireAuth(s.handleProcessQuery))
	s.mux.HandleFunc("POST /api/create-wallet-pass", s.requireAuth(s.handleCreateWalletPass))

	// HTML interface (register last as it's the catch-all)
	s.mux.HandleFunc("GET /{$}", s.handleIndex)
	s.mux.HandleFunc("GET /index.html", s.handleIndex)
}

// Start starts the HTTP server
func (s *Server) Start(addr string) error {
	slog.Info("Starting server", "address", addr)
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.handler,
		ReadHeaderTimeout: 10 * time.Second,
	}
	return srv.ListenAndServe()
}

// ServeHTTP implements http.Handler
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.handler.ServeHTTP(w, r)
}
