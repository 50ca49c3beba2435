package receipt

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/zombor/raseed/internal/i18n"
)

// maxUploadSize covers high-resolution phone photos, plus base64 overhead for JSON uploads
const maxUploadSize = int64(50 << 20)

const uploadTooLarge = "File is too large. Maximum size is 50MB. Please compress or resize your image."

// writeJSON writes v with the given status
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("Error encoding response", "error", err)
	}
}

// writeError writes a JSON error body
func writeError(w http.ResponseWriter, message string, status int) {
	writeJSON(w, status, map[string]string{"error": message})
}

// errorStatus maps service errors to HTTP status codes
func errorStatus(err error) int {
	switch {
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrEmptyImage),
		errors.Is(err, ErrNoText),
		errors.Is(err, ErrEmptyQuery),
		errors.Is(err, ErrInvalidAccount),
		errors.Is(err, ErrUnsupportedLanguage):
		return http.StatusBadRequest
	case errors.Is(err, ErrInvalidCredentials):
		return http.StatusUnauthorized
	case errors.Is(err, ErrEmailTaken):
		return http.StatusConflict
	case errors.Is(err, ErrModelUnavailable):
		return http.StatusServiceUnavailable
	}
	return http.StatusInternalServerError
}

// writeServiceError writes the status mapped from err.
// Unexpected errors are logged and replaced by fallback.
func writeServiceError(w http.ResponseWriter, err error, fallback string) {
	switch status := errorStatus(err); status {
	case http.StatusInternalServerError:
		slog.Error(fallback, "error", err)
		writeError(w, fallback, status)
	case http.StatusNotFound:
		writeError(w, "Not found", status)
	default:
		writeError(w, err.Error(), status)
	}
}

// decodeBody decodes a JSON request body into v
func decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeError(w, "Invalid request body", http.StatusBadRequest)
		return false
	}
	return true
}

// identity returns the session identity stored by requireAuth
func identity(r *http.Request) Identity {
	id, _ := IdentityFromContext(r.Context())
	return id
}

// userView is the public shape of a user
type userView struct {
	Sub      string `json:"sub"`
	Email    string `json:"email"`
	Name     string `json:"name"`
	Picture  string `json:"picture"`
	Language string `json:"language"`
}

func viewOf(user *User) userView {
	return userView{
		Sub:      user.ID,
		Email:    user.Email,
		Name:     user.Name,
		Picture:  user.Picture,
		Language: i18n.Normalize(user.Language),
	}
}

func identityOf(user *User) Identity {
	return Identity{UserID: user.ID, Email: user.Email, Name: user.Name}
}

// handleHealth reports liveness and configured backends
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	services := make(map[string]bool, len(s.config.Services))
	for name, ok := range s.config.Services {
		services[name] = ok
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"status":    "healthy",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"services":  services,
	})
}

// handleLanguages lists the supported interface languages
func (s *Server) handleLanguages(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"success":   true,
		"languages": i18n.Languages(),
		"default":   i18n.DefaultLanguage,
	})
}

type credentials struct {
	Email    string `json:"email"`
	Name     string `json:"name"`
	Password string `json:"password"`
}

// handleSignup creates an account and starts a session
func (s *Server) handleSignup(w http.ResponseWriter, r *http.Request) {
	var req credentials
	if !decodeBody(w, r, &req) {
		return
	}
	user, err := s.service.Signup(req.Email, req.Name, req.Password)
	if err != nil {
		writeServiceError(w, err, "Signup failed")
		return
	}
	s.startSession(w, user, http.StatusCreated)
}

// handleLogin verifies credentials and starts a session
func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req credentials
	if !decodeBody(w, r, &req) {
		return
	}
	user, err := s.service.Login(req.Email, req.Password)
	if err != nil {
		writeServiceError(w, err, "Login failed")
		return
	}
	s.startSession(w, user, http.StatusOK)
}

func (s *Server) startSession(w http.ResponseWriter, user *User, status int) {
	if err := s.sessions.SetCookie(w, identityOf(user)); err != nil {
		slog.Error("Error issuing session", "user_id", user.ID, "error", err)
		writeError(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, status, map[string]any{"success": true, "user": viewOf(user)})
}

// handleLogout clears the session cookie
func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	s.sessions.ClearCookie(w)
	writeJSON(w, http.StatusOK, map[string]any{"success": true})
}

// handleUserInfo returns the signed-in user
func (s *Server) handleUserInfo(w http.ResponseWriter, r *http.Request) {
	user, err := s.service.GetUser(identity(r).UserID)
	if errors.Is(err, ErrNotFound) {
		// The account is gone; the session is meaningless
		s.sessions.ClearCookie(w)
		writeError(w, "Not authenticated", http.StatusUnauthorized)
		return
	}
	if err != nil {
		writeServiceError(w, err, "Error loading user")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "user": viewOf(user)})
}

// handleUpdateLanguage changes the user's language
func (s *Server) handleUpdateLanguage(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Language string `json:"language"`
	}
	if !decodeBody(w, r, &req) {
		return
	}
	if req.Language == "" {
		writeError(w, "Missing language parameter", http.StatusBadRequest)
		return
	}
	if _, err := s.service.UpdateLanguage(identity(r).UserID, req.Language); err != nil {
		writeServiceError(w, err, "Error updating language")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true})
}

// upload is a receipt image read from a request
type upload struct {
	filename    string
	contentType string
	data        []byte
}

// handleProcessReceipt accepts a JSON data URL or a multipart file and processes it
func (s *Server) handleProcessReceipt(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadSize)

	var (
		up  *upload
		msg string
	)
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType == "multipart/form-data" {
		up, msg = readMultipartUpload(r)
	} else {
		up, msg = readJSONUpload(r)
	}
	if up == nil {
		writeError(w, msg, http.StatusBadRequest)
		return
	}

	id := identity(r)
	receipt, err := s.service.ProcessReceipt(r.Context(), id.UserID, up.filename, up.data, up.contentType)
	if err != nil {
		slog.Warn("Receipt not processed", "filename", up.filename, "user_id", id.UserID, "error", err)
		writeServiceError(w, err, "Error processing receipt")
		return
	}

	writeJSON(w, http.StatusCreated, map[string]any{
		"success":   true,
		"data":      receipt.ParsedData,
		"receiptId": receipt.ID,
		"source":    receipt.Source,
	})
}

func isTooLarge(err error) bool {
	var maxErr *http.MaxBytesError
	return errors.As(err, &maxErr)
}

func readMultipartUpload(r *http.Request) (*upload, string) {
	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		slog.Error("Error parsing multipart form", "error", err)
		if isTooLarge(err) {
			return nil, uploadTooLarge
		}
		return nil, "Error parsing form"
	}

	f, header, err := r.FormFile("file")
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) {
			return nil, "No file was selected. Please choose a file to upload."
		}
		return nil, "No file provided"
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		slog.Error("Error reading file data", "error", err, "filename", header.Filename)
		return nil, "Error reading file. Please try again."
	}

	contentType := header.Header.Get("Content-Type")
	if contentType == "" || contentType == "application/octet-stream" {
		contentType = contentTypeFromName(header.Filename)
	}
	return &upload{
		filename:    header.Filename,
		contentType: strings.ToLower(strings.TrimSpace(contentType)),
		data:        data,
	}, ""
}

func readJSONUpload(r *http.Request) (*upload, string) {
	var req struct {
		ImageData string `json:"imageData"`
		Filename  string `json:"filename"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		if isTooLarge(err) {
			return nil, uploadTooLarge
		}
		return nil, "Invalid request body"
	}
	if req.ImageData == "" {
		return nil, "Missing required field: imageData"
	}

	data, contentType, err := decodeDataURL(req.ImageData)
	if err != nil {
		return nil, "imageData is not valid base64"
	}
	filename := req.Filename
	if filename == "" {
		filename = "receipt" + extensionFor(contentType)
	}
	return &upload{filename: filename, contentType: contentType, data: data}, ""
}

// decodeDataURL decodes "data:<type>;base64,<data>" or bare base64, sniffing the type when absent
func decodeDataURL(s string) ([]byte, string, error) {
	contentType := ""
	if rest, ok := strings.CutPrefix(s, "data:"); ok {
		meta, payload, found := strings.Cut(rest, ",")
		if !found {
			return nil, "", errors.New("malformed data URL")
		}
		contentType, _, _ = strings.Cut(meta, ";")
		s = payload
	}

	s = strings.TrimSpace(s)
	data, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		// Some clients strip the padding
		data, err = base64.RawStdEncoding.DecodeString(strings.TrimRight(s, "="))
		if err != nil {
			return nil, "", err
		}
	}

	if contentType == "" {
		contentType = http.DetectContentType(data)
	}
	return data, strings.ToLower(contentType), nil
}

func contentTypeFromName(filename string) string {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".jpg", ".jpeg":
		return "image/jpeg"
	case ".png":
		return "image/png"
	case ".gif":
		return "image/gif"
	case ".pdf":
		return "application/pdf"
	case ".heic":
		return "image/heic"
	case ".heif":
		return "image/heif"
	}
	return "application/octet-stream"
}

func extensionFor(contentType string) string {
	switch contentType {
	case "image/png":
		return ".png"
	case "image/gif":
		return ".gif"
	case "application/pdf":
		return ".pdf"
	case "image/heic":
		return ".heic"
	case "image/heif":
		return ".heif"
	}
	return ".jpg"
}

// handleListReceipts returns the user's receipts, newest first
func (s *Server) handleListReceipts(w http.ResponseWriter, r *http.Request) {
	receipts, err := s.service.ListReceipts(identity(r).UserID)
	if err != nil {
		writeServiceError(w, err, "Error listing receipts")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "receipts": receipts})
}

// handleGetReceipt returns a single receipt
func (s *Server) handleGetReceipt(w http.ResponseWriter, r *http.Request) {
	receipt, err := s.service.GetReceipt(identity(r).UserID, r.PathValue("id"))
	if err != nil {
		writeServiceError(w, err, "Error loading receipt")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "receipt": receipt})
}

// handleGetReceiptFile returns the stored image of a receipt
func (s *Server) handleGetReceiptFile(w http.ResponseWriter, r *http.Request) {
	data, contentType, err := s.service.GetReceiptFile(identity(r).UserID, r.PathValue("id"))
	if err != nil {
		writeServiceError(w, err, "Error loading file")
		return
	}

	w.Header().Set("Content-Type", contentType)
	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.Write(data)
}

// handleDeleteReceipt deletes a receipt and its image
func (s *Server) handleDeleteReceipt(w http.ResponseWriter, r *http.Request) {
	if err := s.service.DeleteReceipt(identity(r).UserID, r.PathValue("id")); err != nil {
		writeServiceError(w, err, "Error deleting receipt")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true})
}

// handleExport downloads the user's receipts as a spreadsheet
func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	data, err := s.service.ExportReceipts(identity(r).UserID)
	if err != nil {
		writeServiceError(w, err, "Error exporting receipts")
		return
	}

	w.Header().Set("Content-Type", ExportContentType)
	w.Header().Set("Content-Disposition", `attachment; filename="raseed-receipts.xlsx"`)
	w.Write(data)
}

// handleStats returns spending statistics
func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	stats, err := s.service.Stats(identity(r).UserID)
	if err != nil {
		writeServiceError(w, err, "Error computing stats")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "stats": stats})
}

// handleProcessQuery answers a spending question
func (s *Server) handleProcessQuery(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Query    string `json:"query"`
		Language string `json:"language"`
	}
	if !decodeBody(w, r, &req) {
		return
	}
	if strings.TrimSpace(req.Query) == "" {
		writeError(w, "Missing required field: query", http.StatusBadRequest)
		return
	}

	id := identity(r)
	language := req.Language
	if language == "" {
		if user, err := s.service.GetUser(id.UserID); err == nil {
			language = user.Language
		}
	}

	answer, err := s.service.AskQuestion(r.Context(), id.UserID, req.Query, language)
	if err != nil {
		writeServiceError(w, err, "Error processing query")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "response": answer})
}

// handleCreateWalletPass returns a wallet pass descriptor for a receipt
func (s *Server) handleCreateWalletPass(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ReceiptID string `json:"receiptId"`
	}
	if !decodeBody(w, r, &req) {
		return
	}
	if req.ReceiptID == "" {
		writeError(w, "Missing receiptId", http.StatusBadRequest)
		return
	}

	pass, err := s.service.CreateWalletPass(identity(r).UserID, req.ReceiptID)
	if err != nil {
		writeServiceError(w, err, "Error creating wallet pass")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "walletPass": pass})
}
