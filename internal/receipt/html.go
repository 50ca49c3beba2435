package receipt

import (
	"bytes"
	_ "embed"
	"html/template"
	"log/slog"
	"net/http"

	"github.com/zombor/raseed/internal/i18n"
)

//go:embed static/index.html
var indexHTML string

var indexTemplate = template.Must(template.New("index").Parse(indexHTML))

// indexPage is the data rendered into the HTML interface
type indexPage struct {
	Lang      string
	Texts     i18n.Texts
	Languages []i18n.Language
	SignedIn  bool
	Name      string
}

// pageLanguage picks ?lang= when supported, then the signed-in user's preference
func (s *Server) pageLanguage(r *http.Request, signedIn bool, userID string) string {
	if lang := r.URL.Query().Get("lang"); i18n.Supported(lang) {
		return lang
	}
	if signedIn {
		if user, err := s.service.GetUser(userID); err == nil {
			return i18n.Normalize(user.Language)
		}
	}
	return i18n.DefaultLanguage
}

// handleIndex serves the HTML interface
func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	id, signedIn := s.sessions.FromRequest(r)
	lang := s.pageLanguage(r, signedIn, id.UserID)

	var buf bytes.Buffer
	err := indexTemplate.Execute(&buf, indexPage{
		Lang:      lang,
		Texts:     i18n.TextsFor(lang),
		Languages: i18n.Languages(),
		SignedIn:  signedIn,
		Name:      id.Name,
	})
	if err != nil {
		slog.Error("Error rendering index", "error", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write(buf.Bytes())
}
