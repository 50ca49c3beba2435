package receipt

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const (
	// SessionCookieName is the cookie carrying the session token
	SessionCookieName = "raseed_session"

	// DefaultSessionTTL is how long a login lasts
	DefaultSessionTTL = 7 * 24 * time.Hour

	sessionIssuer = "raseed"
)

// Identity is the authenticated user of a request
type Identity struct {
	UserID string
	Email  string
	Name   string
}

type identityKey struct{}

// WithIdentity returns a context carrying identity
func WithIdentity(ctx context.Context, identity Identity) context.Context {
	return context.WithValue(ctx, identityKey{}, identity)
}

// IdentityFromContext returns the identity stored by WithIdentity
func IdentityFromContext(ctx context.Context) (Identity, bool) {
	identity, ok := ctx.Value(identityKey{}).(Identity)
	return identity, ok
}

type sessionClaims struct {
	Email string `json:"email"`
	Name  string `json:"name"`
	jwt.RegisteredClaims
}

// Sessions issues and verifies signed session cookies
type Sessions struct {
	secret     []byte
	ttl        time.Duration
	timeSource TimeSource
	secure     bool
}

// NewSessions creates a session signer. A zero ttl uses DefaultSessionTTL.
func NewSessions(secret []byte, ttl time.Duration, timeSrc TimeSource) (*Sessions, error) {
	if len(secret) == 0 {
		return nil, errors.New("session secret is required")
	}
	if ttl <= 0 {
		ttl = DefaultSessionTTL
	}
	if timeSrc == nil {
		timeSrc = &defaultTimeSource{}
	}
	return &Sessions{secret: secret, ttl: ttl, timeSource: timeSrc}, nil
}

// SetSecure marks cookies Secure, for deployments behind TLS
func (s *Sessions) SetSecure(secure bool) {
	s.secure = secure
}

// Issue signs a session token for identity
func (s *Sessions) Issue(identity Identity) (string, error) {
	now := s.timeSource.Now()
	claims := sessionClaims{
		Email: identity.Email,
		Name:  identity.Name,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    sessionIssuer,
			Subject:   identity.UserID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("signing session: %w", err)
	}
	return token, nil
}

// Verify checks a session token and returns its identity
func (s *Sessions) Verify(token string) (Identity, error) {
	var claims sessionClaims
	_, err := jwt.ParseWithClaims(token, &claims, func(*jwt.Token) (any, error) {
		return s.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(sessionIssuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.timeSource.Now),
	)
	if err != nil {
		return Identity{}, fmt.Errorf("verifying session: %w", err)
	}
	if claims.Subject == "" {
		return Identity{}, errors.New("verifying session: missing subject")
	}
	return Identity{UserID: claims.Subject, Email: claims.Email, Name: claims.Name}, nil
}

// SetCookie writes a fresh session cookie for identity
func (s *Sessions) SetCookie(w http.ResponseWriter, identity Identity) error {
	token, err := s.Issue(identity)
	if err != nil {
		return err
	}
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(s.ttl.Seconds()),
		HttpOnly: true,
		Secure:   s.secure,
		SameSite: http.SameSiteLaxMode,
	})
	return nil
}

// ClearCookie expires the session cookie
func (s *Sessions) ClearCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   s.secure,
		SameSite: http.SameSiteLaxMode,
	})
}

// FromRequest returns the identity of a request's session cookie, if valid
func (s *Sessions) FromRequest(r *http.Request) (Identity, bool) {
	cookie, err := r.Cookie(SessionCookieName)
	if err != nil || cookie.Value == "" {
		return Identity{}, false
	}
	identity, err := s.Verify(cookie.Value)
	if err != nil {
		return Identity{}, false
	}
	return identity, true
}
