package receipt

import (
	"errors"
	"fmt"
	"net/mail"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/zombor/raseed/internal/i18n"
)

const minPasswordLength = 8

// Signup creates a local account
func (s *Service) Signup(email, name, password string) (*User, error) {
	email = normalizeEmail(email)
	if addr, err := mail.ParseAddress(email); err != nil || addr.Address != email {
		return nil, fmt.Errorf("%w: invalid email address", ErrInvalidAccount)
	}
	if len(password) < minPasswordLength {
		return nil, fmt.Errorf("%w: password must be at least %d characters", ErrInvalidAccount, minPasswordLength)
	}
	name = strings.TrimSpace(name)
	if name == "" {
		name = strings.SplitN(email, "@", 2)[0]
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hashing password: %w", err)
	}

	s.signupMu.Lock()
	defer s.signupMu.Unlock()

	_, err = s.db.GetUserByEmail(email)
	if err == nil {
		return nil, ErrEmailTaken
	}
	if !errors.Is(err, ErrNotFound) {
		return nil, fmt.Errorf("looking up email: %w", err)
	}

	now := s.timeSource.Now()
	user := &User{
		ID:           s.idGenerator.Generate(),
		Email:        email,
		Name:         name,
		PasswordHash: hash,
		Language:     i18n.DefaultLanguage,
		CreatedAt:    now,
		LastLogin:    now,
	}
	if err := s.db.SaveUser(user); err != nil {
		return nil, fmt.Errorf("saving user: %w", err)
	}
	return user, nil
}

// Login verifies credentials and records the login time
func (s *Service) Login(email, password string) (*User, error) {
	user, err := s.db.GetUserByEmail(email)
	if errors.Is(err, ErrNotFound) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, fmt.Errorf("looking up email: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword(user.PasswordHash, []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	user.LastLogin = s.timeSource.Now()
	if err := s.db.SaveUser(user); err != nil {
		return nil, fmt.Errorf("saving user: %w", err)
	}
	return user, nil
}

// GetUser retrieves a user by ID
func (s *Service) GetUser(id string) (*User, error) {
	user, err := s.db.GetUser(id)
	if err != nil {
		return nil, fmt.Errorf("getting user: %w", err)
	}
	return user, nil
}

// UpdateLanguage changes a user's interface and answer language
func (s *Service) UpdateLanguage(userID, language string) (*User, error) {
	if !i18n.Supported(language) {
		return nil, fmt.Errorf("%q: %w", language, ErrUnsupportedLanguage)
	}

	user, err := s.db.GetUser(userID)
	if err != nil {
		return nil, fmt.Errorf("getting user: %w", err)
	}
	user.Language = language
	if err := s.db.SaveUser(user); err != nil {
		return nil, fmt.Errorf("saving user: %w", err)
	}
	return user, nil
}
