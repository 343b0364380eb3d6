// Package session keeps the operator's local login between CLI runs. It is
// a convenience marker only and carries no credentials.
package session

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	jsoniter "github.com/json-iterator/go"
)

const RoleManager = "manager"

var (
	ErrInvalidCredentials = errors.New("email and password are required")
	ErrNotLoggedIn        = errors.New("not logged in")
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

type Session struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	Role      string    `json:"role"`
	LoginTime time.Time `json:"loginTime"`
}

// Store persists one session as a JSON file.
type Store struct {
	Path string
}

// DefaultPath is $XDG_CONFIG_HOME/bookstore/session.json, falling back to
// the platform config directory.
func DefaultPath() (string, error) {
	dir := os.Getenv("XDG_CONFIG_HOME")
	if dir == "" {
		var err error
		if dir, err = os.UserConfigDir(); err != nil {
			return "", fmt.Errorf("failed to resolve config directory: %w", err)
		}
	}
	return filepath.Join(dir, "bookstore", "session.json"), nil
}

func NewStore(path string) *Store {
	return &Store{Path: path}
}

// Login records a session for email. Any non-empty password is accepted.
func (s *Store) Login(email, password string, now time.Time) (*Session, error) {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return nil, ErrInvalidCredentials
	}

	name := email
	if at := strings.Index(email, "@"); at > 0 {
		name = email[:at]
	}

	sess := &Session{
		ID:        uuid.NewString(),
		Email:     email,
		Name:      name,
		Role:      RoleManager,
		LoginTime: now.UTC(),
	}
	if err := s.save(sess); err != nil {
		return nil, err
	}
	return sess, nil
}

// Current returns the stored session. A corrupt file is removed and
// reported as ErrNotLoggedIn.
func (s *Store) Current() (*Session, error) {
	data, err := os.ReadFile(s.Path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, ErrNotLoggedIn
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read session: %w", err)
	}

	var sess Session
	if err := json.Unmarshal(data, &sess); err != nil || sess.Email == "" {
		_ = os.Remove(s.Path)
		return nil, ErrNotLoggedIn
	}
	return &sess, nil
}

// Logout removes the session. Logging out twice is not an error.
func (s *Store) Logout() error {
	if err := os.Remove(s.Path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to remove session: %w", err)
	}
	return nil
}

func (s *Store) save(sess *Session) error {
	if err := os.MkdirAll(filepath.Dir(s.Path), 0o700); err != nil {
		return fmt.Errorf("failed to create session directory: %w", err)
	}
	data, err := json.MarshalIndent(sess, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(s.Path, data, 0o600)
}
