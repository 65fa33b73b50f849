// Package auth holds the tokens issued by the backend and answers the one
// question the client can decide locally: has the access token expired.
package auth

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Tokens is the payload of a successful POST /auth/token.
type Tokens struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

// Store keeps the current tokens in memory and mirrors them to disk so a
// restarted client stays logged in. Safe for concurrent use.
type Store struct {
	dir string

	mu     sync.RWMutex
	tokens *Tokens
}

func NewStore(dir string) *Store {
	if dir == "" {
		home, _ := os.UserHomeDir()
		dir = filepath.Join(home, ".chatlink")
	}

	s := &Store{dir: dir}
	_ = s.load()
	return s
}

func (s *Store) tokensFile() string {
	return filepath.Join(s.dir, "tokens.json")
}

func (s *Store) load() error {
	data, err := os.ReadFile(s.tokensFile())
	if err != nil {
		return err
	}

	var t Tokens
	if err := json.Unmarshal(data, &t); err != nil {
		return err
	}

	s.mu.Lock()
	s.tokens = &t
	s.mu.Unlock()
	return nil
}

// Set replaces the current tokens and persists them with owner-only
// permissions.
func (s *Store) Set(t *Tokens) error {
	s.mu.Lock()
	s.tokens = t
	s.mu.Unlock()

	if err := os.MkdirAll(s.dir, 0o700); err != nil {
		return err
	}
	data, err := json.Marshal(t)
	if err != nil {
		return err
	}
	return os.WriteFile(s.tokensFile(), data, 0o600)
}

// Clear drops tokens from memory and disk, used on auth failure.
func (s *Store) Clear() {
	s.mu.Lock()
	s.tokens = nil
	s.mu.Unlock()

	_ = os.Remove(s.tokensFile())
}

// Access returns the current access token, or "" when logged out.
func (s *Store) Access() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.tokens == nil {
		return ""
	}
	return s.tokens.AccessToken
}

// UserID reads the subject claim from the access token. The claim set is
// not verified here; the server is the authority and rejects bad tokens.
func (s *Store) UserID() string {
	claims := s.claims()
	if claims == nil {
		return ""
	}
	return claims.Subject
}

// Username reads the custom username claim, falling back to "" when the
// token does not carry one.
func (s *Store) Username() string {
	access := s.Access()
	if access == "" {
		return ""
	}

	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(access, claims); err != nil {
		return ""
	}
	name, _ := claims["username"].(string)
	return name
}

// Expired reports whether the access token is missing or past its exp
// claim. Tokens without an exp claim are treated as live.
func (s *Store) Expired() bool {
	claims := s.claims()
	if claims == nil {
		return true
	}
	if claims.ExpiresAt == nil {
		return false
	}
	return time.Now().After(claims.ExpiresAt.Time)
}

func (s *Store) claims() *jwt.RegisteredClaims {
	access := s.Access()
	if access == "" {
		return nil
	}

	claims := &jwt.RegisteredClaims{}
	// Unverified parse: the client holds no signing secret.
	_, _, err := jwt.NewParser().ParseUnverified(access, claims)
	if err != nil {
		return nil
	}
	return claims
}
