// Package session persists catalog access tokens between runs.
//
// The music catalog issues short-lived bearer tokens through the OAuth
// client-credentials flow. Fetching one costs a round trip, so tokens are
// kept in a [Store] until they expire:
//   - [MemoryStore]: process-local, used by the API server and in tests
//   - [FileStore]: JSON files under ~/.config/covercluster/sessions, used by the CLI
//
// # Usage
//
//	store, err := session.NewFileStore("")
//	sess, err := store.Get(ctx, "spotify")
//	if sess == nil {
//	    token, ttl := requestToken()
//	    sess, _ = session.New("spotify", token, ttl)
//	    store.Set(ctx, sess)
//	}
package session

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"time"
)

// ErrInvalidID is returned when a session ID cannot be used as a key.
var ErrInvalidID = errors.New("invalid session id")

// expirySkew treats a token as expired slightly before the catalog does, so
// a request never starts with a token that dies in flight.
const expirySkew = 30 * time.Second

// Session stores one access token.
type Session struct {
	ID          string    `json:"id"`
	AccessToken string    `json:"access_token"`
	TokenType   string    `json:"token_type,omitempty"`
	ExpiresAt   time.Time `json:"expires_at"`
	CreatedAt   time.Time `json:"created_at"`
}

// IsExpired returns true if the token is expired or about to expire.
func (s *Session) IsExpired() bool {
	return time.Now().Add(expirySkew).After(s.ExpiresAt)
}

// Store is the interface for session storage backends.
type Store interface {
	// Get retrieves a session by ID.
	// Returns nil, nil if the session doesn't exist or has expired.
	Get(ctx context.Context, sessionID string) (*Session, error)

	// Set stores a session.
	Set(ctx context.Context, session *Session) error

	// Delete removes a session.
	Delete(ctx context.Context, sessionID string) error

	// Cleanup removes expired sessions.
	Cleanup(ctx context.Context) error
}

// GenerateID creates a cryptographically secure random session ID.
func GenerateID() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}

// New creates a session holding accessToken for ttl. An empty id gets a
// random one.
func New(id, accessToken string, ttl time.Duration) (*Session, error) {
	if id == "" {
		var err error
		if id, err = GenerateID(); err != nil {
			return nil, err
		}
	}

	now := time.Now()
	return &Session{
		ID:          id,
		AccessToken: accessToken,
		TokenType:   "Bearer",
		ExpiresAt:   now.Add(ttl),
		CreatedAt:   now,
	}, nil
}

// validID rejects IDs that would escape a FileStore directory.
func validID(id string) bool {
	if id == "" || id == "." || id == ".." {
		return false
	}
	for _, r := range id {
		if r == '/' || r == '\\' || r == 0 {
			return false
		}
	}
	return true
}
