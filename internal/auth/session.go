// Package auth implements account registration and opaque-token session
// management for the hostwatch API. Passwords are stored as bcrypt digests;
// session tokens are 256-bit random values held in memory only, so a restart
// logs everyone out while accounts survive in the database.
package auth

import (
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"sync"
	"time"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"hostwatch/internal/store"
)

var (
	// ErrDuplicateUser is returned by Register for an already-taken username.
	ErrDuplicateUser = errors.New("user already exists")
	// ErrInvalidCredentials is returned by Login on unknown user or bad password.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrUnauthenticated is returned by Validate for unknown or expired tokens.
	ErrUnauthenticated = errors.New("invalid or expired token")
)

// Session is one live authenticated credential.
type Session struct {
	Token     string
	Username  string
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// Manager owns the user table and the live-session map. All methods are safe
// for concurrent use by API request goroutines. A user may hold any number of
// concurrent sessions; a new login never invalidates earlier tokens.
type Manager struct {
	users *store.UserStore
	ttl   time.Duration

	mu       sync.RWMutex
	sessions map[string]Session
}

// NewManager creates a Manager issuing tokens valid for ttl.
func NewManager(users *store.UserStore, ttl time.Duration) *Manager {
	return &Manager{
		users:    users,
		ttl:      ttl,
		sessions: make(map[string]Session),
	}
}

// Register creates a new account with a bcrypt password digest.
func (m *Manager) Register(username, password string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hashing password: %w", err)
	}
	if err := m.users.Create(username, string(hash)); err != nil {
		if errors.Is(err, store.ErrDuplicateUser) {
			return ErrDuplicateUser
		}
		return err
	}
	return nil
}

// Login verifies credentials and mints a new session token.
func (m *Manager) Login(username, password string) (*Session, error) {
	user, err := m.users.FindByUsername(username)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return nil, ErrInvalidCredentials
	}

	token, err := newToken()
	if err != nil {
		return nil, err
	}
	now := time.Now()
	sess := Session{
		Token:     token,
		Username:  username,
		IssuedAt:  now,
		ExpiresAt: now.Add(m.ttl),
	}

	m.mu.Lock()
	m.sessions[token] = sess
	m.mu.Unlock()

	return &sess, nil
}

// Validate resolves a token to its username. An expired session is purged on
// this failing lookup rather than held forever.
func (m *Manager) Validate(token string) (string, error) {
	m.mu.RLock()
	sess, ok := m.sessions[token]
	m.mu.RUnlock()
	if !ok {
		return "", ErrUnauthenticated
	}

	if time.Now().After(sess.ExpiresAt) {
		m.mu.Lock()
		delete(m.sessions, token)
		m.mu.Unlock()
		return "", ErrUnauthenticated
	}
	return sess.Username, nil
}

// Logout removes the session. Removing an unknown token is treated as success
// so that logout stays idempotent.
func (m *Manager) Logout(token string) {
	m.mu.Lock()
	delete(m.sessions, token)
	m.mu.Unlock()
}

// LiveSessions reports how many unexpired tokens are currently held.
func (m *Manager) LiveSessions() int {
	now := time.Now()
	m.mu.RLock()
	defer m.mu.RUnlock()
	n := 0
	for _, s := range m.sessions {
		if now.Before(s.ExpiresAt) {
			n++
		}
	}
	return n
}

// newToken mints a 256-bit random opaque token, URL-safe encoded.
func newToken() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("minting token: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}
