// Package session owns the only client state that outlives a process:
// the bearer token and the signed-in user, kept under fixed keys in a
// durable store. The Manager is injected into the API client as its
// token source instead of being read ad hoc.
package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/ashraf950/timesheet-client/internal/core/datamodel/user"
)

const (
	KeyToken = "token"
	KeyUser  = "user"
)

// Store is durable key/value storage for session values.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Put(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, keys ...string) error
}

type Session struct {
	Token string    `json:"token"`
	User  user.User `json:"user"`
}

type Manager struct {
	store  Store
	cipher *Cipher
	logger *slog.Logger

	mu    sync.RWMutex
	token string
	user  *user.User
}

func NewManager(store Store, cipher *Cipher, logger *slog.Logger) *Manager {
	if cipher == nil {
		cipher = &Cipher{}
	}
	return &Manager{store: store, cipher: cipher, logger: logger}
}

// Init loads a persisted session. A session counts only when both the
// token and the user are present; unreadable values are wiped so the
// next login starts clean.
func (m *Manager) Init(ctx context.Context) error {
	token, hasToken, err := m.read(ctx, KeyToken)
	if err != nil {
		return m.discard(ctx, "token unreadable", err)
	}
	rawUser, hasUser, err := m.read(ctx, KeyUser)
	if err != nil {
		return m.discard(ctx, "user unreadable", err)
	}

	if !hasToken || !hasUser || len(token) == 0 {
		m.set("", nil)
		return nil
	}

	var u user.User
	if err := json.Unmarshal(rawUser, &u); err != nil {
		return m.discard(ctx, "user record corrupt", err)
	}

	m.set(string(token), &u)
	m.logger.Debug("session restored", "user_id", u.Key(), "role", u.Role)
	return nil
}

// Save makes token and u the current session and persists both. The
// in-memory session is updated even if persisting fails.
func (m *Manager) Save(ctx context.Context, token string, u user.User) error {
	m.set(token, &u)

	rawUser, err := json.Marshal(u)
	if err != nil {
		return fmt.Errorf("failed to marshal user: %w", err)
	}
	if err := m.write(ctx, KeyToken, []byte(token)); err != nil {
		return err
	}
	if err := m.write(ctx, KeyUser, rawUser); err != nil {
		// A token without its user is not a session.
		if delErr := m.store.Delete(ctx, KeyToken); delErr != nil {
			m.logger.Warn("failed to roll back session token", "error", delErr)
		}
		return err
	}
	m.logger.Debug("session saved", "user_id", u.Key())
	return nil
}

func (m *Manager) Clear(ctx context.Context) error {
	m.set("", nil)
	if err := m.store.Delete(ctx, KeyToken, KeyUser); err != nil {
		return fmt.Errorf("failed to clear session: %w", err)
	}
	return nil
}

// Token implements api.TokenSource.
func (m *Manager) Token() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.token
}

func (m *Manager) User() (user.User, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.user == nil {
		return user.User{}, false
	}
	return *m.user, true
}

func (m *Manager) Current() (Session, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.user == nil || m.token == "" {
		return Session{}, false
	}
	return Session{Token: m.token, User: *m.user}, true
}

// ExpiresAt reads the exp claim of the current token without verifying
// its signature; the client cannot verify it and only uses it for
// display. ok is false for opaque tokens or tokens without exp.
func (m *Manager) ExpiresAt() (time.Time, bool) {
	token := m.Token()
	if token == "" {
		return time.Time{}, false
	}
	claims := jwt.RegisteredClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, &claims); err != nil {
		return time.Time{}, false
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return time.Time{}, false
	}
	return exp.Time, true
}

func (m *Manager) set(token string, u *user.User) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.token = token
	m.user = u
}

func (m *Manager) read(ctx context.Context, key string) ([]byte, bool, error) {
	sealed, ok, err := m.store.Get(ctx, key)
	if err != nil || !ok {
		return nil, ok, err
	}
	plain, err := m.cipher.Open(sealed)
	if err != nil {
		return nil, false, err
	}
	return plain, true, nil
}

func (m *Manager) write(ctx context.Context, key string, value []byte) error {
	sealed, err := m.cipher.Seal(value)
	if err != nil {
		return fmt.Errorf("failed to seal %s: %w", key, err)
	}
	if err := m.store.Put(ctx, key, sealed); err != nil {
		return fmt.Errorf("failed to persist %s: %w", key, err)
	}
	return nil
}

func (m *Manager) discard(ctx context.Context, reason string, cause error) error {
	m.logger.Warn("discarding stored session", "reason", reason, "error", cause)
	m.set("", nil)
	if err := m.store.Delete(ctx, KeyToken, KeyUser); err != nil {
		return errors.Join(cause, err)
	}
	return nil
}
