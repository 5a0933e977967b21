package store

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"

	"go-reseller-ws/internal/kv"
	"go-reseller-ws/internal/model"

	"github.com/google/uuid"
	"github.com/pkg/errors"
)

const (
	// SessionStorageKey is the single slot session state lives in.
	SessionStorageKey = "resellr-auth-storage"
	// SessionSchemaVersion is bumped whenever persistedSession changes shape.
	SessionSchemaVersion = 1
)

type SessionUser struct {
	ID       uuid.UUID  `json:"id"`
	Email    string     `json:"email"`
	Username string     `json:"username"`
	FullName string     `json:"full_name"`
	Role     model.Role `json:"role"`
	Token    string     `json:"token,omitempty"`
}

type persistedSession struct {
	Version int          `json:"version"`
	User    *SessionUser `json:"user"`
}

// SessionStore holds at most one authenticated identity. It is read from the
// key-value slot on construction and written back on every mutation.
type SessionStore struct {
	kv     kv.KeyValueStore
	logger *slog.Logger

	mu   sync.Mutex
	user *SessionUser
}

func NewSessionStore(ctx context.Context, storage kv.KeyValueStore, logger *slog.Logger) (*SessionStore, error) {
	if logger == nil {
		logger = slog.Default()
	}
	s := &SessionStore{kv: storage, logger: logger.With("component", "session_store")}

	raw, err := storage.Get(ctx, SessionStorageKey)
	if errors.Is(err, kv.ErrNotFound) {
		return s, nil
	}
	if err != nil {
		return nil, errors.Wrap(err, "read session")
	}

	var doc persistedSession
	if err := json.Unmarshal(raw, &doc); err != nil {
		s.logger.Warn("discarding unreadable session", "error", err)
		return s, nil
	}
	if doc.Version != SessionSchemaVersion {
		s.logger.Warn("ignoring session with unsupported schema version", "version", doc.Version)
		return s, nil
	}
	if doc.User != nil && doc.User.Role.IsValid() && doc.User.ID != uuid.Nil {
		u := *doc.User
		s.user = &u
	}
	return s, nil
}

// SetUser replaces the current identity. The in-memory value changes only
// after the slot is written.
func (s *SessionStore) SetUser(ctx context.Context, user SessionUser) error {
	if !user.Role.IsValid() {
		return ErrInvalidRole
	}
	if user.ID == uuid.Nil {
		return ErrInvalidSession
	}

	raw, err := json.Marshal(persistedSession{Version: SessionSchemaVersion, User: &user})
	if err != nil {
		return errors.Wrap(err, "encode session")
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.kv.Set(ctx, SessionStorageKey, raw); err != nil {
		return errors.Wrap(err, "write session")
	}
	s.user = &user
	return nil
}

func (s *SessionStore) Logout(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.kv.Delete(ctx, SessionStorageKey); err != nil {
		return errors.Wrap(err, "clear session")
	}
	s.user = nil
	return nil
}

func (s *SessionStore) User() (SessionUser, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.user == nil {
		return SessionUser{}, false
	}
	return *s.user, true
}

// Role returns nil when nobody is signed in.
func (s *SessionStore) Role() *model.Role {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.user == nil {
		return nil
	}
	r := s.user.Role
	return &r
}

func (s *SessionStore) IsAuthenticated() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.user != nil
}
