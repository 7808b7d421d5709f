// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package session holds the identity of the acting user and its durable
// mirror. The Store is the only writer of the mirror: SetIdentity and Clear
// write it, Rehydrate reads it at process start.
package session

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/pdiddy/univ-insight/pkg/types"
)

// mirrorKey names the single record holding the serialized identity.
const mirrorKey = "user"

// Store is the authoritative in-memory identity plus its SQLite mirror.
// The zero value is not usable; call Open.
type Store struct {
	mu       sync.RWMutex
	db       *sql.DB
	identity *types.Identity
	lastErr  error
	logger   *slog.Logger
}

// Open opens or creates the mirror database at cfg.Path. The store starts
// unauthenticated; call Rehydrate to restore a persisted identity.
func Open(cfg types.SessionConfig, logger *slog.Logger) (*Store, error) {
	if cfg.Path == "" {
		return nil, fmt.Errorf("session path is required")
	}
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if err := os.MkdirAll(filepath.Dir(cfg.Path), 0o700); err != nil {
		return nil, fmt.Errorf("creating session directory: %w", err)
	}

	db, err := sql.Open("sqlite3", cfg.Path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("opening session database: %w", err)
	}
	// One connection keeps writes strictly ordered behind the store mutex.
	db.SetMaxOpenConns(1)

	s := &Store{db: db, logger: logger}
	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating session schema: %w", err)
	}
	return s, nil
}

// Close releases the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) createSchema() error {
	_, err := s.db.Exec(`CREATE TABLE IF NOT EXISTS session_mirror (
		name TEXT PRIMARY KEY,
		payload TEXT NOT NULL,
		updated_at TEXT NOT NULL
	)`)
	return err
}

// SetIdentity replaces the current identity, marks the session
// authenticated, clears the last error, and persists the mirror. Memory is
// only updated after the mirror write commits, under the same lock, so the
// two never disagree. Interests are normalized before storing.
func (s *Store) SetIdentity(ctx context.Context, id types.Identity) error {
	if err := id.Validate(); err != nil {
		return err
	}
	id.Interests = types.NormalizeInterests(id.Interests)
	if id.CreatedAt.IsZero() {
		id.CreatedAt = time.Now().UTC().Truncate(time.Second)
	}

	payload, err := json.Marshal(id)
	if err != nil {
		return fmt.Errorf("encoding identity: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO session_mirror (name, payload, updated_at) VALUES (?, ?, ?)
		 ON CONFLICT(name) DO UPDATE SET payload = excluded.payload, updated_at = excluded.updated_at`,
		mirrorKey, string(payload), time.Now().UTC().Format(time.RFC3339))
	if err != nil {
		s.lastErr = fmt.Errorf("persisting identity: %w", err)
		return s.lastErr
	}

	s.identity = &id
	s.lastErr = nil
	return nil
}

// ErrMirrorRetained reports that Clear emptied memory but could not erase
// the mirror, so the identity will come back at the next Rehydrate.
var ErrMirrorRetained = errors.New("session mirror could not be erased")

// Clear drops the identity from memory and erases the mirror. The erase is
// attempted twice. Memory is cleared even when both attempts fail; the
// returned error then wraps ErrMirrorRetained.
func (s *Store) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.identity = nil
	s.lastErr = nil
	var err error
	for i := 0; i < 2; i++ {
		if _, err = s.db.ExecContext(ctx, `DELETE FROM session_mirror WHERE name = ?`, mirrorKey); err == nil {
			return nil
		}
	}
	s.logger.Warn("session mirror survived logout", "error", err)
	s.lastErr = fmt.Errorf("%w: %w", ErrMirrorRetained, err)
	return s.lastErr
}

// Rehydrate restores the identity from the mirror. A missing, unreadable,
// or malformed mirror leaves the store unauthenticated; it never fails.
// It reports whether an identity was restored.
func (s *Store) Rehydrate(ctx context.Context) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.identity = nil

	var payload string
	err := s.db.QueryRowContext(ctx,
		`SELECT payload FROM session_mirror WHERE name = ?`, mirrorKey).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return false
	}
	if err != nil {
		s.logger.Warn("session mirror unreadable, starting logged out", "error", err)
		return false
	}

	var id types.Identity
	if err := json.Unmarshal([]byte(payload), &id); err != nil {
		s.logger.Warn("discarding malformed session mirror", "error", err)
		return false
	}
	if err := id.Validate(); err != nil {
		s.logger.Warn("discarding invalid session mirror", "error", err)
		return false
	}
	id.Interests = types.NormalizeInterests(id.Interests)

	s.identity = &id
	return true
}

// Identity returns a copy of the current identity and whether one is set.
func (s *Store) Identity() (types.Identity, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.identity == nil {
		return types.Identity{}, false
	}
	id := *s.identity
	id.Interests = append([]string(nil), s.identity.Interests...)
	if id.Interests == nil {
		id.Interests = []string{}
	}
	return id, true
}

// IsAuthenticated reports whether an identity is present.
func (s *Store) IsAuthenticated() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.identity != nil
}

// UserID returns the current user id, or "" when logged out.
func (s *Store) UserID() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.identity == nil {
		return ""
	}
	return s.identity.ID
}

// Err returns the error of the last failed mirror write, if any.
func (s *Store) Err() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastErr
}
