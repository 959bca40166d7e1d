// Package session persists a ConversationMemory's derived state and message
// list to SQLite, so a long-running agent can resume a conversation across
// process restarts with its importance levels, tool-call pairing, and error
// resolution history intact rather than recomputed from a cold start.
package session

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/entrhq/forge/pkg/agent/memory"
	"github.com/entrhq/forge/pkg/logging"
	"github.com/entrhq/forge/pkg/types"
	_ "modernc.org/sqlite"
)

var debugLog *logging.Logger

func init() {
	var err error
	debugLog, err = logging.NewLogger("session")
	if err != nil {
		debugLog.Warnf("Failed to initialize session logger, using stderr fallback: %v", err)
	}
}

// Store is a SQLite-backed repository of conversation sessions, each keyed
// by an opaque session ID the host assigns.
type Store struct {
	db *sql.DB
}

// Open creates or opens a SQLite database at path and ensures its schema
// exists. Pass ":memory:" for an ephemeral, process-local store (useful in
// tests).
func Open(path string) (*Store, error) {
	if path == "" {
		path = ":memory:"
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("session: failed to open database: %w", err)
	}

	s := &Store{db: db}
	if err := s.init(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func (s *Store) init() error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS sessions (
			id TEXT PRIMARY KEY,
			payload TEXT NOT NULL,
			messages TEXT NOT NULL,
			updated_at DATETIME NOT NULL
		)
	`)
	if err != nil {
		return fmt.Errorf("session: failed to create sessions table: %w", err)
	}
	return nil
}

// Close releases the underlying database handle.
func (s *Store) Close() error {
	return s.db.Close()
}

// Save serializes a ConversationMemory's derived state and message list and
// upserts it under sessionID.
func (s *Store) Save(ctx context.Context, sessionID string, mem *memory.ConversationMemory, messages []*types.Message) error {
	payload := mem.ToSerializable()

	payloadJSON, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("session: failed to marshal payload: %w", err)
	}
	messagesJSON, err := json.Marshal(messages)
	if err != nil {
		return fmt.Errorf("session: failed to marshal messages: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO sessions (id, payload, messages, updated_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET payload = excluded.payload, messages = excluded.messages, updated_at = excluded.updated_at
	`, sessionID, string(payloadJSON), string(messagesJSON), time.Now())
	if err != nil {
		return fmt.Errorf("session: failed to save session %q: %w", sessionID, err)
	}
	return nil
}

// Load reconstructs a ConversationMemory for sessionID. ErrNotFound is
// returned if no session with that ID has been saved.
func (s *Store) Load(ctx context.Context, sessionID string, opts ...memory.Option) (*memory.ConversationMemory, error) {
	var payloadJSON, messagesJSON string
	err := s.db.QueryRowContext(ctx, `SELECT payload, messages FROM sessions WHERE id = ?`, sessionID).
		Scan(&payloadJSON, &messagesJSON)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("session: %q: %w", sessionID, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("session: failed to load session %q: %w", sessionID, err)
	}

	var payload memory.SerializablePayload
	if err := json.Unmarshal([]byte(payloadJSON), &payload); err != nil {
		return nil, fmt.Errorf("session: failed to unmarshal payload: %w", err)
	}
	var messages []*types.Message
	if err := json.Unmarshal([]byte(messagesJSON), &messages); err != nil {
		return nil, fmt.Errorf("session: failed to unmarshal messages: %w", err)
	}

	return memory.FromSerializable(&payload, messages, opts...)
}

// Delete removes a session. It is not an error to delete one that doesn't exist.
func (s *Store) Delete(ctx context.Context, sessionID string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM sessions WHERE id = ?`, sessionID)
	if err != nil {
		return fmt.Errorf("session: failed to delete session %q: %w", sessionID, err)
	}
	return nil
}

// List returns every saved session ID, most recently updated first.
func (s *Store) List(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id FROM sessions ORDER BY updated_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("session: failed to list sessions: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("session: failed to scan session id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
