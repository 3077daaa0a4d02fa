package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// ErrSessionNotFound is returned when a session ID has no stored state.
var ErrSessionNotFound = errors.New("session not found")

// SessionInfo summarizes a stored session for listings.
type SessionInfo struct {
	ID        string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// SessionRepo persists interview session state as opaque JSON blobs.
// The interview package owns the serialization format.
type SessionRepo struct {
	db *sql.DB
}

// Save upserts the state blob for a session.
func (r *SessionRepo) Save(ctx context.Context, id string, state []byte) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO sessions (id, state, updated_at) VALUES (?, ?, CURRENT_TIMESTAMP)
		 ON CONFLICT (id) DO UPDATE SET state = excluded.state, updated_at = CURRENT_TIMESTAMP`,
		id, string(state))
	if err != nil {
		return fmt.Errorf("save session %s: %w", id, err)
	}
	return nil
}

// Load returns the state blob for a session.
func (r *SessionRepo) Load(ctx context.Context, id string) ([]byte, error) {
	var state string
	err := r.db.QueryRowContext(ctx,
		`SELECT state FROM sessions WHERE id = ?`, id).Scan(&state)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrSessionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load session %s: %w", id, err)
	}
	return []byte(state), nil
}

// List returns all stored sessions, most recently updated first.
func (r *SessionRepo) List(ctx context.Context) ([]SessionInfo, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, created_at, updated_at FROM sessions ORDER BY updated_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	defer rows.Close()

	var out []SessionInfo
	for rows.Next() {
		var info SessionInfo
		if err := rows.Scan(&info.ID, &info.CreatedAt, &info.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan session: %w", err)
		}
		out = append(out, info)
	}
	return out, rows.Err()
}

// Delete removes a session. Deleting a missing session is not an error.
func (r *SessionRepo) Delete(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM sessions WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete session %s: %w", id, err)
	}
	return nil
}
