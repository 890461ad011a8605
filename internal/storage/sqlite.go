// Package storage provides SQLite persistence for wipe votes and holds.
package storage

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"time"

	"github.com/axieum/hlna/internal/domain"
	_ "modernc.org/sqlite"
)

// ErrDuplicateHold is returned when a hold already exists for a target.
var ErrDuplicateHold = errors.New("hold already exists for target")

// formatTimestamp converts time.Time to SQLite-compatible UTC ISO8601 string
// The Z suffix ensures the Go sqlite driver parses it back as UTC
func formatTimestamp(t time.Time) string {
	return t.UTC().Format("2006-01-02T15:04:05Z")
}

func parseTimestamp(s string) time.Time {
	t, _ := time.Parse("2006-01-02T15:04:05Z", s)
	return t
}

//go:embed schema.sql
var schema string

// Store provides database access
type Store struct {
	db *sql.DB
}

// New creates a new Store with the given database path
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	// SQLite only supports one writer at a time, so limit connections
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if _, err := db.Exec("PRAGMA foreign_keys = ON; PRAGMA journal_mode = WAL; PRAGMA busy_timeout = 5000;"); err != nil {
		db.Close()
		return nil, fmt.Errorf("setting pragmas: %w", err)
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}

	return &Store{db: db}, nil
}

// Close closes the database connection
func (s *Store) Close() error {
	return s.db.Close()
}

// --- Wipe vote methods ---

// CreateVote records a new wipe vote in the pending state.
func (s *Store) CreateVote(ctx context.Context, v *domain.WipeVote) error {
	if v.Outcome == "" {
		v.Outcome = domain.OutcomePending
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO wipe_votes (id, user_id, target, external_poll_id, outcome, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, v.ID, v.UserID, v.Target, v.ExternalPollID, string(v.Outcome), formatTimestamp(v.CreatedAt))
	return err
}

// SetVotePoll attaches the external poll identifier to a vote.
func (s *Store) SetVotePoll(ctx context.Context, voteID, pollID string) error {
	_, err := s.db.ExecContext(ctx, `
		UPDATE wipe_votes SET external_poll_id = ? WHERE id = ?
	`, pollID, voteID)
	return err
}

// ResolveVote moves a pending vote into a terminal outcome. Resolving an
// already-resolved vote is a no-op.
func (s *Store) ResolveVote(ctx context.Context, voteID string, outcome domain.Outcome) error {
	_, err := s.db.ExecContext(ctx, `
		UPDATE wipe_votes SET outcome = ? WHERE id = ? AND outcome = 'pending'
	`, string(outcome), voteID)
	return err
}

// GetVote returns a vote by ID, or nil when none exists.
func (s *Store) GetVote(ctx context.Context, voteID string) (*domain.WipeVote, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, user_id, target, external_poll_id, outcome, created_at
		FROM wipe_votes WHERE id = ?
	`, voteID)
	return scanVote(row)
}

// PendingVote returns the in-flight vote for a target, or nil when the
// target has no open vote.
func (s *Store) PendingVote(ctx context.Context, target string) (*domain.WipeVote, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, user_id, target, external_poll_id, outcome, created_at
		FROM wipe_votes WHERE target = ? AND outcome = 'pending'
		ORDER BY created_at DESC LIMIT 1
	`, target)
	return scanVote(row)
}

// LastSuccessfulVote returns the most recent succeeded vote for a target,
// or nil when the target has never been wiped.
func (s *Store) LastSuccessfulVote(ctx context.Context, target string) (*domain.WipeVote, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, user_id, target, external_poll_id, outcome, created_at
		FROM wipe_votes WHERE target = ? AND outcome = 'succeeded'
		ORDER BY created_at DESC LIMIT 1
	`, target)
	return scanVote(row)
}

// RecentVotes returns the newest votes across all targets, newest first.
func (s *Store) RecentVotes(ctx context.Context, limit int) ([]domain.WipeVote, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, user_id, target, external_poll_id, outcome, created_at
		FROM wipe_votes ORDER BY created_at DESC LIMIT ?
	`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var votes []domain.WipeVote
	for rows.Next() {
		var v domain.WipeVote
		var outcome, createdAt string
		if err := rows.Scan(&v.ID, &v.UserID, &v.Target, &v.ExternalPollID, &outcome, &createdAt); err != nil {
			return nil, err
		}
		v.Outcome = domain.Outcome(outcome)
		v.CreatedAt = parseTimestamp(createdAt)
		votes = append(votes, v)
	}
	return votes, rows.Err()
}

func scanVote(row *sql.Row) (*domain.WipeVote, error) {
	var v domain.WipeVote
	var outcome, createdAt string
	err := row.Scan(&v.ID, &v.UserID, &v.Target, &v.ExternalPollID, &outcome, &createdAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	v.Outcome = domain.Outcome(outcome)
	v.CreatedAt = parseTimestamp(createdAt)
	return &v, nil
}

// --- Hold methods ---

// CreateHold places an administrative hold on a target. At most one hold
// may exist per target.
func (s *Store) CreateHold(ctx context.Context, h *domain.Hold) error {
	result, err := s.db.ExecContext(ctx, `
		INSERT INTO holds (id, user_id, target, created_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(target) DO NOTHING
	`, h.ID, h.UserID, h.Target, formatTimestamp(h.CreatedAt))
	if err != nil {
		return err
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return ErrDuplicateHold
	}
	return nil
}

// GetHold returns the hold for a target, or nil when no hold exists.
func (s *Store) GetHold(ctx context.Context, target string) (*domain.Hold, error) {
	var h domain.Hold
	var createdAt string
	err := s.db.QueryRowContext(ctx, `
		SELECT id, user_id, target, created_at FROM holds WHERE target = ?
	`, target).Scan(&h.ID, &h.UserID, &h.Target, &createdAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	h.CreatedAt = parseTimestamp(createdAt)
	return &h, nil
}

// ListHolds returns all holds, oldest first.
func (s *Store) ListHolds(ctx context.Context) ([]domain.Hold, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, user_id, target, created_at FROM holds ORDER BY created_at
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var holds []domain.Hold
	for rows.Next() {
		var h domain.Hold
		var createdAt string
		if err := rows.Scan(&h.ID, &h.UserID, &h.Target, &createdAt); err != nil {
			return nil, err
		}
		h.CreatedAt = parseTimestamp(createdAt)
		holds = append(holds, h)
	}
	return holds, rows.Err()
}

// DeleteHold removes the hold for a target. Returns whether a hold existed.
func (s *Store) DeleteHold(ctx context.Context, target string) (bool, error) {
	result, err := s.db.ExecContext(ctx, `DELETE FROM holds WHERE target = ?`, target)
	if err != nil {
		return false, err
	}
	rows, _ := result.RowsAffected()
	return rows > 0, nil
}
