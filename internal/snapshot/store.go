// Package snapshot persists fetched issue batches locally so analyses
// and exports can be re-run without hitting the tracker again.
package snapshot

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// ErrNotFound indicates no snapshot matches the given ID or prefix.
var ErrNotFound = errors.New("snapshot not found")

// ErrAmbiguousID indicates an ID prefix matches more than one snapshot.
var ErrAmbiguousID = errors.New("snapshot id prefix is ambiguous")

// Snapshot is one saved batch of issues with the query that produced
// it. Issues holds the raw issue documents exactly as the tracker
// returned them.
type Snapshot struct {
	ID         string
	Label      string
	JQL        string
	TakenAt    time.Time
	Issues     []json.RawMessage
	IssueCount int
}

// Store reads and writes snapshots in SQLite.
type Store struct {
	db *sql.DB
}

// NewStore creates a Store on an already-migrated database.
func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

// Save persists a new snapshot and returns its generated ID.
func (s *Store) Save(ctx context.Context, label, jql string, issues []json.RawMessage) (*Snapshot, error) {
	doc, err := json.Marshal(issues)
	if err != nil {
		return nil, fmt.Errorf("encoding issues: %w", err)
	}

	snap := &Snapshot{
		ID:         uuid.NewString(),
		Label:      label,
		JQL:        jql,
		TakenAt:    time.Now().UTC(),
		Issues:     issues,
		IssueCount: len(issues),
	}

	query := `INSERT INTO snapshots (id, label, jql, taken_at, issues, issue_count)
		VALUES (?, ?, ?, ?, ?, ?)`
	_, err = s.db.ExecContext(ctx, query,
		snap.ID,
		snap.Label,
		snap.JQL,
		snap.TakenAt.Format(time.RFC3339),
		string(doc),
		snap.IssueCount,
	)
	if err != nil {
		return nil, fmt.Errorf("inserting snapshot: %w", err)
	}
	return snap, nil
}

// Get loads a snapshot by full ID or unique ID prefix. The prefix is
// matched literally, so LIKE wildcards in the input do not over-match.
func (s *Store) Get(ctx context.Context, idOrPrefix string) (*Snapshot, error) {
	query := `SELECT id, label, jql, taken_at, issues, issue_count
		FROM snapshots WHERE substr(id, 1, length(?)) = ? ORDER BY taken_at DESC LIMIT 2`
	rows, err := s.db.QueryContext(ctx, query, idOrPrefix, idOrPrefix)
	if err != nil {
		return nil, fmt.Errorf("querying snapshot: %w", err)
	}
	defer rows.Close()

	var matches []*Snapshot
	for rows.Next() {
		snap, err := scanSnapshot(rows, true)
		if err != nil {
			return nil, err
		}
		matches = append(matches, snap)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("reading snapshot rows: %w", err)
	}

	switch len(matches) {
	case 0:
		return nil, fmt.Errorf("%w: %s", ErrNotFound, idOrPrefix)
	case 1:
		return matches[0], nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrAmbiguousID, idOrPrefix)
	}
}

// List returns snapshot metadata newest first, without issue bodies.
func (s *Store) List(ctx context.Context) ([]*Snapshot, error) {
	query := `SELECT id, label, jql, taken_at, issue_count
		FROM snapshots ORDER BY taken_at DESC`
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("listing snapshots: %w", err)
	}
	defer rows.Close()

	var snaps []*Snapshot
	for rows.Next() {
		snap, err := scanSnapshot(rows, false)
		if err != nil {
			return nil, err
		}
		snaps = append(snaps, snap)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("reading snapshot rows: %w", err)
	}
	return snaps, nil
}

// Delete removes a snapshot by full ID.
func (s *Store) Delete(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM snapshots WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting snapshot: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking delete result: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return nil
}

func scanSnapshot(rows *sql.Rows, withIssues bool) (*Snapshot, error) {
	var (
		snap       Snapshot
		takenAt    string
		issuesJSON string
	)
	var err error
	if withIssues {
		err = rows.Scan(&snap.ID, &snap.Label, &snap.JQL, &takenAt, &issuesJSON, &snap.IssueCount)
	} else {
		err = rows.Scan(&snap.ID, &snap.Label, &snap.JQL, &takenAt, &snap.IssueCount)
	}
	if err != nil {
		return nil, fmt.Errorf("scanning snapshot: %w", err)
	}

	snap.TakenAt, err = time.Parse(time.RFC3339, takenAt)
	if err != nil {
		return nil, fmt.Errorf("parsing snapshot timestamp: %w", err)
	}
	if withIssues {
		if err := json.Unmarshal([]byte(issuesJSON), &snap.Issues); err != nil {
			return nil, fmt.Errorf("decoding snapshot issues: %w", err)
		}
	}
	return &snap, nil
}
