package audit

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/ziadkadry99/qarelay/internal/db"
	"github.com/ziadkadry99/qarelay/internal/qa"
)

// Store provides read and write access to the dispatch log.
type Store struct {
	db *db.DB
}

// NewStore creates a Store backed by the given database.
func NewStore(database *db.DB) *Store {
	return &Store{db: database}
}

// RecordDispatch implements qa.Recorder.
func (s *Store) RecordDispatch(ctx context.Context, rec qa.DispatchRecord) error {
	return s.Log(ctx, EntryFromRecord(rec))
}

// Log inserts a new entry. If entry.ID is empty a UUID is generated.
func (s *Store) Log(ctx context.Context, entry Entry) error {
	if entry.ID == "" {
		entry.ID = uuid.New().String()
	}

	attempts := entry.Attempts
	if attempts == nil {
		attempts = []qa.Attempt{}
	}
	attemptsJSON, err := json.Marshal(attempts)
	if err != nil {
		return fmt.Errorf("marshalling attempts: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO dispatch_log (
			id, request_id, question, outcome, model, status,
			reason, attempts, latency_ms
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		entry.ID,
		entry.RequestID,
		entry.Question,
		string(entry.Outcome),
		entry.Model,
		entry.Status,
		entry.Reason,
		string(attemptsJSON),
		entry.LatencyMs,
	)
	if err != nil {
		return fmt.Errorf("inserting dispatch entry: %w", err)
	}
	return nil
}

// GetByID retrieves a single entry.
func (s *Store) GetByID(ctx context.Context, id string) (*Entry, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+columns+` FROM dispatch_log WHERE id = ?`, id)
	return scanInto(row)
}

// QueryFilter controls which entries are returned by Query.
type QueryFilter struct {
	Outcome Outcome
	Model   string
	Since   *time.Time
	Until   *time.Time
	Limit   int
	Offset  int
}

// Query returns entries matching the filter, newest first.
func (s *Store) Query(ctx context.Context, filter QueryFilter) ([]Entry, error) {
	var (
		clauses []string
		args    []any
	)

	if filter.Outcome != "" {
		clauses = append(clauses, "outcome = ?")
		args = append(args, string(filter.Outcome))
	}
	if filter.Model != "" {
		clauses = append(clauses, "model = ?")
		args = append(args, filter.Model)
	}
	if filter.Since != nil {
		clauses = append(clauses, "timestamp >= ?")
		args = append(args, filter.Since.UTC().Format(time.DateTime))
	}
	if filter.Until != nil {
		clauses = append(clauses, "timestamp <= ?")
		args = append(args, filter.Until.UTC().Format(time.DateTime))
	}

	query := "SELECT " + columns + " FROM dispatch_log"
	if len(clauses) > 0 {
		query += " WHERE " + strings.Join(clauses, " AND ")
	}
	query += " ORDER BY timestamp DESC, rowid DESC"

	if filter.Limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", filter.Limit)
		if filter.Offset > 0 {
			query += fmt.Sprintf(" OFFSET %d", filter.Offset)
		}
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying dispatch log: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		e, err := scanInto(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, *e)
	}
	return entries, rows.Err()
}

// CountByOutcome returns how many dispatches ended with each outcome.
func (s *Store) CountByOutcome(ctx context.Context) (map[Outcome]int, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT outcome, COUNT(*) FROM dispatch_log GROUP BY outcome")
	if err != nil {
		return nil, fmt.Errorf("counting dispatch outcomes: %w", err)
	}
	defer rows.Close()

	counts := make(map[Outcome]int)
	for rows.Next() {
		var (
			outcome string
			n       int
		)
		if err := rows.Scan(&outcome, &n); err != nil {
			return nil, err
		}
		counts[Outcome(outcome)] = n
	}
	return counts, rows.Err()
}

// DeleteBefore removes all entries older than the given time.
// Returns the number of deleted rows.
func (s *Store) DeleteBefore(ctx context.Context, before time.Time) (int64, error) {
	res, err := s.db.ExecContext(ctx,
		"DELETE FROM dispatch_log WHERE timestamp < ?",
		before.UTC().Format(time.DateTime),
	)
	if err != nil {
		return 0, fmt.Errorf("deleting old dispatch entries: %w", err)
	}
	return res.RowsAffected()
}

const columns = "id, timestamp, request_id, question, outcome, model, status, reason, attempts, latency_ms"

// scanner is implemented by both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanInto(sc scanner) (*Entry, error) {
	var (
		e            Entry
		ts           string
		outcome      string
		attemptsJSON string
	)

	err := sc.Scan(
		&e.ID, &ts, &e.RequestID, &e.Question, &outcome, &e.Model,
		&e.Status, &e.Reason, &attemptsJSON, &e.LatencyMs,
	)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("dispatch entry not found: %w", err)
	}
	if err != nil {
		return nil, err
	}

	e.Outcome = Outcome(outcome)

	if t, parseErr := time.Parse(time.DateTime, ts); parseErr == nil {
		e.Timestamp = t
	} else if t, parseErr := time.Parse(time.RFC3339, ts); parseErr == nil {
		e.Timestamp = t
	}

	if err := json.Unmarshal([]byte(attemptsJSON), &e.Attempts); err != nil {
		e.Attempts = nil
	}

	return &e, nil
}
