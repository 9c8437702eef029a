// Package events persists selection and detection events to SQLite for
// later inspection and replay seeding.
package events

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

// #region schema
const schema = `
CREATE TABLE IF NOT EXISTS selection_events (
	event_id      TEXT PRIMARY KEY,
	template_id   TEXT,
	mode          TEXT NOT NULL,
	tool_name     TEXT,
	input_text    TEXT,
	confidence    REAL,
	ambiguous     INTEGER NOT NULL DEFAULT 0,
	scores_json   TEXT,
	created_at    TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS detection_events (
	event_id      TEXT PRIMARY KEY,
	source        TEXT NOT NULL,
	signal        TEXT NOT NULL,
	m_score       REAL NOT NULL,
	coherence     REAL NOT NULL,
	dominant      TEXT,
	detail_json   TEXT,
	created_at    TEXT NOT NULL
);
`

// #endregion schema

// #region records

// SelectionEvent is one persisted selection outcome.
type SelectionEvent struct {
	EventID    string
	TemplateID string
	Mode       string
	ToolName   string
	InputText  string
	Confidence float64
	Ambiguous  bool
	Scores     json.RawMessage
	CreatedAt  time.Time
}

// DetectionEvent is one persisted kernel detection outcome.
type DetectionEvent struct {
	EventID   string
	Source    string
	Signal    string
	MScore    float64
	Coherence float64
	Dominant  string
	Detail    json.RawMessage
	CreatedAt time.Time
}

// #endregion records

// #region store

// Store manages the event log in SQLite.
type Store struct {
	db *sql.DB
}

// NewStore opens the database and runs migrations.
func NewStore(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		return nil, fmt.Errorf("pragma: %w", err)
	}
	if _, err := db.Exec("PRAGMA foreign_keys=ON"); err != nil {
		return nil, fmt.Errorf("pragma fk: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return &Store{db: db}, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// #endregion store

// #region log-selection

// LogSelection records a selection outcome and returns its event ID.
func (s *Store) LogSelection(ev SelectionEvent) (string, error) {
	id := uuid.New().String()
	createdAt := ev.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}
	ambiguous := 0
	if ev.Ambiguous {
		ambiguous = 1
	}

	_, err := s.db.Exec(
		`INSERT INTO selection_events
		 (event_id, template_id, mode, tool_name, input_text, confidence, ambiguous, scores_json, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		id, ev.TemplateID, ev.Mode, ev.ToolName, ev.InputText,
		ev.Confidence, ambiguous, string(ev.Scores), createdAt.Format(time.RFC3339Nano),
	)
	if err != nil {
		return "", fmt.Errorf("insert selection event: %w", err)
	}
	return id, nil
}

// #endregion log-selection

// #region log-detection

// LogDetection records a kernel detection outcome and returns its event ID.
func (s *Store) LogDetection(ev DetectionEvent) (string, error) {
	id := uuid.New().String()
	createdAt := ev.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}

	_, err := s.db.Exec(
		`INSERT INTO detection_events
		 (event_id, source, signal, m_score, coherence, dominant, detail_json, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		id, ev.Source, ev.Signal, ev.MScore, ev.Coherence, ev.Dominant,
		string(ev.Detail), createdAt.Format(time.RFC3339Nano),
	)
	if err != nil {
		return "", fmt.Errorf("insert detection event: %w", err)
	}
	return id, nil
}

// #endregion log-detection

// #region queries

// RecentSelections returns the newest selection events, newest first.
func (s *Store) RecentSelections(limit int) ([]SelectionEvent, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.Query(
		`SELECT event_id, template_id, mode, tool_name, input_text, confidence, ambiguous, scores_json, created_at
		 FROM selection_events ORDER BY created_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query selection events: %w", err)
	}
	defer rows.Close()

	var events []SelectionEvent
	for rows.Next() {
		var ev SelectionEvent
		var ambiguous int
		var scores, createdAt string
		if err := rows.Scan(&ev.EventID, &ev.TemplateID, &ev.Mode, &ev.ToolName,
			&ev.InputText, &ev.Confidence, &ambiguous, &scores, &createdAt); err != nil {
			return nil, fmt.Errorf("scan selection event: %w", err)
		}
		ev.Ambiguous = ambiguous != 0
		ev.Scores = json.RawMessage(scores)
		if ts, err := time.Parse(time.RFC3339Nano, createdAt); err == nil {
			ev.CreatedAt = ts
		}
		events = append(events, ev)
	}
	return events, rows.Err()
}

// RecentDetections returns the newest detection events, newest first.
func (s *Store) RecentDetections(limit int) ([]DetectionEvent, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.Query(
		`SELECT event_id, source, signal, m_score, coherence, dominant, detail_json, created_at
		 FROM detection_events ORDER BY created_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query detection events: %w", err)
	}
	defer rows.Close()

	var events []DetectionEvent
	for rows.Next() {
		var ev DetectionEvent
		var detail, createdAt string
		if err := rows.Scan(&ev.EventID, &ev.Source, &ev.Signal, &ev.MScore,
			&ev.Coherence, &ev.Dominant, &detail, &createdAt); err != nil {
			return nil, fmt.Errorf("scan detection event: %w", err)
		}
		ev.Detail = json.RawMessage(detail)
		if ts, err := time.Parse(time.RFC3339Nano, createdAt); err == nil {
			ev.CreatedAt = ts
		}
		events = append(events, ev)
	}
	return events, rows.Err()
}

// #endregion queries
