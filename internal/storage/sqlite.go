package storage

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/rhetorlabs/rhetor/internal/core"
)

// SQLiteStorage implements Storage using SQLite.
type SQLiteStorage struct {
	db   *sql.DB
	path string
}

// NewSQLiteStorage creates a new SQLite storage instance.
func NewSQLiteStorage(dbPath string) (*SQLiteStorage, error) {
	// Ensure directory exists
	dir := filepath.Dir(dbPath)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	return &SQLiteStorage{
		db:   db,
		path: dbPath,
	}, nil
}

// Initialize creates the database schema.
func (s *SQLiteStorage) Initialize() error {
	schema := `
	CREATE TABLE IF NOT EXISTS sessions (
		id TEXT PRIMARY KEY,
		topic TEXT NOT NULL,
		scientist_json TEXT NOT NULL,
		philosopher_json TEXT NOT NULL,
		memory_summary TEXT NOT NULL DEFAULT '',
		current_round INTEGER NOT NULL DEFAULT 1,
		current_speaker TEXT NOT NULL,
		rounds INTEGER NOT NULL,
		status TEXT NOT NULL DEFAULT 'pending',
		winner TEXT,
		judgment_reason TEXT,
		full_summary TEXT,
		created_at DATETIME NOT NULL,
		updated_at DATETIME NOT NULL,
		completed_at DATETIME
	);

	CREATE TABLE IF NOT EXISTS arguments (
		id TEXT PRIMARY KEY,
		session_id TEXT NOT NULL,
		agent TEXT NOT NULL,
		round_num INTEGER NOT NULL,
		content TEXT NOT NULL,
		created_at DATETIME NOT NULL,
		FOREIGN KEY (session_id) REFERENCES sessions(id) ON DELETE CASCADE,
		UNIQUE (session_id, round_num)
	);

	CREATE INDEX IF NOT EXISTS idx_arguments_session_id ON arguments(session_id);
	CREATE INDEX IF NOT EXISTS idx_sessions_status ON sessions(status);
	CREATE INDEX IF NOT EXISTS idx_sessions_created_at ON sessions(created_at DESC);
	`

	_, err := s.db.Exec(schema)
	if err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}

	return nil
}

// Close closes the database connection.
func (s *SQLiteStorage) Close() error {
	return s.db.Close()
}

// CreateSession creates a new session.
func (s *SQLiteStorage) CreateSession(session *core.Session) error {
	scientistJSON, err := json.Marshal(session.Scientist)
	if err != nil {
		return fmt.Errorf("failed to marshal scientist agent: %w", err)
	}

	philosopherJSON, err := json.Marshal(session.Philosopher)
	if err != nil {
		return fmt.Errorf("failed to marshal philosopher agent: %w", err)
	}

	query := `
	INSERT INTO sessions (id, topic, scientist_json, philosopher_json, memory_summary, current_round, current_speaker, rounds, status, winner, judgment_reason, full_summary, created_at, updated_at, completed_at)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err = s.db.Exec(query,
		session.ID,
		session.Topic,
		string(scientistJSON),
		string(philosopherJSON),
		session.MemorySummary,
		session.CurrentRound,
		string(session.CurrentSpeaker),
		session.Rounds,
		session.Status,
		nullableString(string(session.Winner)),
		nullableString(session.JudgmentReason),
		nullableString(session.FullSummary),
		session.CreatedAt,
		session.UpdatedAt,
		session.CompletedAt,
	)

	if err != nil {
		return fmt.Errorf("failed to insert session: %w", err)
	}

	return nil
}

// GetSession retrieves a session by ID, including its arguments.
func (s *SQLiteStorage) GetSession(id string) (*core.Session, error) {
	query := `
	SELECT id, topic, scientist_json, philosopher_json, memory_summary, current_round, current_speaker, rounds, status, winner, judgment_reason, full_summary, created_at, updated_at, completed_at
	FROM sessions
	WHERE id = ?
	`

	var session core.Session
	var scientistJSON, philosopherJSON, currentSpeaker string
	var winner, judgmentReason, fullSummary sql.NullString
	var completedAt sql.NullTime

	err := s.db.QueryRow(query, id).Scan(
		&session.ID,
		&session.Topic,
		&scientistJSON,
		&philosopherJSON,
		&session.MemorySummary,
		&session.CurrentRound,
		&currentSpeaker,
		&session.Rounds,
		&session.Status,
		&winner,
		&judgmentReason,
		&fullSummary,
		&session.CreatedAt,
		&session.UpdatedAt,
		&completedAt,
	)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get session: %w", err)
	}

	if err := json.Unmarshal([]byte(scientistJSON), &session.Scientist); err != nil {
		return nil, fmt.Errorf("failed to unmarshal scientist agent: %w", err)
	}
	if err := json.Unmarshal([]byte(philosopherJSON), &session.Philosopher); err != nil {
		return nil, fmt.Errorf("failed to unmarshal philosopher agent: %w", err)
	}

	session.CurrentSpeaker = core.Role(currentSpeaker)
	if winner.Valid {
		session.Winner = core.Role(winner.String)
	}
	if judgmentReason.Valid {
		session.JudgmentReason = judgmentReason.String
	}
	if fullSummary.Valid {
		session.FullSummary = fullSummary.String
	}
	if completedAt.Valid {
		session.CompletedAt = &completedAt.Time
	}

	args, err := s.GetArguments(id)
	if err != nil {
		return nil, err
	}
	session.Arguments = args

	return &session, nil
}

// UpdateSession updates an existing session.
func (s *SQLiteStorage) UpdateSession(session *core.Session) error {
	session.UpdatedAt = time.Now()

	query := `
	UPDATE sessions
	SET memory_summary = ?, current_round = ?, current_speaker = ?, status = ?, winner = ?, judgment_reason = ?, full_summary = ?, updated_at = ?, completed_at = ?
	WHERE id = ?
	`

	_, err := s.db.Exec(query,
		session.MemorySummary,
		session.CurrentRound,
		string(session.CurrentSpeaker),
		session.Status,
		nullableString(string(session.Winner)),
		nullableString(session.JudgmentReason),
		nullableString(session.FullSummary),
		session.UpdatedAt,
		session.CompletedAt,
		session.ID,
	)

	if err != nil {
		return fmt.Errorf("failed to update session: %w", err)
	}

	return nil
}

// DeleteSession deletes a session and its arguments.
func (s *SQLiteStorage) DeleteSession(id string) error {
	_, err := s.db.Exec("DELETE FROM sessions WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}

// ListSessions returns a list of session summaries, newest first.
func (s *SQLiteStorage) ListSessions(limit, offset int) ([]*core.SessionSummary, error) {
	query := `
	SELECT s.id, s.topic, s.status, s.winner, s.created_at,
		   (SELECT COUNT(*) FROM arguments WHERE session_id = s.id) as argument_count
	FROM sessions s
	ORDER BY s.created_at DESC
	LIMIT ? OFFSET ?
	`

	rows, err := s.db.Query(query, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list sessions: %w", err)
	}
	defer rows.Close()

	var summaries []*core.SessionSummary
	for rows.Next() {
		var summary core.SessionSummary
		var winner sql.NullString

		err := rows.Scan(
			&summary.ID,
			&summary.Topic,
			&summary.Status,
			&winner,
			&summary.CreatedAt,
			&summary.ArgumentCount,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan session summary: %w", err)
		}

		if winner.Valid {
			summary.Winner = core.Role(winner.String)
		}

		summaries = append(summaries, &summary)
	}

	return summaries, rows.Err()
}

// AddArgument adds an argument to a session.
func (s *SQLiteStorage) AddArgument(arg *core.Argument) error {
	query := `
	INSERT INTO arguments (id, session_id, agent, round_num, content, created_at)
	VALUES (?, ?, ?, ?, ?, ?)
	`

	_, err := s.db.Exec(query,
		arg.ID,
		arg.SessionID,
		string(arg.Agent),
		arg.RoundNum,
		arg.Content,
		arg.CreatedAt,
	)

	if err != nil {
		return fmt.Errorf("failed to insert argument: %w", err)
	}

	return nil
}

// GetArguments returns all arguments for a session in round order.
func (s *SQLiteStorage) GetArguments(sessionID string) ([]*core.Argument, error) {
	query := `
	SELECT id, session_id, agent, round_num, content, created_at
	FROM arguments
	WHERE session_id = ?
	ORDER BY round_num ASC
	`

	rows, err := s.db.Query(query, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to get arguments: %w", err)
	}
	defer rows.Close()

	var args []*core.Argument
	for rows.Next() {
		var arg core.Argument
		var agent string
		err := rows.Scan(
			&arg.ID,
			&arg.SessionID,
			&agent,
			&arg.RoundNum,
			&arg.Content,
			&arg.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan argument: %w", err)
		}
		arg.Agent = core.Role(agent)
		args = append(args, &arg)
	}

	return args, rows.Err()
}

func nullableString(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}
