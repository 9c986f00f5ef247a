// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite" // Pure Go SQLite driver

	"github.com/carepath/carepath-tui/internal/model"
	"github.com/carepath/carepath-tui/internal/session"
)

// =============================================================================
// ERRORS
// =============================================================================

var (
	ErrNotFound = errors.New("journal entry not found")
	ErrClosed   = errors.New("journal is closed")
)

// =============================================================================
// ENTRY
// =============================================================================

// Entry is one answered triage query.
type Entry struct {
	ID             string    `json:"id"`
	SessionID      string    `json:"session_id"`
	PatientMRN     string    `json:"patient_mrn"`
	Query          string    `json:"query"`
	RequestedMode  *string   `json:"requested_mode,omitempty"`
	Response       string    `json:"response"`
	ConversationID string    `json:"conversation_id,omitempty"`
	TraceID        string    `json:"trace_id,omitempty"`
	LLMMode        string    `json:"llm_mode,omitempty"`
	InferenceMs    *float64  `json:"inference_time_ms,omitempty"`
	ElapsedMs      int       `json:"elapsed_ms"`
	CreatedAt      time.Time `json:"created_at"`
}

// EntryFromResponse builds an entry for a finished submission.
func EntryFromResponse(sessionID string, sub session.Submission, resp *model.ChatResponse, elapsedMs int) *Entry {
	e := &Entry{
		SessionID:     sessionID,
		PatientMRN:    sub.PatientMRN,
		Query:         sub.Query,
		RequestedMode: sub.Mode,
		ElapsedMs:     elapsedMs,
	}
	if resp != nil {
		e.Response = resp.Response
		e.ConversationID = resp.ConversationID
		e.TraceID = resp.TraceID
		e.LLMMode = resp.LLMMode
		e.InferenceMs = resp.InferenceTimeMs
	}
	return e
}

// ChatLog presents the entry in the same shape the data service uses, so
// the exporters handle both.
func (e *Entry) ChatLog() *model.ChatLog {
	at := model.NewTimestamp(e.CreatedAt)
	reply := model.LogMessage{Role: model.RoleAssistant, Content: e.Response, Timestamp: at, ModelName: e.LLMMode}
	if e.InferenceMs != nil {
		reply.LatencyMs = *e.InferenceMs
	}
	return &model.ChatLog{
		ID:             e.ID,
		ConversationID: e.ConversationID,
		PatientMRN:     e.PatientMRN,
		Channel:        "journal",
		StartedAt:      at,
		Messages: []model.LogMessage{
			{Role: model.RoleUser, Content: e.Query, Timestamp: at},
			reply,
		},
	}
}

// =============================================================================
// JOURNAL
// =============================================================================

// Journal is the SQLite-backed entry store.
type Journal struct {
	db   *sql.DB
	path string
}

// OpenJournal opens or creates the journal at path.
func OpenJournal(path string) (*Journal, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
			return nil, fmt.Errorf("failed to create journal directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open journal: %w", err)
	}
	// SQLite allows one writer; a single connection also keeps :memory:
	// databases alive across calls.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA busy_timeout=5000",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to set pragma: %w", err)
		}
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}
	if _, err := db.Exec(
		`INSERT OR IGNORE INTO metadata(key, value) VALUES ('schema_version', ?)`,
		strconv.Itoa(SchemaVersion),
	); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize metadata: %w", err)
	}

	return &Journal{db: db, path: path}, nil
}

// Path returns the database file path.
func (j *Journal) Path() string { return j.path }

// Close releases the database.
func (j *Journal) Close() error {
	if j == nil || j.db == nil {
		return nil
	}
	err := j.db.Close()
	j.db = nil
	return err
}

// Save inserts e, assigning an ID and creation time when missing.
func (j *Journal) Save(ctx context.Context, e *Entry) error {
	if j.db == nil {
		return ErrClosed
	}
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now()
	}

	_, err := j.db.ExecContext(ctx, `
		INSERT INTO entries (id, session_id, patient_mrn, query, requested_mode, response,
			conversation_id, trace_id, llm_mode, inference_time_ms, elapsed_ms, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		e.ID, e.SessionID, e.PatientMRN, e.Query, nullString(e.RequestedMode), e.Response,
		e.ConversationID, e.TraceID, e.LLMMode, nullFloat(e.InferenceMs), e.ElapsedMs,
		e.CreatedAt.UnixMilli(),
	)
	if err != nil {
		return fmt.Errorf("failed to save journal entry: %w", err)
	}
	return nil
}

// ListOptions filters List.
type ListOptions struct {
	// Limit caps the result; 0 means no cap.
	Limit int

	PatientMRN string
}

// List returns entries newest first.
func (j *Journal) List(ctx context.Context, opts ListOptions) ([]*Entry, error) {
	if j.db == nil {
		return nil, ErrClosed
	}

	query := `SELECT id, session_id, patient_mrn, query, requested_mode, response,
		conversation_id, trace_id, llm_mode, inference_time_ms, elapsed_ms, created_at
		FROM entries`
	var args []interface{}
	if opts.PatientMRN != "" {
		query += ` WHERE patient_mrn = ?`
		args = append(args, opts.PatientMRN)
	}
	query += ` ORDER BY created_at DESC, id`
	if opts.Limit > 0 {
		query += ` LIMIT ?`
		args = append(args, opts.Limit)
	}

	rows, err := j.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list journal: %w", err)
	}
	defer rows.Close()

	var entries []*Entry
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// Load returns one entry by ID or ErrNotFound.
func (j *Journal) Load(ctx context.Context, id string) (*Entry, error) {
	if j.db == nil {
		return nil, ErrClosed
	}
	row := j.db.QueryRowContext(ctx, `SELECT id, session_id, patient_mrn, query, requested_mode, response,
		conversation_id, trace_id, llm_mode, inference_time_ms, elapsed_ms, created_at
		FROM entries WHERE id = ?`, id)
	e, err := scanEntry(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return e, err
}

// Delete removes one entry or returns ErrNotFound.
func (j *Journal) Delete(ctx context.Context, id string) error {
	if j.db == nil {
		return ErrClosed
	}
	res, err := j.db.ExecContext(ctx, `DELETE FROM entries WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete journal entry: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return nil
}

// Clear removes every entry and returns how many were deleted.
func (j *Journal) Clear(ctx context.Context) (int, error) {
	if j.db == nil {
		return 0, ErrClosed
	}
	res, err := j.db.ExecContext(ctx, `DELETE FROM entries`)
	if err != nil {
		return 0, fmt.Errorf("failed to clear journal: %w", err)
	}
	n, _ := res.RowsAffected()
	return int(n), nil
}

// Count returns the number of entries.
func (j *Journal) Count(ctx context.Context) (int, error) {
	if j.db == nil {
		return 0, ErrClosed
	}
	var n int
	if err := j.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM entries`).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count journal: %w", err)
	}
	return n, nil
}

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanEntry(s scanner) (*Entry, error) {
	var (
		e         Entry
		mode      sql.NullString
		convID    sql.NullString
		traceID   sql.NullString
		llmMode   sql.NullString
		inference sql.NullFloat64
		created   int64
	)
	err := s.Scan(&e.ID, &e.SessionID, &e.PatientMRN, &e.Query, &mode, &e.Response,
		&convID, &traceID, &llmMode, &inference, &e.ElapsedMs, &created)
	if err != nil {
		return nil, err
	}
	if mode.Valid {
		m := mode.String
		e.RequestedMode = &m
	}
	if inference.Valid {
		v := inference.Float64
		e.InferenceMs = &v
	}
	e.ConversationID = convID.String
	e.TraceID = traceID.String
	e.LLMMode = llmMode.String
	e.CreatedAt = time.UnixMilli(created)
	return &e, nil
}

func nullString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

func nullFloat(f *float64) sql.NullFloat64 {
	if f == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: *f, Valid: true}
}
