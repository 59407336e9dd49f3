package storage

import (
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// timeLayout sorts lexically and is understood by SQLite's date functions.
const timeLayout = "2006-01-02 15:04:05.000"

// ErrNotFound is returned when a record does not exist.
var ErrNotFound = errors.New("record not found")

// Reload is one recorded invocation of the chat command routine
type Reload struct {
	ID           int64     `json:"id"`
	Timestamp    time.Time `json:"timestamp"`
	Source       string    `json:"source"`
	Version      string    `json:"version"`
	Command      string    `json:"command"`
	WindowTitle  string    `json:"windowTitle"`
	Status       string    `json:"status"`
	EventCount   int       `json:"eventCount"`
	SettleMs     int64     `json:"settleMs"`
	LatencyMs    int64     `json:"latencyMs"`
	ErrorMessage string    `json:"errorMessage,omitempty"`
}

// SaveReload saves a reload to the database and sets its ID
func (db *DB) SaveReload(r *Reload) error {
	if r.Timestamp.IsZero() {
		r.Timestamp = time.Now()
	}

	query := `
		INSERT INTO reloads (
			timestamp, source, version, command, window_title,
			status, event_count, settle_ms, latency_ms, error_message
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	var errorMessage sql.NullString
	if r.ErrorMessage != "" {
		errorMessage = sql.NullString{String: r.ErrorMessage, Valid: true}
	}

	result, err := db.conn.Exec(query,
		r.Timestamp.UTC().Format(timeLayout), r.Source, r.Version, r.Command, r.WindowTitle,
		r.Status, r.EventCount, r.SettleMs, r.LatencyMs, errorMessage,
	)
	if err != nil {
		return fmt.Errorf("failed to save reload: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert ID: %w", err)
	}

	r.ID = id
	return nil
}

// GetReloads retrieves reloads, newest first, with pagination
func (db *DB) GetReloads(limit, offset int) ([]Reload, error) {
	query := `
		SELECT
			id, timestamp, source, version, command, window_title,
			status, event_count, settle_ms, latency_ms, error_message
		FROM reloads
		ORDER BY timestamp DESC, id DESC
		LIMIT ? OFFSET ?
	`

	rows, err := db.conn.Query(query, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to query reloads: %w", err)
	}
	defer rows.Close()

	reloads := []Reload{}
	for rows.Next() {
		var r Reload
		var ts string
		var errorMessage sql.NullString

		err := rows.Scan(
			&r.ID, &ts, &r.Source, &r.Version, &r.Command, &r.WindowTitle,
			&r.Status, &r.EventCount, &r.SettleMs, &r.LatencyMs, &errorMessage,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan reload: %w", err)
		}

		r.Timestamp, err = time.ParseInLocation(timeLayout, ts, time.UTC)
		if err != nil {
			return nil, fmt.Errorf("failed to parse timestamp %q: %w", ts, err)
		}
		if errorMessage.Valid {
			r.ErrorMessage = errorMessage.String
		}

		reloads = append(reloads, r)
	}

	return reloads, rows.Err()
}

// DeleteReload deletes a reload by ID
func (db *DB) DeleteReload(id int64) error {
	result, err := db.conn.Exec(`DELETE FROM reloads WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete reload: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return fmt.Errorf("reload %d: %w", id, ErrNotFound)
	}

	return nil
}

// GetReloadCount returns the total number of recorded reloads
func (db *DB) GetReloadCount() (int, error) {
	var count int
	err := db.conn.QueryRow("SELECT COUNT(*) FROM reloads").Scan(&count)
	return count, err
}
