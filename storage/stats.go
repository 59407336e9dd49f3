package storage

import (
	"fmt"
	"time"
)

// DailyStats represents statistics for a single day
type DailyStats struct {
	Date         string `json:"date"`
	TotalReloads int    `json:"totalReloads"`
	SuccessCount int    `json:"successCount"`
	SkippedCount int    `json:"skippedCount"`
	FailureCount int    `json:"failureCount"`
}

// StatusStats represents statistics grouped by outcome
type StatusStats struct {
	Status       string  `json:"status"`
	Count        int     `json:"count"`
	AvgLatencyMs float64 `json:"avgLatencyMs"`
}

// OverallStats represents overall statistics
type OverallStats struct {
	TotalReloads int     `json:"totalReloads"`
	SuccessCount int     `json:"successCount"`
	SkippedCount int     `json:"skippedCount"`
	FailureCount int     `json:"failureCount"`
	AvgLatencyMs float64 `json:"avgLatencyMs"`
	AvgSettleMs  float64 `json:"avgSettleMs"`
	TotalEvents  int64   `json:"totalEvents"`
}

// Window-not-found and busy are expected no-ops rather than failures.
const outcomeColumns = `
	COUNT(*),
	COALESCE(SUM(CASE WHEN status = 'ok' THEN 1 ELSE 0 END), 0),
	COALESCE(SUM(CASE WHEN status IN ('window_not_found', 'busy') THEN 1 ELSE 0 END), 0),
	COALESCE(SUM(CASE WHEN status NOT IN ('ok', 'window_not_found', 'busy') THEN 1 ELSE 0 END), 0)`

// GetDailyStats retrieves statistics grouped by date for the last N days
func (db *DB) GetDailyStats(days int) ([]DailyStats, error) {
	query := `
		SELECT DATE(timestamp) AS date,` + outcomeColumns + `
		FROM reloads
		WHERE timestamp >= datetime('now', '-' || ? || ' days')
		GROUP BY DATE(timestamp)
		ORDER BY date DESC
	`

	rows, err := db.conn.Query(query, days)
	if err != nil {
		return nil, fmt.Errorf("failed to query daily stats: %w", err)
	}
	defer rows.Close()

	stats := []DailyStats{}
	for rows.Next() {
		var s DailyStats
		err := rows.Scan(&s.Date, &s.TotalReloads, &s.SuccessCount, &s.SkippedCount, &s.FailureCount)
		if err != nil {
			return nil, fmt.Errorf("failed to scan daily stats: %w", err)
		}
		stats = append(stats, s)
	}

	return stats, rows.Err()
}

// GetStatusStats retrieves counts grouped by status for the last N days
func (db *DB) GetStatusStats(days int) ([]StatusStats, error) {
	query := `
		SELECT status, COUNT(*), COALESCE(AVG(latency_ms), 0)
		FROM reloads
		WHERE timestamp >= datetime('now', '-' || ? || ' days')
		GROUP BY status
		ORDER BY COUNT(*) DESC
	`

	rows, err := db.conn.Query(query, days)
	if err != nil {
		return nil, fmt.Errorf("failed to query status stats: %w", err)
	}
	defer rows.Close()

	stats := []StatusStats{}
	for rows.Next() {
		var s StatusStats
		if err := rows.Scan(&s.Status, &s.Count, &s.AvgLatencyMs); err != nil {
			return nil, fmt.Errorf("failed to scan status stats: %w", err)
		}
		stats = append(stats, s)
	}

	return stats, rows.Err()
}

// GetOverallStats retrieves overall statistics for the last N days
func (db *DB) GetOverallStats(days int) (*OverallStats, error) {
	query := `
		SELECT` + outcomeColumns + `,
			COALESCE(AVG(latency_ms), 0),
			COALESCE(AVG(settle_ms), 0),
			COALESCE(SUM(event_count), 0)
		FROM reloads
		WHERE timestamp >= datetime('now', '-' || ? || ' days')
	`
	return db.scanOverall(query, days)
}

// GetStatsForDateRange retrieves overall stats for a custom date range
func (db *DB) GetStatsForDateRange(startTime, endTime time.Time) (*OverallStats, error) {
	query := `
		SELECT` + outcomeColumns + `,
			COALESCE(AVG(latency_ms), 0),
			COALESCE(AVG(settle_ms), 0),
			COALESCE(SUM(event_count), 0)
		FROM reloads
		WHERE timestamp >= ? AND timestamp <= ?
	`
	return db.scanOverall(query, startTime.UTC().Format(timeLayout), endTime.UTC().Format(timeLayout))
}

func (db *DB) scanOverall(query string, args ...any) (*OverallStats, error) {
	var stats OverallStats
	err := db.conn.QueryRow(query, args...).Scan(
		&stats.TotalReloads,
		&stats.SuccessCount,
		&stats.SkippedCount,
		&stats.FailureCount,
		&stats.AvgLatencyMs,
		&stats.AvgSettleMs,
		&stats.TotalEvents,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query overall stats: %w", err)
	}

	return &stats, nil
}
