package storage

import "fmt"

// DailyStats represents statistics for a single day
type DailyStats struct {
	Date            string `json:"date"`
	TotalCycles     int    `json:"totalCycles"`
	TotalCharacters int    `json:"totalCharacters"`
	SuccessCount    int    `json:"successCount"`
	FailureCount    int    `json:"failureCount"`
}

// GroupStats represents statistics grouped by mode or provider
type GroupStats struct {
	Key             string  `json:"key"`
	TotalCycles     int     `json:"totalCycles"`
	TotalCharacters int     `json:"totalCharacters"`
	SuccessCount    int     `json:"successCount"`
	FailureCount    int     `json:"failureCount"`
	AvgLatencyMs    float64 `json:"avgLatencyMs"`
}

// OverallStats represents overall statistics
type OverallStats struct {
	TotalCycles       int     `json:"totalCycles"`
	TotalCharacters   int     `json:"totalCharacters"`
	SuccessCount      int     `json:"successCount"`
	FailureCount      int     `json:"failureCount"`
	AvgDetectionMs    float64 `json:"avgDetectionMs"`
	AvgTranslationMs  float64 `json:"avgTranslationMs"`
	AvgTotalLatencyMs float64 `json:"avgTotalLatencyMs"`
}

// GetDailyStats retrieves statistics grouped by date for the last N days
func (db *DB) GetDailyStats(days int) ([]DailyStats, error) {
	query := `
		SELECT
			DATE(timestamp) as date,
			COUNT(*) as total_cycles,
			COALESCE(SUM(character_count), 0) as total_characters,
			SUM(CASE WHEN success = 1 THEN 1 ELSE 0 END) as success_count,
			SUM(CASE WHEN success = 0 THEN 1 ELSE 0 END) as failure_count
		FROM cycles
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
		err := rows.Scan(&s.Date, &s.TotalCycles, &s.TotalCharacters, &s.SuccessCount, &s.FailureCount)
		if err != nil {
			return nil, fmt.Errorf("failed to scan daily stats: %w", err)
		}
		stats = append(stats, s)
	}

	return stats, rows.Err()
}

// GetModeStats retrieves statistics grouped by mode for the last N days
func (db *DB) GetModeStats(days int) ([]GroupStats, error) {
	return db.groupStats("mode", days)
}

// GetProviderStats retrieves statistics grouped by provider for the last N days
func (db *DB) GetProviderStats(days int) ([]GroupStats, error) {
	return db.groupStats("provider", days)
}

// groupStats aggregates by column, which must be a trusted column name
func (db *DB) groupStats(column string, days int) ([]GroupStats, error) {
	query := fmt.Sprintf(`
		SELECT
			%[1]s,
			COUNT(*) as total_cycles,
			COALESCE(SUM(character_count), 0) as total_characters,
			SUM(CASE WHEN success = 1 THEN 1 ELSE 0 END) as success_count,
			SUM(CASE WHEN success = 0 THEN 1 ELSE 0 END) as failure_count,
			COALESCE(AVG(total_latency_ms), 0) as avg_latency_ms
		FROM cycles
		WHERE timestamp >= datetime('now', '-' || ? || ' days')
		GROUP BY %[1]s
		ORDER BY total_cycles DESC
	`, column)

	rows, err := db.conn.Query(query, days)
	if err != nil {
		return nil, fmt.Errorf("failed to query %s stats: %w", column, err)
	}
	defer rows.Close()

	stats := []GroupStats{}
	for rows.Next() {
		var s GroupStats
		err := rows.Scan(&s.Key, &s.TotalCycles, &s.TotalCharacters, &s.SuccessCount, &s.FailureCount, &s.AvgLatencyMs)
		if err != nil {
			return nil, fmt.Errorf("failed to scan %s stats: %w", column, err)
		}
		stats = append(stats, s)
	}

	return stats, rows.Err()
}

// GetOverallStats retrieves overall statistics for the last N days
func (db *DB) GetOverallStats(days int) (*OverallStats, error) {
	query := `
		SELECT
			COUNT(*) as total_cycles,
			COALESCE(SUM(character_count), 0) as total_characters,
			COALESCE(SUM(CASE WHEN success = 1 THEN 1 ELSE 0 END), 0) as success_count,
			COALESCE(SUM(CASE WHEN success = 0 THEN 1 ELSE 0 END), 0) as failure_count,
			COALESCE(AVG(detection_latency_ms), 0) as avg_detection_ms,
			COALESCE(AVG(translation_latency_ms), 0) as avg_translation_ms,
			COALESCE(AVG(total_latency_ms), 0) as avg_total_latency_ms
		FROM cycles
		WHERE timestamp >= datetime('now', '-' || ? || ' days')
	`

	var stats OverallStats
	err := db.conn.QueryRow(query, days).Scan(
		&stats.TotalCycles,
		&stats.TotalCharacters,
		&stats.SuccessCount,
		&stats.FailureCount,
		&stats.AvgDetectionMs,
		&stats.AvgTranslationMs,
		&stats.AvgTotalLatencyMs,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query overall stats: %w", err)
	}

	return &stats, nil
}
