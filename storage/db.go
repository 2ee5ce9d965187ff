package storage

import (
	"database/sql"
	"fmt"
	"path/filepath"

	_ "modernc.org/sqlite"
)

type DB struct {
	conn *sql.DB
}

// Open opens the database and initializes the schema
func Open(configDir string) (*DB, error) {
	dbPath := filepath.Join(configDir, "langra.db")

	conn, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Enable WAL mode for better concurrency
	if _, err := conn.Exec("PRAGMA journal_mode=WAL"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
	}

	// Enable foreign keys
	if _, err := conn.Exec("PRAGMA foreign_keys=ON"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	db := &DB{conn: conn}

	if err := db.initSchema(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return db, nil
}

// Close closes the database connection
func (db *DB) Close() error {
	return db.conn.Close()
}

// initSchema creates the database schema
func (db *DB) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS cycles (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		cycle_id TEXT NOT NULL UNIQUE,
		timestamp DATETIME DEFAULT CURRENT_TIMESTAMP,

		-- What was asked
		mode TEXT NOT NULL,
		provider TEXT NOT NULL,
		source_language TEXT NOT NULL,
		target_language TEXT NOT NULL,

		-- Text
		original_text TEXT NOT NULL,
		result_text TEXT NOT NULL,
		character_count INTEGER NOT NULL,

		-- Timing metrics
		detection_latency_ms INTEGER NOT NULL,
		translation_latency_ms INTEGER NOT NULL,
		total_latency_ms INTEGER NOT NULL,

		-- Status
		success BOOLEAN NOT NULL,
		error_message TEXT
	);

	CREATE INDEX IF NOT EXISTS idx_cycles_timestamp ON cycles(timestamp);
	CREATE INDEX IF NOT EXISTS idx_cycles_mode ON cycles(mode);
	CREATE INDEX IF NOT EXISTS idx_cycles_success ON cycles(success);
	`

	_, err := db.conn.Exec(schema)
	return err
}
