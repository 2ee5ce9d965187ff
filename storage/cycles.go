package storage

import (
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// ErrNotFound is returned when a cycle does not exist
var ErrNotFound = errors.New("cycle not found")

// Cycle records one capture → translate run with its metrics
type Cycle struct {
	ID                   int64     `json:"id"`
	CycleID              string    `json:"cycleId"`
	Timestamp            time.Time `json:"timestamp"`
	Mode                 string    `json:"mode"`
	Provider             string    `json:"provider"`
	SourceLanguage       string    `json:"sourceLanguage"`
	TargetLanguage       string    `json:"targetLanguage"`
	OriginalText         string    `json:"originalText"`
	ResultText           string    `json:"resultText"`
	CharacterCount       int       `json:"characterCount"`
	DetectionLatencyMs   int64     `json:"detectionLatencyMs"`
	TranslationLatencyMs int64     `json:"translationLatencyMs"`
	TotalLatencyMs       int64     `json:"totalLatencyMs"`
	Success              bool      `json:"success"`
	ErrorMessage         string    `json:"errorMessage,omitempty"`
}

const cycleColumns = `
	id, cycle_id, timestamp, mode, provider, source_language, target_language,
	original_text, result_text, character_count,
	detection_latency_ms, translation_latency_ms, total_latency_ms,
	success, error_message`

// SaveCycle saves a cycle to the database
func (db *DB) SaveCycle(c *Cycle) error {
	query := `
		INSERT INTO cycles (
			cycle_id, mode, provider, source_language, target_language,
			original_text, result_text, character_count,
			detection_latency_ms, translation_latency_ms, total_latency_ms,
			success, error_message
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	result, err := db.conn.Exec(query,
		c.CycleID, c.Mode, c.Provider, c.SourceLanguage, c.TargetLanguage,
		c.OriginalText, c.ResultText, c.CharacterCount,
		c.DetectionLatencyMs, c.TranslationLatencyMs, c.TotalLatencyMs,
		c.Success, c.ErrorMessage,
	)
	if err != nil {
		return fmt.Errorf("failed to save cycle: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert ID: %w", err)
	}

	c.ID = id
	return nil
}

// GetCycles retrieves cycles with pagination, newest first
func (db *DB) GetCycles(limit, offset int) ([]Cycle, error) {
	query := `SELECT ` + cycleColumns + `
		FROM cycles
		ORDER BY timestamp DESC, id DESC
		LIMIT ? OFFSET ?
	`

	rows, err := db.conn.Query(query, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to query cycles: %w", err)
	}
	defer rows.Close()

	cycles := []Cycle{}
	for rows.Next() {
		c, err := scanCycle(rows)
		if err != nil {
			return nil, err
		}
		cycles = append(cycles, c)
	}

	return cycles, rows.Err()
}

// GetCycle retrieves a single cycle by its cycle id
func (db *DB) GetCycle(cycleID string) (*Cycle, error) {
	row := db.conn.QueryRow(`SELECT `+cycleColumns+` FROM cycles WHERE cycle_id = ?`, cycleID)
	c, err := scanCycle(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanCycle(s scanner) (Cycle, error) {
	var c Cycle
	var errorMessage sql.NullString

	err := s.Scan(
		&c.ID, &c.CycleID, &c.Timestamp, &c.Mode, &c.Provider, &c.SourceLanguage, &c.TargetLanguage,
		&c.OriginalText, &c.ResultText, &c.CharacterCount,
		&c.DetectionLatencyMs, &c.TranslationLatencyMs, &c.TotalLatencyMs,
		&c.Success, &errorMessage,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return c, err
	}
	if err != nil {
		return c, fmt.Errorf("failed to scan cycle: %w", err)
	}

	if errorMessage.Valid {
		c.ErrorMessage = errorMessage.String
	}
	return c, nil
}

// DeleteCycle deletes a cycle by row ID
func (db *DB) DeleteCycle(id int64) error {
	result, err := db.conn.Exec(`DELETE FROM cycles WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete cycle: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return ErrNotFound
	}

	return nil
}

// GetCycleCount returns the total number of cycles
func (db *DB) GetCycleCount() (int, error) {
	var count int
	err := db.conn.QueryRow("SELECT COUNT(*) FROM cycles").Scan(&count)
	return count, err
}
