// Package db persists measurement history in sqlite. One row is recorded
// per successfully computed box; the scanning core never depends on this
// package, it is wiring in cmd and the API only.
package db

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

// DB wraps the sqlite handle.
type DB struct {
	*sql.DB
}

// NewDB opens (creating if needed) the sqlite database at path. Call
// MigrateUp before first use.
func NewDB(path string) (*DB, error) {
	sqlDB, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database %q: %w", path, err)
	}

	// Single writer, and sqlite locks the whole file anyway.
	sqlDB.SetMaxOpenConns(1)

	if _, err := sqlDB.Exec(`PRAGMA foreign_keys = ON; PRAGMA busy_timeout = 5000;`); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("failed to set pragmas: %w", err)
	}

	return &DB{sqlDB}, nil
}

// Measurement is one recorded box estimate.
type Measurement struct {
	ID               string    `json:"id"`
	Width            float64   `json:"width"`
	Height           float64   `json:"height"`
	Length           float64   `json:"length"`
	ObservationCount int       `json:"observation_count"`
	CreatedAt        time.Time `json:"created_at"`
}

// RecordMeasurement stores one measurement and returns its generated ID.
func (db *DB) RecordMeasurement(width, height, length float64, observationCount int) (string, error) {
	id := uuid.NewString()
	_, err := db.Exec(
		`INSERT INTO measurements (id, width, height, length, observation_count)
		 VALUES (?, ?, ?, ?, ?)`,
		id, width, height, length, observationCount,
	)
	if err != nil {
		return "", fmt.Errorf("failed to record measurement: %w", err)
	}
	return id, nil
}

// ListMeasurements returns up to limit measurements, most recent first.
// A non-positive limit uses a sane default.
func (db *DB) ListMeasurements(limit int) ([]Measurement, error) {
	if limit <= 0 {
		limit = 50
	}

	rows, err := db.Query(
		`SELECT id, width, height, length, observation_count, created_at
		 FROM measurements
		 ORDER BY created_at DESC, id DESC
		 LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query measurements: %w", err)
	}
	defer rows.Close()

	var out []Measurement
	for rows.Next() {
		var m Measurement
		if err := rows.Scan(&m.ID, &m.Width, &m.Height, &m.Length, &m.ObservationCount, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan measurement: %w", err)
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

// CountMeasurements returns the total number of recorded measurements.
func (db *DB) CountMeasurements() (int, error) {
	var n int
	if err := db.QueryRow(`SELECT COUNT(*) FROM measurements`).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count measurements: %w", err)
	}
	return n, nil
}
