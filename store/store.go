// Package store keeps a SQLite history of processed activities and their zone
// times.
package store

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

// ErrRunNotFound is returned when a run ID has no rows.
var ErrRunNotFound = errors.New("run not found")

// Store wraps the SQLite connection.
type Store struct {
	db *sql.DB
}

// ActivityRow is one processed activity.
type ActivityRow struct {
	RunID          string
	FileName       string
	StartTime      time.Time // zero when unknown
	ElapsedSeconds float64
	DistanceMeters float64
	MovingSeconds  float64
	SampleCount    int
	Zones          []ZoneRow
}

// ZoneRow is one zone's time within an activity, in table order.
type ZoneRow struct {
	Position int
	Label    string
	Low      int
	High     int
	Seconds  float64
}

// Open opens the database at path, creating it and its directory if necessary.
func Open(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating data directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	// PRAGMA foreign_keys applies per connection.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enabling foreign keys: %w", err)
	}
	if err := migrate(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}
	return &Store{db: db}, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// BeginRun records a new run and returns its ID.
func (s *Store) BeginRun(activitiesDir string, thresholdMPS float64) (string, error) {
	id := uuid.NewString()
	_, err := s.db.Exec(
		`INSERT INTO runs (id, activities_dir, moving_threshold_mps, started_at) VALUES (?, ?, ?, ?)`,
		id, activitiesDir, thresholdMPS, time.Now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		return "", fmt.Errorf("inserting run: %w", err)
	}
	return id, nil
}

// FinishRun stamps the run's completion counts.
func (s *Store) FinishRun(runID string, processed, skipped int) error {
	res, err := s.db.Exec(
		`UPDATE runs SET finished_at = ?, processed = ?, skipped = ? WHERE id = ?`,
		time.Now().UTC().Format(time.RFC3339), processed, skipped, runID,
	)
	if err != nil {
		return fmt.Errorf("updating run: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrRunNotFound
	}
	return nil
}

// InsertActivity stores one activity and its zone rows in a single transaction.
func (s *Store) InsertActivity(a ActivityRow) (int64, error) {
	tx, err := s.db.Begin()
	if err != nil {
		return 0, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	var startTime sql.NullString
	if !a.StartTime.IsZero() {
		startTime = sql.NullString{String: a.StartTime.UTC().Format(time.RFC3339), Valid: true}
	}

	res, err := tx.Exec(`
		INSERT INTO activities (
			run_id, file_name, start_time, elapsed_seconds, distance_meters,
			moving_seconds, sample_count
		) VALUES (?, ?, ?, ?, ?, ?, ?)
	`,
		a.RunID, a.FileName, startTime, a.ElapsedSeconds, a.DistanceMeters,
		a.MovingSeconds, a.SampleCount,
	)
	if err != nil {
		return 0, fmt.Errorf("inserting activity: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}

	for _, z := range a.Zones {
		if _, err := tx.Exec(`
			INSERT INTO activity_zones (activity_id, position, label, low_bpm, high_bpm, seconds)
			VALUES (?, ?, ?, ?, ?, ?)
		`, id, z.Position, z.Label, z.Low, z.High, z.Seconds); err != nil {
			return 0, fmt.Errorf("inserting zone %q: %w", z.Label, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("committing activity: %w", err)
	}
	return id, nil
}

// ActivitiesForRun returns the activities of a run in insertion order.
func (s *Store) ActivitiesForRun(runID string) ([]ActivityRow, error) {
	rows, err := s.db.Query(`
		SELECT id, run_id, file_name, start_time, elapsed_seconds, distance_meters,
			moving_seconds, sample_count
		FROM activities
		WHERE run_id = ?
		ORDER BY id
	`, runID)
	if err != nil {
		return nil, fmt.Errorf("querying activities: %w", err)
	}
	defer rows.Close()

	var (
		out []ActivityRow
		ids []int64
	)
	for rows.Next() {
		var (
			id        int64
			a         ActivityRow
			startTime sql.NullString
		)
		if err := rows.Scan(&id, &a.RunID, &a.FileName, &startTime, &a.ElapsedSeconds,
			&a.DistanceMeters, &a.MovingSeconds, &a.SampleCount); err != nil {
			return nil, fmt.Errorf("scanning activity: %w", err)
		}
		if startTime.Valid {
			t, err := time.Parse(time.RFC3339, startTime.String)
			if err != nil {
				return nil, fmt.Errorf("scanning activity %d start_time: %w", id, err)
			}
			a.StartTime = t
		}
		out = append(out, a)
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return nil, ErrRunNotFound
	}

	for i, id := range ids {
		zones, err := s.zonesForActivity(id)
		if err != nil {
			return nil, err
		}
		out[i].Zones = zones
	}
	return out, nil
}

func (s *Store) zonesForActivity(activityID int64) ([]ZoneRow, error) {
	rows, err := s.db.Query(`
		SELECT position, label, low_bpm, high_bpm, seconds
		FROM activity_zones
		WHERE activity_id = ?
		ORDER BY position
	`, activityID)
	if err != nil {
		return nil, fmt.Errorf("querying zones: %w", err)
	}
	defer rows.Close()

	var out []ZoneRow
	for rows.Next() {
		var z ZoneRow
		if err := rows.Scan(&z.Position, &z.Label, &z.Low, &z.High, &z.Seconds); err != nil {
			return nil, fmt.Errorf("scanning zone: %w", err)
		}
		out = append(out, z)
	}
	return out, rows.Err()
}
