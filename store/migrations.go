package store

import "database/sql"

// migrate creates the schema if it does not exist yet.
func migrate(db *sql.DB) error {
	migrations := []string{
		`CREATE TABLE IF NOT EXISTS runs (
			id TEXT PRIMARY KEY,
			activities_dir TEXT NOT NULL,
			moving_threshold_mps REAL NOT NULL,
			started_at TEXT NOT NULL,
			finished_at TEXT,
			processed INTEGER NOT NULL DEFAULT 0,
			skipped INTEGER NOT NULL DEFAULT 0
		)`,

		`CREATE TABLE IF NOT EXISTS activities (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			run_id TEXT NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
			file_name TEXT NOT NULL,
			start_time TEXT,
			elapsed_seconds REAL NOT NULL,
			distance_meters REAL NOT NULL,
			moving_seconds REAL NOT NULL,
			sample_count INTEGER NOT NULL,
			created_at TEXT DEFAULT CURRENT_TIMESTAMP
		)`,

		`CREATE INDEX IF NOT EXISTS idx_activities_run ON activities(run_id)`,
		`CREATE INDEX IF NOT EXISTS idx_activities_start_time ON activities(start_time)`,

		`CREATE TABLE IF NOT EXISTS activity_zones (
			activity_id INTEGER NOT NULL REFERENCES activities(id) ON DELETE CASCADE,
			position INTEGER NOT NULL,
			label TEXT NOT NULL,
			low_bpm INTEGER NOT NULL,
			high_bpm INTEGER NOT NULL,
			seconds REAL NOT NULL,
			PRIMARY KEY (activity_id, position)
		)`,
	}

	for _, m := range migrations {
		if _, err := db.Exec(m); err != nil {
			return err
		}
	}
	return nil
}
