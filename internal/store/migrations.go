package store

// runMigrations executes all database migrations.
func (s *Store) runMigrations() error {
	migrations := []string{
		// Calibration profiles - named sets of gesture thresholds
		`CREATE TABLE IF NOT EXISTS calibration_profiles (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL UNIQUE,
			activation_threshold REAL NOT NULL DEFAULT 0.55,
			hold_threshold REAL NOT NULL DEFAULT 0.60,
			min_run_frames INTEGER NOT NULL DEFAULT 3,
			release_run_frames INTEGER NOT NULL DEFAULT 2,
			finger_length REAL NOT NULL DEFAULT 0.18,
			thumb_length REAL NOT NULL DEFAULT 0.12,
			raise_margin REAL NOT NULL DEFAULT 0.04,
			thumb_raise_margin REAL NOT NULL DEFAULT 0.08,
			default_volume REAL NOT NULL DEFAULT 0.8,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
			updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)`,

		// Performance sessions - one row per recorded run
		`CREATE TABLE IF NOT EXISTS sessions (
			id TEXT PRIMARY KEY,
			profile_id TEXT REFERENCES calibration_profiles(id) ON DELETE SET NULL,
			started_at DATETIME NOT NULL,
			ended_at DATETIME
		)`,

		// Session events - the note on/off stream of a recorded session
		`CREATE TABLE IF NOT EXISTS session_events (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			session_id TEXT NOT NULL REFERENCES sessions(id) ON DELETE CASCADE,
			slot TEXT NOT NULL,
			instrument TEXT NOT NULL,
			active INTEGER NOT NULL,
			note TEXT NOT NULL DEFAULT '',
			velocity REAL NOT NULL DEFAULT 0,
			timestamp_ms INTEGER NOT NULL
		)`,

		// Settings table - application settings as key-value pairs
		`CREATE TABLE IF NOT EXISTS settings (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL
		)`,

		// Indexes for better query performance
		`CREATE INDEX IF NOT EXISTS idx_session_events_session_id ON session_events(session_id)`,
		`CREATE INDEX IF NOT EXISTS idx_sessions_started_at ON sessions(started_at)`,
	}

	for _, migration := range migrations {
		if _, err := s.db.Exec(migration); err != nil {
			return err
		}
	}

	return nil
}
