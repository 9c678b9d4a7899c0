package store

// runMigrations executes all database migrations.
func (s *Store) runMigrations() error {
	migrations := []string{
		// Exercises table - display metadata and targets per exercise type
		`CREATE TABLE IF NOT EXISTS exercises (
			type TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			reps INTEGER NOT NULL CHECK(reps > 0),
			sets INTEGER NOT NULL CHECK(sets > 0),
			position INTEGER NOT NULL DEFAULT 0,
			updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)`,

		// Settings table - stores application settings as key-value pairs
		`CREATE TABLE IF NOT EXISTS settings (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL
		)`,

		`CREATE INDEX IF NOT EXISTS idx_exercises_position ON exercises(position)`,
	}

	for _, migration := range migrations {
		if _, err := s.db.Exec(migration); err != nil {
			return err
		}
	}

	return nil
}
