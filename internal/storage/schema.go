// ABOUTME: SQLite schema definition and initialization.
// ABOUTME: One table per collection; exercises cascade from gym_sessions.
package storage

// initSchema creates or updates the database schema.
func (d *DB) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS checkins (
		id TEXT PRIMARY KEY,
		date TEXT NOT NULL,
		height_cm REAL NOT NULL,
		weight_kg REAL NOT NULL,
		waist_cm REAL,
		notes TEXT,
		bmi REAL NOT NULL,
		bmi_category TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS meals (
		id TEXT PRIMARY KEY,
		datetime TEXT NOT NULL,
		meal_type TEXT NOT NULL,
		calories REAL NOT NULL DEFAULT 0,
		protein REAL NOT NULL DEFAULT 0,
		carbs REAL NOT NULL DEFAULT 0,
		fat REAL NOT NULL DEFAULT 0,
		water_ml INTEGER,
		notes TEXT,
		photo BLOB
	);

	CREATE TABLE IF NOT EXISTS gym_sessions (
		id TEXT PRIMARY KEY,
		datetime TEXT NOT NULL,
		workout_type TEXT NOT NULL,
		duration_min INTEGER NOT NULL DEFAULT 0,
		cardio_type TEXT,
		cardio_min INTEGER,
		intensity INTEGER NOT NULL,
		notes TEXT
	);

	CREATE TABLE IF NOT EXISTS exercises (
		id TEXT PRIMARY KEY,
		session_id TEXT NOT NULL,
		exercise_name TEXT NOT NULL,
		sets INTEGER NOT NULL DEFAULT 0,
		reps INTEGER NOT NULL DEFAULT 0,
		weight_kg REAL NOT NULL DEFAULT 0,
		rest_sec INTEGER,
		volume REAL NOT NULL DEFAULT 0,
		photo BLOB,
		FOREIGN KEY (session_id) REFERENCES gym_sessions(id) ON DELETE CASCADE
	);

	CREATE TABLE IF NOT EXISTS habits (
		id TEXT PRIMARY KEY,
		date TEXT NOT NULL UNIQUE,
		water_ml INTEGER,
		steps INTEGER,
		creatine INTEGER,
		stretching INTEGER,
		sleep_hours REAL,
		score INTEGER NOT NULL DEFAULT 0
	);

	CREATE TABLE IF NOT EXISTS goals (
		id TEXT PRIMARY KEY,
		type TEXT NOT NULL,
		target_value REAL NOT NULL,
		current_value REAL NOT NULL,
		deadline TEXT,
		status TEXT NOT NULL,
		created_at TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS prs (
		id TEXT PRIMARY KEY,
		exercise_name TEXT NOT NULL,
		pr_type TEXT NOT NULL,
		value REAL NOT NULL,
		date TEXT NOT NULL,
		notes TEXT,
		is_new INTEGER NOT NULL DEFAULT 1
	);

	CREATE TABLE IF NOT EXISTS settings (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_checkins_date ON checkins(date DESC);
	CREATE INDEX IF NOT EXISTS idx_meals_datetime ON meals(datetime DESC);
	CREATE INDEX IF NOT EXISTS idx_gym_sessions_datetime ON gym_sessions(datetime DESC);
	CREATE INDEX IF NOT EXISTS idx_exercises_session ON exercises(session_id);
	CREATE INDEX IF NOT EXISTS idx_exercises_name ON exercises(exercise_name);
	CREATE INDEX IF NOT EXISTS idx_goals_status ON goals(status);
	CREATE INDEX IF NOT EXISTS idx_prs_exercise_type ON prs(exercise_name, pr_type);
	`

	_, err := d.db.Exec(schema)
	return err
}
