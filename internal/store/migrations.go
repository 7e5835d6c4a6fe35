package store

import (
	"database/sql"
	"fmt"
)

// applyMigrations applies all schema migrations in order.
func applyMigrations(db *sql.DB) error {
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		return fmt.Errorf("failed to enable foreign keys: %w", err)
	}
	if _, err := db.Exec("PRAGMA journal_mode = WAL"); err != nil {
		return fmt.Errorf("failed to set journal mode: %w", err)
	}

	if err := createMigrationsTable(db); err != nil {
		return err
	}

	migrations := []struct {
		version int
		name    string
		sql     string
	}{
		{1, "create_profile_table", createProfileTable},
		{2, "create_courses_table", createCoursesTable},
		{3, "create_attendance_table", createAttendanceTable},
		{4, "create_marks_table", createMarksTable},
		{5, "create_announcements_table", createAnnouncementsTable},
		{6, "create_notifications_table", createNotificationsTable},
		{7, "create_fees_table", createFeesTable},
		{8, "create_schedule_table", createScheduleTable},
		{9, "create_outbox_table", createOutboxTable},
		{10, "create_sync_history_table", createSyncHistoryTable},
		{11, "create_indices", createIndices},
	}

	for _, m := range migrations {
		applied, err := isMigrationApplied(db, m.version)
		if err != nil {
			return fmt.Errorf("failed to check migration %d: %w", m.version, err)
		}
		if applied {
			continue
		}
		if _, err := db.Exec(m.sql); err != nil {
			return fmt.Errorf("failed to apply migration %d (%s): %w", m.version, m.name, err)
		}
		if err := recordMigration(db, m.version, m.name); err != nil {
			return fmt.Errorf("failed to record migration %d: %w", m.version, err)
		}
	}

	return nil
}

func createMigrationsTable(db *sql.DB) error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS migrations (
			version INTEGER PRIMARY KEY,
			name TEXT NOT NULL,
			applied_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)
	`)
	return err
}

func isMigrationApplied(db *sql.DB, version int) (bool, error) {
	var count int
	err := db.QueryRow("SELECT COUNT(*) FROM migrations WHERE version = ?", version).Scan(&count)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func recordMigration(db *sql.DB, version int, name string) error {
	_, err := db.Exec("INSERT INTO migrations (version, name) VALUES (?, ?)", version, name)
	return err
}

const createProfileTable = `
CREATE TABLE profile (
	id INTEGER PRIMARY KEY,
	name TEXT NOT NULL,
	email TEXT NOT NULL,
	role TEXT NOT NULL,
	department TEXT NOT NULL DEFAULT '',
	reg_number TEXT NOT NULL DEFAULT '',
	last_synced_at TIMESTAMP NOT NULL
);
`

const createCoursesTable = `
CREATE TABLE courses (
	id INTEGER PRIMARY KEY,
	code TEXT NOT NULL,
	title TEXT NOT NULL,
	teacher_name TEXT NOT NULL DEFAULT '',
	credit_hours INTEGER NOT NULL DEFAULT 0,
	semester TEXT NOT NULL DEFAULT '',
	last_synced_at TIMESTAMP NOT NULL
);
`

const createAttendanceTable = `
CREATE TABLE attendance (
	course_id INTEGER NOT NULL,
	student_id INTEGER NOT NULL,
	date TEXT NOT NULL,
	status TEXT NOT NULL,
	is_synced INTEGER NOT NULL DEFAULT 1,
	last_synced_at TIMESTAMP NOT NULL,
	PRIMARY KEY (course_id, student_id, date)
);
`

const createMarksTable = `
CREATE TABLE marks (
	course_id INTEGER NOT NULL,
	student_id INTEGER NOT NULL,
	evaluation TEXT NOT NULL,
	obtained REAL NOT NULL,
	total REAL NOT NULL,
	is_synced INTEGER NOT NULL DEFAULT 1,
	last_synced_at TIMESTAMP NOT NULL,
	PRIMARY KEY (course_id, student_id, evaluation)
);
`

const createAnnouncementsTable = `
CREATE TABLE announcements (
	id INTEGER PRIMARY KEY,
	course_id INTEGER NOT NULL,
	title TEXT NOT NULL,
	body TEXT NOT NULL,
	author TEXT NOT NULL DEFAULT '',
	posted_at TEXT NOT NULL,
	is_synced INTEGER NOT NULL DEFAULT 1,
	last_synced_at TIMESTAMP NOT NULL
);
`

const createNotificationsTable = `
CREATE TABLE notifications (
	id INTEGER PRIMARY KEY,
	title TEXT NOT NULL,
	body TEXT NOT NULL,
	created_at TEXT NOT NULL,
	is_read INTEGER NOT NULL DEFAULT 0,
	last_synced_at TIMESTAMP NOT NULL
);
`

const createFeesTable = `
CREATE TABLE fees (
	id INTEGER PRIMARY KEY,
	semester TEXT NOT NULL,
	amount REAL NOT NULL,
	paid REAL NOT NULL,
	due_date TEXT NOT NULL,
	status TEXT NOT NULL,
	last_synced_at TIMESTAMP NOT NULL
);
`

const createScheduleTable = `
CREATE TABLE schedule (
	id INTEGER PRIMARY KEY,
	course_id INTEGER NOT NULL,
	day TEXT NOT NULL,
	start_time TEXT NOT NULL,
	end_time TEXT NOT NULL,
	room TEXT NOT NULL DEFAULT '',
	last_synced_at TIMESTAMP NOT NULL
);
`

const createOutboxTable = `
CREATE TABLE outbox (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	operation_type TEXT NOT NULL,
	entity_type TEXT NOT NULL,
	entity_id TEXT NOT NULL DEFAULT '',
	payload TEXT NOT NULL,
	created_at TIMESTAMP NOT NULL,
	retry_count INTEGER NOT NULL DEFAULT 0,
	last_retry_at TIMESTAMP,
	status TEXT NOT NULL DEFAULT 'pending',
	last_error TEXT
);
`

const createSyncHistoryTable = `
CREATE TABLE sync_history (
	id TEXT PRIMARY KEY,
	started_at TIMESTAMP NOT NULL,
	completed_at TIMESTAMP,
	triggered_by TEXT NOT NULL,
	delivered INTEGER NOT NULL DEFAULT 0,
	failed INTEGER NOT NULL DEFAULT 0,
	abandoned INTEGER NOT NULL DEFAULT 0,
	refresh_errors INTEGER NOT NULL DEFAULT 0,
	status TEXT NOT NULL,
	error_message TEXT
);
`

const createIndices = `
CREATE INDEX idx_outbox_status_created ON outbox(status, created_at);
CREATE INDEX idx_attendance_course_date ON attendance(course_id, date);
CREATE INDEX idx_marks_course ON marks(course_id);
CREATE INDEX idx_announcements_course ON announcements(course_id);
CREATE INDEX idx_sync_history_started ON sync_history(started_at);
`
