package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"go.uber.org/zap"

	"campus-sync/internal/config"
	"campus-sync/internal/logger"
	"campus-sync/internal/model"
)

type SQLiteStore struct {
	db *sql.DB
}

func NewSQLiteStore(cfg config.StoreConfig) (*SQLiteStore, error) {
	dir := filepath.Dir(cfg.FilePath)
	if dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create store directory: %w", err)
		}
	}

	dsn := fmt.Sprintf("file:%s?_busy_timeout=5000&_foreign_keys=on", cfg.FilePath)
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite store: %w", err)
	}

	// SQLite works best with a single writer connection.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping sqlite store: %w", err)
	}

	if err := applyMigrations(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate sqlite store: %w", err)
	}

	logger.Log.Info("Opened durable store", zap.String("path", cfg.FilePath))

	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// execTx executes fn within a transaction.
func (s *SQLiteStore) execTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}

	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return fmt.Errorf("tx err: %v, rb err: %v", err, rbErr)
		}
		return err
	}

	return tx.Commit()
}

// --- Mirror reads ---

func (s *SQLiteStore) GetProfile(ctx context.Context) (*model.Profile, error) {
	query := `SELECT id, name, email, role, department, reg_number FROM profile LIMIT 1`

	var p model.Profile
	err := s.db.QueryRowContext(ctx, query).Scan(
		&p.ID, &p.Name, &p.Email, &p.Role, &p.Department, &p.RegNumber,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	return &p, nil
}

func (s *SQLiteStore) ListCourses(ctx context.Context) ([]model.Course, error) {
	query := `SELECT id, code, title, teacher_name, credit_hours, semester FROM courses ORDER BY code`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	courses := []model.Course{}
	for rows.Next() {
		var c model.Course
		if err := rows.Scan(&c.ID, &c.Code, &c.Title, &c.TeacherName, &c.CreditHours, &c.Semester); err != nil {
			return nil, err
		}
		courses = append(courses, c)
	}

	return courses, rows.Err()
}

func (s *SQLiteStore) ListAttendance(ctx context.Context, courseID int) ([]AttendanceRow, error) {
	query := `SELECT course_id, student_id, date, status, is_synced, last_synced_at
			  FROM attendance WHERE course_id = ? ORDER BY date DESC, student_id`

	rows, err := s.db.QueryContext(ctx, query, courseID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	records := []AttendanceRow{}
	for rows.Next() {
		var r AttendanceRow
		if err := rows.Scan(&r.CourseID, &r.StudentID, &r.Date, &r.Status, &r.IsSynced, &r.LastSyncedAt); err != nil {
			return nil, err
		}
		records = append(records, r)
	}

	return records, rows.Err()
}

func (s *SQLiteStore) ListMarks(ctx context.Context, courseID int) ([]MarkRow, error) {
	query := `SELECT course_id, student_id, evaluation, obtained, total, is_synced, last_synced_at
			  FROM marks WHERE course_id = ? ORDER BY evaluation, student_id`

	rows, err := s.db.QueryContext(ctx, query, courseID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	records := []MarkRow{}
	for rows.Next() {
		var r MarkRow
		if err := rows.Scan(&r.CourseID, &r.StudentID, &r.Evaluation, &r.Obtained, &r.Total, &r.IsSynced, &r.LastSyncedAt); err != nil {
			return nil, err
		}
		records = append(records, r)
	}

	return records, rows.Err()
}

func (s *SQLiteStore) ListAnnouncements(ctx context.Context) ([]AnnouncementRow, error) {
	query := `SELECT id, course_id, title, body, author, posted_at, is_synced, last_synced_at
			  FROM announcements ORDER BY posted_at DESC, id DESC`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	announcements := []AnnouncementRow{}
	for rows.Next() {
		var a AnnouncementRow
		if err := rows.Scan(&a.ID, &a.CourseID, &a.Title, &a.Body, &a.Author, &a.PostedAt, &a.IsSynced, &a.LastSyncedAt); err != nil {
			return nil, err
		}
		announcements = append(announcements, a)
	}

	return announcements, rows.Err()
}

func (s *SQLiteStore) ListNotifications(ctx context.Context) ([]model.Notification, error) {
	query := `SELECT id, title, body, created_at, is_read FROM notifications ORDER BY created_at DESC, id DESC`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	notifications := []model.Notification{}
	for rows.Next() {
		var n model.Notification
		if err := rows.Scan(&n.ID, &n.Title, &n.Body, &n.CreatedAt, &n.Read); err != nil {
			return nil, err
		}
		notifications = append(notifications, n)
	}

	return notifications, rows.Err()
}

func (s *SQLiteStore) ListFees(ctx context.Context) ([]model.FeeRecord, error) {
	query := `SELECT id, semester, amount, paid, due_date, status FROM fees ORDER BY due_date DESC, id DESC`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	fees := []model.FeeRecord{}
	for rows.Next() {
		var f model.FeeRecord
		if err := rows.Scan(&f.ID, &f.Semester, &f.Amount, &f.Paid, &f.DueDate, &f.Status); err != nil {
			return nil, err
		}
		fees = append(fees, f)
	}

	return fees, rows.Err()
}

func (s *SQLiteStore) ListSchedule(ctx context.Context) ([]model.ScheduleEntry, error) {
	query := `SELECT id, course_id, day, start_time, end_time, room FROM schedule ORDER BY id`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	entries := []model.ScheduleEntry{}
	for rows.Next() {
		var e model.ScheduleEntry
		if err := rows.Scan(&e.ID, &e.CourseID, &e.Day, &e.StartTime, &e.EndTime, &e.Room); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}

	return entries, rows.Err()
}

// --- Mirror refresh writes ---

func (s *SQLiteStore) UpsertProfile(ctx context.Context, p *model.Profile) error {
	query := `INSERT INTO profile (id, name, email, role, department, reg_number, last_synced_at)
			  VALUES (?, ?, ?, ?, ?, ?, ?)
			  ON CONFLICT(id) DO UPDATE SET
			  name = excluded.name,
			  email = excluded.email,
			  role = excluded.role,
			  department = excluded.department,
			  reg_number = excluded.reg_number,
			  last_synced_at = excluded.last_synced_at`

	_, err := s.db.ExecContext(ctx, query, p.ID, p.Name, p.Email, p.Role, p.Department, p.RegNumber, time.Now().UTC())
	return err
}

func (s *SQLiteStore) ReplaceCourses(ctx context.Context, courses []model.Course) error {
	now := time.Now().UTC()
	return s.execTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM courses`); err != nil {
			return err
		}
		for _, c := range courses {
			_, err := tx.ExecContext(ctx,
				`INSERT INTO courses (id, code, title, teacher_name, credit_hours, semester, last_synced_at)
				 VALUES (?, ?, ?, ?, ?, ?, ?)`,
				c.ID, c.Code, c.Title, c.TeacherName, c.CreditHours, c.Semester, now,
			)
			if err != nil {
				return err
			}
		}
		return nil
	})
}

// MergeAttendance upserts fetched attendance. Rows holding an unconfirmed
// local edit (is_synced = 0) are left untouched so the local value stays
// visible until its outbox entry is delivered.
func (s *SQLiteStore) MergeAttendance(ctx context.Context, records []model.AttendanceRecord) error {
	now := time.Now().UTC()
	return s.execTx(ctx, func(tx *sql.Tx) error {
		for _, r := range records {
			_, err := tx.ExecContext(ctx,
				`INSERT INTO attendance (course_id, student_id, date, status, is_synced, last_synced_at)
				 VALUES (?, ?, ?, ?, 1, ?)
				 ON CONFLICT(course_id, student_id, date) DO UPDATE SET
				 status = excluded.status,
				 is_synced = 1,
				 last_synced_at = excluded.last_synced_at
				 WHERE attendance.is_synced = 1`,
				r.CourseID, r.StudentID, r.Date, r.Status, now,
			)
			if err != nil {
				return err
			}
		}
		return nil
	})
}

func (s *SQLiteStore) MergeMarks(ctx context.Context, records []model.MarkRecord) error {
	now := time.Now().UTC()
	return s.execTx(ctx, func(tx *sql.Tx) error {
		for _, r := range records {
			_, err := tx.ExecContext(ctx,
				`INSERT INTO marks (course_id, student_id, evaluation, obtained, total, is_synced, last_synced_at)
				 VALUES (?, ?, ?, ?, ?, 1, ?)
				 ON CONFLICT(course_id, student_id, evaluation) DO UPDATE SET
				 obtained = excluded.obtained,
				 total = excluded.total,
				 is_synced = 1,
				 last_synced_at = excluded.last_synced_at
				 WHERE marks.is_synced = 1`,
				r.CourseID, r.StudentID, r.Evaluation, r.Obtained, r.Total, now,
			)
			if err != nil {
				return err
			}
		}
		return nil
	})
}

// ReplaceAnnouncements replaces the server-owned rows wholesale. Pending
// local posts (negative ids, unsynced) survive until their outbox entry
// confirms; confirmed local posts are superseded by the incoming server
// copies and purged here.
func (s *SQLiteStore) ReplaceAnnouncements(ctx context.Context, announcements []model.Announcement) error {
	now := time.Now().UTC()
	return s.execTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM announcements WHERE id > 0 OR is_synced = 1`); err != nil {
			return err
		}
		for _, a := range announcements {
			_, err := tx.ExecContext(ctx,
				`INSERT INTO announcements (id, course_id, title, body, author, posted_at, is_synced, last_synced_at)
				 VALUES (?, ?, ?, ?, ?, ?, 1, ?)`,
				a.ID, a.CourseID, a.Title, a.Body, a.Author, a.PostedAt, now,
			)
			if err != nil {
				return err
			}
		}
		return nil
	})
}

func (s *SQLiteStore) ReplaceNotifications(ctx context.Context, notifications []model.Notification) error {
	now := time.Now().UTC()
	return s.execTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM notifications`); err != nil {
			return err
		}
		for _, n := range notifications {
			_, err := tx.ExecContext(ctx,
				`INSERT INTO notifications (id, title, body, created_at, is_read, last_synced_at)
				 VALUES (?, ?, ?, ?, ?, ?)`,
				n.ID, n.Title, n.Body, n.CreatedAt, n.Read, now,
			)
			if err != nil {
				return err
			}
		}
		return nil
	})
}

func (s *SQLiteStore) ReplaceFees(ctx context.Context, fees []model.FeeRecord) error {
	now := time.Now().UTC()
	return s.execTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM fees`); err != nil {
			return err
		}
		for _, f := range fees {
			_, err := tx.ExecContext(ctx,
				`INSERT INTO fees (id, semester, amount, paid, due_date, status, last_synced_at)
				 VALUES (?, ?, ?, ?, ?, ?, ?)`,
				f.ID, f.Semester, f.Amount, f.Paid, f.DueDate, f.Status, now,
			)
			if err != nil {
				return err
			}
		}
		return nil
	})
}

func (s *SQLiteStore) ReplaceSchedule(ctx context.Context, entries []model.ScheduleEntry) error {
	now := time.Now().UTC()
	return s.execTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM schedule`); err != nil {
			return err
		}
		for _, e := range entries {
			_, err := tx.ExecContext(ctx,
				`INSERT INTO schedule (id, course_id, day, start_time, end_time, room, last_synced_at)
				 VALUES (?, ?, ?, ?, ?, ?, ?)`,
				e.ID, e.CourseID, e.Day, e.StartTime, e.EndTime, e.Room, now,
			)
			if err != nil {
				return err
			}
		}
		return nil
	})
}

// --- Write path ---

func (s *SQLiteStore) EnqueueAttendance(ctx context.Context, req model.SubmitAttendanceRequest) (*OutboxEntry, error) {
	payload, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal attendance payload: %w", err)
	}

	now := time.Now().UTC()
	var entry *OutboxEntry

	err = s.execTx(ctx, func(tx *sql.Tx) error {
		for _, r := range req.Records {
			_, err := tx.ExecContext(ctx,
				`INSERT INTO attendance (course_id, student_id, date, status, is_synced, last_synced_at)
				 VALUES (?, ?, ?, ?, 0, ?)
				 ON CONFLICT(course_id, student_id, date) DO UPDATE SET
				 status = excluded.status,
				 is_synced = 0,
				 last_synced_at = excluded.last_synced_at`,
				req.CourseID, r.StudentID, req.Date, r.Status, now,
			)
			if err != nil {
				return err
			}
		}

		e, err := insertOutbox(ctx, tx, OpMarkAttendance, "attendance",
			fmt.Sprintf("%d:%s", req.CourseID, req.Date), payload, now)
		if err != nil {
			return err
		}
		entry = e
		return nil
	})
	if err != nil {
		return nil, err
	}

	return entry, nil
}

func (s *SQLiteStore) EnqueueMarks(ctx context.Context, req model.SubmitMarksRequest) (*OutboxEntry, error) {
	payload, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal marks payload: %w", err)
	}

	now := time.Now().UTC()
	var entry *OutboxEntry

	err = s.execTx(ctx, func(tx *sql.Tx) error {
		for _, r := range req.Records {
			_, err := tx.ExecContext(ctx,
				`INSERT INTO marks (course_id, student_id, evaluation, obtained, total, is_synced, last_synced_at)
				 VALUES (?, ?, ?, ?, ?, 0, ?)
				 ON CONFLICT(course_id, student_id, evaluation) DO UPDATE SET
				 obtained = excluded.obtained,
				 total = excluded.total,
				 is_synced = 0,
				 last_synced_at = excluded.last_synced_at`,
				req.CourseID, r.StudentID, req.Evaluation, r.Obtained, req.Total, now,
			)
			if err != nil {
				return err
			}
		}

		e, err := insertOutbox(ctx, tx, OpSaveMarks, "marks",
			fmt.Sprintf("%d:%s", req.CourseID, req.Evaluation), payload, now)
		if err != nil {
			return err
		}
		entry = e
		return nil
	})
	if err != nil {
		return nil, err
	}

	return entry, nil
}

func (s *SQLiteStore) EnqueueAnnouncement(ctx context.Context, req model.PostAnnouncementRequest, author string) (*OutboxEntry, error) {
	payload, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal announcement payload: %w", err)
	}

	now := time.Now().UTC()
	var entry *OutboxEntry

	err = s.execTx(ctx, func(tx *sql.Tx) error {
		e, err := insertOutbox(ctx, tx, OpPostAnnouncement, "announcement", "", payload, now)
		if err != nil {
			return err
		}

		// Optimistic local row; negative id marks it server-unconfirmed.
		_, err = tx.ExecContext(ctx,
			`INSERT INTO announcements (id, course_id, title, body, author, posted_at, is_synced, last_synced_at)
			 VALUES (?, ?, ?, ?, ?, ?, 0, ?)`,
			-e.ID, req.CourseID, req.Title, req.Body, author, now.Format("2006-01-02"), now,
		)
		if err != nil {
			return err
		}

		entry = e
		return nil
	})
	if err != nil {
		return nil, err
	}

	return entry, nil
}

func insertOutbox(ctx context.Context, tx *sql.Tx, opType, entityType, entityID string, payload []byte, now time.Time) (*OutboxEntry, error) {
	res, err := tx.ExecContext(ctx,
		`INSERT INTO outbox (operation_type, entity_type, entity_id, payload, created_at, retry_count, status)
		 VALUES (?, ?, ?, ?, ?, 0, ?)`,
		opType, entityType, entityID, string(payload), now, StatusPending,
	)
	if err != nil {
		return nil, err
	}

	id, err := res.LastInsertId()
	if err != nil {
		return nil, err
	}

	return &OutboxEntry{
		ID:            id,
		OperationType: opType,
		EntityType:    entityType,
		EntityID:      entityID,
		Payload:       payload,
		CreatedAt:     now,
		Status:        StatusPending,
	}, nil
}

// --- Outbox maintenance ---

const outboxColumns = `id, operation_type, entity_type, entity_id, payload, created_at, retry_count, last_retry_at, status, last_error`

func (s *SQLiteStore) listOutboxByStatus(ctx context.Context, status string) ([]OutboxEntry, error) {
	query := `SELECT ` + outboxColumns + ` FROM outbox WHERE status = ? ORDER BY created_at ASC, id ASC`

	rows, err := s.db.QueryContext(ctx, query, status)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	entries := []OutboxEntry{}
	for rows.Next() {
		var e OutboxEntry
		var payload string
		err := rows.Scan(
			&e.ID, &e.OperationType, &e.EntityType, &e.EntityID, &payload,
			&e.CreatedAt, &e.RetryCount, &e.LastRetryAt, &e.Status, &e.LastError,
		)
		if err != nil {
			return nil, err
		}
		e.Payload = json.RawMessage(payload)
		entries = append(entries, e)
	}

	return entries, rows.Err()
}

func (s *SQLiteStore) ListOutbox(ctx context.Context) ([]OutboxEntry, error) {
	return s.listOutboxByStatus(ctx, StatusPending)
}

func (s *SQLiteStore) ListAbandoned(ctx context.Context) ([]OutboxEntry, error) {
	return s.listOutboxByStatus(ctx, StatusAbandoned)
}

func (s *SQLiteStore) OutboxDepth(ctx context.Context) (int, error) {
	var depth int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM outbox WHERE status = ?`, StatusPending).Scan(&depth)
	return depth, err
}

// ConfirmEntry removes a delivered entry and flips the matching local rows
// to synced. The value guard keeps a row unsynced when a later queued edit
// has already overwritten it.
func (s *SQLiteStore) ConfirmEntry(ctx context.Context, entryID int64) error {
	return s.execTx(ctx, func(tx *sql.Tx) error {
		var opType string
		var payload string
		err := tx.QueryRowContext(ctx,
			`SELECT operation_type, payload FROM outbox WHERE id = ?`, entryID,
		).Scan(&opType, &payload)
		if err == sql.ErrNoRows {
			return nil
		}
		if err != nil {
			return err
		}

		now := time.Now().UTC()

		switch opType {
		case OpMarkAttendance:
			var req model.SubmitAttendanceRequest
			if err := json.Unmarshal([]byte(payload), &req); err != nil {
				return fmt.Errorf("failed to decode attendance payload for entry %d: %w", entryID, err)
			}
			for _, r := range req.Records {
				_, err := tx.ExecContext(ctx,
					`UPDATE attendance SET is_synced = 1, last_synced_at = ?
					 WHERE course_id = ? AND student_id = ? AND date = ? AND status = ?`,
					now, req.CourseID, r.StudentID, req.Date, r.Status,
				)
				if err != nil {
					return err
				}
			}

		case OpSaveMarks:
			var req model.SubmitMarksRequest
			if err := json.Unmarshal([]byte(payload), &req); err != nil {
				return fmt.Errorf("failed to decode marks payload for entry %d: %w", entryID, err)
			}
			for _, r := range req.Records {
				_, err := tx.ExecContext(ctx,
					`UPDATE marks SET is_synced = 1, last_synced_at = ?
					 WHERE course_id = ? AND student_id = ? AND evaluation = ? AND obtained = ? AND total = ?`,
					now, req.CourseID, r.StudentID, req.Evaluation, r.Obtained, req.Total,
				)
				if err != nil {
					return err
				}
			}

		case OpPostAnnouncement:
			// The optimistic row stays visible; the next refresh replaces
			// it with the server copy.
			_, err := tx.ExecContext(ctx,
				`UPDATE announcements SET is_synced = 1, last_synced_at = ? WHERE id = ?`,
				now, -entryID,
			)
			if err != nil {
				return err
			}
		}

		_, err = tx.ExecContext(ctx, `DELETE FROM outbox WHERE id = ?`, entryID)
		return err
	})
}

func (s *SQLiteStore) IncrementRetry(ctx context.Context, entryID int64, lastError string) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE outbox SET retry_count = retry_count + 1, last_retry_at = ?, last_error = ? WHERE id = ?`,
		time.Now().UTC(), lastError, entryID,
	)
	return err
}

func (s *SQLiteStore) MarkAbandoned(ctx context.Context, entryID int64, lastError string) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE outbox SET status = ?, last_retry_at = ?, last_error = ? WHERE id = ?`,
		StatusAbandoned, time.Now().UTC(), lastError, entryID,
	)
	return err
}

func (s *SQLiteStore) RequeueAbandoned(ctx context.Context, entryID int64) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE outbox SET status = ?, retry_count = 0, last_retry_at = NULL, last_error = NULL
		 WHERE id = ? AND status = ?`,
		StatusPending, entryID, StatusAbandoned,
	)
	return err
}

// --- History ---

func (s *SQLiteStore) CreateSyncHistory(ctx context.Context, h *SyncHistory) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO sync_history (id, started_at, triggered_by, status) VALUES (?, ?, ?, ?)`,
		h.ID, h.StartedAt, h.TriggeredBy, h.Status,
	)
	return err
}

func (s *SQLiteStore) CompleteSyncHistory(ctx context.Context, h *SyncHistory) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE sync_history SET completed_at = ?, delivered = ?, failed = ?, abandoned = ?,
		 refresh_errors = ?, status = ?, error_message = ? WHERE id = ?`,
		h.CompletedAt, h.Delivered, h.Failed, h.Abandoned,
		h.RefreshErrors, h.Status, h.ErrorMessage, h.ID,
	)
	return err
}

func (s *SQLiteStore) ListSyncHistory(ctx context.Context, limit int) ([]SyncHistory, error) {
	query := `SELECT id, started_at, completed_at, triggered_by, delivered, failed, abandoned, refresh_errors, status, error_message
			  FROM sync_history ORDER BY started_at DESC LIMIT ?`

	rows, err := s.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	history := []SyncHistory{}
	for rows.Next() {
		var h SyncHistory
		err := rows.Scan(
			&h.ID, &h.StartedAt, &h.CompletedAt, &h.TriggeredBy,
			&h.Delivered, &h.Failed, &h.Abandoned, &h.RefreshErrors,
			&h.Status, &h.ErrorMessage,
		)
		if err != nil {
			return nil, err
		}
		history = append(history, h)
	}

	return history, rows.Err()
}

// --- General ---

// ClearAll wipes every table. Used on logout.
func (s *SQLiteStore) ClearAll(ctx context.Context) error {
	tables := []string{
		"profile", "courses", "attendance", "marks", "announcements",
		"notifications", "fees", "schedule", "outbox", "sync_history",
	}

	return s.execTx(ctx, func(tx *sql.Tx) error {
		for _, t := range tables {
			if _, err := tx.ExecContext(ctx, `DELETE FROM `+t); err != nil {
				return err
			}
		}
		return nil
	})
}
