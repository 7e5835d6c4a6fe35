package store

import (
	"database/sql"
	"encoding/json"
	"time"
)

// Outbox operation types. One constant per mutation the remote API accepts;
// the payload column is the JSON-serialized request for that operation.
const (
	OpMarkAttendance   = "MARK_ATTENDANCE"
	OpSaveMarks        = "SAVE_MARKS"
	OpPostAnnouncement = "POST_ANNOUNCEMENT"
)

// Outbox entry statuses.
const (
	StatusPending   = "pending"
	StatusAbandoned = "abandoned"
)

type OutboxEntry struct {
	ID            int64           `db:"id"`
	OperationType string          `db:"operation_type"`
	EntityType    string          `db:"entity_type"`
	EntityID      string          `db:"entity_id"`
	Payload       json.RawMessage `db:"payload"`
	CreatedAt     time.Time       `db:"created_at"`
	RetryCount    int             `db:"retry_count"`
	LastRetryAt   sql.NullTime    `db:"last_retry_at"`
	Status        string          `db:"status"`
	LastError     sql.NullString  `db:"last_error"`
}

// AttendanceRow is a locally stored attendance record. IsSynced is false
// while a queued mutation for this row awaits server confirmation.
type AttendanceRow struct {
	CourseID     int       `db:"course_id"`
	StudentID    int       `db:"student_id"`
	Date         string    `db:"date"`
	Status       string    `db:"status"`
	IsSynced     bool      `db:"is_synced"`
	LastSyncedAt time.Time `db:"last_synced_at"`
}

type MarkRow struct {
	CourseID     int       `db:"course_id"`
	StudentID    int       `db:"student_id"`
	Evaluation   string    `db:"evaluation"`
	Obtained     float64   `db:"obtained"`
	Total        float64   `db:"total"`
	IsSynced     bool      `db:"is_synced"`
	LastSyncedAt time.Time `db:"last_synced_at"`
}

// AnnouncementRow mirrors a server announcement. Locally posted
// announcements that the server has not confirmed yet carry a negative ID
// (the negated outbox entry id) and IsSynced=false.
type AnnouncementRow struct {
	ID           int64     `db:"id"`
	CourseID     int       `db:"course_id"`
	Title        string    `db:"title"`
	Body         string    `db:"body"`
	Author       string    `db:"author"`
	PostedAt     string    `db:"posted_at"`
	IsSynced     bool      `db:"is_synced"`
	LastSyncedAt time.Time `db:"last_synced_at"`
}

type SyncHistory struct {
	ID            string         `db:"id"`
	StartedAt     time.Time      `db:"started_at"`
	CompletedAt   sql.NullTime   `db:"completed_at"`
	TriggeredBy   string         `db:"triggered_by"`
	Delivered     int            `db:"delivered"`
	Failed        int            `db:"failed"`
	Abandoned     int            `db:"abandoned"`
	RefreshErrors int            `db:"refresh_errors"`
	Status        string         `db:"status"`
	ErrorMessage  sql.NullString `db:"error_message"`
}
