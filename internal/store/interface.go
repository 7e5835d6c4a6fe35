package store

import (
	"context"

	"campus-sync/internal/model"
)

type Store interface {
	// Mirror reads. Snapshots in the entity's natural order; an empty
	// cache yields an empty slice, never an error.
	GetProfile(ctx context.Context) (*model.Profile, error)
	ListCourses(ctx context.Context) ([]model.Course, error)
	ListAttendance(ctx context.Context, courseID int) ([]AttendanceRow, error)
	ListMarks(ctx context.Context, courseID int) ([]MarkRow, error)
	ListAnnouncements(ctx context.Context) ([]AnnouncementRow, error)
	ListNotifications(ctx context.Context) ([]model.Notification, error)
	ListFees(ctx context.Context) ([]model.FeeRecord, error)
	ListSchedule(ctx context.Context) ([]model.ScheduleEntry, error)

	// Mirror refresh writes. Upsert-by-primary-key; Replace* clears the
	// server-owned rows first so dropped entities disappear.
	UpsertProfile(ctx context.Context, p *model.Profile) error
	ReplaceCourses(ctx context.Context, courses []model.Course) error
	MergeAttendance(ctx context.Context, records []model.AttendanceRecord) error
	MergeMarks(ctx context.Context, records []model.MarkRecord) error
	ReplaceAnnouncements(ctx context.Context, announcements []model.Announcement) error
	ReplaceNotifications(ctx context.Context, notifications []model.Notification) error
	ReplaceFees(ctx context.Context, fees []model.FeeRecord) error
	ReplaceSchedule(ctx context.Context, entries []model.ScheduleEntry) error

	// Write path. Each Enqueue* commits the local write records and the
	// outbox entry in one transaction.
	EnqueueAttendance(ctx context.Context, req model.SubmitAttendanceRequest) (*OutboxEntry, error)
	EnqueueMarks(ctx context.Context, req model.SubmitMarksRequest) (*OutboxEntry, error)
	EnqueueAnnouncement(ctx context.Context, req model.PostAnnouncementRequest, author string) (*OutboxEntry, error)

	// Outbox maintenance.
	ListOutbox(ctx context.Context) ([]OutboxEntry, error)
	ListAbandoned(ctx context.Context) ([]OutboxEntry, error)
	OutboxDepth(ctx context.Context) (int, error)
	ConfirmEntry(ctx context.Context, entryID int64) error
	IncrementRetry(ctx context.Context, entryID int64, lastError string) error
	MarkAbandoned(ctx context.Context, entryID int64, lastError string) error
	RequeueAbandoned(ctx context.Context, entryID int64) error

	// History
	CreateSyncHistory(ctx context.Context, h *SyncHistory) error
	CompleteSyncHistory(ctx context.Context, h *SyncHistory) error
	ListSyncHistory(ctx context.Context, limit int) ([]SyncHistory, error)

	// General
	ClearAll(ctx context.Context) error
	Close() error
}
