package repo

import (
	"context"

	"go.uber.org/zap"

	"campus-sync/internal/logger"
	"campus-sync/internal/model"
	"campus-sync/internal/remote"
	"campus-sync/internal/store"
)

type TeacherRepository struct {
	repo
	// authorName labels optimistic local announcement rows until the
	// server copy replaces them.
	authorName string
}

func NewTeacherRepository(st store.Store, gw remote.Gateway, conn Connectivity, authorName string) *TeacherRepository {
	return &TeacherRepository{
		repo:       repo{store: st, gateway: gw, conn: conn},
		authorName: authorName,
	}
}

func (r *TeacherRepository) Name() string {
	return "teacher"
}

// SubmitAttendance commits the attendance sheet locally, queues it for
// delivery, and tries one immediate send when online. The caller is told
// "accepted" in every case except a local storage failure; delivery is the
// sync coordinator's job.
func (r *TeacherRepository) SubmitAttendance(ctx context.Context, req model.SubmitAttendanceRequest) error {
	entry, err := r.store.EnqueueAttendance(ctx, req)
	if err != nil {
		return err
	}
	r.trySend(ctx, entry, func() error {
		return r.gateway.SubmitAttendance(ctx, req)
	})
	return nil
}

func (r *TeacherRepository) SubmitMarks(ctx context.Context, req model.SubmitMarksRequest) error {
	entry, err := r.store.EnqueueMarks(ctx, req)
	if err != nil {
		return err
	}
	r.trySend(ctx, entry, func() error {
		return r.gateway.SubmitMarks(ctx, req)
	})
	return nil
}

func (r *TeacherRepository) PostAnnouncement(ctx context.Context, req model.PostAnnouncementRequest) error {
	entry, err := r.store.EnqueueAnnouncement(ctx, req, r.authorName)
	if err != nil {
		return err
	}
	r.trySend(ctx, entry, func() error {
		return r.gateway.PostAnnouncement(ctx, req)
	})
	return nil
}

// trySend attempts the opportunistic direct delivery of a freshly queued
// entry. On success the entry is confirmed; on any failure it stays queued
// for the next sync pass. The outbox entry exists before the send, so a
// crash between "sent" and "confirmed" replays the mutation, which the
// server's upsert semantics tolerate.
func (r *TeacherRepository) trySend(ctx context.Context, entry *store.OutboxEntry, send func() error) {
	if !r.conn.IsOnline() {
		return
	}

	if err := send(); err != nil {
		logger.Log.Info("Immediate send failed, mutation queued",
			zap.Int64("entry_id", entry.ID),
			zap.String("operation", entry.OperationType),
			zap.String("failure", remote.KindOf(err).String()),
			zap.Error(err),
		)
		if retryErr := r.store.IncrementRetry(ctx, entry.ID, err.Error()); retryErr != nil {
			logger.Log.Error("Failed to record retry", zap.Int64("entry_id", entry.ID), zap.Error(retryErr))
		}
		return
	}

	if err := r.store.ConfirmEntry(ctx, entry.ID); err != nil {
		// The server accepted the mutation; the entry stays queued and
		// replays on the next pass, which the upsert-safe API tolerates.
		logger.Log.Error("Failed to confirm delivered entry",
			zap.Int64("entry_id", entry.ID), zap.Error(err))
	}
}

// Refresh forces the teacher-facing list caches and returns the number of
// domains that failed.
func (r *TeacherRepository) Refresh(ctx context.Context) int {
	return runParallel(map[string]func() error{
		"courses":       func() error { return r.refreshCourses(ctx) },
		"announcements": func() error { return r.refreshAnnouncements(ctx) },
		"schedule":      func() error { return r.refreshSchedule(ctx) },
	})
}
