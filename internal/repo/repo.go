// Package repo arbitrates between the durable store and the remote
// gateway. Reads degrade to the cached snapshot on any network failure;
// writes commit locally, queue in the outbox, and opportunistically send.
package repo

import (
	"context"

	"go.uber.org/zap"

	"campus-sync/internal/logger"
	"campus-sync/internal/model"
	"campus-sync/internal/remote"
	"campus-sync/internal/store"
)

// Connectivity is the point-in-time reachability question the repository
// asks before attempting a network fetch.
type Connectivity interface {
	IsOnline() bool
}

// repo carries the shared read path. Student and Teacher facades embed it;
// the cache-aside policy is identical for both roles.
type repo struct {
	store   store.Store
	gateway remote.Gateway
	conn    Connectivity
}

// logRefreshFailure records a failed forced refresh. The caller falls back
// to the cached snapshot; the failure never reaches the UI.
func logRefreshFailure(domain string, err error) {
	logger.Log.Warn("Refresh failed, serving cached data",
		zap.String("domain", domain),
		zap.String("failure", remote.KindOf(err).String()),
		zap.Error(err),
	)
}

func (r *repo) refreshCourses(ctx context.Context) error {
	courses, err := r.gateway.FetchCourses(ctx)
	if err != nil {
		return err
	}
	return r.store.ReplaceCourses(ctx, courses)
}

func (r *repo) refreshAttendance(ctx context.Context, courseID int) error {
	records, err := r.gateway.FetchAttendance(ctx, courseID)
	if err != nil {
		return err
	}
	return r.store.MergeAttendance(ctx, records)
}

func (r *repo) refreshMarks(ctx context.Context, courseID int) error {
	records, err := r.gateway.FetchMarks(ctx, courseID)
	if err != nil {
		return err
	}
	return r.store.MergeMarks(ctx, records)
}

func (r *repo) refreshAnnouncements(ctx context.Context) error {
	announcements, err := r.gateway.FetchAnnouncements(ctx)
	if err != nil {
		return err
	}
	return r.store.ReplaceAnnouncements(ctx, announcements)
}

func (r *repo) refreshNotifications(ctx context.Context) error {
	notifications, err := r.gateway.FetchNotifications(ctx)
	if err != nil {
		return err
	}
	return r.store.ReplaceNotifications(ctx, notifications)
}

func (r *repo) refreshSchedule(ctx context.Context) error {
	entries, err := r.gateway.FetchSchedule(ctx)
	if err != nil {
		return err
	}
	return r.store.ReplaceSchedule(ctx, entries)
}

func (r *repo) GetCourses(ctx context.Context, forceRefresh bool) ([]model.Course, error) {
	if forceRefresh && r.conn.IsOnline() {
		if err := r.refreshCourses(ctx); err != nil {
			logRefreshFailure("courses", err)
		}
	}
	return r.store.ListCourses(ctx)
}

func (r *repo) GetAttendance(ctx context.Context, courseID int, forceRefresh bool) ([]store.AttendanceRow, error) {
	if forceRefresh && r.conn.IsOnline() {
		if err := r.refreshAttendance(ctx, courseID); err != nil {
			logRefreshFailure("attendance", err)
		}
	}
	return r.store.ListAttendance(ctx, courseID)
}

func (r *repo) GetMarks(ctx context.Context, courseID int, forceRefresh bool) ([]store.MarkRow, error) {
	if forceRefresh && r.conn.IsOnline() {
		if err := r.refreshMarks(ctx, courseID); err != nil {
			logRefreshFailure("marks", err)
		}
	}
	return r.store.ListMarks(ctx, courseID)
}

func (r *repo) GetAnnouncements(ctx context.Context, forceRefresh bool) ([]store.AnnouncementRow, error) {
	if forceRefresh && r.conn.IsOnline() {
		if err := r.refreshAnnouncements(ctx); err != nil {
			logRefreshFailure("announcements", err)
		}
	}
	return r.store.ListAnnouncements(ctx)
}

func (r *repo) GetNotifications(ctx context.Context, forceRefresh bool) ([]model.Notification, error) {
	if forceRefresh && r.conn.IsOnline() {
		if err := r.refreshNotifications(ctx); err != nil {
			logRefreshFailure("notifications", err)
		}
	}
	return r.store.ListNotifications(ctx)
}

func (r *repo) GetSchedule(ctx context.Context, forceRefresh bool) ([]model.ScheduleEntry, error) {
	if forceRefresh && r.conn.IsOnline() {
		if err := r.refreshSchedule(ctx); err != nil {
			logRefreshFailure("schedule", err)
		}
	}
	return r.store.ListSchedule(ctx)
}

// runParallel executes the refresh funcs concurrently and returns how many
// failed. One domain's failure never blocks another's refresh.
func runParallel(fns map[string]func() error) int {
	type result struct {
		domain string
		err    error
	}

	results := make(chan result, len(fns))
	for domain, fn := range fns {
		go func(domain string, fn func() error) {
			results <- result{domain, fn()}
		}(domain, fn)
	}

	failed := 0
	for range fns {
		res := <-results
		if res.err != nil {
			logRefreshFailure(res.domain, res.err)
			failed++
		}
	}
	return failed
}
