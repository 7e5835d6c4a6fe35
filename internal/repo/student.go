package repo

import (
	"context"

	"campus-sync/internal/model"
	"campus-sync/internal/remote"
	"campus-sync/internal/store"
)

type StudentRepository struct {
	repo
}

func NewStudentRepository(st store.Store, gw remote.Gateway, conn Connectivity) *StudentRepository {
	return &StudentRepository{repo{store: st, gateway: gw, conn: conn}}
}

func (r *StudentRepository) Name() string {
	return "student"
}

// GetDashboard serves the profile header and summary counts. Offline or on
// a failed fetch the dashboard is rebuilt from cached tables.
func (r *StudentRepository) GetDashboard(ctx context.Context, forceRefresh bool) (*model.Dashboard, error) {
	if forceRefresh && r.conn.IsOnline() {
		d, err := r.refreshDashboard(ctx)
		if err == nil {
			return d, nil
		}
		logRefreshFailure("dashboard", err)
	}
	return r.dashboardFromCache(ctx)
}

func (r *StudentRepository) refreshDashboard(ctx context.Context) (*model.Dashboard, error) {
	d, err := r.gateway.FetchDashboard(ctx)
	if err != nil {
		return nil, err
	}
	if err := r.store.UpsertProfile(ctx, &d.Profile); err != nil {
		return nil, err
	}
	return d, nil
}

func (r *StudentRepository) dashboardFromCache(ctx context.Context) (*model.Dashboard, error) {
	profile, err := r.store.GetProfile(ctx)
	if err != nil {
		return nil, err
	}

	d := &model.Dashboard{}
	if profile != nil {
		d.Profile = *profile
	}

	courses, err := r.store.ListCourses(ctx)
	if err != nil {
		return nil, err
	}
	d.CourseCount = len(courses)

	notifications, err := r.store.ListNotifications(ctx)
	if err != nil {
		return nil, err
	}
	for _, n := range notifications {
		if !n.Read {
			d.UnreadNotices++
		}
	}

	fees, err := r.store.ListFees(ctx)
	if err != nil {
		return nil, err
	}
	for _, f := range fees {
		d.PendingFees += f.Amount - f.Paid
	}

	return d, nil
}

func (r *StudentRepository) refreshFees(ctx context.Context) error {
	fees, err := r.gateway.FetchFees(ctx)
	if err != nil {
		return err
	}
	return r.store.ReplaceFees(ctx, fees)
}

func (r *StudentRepository) GetFees(ctx context.Context, forceRefresh bool) ([]model.FeeRecord, error) {
	if forceRefresh && r.conn.IsOnline() {
		if err := r.refreshFees(ctx); err != nil {
			logRefreshFailure("fees", err)
		}
	}
	return r.store.ListFees(ctx)
}

// Refresh forces every list-level cache for the student role and returns
// the number of domains that failed. Per-course attendance and marks
// refresh on demand through their getters.
func (r *StudentRepository) Refresh(ctx context.Context) int {
	return runParallel(map[string]func() error{
		"dashboard": func() error {
			_, err := r.refreshDashboard(ctx)
			return err
		},
		"courses":       func() error { return r.refreshCourses(ctx) },
		"announcements": func() error { return r.refreshAnnouncements(ctx) },
		"notifications": func() error { return r.refreshNotifications(ctx) },
		"fees":          func() error { return r.refreshFees(ctx) },
		"schedule":      func() error { return r.refreshSchedule(ctx) },
	})
}
