// Package remotetest provides a configurable in-memory Gateway for tests.
package remotetest

import (
	"context"
	"sync"

	"campus-sync/internal/model"
	"campus-sync/internal/remote"
)

// FakeGateway serves canned data and records every mutation call. Set
// FailWith to make all calls fail; set MutationHook to control individual
// mutation outcomes (or to block, for concurrency tests).
type FakeGateway struct {
	mu sync.Mutex

	Dashboard     *model.Dashboard
	Courses       []model.Course
	Attendance    map[int][]model.AttendanceRecord
	Marks         map[int][]model.MarkRecord
	Announcements []model.Announcement
	Notifications []model.Notification
	Fees          []model.FeeRecord
	Schedule      []model.ScheduleEntry

	FailWith     error
	MutationHook func(op string) error

	FetchCalls            map[string]int
	AttendanceSubmissions []model.SubmitAttendanceRequest
	MarkSubmissions       []model.SubmitMarksRequest
	AnnouncementPosts     []model.PostAnnouncementRequest
}

var _ remote.Gateway = (*FakeGateway)(nil)

func New() *FakeGateway {
	return &FakeGateway{
		Attendance: map[int][]model.AttendanceRecord{},
		Marks:      map[int][]model.MarkRecord{},
		FetchCalls: map[string]int{},
	}
}

func (g *FakeGateway) fetch(name string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.FetchCalls[name]++
	return g.FailWith
}

// TotalFetchCalls returns the number of fetch calls across all domains.
func (g *FakeGateway) TotalFetchCalls() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	total := 0
	for _, n := range g.FetchCalls {
		total += n
	}
	return total
}

// TotalMutationCalls returns the number of mutation calls of any type.
func (g *FakeGateway) TotalMutationCalls() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.AttendanceSubmissions) + len(g.MarkSubmissions) + len(g.AnnouncementPosts)
}

func (g *FakeGateway) FetchDashboard(ctx context.Context) (*model.Dashboard, error) {
	if err := g.fetch("dashboard"); err != nil {
		return nil, err
	}
	if g.Dashboard == nil {
		return &model.Dashboard{}, nil
	}
	return g.Dashboard, nil
}

func (g *FakeGateway) FetchCourses(ctx context.Context) ([]model.Course, error) {
	if err := g.fetch("courses"); err != nil {
		return nil, err
	}
	return g.Courses, nil
}

func (g *FakeGateway) FetchAttendance(ctx context.Context, courseID int) ([]model.AttendanceRecord, error) {
	if err := g.fetch("attendance"); err != nil {
		return nil, err
	}
	return g.Attendance[courseID], nil
}

func (g *FakeGateway) FetchMarks(ctx context.Context, courseID int) ([]model.MarkRecord, error) {
	if err := g.fetch("marks"); err != nil {
		return nil, err
	}
	return g.Marks[courseID], nil
}

func (g *FakeGateway) FetchAnnouncements(ctx context.Context) ([]model.Announcement, error) {
	if err := g.fetch("announcements"); err != nil {
		return nil, err
	}
	return g.Announcements, nil
}

func (g *FakeGateway) FetchNotifications(ctx context.Context) ([]model.Notification, error) {
	if err := g.fetch("notifications"); err != nil {
		return nil, err
	}
	return g.Notifications, nil
}

func (g *FakeGateway) FetchFees(ctx context.Context) ([]model.FeeRecord, error) {
	if err := g.fetch("fees"); err != nil {
		return nil, err
	}
	return g.Fees, nil
}

func (g *FakeGateway) FetchSchedule(ctx context.Context) ([]model.ScheduleEntry, error) {
	if err := g.fetch("schedule"); err != nil {
		return nil, err
	}
	return g.Schedule, nil
}

func (g *FakeGateway) mutate(op string) error {
	if g.MutationHook != nil {
		return g.MutationHook(op)
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.FailWith
}

func (g *FakeGateway) SubmitAttendance(ctx context.Context, req model.SubmitAttendanceRequest) error {
	if err := g.mutate("attendance"); err != nil {
		return err
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	g.AttendanceSubmissions = append(g.AttendanceSubmissions, req)
	return nil
}

func (g *FakeGateway) SubmitMarks(ctx context.Context, req model.SubmitMarksRequest) error {
	if err := g.mutate("marks"); err != nil {
		return err
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	g.MarkSubmissions = append(g.MarkSubmissions, req)
	return nil
}

func (g *FakeGateway) PostAnnouncement(ctx context.Context, req model.PostAnnouncementRequest) error {
	if err := g.mutate("announcement"); err != nil {
		return err
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	g.AnnouncementPosts = append(g.AnnouncementPosts, req)
	return nil
}
