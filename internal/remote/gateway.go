package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync"

	"campus-sync/internal/config"
	"campus-sync/internal/model"
)

// Gateway is the one-shot typed interface to the campus API. No retries,
// no caching; each call either delivers a typed result or a categorized
// error.
type Gateway interface {
	FetchDashboard(ctx context.Context) (*model.Dashboard, error)
	FetchCourses(ctx context.Context) ([]model.Course, error)
	FetchAttendance(ctx context.Context, courseID int) ([]model.AttendanceRecord, error)
	FetchMarks(ctx context.Context, courseID int) ([]model.MarkRecord, error)
	FetchAnnouncements(ctx context.Context) ([]model.Announcement, error)
	FetchNotifications(ctx context.Context) ([]model.Notification, error)
	FetchFees(ctx context.Context) ([]model.FeeRecord, error)
	FetchSchedule(ctx context.Context) ([]model.ScheduleEntry, error)

	SubmitAttendance(ctx context.Context, req model.SubmitAttendanceRequest) error
	SubmitMarks(ctx context.Context, req model.SubmitMarksRequest) error
	PostAnnouncement(ctx context.Context, req model.PostAnnouncementRequest) error
}

// envelope is the campus API's uniform response wrapper.
type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

type Client struct {
	baseURL    string
	httpClient *http.Client

	// mu guards authToken: the app refreshes it while repository calls
	// and drain passes are in flight.
	mu        sync.RWMutex
	authToken string
}

var _ Gateway = (*Client)(nil)

func NewClient(cfg config.RemoteConfig) *Client {
	return &Client{
		baseURL:   cfg.BaseURL,
		authToken: cfg.AuthToken,
		httpClient: &http.Client{
			Timeout: cfg.GetTimeout(),
		},
	}
}

// SetAuthToken replaces the bearer token attached to subsequent calls.
func (c *Client) SetAuthToken(token string) {
	c.mu.Lock()
	c.authToken = token
	c.mu.Unlock()
}

func (c *Client) token() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.authToken
}

// do performs one HTTP exchange and decodes the envelope. out may be nil
// for mutation calls whose data payload is ignored.
func (c *Client) do(ctx context.Context, op, method, path string, body any, out any) error {
	var reqBody io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("%s: failed to marshal request: %w", op, err)
		}
		reqBody = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return fmt.Errorf("%s: failed to build request: %w", op, err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token := c.token(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &Error{Kind: FailureTransport, Op: op, Err: err}
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return &Error{Kind: FailureTransport, Op: op, Err: err}
	}

	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		return &Error{Kind: FailureAuth, Op: op, StatusCode: resp.StatusCode, Message: "authentication rejected"}
	}

	var env envelope
	if err := json.Unmarshal(respBody, &env); err != nil {
		return &Error{Kind: FailureHTTP, Op: op, StatusCode: resp.StatusCode, Message: "undecodable response body"}
	}

	// success=false with any status and non-2xx with success=true are
	// both failures.
	if !env.Success {
		return &Error{Kind: FailureApp, Op: op, StatusCode: resp.StatusCode, Message: env.Message}
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &Error{Kind: FailureHTTP, Op: op, StatusCode: resp.StatusCode, Message: env.Message}
	}

	if out != nil && len(env.Data) > 0 {
		if err := json.Unmarshal(env.Data, out); err != nil {
			return &Error{Kind: FailureHTTP, Op: op, StatusCode: resp.StatusCode, Message: "undecodable data payload"}
		}
	}

	return nil
}

func (c *Client) FetchDashboard(ctx context.Context) (*model.Dashboard, error) {
	var d model.Dashboard
	if err := c.do(ctx, "fetch dashboard", http.MethodGet, "/api/dashboard", nil, &d); err != nil {
		return nil, err
	}
	return &d, nil
}

func (c *Client) FetchCourses(ctx context.Context) ([]model.Course, error) {
	var courses []model.Course
	if err := c.do(ctx, "fetch courses", http.MethodGet, "/api/courses", nil, &courses); err != nil {
		return nil, err
	}
	return courses, nil
}

func (c *Client) FetchAttendance(ctx context.Context, courseID int) ([]model.AttendanceRecord, error) {
	var records []model.AttendanceRecord
	path := fmt.Sprintf("/api/courses/%d/attendance", courseID)
	if err := c.do(ctx, "fetch attendance", http.MethodGet, path, nil, &records); err != nil {
		return nil, err
	}
	return records, nil
}

func (c *Client) FetchMarks(ctx context.Context, courseID int) ([]model.MarkRecord, error) {
	var records []model.MarkRecord
	path := fmt.Sprintf("/api/courses/%d/marks", courseID)
	if err := c.do(ctx, "fetch marks", http.MethodGet, path, nil, &records); err != nil {
		return nil, err
	}
	return records, nil
}

func (c *Client) FetchAnnouncements(ctx context.Context) ([]model.Announcement, error) {
	var announcements []model.Announcement
	if err := c.do(ctx, "fetch announcements", http.MethodGet, "/api/announcements", nil, &announcements); err != nil {
		return nil, err
	}
	return announcements, nil
}

func (c *Client) FetchNotifications(ctx context.Context) ([]model.Notification, error) {
	var notifications []model.Notification
	if err := c.do(ctx, "fetch notifications", http.MethodGet, "/api/notifications", nil, &notifications); err != nil {
		return nil, err
	}
	return notifications, nil
}

func (c *Client) FetchFees(ctx context.Context) ([]model.FeeRecord, error) {
	var fees []model.FeeRecord
	if err := c.do(ctx, "fetch fees", http.MethodGet, "/api/fees", nil, &fees); err != nil {
		return nil, err
	}
	return fees, nil
}

func (c *Client) FetchSchedule(ctx context.Context) ([]model.ScheduleEntry, error) {
	var entries []model.ScheduleEntry
	if err := c.do(ctx, "fetch schedule", http.MethodGet, "/api/schedule", nil, &entries); err != nil {
		return nil, err
	}
	return entries, nil
}

// Mutation endpoints are upsert-safe server-side: resubmitting the same
// logical mutation overwrites rather than duplicates, which is what makes
// the outbox's at-least-once replay safe.

func (c *Client) SubmitAttendance(ctx context.Context, req model.SubmitAttendanceRequest) error {
	return c.do(ctx, "submit attendance", http.MethodPost, "/api/attendance", req, nil)
}

func (c *Client) SubmitMarks(ctx context.Context, req model.SubmitMarksRequest) error {
	return c.do(ctx, "submit marks", http.MethodPost, "/api/marks", req, nil)
}

func (c *Client) PostAnnouncement(ctx context.Context, req model.PostAnnouncementRequest) error {
	return c.do(ctx, "post announcement", http.MethodPost, "/api/announcements", req, nil)
}
