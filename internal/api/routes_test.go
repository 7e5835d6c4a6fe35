package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"campus-sync/internal/config"
	"campus-sync/internal/model"
	"campus-sync/internal/remote/remotetest"
	"campus-sync/internal/store"
	"campus-sync/internal/sync"
)

type alwaysOnline struct {
	events chan struct{}
}

func (c *alwaysOnline) IsOnline() bool { return true }

func (c *alwaysOnline) Events() <-chan struct{} { return c.events }

func newTestHandler(t *testing.T, cfg config.ServerConfig) (*Handler, store.Store, *sync.Coordinator) {
	t.Helper()

	st, err := store.NewSQLiteStore(config.StoreConfig{
		FilePath: filepath.Join(t.TempDir(), "test.db"),
	})
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })

	policy := sync.RetryPolicy{MaxAttempts: 3, BaseBackoff: time.Second, MaxBackoff: time.Minute}
	coordinator := sync.NewCoordinator(st, remotetest.New(), &alwaysOnline{events: make(chan struct{}, 1)}, policy)

	return NewHandler(cfg, coordinator, st), st, coordinator
}

func doRequest(h *Handler, method, path, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	h.Routes().ServeHTTP(rec, req)
	return rec
}

func TestHealthCheck(t *testing.T) {
	h, _, _ := newTestHandler(t, config.ServerConfig{})

	rec := doRequest(h, http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "OK", rec.Body.String())
}

func TestAuthMiddleware(t *testing.T) {
	h, _, _ := newTestHandler(t, config.ServerConfig{AuthToken: "secret"})

	t.Run("missing token", func(t *testing.T) {
		rec := doRequest(h, http.MethodGet, "/api/v1/sync/status", "")
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("wrong token", func(t *testing.T) {
		rec := doRequest(h, http.MethodGet, "/api/v1/sync/status", "wrong")
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("correct token", func(t *testing.T) {
		rec := doRequest(h, http.MethodGet, "/api/v1/sync/status", "secret")
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("health is public", func(t *testing.T) {
		rec := doRequest(h, http.MethodGet, "/health", "")
		assert.Equal(t, http.StatusOK, rec.Code)
	})
}

func TestTriggerSync(t *testing.T) {
	h, _, _ := newTestHandler(t, config.ServerConfig{})

	// Coordinator is not started, so the first trigger parks in the
	// buffered channel and the second is rejected.
	rec := doRequest(h, http.MethodPost, "/api/v1/sync/trigger", "")
	assert.Equal(t, http.StatusAccepted, rec.Code)

	rec = doRequest(h, http.MethodPost, "/api/v1/sync/trigger", "")
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestGetSyncStatus(t *testing.T) {
	h, st, _ := newTestHandler(t, config.ServerConfig{})

	_, err := st.EnqueueAttendance(context.Background(), model.SubmitAttendanceRequest{
		CourseID: 1,
		Date:     "2025-01-10",
		Records:  []model.AttendanceMark{{StudentID: 5, Status: "Present"}},
	})
	require.NoError(t, err)

	rec := doRequest(h, http.MethodGet, "/api/v1/sync/status", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var status sync.Status
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &status))
	assert.False(t, status.Running)
	assert.Equal(t, 1, status.OutboxDepth)
	assert.Nil(t, status.LastPass)
}

func TestGetSyncHistory(t *testing.T) {
	h, _, coordinator := newTestHandler(t, config.ServerConfig{})

	summary := coordinator.RunPass(context.Background(), sync.TriggerManual)
	require.NotNil(t, summary)

	rec := doRequest(h, http.MethodGet, "/api/v1/sync/history?limit=5", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var history []store.SyncHistory
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &history))
	require.Len(t, history, 1)
	assert.Equal(t, summary.ID, history[0].ID)
}

func TestOutboxEndpoints(t *testing.T) {
	h, st, _ := newTestHandler(t, config.ServerConfig{})
	ctx := context.Background()

	entry, err := st.EnqueueAttendance(ctx, model.SubmitAttendanceRequest{
		CourseID: 1,
		Date:     "2025-01-10",
		Records:  []model.AttendanceMark{{StudentID: 5, Status: "Present"}},
	})
	require.NoError(t, err)

	t.Run("list pending", func(t *testing.T) {
		rec := doRequest(h, http.MethodGet, "/api/v1/outbox", "")
		require.Equal(t, http.StatusOK, rec.Code)

		var entries []store.OutboxEntry
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &entries))
		require.Len(t, entries, 1)
		assert.Equal(t, store.OpMarkAttendance, entries[0].OperationType)
	})

	t.Run("abandoned and requeue", func(t *testing.T) {
		require.NoError(t, st.MarkAbandoned(ctx, entry.ID, "retries exhausted"))

		rec := doRequest(h, http.MethodGet, "/api/v1/outbox/abandoned", "")
		require.Equal(t, http.StatusOK, rec.Code)

		var entries []store.OutboxEntry
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &entries))
		require.Len(t, entries, 1)

		rec = doRequest(h, http.MethodPost, "/api/v1/outbox/abandoned/"+
			strconv.FormatInt(entries[0].ID, 10)+"/requeue", "")
		require.Equal(t, http.StatusOK, rec.Code)

		depth, err := st.OutboxDepth(ctx)
		require.NoError(t, err)
		assert.Equal(t, 1, depth)
	})

	t.Run("requeue invalid id", func(t *testing.T) {
		rec := doRequest(h, http.MethodPost, "/api/v1/outbox/abandoned/nope/requeue", "")
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestCORSHeaders(t *testing.T) {
	h, _, _ := newTestHandler(t, config.ServerConfig{CorsOrigins: []string{"http://localhost:3000"}})

	rec := doRequest(h, http.MethodGet, "/health", "")
	assert.Equal(t, "http://localhost:3000", rec.Header().Get("Access-Control-Allow-Origin"))
}
