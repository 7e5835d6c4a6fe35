package remote

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"campus-sync/internal/config"
	"campus-sync/internal/model"
)

func newTestClient(baseURL string) *Client {
	return NewClient(config.RemoteConfig{
		BaseURL:   baseURL,
		AuthToken: "tok-123",
		Timeout:   "2s",
	})
}

func TestFetchCourses(t *testing.T) {
	t.Run("decodes envelope data", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/api/courses", r.URL.Path)
			assert.Equal(t, "Bearer tok-123", r.Header.Get("Authorization"))
			json.NewEncoder(w).Encode(map[string]any{
				"success": true,
				"message": "",
				"data": []model.Course{
					{ID: 1, Code: "CS101", Title: "Intro to Computing"},
				},
			})
		}))
		defer srv.Close()

		courses, err := newTestClient(srv.URL).FetchCourses(context.Background())
		require.NoError(t, err)
		require.Len(t, courses, 1)
		assert.Equal(t, "CS101", courses[0].Code)
	})

	t.Run("success false is an application failure", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			json.NewEncoder(w).Encode(map[string]any{
				"success": false,
				"message": "semester not open",
			})
		}))
		defer srv.Close()

		_, err := newTestClient(srv.URL).FetchCourses(context.Background())
		require.Error(t, err)
		assert.Equal(t, FailureApp, KindOf(err))
	})

	t.Run("non-2xx with success true is still a failure", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
			json.NewEncoder(w).Encode(map[string]any{"success": true})
		}))
		defer srv.Close()

		_, err := newTestClient(srv.URL).FetchCourses(context.Background())
		require.Error(t, err)
		assert.Equal(t, FailureHTTP, KindOf(err))
	})

	t.Run("401 is an auth failure", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusUnauthorized)
		}))
		defer srv.Close()

		_, err := newTestClient(srv.URL).FetchCourses(context.Background())
		require.Error(t, err)
		assert.True(t, IsAuth(err))
	})

	t.Run("unreachable server is a transport failure", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
		srv.Close()

		_, err := newTestClient(srv.URL).FetchCourses(context.Background())
		require.Error(t, err)
		assert.Equal(t, FailureTransport, KindOf(err))
	})

	t.Run("undecodable body is an http failure", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadGateway)
			w.Write([]byte("<html>bad gateway</html>"))
		}))
		defer srv.Close()

		_, err := newTestClient(srv.URL).FetchCourses(context.Background())
		require.Error(t, err)
		assert.Equal(t, FailureHTTP, KindOf(err))
	})
}

func TestSubmitAttendance(t *testing.T) {
	var received model.SubmitAttendanceRequest

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/attendance", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&received))
		json.NewEncoder(w).Encode(map[string]any{"success": true})
	}))
	defer srv.Close()

	req := model.SubmitAttendanceRequest{
		CourseID: 1,
		Date:     "2025-01-10",
		Records:  []model.AttendanceMark{{StudentID: 5, Status: "Present"}},
	}
	require.NoError(t, newTestClient(srv.URL).SubmitAttendance(context.Background(), req))
	assert.Equal(t, req, received)
}

func TestFetchAttendancePath(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/courses/42/attendance", r.URL.Path)
		json.NewEncoder(w).Encode(map[string]any{"success": true, "data": []model.AttendanceRecord{}})
	}))
	defer srv.Close()

	records, err := newTestClient(srv.URL).FetchAttendance(context.Background(), 42)
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestSetAuthToken(t *testing.T) {
	var gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		json.NewEncoder(w).Encode(map[string]any{"success": true, "data": []model.Course{}})
	}))
	defer srv.Close()

	c := newTestClient(srv.URL)

	_, err := c.FetchCourses(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Bearer tok-123", gotAuth)

	// A token refresh can race in-flight calls; reads and writes of the
	// token are synchronized inside the client.
	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		c.SetAuthToken("tok-456")
	}()
	go func() {
		defer wg.Done()
		c.FetchCourses(context.Background())
	}()
	wg.Wait()

	_, err = c.FetchCourses(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Bearer tok-456", gotAuth)
}

func TestErrorKinds(t *testing.T) {
	assert.Equal(t, "transport", FailureTransport.String())
	assert.Equal(t, "auth", FailureAuth.String())
	assert.Equal(t, FailureTransport, KindOf(context.DeadlineExceeded))
}
