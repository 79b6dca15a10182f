package provider

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"profileimport/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func asyncCred(secret string) *model.ApiCredential {
	c := &model.ApiCredential{Provider: "brightdata", Secret: secret, Active: true}
	c.ID = 2
	return c
}

func TestAsyncAdapterAcquire(t *testing.T) {
	t.Run("triggers then polls to completion", func(t *testing.T) {
		statusCalls := 0
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			switch {
			case r.Method == http.MethodPost && r.URL.Path == "/datasets/v3/trigger":
				assert.Equal(t, "gd_test", r.URL.Query().Get("dataset_id"))
				assert.Equal(t, "Bearer token-1", r.Header.Get("Authorization"))
				w.Write([]byte(`{"snapshot_id": "snap-1"}`))
			case r.Method == http.MethodGet && r.URL.Path == "/datasets/v3/snapshot/snap-1":
				statusCalls++
				if statusCalls < 2 {
					w.Write([]byte(`{"status": "running"}`))
					return
				}
				w.Write([]byte(`[{"name": "Jane Doe"}]`))
			default:
				t.Errorf("unexpected request: %s %s", r.Method, r.URL.Path)
			}
		}))
		defer server.Close()

		budget := Budget{MaxAttempts: 5, MaxDuration: time.Minute, Interval: time.Second}
		a := NewAsyncAdapter("brightdata", server.URL, "gd_test", 5*time.Second, budget, testLogger())
		// Skip real sleeps between poll attempts
		a.poller.sleep = func(ctx context.Context, d time.Duration) error { return nil }

		raw, err := a.Acquire(context.Background(), "jane-doe", asyncCred("token-1"))
		require.NoError(t, err)
		assert.Equal(t, "Jane Doe", raw["name"])
		assert.Equal(t, 2, statusCalls)
	})

	t.Run("trigger rejection is classified", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusUnauthorized)
		}))
		defer server.Close()

		budget := Budget{MaxAttempts: 2, MaxDuration: time.Minute, Interval: time.Millisecond}
		a := NewAsyncAdapter("brightdata", server.URL, "gd_test", 5*time.Second, budget, testLogger())

		_, err := a.Acquire(context.Background(), "jane-doe", asyncCred("bad"))
		assert.Error(t, err)
		assert.Equal(t, KindAuthError, KindOf(err))
	})

	t.Run("trigger without a job id fails", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{}`))
		}))
		defer server.Close()

		budget := Budget{MaxAttempts: 2, MaxDuration: time.Minute, Interval: time.Millisecond}
		a := NewAsyncAdapter("brightdata", server.URL, "gd_test", 5*time.Second, budget, testLogger())

		_, err := a.Acquire(context.Background(), "jane-doe", asyncCred("t"))
		assert.Error(t, err)
		assert.Equal(t, KindTransient, KindOf(err))
	})
}

func TestDecodeSnapshot(t *testing.T) {
	tests := []struct {
		name      string
		status    int
		body      string
		wantState JobState
		wantErr   Kind
		isErr     bool
	}{
		{"accepted means pending", http.StatusAccepted, ``, JobPending, 0, false},
		{"missing snapshot means pending", http.StatusNotFound, ``, JobPending, 0, false},
		{"running status", http.StatusOK, `{"status": "running"}`, JobPending, 0, false},
		{"building status", http.StatusOK, `{"status": "building"}`, JobPending, 0, false},
		{"empty result set", http.StatusOK, `[]`, JobPending, 0, false},
		{"empty object", http.StatusOK, `{}`, JobPending, 0, false},
		{"ready array", http.StatusOK, `[{"name": "Jane"}]`, JobReady, 0, false},
		{"plain profile object", http.StatusOK, `{"name": "Jane"}`, JobReady, 0, false},
		{"ready with data array", http.StatusOK, `{"status": "ready", "data": [{"name": "Jane"}]}`, JobReady, 0, false},
		{"ready with data object", http.StatusOK, `{"status": "done", "data": {"name": "Jane"}}`, JobReady, 0, false},
		{"ready with empty data", http.StatusOK, `{"status": "ready", "data": []}`, JobPending, 0, false},
		{"failed with error", http.StatusOK, `{"status": "failed", "error": "dead profile"}`, JobFailed, 0, false},
		{"failed with message", http.StatusOK, `{"status": "error", "message": "boom"}`, JobFailed, 0, false},
		{"auth rejection", http.StatusUnauthorized, ``, 0, KindAuthError, true},
		{"rate limited", http.StatusTooManyRequests, ``, 0, KindRateLimited, true},
		{"server error", http.StatusInternalServerError, ``, 0, KindTransient, true},
		{"garbage body", http.StatusOK, `not json`, 0, KindTransient, true},
		{"scalar body", http.StatusOK, `42`, 0, KindTransient, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := decodeSnapshot("brightdata", tt.status, []byte(tt.body))
			if tt.isErr {
				require.Error(t, err)
				assert.Equal(t, tt.wantErr, KindOf(err))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantState, res.State)
			if tt.wantState == JobReady {
				assert.Equal(t, "Jane", res.Payload["name"])
			}
		})
	}

	t.Run("failure reason is carried", func(t *testing.T) {
		res, err := decodeSnapshot("brightdata", http.StatusOK, []byte(`{"status": "failed", "error": "dead profile"}`))
		require.NoError(t, err)
		assert.Equal(t, JobFailed, res.State)
		assert.Equal(t, "dead profile", res.Reason)
	})
}
