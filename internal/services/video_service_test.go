package services

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"capoff/internal/apperr"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestVideoService(server *httptest.Server) *VideoService {
	return &VideoService{
		baseURL:         server.URL,
		tokenID:         "token-id",
		tokenSecret:     "token-secret",
		corsOrigin:      "https://capoff.example",
		client:          server.Client(),
		pollInterval:    time.Millisecond,
		pollMaxAttempts: 5,
	}
}

func TestCreateDirectUpload(t *testing.T) {
	var gotAuth bool
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/video/v1/uploads", r.URL.Path)

		id, secret, ok := r.BasicAuth()
		gotAuth = ok && id == "token-id" && secret == "token-secret"

		var payload map[string]interface{}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
		assert.Equal(t, "https://capoff.example", payload["cors_origin"])

		json.NewEncoder(w).Encode(map[string]interface{}{
			"data": map[string]interface{}{
				"id":  "upload_1",
				"url": "https://storage.example/put-here",
			},
		})
	}))
	defer server.Close()

	upload, err := newTestVideoService(server).CreateDirectUpload(context.Background())
	require.NoError(t, err)
	assert.True(t, gotAuth, "request should carry the token pair as basic auth")
	assert.Equal(t, "upload_1", upload.UploadID)
	assert.Equal(t, "https://storage.example/put-here", upload.URL)
}

func TestGetUploadStatusPipeline(t *testing.T) {
	var assetStatus atomic.Value
	assetStatus.Store("preparing")

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/video/v1/uploads/upload_waiting":
			json.NewEncoder(w).Encode(map[string]interface{}{
				"data": map[string]interface{}{"id": "upload_waiting"},
			})
		case "/video/v1/uploads/upload_1":
			json.NewEncoder(w).Encode(map[string]interface{}{
				"data": map[string]interface{}{"id": "upload_1", "asset_id": "asset_1"},
			})
		case "/video/v1/assets/asset_1":
			resp := map[string]interface{}{
				"data": map[string]interface{}{"id": "asset_1", "status": assetStatus.Load()},
			}
			if assetStatus.Load() == "ready" {
				resp["data"].(map[string]interface{})["playback_ids"] = []map[string]string{{"id": "playback_1"}}
			}
			json.NewEncoder(w).Encode(resp)
		default:
			http.NotFound(w, r)
		}
	}))
	defer server.Close()

	svc := newTestVideoService(server)

	status, err := svc.GetUploadStatus(context.Background(), "upload_waiting")
	require.NoError(t, err)
	assert.Equal(t, "waiting", status.Status)

	status, err = svc.GetUploadStatus(context.Background(), "upload_1")
	require.NoError(t, err)
	assert.Equal(t, "processing", status.Status)

	assetStatus.Store("ready")
	status, err = svc.GetUploadStatus(context.Background(), "upload_1")
	require.NoError(t, err)
	assert.Equal(t, "ready", status.Status)
	assert.Equal(t, "playback_1", status.PlaybackRef)
}

func TestWaitForPlaybackPollsUntilReady(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/video/v1/uploads/upload_1":
			// No asset for the first two polls.
			if atomic.AddInt32(&calls, 1) <= 2 {
				json.NewEncoder(w).Encode(map[string]interface{}{
					"data": map[string]interface{}{"id": "upload_1"},
				})
				return
			}
			json.NewEncoder(w).Encode(map[string]interface{}{
				"data": map[string]interface{}{"id": "upload_1", "asset_id": "asset_1"},
			})
		case "/video/v1/assets/asset_1":
			json.NewEncoder(w).Encode(map[string]interface{}{
				"data": map[string]interface{}{
					"id":           "asset_1",
					"status":       "ready",
					"playback_ids": []map[string]string{{"id": "playback_1"}},
				},
			})
		default:
			http.NotFound(w, r)
		}
	}))
	defer server.Close()

	ref, err := newTestVideoService(server).WaitForPlayback(context.Background(), "upload_1")
	require.NoError(t, err)
	assert.Equal(t, "playback_1", ref)
	assert.GreaterOrEqual(t, atomic.LoadInt32(&calls), int32(3))
}

func TestWaitForPlaybackTimesOut(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]interface{}{
			"data": map[string]interface{}{"id": "upload_1"},
		})
	}))
	defer server.Close()

	_, err := newTestVideoService(server).WaitForPlayback(context.Background(), "upload_1")
	assert.True(t, apperr.Is(err, apperr.KindUnavailable))
}

func TestWaitForPlaybackHonorsContext(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]interface{}{
			"data": map[string]interface{}{"id": "upload_1"},
		})
	}))
	defer server.Close()

	svc := newTestVideoService(server)
	svc.pollInterval = time.Second

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	_, err := svc.WaitForPlayback(ctx, "upload_1")
	assert.True(t, apperr.Is(err, apperr.KindUnavailable))
}

func TestVideoHostErrorStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "upstream down", http.StatusBadGateway)
	}))
	defer server.Close()

	_, err := newTestVideoService(server).CreateDirectUpload(context.Background())
	assert.True(t, apperr.Is(err, apperr.KindUnavailable))
}
