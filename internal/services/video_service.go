package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"capoff/internal/apperr"
	"capoff/internal/config"
)

// Asset readiness polling: fixed interval, fixed ceiling, then give up.
const (
	assetPollMaxAttempts = 30
	assetPollInterval    = 1 * time.Second
)

// VideoService talks to the hosted video-processing provider (a Mux-style
// API): it creates direct uploads and reports when an uploaded asset has a
// playback reference. Transcoding itself happens entirely on the provider's
// side.
type VideoService struct {
	baseURL     string
	tokenID     string
	tokenSecret string
	corsOrigin  string
	client      *http.Client

	pollInterval    time.Duration
	pollMaxAttempts int
}

func NewVideoService(cfg *config.Config) *VideoService {
	return &VideoService{
		baseURL:         strings.TrimSuffix(cfg.VideoAPIURL, "/"),
		tokenID:         cfg.VideoTokenID,
		tokenSecret:     cfg.VideoTokenSecret,
		corsOrigin:      cfg.UploadCORSOrigin,
		client:          &http.Client{Timeout: 15 * time.Second},
		pollInterval:    assetPollInterval,
		pollMaxAttempts: assetPollMaxAttempts,
	}
}

type DirectUpload struct {
	UploadID string `json:"upload_id"`
	URL      string `json:"url"`
}

// AssetStatus mirrors the provider's processing pipeline: waiting (no asset
// yet), processing, or ready with a playback reference.
type AssetStatus struct {
	Status      string `json:"status"`
	PlaybackRef string `json:"playback_ref,omitempty"`
}

type uploadResponse struct {
	Data struct {
		ID      string `json:"id"`
		URL     string `json:"url"`
		AssetID string `json:"asset_id"`
	} `json:"data"`
}

type assetResponse struct {
	Data struct {
		ID          string `json:"id"`
		Status      string `json:"status"`
		PlaybackIDs []struct {
			ID string `json:"id"`
		} `json:"playback_ids"`
	} `json:"data"`
}

// CreateDirectUpload asks the provider for a one-shot upload URL the client
// PUTs the raw video to.
func (s *VideoService) CreateDirectUpload(ctx context.Context) (*DirectUpload, error) {
	payload := map[string]interface{}{
		"new_asset_settings": map[string]interface{}{
			"playback_policy": []string{"public"},
			"encoding_tier":   "baseline",
		},
		"cors_origin": s.corsOrigin,
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindInternal, "encode upload request", err)
	}

	var resp uploadResponse
	if err := s.do(ctx, http.MethodPost, "/video/v1/uploads", bytes.NewReader(body), &resp); err != nil {
		return nil, err
	}
	if resp.Data.ID == "" || resp.Data.URL == "" {
		return nil, apperr.Unavailable("video host returned no upload")
	}
	return &DirectUpload{UploadID: resp.Data.ID, URL: resp.Data.URL}, nil
}

// GetUploadStatus reports where an upload is in the provider's pipeline.
func (s *VideoService) GetUploadStatus(ctx context.Context, uploadID string) (*AssetStatus, error) {
	var upload uploadResponse
	if err := s.do(ctx, http.MethodGet, "/video/v1/uploads/"+uploadID, nil, &upload); err != nil {
		return nil, err
	}
	if upload.Data.AssetID == "" {
		return &AssetStatus{Status: "waiting"}, nil
	}

	var asset assetResponse
	if err := s.do(ctx, http.MethodGet, "/video/v1/assets/"+upload.Data.AssetID, nil, &asset); err != nil {
		return nil, err
	}
	if asset.Data.Status != "ready" {
		return &AssetStatus{Status: "processing"}, nil
	}
	if len(asset.Data.PlaybackIDs) == 0 {
		return nil, apperr.Unavailable("asset is ready but has no playback reference")
	}
	return &AssetStatus{Status: "ready", PlaybackRef: asset.Data.PlaybackIDs[0].ID}, nil
}

// WaitForPlayback polls until the asset is ready or the attempt ceiling is
// hit. This is the only retry loop in the system; everything else fails
// straight back to the caller.
func (s *VideoService) WaitForPlayback(ctx context.Context, uploadID string) (string, error) {
	for attempt := 0; attempt < s.pollMaxAttempts; attempt++ {
		status, err := s.GetUploadStatus(ctx, uploadID)
		if err != nil {
			return "", err
		}
		if status.Status == "ready" {
			return status.PlaybackRef, nil
		}

		select {
		case <-ctx.Done():
			return "", apperr.Wrap(apperr.KindUnavailable, "video processing cancelled", ctx.Err())
		case <-time.After(s.pollInterval):
		}
	}
	return "", apperr.Unavailable("video processing timed out, please try again")
}

func (s *VideoService) do(ctx context.Context, method, path string, body *bytes.Reader, out interface{}) error {
	var req *http.Request
	var err error
	if body != nil {
		req, err = http.NewRequestWithContext(ctx, method, s.baseURL+path, body)
	} else {
		req, err = http.NewRequestWithContext(ctx, method, s.baseURL+path, nil)
	}
	if err != nil {
		return apperr.Wrap(apperr.KindInternal, "build video host request", err)
	}
	req.SetBasicAuth(s.tokenID, s.tokenSecret)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return apperr.Wrap(apperr.KindUnavailable, "video host unreachable", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return apperr.Unavailable(fmt.Sprintf("video host returned %d for %s %s", resp.StatusCode, method, path))
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return apperr.Wrap(apperr.KindUnavailable, "decode video host response", err)
	}
	return nil
}
