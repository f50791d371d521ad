// package services defines interface Client for the transcription backend HTTP API
package services

import (
	"context"

	"github.com/desertthunder/yt2text/internal/models"
)

// Client defines the operations the sync engine needs from the backend.
// Implemented by [TranscriberService]; test doubles implement it in-memory.
type Client interface {
	// Health probes GET /api/health. Used to gate new submissions; an
	// already-polling job is unaffected by a failing probe.
	Health(ctx context.Context) error

	// Submit posts one video for processing and returns the backend job id.
	Submit(ctx context.Context, req SubmitRequest) (string, error)

	// SubmitBatch posts many videos in one request. The returned job ids
	// correspond positionally to the input slice.
	SubmitBatch(ctx context.Context, reqs []SubmitRequest) ([]string, error)

	// FetchTask retrieves the snapshot for a single job. Returns
	// [shared.ErrJobNotFound] when the backend no longer knows the id.
	FetchTask(ctx context.Context, jobID string) (*models.JobSnapshot, error)

	// FetchAll retrieves snapshots for every job the backend tracks.
	FetchAll(ctx context.Context) ([]models.JobSnapshot, error)
}

// SubmitRequest describes one video submission.
type SubmitRequest struct {
	URL   string
	Title string
}

// CookieItem is one opaque session-cookie descriptor passed through to the
// backend unmodified for authenticated (members-only) content.
type CookieItem struct {
	Domain         string  `json:"domain"`
	Name           string  `json:"name"`
	Value          string  `json:"value"`
	Path           string  `json:"path"`
	Secure         bool    `json:"secure"`
	HttpOnly       bool    `json:"httpOnly"`
	ExpirationDate float64 `json:"expirationDate"`
}
