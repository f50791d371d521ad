// Transcription backend API [Client] implementation
//
// Communicates with the yt2text FastAPI server (download + Whisper +
// AI formatting pipeline), default port 8765. Wire status strings parse
// into the models enumerations here; the state machine never sees raw
// strings.
package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/desertthunder/yt2text/internal/models"
	"github.com/desertthunder/yt2text/internal/shared"
)

const defaultBaseURL string = "http://127.0.0.1:8765"

// notFoundError is the distinguished body the backend returns for ids it
// no longer tracks (e.g. after a restart). It arrives with HTTP 200.
const notFoundError = "task not found"

// TranscriberService implements [Client] over HTTP/JSON.
type TranscriberService struct {
	baseURL      string
	httpClient   *http.Client
	healthClient *http.Client
	browser      string
	cookies      []CookieItem
}

// NewTranscriberService creates a backend client. The health probe uses its
// own short-timeout client so a hung backend fails the submission gate fast.
func NewTranscriberService(baseURL string, client *http.Client) *TranscriberService {
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}

	return &TranscriberService{
		baseURL:      baseURL,
		httpClient:   client,
		healthClient: &http.Client{Timeout: 3 * time.Second},
	}
}

// SetSession configures the opaque credential material attached to every
// submission: the browser name for cookies-from-browser downloads and the
// session cookies parsed from a devtools cURL capture.
func (s *TranscriberService) SetSession(browser string, cookies []CookieItem) {
	s.browser = browser
	s.cookies = cookies
}

// CookiesFromCurl converts a parsed cURL capture into backend cookie
// descriptors. The capture only carries name=value pairs; the domain is
// filled in for every pair.
func CookiesFromCurl(h *shared.CurlHeaders, domain string) []CookieItem {
	if h == nil {
		return nil
	}
	if domain == "" {
		domain = ".youtube.com"
	}

	pairs := h.CookiePairs()
	cookies := make([]CookieItem, len(pairs))
	for i, p := range pairs {
		cookies[i] = CookieItem{
			Domain: domain,
			Name:   p.Name,
			Value:  p.Value,
			Path:   "/",
			Secure: true,
		}
	}
	return cookies
}

// submitPayload mirrors the backend's ProcessRequest model.
type submitPayload struct {
	URL     string       `json:"url"`
	Title   string       `json:"title,omitempty"`
	Browser string       `json:"browser,omitempty"`
	Cookies []CookieItem `json:"cookies,omitempty"`
}

type batchPayload struct {
	Videos  []submitPayload `json:"videos"`
	Browser string          `json:"browser,omitempty"`
	Cookies []CookieItem    `json:"cookies,omitempty"`
}

// taskPayload mirrors one task object from /api/tasks responses.
type taskPayload struct {
	ID                 string         `json:"id"`
	URL                string         `json:"url,omitempty"`
	Title              string         `json:"title,omitempty"`
	Status             string         `json:"status"`
	Content            string         `json:"content"`
	Formatting         string         `json:"formatting"`
	FormattingProgress string         `json:"formatting_progress"`
	Elapsed            float64        `json:"elapsed"`
	Timing             *models.Timing `json:"timing"`
	Error              string         `json:"error"`
}

// toSnapshot parses wire strings into the enumerations. Missing or
// unrecognized fields downgrade rather than fail.
func (p taskPayload) toSnapshot(jobID string) models.JobSnapshot {
	if p.ID != "" {
		jobID = p.ID
	}
	return models.JobSnapshot{
		JobID:              jobID,
		Status:             models.ParseStatus(p.Status),
		Content:            p.Content,
		Error:              p.Error,
		Formatting:         models.ParseFormatting(p.Formatting),
		FormattingProgress: p.FormattingProgress,
		Elapsed:            p.Elapsed,
		Timing:             p.Timing,
	}
}

// Health probes GET /api/health with the short-timeout client.
func (s *TranscriberService) Health(ctx context.Context) error {
	var status struct {
		Status string `json:"status"`
	}

	if err := s.doRequest(ctx, s.healthClient, http.MethodGet, "/api/health", nil, &status); err != nil {
		return fmt.Errorf("%w: %v", shared.ErrBackendUnavailable, err)
	}
	if status.Status != "ok" {
		return fmt.Errorf("%w: health reported %q", shared.ErrBackendUnavailable, status.Status)
	}
	return nil
}

// Submit posts a single video to POST /api/process.
func (s *TranscriberService) Submit(ctx context.Context, req SubmitRequest) (string, error) {
	payload := submitPayload{
		URL:     req.URL,
		Title:   req.Title,
		Browser: s.browser,
		Cookies: s.cookies,
	}

	var resp struct {
		TaskID string `json:"task_id"`
	}
	if err := s.doRequest(ctx, s.httpClient, http.MethodPost, "/api/process", payload, &resp); err != nil {
		return "", err
	}
	if resp.TaskID == "" {
		return "", fmt.Errorf("%w: no task_id in response", shared.ErrAPIRequest)
	}
	return resp.TaskID, nil
}

// SubmitBatch posts many videos to POST /api/batch. The backend guarantees
// task_ids align positionally with the submitted videos.
func (s *TranscriberService) SubmitBatch(ctx context.Context, reqs []SubmitRequest) ([]string, error) {
	payload := batchPayload{
		Videos:  make([]submitPayload, len(reqs)),
		Browser: s.browser,
		Cookies: s.cookies,
	}
	for i, req := range reqs {
		payload.Videos[i] = submitPayload{URL: req.URL, Title: req.Title}
	}

	var resp struct {
		TaskIDs []string `json:"task_ids"`
	}
	if err := s.doRequest(ctx, s.httpClient, http.MethodPost, "/api/batch", payload, &resp); err != nil {
		return nil, err
	}
	if len(resp.TaskIDs) != len(reqs) {
		return nil, fmt.Errorf("%w: submitted %d videos, got %d task ids", shared.ErrAPIRequest, len(reqs), len(resp.TaskIDs))
	}
	return resp.TaskIDs, nil
}

// FetchTask retrieves GET /api/tasks/{id}. The "task not found" body maps
// to [shared.ErrJobNotFound]; the caller treats that as fatal for the job.
func (s *TranscriberService) FetchTask(ctx context.Context, jobID string) (*models.JobSnapshot, error) {
	var payload taskPayload
	endpoint := fmt.Sprintf("/api/tasks/%s", jobID)
	if err := s.doRequest(ctx, s.httpClient, http.MethodGet, endpoint, nil, &payload); err != nil {
		return nil, err
	}

	if payload.Error == notFoundError && payload.Status == "" {
		return nil, fmt.Errorf("%w: %s", shared.ErrJobNotFound, jobID)
	}

	snap := payload.toSnapshot(jobID)
	return &snap, nil
}

// FetchAll retrieves GET /api/tasks, the single-request batch poll.
func (s *TranscriberService) FetchAll(ctx context.Context) ([]models.JobSnapshot, error) {
	var resp struct {
		Tasks []taskPayload `json:"tasks"`
	}
	if err := s.doRequest(ctx, s.httpClient, http.MethodGet, "/api/tasks", nil, &resp); err != nil {
		return nil, err
	}

	snapshots := make([]models.JobSnapshot, 0, len(resp.Tasks))
	for _, p := range resp.Tasks {
		if p.ID == "" {
			continue
		}
		snapshots = append(snapshots, p.toSnapshot(p.ID))
	}
	return snapshots, nil
}

func (s *TranscriberService) doRequest(ctx context.Context, client *http.Client, method, endpoint string, body, result any) error {
	apiURL := s.baseURL + endpoint

	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, apiURL, reqBody)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var errResp struct {
			Detail string `json:"detail"`
		}
		if err := json.NewDecoder(resp.Body).Decode(&errResp); err == nil && errResp.Detail != "" {
			return fmt.Errorf("%w: status %d: %s", shared.ErrAPIRequest, resp.StatusCode, errResp.Detail)
		}
		return fmt.Errorf("%w: status %d", shared.ErrAPIRequest, resp.StatusCode)
	}

	if result != nil {
		if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
	}

	return nil
}
