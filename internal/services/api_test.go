package services

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/desertthunder/yt2text/internal/models"
	"github.com/desertthunder/yt2text/internal/shared"
)

// failingRoundTripper fails every request at the transport layer.
type failingRoundTripper struct {
	err error
}

func (f *failingRoundTripper) RoundTrip(*http.Request) (*http.Response, error) {
	return nil, f.err
}

func TestTranscriberService(t *testing.T) {
	t.Run("New", func(t *testing.T) {
		t.Run("With Empty BaseURL", func(t *testing.T) {
			srv := NewTranscriberService("", nil)
			if srv.baseURL != "http://127.0.0.1:8765" {
				t.Errorf("expected default baseURL, got %s", srv.baseURL)
			}
			if srv.httpClient == nil || srv.healthClient == nil {
				t.Error("expected clients to be initialized")
			}
		})

		t.Run("With Custom Client", func(t *testing.T) {
			custom := &http.Client{}
			srv := NewTranscriberService("http://example.com", custom)
			if srv.httpClient != custom {
				t.Error("expected custom client to be used")
			}
		})
	})

	t.Run("Health", func(t *testing.T) {
		t.Run("OK", func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if r.URL.Path != "/api/health" {
					t.Errorf("expected path '/api/health', got %s", r.URL.Path)
				}
				json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
			}))
			defer server.Close()

			srv := NewTranscriberService(server.URL, nil)
			if err := srv.Health(context.Background()); err != nil {
				t.Errorf("expected no error, got %v", err)
			}
		})

		t.Run("Unexpected Status Body", func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				json.NewEncoder(w).Encode(map[string]string{"status": "degraded"})
			}))
			defer server.Close()

			srv := NewTranscriberService(server.URL, nil)
			err := srv.Health(context.Background())
			if !errors.Is(err, shared.ErrBackendUnavailable) {
				t.Errorf("expected ErrBackendUnavailable, got %v", err)
			}
		})

		t.Run("Connection Refused", func(t *testing.T) {
			srv := NewTranscriberService("http://127.0.0.1:1", nil)
			err := srv.Health(context.Background())
			if !errors.Is(err, shared.ErrBackendUnavailable) {
				t.Errorf("expected ErrBackendUnavailable, got %v", err)
			}
		})
	})

	t.Run("Submit", func(t *testing.T) {
		t.Run("Posts URL Title And Session", func(t *testing.T) {
			var got submitPayload
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if r.Method != http.MethodPost || r.URL.Path != "/api/process" {
					t.Errorf("unexpected request: %s %s", r.Method, r.URL.Path)
				}
				if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
					t.Fatalf("failed to decode body: %v", err)
				}
				json.NewEncoder(w).Encode(map[string]string{"task_id": "abc12345"})
			}))
			defer server.Close()

			srv := NewTranscriberService(server.URL, nil)
			srv.SetSession("firefox", []CookieItem{{Domain: ".youtube.com", Name: "SID", Value: "x"}})

			jobID, err := srv.Submit(context.Background(), SubmitRequest{URL: "https://www.youtube.com/watch?v=abc", Title: "A Video"})
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if jobID != "abc12345" {
				t.Errorf("expected task id 'abc12345', got %s", jobID)
			}
			if got.URL != "https://www.youtube.com/watch?v=abc" || got.Title != "A Video" {
				t.Errorf("unexpected payload: %+v", got)
			}
			if got.Browser != "firefox" || len(got.Cookies) != 1 {
				t.Errorf("expected session material in payload, got %+v", got)
			}
		})

		t.Run("Missing Task ID", func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				json.NewEncoder(w).Encode(map[string]string{})
			}))
			defer server.Close()

			srv := NewTranscriberService(server.URL, nil)
			_, err := srv.Submit(context.Background(), SubmitRequest{URL: "u"})
			if !errors.Is(err, shared.ErrAPIRequest) {
				t.Errorf("expected ErrAPIRequest, got %v", err)
			}
		})

		t.Run("Server Error With Detail", func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusInternalServerError)
				json.NewEncoder(w).Encode(map[string]string{"detail": "queue full"})
			}))
			defer server.Close()

			srv := NewTranscriberService(server.URL, nil)
			_, err := srv.Submit(context.Background(), SubmitRequest{URL: "u"})
			if err == nil || !strings.Contains(err.Error(), "queue full") {
				t.Errorf("expected detail in error, got %v", err)
			}
		})
	})

	t.Run("SubmitBatch", func(t *testing.T) {
		t.Run("Positional IDs", func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				var got batchPayload
				if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
					t.Fatalf("failed to decode body: %v", err)
				}
				if len(got.Videos) != 3 {
					t.Errorf("expected 3 videos, got %d", len(got.Videos))
				}
				json.NewEncoder(w).Encode(map[string][]string{"task_ids": {"t1", "t2", "t3"}})
			}))
			defer server.Close()

			srv := NewTranscriberService(server.URL, nil)
			ids, err := srv.SubmitBatch(context.Background(), []SubmitRequest{{URL: "a"}, {URL: "b"}, {URL: "c"}})
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if len(ids) != 3 || ids[0] != "t1" || ids[2] != "t3" {
				t.Errorf("expected positional ids, got %v", ids)
			}
		})

		t.Run("Length Mismatch", func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				json.NewEncoder(w).Encode(map[string][]string{"task_ids": {"t1"}})
			}))
			defer server.Close()

			srv := NewTranscriberService(server.URL, nil)
			_, err := srv.SubmitBatch(context.Background(), []SubmitRequest{{URL: "a"}, {URL: "b"}})
			if !errors.Is(err, shared.ErrAPIRequest) {
				t.Errorf("expected ErrAPIRequest, got %v", err)
			}
		})
	})

	t.Run("FetchTask", func(t *testing.T) {
		t.Run("Parses Snapshot", func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if r.URL.Path != "/api/tasks/abc12345" {
					t.Errorf("unexpected path %s", r.URL.Path)
				}
				json.NewEncoder(w).Encode(map[string]any{
					"id":                  "abc12345",
					"status":              "transcribing",
					"content":             "partial text",
					"formatting":          "in_progress",
					"formatting_progress": "3/10",
					"elapsed":             42.5,
				})
			}))
			defer server.Close()

			srv := NewTranscriberService(server.URL, nil)
			snap, err := srv.FetchTask(context.Background(), "abc12345")
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if snap.Status != models.StatusTranscribing {
				t.Errorf("expected transcribing, got %s", snap.Status)
			}
			if snap.Content != "partial text" {
				t.Errorf("expected partial content, got %q", snap.Content)
			}
			if snap.Formatting != models.FormattingInProgress || snap.FormattingProgress != "3/10" {
				t.Errorf("unexpected formatting fields: %+v", snap)
			}
			if snap.Elapsed != 42.5 {
				t.Errorf("expected elapsed 42.5, got %v", snap.Elapsed)
			}
		})

		t.Run("Unrecognized Status Downgrades", func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				json.NewEncoder(w).Encode(map[string]any{"id": "x", "status": "quantum"})
			}))
			defer server.Close()

			srv := NewTranscriberService(server.URL, nil)
			snap, err := srv.FetchTask(context.Background(), "x")
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if snap.Status != models.StatusUnknown {
				t.Errorf("expected StatusUnknown, got %s", snap.Status)
			}
		})

		t.Run("Task Not Found", func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				// The backend reports unknown ids with HTTP 200 and an error body.
				json.NewEncoder(w).Encode(map[string]string{"error": "task not found"})
			}))
			defer server.Close()

			srv := NewTranscriberService(server.URL, nil)
			_, err := srv.FetchTask(context.Background(), "ghost")
			if !errors.Is(err, shared.ErrJobNotFound) {
				t.Errorf("expected ErrJobNotFound, got %v", err)
			}
		})

		t.Run("Failed Task Keeps Error Field", func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				json.NewEncoder(w).Encode(map[string]any{"id": "x", "status": "failed", "error": "download blocked"})
			}))
			defer server.Close()

			srv := NewTranscriberService(server.URL, nil)
			snap, err := srv.FetchTask(context.Background(), "x")
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if snap.Status != models.StatusFailed || snap.Error != "download blocked" {
				t.Errorf("unexpected snapshot: %+v", snap)
			}
		})

		t.Run("Transport Error", func(t *testing.T) {
			client := &http.Client{Transport: &failingRoundTripper{err: errors.New("connection failed")}}
			srv := NewTranscriberService("http://example.com", client)
			_, err := srv.FetchTask(context.Background(), "x")
			if err == nil || !strings.Contains(err.Error(), "request failed") {
				t.Errorf("expected transport error, got %v", err)
			}
		})
	})

	t.Run("FetchAll", func(t *testing.T) {
		t.Run("Parses All Snapshots", func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if r.URL.Path != "/api/tasks" {
					t.Errorf("unexpected path %s", r.URL.Path)
				}
				json.NewEncoder(w).Encode(map[string]any{"tasks": []map[string]any{
					{"id": "t1", "status": "done", "formatting": "done", "content": "# T\n\nbody"},
					{"id": "t2", "status": "queued"},
					{"status": "queued"}, // no id, skipped
				}})
			}))
			defer server.Close()

			srv := NewTranscriberService(server.URL, nil)
			snaps, err := srv.FetchAll(context.Background())
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if len(snaps) != 2 {
				t.Fatalf("expected 2 snapshots, got %d", len(snaps))
			}
			if snaps[0].JobID != "t1" || snaps[0].Status != models.StatusDone {
				t.Errorf("unexpected first snapshot: %+v", snaps[0])
			}
		})

		t.Run("Empty List", func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				json.NewEncoder(w).Encode(map[string]any{"tasks": []any{}})
			}))
			defer server.Close()

			srv := NewTranscriberService(server.URL, nil)
			snaps, err := srv.FetchAll(context.Background())
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if len(snaps) != 0 {
				t.Errorf("expected empty slice, got %v", snaps)
			}
		})
	})
}

func TestCookiesFromCurl(t *testing.T) {
	t.Run("Fills Domain And Path", func(t *testing.T) {
		h := &shared.CurlHeaders{Cookie: "SID=abc; HSID=def"}
		cookies := CookiesFromCurl(h, "")
		if len(cookies) != 2 {
			t.Fatalf("expected 2 cookies, got %d", len(cookies))
		}
		if cookies[0].Domain != ".youtube.com" || cookies[0].Path != "/" {
			t.Errorf("expected defaults filled, got %+v", cookies[0])
		}
		if cookies[1].Name != "HSID" || cookies[1].Value != "def" {
			t.Errorf("unexpected cookie: %+v", cookies[1])
		}
	})

	t.Run("Nil Headers", func(t *testing.T) {
		if cookies := CookiesFromCurl(nil, ""); cookies != nil {
			t.Errorf("expected nil, got %v", cookies)
		}
	})
}
