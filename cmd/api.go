package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/desertthunder/yt2text/internal/shared"
	"github.com/urfave/cli/v3"
)

// Health checks that the transcription backend is up and reports the result.
func (r *Runner) Health(ctx context.Context, cmd *cli.Command) error {
	if err := r.client.Health(ctx); err != nil {
		return fmt.Errorf("%w: %v", shared.ErrBackendUnavailable, err)
	}
	return r.writePlain("✓ Backend is healthy at %s\n", r.config.Backend.BaseURL)
}

// APIGet makes a direct GET request to the backend
func (r *Runner) APIGet(ctx context.Context, cmd *cli.Command) error {
	path := cmd.Args().First()
	if path == "" {
		return fmt.Errorf("%w: path", shared.ErrMissingArgument)
	}

	r.logger.Info("GET request", "path", path)
	return r.rawRequest(ctx, http.MethodGet, path, "")
}

// APIPost makes a direct POST request to the backend
func (r *Runner) APIPost(ctx context.Context, cmd *cli.Command) error {
	path := cmd.Args().First()
	if path == "" {
		return fmt.Errorf("%w: path", shared.ErrMissingArgument)
	}

	body := cmd.Args().Get(1)
	if body != "" {
		var jsonTest any
		if err := json.Unmarshal([]byte(body), &jsonTest); err != nil {
			return fmt.Errorf("%w: body is not valid JSON: %v", shared.ErrInvalidInput, err)
		}
	}

	r.logger.Info("POST request", "path", path)
	return r.rawRequest(ctx, http.MethodPost, path, body)
}

func (r *Runner) rawRequest(ctx context.Context, method, path, body string) error {
	url := strings.TrimRight(r.config.Backend.BaseURL, "/") + "/" + strings.TrimLeft(path, "/")

	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return fmt.Errorf("%w: %v", shared.ErrAPIRequest, err)
	}
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := r.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", shared.ErrAPIRequest, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("%w: status %d, body: %s", shared.ErrAPIRequest, resp.StatusCode, string(raw))
	}

	var jsonData any
	if err := json.Unmarshal(raw, &jsonData); err == nil {
		return r.writeJSON(jsonData, true)
	}

	r.output.Write(raw)
	r.output.Write([]byte("\n"))
	return nil
}
