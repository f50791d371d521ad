package subject

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"

	"github.com/desertthunder/yt2text/internal/models"
	"github.com/desertthunder/yt2text/internal/shared"
	"golang.org/x/time/rate"
)

// VideoLister enumerates the videos on a listing page (channel tab or
// playlist). It is the boundary to the page-scraping collaborator; engines
// never care how the list was obtained.
type VideoLister interface {
	ListVideos(ctx context.Context, pageURL string, limit int) ([]models.Subject, error)
}

// YtDlpLister lists videos by shelling out to yt-dlp in flat-playlist mode,
// which reads the page without downloading anything.
type YtDlpLister struct {
	binary  string
	limiter *rate.Limiter
}

// NewYtDlpLister creates a lister backed by the yt-dlp binary. probeRate
// bounds how fast per-video title probes hit the network; zero or negative
// falls back to 5/s.
func NewYtDlpLister(binary string, probeRate float64) *YtDlpLister {
	if binary == "" {
		binary = "yt-dlp"
	}
	if probeRate <= 0 {
		probeRate = 5.0
	}
	return &YtDlpLister{
		binary:  binary,
		limiter: rate.NewLimiter(rate.Limit(probeRate), 1),
	}
}

// ListVideos enumerates a listing page. Entries missing an id are skipped;
// entries missing a title get the canonical URL as a provisional label.
func (l *YtDlpLister) ListVideos(ctx context.Context, pageURL string, limit int) ([]models.Subject, error) {
	if pageURL == "" {
		return nil, fmt.Errorf("%w: page url is required", shared.ErrInvalidInput)
	}

	args := []string{"--flat-playlist", "--print", "%(id)s\t%(title)s"}
	if limit > 0 {
		args = append(args, "--playlist-end", fmt.Sprintf("%d", limit))
	}
	args = append(args, pageURL)

	cmd := exec.CommandContext(ctx, l.binary, args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("yt-dlp failed: %w: %s", err, strings.TrimSpace(stderr.String()))
	}

	var subjects []models.Subject
	scanner := bufio.NewScanner(&stdout)
	for scanner.Scan() {
		id, title, _ := strings.Cut(strings.TrimSpace(scanner.Text()), "\t")
		if id == "" {
			continue
		}

		subj, err := Detect(canonicalPrefix+id, title)
		if err != nil {
			continue
		}
		subjects = append(subjects, *subj)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read yt-dlp output: %w", err)
	}

	return subjects, nil
}

// ProbeTitle looks up a single video's title. Implements [TitleProber].
func (l *YtDlpLister) ProbeTitle(ctx context.Context, videoID string) (string, error) {
	if err := l.limiter.Wait(ctx); err != nil {
		return "", err
	}

	cmd := exec.CommandContext(ctx, l.binary, "--print", "title", "--skip-download", canonicalPrefix+videoID)
	var stdout bytes.Buffer
	cmd.Stdout = &stdout

	if err := cmd.Run(); err != nil {
		return "", fmt.Errorf("yt-dlp title probe failed: %w", err)
	}

	return strings.TrimSpace(stdout.String()), nil
}

// ProbeTitles fills in labels for subjects that only carry their canonical
// URL, honoring the probe rate limit. Failures leave the provisional label.
func (l *YtDlpLister) ProbeTitles(ctx context.Context, subjects []models.Subject) []models.Subject {
	for i, subj := range subjects {
		if subj.Label != "" && subj.Label != subj.CanonicalURL {
			continue
		}
		title, err := l.ProbeTitle(ctx, subj.ID)
		if err != nil || title == "" {
			continue
		}
		subjects[i].Label = title
	}
	return subjects
}
