// package formatter shapes finished transcripts for display and export
package formatter

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/desertthunder/yt2text/internal/models"
	"github.com/desertthunder/yt2text/internal/shared"
)

// ResultBody strips the single leading "# Title" heading the backend puts
// on formatted markdown, along with the blank lines under it. Surfaces
// already show the title as the view label, so repeating it in the body is
// noise. Content without a heading passes through untouched.
func ResultBody(content string) string {
	if !strings.HasPrefix(content, "# ") {
		return content
	}

	_, rest, found := strings.Cut(content, "\n")
	if !found {
		return ""
	}

	return strings.TrimLeft(rest, "\n")
}

// WriteTranscript saves a finished transcript under dir as
// "<sanitized label>.md" and returns the path written.
func WriteTranscript(dir string, subject *models.Subject, content string) (string, error) {
	if subject == nil {
		return "", fmt.Errorf("%w: subject is required", shared.ErrInvalidInput)
	}
	if content == "" {
		return "", fmt.Errorf("%w: nothing to write", shared.ErrInvalidInput)
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create output directory: %w", err)
	}

	name := subject.Label
	if name == "" || name == subject.CanonicalURL {
		name = subject.ID
	}

	path := filepath.Join(dir, shared.SanitizeFilename(name)+".md")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		return "", fmt.Errorf("failed to write transcript: %w", err)
	}

	return path, nil
}
