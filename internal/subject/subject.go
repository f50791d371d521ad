// Package subject derives the identity of the video a session is about.
//
// A Subject is the stable key every other layer hangs off: the ledger maps
// subject ids to backend jobs and the engines key their state on it.
// Detection is deterministic, so the same watch URL always yields the same
// subject id no matter which surface asked.
package subject

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/desertthunder/yt2text/internal/models"
	"github.com/desertthunder/yt2text/internal/shared"
)

const canonicalPrefix = "https://www.youtube.com/watch?v="

// Detect derives a Subject from a raw URL, returning [shared.ErrNoSubject]
// when the URL does not name a single watchable video. The label falls back
// to the canonical URL until a real title is known.
func Detect(rawURL, title string) (*models.Subject, error) {
	id, err := extractVideoID(rawURL)
	if err != nil {
		return nil, err
	}

	canonical := canonicalPrefix + id
	label := strings.TrimSpace(title)
	if label == "" {
		label = canonical
	}

	return &models.Subject{ID: id, CanonicalURL: canonical, Label: label}, nil
}

// extractVideoID pulls the video id out of the watch URL forms YouTube
// serves: watch?v=, youtu.be/, /shorts/ and /live/.
func extractVideoID(rawURL string) (string, error) {
	rawURL = strings.TrimSpace(rawURL)
	if rawURL == "" {
		return "", fmt.Errorf("%w: empty url", shared.ErrNoSubject)
	}

	parsed, err := url.Parse(rawURL)
	if err != nil {
		return "", fmt.Errorf("%w: %s", shared.ErrNoSubject, rawURL)
	}

	host := strings.TrimPrefix(strings.ToLower(parsed.Hostname()), "www.")
	switch host {
	case "youtu.be":
		if id := firstPathSegment(parsed.Path); id != "" {
			return id, nil
		}
	case "youtube.com", "m.youtube.com", "music.youtube.com":
		if parsed.Path == "/watch" {
			if id := parsed.Query().Get("v"); id != "" {
				return id, nil
			}
		}
		for _, prefix := range []string{"/shorts/", "/live/"} {
			if strings.HasPrefix(parsed.Path, prefix) {
				if id := firstPathSegment(strings.TrimPrefix(parsed.Path, prefix)); id != "" {
					return id, nil
				}
			}
		}
	}

	return "", fmt.Errorf("%w: not a watch url: %s", shared.ErrNoSubject, rawURL)
}

func firstPathSegment(path string) string {
	path = strings.TrimPrefix(path, "/")
	if i := strings.IndexByte(path, '/'); i >= 0 {
		path = path[:i]
	}
	return path
}
