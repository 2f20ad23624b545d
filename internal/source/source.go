package source

import (
	"context"
	"errors"
	"fmt"
	"regexp"

	"github.com/kitayama-ai/x-viral-tweet-generator/internal/types"
)

// ErrNotFound reports that a post does not exist or is not visible.
var ErrNotFound = errors.New("post not found")

// Source supplies candidate posts, either a batch from an account timeline
// or a single post resolved from a status URL. Implementations must not
// panic on network failure; errors are returned for the orchestrator to
// record, and an empty slice with a nil error is a legitimate outcome.
type Source interface {
	Timeline(ctx context.Context, account string, maxItems int) ([]types.Post, error)
	ByURL(ctx context.Context, url string) (types.Post, error)
}

// statusURL recognizes the two known hosts. Anything else is invalid input.
var statusURL = regexp.MustCompile(`^https?://(?:x\.com|twitter\.com)/([A-Za-z0-9_]+)/status/(\d+)(?:[/?#].*)?$`)

// ParseStatusURL extracts the username and numeric post ID from a status URL.
func ParseStatusURL(url string) (username, id string, err error) {
	m := statusURL.FindStringSubmatch(url)
	if m == nil {
		return "", "", fmt.Errorf("invalid status URL: %q", url)
	}
	return m[1], m[2], nil
}
