package dogapi

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
)

const (
	DefaultWikipediaURL = "https://en.wikipedia.org"

	// minExtractLength rejects stub and disambiguation extracts.
	minExtractLength = 50
)

// Wikipedia fetches page summaries from the Wikipedia REST API.
type Wikipedia struct {
	baseURL string
	client  *http.Client
}

// NewWikipedia creates a client. An empty baseURL uses English Wikipedia.
func NewWikipedia(baseURL string) *Wikipedia {
	if baseURL == "" {
		baseURL = DefaultWikipediaURL
	}
	return &Wikipedia{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: defaultHTTPTimeout},
	}
}

type summary struct {
	Title   string `json:"title"`
	Extract string `json:"extract"`
}

// Summary returns the extract for "<name> dog breed", or for the plain
// name when the first page has no usable extract.
func (w *Wikipedia) Summary(ctx context.Context, name string) (string, error) {
	var errs []error
	for _, term := range []string{name + " dog breed", name} {
		endpoint := w.baseURL + "/api/rest_v1/page/summary/" + url.PathEscape(term)
		s, err := doGetJSON[summary](ctx, w.client, endpoint, nil)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		if len(s.Extract) > minExtractLength {
			return s.Extract, nil
		}
	}
	if err := errors.Join(errs...); err != nil {
		return "", fmt.Errorf("no summary for %s: %w", name, err)
	}
	return "", fmt.Errorf("no summary for %s: %w", name, ErrNotFound)
}
