package dogapi

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
)

const DefaultTheDogAPIURL = "https://api.thedogapi.com"

// Measure is a value given in both unit systems.
type Measure struct {
	Imperial string `json:"imperial"`
	Metric   string `json:"metric"`
}

// BreedInfo is breed metadata from TheDogAPI.
type BreedInfo struct {
	ID          int     `json:"id"`
	Name        string  `json:"name"`
	Temperament string  `json:"temperament"`
	Origin      string  `json:"origin"`
	CountryCode string  `json:"country_code"`
	Description string  `json:"description"`
	LifeSpan    string  `json:"life_span"`
	Weight      Measure `json:"weight"`
	Height      Measure `json:"height"`
}

// TheDogAPI is a client for https://thedogapi.com.
type TheDogAPI struct {
	baseURL string
	apiKey  string
	client  *http.Client
}

// NewTheDogAPI creates a client. With an empty apiKey requests are
// anonymous and subject to the public rate limit.
func NewTheDogAPI(baseURL, apiKey string) *TheDogAPI {
	if baseURL == "" {
		baseURL = DefaultTheDogAPIURL
	}
	return &TheDogAPI{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		client:  &http.Client{Timeout: defaultHTTPTimeout},
	}
}

// Lookup returns the first search hit for name, or ErrNotFound.
func (a *TheDogAPI) Lookup(ctx context.Context, name string) (*BreedInfo, error) {
	header := http.Header{}
	if a.apiKey != "" {
		header.Set("x-api-key", a.apiKey)
	}

	endpoint := a.baseURL + "/v1/breeds/search?q=" + url.QueryEscape(name)
	hits, err := doGetJSON[[]BreedInfo](ctx, a.client, endpoint, header)
	if err != nil {
		return nil, fmt.Errorf("failed to look up %s: %w", name, err)
	}
	if len(*hits) == 0 {
		return nil, fmt.Errorf("breed %s: %w", name, ErrNotFound)
	}
	return &(*hits)[0], nil
}
