// Package dogapi contains clients for the public dog breed services: the
// dog.ceo breed list and image API, TheDogAPI breed metadata, and the
// Wikipedia page summary endpoint.
package dogapi

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"time"
)

const (
	DefaultDogCEOURL = "https://dog.ceo"
	// DefaultImageURL is returned when no image could be fetched at all.
	DefaultImageURL = "https://images.dog.ceo/breeds/retriever/golden/n02099601_1.jpg"

	defaultHTTPTimeout = 10 * time.Second
)

var (
	ErrNotFound     = errors.New("not found")
	ErrUnsuccessful = errors.New("dog.ceo returned an unsuccessful status")
)

// Breed is one dog.ceo breed with its sub-breeds.
type Breed struct {
	Name      string   `json:"name"`
	SubBreeds []string `json:"subBreeds"`
}

type ceoResponse[T any] struct {
	Status  string `json:"status"`
	Message T      `json:"message"`
}

// DogCEO is a client for https://dog.ceo.
type DogCEO struct {
	baseURL string
	client  *http.Client
}

// NewDogCEO creates a dog.ceo client. An empty baseURL uses the public
// service.
func NewDogCEO(baseURL string) *DogCEO {
	if baseURL == "" {
		baseURL = DefaultDogCEOURL
	}
	return &DogCEO{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: defaultHTTPTimeout},
	}
}

func ceoGet[T any](ctx context.Context, d *DogCEO, endpoint string) (T, error) {
	var zero T
	resp, err := doGetJSON[ceoResponse[T]](ctx, d.client, d.baseURL+endpoint, nil)
	if err != nil {
		return zero, err
	}
	if resp.Status != "success" {
		return zero, fmt.Errorf("%w: %s", ErrUnsuccessful, resp.Status)
	}
	return resp.Message, nil
}

// ListBreeds returns every breed sorted by name.
func (d *DogCEO) ListBreeds(ctx context.Context) ([]Breed, error) {
	all, err := ceoGet[map[string][]string](ctx, d, "/api/breeds/list/all")
	if err != nil {
		return nil, fmt.Errorf("failed to list breeds: %w", err)
	}

	breeds := make([]Breed, 0, len(all))
	for name, subs := range all {
		if subs == nil {
			subs = []string{}
		}
		breeds = append(breeds, Breed{Name: name, SubBreeds: subs})
	}
	sort.Slice(breeds, func(i, j int) bool { return breeds[i].Name < breeds[j].Name })
	return breeds, nil
}

// RandomImage returns a random image URL for a dog.ceo breed path such as
// "retriever/golden".
func (d *DogCEO) RandomImage(ctx context.Context, path string) (string, error) {
	img, err := ceoGet[string](ctx, d, "/api/breed/"+escapePath(path)+"/images/random")
	if err != nil {
		return "", fmt.Errorf("failed to get image for %s: %w", path, err)
	}
	return img, nil
}

// Images returns up to n random image URLs for a breed path.
func (d *DogCEO) Images(ctx context.Context, path string, n int) ([]string, error) {
	if n < 1 {
		n = 1
	}
	imgs, err := ceoGet[[]string](ctx, d, fmt.Sprintf("/api/breed/%s/images/random/%d", escapePath(path), n))
	if err != nil {
		return nil, fmt.Errorf("failed to get images for %s: %w", path, err)
	}
	return imgs, nil
}

// AnyImage returns a random image of any breed.
func (d *DogCEO) AnyImage(ctx context.Context) (string, error) {
	img, err := ceoGet[string](ctx, d, "/api/breeds/image/random")
	if err != nil {
		return "", fmt.Errorf("failed to get random image: %w", err)
	}
	return img, nil
}

// ImageFor returns an image for path, falling back to any breed and then
// to DefaultImageURL. It never fails.
func (d *DogCEO) ImageFor(ctx context.Context, path string) string {
	if path != "" {
		if img, err := d.RandomImage(ctx, path); err == nil {
			return img
		}
	}
	if img, err := d.AnyImage(ctx); err == nil {
		return img
	}
	return DefaultImageURL
}

func escapePath(path string) string {
	parts := strings.Split(strings.Trim(path, "/"), "/")
	for i, p := range parts {
		parts[i] = url.PathEscape(p)
	}
	return strings.Join(parts, "/")
}
