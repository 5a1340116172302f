package handlers

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/kozaktomas/breed-twin/internal/catalog"
	"github.com/kozaktomas/breed-twin/internal/constants"
	"github.com/kozaktomas/breed-twin/internal/database"
	"github.com/kozaktomas/breed-twin/internal/dogapi"
	"github.com/kozaktomas/breed-twin/internal/logging"
	"github.com/kozaktomas/breed-twin/internal/lookup"
)

// CatalogSource builds the breed catalog. It never fails.
type CatalogSource interface {
	Build(ctx context.Context) []catalog.Entry
}

// ImageLister fetches breed photos by dog.ceo path.
type ImageLister interface {
	Images(ctx context.Context, path string, n int) ([]string, error)
}

// SimilarFinder answers nearest-coat queries over calibrated profiles.
type SimilarFinder interface {
	Similar(key string, k int) ([]database.Neighbor, error)
}

// BreedsHandler handles breed catalog endpoints
type BreedsHandler struct {
	catalog CatalogSource
	images  ImageLister
	index   SimilarFinder
	logger  *zap.Logger
}

// NewBreedsHandler creates a new breeds handler. A nil index disables the
// similarity endpoint.
func NewBreedsHandler(c CatalogSource, images ImageLister, index SimilarFinder, logger *zap.Logger) *BreedsHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &BreedsHandler{catalog: c, images: images, index: index, logger: logger}
}

// BreedsResponse lists the catalog
type BreedsResponse struct {
	Count  int             `json:"count"`
	Breeds []catalog.Entry `json:"breeds"`
}

// ImagesResponse lists photos of one breed
type ImagesResponse struct {
	Breed  string   `json:"breed"`
	Path   string   `json:"path"`
	Images []string `json:"images"`
}

// SimilarBreed is one coat-color neighbor
type SimilarBreed struct {
	Key      string   `json:"key"`
	Breed    string   `json:"breed"`
	Colors   []string `json:"colors"`
	Hex      string   `json:"hex"`
	Distance float64  `json:"distance"`
}

// SimilarResponse lists the nearest breeds by coat color
type SimilarResponse struct {
	Breed   string         `json:"breed"`
	Similar []SimilarBreed `json:"similar"`
}

// breedParam returns the unescaped {name} URL parameter.
func breedParam(r *http.Request) (string, bool) {
	raw := chi.URLParam(r, "name")
	name, err := url.PathUnescape(raw)
	if err != nil {
		name = raw
	}
	name = strings.TrimSpace(name)
	return name, name != ""
}

// List returns every catalog entry.
func (h *BreedsHandler) List(w http.ResponseWriter, r *http.Request) {
	entries := h.catalog.Build(r.Context())
	if entries == nil {
		entries = []catalog.Entry{}
	}
	respondJSON(w, http.StatusOK, BreedsResponse{Count: len(entries), Breeds: entries})
}

// Images returns random photos of a breed.
func (h *BreedsHandler) Images(w http.ResponseWriter, r *http.Request) {
	name, ok := breedParam(r)
	if !ok {
		respondError(w, http.StatusBadRequest, "breed name is required")
		return
	}
	n, err := queryCount(r, "count", constants.DefaultBreedImages, constants.MaxBreedImages)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	path := dogapi.BreedPath(name)
	images, err := h.images.Images(r.Context(), path, n)
	if errors.Is(err, dogapi.ErrNotFound) {
		respondError(w, http.StatusNotFound, "breed not found")
		return
	}
	if err != nil {
		logging.FromContext(r.Context(), h.logger).Warn("failed to fetch breed images", zap.String("breed", sanitizeForLog(name)), zap.Error(err))
		respondError(w, http.StatusBadGateway, "failed to fetch breed images")
		return
	}
	respondJSON(w, http.StatusOK, ImagesResponse{Breed: name, Path: path, Images: images})
}

// Similar returns the breeds whose calibrated coat color is closest.
func (h *BreedsHandler) Similar(w http.ResponseWriter, r *http.Request) {
	if h.index == nil {
		respondError(w, http.StatusServiceUnavailable, "profile index not available")
		return
	}
	name, ok := breedParam(r)
	if !ok {
		respondError(w, http.StatusBadRequest, "breed name is required")
		return
	}
	k, err := queryCount(r, "k", constants.DefaultSimilarBreeds, constants.MaxSimilarBreeds)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	key := lookup.Normalize(name)
	neighbors, err := h.index.Similar(key, k)
	if errors.Is(err, database.ErrNotIndexed) {
		respondError(w, http.StatusNotFound, "breed has no calibrated profile")
		return
	}
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to search profiles")
		return
	}

	similar := make([]SimilarBreed, 0, len(neighbors))
	for _, n := range neighbors {
		similar = append(similar, SimilarBreed{
			Key:      n.Profile.Key,
			Breed:    n.Profile.Breed,
			Colors:   n.Profile.Colors,
			Hex:      n.Profile.Hex,
			Distance: n.Distance,
		})
	}
	respondJSON(w, http.StatusOK, SimilarResponse{Breed: key, Similar: similar})
}
