package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/kozaktomas/breed-twin/internal/constants"
	"github.com/kozaktomas/breed-twin/internal/features"
	"github.com/kozaktomas/breed-twin/internal/logging"
	"github.com/kozaktomas/breed-twin/internal/matcher"
)

var errMissingImage = errors.New(constants.UploadField + " is required")

// FeatureExtractor turns raw image bytes into a feature set. It never fails.
type FeatureExtractor interface {
	Extract(ctx context.Context, data []byte) features.Set
}

// BreedMatcher picks breeds for a feature set. It never fails.
type BreedMatcher interface {
	Match(ctx context.Context, f features.Set) matcher.Result
	Suggest(ctx context.Context, f features.Set, n int) []matcher.Result
}

// MatchHandler handles feature extraction and breed matching endpoints
type MatchHandler struct {
	extractor FeatureExtractor
	matcher   BreedMatcher
	logger    *zap.Logger
}

// NewMatchHandler creates a new match handler
func NewMatchHandler(extractor FeatureExtractor, m BreedMatcher, logger *zap.Logger) *MatchHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &MatchHandler{extractor: extractor, matcher: m, logger: logger}
}

// MatchResponse is returned by the match endpoint
type MatchResponse struct {
	Match    matcher.Result `json:"match"`
	Features features.Set   `json:"features"`
}

// SuggestionsResponse is returned by the suggestions endpoint
type SuggestionsResponse struct {
	Suggestions []matcher.Result `json:"suggestions"`
	Features    features.Set     `json:"features"`
}

// readUpload returns the bytes of the uploaded photo.
func readUpload(r *http.Request) ([]byte, error) {
	if err := r.ParseMultipartForm(constants.MaxUploadSize); err != nil {
		return nil, errors.New("failed to parse multipart form")
	}
	file, _, err := r.FormFile(constants.UploadField)
	if err != nil {
		return nil, errMissingImage
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, constants.MaxUploadSize))
	if err != nil {
		return nil, errors.New("failed to read uploaded image")
	}
	if len(data) == 0 {
		return nil, errMissingImage
	}
	return data, nil
}

// readFeatures takes the feature set from an uploaded photo when the
// request is multipart, and from a JSON body otherwise.
func (h *MatchHandler) readFeatures(r *http.Request) (features.Set, error) {
	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/") {
		data, err := readUpload(r)
		if err != nil {
			return features.Set{}, err
		}
		return h.extractor.Extract(r.Context(), data), nil
	}

	var f features.Set
	if err := json.NewDecoder(io.LimitReader(r.Body, constants.MaxUploadSize)).Decode(&f); err != nil {
		return features.Set{}, errors.New(errInvalidRequestBody)
	}
	return f, nil
}

// Features extracts the feature set of an uploaded photo.
func (h *MatchHandler) Features(w http.ResponseWriter, r *http.Request) {
	data, err := readUpload(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	f := h.extractor.Extract(r.Context(), data)
	respondJSON(w, http.StatusOK, f)
}

// Match returns the best breed for an uploaded photo or a feature set.
func (h *MatchHandler) Match(w http.ResponseWriter, r *http.Request) {
	f, err := h.readFeatures(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	res := h.matcher.Match(r.Context(), f)
	logging.FromContext(r.Context(), h.logger).Info("breed matched",
		zap.String("id", res.ID),
		zap.String("breed", res.Breed),
		zap.String("strategy", res.Strategy),
		zap.Float64("confidence", res.Confidence))
	respondJSON(w, http.StatusOK, MatchResponse{Match: res, Features: f})
}

// Suggestions returns the n best built-in breeds.
func (h *MatchHandler) Suggestions(w http.ResponseWriter, r *http.Request) {
	n, err := queryCount(r, "count", constants.DefaultSuggestions, constants.MaxSuggestions)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	f, err := h.readFeatures(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	respondJSON(w, http.StatusOK, SuggestionsResponse{Suggestions: h.matcher.Suggest(r.Context(), f, n), Features: f})
}
