package handlers

import (
	"bytes"
	"context"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/kozaktomas/breed-twin/internal/catalog"
	"github.com/kozaktomas/breed-twin/internal/database"
	"github.com/kozaktomas/breed-twin/internal/dogapi"
	"github.com/kozaktomas/breed-twin/internal/features"
	"github.com/kozaktomas/breed-twin/internal/matcher"
)

// requestWithChiParams creates a request with chi URL parameters
func requestWithChiParams(r *http.Request, params map[string]string) *http.Request {
	rctx := chi.NewRouteContext()
	for key, value := range params {
		rctx.URLParams.Add(key, value)
	}
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

// uploadRequest builds a multipart request carrying data under field
func uploadRequest(t *testing.T, target, field string, data []byte) *http.Request {
	t.Helper()
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	part, err := writer.CreateFormFile(field, "face.jpg")
	if err != nil {
		t.Fatalf("failed to create form file: %v", err)
	}
	part.Write(data)
	if err := writer.Close(); err != nil {
		t.Fatalf("failed to close multipart writer: %v", err)
	}

	req := httptest.NewRequest(http.MethodPost, target, body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	return req
}

// stubExtractor records the bytes it was given and returns a fixed set
type stubExtractor struct {
	set  features.Set
	seen []byte
}

func (s *stubExtractor) Extract(_ context.Context, data []byte) features.Set {
	s.seen = data
	return s.set
}

// stubMatcher echoes the hair color back as the breed
type stubMatcher struct {
	suggested int
}

func (s *stubMatcher) Match(_ context.Context, f features.Set) matcher.Result {
	return matcher.Result{ID: "match-1", Breed: f.Hair.Dominant, Strategy: "stub", Confidence: 0.8}
}

func (s *stubMatcher) Suggest(_ context.Context, f features.Set, n int) []matcher.Result {
	s.suggested = n
	out := make([]matcher.Result, n)
	for i := range out {
		out[i] = matcher.Result{Breed: f.Hair.Dominant, Strategy: "static"}
	}
	return out
}

type stubCatalog []catalog.Entry

func (s stubCatalog) Build(context.Context) []catalog.Entry { return s }

// stubImages serves images for known dog.ceo paths
type stubImages struct {
	byPath map[string][]string
	err    error
	path   string
	n      int
}

func (s *stubImages) Images(_ context.Context, path string, n int) ([]string, error) {
	s.path, s.n = path, n
	if s.err != nil {
		return nil, s.err
	}
	imgs, ok := s.byPath[path]
	if !ok {
		return nil, dogapi.ErrNotFound
	}
	return imgs[:min(n, len(imgs))], nil
}

// testIndex builds a profile index over three coats
func testIndex() *database.ProfileIndex {
	idx := database.NewProfileIndex()
	idx.Build([]database.BreedProfile{
		{Key: "akita", Breed: "Akita", Colors: []string{"White"}, Lab: []float32{0.9, 0, 0.05}, Hex: "#e0e0e0"},
		{Key: "samoyed", Breed: "Samoyed", Colors: []string{"White"}, Lab: []float32{0.95, 0, 0}, Hex: "#f0f0f0"},
		{Key: "newfoundland", Breed: "Newfoundland", Colors: []string{"Black"}, Lab: []float32{0.1, 0, 0}, Hex: "#101010"},
	})
	return idx
}
