package web

import (
	"bytes"
	"context"
	"encoding/json"
	"math/rand/v2"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/kozaktomas/breed-twin/internal/catalog"
	"github.com/kozaktomas/breed-twin/internal/config"
	"github.com/kozaktomas/breed-twin/internal/database"
	"github.com/kozaktomas/breed-twin/internal/database/mock"
	"github.com/kozaktomas/breed-twin/internal/features"
	"github.com/kozaktomas/breed-twin/internal/matcher"
	"github.com/kozaktomas/breed-twin/internal/web/handlers"
)

type emptyCatalog struct{}

func (emptyCatalog) Build(context.Context) []catalog.Entry { return nil }

type noImages struct{}

func (noImages) Images(context.Context, string, int) ([]string, error) { return []string{}, nil }

func testServer(t *testing.T) *Server {
	t.Helper()
	cfg := &config.Config{Web: config.WebConfig{Host: "127.0.0.1", Port: 0}}

	store := mock.NewMockProfileStore()
	store.AddProfile(database.BreedProfile{Key: "akita", Breed: "Akita", Lab: []float32{0.9, 0, 0}})
	index := database.NewProfileIndex()
	profiles, _ := store.List(context.Background())
	index.Build(profiles)

	return NewServer(cfg, Dependencies{
		Extractor: features.NewDispatcher(nil, nil),
		Matcher:   matcher.NewDispatcher(nil, nil, matcher.WithRand(rand.New(rand.NewPCG(7, 7)))),
		Catalog:   emptyCatalog{},
		Images:    noImages{},
		Index:     index,
		Profiles:  store,
	}, nil)
}

func TestServer_Health(t *testing.T) {
	srv := testServer(t)

	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/health", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}
	var resp handlers.HealthResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to unmarshal response: %v", err)
	}
	if resp.Status != "ok" || resp.Profiles == nil || *resp.Profiles != 1 {
		t.Errorf("unexpected health %+v", resp)
	}
	if rec.Header().Get("X-Content-Type-Options") != "nosniff" {
		t.Error("security headers not applied")
	}
}

func TestServer_NotFound(t *testing.T) {
	rec := httptest.NewRecorder()
	testServer(t).Router().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/nope", nil))

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected status 404, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `"error"`) {
		t.Errorf("expected JSON error body, got %s", rec.Body.String())
	}
}

func TestServer_MatchFallsBackToStaticBreeds(t *testing.T) {
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	part, _ := writer.CreateFormFile("image", "face.jpg")
	part.Write([]byte("not an image"))
	writer.Close()

	req := httptest.NewRequest(http.MethodPost, "/api/v1/match", body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	rec := httptest.NewRecorder()
	testServer(t).Router().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var resp handlers.MatchResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to unmarshal response: %v", err)
	}
	if resp.Match.Breed == "" || resp.Match.Strategy != "static" {
		t.Errorf("expected a static match, got %+v", resp.Match)
	}
	if resp.Features.Confidence != features.NeutralConfidence {
		t.Errorf("undecodable upload should give neutral features, got %v", resp.Features.Confidence)
	}
}

func TestServer_SimilarRoute(t *testing.T) {
	rec := httptest.NewRecorder()
	testServer(t).Router().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/breeds/Akita/similar", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}
	var resp handlers.SimilarResponse
	json.Unmarshal(rec.Body.Bytes(), &resp)
	if resp.Breed != "akita" || len(resp.Similar) != 0 {
		t.Errorf("unexpected response %+v", resp)
	}
}
