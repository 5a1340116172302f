package dogapi

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func newCEOServer(t *testing.T) *httptest.Server {
	t.Helper()

	mux := http.NewServeMux()
	mux.HandleFunc("/api/breeds/list/all", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"success","message":{"retriever":["golden","curly"],"beagle":[],"akita":null}}`))
	})
	mux.HandleFunc("/api/breed/retriever/golden/images/random", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"status":"success","message":"https://img/golden.jpg"}`))
	})
	mux.HandleFunc("/api/breed/beagle/images/random/3", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"status":"success","message":["a.jpg","b.jpg","c.jpg"]}`))
	})
	mux.HandleFunc("/api/breeds/image/random", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"status":"success","message":"https://img/any.jpg"}`))
	})
	mux.HandleFunc("/api/breed/unknown/images/random", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"status":"error","message":"Breed not found (main breed does not exist)","code":404}`))
	})

	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return server
}

func TestListBreeds(t *testing.T) {
	server := newCEOServer(t)
	client := NewDogCEO(server.URL)

	breeds, err := client.ListBreeds(context.Background())
	if err != nil {
		t.Fatalf("ListBreeds failed: %v", err)
	}
	if len(breeds) != 3 {
		t.Fatalf("expected 3 breeds, got %d", len(breeds))
	}

	names := []string{breeds[0].Name, breeds[1].Name, breeds[2].Name}
	if strings.Join(names, ",") != "akita,beagle,retriever" {
		t.Errorf("breeds not sorted: %v", names)
	}
	if breeds[0].SubBreeds == nil {
		t.Error("expected non-nil sub-breeds for null message entry")
	}
	if len(breeds[2].SubBreeds) != 2 {
		t.Errorf("expected 2 retriever sub-breeds, got %v", breeds[2].SubBreeds)
	}
}

func TestListBreedsUnsuccessful(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"status":"error","message":{}}`))
	}))
	defer server.Close()

	_, err := NewDogCEO(server.URL).ListBreeds(context.Background())
	if !errors.Is(err, ErrUnsuccessful) {
		t.Errorf("expected ErrUnsuccessful, got %v", err)
	}
}

func TestImages(t *testing.T) {
	server := newCEOServer(t)
	client := NewDogCEO(server.URL)
	ctx := context.Background()

	img, err := client.RandomImage(ctx, "retriever/golden")
	if err != nil || img != "https://img/golden.jpg" {
		t.Errorf("RandomImage = (%q, %v)", img, err)
	}

	imgs, err := client.Images(ctx, "beagle", 3)
	if err != nil || len(imgs) != 3 {
		t.Errorf("Images = (%v, %v)", imgs, err)
	}

	_, err = client.RandomImage(ctx, "unknown")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestImageForFallbacks(t *testing.T) {
	server := newCEOServer(t)
	client := NewDogCEO(server.URL)
	ctx := context.Background()

	if got := client.ImageFor(ctx, "retriever/golden"); got != "https://img/golden.jpg" {
		t.Errorf("breed image: got %q", got)
	}
	if got := client.ImageFor(ctx, "unknown"); got != "https://img/any.jpg" {
		t.Errorf("random fallback: got %q", got)
	}

	down := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer down.Close()
	if got := NewDogCEO(down.URL).ImageFor(ctx, "beagle"); got != DefaultImageURL {
		t.Errorf("default fallback: got %q", got)
	}
}

func TestTheDogAPILookup(t *testing.T) {
	var gotKey, gotQuery string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotKey = r.Header.Get("x-api-key")
		gotQuery = r.URL.Query().Get("q")
		if gotQuery == "Nothing" {
			w.Write([]byte(`[]`))
			return
		}
		w.Write([]byte(`[{"id":1,"name":"Golden Retriever","temperament":"Intelligent, Kind","origin":"Scotland","life_span":"10 - 12 years","weight":{"metric":"25 - 34"},"height":{"metric":"55 - 61"}},{"id":2,"name":"Other"}]`))
	}))
	defer server.Close()

	api := NewTheDogAPI(server.URL, "secret")
	info, err := api.Lookup(context.Background(), "Golden Retriever")
	if err != nil {
		t.Fatalf("Lookup failed: %v", err)
	}
	if gotKey != "secret" {
		t.Errorf("expected api key header, got %q", gotKey)
	}
	if gotQuery != "Golden Retriever" {
		t.Errorf("expected query 'Golden Retriever', got %q", gotQuery)
	}
	if info.Name != "Golden Retriever" || info.Origin != "Scotland" || info.Height.Metric != "55 - 61" {
		t.Errorf("unexpected info: %+v", info)
	}

	_, err = api.Lookup(context.Background(), "Nothing")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestTheDogAPIAnonymous(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := r.Header["X-Api-Key"]; ok {
			t.Error("anonymous client sent an api key")
		}
		w.Write([]byte(`[{"name":"Pug"}]`))
	}))
	defer server.Close()

	if _, err := NewTheDogAPI(server.URL, "").Lookup(context.Background(), "pug"); err != nil {
		t.Fatalf("Lookup failed: %v", err)
	}
}

func TestWikipediaSummary(t *testing.T) {
	long := strings.Repeat("The Beagle is a breed of small scent hound. ", 3)
	var requested []string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requested = append(requested, r.URL.Path)
		switch r.URL.Path {
		case "/api/rest_v1/page/summary/Beagle dog breed":
			w.Write([]byte(`{"title":"Beagle dog breed","extract":"Too short."}`))
		case "/api/rest_v1/page/summary/Beagle":
			w.Write([]byte(`{"title":"Beagle","extract":"` + long + `"}`))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer server.Close()

	wiki := NewWikipedia(server.URL)
	got, err := wiki.Summary(context.Background(), "Beagle")
	if err != nil {
		t.Fatalf("Summary failed: %v", err)
	}
	if got != long {
		t.Errorf("unexpected extract %q", got)
	}
	if len(requested) != 2 {
		t.Errorf("expected two requests, got %v", requested)
	}

	if _, err := wiki.Summary(context.Background(), "Nope"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestBreedPath(t *testing.T) {
	tests := []struct {
		name string
		want string
	}{
		{"Golden Retriever", "retriever/golden"},
		{"Saint Bernard", "stbernard"},
		{"West Highland White Terrier", "terrier/westhighland"},
		{"Siberian Husky", "husky"},
		{"Husky", "husky"},
		{"Beagle", "beagle"},
		{"Shih Tzu", "shihtzu"},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := BreedPath(tt.name); got != tt.want {
				t.Errorf("BreedPath(%q) = %q, want %q", tt.name, got, tt.want)
			}
		})
	}
}

func TestPathFor(t *testing.T) {
	if got := PathFor("retriever", "golden"); got != "retriever/golden" {
		t.Errorf("got %q", got)
	}
	if got := PathFor("beagle", ""); got != "beagle" {
		t.Errorf("got %q", got)
	}
}
