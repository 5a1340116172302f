package database

import (
	"errors"
	"testing"
)

func testProfiles() []BreedProfile {
	return []BreedProfile{
		{Key: "newfoundland", Lab: []float32{10, 0, 0}},
		{Key: "labrador", Lab: []float32{15, 1, 1}},
		{Key: "akita", Lab: []float32{90, 0, 5}},
		{Key: "samoyed", Lab: []float32{95, 0, 2}},
		{Key: "vizsla", Lab: []float32{50, 30, 40}},
		{Key: "broken", Lab: []float32{1, 2}},
	}
}

func TestProfileIndexBuild(t *testing.T) {
	idx := NewProfileIndex()
	if got := idx.Search([]float32{0, 0, 0}, 3); got != nil {
		t.Errorf("expected no results from empty index, got %v", got)
	}

	idx.Build(testProfiles())
	if idx.Count() != 5 {
		t.Errorf("expected 5 indexed profiles (bad vector skipped), got %d", idx.Count())
	}
	if idx.Get("broken") != nil {
		t.Error("profile with a bad vector should not be indexed")
	}
}

func TestProfileIndexSearch(t *testing.T) {
	idx := NewProfileIndex()
	idx.Build(testProfiles())

	got := idx.Search([]float32{92, 0, 3}, 2)
	if len(got) != 2 {
		t.Fatalf("expected 2 neighbors, got %d", len(got))
	}
	keys := got[0].Profile.Key + "," + got[1].Profile.Key
	if keys != "akita,samoyed" && keys != "samoyed,akita" {
		t.Errorf("unexpected neighbors %s", keys)
	}
	if got[0].Distance > got[1].Distance {
		t.Error("neighbors not sorted by distance")
	}
}

func TestProfileIndexSimilar(t *testing.T) {
	idx := NewProfileIndex()
	idx.Build(testProfiles())

	got, err := idx.Similar("newfoundland", 1)
	if err != nil {
		t.Fatalf("Similar() error = %v", err)
	}
	if len(got) != 1 || got[0].Profile.Key != "labrador" {
		t.Errorf("expected labrador, got %v", got)
	}

	all, _ := idx.Similar("newfoundland", 10)
	for _, n := range all {
		if n.Profile.Key == "newfoundland" {
			t.Error("Similar() returned the query profile")
		}
	}
	if len(all) != 4 {
		t.Errorf("expected 4 neighbors, got %d", len(all))
	}

	if _, err := idx.Similar("unknown", 3); !errors.Is(err, ErrNotIndexed) {
		t.Errorf("expected ErrNotIndexed, got %v", err)
	}
}

func TestProfileIndexAddReplaces(t *testing.T) {
	idx := NewProfileIndex()
	idx.Add(BreedProfile{Key: "akita", Lab: []float32{90, 0, 5}})
	idx.Add(BreedProfile{Key: "newfoundland", Lab: []float32{10, 0, 0}})
	idx.Add(BreedProfile{Key: "akita", Lab: []float32{12, 0, 0}, Hex: "#222222"})

	if idx.Count() != 2 {
		t.Fatalf("expected 2 profiles, got %d", idx.Count())
	}
	if p := idx.Get("akita"); p == nil || p.Hex != "#222222" {
		t.Errorf("expected replaced profile, got %+v", p)
	}

	got := idx.Search([]float32{11, 0, 0}, 2)
	if len(got) != 2 {
		t.Fatalf("expected 2 neighbors, got %d", len(got))
	}
	if got[0].Distance != 1 || got[1].Distance != 1 {
		t.Errorf("unexpected distances %v, %v", got[0].Distance, got[1].Distance)
	}
	// Equal distances are ordered by key.
	if got[0].Profile.Key != "akita" {
		t.Errorf("expected akita first on a tie, got %s", got[0].Profile.Key)
	}
}
