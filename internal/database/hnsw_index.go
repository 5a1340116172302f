package database

import (
	"cmp"
	"errors"
	"maps"
	"slices"
	"sync"

	"github.com/coder/hnsw"
)

// ErrNotIndexed is returned when a profile key is not in the index.
var ErrNotIndexed = errors.New("profile not indexed")

// Neighbor is a search hit with its Euclidean distance in Lab space.
type Neighbor struct {
	Profile  BreedProfile `json:"profile"`
	Distance float64      `json:"distance"`
}

// ProfileIndex wraps an HNSW graph over coat color vectors.
type ProfileIndex struct {
	graph *hnsw.Graph[string]
	byKey map[string]*BreedProfile // Maps HNSW node key to profile
	mu    sync.RWMutex
}

// NewProfileIndex creates a new empty index.
func NewProfileIndex() *ProfileIndex {
	return &ProfileIndex{
		byKey: make(map[string]*BreedProfile),
	}
}

func newGraph() *hnsw.Graph[string] {
	g := hnsw.NewGraph[string]()
	g.M = HNSWMaxNeighbors
	g.Ml = 1.0 / float64(HNSWMaxNeighbors) // Standard HNSW formula
	g.EfSearch = HNSWEfSearch
	g.Distance = hnsw.EuclideanDistance
	return g
}

// Build replaces the index contents with profiles. Profiles without a
// Lab vector of the right size are skipped.
func (h *ProfileIndex) Build(profiles []BreedProfile) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.rebuild(profiles)
}

func (h *ProfileIndex) rebuild(profiles []BreedProfile) {
	h.byKey = make(map[string]*BreedProfile, len(profiles))
	h.graph = nil
	for i := range profiles {
		p := profiles[i]
		if len(p.Lab) != LabDim {
			continue
		}
		h.byKey[p.Key] = &p
	}
	if len(h.byKey) == 0 {
		return
	}

	g := newGraph()
	for _, key := range slices.Sorted(maps.Keys(h.byKey)) {
		g.Add(hnsw.MakeNode(key, h.byKey[key].Lab))
	}
	h.graph = g
}

// Add inserts or replaces a single profile.
func (h *ProfileIndex) Add(p BreedProfile) {
	if len(p.Lab) != LabDim {
		return
	}
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, exists := h.byKey[p.Key]; exists {
		// Replacing a node in place is not supported by the graph.
		profiles := make([]BreedProfile, 0, len(h.byKey))
		for key, old := range h.byKey {
			if key != p.Key {
				profiles = append(profiles, *old)
			}
		}
		h.rebuild(append(profiles, p))
		return
	}

	if h.graph == nil {
		h.graph = newGraph()
	}
	h.graph.Add(hnsw.MakeNode(p.Key, p.Lab))
	h.byKey[p.Key] = &p
}

// Search finds the k profiles nearest to lab, closest first.
func (h *ProfileIndex) Search(lab []float32, k int) []Neighbor {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.search(lab, k, "")
}

// Similar finds the k profiles nearest to the profile stored under key,
// excluding the profile itself.
func (h *ProfileIndex) Similar(key string, k int) ([]Neighbor, error) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	p, ok := h.byKey[key]
	if !ok {
		return nil, ErrNotIndexed
	}
	return h.search(p.Lab, k, key), nil
}

func (h *ProfileIndex) search(lab []float32, k int, exclude string) []Neighbor {
	if h.graph == nil || k <= 0 || len(lab) != LabDim {
		return nil
	}
	want := k
	if exclude != "" {
		want++
	}

	nodes := h.graph.Search(lab, want)
	out := make([]Neighbor, 0, len(nodes))
	for _, n := range nodes {
		if n.Key == exclude {
			continue
		}
		p, ok := h.byKey[n.Key]
		if !ok {
			continue
		}
		out = append(out, Neighbor{Profile: *p, Distance: EuclideanDistance(lab, n.Value)})
	}
	slices.SortStableFunc(out, func(a, b Neighbor) int {
		return cmp.Or(cmp.Compare(a.Distance, b.Distance), cmp.Compare(a.Profile.Key, b.Profile.Key))
	})
	if len(out) > k {
		out = out[:k]
	}
	return out
}

// Get returns the indexed profile for key, or nil.
func (h *ProfileIndex) Get(key string) *BreedProfile {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if p, ok := h.byKey[key]; ok {
		cp := *p
		return &cp
	}
	return nil
}

// Count returns the number of indexed profiles.
func (h *ProfileIndex) Count() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.byKey)
}
