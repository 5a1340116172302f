// Package mock provides mock implementations of database interfaces for testing.
package mock

import (
	"cmp"
	"context"
	"fmt"
	"maps"
	"slices"
	"sync"
	"time"

	"github.com/kozaktomas/breed-twin/internal/database"
)

// MockProfileStore is an in-memory implementation of database.ProfileStore.
// It also backs the server when no database is configured.
type MockProfileStore struct {
	mu       sync.RWMutex
	profiles map[string]*database.BreedProfile

	// Error injection
	GetError         error
	ListError        error
	CountError       error
	FindNearestError error
	SaveError        error
	DeleteError      error
}

// NewMockProfileStore creates a new empty store
func NewMockProfileStore() *MockProfileStore {
	return &MockProfileStore{
		profiles: make(map[string]*database.BreedProfile),
	}
}

// AddProfile adds a profile without going through Save
func (m *MockProfileStore) AddProfile(p database.BreedProfile) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.profiles[p.Key] = &p
}

// Get retrieves a profile by key
func (m *MockProfileStore) Get(ctx context.Context, key string) (*database.BreedProfile, error) {
	if m.GetError != nil {
		return nil, m.GetError
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	p, ok := m.profiles[key]
	if !ok {
		return nil, nil
	}
	cp := *p
	return &cp, nil
}

// List returns all profiles ordered by key
func (m *MockProfileStore) List(ctx context.Context) ([]database.BreedProfile, error) {
	if m.ListError != nil {
		return nil, m.ListError
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]database.BreedProfile, 0, len(m.profiles))
	for _, key := range slices.Sorted(maps.Keys(m.profiles)) {
		out = append(out, *m.profiles[key])
	}
	return out, nil
}

// Count returns the number of profiles
func (m *MockProfileStore) Count(ctx context.Context) (int, error) {
	if m.CountError != nil {
		return 0, m.CountError
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.profiles), nil
}

// FindNearest ranks every profile by Euclidean distance to lab
func (m *MockProfileStore) FindNearest(ctx context.Context, lab []float32, limit int) ([]database.BreedProfile, []float64, error) {
	if m.FindNearestError != nil {
		return nil, nil, m.FindNearestError
	}
	if len(lab) != database.LabDim {
		return nil, nil, fmt.Errorf("lab vector must have %d dimensions, got %d", database.LabDim, len(lab))
	}

	all, _ := m.List(ctx)
	type hit struct {
		profile  database.BreedProfile
		distance float64
	}
	hits := make([]hit, 0, len(all))
	for _, p := range all {
		hits = append(hits, hit{profile: p, distance: database.EuclideanDistance(lab, p.Lab)})
	}
	slices.SortStableFunc(hits, func(a, b hit) int {
		return cmp.Compare(a.distance, b.distance)
	})
	if limit >= 0 && len(hits) > limit {
		hits = hits[:limit]
	}

	profiles := make([]database.BreedProfile, len(hits))
	distances := make([]float64, len(hits))
	for i, h := range hits {
		profiles[i] = h.profile
		distances[i] = h.distance
	}
	return profiles, distances, nil
}

// Save upserts profiles by key
func (m *MockProfileStore) Save(ctx context.Context, profiles []database.BreedProfile) error {
	if m.SaveError != nil {
		return m.SaveError
	}
	for _, p := range profiles {
		if len(p.Lab) != database.LabDim {
			return fmt.Errorf("profile %s: lab vector must have %d dimensions", p.Key, database.LabDim)
		}
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	now := time.Now().UTC()
	for _, p := range profiles {
		p.UpdatedAt = now
		m.profiles[p.Key] = &p
	}
	return nil
}

// Delete removes a profile
func (m *MockProfileStore) Delete(ctx context.Context, key string) error {
	if m.DeleteError != nil {
		return m.DeleteError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.profiles, key)
	return nil
}

// Verify interface compliance.
var _ database.ProfileStore = (*MockProfileStore)(nil)
