package database

import (
	"context"
)

// ProfileReader provides read-only access to breed profiles
type ProfileReader interface {
	// Get retrieves a profile by key, returns nil if not found
	Get(ctx context.Context, key string) (*BreedProfile, error)
	// List returns all profiles ordered by key
	List(ctx context.Context) ([]BreedProfile, error)
	// Count returns the total number of profiles stored
	Count(ctx context.Context) (int, error)
	// FindNearest returns the profiles closest to lab with their Euclidean distances
	FindNearest(ctx context.Context, lab []float32, limit int) ([]BreedProfile, []float64, error)
}

// ProfileStore provides read and write access to breed profiles
type ProfileStore interface {
	ProfileReader

	// Save upserts profiles by key in a single transaction
	Save(ctx context.Context, profiles []BreedProfile) error
	// Delete removes the profile for key
	Delete(ctx context.Context, key string) error
}
